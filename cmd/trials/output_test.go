package main

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/odometry.sim/internal/agent"
	"github.com/banshee-data/odometry.sim/internal/trialdb"
)

func testParams() TrialParams {
	return TrialParams{
		Robot:           "LoCoBot",
		Controller:      "ILQR",
		Command:         "move_forward",
		Amount:          0.25,
		NoiseMultiplier: 1,
		Steps:           1,
		Seed:            1,
	}
}

func TestWriteHeadersAndRawRow(t *testing.T) {
	var summary, raw bytes.Buffer
	out := NewCSVWriter(&summary, &raw)
	out.WriteHeaders()

	step := agent.Step{
		Index:     0,
		Command:   "move_forward",
		Amount:    0.25,
		Position:  r3.Vec{X: 0.01, Z: -0.26},
		YawRad:    0.02,
		Timestamp: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
	out.WriteRawRow(testParams(), 3, step)
	out.Flush()

	records, err := csv.NewReader(strings.NewReader(raw.String())).ReadAll()
	if err != nil {
		t.Fatalf("raw CSV parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("raw CSV rows = %d, want header + 1", len(records))
	}
	if got, want := len(records[1]), len(FormatRawHeaders()); got != want {
		t.Errorf("raw row width = %d, want %d", got, want)
	}
	if records[1][0] != "LoCoBot" || records[1][5] != "3" || records[1][6] != "0" {
		t.Errorf("raw row = %v", records[1])
	}
}

func TestWriteSummary(t *testing.T) {
	var summary, raw bytes.Buffer
	out := NewCSVWriter(&summary, &raw)
	out.WriteHeaders()

	finals := []trialdb.StepRecord{
		{Trial: 0, PosX: 0.02, PosZ: -0.24, YawRad: 0.01},
		{Trial: 1, PosX: -0.02, PosZ: -0.26, YawRad: -0.01},
	}
	out.WriteSummary(testParams(), finals)

	records, err := csv.NewReader(strings.NewReader(summary.String())).ReadAll()
	if err != nil {
		t.Fatalf("summary CSV parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("summary CSV rows = %d, want header + 1", len(records))
	}
	if got, want := len(records[1]), len(FormatSummaryHeaders()); got != want {
		t.Errorf("summary row width = %d, want %d", got, want)
	}
	// forward mean over {0.24, 0.26} is 0.25; lateral mean is 0.
	if records[1][7] != "0.250000" {
		t.Errorf("forward_mean = %s, want 0.250000", records[1][7])
	}
	if records[1][9] != "0.000000" {
		t.Errorf("lateral_mean = %s, want 0.000000", records[1][9])
	}
}

func TestWriteSummaryEmpty(t *testing.T) {
	var summary, raw bytes.Buffer
	out := NewCSVWriter(&summary, &raw)
	out.WriteSummary(testParams(), nil)
	out.Flush()
	if summary.Len() != 0 {
		t.Errorf("summary written for empty results: %q", summary.String())
	}
}
