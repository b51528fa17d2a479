package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/odometry.sim/internal/agent"
	"github.com/banshee-data/odometry.sim/internal/monitoring"
	"github.com/banshee-data/odometry.sim/internal/trialdb"
)

// TrialParams holds the fixed parameters of one batch of trials.
type TrialParams struct {
	Robot           string
	Controller      string
	Command         string
	Amount          float64
	NoiseMultiplier float64
	Steps           int
	Seed            uint64
}

// CSVWriter wraps csv.Writer with methods for trial output.
type CSVWriter struct {
	Summary *csv.Writer
	Raw     *csv.Writer
}

// NewCSVWriter creates a new CSVWriter with the given summary and raw writers.
func NewCSVWriter(summary, raw io.Writer) *CSVWriter {
	return &CSVWriter{
		Summary: csv.NewWriter(summary),
		Raw:     csv.NewWriter(raw),
	}
}

// WriteHeaders writes the headers to both summary and raw CSV files.
func (c *CSVWriter) WriteHeaders() {
	c.Summary.Write(FormatSummaryHeaders())
	c.Raw.Write(FormatRawHeaders())
}

// WriteRawRow writes a single step row to the raw CSV file.
func (c *CSVWriter) WriteRawRow(params TrialParams, trial int, step agent.Step) {
	row := []string{
		params.Robot,
		params.Controller,
		params.Command,
		fmt.Sprintf("%.6f", params.Amount),
		fmt.Sprintf("%.6f", params.NoiseMultiplier),
		fmt.Sprintf("%d", trial),
		fmt.Sprintf("%d", step.Index),
		fmt.Sprintf("%.6f", step.Position.X),
		fmt.Sprintf("%.6f", step.Position.Y),
		fmt.Sprintf("%.6f", step.Position.Z),
		fmt.Sprintf("%.6f", step.YawRad),
		step.Timestamp.Format(time.RFC3339Nano),
	}
	c.Raw.Write(row)
	c.Raw.Flush()
}

// WriteSummary computes and writes summary statistics over the final pose of
// every trial.
func (c *CSVWriter) WriteSummary(params TrialParams, finals []trialdb.StepRecord) {
	if len(finals) == 0 {
		monitoring.Logf("WARNING: No results to summarise")
		return
	}

	forward := make([]float64, len(finals))
	lateral := make([]float64, len(finals))
	yaw := make([]float64, len(finals))
	for i, f := range finals {
		forward[i] = -f.PosZ
		lateral[i] = f.PosX
		yaw[i] = f.YawRad
	}

	forwardMean, forwardStd := stat.MeanStdDev(forward, nil)
	lateralMean, lateralStd := stat.MeanStdDev(lateral, nil)
	yawMean, yawStd := stat.MeanStdDev(yaw, nil)

	monitoring.Logf("Results: forward=%.4f±%.4f m, lateral=%.4f±%.4f m, yaw=%.4f±%.4f rad",
		forwardMean, forwardStd, lateralMean, lateralStd, yawMean, yawStd)

	row := []string{
		params.Robot,
		params.Controller,
		params.Command,
		fmt.Sprintf("%.6f", params.Amount),
		fmt.Sprintf("%.6f", params.NoiseMultiplier),
		fmt.Sprintf("%d", len(finals)),
		fmt.Sprintf("%d", params.Steps),
		fmt.Sprintf("%.6f", forwardMean),
		fmt.Sprintf("%.6f", forwardStd),
		fmt.Sprintf("%.6f", lateralMean),
		fmt.Sprintf("%.6f", lateralStd),
		fmt.Sprintf("%.6f", yawMean),
		fmt.Sprintf("%.6f", yawStd),
	}
	c.Summary.Write(row)
	c.Summary.Flush()
}

// Flush flushes both summary and raw writers.
func (c *CSVWriter) Flush() {
	c.Summary.Flush()
	c.Raw.Flush()
}

// FormatSummaryHeaders returns the summary header column names.
func FormatSummaryHeaders() []string {
	return []string{
		"robot", "controller", "command", "amount", "noise_multiplier",
		"trials", "steps",
		"forward_mean", "forward_stddev",
		"lateral_mean", "lateral_stddev",
		"yaw_mean", "yaw_stddev",
	}
}

// FormatRawHeaders returns the raw data header column names.
func FormatRawHeaders() []string {
	return []string{
		"robot", "controller", "command", "amount", "noise_multiplier",
		"trial", "step", "pos_x", "pos_y", "pos_z", "yaw_rad", "timestamp",
	}
}
