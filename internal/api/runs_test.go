package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/banshee-data/odometry.sim/internal/testutil"
	"github.com/banshee-data/odometry.sim/internal/trialdb"
)

func seedRun(t *testing.T, srv *Server) string {
	t.Helper()
	const runID = "run-1"
	testutil.AssertNoError(t, srv.db.InsertRun(trialdb.Run{
		RunID: runID, Robot: "LoCoBot", Controller: "ILQR",
		Command: "move_forward", Amount: 0.25, NoiseMultiplier: 1, Seed: 1, Trials: 2,
	}))
	steps := []trialdb.StepRecord{
		{RunID: runID, Trial: 0, StepIndex: 0, Command: "move_forward", Amount: 0.25, PosZ: -0.24, YawRad: 0.01},
		{RunID: runID, Trial: 1, StepIndex: 0, Command: "move_forward", Amount: 0.25, PosX: 0.01, PosZ: -0.26, YawRad: -0.01},
	}
	for _, s := range steps {
		testutil.AssertNoError(t, srv.db.InsertStep(s))
	}
	return runID
}

func TestListRuns(t *testing.T) {
	srv := newTestServer(t)
	seedRun(t, srv)
	mux := srv.ServeMux()

	rec := doJSON(t, mux, http.MethodGet, "/api/runs", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var runs []trialdb.Run
	decode(t, rec, &runs)
	if len(runs) != 1 || runs[0].RunID != "run-1" {
		t.Errorf("runs = %+v", runs)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/runs?limit=bogus", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec = doJSON(t, mux, http.MethodPost, "/api/runs", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestRunStepsAndSummaryEndpoints(t *testing.T) {
	srv := newTestServer(t)
	runID := seedRun(t, srv)
	mux := srv.ServeMux()

	rec := doJSON(t, mux, http.MethodGet, "/api/runs/"+runID+"/steps", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var steps []trialdb.StepRecord
	decode(t, rec, &steps)
	if len(steps) != 2 {
		t.Errorf("got %d steps, want 2", len(steps))
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/runs/"+runID+"/summary", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var summary trialdb.RunSummary
	decode(t, rec, &summary)
	if summary.Trials != 2 {
		t.Errorf("summary.Trials = %d, want 2", summary.Trials)
	}
}

func TestRunEndpointsChart(t *testing.T) {
	srv := newTestServer(t)
	runID := seedRun(t, srv)
	mux := srv.ServeMux()

	rec := doJSON(t, mux, http.MethodGet, "/api/runs/"+runID+"/endpoints", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Error("endpoint chart does not reference echarts")
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/runs/empty-run/endpoints", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}
