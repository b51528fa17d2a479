package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/banshee-data/odometry.sim/internal/agent"
	"github.com/banshee-data/odometry.sim/internal/config"
	"github.com/banshee-data/odometry.sim/internal/testutil"
	"github.com/banshee-data/odometry.sim/internal/trialdb"
	"github.com/banshee-data/odometry.sim/internal/version"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := trialdb.New(filepath.Join(t.TempDir(), "trials.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewServer(db, config.EmptySimConfig())
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		testutil.AssertNoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	testutil.AssertNoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func createAgent(t *testing.T, mux *http.ServeMux, body interface{}) agentInfo {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/agents", body)
	testutil.AssertStatusCode(t, rec.Code, http.StatusCreated)
	var info agentInfo
	decode(t, rec, &info)
	return info
}

func TestListNoiseModels(t *testing.T) {
	mux := newTestServer(t).ServeMux()
	rec := doJSON(t, mux, http.MethodGet, "/api/noise_models", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var models struct {
		Robots      []string `json:"robots"`
		Controllers []string `json:"controllers"`
	}
	decode(t, rec, &models)
	if len(models.Robots) != 2 || len(models.Controllers) != 3 {
		t.Errorf("got %d robots and %d controllers, want 2 and 3", len(models.Robots), len(models.Controllers))
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/noise_models", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestListControls(t *testing.T) {
	mux := newTestServer(t).ServeMux()
	rec := doJSON(t, mux, http.MethodGet, "/api/controls", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp struct {
		Controls []string `json:"controls"`
	}
	decode(t, rec, &resp)
	if len(resp.Controls) != 4 {
		t.Errorf("got %d controls, want 4", len(resp.Controls))
	}
}

func TestShowConfig(t *testing.T) {
	mux := newTestServer(t).ServeMux()
	rec := doJSON(t, mux, http.MethodGet, "/api/config", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var cfg map[string]interface{}
	decode(t, rec, &cfg)
	if cfg["default_robot"] != "LoCoBot" {
		t.Errorf("default_robot = %v, want LoCoBot", cfg["default_robot"])
	}
	if cfg["forward_step_m"] != 0.25 {
		t.Errorf("forward_step_m = %v, want 0.25", cfg["forward_step_m"])
	}
	if cfg["version"] != version.Version {
		t.Errorf("version = %v, want %v", cfg["version"], version.Version)
	}
}

func TestCreateAgentDefaultsAndValidation(t *testing.T) {
	mux := newTestServer(t).ServeMux()

	info := createAgent(t, mux, map[string]interface{}{})
	if info.ID == "" {
		t.Error("created agent has empty ID")
	}
	if info.Robot != "LoCoBot" || info.Controller != "ILQR" {
		t.Errorf("agent model = %s/%s, want LoCoBot/ILQR", info.Robot, info.Controller)
	}

	rec := doJSON(t, mux, http.MethodPost, "/api/agents", map[string]interface{}{"robot": "Spot"})
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec = doJSON(t, mux, http.MethodPost, "/api/agents", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestCreateAgentsGetDistinctSeeds(t *testing.T) {
	mux := newTestServer(t).ServeMux()
	a := createAgent(t, mux, map[string]interface{}{})
	b := createAgent(t, mux, map[string]interface{}{})
	if a.Seed == b.Seed {
		t.Errorf("two agents share seed %d", a.Seed)
	}
}

func TestListAgents(t *testing.T) {
	mux := newTestServer(t).ServeMux()
	createAgent(t, mux, map[string]interface{}{})
	createAgent(t, mux, map[string]interface{}{"robot": "LoCoBot-Lite", "controller": "Movebase"})

	rec := doJSON(t, mux, http.MethodGet, "/api/agents", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var infos []agentInfo
	decode(t, rec, &infos)
	if len(infos) != 2 {
		t.Errorf("got %d agents, want 2", len(infos))
	}
}

func TestGetAgent(t *testing.T) {
	mux := newTestServer(t).ServeMux()
	info := createAgent(t, mux, map[string]interface{}{})

	rec := doJSON(t, mux, http.MethodGet, "/api/agents/"+info.ID, nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	rec = doJSON(t, mux, http.MethodGet, "/api/agents/not-an-agent", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestActAndTrajectory(t *testing.T) {
	srv := newTestServer(t)
	mux := srv.ServeMux()
	info := createAgent(t, mux, map[string]interface{}{"noise_multiplier": 0.0})

	rec := doJSON(t, mux, http.MethodPost, "/api/agents/"+info.ID+"/act",
		map[string]interface{}{"command": "move_forward", "amount": 0.25})
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var step agent.Step
	decode(t, rec, &step)
	if step.Command != "move_forward" || step.Index != 0 {
		t.Errorf("step = %+v", step)
	}
	if step.Position.Z != -0.25 {
		t.Errorf("noise-free step Z = %v, want -0.25", step.Position.Z)
	}

	// Omitted amount falls back to the configured turn step.
	rec = doJSON(t, mux, http.MethodPost, "/api/agents/"+info.ID+"/act",
		map[string]interface{}{"command": "turn_left"})
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	decode(t, rec, &step)
	if step.Amount != 10.0 {
		t.Errorf("defaulted turn amount = %v, want 10", step.Amount)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/agents/"+info.ID+"/trajectory", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var traj []agent.Step
	decode(t, rec, &traj)
	if len(traj) != 2 {
		t.Errorf("trajectory length = %d, want 2", len(traj))
	}

	// Steps are persisted under the agent's run.
	steps, err := srv.db.RunSteps(info.ID)
	testutil.AssertNoError(t, err)
	if len(steps) != 2 {
		t.Errorf("persisted steps = %d, want 2", len(steps))
	}
}

func TestActRejectsBadRequests(t *testing.T) {
	mux := newTestServer(t).ServeMux()
	info := createAgent(t, mux, map[string]interface{}{})

	rec := doJSON(t, mux, http.MethodPost, "/api/agents/"+info.ID+"/act",
		map[string]interface{}{"command": "strafe_left"})
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec = doJSON(t, mux, http.MethodPost, "/api/agents/"+info.ID+"/act",
		map[string]interface{}{})
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec = doJSON(t, mux, http.MethodGet, "/api/agents/"+info.ID+"/act", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)

	rec = doJSON(t, mux, http.MethodGet, "/api/agents/"+info.ID+"/unknown", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}
