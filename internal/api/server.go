package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/odometry.sim/internal/agent"
	"github.com/banshee-data/odometry.sim/internal/config"
	"github.com/banshee-data/odometry.sim/internal/control"
	"github.com/banshee-data/odometry.sim/internal/httputil"
	"github.com/banshee-data/odometry.sim/internal/noisemodel"
	"github.com/banshee-data/odometry.sim/internal/trialdb"
	"github.com/banshee-data/odometry.sim/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db  *trialdb.DB
	cfg *config.SimConfig
	reg *control.Registry

	mu     sync.RWMutex
	agents map[string]*agent.Agent
	// nextSeed offsets the config base seed so concurrent agents draw
	// independent noise streams.
	nextSeed uint64
}

func NewServer(db *trialdb.DB, cfg *config.SimConfig) *Server {
	if cfg == nil {
		cfg = config.EmptySimConfig()
	}
	return &Server{
		db:     db,
		cfg:    cfg,
		reg:    control.Default(),
		agents: make(map[string]*agent.Agent),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/noise_models", s.listNoiseModels)
	mux.HandleFunc("/api/controls", s.listControls)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/agents", s.agentsHandler)
	mux.HandleFunc("/api/agents/", s.agentHandler)
	mux.HandleFunc("/api/runs", s.runsHandler)
	mux.HandleFunc("/api/runs/", s.runsHandler)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	httputil.WriteJSONError(w, status, msg)
}

func (s *Server) listNoiseModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	models := map[string]interface{}{
		"robots":      noisemodel.Robots(),
		"controllers": noisemodel.Controllers(),
	}

	if err := json.NewEncoder(w).Encode(models); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write noise models")
		return
	}
}

func (s *Server) listControls(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := json.NewEncoder(w).Encode(map[string]interface{}{"controls": s.reg.Names()}); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write controls")
		return
	}
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	cfg := map[string]interface{}{
		"version":            version.Version,
		"default_robot":      s.cfg.GetDefaultRobot(),
		"default_controller": s.cfg.GetDefaultController(),
		"noise_multiplier":   s.cfg.GetNoiseMultiplier(),
		"forward_step_m":     s.cfg.GetForwardStepM(),
		"turn_step_deg":      s.cfg.GetTurnStepDeg(),
	}

	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write config")
		return
	}
}

// agentInfo is the wire form of an agent.
type agentInfo struct {
	ID              string  `json:"id"`
	Robot           string  `json:"robot"`
	Controller      string  `json:"controller"`
	NoiseMultiplier float64 `json:"noise_multiplier"`
	Seed            uint64  `json:"seed"`
	PosX            float64 `json:"pos_x"`
	PosY            float64 `json:"pos_y"`
	PosZ            float64 `json:"pos_z"`
	YawRad          float64 `json:"yaw_rad"`
	Steps           int     `json:"steps"`
}

func (s *Server) agentToInfo(a *agent.Agent) agentInfo {
	pos, yaw := a.Pose()
	return agentInfo{
		ID:              a.ID(),
		Robot:           string(a.Robot()),
		Controller:      string(a.Controller()),
		NoiseMultiplier: a.NoiseMultiplier(),
		Seed:            a.Seed(),
		PosX:            pos.X,
		PosY:            pos.Y,
		PosZ:            pos.Z,
		YawRad:          yaw,
		Steps:           len(a.Trajectory()),
	}
}

type createAgentRequest struct {
	Robot           string   `json:"robot"`
	Controller      string   `json:"controller"`
	NoiseMultiplier *float64 `json:"noise_multiplier"`
	Seed            *uint64  `json:"seed"`
}

func (s *Server) agentsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		infos := make([]agentInfo, 0, len(s.agents))
		for _, a := range s.agents {
			infos = append(infos, s.agentToInfo(a))
		}
		s.mu.RUnlock()
		if err := json.NewEncoder(w).Encode(infos); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to write agents")
		}

	case http.MethodPost:
		var req createAgentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
			return
		}

		cfg := agent.Config{
			Robot:           noisemodel.Robot(req.Robot),
			Controller:      noisemodel.Controller(req.Controller),
			NoiseMultiplier: s.cfg.GetNoiseMultiplier(),
			Registry:        s.reg,
		}
		if cfg.Robot == "" {
			cfg.Robot = noisemodel.Robot(s.cfg.GetDefaultRobot())
		}
		if cfg.Controller == "" {
			cfg.Controller = noisemodel.Controller(s.cfg.GetDefaultController())
		}
		if req.NoiseMultiplier != nil {
			cfg.NoiseMultiplier = *req.NoiseMultiplier
		}

		s.mu.Lock()
		if req.Seed != nil {
			cfg.Seed = *req.Seed
		} else {
			cfg.Seed = s.cfg.GetSeed() + s.nextSeed
			s.nextSeed++
		}
		s.mu.Unlock()

		a, err := agent.New(cfg)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Failed to create agent: %v", err))
			return
		}

		if s.db != nil {
			err := s.db.InsertRun(trialdb.Run{
				RunID:           a.ID(),
				Robot:           string(a.Robot()),
				Controller:      string(a.Controller()),
				Command:         "interactive",
				NoiseMultiplier: a.NoiseMultiplier(),
				Seed:            a.Seed(),
				Trials:          1,
			})
			if err != nil {
				s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to record agent: %v", err))
				return
			}
		}

		s.mu.Lock()
		s.agents[a.ID()] = a
		s.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(s.agentToInfo(a)); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to write agent")
		}

	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type actRequest struct {
	Command string   `json:"command"`
	Amount  *float64 `json:"amount"`
}

// agentHandler routes /api/agents/{id} and its act/trajectory subresources.
func (s *Server) agentHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rest := strings.TrimPrefix(r.URL.Path, "/api/agents/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeJSONError(w, http.StatusNotFound, "Missing agent ID")
		return
	}

	s.mu.RLock()
	a, ok := s.agents[id]
	s.mu.RUnlock()
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Unknown agent %q", id))
		return
	}

	switch sub {
	case "":
		if r.Method != http.MethodGet {
			s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if err := json.NewEncoder(w).Encode(s.agentToInfo(a)); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to write agent")
		}

	case "act":
		s.actHandler(w, r, a)

	case "trajectory":
		if r.Method != http.MethodGet {
			s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if err := json.NewEncoder(w).Encode(a.Trajectory()); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to write trajectory")
		}

	default:
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Unknown resource %q", sub))
	}
}

func (s *Server) actHandler(w http.ResponseWriter, r *http.Request, a *agent.Agent) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req actRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.Command == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing 'command'")
		return
	}

	amount := req.Amount
	if amount == nil {
		// Fall back to the configured step size for the command kind.
		def := s.cfg.GetForwardStepM()
		if req.Command == control.TurnLeft || req.Command == control.TurnRight {
			def = s.cfg.GetTurnStepDeg()
		}
		amount = &def
	}

	step, err := a.Act(req.Command, *amount)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Failed to act: %v", err))
		return
	}

	if s.db != nil {
		err := s.db.InsertStep(trialdb.StepRecord{
			RunID:     a.ID(),
			Trial:     0,
			StepIndex: step.Index,
			Command:   step.Command,
			Amount:    step.Amount,
			PosX:      step.Position.X,
			PosY:      step.Position.Y,
			PosZ:      step.Position.Z,
			YawRad:    step.YawRad,
		})
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to record step: %v", err))
			return
		}
	}

	if err := json.NewEncoder(w).Encode(step); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write step")
	}
}
