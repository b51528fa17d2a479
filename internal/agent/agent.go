// Package agent ties a scene node to a control registry and a seeded noise
// stream, and records the trajectory of every commanded step.
package agent

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/odometry.sim/internal/control"
	"github.com/banshee-data/odometry.sim/internal/noisemodel"
	"github.com/banshee-data/odometry.sim/internal/scene"
	"github.com/banshee-data/odometry.sim/internal/timeutil"
)

// Config selects the noise model and random stream for a new agent.
type Config struct {
	Robot           noisemodel.Robot      `json:"robot"`
	Controller      noisemodel.Controller `json:"controller"`
	NoiseMultiplier float64               `json:"noise_multiplier"`
	Seed            uint64                `json:"seed"`

	// Registry defaults to the process-wide registry when nil.
	Registry *control.Registry `json:"-"`

	// Clock stamps recorded steps; defaults to the wall clock when nil.
	Clock timeutil.Clock `json:"-"`
}

// Step records one commanded motion and the pose it produced.
type Step struct {
	Index     int       `json:"index"`
	Command   string    `json:"command"`
	Amount    float64   `json:"amount"`
	Position  r3.Vec    `json:"position"`
	YawRad    float64   `json:"yaw_rad"`
	Timestamp time.Time `json:"timestamp"`
}

// Agent is a simulated robot body. All methods are safe for concurrent use.
type Agent struct {
	id         string
	robot      noisemodel.Robot
	controller noisemodel.Controller
	multiplier float64
	seed       uint64
	registry   *control.Registry
	clock      timeutil.Clock

	mu    sync.Mutex
	rng   *rand.Rand
	node  *scene.Node
	steps []Step
}

// New validates the config against the fitted model table and returns an
// agent at the origin. Empty robot or controller fall back to the defaults.
func New(cfg Config) (*Agent, error) {
	spec, err := noisemodel.NewActuationSpec(0, cfg.Robot, cfg.Controller, cfg.NoiseMultiplier)
	if err != nil {
		return nil, err
	}
	reg := cfg.Registry
	if reg == nil {
		reg = control.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Agent{
		id:         uuid.NewString(),
		robot:      spec.Robot,
		controller: spec.Controller,
		multiplier: spec.NoiseMultiplier,
		seed:       cfg.Seed,
		registry:   reg,
		clock:      clock,
		rng:        rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1)),
		node:       scene.NewNode(),
	}, nil
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Robot returns the robot whose fitted noise the agent uses.
func (a *Agent) Robot() noisemodel.Robot { return a.robot }

// Controller returns the controller whose fitted noise the agent uses.
func (a *Agent) Controller() noisemodel.Controller { return a.controller }

// NoiseMultiplier returns the configured scale on sampled noise.
func (a *Agent) NoiseMultiplier() float64 { return a.multiplier }

// Seed returns the seed of the agent's random stream.
func (a *Agent) Seed() uint64 { return a.seed }

// Act looks up the named control, applies it with the agent's noise model,
// and returns the recorded step.
func (a *Agent) Act(command string, amount float64) (Step, error) {
	entry, err := a.registry.Get(command)
	if err != nil {
		return Step{}, err
	}
	spec, err := noisemodel.NewActuationSpec(amount, a.robot, a.controller, a.multiplier)
	if err != nil {
		return Step{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := entry.Control.Apply(a.node, spec, a.rng); err != nil {
		return Step{}, fmt.Errorf("agent %s: %s: %w", a.id, command, err)
	}
	step := Step{
		Index:     len(a.steps),
		Command:   command,
		Amount:    amount,
		Position:  a.node.Position(),
		YawRad:    a.node.Yaw(),
		Timestamp: a.clock.Now().UTC(),
	}
	a.steps = append(a.steps, step)
	return step, nil
}

// Pose returns the agent's current position and heading.
func (a *Agent) Pose() (r3.Vec, float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.node.Position(), a.node.Yaw()
}

// Trajectory returns a copy of every step taken so far, in order.
func (a *Agent) Trajectory() []Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Step, len(a.steps))
	copy(out, a.steps)
	return out
}

// Reset returns the agent to the origin, clears its trajectory, and restarts
// its random stream from the seed.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.node = scene.NewNode()
	a.steps = nil
	a.rng = rand.New(rand.NewPCG(a.seed, a.seed+1))
}
