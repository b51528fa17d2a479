// Package control implements the named motion controls that drive an agent's
// scene node, including the noisy actuation model fitted from real-robot
// trials.
package control

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/banshee-data/odometry.sim/internal/noisemodel"
	"github.com/banshee-data/odometry.sim/internal/scene"
)

// Control is a single named motion operation applied to a scene node.
type Control interface {
	Apply(node *scene.Node, spec noisemodel.ActuationSpec, rng *rand.Rand) error
}

// Entry pairs a control with its registration metadata. BodyAction marks
// controls that move the agent's full body rather than only a sensor.
type Entry struct {
	Control    Control
	BodyAction bool
}

// Registry maps command names to controls.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a control under the given name. Registering a name twice is
// an error.
func (r *Registry) Register(name string, bodyAction bool, c Control) error {
	if name == "" {
		return fmt.Errorf("control: empty name")
	}
	if c == nil {
		return fmt.Errorf("control: nil control for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("control: %q already registered", name)
	}
	r.entries[name] = Entry{Control: c, BodyAction: bodyAction}
	return nil
}

// Get returns the entry registered under name.
func (r *Registry) Get(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("control: unknown control %q", name)
	}
	return e, nil
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registered command names for the noisy move operations.
const (
	MoveForward  = "move_forward"
	MoveBackward = "move_backward"
	TurnLeft     = "turn_left"
	TurnRight    = "turn_right"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry with the four noisy move
// operations registered as body actions.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		mustRegister := func(name string, c Control) {
			if err := defaultRegistry.Register(name, true, c); err != nil {
				panic(err)
			}
		}
		mustRegister(MoveForward, noisyMoveForward{})
		mustRegister(MoveBackward, noisyMoveBackward{})
		mustRegister(TurnLeft, noisyTurnLeft{})
		mustRegister(TurnRight, noisyTurnRight{})
	})
	return defaultRegistry
}
