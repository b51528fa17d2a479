package noisemodel

import "fmt"

// Default selections used when a spec leaves robot or controller empty.
const (
	DefaultRobot      = LoCoBot
	DefaultController = ILQR
)

// ActuationSpec describes one commanded motion: how far to move (metres for
// linear commands, degrees for turns), which fitted noise model to use, and
// a multiplier on the sampled noise (1 = unscaled, 0 = noise-free).
type ActuationSpec struct {
	Amount          float64    `json:"amount"`
	Robot           Robot      `json:"robot"`
	Controller      Controller `json:"controller"`
	NoiseMultiplier float64    `json:"noise_multiplier"`
}

// NewActuationSpec validates the selection against the fitted model table and
// returns a ready-to-use spec. Empty robot or controller fall back to the
// defaults; an unknown identifier or a negative multiplier is an error.
func NewActuationSpec(amount float64, robot Robot, controller Controller, noiseMultiplier float64) (ActuationSpec, error) {
	if robot == "" {
		robot = DefaultRobot
	}
	if controller == "" {
		controller = DefaultController
	}
	if _, err := Lookup(robot, controller); err != nil {
		return ActuationSpec{}, err
	}
	if noiseMultiplier < 0 {
		return ActuationSpec{}, fmt.Errorf("noisemodel: negative noise multiplier %v", noiseMultiplier)
	}
	return ActuationSpec{
		Amount:          amount,
		Robot:           robot,
		Controller:      controller,
		NoiseMultiplier: noiseMultiplier,
	}, nil
}
