// Package noisemodel holds the fitted actuation-noise parameters for the
// supported robot platforms and controllers, and the actuation spec that
// selects among them.
package noisemodel

import (
	"errors"
	"fmt"

	"github.com/banshee-data/odometry.sim/internal/truncnorm"
)

// Robot identifies a supported robot platform.
type Robot string

// Controller identifies a supported low-level motion controller.
type Controller string

// The closed set of supported robots and controllers. Noise parameters were
// fitted per (robot, controller) pair from real-robot trials; anything
// outside these sets has no fitted model and is rejected.
const (
	LoCoBot     Robot = "LoCoBot"
	LoCoBotLite Robot = "LoCoBot-Lite"

	ILQR         Controller = "ILQR"
	Proportional Controller = "Proportional"
	Movebase     Controller = "Movebase"
)

var (
	// ErrUnknownRobot is returned when a robot identifier is not in the
	// supported set.
	ErrUnknownRobot = errors.New("noisemodel: unknown robot")
	// ErrUnknownController is returned when a controller identifier is not
	// in the supported set.
	ErrUnknownController = errors.New("noisemodel: unknown controller")
)

// Robots returns the supported robot identifiers.
func Robots() []Robot {
	return []Robot{LoCoBot, LoCoBotLite}
}

// Controllers returns the supported controller identifiers.
func Controllers() []Controller {
	return []Controller{ILQR, Proportional, Movebase}
}

// MotionNoiseModel describes the noise observed while executing one kind of
// motion: a 2D linear component (forward axis, lateral drift axis) and a 1D
// rotational component about the vertical axis (radians).
type MotionNoiseModel struct {
	Linear   *truncnorm.Diagonal
	Rotation *truncnorm.Diagonal
}

// ControllerNoiseModel carries separate motion models depending on which
// actuator was driven: noise correlates with the commanded motion kind, not
// just with which physical quantity is perturbed.
type ControllerNoiseModel struct {
	LinearMotion     MotionNoiseModel
	RotationalMotion MotionNoiseModel
}

// Lookup returns the noise model fitted for the given robot and controller.
func Lookup(robot Robot, controller Controller) (ControllerNoiseModel, error) {
	byController, ok := pyrobotModels[robot]
	if !ok {
		return ControllerNoiseModel{}, fmt.Errorf("%w: %q", ErrUnknownRobot, robot)
	}
	model, ok := byController[controller]
	if !ok {
		return ControllerNoiseModel{}, fmt.Errorf("%w: %q", ErrUnknownController, controller)
	}
	return model, nil
}
