package control

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/odometry.sim/internal/noisemodel"
	"github.com/banshee-data/odometry.sim/internal/scene"
	"github.com/banshee-data/odometry.sim/internal/truncnorm"
	"github.com/banshee-data/odometry.sim/internal/units"
)

type motionKind int

const (
	linearMotion motionKind = iota
	rotationalMotion
)

const (
	// signEpsilon makes sign(amount + eps) deterministic when the commanded
	// amount is exactly zero, so noise biases toward overshoot in both
	// directions instead of overshooting forward and undershooting backward.
	signEpsilon = 1e-8

	// reverseFloor caps how much of the commanded amount the sampled noise
	// may cancel. The robot always moves (or turns) a little; without this
	// floor small commanded amounts could be reversed outright by noise.
	reverseFloor = 0.95
)

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// noisyAction perturbs the commanded motion with sampled actuation noise and
// applies the result to the node in its local frame. translate is in metres
// along the local forward axis, rotate in degrees about the local vertical.
func noisyAction(node *scene.Node, translate, rotateDeg, multiplier float64, m noisemodel.MotionNoiseModel, kind motionKind, rng *rand.Rand) error {
	// Linear noise: for translate commands the forward component is floored
	// so the realised displacement never reverses the commanded direction.
	var linTrunc []*truncnorm.Bounds
	if kind == linearMotion {
		linTrunc = []*truncnorm.Bounds{
			truncnorm.AtLeast(-reverseFloor * math.Abs(translate)),
			nil,
		}
	}
	linNoise, err := m.Linear.Sample(rng, linTrunc)
	if err != nil {
		return fmt.Errorf("linear noise: %w", err)
	}

	s := sign(translate + signEpsilon)
	forward := translate + multiplier*linNoise[0]*s
	lateral := multiplier * linNoise[1] * s
	node.TranslateLocal(r3.Vec{X: lateral, Z: -forward})

	// Rotational noise: for turn commands the floor is derived from the
	// commanded rotation so a turn never reverses either.
	var rotTrunc []*truncnorm.Bounds
	if kind == rotationalMotion {
		rotTrunc = []*truncnorm.Bounds{
			truncnorm.AtLeast(-reverseFloor * math.Abs(units.DegToRad(rotateDeg))),
		}
	}
	rotNoise, err := m.Rotation.Sample(rng, rotTrunc)
	if err != nil {
		return fmt.Errorf("rotation noise: %w", err)
	}

	rs := sign(rotateDeg + signEpsilon)
	node.RotateYLocal(units.DegToRad(rotateDeg) + multiplier*rotNoise[0]*rs)
	node.NormalizeRotation()
	return nil
}

type noisyMoveForward struct{}

func (noisyMoveForward) Apply(node *scene.Node, spec noisemodel.ActuationSpec, rng *rand.Rand) error {
	m, err := noisemodel.Lookup(spec.Robot, spec.Controller)
	if err != nil {
		return err
	}
	return noisyAction(node, spec.Amount, 0, spec.NoiseMultiplier, m.LinearMotion, linearMotion, rng)
}

type noisyMoveBackward struct{}

func (noisyMoveBackward) Apply(node *scene.Node, spec noisemodel.ActuationSpec, rng *rand.Rand) error {
	m, err := noisemodel.Lookup(spec.Robot, spec.Controller)
	if err != nil {
		return err
	}
	return noisyAction(node, -spec.Amount, 0, spec.NoiseMultiplier, m.LinearMotion, linearMotion, rng)
}

type noisyTurnLeft struct{}

func (noisyTurnLeft) Apply(node *scene.Node, spec noisemodel.ActuationSpec, rng *rand.Rand) error {
	m, err := noisemodel.Lookup(spec.Robot, spec.Controller)
	if err != nil {
		return err
	}
	return noisyAction(node, 0, spec.Amount, spec.NoiseMultiplier, m.RotationalMotion, rotationalMotion, rng)
}

type noisyTurnRight struct{}

func (noisyTurnRight) Apply(node *scene.Node, spec noisemodel.ActuationSpec, rng *rand.Rand) error {
	m, err := noisemodel.Lookup(spec.Robot, spec.Controller)
	if err != nil {
		return err
	}
	return noisyAction(node, 0, -spec.Amount, spec.NoiseMultiplier, m.RotationalMotion, rotationalMotion, rng)
}
