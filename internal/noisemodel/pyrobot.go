package noisemodel

import "github.com/banshee-data/odometry.sim/internal/truncnorm"

// Noise parameters contributed from PyRobot (https://pyrobot.org), fitted
// offline from real-robot trials. Linear models are (forward, lateral) in
// metres; rotation models are about the vertical axis in radians. The table
// is built once at process start and is read-only thereafter.
var pyrobotModels = map[Robot]map[Controller]ControllerNoiseModel{
	LoCoBot: {
		ILQR: {
			LinearMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.014, 0.009}, []float64{0.006, 0.005}),
				Rotation: truncnorm.MustDiagonal([]float64{0.008}, []float64{0.004}),
			},
			RotationalMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.003, 0.003}, []float64{0.002, 0.003}),
				Rotation: truncnorm.MustDiagonal([]float64{0.023}, []float64{0.012}),
			},
		},
		Proportional: {
			LinearMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.017, 0.042}, []float64{0.007, 0.023}),
				Rotation: truncnorm.MustDiagonal([]float64{0.031}, []float64{0.026}),
			},
			RotationalMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.001, 0.005}, []float64{0.001, 0.004}),
				Rotation: truncnorm.MustDiagonal([]float64{0.043}, []float64{0.017}),
			},
		},
		Movebase: {
			LinearMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.074, 0.036}, []float64{0.019, 0.033}),
				Rotation: truncnorm.MustDiagonal([]float64{0.189}, []float64{0.038}),
			},
			RotationalMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.002, 0.003}, []float64{0.0, 0.002}),
				Rotation: truncnorm.MustDiagonal([]float64{0.219}, []float64{0.019}),
			},
		},
	},
	LoCoBotLite: {
		ILQR: {
			LinearMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.142, 0.023}, []float64{0.008, 0.008}),
				Rotation: truncnorm.MustDiagonal([]float64{0.031}, []float64{0.028}),
			},
			RotationalMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.002, 0.002}, []float64{0.001, 0.002}),
				Rotation: truncnorm.MustDiagonal([]float64{0.122}, []float64{0.03}),
			},
		},
		Proportional: {
			LinearMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.135, 0.043}, []float64{0.007, 0.009}),
				Rotation: truncnorm.MustDiagonal([]float64{0.049}, []float64{0.009}),
			},
			RotationalMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.002, 0.002}, []float64{0.002, 0.001}),
				Rotation: truncnorm.MustDiagonal([]float64{0.054}, []float64{0.061}),
			},
		},
		Movebase: {
			LinearMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.192, 0.117}, []float64{0.055, 0.144}),
				Rotation: truncnorm.MustDiagonal([]float64{0.128}, []float64{0.143}),
			},
			RotationalMotion: MotionNoiseModel{
				Linear:   truncnorm.MustDiagonal([]float64{0.002, 0.001}, []float64{0.001, 0.001}),
				Rotation: truncnorm.MustDiagonal([]float64{0.173}, []float64{0.025}),
			},
		},
	},
}
