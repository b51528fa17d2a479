// Package scene provides the minimal scene-graph node the motion controls
// operate on: a position and an orientation with local-frame transforms.
package scene

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Node is a rigid-body pose: a position in the parent frame and a unit
// quaternion orientation. The local frame follows the usual graphics
// convention: -Z is forward, +X is right, +Y is up.
type Node struct {
	position r3.Vec
	rotation quat.Number
}

// NewNode returns a node at the origin with identity orientation.
func NewNode() *Node {
	return &Node{rotation: quat.Number{Real: 1}}
}

// Position returns the node's position in the parent frame.
func (n *Node) Position() r3.Vec { return n.position }

// Rotation returns the node's orientation quaternion.
func (n *Node) Rotation() quat.Number { return n.rotation }

// SetPose overwrites the node's position and orientation.
func (n *Node) SetPose(position r3.Vec, rotation quat.Number) {
	n.position = position
	n.rotation = rotation
}

// Forward returns the parent-frame direction of the node's local -Z axis.
func (n *Node) Forward() r3.Vec { return n.rotate(r3.Vec{Z: -1}) }

// Right returns the parent-frame direction of the node's local +X axis.
func (n *Node) Right() r3.Vec { return n.rotate(r3.Vec{X: 1}) }

// Up returns the parent-frame direction of the node's local +Y axis.
func (n *Node) Up() r3.Vec { return n.rotate(r3.Vec{Y: 1}) }

// TranslateLocal moves the node by a displacement expressed in its own local
// frame.
func (n *Node) TranslateLocal(local r3.Vec) {
	n.position = r3.Add(n.position, n.rotate(local))
}

// RotateYLocal rotates the node about its local vertical (+Y) axis by the
// given angle in radians.
func (n *Node) RotateYLocal(rad float64) {
	half := rad / 2
	r := quat.Number{Real: math.Cos(half), Jmag: math.Sin(half)}
	n.rotation = quat.Mul(n.rotation, r)
}

// NormalizeRotation rescales the orientation quaternion to unit norm,
// counteracting floating-point drift from repeated composition.
func (n *Node) NormalizeRotation() {
	norm := quat.Abs(n.rotation)
	if norm == 0 {
		n.rotation = quat.Number{Real: 1}
		return
	}
	n.rotation = quat.Scale(1/norm, n.rotation)
}

// Yaw returns the heading about the vertical axis in radians, measured from
// the -Z axis with positive angles matching positive RotateYLocal.
func (n *Node) Yaw() float64 {
	f := n.Forward()
	return math.Atan2(-f.X, -f.Z)
}

// rotate applies the node's orientation to a local-frame vector, returning
// the parent-frame vector (q v q*).
func (n *Node) rotate(v r3.Vec) r3.Vec {
	qv := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(n.rotation, qv), quat.Conj(n.rotation))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}
