// SPDX-License-Identifier: EPL-2.0

package voice

// Listener is the point of view all 3D voices are rendered for.
type Listener struct {
	Position Vec3
	Velocity Vec3
	At, Up   Vec3
	Gain     float32
	Pitch    float32
}

// NewListener returns a listener at the origin facing -z with unity gain
// and pitch.
func NewListener() *Listener {
	return &Listener{
		At:    Vec3{0, 0, -1},
		Up:    Vec3{0, 1, 0},
		Gain:  1,
		Pitch: 1,
	}
}

// basis returns the right, up and forward axes of the listener frame.
func (l *Listener) basis() (right, up, fwd Vec3) {
	fwd, n := l.At.Normalize()
	if n == 0 {
		fwd = Vec3{0, 0, -1}
	}
	right, n = fwd.Cross(l.Up).Normalize()
	if n == 0 {
		right = Vec3{1, 0, 0}
	}
	up = right.Cross(fwd)

	return right, up, fwd
}

// Relative maps a world position into the listener frame.
func (l *Listener) Relative(p Vec3) Vec3 {
	return l.Rotate(p.Sub(l.Position))
}

// Rotate maps a world direction into the listener frame without
// translating it.
func (l *Listener) Rotate(d Vec3) Vec3 {
	right, up, fwd := l.basis()
	return Vec3{d.Dot(right), d.Dot(up), -d.Dot(fwd)}
}
