// SPDX-License-Identifier: EPL-2.0

package voice

import "math"

// Vec3 is a position, velocity or direction. Coordinates follow the
// right-handed convention: x right, y up, -z forward.
type Vec3 [3]float32

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a Vec3) Scale(s float32) Vec3 {
	return Vec3{a[0] * s, a[1] * s, a[2] * s}
}

func (a Vec3) Dot(b Vec3) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a Vec3) Len() float32 { return float32(math.Sqrt(float64(a.Dot(a)))) }

// Normalize returns the unit vector and the original length. The zero
// vector is returned unchanged.
func (a Vec3) Normalize() (Vec3, float32) {
	l := a.Len()
	if l == 0 {
		return a, 0
	}
	return a.Scale(1 / l), l
}

func (a Vec3) IsZero() bool { return a == Vec3{} }
