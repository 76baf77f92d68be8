// SPDX-License-Identifier: EPL-2.0

package distance

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownModel = errors.New("unknown distance model")

// Model selects the attenuation law.
type Model uint8

const (
	// ModelNone disables attenuation.
	ModelNone Model = iota
	// ModelInverseExponential is the natural inverse distance law: unity up
	// to the reference distance, then (ref/dist)^rolloff.
	ModelInverseExponential
	ModelALInverse
	ModelALInverseClamped
	ModelALLinear
	ModelALLinearClamped
	ModelALExponential
	ModelALExponentialClamped
)

var modelNames = [...]string{
	ModelNone:                 "none",
	ModelInverseExponential:   "inverse-exponential",
	ModelALInverse:            "inverse",
	ModelALInverseClamped:     "inverse-clamped",
	ModelALLinear:             "linear",
	ModelALLinearClamped:      "linear-clamped",
	ModelALExponential:        "exponent",
	ModelALExponentialClamped: "exponent-clamped",
}

func (m Model) String() string {
	if int(m) < len(modelNames) {
		return modelNames[m]
	}
	return fmt.Sprintf("model(%d)", uint8(m))
}

// ParseModel accepts the String names, optionally prefixed with "al-".
// "exponential" is accepted for "exponent".
func ParseModel(name string) (Model, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "al-")
	n = strings.Replace(n, "exponential", "exponent", 1)
	if n == "inverse-exponent" || n == "" {
		return ModelInverseExponential, nil
	}
	for i, s := range modelNames {
		if s == n {
			return Model(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

// Epsilon is the floor applied to distances and velocities before they
// are used as divisors.
const Epsilon = 1e-6

// SpeedOfSound is the default sound velocity in meters per second.
const SpeedOfSound = 343.3

// Params are the per-emitter distance settings.
type Params struct {
	RefDistance   float32
	MaxDistance   float32
	Rolloff       float32
	SoundVelocity float32
	DopplerFactor float32
	// Directivity scales the attenuated gain, see ConeGain.
	Directivity float32
}

// DefaultParams returns unity reference distance, rolloff and directivity
// with no maximum distance.
func DefaultParams() Params {
	return Params{
		RefDistance:   1,
		MaxDistance:   math.MaxFloat32,
		Rolloff:       1,
		SoundVelocity: SpeedOfSound,
		DopplerFactor: 1,
		Directivity:   1,
	}
}

func floor(v float32) float32 {
	if v < Epsilon || v != v {
		return Epsilon
	}
	return v
}

// Gain returns the attenuation for an emitter dist meters away, multiplied
// by p.Directivity. The result is never negative.
func Gain(m Model, dist float32, p Params) float32 {
	ref := floor(p.RefDistance)
	maxd := max(floor(p.MaxDistance), ref)
	dist = max(dist, 0)
	roll := max(p.Rolloff, 0)

	var g float32
	switch m {
	case ModelInverseExponential:
		g = 1
		if dist > ref {
			g = pow(ref/dist, roll)
		}
	case ModelALInverseClamped:
		dist = min(max(dist, ref), maxd)
		fallthrough
	case ModelALInverse:
		g = ref / floor(ref+roll*(dist-ref))
	case ModelALLinearClamped:
		dist = max(dist, ref)
		fallthrough
	case ModelALLinear:
		dist = min(dist, maxd)
		g = 1 - roll*(dist-ref)/floor(maxd-ref)
	case ModelALExponentialClamped:
		dist = min(max(dist, ref), maxd)
		fallthrough
	case ModelALExponential:
		g = pow(floor(dist)/ref, -roll)
	default:
		g = 1
	}

	if g < 0 || g != g {
		g = 0
	} else if g > math.MaxFloat32 {
		g = math.MaxFloat32
	}

	return g * p.Directivity
}

func pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

// ConeGain returns the directivity of a sound cone. cosAngle is the cosine
// of the angle between the emitter's facing and the direction to the
// listener; inside innerCos the gain is 1, outside outerCos it is
// outerGain, and it blends linearly in between.
func ConeGain(cosAngle, innerCos, outerCos, outerGain float32) float32 {
	switch {
	case cosAngle >= innerCos:
		return 1
	case cosAngle <= outerCos || innerCos <= outerCos:
		return outerGain
	}
	t := (cosAngle - outerCos) / (innerCos - outerCos)

	return outerGain + (1-outerGain)*t
}
