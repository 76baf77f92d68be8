// SPDX-License-Identifier: EPL-2.0

package distance

// MaxShift bounds the pitch multiplier Doppler returns.
const MaxShift = 16

// Doppler returns the pitch multiplier for an emitter moving at vs and a
// listener moving at vl, both measured along the emitter-to-listener
// axis (positive towards the listener for vs, away from the emitter for
// vl). c is the sound velocity and factor exaggerates or disables the
// effect. Both velocities are clamped to the scaled sound velocity and the
// result to [0, MaxShift].
func Doppler(vs, vl, c, factor float32) float32 {
	if factor <= 0 {
		return 1
	}
	c = floor(c)
	lim := c / factor
	vs = min(max(vs, -lim), lim)
	vl = min(max(vl, -lim), lim)

	num := c - factor*vl
	den := max(c-factor*vs, c/MaxShift)

	return min(max(num, 0)/den, MaxShift)
}

// Delay returns the propagation time in seconds over dist meters.
func Delay(dist, c float32) float32 {
	return max(dist, 0) / floor(c)
}

// Low-pass cutoff bounds, Hz.
const (
	MaxCutoff = 22050
	MinCutoff = 250
)

// FilterCutoff returns the low-pass cutoff frequency modelling air
// absorption: MaxCutoff up to the reference distance, then falling with
// rolloff*ref/dist down to MinCutoff. A zero rolloff disables the filter.
func FilterCutoff(dist float32, p Params) float32 {
	ref := floor(p.RefDistance)
	if dist <= ref || p.Rolloff <= 0 {
		return MaxCutoff
	}
	fc := MaxCutoff * ref / (ref + p.Rolloff*(dist-ref))

	return max(fc, MinCutoff)
}
