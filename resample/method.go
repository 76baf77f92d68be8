// SPDX-License-Identifier: EPL-2.0

package resample

import "fmt"

// Method is an interpolation order.
type Method uint8

const (
	MethodNearest Method = iota
	MethodLinear
	MethodCubic
	MethodSkip
)

func (m Method) String() string {
	switch m {
	case MethodNearest:
		return "nearest"
	case MethodLinear:
		return "linear"
	case MethodCubic:
		return "cubic"
	case MethodSkip:
		return "skip"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// Thresholds separate the interpolation orders. Cubic must not exceed
// Nearest and Nearest must not exceed 1.
type Thresholds struct {
	Cubic   float32
	Nearest float32
}

// DefaultThresholds: cubic below 0.8, nearest within 5% below unity.
var DefaultThresholds = Thresholds{Cubic: 0.8, Nearest: 0.95}

// Validate reports whether the thresholds are ordered.
func (t Thresholds) Validate() error {
	if t.Cubic < 0 || t.Cubic > t.Nearest || t.Nearest > 1 {
		return fmt.Errorf("%w: cubic=%v nearest=%v", ErrInvalidThresholds, t.Cubic, t.Nearest)
	}

	return nil
}

// Select picks the interpolation order for a frequency factor.
func (t Thresholds) Select(fact float32) Method {
	switch {
	case fact < t.Cubic:
		return MethodCubic
	case fact < t.Nearest:
		return MethodLinear
	case fact <= 1:
		return MethodNearest
	default:
		return MethodSkip
	}
}
