// SPDX-License-Identifier: EPL-2.0

package envelope

import (
	"fmt"
	"strings"
)

type Shape uint8

const (
	ShapeFixed Shape = iota
	ShapeTriangle
	ShapeSine
	ShapeSquare
	ShapeSawtooth
	ShapeEnvelopeFollow
	ShapeCompressor
)

var shapeNames = [...]string{
	ShapeFixed:          "fixed",
	ShapeTriangle:       "triangle",
	ShapeSine:           "sine",
	ShapeSquare:         "square",
	ShapeSawtooth:       "sawtooth",
	ShapeEnvelopeFollow: "envelope-follow",
	ShapeCompressor:     "compressor",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// Periodic reports whether the shape ignores the audio content.
func (s Shape) Periodic() bool {
	return s >= ShapeTriangle && s <= ShapeSawtooth
}

// ParseShape accepts the names returned by String; "gain-follow" and
// "auto-gain" are aliases of envelope-follow.
func ParseShape(name string) (Shape, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "gain-follow", "auto-gain", "follow":
		return ShapeEnvelopeFollow, nil
	case "constant":
		return ShapeFixed, nil
	}
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}
