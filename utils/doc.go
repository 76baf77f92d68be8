// SPDX-License-Identifier: EPL-2.0

// Package utils holds per-sample helpers shared by the batch primitives:
// the Catmull-Rom kernel and conversions between normalized floats, 16-bit
// PCM and the 24-bit-in-int32 mixing format.
package utils
