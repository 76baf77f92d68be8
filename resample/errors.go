// SPDX-License-Identifier: EPL-2.0

package resample

import "errors"

var (
	ErrInvalidThresholds = errors.New("resample thresholds out of order")
)
