// SPDX-License-Identifier: EPL-2.0

package audmix

import "errors"

var ErrInvalidTarget = errors.New("target rate and block size must be positive")
