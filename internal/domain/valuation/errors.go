package valuation

import "errors"

// Sentinel kinds for valuation errors.
var (
	ErrUnknownDirectionRule = errors.New("unknown direction rule")
)
