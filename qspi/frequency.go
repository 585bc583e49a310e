package qspi

import (
	"quadspi-go/errcode"
	"quadspi-go/x/mathx"
)

// Prescaler limits: the controller divides its source clock by an integer
// in [1,256], programmed as divider-1.
const (
	minDivider = 1
	maxDivider = 256
)

// dividerFor computes the integer clock divider for a requested SCLK
// frequency. Truncating division: the achieved frequency is the nearest
// one at or below the request that the prescaler can produce.
func dividerFor(busClockHz, hz uint32) (uint32, error) {
	if hz == 0 {
		return 0, errcode.InvalidParams
	}
	div := busClockHz / hz
	if !mathx.Between(div, minDivider, maxDivider) {
		return 0, errcode.InvalidParams
	}
	return div, nil
}
