package earnings

import "math"

// Compute returns the amount owed for a clip: views * cpm per 1000 views,
// rounded half-up to two decimal places. Inputs must already be sanitized
// (non-negative); Compute itself is pure and total.
func Compute(views int64, cpm float64) float64 {
	// views*cpm/10 keeps exact .5 halves representable before rounding,
	// which views*cpm/1000*100 does not.
	return math.Round(float64(views)*cpm/10) / 100
}

// Round normalizes a monetary amount to two decimal places. Aggregations
// that sum many two-decimal values pass their result through here to shed
// accumulated floating point noise.
func Round(amount float64) float64 {
	return math.Round(amount*100) / 100
}
