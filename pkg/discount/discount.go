// Package discount holds the price computation applied to every variant of a
// matched product. Pure math, no I/O.
package discount

import "math"

// Variants priced above this after the source discount get the extra
// markdown when the caller opts in.
const extraMarkdownThreshold = 5000

const extraMarkdownRate = 0.85

// Compute turns a compare-at price and the source page's discount percentage
// into the final price. Total function: out-of-range inputs produce a
// mechanically computed output, validation is the caller's job.
func Compute(compareAtPrice int, discountPct float64, applyExtraMarkdown bool) int {
	discounted := int(math.Round(float64(compareAtPrice) * (100 - discountPct) / 100))
	if discounted > extraMarkdownThreshold && applyExtraMarkdown {
		return int(math.Round(float64(discounted) * extraMarkdownRate))
	}
	return discounted
}
