// Package policy selects split points for overflowing pages. The built-in
// rule matches the engine default; hosts can override it with a small Lua
// script for product experiments without rebuilding.
package policy

import "github.com/dshills/pageflow/internal/document"

// SplitPolicy decides how many nodes an overflowing page keeps.
type SplitPolicy interface {
	// SplitPoint returns the number of nodes to keep for a page of n
	// nodes. Implementations must return a value in [1, n-1] for n >= 2;
	// the engine clamps anything else.
	SplitPoint(n int) int
}

// Default is the built-in split policy.
type Default struct{}

// SplitPoint applies the standard rule: larger pages give up more trailing
// nodes per pass.
func (Default) SplitPoint(n int) int {
	return document.CalculateSplitPoint(n)
}

// Clamp forces a policy result into the valid range for n nodes.
func Clamp(splitPoint, n int) int {
	if n < 2 {
		return 1
	}
	if splitPoint < 1 {
		return 1
	}
	if splitPoint > n-1 {
		return n - 1
	}
	return splitPoint
}
