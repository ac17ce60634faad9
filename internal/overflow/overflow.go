// Package overflow implements the overflow detection policy and the
// upward-merge planner. Both are pure: they consume measured heights and
// produce decisions, and the caller persists any state.
package overflow

import "github.com/dshills/pageflow/internal/document"

// Result is the outcome of an overflow check.
type Result struct {
	// HasOverflow is true when content exceeds the usable capacity.
	HasOverflow bool
	// Height is the measured content height that was checked, in pixels.
	Height int
}

// Detector applies the overflow policy for a fixed page capacity.
type Detector struct {
	capacity int
	buffer   int
}

// NewDetector creates a detector for the given content capacity and
// overflow buffer, both in pixels. The buffer keeps pages hovering exactly
// at the boundary from flapping between states.
func NewDetector(capacity, buffer int) Detector {
	return Detector{capacity: capacity, buffer: buffer}
}

// Detect reports whether the measured height overflows the page.
func (d Detector) Detect(height int) Result {
	return Result{
		HasOverflow: height > d.capacity-d.buffer,
		Height:      height,
	}
}

// Capacity returns the detector's content capacity in pixels.
func (d Detector) Capacity() int {
	return d.capacity
}

// NodeMeasurer returns the rendered height of the node with the given id.
// The second result is false when the node cannot be measured (not mounted,
// not found), in which case the planner substitutes its fallback estimate.
type NodeMeasurer func(nodeID string) (int, bool)

// MergePlan describes which leading nodes of the next page fit into the
// current page's free space.
type MergePlan struct {
	// CanMerge is true when at least one node fits.
	CanMerge bool
	// Nodes are the summaries of the nodes to pull up, in order.
	Nodes []document.Summary
	// HeightPx is the accumulated measured height of Nodes.
	HeightPx int
}

// Planner decides upward merges for a fixed capacity and merge buffer.
type Planner struct {
	capacity       int
	mergeBuffer    int
	fallbackHeight int
}

// NewPlanner creates an upward-merge planner. fallbackHeight estimates
// nodes the measurer cannot see.
func NewPlanner(capacity, mergeBuffer, fallbackHeight int) Planner {
	return Planner{
		capacity:       capacity,
		mergeBuffer:    mergeBuffer,
		fallbackHeight: fallbackHeight,
	}
}

// Plan walks the next page's nodes in order, accumulating real measured
// heights, and includes a node only while the running total stays within
// the current page's remaining space. It stops at the first node that would
// exceed it: pulling a later, smaller node past a skipped one would reorder
// content.
//
// Per-node measurement (not an average) is what prevents merge-then-
// overflow cycles: a plan is only as good as the heights it sums.
func (p Planner) Plan(currentHeight int, next []document.Summary, measure NodeMeasurer) MergePlan {
	remaining := p.capacity - currentHeight - p.mergeBuffer
	if remaining <= 0 || len(next) == 0 {
		return MergePlan{}
	}

	var (
		picked []document.Summary
		total  int
	)
	for _, sum := range next {
		h := p.fallbackHeight
		if measure != nil {
			if measured, ok := measure(sum.ID); ok {
				h = measured
			}
		}
		if total+h > remaining {
			break
		}
		total += h
		picked = append(picked, sum)
	}

	if len(picked) == 0 {
		return MergePlan{}
	}
	return MergePlan{CanMerge: true, Nodes: picked, HeightPx: total}
}
