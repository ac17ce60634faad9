package document

// SplitResult is the outcome of dividing a document at a node boundary.
// Kept stays on the current page; Overflow moves to the next one.
type SplitResult struct {
	Kept     Document    `json:"kept"`
	Overflow []BlockNode `json:"overflow"`
}

// CalculateSplitPoint returns the number of nodes to keep on the current
// page when a document of n nodes overflows. Larger documents give up more
// trailing nodes per pass, since relocating a single node from a large page
// tends to leave it still overflowing and burns a pagination attempt.
//
//	n > 20      keep n-3
//	10 < n <= 20 keep n-2
//	otherwise   keep n-1
//
// The result is floored at 1: a page always keeps at least one node.
func CalculateSplitPoint(n int) int {
	var keep int
	switch {
	case n > 20:
		keep = n - 3
	case n > 10:
		keep = n - 2
	default:
		keep = n - 1
	}
	if keep < 1 {
		keep = 1
	}
	return keep
}

// Split divides d at splitPoint: nodes [0, splitPoint) are kept, the rest
// overflow. splitPoint is clamped to [0, NodeCount]. If the kept side would
// be structurally empty, a single empty-paragraph placeholder is substituted
// so the page surface never holds an empty document. No node is ever lost
// or duplicated, and ids are carried through untouched.
func Split(d Document, splitPoint int) SplitResult {
	n := len(d.Nodes)
	if splitPoint < 0 {
		splitPoint = 0
	}
	if splitPoint > n {
		splitPoint = n
	}

	kept := make([]BlockNode, splitPoint)
	copy(kept, d.Nodes[:splitPoint])

	overflow := make([]BlockNode, n-splitPoint)
	copy(overflow, d.Nodes[splitPoint:])

	if len(kept) == 0 {
		return SplitResult{Kept: Empty(), Overflow: overflow}
	}
	return SplitResult{Kept: Document{Nodes: kept}, Overflow: overflow}
}

// Merge concatenates prefix and suffix into one document, order preserved.
// Neither input slice is modified; the result holds a fresh backing array.
// It is used both to push overflow onto the head of the next page and to
// pull a next page's leading nodes upward.
func Merge(prefix, suffix []BlockNode) Document {
	merged := make([]BlockNode, 0, len(prefix)+len(suffix))
	merged = append(merged, prefix...)
	merged = append(merged, suffix...)
	if len(merged) == 0 {
		return Empty()
	}
	return Document{Nodes: merged}
}
