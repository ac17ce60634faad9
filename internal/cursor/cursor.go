// Package cursor computes cursor positions relative to split boundaries
// and decides where editing focus lands after a page mutation.
//
// Offsets use the document token model (see package document): valid cursor
// offsets within a page's document lie in [1, Size()-1].
package cursor

import "github.com/dshills/pageflow/internal/document"

// State captures a cursor offset together with the document size it was
// observed against. It is meaningful only relative to that snapshot.
type State struct {
	Offset       int
	DocumentSize int
}

// Analysis relates a cursor position to a split boundary.
type Analysis struct {
	// CursorOffset is the offset that was analyzed.
	CursorOffset int
	// SplitOffset is the document offset at which the split point falls.
	SplitOffset int
	// InFirstPart is true when the cursor sits at or before the split.
	InFirstPart bool
	// Preserve is true when focus should stay on the shrunk current page.
	Preserve bool
}

// Analyze computes where cursorOffset falls relative to splitting doc at
// splitPoint (a node index). The cursor belongs to the first part when its
// offset does not pass the split offset.
func Analyze(doc document.Document, splitPoint, cursorOffset int) Analysis {
	splitOffset := doc.OffsetOf(splitPoint)
	inFirst := cursorOffset <= splitOffset
	return Analysis{
		CursorOffset: cursorOffset,
		SplitOffset:  splitOffset,
		InFirstPart:  inFirst,
		Preserve:     inFirst,
	}
}

// Restore clamps a remembered cursor offset into the valid range of a
// document of newSize: clamp(min(offset, newSize-1), 1, newSize-1).
func Restore(offset, newSize int) int {
	pos := offset
	if pos > newSize-1 {
		pos = newSize - 1
	}
	if pos < 1 {
		pos = 1
	}
	return pos
}

// ShouldJump reports whether focus should follow content onto the next page
// after a split: true only when the cursor resolves inside the document's
// last block. A cursor parked mid-document stays put even if the split
// moved later nodes away.
func ShouldJump(doc document.Document, cursorOffset int) bool {
	n := doc.NodeCount()
	if n == 0 {
		return false
	}
	return cursorOffset >= doc.OffsetOf(n-1)
}

// IsStartDeletion reports whether a content change looks like a deletion at
// the very start of a page: the document shrank and the cursor sits within
// the first couple of offsets. The orchestrator additionally requires that
// the page is not the first one and still has non-whitespace content before
// moving focus to the previous page.
func IsStartDeletion(prevSize, newSize, offset int) bool {
	return newSize < prevSize && offset <= 2
}
