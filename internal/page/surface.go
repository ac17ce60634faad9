// Package page manages the pool of page editing surfaces: their
// descriptors, visibility and activation lifecycle, and proactive growth.
package page

import "github.com/dshills/pageflow/internal/document"

// Selection is a cursor range inside one surface's document.
type Selection struct {
	From int
	To   int
}

// Handlers receive surface events. The orchestrator installs these on every
// surface the pool creates.
type Handlers struct {
	// OnContentChanged fires after the surface's document mutated.
	OnContentChanged func(Surface)
	// OnSelectionChanged fires after the selection moved.
	OnSelectionChanged func(Surface)
}

// Surface is the rich-text editing surface collaborator. The engine never
// renders; it reads and writes documents and selections through this
// contract and leaves everything else to the host.
type Surface interface {
	// GetDocument returns the surface's current document snapshot.
	GetDocument() document.Document

	// SetDocument replaces the surface's content.
	SetDocument(document.Document)

	// GetSelection returns the current selection.
	GetSelection() Selection

	// SetSelection collapses the selection to the given offset.
	SetSelection(offset int)

	// SetEditable toggles whether the surface accepts input.
	SetEditable(bool)

	// Focus moves keyboard focus to this surface.
	Focus()

	// Destroy releases the surface. No calls are valid afterwards.
	Destroy()
}

// SurfaceFactory creates a surface holding initialContent with the given
// handlers installed.
type SurfaceFactory func(initialContent document.Document, handlers Handlers) Surface
