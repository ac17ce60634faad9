package page

import (
	"sync"

	"github.com/dshills/pageflow/internal/document"
)

// MemorySurface is an in-memory Surface implementation. It backs the
// terminal demo and tests; a host application substitutes its real editor
// surface via SurfaceFactory.
type MemorySurface struct {
	mu        sync.Mutex
	doc       document.Document
	sel       Selection
	editable  bool
	focused   bool
	destroyed bool
	handlers  Handlers
}

// NewMemorySurface creates a surface holding initial with handlers
// installed. Handlers fire synchronously after each mutation, mirroring how
// editor surfaces deliver change callbacks.
func NewMemorySurface(initial document.Document, handlers Handlers) *MemorySurface {
	if initial.NodeCount() == 0 {
		initial = document.Empty()
	}
	return &MemorySurface{
		doc:      initial,
		sel:      Selection{From: 1, To: 1},
		handlers: handlers,
	}
}

// MemoryFactory returns a SurfaceFactory producing MemorySurfaces.
func MemoryFactory() SurfaceFactory {
	return func(initial document.Document, handlers Handlers) Surface {
		return NewMemorySurface(initial, handlers)
	}
}

// GetDocument returns a snapshot of the current document.
func (s *MemorySurface) GetDocument() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// SetDocument replaces the content and fires OnContentChanged.
func (s *MemorySurface) SetDocument(doc document.Document) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	if doc.NodeCount() == 0 {
		doc = document.Empty()
	}
	s.doc = doc
	// Keep the selection inside the new document.
	max := doc.Size() - 1
	if max < 1 {
		max = 1
	}
	if s.sel.From > max {
		s.sel.From = max
	}
	if s.sel.To > max {
		s.sel.To = max
	}
	handler := s.handlers.OnContentChanged
	s.mu.Unlock()

	if handler != nil {
		handler(s)
	}
}

// GetSelection returns the current selection.
func (s *MemorySurface) GetSelection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SetSelection collapses the selection to offset and fires
// OnSelectionChanged.
func (s *MemorySurface) SetSelection(offset int) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	if offset < 1 {
		offset = 1
	}
	s.sel = Selection{From: offset, To: offset}
	handler := s.handlers.OnSelectionChanged
	s.mu.Unlock()

	if handler != nil {
		handler(s)
	}
}

// SetEditable toggles input.
func (s *MemorySurface) SetEditable(editable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editable = editable
}

// Editable reports whether the surface accepts input.
func (s *MemorySurface) Editable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editable
}

// Focus marks this surface focused.
func (s *MemorySurface) Focus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = true
}

// Blur removes focus. Only the demo and tests need this; real surfaces
// manage focus through the host.
func (s *MemorySurface) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = false
}

// Focused reports whether Focus was called more recently than Blur.
func (s *MemorySurface) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// Destroy releases the surface.
func (s *MemorySurface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
	s.doc = document.Document{}
	s.handlers = Handlers{}
}

// Destroyed reports whether Destroy has been called.
func (s *MemorySurface) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}
