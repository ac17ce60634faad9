package paginate

import (
	"unicode/utf8"

	"github.com/dshills/pageflow/internal/document"
	"github.com/dshills/pageflow/internal/page"
)

// Probe measures rendered geometry. The engine never reads layout
// directly; a host supplies a probe over its real rendering surface, and
// tests supply a deterministic one.
type Probe interface {
	// MeasureContainer returns the content height of the page in pixels.
	// It returns an error when the page is not mounted; the orchestrator
	// skips that cycle's check and retries on the next content change.
	MeasureContainer(pageID string) (int, error)

	// MeasureNode returns the rendered height of one node. The second
	// result is false when the node cannot be measured.
	MeasureNode(nodeID string) (int, bool)
}

// HeightModel estimates node heights from text metrics. It gives the demo
// and tests deterministic geometry without a rendering surface.
type HeightModel struct {
	// BaseNodePx is the fixed per-node cost (margins, padding).
	BaseNodePx int
	// LineHeightPx is the height of one wrapped text line.
	LineHeightPx int
	// CharsPerLine is the wrap width in characters.
	CharsPerLine int
}

// DefaultHeightModel approximates a 16px-font A4 page.
func DefaultHeightModel() HeightModel {
	return HeightModel{
		BaseNodePx:   16,
		LineHeightPx: 24,
		CharsPerLine: 80,
	}
}

// NodeHeight estimates one node's rendered height.
func (m HeightModel) NodeHeight(n document.BlockNode) int {
	runes := utf8.RuneCountInString(n.Text)
	lines := 1
	if m.CharsPerLine > 0 && runes > m.CharsPerLine {
		lines = (runes + m.CharsPerLine - 1) / m.CharsPerLine
	}
	h := m.BaseNodePx + lines*m.LineHeightPx
	for _, c := range n.Children {
		h += m.NodeHeight(c)
	}
	return h
}

// DocumentHeight estimates a document's rendered content height.
func (m HeightModel) DocumentHeight(d document.Document) int {
	h := 0
	for _, n := range d.Nodes {
		h += m.NodeHeight(n)
	}
	return h
}

// ModelProbe implements Probe over a page pool using a HeightModel. Only
// visible pages are considered mounted.
type ModelProbe struct {
	pool  *page.Pool
	model HeightModel
}

// NewModelProbe creates a probe over pool using model.
func NewModelProbe(pool *page.Pool, model HeightModel) *ModelProbe {
	return &ModelProbe{pool: pool, model: model}
}

// MeasureContainer sums the modeled heights of the page's nodes.
func (p *ModelProbe) MeasureContainer(pageID string) (int, error) {
	for _, d := range p.pool.VisiblePages(0) {
		if d.ID == pageID {
			return p.model.DocumentHeight(d.Surface.GetDocument()), nil
		}
	}
	return 0, ErrNotMounted
}

// MeasureNode finds the node by id on any visible page and models its
// height.
func (p *ModelProbe) MeasureNode(nodeID string) (int, bool) {
	for _, d := range p.pool.VisiblePages(0) {
		for _, n := range d.Surface.GetDocument().Nodes {
			if n.ID == nodeID {
				return p.model.NodeHeight(n), true
			}
		}
	}
	return 0, false
}
