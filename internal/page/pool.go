package page

import (
	"github.com/dshills/pageflow/internal/config"
	"github.com/dshills/pageflow/internal/document"
	"github.com/dshills/pageflow/internal/logging"

	"github.com/google/uuid"
)

// Descriptor tracks one page surface and its pagination state.
//
// Descriptors are owned by the Pool and mutated only on the orchestrator's
// goroutine.
type Descriptor struct {
	// ID is the page's stable identity, used by the layout probe.
	ID string

	// Surface is the underlying editing surface.
	Surface Surface

	// Visible is true while the page is part of the live document.
	Visible bool

	// Preloaded is true for descriptors created ahead of need.
	Preloaded bool

	// HasOverflow is the last overflow check's verdict.
	HasOverflow bool

	// ContentHeightPx is the last measured content height.
	ContentHeightPx int

	// AutoPaginating guards against re-entrant pagination of one page.
	AutoPaginating bool

	// PaginationCount counts automatic split attempts since the last time
	// overflow resolved.
	PaginationCount int

	generation uint64
}

// Generation returns the descriptor's reuse generation. It bumps every time
// the page is deactivated, so results computed against an earlier life of
// the page can be recognized as stale.
func (d *Descriptor) Generation() uint64 {
	return d.generation
}

// ResetPagination zeroes the overflow bookkeeping after overflow resolves
// or on explicit reset.
func (d *Descriptor) ResetPagination() {
	d.HasOverflow = false
	d.AutoPaginating = false
	d.PaginationCount = 0
}

// Pool owns the ordered set of page descriptors. The visible descriptors
// always form a contiguous prefix, and at most one page is active.
//
// Pool is not goroutine-safe: the orchestrator's goroutine is its sole
// owner, per the engine's single-threaded mutation model.
type Pool struct {
	factory  SurfaceFactory
	handlers Handlers
	cfg      config.Pool
	log      *logging.Logger

	pages  []*Descriptor
	active int
}

// NewPool creates an empty pool. Surfaces are built by factory with
// handlers installed.
func NewPool(factory SurfaceFactory, handlers Handlers, cfg config.Pool, log *logging.Logger) *Pool {
	if log == nil {
		log = logging.Null
	}
	return &Pool{
		factory:  factory,
		handlers: handlers,
		cfg:      cfg,
		log:      log.WithComponent("pool"),
	}
}

// Create allocates count inactive descriptors wrapping fresh empty
// surfaces. If the pool was previously empty, the first created page
// becomes visible and editable.
func (p *Pool) Create(count int) {
	wasEmpty := len(p.pages) == 0

	for i := 0; i < count; i++ {
		p.pages = append(p.pages, p.newDescriptor())
	}
	p.log.Debug("created %d pages, pool size %d", count, len(p.pages))

	if wasEmpty && len(p.pages) > 0 {
		first := p.pages[0]
		first.Visible = true
		first.Preloaded = false
		first.Surface.SetEditable(true)
		p.active = 0
	}
}

func (p *Pool) newDescriptor() *Descriptor {
	d := &Descriptor{
		ID:        uuid.NewString(),
		Preloaded: true,
	}
	d.Surface = p.factory(document.Empty(), p.handlers)
	d.Surface.SetEditable(false)
	return d
}

// Size returns the total number of descriptors.
func (p *Pool) Size() int {
	return len(p.pages)
}

// VisibleCount returns the number of visible pages.
func (p *Pool) VisibleCount() int {
	count := 0
	for _, d := range p.pages {
		if !d.Visible {
			break
		}
		count++
	}
	return count
}

// VisiblePages returns the ordered visible prefix, capped at max when
// max > 0.
func (p *Pool) VisiblePages(max int) []*Descriptor {
	count := p.VisibleCount()
	if max > 0 && max < count {
		count = max
	}
	out := make([]*Descriptor, count)
	copy(out, p.pages[:count])
	return out
}

// Page returns the descriptor at index i, or nil when out of range.
func (p *Pool) Page(i int) *Descriptor {
	if i < 0 || i >= len(p.pages) {
		return nil
	}
	return p.pages[i]
}

// IndexOf returns the pool index of the page holding s, or -1.
func (p *Pool) IndexOf(s Surface) int {
	for i, d := range p.pages {
		if d.Surface == s {
			return i
		}
	}
	return -1
}

// Active returns the index of the active (focused) page.
func (p *Pool) Active() int {
	return p.active
}

// SetActive records i as the active page. Out-of-range or non-visible
// indexes are ignored.
func (p *Pool) SetActive(i int) {
	if i < 0 || i >= p.VisibleCount() {
		return
	}
	p.active = i
}

// Expand appends the configured batch of inactive descriptors.
func (p *Pool) Expand() {
	for i := 0; i < p.cfg.ExpandBatch; i++ {
		p.pages = append(p.pages, p.newDescriptor())
	}
	p.log.Info("pool expanded by %d to %d", p.cfg.ExpandBatch, len(p.pages))
}

// MaybeExpand grows the pool ahead of the visible frontier: once the
// visible count reaches the threshold and the next batch would not fit in
// the remaining spares, a batch is appended. Returns true when it expanded.
func (p *Pool) MaybeExpand() bool {
	visible := p.VisibleCount()
	if visible >= p.cfg.ExpandThreshold && visible+p.cfg.ExpandBatch > len(p.pages) {
		p.Expand()
		return true
	}
	return false
}

// Activate makes page i visible and editable. Activating an already
// visible page is a no-op. i must be at most the current visible count;
// anything further would leave invisible gaps. If no spare descriptor
// exists, the pool expands synchronously and activation is retried once.
func (p *Pool) Activate(i int) (*Descriptor, error) {
	visible := p.VisibleCount()
	if i < 0 || i > visible {
		return nil, ErrNonContiguous
	}
	if i < visible {
		return p.pages[i], nil
	}

	if i >= len(p.pages) {
		// Recoverable: grow and retry once.
		p.Expand()
		if i >= len(p.pages) {
			return nil, ErrExhausted
		}
	}

	d := p.pages[i]
	d.Visible = true
	d.Preloaded = false
	d.Surface.SetEditable(true)
	p.log.Debug("activated page %d (%s)", i, d.ID)

	p.MaybeExpand()
	return d, nil
}

// Deactivate hides page i, clears its content, and resets its pagination
// state. The descriptor is rotated behind the visible prefix so visibility
// stays contiguous, and its generation bumps so in-flight results against
// the old content are discarded.
func (p *Pool) Deactivate(i int) error {
	visible := p.VisibleCount()
	if i < 0 || i >= len(p.pages) {
		return ErrNoSuchPage
	}
	d := p.pages[i]
	if !d.Visible {
		return ErrNotVisible
	}

	d.Visible = false
	d.ResetPagination()
	d.ContentHeightPx = 0
	d.generation++
	d.Surface.SetEditable(false)
	d.Surface.SetDocument(document.Empty())
	d.Preloaded = true

	// Rotate behind the remaining visible pages.
	if i < visible-1 {
		copy(p.pages[i:], p.pages[i+1:])
		p.pages[len(p.pages)-1] = d
	}

	if p.active >= p.VisibleCount() && p.active > 0 {
		p.active = p.VisibleCount() - 1
	}

	p.log.Debug("deactivated page %d (%s)", i, d.ID)
	return nil
}

// Teardown destroys every surface and empties the pool.
func (p *Pool) Teardown() {
	for _, d := range p.pages {
		d.Surface.Destroy()
	}
	p.pages = nil
	p.active = 0
}
