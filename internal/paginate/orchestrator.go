package paginate

import (
	"github.com/dshills/pageflow/internal/config"
	"github.com/dshills/pageflow/internal/cursor"
	"github.com/dshills/pageflow/internal/document"
	"github.com/dshills/pageflow/internal/logging"
	"github.com/dshills/pageflow/internal/offload"
	"github.com/dshills/pageflow/internal/overflow"
	"github.com/dshills/pageflow/internal/page"
)

// Stats is a snapshot of orchestrator activity.
type Stats struct {
	VisiblePages  int
	PoolSize      int
	Paginations   int
	Merges        int
	Halts         int
	Deactivations int
}

// Orchestrator is the pagination state machine. It owns the page pool and
// reacts to surface events: overflowing pages are split and their tail
// pushed down, underfull pages pull content back up, and editing focus
// follows the content it was in.
//
// Not goroutine-safe: events and scheduler drains must arrive on one
// goroutine.
type Orchestrator struct {
	cfg      config.Config
	log      *logging.Logger
	pool     *page.Pool
	probe    Probe
	off      *offload.Service
	sched    Scheduler
	detector overflow.Detector
	planner  overflow.Planner

	// muted suppresses event handling during self-inflicted mutations.
	muted bool

	prevSizes map[string]int  // page id -> last observed document size
	pending   map[string]bool // page ids with a check already scheduled
	phases    map[string]Phase

	stats Stats
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// New creates an orchestrator. The pool is built internally so its
// surfaces are born with the orchestrator's event handlers installed; call
// Start to preload pages. probe measures rendered geometry, off runs the
// heavy operations, and sched defers checks out of the triggering turn.
//
// probe may be nil at construction and supplied later with SetProbe, for
// probes that need the orchestrator's own pool (such as ModelProbe).
func New(cfg config.Config, factory page.SurfaceFactory, probe Probe, off *offload.Service, sched Scheduler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		log:       logging.Default(),
		probe:     probe,
		off:       off,
		sched:     sched,
		prevSizes: make(map[string]int),
		pending:   make(map[string]bool),
		phases:    make(map[string]Phase),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.WithComponent("paginate")

	capacity := cfg.Geometry.ContentCapacity()
	o.detector = overflow.NewDetector(capacity, cfg.Pagination.OverflowBufferPx)
	o.planner = overflow.NewPlanner(capacity, cfg.Pagination.MergeBufferPx, cfg.Pagination.FallbackNodeHeightPx)

	handlers := page.Handlers{
		OnContentChanged:   o.ContentChanged,
		OnSelectionChanged: o.SelectionChanged,
	}
	o.pool = page.NewPool(factory, handlers, cfg.Pool, o.log)
	return o
}

// Start preloads the pool. The first page comes up visible and editable.
func (o *Orchestrator) Start() {
	o.pool.Create(o.cfg.Pool.PreloadCount)
	if first := o.pool.Page(0); first != nil {
		o.prevSizes[first.ID] = first.Surface.GetDocument().Size()
	}
}

// Teardown destroys every page surface.
func (o *Orchestrator) Teardown() {
	o.pool.Teardown()
}

// Pool exposes the page pool for hosts that render it.
func (o *Orchestrator) Pool() *page.Pool {
	return o.pool
}

// SetProbe installs the layout probe. Must be called before Start when New
// was given a nil probe.
func (o *Orchestrator) SetProbe(p Probe) {
	o.probe = p
}

// Stats returns an activity snapshot.
func (o *Orchestrator) Stats() Stats {
	s := o.stats
	s.VisiblePages = o.pool.VisibleCount()
	s.PoolSize = o.pool.Size()
	return s
}

// Phase returns the page's current check phase.
func (o *Orchestrator) Phase(pageID string) Phase {
	return o.phases[pageID]
}

// ContentChanged is the surface content-change handler. It tags newly
// observed nodes, detects deletions at the start of a page, and schedules
// a batched overflow check.
func (o *Orchestrator) ContentChanged(s page.Surface) {
	if o.muted {
		return
	}
	i := o.pool.IndexOf(s)
	if i < 0 {
		return
	}
	d := o.pool.Page(i)
	if !d.Visible {
		return
	}

	doc := s.GetDocument()
	if assigned := document.EnsureIDs(doc.Nodes); assigned > 0 {
		o.applyDocument(s, doc)
	}

	newSize := doc.Size()
	prevSize, seen := o.prevSizes[d.ID]
	o.prevSizes[d.ID] = newSize

	sel := s.GetSelection()
	if seen && i > 0 && cursor.IsStartDeletion(prevSize, newSize, sel.From) && doc.HasContent() {
		o.focusPreviousEnd(i)
	}

	o.scheduleCheck(i)
}

// SelectionChanged is the surface selection-change handler. It retargets
// the active page to wherever the selection lives.
func (o *Orchestrator) SelectionChanged(s page.Surface) {
	if o.muted {
		return
	}
	if i := o.pool.IndexOf(s); i >= 0 && i < o.pool.VisibleCount() {
		o.pool.SetActive(i)
	}
}

// AddPage makes one more page visible at the end of the document.
func (o *Orchestrator) AddPage() error {
	_, err := o.pool.Activate(o.pool.VisibleCount())
	return err
}

// DeletePage removes page i and its content from the live document.
func (o *Orchestrator) DeletePage(i int) error {
	if o.pool.VisibleCount() <= 1 {
		return ErrLastPage
	}
	d := o.pool.Page(i)
	o.muted = true
	err := o.pool.Deactivate(i)
	o.muted = false
	if err != nil {
		return err
	}
	o.stats.Deactivations++
	delete(o.prevSizes, d.ID)
	if active := o.pool.Page(o.pool.Active()); active != nil {
		active.Surface.Focus()
	}
	return nil
}

// SetCurrentPage moves focus to page i.
func (o *Orchestrator) SetCurrentPage(i int) error {
	if i < 0 || i >= o.pool.VisibleCount() {
		return page.ErrNoSuchPage
	}
	o.pool.SetActive(i)
	o.pool.Page(i).Surface.Focus()
	return nil
}

// ResetPaginationCounts zeroes pagination bookkeeping on every visible
// page, re-arming pages halted by the attempt cap.
func (o *Orchestrator) ResetPaginationCounts() {
	for _, d := range o.pool.VisiblePages(0) {
		d.ResetPagination()
	}
}

// Execute runs a command against the active page's surface. Mutations made
// by the command flow through the normal content-change path.
func (o *Orchestrator) Execute(cmd func(page.Surface) error) error {
	d := o.pool.Page(o.pool.Active())
	if d == nil {
		return ErrNoActivePage
	}
	return cmd(d.Surface)
}

// scheduleCheck queues a deferred overflow check for page i, coalescing
// repeat requests for the same page.
func (o *Orchestrator) scheduleCheck(i int) {
	d := o.pool.Page(i)
	if d == nil || !d.Visible {
		return
	}
	if o.pending[d.ID] {
		return
	}
	o.pending[d.ID] = true
	o.phases[d.ID] = PhaseMutationApplied

	pageID := d.ID
	gen := d.Generation()
	o.sched.Defer(func() { o.runCheck(pageID, gen) })
}

// runCheck performs the deferred overflow check for one page. The page is
// re-resolved by id and generation so results aimed at a page that was
// deactivated or recycled in the meantime are discarded.
func (o *Orchestrator) runCheck(pageID string, gen uint64) {
	delete(o.pending, pageID)

	i, d := o.pageByID(pageID)
	if d == nil || !d.Visible || d.Generation() != gen {
		o.log.Debug("discarding stale check for page %s", pageID)
		delete(o.phases, pageID)
		return
	}
	o.phases[pageID] = PhaseLayoutSettled

	if o.probe == nil {
		o.phases[pageID] = PhaseIdle
		return
	}
	height, err := o.probe.MeasureContainer(pageID)
	if err != nil {
		// Layout not mounted: skip this cycle, retry on the next change.
		o.log.Debug("measurement unavailable for page %d: %v", i, err)
		o.phases[pageID] = PhaseIdle
		return
	}

	res := o.detector.Detect(height)
	d.ContentHeightPx = res.Height
	d.HasOverflow = res.HasOverflow
	o.phases[pageID] = PhaseOverflowChecked

	switch {
	case res.HasOverflow && d.AutoPaginating:
		// A pagination pass for this page is already in flight.

	case res.HasOverflow && d.PaginationCount >= o.cfg.Pagination.MaxAttempts:
		o.stats.Halts++
		o.log.Warn("page %d still overflows after %d attempts, halting auto-pagination",
			i, d.PaginationCount)

	case res.HasOverflow:
		o.autoPaginate(i)

	default:
		d.ResetPagination()
		o.tryMergeUp(i)
	}

	o.phases[pageID] = PhaseActionDecided
	o.phases[pageID] = PhaseIdle
}

// autoPaginate splits page i and pushes its overflow onto the next page.
func (o *Orchestrator) autoPaginate(i int) {
	d := o.pool.Page(i)
	s := d.Surface

	d.AutoPaginating = true
	d.PaginationCount++
	defer func() { d.AutoPaginating = false }()

	doc := s.GetDocument()
	n := doc.NodeCount()
	if n < 2 {
		// Single oversized node: nothing to split. The attempt still
		// counts toward the cap so this page cannot loop forever.
		o.log.Warn("page %d overflows with a single node, cannot split", i)
		return
	}

	sp := o.off.CalculateSplitPoint(n)
	if sp < 1 {
		sp = 1
	}
	if sp > n-1 {
		sp = n - 1
	}

	res := o.off.SplitDocument(doc, sp)
	sel := s.GetSelection()
	analysis := cursor.Analyze(doc, sp, sel.From)

	o.applyDocument(s, res.Kept)
	o.prevSizes[d.ID] = res.Kept.Size()

	next, err := o.pool.Activate(i + 1)
	if err != nil {
		// Should not happen: activation expands on demand. Restore the
		// original document rather than losing the overflow nodes.
		o.log.Error("cannot activate page %d: %v", i+1, err)
		o.applyDocument(s, doc)
		o.prevSizes[d.ID] = doc.Size()
		return
	}

	nextDoc := next.Surface.GetDocument()
	var merged document.Document
	if nextDoc.IsBlank() {
		merged = document.New(res.Overflow...)
	} else {
		merged = o.off.MergeContent(res.Overflow, nextDoc.Nodes)
	}
	o.applyDocument(next.Surface, merged)
	o.prevSizes[next.ID] = merged.Size()

	o.stats.Paginations++
	o.log.Debug("page %d split at %d/%d nodes, %d pushed down (attempt %d)",
		i, sp, n, len(res.Overflow), d.PaginationCount)

	if analysis.Preserve {
		o.setSelectionMuted(s, cursor.Restore(analysis.CursorOffset, res.Kept.Size()))
		s.Focus()
	} else if cursor.ShouldJump(doc, analysis.CursorOffset) {
		o.pool.SetActive(i + 1)
		next.Surface.Focus()
		landing := cursor.Restore(analysis.CursorOffset-analysis.SplitOffset, merged.Size())
		o.setSelectionMuted(next.Surface, landing)
	}

	// Recheck the shrunk page (it may resolve, or need another pass) and
	// cascade onto the page that just received content.
	o.scheduleCheck(i)
	o.scheduleCheck(i + 1)
}

// tryMergeUp pulls leading nodes of page i+1 into page i while they fit.
func (o *Orchestrator) tryMergeUp(i int) {
	next := i + 1
	if next >= o.pool.VisibleCount() {
		return
	}
	d := o.pool.Page(i)
	nd := o.pool.Page(next)

	nextDoc := nd.Surface.GetDocument()
	if nextDoc.IsBlank() {
		o.deactivateEmpty(next)
		return
	}

	sums := o.off.AnalyzeNodes(nextDoc)
	plan := o.planner.Plan(d.ContentHeightPx, sums, o.probe.MeasureNode)
	if !plan.CanMerge {
		return
	}

	k := len(plan.Nodes)
	moved := nextDoc.Nodes[:k]
	rest := nextDoc.Nodes[k:]

	curDoc := d.Surface.GetDocument()
	merged := o.off.MergeContent(curDoc.Nodes, moved)
	o.applyDocument(d.Surface, merged)
	o.prevSizes[d.ID] = merged.Size()
	d.ContentHeightPx += plan.HeightPx

	o.stats.Merges++
	o.log.Debug("pulled %d nodes (%dpx) from page %d up to page %d", k, plan.HeightPx, next, i)

	if len(rest) == 0 {
		o.deactivateEmpty(next)
		return
	}

	remaining := make([]document.BlockNode, len(rest))
	copy(remaining, rest)
	restDoc := document.New(remaining...)
	o.applyDocument(nd.Surface, restDoc)
	o.prevSizes[nd.ID] = restDoc.Size()

	// The donor shrank; it may now pull from the page after it.
	o.scheduleCheck(next)
}

// deactivateEmpty retires an emptied page and moves focus to the end of
// the page before it. The first page and the last visible page stay.
func (o *Orchestrator) deactivateEmpty(i int) {
	if i == 0 || o.pool.VisibleCount() <= 1 {
		return
	}
	wasActive := o.pool.Active() == i
	d := o.pool.Page(i)

	o.muted = true
	err := o.pool.Deactivate(i)
	o.muted = false
	if err != nil {
		o.log.Error("deactivating empty page %d: %v", i, err)
		return
	}
	o.stats.Deactivations++
	delete(o.prevSizes, d.ID)

	prev := o.pool.Page(i - 1)
	if wasActive && prev != nil {
		o.pool.SetActive(i - 1)
		prev.Surface.Focus()
		prevDoc := prev.Surface.GetDocument()
		o.setSelectionMuted(prev.Surface, cursor.Restore(prevDoc.Size(), prevDoc.Size()))
	}
}

// focusPreviousEnd handles a deletion at the start of page i: focus moves
// to the previous page with the cursor at its end.
func (o *Orchestrator) focusPreviousEnd(i int) {
	prev := o.pool.Page(i - 1)
	if prev == nil {
		return
	}
	o.pool.SetActive(i - 1)
	prev.Surface.Focus()
	prevDoc := prev.Surface.GetDocument()
	o.setSelectionMuted(prev.Surface, cursor.Restore(prevDoc.Size(), prevDoc.Size()))
	o.log.Debug("deletion at start of page %d, focus moved to end of page %d", i, i-1)
}

// applyDocument writes a document without re-entering the event handlers.
func (o *Orchestrator) applyDocument(s page.Surface, doc document.Document) {
	o.muted = true
	s.SetDocument(doc)
	o.muted = false
}

// setSelectionMuted moves a selection without re-entering the handlers.
func (o *Orchestrator) setSelectionMuted(s page.Surface, offset int) {
	o.muted = true
	s.SetSelection(offset)
	o.muted = false
}

func (o *Orchestrator) pageByID(pageID string) (int, *page.Descriptor) {
	for i := 0; i < o.pool.Size(); i++ {
		d := o.pool.Page(i)
		if d.ID == pageID {
			return i, d
		}
	}
	return -1, nil
}
