package offload

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/pageflow/internal/document"
	"github.com/dshills/pageflow/internal/logging"
)

// DefaultTaskTimeout bounds one offloaded task before synchronous fallback.
const DefaultTaskTimeout = 10 * time.Second

// Service is the background task offloader. It owns the channel, the
// task-correlation map, and the synchronous fallback path. Construct it
// explicitly and inject it into the orchestrator; it is not a singleton.
//
// All four operations return plain results: every channel failure mode is
// resolved internally by re-executing the computation inline.
type Service struct {
	exec    *Executor
	channel Channel
	timeout time.Duration
	log     *logging.Logger

	mu      sync.Mutex
	pending map[string]chan Response
	ready   bool
	pumpWG  sync.WaitGroup

	submitted atomic.Uint64
	resolved  atomic.Uint64
	timedOut  atomic.Uint64
	fellBack  atomic.Uint64
	faulted   atomic.Uint64
}

// Option configures a Service.
type Option func(*Service)

// WithChannel sets the background channel. Without one the service runs
// every task inline.
func WithChannel(ch Channel) Option {
	return func(s *Service) { s.channel = ch }
}

// WithTimeout sets the per-task timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSplitPointFunc overrides the split-point rule used by both the
// worker executor and the fallback path.
func WithSplitPointFunc(fn SplitPointFunc) Option {
	return func(s *Service) { s.exec = NewExecutor(fn) }
}

// NewService creates an offload service.
func NewService(opts ...Option) *Service {
	s := &Service{
		exec:    NewExecutor(nil),
		timeout: DefaultTaskTimeout,
		log:     logging.Null,
		pending: make(map[string]chan Response),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("offload")
	return s
}

// Executor returns the service's executor, for wiring a worker channel to
// the same computation (and split policy) the fallback path uses.
func (s *Service) Executor() *Executor {
	return s.exec
}

// Start brings the channel up. A channel initialization failure is not an
// error to the caller: the service logs it and stays in inline mode.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

func (s *Service) startLocked() error {
	if s.channel == nil {
		s.log.Debug("no background channel configured, running inline")
		return nil
	}
	if err := s.channel.Start(); err != nil {
		s.log.Warn("channel init failed, running inline: %v", err)
		s.ready = false
		return nil
	}

	responses := s.channel.Responses()
	s.pumpWG.Add(1)
	go s.pump(responses)
	s.ready = true
	return nil
}

// Stop shuts the channel down and fails any pending tasks so their callers
// fall back.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.ready = false
	ch := s.channel
	s.mu.Unlock()

	if ch != nil {
		_ = ch.Close()
	}

	done := make(chan struct{})
	go func() {
		s.pumpWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	s.failPendingLocked("service stopped")
	s.mu.Unlock()
	return nil
}

// Reinitialize restarts a faulted channel. Until it is called, every task
// after a fault executes synchronously.
func (s *Service) Reinitialize() error {
	s.mu.Lock()
	s.ready = false
	ch := s.channel
	s.mu.Unlock()

	if ch == nil {
		return ErrChannelUnavailable
	}
	_ = ch.Close()
	s.pumpWG.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

// Ready reports whether tasks are currently offloaded to the channel.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// pump routes channel responses to their waiting submitters.
func (s *Service) pump(responses <-chan Response) {
	defer s.pumpWG.Done()

	for resp := range responses {
		s.mu.Lock()
		waiter, ok := s.pending[resp.ID]
		delete(s.pending, resp.ID)
		s.mu.Unlock()

		if ok {
			waiter <- resp
		}
		// Responses with no waiter correspond to tasks that already timed
		// out and fell back; they are discarded.
	}
}

// fault marks the channel not-ready and fails all pending tasks, whose
// submitters then fall back synchronously.
func (s *Service) fault(err error) {
	s.faulted.Add(1)
	s.log.Error("channel fault, falling back: %v", err)

	s.mu.Lock()
	s.ready = false
	s.failPendingLocked(ErrChannelFault.Error())
	s.mu.Unlock()
}

func (s *Service) failPendingLocked(reason string) {
	for id, waiter := range s.pending {
		waiter <- Response{ID: id, Success: false, Error: reason}
	}
	s.pending = make(map[string]chan Response)
}

// offload attempts one task on the channel. It returns false on any
// failure mode (absence, serialization, send, timeout, channel-reported
// error, undecodable result) and the caller runs the computation inline.
func (s *Service) offload(typ TaskType, payload, out any) bool {
	s.submitted.Add(1)

	s.mu.Lock()
	ready := s.ready && s.channel != nil
	s.mu.Unlock()
	if !ready {
		return false
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Debug("task %s payload not serializable: %v", typ, err)
		return false
	}

	id := uuid.NewString()
	waiter := make(chan Response, 1)

	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return false
	}
	s.pending[id] = waiter
	s.mu.Unlock()

	if err := s.channel.Send(Request{ID: id, Type: typ, Payload: body}); err != nil {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		s.fault(err)
		return false
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case resp := <-waiter:
		if !resp.Success {
			s.log.Warn("task %s failed on channel: %s", typ, resp.Error)
			return false
		}
		if err := json.Unmarshal(resp.Payload, out); err != nil {
			s.log.Warn("task %s result not decodable: %v", typ, err)
			return false
		}
		s.resolved.Add(1)
		return true

	case <-timer.C:
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		s.timedOut.Add(1)
		s.log.Warn("task %s timed out after %s, falling back", typ, s.timeout)
		return false
	}
}

// SplitDocument divides doc at splitPoint, on the channel when possible,
// inline otherwise. Both paths produce identical results.
func (s *Service) SplitDocument(doc document.Document, splitPoint int) document.SplitResult {
	var out document.SplitResult
	if s.offload(TaskSplitDocument, SplitRequest{Document: doc, SplitPoint: splitPoint}, &out) {
		return out
	}
	s.fellBack.Add(1)
	return document.Split(doc, splitPoint)
}

// MergeContent concatenates prefix and suffix.
func (s *Service) MergeContent(prefix, suffix []document.BlockNode) document.Document {
	var out MergeResult
	if s.offload(TaskMergeContent, MergeRequest{Prefix: prefix, Suffix: suffix}, &out) {
		return out.Document
	}
	s.fellBack.Add(1)
	return document.Merge(prefix, suffix)
}

// AnalyzeNodes returns doc's ordered node summaries.
func (s *Service) AnalyzeNodes(doc document.Document) []document.Summary {
	var out AnalyzeResult
	if s.offload(TaskAnalyzeNodes, AnalyzeRequest{Document: doc}, &out) {
		return out.Summaries
	}
	s.fellBack.Add(1)
	return doc.Summaries()
}

// CalculateSplitPoint applies the configured split-point rule to n nodes.
func (s *Service) CalculateSplitPoint(n int) int {
	var out SplitPointResult
	if s.offload(TaskCalculateSplitPoint, SplitPointRequest{NodeCount: n}, &out) {
		return out.SplitPoint
	}
	s.fellBack.Add(1)
	return s.exec.SplitPoint(n)
}

// Stats is a snapshot of service counters.
type Stats struct {
	// Submitted counts every operation, offloaded or not.
	Submitted uint64
	// Resolved counts tasks completed by the channel.
	Resolved uint64
	// TimedOut counts tasks that expired waiting for the channel.
	TimedOut uint64
	// FellBack counts operations executed inline.
	FellBack uint64
	// Faulted counts channel faults.
	Faulted uint64
	// Ready reports whether the channel currently accepts tasks.
	Ready bool
}

// Stats returns a snapshot of the service counters.
func (s *Service) Stats() Stats {
	return Stats{
		Submitted: s.submitted.Load(),
		Resolved:  s.resolved.Load(),
		TimedOut:  s.timedOut.Load(),
		FellBack:  s.fellBack.Load(),
		Faulted:   s.faulted.Load(),
		Ready:     s.Ready(),
	}
}
