package offload

import (
	"sync"
	"sync/atomic"

	"github.com/tidwall/sjson"
)

// Channel carries serialized task requests to a compute context and
// responses back. Implementations must deliver exactly one response per
// accepted request.
type Channel interface {
	// Start makes the channel ready to accept requests.
	Start() error

	// Send submits one request. It must not block on slow consumers.
	Send(Request) error

	// Responses streams replies. The stream closes when the channel does.
	Responses() <-chan Response

	// Close shuts the channel down and closes Responses.
	Close() error
}

// WorkerChannel runs tasks on a single background goroutine. Requests are
// serialized into JSON envelopes before crossing the channel, so the worker
// shares no live state with the caller.
type WorkerChannel struct {
	exec      *Executor
	queueSize int

	mu        sync.Mutex
	requests  chan []byte
	responses chan Response
	running   atomic.Bool
	wg        sync.WaitGroup
}

// NewWorkerChannel creates a channel executing tasks with exec. queueSize
// bounds the request buffer; values < 1 default to 64.
func NewWorkerChannel(exec *Executor, queueSize int) *WorkerChannel {
	if queueSize < 1 {
		queueSize = 64
	}
	return &WorkerChannel{exec: exec, queueSize: queueSize}
}

// Start launches the worker goroutine. A channel can be restarted after
// Close.
func (w *WorkerChannel) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running.Load() {
		return ErrAlreadyRunning
	}

	w.requests = make(chan []byte, w.queueSize)
	w.responses = make(chan Response, w.queueSize)
	w.running.Store(true)

	w.wg.Add(1)
	go w.worker(w.requests, w.responses)
	return nil
}

// Send serializes req into its wire envelope and queues it.
func (w *WorkerChannel) Send(req Request) error {
	if !w.running.Load() {
		return ErrChannelUnavailable
	}

	raw := []byte(`{}`)
	raw, err := sjson.SetBytes(raw, "id", req.ID)
	if err != nil {
		return err
	}
	raw, err = sjson.SetBytes(raw, "type", string(req.Type))
	if err != nil {
		return err
	}
	raw, err = sjson.SetRawBytes(raw, "payload", req.Payload)
	if err != nil {
		return err
	}

	select {
	case w.requests <- raw:
		return nil
	default:
		return ErrQueueFull
	}
}

// Responses returns the reply stream for the current run.
func (w *WorkerChannel) Responses() <-chan Response {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.responses
}

// Close drains the worker and closes the response stream.
func (w *WorkerChannel) Close() error {
	w.mu.Lock()
	if !w.running.Load() {
		w.mu.Unlock()
		return nil
	}
	w.running.Store(false)
	close(w.requests)
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

func (w *WorkerChannel) worker(requests chan []byte, responses chan Response) {
	defer w.wg.Done()
	defer close(responses)

	for raw := range requests {
		responses <- w.exec.ExecuteRaw(raw)
	}
}
