package offload

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/dshills/pageflow/internal/document"
)

func testDoc(n int) document.Document {
	nodes := make([]document.BlockNode, n)
	for i := range nodes {
		nodes[i] = document.BlockNode{
			ID:   fmt.Sprintf("node-%d", i),
			Type: document.NodeParagraph,
			Text: fmt.Sprintf("paragraph %d", i),
		}
	}
	return document.Document{Nodes: nodes}
}

func workerService(t *testing.T) *Service {
	t.Helper()
	exec := NewExecutor(nil)
	svc := NewService(WithChannel(NewWorkerChannel(exec, 16)))
	if err := svc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = svc.Stop(ctx)
	})
	return svc
}

func TestService_WorkerMatchesInline(t *testing.T) {
	svc := workerService(t)
	doc := testDoc(25)

	got := svc.SplitDocument(doc, 22)
	want := document.Split(doc, 22)
	if !reflect.DeepEqual(got, want) {
		t.Error("offloaded split differs from inline split")
	}

	merged := svc.MergeContent(want.Kept.Nodes, want.Overflow)
	if !reflect.DeepEqual(merged, document.Merge(want.Kept.Nodes, want.Overflow)) {
		t.Error("offloaded merge differs from inline merge")
	}

	sums := svc.AnalyzeNodes(doc)
	if !reflect.DeepEqual(sums, doc.Summaries()) {
		t.Error("offloaded analyze differs from inline analyze")
	}

	if sp := svc.CalculateSplitPoint(25); sp != 22 {
		t.Errorf("CalculateSplitPoint(25) = %d, expected 22", sp)
	}

	stats := svc.Stats()
	if stats.Resolved == 0 {
		t.Error("expected tasks to resolve on the channel")
	}
	if stats.FellBack != 0 {
		t.Errorf("expected no fallbacks, got %d", stats.FellBack)
	}
}

func TestService_NoChannelFallsBack(t *testing.T) {
	svc := NewService()
	if err := svc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	doc := testDoc(25)
	got := svc.SplitDocument(doc, 22)
	want := document.Split(doc, 22)
	if !reflect.DeepEqual(got, want) {
		t.Error("inline split differs from pure split")
	}

	stats := svc.Stats()
	if stats.FellBack == 0 {
		t.Error("expected fallback execution")
	}
	if stats.Ready {
		t.Error("service without channel must not report ready")
	}
}

// failingChannel refuses to start.
type failingChannel struct{}

func (failingChannel) Start() error               { return errors.New("init exploded") }
func (failingChannel) Send(Request) error         { return ErrChannelUnavailable }
func (failingChannel) Responses() <-chan Response { return nil }
func (failingChannel) Close() error               { return nil }

func TestService_InitFailureMatchesSyncResult(t *testing.T) {
	svc := NewService(WithChannel(failingChannel{}))
	if err := svc.Start(); err != nil {
		t.Fatalf("init failure must not surface from Start: %v", err)
	}

	doc := testDoc(13)
	got := svc.SplitDocument(doc, document.CalculateSplitPoint(13))
	want := document.Split(doc, document.CalculateSplitPoint(13))
	if !reflect.DeepEqual(got, want) {
		t.Error("fallback split must equal synchronous split for identical input")
	}
}

// silentChannel accepts requests and never answers.
type silentChannel struct {
	responses chan Response
	sent      chan Request
}

func newSilentChannel() *silentChannel {
	return &silentChannel{
		responses: make(chan Response),
		sent:      make(chan Request, 16),
	}
}

func (c *silentChannel) Start() error { return nil }
func (c *silentChannel) Send(req Request) error {
	c.sent <- req
	return nil
}
func (c *silentChannel) Responses() <-chan Response { return c.responses }
func (c *silentChannel) Close() error {
	close(c.responses)
	return nil
}

func TestService_TimeoutFallsBack(t *testing.T) {
	svc := NewService(WithChannel(newSilentChannel()), WithTimeout(20*time.Millisecond))
	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}

	doc := testDoc(5)
	got := svc.SplitDocument(doc, 4)
	if !reflect.DeepEqual(got, document.Split(doc, 4)) {
		t.Error("timed-out task must fall back to the identical computation")
	}

	stats := svc.Stats()
	if stats.TimedOut != 1 {
		t.Errorf("timedOut = %d, expected 1", stats.TimedOut)
	}
	if stats.FellBack != 1 {
		t.Errorf("fellBack = %d, expected 1", stats.FellBack)
	}
}

// faultyChannel accepts the first request, then errors on the second.
type faultyChannel struct {
	*silentChannel
	sends int
}

func (c *faultyChannel) Send(req Request) error {
	c.sends++
	if c.sends > 1 {
		return errors.New("channel crashed")
	}
	return c.silentChannel.Send(req)
}

func TestService_FaultFailsPendingAndMarksNotReady(t *testing.T) {
	ch := &faultyChannel{silentChannel: newSilentChannel()}
	svc := NewService(WithChannel(ch), WithTimeout(5*time.Second))
	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}

	doc := testDoc(4)
	first := make(chan document.SplitResult, 1)
	go func() {
		first <- svc.SplitDocument(doc, 3)
	}()
	<-ch.sent // first task is pending on the channel

	// Second task triggers a send failure -> channel fault.
	merged := svc.MergeContent(doc.Nodes[:1], doc.Nodes[1:])
	if !reflect.DeepEqual(merged, document.Merge(doc.Nodes[:1], doc.Nodes[1:])) {
		t.Error("faulted merge must fall back")
	}

	// The pending first task must resolve promptly via fallback, well
	// before its 5s timeout.
	select {
	case res := <-first:
		if !reflect.DeepEqual(res, document.Split(doc, 3)) {
			t.Error("pending task must fall back to identical result")
		}
	case <-time.After(time.Second):
		t.Fatal("pending task was not failed by the channel fault")
	}

	if svc.Ready() {
		t.Error("service must be not-ready after a fault")
	}
	if svc.Stats().Faulted == 0 {
		t.Error("fault must be counted")
	}

	// While not-ready, tasks run inline.
	before := svc.Stats().FellBack
	_ = svc.CalculateSplitPoint(12)
	if svc.Stats().FellBack != before+1 {
		t.Error("tasks after a fault must execute inline")
	}
}

func TestService_ReinitializeRestoresOffload(t *testing.T) {
	exec := NewExecutor(nil)
	worker := NewWorkerChannel(exec, 16)
	svc := NewService(WithChannel(worker))
	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}

	// Kill the channel out from under the service; the next send faults.
	_ = worker.Close()
	doc := testDoc(6)
	_ = svc.SplitDocument(doc, 5)
	if svc.Ready() {
		t.Fatal("service should be not-ready after send failure")
	}

	if err := svc.Reinitialize(); err != nil {
		t.Fatalf("Reinitialize failed: %v", err)
	}
	if !svc.Ready() {
		t.Fatal("service must be ready after reinitialization")
	}

	before := svc.Stats().Resolved
	got := svc.SplitDocument(doc, 5)
	if !reflect.DeepEqual(got, document.Split(doc, 5)) {
		t.Error("post-reinit split incorrect")
	}
	if svc.Stats().Resolved != before+1 {
		t.Error("post-reinit task should resolve on the channel")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = svc.Stop(ctx)
}

func TestService_CustomSplitPointFunc(t *testing.T) {
	svc := NewService(WithSplitPointFunc(func(n int) int { return 1 }))
	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	if sp := svc.CalculateSplitPoint(25); sp != 1 {
		t.Errorf("expected custom rule result 1, got %d", sp)
	}
}

func TestExecutor_ExecuteRaw(t *testing.T) {
	exec := NewExecutor(nil)

	resp := exec.ExecuteRaw([]byte(`{"id":"t1","type":"CALCULATE_SPLIT_POINT","payload":{"nodeCount":25}}`))
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if resp.ID != "t1" || resp.Type != TaskCalculateSplitPoint {
		t.Errorf("envelope fields not carried through: %+v", resp)
	}

	malformed := exec.ExecuteRaw([]byte(`{"id":"t2"}`))
	if malformed.Success {
		t.Error("malformed envelope must fail")
	}
	if malformed.ID != "t2" {
		t.Error("recoverable id should be echoed")
	}
}

func TestExecutor_UnknownTaskType(t *testing.T) {
	exec := NewExecutor(nil)
	resp := exec.Execute(Request{ID: "x", Type: "EXPLODE", Payload: []byte(`{}`)})
	if resp.Success {
		t.Error("unknown task type must fail")
	}
}

func TestWorkerChannel_StartStop(t *testing.T) {
	w := NewWorkerChannel(NewExecutor(nil), 4)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Send(Request{ID: "x", Type: TaskAnalyzeNodes, Payload: []byte(`{}`)}); !errors.Is(err, ErrChannelUnavailable) {
		t.Errorf("expected ErrChannelUnavailable after close, got %v", err)
	}
	// Restartable.
	if err := w.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	_ = w.Close()
}
