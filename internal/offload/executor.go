package offload

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/pageflow/internal/document"
)

// SplitPointFunc computes the node count to keep for a page of n nodes.
type SplitPointFunc func(n int) int

// Executor runs the four offloadable operations over serialized data. It
// is shared by the worker goroutine and the service's synchronous fallback,
// which is what makes the two paths produce identical results.
type Executor struct {
	splitPoint SplitPointFunc
}

// NewExecutor creates an executor. A nil splitPoint uses the built-in rule.
func NewExecutor(splitPoint SplitPointFunc) *Executor {
	if splitPoint == nil {
		splitPoint = document.CalculateSplitPoint
	}
	return &Executor{splitPoint: splitPoint}
}

// SplitPoint applies the executor's split-point rule.
func (e *Executor) SplitPoint(n int) int {
	return e.splitPoint(n)
}

// Execute runs one task and builds its response.
func (e *Executor) Execute(req Request) Response {
	payload, err := e.run(req.Type, req.Payload)
	if err != nil {
		return Response{ID: req.ID, Type: req.Type, Success: false, Error: err.Error()}
	}
	return Response{ID: req.ID, Type: req.Type, Success: true, Payload: payload}
}

// ExecuteRaw runs one task from its serialized envelope. The id, type, and
// payload fields are pulled straight out of the bytes; a malformed envelope
// yields a failure response carrying whatever id could be recovered.
func (e *Executor) ExecuteRaw(raw []byte) Response {
	id := gjson.GetBytes(raw, "id").String()
	typ := TaskType(gjson.GetBytes(raw, "type").String())
	payload := gjson.GetBytes(raw, "payload")

	if id == "" || typ == "" || !payload.Exists() {
		return Response{ID: id, Type: typ, Success: false, Error: "malformed request envelope"}
	}

	return e.Execute(Request{ID: id, Type: typ, Payload: json.RawMessage(payload.Raw)})
}

func (e *Executor) run(typ TaskType, payload json.RawMessage) (json.RawMessage, error) {
	switch typ {
	case TaskSplitDocument:
		var req SplitRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decoding split request: %w", err)
		}
		return marshal(document.Split(req.Document, req.SplitPoint))

	case TaskMergeContent:
		var req MergeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decoding merge request: %w", err)
		}
		return marshal(MergeResult{Document: document.Merge(req.Prefix, req.Suffix)})

	case TaskAnalyzeNodes:
		var req AnalyzeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decoding analyze request: %w", err)
		}
		return marshal(AnalyzeResult{Summaries: req.Document.Summaries()})

	case TaskCalculateSplitPoint:
		var req SplitPointRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decoding split-point request: %w", err)
		}
		return marshal(SplitPointResult{SplitPoint: e.splitPoint(req.NodeCount)})

	default:
		return nil, fmt.Errorf("unknown task type %q", typ)
	}
}

func marshal(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return data, nil
}
