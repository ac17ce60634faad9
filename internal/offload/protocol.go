package offload

import (
	"encoding/json"

	"github.com/dshills/pageflow/internal/document"
)

// TaskType identifies an offloadable operation.
type TaskType string

// The four operations the background channel understands.
const (
	TaskSplitDocument       TaskType = "SPLIT_DOCUMENT"
	TaskMergeContent        TaskType = "MERGE_CONTENT"
	TaskAnalyzeNodes        TaskType = "ANALYZE_NODES"
	TaskCalculateSplitPoint TaskType = "CALCULATE_SPLIT_POINT"
)

// Request is one task submitted to the channel.
type Request struct {
	ID      string          `json:"id"`
	Type    TaskType        `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Response is the channel's reply, correlated to a Request by ID.
type Response struct {
	ID      string          `json:"id"`
	Type    TaskType        `json:"type"`
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SplitRequest is the payload of a SPLIT_DOCUMENT task.
type SplitRequest struct {
	Document   document.Document `json:"document"`
	SplitPoint int               `json:"splitPoint"`
}

// MergeRequest is the payload of a MERGE_CONTENT task.
type MergeRequest struct {
	Prefix []document.BlockNode `json:"prefix"`
	Suffix []document.BlockNode `json:"suffix"`
}

// MergeResult is the payload of a MERGE_CONTENT response.
type MergeResult struct {
	Document document.Document `json:"document"`
}

// AnalyzeRequest is the payload of an ANALYZE_NODES task.
type AnalyzeRequest struct {
	Document document.Document `json:"document"`
}

// AnalyzeResult is the payload of an ANALYZE_NODES response.
type AnalyzeResult struct {
	Summaries []document.Summary `json:"summaries"`
}

// SplitPointRequest is the payload of a CALCULATE_SPLIT_POINT task.
type SplitPointRequest struct {
	NodeCount int `json:"nodeCount"`
}

// SplitPointResult is the payload of a CALCULATE_SPLIT_POINT response.
type SplitPointResult struct {
	SplitPoint int `json:"splitPoint"`
}
