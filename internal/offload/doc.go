// Package offload dispatches split/merge/analyze/compute-split-point
// operations to a background worker channel, with a transparent synchronous
// fallback.
//
// # Protocol
//
// The caller submits a Request {id, type, payload}; the channel replies
// with exactly one Response {id, type, success, payload|error}, correlated
// by id. Requests and responses cross the channel as serialized JSON only:
// the worker never sees live document or pool state.
//
// # Task states
//
//	Pending → Resolved
//	Pending → TimedOut     → FallbackExecuted
//	Pending → ChannelError → FallbackExecuted
//
// Every task carries a fixed timeout. On timeout, channel absence,
// initialization failure, serialization failure, or a channel-reported
// failure, the service re-executes the identical computation inline. No
// worker-specific error ever reaches the orchestrator: the worst case is
// degraded (non-offloaded) processing.
//
// A channel fault fails all pending tasks and marks the channel not-ready
// until Reinitialize; calls made meanwhile execute synchronously.
package offload
