package offload

import "errors"

// Sentinel errors for the offload package. All four channel-related kinds
// are consumed inside the service boundary and resolved by synchronous
// fallback; they appear in logs, never in return values.
var (
	// ErrChannelUnavailable is returned when no channel exists or it is
	// not running.
	ErrChannelUnavailable = errors.New("background channel unavailable")

	// ErrQueueFull is returned when the worker queue cannot accept more
	// requests.
	ErrQueueFull = errors.New("request queue is full")

	// ErrChannelFault indicates the channel failed while tasks were
	// pending.
	ErrChannelFault = errors.New("background channel fault")

	// ErrAlreadyRunning is returned when Start is called on a running
	// channel.
	ErrAlreadyRunning = errors.New("channel is already running")
)
