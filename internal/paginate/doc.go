// Package paginate contains the pagination orchestrator: the state machine
// that wires overflow detection, document split/merge, cursor tracking, the
// page pool, and the background offloader to content- and selection-change
// events.
//
// # Ownership
//
// All document and pool mutation happens on the goroutine that delivers
// surface events and drains the Scheduler. The only concurrency is the
// offload worker, which operates on serialized data and never touches live
// state.
//
// # Phases
//
// Each page's check advances through an explicit phase progression:
//
//	MutationApplied → LayoutSettled → OverflowChecked → ActionDecided
//
// The hop from MutationApplied to LayoutSettled rides the injected
// Scheduler: overflow checks never run in the same turn as the content
// change that triggered them, so geometry is read only after layout has
// settled and never mid-transaction.
//
// # Safety valve
//
// Automatic splitting of one page is capped (three attempts by default).
// A page that can never converge, such as a single node taller than the
// page, halts with a log line instead of looping.
package paginate
