// Package rollout orchestrates firmware rollouts: target-filter resolution,
// per-step rollout creation and start, and progress polling to a terminal
// state.
//
// # Sequencing
//
// A sequence's steps execute strictly in order. The Driver does not create
// step N+1's rollout until step N's poller has returned a terminal result.
// This trades throughput for a simple, auditable one-rollout-at-a-time
// invariant and avoids overlapping rollouts against the same target filter.
//
// # Polling
//
// The Poller is a loop over remote reads, not a state machine of its own:
// every observed state comes from the service, state changes are logged as
// observed (old to new) without rejecting "unexpected" transitions, and the
// loop stops on a terminal state or on timeout. The time source and status
// source are both injectable so tests can script entire tick sequences
// without waiting.
//
// # Error taxonomy
//
// Fatal conditions (TargetFilterError, DistributionSetNotFoundError,
// CreateError, StartError, FailedError) abort the run. TimeoutError also
// ends the run non-zero, but the message tells the operator the rollout may
// still be progressing server-side. TargetQueryError is the one isolated
// kind: verification records it per target and keeps going.
//
// # Idempotence
//
// EnsureTargetFilter upserts by name, so re-running a deployment leaves the
// filter in the same state as a single run. Rollout objects themselves are
// created fresh per run with uuid-suffixed names.
package rollout
