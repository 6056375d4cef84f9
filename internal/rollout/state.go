package rollout

import (
	"fmt"
	"strings"

	"github.com/hawkroll/hawkroll/internal/config"
	"github.com/hawkroll/hawkroll/internal/hawkbit"
)

// State is the local view of a rollout's lifecycle. It is only ever set
// from remote reads (plus the initial Created/Starting defaults); the
// poller never computes a state on its own.
type State int

const (
	StateCreated  State = iota // Rollout object created, not yet started
	StateStarting              // Start requested, service preparing groups
	StateRunning               // Deployment in progress
	StateFinished              // Terminal: all groups processed successfully
	StateError                 // Terminal: service reported failure or will not progress
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Terminal reports whether polling stops at this state.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateError
}

// mapRemoteState maps the service's status string onto the local state
// enum. Unknown strings map to Running: the poller always trusts the next
// remote read rather than rejecting a state it does not recognize.
//
// "paused" and "stopped" map to StateError: the rollout will not progress
// without operator action on the server, and the next sequence step must
// not start on top of it.
func mapRemoteState(raw string) State {
	switch strings.ToLower(raw) {
	case "creating", "ready", "starting":
		return StateStarting
	case "running", "deleting":
		return StateRunning
	case "finished":
		return StateFinished
	case "error", "stopped", "paused":
		return StateError
	default:
		return StateRunning
	}
}

// Status is one observed snapshot of a rollout, derived entirely from a
// remote read.
type Status struct {
	State State
	Raw   string // Raw remote state string, for logs and error messages

	// Percent is the completion percentage, clamped to [0,100]. Only
	// meaningful when PercentKnown is true; the service occasionally
	// reports target totals that do not admit a sane percentage, and a
	// bad value must not fail the poll tick.
	Percent      int
	PercentKnown bool

	Total     int
	Completed int
	Failed    int
	Pending   int
}

// StatusFromRollout derives a Status snapshot from a remote rollout read.
func StatusFromRollout(r *hawkbit.Rollout) Status {
	st := Status{
		State:     mapRemoteState(r.Status),
		Raw:       r.Status,
		Total:     r.TotalTargets,
		Completed: r.TotalTargetsCompleted,
		Failed:    r.TotalTargetsFailed,
		Pending:   r.TotalTargetsPending,
	}

	if r.TotalTargets > 0 && r.TotalTargetsCompleted >= 0 {
		percent := r.TotalTargetsCompleted * 100 / r.TotalTargets
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		st.Percent = percent
		st.PercentKnown = true
	}

	// A finished rollout is 100% complete even when the service omits
	// usable totals.
	if st.State == StateFinished && !st.PercentKnown {
		st.Percent = 100
		st.PercentKnown = true
	}

	return st
}

// PercentString renders the percentage for console output, with "--" when
// the value is unknown.
func (s Status) PercentString() string {
	if !s.PercentKnown {
		return "--%"
	}
	return fmt.Sprintf("%d%%", s.Percent)
}

// Handle identifies one in-flight rollout created for a sequence step. It
// lives for the duration of that step and is discarded once the step's
// verification completes.
type Handle struct {
	RolloutID int64
	Name      string
	Step      config.FirmwareStep
	FilterID  int64
}
