package rollout

import (
	"fmt"

	"github.com/hawkroll/hawkroll/internal/config"
)

// TargetFilterError reports a failure to create or update the target filter.
// Fatal: with no filter there is nothing to roll out to.
type TargetFilterError struct {
	Name string // Filter name
	Err  error
}

func (e *TargetFilterError) Error() string {
	return fmt.Sprintf("target filter %q: %v", e.Name, e.Err)
}

func (e *TargetFilterError) Unwrap() error { return e.Err }

// DistributionSetNotFoundError reports that the firmware step's distribution
// set does not exist on the service. Fatal for the whole run: later steps
// may depend on earlier ones installing in order, so skipping is not safe.
type DistributionSetNotFoundError struct {
	Step config.FirmwareStep
}

func (e *DistributionSetNotFoundError) Error() string {
	return fmt.Sprintf("distribution set %q version %q not found on the server (exact match)", e.Step.Name, e.Step.Version)
}

// CreateError reports that the service rejected rollout creation, or that
// the distribution-set lookup preceding it failed. Fatal for the run.
type CreateError struct {
	Step config.FirmwareStep
	Err  error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("failed to create rollout for %s: %v", e.Step, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// StartError reports that a created rollout could not be started, including
// the rollout never reaching "ready" state. Fatal for the run.
type StartError struct {
	RolloutID int64
	Step      config.FirmwareStep
	Err       error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start rollout %d for %s: %v", e.RolloutID, e.Step, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// TimeoutError reports that the poller gave up before the rollout reached a
// terminal state. The rollout may still complete on the server; the run
// exits non-zero but the condition is operator-recoverable, not a remote
// failure.
type TimeoutError struct {
	RolloutID int64
	Last      Status // Last observed status before giving up
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("rollout %d did not reach a terminal state before the timeout (last observed: %s, %s complete); it may still be progressing on the server",
		e.RolloutID, e.Last.State, e.Last.PercentString())
}

// FailedError reports that the service moved the rollout into a state it
// will not progress from on its own. Fatal for the run.
type FailedError struct {
	RolloutID   int64
	RemoteState string // Raw state string reported by the service
	Last        Status
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("rollout %d ended in remote state %q (%s complete)",
		e.RolloutID, e.RemoteState, e.Last.PercentString())
}

// TargetQueryError reports a per-target verification query failure. It is
// isolated: the verification report records it on the affected row and
// continues with the remaining targets.
type TargetQueryError struct {
	Serial string
	Err    error
}

func (e *TargetQueryError) Error() string {
	return fmt.Sprintf("target %s: query failed: %v", e.Serial, e.Err)
}

func (e *TargetQueryError) Unwrap() error { return e.Err }
