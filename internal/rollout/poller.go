package rollout

import (
	"time"

	"go.uber.org/zap"

	"github.com/hawkroll/hawkroll/internal/logging"
)

// Clock abstracts time for the poller and driver so tests can script tick
// sequences without real waiting.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the real-time clock used outside of tests.
func SystemClock() Clock { return systemClock{} }

// Source queries the current remote status of one rollout.
type Source func() (Status, error)

// Observer is invoked once per successful poll tick with the observed
// status.
type Observer func(Status)

// Poller drives a rollout to a terminal state by repeatedly querying the
// remote service. All state decisions come from the remote reads; the
// poller itself only decides when to stop.
type Poller struct {
	// Interval is the delay between consecutive status queries.
	Interval time.Duration

	// Timeout bounds the total polling time. When it elapses without a
	// terminal state the poll fails with *TimeoutError.
	Timeout time.Duration

	// Clock is the time source. Defaults to the system clock.
	Clock Clock
}

// NewPoller creates a poller with the given timing parameters.
func NewPoller(interval, timeout time.Duration) *Poller {
	return &Poller{
		Interval: interval,
		Timeout:  timeout,
		Clock:    systemClock{},
	}
}

// Poll queries source until the rollout reaches a terminal state or the
// timeout elapses, whichever comes first. observer (optional) receives each
// successful observation.
//
// Returns the last observed status. A Finished terminal state returns a nil
// error; an Error terminal state returns *FailedError; running out of time
// returns *TimeoutError carrying the last observation.
//
// A failed status query does not abort the loop: the failure is logged and
// the next tick proceeds, so one transient read error cannot kill a
// multi-minute rollout watch. The HTTP client's own bounded retry budget
// applies underneath each individual query.
func (p *Poller) Poll(rolloutID int64, source Source, observer Observer) (Status, error) {
	clock := p.Clock
	if clock == nil {
		clock = systemClock{}
	}

	start := clock.Now()
	var last Status
	observedAny := false

	for {
		status, err := source()
		if err != nil {
			logging.Warn("Rollout status query failed",
				zap.Int64("rollout_id", rolloutID),
				zap.Error(err),
			)
		} else {
			if observedAny && status.Raw != last.Raw {
				logging.LogRolloutStateChange(rolloutID, last.Raw, status.Raw)
			}
			last = status
			observedAny = true

			logging.LogPollTick(rolloutID, status.State.String(), status.Percent, status.PercentKnown,
				status.Completed, status.Failed, status.Pending, status.Total)

			if observer != nil {
				observer(status)
			}

			// A rollout that is already finished on the first read is
			// an immediate success, not an error.
			if status.State == StateFinished {
				return last, nil
			}
			if status.State == StateError {
				return last, &FailedError{
					RolloutID:   rolloutID,
					RemoteState: status.Raw,
					Last:        last,
				}
			}
		}

		if clock.Now().Sub(start) >= p.Timeout {
			return last, &TimeoutError{RolloutID: rolloutID, Last: last}
		}

		clock.Sleep(p.Interval)
	}
}
