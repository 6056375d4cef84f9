package rollout

import (
	"errors"
	"testing"
	"time"

	"github.com/hawkroll/hawkroll/internal/hawkbit"
)

// fakeClock advances only when the poller sleeps, so tests script entire
// poll timelines instantly.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.sleeps++
}

// scriptedSource replays rollout reads in order, repeating the last one.
func scriptedSource(rollouts ...*hawkbit.Rollout) Source {
	i := 0
	return func() (Status, error) {
		r := rollouts[i]
		if i < len(rollouts)-1 {
			i++
		}
		return StatusFromRollout(r), nil
	}
}

func remote(status string, total, completed int) *hawkbit.Rollout {
	return &hawkbit.Rollout{
		ID:                    1,
		Status:                status,
		TotalTargets:          total,
		TotalTargetsCompleted: completed,
		TotalTargetsPending:   total - completed,
	}
}

func newTestPoller(clock *fakeClock) *Poller {
	return &Poller{
		Interval: 5 * time.Second,
		Timeout:  60 * time.Second,
		Clock:    clock,
	}
}

func TestPoll_FinishesBeforeTimeout(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	source := scriptedSource(
		remote("starting", 3, 0),
		remote("running", 3, 1),
		remote("running", 3, 2),
		remote("finished", 3, 3),
	)

	var observed []Status
	last, err := poller.Poll(1, source, func(st Status) {
		observed = append(observed, st)
	})

	if err != nil {
		t.Fatalf("Poll() error = %v, want nil", err)
	}
	if last.State != StateFinished {
		t.Errorf("last state = %s, want finished", last.State)
	}
	if len(observed) != 4 {
		t.Fatalf("observed %d ticks, want 4", len(observed))
	}

	// Well-formed percentages must be non-decreasing
	prev := -1
	for i, st := range observed {
		if !st.PercentKnown {
			continue
		}
		if st.Percent < prev {
			t.Errorf("tick %d: percent %d decreased below %d", i, st.Percent, prev)
		}
		prev = st.Percent
	}
	if observed[3].Percent != 100 {
		t.Errorf("final percent = %d, want 100", observed[3].Percent)
	}
}

func TestPoll_Timeout(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	// Never reaches a terminal state
	source := scriptedSource(remote("running", 10, 4))

	last, err := poller.Poll(1, source, nil)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Poll() error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Last.Percent != 40 {
		t.Errorf("timeout should carry last percent 40, got %d", timeoutErr.Last.Percent)
	}
	if last.State != StateRunning {
		t.Errorf("last state = %s, want running", last.State)
	}
	// 60s timeout with 5s interval: 12 sleeps before the deadline check trips
	if clock.sleeps != 12 {
		t.Errorf("clock slept %d times, want 12", clock.sleeps)
	}
}

func TestPoll_RemoteError(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	source := scriptedSource(
		remote("running", 4, 1),
		remote("error", 4, 1),
	)

	_, err := poller.Poll(1, source, nil)

	var failedErr *FailedError
	if !errors.As(err, &failedErr) {
		t.Fatalf("Poll() error = %v, want *FailedError", err)
	}
	if failedErr.RemoteState != "error" {
		t.Errorf("RemoteState = %s, want error", failedErr.RemoteState)
	}
	if failedErr.Last.Percent != 25 {
		t.Errorf("failure should carry last percent 25, got %d", failedErr.Last.Percent)
	}
}

func TestPoll_PausedIsTerminalFailure(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	_, err := poller.Poll(1, scriptedSource(remote("paused", 4, 2)), nil)

	var failedErr *FailedError
	if !errors.As(err, &failedErr) {
		t.Fatalf("Poll() error = %v, want *FailedError for paused rollout", err)
	}
	if failedErr.RemoteState != "paused" {
		t.Errorf("RemoteState = %s, want paused", failedErr.RemoteState)
	}
}

func TestPoll_AlreadyFinishedOnFirstRead(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	last, err := poller.Poll(1, scriptedSource(remote("finished", 3, 3)), nil)

	if err != nil {
		t.Fatalf("Poll() error = %v, want immediate success", err)
	}
	if last.State != StateFinished {
		t.Errorf("state = %s, want finished", last.State)
	}
	if clock.sleeps != 0 {
		t.Errorf("poller slept %d times, want 0 for an already-finished rollout", clock.sleeps)
	}
}

func TestPoll_MalformedPercentDoesNotAbort(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	// Middle tick has no usable totals: percent unknown, polling continues
	source := scriptedSource(
		remote("running", 3, 1),
		remote("running", 0, 0),
		remote("finished", 3, 3),
	)

	var observed []Status
	last, err := poller.Poll(1, source, func(st Status) {
		observed = append(observed, st)
	})

	if err != nil {
		t.Fatalf("Poll() error = %v, want nil", err)
	}
	if last.State != StateFinished {
		t.Errorf("state = %s, want finished", last.State)
	}
	if len(observed) != 3 {
		t.Fatalf("observed %d ticks, want 3", len(observed))
	}
	if observed[1].PercentKnown {
		t.Error("tick with zero totals should have unknown percent")
	}
	if observed[1].PercentString() != "--%" {
		t.Errorf("PercentString() = %s, want --%%", observed[1].PercentString())
	}
}

func TestPoll_QueryErrorToleratedUntilTimeout(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	calls := 0
	source := func() (Status, error) {
		calls++
		if calls == 2 {
			return Status{}, errors.New("transient read failure")
		}
		if calls >= 4 {
			return StatusFromRollout(remote("finished", 3, 3)), nil
		}
		return StatusFromRollout(remote("running", 3, 1)), nil
	}

	_, err := poller.Poll(1, source, nil)
	if err != nil {
		t.Fatalf("Poll() error = %v, a single failed read must not abort polling", err)
	}
	if calls != 4 {
		t.Errorf("source called %d times, want 4", calls)
	}
}
