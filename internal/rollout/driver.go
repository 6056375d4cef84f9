package rollout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hawkroll/hawkroll/internal/config"
	"github.com/hawkroll/hawkroll/internal/hawkbit"
	"github.com/hawkroll/hawkroll/internal/logging"
)

const (
	// rolloutNamePrefix tags every rollout this tool creates.
	rolloutNamePrefix = "Rollout_Seq"

	// DefaultReadyAttempts bounds the wait for a created rollout to reach
	// "ready" state before the start request is issued.
	DefaultReadyAttempts = 20

	// DefaultReadyInterval is the delay between readiness checks.
	DefaultReadyInterval = 5 * time.Second
)

// Driver executes the steps of one firmware sequence strictly in order: a
// step's rollout is created only after the previous step's rollout reached
// a terminal state. One rollout at a time keeps the ordering auditable and
// avoids overlapping rollouts against the same target filter.
type Driver struct {
	Client  *hawkbit.Client
	Options config.RolloutOptions
	Polling config.Polling

	// Clock is shared with the poller; injectable for tests.
	Clock Clock

	// ReadyAttempts/ReadyInterval bound the wait for a created rollout to
	// become startable.
	ReadyAttempts int
	ReadyInterval time.Duration

	// OnStepStart (optional) is called before each step's rollout is
	// created, for console progress output.
	OnStepStart func(index, total int, step config.FirmwareStep)

	// OnTick (optional) receives each poll observation along with the
	// step it belongs to.
	OnTick func(step config.FirmwareStep, status Status)
}

// NewDriver creates a driver with default readiness bounds.
func NewDriver(client *hawkbit.Client, options config.RolloutOptions, polling config.Polling) *Driver {
	return &Driver{
		Client:        client,
		Options:       options,
		Polling:       polling,
		Clock:         systemClock{},
		ReadyAttempts: DefaultReadyAttempts,
		ReadyInterval: DefaultReadyInterval,
	}
}

// RunSequence rolls out every step of seq against the given target-filter
// query, polling each rollout to a terminal state before advancing. The
// first failure aborts the remaining steps.
//
// suffix tags rollout names with a recognizable fleet hint (typically the
// tail of the first serial number).
func (d *Driver) RunSequence(seq config.Sequence, filterID int64, filterQuery, suffix string) error {
	for i, step := range seq.Steps {
		if d.OnStepStart != nil {
			d.OnStepStart(i+1, len(seq.Steps), step)
		}

		handle, err := d.startStep(seq.Name, i+1, step, filterID, filterQuery, suffix)
		if err != nil {
			return err
		}

		poller := &Poller{
			Interval: d.Polling.Interval,
			Timeout:  d.Polling.Timeout,
			Clock:    d.clock(),
		}

		source := func() (Status, error) {
			rollout, err := d.Client.GetRollout(handle.RolloutID)
			if err != nil {
				return Status{}, err
			}
			return StatusFromRollout(rollout), nil
		}

		var observer Observer
		if d.OnTick != nil {
			stepCopy := step
			observer = func(st Status) { d.OnTick(stepCopy, st) }
		}

		if _, err := poller.Poll(handle.RolloutID, source, observer); err != nil {
			return err
		}

		logging.Info("Sequence step finished",
			zap.String("sequence", seq.Name),
			zap.Int("step", i+1),
			zap.String("firmware", step.String()),
			zap.Int64("rollout_id", handle.RolloutID),
		)
	}

	return nil
}

// startStep resolves the step's distribution set, creates its rollout and
// starts it. The returned handle is in Starting state.
func (d *Driver) startStep(sequenceName string, index int, step config.FirmwareStep, filterID int64, filterQuery, suffix string) (*Handle, error) {
	ds, err := d.Client.FindDistributionSet(step.Name, step.Version)
	if err != nil {
		return nil, &CreateError{Step: step, Err: err}
	}
	if ds == nil {
		return nil, &DistributionSetNotFoundError{Step: step}
	}

	name := d.rolloutName(sequenceName, suffix, index)

	created, err := d.Client.CreateRollout(name, filterQuery, ds.ID, d.Options.AmountGroups, d.Options.ActionType)
	if err != nil {
		return nil, &CreateError{Step: step, Err: err}
	}

	logging.Info("Rollout created",
		zap.String("name", name),
		zap.Int64("rollout_id", created.ID),
		zap.Int64("distribution_set_id", ds.ID),
	)

	handle := &Handle{
		RolloutID: created.ID,
		Name:      name,
		Step:      step,
		FilterID:  filterID,
	}

	if err := d.waitReady(handle); err != nil {
		return nil, err
	}

	if err := d.Client.StartRollout(handle.RolloutID); err != nil {
		return nil, &StartError{RolloutID: handle.RolloutID, Step: step, Err: err}
	}

	logging.Info("Rollout started", zap.Int64("rollout_id", handle.RolloutID))
	return handle, nil
}

// waitReady blocks until the created rollout reports "ready", the state the
// service requires before accepting a start request.
func (d *Driver) waitReady(handle *Handle) error {
	attempts := d.ReadyAttempts
	if attempts <= 0 {
		attempts = DefaultReadyAttempts
	}
	interval := d.ReadyInterval
	if interval <= 0 {
		interval = DefaultReadyInterval
	}

	for attempt := 0; attempt < attempts; attempt++ {
		rollout, err := d.Client.GetRollout(handle.RolloutID)
		if err != nil {
			return &StartError{RolloutID: handle.RolloutID, Step: handle.Step, Err: err}
		}

		if strings.EqualFold(rollout.Status, "ready") {
			return nil
		}

		logging.Debug("Waiting for rollout to become ready",
			zap.Int64("rollout_id", handle.RolloutID),
			zap.String("status", rollout.Status),
			zap.Int("attempt", attempt+1),
		)
		d.clock().Sleep(interval)
	}

	return &StartError{
		RolloutID: handle.RolloutID,
		Step:      handle.Step,
		Err:       fmt.Errorf("rollout did not reach ready state after %d checks", attempts),
	}
}

// rolloutName builds a unique, recognizable rollout name. The uuid fragment
// keeps re-runs from colliding with rollouts left over on the server.
func (d *Driver) rolloutName(sequenceName, suffix string, index int) string {
	return fmt.Sprintf("%s_%s_%s_%d-%s", rolloutNamePrefix, sequenceName, suffix, index, uuid.NewString()[:8])
}

func (d *Driver) clock() Clock {
	if d.Clock != nil {
		return d.Clock
	}
	return systemClock{}
}
