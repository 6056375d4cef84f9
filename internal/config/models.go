package config

import (
	"fmt"
	"time"
)

// Rollout action types accepted by the management API.
const (
	ActionTypeForced       = "forced"
	ActionTypeSoft         = "soft"
	ActionTypeDownloadOnly = "downloadonly"
)

// Defaults applied when the config file omits optional settings.
const (
	DefaultAmountGroups = 1
	DefaultActionType   = ActionTypeForced
)

// FirmwareStep identifies one distribution set on the remote service by
// exact name and version.
type FirmwareStep struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String returns the "name version" form used in console output.
func (s FirmwareStep) String() string {
	return fmt.Sprintf("%s %s", s.Name, s.Version)
}

// Sequence is a named, ordered list of firmware steps to roll out one after
// another. Steps is never empty for a validated sequence.
type Sequence struct {
	Name  string
	Steps []FirmwareStep
}

// Polling holds the progress-poller timing parameters.
type Polling struct {
	// Interval is the delay between consecutive rollout status queries.
	Interval time.Duration
	// Timeout bounds the total time one rollout is polled before the run
	// gives up on it. Always >= Interval for a validated config.
	Timeout time.Duration
}

// RolloutOptions shape the rollout objects created on the remote service.
type RolloutOptions struct {
	// AmountGroups is the number of deployment groups the service splits
	// the target population into. Minimum 1.
	AmountGroups int
	// ActionType is one of "forced", "soft" or "downloadonly".
	ActionType string
}

// Server carries optional connection defaults from the config file.
// Flags and the profile registry may override these.
type Server struct {
	URL      string `json:"url"`
	Username string `json:"username"`
}

// File is a fully validated rollout configuration.
type File struct {
	Server    Server
	Polling   Polling
	Rollout   RolloutOptions
	Sequences map[string]Sequence

	// SequenceNames preserves the declaration order of the sequences in
	// the config file, for listing and interactive selection.
	SequenceNames []string
}

// Sequence returns the named sequence, or false when it is not configured.
func (f *File) Sequence(name string) (Sequence, bool) {
	seq, ok := f.Sequences[name]
	return seq, ok
}
