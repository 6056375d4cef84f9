package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Error represents an invalid or unreadable rollout configuration file.
// It is always fatal and is raised before any remote call is attempted.
type Error struct {
	Path   string // Config file path
	Reason string // Human-readable description of the problem
	Err    error  // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(path, reason string, err error) *Error {
	return &Error{Path: path, Reason: reason, Err: err}
}

// Wire representation of the config file. Unknown top-level keys are
// ignored by design.
type fileWire struct {
	Server  Server `json:"server"`
	Polling struct {
		IntervalSeconds float64 `json:"intervalSeconds"`
		TimeoutSeconds  float64 `json:"timeoutSeconds"`
	} `json:"polling"`
	Rollout struct {
		AmountGroups int    `json:"amountGroups"`
		ActionType   string `json:"actionType"`
	} `json:"rollout"`
	Sequences map[string][]FirmwareStep `json:"sequences"`
}

// Load reads and validates a rollout configuration file.
//
// All structural problems are reported as *Error: missing/unreadable file,
// malformed JSON, a sequence with zero steps, a step missing its name or
// version, non-positive polling values, or a timeout shorter than the
// interval. Loading has no side effects beyond reading the file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(path, "cannot read config file", err)
	}

	var wire fileWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, newError(path, "malformed JSON", err)
	}

	if len(wire.Sequences) == 0 {
		return nil, newError(path, "no sequences defined", nil)
	}

	sequences := make(map[string]Sequence, len(wire.Sequences))
	for name, steps := range wire.Sequences {
		if len(steps) == 0 {
			return nil, newError(path, fmt.Sprintf("sequence %q has no steps", name), nil)
		}
		for i, step := range steps {
			if step.Name == "" {
				return nil, newError(path, fmt.Sprintf("sequence %q step %d: missing firmware name", name, i+1), nil)
			}
			if step.Version == "" {
				return nil, newError(path, fmt.Sprintf("sequence %q step %d: missing version", name, i+1), nil)
			}
		}
		sequences[name] = Sequence{Name: name, Steps: steps}
	}

	if wire.Polling.IntervalSeconds <= 0 {
		return nil, newError(path, fmt.Sprintf("polling intervalSeconds must be positive, got %v", wire.Polling.IntervalSeconds), nil)
	}
	if wire.Polling.TimeoutSeconds <= 0 {
		return nil, newError(path, fmt.Sprintf("polling timeoutSeconds must be positive, got %v", wire.Polling.TimeoutSeconds), nil)
	}
	if wire.Polling.TimeoutSeconds < wire.Polling.IntervalSeconds {
		return nil, newError(path, "polling timeoutSeconds must be >= intervalSeconds", nil)
	}

	// Optional rollout shaping settings fall back to defaults.
	amountGroups := wire.Rollout.AmountGroups
	if amountGroups == 0 {
		amountGroups = DefaultAmountGroups
	}
	if amountGroups < 1 {
		return nil, newError(path, fmt.Sprintf("rollout amountGroups must be >= 1, got %d", amountGroups), nil)
	}
	actionType := wire.Rollout.ActionType
	if actionType == "" {
		actionType = DefaultActionType
	}
	switch actionType {
	case ActionTypeForced, ActionTypeSoft, ActionTypeDownloadOnly:
	default:
		return nil, newError(path, fmt.Sprintf("rollout actionType must be forced, soft or downloadonly, got %q", actionType), nil)
	}

	names, err := sequenceKeyOrder(data)
	if err != nil {
		// Already parsed above, so this should not happen; fall back to
		// whatever order the map yields rather than failing the load.
		names = make([]string, 0, len(sequences))
		for name := range sequences {
			names = append(names, name)
		}
	}

	return &File{
		Server: wire.Server,
		Polling: Polling{
			Interval: time.Duration(wire.Polling.IntervalSeconds * float64(time.Second)),
			Timeout:  time.Duration(wire.Polling.TimeoutSeconds * float64(time.Second)),
		},
		Rollout: RolloutOptions{
			AmountGroups: amountGroups,
			ActionType:   actionType,
		},
		Sequences:     sequences,
		SequenceNames: names,
	}, nil
}

// sequenceKeyOrder extracts the sequence names in file declaration order.
// encoding/json maps lose key order, so the "sequences" object is re-scanned
// with a token decoder.
func sequenceKeyOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	// Enter the top-level object.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		if key != "sequences" {
			// Skip this key's value entirely.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}

		// Enter the sequences object and collect its keys in order.
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var names []string
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, _ := nameTok.(string)
			names = append(names, name)

			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
		return names, nil
	}

	return nil, fmt.Errorf("no sequences key found")
}
