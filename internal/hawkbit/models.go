package hawkbit

import (
	"encoding/json"
	"fmt"
	"time"
)

// DistributionSet is a named, versioned firmware bundle tracked by the
// management service.
type DistributionSet struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Label returns the "name version" form used in console output.
func (ds DistributionSet) Label() string {
	return fmt.Sprintf("%s %s", ds.Name, ds.Version)
}

// TargetFilter is a saved query on the service selecting a set of targets.
type TargetFilter struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Query string `json:"query"`
}

// Rollout is the service-side object orchestrating the deployment of one
// distribution set to all targets matching a filter.
type Rollout struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`

	TotalTargets          int `json:"totalTargets"`
	TotalTargetsCompleted int `json:"totalTargetsCompleted"`
	TotalTargetsFailed    int `json:"totalTargetsFailed"`
	TotalTargetsPending   int `json:"totalTargetsPending"`
}

// rolloutCreate is the request body for creating a rollout.
type rolloutCreate struct {
	Name              string `json:"name"`
	DistributionSetID int64  `json:"distributionSetId"`
	TargetFilterQuery string `json:"targetFilterQuery"`
	ActionType        string `json:"actionType"`
	AmountGroups      int    `json:"amountGroups"`
	Start             string `json:"start"`
}

// targetFilterUpsert is the request body for creating or updating a
// target filter.
type targetFilterUpsert struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// Action is one entry in a target's deployment history.
type Action struct {
	ID              int64            `json:"id"`
	Status          ActionStatus     `json:"status"`
	CreatedAt       int64            `json:"createdAt"` // epoch milliseconds
	DistributionSet *DistributionSet `json:"distributionSet"`
}

// CreatedTime converts the epoch-millisecond creation stamp to a time.Time.
func (a Action) CreatedTime() time.Time {
	return time.UnixMilli(a.CreatedAt)
}

// ActionStatus is the execution status of a history action. Depending on
// service version it arrives either as a plain string ("finished") or as an
// object ({"execution": "finished"}), so both forms are accepted.
type ActionStatus struct {
	Execution string
}

// UnmarshalJSON implements json.Unmarshaler
func (s *ActionStatus) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		s.Execution = plain
		return nil
	}

	var obj struct {
		Execution string `json:"execution"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("action status is neither string nor object: %w", err)
	}
	s.Execution = obj.Execution
	return nil
}

// MarshalJSON implements json.Marshaler (used by tests and debug output)
func (s ActionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Execution string `json:"execution"`
	}{Execution: s.Execution})
}

// Paged list envelopes. Depending on service version, list responses carry
// items under "content" or under "_embedded.<resource>"; both forms are
// read.

type distributionSetPage struct {
	Content  []DistributionSet `json:"content"`
	Embedded struct {
		DistributionSets []DistributionSet `json:"distributionsets"`
	} `json:"_embedded"`
}

func (p *distributionSetPage) items() []DistributionSet {
	if len(p.Content) > 0 {
		return p.Content
	}
	return p.Embedded.DistributionSets
}

type targetFilterPage struct {
	Content  []TargetFilter `json:"content"`
	Embedded struct {
		TargetFilters []TargetFilter `json:"targetfilters"`
	} `json:"_embedded"`
}

func (p *targetFilterPage) items() []TargetFilter {
	if len(p.Content) > 0 {
		return p.Content
	}
	return p.Embedded.TargetFilters
}

type actionPage struct {
	Content  []Action `json:"content"`
	Embedded struct {
		Actions []Action `json:"actions"`
	} `json:"_embedded"`
}

func (p *actionPage) items() []Action {
	if len(p.Content) > 0 {
		return p.Content
	}
	return p.Embedded.Actions
}
