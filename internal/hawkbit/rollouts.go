package hawkbit

import (
	"fmt"
	"net/http"
)

// CreateRollout creates a rollout binding a target-filter query to a
// distribution set. Start mode "auto" lets the service begin as soon as the
// rollout has been started via StartRollout.
func (c *Client) CreateRollout(name, targetFilterQuery string, distributionSetID int64, amountGroups int, actionType string) (*Rollout, error) {
	payload := rolloutCreate{
		Name:              name,
		DistributionSetID: distributionSetID,
		TargetFilterQuery: targetFilterQuery,
		ActionType:        actionType,
		AmountGroups:      amountGroups,
		Start:             "auto",
	}

	var created Rollout
	if err := c.postJSON("/rollouts", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetRollout fetches the current state of a rollout.
func (c *Client) GetRollout(id int64) (*Rollout, error) {
	var rollout Rollout
	path := fmt.Sprintf("/rollouts/%d", id)
	if _, err := c.getJSON(path, &rollout); err != nil {
		return nil, fmt.Errorf("failed to fetch rollout %d: %w", id, err)
	}
	return &rollout, nil
}

// StartRollout issues the start request for a created rollout. The rollout
// must be in "ready" state for the service to accept the start.
func (c *Client) StartRollout(id int64) error {
	path := fmt.Sprintf("/rollouts/%d/start", id)
	_, _, err := c.do(http.MethodPost, path, nil)
	return err
}
