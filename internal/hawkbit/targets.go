package hawkbit

import (
	"fmt"
	"net/http"
	"net/url"
)

// GetAssignedDistributionSet returns the distribution set currently assigned
// to a target, or (nil, nil) when the target has no assignment (HTTP 204).
func (c *Client) GetAssignedDistributionSet(target string) (*DistributionSet, error) {
	path := fmt.Sprintf("/targets/%s/assignedDS", url.PathEscape(target))

	var ds DistributionSet
	status, err := c.getJSON(path, &ds)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assigned DS for %s: %w", target, err)
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &ds, nil
}

// GetInstalledDistributionSet returns the distribution set reported as
// installed on a target, or (nil, nil) when nothing is installed (HTTP 204).
func (c *Client) GetInstalledDistributionSet(target string) (*DistributionSet, error) {
	path := fmt.Sprintf("/targets/%s/installedDS", url.PathEscape(target))

	var ds DistributionSet
	status, err := c.getJSON(path, &ds)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch installed DS for %s: %w", target, err)
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &ds, nil
}

// GetTargetActions returns a target's deployment history in the order the
// service reports it (newest first).
func (c *Client) GetTargetActions(target string) ([]Action, error) {
	path := fmt.Sprintf("/targets/%s/actions", url.PathEscape(target))

	var page actionPage
	if _, err := c.getJSON(path, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch actions for %s: %w", target, err)
	}
	return page.items(), nil
}
