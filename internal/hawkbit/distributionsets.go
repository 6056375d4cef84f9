package hawkbit

import (
	"fmt"
	"net/url"
)

// FindDistributionSet looks up a distribution set by exact name and version.
// Returns (nil, nil) when no exact match exists; the caller decides whether
// that is fatal.
func (c *Client) FindDistributionSet(name, version string) (*DistributionSet, error) {
	path := fmt.Sprintf("/distributionsets?name==%s;version==%s",
		url.QueryEscape(name), url.QueryEscape(version))

	var page distributionSetPage
	if _, err := c.getJSON(path, &page); err != nil {
		return nil, fmt.Errorf("failed to query distribution sets: %w", err)
	}

	// The filter is a prefix match on some service versions, so re-check
	// for an exact match.
	for _, ds := range page.items() {
		if ds.Name == name && ds.Version == version {
			found := ds
			return &found, nil
		}
	}

	return nil, nil
}
