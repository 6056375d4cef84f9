package hawkbit

import (
	"fmt"
	"net/http"
)

// CreateTargetFilter creates a new saved target filter.
// A filter with the same name already existing surfaces as an HTTP 409
// error, detectable with IsConflict.
func (c *Client) CreateTargetFilter(name, query string) (*TargetFilter, error) {
	var created TargetFilter
	payload := targetFilterUpsert{Name: name, Query: query}

	if err := c.postJSON("/targetfilters", payload, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// ListTargetFilters returns all saved target filters.
func (c *Client) ListTargetFilters() ([]TargetFilter, error) {
	var page targetFilterPage
	if _, err := c.getJSON("/targetfilters", &page); err != nil {
		return nil, fmt.Errorf("failed to list target filters: %w", err)
	}
	return page.items(), nil
}

// FindTargetFilterByName returns the filter with the exact given name, or
// (nil, nil) when none exists.
func (c *Client) FindTargetFilterByName(name string) (*TargetFilter, error) {
	filters, err := c.ListTargetFilters()
	if err != nil {
		return nil, err
	}

	for _, f := range filters {
		if f.Name == name {
			found := f
			return &found, nil
		}
	}
	return nil, nil
}

// UpdateTargetFilter replaces the named filter's query.
func (c *Client) UpdateTargetFilter(id int64, name, query string) error {
	path := fmt.Sprintf("/targetfilters/%d", id)
	return c.putJSON(path, targetFilterUpsert{Name: name, Query: query})
}

// DeleteTargetFilter removes a saved target filter.
func (c *Client) DeleteTargetFilter(id int64) error {
	path := fmt.Sprintf("/targetfilters/%d", id)
	_, _, err := c.do(http.MethodDelete, path, nil)
	return err
}
