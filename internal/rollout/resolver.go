package rollout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hawkroll/hawkroll/internal/hawkbit"
	"github.com/hawkroll/hawkroll/internal/logging"
)

// EnsureTargetFilter idempotently ensures a target filter with the given
// name and query exists on the service. An existing filter with that name
// has its query replaced, so re-running leaves exactly the same remote
// state as a single run (upsert, never additive).
//
// Returns the filter's identifier, or *TargetFilterError on any failure.
func EnsureTargetFilter(client *hawkbit.Client, name, query string) (int64, error) {
	if name == "" {
		return 0, &TargetFilterError{Name: name, Err: fmt.Errorf("filter name is empty")}
	}
	if query == "" {
		return 0, &TargetFilterError{Name: name, Err: fmt.Errorf("filter query is empty")}
	}

	created, err := client.CreateTargetFilter(name, query)
	if err == nil {
		logging.Info("Target filter created",
			zap.String("name", name),
			zap.Int64("filter_id", created.ID),
		)
		return created.ID, nil
	}

	if !hawkbit.IsConflict(err) {
		return 0, &TargetFilterError{Name: name, Err: err}
	}

	// Name already taken: replace the existing filter's query.
	existing, err := client.FindTargetFilterByName(name)
	if err != nil {
		return 0, &TargetFilterError{Name: name, Err: err}
	}
	if existing == nil {
		return 0, &TargetFilterError{Name: name, Err: fmt.Errorf("filter reported as existing but not found during update")}
	}

	if err := client.UpdateTargetFilter(existing.ID, name, query); err != nil {
		return 0, &TargetFilterError{Name: name, Err: err}
	}

	logging.Info("Target filter updated",
		zap.String("name", name),
		zap.Int64("filter_id", existing.ID),
	)
	return existing.ID, nil
}
