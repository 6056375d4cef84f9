// Package hawkbit provides an HTTP client for an Eclipse Hawkbit-compatible
// device-management REST API.
//
// The client covers the resources the rollout orchestration needs:
// distribution sets (lookup by exact name and version), target filters
// (create, list, update), rollouts (create, start, status) and targets
// (assigned/installed distribution set, deployment history).
//
// # Usage Example
//
//	client := hawkbit.NewClient("https://hawkbit.example.com", "admin", "secret")
//
//	ds, err := client.FindDistributionSet("app", "1.0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if ds == nil {
//	    log.Fatal("distribution set not found")
//	}
//
//	rollout, err := client.CreateRollout("Rollout_1", query, ds.ID, 1, "forced")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.StartRollout(rollout.ID); err != nil {
//	    log.Fatal(err)
//	}
//
// # Retries
//
// Each API call carries its own bounded retry budget: transient failures
// (timeouts, connection refused/reset, 5xx responses) are retried with
// capped exponential backoff before surfacing. Authentication failures,
// client errors (4xx) and parse errors are never retried.
//
// # Error Handling
//
// All failures are reported as *APIError carrying the error category and,
// where applicable, the HTTP status code. Helpers such as IsRetryable,
// IsConflict and IsNotFound inspect wrapped error chains via errors.As.
//
// # Wire Format Tolerance
//
// List responses are accepted in both the "content" and "_embedded"
// envelope forms, and history action status is accepted both as a plain
// string and as an {"execution": ...} object, covering the service versions
// observed in the field.
package hawkbit
