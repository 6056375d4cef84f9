package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hawkroll/hawkroll/internal/config"
	"github.com/hawkroll/hawkroll/internal/hawkbit"
	"github.com/hawkroll/hawkroll/internal/rollout"
)

// fakeService emulates the slice of the management API a full deploy run
// touches: distribution-set lookup, target-filter upsert, rollout
// lifecycle and per-target verification queries.
type fakeService struct {
	set     hawkbit.DistributionSet
	serials []string

	filters      map[int64]*hawkbit.TargetFilter
	nextFilterID int64

	rolloutID int64
	started   bool
	polls     int
	script    []string

	assigned map[string]bool
}

func (s *fakeService) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case r.Method == http.MethodGet && path == "/rest/v1/distributionsets":
			json.NewEncoder(w).Encode(map[string]any{"content": []hawkbit.DistributionSet{s.set}})

		case r.Method == http.MethodPost && path == "/rest/v1/targetfilters":
			var in hawkbit.TargetFilter
			json.NewDecoder(r.Body).Decode(&in)
			s.nextFilterID++
			filter := &hawkbit.TargetFilter{ID: s.nextFilterID, Name: in.Name, Query: in.Query}
			s.filters[filter.ID] = filter
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(filter)

		case r.Method == http.MethodPost && path == "/rest/v1/rollouts":
			s.rolloutID = 77
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(hawkbit.Rollout{ID: s.rolloutID, Status: "creating"})

		case r.Method == http.MethodPost && path == "/rest/v1/rollouts/77/start":
			s.started = true
			w.WriteHeader(http.StatusAccepted)

		case r.Method == http.MethodGet && path == "/rest/v1/rollouts/77":
			if !s.started {
				json.NewEncoder(w).Encode(hawkbit.Rollout{ID: s.rolloutID, Status: "ready"})
				return
			}
			idx := s.polls
			if idx > len(s.script)-1 {
				idx = len(s.script) - 1
			}
			s.polls++
			state, completed := parseScript(s.script[idx])
			if state == "finished" {
				for _, serial := range s.serials {
					s.assigned[serial] = true
				}
			}
			json.NewEncoder(w).Encode(hawkbit.Rollout{
				ID:                    s.rolloutID,
				Status:                state,
				TotalTargets:          len(s.serials),
				TotalTargetsCompleted: completed,
			})

		case r.Method == http.MethodGet && strings.HasPrefix(path, "/rest/v1/targets/"):
			parts := strings.Split(strings.TrimPrefix(path, "/rest/v1/targets/"), "/")
			serial, resource := parts[0], parts[1]
			if !s.assigned[serial] {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			switch resource {
			case "assignedDS", "installedDS":
				json.NewEncoder(w).Encode(s.set)
			case "actions":
				json.NewEncoder(w).Encode(map[string]any{"content": []hawkbit.Action{}})
			}

		default:
			t.Errorf("unexpected request %s %s", r.Method, path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

// parseScript turns "running:2" into its state and completed count.
func parseScript(entry string) (string, int) {
	state, count, _ := strings.Cut(entry, ":")
	completed, _ := strconv.Atoi(count)
	return state, completed
}

type instantClock struct{ now time.Time }

func (c *instantClock) Now() time.Time        { return c.now }
func (c *instantClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

// The full happy path: upsert the filter, run a one-step sequence to
// completion, then verify every target ended up on the deployed set.
func TestDeployThenVerify(t *testing.T) {
	serials := []string{"SN001", "SN002", "SN003"}
	service := &fakeService{
		set:      hawkbit.DistributionSet{ID: 10, Name: "app", Version: "1.0"},
		serials:  serials,
		filters:  make(map[int64]*hawkbit.TargetFilter),
		assigned: make(map[string]bool),
		script:   []string{"starting:0", "running:1", "running:2", "finished:3"},
	}
	server := httptest.NewServer(service.handler(t))
	defer server.Close()

	client := hawkbit.NewClient(server.URL, "admin", "admin")
	client.SetRetry(0, time.Millisecond)

	query := `(name=="SN001" or name=="SN002" or name=="SN003")`
	filterID, err := rollout.EnsureTargetFilter(client, "fleet-N001", query)
	if err != nil {
		t.Fatalf("EnsureTargetFilter() error = %v", err)
	}

	driver := rollout.NewDriver(client,
		config.RolloutOptions{AmountGroups: 1, ActionType: config.ActionTypeForced},
		config.Polling{Interval: 5 * time.Second, Timeout: 60 * time.Second},
	)
	driver.Clock = &instantClock{}
	driver.ReadyInterval = time.Millisecond

	seq := config.Sequence{Name: "1.0", Steps: []config.FirmwareStep{{Name: "app", Version: "1.0"}}}
	if err := driver.RunSequence(seq, filterID, query, "N001"); err != nil {
		t.Fatalf("RunSequence() error = %v", err)
	}
	if !service.started {
		t.Fatal("rollout was never started")
	}

	records := Verify(client, serials, false)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for _, record := range records {
		if record.Err != nil {
			t.Errorf("%s: unexpected error %v", record.Serial, record.Err)
			continue
		}
		if record.Assigned == nil || record.Assigned.Label() != "app 1.0" {
			t.Errorf("%s: assigned = %+v, want app 1.0", record.Serial, record.Assigned)
		}
		if !record.InSync() {
			t.Errorf("%s should be in sync after the rollout finished", record.Serial)
		}
	}
}
