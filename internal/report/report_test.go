package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hawkroll/hawkroll/internal/hawkbit"
	"github.com/hawkroll/hawkroll/internal/rollout"
)

type fakeTarget struct {
	assigned  *hawkbit.DistributionSet
	installed *hawkbit.DistributionSet
	actions   []hawkbit.Action
	fail      bool
}

func newVerifyServer(t *testing.T, targets map[string]fakeTarget) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var serial, resource string
		fmt.Sscanf(r.URL.Path, "/rest/v1/targets/%s", &serial)
		if i := strings.IndexByte(serial, '/'); i >= 0 {
			serial, resource = serial[:i], serial[i+1:]
		}

		target, ok := targets[serial]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if target.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeSet := func(ds *hawkbit.DistributionSet) {
			if ds == nil {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			json.NewEncoder(w).Encode(ds)
		}

		switch resource {
		case "assignedDS":
			writeSet(target.assigned)
		case "installedDS":
			writeSet(target.installed)
		case "actions":
			json.NewEncoder(w).Encode(map[string]any{"content": target.actions})
		default:
			t.Errorf("unexpected resource %q", resource)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newVerifyClient(url string) *hawkbit.Client {
	client := hawkbit.NewClient(url, "admin", "admin")
	client.SetRetry(0, time.Millisecond)
	return client
}

func TestVerify_InSyncAndPending(t *testing.T) {
	current := &hawkbit.DistributionSet{ID: 10, Name: "app", Version: "1.1"}
	previous := &hawkbit.DistributionSet{ID: 9, Name: "app", Version: "1.0"}

	server := newVerifyServer(t, map[string]fakeTarget{
		"SN001": {assigned: current, installed: current},
		"SN002": {assigned: current, installed: previous},
		"SN003": {},
	})
	defer server.Close()

	records := Verify(newVerifyClient(server.URL), []string{"SN001", "SN002", "SN003"}, false)

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if !records[0].InSync() {
		t.Error("SN001 should be in sync")
	}
	if records[1].InSync() {
		t.Error("SN002 has an unfinished update, should not be in sync")
	}
	if records[2].Assigned != nil || records[2].Installed != nil {
		t.Errorf("SN003 should have no sets, got %+v", records[2])
	}
	if !records[2].InSync() {
		t.Error("a target with no assignment counts as in sync")
	}
}

func TestVerify_QueryFailureIsolatedPerTarget(t *testing.T) {
	current := &hawkbit.DistributionSet{ID: 10, Name: "app", Version: "1.1"}

	server := newVerifyServer(t, map[string]fakeTarget{
		"SN001": {fail: true},
		"SN002": {assigned: current, installed: current},
	})
	defer server.Close()

	records := Verify(newVerifyClient(server.URL), []string{"SN001", "SN002"}, false)

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	var queryErr *rollout.TargetQueryError
	if !errors.As(records[0].Err, &queryErr) {
		t.Fatalf("SN001 error = %v, want *TargetQueryError", records[0].Err)
	}
	if queryErr.Serial != "SN001" {
		t.Errorf("Serial = %s, want SN001", queryErr.Serial)
	}
	if records[1].Err != nil || !records[1].InSync() {
		t.Errorf("SN002 should be unaffected, got %+v", records[1])
	}
}

func TestVerify_HistoryOldestFirst(t *testing.T) {
	current := &hawkbit.DistributionSet{ID: 10, Name: "app", Version: "1.1"}

	server := newVerifyServer(t, map[string]fakeTarget{
		"SN001": {
			assigned:  current,
			installed: current,
			actions: []hawkbit.Action{ // newest first, as the service serves them
				{ID: 3, CreatedAt: 3000, Status: hawkbit.ActionStatus{Execution: "finished"}},
				{ID: 2, CreatedAt: 2000, Status: hawkbit.ActionStatus{Execution: "finished"}},
				{ID: 1, CreatedAt: 1000, Status: hawkbit.ActionStatus{Execution: "canceled"}},
			},
		},
	})
	defer server.Close()

	records := Verify(newVerifyClient(server.URL), []string{"SN001"}, true)

	history := records[0].History
	if len(history) != 3 {
		t.Fatalf("got %d history entries, want 3", len(history))
	}
	for i, wantID := range []int64{1, 2, 3} {
		if history[i].ID != wantID {
			t.Errorf("history[%d].ID = %d, want %d (oldest first)", i, history[i].ID, wantID)
		}
	}
}

func TestVerify_HistorySkippedWithoutFlag(t *testing.T) {
	current := &hawkbit.DistributionSet{ID: 10, Name: "app", Version: "1.1"}

	server := newVerifyServer(t, map[string]fakeTarget{
		"SN001": {assigned: current, installed: current, actions: []hawkbit.Action{{ID: 1}}},
	})
	defer server.Close()

	records := Verify(newVerifyClient(server.URL), []string{"SN001"}, false)
	if len(records[0].History) != 0 {
		t.Errorf("history should not be fetched, got %d entries", len(records[0].History))
	}
}

func TestRenderAndSummary(t *testing.T) {
	current := &hawkbit.DistributionSet{ID: 10, Name: "app", Version: "1.1"}
	records := []TargetRecord{
		{Serial: "SN001", Assigned: current, Installed: current},
		{Serial: "SN002", Assigned: current},
		{Serial: "SN003", Err: &rollout.TargetQueryError{Serial: "SN003", Err: errors.New("boom")}},
	}

	out := Render(records)
	for _, want := range []string{"TARGET", "SN001", "app 1.1", "SN003", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}

	summary := Summary(records)
	for _, want := range []string{"3 targets", "1 in sync", "1 pending", "1 query failures"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, missing %q", summary, want)
		}
	}
}
