package hawkbit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFindDistributionSet_ContentEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [
			{"id": 10, "name": "app", "version": "1.0"},
			{"id": 11, "name": "app", "version": "1.0.1"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ds, err := client.FindDistributionSet("app", "1.0")
	if err != nil {
		t.Fatalf("FindDistributionSet() error = %v", err)
	}
	if ds == nil {
		t.Fatal("FindDistributionSet() = nil, want match")
	}
	if ds.ID != 10 {
		t.Errorf("ID = %d, want 10 (exact version match, not prefix)", ds.ID)
	}
}

func TestFindDistributionSet_EmbeddedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_embedded": {"distributionsets": [
			{"id": 22, "name": "bootloader", "version": "2.1"}
		]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ds, err := client.FindDistributionSet("bootloader", "2.1")
	if err != nil {
		t.Fatalf("FindDistributionSet() error = %v", err)
	}
	if ds == nil || ds.ID != 22 {
		t.Errorf("ds = %+v, want ID 22 from _embedded envelope", ds)
	}
}

func TestFindDistributionSet_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [{"id": 10, "name": "app", "version": "1.0.1"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ds, err := client.FindDistributionSet("app", "1.0")
	if err != nil {
		t.Fatalf("FindDistributionSet() error = %v", err)
	}
	if ds != nil {
		t.Errorf("FindDistributionSet() = %+v, want nil for no exact match", ds)
	}
}

func TestCreateTargetFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/targetfilters" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			Name  string `json:"name"`
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(TargetFilter{ID: 5, Name: payload.Name, Query: payload.Query})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	filter, err := client.CreateTargetFilter("fleet", `(name=="A1" or name=="A2")`)
	if err != nil {
		t.Fatalf("CreateTargetFilter() error = %v", err)
	}
	if filter.ID != 5 || filter.Name != "fleet" {
		t.Errorf("filter = %+v", filter)
	}
}

func TestFindTargetFilterByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [
			{"id": 1, "name": "other", "query": "name==\"X\""},
			{"id": 2, "name": "fleet", "query": "name==\"A1\""}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	filter, err := client.FindTargetFilterByName("fleet")
	if err != nil {
		t.Fatalf("FindTargetFilterByName() error = %v", err)
	}
	if filter == nil || filter.ID != 2 {
		t.Errorf("filter = %+v, want ID 2", filter)
	}

	missing, err := client.FindTargetFilterByName("absent")
	if err != nil {
		t.Fatalf("FindTargetFilterByName() error = %v", err)
	}
	if missing != nil {
		t.Errorf("filter = %+v, want nil for unknown name", missing)
	}
}

func TestGetAssignedDistributionSet_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ds, err := client.GetAssignedDistributionSet("SN100")
	if err != nil {
		t.Fatalf("GetAssignedDistributionSet() error = %v", err)
	}
	if ds != nil {
		t.Errorf("ds = %+v, want nil for 204", ds)
	}
}

func TestGetAssignedDistributionSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/targets/SN100/assignedDS" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id": 10, "name": "app", "version": "1.0"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ds, err := client.GetAssignedDistributionSet("SN100")
	if err != nil {
		t.Fatalf("GetAssignedDistributionSet() error = %v", err)
	}
	if ds == nil || ds.Label() != "app 1.0" {
		t.Errorf("ds = %+v, want app 1.0", ds)
	}
}

func TestGetTargetActions_StatusForms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [
			{"id": 2, "status": "finished", "createdAt": 1700000100000,
			 "distributionSet": {"name": "app", "version": "1.1"}},
			{"id": 1, "status": {"execution": "finished"}, "createdAt": 1700000000000,
			 "distributionSet": {"name": "app", "version": "1.0"}}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	actions, err := client.GetTargetActions("SN100")
	if err != nil {
		t.Fatalf("GetTargetActions() error = %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("len(actions) = %d, want 2", len(actions))
	}

	// Both status wire forms decode to the same execution value
	for _, a := range actions {
		if a.Status.Execution != "finished" {
			t.Errorf("action %d execution = %s, want finished", a.ID, a.Status.Execution)
		}
	}
	if actions[0].CreatedTime().UnixMilli() != 1700000100000 {
		t.Errorf("CreatedTime() mismatch")
	}
}

func TestRolloutLifecycle(t *testing.T) {
	var started bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/rollouts":
			var payload map[string]any
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["start"] != "auto" {
				t.Errorf("start = %v, want auto", payload["start"])
			}
			if payload["actionType"] != "forced" {
				t.Errorf("actionType = %v, want forced", payload["actionType"])
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 42, "name": "r", "status": "creating"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/rollouts/42/start":
			started = true
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/rollouts/42":
			w.Write([]byte(`{"id": 42, "status": "ready", "totalTargets": 3}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	rollout, err := client.CreateRollout("r", `name=="A1"`, 10, 1, "forced")
	if err != nil {
		t.Fatalf("CreateRollout() error = %v", err)
	}
	if rollout.ID != 42 {
		t.Fatalf("ID = %d, want 42", rollout.ID)
	}

	got, err := client.GetRollout(42)
	if err != nil {
		t.Fatalf("GetRollout() error = %v", err)
	}
	if got.Status != "ready" || got.TotalTargets != 3 {
		t.Errorf("rollout = %+v", got)
	}

	if err := client.StartRollout(42); err != nil {
		t.Fatalf("StartRollout() error = %v", err)
	}
	if !started {
		t.Error("start endpoint was not called")
	}
}
