package rollout

import (
	"testing"

	"github.com/hawkroll/hawkroll/internal/hawkbit"
)

func TestMapRemoteState(t *testing.T) {
	tests := []struct {
		raw  string
		want State
	}{
		{"creating", StateStarting},
		{"ready", StateStarting},
		{"starting", StateStarting},
		{"running", StateRunning},
		{"finished", StateFinished},
		{"FINISHED", StateFinished},
		{"error", StateError},
		{"paused", StateError},
		{"stopped", StateError},
		{"something-new", StateRunning},
		{"", StateRunning},
	}

	for _, tt := range tests {
		if got := mapRemoteState(tt.raw); got != tt.want {
			t.Errorf("mapRemoteState(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateCreated, StateStarting, StateRunning} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []State{StateFinished, StateError} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestStatusFromRollout_Percent(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		completed int
		wantKnown bool
		want      int
	}{
		{"zero progress", 10, 0, true, 0},
		{"partial", 10, 4, true, 40},
		{"complete", 10, 10, true, 100},
		{"over-reported completion clamps", 10, 15, true, 100},
		{"no totals", 0, 0, false, 0},
		{"negative total", -1, 3, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := StatusFromRollout(&hawkbit.Rollout{
				Status:                "running",
				TotalTargets:          tt.total,
				TotalTargetsCompleted: tt.completed,
			})

			if st.PercentKnown != tt.wantKnown {
				t.Fatalf("PercentKnown = %v, want %v", st.PercentKnown, tt.wantKnown)
			}
			if tt.wantKnown && st.Percent != tt.want {
				t.Errorf("Percent = %d, want %d", st.Percent, tt.want)
			}
		})
	}
}

func TestStatusFromRollout_FinishedWithoutTotals(t *testing.T) {
	st := StatusFromRollout(&hawkbit.Rollout{Status: "finished"})

	if !st.PercentKnown || st.Percent != 100 {
		t.Errorf("finished rollout without totals should report 100%%, got %s", st.PercentString())
	}
}

func TestPercentString(t *testing.T) {
	known := Status{Percent: 40, PercentKnown: true}
	if known.PercentString() != "40%" {
		t.Errorf("PercentString() = %s, want 40%%", known.PercentString())
	}

	unknown := Status{}
	if unknown.PercentString() != "--%" {
		t.Errorf("PercentString() = %s, want --%%", unknown.PercentString())
	}
}
