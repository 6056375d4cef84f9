package report

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hawkroll/hawkroll/internal/hawkbit"
	"github.com/hawkroll/hawkroll/internal/logging"
	"github.com/hawkroll/hawkroll/internal/rollout"
	"github.com/hawkroll/hawkroll/internal/ui"
)

// TargetRecord is one row of the verification report: what the service
// believes is assigned to and installed on a single target.
type TargetRecord struct {
	Serial    string
	Assigned  *hawkbit.DistributionSet // nil when nothing is assigned
	Installed *hawkbit.DistributionSet // nil when nothing is installed
	History   []hawkbit.Action         // oldest first, only when requested
	Err       error                    // query failure for this target
}

// InSync reports whether the assigned and installed distribution sets
// match. A target with neither assigned nor installed counts as in sync.
func (r TargetRecord) InSync() bool {
	if r.Err != nil {
		return false
	}
	if r.Assigned == nil && r.Installed == nil {
		return true
	}
	if r.Assigned == nil || r.Installed == nil {
		return false
	}
	return r.Assigned.ID == r.Installed.ID
}

// Verify queries the assigned and installed distribution set for every
// serial, plus the action history when withHistory is set. A failed query
// is recorded on the affected row and does not stop the remaining
// targets.
func Verify(client *hawkbit.Client, serials []string, withHistory bool) []TargetRecord {
	records := make([]TargetRecord, 0, len(serials))

	for _, serial := range serials {
		record := TargetRecord{Serial: serial}

		assigned, err := client.GetAssignedDistributionSet(serial)
		if err != nil {
			record.Err = &rollout.TargetQueryError{Serial: serial, Err: err}
			logging.Warn("Target verification query failed",
				zap.String("target", serial), zap.Error(err))
			records = append(records, record)
			continue
		}
		record.Assigned = assigned

		installed, err := client.GetInstalledDistributionSet(serial)
		if err != nil {
			record.Err = &rollout.TargetQueryError{Serial: serial, Err: err}
			logging.Warn("Target verification query failed",
				zap.String("target", serial), zap.Error(err))
			records = append(records, record)
			continue
		}
		record.Installed = installed

		if withHistory {
			actions, err := client.GetTargetActions(serial)
			if err != nil {
				record.Err = &rollout.TargetQueryError{Serial: serial, Err: err}
				logging.Warn("Target history query failed",
					zap.String("target", serial), zap.Error(err))
			} else {
				// The service serves newest first; the report
				// reads top to bottom in time order.
				record.History = reverse(actions)
			}
		}

		records = append(records, record)
	}

	return records
}

func reverse(actions []hawkbit.Action) []hawkbit.Action {
	out := make([]hawkbit.Action, len(actions))
	for i, a := range actions {
		out[len(actions)-1-i] = a
	}
	return out
}

// Render formats the records as an aligned console table, one row per
// target, with optional indented history lines beneath each row.
func Render(records []TargetRecord) string {
	const (
		serialWidth = 20
		setWidth    = 28
	)

	var b strings.Builder

	b.WriteString(ui.TableHeaderStyle.Render(fmt.Sprintf("%-*s %-*s %-*s %s",
		serialWidth, "TARGET", setWidth, "ASSIGNED", setWidth, "INSTALLED", "STATE")))
	b.WriteString("\n")

	for _, record := range records {
		// Pad before styling so ANSI escapes do not skew the columns.
		serial := fmt.Sprintf("%-*s", serialWidth, record.Serial)

		if record.Err != nil {
			b.WriteString(fmt.Sprintf("%s %s\n",
				ui.TableCellStyle.Render(serial),
				ui.ErrorMessageStyle.Render(record.Err.Error())))
			continue
		}

		state := ui.TickFinishedStyle.Render(ui.SuccessMarker + " in sync")
		if !record.InSync() {
			state = ui.TickRunningStyle.Render(ui.PendingMarker + " pending")
		}

		b.WriteString(fmt.Sprintf("%s %s %s %s\n",
			ui.TableCellStyle.Render(serial),
			setLabel(record.Assigned, setWidth),
			setLabel(record.Installed, setWidth),
			state))

		for _, action := range record.History {
			b.WriteString(ui.TableMutedStyle.Render(fmt.Sprintf("    %s  %-10s %s",
				action.CreatedTime().Format("2006-01-02 15:04:05"),
				action.Status.Execution,
				historySetLabel(action.DistributionSet))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Summary returns the one-line roll-up printed under the table.
func Summary(records []TargetRecord) string {
	inSync, pending, failed := 0, 0, 0
	for _, record := range records {
		switch {
		case record.Err != nil:
			failed++
		case record.InSync():
			inSync++
		default:
			pending++
		}
	}

	parts := []string{fmt.Sprintf("%d in sync", inSync)}
	if pending > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", pending))
	}
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d query failures", failed))
	}
	return fmt.Sprintf("%d targets: %s", len(records), strings.Join(parts, ", "))
}

func setLabel(ds *hawkbit.DistributionSet, width int) string {
	if ds == nil {
		return ui.TableMutedStyle.Render(fmt.Sprintf("%-*s", width, "-"))
	}
	return ui.TableCellStyle.Render(fmt.Sprintf("%-*s", width, ds.Label()))
}

func historySetLabel(ds *hawkbit.DistributionSet) string {
	if ds == nil {
		return "-"
	}
	return ds.Label()
}
