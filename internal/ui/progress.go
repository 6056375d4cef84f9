package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// RolloutProgress renders the console view of one rollout step: a banner
// line when the step starts, then one timestamped line per poll tick with
// a progress bar and the target counters.
type RolloutProgress struct {
	Width int
	bar   progress.Model
}

// NewRolloutProgress creates a progress renderer sized to the terminal.
func NewRolloutProgress() *RolloutProgress {
	width := GetTerminalWidth()
	barWidth := width - 50 // leave room for timestamp, state and counters
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 40 {
		barWidth = 40
	}
	return &RolloutProgress{
		Width: width,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
		),
	}
}

// StepBanner renders the "Step 2/3: rolling out app 1.1" line.
func (p *RolloutProgress) StepBanner(index, total int, firmware string) string {
	return StepLabelStyle.Render(fmt.Sprintf("Step %d/%d: rolling out %s", index, total, firmware))
}

// TickLine renders one poll observation. When the remote counters are
// unusable the bar is replaced by a plain state line.
func (p *RolloutProgress) TickLine(at time.Time, state string, percent int, percentKnown bool, completed, failed, pending, total int) string {
	var b strings.Builder

	b.WriteString(TickTimestampStyle.Render(at.Format("15:04:05")))
	b.WriteString("  ")
	b.WriteString(p.stateStyle(state).Render(fmt.Sprintf("%-9s", state)))
	b.WriteString("  ")

	if percentKnown {
		b.WriteString(p.bar.ViewAs(float64(percent) / 100))
		b.WriteString(fmt.Sprintf("  %3d%%", percent))
	} else {
		b.WriteString(TableMutedStyle.Render("progress unknown"))
	}

	if total > 0 {
		counters := fmt.Sprintf("  %d/%d done", completed, total)
		if failed > 0 {
			counters += ErrorMessageStyle.Render(fmt.Sprintf(", %d failed", failed))
		}
		if pending > 0 {
			counters += TableMutedStyle.Render(fmt.Sprintf(", %d pending", pending))
		}
		b.WriteString(counters)
	}

	return b.String()
}

func (p *RolloutProgress) stateStyle(state string) lipgloss.Style {
	switch strings.ToLower(state) {
	case "finished":
		return TickFinishedStyle
	case "error":
		return TickErrorStyle
	default:
		return TickRunningStyle
	}
}
