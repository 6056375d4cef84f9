package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the rollout console UI
var (
	// Primary colors
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - finished, checkmarks
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, failed targets
	WarningColor = lipgloss.Color("#FFA500") // Orange - running, pending
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
	DefaultPadding   = 2   // Default padding inside boxes
)

// Shared styles for the rollout console UI
var (
	// HeaderTitleStyle is for the main command title (e.g., "FIRMWARE DEPLOYMENT")
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	// HeaderCommandStyle is for the command path (e.g., "hawkroll deploy 1.0")
	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamKeyStyle is for parameter keys (e.g., "Server:")
	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamValueStyle is for parameter values (e.g., "https://hawkbit.example.com")
	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// StepLabelStyle is for "Step 2/3: rolling out app 1.1"
	StepLabelStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// TickTimestampStyle is for the timestamp prefix on poll lines
	TickTimestampStyle = lipgloss.NewStyle().
				Foreground(MutedColor)

	// TickRunningStyle is for in-flight rollout state text
	TickRunningStyle = lipgloss.NewStyle().
				Foreground(WarningColor)

	// TickFinishedStyle is for finished rollout state text
	TickFinishedStyle = lipgloss.NewStyle().
				Foreground(SuccessColor)

	// TickErrorStyle is for failed rollout state text
	TickErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SuccessTitleStyle is for the success result title
	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// ErrorTitleStyle is for the error result title
	ErrorTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// ErrorMessageStyle is for error message text
	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// ResultKeyStyle is for result detail keys
	ResultKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(15)

	// ResultValueStyle is for result detail values
	ResultValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// TableHeaderStyle is for verification table column headers
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// TableCellStyle is for verification table cells
	TableCellStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// TableMutedStyle is for absent values ("-") and history detail
	TableMutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	RunningMarker = "●"
	PendingMarker = "·"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// IsInteractive reports whether stdout is attached to a terminal. The
// sequence picker and password prompt require an interactive session.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// HeaderBorderStyle returns the border style for command headers
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2) // Account for border characters
}

// SuccessBoxStyle returns the border style for success result boxes
func SuccessBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(SuccessColor).
		Width(width - 2).
		Padding(1, 2)
}

// ErrorBoxStyle returns the border style for error result boxes
func ErrorBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Width(width - 2).
		Padding(1, 2)
}
