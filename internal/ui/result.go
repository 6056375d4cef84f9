package ui

import (
	"fmt"
	"sort"
	"strings"
)

// Result is the boxed summary printed when a deploy run ends, either the
// green success box or the red failure box with the error detail.
type Result struct {
	Success bool
	Title   string            // e.g., "Sequence 1.2 deployed"
	Details map[string]string // key-value detail rows
	Error   error             // set for failure results
	Width   int
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details map[string]string) *Result {
	return &Result{
		Success: true,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error) *Result {
	return &Result{
		Title: title,
		Error: err,
		Width: GetTerminalWidth(),
	}
}

// AddDetail adds a detail key-value pair
func (r *Result) AddDetail(key, value string) *Result {
	if r.Details == nil {
		r.Details = make(map[string]string)
	}
	r.Details[key] = value
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string

	if r.Success {
		lines = append(lines, SuccessTitleStyle.Render(SuccessMarker+" "+r.Title))
	} else {
		lines = append(lines, ErrorTitleStyle.Render(FailureMarker+" "+r.Title))
		if r.Error != nil {
			lines = append(lines, "")
			lines = append(lines, ErrorMessageStyle.Render(r.Error.Error()))
		}
	}

	if len(r.Details) > 0 {
		lines = append(lines, "")
		keys := make([]string, 0, len(r.Details))
		for k := range r.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s%s",
				ResultKeyStyle.Render(k+":"),
				ResultValueStyle.Render(r.Details[k]),
			))
		}
	}

	content := strings.Join(lines, "\n")

	box := SuccessBoxStyle(width)
	if !r.Success {
		box = ErrorBoxStyle(width)
	}
	return box.Render(content)
}
