// Package ui provides the terminal presentation layer: lipgloss styles
// and boxed headers/results, the per-tick rollout progress line, and the
// interactive Bubble Tea sequence picker.
//
// All rendering is width-aware via the terminal size, capped at
// MaxContentWidth so output stays readable on wide terminals. Nothing in
// this package talks to the network; callers pass in already-resolved
// values.
package ui
