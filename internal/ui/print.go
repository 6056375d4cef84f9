package ui

import "fmt"

// PrintCommandHeader prints a styled command header
func PrintCommandHeader(title, command string, params map[string]string) {
	header := NewHeader(title, command, params)
	fmt.Println(header.Render())
	fmt.Println()
}

// PrintSuccess prints a styled success result
func PrintSuccess(title string, details map[string]string) {
	result := NewSuccessResult(title, details)
	fmt.Println()
	fmt.Println(result.Render())
}

// PrintFailure prints a styled failure result
func PrintFailure(title string, err error) {
	result := NewFailureResult(title, err)
	fmt.Println()
	fmt.Println(result.Render())
}
