// Hawkroll is a fleet firmware rollout utility for Hawkbit-compatible
// update servers.
//
// It reads a JSON file of named firmware sequences, maintains a server-side
// target filter covering the fleet listed in a CSV file, and drives the
// sequence steps as Hawkbit rollouts one at a time, polling each to
// completion before starting the next. A verification report compares the
// assigned and installed distribution set of every target at the end.
//
// Usage:
//
//	hawkroll [command] [flags]
//
// Running 'hawkroll deploy' without a sequence argument opens an
// interactive picker. See 'hawkroll --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hawkroll/hawkroll/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hawkroll",
	Short: "Fleet firmware rollout utility",
	Long: `A utility for rolling out firmware sequences to device fleets via a
Hawkbit-compatible update server.

Sequences of firmware steps are declared in a JSON file; each step is
deployed as a server-side rollout and polled to completion before the
next one starts. The target fleet is a CSV file of serial numbers.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(sequencesCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hawkroll " + version.Full())
	},
}
