package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hawkroll/hawkroll/internal/config"
	"github.com/hawkroll/hawkroll/internal/hawkbit"
	"github.com/hawkroll/hawkroll/internal/logging"
	"github.com/hawkroll/hawkroll/internal/report"
	"github.com/hawkroll/hawkroll/internal/rollout"
	"github.com/hawkroll/hawkroll/internal/targetlist"
	"github.com/hawkroll/hawkroll/internal/ui"
)

// Command flags
var (
	serverURL   string
	username    string
	password    string
	insecureTLS bool
	configPath  string
	targetsPath string
	filterName  string
	showHistory bool
	httpTimeout string
)

// rolloutNameSuffixLen is how many trailing characters of the first serial
// are embedded in rollout names to make them recognizable per fleet.
const rolloutNameSuffixLen = 4

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Management API base URL (e.g. https://hawkbit.example.com)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Basic-auth username")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Basic-auth password (prefer HAWKROLL_PASSWORD or .env)")
	rootCmd.PersistentFlags().BoolVar(&insecureTLS, "insecure", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "sequences.json", "Path to the sequence configuration file")
	rootCmd.PersistentFlags().StringVarP(&targetsPath, "targets", "t", "targets.csv", "Path to the CSV of target serial numbers")
	rootCmd.PersistentFlags().StringVar(&filterName, "filter-name", "", "Server-side target filter name (default: derived from the target list)")
	rootCmd.PersistentFlags().StringVar(&httpTimeout, "timeout", "30s", "HTTP request timeout (e.g. 30s, 2m)")
}

var deployCmd = &cobra.Command{
	Use:   "deploy [sequence]",
	Short: "Deploy a firmware sequence to the target fleet",
	Long: `Deploy the steps of a configured firmware sequence as server-side
rollouts, one at a time. Each rollout is polled until it finishes; the
next step starts only after the previous one completed. A failed or
stalled rollout aborts the remaining steps.

Without a sequence argument, an interactive picker lists the configured
sequences (requires a terminal).`,
	Example: `  # Deploy sequence 1.2 to the fleet in targets.csv
  hawkroll deploy 1.2

  # Pick a sequence interactively
  hawkroll deploy

  # Lab instance with self-signed certificate
  hawkroll deploy 1.2 --server https://10.0.0.5 --insecure`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report assigned vs installed firmware for every target",
	Long: `Query the update server for the distribution set assigned to and
installed on each target in the fleet, and print a per-target report.
No rollouts are created or modified.`,
	RunE: runVerify,
}

var sequencesCmd = &cobra.Command{
	Use:   "sequences",
	Short: "List the configured firmware sequences",
	RunE:  runSequences,
}

func init() {
	deployCmd.Flags().BoolVar(&showHistory, "history", false, "Include per-target deployment history in the final report")
	verifyCmd.Flags().BoolVar(&showHistory, "history", false, "Include per-target deployment history")
}

// newClient resolves connection settings and credentials, builds the API
// client and checks connectivity.
//
// Credentials resolve in order: flags, HAWKROLL_USERNAME/HAWKROLL_PASSWORD
// environment variables, a .env file in the working directory, the config
// file's server section, the saved profile (username only; passwords are
// never stored), and finally an interactive prompt.
func newClient(registry *config.Registry, server *config.Server) (*hawkbit.Client, error) {
	// .env is optional; ignore a missing file
	_ = godotenv.Load()

	if serverURL == "" {
		serverURL = os.Getenv("HAWKROLL_SERVER")
	}
	if serverURL == "" && server != nil {
		serverURL = server.URL
	}
	if serverURL == "" && registry != nil {
		serverURL = registry.ServerURL
	}
	if serverURL == "" {
		return nil, errors.New("no server URL: use --server, HAWKROLL_SERVER, or a saved profile")
	}

	if username == "" {
		username = os.Getenv("HAWKROLL_USERNAME")
	}
	if username == "" && server != nil {
		username = server.Username
	}
	if username == "" && registry != nil {
		username = registry.Username
	}
	if username == "" {
		return nil, errors.New("no username: use --username, HAWKROLL_USERNAME, or a saved profile")
	}

	if password == "" {
		password = os.Getenv("HAWKROLL_PASSWORD")
	}
	if password == "" {
		prompted, err := promptPassword(username)
		if err != nil {
			return nil, err
		}
		password = prompted
	}

	client := hawkbit.NewClient(serverURL, username, password)

	timeout, err := time.ParseDuration(httpTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout value: %w", err)
	}
	client.SetTimeout(timeout)

	if insecureTLS || (registry != nil && registry.Preferences != nil && registry.Preferences.InsecureTLS) {
		client.SetInsecureTLS(true)
	}

	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("cannot reach %s: %w", serverURL, err)
	}
	return client, nil
}

func promptPassword(user string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errors.New("no password: use --password, HAWKROLL_PASSWORD, or a .env file")
	}
	fmt.Printf("Password for %s: ", user)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return "", errors.New("empty password")
	}
	return string(raw), nil
}

func loadRegistry() *config.Registry {
	registry, err := config.LoadRegistry()
	if err != nil {
		logging.Warn("Could not load profile, continuing without it")
		return nil
	}
	return registry
}

// resolveFilterName picks the server-side filter name: flag, profile, or a
// name derived from the target-list file.
func resolveFilterName(registry *config.Registry, targets *targetlist.TargetSet) string {
	if filterName != "" {
		return filterName
	}
	if registry != nil && registry.FilterName != "" {
		return registry.FilterName
	}
	return fmt.Sprintf("hawkroll-fleet-%s", targets.Suffix(rolloutNameSuffixLen))
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	initLogging()
	defer logging.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		ui.PrintFailure("Configuration error", err)
		return err
	}

	targets, err := targetlist.Load(targetsPath)
	if err != nil {
		ui.PrintFailure("Target list error", err)
		return err
	}

	sequenceName, err := chooseSequence(cfg, args)
	if err != nil {
		return err
	}
	seq, ok := cfg.Sequence(sequenceName)
	if !ok {
		err := fmt.Errorf("sequence %q is not configured (have: %s)",
			sequenceName, strings.Join(cfg.SequenceNames, ", "))
		ui.PrintFailure("Unknown sequence", err)
		return err
	}

	registry := loadRegistry()
	client, err := newClient(registry, &cfg.Server)
	if err != nil {
		ui.PrintFailure("Connection failed", err)
		return err
	}

	name := resolveFilterName(registry, targets)

	ui.PrintCommandHeader(
		"Firmware Deployment",
		"hawkroll deploy "+sequenceName,
		map[string]string{
			"Server":   serverURL,
			"Sequence": fmt.Sprintf("%s (%d steps)", sequenceName, len(seq.Steps)),
			"Targets":  fmt.Sprintf("%d devices", targets.Len()),
			"Filter":   name,
		},
	)

	filterID, err := rollout.EnsureTargetFilter(client, name, targets.Query())
	if err != nil {
		ui.PrintFailure("Target filter error", err)
		return err
	}

	progress := ui.NewRolloutProgress()
	driver := rollout.NewDriver(client, cfg.Rollout, cfg.Polling)
	driver.OnStepStart = func(index, total int, step config.FirmwareStep) {
		fmt.Println()
		fmt.Println(progress.StepBanner(index, total, step.String()))
	}
	driver.OnTick = func(step config.FirmwareStep, st rollout.Status) {
		fmt.Println(progress.TickLine(time.Now(), st.State.String(),
			st.Percent, st.PercentKnown, st.Completed, st.Failed, st.Pending, st.Total))
	}

	if err := driver.RunSequence(seq, filterID, targets.Query(), targets.Suffix(rolloutNameSuffixLen)); err != nil {
		ui.PrintFailure("Deployment failed", err)
		return err
	}

	if registry != nil {
		registry.RecordDeploy(sequenceName)
		if err := registry.Save(); err != nil {
			logging.Warn("Could not save profile")
		}
	}

	records := report.Verify(client, targets.Serials, showHistory)
	fmt.Println()
	fmt.Println(report.Render(records))

	ui.PrintSuccess("Sequence "+sequenceName+" deployed", map[string]string{
		"Steps":   fmt.Sprintf("%d", len(seq.Steps)),
		"Targets": report.Summary(records),
	})
	return nil
}

// chooseSequence returns the positional argument, or runs the interactive
// picker when the session has a terminal.
func chooseSequence(cfg *config.File, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	if !ui.IsInteractive() {
		return "", errors.New("sequence argument is required in non-interactive sessions")
	}

	items := make([]ui.SequenceItem, 0, len(cfg.SequenceNames))
	for _, name := range cfg.SequenceNames {
		seq, _ := cfg.Sequence(name)
		labels := make([]string, len(seq.Steps))
		for i, step := range seq.Steps {
			labels[i] = step.String()
		}
		items = append(items, ui.SequenceItem{
			Name:    name,
			Summary: fmt.Sprintf("%d steps: %s", len(seq.Steps), strings.Join(labels, ", ")),
		})
	}

	chosen, err := ui.PickSequence(items)
	if err != nil {
		return "", err
	}
	return chosen, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	initLogging()
	defer logging.Sync()

	targets, err := targetlist.Load(targetsPath)
	if err != nil {
		ui.PrintFailure("Target list error", err)
		return err
	}

	registry := loadRegistry()
	client, err := newClient(registry, nil)
	if err != nil {
		ui.PrintFailure("Connection failed", err)
		return err
	}

	withHistory := showHistory
	if !withHistory && registry != nil && registry.Preferences != nil {
		withHistory = registry.Preferences.ShowHistory
	}

	ui.PrintCommandHeader(
		"Fleet Verification",
		"hawkroll verify",
		map[string]string{
			"Server":  serverURL,
			"Targets": fmt.Sprintf("%d devices", targets.Len()),
		},
	)

	records := report.Verify(client, targets.Serials, withHistory)
	fmt.Println(report.Render(records))
	fmt.Println(report.Summary(records))
	return nil
}

func runSequences(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.Load(configPath)
	if err != nil {
		ui.PrintFailure("Configuration error", err)
		return err
	}

	for _, name := range cfg.SequenceNames {
		seq, _ := cfg.Sequence(name)
		fmt.Printf("%s (%d steps)\n", name, len(seq.Steps))
		for i, step := range seq.Steps {
			fmt.Printf("  %d. %s\n", i+1, step.String())
		}
	}
	return nil
}

// initLogging enables zap output when HAWKROLL_LOG_LEVEL is set; console
// output stays clean otherwise.
func initLogging() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging setup failed: %v\n", err)
	}
}
