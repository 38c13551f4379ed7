package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/owlandlion/access-cli/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	apiBase string
	dataDir string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "access-cli",
	Short: "Terminal client for the Owl & Lion Access tutoring platform",
	Long: `Terminal client for the Owl & Lion Access student-tutor matching platform.

Students register their learning profile, get matched with a tutor, and chat
with the assistant while they wait. Tutors browse their matched students,
review study plans, and ask the assistant about a student's needs.

Quick Start:
  access-cli login --code <code>     # Exchange an authorization code
  access-cli student                 # Register and get matched (student)
  access-cli tutor list              # Browse matched students (tutor)
  access-cli transcript list         # Browse archived conversations

Matching and chat inference run on the remote backend; this client only
renders the flows and archives finished conversations locally.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api-base", "", "Backend base URL (overrides config and ACCESS_API_BASE)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.access-cli)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves the data directory and loads config with flag
// overrides applied on top (flag > env > file > default).
func loadConfig() (internal.Config, error) {
	dir := dataDir
	if dir == "" {
		var err error
		dir, err = internal.DefaultDataDir()
		if err != nil {
			return internal.Config{}, err
		}
	}

	cfg, err := internal.LoadConfig(dir)
	if err != nil {
		return cfg, err
	}
	if apiBase != "" {
		cfg.APIBase = apiBase
	}
	return cfg, nil
}

// activeSession loads the saved session and rejects missing or expired ones.
func activeSession(cfg internal.Config) (*internal.Session, error) {
	session, err := internal.LoadSession(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.Token() == "" {
		return nil, fmt.Errorf("not logged in, run `access-cli login` first")
	}
	if session.Expired() {
		return nil, fmt.Errorf("session expired, run `access-cli login` again")
	}
	return session, nil
}

// apiClient builds the backend client for a session.
func apiClient(cfg internal.Config, session *internal.Session) *internal.Client {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return internal.NewClient(cfg.APIBase, timeout, session)
}
