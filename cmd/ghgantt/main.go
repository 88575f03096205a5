package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/h0rv/ghgantt/internal/config"
	"github.com/h0rv/ghgantt/internal/gh"
	"github.com/h0rv/ghgantt/internal/logging"
	"github.com/h0rv/ghgantt/internal/report"
	"github.com/h0rv/ghgantt/internal/store"
	"github.com/h0rv/ghgantt/internal/timeline"
	"github.com/h0rv/ghgantt/internal/tui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Persistent flags
	configFlag   string
	logLevelFlag string
	logFileFlag  string

	// Root flags
	repoFlag      string
	exportDirFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ghgantt",
		Short: "Gantt timelines for GitHub issues",
		Long: `ghgantt infers when work on each issue of a GitHub repository started
and finished, and shows the result as a Gantt chart.

An issue starts on the first day it was labeled or moved to a project column
named like "In Progress", "Doing" or "WIP" (configurable). It ends on the day
it was closed, or today for open issues.

Authentication (first match wins):
  1. System keyring: Run 'ghgantt auth login --token <token>'
  2. GitHub CLI: Run 'gh auth login'
  3. Environment variable: Set GITHUB_TOKEN`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", config.DefaultPath(), "Path to the YAML config file.")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error). Overrides the config file.")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Write JSON logs to this file. Overrides the config file.")

	rootCmd.Flags().StringVar(&repoFlag, "repo", "", "Repository as owner/repository. Skips the repository prompt.")
	rootCmd.Flags().StringVar(&exportDirFlag, "export-dir", ".", "Directory for CSV and PNG exports.")

	rootCmd.AddCommand(newExportCmd(), newServeCmd(), newAuthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is the wiring shared by every command.
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	closeLog func()
}

// setup loads the config and builds the logger. When the terminal is owned
// by the TUI, logs go to a file even if none is configured.
func setup(needsFileLog bool) (*env, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if logFileFlag != "" {
		cfg.LogFile = logFileFlag
	}
	if needsFileLog && cfg.LogFile == "" {
		cfg.LogFile = config.DefaultLogFile()
	}

	log, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, closeLog: closeLog}, nil
}

// credential resolves a token from the configured providers.
func (e *env) credential() (auth.Credential, error) {
	return auth.Resolve(auth.DefaultProviders(e.cfg.Account)...)
}

func (e *env) restClient() *gh.Client {
	return gh.New(
		gh.WithBaseURL(e.cfg.APIURL),
		gh.WithAPIVersion(e.cfg.APIVersion),
		gh.WithHTTPClient(&http.Client{Timeout: e.cfg.HTTPTimeout}),
		gh.WithConcurrency(e.cfg.Concurrency),
		gh.WithLogger(logging.Component(e.log, "gh")),
	)
}

func (e *env) graphQL() *gh.GraphQL {
	return gh.NewGraphQL(e.cfg.GraphQLURL)
}

func (e *env) builder() *report.Builder {
	engine := timeline.New(timeline.WithStatuses(e.cfg.Vocabulary()))
	return report.NewBuilder(e.restClient(), engine, logging.Component(e.log, "report"))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.closeLog()

	cred, err := e.credential()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := tui.NewAppModel(ctx, e.builder(), e.graphQL(), store.New(), cred, repoFlag, exportDirFlag)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}
