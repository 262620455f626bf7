// Package cli defines the Cobra commands for the irsim binary.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/irsim/irsim/internal/app"
	"github.com/irsim/irsim/internal/client"
	"github.com/irsim/irsim/internal/config"
	"github.com/irsim/irsim/internal/logger"
)

var version = "dev" // set via ldflags at build time

type rootFlags struct {
	configPath string
	url        string
	token      string
	logFile    string
	style      string
	debug      bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *rootFlags) {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "irsim",
		Short: "Incident response trainer for the terminal",
		Long: `irsim walks you through simulated security incidents. Events stream in
from the scenario API, the timeline pauses at decision points and every
choice is scored with feedback.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			if err := setupLogging(cfg); err != nil {
				return err
			}
			defer logger.Close()
			return runTUI(cfg, f.style)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&f.logFile, "log-file", "", "Log file path (default "+config.DefaultLogPath+")")
	pf.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&f.url, "url", "", "Scenario API base URL (default "+config.DefaultBaseURL+")")
	cmd.Flags().StringVar(&f.token, "token", "", "Bearer token sent with every API request")
	cmd.Flags().StringVar(&f.style, "style", "dark", "Markdown style (dark, light, notty, ascii)")

	cmd.AddCommand(newMockCmd(f))
	return cmd, f
}

// load reads the config file and applies the flags that were set.
func (f *rootFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(f.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.API.BaseURL = f.url
	}
	if flags.Changed("token") {
		cfg.API.Token = f.token
	}
	if flags.Changed("log-file") {
		cfg.Log.Path = f.logFile
	}
	if flags.Changed("debug") {
		cfg.Log.Debug = f.debug
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	if err := logger.Init(cfg.Log.Path); err != nil {
		return err
	}
	logger.SetDebug(cfg.Log.Debug)
	return nil
}

func runTUI(cfg *config.Config, style string) error {
	api := client.NewHTTPClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout)
	logger.Logger().Info("starting TUI", "api", api.BaseURL())

	m := app.New(api, app.Options{
		ResumeDelay:   cfg.Session.ResumeDelay,
		ChartCapacity: cfg.Charts.Capacity,
		MarkdownStyle: style,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
