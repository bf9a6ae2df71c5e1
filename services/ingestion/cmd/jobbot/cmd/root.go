package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobbots/services/ingestion/internal/app"
	"jobbots/services/ingestion/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fetchMode  string
	headed     bool
	logLevel   string
	jsonOutput bool

	rt *app.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "jobbot",
	Short: "jobbot searches BOSS直聘 and 赶集网 job postings.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := app.NewLogger(cfg)
		if err != nil {
			return err
		}

		rt, err = app.NewRuntime(cmd.Context(), cfg, logger, app.RuntimeOptions{
			Publish: cmd.Name() == "serve",
			Cache:   true,
		})
		return err
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&fetchMode, "fetch-mode", "", "page fetching: browser or http (overrides FETCH_MODE)")
	flags.BoolVar(&headed, "headed", false, "show the browser window")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	flags.BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("fetch-mode") {
		cfg.FetchMode = fetchMode
	}
	if flags.Changed("headed") {
		cfg.BrowserHeadless = !headed
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	} else if cmd.Name() != "serve" {
		cfg.LogLevel = "warn"
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if rt != nil {
		if closeErr := rt.Close(context.Background()); closeErr != nil {
			rt.Logger.Warn("failed to close runtime", zap.Error(closeErr))
		}
		_ = rt.Logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
