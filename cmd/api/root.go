package main

import (
	"strings"

	"contentops-workflow/internal/config"
	"contentops-workflow/internal/logging"

	"github.com/spf13/cobra"
)

type commandContext struct {
	logLevel  string
	logFormat string
	cfg       *config.Config
}

// load reads the environment once per process and applies flag overrides.
func (c *commandContext) load() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg := config.Load()
	if v := strings.TrimSpace(c.logLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(c.logFormat); v != "" {
		cfg.LogFormat = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	c.cfg = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "contentops",
		Short:         "Content approval, notification and distribution service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.load()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "", "Override LOG_LEVEL (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&ctx.logFormat, "log-format", "", "Override LOG_FORMAT (json, console)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newWorkerCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	return rootCmd
}
