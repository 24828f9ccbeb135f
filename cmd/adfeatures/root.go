package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/internal/config"
	"github.com/goliatone/go-adfeatures/internal/logging"
)

const (
	flagConfig    = "config"
	flagEnvFile   = "env-file"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagOutput    = "output"
)

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "adfeatures [sub-command]",
		Short: "Turn classified ad text into marketplace features",
		Long: `adfeatures reads free-form ad text, resolves it against the marketplace
field schema and builds or submits the advert payload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "YAML configuration file")
	flags.StringSlice(flagEnvFile, []string{".env"}, "dotenv files read before the process environment")
	flags.String(flagLogLevel, "", "log level override (debug, info, warn, error)")
	flags.String(flagLogFormat, "", "log format override (json, console)")

	cmd.AddCommand(newResolveCmd(a))
	cmd.AddCommand(newPayloadCmd(a))
	cmd.AddCommand(newSubmitCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newOptionsCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString(flagConfig)
	envFiles, _ := flags.GetStringSlice(flagEnvFile)

	cfg, err := config.Load(path, config.WithEnvFiles(envFiles...))
	if err != nil {
		return err
	}
	if level, _ := flags.GetString(flagLogLevel); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := flags.GetString(flagLogFormat); format != "" {
		cfg.Log.Format = format
	}

	logger, err := logging.New(cfg.Log.Level, logging.Format(cfg.Log.Format))
	if err != nil {
		return fmt.Errorf("adfeatures: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	a.out = cmd.OutOrStdout()
	a.logger.Debug("configuration loaded",
		zap.String("config", path),
		zap.String("schema", cfg.Schema.Source),
		zap.String("model", cfg.LLM.Model))
	return nil
}
