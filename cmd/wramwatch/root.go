package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wramwatch/wramwatch/internal/config"
	"github.com/wramwatch/wramwatch/internal/wram"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   binaryName,
	Short: "Watch a GBC emulator's WRAM and present the decoded game state",
	Long: "wramwatch polls a running emulator for its 32 KiB work RAM, decodes the party, " +
		"player and battle records for the current game state and publishes overlay updates.",
	Version:       fmt.Sprintf("%s (built %s)", Version, BuildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindConfig(cmd)
	},
	RunE: runWatch,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configDir, "config-dir", "c", ".", "Directory holding "+config.FileName)
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("host", "127.0.0.1", "Emulator host")
	flags.Int("port", 8888, "Emulator port")

	rootCmd.AddCommand(refdbCmd)
}

// bindConfig loads the config file and lets explicitly set flags override it.
// A missing file is not an error: defaults apply.
func bindConfig(cmd *cobra.Command) error {
	loadErr := config.Load(configDir)

	bindings := map[string]string{
		"logLevel":      "log-level",
		"emulator.host": "host",
		"emulator.port": "port",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flag(flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	var notFound viper.ConfigFileNotFoundError
	if loadErr != nil && !errors.As(loadErr, &notFound) {
		return loadErr
	}
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	err = a.run(ctx)
	switch {
	case err == nil, ctx.Err() != nil:
		a.logger.Info("Shutting down", "reason", context.Cause(ctx))
		return nil
	case errors.As(err, new(*wram.TransportError)):
		a.logger.Error("Emulator connection lost", "error", err)
		return err
	default:
		a.logger.Error("Poll loop stopped", "error", err)
		return err
	}
}
