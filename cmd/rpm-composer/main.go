package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/rpm-composer/internal/config"
	"github.com/open-edge-platform/rpm-composer/internal/utils/errs"
	"github.com/open-edge-platform/rpm-composer/internal/utils/logger"
)

// Global command flags
var (
	configFile string
	logLevel   string
)

func main() {
	if err := logger.Setup(""); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := createRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		logger.Logger().Errorf("%v", err)
		logger.Sync()
		os.Exit(errs.ExitCode(err))
	}
	logger.Sync()
}

func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpm-composer",
		Short: "Builds a Cargo workspace and packages its binaries as RPMs",
		Long: `rpm-composer builds a Cargo workspace in release mode and writes one RPM
per member that has binary targets. Per-member packaging options live in
[package.metadata.rpm] of each Cargo.toml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to configuration file (default: ./rpm-composer.yml, then the XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errs.Wrap(errs.KindConfig, err, "%s", cmd.CommandPath())
	})

	rootCmd.AddCommand(createPackCommand())
	rootCmd.AddCommand(createInspectCommand())
	rootCmd.AddCommand(createArchCommand())

	attachLoggingHooks(rootCmd)
	return rootCmd
}

// attachLoggingHooks loads the configuration and applies the log level
// before any subcommand runs.
func attachLoggingHooks(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		}
	}
}

func initConfig(cmd *cobra.Command) error {
	path, err := config.FindConfigFile(configFile)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	config.SetGlobal(cfg)

	level := resolveRequestedLogLevel(cmd)
	if level == "" {
		level = cfg.Logging.Level
	}
	if err := logger.SetLevel(level); err != nil {
		return errs.Wrap(errs.KindConfig, err, "log level %q", level)
	}
	if path != "" {
		logger.Logger().Debugf("loaded configuration from %s", path)
	}
	return nil
}

// resolveRequestedLogLevel returns the level asked for on the command
// line: --log-level wins, then -v. Empty means use the configuration.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed && f.Value.String() == "true" {
		return "debug"
	}
	return ""
}
