// Package cmd provides the command-line interface of orbitsync.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/orbitsync/config"
	"github.com/sarchlab/orbitsync/logging"
)

var (
	configPath string
	envFile    string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "orbitsync",
	Short: "orbitsync simulates groups of orbiting oscillators and predicts when they realign.",
	Long: `orbitsync simulates groups of oscillators with fixed periods, ` +
		`detects when each of them passes the top of its orbit, tracks the ` +
		`Kuramoto order parameter of the group and predicts when the whole ` +
		`group realigns.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"YAML preset file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file",
		config.DefaultEnvFile, "dotenv file with ORBITSYNC_* variables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn or error")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		atexit.Exit(1)
	}
}

// loadConfig builds the configuration from the preset file, the environment
// and the persistent flags, in that order.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := c.ApplyEnv(envFile); err != nil {
		return nil, err
	}

	if logLevel != "" {
		c.LogLevel = logLevel
	}

	return c, nil
}

func newLogger(cmd *cobra.Command, c *config.Config) *slog.Logger {
	return logging.NewLogger(c.LogLevel, cmd.ErrOrStderr())
}

func parsePeriodArgs(args []string, flagValue string) ([]float64, error) {
	if len(args) == 0 {
		if flagValue == "" {
			return nil, nil
		}

		return config.ParsePeriods(flagValue)
	}

	periods := make([]float64, 0, len(args))
	for _, a := range args {
		p, err := config.ParsePeriods(a)
		if err != nil {
			return nil, err
		}

		periods = append(periods, p...)
	}

	if len(periods) == 0 {
		return nil, fmt.Errorf("no periods given")
	}

	return periods, nil
}
