package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"abtestapp/domain/abtest"
	"abtestapp/internal/config"
	"abtestapp/internal/container"
	"abtestapp/internal/logging"
	"abtestapp/internal/report"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		report.NewConsole(os.Stderr).PrintError(err)
		stop()
		os.Exit(1)
	}
	stop()
}

// cli carries what every subcommand needs once flags are parsed
type cli struct {
	configPath string

	cfg  *config.Config
	deps *container.Container
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "abtest",
		Short: "Two-proportion z-test for A/B experiments",
		Long: `Decide whether an experiment group converts better than its control group.

Each test compares the conversion rates of the two groups with a two-sided
pooled z-test at 90%, 95% or 99% confidence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (defaults to $"+config.EnvConfigFile+")")

	rootCmd.AddCommand(
		newEvaluateCmd(c),
		newFormCmd(c),
		newBatchCmd(c),
		newServeCmd(c),
	)

	return rootCmd
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log)

	deps, err := container.New(cfg)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.deps = deps
	return nil
}

// confidence resolves a --confidence flag value. An empty flag means the
// configured default; numeric levels other than 90, 95 and 99 are passed on
// so the evaluator rejects them.
func (c *cli) confidence(flag string) (abtest.ConfidenceLevel, error) {
	if strings.TrimSpace(flag) == "" {
		return c.cfg.Evaluation.DefaultConfidence, nil
	}
	return abtest.ParseConfidenceValue(flag)
}
