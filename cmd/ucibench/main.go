// Package main provides the CLI entry point for ucibench, a UCI chess
// engine benchmarking tool.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/avoron/ucibench/bench"
	"github.com/avoron/ucibench/config"
	"github.com/avoron/ucibench/report"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "ucibench",
		Short: "Benchmark a UCI chess engine",
		Long: `Ucibench drives a UCI chess engine through repeated fixed-depth
searches from the standard starting position and reports nodes-per-second
statistics across runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath string
		outputJSON bool
		noColor    bool
		echoEngine bool
	)

	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark",
		Long: `Start the engine, perform the UCI handshake, then run the
configured number of fixed-depth searches and report aggregate statistics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			merged := cfg

			if configPath != "" {
				fileCfg, err := config.Load(configPath)
				if err != nil {
					return err
				}

				merged = overrideFromFlags(cmd, fileCfg, cfg)
			}

			if err := merged.Validate(); err != nil {
				return err
			}

			if noColor {
				color.NoColor = true
			}

			return runBenchmark(logger, merged, outputJSON, echoEngine)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Engine, "engine", cfg.Engine,
		"Path to the UCI engine executable")
	flags.IntVar(&cfg.Runs, "runs", cfg.Runs,
		"Number of benchmark runs to perform")
	flags.IntVar(&cfg.Depth, "depth", cfg.Depth,
		"Search depth for each run")
	flags.BoolVar(&cfg.ClearCache, "clear-cache", false,
		"Drop the OS page cache before each run (requires root)")
	flags.StringVar(&configPath, "config", "",
		"Path to a YAML config file (explicit flags override it)")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of text")
	flags.BoolVar(&noColor, "no-color", false,
		"Disable colored output")
	flags.BoolVar(&echoEngine, "echo-engine", false,
		"Echo every engine output line to stderr")

	return cmd
}

// overrideFromFlags layers flags the user explicitly set over the
// values read from a config file.
func overrideFromFlags(
	cmd *cobra.Command,
	fileCfg, flagCfg config.Config,
) config.Config {
	merged := fileCfg

	if cmd.Flags().Changed("engine") {
		merged.Engine = flagCfg.Engine
	}

	if cmd.Flags().Changed("runs") {
		merged.Runs = flagCfg.Runs
	}

	if cmd.Flags().Changed("depth") {
		merged.Depth = flagCfg.Depth
	}

	if cmd.Flags().Changed("clear-cache") {
		merged.ClearCache = flagCfg.ClearCache
	}

	return merged
}

func runBenchmark(
	logger *slog.Logger,
	cfg config.Config,
	outputJSON, echoEngine bool,
) error {
	logger.Info("starting benchmark",
		slog.String("engine", cfg.Engine),
		slog.Int("runs", cfg.Runs),
		slog.Int("depth", cfg.Depth),
		slog.Bool("clear_cache", cfg.ClearCache),
	)

	runner := bench.New(bench.Config{
		EnginePath: cfg.Engine,
		Runs:       cfg.Runs,
		Depth:      cfg.Depth,
		ClearCache: cfg.ClearCache,
	}, logger)

	if echoEngine {
		runner.Echo = os.Stderr
	}

	if !outputJSON {
		runner.OnResult = func(r bench.Result) {
			report.PrintRun(color.Output, cfg.Depth, r)
		}
	}

	// The handler holds the runner reference directly; teardown is
	// one-shot, so a signal racing normal completion is harmless.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	defer signal.Stop(sig)

	go func() {
		s := <-sig
		logger.Warn("interrupt received, shutting down",
			slog.String("signal", s.String()),
		)
		runner.Close()
	}()

	summary, runErr := runner.Run()

	if summary.Runs > 0 {
		if outputJSON {
			if err := report.GenerateJSON(
				os.Stdout, summary, runner.Results(),
			); err != nil {
				return fmt.Errorf("generate JSON report: %w", err)
			}
		} else if err := report.Generate(color.Output, summary); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	return runErr
}
