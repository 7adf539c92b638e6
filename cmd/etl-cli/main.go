package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/aniketwaliyan/dwh-etl/internal/logging"
	"github.com/aniketwaliyan/dwh-etl/internal/metrics"
	"github.com/aniketwaliyan/dwh-etl/internal/pipeline"
	"github.com/aniketwaliyan/dwh-etl/internal/scheduler"
	"github.com/aniketwaliyan/dwh-etl/internal/utils/config"
	"github.com/aniketwaliyan/dwh-etl/pkg/env"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:          "etl-cli",
		Short:        "Warehouse fact ETL CLI",
		Long:         "Command line tool for running and managing the MongoDB to warehouse fact pipelines",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("env-dir", ".", "Directory holding the optional .env file")

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline once",
		RunE:  runOnce,
	}
	runCmd.Flags().String("config", "", "Path to the pipeline configuration file")
	runCmd.Flags().Bool("dry-run", false, "Extract and render statements without writing to the warehouse")
	runCmd.MarkFlagRequired("config")

	var scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "Run pipelines on their configured schedules",
		RunE:  runSchedule,
	}
	scheduleCmd.Flags().StringSlice("config", nil, "Pipeline configuration files")
	scheduleCmd.Flags().Bool("dry-run", false, "Extract and render statements without writing to the warehouse")
	scheduleCmd.MarkFlagRequired("config")

	var validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate a pipeline configuration",
		Run:   runValidate,
	}
	validateCmd.Flags().String("config", "", "Path to the pipeline configuration file")
	validateCmd.MarkFlagRequired("config")

	var generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a new pipeline configuration",
		Run:   runGenerate,
	}
	generateCmd.Flags().String("name", "", "Name of the pipeline to generate")
	generateCmd.Flags().String("kind", config.KindPurchasing, "Pipeline kind: purchasing or payable")
	generateCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(runCmd, scheduleCmd, validateCmd, generateCmd)
	return rootCmd
}

// setup loads the environment and builds the logger shared by a command.
func setup(cmd *cobra.Command) (*env.Config, *zap.Logger, error) {
	envDir, _ := cmd.Flags().GetString("env-dir")
	envCfg, err := env.Load(envDir)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(envCfg.LogLevel, envCfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return envCfg, log, nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := config.NewParser().Parse(configPath)
	if err != nil {
		return err
	}
	envCfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(envCfg, log, dryRun)
	defer a.Close(context.WithoutCancel(ctx))

	runner, err := a.build(ctx, cfg)
	if err != nil {
		return err
	}
	res, runErr := runner.Run(ctx)
	if err := metrics.Push(context.WithoutCancel(ctx), envCfg.PushgatewayURL, ""); err != nil {
		log.Warn("failed to push metrics", zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}
	fmt.Printf("Pipeline %s loaded %d rows from %d groups\n", cfg.Pipeline.Name, res.Loaded, res.Groups)
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	configPaths, _ := cmd.Flags().GetStringSlice("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	parser := config.NewParser()
	configs := make([]*config.PipelineConfig, 0, len(configPaths))
	for _, path := range configPaths {
		cfg, err := parser.Parse(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if cfg.Pipeline.Schedule == "" {
			return fmt.Errorf("%s: pipeline %s has no schedule", path, cfg.Pipeline.Name)
		}
		configs = append(configs, cfg)
	}

	envCfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(envCfg, log, dryRun)
	defer a.Close(context.WithoutCancel(ctx))

	s := scheduler.New(clock.RealClock{}, log)
	s.AfterRun = func(ctx context.Context, name string, _ pipeline.Result, _ error) {
		if err := metrics.Push(context.WithoutCancel(ctx), envCfg.PushgatewayURL, ""); err != nil {
			log.Warn("failed to push metrics", zap.String("pipeline", name), zap.Error(err))
		}
	}
	for _, cfg := range configs {
		runner, err := a.build(ctx, cfg)
		if err != nil {
			return err
		}
		if err := s.Add(runner, cfg.Pipeline.Schedule); err != nil {
			return err
		}
	}

	log.Info("scheduler started", zap.Int("pipelines", len(configs)))
	return s.Run(ctx)
}
