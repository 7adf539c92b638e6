package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aniketwaliyan/dwh-etl/internal/utils/config"
)

func runValidate(cmd *cobra.Command, args []string) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := validateConfig(configPath)
	if err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Configuration is valid! %s (%s) loads %s on %s\n",
		cfg.Pipeline.Name, cfg.Pipeline.Kind, cfg.Sink.Table, cfg.Sink.Type)
}

func validateConfig(configPath string) (*config.PipelineConfig, error) {
	parser := config.NewParser()
	return parser.Parse(configPath)
}
