package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/aniketwaliyan/dwh-etl/internal/load"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a pipeline configuration file, expands ${VAR} references from
// the environment, fills kind defaults and validates the result.
func (p *Parser) Parse(filePath string) (*PipelineConfig, error) {

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filePath)
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("error reading configuration file: %w", err)
	}

	var config PipelineConfig
	if err := yaml.Unmarshal(expandEnv(data), &config); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	applyDefaults(&config)

	if err := p.validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// expandEnv replaces ${VAR} with its value. Unset variables are left as
// written so validation reports them.
func expandEnv(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := string(match[2 : len(match)-1])
		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		return match
	})
}

func (p *Parser) validate(config *PipelineConfig) error {
	if config.Pipeline.Name == "" {
		return fmt.Errorf("pipeline name is required")
	}
	if _, ok := kinds[config.Pipeline.Kind]; !ok {
		return fmt.Errorf("pipeline kind must be %q or %q, got %q", KindPurchasing, KindPayable, config.Pipeline.Kind)
	}
	if config.Pipeline.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if config.Pipeline.Schedule != "" {
		if _, err := cron.ParseStandard(config.Pipeline.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", config.Pipeline.Schedule, err)
		}
	}
	if config.Source.Type == "" {
		return fmt.Errorf("source type is required")
	}
	if config.Source.Type != "mongodb" {
		return fmt.Errorf("unsupported source type %q", config.Source.Type)
	}
	if config.Source.Database == "" {
		return fmt.Errorf("source database is required")
	}
	if config.Source.Concurrency < 0 {
		return fmt.Errorf("concurrency must be non-negative")
	}
	if config.Sink.Type == "" {
		return fmt.Errorf("sink type is required")
	}
	if _, err := load.DialectFor(config.Sink.Type); err != nil {
		return err
	}
	if config.Sink.Style != StyleUnion && config.Sink.Style != StyleValues {
		return fmt.Errorf("sink style must be %q or %q, got %q", StyleUnion, StyleValues, config.Sink.Style)
	}
	if config.Pipeline.Kind == KindPayable && config.Sink.Style == StyleUnion {
		return fmt.Errorf("sink style %q cannot fill the %s counter column", StyleUnion, KindPayable)
	}
	if config.Sink.ChunkSize < 0 {
		return fmt.Errorf("chunk size must be non-negative")
	}
	return nil
}
