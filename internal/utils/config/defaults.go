package config

import (
	"time"

	"github.com/aniketwaliyan/dwh-etl/internal/extract"
	"github.com/aniketwaliyan/dwh-etl/internal/payable"
	"github.com/aniketwaliyan/dwh-etl/internal/purchasing"
	"github.com/aniketwaliyan/dwh-etl/internal/runlock"
	"github.com/aniketwaliyan/dwh-etl/internal/watermark"
)

// DefaultExcludedAuthors are the authors of test and seed records.
var DefaultExcludedAuthors = []string{"dev", "unit-test"}

const defaultLockTTL = 6 * time.Hour

type kindDefaults struct {
	description string
	table       string
	style       string
	chunkSize   int
	procedures  []string
}

var kinds = map[string]kindDefaults{
	KindPurchasing: {
		description: purchasing.Description,
		table:       purchasing.Table,
		style:       StyleUnion,
		chunkSize:   purchasing.ChunkSize,
		procedures:  purchasing.Procedures,
	},
	KindPayable: {
		description: payable.Description,
		table:       payable.Table,
		style:       StyleValues,
		chunkSize:   payable.ChunkSize,
		procedures:  payable.Procedures,
	},
}

func applyDefaults(cfg *PipelineConfig) {
	if d, ok := kinds[cfg.Pipeline.Kind]; ok {
		if cfg.Pipeline.Description == "" {
			cfg.Pipeline.Description = d.description
		}
		if cfg.Sink.Table == "" {
			cfg.Sink.Table = d.table
		}
		if cfg.Sink.Style == "" {
			cfg.Sink.Style = d.style
		}
		if cfg.Sink.ChunkSize == 0 {
			cfg.Sink.ChunkSize = d.chunkSize
		}
		if cfg.Sink.Procedures == nil {
			cfg.Sink.Procedures = append([]string(nil), d.procedures...)
		}
	}
	if cfg.Source.ExcludedAuthors == nil {
		cfg.Source.ExcludedAuthors = append([]string(nil), DefaultExcludedAuthors...)
	}
	if cfg.Source.Concurrency == 0 {
		cfg.Source.Concurrency = extract.DefaultConcurrency
	}
	if cfg.Source.RunLogCollection == "" {
		cfg.Source.RunLogCollection = watermark.DefaultCollection
	}
	if cfg.Source.LockCollection == "" {
		cfg.Source.LockCollection = runlock.DefaultCollection
	}
	if cfg.Source.LockTTL == 0 {
		cfg.Source.LockTTL = defaultLockTTL
		if t := cfg.Pipeline.Timeout; t > 0 {
			cfg.Source.LockTTL = t + 5*time.Minute
		}
	}
}
