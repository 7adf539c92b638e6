package config

import "time"

// Pipeline kinds.
const (
	KindPurchasing = "purchasing"
	KindPayable    = "payable"
)

// Sink insert styles.
const (
	StyleUnion  = "union"
	StyleValues = "values"
)

type PipelineConfig struct {
	Pipeline struct {
		Name        string        `yaml:"name"`
		Kind        string        `yaml:"kind"`
		Description string        `yaml:"description"`
		Schedule    string        `yaml:"schedule"`
		Timeout     time.Duration `yaml:"timeout"`
		StrictDates bool          `yaml:"strict_dates"`
	} `yaml:"pipeline"`

	Source struct {
		Type             string        `yaml:"type"`
		Database         string        `yaml:"database"`
		ExcludedAuthors  []string      `yaml:"excluded_authors"`
		Concurrency      int           `yaml:"concurrency"`
		RunLogCollection string        `yaml:"run_log_collection"`
		LockCollection   string        `yaml:"lock_collection"`
		LockTTL          time.Duration `yaml:"lock_ttl"`
	} `yaml:"source"`

	Sink struct {
		Type          string   `yaml:"type"`
		Table         string   `yaml:"table"`
		Style         string   `yaml:"style"`
		ChunkSize     int      `yaml:"chunk_size"`
		Parameterized bool     `yaml:"parameterized"`
		Procedures    []string `yaml:"procedures"`
		DumpPath      string   `yaml:"dump_path"`
	} `yaml:"sink"`
}
