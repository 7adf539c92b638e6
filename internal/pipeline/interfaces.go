package pipeline

import (
	"context"
	"time"

	"github.com/aniketwaliyan/dwh-etl/internal/fact"
)

// Extractor returns the correlated groups whose records changed after since.
type Extractor[G any] interface {
	Extract(ctx context.Context, since time.Time) ([]G, error)
}

// Transformer maps groups to fact rows. Rejected source values are reported
// as an error wrapping fact.ErrDataQuality next to the complete row set.
type Transformer[G any] interface {
	Transform(groups []G) ([]fact.Row, error)
}

// TransformFunc adapts a plain function to Transformer.
type TransformFunc[G any] func(groups []G) ([]fact.Row, error)

func (f TransformFunc[G]) Transform(groups []G) ([]fact.Row, error) { return f(groups) }

// Loader writes fact rows to the warehouse and returns how many it wrote.
type Loader interface {
	Load(ctx context.Context, rows []fact.Row) (int, error)
}

// Runner executes runs of one named pipeline.
type Runner interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}
