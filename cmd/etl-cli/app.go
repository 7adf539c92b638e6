package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/aniketwaliyan/dwh-etl/internal/extract"
	"github.com/aniketwaliyan/dwh-etl/internal/load"
	"github.com/aniketwaliyan/dwh-etl/internal/payable"
	"github.com/aniketwaliyan/dwh-etl/internal/pipeline"
	"github.com/aniketwaliyan/dwh-etl/internal/purchasing"
	"github.com/aniketwaliyan/dwh-etl/internal/runlock"
	"github.com/aniketwaliyan/dwh-etl/internal/utils/config"
	"github.com/aniketwaliyan/dwh-etl/internal/watermark"
	"github.com/aniketwaliyan/dwh-etl/pkg/env"
)

// app owns the connections shared by the pipelines of one process.
type app struct {
	env    *env.Config
	log    *zap.Logger
	dryRun bool

	sources    map[string]*extract.Mongo
	warehouses map[string]*load.Warehouse
}

func newApp(envCfg *env.Config, log *zap.Logger, dryRun bool) *app {
	return &app{
		env:        envCfg,
		log:        log,
		dryRun:     dryRun,
		sources:    make(map[string]*extract.Mongo),
		warehouses: make(map[string]*load.Warehouse),
	}
}

// Close releases every connection opened by build.
func (a *app) Close(ctx context.Context) {
	for name, w := range a.warehouses {
		if err := w.Close(); err != nil {
			a.log.Warn("failed to close warehouse", zap.String("sink", name), zap.Error(err))
		}
	}
	for name, m := range a.sources {
		if err := m.Close(ctx); err != nil {
			a.log.Warn("failed to close MongoDB", zap.String("database", name), zap.Error(err))
		}
	}
}

// build wires the pipeline described by cfg.
func (a *app) build(ctx context.Context, cfg *config.PipelineConfig) (pipeline.Runner, error) {
	log := a.log.With(zap.String("pipeline", cfg.Pipeline.Name))

	src, err := a.source(ctx, cfg.Source.Database)
	if err != nil {
		return nil, err
	}

	builder, err := newBuilder(cfg)
	if err != nil {
		return nil, err
	}
	exec, err := a.executor(ctx, cfg.Sink.Type)
	if err != nil {
		return nil, err
	}
	loader := load.New(exec, builder, load.Config{
		Name:       cfg.Pipeline.Name,
		ChunkSize:  cfg.Sink.ChunkSize,
		Procedures: cfg.Sink.Procedures,
		DumpPath:   cfg.Sink.DumpPath,
	}, log)

	store := watermark.Store(watermark.NewMongoStore(src.Database(), cfg.Source.RunLogCollection))
	var locker runlock.Locker = runlock.NewMongo(src.Database(), cfg.Source.LockCollection, cfg.Source.LockTTL, clock.RealClock{})
	if a.dryRun {
		store = watermark.ReadOnly(store)
		locker = runlock.NewMemory()
	}

	opts := pipeline.Options{
		Name:        cfg.Pipeline.Name,
		Description: cfg.Pipeline.Description,
		Timeout:     cfg.Pipeline.Timeout,
		StrictDates: cfg.Pipeline.StrictDates,
	}
	deps := pipeline.Deps{Store: store, Locker: locker, Clock: clock.RealClock{}, Log: a.log}

	switch cfg.Pipeline.Kind {
	case config.KindPurchasing:
		ext := purchasing.NewExtractor(src, cfg.Source.ExcludedAuthors, cfg.Source.Concurrency, log)
		return pipeline.NewOrchestrator[purchasing.Group](opts, ext, pipeline.TransformFunc[purchasing.Group](purchasing.Transform), loader, deps), nil
	case config.KindPayable:
		ext := payable.NewExtractor(src, cfg.Source.ExcludedAuthors, cfg.Source.Concurrency, log)
		return pipeline.NewOrchestrator[payable.Group](opts, ext, pipeline.TransformFunc[payable.Group](payable.Transform), loader, deps), nil
	default:
		return nil, fmt.Errorf("unknown pipeline kind %q", cfg.Pipeline.Kind)
	}
}

func (a *app) source(ctx context.Context, database string) (*extract.Mongo, error) {
	if m, ok := a.sources[database]; ok {
		return m, nil
	}
	m, err := extract.Connect(ctx, a.env.MongoURI, database, a.log)
	if err != nil {
		return nil, err
	}
	a.sources[database] = m
	return m, nil
}

func (a *app) executor(ctx context.Context, sinkType string) (load.Executor, error) {
	if a.dryRun {
		return load.NewDryRun(a.log), nil
	}
	if w, ok := a.warehouses[sinkType]; ok {
		return w, nil
	}
	dialect, err := load.DialectFor(sinkType)
	if err != nil {
		return nil, err
	}
	dsn, err := a.env.DSNFor(sinkType)
	if err != nil {
		return nil, err
	}
	w, err := load.Open(ctx, dialect, dsn, a.log)
	if err != nil {
		return nil, err
	}
	a.warehouses[sinkType] = w
	return w, nil
}

// newBuilder picks the statement shape for the configured sink.
func newBuilder(cfg *config.PipelineConfig) (load.Builder, error) {
	dialect, err := load.DialectFor(cfg.Sink.Type)
	if err != nil {
		return nil, err
	}

	columns, counter := purchasing.Columns(), false
	if cfg.Pipeline.Kind == config.KindPayable {
		columns, counter = payable.Columns(), true
	}

	if cfg.Sink.Parameterized {
		return load.ParamBuilder{Dialect: dialect, Table: cfg.Sink.Table, Columns: columns, Counter: counter}, nil
	}
	switch cfg.Sink.Style {
	case config.StyleUnion:
		return load.UnionBuilder{Dialect: dialect, Table: cfg.Sink.Table}, nil
	case config.StyleValues:
		return load.ValuesBuilder{Dialect: dialect, Table: cfg.Sink.Table, Columns: columns, Counter: counter}, nil
	default:
		return nil, fmt.Errorf("unknown sink style %q", cfg.Sink.Style)
	}
}
