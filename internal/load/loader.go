package load

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aniketwaliyan/dwh-etl/internal/fact"
	"github.com/aniketwaliyan/dwh-etl/internal/metrics"
	"go.uber.org/zap"
)

// Config controls one pipeline's load.
type Config struct {
	// Name labels logs and metrics.
	Name       string
	ChunkSize  int
	Procedures []string
	// DumpPath receives the command text of every load. Empty disables it.
	DumpPath string
}

// Loader writes fact rows to a staging table in a single transaction and
// runs the post-load procedures before committing.
type Loader struct {
	exec    Executor
	builder Builder
	cfg     Config
	log     *zap.Logger
}

func New(exec Executor, builder Builder, cfg Config, log *zap.Logger) *Loader {
	return &Loader{exec: exec, builder: builder, cfg: cfg, log: log}
}

// Commands renders rows into one command per chunk.
func (l *Loader) Commands(rows []fact.Row) []Command {
	chunks := Chunk(rows, l.builder.ChunkSize(l.cfg.ChunkSize))
	cmds := make([]Command, 0, len(chunks))
	offset := 0
	for _, c := range chunks {
		cmds = append(cmds, l.builder.Build(c, offset))
		offset += len(c)
	}
	return cmds
}

// Load inserts rows chunk by chunk, runs the procedures in order and
// commits. Any failure rolls the whole load back.
func (l *Loader) Load(ctx context.Context, rows []fact.Row) (int, error) {
	cmds := l.Commands(rows)
	l.dump(cmds)

	tx, err := l.exec.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	loaded := 0
	for i, cmd := range cmds {
		if _, err := tx.Exec(ctx, cmd); err != nil {
			return 0, rollback(tx, fmt.Errorf("chunk %d/%d: %w", i+1, len(cmds), err))
		}
		loaded += cmd.Rows
		metrics.ChunksExecuted.WithLabelValues(l.cfg.Name).Inc()
		l.log.Debug("chunk executed",
			zap.String("pipeline", l.cfg.Name),
			zap.Int("chunk", i+1),
			zap.Int("rows", cmd.Rows))
	}

	for _, proc := range l.cfg.Procedures {
		if err := tx.Call(ctx, proc); err != nil {
			return 0, rollback(tx, fmt.Errorf("procedure %s: %w", proc, err))
		}
		l.log.Info("procedure executed", zap.String("pipeline", l.cfg.Name), zap.String("procedure", proc))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	metrics.RowsLoaded.WithLabelValues(l.cfg.Name).Add(float64(loaded))
	return loaded, nil
}

// rollback aborts tx after cause. The rollback error wins only when the
// rollback itself failed; a transaction already ended by its context is not
// a failure.
func rollback(tx Tx, cause error) error {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback after %v: %w", cause, err)
	}
	return cause
}

func (l *Loader) dump(cmds []Command) {
	if l.cfg.DumpPath == "" {
		return
	}
	texts := make([]string, len(cmds))
	for i, c := range cmds {
		texts[i] = c.DumpText()
	}
	if dir := filepath.Dir(l.cfg.DumpPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			l.log.Warn("failed to write command dump", zap.String("path", l.cfg.DumpPath), zap.Error(err))
			return
		}
	}
	if err := os.WriteFile(l.cfg.DumpPath, []byte(strings.Join(texts, "\n")), 0o644); err != nil {
		l.log.Warn("failed to write command dump", zap.String("path", l.cfg.DumpPath), zap.Error(err))
	}
}
