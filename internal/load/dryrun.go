package load

import (
	"context"

	"go.uber.org/zap"
)

// DryRun is an Executor that accepts every command without touching a
// warehouse. Combined with a dump path it shows what a load would send.
type DryRun struct {
	log *zap.Logger
}

func NewDryRun(log *zap.Logger) *DryRun {
	return &DryRun{log: log}
}

func (d *DryRun) Begin(ctx context.Context) (Tx, error) { return dryTx{log: d.log}, nil }

type dryTx struct {
	log *zap.Logger
}

func (t dryTx) Exec(ctx context.Context, cmd Command) (int64, error) {
	t.log.Debug("dry run: skipping command", zap.Int("rows", cmd.Rows), zap.Int("bytes", len(cmd.Text)))
	return int64(cmd.Rows), nil
}

func (t dryTx) Call(ctx context.Context, procedure string) error {
	t.log.Info("dry run: skipping procedure", zap.String("procedure", procedure))
	return nil
}

func (t dryTx) Commit() error   { return nil }
func (t dryTx) Rollback() error { return nil }
