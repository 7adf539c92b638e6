package load

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Executor opens warehouse transactions.
type Executor interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one open warehouse transaction.
type Tx interface {
	// Exec runs a command and returns the rows it affected.
	Exec(ctx context.Context, cmd Command) (int64, error)
	// Call runs a stored procedure.
	Call(ctx context.Context, procedure string) error
	Commit() error
	Rollback() error
}

// Warehouse is an Executor over a database/sql connection pool.
type Warehouse struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
}

// Open connects to the warehouse and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string, log *zap.Logger) (*Warehouse, error) {
	log.Info("connecting to warehouse", zap.String("dialect", dialect.Name))
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dialect.Name, err)
	}
	log.Info("connected to warehouse", zap.String("dialect", dialect.Name))
	return &Warehouse{db: db, dialect: dialect, log: log}, nil
}

func (w *Warehouse) Begin(ctx context.Context) (Tx, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx, dialect: w.dialect}, nil
}

func (w *Warehouse) Close() error {
	return w.db.Close()
}

type sqlTx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *sqlTx) Exec(ctx context.Context, cmd Command) (int64, error) {
	res, err := t.tx.ExecContext(ctx, cmd.Text, cmd.Args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (t *sqlTx) Call(ctx context.Context, procedure string) error {
	_, err := t.tx.ExecContext(ctx, t.dialect.Call(procedure))
	return err
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }
