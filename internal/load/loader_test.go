package load

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aniketwaliyan/dwh-etl/internal/fact"
)

type fakeExecutor struct {
	beginErr    error
	execErr     map[int]error
	callErr     map[string]error
	commitErr   error
	rollbackErr error

	ops []string
}

func (f *fakeExecutor) Begin(ctx context.Context) (Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.ops = append(f.ops, "begin")
	return &fakeTx{f: f}, nil
}

type fakeTx struct {
	f     *fakeExecutor
	execs int
}

func (t *fakeTx) Exec(ctx context.Context, cmd Command) (int64, error) {
	t.execs++
	t.f.ops = append(t.f.ops, "exec")
	if err := t.f.execErr[t.execs]; err != nil {
		return 0, err
	}
	return int64(cmd.Rows), nil
}

func (t *fakeTx) Call(ctx context.Context, procedure string) error {
	t.f.ops = append(t.f.ops, "call "+procedure)
	return t.f.callErr[procedure]
}

func (t *fakeTx) Commit() error {
	t.f.ops = append(t.f.ops, "commit")
	return t.f.commitErr
}

func (t *fakeTx) Rollback() error {
	t.f.ops = append(t.f.ops, "rollback")
	return t.f.rollbackErr
}

func newLoader(exec Executor, cfg Config) *Loader {
	return New(exec, UnionBuilder{Dialect: SQLServer, Table: "t"}, cfg, zap.NewNop())
}

func TestLoadCommits(t *testing.T) {
	exec := &fakeExecutor{}
	l := newLoader(exec, Config{Name: "p", ChunkSize: 3, Procedures: []string{"UPSERT", "DIMTIME"}})

	n, err := l.Load(context.Background(), rows(7))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, []string{"begin", "exec", "exec", "exec", "call UPSERT", "call DIMTIME", "commit"}, exec.ops)
}

func TestLoadZeroRows(t *testing.T) {
	exec := &fakeExecutor{}
	l := newLoader(exec, Config{Name: "p", ChunkSize: 3, Procedures: []string{"UPSERT"}})

	n, err := l.Load(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, []string{"begin", "call UPSERT", "commit"}, exec.ops)
}

func TestLoadRollsBack(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		exec    *fakeExecutor
		ops     []string
		wantErr error
		message string
	}{
		{
			name:    "chunk failure",
			exec:    &fakeExecutor{execErr: map[int]error{2: boom}},
			ops:     []string{"begin", "exec", "exec", "rollback"},
			wantErr: boom,
			message: "chunk 2/3: boom",
		},
		{
			name:    "procedure failure stops later procedures",
			exec:    &fakeExecutor{callErr: map[string]error{"UPSERT": boom}},
			ops:     []string{"begin", "exec", "exec", "exec", "call UPSERT", "rollback"},
			wantErr: boom,
			message: "procedure UPSERT: boom",
		},
		{
			name:    "transaction already closed",
			exec:    &fakeExecutor{execErr: map[int]error{1: boom}, rollbackErr: sql.ErrTxDone},
			ops:     []string{"begin", "exec", "rollback"},
			wantErr: boom,
			message: "chunk 1/3: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLoader(tt.exec, Config{Name: "p", ChunkSize: 3, Procedures: []string{"UPSERT", "DIMTIME"}})
			n, err := l.Load(context.Background(), rows(7))
			require.Zero(t, n)
			require.ErrorIs(t, err, tt.wantErr)
			require.EqualError(t, err, tt.message)
			require.Equal(t, tt.ops, tt.exec.ops)
		})
	}
}

func TestLoadRollbackFailureWins(t *testing.T) {
	boom := errors.New("boom")
	broken := errors.New("connection reset")
	exec := &fakeExecutor{execErr: map[int]error{1: boom}, rollbackErr: broken}

	_, err := newLoader(exec, Config{Name: "p", ChunkSize: 3}).Load(context.Background(), rows(2))
	require.ErrorIs(t, err, broken)
	require.NotErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "boom")
}

func TestLoadBeginFailure(t *testing.T) {
	exec := &fakeExecutor{beginErr: errors.New("login failed")}
	_, err := newLoader(exec, Config{Name: "p"}).Load(context.Background(), rows(1))
	require.EqualError(t, err, "begin transaction: login failed")
}

func TestLoadCommitFailure(t *testing.T) {
	exec := &fakeExecutor{commitErr: errors.New("deadlock")}
	_, err := newLoader(exec, Config{Name: "p"}).Load(context.Background(), rows(1))
	require.EqualError(t, err, "commit: deadlock")
}

func TestLoadDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump", "pembelian.sql")
	l := newLoader(&fakeExecutor{}, Config{Name: "p", ChunkSize: 1, DumpPath: path})

	_, err := l.Load(context.Background(), []fact.Row{{fact.String("a")}, {fact.String("b")}})
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO [t]\nSELECT 'a'\nINSERT INTO [t]\nSELECT 'b'", string(b))
}

func TestLoadDumpFailureIsIgnored(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	l := newLoader(&fakeExecutor{}, Config{Name: "p", DumpPath: filepath.Join(blocker, "dump.sql")})
	n, err := l.Load(context.Background(), rows(2))
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestCommandsCounterSpansChunks(t *testing.T) {
	b := ValuesBuilder{Dialect: SQLServer, Table: "t", Columns: []string{"id", "v"}, Counter: true}
	l := New(&fakeExecutor{}, b, Config{ChunkSize: 2}, zap.NewNop())

	cmds := l.Commands([]fact.Row{{fact.Int(0)}, {fact.Int(0)}, {fact.Int(0)}})
	require.Len(t, cmds, 2)
	require.True(t, strings.HasPrefix(cmds[1].Text, "insert into [t]([id], [v]) values(3, 0);"), cmds[1].Text)
}

func TestDryRun(t *testing.T) {
	l := newLoader(NewDryRun(zap.NewNop()), Config{Name: "p", ChunkSize: 2, Procedures: []string{"UPSERT"}})
	n, err := l.Load(context.Background(), rows(3))
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
