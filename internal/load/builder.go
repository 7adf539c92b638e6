package load

import (
	"strconv"
	"strings"

	"github.com/aniketwaliyan/dwh-etl/internal/fact"
)

// Command is one statement batch sent to the warehouse.
type Command struct {
	Text string
	Args []any
	Rows int
	// Dump is the literal rendering written to the diagnostic file when it
	// differs from Text.
	Dump string
}

// DumpText returns the text written to the diagnostic file.
func (c Command) DumpText() string {
	if c.Dump != "" {
		return c.Dump
	}
	return c.Text
}

// Builder turns a chunk of rows into one command. offset is the number of
// rows of the same load placed in earlier chunks.
type Builder interface {
	Build(rows []fact.Row, offset int) Command
	// ChunkSize returns the chunk size to use given the configured one.
	ChunkSize(configured int) int
}

// UnionBuilder renders a chunk as a single INSERT ... SELECT ... UNION ALL
// statement into a positional staging table.
type UnionBuilder struct {
	Dialect Dialect
	Table   string
}

func (b UnionBuilder) Build(rows []fact.Row, _ int) Command {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.Dialect.Ident(b.Table))
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(" UNION ALL ")
		}
		sb.WriteString("\nSELECT ")
		sb.WriteString(strings.Join(r.Literals(), ", "))
	}
	return Command{Text: sb.String(), Rows: len(rows)}
}

func (b UnionBuilder) ChunkSize(configured int) int { return configured }

// ValuesBuilder renders a chunk as one insert statement per row. With
// Counter set, the first column receives the row's 1-based position in the
// whole load.
type ValuesBuilder struct {
	Dialect Dialect
	Table   string
	Columns []string
	Counter bool
}

func (b ValuesBuilder) Build(rows []fact.Row, offset int) Command {
	prefix := "insert into " + b.Dialect.Ident(b.Table) + "(" + identList(b.Dialect, b.Columns) + ") values("
	var sb strings.Builder
	for i, r := range rows {
		sb.WriteString(prefix)
		if b.Counter {
			sb.WriteString(strconv.Itoa(offset + i + 1))
			if len(r) > 0 {
				sb.WriteString(", ")
			}
		}
		sb.WriteString(strings.Join(r.Literals(), ", "))
		sb.WriteString(");\n")
	}
	return Command{Text: sb.String(), Rows: len(rows)}
}

func (b ValuesBuilder) ChunkSize(configured int) int { return configured }

// ParamBuilder renders a chunk as a single multi-row INSERT with bound
// parameters. The literal rendering is kept for the diagnostic dump.
type ParamBuilder struct {
	Dialect Dialect
	Table   string
	Columns []string
	Counter bool
}

func (b ParamBuilder) Build(rows []fact.Row, offset int) Command {
	head := "INSERT INTO " + b.Dialect.Ident(b.Table) + " (" + identList(b.Dialect, b.Columns) + ") VALUES "
	var text, dump strings.Builder
	text.WriteString(head)
	dump.WriteString(head)

	args := make([]any, 0, len(rows)*len(b.Columns))
	for i, r := range rows {
		if i > 0 {
			text.WriteString(", ")
			dump.WriteString(", ")
		}
		marks := make([]string, 0, len(r)+1)
		lits := make([]string, 0, len(r)+1)
		if b.Counter {
			id := offset + i + 1
			args = append(args, int64(id))
			marks = append(marks, b.Dialect.Placeholder(len(args)))
			lits = append(lits, strconv.Itoa(id))
		}
		for _, v := range r {
			args = append(args, v.Arg())
			marks = append(marks, b.Dialect.Placeholder(len(args)))
			lits = append(lits, v.Literal())
		}
		text.WriteString("(" + strings.Join(marks, ", ") + ")")
		dump.WriteString("(" + strings.Join(lits, ", ") + ")")
	}
	return Command{Text: text.String(), Args: args, Rows: len(rows), Dump: dump.String()}
}

// ChunkSize caps configured so a chunk stays within the dialect's limits.
func (b ParamBuilder) ChunkSize(configured int) int {
	limit := configured
	if n := len(b.Columns); n > 0 && b.Dialect.MaxParams > 0 {
		if fit := b.Dialect.MaxParams / n; limit <= 0 || fit < limit {
			limit = fit
		}
	}
	if m := b.Dialect.MaxValuesRows; m > 0 && (limit <= 0 || m < limit) {
		limit = m
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

func identList(d Dialect, cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = d.Ident(c)
	}
	return strings.Join(out, ", ")
}

// Chunk splits xs into consecutive groups of at most size elements. A
// non-positive size yields a single group.
func Chunk[T any](xs []T, size int) [][]T {
	if len(xs) == 0 {
		return nil
	}
	if size <= 0 || size >= len(xs) {
		return [][]T{xs}
	}
	out := make([][]T, 0, (len(xs)+size-1)/size)
	for start := 0; start < len(xs); start += size {
		end := start + size
		if end > len(xs) {
			end = len(xs)
		}
		out = append(out, xs[start:end])
	}
	return out
}
