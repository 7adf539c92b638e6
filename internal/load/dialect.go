package load

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect holds the warehouse-specific SQL spelling.
type Dialect struct {
	Name   string
	Driver string
	// MaxParams bounds the bound parameters of a single statement.
	MaxParams int
	// MaxValuesRows bounds the rows of one VALUES list; zero means no limit.
	MaxValuesRows int

	ident       func(string) string
	call        func(string) string
	placeholder func(int) string
}

// Ident quotes an identifier, keeping schema qualification ("dbo.t").
func (d Dialect) Ident(name string) string { return qualify(name, d.ident) }

// Call returns the statement invoking a stored procedure without arguments.
func (d Dialect) Call(procedure string) string { return d.call(procedure) }

// Placeholder returns the n-th (1-based) bind parameter marker.
func (d Dialect) Placeholder(n int) string { return d.placeholder(n) }

var SQLServer = Dialect{
	Name:          "sqlserver",
	Driver:        "sqlserver",
	MaxParams:     2000,
	MaxValuesRows: 1000,
	ident:         bracket,
	call:          func(p string) string { return "EXEC " + qualify(p, bracket) },
	placeholder:   func(n int) string { return "@p" + strconv.Itoa(n) },
}

var Postgres = Dialect{
	Name:        "postgres",
	Driver:      "postgres",
	MaxParams:   65535,
	ident:       doubleQuote,
	call:        func(p string) string { return "CALL " + qualify(p, doubleQuote) + "()" },
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
}

func bracket(s string) string { return `[` + strings.ReplaceAll(s, `]`, `]]`) + `]` }

func doubleQuote(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }

func qualify(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quote(p)
	}
	return strings.Join(parts, ".")
}

// DialectFor returns the dialect of a sink type.
func DialectFor(sinkType string) (Dialect, error) {
	switch strings.ToLower(sinkType) {
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "postgres", "postgresql":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sink type %q", sinkType)
	}
}
