// Package fact renders warehouse-ready literal values for fact rows and
// holds the day arithmetic and bucketing rules shared by every pipeline.
package fact

import (
	"strconv"
	"strings"
)

// NullLiteral is the bare keyword written for absent values.
const NullLiteral = "null"

// Value is a single fact column. It carries both the literal text used when
// commands are rendered inline and the argument used when they are bound as
// parameters. The zero Value is null.
type Value struct {
	lit string
	arg any
	set bool
}

// Row is one fact row, ordered to match the pipeline's column list.
type Row []Value

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a quoted string literal. Embedded single quotes are replaced
// with a double quote character.
func String(s string) Value {
	esc := strings.ReplaceAll(s, "'", `"`)
	return Value{lit: "'" + esc + "'", arg: esc, set: true}
}

// Int returns an unquoted integer literal.
func Int(n int) Value {
	return Value{lit: strconv.Itoa(n), arg: int64(n), set: true}
}

// Float returns an unquoted numeric literal in shortest form.
func Float(f float64) Value {
	return Value{lit: strconv.FormatFloat(f, 'f', -1, 64), arg: f, set: true}
}

// Bool renders a flag the way the warehouse stores it, as 'true' or 'false'.
func Bool(b bool) Value {
	return String(strconv.FormatBool(b))
}

// IsNull reports whether v renders as the null keyword.
func (v Value) IsNull() bool { return !v.set }

// Literal returns the inline SQL text for v.
func (v Value) Literal() string {
	if !v.set {
		return NullLiteral
	}
	return v.lit
}

// Arg returns the value to bind when v is sent as a query parameter.
func (v Value) Arg() any {
	if !v.set {
		return nil
	}
	return v.arg
}

func (v Value) String() string { return v.Literal() }

// Str returns String(*s), or null when s is nil or empty.
func Str(s *string) Value {
	if s == nil || *s == "" {
		return Null()
	}
	return String(*s)
}

// Num returns Float(*f), or null when f is nil.
func Num(f *float64) Value {
	if f == nil {
		return Null()
	}
	return Float(*f)
}

// Flag returns Bool(*b), or null when b is nil.
func Flag(b *bool) Value {
	if b == nil {
		return Null()
	}
	return Bool(*b)
}

// Days returns Int(*n), or null when n is nil.
func Days(n *int) Value {
	if n == nil {
		return Null()
	}
	return Int(*n)
}

// Literals renders every value of r in order.
func (r Row) Literals() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.Literal()
	}
	return out
}

// Args returns the bindable arguments of r in order.
func (r Row) Args() []any {
	out := make([]any, len(r))
	for i, v := range r {
		out[i] = v.Arg()
	}
	return out
}
