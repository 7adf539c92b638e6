package fact

import "time"

// Layout is the ordered column list of a staging table.
type Layout struct {
	cols  []string
	index map[string]int
}

// NewLayout returns the layout of cols in the given order.
func NewLayout(cols ...string) *Layout {
	l := &Layout{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		l.index[c] = i
	}
	return l
}

// Columns returns the column names in order.
func (l *Layout) Columns() []string { return append([]string(nil), l.cols...) }

// Index returns the position of col.
func (l *Layout) Index(col string) (int, bool) {
	i, ok := l.index[col]
	return i, ok
}

// NewRow starts a row of l with every column null. Date problems are
// recorded in is.
func (l *Layout) NewRow(is *Issues) RowWriter {
	return RowWriter{layout: l, row: make(Row, len(l.cols)), is: is}
}

// RowWriter fills a row by column name.
type RowWriter struct {
	layout *Layout
	row    Row
	is     *Issues
}

// Set stores v in col. Unknown columns are a programming error and panic.
func (w RowWriter) Set(col string, v Value) {
	i, ok := w.layout.index[col]
	if !ok {
		panic("fact: unknown column " + col)
	}
	w.row[i] = v
}

// Date stores the rendered date t in col.
func (w RowWriter) Date(col string, t *time.Time) {
	w.Set(col, w.is.Date(col, t))
}

// Days stores a day count in col and its bucket in rangeCol.
func (w RowWriter) Days(col, rangeCol string, n *int, bucket func(*int) Value) {
	w.Set(col, Days(n))
	w.Set(rangeCol, bucket(n))
}

// Row returns the filled row.
func (w RowWriter) Row() Row { return w.row }
