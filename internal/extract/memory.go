package extract

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Finder over documents held as BSON. Filters are
// evaluated with the same predicates the MongoDB Finder sends to the server;
// projections are ignored and whole documents are returned.
type Memory struct {
	mu    sync.Mutex
	colls map[string][]bson.M
	// Fail, when set, is returned by Find for the named collection.
	Fail map[string]error
}

func NewMemory() *Memory {
	return &Memory{colls: make(map[string][]bson.M), Fail: make(map[string]error)}
}

// Insert stores docs in collection after round-tripping them through BSON.
func (m *Memory) Insert(collection string, docs ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		raw, err := bson.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("unmarshal document: %w", err)
		}
		m.colls[collection] = append(m.colls[collection], doc)
	}
	return nil
}

func (m *Memory) Find(ctx context.Context, q Query, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("out must be a pointer to a slice, got %T", out)
	}

	m.mu.Lock()
	if err := m.Fail[q.Collection]; err != nil {
		m.mu.Unlock()
		return fmt.Errorf("query %s failed: %w", q.Collection, err)
	}
	var matched []bson.M
	for _, doc := range m.colls[q.Collection] {
		if matchAll(q.Filter, doc) {
			matched = append(matched, doc)
		}
	}
	m.mu.Unlock()

	slice := reflect.MakeSlice(rv.Elem().Type(), 0, len(matched))
	elemType := rv.Elem().Type().Elem()
	for _, doc := range matched {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal %s document: %w", q.Collection, err)
		}
		ptr := reflect.New(elemType)
		if err := bson.Unmarshal(raw, ptr.Interface()); err != nil {
			return fmt.Errorf("decode %s failed: %w", q.Collection, err)
		}
		slice = reflect.Append(slice, ptr.Elem())
	}
	rv.Elem().Set(slice)
	return nil
}

func matchAll(ps []Predicate, doc any) bool {
	for _, p := range ps {
		if !p.matches(doc) {
			return false
		}
	}
	return true
}

func (p Eq) matches(doc any) bool {
	v, ok := lookup(doc, p.Field)
	if !ok {
		return p.Value == nil
	}
	return reflect.DeepEqual(normalize(v), normalize(p.Value))
}

func (p NotIn) matches(doc any) bool {
	v, ok := lookup(doc, p.Field)
	if !ok {
		return true
	}
	s, isStr := v.(string)
	if !isStr {
		return true
	}
	for _, x := range p.Values {
		if s == x {
			return false
		}
	}
	return true
}

func (p After) matches(doc any) bool {
	v, ok := lookup(doc, p.Field)
	if !ok {
		return false
	}
	t, isTime := asTime(v)
	return isTime && t.After(p.Time)
}

func (p ElemMatch) matches(doc any) bool {
	v, ok := lookup(doc, p.Field)
	if !ok {
		return false
	}
	arr, isArr := v.(primitive.A)
	if !isArr {
		return false
	}
	for _, el := range arr {
		if matchAll(p.Match, el) {
			return true
		}
	}
	return false
}

// lookup resolves a dotted field path through nested documents.
func lookup(doc any, path string) (any, bool) {
	cur := doc
	for _, key := range strings.Split(path, ".") {
		switch d := cur.(type) {
		case bson.M:
			v, ok := d[key]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.D:
			found := false
			for _, e := range d {
				if e.Key == key {
					cur, found = e.Value, true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return cur, true
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time(), true
	case time.Time:
		return t, true
	}
	return time.Time{}, false
}

// normalize maps the numeric and date encodings BSON may choose for a value
// onto one representation so equality does not depend on them.
func normalize(v any) any {
	if t, ok := asTime(v); ok {
		return t.UnixMilli()
	}
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return v
}
