package extract

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DefaultConcurrency bounds the queries a join keeps in flight.
const DefaultConcurrency = 16

// Finder runs a filtered find against a document collection and decodes
// the full result set into out, which must be a pointer to a slice.
type Finder interface {
	Find(ctx context.Context, q Query, out any) error
}

// Query selects documents from one collection. Projection lists the field
// paths to return; an empty projection returns whole documents.
type Query struct {
	Collection string
	Filter     []Predicate
	Projection []string
}

// Predicate is one condition of a query filter. All predicates of a query
// must hold for a document to match.
type Predicate interface {
	element() bson.E
	matches(doc any) bool
}

// Eq matches documents whose field equals Value.
type Eq struct {
	Field string
	Value any
}

// NotIn matches documents whose field is absent or not one of Values.
type NotIn struct {
	Field  string
	Values []string
}

// After matches documents whose date field is strictly later than Time.
type After struct {
	Field string
	Time  time.Time
}

// ElemMatch matches documents whose array field holds at least one element
// satisfying every predicate in Match.
type ElemMatch struct {
	Field string
	Match []Predicate
}

func (p Eq) element() bson.E { return bson.E{Key: p.Field, Value: p.Value} }

func (p NotIn) element() bson.E {
	vals := p.Values
	if vals == nil {
		vals = []string{}
	}
	return bson.E{Key: p.Field, Value: bson.D{{Key: "$nin", Value: vals}}}
}

func (p After) element() bson.E {
	return bson.E{Key: p.Field, Value: bson.D{{Key: "$gt", Value: p.Time}}}
}

func (p ElemMatch) element() bson.E {
	return bson.E{Key: p.Field, Value: bson.D{{Key: "$elemMatch", Value: filterDoc(p.Match)}}}
}

func filterDoc(ps []Predicate) bson.D {
	d := make(bson.D, 0, len(ps))
	for _, p := range ps {
		d = append(d, p.element())
	}
	return d
}

func projectionDoc(fields []string) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		d = append(d, bson.E{Key: f, Value: 1})
	}
	return d
}
