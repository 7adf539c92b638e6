package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	no  string
	rev int
}

func byNo(r record) string { return r.no }

func TestDedupe(t *testing.T) {
	xs := []record{{"PR2", 1}, {"PR1", 1}, {"PR2", 2}, {"PR3", 1}, {"PR1", 2}}

	got := Dedupe(xs, byNo)
	require.Equal(t, []record{{"PR2", 2}, {"PR1", 2}, {"PR3", 1}}, got)
}

func TestDedupeIdempotent(t *testing.T) {
	xs := []record{{"a", 1}, {"b", 1}, {"a", 2}, {"c", 1}, {"b", 2}, {"b", 3}}

	once := Dedupe(xs, byNo)
	require.Equal(t, once, Dedupe(once, byNo))

	seen := map[string]int{}
	for _, r := range once {
		seen[r.no]++
	}
	require.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, seen)
}

func TestDedupeEmpty(t *testing.T) {
	require.Empty(t, Dedupe(nil, byNo))
}
