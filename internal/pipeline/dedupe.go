package pipeline

// Dedupe keeps one element per key. A later element replaces an earlier one
// with the same key but takes its position, so the output follows the order
// in which keys first appear.
func Dedupe[T any](xs []T, key func(T) string) []T {
	pos := make(map[string]int, len(xs))
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		k := key(x)
		if i, ok := pos[k]; ok {
			out[i] = x
			continue
		}
		pos[k] = len(out)
		out = append(out, x)
	}
	return out
}
