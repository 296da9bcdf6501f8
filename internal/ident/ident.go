// Package ident generates and deduplicates the stable identifiers used
// for chapters, questions and options. Everything here is pure and
// deterministic: the same input always yields the same output, with no
// hidden counters.
package ident

import "strconv"

// MakeUnique returns a sequence of the same length as ids where every
// duplicate after its first occurrence gets a numeric suffix ("id",
// "id_1", "id_2", ...), assigned in first-seen order. The output set is
// re-checked as it grows, so a suffixed id can never collide with an id
// that appears later in the input or with another suffixed id.
func MakeUnique(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	pending := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		pending[id] = struct{}{}
	}
	for _, id := range ids {
		unique := id
		if _, dup := seen[unique]; dup {
			for n := 1; ; n++ {
				candidate := id + "_" + strconv.Itoa(n)
				_, taken := seen[candidate]
				_, upcoming := pending[candidate]
				if !taken && !upcoming {
					unique = candidate
					break
				}
			}
		}
		seen[unique] = struct{}{}
		out = append(out, unique)
	}
	return out
}

// Generate builds the identifier for an authored item that carries no
// explicit id: "{scope}_q{ordinal+1}", where ordinal is the zero-based
// position within the enclosing scope.
func Generate(scopeID string, ordinal int) string {
	return scopeID + "_q" + strconv.Itoa(ordinal+1)
}
