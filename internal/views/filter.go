// Package views holds the pure computations behind the screens: search
// filters, grouping, percentages, plan selection and summary counts. Nothing
// here performs I/O or returns an error.
package views

import "strings"

// Filter keeps the items where any of fields contains term, ignoring case.
// A blank term returns items unchanged (same slice, same order).
func Filter[T any](items []T, term string, fields ...func(T) string) []T {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
