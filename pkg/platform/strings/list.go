// Package strings parses comma-separated configuration lists.
package strings

import (
	"strings"
)

// SplitList splits raw on commas, trims each element and drops empty and
// repeated elements. Order is preserved.
//
// Example:
//
//	SplitList(" auth, transactions,,auth ")
//	// Returns: []string{"auth", "transactions"}
func SplitList(raw string) []string {
	return splitWith(raw, func(s string) string { return s })
}

// SplitListLower is SplitList with every element lowercased before
// deduplication.
func SplitListLower(raw string) []string {
	return splitWith(raw, strings.ToLower)
}

// SplitListUpper is SplitList with every element uppercased before
// deduplication.
func SplitListUpper(raw string) []string {
	return splitWith(raw, strings.ToUpper)
}

func splitWith(raw string, norm func(string) string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	result := make([]string, 0, len(parts))

	for _, p := range parts {
		v := norm(strings.TrimSpace(p))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}

	return result
}
