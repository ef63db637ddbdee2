package scoring

import "strings"

// FindValuesOnLine returns every money value on the first non-blank line that
// contains label (case-insensitive), in left-to-right order. Tokens that do not
// parse are dropped. The result is empty when no line matches.
//
// Only the first matching line is used: a statement that repeats a label (a
// subtotal followed by a grand total) yields the values of the earlier line.
func FindValuesOnLine(text, label string) []float64 {
	needle := strings.ToLower(label)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}

		tokens := moneyPattern.FindAllString(line, -1)
		values := make([]float64, 0, len(tokens))
		for _, tok := range tokens {
			if v, ok := ParseMoney(tok); ok {
				values = append(values, v)
			}
		}
		return values
	}
	return []float64{}
}
