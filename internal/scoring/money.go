package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// moneyPattern matches currency-formatted tokens such as 1,234  $2,000.50  (310)  -45.
var moneyPattern = regexp.MustCompile(`\(?-?\$?[\d,]+(?:\.\d+)?\)?`)

var moneyStripper = strings.NewReplacer("$", "", ",", "")

// ParseMoney converts a currency token into a signed value. Parentheses and a
// leading minus both mark a negative amount; dollar signs and thousands
// separators are ignored. The second return is false when the remainder is not
// a finite number.
func ParseMoney(tok string) (float64, bool) {
	tok = strings.TrimSpace(tok)
	negative := false
	if len(tok) >= 2 && strings.HasPrefix(tok, "(") && strings.HasSuffix(tok, ")") {
		negative = true
		tok = strings.TrimSpace(tok[1 : len(tok)-1])
	}
	tok = moneyStripper.Replace(tok)
	if rest, ok := strings.CutPrefix(tok, "-"); ok {
		negative = true
		tok = rest
	}

	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}
