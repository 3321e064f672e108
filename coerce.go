package etfflow

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numToken matches a plain signed decimal optionally followed by a single
// magnitude suffix letter.
var numToken = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)([mbMB])?$`)

// normSpace collapses runs of whitespace (including non-breaking spaces) to
// single spaces and trims the ends.
func normSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}

// Coerce converts whatever the vendor sent as a numeric field into a float64.
// Bare numbers are taken as already being in millions; a "b"/"B" suffix
// normalizes billions to millions (×1000), "m"/"M" is a no-op. Parenthesized
// values follow the accounting negative convention. Coerce is total: nil,
// blanks, lone dashes and anything unparseable all degrade to 0 rather than
// aborting the payload.
func Coerce(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		return coerceString(x)
	default:
		return 0
	}
}

func coerceString(s string) float64 {
	s = strings.ReplaceAll(normSpace(s), ",", "")
	switch s {
	case "", "-", "–", "—": // empty, dash, en dash, em dash
		return 0
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		d, err := decimal.NewFromString(s[1 : len(s)-1])
		if err != nil {
			return 0
		}
		f, _ := d.Neg().Float64()
		return f
	}
	if m := numToken.FindStringSubmatch(s); m != nil {
		d, err := decimal.NewFromString(m[1])
		if err != nil {
			return 0
		}
		if strings.EqualFold(m[2], "b") {
			d = d.Mul(decimal.NewFromInt(1000))
		}
		f, _ := d.Float64()
		return f
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
