package source

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var countSuffixes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
}

// ParseCount converts counters such as 1234, "1,234", "12.3K" or "1.2M" into an integer.
// Fractions are rounded to the nearest integer whether they arrive as numbers or strings.
// Anything it cannot read yields 0, so 0 does not mean the remote value was zero.
func ParseCount(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(n)
	case float32:
		return floatCount(float64(n))
	case float64:
		return floatCount(n)
	case json.Number:
		return parseCountString(n.String())
	case string:
		return parseCountString(n)
	default:
		return 0
	}
}

func parseCountString(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}

	if mult, ok := countSuffixes[s[len(s)-1]]; ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-1]), 64)
		if err != nil {
			return 0
		}
		return floatCount(f * mult)
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return floatCount(f)
}

func floatCount(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Round(f)
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}
