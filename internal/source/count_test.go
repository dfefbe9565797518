package source

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"int", 42, 42},
		{"int64", int64(7), 7},
		{"float from json", float64(1000), 1000},
		{"json number", json.Number("12"), 12},
		{"nil", nil, 0},
		{"empty", "", 0},
		{"spaces", "   ", 0},
		{"plain", "1234", 1234},
		{"commas", "1,234,567", 1234567},
		{"thousands", "12.3K", 12300},
		{"lower suffix", "12.3k", 12300},
		{"millions", "1.2M", 1200000},
		{"billions", "2B", 2000000000},
		{"rounding", "1.2346K", 1235},
		{"padded", "  5.5m ", 5500000},
		{"decimal without suffix", "12.7", 13},
		{"decimal below half", "12.4", 12},
		{"fractional float", 12.7, 13},
		{"fractional json number", json.Number("12.7"), 13},
		{"negative", "-5", -5},
		{"garbage", "lots", 0},
		{"suffix only", "K", 0},
		{"bool", true, 0},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCount(tt.in))
		})
	}
}

func TestParseCount_SuffixProperty(t *testing.T) {
	prefixes := []string{"0", "1", "9", "10", "1.5", "12.34", "999.999", "0.0001"}
	mults := map[string]float64{"K": 1e3, "M": 1e6, "B": 1e9, "k": 1e3, "m": 1e6, "b": 1e9}

	for _, p := range prefixes {
		for suffix, mult := range mults {
			f, err := strconv.ParseFloat(p, 64)
			assert.NoError(t, err)

			want := int64(math.Round(f * mult))
			assert.Equal(t, want, ParseCount(p+suffix), "input %s%s", p, suffix)
		}
	}
}

func TestParseCount_NeverPanics(t *testing.T) {
	inputs := []string{"", "-", ",", "1e400", "-1e400K", "K M B", "١٢٣", "NaN", "Inf", "0x10", "12..3K", "\x00"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { ParseCount(in) }, "input %q", in)
	}
	assert.Equal(t, int64(0), ParseCount("NaN"))
}
