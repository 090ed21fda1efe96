package exporter

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"stockpulse/pkg/contracts/domain"
)

func nd(s string) decimal.NullDecimal {
	return domain.Some(decimal.RequireFromString(s))
}

func TestFormatScaledCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input decimal.NullDecimal
		want  string
	}{
		{"missing", domain.Missing(), "N/A"},
		{"crores", nd("150000000"), "₹15.00Cr"},
		{"billions", nd("1200000000"), "₹1.20B"},
		{"exact billion", nd("1000000000"), "₹1.00B"},
		{"lakhs", nd("250000"), "₹2.50L"},
		{"exact lakh", nd("100000"), "₹1.00L"},
		{"below lakh keeps separators", nd("99999.5"), "₹99,999.50"},
		{"thousands", nd("1234.5"), "₹1,234.50"},
		{"small", nd("7"), "₹7.00"},
		{"zero", nd("0"), "₹0.00"},
		{"negative", nd("-1234.5"), "-₹1,234.50"},
		{"large negative", nd("-250000000"), "-₹250,000,000.00"},
		{"negative beyond int64 minor units", nd("-123456789012345678901.5"), "-₹123,456,789,012,345,678,901.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatScaledCurrency(tt.input))
		})
	}
}

func TestNewFormatter(t *testing.T) {
	assert.Equal(t, "INR", NewFormatter("inr").Currency())
	assert.Equal(t, "INR", NewFormatter("not-a-currency").Currency())
	assert.Equal(t, "USD", NewFormatter("USD").Currency())
	assert.Equal(t, "$1,234.50", NewFormatter("USD").ScaledCurrency(nd("1234.5")))
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		precision int
		want      string
	}{
		{"nil", nil, 2, "N/A"},
		{"missing", domain.Missing(), 2, "N/A"},
		{"present", nd("12.345"), 2, "12.35"},
		{"decimal", decimal.RequireFromString("3"), 1, "3.0"},
		{"float", 9.2, 2, "9.20"},
		{"nan", math.NaN(), 2, "N/A"},
		{"int", 42, 0, "42"},
		{"numeric string", "₹1,234.5", 2, "1234.50"},
		{"malformed string", "abc", 2, "N/A"},
		{"unsupported type", struct{}{}, 2, "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDecimal(tt.value, tt.precision))
		})
	}
}

func TestChangeFormatting(t *testing.T) {
	tests := []struct {
		name   string
		input  decimal.NullDecimal
		signed string
		badge  string
		arrow  string
		trend  domain.Trend
	}{
		{"gain", nd("1.25"), "+1.25%", "💹+1.25%", "+1.25% ↑", domain.TrendUp},
		{"loss", nd("-0.5"), "-0.50%", "🔻-0.50%", "-0.50% ↓", domain.TrendDown},
		{"flat", nd("0"), "+0.00%", "🔻+0.00%", "+0.00% ↑", domain.TrendUp},
		{"missing", domain.Missing(), "N/A", "N/A", "N/A", domain.TrendNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.signed, FormatSignedPercent(tt.input))
			assert.Equal(t, tt.badge, FormatChangeBadge(tt.input))
			assert.Equal(t, tt.arrow, FormatTrendArrow(tt.input))
			assert.Equal(t, tt.trend, TrendOf(tt.input))
		})
	}
}

func TestFormatPercentValue(t *testing.T) {
	assert.Equal(t, "9.20%", FormatPercentValue(nd("9.2")))
	assert.Equal(t, "N/A", FormatPercentValue(domain.Missing()))
}

func TestDateFormatting(t *testing.T) {
	d := domain.MustParseDate("2024-01-02")

	assert.Equal(t, "02 January 2024", FormatLongDate(d))
	assert.Equal(t, "02 Jan 2024", FormatShortDate(d))
	assert.Equal(t, "N/A", FormatLongDate(domain.Date{}))
	assert.Equal(t, "N/A", FormatShortDate(domain.Date{}))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0, "dates"))
	assert.Equal(t, "3 dates", FormatCount(3, "dates"))
}
