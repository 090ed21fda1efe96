package exporter

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"stockpulse/pkg/contracts/domain"
)

// scale is one step of the scaled currency display.
type scale struct {
	threshold decimal.Decimal
	divisor   decimal.Decimal
	suffix    string
}

var scales = []scale{
	{decimal.New(1, 9), decimal.New(1, 9), "B"},
	{decimal.New(1, 7), decimal.New(1, 7), "Cr"},
	{decimal.New(1, 5), decimal.New(1, 5), "L"},
}

// Formatter renders values for display in a fixed currency.
type Formatter struct {
	currency *money.Currency
}

// NewFormatter returns a formatter for an ISO 4217 currency code.
// Unknown codes fall back to INR.
func NewFormatter(code string) *Formatter {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if cur == nil {
		cur = money.GetCurrency(money.INR)
	}
	return &Formatter{currency: cur}
}

var defaultFormatter = NewFormatter(money.INR)

// Currency returns the currency code used by the formatter.
func (f *Formatter) Currency() string { return f.currency.Code }

// ScaledCurrency formats an amount with the largest applicable scale among
// billions (B), crores (Cr) and lakhs (L). Smaller amounts keep thousands
// separators. Missing values render as domain.NotAvailable.
func (f *Formatter) ScaledCurrency(v decimal.NullDecimal) string {
	if !v.Valid {
		return domain.NotAvailable
	}
	for _, s := range scales {
		if v.Decimal.GreaterThanOrEqual(s.threshold) {
			return f.currency.Grapheme + v.Decimal.Div(s.divisor).StringFixed(2) + s.suffix
		}
	}
	return f.Amount(v.Decimal)
}

// maxMinorUnits is the largest amount go-money can format, in minor units.
var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// Amount formats an amount in the currency's minor unit precision with
// thousands separators, "₹1,234.56". Amounts beyond int64 minor units are
// grouped from their decimal text in the same layout.
func (f *Formatter) Amount(d decimal.Decimal) string {
	minor := d.Shift(int32(f.currency.Fraction)).Round(0)
	if minor.Abs().LessThanOrEqual(maxMinorUnits) {
		return f.currency.Formatter().Format(minor.IntPart())
	}

	text := d.Abs().StringFixed(int32(f.currency.Fraction))
	whole, frac, _ := strings.Cut(text, ".")
	out := f.currency.Grapheme + groupThousands(whole, f.currency.Thousand)
	if frac != "" {
		out += f.currency.Decimal + frac
	}
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

func groupThousands(digits, sep string) string {
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(c)
	}
	return b.String()
}

// FormatScaledCurrency is Formatter.ScaledCurrency in INR.
func FormatScaledCurrency(v decimal.NullDecimal) string {
	return defaultFormatter.ScaledCurrency(v)
}

// FormatDecimal formats a numeric or numeric-looking value to a fixed
// precision. Missing, nil and malformed values render as domain.NotAvailable.
func FormatDecimal(value any, precision int) string {
	d, ok := toDecimal(value)
	if !ok {
		return domain.NotAvailable
	}
	return d.StringFixed(int32(precision))
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Decimal{}, false
	case decimal.NullDecimal:
		return v.Decimal, v.Valid
	case *decimal.NullDecimal:
		if v == nil {
			return decimal.Decimal{}, false
		}
		return v.Decimal, v.Valid
	case decimal.Decimal:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		return toDecimal(float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		s := strings.NewReplacer("₹", "", ",", "").Replace(v)
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// FormatSignedPercent renders a percent change as "+1.25%".
func FormatSignedPercent(v decimal.NullDecimal) string {
	if !v.Valid {
		return domain.NotAvailable
	}
	s := v.Decimal.StringFixed(2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

// FormatChangeBadge prefixes a signed percent with 💹 for gains and 🔻 otherwise.
func FormatChangeBadge(v decimal.NullDecimal) string {
	if !v.Valid {
		return domain.NotAvailable
	}
	badge := "🔻"
	if v.Decimal.IsPositive() {
		badge = "💹"
	}
	return badge + FormatSignedPercent(v)
}

// TrendOf is up for non-negative changes, down for negative ones and none
// when the change is missing.
func TrendOf(v decimal.NullDecimal) domain.Trend {
	switch {
	case !v.Valid:
		return domain.TrendNone
	case v.Decimal.IsNegative():
		return domain.TrendDown
	default:
		return domain.TrendUp
	}
}

// FormatTrendArrow renders a change as "+1.25% ↑".
func FormatTrendArrow(v decimal.NullDecimal) string {
	if !v.Valid {
		return domain.NotAvailable
	}
	return FormatSignedPercent(v) + " " + TrendOf(v).Arrow()
}

// FormatPercentValue renders a ratio stored in percent units, "9.20%".
func FormatPercentValue(v decimal.NullDecimal) string {
	if !v.Valid {
		return domain.NotAvailable
	}
	return v.Decimal.StringFixed(2) + "%"
}

// FormatLongDate renders "02 January 2024".
func FormatLongDate(d domain.Date) string {
	if d.IsZero() {
		return domain.NotAvailable
	}
	return d.Format("02 January 2006")
}

// FormatShortDate renders "02 Jan 2024".
func FormatShortDate(d domain.Date) string {
	if d.IsZero() {
		return domain.NotAvailable
	}
	return d.Format("02 Jan 2006")
}

// FormatCount renders n occurrences of unit, "3 dates", and "0" for none.
func FormatCount(n int, unit string) string {
	if n == 0 {
		return "0"
	}
	return fmt.Sprintf("%d %s", n, unit)
}
