package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/bryanwahyu/fraudscope/internal/jsonx"
)

// NotAvailable is shown for durations and scores that cannot be formatted.
const NotAvailable = "N/A"

// placeholder the backend uses for "not applicable" account-like fields
const nanPlaceholder = "nan"

// ScorePrecision selects how the draft risk score is displayed: a fixed
// number of decimals, or the raw string form of the value.
type ScorePrecision struct {
	Digits int
	Raw    bool
}

// RawScore renders the score unformatted.
var RawScore = ScorePrecision{Raw: true}

// FixedScore renders the score with n decimals.
func FixedScore(n int) ScorePrecision {
	return ScorePrecision{Digits: n}
}

// ParseScorePrecision accepts "raw" or a non-negative decimal count.
func ParseScorePrecision(s string) (ScorePrecision, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "raw") {
		return RawScore, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 20 {
		return ScorePrecision{}, fmt.Errorf("invalid score precision %q (want 0-20 or raw)", s)
	}
	return FixedScore(n), nil
}

func (p ScorePrecision) String() string {
	if p.Raw {
		return "raw"
	}
	return strconv.Itoa(p.Digits)
}

// FormatGroupedNumber groups the thousands of a finite number. Anything else
// comes back in its string form so placeholders degrade instead of failing.
func FormatGroupedNumber(v any) string {
	f, ok := numberOf(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return Stringify(v)
	}
	return groupFloat(f)
}

// FormatDurationHours decomposes fractional hours into "{h}시간 {m}분", using
// floor for both parts. Absent, zero or non-numeric input yields N/A.
func FormatDurationHours(v any) string {
	f, ok := coerceNumber(v)
	if !ok || f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return NotAvailable
	}
	hours := math.Floor(f)
	minutes := math.Floor(math.Mod(f, 1) * 60)
	return fmt.Sprintf("%s시간 %s분", jsNumber(hours), jsNumber(minutes))
}

// MaskAccountLike suppresses the "nan" placeholder.
func MaskAccountLike(v any) string {
	if s, ok := v.(string); ok && s == nanPlaceholder {
		return ""
	}
	return Stringify(v)
}

// ToFixedScore formats the risk score according to p.
func ToFixedScore(v any, p ScorePrecision) string {
	if v == nil {
		return NotAvailable
	}
	if p.Raw {
		return Stringify(v)
	}
	f, ok := coerceNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return NotAvailable
	}
	return toFixed(f, p.Digits)
}

// toFixed rounds the exact binary value of f half away from zero, as
// Number.prototype.toFixed does. strconv rounds ties to even.
func toFixed(f float64, digits int) string {
	if math.Abs(f) >= 1e21 {
		return jsNumber(f)
	}
	r := new(big.Rat).SetFloat64(f)
	// the denominator is a power of two, so this many digits are exact
	exact := r.FloatString(r.Denom().BitLen() - 1)
	d, err := decimal.NewFromString(exact)
	if err != nil {
		return strconv.FormatFloat(f, 'f', digits, 64)
	}
	out := d.StringFixed(int32(digits))
	if f < 0 && !strings.HasPrefix(out, "-") {
		out = "-" + out
	}
	return out
}

// CoerceNumber converts numbers and numeric strings to float64.
func CoerceNumber(v any) (float64, bool) {
	return coerceNumber(v)
}

// Stringify returns the display form of a decoded JSON value. Absent values
// are empty; objects and arrays render as compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		f, ok := ParseNumber(t)
		if !ok {
			return t.String()
		}
		return jsNumber(f)
	case float64:
		return jsNumber(t)
	case float32:
		return jsNumber(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case decimal.Decimal:
		return t.String()
	case *jsonx.Object, []any:
		s, err := jsonx.Compact(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return s
	default:
		return fmt.Sprint(t)
	}
}

// ParseNumber converts a JSON number to float64. Magnitudes beyond float64
// become ±Inf rather than failing.
func ParseNumber(n json.Number) (float64, bool) {
	f, err := n.Float64()
	if err != nil && !(errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)) {
		return 0, false
	}
	return f, true
}

// numberOf accepts only values that are numbers in JSON terms.
func numberOf(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case decimal.Decimal:
		return t.InexactFloat64(), true
	}
	return 0, false
}

// coerceNumber additionally parses numeric strings.
func coerceNumber(v any) (float64, bool) {
	if f, ok := numberOf(v); ok {
		return f, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// groupFloat keeps at most three fraction digits, like the default locale
// number format.
func groupFloat(f float64) string {
	if math.Abs(f) < 1e15 {
		f = math.Round(f*1000) / 1000
	}
	if f == math.Trunc(f) && math.Abs(f) < 9e18 {
		return humanize.Comma(int64(f))
	}
	return humanize.Commaf(f)
}

// jsNumber prints f the way a JavaScript number prints.
func jsNumber(f float64) string {
	switch {
	case f == 0:
		return "0"
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
