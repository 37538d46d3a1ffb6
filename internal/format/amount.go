package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is the currency symbol used when none is given.
const DefaultSymbol = "¥"

// Amount renders v with a comma every three integer digits, e.g.
// 1234567.5 -> "1,234,567.5". The fractional part and sign are left alone and
// nothing is rounded. nil renders as "0".
//
// Numbers and numeric strings use the shortest round-trip form of their
// float64 value, so "1234.50" renders as "1,234.5" and a string with more
// digits than a float64 holds falls back to exponent notation. A
// decimal.Decimal prints exactly. Anything that is not a number renders as
// "NaN".
func Amount(v any) string {
	if v == nil {
		return "0"
	}
	s := numberString(v)
	parts := strings.SplitN(s, ".", 2)
	parts[0] = groupThousands(parts[0])
	return strings.Join(parts, ".")
}

// Currency prefixes Amount(v) with symbol. An empty symbol means DefaultSymbol.
func Currency(v any, symbol string) string {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	if v == nil {
		return symbol + "0"
	}
	return symbol + Amount(v)
}

func numberString(v any) string {
	switch n := v.(type) {
	case float64:
		return floatString(n)
	case float32:
		return floatString(float64(n))
	case int:
		return strconv.Itoa(n)
	case int8:
		return strconv.FormatInt(int64(n), 10)
	case int16:
		return strconv.FormatInt(int64(n), 10)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint:
		return strconv.FormatUint(uint64(n), 10)
	case uint8:
		return strconv.FormatUint(uint64(n), 10)
	case uint16:
		return strconv.FormatUint(uint64(n), 10)
	case uint32:
		return strconv.FormatUint(uint64(n), 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case bool:
		if n {
			return "1"
		}
		return "0"
	case decimal.Decimal:
		return n.String()
	case json.Number:
		return decimalString(string(n))
	case string:
		return decimalString(n)
	case fmt.Stringer:
		return decimalString(n.String())
	default:
		return "NaN"
	}
}

func decimalString(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return "0"
	case "Infinity", "+Infinity":
		return "Infinity"
	case "-Infinity":
		return "-Infinity"
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "NaN"
	}
	f, _ := d.Float64()
	return floatString(f)
}

// floatString mirrors how a number prints in the backend's JSON clients:
// plain digits between 1e-6 and 1e21, exponent notation outside that range.
func floatString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// groupThousands inserts commas inside every run of four or more digits.
func groupThousands(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/3)

	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		run := s[i:j]
		for k := 0; k < len(run); k++ {
			if k > 0 && (len(run)-k)%3 == 0 {
				b.WriteByte(',')
			}
			b.WriteByte(run[k])
		}
		i = j
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
