package equation

import (
	"errors"
	"math"
	"strconv"
)

// Number is an integer or floating-point value produced while evaluating an equation.
// The zero value is the integer 0.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// Int wraps an integer value.
func Int(v int64) Number {
	return Number{i: v}
}

// Float wraps a floating-point value.
func Float(v float64) Number {
	return Number{f: v, isFloat: true}
}

// IsFloat reports whether n holds a floating-point value.
func (n Number) IsFloat() bool {
	return n.isFloat
}

// Int64 returns n truncated toward zero.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns n as a float64.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// IsWhole reports whether n has no fractional part.
func (n Number) IsWhole() bool {
	if !n.isFloat {
		return true
	}
	return !math.IsInf(n.f, 0) && !math.IsNaN(n.f) && n.f == math.Trunc(n.f)
}

// Collapse turns a whole float into an integer and leaves everything else alone.
func (n Number) Collapse() Number {
	if n.isFloat && n.IsWhole() && math.Abs(n.f) < 1<<63 {
		return Int(int64(n.f))
	}
	return n
}

// String formats n the way it is shown to players.
func (n Number) String() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	if n.IsWhole() {
		return strconv.FormatFloat(n.f, 'f', 1, 64)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// parseNumber converts a number literal. Literals containing a decimal point, and integer
// literals too large for an int64, become floats.
func parseNumber(text string) (Number, error) {
	for _, r := range text {
		if r == '.' {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return Number{}, err
			}
			return Float(f), nil
		}
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Number{}, err
		}
		return Float(f), nil
	}
	if err != nil {
		return Number{}, err
	}
	return Int(i), nil
}
