package equation

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
	"unicode"
)

// Tracer receives human-readable lines describing intermediate results, such as the
// individual dice behind a roll.
type Tracer interface {
	Trace(line string)
}

// Log is an append-only Tracer.
type Log []string

// Trace appends line to the log.
func (l *Log) Trace(line string) {
	*l = append(*l, line)
}

type discard struct{}

func (discard) Trace(string) {}

// BinaryFunc applies an infix operator. a is the left operand.
type BinaryFunc func(t Tracer, a, b Number) (Number, error)

// UnaryFunc applies a prefix operator.
type UnaryFunc func(t Tracer, a Number) (Number, error)

// Tier groups binary operators that bind equally tight.
type Tier map[string]BinaryFunc

// Operators is the table an equation is solved against. Tiers are ordered from the
// loosest binding (index 0) to the tightest. A symbol lives in at most one tier.
//
// Unary operators bind tighter than the tiers below UnaryTier and looser than
// Tiers[UnaryTier] and everything above it. With the default table that makes -2^2
// equal -(2^2) and, once dice tiers are appended, -1d20 equal -(1d20).
type Operators struct {
	Tiers     []Tier
	Unary     map[string]UnaryFunc
	UnaryTier int
}

// DefaultTiers returns the arithmetic tiers: "+ -", then "* / // %", then "^".
// "/" divides exactly and "//" floors.
func DefaultTiers() []Tier {
	return []Tier{
		{
			"+": Add,
			"-": Sub,
		},
		{
			"*":  Mul,
			"/":  TrueDiv,
			"//": FloorDiv,
			"%":  Mod,
		},
		{
			"^": Pow,
		},
	}
}

// DefaultUnary returns identity ("+") and negation ("-" and "~").
func DefaultUnary() map[string]UnaryFunc {
	return map[string]UnaryFunc{
		"+": Pos,
		"-": Neg,
		"~": Neg,
	}
}

// Default returns a fresh arithmetic table. Unary operators sit just below "^".
func Default() Operators {
	tiers := DefaultTiers()
	return Operators{Tiers: tiers, Unary: DefaultUnary(), UnaryTier: len(tiers) - 1}
}

// With returns a copy of o with extra tiers appended above the existing ones.
// The receiver is left untouched.
func (o Operators) With(tiers ...Tier) Operators {
	out := Operators{
		Tiers:     make([]Tier, 0, len(o.Tiers)+len(tiers)),
		Unary:     make(map[string]UnaryFunc, len(o.Unary)),
		UnaryTier: o.UnaryTier,
	}
	out.Tiers = append(out.Tiers, o.Tiers...)
	out.Tiers = append(out.Tiers, tiers...)
	for sym, fn := range o.Unary {
		out.Unary[sym] = fn
	}
	return out
}

// Validate checks that symbols are well formed and not shared between tiers.
func (o Operators) Validate() error {
	seen := make(map[string]int)
	for i, tier := range o.Tiers {
		for sym, fn := range tier {
			if err := checkSymbol(sym); err != nil {
				return err
			}
			if fn == nil {
				return fmt.Errorf("%w: operator %q has no function", ErrInvalidOperators, sym)
			}
			if prev, ok := seen[sym]; ok {
				return fmt.Errorf("%w: operator %q is in tiers %d and %d", ErrInvalidOperators, sym, prev, i)
			}
			seen[sym] = i
		}
	}
	for sym, fn := range o.Unary {
		if err := checkSymbol(sym); err != nil {
			return err
		}
		if fn == nil {
			return fmt.Errorf("%w: unary operator %q has no function", ErrInvalidOperators, sym)
		}
	}
	return nil
}

func checkSymbol(sym string) error {
	if sym == "" {
		return fmt.Errorf("%w: empty operator symbol", ErrInvalidOperators)
	}
	if strings.IndexFunc(sym, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.IsSpace(r) || r == '.' || r == '(' || r == ')'
	}) >= 0 {
		return fmt.Errorf("%w: operator symbol %q collides with numbers or parentheses", ErrInvalidOperators, sym)
	}
	return nil
}

// tierOf returns the tier index of a binary symbol.
func (o Operators) tierOf(sym string) (int, bool) {
	for i, tier := range o.Tiers {
		if _, ok := tier[sym]; ok {
			return i, true
		}
	}
	return 0, false
}

// Add sums two numbers, staying integral when both are and the sum fits an int64.
func Add(_ Tracer, a, b Number) (Number, error) {
	if !a.isFloat && !b.isFloat {
		if sum, ok := addInt(a.i, b.i); ok {
			return Int(sum), nil
		}
	}
	return Float(a.Float64() + b.Float64()), nil
}

// Sub subtracts b from a.
func Sub(_ Tracer, a, b Number) (Number, error) {
	if !a.isFloat && !b.isFloat {
		if diff, ok := subInt(a.i, b.i); ok {
			return Int(diff), nil
		}
	}
	return Float(a.Float64() - b.Float64()), nil
}

// Mul multiplies two numbers.
func Mul(_ Tracer, a, b Number) (Number, error) {
	if !a.isFloat && !b.isFloat {
		if prod, ok := mulInt(a.i, b.i); ok {
			return Int(prod), nil
		}
	}
	return Float(a.Float64() * b.Float64()), nil
}

// TrueDiv always produces a float: 7/2 is 3.5.
func TrueDiv(_ Tracer, a, b Number) (Number, error) {
	if b.Float64() == 0 {
		return Number{}, ErrDivisionByZero
	}
	return Float(a.Float64() / b.Float64()), nil
}

// FloorDiv divides and rounds toward negative infinity: 7//2 is 3, -7//2 is -4.
func FloorDiv(_ Tracer, a, b Number) (Number, error) {
	if b.Float64() == 0 {
		return Number{}, ErrDivisionByZero
	}
	if !a.isFloat && !b.isFloat {
		if a.i != math.MinInt64 || b.i != -1 {
			q := a.i / b.i
			if (a.i%b.i != 0) && ((a.i < 0) != (b.i < 0)) {
				q--
			}
			return Int(q), nil
		}
	}
	return Float(math.Floor(a.Float64() / b.Float64())), nil
}

// Mod is the floored modulo; the result takes the sign of b.
func Mod(_ Tracer, a, b Number) (Number, error) {
	if b.Float64() == 0 {
		return Number{}, ErrDivisionByZero
	}
	if !a.isFloat && !b.isFloat {
		m := a.i % b.i
		if m != 0 && ((m < 0) != (b.i < 0)) {
			m += b.i
		}
		return Int(m), nil
	}
	m := math.Mod(a.Float64(), b.Float64())
	if m != 0 && ((m < 0) != (b.Float64() < 0)) {
		m += b.Float64()
	}
	return Float(m), nil
}

// Pow raises a to b. Integer powers with a non-negative integer exponent stay integral
// unless the result leaves the int64 range.
func Pow(_ Tracer, a, b Number) (Number, error) {
	if !a.isFloat && !b.isFloat && b.i >= 0 {
		if result, ok := powInt(a.i, b.i); ok {
			return Int(result), nil
		}
	}
	if a.Float64() == 0 && b.Float64() < 0 {
		return Number{}, ErrDivisionByZero
	}
	return Float(math.Pow(a.Float64(), b.Float64())), nil
}

// Pos returns a unchanged.
func Pos(_ Tracer, a Number) (Number, error) {
	return a, nil
}

// Neg negates a.
func Neg(_ Tracer, a Number) (Number, error) {
	if a.isFloat {
		return Float(-a.f), nil
	}
	if a.i == math.MinInt64 {
		return Float(-float64(a.i)), nil
	}
	return Int(-a.i), nil
}

// addInt reports false when a+b overflows.
func addInt(a, b int64) (int64, bool) {
	sum := a + b
	return sum, (b >= 0) == (sum >= a)
}

func subInt(a, b int64) (int64, bool) {
	diff := a - b
	return diff, (b >= 0) == (diff <= a)
}

// mulInt reports false when a*b overflows.
func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	neg := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(absInt(a), absInt(b))
	if hi != 0 {
		return 0, false
	}
	if neg {
		if lo > 1<<63 {
			return 0, false
		}
		return int64(-lo), true
	}
	if lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

func powInt(base, exp int64) (int64, bool) {
	result := int64(1)
	var ok bool
	for ; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		if exp > 1 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

func absInt(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}
