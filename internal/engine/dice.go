package engine

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/suderio/dicebot/internal/equation"
)

// DefaultMaxDice caps how many dice a single NdM term may roll.
const DefaultMaxDice = 1000

var (
	ErrFractionalDice = errors.New("dice need whole numbers")
	ErrNegativeDice   = errors.New("cannot roll a negative number of dice")
	ErrTooManyDice    = errors.New("too many dice")
)

// RandFunc returns a uniformly random integer in [1, sides]. It is injected to allow
// deterministic testing.
type RandFunc func(sides int) int

// safeRand fetches a strongly uniform random integer via crypto/rand
func safeRand(sides int) int {
	if sides <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(sides)))
	if err != nil {
		return 1
	}
	return int(n.Int64()) + 1 // Convert 0-(Max-1) to 1-Max
}

// Sequence returns a RandFunc that hands out results in order and then repeats the
// last one. Results are clamped to the die being rolled.
func Sequence(results ...int) RandFunc {
	i := 0
	return func(sides int) int {
		if len(results) == 0 {
			return 1
		}
		v := results[len(results)-1]
		if i < len(results) {
			v = results[i]
			i++
		}
		if v > sides {
			v = sides
		}
		if v < 1 {
			v = 1
		}
		return v
	}
}

// Mode changes how a lone d20 is rolled.
type Mode int

const (
	Normal Mode = iota
	Advantage
	Disadvantage
)

func (m Mode) String() string {
	switch m {
	case Advantage:
		return "adv"
	case Disadvantage:
		return "disadv"
	}
	return "normal"
}

// Dice builds the dice operators for one roll. A Dice value and the operators it
// returns must not be shared between concurrent rolls.
type Dice struct {
	Rand    RandFunc
	Mode    Mode
	MaxDice int
}

// NewDice returns dice backed by crypto/rand.
func NewDice(mode Mode) *Dice {
	return &Dice{Rand: safeRand, Mode: mode, MaxDice: DefaultMaxDice}
}

// Operators returns the arithmetic tiers plus, from loosest to tightest, the "> <"
// max/min tier and the dice tier ("d", "D", "g", "G"), and the unary "!" ability
// modifier.
func (d *Dice) Operators() equation.Operators {
	roll := d.Roll
	switch d.Mode {
	case Advantage:
		roll = d.RollAdvantage
	case Disadvantage:
		roll = d.RollDisadvantage
	}

	ops := equation.Default().With(
		equation.Tier{
			">": Max,
			"<": Min,
		},
		equation.Tier{
			"d": roll,
			"D": roll,
			"g": d.GreatWeaponFighting,
			"G": d.GreatWeaponFighting,
		},
	)
	ops.Unary["!"] = Modifier
	return ops
}

// Roll rolls b-sided dice a times and sums them. Negative sides roll in [b, -1] and
// zero sides always roll 0.
func (d *Dice) Roll(t equation.Tracer, a, b equation.Number) (equation.Number, error) {
	rolls, err := d.rollMany(a, b)
	if err != nil {
		return equation.Number{}, err
	}
	total := sum(rolls)
	t.Trace(fmt.Sprintf("%sd%s: %s = %d", a, b, joinRolls(rolls), total))
	return equation.Int(total), nil
}

// RollAdvantage rolls 1d20 twice and keeps the higher result. Anything else is a
// normal roll.
func (d *Dice) RollAdvantage(t equation.Tracer, a, b equation.Number) (equation.Number, error) {
	return d.rollTwice(t, a, b, "max", func(x, y int64) int64 { return max(x, y) })
}

// RollDisadvantage rolls 1d20 twice and keeps the lower result. Anything else is a
// normal roll.
func (d *Dice) RollDisadvantage(t equation.Tracer, a, b equation.Number) (equation.Number, error) {
	return d.rollTwice(t, a, b, "min", func(x, y int64) int64 { return min(x, y) })
}

func (d *Dice) rollTwice(t equation.Tracer, a, b equation.Number, name string, pick func(x, y int64) int64) (equation.Number, error) {
	if !isD20(a, b) {
		return d.Roll(t, a, b)
	}
	first, err := d.rollMany(a, b)
	if err != nil {
		return equation.Number{}, err
	}
	second, err := d.rollMany(a, b)
	if err != nil {
		return equation.Number{}, err
	}
	x, y := sum(first), sum(second)
	out := pick(x, y)
	t.Trace(fmt.Sprintf("%sd%s: %s(%d, %d) = %d", a, b, name, x, y, out))
	return equation.Int(out), nil
}

// GreatWeaponFighting rolls like Roll but rerolls every die showing 1 or 2 once,
// keeping the new result.
func (d *Dice) GreatWeaponFighting(t equation.Tracer, a, b equation.Number) (equation.Number, error) {
	rolls, err := d.rollMany(a, b)
	if err != nil {
		return equation.Number{}, err
	}
	sides := int(b.Int64())
	kept := make([]int64, len(rolls))
	rerolled := false
	for i, r := range rolls {
		kept[i] = r
		if r <= 2 && sides > 0 {
			kept[i] = int64(d.rand()(sides))
			rerolled = true
		}
	}
	total := sum(kept)
	if rerolled {
		t.Trace(fmt.Sprintf("%sd%s: %s, rerolled: %s = %d", a, b, joinRolls(rolls), joinRolls(kept), total))
	} else {
		t.Trace(fmt.Sprintf("%sd%s: %s = %d", a, b, joinRolls(rolls), total))
	}
	return equation.Int(total), nil
}

func (d *Dice) rollMany(a, b equation.Number) ([]int64, error) {
	if !a.IsWhole() || !b.IsWhole() {
		return nil, fmt.Errorf("%w: %sd%s", ErrFractionalDice, a, b)
	}
	count, sides := a.Int64(), b.Int64()
	if count < 0 {
		return nil, fmt.Errorf("%w: %sd%s", ErrNegativeDice, a, b)
	}
	limit := d.MaxDice
	if limit <= 0 {
		limit = DefaultMaxDice
	}
	if count > int64(limit) {
		return nil, fmt.Errorf("%w: %d is more than %d", ErrTooManyDice, count, limit)
	}

	roll := d.rand()
	rolls := make([]int64, 0, count)
	for i := int64(0); i < count; i++ {
		switch {
		case sides > 0:
			rolls = append(rolls, int64(roll(int(sides))))
		case sides < 0:
			rolls = append(rolls, -int64(roll(int(-sides))))
		default:
			rolls = append(rolls, 0)
		}
	}
	return rolls, nil
}

func (d *Dice) rand() RandFunc {
	if d.Rand == nil {
		return safeRand
	}
	return d.Rand
}

// Max keeps the larger operand.
func Max(_ equation.Tracer, a, b equation.Number) (equation.Number, error) {
	if b.Float64() > a.Float64() {
		return b, nil
	}
	return a, nil
}

// Min keeps the smaller operand.
func Min(_ equation.Tracer, a, b equation.Number) (equation.Number, error) {
	if b.Float64() < a.Float64() {
		return b, nil
	}
	return a, nil
}

// Modifier turns an ability score into its modifier: !16 is 3, !9 is -1.
func Modifier(t equation.Tracer, a equation.Number) (equation.Number, error) {
	half, err := equation.FloorDiv(t, a, equation.Int(2))
	if err != nil {
		return equation.Number{}, err
	}
	return equation.Sub(t, half, equation.Int(5))
}

func isD20(a, b equation.Number) bool {
	return a.IsWhole() && b.IsWhole() && a.Int64() == 1 && b.Int64() == 20
}

func sum(rolls []int64) int64 {
	var total int64
	for _, r := range rolls {
		total += r
	}
	return total
}

func joinRolls(rolls []int64) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = strconv.FormatInt(r, 10)
	}
	return strings.Join(parts, " + ")
}
