package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/dicebot/internal/equation"
)

func solve(t *testing.T, d *Dice, expr string) (equation.Number, equation.Log) {
	t.Helper()
	var log equation.Log
	n, err := equation.Evaluate(expr, d.Operators(), &log)
	require.NoError(t, err)
	return n, log
}

func TestRollBasic(t *testing.T) {
	d := NewDice(Normal)

	var log equation.Log
	res, err := d.Roll(&log, equation.Int(3), equation.Int(6))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Int64(), int64(3))
	assert.LessOrEqual(t, res.Int64(), int64(18))
	assert.Len(t, log, 1)
}

func TestRollTrace(t *testing.T) {
	d := &Dice{Rand: Sequence(4, 1, 5)}

	res, log := solve(t, d, "3d6")
	assert.Equal(t, equation.Int(10), res)
	assert.Equal(t, equation.Log{"3d6: 4 + 1 + 5 = 10"}, log)
}

func TestRollStubbedDiceWithArithmetic(t *testing.T) {
	d := &Dice{Rand: Sequence(1)}

	res, log := solve(t, d, "2d6+3")
	assert.Equal(t, equation.Int(5), res)
	assert.Equal(t, equation.Log{"2d6: 1 + 1 = 2"}, log)
}

func TestDiceBindTighterThanArithmetic(t *testing.T) {
	d := &Dice{Rand: Sequence(2, 3, 6)}

	res, log := solve(t, d, "2*1d4 + 2D6")
	assert.Equal(t, equation.Int(13), res)
	assert.Equal(t, equation.Log{"1d4: 2 = 2", "2d6: 3 + 6 = 9"}, log)
}

func TestSignAppliesToWholeDiceTerm(t *testing.T) {
	d := &Dice{Rand: Sequence(3)}

	res, log := solve(t, d, "-1d20+5")
	assert.Equal(t, equation.Int(2), res)
	assert.Equal(t, equation.Log{"1d20: 3 = 3"}, log)

	res, log = solve(t, d, "1d20--1d4")
	assert.Equal(t, equation.Int(6), res)
	assert.Equal(t, equation.Log{"1d20: 3 = 3", "1d4: 3 = 3"}, log)

	res, _ = solve(t, d, "-2d6")
	assert.Equal(t, equation.Int(-6), res)

	res, _ = solve(t, d, "2*-1d6")
	assert.Equal(t, equation.Int(-6), res)
}

func TestRollNegativeAndZeroSides(t *testing.T) {
	d := &Dice{Rand: Sequence(3)}

	res, _ := solve(t, d, "2d(-4)")
	assert.Equal(t, equation.Int(-6), res)

	res, log := solve(t, d, "3d0")
	assert.Equal(t, equation.Int(0), res)
	assert.Equal(t, equation.Log{"3d0: 0 + 0 + 0 = 0"}, log)
}

func TestRollAdvantage(t *testing.T) {
	d := &Dice{Rand: Sequence(7, 15), Mode: Advantage}

	res, log := solve(t, d, "1d20+5")
	assert.Equal(t, equation.Int(20), res)
	assert.Equal(t, equation.Log{"1d20: max(7, 15) = 15"}, log)
}

func TestRollDisadvantage(t *testing.T) {
	d := &Dice{Rand: Sequence(7, 15), Mode: Disadvantage}

	res, log := solve(t, d, "1d20")
	assert.Equal(t, equation.Int(7), res)
	assert.Equal(t, equation.Log{"1d20: min(7, 15) = 7"}, log)
}

func TestAdvantageOnlyAffectsSingleD20(t *testing.T) {
	d := &Dice{Rand: Sequence(3, 4), Mode: Advantage}

	res, log := solve(t, d, "2d6")
	assert.Equal(t, equation.Int(7), res)
	assert.Equal(t, equation.Log{"2d6: 3 + 4 = 7"}, log)
}

func TestGreatWeaponFighting(t *testing.T) {
	d := &Dice{Rand: Sequence(1, 5, 4)}

	res, log := solve(t, d, "2g6")
	assert.Equal(t, equation.Int(9), res)
	assert.Equal(t, equation.Log{"2d6: 1 + 5, rerolled: 4 + 5 = 9"}, log)
}

func TestGreatWeaponFightingWithoutRerolls(t *testing.T) {
	d := &Dice{Rand: Sequence(6, 3)}

	res, log := solve(t, d, "2G6")
	assert.Equal(t, equation.Int(9), res)
	assert.Equal(t, equation.Log{"2d6: 6 + 3 = 9"}, log)
}

func TestMaxMin(t *testing.T) {
	d := &Dice{Rand: Sequence(1)}

	res, _ := solve(t, d, "3 > 7 + 1")
	assert.Equal(t, equation.Int(8), res)

	res, _ = solve(t, d, "(1d20 < 10) + 2")
	assert.Equal(t, equation.Int(3), res)
}

func TestModifier(t *testing.T) {
	d := &Dice{Rand: Sequence(1)}

	for score, want := range map[string]int64{"!16": 3, "!10": 0, "!9": -1, "!1": -5, "!16+2": 5} {
		res, _ := solve(t, d, score)
		assert.Equal(t, equation.Int(want), res, score)
	}
}

func TestRollErrors(t *testing.T) {
	d := &Dice{Rand: Sequence(1), MaxDice: 10}
	ops := d.Operators()

	_, err := equation.Evaluate("1.5d6", ops, nil)
	assert.ErrorIs(t, err, ErrFractionalDice)

	_, err = equation.Evaluate("(-2)d6", ops, nil)
	assert.ErrorIs(t, err, ErrNegativeDice)

	_, err = equation.Evaluate("11d6", ops, nil)
	assert.ErrorIs(t, err, ErrTooManyDice)
	assert.ErrorIs(t, err, equation.ErrOperatorFailed)
}

func TestSequence(t *testing.T) {
	next := Sequence(9, 2)
	assert.Equal(t, 6, next(6))
	assert.Equal(t, 2, next(6))
	assert.Equal(t, 2, next(6))
}
