package roll_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/engine"
	"github.com/suderio/dicebot/internal/equation"
	"github.com/suderio/dicebot/internal/roll"
)

type fakeSheets struct {
	rolls []character.Roll
	vars  []character.Variable
	err   error
}

func (f *fakeSheets) Rolls(context.Context, character.Character) ([]character.Roll, error) {
	return append([]character.Roll(nil), f.rolls...), f.err
}

func (f *fakeSheets) Variables(context.Context, character.Character) ([]character.Variable, error) {
	return append([]character.Variable(nil), f.vars...), f.err
}

type memHistory struct {
	events []engine.Event
}

func (m *memHistory) Append(evt engine.Event) error {
	m.events = append(m.events, evt)
	return nil
}

var paulo = &character.Character{ID: 1, Name: "Paulo", Server: "table-1", User: "42"}

func TestRollWithoutCharacter(t *testing.T) {
	history := &memHistory{}
	svc := roll.NewService(roll.WithRand(engine.Sequence(4, 5)), roll.WithHistory(history))

	res, err := svc.Roll(context.Background(), roll.Request{Server: "table-9", User: "7", Expression: "2d6+3"})
	require.NoError(t, err)

	assert.Equal(t, equation.Int(12), res.Value)
	assert.Equal(t, []string{
		"Rolling: `2d6+3`",
		"2d6: 4 + 5 = 9",
		"You rolled 12",
	}, res.Lines)
	assert.Equal(t, "Rolling: `2d6+3`\n2d6: 4 + 5 = 9\nYou rolled 12", res.Text())

	require.Len(t, history.events, 1)
	evt, ok := history.events[0].(*engine.DiceRolledEvent)
	require.True(t, ok)
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "12", evt.Total)
	assert.Equal(t, "normal", evt.Mode)
	assert.Equal(t, "table-9", evt.Server)
	assert.Equal(t, "7", evt.User)
	assert.Empty(t, evt.ActorName)
}

func TestRollSubstitutesSavedRollsAndVariables(t *testing.T) {
	sheets := &fakeSheets{
		rolls: []character.Roll{
			{Name: "sword", Expression: "1d20+str"},
			{Name: "swordsman", Expression: "1d20+10"},
		},
		vars: []character.Variable{
			{Name: "str", Value: 3},
			{Name: "prof", Value: 2},
		},
	}
	svc := roll.NewService(roll.WithSheets(sheets), roll.WithRand(engine.Sequence(10)))

	res, err := svc.Roll(context.Background(), roll.Request{Character: paulo, Expression: "sword+prof"})
	require.NoError(t, err)

	assert.Equal(t, "sword+prof", res.Expression)
	assert.Equal(t, "(1d20+(3))+(2)", res.Resolved)
	assert.Equal(t, equation.Int(15), res.Value)
	assert.Equal(t, "Paulo rolled 15", res.Lines[len(res.Lines)-1])
}

func TestRollPrefersLongestSavedRoll(t *testing.T) {
	sheets := &fakeSheets{
		rolls: []character.Roll{
			{Name: "sword", Expression: "1"},
			{Name: "swordsman", Expression: "2"},
		},
	}
	svc := roll.NewService(roll.WithSheets(sheets))

	res, err := svc.Roll(context.Background(), roll.Request{Character: paulo, Expression: "swordsman"})
	require.NoError(t, err)
	assert.Equal(t, "(2)", res.Resolved)
	assert.Equal(t, equation.Int(2), res.Value)
}

func TestRollNegativeVariable(t *testing.T) {
	sheets := &fakeSheets{vars: []character.Variable{{Name: "dex", Value: -1}}}
	svc := roll.NewService(roll.WithSheets(sheets), roll.WithRand(engine.Sequence(6)))

	res, err := svc.Roll(context.Background(), roll.Request{Character: paulo, Expression: "1d20+dex"})
	require.NoError(t, err)
	assert.Equal(t, "1d20+(-1)", res.Resolved)
	assert.Equal(t, equation.Int(5), res.Value)
}

func TestRollAdvantageSuffix(t *testing.T) {
	tests := []struct {
		expression string
		mode       engine.Mode
		want       int64
	}{
		{"1d20+2 adv", engine.Advantage, 17},
		{"1d20+2 disadv", engine.Disadvantage, 9},
		{"1d20+2", engine.Normal, 9},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			svc := roll.NewService(roll.WithRand(engine.Sequence(7, 15)))
			res, err := svc.Roll(context.Background(), roll.Request{Expression: tt.expression})
			require.NoError(t, err)
			assert.Equal(t, tt.mode, res.Mode)
			assert.Equal(t, "1d20+2", res.Expression)
			assert.Equal(t, equation.Int(tt.want), res.Value)
		})
	}
}

func TestRollCollapsesWholeResults(t *testing.T) {
	svc := roll.NewService()

	res, err := svc.Roll(context.Background(), roll.Request{Expression: "7/7"})
	require.NoError(t, err)
	assert.False(t, res.Value.IsFloat())
	assert.Equal(t, "You rolled 1", res.Lines[len(res.Lines)-1])

	res, err = svc.Roll(context.Background(), roll.Request{Expression: "7/2"})
	require.NoError(t, err)
	assert.Equal(t, "You rolled 3.5", res.Lines[len(res.Lines)-1])
}

func TestRollUnknownName(t *testing.T) {
	tests := []struct {
		name       string
		sheets     *fakeSheets
		expression string
		want       string
	}{
		{"no character data", nil, "1d20+dex", "could not find: dex"},
		{"partly substituted word", &fakeSheets{vars: []character.Variable{{Name: "str", Value: 3}}}, "1d20+strength", "could not find: strength"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &memHistory{}
			opts := []roll.Option{roll.WithHistory(history)}
			if tt.sheets != nil {
				opts = append(opts, roll.WithSheets(tt.sheets))
			}
			svc := roll.NewService(opts...)

			_, err := svc.Roll(context.Background(), roll.Request{Character: paulo, Expression: tt.expression})
			require.Error(t, err)
			assert.ErrorIs(t, err, roll.ErrUnknownName)
			assert.EqualError(t, err, tt.want)

			require.Len(t, history.events, 1)
			failed, ok := history.events[0].(*engine.RollFailedEvent)
			require.True(t, ok)
			assert.Equal(t, "Paulo", failed.ActorName)
			assert.Equal(t, "table-1", failed.Server)
			assert.Equal(t, "42", failed.User)
			assert.Equal(t, tt.want, failed.Reason)
		})
	}
}

func TestRollEquationErrors(t *testing.T) {
	svc := roll.NewService()

	_, err := svc.Roll(context.Background(), roll.Request{Expression: "(1+2"})
	assert.ErrorIs(t, err, equation.ErrUnbalancedParenthesis)
	assert.ErrorIs(t, err, equation.ErrMissingCloseParen)

	_, err = svc.Roll(context.Background(), roll.Request{Expression: "1000000d6"})
	assert.ErrorIs(t, err, engine.ErrTooManyDice)

	_, err = svc.Roll(context.Background(), roll.Request{Expression: "1 2"})
	assert.ErrorIs(t, err, equation.ErrMalformedExpression)
}

func TestRollSheetFailure(t *testing.T) {
	boom := errors.New("boom")
	svc := roll.NewService(roll.WithSheets(&fakeSheets{err: boom}))

	_, err := svc.Roll(context.Background(), roll.Request{Character: paulo, Expression: "1d20"})
	assert.ErrorIs(t, err, boom)
}

func TestRollMaxDice(t *testing.T) {
	svc := roll.NewService(roll.WithMaxDice(2))

	_, err := svc.Roll(context.Background(), roll.Request{Expression: "3d6"})
	assert.ErrorIs(t, err, engine.ErrTooManyDice)

	_, err = svc.Roll(context.Background(), roll.Request{Expression: "2d6"})
	assert.NoError(t, err)
}
