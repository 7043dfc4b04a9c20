package command_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/command"
	"github.com/suderio/dicebot/internal/engine"
	"github.com/suderio/dicebot/internal/parser"
	"github.com/suderio/dicebot/internal/persistence"
	"github.com/suderio/dicebot/internal/roll"
)

type harness struct {
	env  *command.Env
	cmds func(string) *parser.Command
}

func newHarness(t *testing.T, results ...int) *harness {
	t.Helper()
	dir := t.TempDir()

	chars, err := character.Open(filepath.Join(dir, "dicebot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = chars.Close() })

	history, err := persistence.NewStore(filepath.Join(dir, "history.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })

	svc := roll.NewService(
		roll.WithSheets(chars),
		roll.WithHistory(history),
		roll.WithRand(engine.Sequence(results...)),
	)

	p := parser.Build()
	return &harness{
		env: &command.Env{
			Server:     "table-1",
			User:       "42",
			Characters: chars,
			Roller:     svc,
			History:    history,
		},
		cmds: func(input string) *parser.Command {
			cmd, err := p.ParseString("", input)
			require.NoError(t, err, input)
			return cmd
		},
	}
}

func (h *harness) run(t *testing.T, input string) (string, error) {
	t.Helper()
	return command.Execute(context.Background(), h.env, h.cmds(input))
}

func (h *harness) must(t *testing.T, input string) string {
	t.Helper()
	out, err := h.run(t, input)
	require.NoError(t, err, input)
	return out
}

func TestRollWithoutCharacter(t *testing.T) {
	h := newHarness(t, 3, 4)

	out := h.must(t, "roll 2d6+1")
	assert.Equal(t, "Rolling: `2d6+1`\n2d6: 3 + 4 = 7\nYou rolled 8", out)
}

func TestCharacterWorkflow(t *testing.T) {
	h := newHarness(t, 12)

	_, err := h.run(t, "var set str 3")
	assert.ErrorIs(t, err, command.ErrNoCharacter)

	assert.Equal(t, "You are now Paulo", h.must(t, "iam Paulo"))
	assert.Equal(t, "You are Paulo", h.must(t, "whoami"))

	assert.Equal(t, "Saved variable str: 3", h.must(t, "var set str 3"))
	assert.Equal(t, "Saved roll sword: 1d20 + str", h.must(t, "roll add sword 1d20 + str"))
	assert.Equal(t, "sword: 1d20 + str", h.must(t, "roll check sword"))
	assert.Equal(t, "sword: 1d20 + str", h.must(t, "roll list"))
	assert.Equal(t, "str: 3", h.must(t, "var list"))

	out := h.must(t, "roll sword")
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Rolling: `(1d20 + (3))`", lines[0])
	assert.Equal(t, "Paulo rolled 15", lines[len(lines)-1])

	assert.Equal(t, "Removed roll sword: 1d20 + str", h.must(t, "roll remove sword"))
	assert.Equal(t, "Paulo has no saved rolls", h.must(t, "roll list"))
	assert.Equal(t, "Removed variable str: 3", h.must(t, "var remove str"))
	assert.Equal(t, "Paulo has no variables", h.must(t, "var list"))

	_, err = h.run(t, "var check str")
	assert.EqualError(t, err, "could not find variable str")
}

func TestIamRejectsTakenName(t *testing.T) {
	h := newHarness(t)
	h.must(t, "iam Paulo")

	h.env.User = "43"
	_, err := h.run(t, "iam Paulo")
	assert.EqualError(t, err, "Paulo is already played by someone else")
}

func TestInvalidNames(t *testing.T) {
	h := newHarness(t)
	h.must(t, "iam Paulo")

	for _, input := range []string{"var set d 1", "var set adv 1", "var set str2 1", "roll add g 1d6"} {
		_, err := h.run(t, input)
		assert.Error(t, err, input)
	}

	_, err := h.run(t, "roll add sword 1d20+sword")
	assert.EqualError(t, err, "roll sword cannot refer to itself")
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, command.ValidateName("str"))
	assert.NoError(t, command.ValidateName("Sword"))
	assert.Error(t, command.ValidateName("D"))
	assert.Error(t, command.ValidateName("disadv"))
	assert.Error(t, command.ValidateName("great_axe"))
	assert.Error(t, command.ValidateName(""))
}

func TestHistory(t *testing.T) {
	h := newHarness(t, 5)

	assert.Equal(t, "No rolls yet", h.must(t, "history"))

	h.must(t, "roll 1d6")
	_, err := h.run(t, "roll (1d6")
	require.Error(t, err)

	out := h.must(t, "history 5")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "`1d6` = 5"), lines[0])
	assert.Contains(t, lines[1], "`(1d6` failed: ")

	_, err = h.run(t, "history 0")
	assert.Error(t, err)
}

func TestHistoryStaysOnServer(t *testing.T) {
	h := newHarness(t, 5)
	h.must(t, "iam Paulo")
	h.must(t, "roll 1d6")

	h.env.Server = "table-2"
	h.must(t, "iam Paulo")
	assert.Equal(t, "No rolls yet", h.must(t, "history"))

	h.must(t, "roll 1d4")
	out := h.must(t, "history")
	assert.True(t, strings.HasSuffix(out, "`1d4` = 4"), out)
	assert.NotContains(t, out, "1d6")

	h.env.Server = "table-3"
	h.env.User = "77"
	assert.Equal(t, "No rolls yet", h.must(t, "history"))
}

func TestInitiative(t *testing.T) {
	h := newHarness(t, 14, 6)

	_, err := h.run(t, "initiative set 1d20")
	assert.ErrorIs(t, err, command.ErrNoCharacter)
	assert.Equal(t, "No initiatives yet", h.must(t, "init list"))

	h.must(t, "iam Paulo")
	h.must(t, "var set dex 2")
	assert.Equal(t, "No initiative for Paulo", h.must(t, "initiative check"))

	out := h.must(t, "initiative set 1d20+dex")
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Rolling: `1d20+(2)`", lines[0])
	assert.Equal(t, "Initiative Paulo: 16 added", lines[len(lines)-1])
	assert.Equal(t, "Paulo: 16", h.must(t, "initiative check"))

	h.env.User = "43"
	h.must(t, "iam Ana")
	assert.Equal(t, "Initiative Ana: 6 added", lastLine(h.must(t, "init roll 1d20")))
	h.env.User = "44"
	h.must(t, "iam Bia")
	assert.Equal(t, "Initiative Bia: 20 added", lastLine(h.must(t, "init set 20")))

	assert.Equal(t, "Initiatives:\nBia: 20\nPaulo: 16\nAna: 6", h.must(t, "initiative list"))

	assert.Equal(t, "Bia's initiative removed", h.must(t, "initiative remove"))
	_, err = h.run(t, "initiative remove")
	assert.EqualError(t, err, "Bia has no initiative")

	h.env.Server = "table-2"
	assert.Equal(t, "No initiatives yet", h.must(t, "init list"))

	h.env.Server = "table-1"
	assert.Equal(t, "All initiatives removed", h.must(t, "init removeall"))
	assert.Equal(t, "No initiatives yet", h.must(t, "init list"))
}

func TestInitiativeTruncatesFractions(t *testing.T) {
	h := newHarness(t)
	h.must(t, "iam Paulo")

	assert.Equal(t, "Initiative Paulo: 3 added", lastLine(h.must(t, "initiative set 7/2")))
}

func TestRollInspect(t *testing.T) {
	h := newHarness(t)
	h.must(t, "iam Paulo")
	h.must(t, "roll add sword 1d20 + str")
	h.must(t, "roll add bow 1d20 + dex")

	h.env.User = "43"
	h.must(t, "iam Ana")
	assert.Equal(t, "Paulo's rolls:\nbow: 1d20 + dex\nsword: 1d20 + str", h.must(t, "roll inspect Paulo"))
	assert.Equal(t, "Ana has no saved rolls", h.must(t, "roll inspect Ana"))

	_, err := h.run(t, "roll inspect Bia")
	assert.EqualError(t, err, "No character named Bia")

	h.env.Server = "table-2"
	_, err = h.run(t, "roll inspect Paulo")
	assert.EqualError(t, err, "No character named Paulo")
}

func lastLine(out string) string {
	lines := strings.Split(out, "\n")
	return lines[len(lines)-1]
}

func TestHelp(t *testing.T) {
	h := newHarness(t)

	out := h.must(t, "help")
	assert.True(t, strings.HasPrefix(out, "Available commands:"))
	assert.Contains(t, out, " - roll: ")

	out = h.must(t, "help roll")
	assert.Contains(t, out, "Usage: "+parser.Usage["roll"])
	assert.Contains(t, out, "Operators, loosest first:")

	out = h.must(t, "help init")
	assert.Contains(t, out, "Usage: "+parser.Usage["initiative"])

	_, err := h.run(t, "help dance")
	assert.EqualError(t, err, "Unknown command: dance")
}
