package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/parser"
	"github.com/suderio/dicebot/internal/roll"
)

// ExecuteInitiative manages the turn order of the sender's chat. Every chat is its
// own channel, so the order is shared by everyone playing there.
func ExecuteInitiative(ctx context.Context, env *Env, cmd *parser.InitiativeCmd) (string, error) {
	channel := env.Server
	switch {
	case cmd.List:
		order, err := env.Characters.Initiatives(ctx, channel)
		if err != nil {
			return "", err
		}
		if len(order) == 0 {
			return "No initiatives yet", nil
		}
		lines := make([]string, 0, len(order)+1)
		lines = append(lines, "Initiatives:")
		for _, i := range order {
			lines = append(lines, i.String())
		}
		return strings.Join(lines, "\n"), nil
	case cmd.RemoveAll:
		if _, err := env.Characters.ClearInitiatives(ctx, channel); err != nil {
			return "", err
		}
		return "All initiatives removed", nil
	}

	c, err := require(ctx, env)
	if err != nil {
		return "", err
	}

	switch {
	case cmd.Check:
		i, err := env.Characters.Initiative(ctx, c, channel)
		if errors.Is(err, character.ErrNotFound) {
			return fmt.Sprintf("No initiative for %s", c), nil
		}
		if err != nil {
			return "", err
		}
		return i.String(), nil
	case cmd.Remove:
		if _, err := env.Characters.DeleteInitiative(ctx, c, channel); err != nil {
			if errors.Is(err, character.ErrNotFound) {
				return "", fmt.Errorf("%s has no initiative", c)
			}
			return "", err
		}
		return fmt.Sprintf("%s's initiative removed", c), nil
	}

	res, err := env.Roller.Roll(ctx, roll.Request{
		Server:     env.Server,
		User:       env.User,
		Character:  &c,
		Expression: cmd.Expression(),
	})
	if err != nil {
		return "", err
	}
	i, err := env.Characters.SetInitiative(ctx, c, channel, res.Value.Int64())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\nInitiative %s added", res.Text(), i), nil
}
