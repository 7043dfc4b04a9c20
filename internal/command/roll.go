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

// ExecuteRoll rolls an expression for the sender's character, or manages its saved rolls.
func ExecuteRoll(ctx context.Context, env *Env, cmd *parser.RollCmd) (string, error) {
	switch {
	case cmd.Add != nil:
		return addRoll(ctx, env, cmd.Add)
	case cmd.Check != nil:
		c, err := require(ctx, env)
		if err != nil {
			return "", err
		}
		r, err := env.Characters.Roll(ctx, c, cmd.Check.Name)
		if err != nil {
			return "", fmt.Errorf("could not find roll %s", cmd.Check.Name)
		}
		return r.String(), nil
	case cmd.List:
		c, err := require(ctx, env)
		if err != nil {
			return "", err
		}
		rolls, err := env.Characters.Rolls(ctx, c)
		if err != nil {
			return "", err
		}
		if len(rolls) == 0 {
			return fmt.Sprintf("%s has no saved rolls", c), nil
		}
		lines := make([]string, 0, len(rolls))
		for _, r := range rolls {
			lines = append(lines, r.String())
		}
		return strings.Join(lines, "\n"), nil
	case cmd.Remove != nil:
		c, err := require(ctx, env)
		if err != nil {
			return "", err
		}
		r, err := env.Characters.DeleteRoll(ctx, c, cmd.Remove.Name)
		if err != nil {
			return "", fmt.Errorf("could not find roll %s", cmd.Remove.Name)
		}
		return fmt.Sprintf("Removed roll %s", r), nil
	case len(cmd.Inspect) > 0:
		return inspect(ctx, env, cmd.InspectedName())
	}

	c, err := lookup(ctx, env)
	if err != nil {
		return "", err
	}
	res, err := env.Roller.Roll(ctx, roll.Request{
		Server:     env.Server,
		User:       env.User,
		Character:  c,
		Expression: cmd.Expression(),
	})
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

func addRoll(ctx context.Context, env *Env, arg *parser.SaveRollArg) (string, error) {
	if err := ValidateName(arg.Name); err != nil {
		return "", err
	}
	c, err := require(ctx, env)
	if err != nil {
		return "", err
	}
	expression := arg.Expression()
	if strings.Contains(expression, arg.Name) {
		return "", fmt.Errorf("roll %s cannot refer to itself", arg.Name)
	}
	r, err := env.Characters.SetRoll(ctx, c, arg.Name, expression)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved roll %s", r), nil
}

// inspect lists the saved rolls of any character on the sender's server.
func inspect(ctx context.Context, env *Env, name string) (string, error) {
	c, err := env.Characters.ByName(ctx, env.Server, name)
	if errors.Is(err, character.ErrNotFound) {
		return "", fmt.Errorf("No character named %s", name)
	}
	if err != nil {
		return "", err
	}
	rolls, err := env.Characters.Rolls(ctx, c)
	if err != nil {
		return "", err
	}
	if len(rolls) == 0 {
		return fmt.Sprintf("%s has no saved rolls", c), nil
	}
	lines := make([]string, 0, len(rolls)+1)
	lines = append(lines, fmt.Sprintf("%s's rolls:", c))
	for _, r := range rolls {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n"), nil
}
