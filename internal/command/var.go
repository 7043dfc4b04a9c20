package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/suderio/dicebot/internal/parser"
)

// ExecuteVar manages the variables of the sender's character.
func ExecuteVar(ctx context.Context, env *Env, cmd *parser.VarCmd) (string, error) {
	if cmd.Set != nil {
		if err := ValidateName(cmd.Set.Name); err != nil {
			return "", err
		}
	}
	c, err := require(ctx, env)
	if err != nil {
		return "", err
	}

	switch {
	case cmd.Set != nil:
		v, err := env.Characters.SetVariable(ctx, c, cmd.Set.Name, cmd.Set.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Saved variable %s", v), nil
	case cmd.Check != nil:
		v, err := env.Characters.Variable(ctx, c, cmd.Check.Name)
		if err != nil {
			return "", fmt.Errorf("could not find variable %s", cmd.Check.Name)
		}
		return v.String(), nil
	case cmd.List:
		vars, err := env.Characters.Variables(ctx, c)
		if err != nil {
			return "", err
		}
		if len(vars) == 0 {
			return fmt.Sprintf("%s has no variables", c), nil
		}
		lines := make([]string, 0, len(vars))
		for _, v := range vars {
			lines = append(lines, v.String())
		}
		return strings.Join(lines, "\n"), nil
	case cmd.Remove != nil:
		v, err := env.Characters.DeleteVariable(ctx, c, cmd.Remove.Name)
		if err != nil {
			return "", fmt.Errorf("could not find variable %s", cmd.Remove.Name)
		}
		return fmt.Sprintf("Removed variable %s", v), nil
	}
	return "", fmt.Errorf("The command var must be: %s", parser.Usage["var"])
}
