package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/suderio/dicebot/internal/parser"
)

// ExecuteIam creates the sender's character or renames it.
func ExecuteIam(ctx context.Context, env *Env, cmd *parser.IamCmd) (string, error) {
	name := strings.TrimSpace(cmd.CharacterName())
	if other, err := env.Characters.ByName(ctx, env.Server, name); err == nil && other.User != env.User {
		return "", fmt.Errorf("%s is already played by someone else", name)
	}
	c, err := env.Characters.Save(ctx, env.Server, env.User, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You are now %s", c), nil
}

// ExecuteWhoami names the sender's character.
func ExecuteWhoami(ctx context.Context, env *Env) (string, error) {
	c, err := lookup(ctx, env)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", ErrNoCharacter
	}
	return fmt.Sprintf("You are %s", c), nil
}
