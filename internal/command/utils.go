package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/engine"
)

// ErrNoCharacter is returned by commands that need the sender to have a character.
var ErrNoCharacter = errors.New("you have no character yet, use: iam <name>")

var validName = regexp.MustCompile(`^[a-zA-Z]+$`)

// ValidateName checks a roll or variable name. Names are substituted into dice
// expressions, so they must be alphabetic and must not shadow an operator.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid name %q: only letters are allowed", name)
	}
	if name == "adv" || name == "disadv" {
		return fmt.Errorf("invalid name %q: reserved for advantage", name)
	}
	ops := engine.NewDice(engine.Normal).Operators()
	for _, tier := range ops.Tiers {
		if _, ok := tier[name]; ok {
			return fmt.Errorf("invalid name %q: it is an operator", name)
		}
	}
	if _, ok := ops.Unary[name]; ok {
		return fmt.Errorf("invalid name %q: it is an operator", name)
	}
	return nil
}

// lookup returns the sender's character, or nil when they have none.
func lookup(ctx context.Context, env *Env) (*character.Character, error) {
	c, err := env.Characters.ForUser(ctx, env.Server, env.User)
	if errors.Is(err, character.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// require returns the sender's character or ErrNoCharacter.
func require(ctx context.Context, env *Env) (character.Character, error) {
	c, err := lookup(ctx, env)
	if err != nil {
		return character.Character{}, err
	}
	if c == nil {
		return character.Character{}, ErrNoCharacter
	}
	return *c, nil
}
