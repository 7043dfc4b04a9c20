package command

import (
	"context"
	"fmt"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/engine"
	"github.com/suderio/dicebot/internal/parser"
	"github.com/suderio/dicebot/internal/roll"
)

// Recorder gives read access to the roll history.
type Recorder interface {
	Recent(server, actor string, n int) ([]engine.Event, error)
}

// Env carries the sender of a command and the services it runs against.
type Env struct {
	Server string
	User   string

	Characters *character.Store
	Roller     *roll.Service
	History    Recorder
}

// Execute dispatches a parsed command and returns the reply for the sender.
func Execute(ctx context.Context, env *Env, cmd *parser.Command) (string, error) {
	switch {
	case cmd.Roll != nil:
		return ExecuteRoll(ctx, env, cmd.Roll)
	case cmd.Var != nil:
		return ExecuteVar(ctx, env, cmd.Var)
	case cmd.Iam != nil:
		return ExecuteIam(ctx, env, cmd.Iam)
	case cmd.Whoami != nil:
		return ExecuteWhoami(ctx, env)
	case cmd.History != nil:
		return ExecuteHistory(ctx, env, cmd.History)
	case cmd.Initiative != nil:
		return ExecuteInitiative(ctx, env, cmd.Initiative)
	case cmd.Help != nil:
		return ExecuteHelp(cmd.Help)
	}
	return "", fmt.Errorf("I wasn't able to understand your command")
}
