package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/suderio/dicebot/internal/engine"
	"github.com/suderio/dicebot/internal/parser"
)

// DefaultHistory is how many rolls "history" shows without a count.
const DefaultHistory = 10

// ExecuteHistory lists the latest rolls of the sender's character. Senders without a
// character see every roll made on their server.
func ExecuteHistory(ctx context.Context, env *Env, cmd *parser.HistoryCmd) (string, error) {
	if env.History == nil {
		return "", fmt.Errorf("roll history is disabled")
	}
	n := DefaultHistory
	if cmd.Count != nil {
		n = *cmd.Count
	}
	if n <= 0 {
		return "", fmt.Errorf("history count must be positive")
	}

	c, err := lookup(ctx, env)
	if err != nil {
		return "", err
	}
	actor := ""
	if c != nil {
		actor = c.Name
	}

	events, err := env.History.Recent(env.Server, actor, n)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "No rolls yet", nil
	}

	lines := make([]string, 0, len(events))
	for _, evt := range events {
		switch e := evt.(type) {
		case *engine.DiceRolledEvent:
			lines = append(lines, fmt.Sprintf("%s `%s` = %s", e.RolledAt.Format("2006-01-02 15:04"), e.Expression, e.Total))
		case *engine.RollFailedEvent:
			lines = append(lines, fmt.Sprintf("%s `%s` failed: %s", e.RolledAt.Format("2006-01-02 15:04"), e.Expression, e.Reason))
		}
	}
	return strings.Join(lines, "\n"), nil
}
