package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/command"
	"github.com/suderio/dicebot/internal/parser"
	"github.com/suderio/dicebot/internal/roll"
)

// Sender identifies who typed a command. Server scopes characters, so the same
// user can play different characters in different chats.
type Sender struct {
	Server string
	User   string
}

// Session takes raw command lines from a UI client, parses them, and runs them
// against the character store and the roll service.
type Session struct {
	parser  *participle.Parser[parser.Command]
	chars   *character.Store
	roller  *roll.Service
	history command.Recorder
	logger  *slog.Logger
}

// NewSession wires a session. history may be nil to disable the history command.
func NewSession(chars *character.Store, roller *roll.Service, history command.Recorder, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		parser:  parser.Build(),
		chars:   chars,
		roller:  roller,
		history: history,
		logger:  logger,
	}
}

// Execute runs one line and returns the reply. Chat prefixes such as "/roll" or
// "/roll@dicebot" are accepted.
func (s *Session) Execute(ctx context.Context, from Sender, input string) (string, error) {
	input = Normalize(input)

	astCmd, err := s.parser.ParseString("", input)
	if err != nil {
		s.logger.Debug("unparsable command", "input", input, "error", err)
		return "", parser.MapError(input, err)
	}

	env := &command.Env{
		Server:     from.Server,
		User:       from.User,
		Characters: s.chars,
		Roller:     s.roller,
		History:    s.history,
	}
	reply, err := command.Execute(ctx, env, astCmd)
	if err != nil {
		s.logger.Debug("command failed", "input", input, "server", from.Server, "user", from.User, "error", err)
		return "", err
	}
	return reply, nil
}

// Normalize strips a leading "/" or "!" and a "@botname" suffix from the command word.
func Normalize(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimLeft(input, "/!")
	word, rest, _ := strings.Cut(input, " ")
	if at := strings.Index(word, "@"); at > 0 {
		word = word[:at]
	}
	if rest == "" {
		return word
	}
	return word + " " + rest
}
