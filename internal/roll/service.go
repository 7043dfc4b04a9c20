package roll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/engine"
	"github.com/suderio/dicebot/internal/equation"
)

// ErrUnknownName is returned when an expression mentions a word that is neither an
// operator nor a saved roll or variable of the character.
var ErrUnknownName = errors.New("could not find")

var (
	modeSuffix = regexp.MustCompile(`^(.*)\s+((?:dis)?adv)$`)
	words      = regexp.MustCompile(`[a-zA-Z]+`)
)

// Sheets gives access to a character's saved rolls and variables.
type Sheets interface {
	Rolls(ctx context.Context, c character.Character) ([]character.Roll, error)
	Variables(ctx context.Context, c character.Character) ([]character.Variable, error)
}

// History records every roll attempt.
type History interface {
	Append(evt engine.Event) error
}

// Request asks for one expression to be rolled. Server and User identify the sender
// in the roll history. Character is optional.
type Request struct {
	Server     string
	User       string
	Character  *character.Character
	Expression string
}

// Result is a solved roll.
type Result struct {
	Expression string // as typed
	Resolved   string // after saved rolls and variables were substituted
	Mode       engine.Mode
	Value      equation.Number
	Lines      []string
}

// Text joins the lines shown to the player.
func (r *Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Service rolls dice expressions on behalf of players.
type Service struct {
	sheets  Sheets
	history History
	rand    engine.RandFunc
	maxDice int
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSheets enables saved roll and variable substitution.
func WithSheets(sheets Sheets) Option {
	return func(s *Service) { s.sheets = sheets }
}

// WithHistory records rolls.
func WithHistory(h History) Option {
	return func(s *Service) { s.history = h }
}

// WithRand replaces the dice source.
func WithRand(fn engine.RandFunc) Option {
	return func(s *Service) { s.rand = fn }
}

// WithMaxDice caps the dice rolled by one NdM term.
func WithMaxDice(n int) Option {
	return func(s *Service) { s.maxDice = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds a roll service.
func NewService(opts ...Option) *Service {
	s := &Service{
		maxDice: engine.DefaultMaxDice,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Roll solves req.Expression. A trailing "adv" or "disadv" rolls lone d20s with
// advantage or disadvantage. When a character is given, the first of its saved rolls
// found in the expression (longest name first) and then all of its variables are
// replaced by their parenthesized values.
func (s *Service) Roll(ctx context.Context, req Request) (*Result, error) {
	expression := strings.TrimSpace(req.Expression)
	mode := engine.Normal
	if m := modeSuffix.FindStringSubmatch(expression); m != nil {
		expression = m[1]
		if m[2] == "adv" {
			mode = engine.Advantage
		} else {
			mode = engine.Disadvantage
		}
	}

	res, err := s.roll(ctx, req.Character, expression, mode)
	s.record(req, expression, mode, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) roll(ctx context.Context, c *character.Character, expression string, mode engine.Mode) (*Result, error) {
	original := expression
	if c != nil && s.sheets != nil {
		var err error
		expression, err = s.substitute(ctx, *c, expression)
		if err != nil {
			return nil, err
		}
	}

	dice := &engine.Dice{Rand: s.rand, Mode: mode, MaxDice: s.maxDice}
	ops := dice.Operators()
	if err := checkNames(ops, original, expression); err != nil {
		return nil, err
	}

	log := equation.Log{fmt.Sprintf("Rolling: `%s`", expression)}
	value, err := equation.Evaluate(expression, ops, &log)
	if err != nil {
		return nil, fmt.Errorf("rolling %s: %w", original, err)
	}
	value = value.Collapse()

	if c != nil {
		log.Trace(fmt.Sprintf("%s rolled %s", c, value))
	} else {
		log.Trace(fmt.Sprintf("You rolled %s", value))
	}

	s.logger.Debug("roll solved", "expression", original, "resolved", expression, "mode", mode.String(), "value", value.String())
	return &Result{
		Expression: original,
		Resolved:   expression,
		Mode:       mode,
		Value:      value,
		Lines:      log,
	}, nil
}

func (s *Service) substitute(ctx context.Context, c character.Character, expression string) (string, error) {
	rolls, err := s.sheets.Rolls(ctx, c)
	if err != nil {
		return "", fmt.Errorf("loading rolls of %s: %w", c, err)
	}
	sort.SliceStable(rolls, func(i, j int) bool { return len(rolls[i].Name) > len(rolls[j].Name) })
	for _, r := range rolls {
		if strings.Contains(expression, r.Name) {
			expression = strings.Replace(expression, r.Name, "("+r.Expression+")", 1)
			break
		}
	}

	vars, err := s.sheets.Variables(ctx, c)
	if err != nil {
		return "", fmt.Errorf("loading variables of %s: %w", c, err)
	}
	sort.SliceStable(vars, func(i, j int) bool { return len(vars[i].Name) > len(vars[j].Name) })
	for _, v := range vars {
		expression = strings.ReplaceAll(expression, v.Name, "("+strconv.FormatInt(v.Value, 10)+")")
	}
	return expression, nil
}

// checkNames rejects words that are not operator symbols, naming the word as the
// player typed it.
func checkNames(ops equation.Operators, original, expression string) error {
	for _, word := range words.FindAllString(expression, -1) {
		if isSymbol(ops, word) {
			continue
		}
		search := regexp.MustCompile(`[a-zA-Z]*` + regexp.QuoteMeta(word) + `[a-zA-Z]*`)
		if found := search.FindString(original); found != "" {
			word = found
		}
		return fmt.Errorf("%w: %s", ErrUnknownName, word)
	}
	return nil
}

func isSymbol(ops equation.Operators, word string) bool {
	for _, tier := range ops.Tiers {
		if _, ok := tier[word]; ok {
			return true
		}
	}
	_, ok := ops.Unary[word]
	return ok
}

func (s *Service) record(req Request, expression string, mode engine.Mode, res *Result, rollErr error) {
	if s.history == nil {
		return
	}
	server, user, actor := req.Server, req.User, ""
	if c := req.Character; c != nil {
		server, user, actor = c.Server, c.User, c.Name
	}

	var evt engine.Event
	if rollErr != nil {
		evt = &engine.RollFailedEvent{
			ID:         uuid.NewString(),
			Server:     server,
			User:       user,
			ActorName:  actor,
			Expression: expression,
			Reason:     rollErr.Error(),
			RolledAt:   s.now().UTC(),
		}
	} else {
		evt = &engine.DiceRolledEvent{
			ID:         uuid.NewString(),
			Server:     server,
			User:       user,
			ActorName:  actor,
			Expression: res.Expression,
			Resolved:   res.Resolved,
			Mode:       mode.String(),
			Total:      res.Value.String(),
			Lines:      res.Lines,
			RolledAt:   s.now().UTC(),
		}
	}
	if err := s.history.Append(evt); err != nil {
		s.logger.Warn("failed to record roll", "expression", expression, "error", err)
	}
}
