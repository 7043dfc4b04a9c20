package equation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// newLexer compiles lexing rules for one operator table. Every binary symbol and every
// unary-only symbol share a single alternation ordered longest first, so "//" wins over
// "/" and word operators like "adv" win over "a".
func newLexer(ops Operators) (*lexer.StatefulDefinition, error) {
	seen := make(map[string]bool)
	var symbols []string
	for _, tier := range ops.Tiers {
		for sym := range tier {
			if !seen[sym] {
				seen[sym] = true
				symbols = append(symbols, sym)
			}
		}
	}
	for sym := range ops.Unary {
		if !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	sort.Slice(symbols, func(i, j int) bool {
		if len(symbols[i]) != len(symbols[j]) {
			return len(symbols[i]) > len(symbols[j])
		}
		return symbols[i] < symbols[j]
	})

	rules := []lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `\s+`},
	}
	if len(symbols) > 0 {
		quoted := make([]string, len(symbols))
		for i, sym := range symbols {
			quoted[i] = regexp.QuoteMeta(sym)
		}
		rules = append(rules, lexer.SimpleRule{Name: "Symbol", Pattern: strings.Join(quoted, "|")})
	}
	rules = append(rules,
		lexer.SimpleRule{Name: "Number", Pattern: `\d*\.\d+|\d+`},
		lexer.SimpleRule{Name: "Open", Pattern: `\(`},
		lexer.SimpleRule{Name: "Close", Pattern: `\)`},
	)

	def, err := lexer.NewSimple(rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperators, err)
	}
	return def, nil
}

// Tokenize splits an equation into tokens. Whitespace is dropped. Symbols found in a
// tier become operator tokens carrying that tier; symbols only known as unary become
// unary tokens.
func Tokenize(expr string, ops Operators) ([]Token, error) {
	if err := ops.Validate(); err != nil {
		return nil, err
	}
	def, err := newLexer(ops)
	if err != nil {
		return nil, err
	}

	lex, err := def.LexString("", expr)
	if err != nil {
		return nil, unrecognized(expr, err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, unrecognized(expr, err)
	}

	types := def.Symbols()
	symbolType, hasSymbols := types["Symbol"]
	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		if t.EOF() {
			break
		}
		switch {
		case hasSymbols && t.Type == symbolType:
			if tier, ok := ops.tierOf(t.Value); ok {
				tokens = append(tokens, Token{Kind: OperatorToken, Text: t.Value, Tier: tier})
			} else {
				tokens = append(tokens, Token{Kind: UnaryToken, Text: t.Value})
			}
		case t.Type == types["Number"]:
			tokens = append(tokens, Token{Kind: NumberToken, Text: t.Value})
		case t.Type == types["Open"]:
			tokens = append(tokens, Token{Kind: OpenParenToken, Text: "("})
		case t.Type == types["Close"]:
			tokens = append(tokens, Token{Kind: CloseParenToken, Text: ")"})
		}
	}
	return tokens, nil
}

// unrecognized reports the text left over where the lexer gave up.
func unrecognized(expr string, err error) error {
	rest := expr
	var posErr interface{ Position() lexer.Position }
	if errors.As(err, &posErr) {
		if off := posErr.Position().Offset; off >= 0 && off <= len(expr) {
			rest = expr[off:]
		}
	}
	return &Error{Kind: ErrUnrecognizedToken, Token: strings.TrimSpace(rest)}
}
