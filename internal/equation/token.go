package equation

import (
	"fmt"
	"strings"
)

// TokenKind tags a Token.
type TokenKind int

const (
	NumberToken TokenKind = iota
	OperatorToken
	UnaryToken
	OpenParenToken
	CloseParenToken
)

func (k TokenKind) String() string {
	switch k {
	case NumberToken:
		return "Number"
	case OperatorToken:
		return "Operator"
	case UnaryToken:
		return "Unary"
	case OpenParenToken:
		return "OpenParen"
	case CloseParenToken:
		return "CloseParen"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one lexical element of an equation. Numbers keep their literal text until
// evaluation so "3" and "3.0" stay distinguishable. Tier is only meaningful for operators.
type Token struct {
	Kind TokenKind
	Text string
	Tier int
}

func (t Token) String() string {
	if t.Kind == OperatorToken {
		return fmt.Sprintf("%s(%s@%d)", t.Kind, t.Text, t.Tier)
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

// Render joins token texts back into an equation without whitespace.
func Render(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}
