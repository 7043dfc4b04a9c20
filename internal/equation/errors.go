package equation

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnrecognizedToken     = errors.New("could not parse equation from")
	ErrUnbalancedParenthesis = errors.New("unbalanced parenthesis")
	ErrMissingOpenParen      = parenError("missing open parenthesis")
	ErrMissingCloseParen     = parenError("missing closing parenthesis")
	ErrNotEnoughOperands     = errors.New("not enough operands")
	ErrMalformedExpression   = errors.New("too many operands for operators")
	ErrUnknownOperator       = errors.New("unknown operator")
	ErrOperatorFailed        = errors.New("operator failed")
	ErrInvalidOperators      = errors.New("invalid operator table")
	ErrDivisionByZero        = errors.New("division by zero")
)

// parenError is a parenthesis failure that also matches ErrUnbalancedParenthesis.
type parenError string

func (e parenError) Error() string { return string(e) }

func (e parenError) Is(target error) bool { return target == ErrUnbalancedParenthesis }

// Error describes why an equation could not be solved.
type Error struct {
	Kind  error  // one of the Err* kinds above
	Token string // offending token, symbol or remaining text
	Unary bool   // Token was used as a unary operator
	Expr  string // the equation as given to Evaluate
	Err   error  // cause returned by an operator function, if any
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case ErrUnrecognizedToken:
		msg = fmt.Sprintf("could not parse equation from: %s", e.Token)
	case ErrNotEnoughOperands:
		if e.Unary {
			msg = fmt.Sprintf("not enough operands for unary %s", e.Token)
		} else {
			msg = fmt.Sprintf("not enough operands for %s", e.Token)
		}
	case ErrMalformedExpression:
		if e.Token == "" {
			msg = "missing operand"
		} else {
			msg = fmt.Sprintf("too many operands for operators (%s values left)", e.Token)
		}
	case ErrUnknownOperator:
		msg = fmt.Sprintf("unknown operator %s", e.Token)
	case ErrOperatorFailed:
		msg = fmt.Sprintf("%s: %v", e.Token, e.Err)
	default:
		msg = e.Kind.Error()
	}
	if e.Expr != "" {
		msg += " in " + e.Expr
	}
	return msg
}

// Unwrap exposes both the kind and the operator cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// withExpr stamps the original expression on engine errors that lack one.
func withExpr(err error, expr string) error {
	var eqErr *Error
	if errors.As(err, &eqErr) && eqErr.Expr == "" {
		eqErr.Expr = expr
	}
	return err
}
