package equation

import "strconv"

// Evaluate solves an infix equation against ops. Operator functions are called strictly
// left to right, in the order their results are needed, and receive t so dice and other
// side-effecting operators can describe what they did. t may be nil.
//
// Failures caused by the equation are *Error values carrying expr; a broken operator
// table is reported with ErrInvalidOperators.
func Evaluate(expr string, ops Operators, t Tracer) (Number, error) {
	tokens, err := Tokenize(expr, ops)
	if err != nil {
		return Number{}, withExpr(err, expr)
	}
	postfix, err := ToPostfix(tokens, ops)
	if err != nil {
		return Number{}, withExpr(err, expr)
	}
	n, err := EvaluatePostfix(postfix, ops, t)
	if err != nil {
		return Number{}, withExpr(err, expr)
	}
	return n, nil
}

// EvaluatePostfix runs a postfix token list on a value stack. Exactly one value must be
// left when the tokens run out.
func EvaluatePostfix(postfix []Token, ops Operators, t Tracer) (Number, error) {
	if t == nil {
		t = discard{}
	}
	stack := make([]Number, 0, len(postfix))

	for _, tok := range postfix {
		switch tok.Kind {
		case NumberToken:
			n, err := parseNumber(tok.Text)
			if err != nil {
				return Number{}, &Error{Kind: ErrUnrecognizedToken, Token: tok.Text, Err: err}
			}
			stack = append(stack, n)

		case UnaryToken:
			fn, ok := ops.Unary[tok.Text]
			if !ok {
				return Number{}, &Error{Kind: ErrUnknownOperator, Token: tok.Text, Unary: true}
			}
			if len(stack) < 1 {
				return Number{}, &Error{Kind: ErrNotEnoughOperands, Token: tok.Text, Unary: true}
			}
			a := stack[len(stack)-1]
			n, err := fn(t, a)
			if err != nil {
				return Number{}, &Error{Kind: ErrOperatorFailed, Token: tok.Text, Unary: true, Err: err}
			}
			stack[len(stack)-1] = n

		case OperatorToken:
			var fn BinaryFunc
			if tok.Tier >= 0 && tok.Tier < len(ops.Tiers) {
				fn = ops.Tiers[tok.Tier][tok.Text]
			}
			if fn == nil {
				return Number{}, &Error{Kind: ErrUnknownOperator, Token: tok.Text}
			}
			if len(stack) < 2 {
				return Number{}, &Error{Kind: ErrNotEnoughOperands, Token: tok.Text}
			}
			b, a := stack[len(stack)-1], stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			n, err := fn(t, a, b)
			if err != nil {
				return Number{}, &Error{Kind: ErrOperatorFailed, Token: tok.Text, Err: err}
			}
			stack = append(stack, n)

		default:
			return Number{}, &Error{Kind: ErrUnrecognizedToken, Token: tok.Text}
		}
	}

	switch len(stack) {
	case 0:
		return Number{}, &Error{Kind: ErrMalformedExpression}
	case 1:
		return stack[0], nil
	default:
		return Number{}, &Error{Kind: ErrMalformedExpression, Token: strconv.Itoa(len(stack))}
	}
}
