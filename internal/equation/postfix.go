package equation

// ToPostfix reorders tokens into postfix (reverse polish) order with the shunting-yard
// algorithm.
//
// An operator pops every pending operator of the same or a higher tier before it is
// pushed, so all tiers, "^" included, are left-associative: 2^3^2 is (2^3)^2.
// A symbol found where an operand is expected (at the start, after "(" or after another
// operator) is read as a unary operator when the table has a unary function for it.
// A pending unary operator is popped only by a binary operator of a tier below
// ops.UnaryTier, so -3+4 is 1 while -2^2 is -4.
func ToPostfix(tokens []Token, ops Operators) ([]Token, error) {
	var stack, output []Token
	expectOperand := true

	for _, tok := range tokens {
		switch tok.Kind {
		case NumberToken:
			output = append(output, tok)
			expectOperand = false

		case OpenParenToken:
			stack = append(stack, tok)
			expectOperand = true

		case CloseParenToken:
			for {
				if len(stack) == 0 {
					return nil, &Error{Kind: ErrMissingOpenParen, Token: tok.Text}
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Kind == OpenParenToken {
					break
				}
				output = append(output, top)
			}
			expectOperand = false

		case UnaryToken:
			stack = append(stack, tok)
			expectOperand = true

		case OperatorToken:
			if _, ok := ops.Unary[tok.Text]; ok && expectOperand {
				stack = append(stack, Token{Kind: UnaryToken, Text: tok.Text})
				continue
			}
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if (top.Kind == UnaryToken && tok.Tier < ops.UnaryTier) || (top.Kind == OperatorToken && top.Tier >= tok.Tier) {
					output = append(output, top)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, tok)
			expectOperand = true
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Kind == OpenParenToken {
			return nil, &Error{Kind: ErrMissingCloseParen, Token: top.Text}
		}
		output = append(output, top)
	}
	return output, nil
}
