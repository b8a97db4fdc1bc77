package lib

import (
	"strconv"
)

// Parse lexes source on a separate goroutine and parses the tokens as they
// arrive. A lexical error anywhere in source takes precedence over a syntax
// error, exactly as if the whole source had been tokenized first.
func Parse(source string) (Program, error) {
	buffer := newTokenBuffer()

	go (func() {
		buffer.Done(lex(source, buffer.Write))
	})()

	p := parser{reader: buffer}
	prog, err := p.scan()
	if lexErr := buffer.Wait(); lexErr != nil {
		return Program{}, lexErr
	}
	if err != nil {
		return Program{}, err
	}
	return prog, nil
}

// ParseTokens parses an already tokenized program.
func ParseTokens(tokens []Token) (Program, error) {
	p := parser{reader: newSliceReader(tokens)}
	return p.scan()
}

type parser struct {
	reader tokenReader
}

func (p *parser) scan() (Program, error) {
	statements := []Expr{}

	for {
		_, done, err := p.reader.Peek()
		if err != nil {
			return Program{}, err
		}
		if done {
			break
		}

		// Every line holds exactly one statement, so a blank line fails in
		// scanPrimary as an unexpected NewLine.
		stmt, err := p.scanExpr()
		if err != nil {
			return Program{}, err
		}

		err = p.expectStatementEnd()
		if err != nil {
			return Program{}, err
		}

		statements = append(statements, stmt)
	}

	return Program{Statements: statements}, nil
}

// A statement must be followed by a newline unless it is the last thing in
// the input.
func (p *parser) expectStatementEnd() error {
	next, done, err := p.reader.Next()
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	if next.Kind != TokenNewLine {
		return syntaxErrorf(next.Location, "Expected %s but got %s", TokenNewLine, next.Kind)
	}
	return nil
}

func (p *parser) scanExpr() (Expr, error) {
	return p.scanAssignment()
}

// assignment := IDENTIFIER "=" assignment | term
func (p *parser) scanAssignment() (Expr, error) {
	start, done, err := p.reader.Peek()
	if err != nil {
		return nil, err
	}
	if done {
		return nil, syntaxErrorf(Location{}, "Expecting expression but found EOF")
	}

	left, err := p.scanTerm()
	if err != nil {
		return nil, err
	}

	eq, isAssignment, err := p.checkToken(TokenEqual)
	if err != nil {
		return nil, err
	}
	if !isAssignment {
		return left, nil
	}

	// Only a bare identifier can be assigned to; "(a) = 1" is rejected too.
	target, ok := left.(Variable)
	if !ok || start.Kind != TokenIdentifier {
		return nil, syntaxErrorf(eq.Location, "Invalid assignment target")
	}

	value, err := p.scanAssignment()
	if err != nil {
		return nil, err
	}

	return Assignment{Target: target, Value: value}, nil
}

// term := factor (("+"|"-") factor)*
func (p *parser) scanTerm() (Expr, error) {
	left, err := p.scanFactor()
	if err != nil {
		return nil, err
	}

	for {
		op, found, err := p.checkToken(TokenPlus, TokenMinus)
		if err != nil {
			return nil, err
		}
		if !found {
			return left, nil
		}

		right, err := p.scanFactor()
		if err != nil {
			return nil, err
		}
		left = BinaryOperation{Left: left, Op: op, Right: right}
	}
}

// factor := primary (("*"|"/") primary)*
func (p *parser) scanFactor() (Expr, error) {
	left, err := p.scanPrimary()
	if err != nil {
		return nil, err
	}

	for {
		op, found, err := p.checkToken(TokenStar, TokenSlash)
		if err != nil {
			return nil, err
		}
		if !found {
			return left, nil
		}

		right, err := p.scanPrimary()
		if err != nil {
			return nil, err
		}
		left = BinaryOperation{Left: left, Op: op, Right: right}
	}
}

func (p *parser) scanPrimary() (Expr, error) {
	tok, done, err := p.reader.Next()
	if err != nil {
		return nil, err
	}
	if done {
		return nil, syntaxErrorf(Location{}, "Expecting expression but found EOF")
	}

	switch tok.Kind {
	case TokenNumber:
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.Location, "Invalid number literal '%s'", tok.Lexeme)
		}
		return Number{Value: value, Token: tok}, nil
	case TokenIdentifier:
		return p.scanVariableOrCall(tok)
	case TokenLParen:
		return p.scanParenthetical()
	}

	// Not recognized so it must be a syntax error
	return nil, syntaxErrorf(tok.Location, "Unexpected %s", tok.Kind)
}

func (p *parser) scanVariableOrCall(name Token) (Expr, error) {
	_, isCall, err := p.checkToken(TokenLParen)
	if err != nil {
		return nil, err
	}
	if !isCall {
		return Variable{Name: name}, nil
	}

	arg, err := p.scanExpr()
	if err != nil {
		return nil, err
	}
	_, err = p.requireToken(TokenRParen)
	if err != nil {
		return nil, err
	}

	return FunCall{Callee: Variable{Name: name}, Arg: arg}, nil
}

func (p *parser) scanParenthetical() (Expr, error) {
	expr, err := p.scanExpr()
	if err != nil {
		return nil, err
	}
	_, err = p.requireToken(TokenRParen)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) requireToken(kind TokenKind) (Token, error) {
	next, done, err := p.reader.Next()
	if err != nil {
		return Token{}, err
	}
	if done {
		return Token{}, syntaxErrorf(Location{}, "Expected %s but got EOF", kind)
	}
	if next.Kind != kind {
		return Token{}, syntaxErrorf(next.Location, "Expected %s but got %s", kind, next.Kind)
	}
	return next, nil
}

func (p *parser) advance() error {
	_, _, err := p.reader.Next()
	return err
}

// checkToken consumes the next token when it has one of the given kinds.
func (p *parser) checkToken(kinds ...TokenKind) (Token, bool, error) {
	next, done, err := p.reader.Peek()
	if err != nil {
		return Token{}, false, err
	}
	if done {
		return Token{}, false, nil
	}
	for _, kind := range kinds {
		if next.Kind == kind {
			return next, true, p.advance()
		}
	}
	return Token{}, false, nil
}
