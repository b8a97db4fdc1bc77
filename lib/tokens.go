package lib

import "fmt"

type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenIdentifier
	TokenEqual
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenLParen
	TokenRParen
	TokenNewLine
)

// Location is the 1-based line and column of a token's first character.
type Location struct {
	Line int
	Col  int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

type Token struct {
	Kind     TokenKind
	Lexeme   string
	Location Location
}

func (t Token) String() string {
	return fmt.Sprintf("%s -> %s", t.Location, tokenValueString(t))
}

func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "NumberLiteral"
	case TokenIdentifier:
		return "Identifier"
	case TokenEqual:
		return "Equal"
	case TokenPlus:
		return "Plus"
	case TokenMinus:
		return "Minus"
	case TokenStar:
		return "Star"
	case TokenSlash:
		return "Slash"
	case TokenLParen:
		return "LeftParen"
	case TokenRParen:
		return "RightParen"
	case TokenNewLine:
		return "NewLine"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

func tokenValueString(tok Token) string {
	switch tok.Kind {
	case TokenNumber:
		return fmt.Sprintf("number: %s", tok.Lexeme)
	case TokenIdentifier:
		return fmt.Sprintf("identifier: %s", tok.Lexeme)
	case TokenNewLine:
		return "newline"
	default:
		return tok.Lexeme
	}
}
