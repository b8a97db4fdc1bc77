package lib

import (
	"unicode"
)

type charInfo struct {
	ch       rune
	location Location
}

// Tokenize scans the whole source and returns its tokens in order. No token
// marks the end of input.
func Tokenize(source string) ([]Token, error) {
	tokens := []Token{}
	err := lex(source, func(tok Token) error {
		tokens = append(tokens, tok)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func lex(source string, emit func(Token) error) error {
	l := newLexer(source, emit)
	return l.scan()
}

type lexer struct {
	src              []rune
	length           int
	currentCharIndex int
	currentLocation  Location
	emitCallback     func(Token) error
}

func newLexer(source string, emit func(Token) error) *lexer {
	src := []rune(source)
	return &lexer{
		src:              src,
		length:           len(src),
		currentCharIndex: 0,
		currentLocation:  Location{Line: 1, Col: 1},
		emitCallback:     emit,
	}
}

func (l *lexer) peek() (charInfo, bool) {
	if l.currentCharIndex >= l.length {
		return charInfo{}, false
	}
	return charInfo{ch: l.src[l.currentCharIndex], location: l.currentLocation}, true
}

func (l *lexer) advance() (charInfo, bool) {
	info, ok := l.peek()
	if !ok {
		return info, false
	}
	l.currentCharIndex++
	if info.ch == '\n' {
		l.currentLocation.Line++
		l.currentLocation.Col = 1
	} else {
		l.currentLocation.Col++
	}
	return info, true
}

func (l *lexer) scan() error {
	for {
		more, err := l.next()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func (l *lexer) next() (bool, error) {
	chInfo, ok := l.advance()
	if !ok {
		return false, nil
	}

	switch chInfo.ch {
	case '=':
		return true, l.single(TokenEqual, chInfo)
	case '+':
		return true, l.single(TokenPlus, chInfo)
	case '-':
		return true, l.single(TokenMinus, chInfo)
	case '*':
		return true, l.single(TokenStar, chInfo)
	case '/':
		return true, l.single(TokenSlash, chInfo)
	case '(':
		return true, l.single(TokenLParen, chInfo)
	case ')':
		return true, l.single(TokenRParen, chInfo)
	case '\n':
		return true, l.single(TokenNewLine, chInfo)
	case ' ':
		return true, nil
	}

	if isDigit(chInfo.ch) {
		return true, l.scanNumber(chInfo)
	}
	return true, l.scanIdentifier(chInfo)
}

func (l *lexer) single(kind TokenKind, chInfo charInfo) error {
	return l.emitCallback(Token{Kind: kind, Lexeme: string(chInfo.ch), Location: chInfo.location})
}

// scanNumber consumes digits after first. A space, ')' or newline ends the
// literal and is left for the next token.
func (l *lexer) scanNumber(first charInfo) error {
	start := l.currentCharIndex - 1

	for {
		next, ok := l.peek()
		if !ok || isNumberTerminator(next.ch) {
			break
		}
		if !isDigit(next.ch) {
			return &LexicalError{
				Msg:      "invalid character '" + string(next.ch) + "'",
				Location: next.location,
			}
		}
		_, _ = l.advance()
	}

	return l.emitCallback(Token{
		Kind:     TokenNumber,
		Lexeme:   string(l.src[start:l.currentCharIndex]),
		Location: first.location,
	})
}

func (l *lexer) scanIdentifier(first charInfo) error {
	start := l.currentCharIndex - 1

	for {
		next, ok := l.peek()
		if !ok || !isIdentifierChar(next.ch) {
			break
		}
		_, _ = l.advance()
	}

	return l.emitCallback(Token{
		Kind:     TokenIdentifier,
		Lexeme:   string(l.src[start:l.currentCharIndex]),
		Location: first.location,
	})
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isNumberTerminator(ch rune) bool {
	return ch == ' ' || ch == ')' || ch == '\n'
}

func isIdentifierChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsNumber(ch) || ch == '_'
}
