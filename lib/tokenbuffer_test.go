package lib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	buf := newTokenBuffer()

	require.NoError(t, buf.Write(Token{Kind: TokenIdentifier, Lexeme: "hello"}))

	tok, done, err := buf.Next()
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, TokenIdentifier, tok.Kind)
	require.Equal(t, "hello", tok.Lexeme)
}

func TestNextDoneMulti(t *testing.T) {
	buf := newTokenBuffer()

	require.NoError(t, buf.Write(Token{Kind: TokenIdentifier, Lexeme: "hello"}))
	buf.Done(nil)

	tok, done, err := buf.Next()
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, "hello", tok.Lexeme)

	for i := 0; i < 3; i++ {
		_, done, err = buf.Next()
		require.NoError(t, err)
		require.True(t, done)
	}
}

func TestNextAfterLexError(t *testing.T) {
	buf := newTokenBuffer()
	lexErr := errors.New("bad input")

	require.NoError(t, buf.Write(Token{Kind: TokenNumber, Lexeme: "1"}))
	buf.Done(lexErr)

	_, done, err := buf.Next()
	require.NoError(t, err)
	require.False(t, done)

	_, _, err = buf.Next()
	require.Equal(t, lexErr, err)
}

func TestPeek(t *testing.T) {
	buf := newTokenBuffer()

	require.NoError(t, buf.Write(Token{Kind: TokenIdentifier, Lexeme: "hello"}))
	buf.Done(nil)

	tok, done, err := buf.Peek()
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, "hello", tok.Lexeme)

	tok, done, err = buf.Next()
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, "hello", tok.Lexeme)

	_, done, err = buf.Next()
	require.NoError(t, err)
	require.True(t, done)
}

func TestWaitDrainsWriter(t *testing.T) {
	buf := newTokenBuffer()
	lexErr := errors.New("bad input")

	go (func() {
		for i := 0; i < TOKEN_BUF_SIZE*3; i++ {
			_ = buf.Write(Token{Kind: TokenNewLine, Lexeme: "\n"})
		}
		buf.Done(lexErr)
	})()

	require.Equal(t, lexErr, buf.Wait())
}

func TestSliceReader(t *testing.T) {
	r := newSliceReader([]Token{{Kind: TokenNumber, Lexeme: "1"}})

	tok, done, err := r.Peek()
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, "1", tok.Lexeme)

	_, _, _ = r.Next()
	_, done, err = r.Next()
	require.NoError(t, err)
	require.True(t, done)
}
