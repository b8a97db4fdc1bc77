package lib

const TOKEN_BUF_SIZE = 100

type peekResult struct {
	tok  Token
	done bool
	err  error
}

// tokenBuffer hands tokens from a lexer goroutine to the parser. The writer
// calls Done exactly once, after its last Write.
type tokenBuffer struct {
	tokChan chan Token
	peeked  *peekResult
	lexErr  error
}

func newTokenBuffer() *tokenBuffer {
	return &tokenBuffer{
		tokChan: make(chan Token, TOKEN_BUF_SIZE),
		peeked:  nil,
	}
}

func (tb *tokenBuffer) Next() (Token, bool, error) {
	if tb.peeked != nil {
		res := tb.peeked
		tb.peeked = nil
		return res.tok, res.done, res.err
	}

	tok, ok := <-tb.tokChan
	if !ok {
		if tb.lexErr != nil {
			return Token{}, false, tb.lexErr
		}
		return Token{}, true, nil
	}
	return tok, false, nil
}

func (tb *tokenBuffer) Peek() (Token, bool, error) {
	if tb.peeked != nil {
		return tb.peeked.tok, tb.peeked.done, tb.peeked.err
	}
	tok, done, err := tb.Next()
	tb.peeked = &peekResult{tok: tok, done: done, err: err}
	return tok, done, err
}

func (tb *tokenBuffer) Write(tok Token) error {
	tb.tokChan <- tok
	return nil
}

// Done records the lexer's result and closes the stream.
func (tb *tokenBuffer) Done(err error) {
	tb.lexErr = err
	close(tb.tokChan)
}

// Wait discards unread tokens until the writer is done and returns the lexer's
// error, if any.
func (tb *tokenBuffer) Wait() error {
	for range tb.tokChan {
	}
	return tb.lexErr
}
