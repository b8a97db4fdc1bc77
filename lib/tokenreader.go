package lib

type tokenReader interface {
	Next() (tok Token, done bool, err error)
	Peek() (tok Token, done bool, err error)
}

// sliceReader reads tokens that were already materialized by Tokenize.
type sliceReader struct {
	tokens []Token
	pos    int
}

func newSliceReader(tokens []Token) *sliceReader {
	return &sliceReader{tokens: tokens}
}

func (r *sliceReader) Next() (Token, bool, error) {
	tok, done, err := r.Peek()
	if !done {
		r.pos++
	}
	return tok, done, err
}

func (r *sliceReader) Peek() (Token, bool, error) {
	if r.pos >= len(r.tokens) {
		return Token{}, true, nil
	}
	return r.tokens[r.pos], false, nil
}
