package lib

import "fmt"

// LexicalError reports a character the lexer cannot place inside a number.
type LexicalError struct {
	Msg      string
	Location Location
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("lexical error at %s: %s", e.Location, e.Msg)
}

// SyntaxError reports a token of the wrong kind, a bad assignment target or
// numeric text that does not fit an integer.
type SyntaxError struct {
	Msg      string
	Location Location
}

func (e *SyntaxError) Error() string {
	if e.Location == (Location{}) {
		return fmt.Sprintf("syntax error: %s", e.Msg)
	}
	return fmt.Sprintf("syntax error at %s: %s", e.Location, e.Msg)
}

// EvaluationError reports undefined names, division by zero and overflow.
type EvaluationError struct {
	Msg      string
	Location Location
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error at %s: %s", e.Location, e.Msg)
}

// InvariantViolation is returned when the evaluator meets a tree the parser
// can never build.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("internal error: %s", e.Msg)
}

func syntaxErrorf(loc Location, format string, args ...interface{}) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Location: loc}
}

func evalErrorf(loc Location, format string, args ...interface{}) error {
	return &EvaluationError{Msg: fmt.Sprintf(format, args...), Location: loc}
}
