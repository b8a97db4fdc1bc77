package lib

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func runSource(t *testing.T, source string) (Result, string, error) {
	var out bytes.Buffer
	res, err := Run(source, &out)
	return res, out.String(), err
}

func requireValue(t *testing.T, source string, expected int64) {
	res, _, err := runSource(t, source)
	require.NoError(t, err, source)
	require.Equal(t, expected, res.Last, source)
}

func requireEvalError(t *testing.T, source string) *EvaluationError {
	_, _, err := runSource(t, source)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr, source)
	return evalErr
}

func TestRunSampleProgram(t *testing.T) {
	res, out, err := runSource(t, sampleProgram)
	require.NoError(t, err)
	require.Equal(t, "1\n5\n10\n", out)
	require.Equal(t, 6, res.Statements)
	require.Equal(t, int64(10), res.Last)
	require.Equal(t, map[string]int64{"a_number": 1, "x": 5, "y": 10}, res.Env)
}

func TestEvaluateArithmetic(t *testing.T) {
	requireValue(t, "7 + 2\n", 9)
	requireValue(t, "7 - 9\n", -2)
	requireValue(t, "7 * 6\n", 42)
	requireValue(t, "7 / 2\n", 3)
	requireValue(t, "(0 - 7) / 2\n", -3)
	requireValue(t, "7 / (0 - 2)\n", -3)
}

func TestEvaluatePrecedence(t *testing.T) {
	requireValue(t, "2 + 3 * 4\n", 14)
	requireValue(t, "(2 + 3) * 4\n", 20)
	requireValue(t, "10 - 3 - 2\n", 5)
	requireValue(t, "100 / 10 / 5\n", 2)
}

func TestEvaluateChainedAssignment(t *testing.T) {
	res, out, err := runSource(t, "a = b = 5\nprint(a)\nprint(b)\n")
	require.NoError(t, err)
	require.Equal(t, "5\n5\n", out)
	require.Equal(t, int64(5), res.Env["a"])
	require.Equal(t, int64(5), res.Env["b"])
}

func TestEvaluateReassignment(t *testing.T) {
	requireValue(t, "x = 1\nx = x + 1\nx\n", 2)
}

func TestEvaluatePrintAssignment(t *testing.T) {
	res, out, err := runSource(t, "print(x = 7)\n")
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
	require.Equal(t, int64(7), res.Env["x"])
	require.Equal(t, int64(7), res.Last)
}

func TestEvaluatePrintIsAValue(t *testing.T) {
	_, out, err := runSource(t, "x = print(3) + 1\nprint(x)\n")
	require.NoError(t, err)
	require.Equal(t, "3\n4\n", out)
}

func TestEvaluateLeftBeforeRight(t *testing.T) {
	_, out, err := runSource(t, "print(1) + print(2) * print(3)\n")
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestEvaluateUndefinedVariable(t *testing.T) {
	evalErr := requireEvalError(t, "z\n")
	require.Contains(t, evalErr.Msg, "undefined variable 'z'")
	require.Equal(t, Location{Line: 1, Col: 1}, evalErr.Location)
}

func TestEvaluateDivisionByZero(t *testing.T) {
	evalErr := requireEvalError(t, "5 / 0\n")
	require.Contains(t, evalErr.Msg, "division by zero")

	requireEvalError(t, "x = 0\n5 / x\n")
}

func TestEvaluateUndefinedFunction(t *testing.T) {
	evalErr := requireEvalError(t, "foo(1)\n")
	require.Contains(t, evalErr.Msg, "undefined function 'foo'")

	evalErr = requireEvalError(t, "foo(undefined)\n")
	require.Contains(t, evalErr.Msg, "undefined function 'foo'")
}

func TestEvaluateOverflow(t *testing.T) {
	requireEvalError(t, "9223372036854775807 + 1\n")
	requireEvalError(t, "0 - 9223372036854775807 - 2\n")
	requireEvalError(t, "4611686018427387904 * 2\n")
	requireEvalError(t, "(0 - 9223372036854775807 - 1) / (0 - 1)\n")
	requireEvalError(t, "(0 - 9223372036854775807 - 1) * (0 - 1)\n")

	requireValue(t, "0 - 9223372036854775807 - 1\n", -9223372036854775808)
	requireValue(t, "0 * 9223372036854775807\n", 0)
}

func TestOutputBeforeFailureIsKept(t *testing.T) {
	res, out, err := runSource(t, "x = 2\nprint(x)\nprint(y)\nprint(3)\n")
	require.Error(t, err)
	require.Equal(t, "2\n", out)
	require.Equal(t, map[string]int64{"x": 2}, res.Env)
}

func TestLexicalErrorBeforeEvaluation(t *testing.T) {
	_, out, err := runSource(t, "print(1)\nx = 12a\n")
	var lexErr *LexicalError
	require.ErrorAs(t, err, &lexErr)
	require.Equal(t, "", out)
}

func TestRunsDoNotShareBindings(t *testing.T) {
	_, _, err := runSource(t, "shared = 1\n")
	require.NoError(t, err)
	requireEvalError(t, "shared\n")
}

func TestInterpreterKeepsEnvironment(t *testing.T) {
	env := NewEnvironment()
	var out bytes.Buffer
	in := NewInterpreter(env, &out)

	for _, source := range []string{"a = 3\n", "b = a * a\n", "print(b)\n"} {
		prog, err := Parse(source)
		require.NoError(t, err)
		_, err = in.Interpret(prog)
		require.NoError(t, err)
	}

	require.Equal(t, "9\n", out.String())
	require.Equal(t, []string{"a", "b"}, env.Names())
}

func TestInvalidOperatorIsInvariantViolation(t *testing.T) {
	in := NewInterpreter(NewEnvironment(), &bytes.Buffer{})
	_, err := in.Evaluate(BinaryOperation{
		Left:  Number{Value: 1},
		Op:    Token{Kind: TokenEqual, Lexeme: "="},
		Right: Number{Value: 2},
	})
	var inv *InvariantViolation
	require.ErrorAs(t, err, &inv)
	require.Equal(t, "internal error: invalid binary operator Equal", err.Error())
}

func TestErrorRendering(t *testing.T) {
	loc := Location{Line: 2, Col: 5}
	require.Equal(t, "lexical error at 2:5: bad", (&LexicalError{Msg: "bad", Location: loc}).Error())
	require.Equal(t, "syntax error at 2:5: bad", (&SyntaxError{Msg: "bad", Location: loc}).Error())
	require.Equal(t, "syntax error: bad", (&SyntaxError{Msg: "bad"}).Error())
	require.Equal(t, "evaluation error at 2:5: bad", (&EvaluationError{Msg: "bad", Location: loc}).Error())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("closed")
}

func TestPrintWriteFailure(t *testing.T) {
	_, err := Run("print(1)\n", failingWriter{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "print: closed")
}
