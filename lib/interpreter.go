package lib

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// Environment maps variable names to their last assigned value for one run.
type Environment struct {
	vars map[string]int64
}

func NewEnvironment() *Environment {
	return &Environment{vars: map[string]int64{}}
}

func (e *Environment) Get(name string) (int64, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *Environment) Set(name string, value int64) {
	e.vars[name] = value
}

// Names returns the bound names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot copies the current bindings.
func (e *Environment) Snapshot() map[string]int64 {
	snap := make(map[string]int64, len(e.vars))
	for k, v := range e.vars {
		snap[k] = v
	}
	return snap
}

type Interpreter struct {
	env *Environment
	out io.Writer
}

// NewInterpreter returns an interpreter that mutates env and writes the
// output of print to out.
func NewInterpreter(env *Environment, out io.Writer) *Interpreter {
	return &Interpreter{env: env, out: out}
}

func (in *Interpreter) Env() *Environment {
	return in.env
}

// Interpret evaluates every statement in order and returns the value of the
// last one. The first error stops the run.
func (in *Interpreter) Interpret(prog Program) (int64, error) {
	var last int64
	for _, stmt := range prog.Statements {
		v, err := in.Evaluate(stmt)
		if err != nil {
			return 0, err
		}
		last = v
	}
	return last, nil
}

func (in *Interpreter) Evaluate(expr Expr) (int64, error) {
	switch e := expr.(type) {
	case Number:
		return e.Value, nil
	case Variable:
		return in.evalVariable(e)
	case BinaryOperation:
		return in.evalBinary(e)
	case Assignment:
		return in.evalAssignment(e)
	case FunCall:
		return in.evalCall(e)
	default:
		return 0, &InvariantViolation{Msg: fmt.Sprintf("unknown expression %T", expr)}
	}
}

func (in *Interpreter) evalVariable(v Variable) (int64, error) {
	value, ok := in.env.Get(v.Ident())
	if !ok {
		return 0, evalErrorf(v.location(), "undefined variable '%s'", v.Ident())
	}
	return value, nil
}

func (in *Interpreter) evalAssignment(a Assignment) (int64, error) {
	value, err := in.Evaluate(a.Value)
	if err != nil {
		return 0, err
	}
	in.env.Set(a.Target.Ident(), value)
	return value, nil
}

func (in *Interpreter) evalCall(f FunCall) (int64, error) {
	if f.Callee.Ident() != "print" {
		return 0, evalErrorf(f.location(), "undefined function '%s'", f.Callee.Ident())
	}

	value, err := in.Evaluate(f.Arg)
	if err != nil {
		return 0, err
	}
	if _, err := fmt.Fprintf(in.out, "%d\n", value); err != nil {
		return 0, fmt.Errorf("print: %w", err)
	}
	return value, nil
}

// Left is evaluated completely before right.
func (in *Interpreter) evalBinary(b BinaryOperation) (int64, error) {
	left, err := in.Evaluate(b.Left)
	if err != nil {
		return 0, err
	}
	right, err := in.Evaluate(b.Right)
	if err != nil {
		return 0, err
	}

	switch b.Op.Kind {
	case TokenPlus:
		r := left + right
		if (left^r)&(right^r) < 0 {
			return 0, in.overflow(b)
		}
		return r, nil
	case TokenMinus:
		r := left - right
		if (left^right)&(left^r) < 0 {
			return 0, in.overflow(b)
		}
		return r, nil
	case TokenStar:
		if left == 0 || right == 0 {
			return 0, nil
		}
		r := left * right
		if r/right != left || (left == -1 && right == math.MinInt64) || (right == -1 && left == math.MinInt64) {
			return 0, in.overflow(b)
		}
		return r, nil
	case TokenSlash:
		if right == 0 {
			return 0, evalErrorf(b.location(), "division by zero")
		}
		if left == math.MinInt64 && right == -1 {
			return 0, in.overflow(b)
		}
		return left / right, nil
	default:
		return 0, &InvariantViolation{Msg: fmt.Sprintf("invalid binary operator %s", b.Op.Kind)}
	}
}

func (in *Interpreter) overflow(b BinaryOperation) error {
	return evalErrorf(b.location(), "integer overflow in '%s'", b.Op.Lexeme)
}
