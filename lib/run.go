package lib

import "io"

type Result struct {
	Statements int
	Last       int64
	Env        map[string]int64
}

// Run parses and evaluates source against a fresh environment. On an
// evaluation error the returned Result still holds the bindings made before
// the failure; print output written so far stays written.
func Run(source string, out io.Writer) (Result, error) {
	prog, err := Parse(source)
	if err != nil {
		return Result{}, err
	}
	return RunProgram(prog, out)
}

func RunProgram(prog Program, out io.Writer) (Result, error) {
	env := NewEnvironment()
	last, err := NewInterpreter(env, out).Interpret(prog)
	return Result{
		Statements: len(prog.Statements),
		Last:       last,
		Env:        env.Snapshot(),
	}, err
}
