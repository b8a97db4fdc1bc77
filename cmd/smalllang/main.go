package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/alpham/smalllang/config"
	"github.com/alpham/smalllang/journal"
	"github.com/alpham/smalllang/lib"
)

const usageText = `usage: smalllang [options] [path...]

Runs each script file, or every *.sl file in each directory. Without a path
the program is read from standard input.

options:
  -c FILE    load settings from a YAML config file
  -t TOOL    run a tool instead of evaluating (use '-t list' to list them)
  -d DRIVER  record runs in a journal (sqlite, postgres)
  -j DSN     journal data source (sqlite file or postgres connection string)
  -n         disable colored diagnostics
  -h         show this help
`

type tool struct {
	name string
	desc string
	fn   func(r *runner, s lib.Script) error
}

var tools = []tool{
	{"run", "evaluate the program (default)", (*runner).toolRun},
	{"tokens", "list the tokens of the program", (*runner).toolTokens},
	{"ast", "print the tree of every statement", (*runner).toolAST},
	{"fmt", "print the program in canonical form", (*runner).toolFmt},
}

func chooseTool(name string) *tool {
	for i := range tools {
		if tools[i].name == name {
			return &tools[i]
		}
	}
	return nil
}

type runner struct {
	stdout  io.Writer
	stderr  io.Writer
	journal journal.Journal
	errText *color.Color
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	opts, optind, err := getopt.Getopts(args, "c:t:d:j:nh")
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usageText)
		return 2
	}
	paths := args[optind:]

	var (
		configPath string
		toolName   = "run"
		driver     string
		dsn        string
		noColor    bool
	)
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			configPath = opt.Value
		case 't':
			toolName = opt.Value
		case 'd':
			driver = opt.Value
		case 'j':
			dsn = opt.Value
		case 'n':
			noColor = true
		case 'h':
			fmt.Fprint(stdout, usageText)
			return 0
		}
	}

	if toolName == "list" {
		for _, t := range tools {
			fmt.Fprintf(stdout, "  %-8s %s\n", t.name, t.desc)
		}
		return 0
	}
	t := chooseTool(toolName)
	if t == nil {
		fmt.Fprintf(stderr, "unknown tool '%s', use '-t list' to list tools\n", toolName)
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if driver != "" {
		cfg.Journal.Driver = driver
	}
	if dsn != "" {
		cfg.Journal.DSN = dsn
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	r := &runner{
		stdout:  stdout,
		stderr:  stderr,
		errText: color.New(color.FgRed, color.Bold),
	}
	if noColor || !cfg.Output.Color {
		r.errText.DisableColor()
	}

	if cfg.Journal.Driver != "" {
		j, err := journal.Open(cfg.Journal.Driver, cfg.Journal.DSN)
		if err != nil {
			r.fail(err)
			return 1
		}
		defer j.Close()
		r.journal = j
	}

	if len(paths) == 0 {
		s, err := readStdin(stdin)
		if err != nil {
			r.fail(err)
			return 1
		}
		if err := t.fn(r, s); err != nil {
			r.fail(err)
			return 1
		}
		return 0
	}

	files, err := scriptPaths(paths)
	if err != nil {
		r.fail(err)
		return 1
	}

	// Each script is parsed just before it runs, so scripts ahead of a broken
	// one still run.
	for _, path := range files {
		s, err := lib.ReadScriptFromFile(path)
		if err != nil {
			r.fail(err)
			return 1
		}
		if err := t.fn(r, s); err != nil {
			r.fail(err)
			return 1
		}
	}
	return 0
}

func readStdin(stdin io.Reader) (lib.Script, error) {
	b, err := io.ReadAll(stdin)
	if err != nil {
		return lib.Script{}, err
	}
	prog, err := lib.Parse(string(b))
	if err != nil {
		return lib.Script{}, err
	}
	return lib.Script{Name: "stdin", Source: string(b), Program: prog}, nil
}

// scriptPaths expands directories into the script files they hold.
func scriptPaths(paths []string) ([]string, error) {
	files := []string{}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		dirFiles, err := lib.ListScriptsInDir(path)
		if err != nil {
			return nil, err
		}
		files = append(files, dirFiles...)
	}
	return files, nil
}

func (r *runner) fail(err error) {
	r.errText.Fprint(r.stderr, "error: ")
	fmt.Fprintln(r.stderr, err)
}

func (r *runner) toolRun(s lib.Script) error {
	var out bytes.Buffer
	started := time.Now()
	res, runErr := lib.RunProgram(s.Program, io.MultiWriter(r.stdout, &out))
	elapsed := time.Since(started)

	if r.journal != nil {
		entry, err := journal.NewEntry(s.Name, s.Source, out.String(), res, runErr, started, elapsed)
		if err != nil {
			return err
		}
		if err := r.journal.Record(context.Background(), entry); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	if runErr != nil && s.Path != "" {
		return fmt.Errorf("%s: %w", s.Path, runErr)
	}
	return runErr
}

func (r *runner) toolTokens(s lib.Script) error {
	tokens, err := lib.Tokenize(s.Source)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		fmt.Fprintf(r.stdout, "%s\t%s\t%q\n", tok.Location, tok.Kind, tok.Lexeme)
	}
	return nil
}

func (r *runner) toolAST(s lib.Script) error {
	for _, stmt := range s.Program.Statements {
		fmt.Fprintln(r.stdout, lib.Dump(stmt))
	}
	return nil
}

func (r *runner) toolFmt(s lib.Script) error {
	fmt.Fprint(r.stdout, lib.Format(s.Program))
	return nil
}
