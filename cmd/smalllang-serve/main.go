package main

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"

	"github.com/alpham/smalllang/config"
	"github.com/alpham/smalllang/journal"
	"github.com/alpham/smalllang/server"
)

const usageText = `usage: smalllang-serve [options]

options:
  -c FILE  load settings from a YAML config file
  -l ADDR  listen address, overrides server.addr
  -h       show this help
`

func main() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	os.Exit(run(os.Args, os.Stdout, os.Stderr, sigs))
}

// run serves until a value arrives on stop or the listener fails.
func run(args []string, stdout io.Writer, stderr io.Writer, stop <-chan os.Signal) int {
	opts, optind, err := getopt.Getopts(args, "c:l:h")
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usageText)
		return 2
	}
	if optind < len(args) {
		fmt.Fprintf(stderr, "unexpected argument '%s'\n", args[optind])
		fmt.Fprint(stderr, usageText)
		return 2
	}

	var configPath, addr string
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			configPath = opt.Value
		case 'l':
			addr = opt.Value
		case 'h':
			fmt.Fprint(stdout, usageText)
			return 0
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	var j journal.Journal
	if cfg.Journal.Driver != "" {
		j, err = journal.Open(cfg.Journal.Driver, cfg.Journal.DSN)
		if err != nil {
			fmt.Fprintf(stderr, "open journal: %v\n", err)
			return 1
		}
		defer j.Close()
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	srv := server.New(cfg.Server, j, cfg.Journal.Retention)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
		if err := srv.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
		// Serve may not have taken the listener yet.
		_ = ln.Close()
		<-serveErr
		return 0
	case err := <-serveErr:
		_ = srv.Shutdown()
		if err != nil {
			fmt.Fprintf(stderr, "serve: %v\n", err)
			return 1
		}
		return 0
	}
}
