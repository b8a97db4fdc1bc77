// Package server evaluates programs posted over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"expvar"
	"log"
	"net"
	"sync"
	"time"

	"github.com/edwingeng/deque"
	"github.com/go-co-op/gocron/v2"
	"github.com/tevino/abool/v2"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/expvarhandler"

	"github.com/alpham/smalllang/config"
	"github.com/alpham/smalllang/journal"
	"github.com/alpham/smalllang/lib"
)

var stats = expvar.NewMap("smalllang")

type Server struct {
	cfg       config.ServerConfig
	journal   journal.Journal
	retention time.Duration

	mu     sync.Mutex
	recent deque.Deque // *journal.Entry, oldest first

	pruneRunning *abool.AtomicBool
	scheduler    gocron.Scheduler
	http         *fasthttp.Server
}

// New returns a server recording into j, which may be nil. Journal entries
// older than retention are pruned on a schedule; zero disables pruning.
func New(cfg config.ServerConfig, j journal.Journal, retention time.Duration) *Server {
	s := &Server{
		cfg:          cfg,
		journal:      j,
		retention:    retention,
		recent:       deque.NewDeque(),
		pruneRunning: abool.New(),
	}
	s.http = &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "smalllang",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		MaxRequestBodySize: cfg.MaxBody,
	}
	return s
}

func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/run":
		s.handleRun(ctx)
	case "/runs":
		s.handleRuns(ctx)
	case "/stats":
		expvarhandler.ExpvarHandler(ctx)
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

func (s *Server) handleRun(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}
	body := ctx.PostBody()
	if len(body) > s.cfg.MaxBody {
		ctx.Error("program too large", fasthttp.StatusRequestEntityTooLarge)
		return
	}

	source := string(body)
	var out bytes.Buffer
	started := time.Now()
	res, runErr := lib.Run(source, &out)
	elapsed := time.Since(started)

	stats.Add("runs", 1)
	if runErr != nil {
		stats.Add("run_failures", 1)
	}

	entry, err := journal.NewEntry("http", source, out.String(), res, runErr, started, elapsed)
	if err != nil {
		log.Printf("journal entry: %v", err)
	} else {
		s.remember(entry)
		s.record(entry)
	}

	ctx.SetContentType("text/plain; charset=utf-8")
	if runErr != nil {
		ctx.SetStatusCode(fasthttp.StatusUnprocessableEntity)
		out.WriteString(runErr.Error())
		out.WriteByte('\n')
	}
	ctx.SetBody(out.Bytes())
}

func (s *Server) handleRuns(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}
	b, err := json.Marshal(s.Recent())
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}

func (s *Server) record(entry *journal.Entry) {
	if s.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.journal.Record(ctx, entry); err != nil {
		log.Printf("journal record: %v", err)
	}
}

func (s *Server) remember(entry *journal.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent.PushBack(entry)
	for s.recent.Len() > s.cfg.Recent {
		s.recent.PopFront()
	}
}

// Recent returns the runs this server handled most recently, newest first.
func (s *Server) Recent() []*journal.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.recent.Len()
	entries := make([]*journal.Entry, n)
	for i := 0; i < n; i++ {
		entry := s.recent.Front().(*journal.Entry)
		s.recent.PopFront()
		s.recent.PushBack(entry)
		entries[n-1-i] = entry
	}
	return entries
}

// Prune drops journal entries older than the retention period. It returns
// immediately when another prune is still running.
func (s *Server) Prune() (int64, error) {
	if s.journal == nil || s.retention <= 0 {
		return 0, nil
	}
	if !s.pruneRunning.SetToIf(false, true) {
		return 0, nil
	}
	defer s.pruneRunning.UnSet()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return s.journal.Prune(ctx, time.Now().Add(-s.retention))
}

func (s *Server) pruneTask() {
	n, err := s.Prune()
	if err != nil {
		log.Printf("journal prune: %v", err)
		return
	}
	if n > 0 {
		log.Printf("journal prune: removed %d runs", n)
	}
}

func (s *Server) startScheduler() error {
	if s.journal == nil || s.retention <= 0 {
		return nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = scheduler.NewJob(gocron.DurationJob(s.cfg.PruneEvery), gocron.NewTask(s.pruneTask))
	if err != nil {
		_ = scheduler.Shutdown()
		return err
	}
	scheduler.Start()
	s.scheduler = scheduler
	return nil
}

// Serve handles connections from ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.startScheduler(); err != nil {
		return err
	}
	log.Printf("Starting HTTP server on %q", ln.Addr().String())
	return s.http.Serve(ln)
}

func (s *Server) Shutdown() error {
	err := s.http.Shutdown()
	if s.scheduler != nil {
		if serr := s.scheduler.Shutdown(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}
