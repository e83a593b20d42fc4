package bench

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/avoron/ucibench/engine"
)

// cacheSettle is the pause after a page-cache drop, successful or not,
// before timing anything.
const cacheSettle = time.Second

// Config describes one benchmark. It is immutable for the lifetime of
// the Runner built from it.
type Config struct {
	EnginePath string
	Runs       int
	Depth      int
	ClearCache bool
}

// Runner drives a single engine process through a full benchmark:
// handshake, N timed searches, aggregation, teardown.
type Runner struct {
	// OnResult, when set, is invoked after every completed run.
	OnResult func(Result)

	// Echo, when set, receives every line consumed from the engine.
	Echo io.Writer

	cfg    Config
	logger *slog.Logger
	ctrl   *engine.Controller

	session *engine.Session
	results []Result
	settle  time.Duration

	closeOnce sync.Once
}

// New creates a Runner for the configured engine.
func New(cfg Config, logger *slog.Logger) *Runner {
	logger = logger.With(slog.String("engine", cfg.EnginePath))

	return &Runner{
		cfg:    cfg,
		logger: logger,
		ctrl:   &engine.Controller{Logger: logger},
		settle: cacheSettle,
	}
}

// Run executes the configured number of runs and returns the summary.
// The engine is always torn down before Run returns, on success,
// failure and interrupt alike; the summary covers whatever runs
// completed by then.
func (r *Runner) Run() (Summary, error) {
	defer r.Close()

	proc, err := r.ctrl.Start(r.cfg.EnginePath)
	if err != nil {
		return Summarize(nil), err
	}

	r.session = engine.NewSession(proc.Stdin(), proc.Stdout())
	if r.Echo != nil {
		r.session.SetEcho(r.Echo)
	}

	if err := r.session.Handshake(); err != nil {
		return Summarize(nil), fmt.Errorf("uci handshake: %w", err)
	}

	for run := 1; run <= r.cfg.Runs; run++ {
		if r.cfg.ClearCache {
			r.clearCache()
		}

		r.logger.Info("run starting",
			slog.Int("run", run),
			slog.Int("of", r.cfg.Runs),
			slog.Int("depth", r.cfg.Depth),
		)

		start := time.Now()
		lines, err := r.session.Search(r.cfg.Depth)
		elapsed := time.Since(start)

		if err != nil {
			// Closed streams or a dead process: nothing further can
			// be sent, so the remaining runs are abandoned.
			return Summarize(r.results), fmt.Errorf("run %d: %w", run, err)
		}

		if len(lines) == 0 {
			r.logger.Warn("run produced no output, skipping",
				slog.Int("run", run),
			)

			continue
		}

		st := engine.ExtractStats(lines)

		nps := st.NPS
		if nps == 0 && elapsed > 0 {
			nps = int64(float64(st.Nodes) / elapsed.Seconds())
		}

		res := Result{Run: run, Nodes: st.Nodes, Elapsed: elapsed, NPS: nps}
		r.results = append(r.results, res)

		r.logger.Info("run finished",
			slog.Int("run", run),
			slog.Int64("nodes", res.Nodes),
			slog.Int64("nps", res.NPS),
			slog.Duration("elapsed", res.Elapsed),
		)

		if r.OnResult != nil {
			r.OnResult(res)
		}
	}

	return Summarize(r.results), nil
}

// Results returns the recorded runs in run order.
func (r *Runner) Results() []Result { return r.results }

// Close tears the engine down. It is safe to call from a signal
// handling goroutine while Run is blocked in a read, and calling it
// again is a no-op.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.ctrl.Terminate()
	})
}

// clearCache drops the OS page cache before a run. Failure is never
// fatal: without root the benchmark still runs, just less isolated.
func (r *Runner) clearCache() {
	r.logger.Info("clearing page cache")

	if err := dropPageCache(); err != nil {
		r.logger.Warn("page cache clear failed",
			slog.String("error", err.Error()),
		)
	}

	time.Sleep(r.settle)
}
