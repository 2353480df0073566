// Package fuzz explores the protocol's action space: it generates candidate
// actions under a selectable strategy, encodes and dispatches them with
// bounded concurrency and a global rate cap, classifies the raw responses
// and keeps first-wins bookkeeping of discovered actions.
package fuzz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/catalog"
	"github.com/evoprobe/evoprobe/internal/clock"
	"github.com/evoprobe/evoprobe/internal/transport"
)

// Config tunes one exploration run.
type Config struct {
	Strategy   Strategy
	GatewayURL string

	// Parallelism bounds concurrent in-flight dispatches (default 5). The
	// bound protects the remote server and the local network stack; it is
	// a safety property, not a throughput knob.
	Parallelism int64

	// Delay is the minimum spacing between dispatches (default 100ms).
	// Pacing is global across workers: the delay is claimed after a
	// semaphore slot is acquired, so requests-per-second stays bounded at
	// 1/Delay regardless of Parallelism.
	Delay time.Duration

	// Timeout bounds each dispatch (default 5s).
	Timeout time.Duration

	// TargetAction and TargetParameter focus the parameter-boundary
	// strategy (defaults: castle.getCastleInfo, cityId).
	TargetAction    string
	TargetParameter string
}

const (
	defaultParallelism = 5
	defaultDelay       = 100 * time.Millisecond
	defaultTimeout     = 5 * time.Second
	defaultTarget      = "castle.getCastleInfo"
	defaultTargetParam = "cityId"

	// maxErrorSamples caps the per-run record of attempt failures.
	maxErrorSamples = 100
)

func (c Config) withDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = StrategyActionDiscovery
	}
	if c.Parallelism <= 0 {
		c.Parallelism = defaultParallelism
	}
	if c.Delay <= 0 {
		c.Delay = defaultDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.TargetAction == "" {
		c.TargetAction = defaultTarget
	}
	if c.TargetParameter == "" {
		c.TargetParameter = defaultTargetParam
	}
	return c
}

// AttemptError is one failed attempt kept for the run summary.
type AttemptError struct {
	ActionName string `json:"actionName"`
	Message    string `json:"message"`
}

// Summary is the operator-visible result of one run: counts, labels and
// discoveries, never raw stack traces.
type Summary struct {
	Strategy           Strategy                 `json:"strategy"`
	TotalAttempts      int64                    `json:"totalAttempts"`
	SuccessfulAttempts int64                    `json:"successfulAttempts"`
	ErrorAttempts      int64                    `json:"errorAttempts"`
	DiscoveredActions  int64                    `json:"discoveredActions"`
	ByClassification   map[Classification]int64 `json:"byClassification"`
	Discoveries        []*Discovery             `json:"discoveries"`
	Errors             []AttemptError           `json:"errors,omitempty"`
	Started            time.Time                `json:"started"`
	Finished           time.Time                `json:"finished"`
}

// Engine runs exploration against an injected transport and catalog.
type Engine struct {
	transport transport.Transport
	catalog   catalog.Store
	clk       clock.Clock

	// Run state. cancel is non-nil only while a run is active.
	mu     sync.Mutex
	cancel context.CancelFunc

	// Progress counters for the active run.
	planned   atomic.Int64
	completed atomic.Int64

	// Global pacer: the next instant a dispatch may leave.
	paceMu   sync.Mutex
	nextSlot time.Time
}

// New creates an exploration engine. cat distinguishes known actions from
// discoveries and is never mutated by fuzz attempts.
func New(tr transport.Transport, cat catalog.Store, clk clock.Clock) *Engine {
	return &Engine{transport: tr, catalog: cat, clk: clk}
}

// Progress reports completion of the active run in percent.
func (e *Engine) Progress() float64 {
	planned := e.planned.Load()
	if planned == 0 {
		return 0
	}
	return 100 * float64(e.completed.Load()) / float64(planned)
}

// Stop cancels the active run: no new dispatches are issued and in-flight
// ones observe the cancellation. Idempotent; a no-op when nothing runs.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Run executes one exploration pass and blocks until every issued attempt
// completed or the run was cancelled. Per-attempt failures are counted, not
// fatal; only one run may be active at a time.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Summary, error) {
	cfg = cfg.withDefaults()

	candidates, err := Generate(cfg)
	if err != nil {
		return nil, fmt.Errorf("generating candidates: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("exploration run already active")
	}
	e.cancel = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cancel = nil
		e.mu.Unlock()
	}()

	e.planned.Store(int64(len(candidates)))
	e.completed.Store(0)
	e.paceMu.Lock()
	e.nextSlot = time.Time{}
	e.paceMu.Unlock()

	slog.Info("exploration run starting",
		"strategy", cfg.Strategy, "candidates", len(candidates),
		"parallelism", cfg.Parallelism, "delay", cfg.Delay)

	run := &runState{
		found:     newDiscoveries(),
		byClass:   make(map[Classification]int64),
		maxErrors: maxErrorSamples,
	}
	sem := semaphore.NewWeighted(cfg.Parallelism)
	var wg sync.WaitGroup

	started := e.clk.Now()
	for _, cand := range candidates {
		if err := sem.Acquire(runCtx, 1); err != nil {
			break // cancelled: stop issuing new dispatches
		}
		wg.Add(1)
		go func(c Candidate) {
			defer wg.Done()
			defer sem.Release(1)
			e.attempt(runCtx, cfg, c, run)
			e.completed.Add(1)
		}(cand)
	}
	wg.Wait()

	summary := run.summarize(cfg.Strategy, started, e.clk.Now())
	slog.Info("exploration run finished",
		"attempts", summary.TotalAttempts,
		"successful", summary.SuccessfulAttempts,
		"errors", summary.ErrorAttempts,
		"discovered", summary.DiscoveredActions)
	return summary, nil
}

// runState aggregates attempt outcomes; counters are atomic because attempts
// complete in arbitrary order.
type runState struct {
	total      atomic.Int64
	success    atomic.Int64
	errors     atomic.Int64
	discovered atomic.Int64

	found *discoveries

	mu        sync.Mutex
	byClass   map[Classification]int64
	errList   []AttemptError
	maxErrors int
}

func (r *runState) recordError(action string, err error) {
	r.errors.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errList) < r.maxErrors {
		r.errList = append(r.errList, AttemptError{ActionName: action, Message: err.Error()})
	}
}

func (r *runState) recordClass(cls Classification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byClass[cls]++
}

func (r *runState) summarize(strategy Strategy, started, finished time.Time) *Summary {
	r.mu.Lock()
	byClass := make(map[Classification]int64, len(r.byClass))
	for k, v := range r.byClass {
		byClass[k] = v
	}
	errList := append([]AttemptError(nil), r.errList...)
	r.mu.Unlock()

	return &Summary{
		Strategy:           strategy,
		TotalAttempts:      r.total.Load(),
		SuccessfulAttempts: r.success.Load(),
		ErrorAttempts:      r.errors.Load(),
		DiscoveredActions:  r.discovered.Load(),
		ByClassification:   byClass,
		Discoveries:        r.found.list(),
		Errors:             errList,
		Started:            started,
		Finished:           finished,
	}
}

// attempt encodes, paces, dispatches and classifies one candidate.
func (e *Engine) attempt(ctx context.Context, cfg Config, c Candidate, run *runState) {
	run.total.Add(1)

	data, err := amf.Encode(c.ActionName, c.Params)
	if err != nil {
		run.recordError(c.ActionName, fmt.Errorf("encoding: %w", err))
		return
	}

	if err := e.pace(ctx, cfg.Delay); err != nil {
		run.recordError(c.ActionName, err)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	resp, err := e.transport.Dispatch(callCtx, data, cfg.GatewayURL)
	if err != nil {
		// Timeouts and transport failures are expected outcomes here.
		run.recordError(c.ActionName, err)
		return
	}

	cls := Classify(resp)
	run.recordClass(cls)
	if cls != ClassValidDecodable {
		return
	}
	run.success.Add(1)

	if e.catalog.Get(c.ActionName) != nil {
		return // already known, not a discovery
	}
	if run.found.add(c.ActionName, c.Params, cls, e.clk.Now(), resp) {
		run.discovered.Add(1)
		slog.Info("discovered action", "action", c.ActionName)
	}
}

// pace claims the next global dispatch slot and sleeps until it. Claiming
// happens after semaphore acquisition, so the run's request rate is bounded
// by 1/delay no matter how many workers hold slots.
func (e *Engine) pace(ctx context.Context, delay time.Duration) error {
	e.paceMu.Lock()
	now := time.Now()
	slot := e.nextSlot
	if slot.Before(now) {
		slot = now
	}
	e.nextSlot = slot.Add(delay)
	e.paceMu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
