package confusion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/httputil"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry"
)

// Config holds the orchestration knobs consumed by the Runner. Nothing else
// affects engine behavior.
type Config struct {
	// Concurrency bounds simultaneous in-flight registry lookups.
	Concurrency int

	// LookupTimeout bounds each individual lookup attempt.
	LookupTimeout time.Duration

	// MaxRetries is the number of extra attempts after a retryable
	// failure (network error, throttling).
	MaxRetries int

	// RunTimeout bounds the whole batch. On expiry, unfinished packages
	// are recorded as indeterminate and the run still returns a complete
	// finding set.
	RunTimeout time.Duration

	// RetryDelay is the initial backoff delay; it doubles per retry.
	// Zero selects one second.
	RetryDelay time.Duration
}

// DefaultConfig is a reasonable configuration for CLI usage.
var DefaultConfig = Config{
	Concurrency:   5,
	LookupTimeout: 10 * time.Second,
	MaxRetries:    2,
	RunTimeout:    5 * time.Minute,
	RetryDelay:    time.Second,
}

// Validate reports the first misconfiguration. A Config error is the only
// fatal error the Runner ever surfaces.
func (c Config) Validate() error {
	switch {
	case c.Concurrency <= 0:
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	case c.LookupTimeout <= 0:
		return fmt.Errorf("lookup timeout must be positive, got %s", c.LookupTimeout)
	case c.MaxRetries < 0:
		return fmt.Errorf("max retries must be non-negative, got %d", c.MaxRetries)
	case c.RunTimeout <= 0:
		return fmt.Errorf("run timeout must be positive, got %s", c.RunTimeout)
	}
	return nil
}

// LogFunc receives progress messages from the Runner. Nil disables logging.
type LogFunc func(format string, args ...any)

// Runner drives confusion checks for a batch of packages against one
// registry client, with bounded concurrency, per-attempt timeouts, retry
// with exponential backoff, and a run-level deadline.
type Runner struct {
	client registry.Client
	eval   *Evaluator
	cfg    Config
	log    LogFunc
}

// NewRunner creates a Runner. The configuration is validated here so that
// misconfigurations surface before any lookup is dispatched.
func NewRunner(client registry.Client, eval *Evaluator, cfg Config, log LogFunc) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eval == nil {
		eval = NewEvaluator(nil)
	}
	if log == nil {
		log = func(string, ...any) {}
	}
	return &Runner{client: client, eval: eval, cfg: cfg, log: log}, nil
}

// indexedFinding pairs a finding with its input position so the collector
// can keep findings in input correspondence regardless of completion order.
type indexedFinding struct {
	idx     int
	finding Finding
}

// Run checks every ref and returns a report with exactly one Finding per
// input ref, in input order. Per-package failures never abort the batch;
// the only possible error is a cancelled parent context.
func (r *Runner) Run(ctx context.Context, refs []PackageRef) (*Report, error) {
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	client := registry.WithRetry(
		registry.WithTimeout(r.client, r.cfg.LookupTimeout),
		httputil.Policy{MaxRetries: r.cfg.MaxRetries, Delay: r.cfg.RetryDelay},
	)

	jobs := make(chan int)
	// Buffered to the batch size so abandoned workers never block on send.
	results := make(chan indexedFinding, len(refs))

	var wg sync.WaitGroup
	for range r.cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- indexedFinding{idx: i, finding: r.check(runCtx, client, refs[i])}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range refs {
			select {
			case jobs <- i:
			case <-runCtx.Done():
				return
			}
		}
	}()

	workersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(workersDone)
	}()

	// The collector is the only writer of the findings slice: one slot per
	// input ref, each written at most once.
	findings := make([]Finding, len(refs))
	done := make([]bool, len(refs))
	completed := 0

collect:
	for completed < len(refs) {
		select {
		case res := <-results:
			findings[res.idx] = res.finding
			done[res.idx] = true
			completed++
		case <-workersDone:
			// Drain anything raced in before the workers exited.
			for {
				select {
				case res := <-results:
					findings[res.idx] = res.finding
					done[res.idx] = true
					completed++
				default:
					break collect
				}
			}
		}
	}

	if missing := len(refs) - completed; missing > 0 {
		r.log("run deadline exceeded with %d lookups unfinished", missing)
		now := time.Now().UTC()
		for i, ok := range done {
			if !ok {
				findings[i] = Finding{
					Package:        refs[i],
					Classification: ClassIndeterminate,
					Error:          "run deadline exceeded before lookup completed",
					CheckedAt:      now,
				}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewReport(findings, time.Since(start)), nil
}

// check resolves one package: lookup (already wrapped with timeout and
// retry) followed by pure evaluation. Lookup failures of any kind collapse
// into an indeterminate finding carrying the error as evidence.
func (r *Runner) check(ctx context.Context, client registry.Client, ref PackageRef) Finding {
	rec, err := client.Lookup(ctx, ref.Name)
	if err != nil {
		r.log("lookup %s on %s failed: %v", ref.Name, client.Name(), err)
		return Finding{
			Package:        ref,
			Classification: ClassIndeterminate,
			Error:          err.Error(),
			CheckedAt:      time.Now().UTC(),
		}
	}
	return r.eval.Evaluate(ref, rec)
}
