// Package retrypolicy implements the single-purpose Retry/Backoff Policy of
// §4.2. It is deliberately ignorant of business logic: Run just drives a
// caller-supplied attempt closure, so the Writer state machines (§4.3,
// §4.4) stay trivially testable against a stub kv.Store instead of having
// backoff mixed into them (§9).
package retrypolicy

import (
	"time"

	"github.com/arcadia-games/txcore/internal/clock"
)

// Outcome classifies the result of a single attempt of the wrapped
// operation.
type Outcome int

const (
	// OutcomeDone means the attempt succeeded; Run returns immediately.
	OutcomeDone Outcome = iota
	// OutcomeConflict means a CAS mismatch or a losing insert race (§7):
	// retried locally within the policy's budget, but counted separately
	// from OutcomeTransient.
	OutcomeConflict
	// OutcomeTransient means a retryable store failure unrelated to CAS
	// (timeout, connection reset): same retry treatment as OutcomeConflict,
	// counted separately.
	OutcomeTransient
	// OutcomeFatal means the attempt must not be retried; Run returns
	// immediately with the error the closure supplied.
	OutcomeFatal
)

// Policy is the retry/backoff parameterization: bounded retry count,
// per-operation deadline.
type Policy struct {
	// MaxRetries bounds the number of retries after the first attempt
	// (default 3 for the embedded path, up to 5 per document for the
	// index path).
	MaxRetries int
	// OperationDeadlineMs bounds the wall-clock time of the whole
	// operation, inclusive of all retries and sleeps (default 50).
	OperationDeadlineMs int64
}

// Default returns the §6 default policy for the embedded writer.
func Default() Policy {
	return Policy{MaxRetries: 3, OperationDeadlineMs: 50}
}

// Result is what Run reports once the operation terminates.
type Result struct {
	Success            bool
	RetriesUsed         int
	ConflictsObserved   int
	TransientsObserved  int
	TimedOut            bool
	ElapsedMs           int64
	FatalErr            error
}

// backoffMs implements §4.2's backoff curve: min(retryIndex*2, 10) ms,
// linear and capped low because the p95 budget is tight.
func backoffMs(retryIndex int) time.Duration {
	var ms = retryIndex * 2
	if ms > 10 {
		ms = 10
	}
	return time.Duration(ms) * time.Millisecond
}

// BackoffMs exposes the §4.2 backoff curve for callers that drive their own
// retry loop instead of Run — the Index Writer (§4.4) coordinates two
// documents under one shared deadline, which doesn't fit Run's single-op
// shape, but should still back off on the same curve.
func BackoffMs(retryIndex int) time.Duration {
	return backoffMs(retryIndex)
}

// Run drives op once per attempt, starting at attempt index 0, until op
// reports OutcomeDone or OutcomeFatal, retries are exhausted, or the
// operation deadline is reached. Per §4.2, a deadline reached at the same
// boundary as retry-exhaustion is reported as TimedOut, not exhaustion.
func (p Policy) Run(clk clock.Clock, op func(attempt int) (Outcome, error)) Result {
	var start = clk.Mono()
	var result Result

	for attempt := 0; ; attempt++ {
		if elapsed := clk.Since(start); elapsed.Milliseconds() >= p.OperationDeadlineMs {
			result.TimedOut = true
			result.ElapsedMs = elapsed.Milliseconds()
			return result
		}

		outcome, err := op(attempt)

		switch outcome {
		case OutcomeDone:
			result.Success = true
			result.RetriesUsed = attempt
			result.ElapsedMs = clk.Since(start).Milliseconds()
			return result

		case OutcomeFatal:
			result.FatalErr = err
			result.RetriesUsed = attempt
			result.ElapsedMs = clk.Since(start).Milliseconds()
			return result

		case OutcomeConflict:
			result.ConflictsObserved++
		case OutcomeTransient:
			result.TransientsObserved++
		}

		// Deadline takes precedence over retry-exhaustion at this boundary.
		if elapsed := clk.Since(start); elapsed.Milliseconds() >= p.OperationDeadlineMs {
			result.TimedOut = true
			result.ElapsedMs = elapsed.Milliseconds()
			return result
		}
		if attempt >= p.MaxRetries {
			result.RetriesUsed = attempt
			result.ElapsedMs = clk.Since(start).Milliseconds()
			return result
		}

		clk.Sleep(backoffMs(attempt + 1))
	}
}
