// Package writer implements the Embedded Writer (§4.3) and Index Writer
// (§4.4) append state machines. Both drive the same KV Client Contract
// through the Retry/Backoff Policy; the embedded variant owns a single
// document per round, the indexed variant coordinates two.
package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arcadia-games/txcore/internal/clock"
	"github.com/arcadia-games/txcore/internal/idgen"
	"github.com/arcadia-games/txcore/internal/kv"
	"github.com/arcadia-games/txcore/internal/model"
	"github.com/arcadia-games/txcore/internal/money"
	"github.com/arcadia-games/txcore/internal/ops"
	"github.com/arcadia-games/txcore/internal/retrypolicy"
	"github.com/arcadia-games/txcore/internal/txnerr"
)

// AppendResult is what the Embedded Writer reports for one append attempt,
// per §4.3.
type AppendResult struct {
	Success          bool
	TxnID            string
	RoundVersion     kv.Version
	Operation        string // "CREATE" or "UPDATE"
	ConflictResolved bool
	RetryCount       int
	BusinessRejected bool
	TimedOut         bool
	ResponseTimeMs   int64
	Error            error
}

// EmbeddedWriter implements appendEmbedded(roundId, txn) (§4.3).
type EmbeddedWriter struct {
	Store  kv.Store
	Clock  clock.Clock
	Policy retrypolicy.Policy
	IDGen  idgen.Generator
	Log    ops.Logger

	RejectOnNegativeBalance bool
	NegativeFloor           money.Amount
	MaxTransactionsPerRound int
}

// NewEmbeddedWriter builds an EmbeddedWriter with §6's defaults
// (maxRetries=3, operationDeadlineMs=50) unless overridden by the caller.
func NewEmbeddedWriter(store kv.Store, clk clock.Clock) *EmbeddedWriter {
	return &EmbeddedWriter{
		Store:  store,
		Clock:  clk,
		Policy: retrypolicy.Policy{MaxRetries: 3, OperationDeadlineMs: 50},
		IDGen:  idgen.New(),
		Log:    ops.NewLogger(nil),
	}
}

// Append drives the READ/MUTATE/WRITE/RETRY state machine of §4.3 to
// completion. If txnID is empty, one is generated.
func (w *EmbeddedWriter) Append(ctx context.Context, roundID, txnID string, typ model.TxnType, amount money.Amount, currency string) AppendResult {
	if txnID == "" {
		txnID = w.IDGen.NewTxnID(roundID, w.Clock.NowMs())
	}

	var roundVersion kv.Version
	var operation string
	var businessRejected bool

	var policyResult = w.Policy.Run(w.Clock, func(attempt int) (retrypolicy.Outcome, error) {
		val, ver, exists, err := w.Store.Get(ctx, roundID)
		if err != nil {
			if errors.Is(err, kv.ErrTransient) {
				return retrypolicy.OutcomeTransient, nil
			}
			return retrypolicy.OutcomeFatal, fmt.Errorf("reading round %s: %w", roundID, err)
		}

		var round model.EmbeddedRound
		if exists {
			if err := json.Unmarshal(val, &round); err != nil {
				return retrypolicy.OutcomeFatal, fmt.Errorf("decoding round %s: %w", roundID, err)
			}
		} else {
			round = model.NewEmbeddedRound(roundID, "", "", "", currency, money.Zero, w.Clock.NowMs())
		}

		next, _, rejected, err := model.AppendEmbedded(
			round, txnID, typ, amount, currency, w.Clock.NowMs(),
			w.RejectOnNegativeBalance, w.NegativeFloor, w.MaxTransactionsPerRound)
		if err != nil {
			// DuplicateTxn (I2) and round-full are not retryable (§4.3).
			return retrypolicy.OutcomeFatal, err
		}
		businessRejected = rejected

		encoded, err := json.Marshal(next)
		if err != nil {
			panic(fmt.Sprintf("encoding round %s: %v", roundID, err))
		}

		if exists {
			newVer, err := w.Store.Replace(ctx, roundID, encoded, ver)
			switch {
			case err == nil:
				roundVersion, operation = newVer, "UPDATE"
				return retrypolicy.OutcomeDone, nil
			case errors.Is(err, kv.ErrCasMismatch), errors.Is(err, kv.ErrNotFound):
				// A concurrent writer beat us to this round; re-read and
				// retry rather than treating this as fatal (§4.3 tie-break).
				return retrypolicy.OutcomeConflict, nil
			case errors.Is(err, kv.ErrTransient):
				return retrypolicy.OutcomeTransient, nil
			default:
				return retrypolicy.OutcomeFatal, fmt.Errorf("replacing round %s: %w", roundID, err)
			}
		}

		newVer, err := w.Store.Insert(ctx, roundID, encoded)
		switch {
		case err == nil:
			roundVersion, operation = newVer, "CREATE"
			return retrypolicy.OutcomeDone, nil
		case errors.Is(err, kv.ErrAlreadyExists):
			// Lost the race to create this round; the loser re-enters READ
			// rather than failing (§4.3 tie-break).
			return retrypolicy.OutcomeConflict, nil
		case errors.Is(err, kv.ErrTransient):
			return retrypolicy.OutcomeTransient, nil
		default:
			return retrypolicy.OutcomeFatal, fmt.Errorf("inserting round %s: %w", roundID, err)
		}
	})

	var result = AppendResult{
		TxnID:            txnID,
		RetryCount:       policyResult.RetriesUsed,
		ConflictResolved: policyResult.ConflictsObserved > 0,
		ResponseTimeMs:   policyResult.ElapsedMs,
	}

	switch {
	case policyResult.TimedOut:
		result.TimedOut = true
		result.Error = txnerr.ErrDeadlineExceeded
		w.Log.With(map[string]interface{}{"roundId": roundID, "txnId": txnID}).Warn("embedded append deadline exceeded")
	case policyResult.FatalErr != nil:
		result.Error = policyResult.FatalErr
		if errors.Is(policyResult.FatalErr, txnerr.ErrDuplicateTxn) {
			w.Log.With(map[string]interface{}{"roundId": roundID, "txnId": txnID}).Warn("embedded append rejected duplicate txn")
		}
	case !policyResult.Success:
		result.Error = fmt.Errorf("embedded append: retries exhausted for round %s after %d retries", roundID, policyResult.RetriesUsed)
	default:
		result.Success = true
		result.RoundVersion = roundVersion
		result.Operation = operation
		result.BusinessRejected = businessRejected
		if result.ConflictResolved {
			w.Log.With(map[string]interface{}{"roundId": roundID, "retries": result.RetryCount}).Info("embedded append resolved conflict")
		}
	}

	return result
}
