package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/arcadia-games/txcore/internal/clock"
	"github.com/arcadia-games/txcore/internal/idgen"
	"github.com/arcadia-games/txcore/internal/kv"
	"github.com/arcadia-games/txcore/internal/model"
	"github.com/arcadia-games/txcore/internal/money"
	"github.com/arcadia-games/txcore/internal/ops"
	"github.com/arcadia-games/txcore/internal/retrypolicy"
	"github.com/arcadia-games/txcore/internal/txnerr"
)

// IndexAppendResult is what the Index Writer reports for one append, per
// §4.4. RoundRetryCount and IndexRetryCount (detail document retries) are
// broken out separately; TotalRetries is their sum.
type IndexAppendResult struct {
	Success          bool
	TxnID            string
	RoundVersion     kv.Version
	Operation        string // "CREATE" or "UPDATE"
	BusinessRejected bool
	RoundRetryCount  int
	IndexRetryCount  int
	TotalRetries     int
	RoundConflicts   int
	TimedOut         bool
	IndexOrphan      bool
	ResponseTimeMs   int64
	Error            error
}

// IndexWriter implements appendIndexed(roundId, txn) (§4.4): a detail-first,
// two-document protocol sharing ONE operation deadline across both
// documents rather than a deadline per document.
type IndexWriter struct {
	Store kv.Store
	Clock clock.Clock
	IDGen idgen.Generator
	Log   ops.Logger

	// RoundMaxRetries and DetailMaxRetries bound retries per document
	// (§6 default: up to 5 each).
	RoundMaxRetries  int
	DetailMaxRetries int
	// OperationDeadlineMs bounds the whole call, inclusive of the detail
	// insert, the round CAS loop, and any sequenceNumber patch retries.
	OperationDeadlineMs int64

	RejectOnNegativeBalance bool
	NegativeFloor           money.Amount
	MaxTransactionsPerRound int

	orphanCount int64
}

// NewIndexWriter builds an IndexWriter with §6's defaults.
func NewIndexWriter(store kv.Store, clk clock.Clock) *IndexWriter {
	return &IndexWriter{
		Store:               store,
		Clock:               clk,
		IDGen:               idgen.New(),
		Log:                 ops.NewLogger(nil),
		RoundMaxRetries:     5,
		DetailMaxRetries:    5,
		OperationDeadlineMs: 50,
	}
}

// OrphanCount reports the number of TxnDetail documents left behind by a
// failed compensating remove (§4.4, I3's tolerated exception).
func (w *IndexWriter) OrphanCount() int64 {
	return atomic.LoadInt64(&w.orphanCount)
}

// Append drives the detail-first two-document protocol of §4.4:
//  1. insert the TxnDetail (sequenceNumber 0, status PENDING).
//  2. CAS-loop the IndexedRound, computing the real sequenceNumber.
//  3. patch the TxnDetail's sequenceNumber/status/balanceAfter.
//  4. on any unrecoverable failure after the detail exists, best-effort
//     remove it; a failed remove is tracked as an orphan, never fatal.
func (w *IndexWriter) Append(ctx context.Context, roundID, txnID string, typ model.TxnType, amount money.Amount, currency string) IndexAppendResult {
	var start = w.Clock.Mono()
	var result IndexAppendResult

	var remainingMs = func() int64 {
		var left = w.OperationDeadlineMs - w.Clock.Since(start).Milliseconds()
		if left < 0 {
			left = 0
		}
		return left
	}
	var elapsedMs = func() int64 { return w.Clock.Since(start).Milliseconds() }

	if txnID == "" {
		txnID = w.IDGen.NewTxnID(roundID, w.Clock.NowMs())
	}
	result.TxnID = txnID

	if remainingMs() <= 0 {
		result.TimedOut = true
		result.ResponseTimeMs = elapsedMs()
		return result
	}

	var detail = model.TxnDetail{
		TxnID:        txnID,
		RoundID:      roundID,
		Type:         typ,
		Amount:       amount,
		Currency:     currency,
		CreateTimeMs: w.Clock.NowMs(),
		Status:       model.TxnStatusPending,
	}

	var detailVersion kv.Version
	var inserted bool
detailInsert:
	for attempt := 0; ; attempt++ {
		if remainingMs() <= 0 {
			result.TimedOut = true
			result.ResponseTimeMs = elapsedMs()
			return result
		}
		encoded, err := json.Marshal(detail)
		if err != nil {
			panic(fmt.Sprintf("encoding txn detail %s: %v", txnID, err))
		}
		ver, err := w.Store.Insert(ctx, txnID, encoded)
		switch {
		case err == nil:
			detailVersion = ver
			inserted = true
			break detailInsert
		case errors.Is(err, kv.ErrAlreadyExists):
			result.Error = txnerr.ErrDuplicateTxn
			result.ResponseTimeMs = elapsedMs()
			w.Log.With(map[string]interface{}{"txnId": txnID}).Warn("index append rejected duplicate txn")
			return result
		case errors.Is(err, kv.ErrTransient):
			result.IndexRetryCount++
			if attempt >= w.DetailMaxRetries {
				result.Error = fmt.Errorf("index writer: detail insert retries exhausted for %s: %w", txnID, err)
				result.ResponseTimeMs = elapsedMs()
				return result
			}
			w.Clock.Sleep(retrypolicy.BackoffMs(attempt + 1))
		default:
			result.Error = fmt.Errorf("inserting detail %s: %w", txnID, err)
			result.ResponseTimeMs = elapsedMs()
			return result
		}
	}
	if !inserted {
		result.ResponseTimeMs = elapsedMs()
		return result
	}

	var roundVersion kv.Version
	var operation string
	var businessRejected bool
	var roundSucceeded bool

roundLoop:
	for attempt := 0; ; attempt++ {
		if remainingMs() <= 0 {
			result.TimedOut = true
			break roundLoop
		}

		val, ver, exists, err := w.Store.Get(ctx, roundID)
		if err != nil {
			if errors.Is(err, kv.ErrTransient) {
				result.RoundRetryCount++
				if attempt >= w.RoundMaxRetries {
					break roundLoop
				}
				w.Clock.Sleep(retrypolicy.BackoffMs(attempt + 1))
				continue roundLoop
			}
			result.Error = fmt.Errorf("reading round %s: %w", roundID, err)
			break roundLoop
		}

		var round model.IndexedRound
		if exists {
			if err := json.Unmarshal(val, &round); err != nil {
				result.Error = fmt.Errorf("decoding round %s: %w", roundID, err)
				break roundLoop
			}
		} else {
			round = model.NewIndexedRound(roundID, "", "", "", currency, money.Zero, w.Clock.NowMs())
		}

		next, ref, status, balanceAfter, rejected, err := model.AppendIndexedRef(
			round, txnID, typ, amount, w.Clock.NowMs(),
			w.RejectOnNegativeBalance, w.NegativeFloor, w.MaxTransactionsPerRound)
		if err != nil {
			result.Error = err
			break roundLoop
		}
		businessRejected = rejected

		// Patch the detail's sequenceNumber now that the round append has
		// computed it (§4.4 step 3), before the round document is written.
		detail.SequenceNumber = ref.SequenceNumber
		detail.Status = status
		detail.BalanceAfter = balanceAfter
		var patched bool
	patchLoop:
		for patchAttempt := 0; ; patchAttempt++ {
			if remainingMs() <= 0 {
				result.TimedOut = true
				break roundLoop
			}
			encodedDetail, err := json.Marshal(detail)
			if err != nil {
				panic(fmt.Sprintf("encoding txn detail %s: %v", txnID, err))
			}
			newVer, err := w.Store.Replace(ctx, txnID, encodedDetail, detailVersion)
			switch {
			case err == nil:
				detailVersion = newVer
				patched = true
				break patchLoop
			case errors.Is(err, kv.ErrCasMismatch), errors.Is(err, kv.ErrTransient):
				result.IndexRetryCount++
				if patchAttempt >= w.DetailMaxRetries {
					break patchLoop
				}
				// Only this writer should be touching the detail; a mismatch
				// here means our cached version is stale, so re-read it.
				if _, v, ok, gerr := w.Store.Get(ctx, txnID); gerr == nil && ok {
					detailVersion = v
				}
				w.Clock.Sleep(retrypolicy.BackoffMs(patchAttempt + 1))
			default:
				result.Error = fmt.Errorf("patching detail %s: %w", txnID, err)
				break patchLoop
			}
		}
		if !patched {
			if result.Error == nil {
				result.Error = fmt.Errorf("index writer: detail patch retries exhausted for %s", txnID)
			}
			break roundLoop
		}

		encodedRound, err := json.Marshal(next)
		if err != nil {
			panic(fmt.Sprintf("encoding round %s: %v", roundID, err))
		}

		var newRoundVer kv.Version
		if exists {
			newRoundVer, err = w.Store.Replace(ctx, roundID, encodedRound, ver)
		} else {
			newRoundVer, err = w.Store.Insert(ctx, roundID, encodedRound)
		}
		switch {
		case err == nil:
			roundVersion = newRoundVer
			if exists {
				operation = "UPDATE"
			} else {
				operation = "CREATE"
			}
			roundSucceeded = true
			break roundLoop
		case errors.Is(err, kv.ErrCasMismatch), errors.Is(err, kv.ErrAlreadyExists), errors.Is(err, kv.ErrNotFound):
			result.RoundConflicts++
			result.RoundRetryCount++
			if attempt >= w.RoundMaxRetries {
				break roundLoop
			}
			w.Clock.Sleep(retrypolicy.BackoffMs(attempt + 1))
			continue roundLoop
		case errors.Is(err, kv.ErrTransient):
			result.RoundRetryCount++
			if attempt >= w.RoundMaxRetries {
				break roundLoop
			}
			w.Clock.Sleep(retrypolicy.BackoffMs(attempt + 1))
			continue roundLoop
		default:
			result.Error = fmt.Errorf("writing round %s: %w", roundID, err)
			break roundLoop
		}
	}

	result.ResponseTimeMs = elapsedMs()
	result.TotalRetries = result.RoundRetryCount + result.IndexRetryCount

	if !roundSucceeded {
		// The detail document exists with no matching ref; compensate (§4.4).
		if cerr := w.Store.Remove(ctx, txnID); cerr != nil {
			atomic.AddInt64(&w.orphanCount, 1)
			result.IndexOrphan = true
			w.Log.With(map[string]interface{}{"txnId": txnID, "roundId": roundID}).Warn("index append left orphaned detail")
		}
		if result.Error == nil && !result.TimedOut {
			result.Error = fmt.Errorf("index writer: round append retries exhausted for %s", roundID)
		}
		if result.TimedOut && result.Error == nil {
			result.Error = txnerr.ErrDeadlineExceeded
		}
		return result
	}

	result.Success = true
	result.RoundVersion = roundVersion
	result.Operation = operation
	result.BusinessRejected = businessRejected
	return result
}
