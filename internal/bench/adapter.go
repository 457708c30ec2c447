package bench

import (
	"context"

	"github.com/arcadia-games/txcore/internal/model"
	"github.com/arcadia-games/txcore/internal/money"
	"github.com/arcadia-games/txcore/internal/writer"
)

// Appender is the writer-variant-agnostic interface the Driver runs
// against; EmbeddedAdapter and IndexAdapter translate each writer's
// result shape into the common AttemptResult.
type Appender interface {
	Append(ctx context.Context, roundID string, typ model.TxnType, amount money.Amount, currency string) AttemptResult
}

// EmbeddedAdapter wraps a *writer.EmbeddedWriter as an Appender.
type EmbeddedAdapter struct {
	Writer *writer.EmbeddedWriter
}

func (a EmbeddedAdapter) Append(ctx context.Context, roundID string, typ model.TxnType, amount money.Amount, currency string) AttemptResult {
	var res = a.Writer.Append(ctx, roundID, "", typ, amount, currency)
	return AttemptResult{
		Success:          res.Success,
		BusinessRejected: res.BusinessRejected,
		TimedOut:         res.TimedOut,
		ResponseTimeMs:   res.ResponseTimeMs,
		RoundConflicts: func() int {
			if res.ConflictResolved {
				return res.RetryCount
			}
			return 0
		}(),
		Retries: res.RetryCount,
	}
}

// IndexAdapter wraps a *writer.IndexWriter as an Appender.
type IndexAdapter struct {
	Writer *writer.IndexWriter
}

func (a IndexAdapter) Append(ctx context.Context, roundID string, typ model.TxnType, amount money.Amount, currency string) AttemptResult {
	var res = a.Writer.Append(ctx, roundID, "", typ, amount, currency)
	return AttemptResult{
		Success:          res.Success,
		BusinessRejected: res.BusinessRejected,
		TimedOut:         res.TimedOut,
		ResponseTimeMs:   res.ResponseTimeMs,
		RoundConflicts:   res.RoundConflicts,
		IndexConflicts:   res.IndexRetryCount,
		Retries:          res.TotalRetries,
		Orphan:           res.IndexOrphan,
	}
}
