// Package model holds the document shapes of §3 (Round, EmbeddedTxn,
// TxnRef, TxnDetail and their derived summaries) plus the pure append
// functions that compute a new round snapshot from an old one and an
// incoming transaction. Per §9, these are plain value transformations —
// mutate(round, txn) -> round' — with no knowledge of the KV store; the
// CAS loop that makes mutation observable lives in internal/writer.
package model

import "github.com/arcadia-games/txcore/internal/money"

// Status is the lifecycle state of a Round.
type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusCompleted    Status = "COMPLETED"
	StatusCancelled    Status = "CANCELLED"
	StatusUnderReview  Status = "UNDER_REVIEW"
)

// TxnStatus is the lifecycle state of an individual transaction.
type TxnStatus string

const (
	TxnStatusPending   TxnStatus = "PENDING"
	TxnStatusCompleted TxnStatus = "COMPLETED"
	TxnStatusFailed    TxnStatus = "FAILED"
)

// TxnType enumerates the financial event kinds the core appends (§1).
type TxnType string

const (
	TxnBet     TxnType = "BET"
	TxnWin     TxnType = "WIN"
	TxnBonus   TxnType = "BONUS"
	TxnRefund  TxnType = "REFUND"
	TxnCashout TxnType = "CASHOUT"
	TxnRake    TxnType = "RAKE"
	TxnJackpot TxnType = "JACKPOT"
	TxnFee     TxnType = "FEE"
)

// isDebit reports whether txnType subtracts from the balance (I4).
func isDebit(t TxnType) bool {
	switch t {
	case TxnBet, TxnFee, TxnRake, TxnCashout:
		return true
	default:
		return false
	}
}

// RoundSummary is the derived per-round aggregate carried by the embedded
// variant (§3).
type RoundSummary struct {
	TotalTransactions int          `json:"totalTransactions"`
	TotalBets         int          `json:"totalBets"`
	TotalWins         int          `json:"totalWins"`
	NetAmount         money.Amount `json:"netAmount"`
}

// ComplianceInfo is informational metadata only (§1); it never participates
// in I1-I6 or in any retry/CAS decision.
type ComplianceInfo struct {
	AMLChecked   bool   `json:"amlChecked"`
	AMLFlagged   bool   `json:"amlFlagged"`
	Jurisdiction string `json:"jurisdiction"`
}

// RiskAssessment is informational metadata only (§1), derived minimally
// from transaction velocity within the round.
type RiskAssessment struct {
	RiskScore int    `json:"riskScore"`
	RiskTier  string `json:"riskTier"`
}

// DeriveRisk computes a RiskAssessment from the number of transactions
// observed so far in the round.
func DeriveRisk(totalTransactions int) RiskAssessment {
	var score = 10 * totalTransactions
	if score > 100 {
		score = 100
	}
	var tier string
	switch {
	case score < 30:
		tier = "LOW"
	case score < 70:
		tier = "MEDIUM"
	default:
		tier = "HIGH"
	}
	return RiskAssessment{RiskScore: score, RiskTier: tier}
}

// RoundMetrics is the indexed variant's derived aggregate, recomputed on
// each append from the refs (§3).
type RoundMetrics struct {
	AvgTxnAmount  money.Amount `json:"avgTxnAmount"`
	MaxTxnAmount  money.Amount `json:"maxTxnAmount"`
	TxnsPerSecond float64      `json:"txnsPerSecond"`
}

// DeriveMetrics computes RoundMetrics from the amounts of the round's refs,
// the round's creation time, and the current time.
func DeriveMetrics(amounts []money.Amount, firstCreateTimeMs, lastCreateTimeMs int64) RoundMetrics {
	if len(amounts) == 0 {
		return RoundMetrics{}
	}
	var sum = money.Zero
	var max = amounts[0]
	for _, a := range amounts {
		sum = sum.Add(a)
		if a.Cmp(max) > 0 {
			max = a
		}
	}
	var avgF = sum.Float64() / float64(len(amounts))
	var spanMs = lastCreateTimeMs - firstCreateTimeMs
	var tps float64
	if spanMs > 0 {
		tps = float64(len(amounts)) / (float64(spanMs) / 1000.0)
	}
	return RoundMetrics{
		AvgTxnAmount:  money.New(avgF),
		MaxTxnAmount:  max,
		TxnsPerSecond: tps,
	}
}
