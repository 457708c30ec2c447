package model

import (
	"github.com/arcadia-games/txcore/internal/money"
	"github.com/arcadia-games/txcore/internal/txnerr"
)

// TxnRef is a lightweight reference to a TxnDetail document, held in an
// indexed-variant Round's ref list (§3).
type TxnRef struct {
	TxnID          string       `json:"txnId"`
	SequenceNumber int          `json:"sequenceNumber"`
	Type           TxnType      `json:"type"`
	Amount         money.Amount `json:"amount"`
	CreateTimeMs   int64        `json:"createTimeMs"`
}

// IndexedRound is the indexed-variant Round document (§3): a lightweight
// document carrying only an ordered list of transaction ids (as TxnRefs),
// plus derived metadata recomputed on each append.
type IndexedRound struct {
	RoundID          string         `json:"roundId"`
	PlayerID         string         `json:"playerId,omitempty"`
	OperatorID       string         `json:"operatorId,omitempty"`
	VendorID         string         `json:"vendorId,omitempty"`
	Currency         string         `json:"currency"`
	InitialBalance   money.Amount   `json:"initialBalance"`
	CurrentBalance   money.Amount   `json:"currentBalance"`
	Status           Status         `json:"status"`
	CreateTimeMs     int64          `json:"createTimeMs"`
	LastUpdateTimeMs int64          `json:"lastUpdateTimeMs"`
	Refs             []TxnRef       `json:"refs"`
	Metrics          RoundMetrics   `json:"metrics"`
	Compliance       ComplianceInfo `json:"compliance"`
	Risk             RiskAssessment `json:"risk"`
}

// TxnDetail is the per-transaction document of the indexed variant (§3),
// created before its corresponding ref is appended and never mutated after
// insert except for the sequenceNumber/status/balanceAfter patch the Index
// Writer applies before each attempt to write the round (§4.4).
type TxnDetail struct {
	TxnID          string            `json:"txnId"`
	RoundID        string            `json:"roundId"`
	SequenceNumber int               `json:"sequenceNumber"`
	Type           TxnType           `json:"type"`
	Amount         money.Amount      `json:"amount"`
	Currency       string            `json:"currency"`
	CreateTimeMs   int64             `json:"createTimeMs"`
	Status         TxnStatus         `json:"status"`
	BalanceAfter   money.Amount      `json:"balanceAfter"`
	BetID          string            `json:"betId,omitempty"`
	SessionToken   string            `json:"sessionToken,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// NewIndexedRound builds the round an indexed-variant first successful
// append implicitly creates (§3 Lifecycle).
func NewIndexedRound(roundID, playerID, operatorID, vendorID, currency string, initialBalance money.Amount, nowMs int64) IndexedRound {
	return IndexedRound{
		RoundID:          roundID,
		PlayerID:         playerID,
		OperatorID:       operatorID,
		VendorID:         vendorID,
		Currency:         currency,
		InitialBalance:   initialBalance,
		CurrentBalance:   initialBalance,
		Status:           StatusActive,
		CreateTimeMs:     nowMs,
		LastUpdateTimeMs: nowMs,
	}
}

// Clone returns a deep copy, mirroring EmbeddedRound.Clone.
func (r IndexedRound) Clone() IndexedRound {
	var out = r
	if r.Refs != nil {
		out.Refs = make([]TxnRef, len(r.Refs))
		copy(out.Refs, r.Refs)
	}
	return out
}

// HasTxn reports whether txnId already has a ref in the round (I2).
func (r IndexedRound) HasTxn(txnID string) bool {
	for _, ref := range r.Refs {
		if ref.TxnID == txnID {
			return true
		}
	}
	return false
}

// AppendIndexedRef computes the next IndexedRound snapshot resulting from
// appending one TxnRef, mirroring AppendEmbedded's balance/business-reject
// rule but operating on refs instead of embedded transactions. The caller
// (internal/writer) is responsible for creating the TxnDetail first (§4.4
// "detail-first").
func AppendIndexedRef(
	round IndexedRound,
	txnID string,
	typ TxnType,
	amount money.Amount,
	nowMs int64,
	rejectOnNegative bool,
	floor money.Amount,
	maxTransactions int,
) (next IndexedRound, ref TxnRef, status TxnStatus, balanceAfter money.Amount, businessRejected bool, err error) {
	if round.HasTxn(txnID) {
		return IndexedRound{}, TxnRef{}, "", money.Zero, false, txnerr.ErrDuplicateTxn
	}
	if maxTransactions > 0 && len(round.Refs) >= maxTransactions {
		return IndexedRound{}, TxnRef{}, "", money.Zero, false, txnerr.ErrRoundFull
	}

	next = round.Clone()
	var seq = len(next.Refs) + 1
	var signed = money.Signed(string(typ), amount)
	var candidate = next.CurrentBalance.Add(signed)

	ref = TxnRef{
		TxnID:          txnID,
		SequenceNumber: seq,
		Type:           typ,
		Amount:         amount,
		CreateTimeMs:   nowMs,
	}

	if rejectOnNegative && isDebit(typ) && candidate.Cmp(floor) < 0 {
		status = TxnStatusFailed
		balanceAfter = next.CurrentBalance
		businessRejected = true
	} else {
		status = TxnStatusCompleted
		balanceAfter = candidate
		next.CurrentBalance = candidate
	}

	next.Refs = append(next.Refs, ref)
	next.LastUpdateTimeMs = nowMs

	var amounts = make([]money.Amount, len(next.Refs))
	for i, r := range next.Refs {
		amounts[i] = r.Amount
	}
	next.Metrics = DeriveMetrics(amounts, next.CreateTimeMs, nowMs)
	next.Risk = DeriveRisk(len(next.Refs))
	// Compliance is populated by the caller when AML screening is wired in;
	// the core itself never performs a real check (§1 "specified minimally").
	next.Compliance = round.Compliance

	return next, ref, status, balanceAfter, businessRejected, nil
}
