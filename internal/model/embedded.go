package model

import (
	"github.com/arcadia-games/txcore/internal/money"
	"github.com/arcadia-games/txcore/internal/txnerr"
)

// EmbeddedTxn is one entry in an embedded-variant Round's transaction list
// (§3). Entries are never reordered or mutated after they are observed by a
// reader (I5).
type EmbeddedTxn struct {
	ID             string            `json:"id"`
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

// EmbeddedRound is the embedded-variant Round document (§3): a single
// self-describing document holding an ordered list of embedded
// transactions, updated atomically per append.
type EmbeddedRound struct {
	RoundID          string        `json:"roundId"`
	PlayerID         string        `json:"playerId,omitempty"`
	OperatorID       string        `json:"operatorId,omitempty"`
	VendorID         string        `json:"vendorId,omitempty"`
	Currency         string        `json:"currency"`
	InitialBalance   money.Amount  `json:"initialBalance"`
	CurrentBalance   money.Amount  `json:"currentBalance"`
	Status           Status        `json:"status"`
	CreateTimeMs     int64         `json:"createTimeMs"`
	LastUpdateTimeMs int64         `json:"lastUpdateTimeMs"`
	Transactions     []EmbeddedTxn `json:"transactions"`
	Summary          RoundSummary  `json:"summary"`
}

// NewEmbeddedRound builds the round that the first successful append for
// roundId implicitly creates (§3 Lifecycle).
func NewEmbeddedRound(roundID, playerID, operatorID, vendorID, currency string, initialBalance money.Amount, nowMs int64) EmbeddedRound {
	return EmbeddedRound{
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
		Transactions:     nil,
		Summary:          RoundSummary{},
	}
}

// Clone returns a deep copy, so that each CAS attempt in the Embedded
// Writer mutates a fresh snapshot and never a value another goroutine might
// still be holding (§9).
func (r EmbeddedRound) Clone() EmbeddedRound {
	var out = r
	if r.Transactions != nil {
		out.Transactions = make([]EmbeddedTxn, len(r.Transactions))
		copy(out.Transactions, r.Transactions)
	}
	return out
}

// HasTxn reports whether id already appears among the round's embedded
// transactions (I2).
func (r EmbeddedRound) HasTxn(id string) bool {
	for _, t := range r.Transactions {
		if t.ID == id {
			return true
		}
	}
	return false
}

// AppendEmbedded computes the next EmbeddedRound snapshot that results from
// appending one transaction, per the MUTATE state of §4.3. It is pure: round
// is not modified, and the returned round is always a distinct value.
//
// businessRejected is true when rejectOnNegative is set and the debit would
// drive currentBalance below floor; the transaction is still appended, with
// status FAILED, so the attempt is recorded (§4.3's default policy).
func AppendEmbedded(
	round EmbeddedRound,
	id string,
	typ TxnType,
	amount money.Amount,
	currency string,
	nowMs int64,
	rejectOnNegative bool,
	floor money.Amount,
	maxTransactions int,
) (next EmbeddedRound, txn EmbeddedTxn, businessRejected bool, err error) {
	if round.HasTxn(id) {
		return EmbeddedRound{}, EmbeddedTxn{}, false, txnerr.ErrDuplicateTxn
	}
	if maxTransactions > 0 && len(round.Transactions) >= maxTransactions {
		return EmbeddedRound{}, EmbeddedTxn{}, false, txnerr.ErrRoundFull
	}

	next = round.Clone()
	var seq = len(next.Transactions) + 1
	var signed = money.Signed(string(typ), amount)
	var candidate = next.CurrentBalance.Add(signed)

	txn = EmbeddedTxn{
		ID:             id,
		SequenceNumber: seq,
		Type:           typ,
		Amount:         amount,
		Currency:       currency,
		CreateTimeMs:   nowMs,
	}

	if rejectOnNegative && isDebit(typ) && candidate.Cmp(floor) < 0 {
		txn.Status = TxnStatusFailed
		txn.BalanceAfter = next.CurrentBalance // unchanged
		businessRejected = true
	} else {
		txn.Status = TxnStatusCompleted
		txn.BalanceAfter = candidate
		next.CurrentBalance = candidate
	}

	next.Transactions = append(next.Transactions, txn)
	next.LastUpdateTimeMs = nowMs
	next.Summary = deriveSummary(next.Transactions)

	return next, txn, businessRejected, nil
}

func deriveSummary(txns []EmbeddedTxn) RoundSummary {
	var s RoundSummary
	s.TotalTransactions = len(txns)
	var net = money.Zero
	for _, t := range txns {
		if t.Status != TxnStatusCompleted {
			continue
		}
		switch t.Type {
		case TxnBet:
			s.TotalBets++
		case TxnWin:
			s.TotalWins++
		}
		net = net.Add(money.Signed(string(t.Type), t.Amount))
	}
	s.NetAmount = net
	return s
}
