// Package generator implements the Round-Session Generator (§4.6): a
// per-client stream of (roundId, txnType, amount) events, bursting 3-5
// transactions per round before rotating to a new round.
package generator

import (
	"fmt"
	"math/rand"

	"github.com/arcadia-games/txcore/internal/model"
	"github.com/arcadia-games/txcore/internal/money"
)

// cycleTypes is the fixed rotation of transaction kinds a session walks
// through (§4.6).
var cycleTypes = []model.TxnType{
	model.TxnBet,
	model.TxnWin,
	model.TxnBonus,
	model.TxnRake,
	model.TxnJackpot,
}

// Event is one generated transaction attempt.
type Event struct {
	RoundID string
	TxnType model.TxnType
	Amount  money.Amount
}

// ClientSession produces one virtual client's infinite event stream. It is
// not safe for concurrent use; the benchmark driver runs one per worker
// goroutine.
type ClientSession struct {
	runTag   string
	clientID int
	rng      *rand.Rand

	roundCounter   int
	txnOrdinal     int
	burstRemaining int
	currentRoundID string
}

// NewClientSession builds a session for clientID seeded off seed, so a run
// is reproducible given the same (runTag, clientID, seed) triple.
func NewClientSession(runTag string, clientID int, seed int64) *ClientSession {
	return &ClientSession{
		runTag:   runTag,
		clientID: clientID,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next event in the stream, rotating to a new roundId
// once the current round's burst of 3-5 transactions is exhausted.
func (s *ClientSession) Next() Event {
	if s.burstRemaining == 0 {
		s.roundCounter++
		s.burstRemaining = 3 + s.rng.Intn(3) // 3..5 inclusive
		s.currentRoundID = fmt.Sprintf("%s-client%d-round%d", s.runTag, s.clientID, s.roundCounter)
	}

	var i = s.txnOrdinal
	var typ = cycleTypes[i%len(cycleTypes)]
	var amount = money.New(10.0 + float64(i)*5.0 + s.rng.Float64()*50.0)

	s.txnOrdinal++
	s.burstRemaining--

	return Event{RoundID: s.currentRoundID, TxnType: typ, Amount: amount}
}

// RoundID reports the roundId the next call to Next will use (or is
// currently using, if a burst is in progress), for test assertions.
func (s *ClientSession) RoundID() string {
	if s.burstRemaining == 0 {
		return fmt.Sprintf("%s-client%d-round%d", s.runTag, s.clientID, s.roundCounter+1)
	}
	return s.currentRoundID
}
