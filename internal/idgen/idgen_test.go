package idgen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var txnIDPattern = regexp.MustCompile(`^TXN_R1_\d+_[0-9a-f]{4}$`)

func TestNewTxnIDFormat(t *testing.T) {
	var g = New()
	var id = g.NewTxnID("R1", 1234567890)
	require.Regexp(t, txnIDPattern, id)
}

func TestNewTxnIDNoCollisionsAcrossTimestamps(t *testing.T) {
	// Each call below advances createTimeMs, the way successive appends in a
	// round actually do; the rand4 suffix alone is not meant to carry
	// uniqueness across a large burst at a single fixed millisecond.
	var g = New()
	var seen = make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		var id = g.NewTxnID("R1", int64(1234567890+i))
		require.False(t, seen[id], "collision at iteration %d: %s", i, id)
		seen[id] = true
	}
}

func TestNewRoundIDIsDeterministic(t *testing.T) {
	require.Equal(t, "run1-client3-round7", NewRoundID("run1", 3, 7))
}
