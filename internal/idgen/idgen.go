// Package idgen generates collision-resistant transaction and round
// identifiers. Transaction ids follow the wire format mandated by §6:
// TXN_{roundId}_{createTimeMs}_{rand4}.
package idgen

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"
)

// hashKey is a fixed 32-byte key for the highwayhash instance used to derive
// the rand4 suffix. It has no secrecy requirement (the suffix only needs to
// be unlikely to collide, not unguessable) so a compile-time constant is
// fine, the same way go/flow/mapping.go keys its partition-selection hash
// with a fixed highwayHashKey.
var hashKey = [32]byte{
	0x74, 0x78, 0x63, 0x6f, 0x72, 0x65, 0x2d, 0x69,
	0x64, 0x67, 0x65, 0x6e, 0x2d, 0x73, 0x61, 0x6c,
	0x74, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06,
	0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e,
}

// Generator produces transaction ids. It is stateless and safe for
// concurrent use by any number of writers.
type Generator struct{}

// New returns a Generator.
func New() Generator { return Generator{} }

// NewTxnID builds a txnId of the form TXN_{roundId}_{createTimeMs}_{rand4},
// folding a fresh UUID's entropy through highwayhash to produce the 4-hex-
// digit suffix so that two concurrent writers racing to append to the same
// round at the same millisecond still land on distinct ids with
// overwhelming probability.
func (Generator) NewTxnID(roundID string, createTimeMs int64) string {
	var u = uuid.New()
	var sum = highwayhash.Sum64(u[:], hashKey[:])
	var suffix [8]byte
	binary.BigEndian.PutUint64(suffix[:], sum)
	return fmt.Sprintf("TXN_%s_%d_%04x", roundID, createTimeMs, suffix[6:8])
}

// NewRoundID builds a roundId for the benchmark generator, of the form
// {runTag}-client{clientID}-round{localRoundCounter}, per §4.6. It takes no
// randomness: round ids are reproducible given (runTag, clientID, counter).
func NewRoundID(runTag string, clientID, localRoundCounter int) string {
	return fmt.Sprintf("%s-client%d-round%d", runTag, clientID, localRoundCounter)
}
