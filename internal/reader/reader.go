// Package reader implements getRound (§4.5): a single get for the embedded
// variant, and a round-plus-concurrent-detail-fan-out for the indexed
// variant that degrades gracefully rather than failing outright when a
// detail document is missing.
package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/arcadia-games/txcore/internal/kv"
	"github.com/arcadia-games/txcore/internal/model"
	"github.com/arcadia-games/txcore/internal/txnerr"
	"golang.org/x/sync/errgroup"
)

// EmbeddedReader implements getRound for the embedded variant: a single get.
type EmbeddedReader struct {
	Store kv.Store
}

// GetRound returns the deserialized round, or txnerr.ErrRoundNotFound.
func (r *EmbeddedReader) GetRound(ctx context.Context, roundID string) (model.EmbeddedRound, error) {
	val, _, exists, err := r.Store.Get(ctx, roundID)
	if err != nil {
		return model.EmbeddedRound{}, fmt.Errorf("reading round %s: %w", roundID, err)
	}
	if !exists {
		return model.EmbeddedRound{}, txnerr.ErrRoundNotFound
	}
	var round model.EmbeddedRound
	if err := json.Unmarshal(val, &round); err != nil {
		return model.EmbeddedRound{}, fmt.Errorf("decoding round %s: %w", roundID, err)
	}
	return round, nil
}

// IndexedRoundView is what the indexed reader returns: the round and its
// refs, plus any detail fetches that came back missing (§4.5 "degraded").
type IndexedRoundView struct {
	Round       model.IndexedRound
	Details     map[string]model.TxnDetail
	Degraded    bool
	MissingTxns []string
}

// IndexReader implements getRound for the indexed variant: get(roundId),
// then a concurrent get(txnId) per ref.
type IndexReader struct {
	Store kv.Store
}

// GetRound fetches the round and fans out one concurrent detail read per
// ref (§4.5 "Reads of refs MAY be issued concurrently"). A missing detail
// never fails the read: it's recorded in MissingTxns and Degraded is set,
// while the round and its refs are still returned in full.
func (r *IndexReader) GetRound(ctx context.Context, roundID string) (IndexedRoundView, error) {
	val, _, exists, err := r.Store.Get(ctx, roundID)
	if err != nil {
		return IndexedRoundView{}, fmt.Errorf("reading round %s: %w", roundID, err)
	}
	if !exists {
		return IndexedRoundView{}, txnerr.ErrRoundNotFound
	}
	var round model.IndexedRound
	if err := json.Unmarshal(val, &round); err != nil {
		return IndexedRoundView{}, fmt.Errorf("decoding round %s: %w", roundID, err)
	}

	var view = IndexedRoundView{Round: round, Details: make(map[string]model.TxnDetail, len(round.Refs))}
	if len(round.Refs) == 0 {
		return view, nil
	}

	var mu sync.Mutex
	var group, groupCtx = errgroup.WithContext(ctx)
	for _, ref := range round.Refs {
		var txnID = ref.TxnID
		group.Go(func() error {
			val, _, exists, err := r.Store.Get(groupCtx, txnID)
			if err != nil {
				return fmt.Errorf("reading detail %s: %w", txnID, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if !exists {
				view.MissingTxns = append(view.MissingTxns, txnID)
				view.Degraded = true
				return nil
			}
			var detail model.TxnDetail
			if err := json.Unmarshal(val, &detail); err != nil {
				// A corrupt detail is treated the same as a missing one:
				// the round must still come back whole (§4.5).
				view.MissingTxns = append(view.MissingTxns, txnID)
				view.Degraded = true
				return nil
			}
			view.Details[txnID] = detail
			return nil
		})
	}

	// Only a store-level failure (not a missing/corrupt detail) aborts the
	// whole read; individual misses are reported via Degraded instead.
	if err := group.Wait(); err != nil {
		return IndexedRoundView{}, err
	}

	sort.Strings(view.MissingTxns)
	return view, nil
}
