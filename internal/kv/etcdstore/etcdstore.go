// Package etcdstore backs the KV Client Contract with an etcd cluster,
// using clientv3.Txn().If(...).Then(...).Else(...) to implement
// compare-and-swap on a document's ModRevision, the same pattern
// go/flow/mapping.go uses to conditionally create a partition spec.
package etcdstore

import (
	"context"
	"fmt"

	"github.com/arcadia-games/txcore/internal/kv"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Store is a kv.Store backed by an etcd client.
type Store struct {
	client *clientv3.Client
	prefix string
}

var _ kv.Store = (*Store)(nil)

// New returns a Store that keys documents under prefix+key.
func New(client *clientv3.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) fq(key string) string {
	return s.prefix + key
}

func classify(err error) error {
	switch err {
	case nil:
		return nil
	case context.DeadlineExceeded, context.Canceled:
		return fmt.Errorf("%w: %v", kv.ErrTransient, err)
	default:
		return fmt.Errorf("%w: %v", kv.ErrFatal, err)
	}
}

// Get fetches the current value and ModRevision of key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, kv.Version, bool, error) {
	var resp, err = s.client.Get(ctx, s.fq(key))
	if err != nil {
		return nil, kv.NoVersion, false, classify(err)
	}
	if len(resp.Kvs) == 0 {
		return nil, kv.NoVersion, false, nil
	}
	var k = resp.Kvs[0]
	return k.Value, k.ModRevision, true, nil
}

// Insert creates key with value, conditioned on the key not yet existing
// (ModRevision == 0).
func (s *Store) Insert(ctx context.Context, key string, value []byte) (kv.Version, error) {
	var fq = s.fq(key)
	var resp, err = s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.ModRevision(fq), "=", 0)).
		Then(clientv3.OpPut(fq, string(value))).
		Commit()
	if err != nil {
		return kv.NoVersion, classify(err)
	}
	if !resp.Succeeded {
		return kv.NoVersion, kv.ErrAlreadyExists
	}
	return resp.Header.Revision, nil
}

// Replace updates key to value, conditioned on its ModRevision still
// equalling verExpected.
func (s *Store) Replace(ctx context.Context, key string, value []byte, verExpected kv.Version) (kv.Version, error) {
	var fq = s.fq(key)
	var resp, err = s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.ModRevision(fq), "=", verExpected)).
		Then(clientv3.OpPut(fq, string(value))).
		Else(clientv3.OpGet(fq)).
		Commit()
	if err != nil {
		return kv.NoVersion, classify(err)
	}
	if !resp.Succeeded {
		if kvs := resp.Responses[0].GetResponseRange().Kvs; len(kvs) == 0 {
			return kv.NoVersion, kv.ErrNotFound
		}
		return kv.NoVersion, kv.ErrCasMismatch
	}
	return resp.Header.Revision, nil
}

// Remove deletes key, conditioned on it currently existing.
func (s *Store) Remove(ctx context.Context, key string) error {
	var fq = s.fq(key)
	var resp, err = s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.ModRevision(fq), "!=", 0)).
		Then(clientv3.OpDelete(fq)).
		Commit()
	if err != nil {
		return classify(err)
	}
	if !resp.Succeeded {
		return kv.ErrNotFound
	}
	return nil
}
