package variants

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

/*
Store is where registry payloads live. The pipeline writes them to sqlite
(services.VariantService); tests and local development can use a ManifestStore.
Payloads are JSON: a Set for the inline and poster tiers, a string URL for the
placeholder tier.
*/
type Store interface {
	Keys(ctx context.Context, tier Tier) ([]string, error)
	Payload(ctx context.Context, tier Tier, key string) ([]byte, error)
}

/*
Registry maps normalized asset keys to lazily loaded variant payloads for each
tier. The key index is built once, on first use, and every key's payload is
loaded from the store at most once per index. Refresh swaps in a new index
after the pipeline has written new entries.
*/
type Registry struct {
	store    Store
	initOnce sync.Once
	index    atomic.Pointer[snapshot]
}

type snapshot struct {
	tiers map[Tier]map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	loaded  bool
	payload []byte
}

func NewRegistry(store Store) *Registry {
	return &Registry{
		store: store,
	}
}

// Refresh rebuilds the key index from the store. Previously loaded payloads
// are dropped.
func (r *Registry) Refresh(ctx context.Context) error {
	snap, err := r.build(ctx)

	if err != nil {
		return err
	}

	r.index.Store(snap)
	return nil
}

// Has reports whether tier contains key, without loading its payload.
func (r *Registry) Has(ctx context.Context, tier Tier, key string) bool {
	_, ok := r.current(ctx).tiers[tier][key]
	return ok
}

// Load returns the payload for key in tier. The second return value is false
// when the key is not registered or the store could not produce the payload.
func (r *Registry) Load(ctx context.Context, tier Tier, key string) ([]byte, bool) {
	e, ok := r.current(ctx).tiers[tier][key]

	if !ok {
		return nil, false
	}

	payload, err := e.load(func() ([]byte, error) {
		return r.store.Payload(ctx, tier, key)
	})

	if err != nil {
		slog.Warn("error loading variant payload", "tier", tier, "key", key, "error", err)
		return nil, false
	}

	return payload, true
}

// Len returns the number of keys registered in tier.
func (r *Registry) Len(ctx context.Context, tier Tier) int {
	return len(r.current(ctx).tiers[tier])
}

func (r *Registry) current(ctx context.Context) *snapshot {
	r.initOnce.Do(func() {
		snap, err := r.build(ctx)

		if err != nil {
			slog.Error("error building variant registry. starting empty", "error", err)
			snap = emptySnapshot()
		}

		r.index.CompareAndSwap(nil, snap)
	})

	return r.index.Load()
}

func (r *Registry) build(ctx context.Context) (*snapshot, error) {
	result := emptySnapshot()

	for _, tier := range Tiers {
		keys, err := r.store.Keys(ctx, tier)

		if err != nil {
			return nil, fmt.Errorf("error listing %s variant keys: %w", tier, err)
		}

		for _, key := range keys {
			result.tiers[tier][key] = &entry{}
		}
	}

	return result, nil
}

func emptySnapshot() *snapshot {
	result := &snapshot{
		tiers: make(map[Tier]map[string]*entry, len(Tiers)),
	}

	for _, tier := range Tiers {
		result.tiers[tier] = map[string]*entry{}
	}

	return result
}

// load memoizes successful loads only, so a transient store failure is
// retried by the next caller.
func (e *entry) load(fn func() ([]byte, error)) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return e.payload, nil
	}

	payload, err := fn()

	if err != nil {
		return nil, err
	}

	e.payload = payload
	e.loaded = true
	return payload, nil
}
