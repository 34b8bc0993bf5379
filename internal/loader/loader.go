// Package loader implements request-scoped batch loading: single-key lookups
// issued while a page is being assembled are coalesced into one bulk query.
package loader

import (
	"context"
	"sync"

	"riptide/internal/observability"
)

// BatchFunc fetches values for a deduplicated set of keys in one query.
// Keys with no backing row are simply absent from the returned map.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Thunk returns the value for a previously queued key, flushing the pending
// batch on first call. A key with no backing row yields the zero value and a
// nil error.
type Thunk[V any] func() (V, error)

type result[V any] struct {
	value V
	err   error
}

// Loader coalesces Load calls into bulk fetches and caches every resolved
// key for its own lifetime. A Loader must be created fresh for each request
// and discarded afterwards; sharing one across requests would leak one
// viewer's results to another.
type Loader[K comparable, V any] struct {
	name  string
	fetch BatchFunc[K, V]

	mu      sync.Mutex
	pending []K
	queued  map[K]struct{}
	results map[K]result[V]
}

// New creates a Loader with the given name (used as the metrics label) and
// batch fetch function.
func New[K comparable, V any](name string, fetch BatchFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{
		name:    name,
		fetch:   fetch,
		queued:  make(map[K]struct{}),
		results: make(map[K]result[V]),
	}
}

// Load queues the key for the next flush and returns a thunk for its value.
// Duplicate keys queued before the flush share one fetch entry and one
// result. The first thunk invocation dispatches the whole pending batch.
func (l *Loader[K, V]) Load(ctx context.Context, key K) Thunk[V] {
	l.mu.Lock()
	if _, resolved := l.results[key]; !resolved {
		if _, waiting := l.queued[key]; !waiting {
			l.queued[key] = struct{}{}
			l.pending = append(l.pending, key)
		}
	}
	l.mu.Unlock()

	return func() (V, error) {
		return l.resolve(ctx, key)
	}
}

func (l *Loader[K, V]) resolve(ctx context.Context, key K) (V, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if res, ok := l.results[key]; ok {
		return res.value, res.err
	}

	l.flushLocked(ctx)

	res := l.results[key]
	return res.value, res.err
}

// flushLocked dispatches every pending key through one fetch call. A failed
// fetch fails every key of the batch; none of them resolves partially.
func (l *Loader[K, V]) flushLocked(ctx context.Context) {
	keys := l.pending
	l.pending = nil
	if len(keys) == 0 {
		return
	}

	observability.ObserveLoaderBatch(l.name, len(keys))

	values, err := l.fetch(ctx, keys)
	for _, k := range keys {
		delete(l.queued, k)
		if err != nil {
			l.results[k] = result[V]{err: err}
			continue
		}
		l.results[k] = result[V]{value: values[k]}
	}
}
