package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/cache"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/logger"
)

// FetchFunc asks the underlying provider for one symbol.
type FetchFunc[T any] func(ctx context.Context, symbol string) (T, error)

// Result is the per-symbol outcome of a FetchAll call: either a value
// (annotated with whether it was served from cache) or an error.
type Result[T any] struct {
	Value  T
	Cached bool
	Err    error
}

// Fetcher drives cache-first lookups for one kind of market data (quotes or
// metrics) with a fixed parallelism ceiling. Overlapping FetchAll calls that
// miss on the same symbol fetch independently; within a TTL window the last
// writer wins.
type Fetcher[T any] struct {
	kind  string
	ttl   time.Duration
	slots chan struct{}
	cache cache.Store
	fetch FetchFunc[T]

	logger logger.Logger
}

func New[T any](kind string, ttl time.Duration, concurrency int, store cache.Store, fetch FetchFunc[T], logger logger.Logger) *Fetcher[T] {
	return &Fetcher[T]{
		kind:   kind,
		ttl:    ttl,
		slots:  make(chan struct{}, concurrency),
		cache:  store,
		fetch:  fetch,
		logger: logger,
	}
}

// FetchAll produces exactly one Result per distinct input symbol. A provider
// failure for one symbol marks that symbol only; the rest complete normally.
// Completion order across symbols is unspecified.
func (f *Fetcher[T]) FetchAll(ctx context.Context, symbols []string) map[string]Result[T] {
	uniq := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		uniq = append(uniq, symbol)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Result[T], len(uniq))
	)
	for _, symbol := range uniq {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			f.slots <- struct{}{}
			defer func() { <-f.slots }()

			res := f.fetchOne(ctx, symbol)

			mu.Lock()
			results[symbol] = res
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return results
}

func (f *Fetcher[T]) fetchOne(ctx context.Context, symbol string) Result[T] {
	key := f.kind + ":" + symbol

	if b, ok := f.cache.Get(ctx, key); ok {
		var v T
		if err := sonic.Unmarshal(b, &v); err != nil {
			// corrupt payload, treat as a miss
			f.logger.Warnf("%s: can't unmarshal cached data for key %s", err, key)
		} else {
			return Result[T]{Value: v, Cached: true}
		}
	}

	v, err := f.fetch(ctx, symbol)
	if err != nil {
		f.logger.Errorf("%s: can't fetch %s", err, key)
		return Result[T]{Err: err}
	}

	if b, err := sonic.Marshal(v); err != nil {
		f.logger.Warnf("%s: can't marshal data for key %s", err, key)
	} else {
		f.cache.Set(ctx, key, b, f.ttl)
	}

	return Result[T]{Value: v}
}
