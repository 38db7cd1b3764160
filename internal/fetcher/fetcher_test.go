package fetcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/logger"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data[key]
	return b, ok
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func price(v float64) *float64 {
	return &v
}

func TestFetchAllCacheFirst(t *testing.T) {
	store := newMemStore()
	cached := model.Quote{Symbol: "HDFCBANK.NS", CMP: price(1600)}
	b, err := sonic.Marshal(cached)
	require.NoError(t, err)
	store.data["quote:HDFCBANK.NS"] = b

	var calls atomic.Int64
	f := New("quote", 15*time.Second, 5, store, func(ctx context.Context, symbol string) (model.Quote, error) {
		calls.Add(1)
		return model.Quote{Symbol: symbol, CMP: price(1)}, nil
	}, logger.NewNopLogger())

	results := f.FetchAll(context.Background(), []string{"HDFCBANK.NS"})

	require.Len(t, results, 1)
	res := results["HDFCBANK.NS"]
	require.NoError(t, res.Err)
	assert.True(t, res.Cached)
	require.NotNil(t, res.Value.CMP)
	assert.Equal(t, 1600.0, *res.Value.CMP)
	assert.Equal(t, int64(0), calls.Load(), "cached symbols must not reach the provider")
}

func TestFetchAllWritesThroughOnMiss(t *testing.T) {
	store := newMemStore()
	f := New("quote", 15*time.Second, 5, store, func(ctx context.Context, symbol string) (model.Quote, error) {
		return model.Quote{Symbol: symbol, CMP: price(42)}, nil
	}, logger.NewNopLogger())

	results := f.FetchAll(context.Background(), []string{"SUZLON.NS"})

	res := results["SUZLON.NS"]
	require.NoError(t, res.Err)
	assert.False(t, res.Cached)

	b, ok := store.Get(context.Background(), "quote:SUZLON.NS")
	require.True(t, ok, "successful fetch must be written back to cache")
	var q model.Quote
	require.NoError(t, sonic.Unmarshal(b, &q))
	assert.Equal(t, 42.0, *q.CMP)
}

func TestFetchAllIdempotentWithinTTL(t *testing.T) {
	store := newMemStore()
	var calls atomic.Int64
	f := New("quote", 15*time.Second, 5, store, func(ctx context.Context, symbol string) (model.Quote, error) {
		calls.Add(1)
		return model.Quote{Symbol: symbol, CMP: price(1490)}, nil
	}, logger.NewNopLogger())

	first := f.FetchAll(context.Background(), []string{"HDFCBANK.NS"})["HDFCBANK.NS"]
	second := f.FetchAll(context.Background(), []string{"HDFCBANK.NS"})["HDFCBANK.NS"]

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, *first.Value.CMP, *second.Value.CMP)
	assert.Equal(t, int64(1), calls.Load())
}

func TestFetchAllPartialFailure(t *testing.T) {
	failing := map[string]bool{"SYM2": true, "SYM5": true, "SYM8": true}

	symbols := make([]string, 0, 10)
	for i := range 10 {
		symbols = append(symbols, fmt.Sprintf("SYM%d", i))
	}

	f := New("quote", 15*time.Second, 5, newMemStore(), func(ctx context.Context, symbol string) (model.Quote, error) {
		if failing[symbol] {
			return model.Quote{}, fmt.Errorf("quote unavailable")
		}
		return model.Quote{Symbol: symbol, CMP: price(100)}, nil
	}, logger.NewNopLogger())

	results := f.FetchAll(context.Background(), symbols)

	require.Len(t, results, 10)
	for _, symbol := range symbols {
		res, ok := results[symbol]
		require.True(t, ok, "missing result for %s", symbol)
		if failing[symbol] {
			assert.Error(t, res.Err)
		} else {
			require.NoError(t, res.Err)
			assert.NotNil(t, res.Value.CMP)
		}
	}
}

func TestFetchAllBoundsConcurrency(t *testing.T) {
	const limit = 3

	var inFlight, peak atomic.Int64
	f := New("metrics", time.Minute, limit, newMemStore(), func(ctx context.Context, symbol string) (model.Metrics, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return model.Metrics{Symbol: symbol}, nil
	}, logger.NewNopLogger())

	symbols := make([]string, 0, 20)
	for i := range 20 {
		symbols = append(symbols, fmt.Sprintf("SYM%d", i))
	}

	results := f.FetchAll(context.Background(), symbols)

	assert.Len(t, results, 20)
	assert.LessOrEqual(t, peak.Load(), int64(limit))
}

func TestFetchAllCollapsesDuplicates(t *testing.T) {
	var calls atomic.Int64
	f := New("quote", 15*time.Second, 5, newMemStore(), func(ctx context.Context, symbol string) (model.Quote, error) {
		calls.Add(1)
		return model.Quote{Symbol: symbol, CMP: price(7)}, nil
	}, logger.NewNopLogger())

	results := f.FetchAll(context.Background(), []string{"DMART.NS", "DMART.NS", "DMART.NS"})

	assert.Len(t, results, 1)
	assert.Equal(t, int64(1), calls.Load())
}
