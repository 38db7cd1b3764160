package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/config"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/holdings"
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

type stubQuoteProvider struct {
	fn func(ctx context.Context, symbol string) (model.Quote, error)
}

func (p stubQuoteProvider) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	return p.fn(ctx, symbol)
}

type stubMetricsProvider struct {
	fn func(ctx context.Context, symbol string) (model.Metrics, error)
}

func (p stubMetricsProvider) FetchMetrics(ctx context.Context, symbol string) (model.Metrics, error) {
	return p.fn(ctx, symbol)
}

func price(v float64) *float64 {
	return &v
}

func testConfig() config.Config {
	var cfg config.Config
	if err := cfg.ValidateAndSetup(); err != nil {
		panic(err)
	}
	return cfg
}

func fixedPriceService(repo holdings.Repository, p float64) *PortfolioService {
	return NewPortfolioService(
		repo,
		newMemStore(),
		stubQuoteProvider{fn: func(_ context.Context, symbol string) (model.Quote, error) {
			return model.Quote{Symbol: symbol, CMP: price(p)}, nil
		}},
		stubMetricsProvider{fn: func(_ context.Context, symbol string) (model.Metrics, error) {
			return model.Metrics{Symbol: symbol, PERatio: price(20), Earnings: price(80)}, nil
		}},
		testConfig(),
		logger.NewNopLogger(),
	)
}

func TestGetPortfolio(t *testing.T) {
	repo := holdings.NewMemoryRepository(holdings.DefaultHoldings())
	s := fixedPriceService(repo, 1600)

	portfolio, err := s.GetPortfolio(context.Background(), false)

	require.NoError(t, err)
	require.Len(t, portfolio.Holdings, 15)
	assert.Nil(t, portfolio.BySector)

	sum := 0.0
	for _, c := range portfolio.Holdings {
		require.NotNil(t, c.PortfolioPercent)
		sum += *c.PortfolioPercent
		require.NotNil(t, c.CMP)
		require.NotNil(t, c.PresentValue)
	}
	assert.InDelta(t, 100.0, sum, 1e-6)

	for _, c := range portfolio.Holdings {
		if c.Symbol == "HDFCBANK.NS" {
			assert.Equal(t, 74500.0, c.Investment)
			assert.Equal(t, 80000.0, *c.PresentValue)
			assert.Equal(t, 5500.0, *c.GainLoss)
		}
	}
}

func TestGetPortfolioGroupedMatchesFlat(t *testing.T) {
	repo := holdings.NewMemoryRepository(holdings.DefaultHoldings())
	s := fixedPriceService(repo, 1600)

	flat, err := s.GetPortfolio(context.Background(), false)
	require.NoError(t, err)
	grouped, err := s.GetPortfolio(context.Background(), true)
	require.NoError(t, err)

	assert.Nil(t, grouped.Holdings)
	byID := make(map[string]model.ComputedHolding)
	n := 0
	for _, group := range grouped.BySector {
		for _, c := range group {
			byID[c.ID] = c
			n++
		}
	}
	require.Equal(t, len(flat.Holdings), n)
	for _, c := range flat.Holdings {
		assert.Equal(t, c, byID[c.ID])
	}
}

func TestGetHoldingByID(t *testing.T) {
	repo := holdings.NewMemoryRepository(holdings.DefaultHoldings())
	s := fixedPriceService(repo, 1600)

	list, err := repo.List(context.Background())
	require.NoError(t, err)

	c, err := s.GetHoldingByID(context.Background(), list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].Symbol, c.Symbol)
	assert.Nil(t, c.PortfolioPercent, "single lookup must not expose an allocation")
	require.NotNil(t, c.CMP)

	_, err = s.GetHoldingByID(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, holdings.ErrNotFound)
}

func TestGetQuotesPerSymbolErrors(t *testing.T) {
	repo := holdings.NewMemoryRepository(nil)
	s := NewPortfolioService(
		repo,
		newMemStore(),
		stubQuoteProvider{fn: func(_ context.Context, symbol string) (model.Quote, error) {
			if symbol == "BAD.NS" {
				return model.Quote{}, fmt.Errorf("upstream down")
			}
			return model.Quote{Symbol: symbol, CMP: price(10)}, nil
		}},
		stubMetricsProvider{fn: func(_ context.Context, symbol string) (model.Metrics, error) {
			return model.Metrics{Symbol: symbol}, nil
		}},
		testConfig(),
		logger.NewNopLogger(),
	)

	quotes, err := s.GetQuotes(context.Background(), []string{"GOOD.NS", "BAD.NS"})

	require.NoError(t, err, "one bad symbol must not fail the request")
	require.Len(t, quotes, 2)
	assert.Equal(t, "GOOD.NS", quotes[0].Symbol)
	require.NotNil(t, quotes[0].CMP)
	assert.Empty(t, quotes[0].Error)
	assert.Equal(t, "BAD.NS", quotes[1].Symbol)
	assert.Nil(t, quotes[1].CMP)
	assert.NotEmpty(t, quotes[1].Error)
}

func TestGetQuotesEmptyInput(t *testing.T) {
	s := fixedPriceService(holdings.NewMemoryRepository(nil), 1)

	_, err := s.GetQuotes(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptySymbols)

	_, err = s.GetMetrics(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptySymbols)
}

func TestGetQuotesCachedOnSecondCall(t *testing.T) {
	s := fixedPriceService(holdings.NewMemoryRepository(nil), 1490)

	first, err := s.GetQuotes(context.Background(), []string{"HDFCBANK.NS"})
	require.NoError(t, err)
	second, err := s.GetQuotes(context.Background(), []string{"HDFCBANK.NS"})
	require.NoError(t, err)

	assert.False(t, first[0].Cached)
	assert.True(t, second[0].Cached)
	assert.Equal(t, *first[0].CMP, *second[0].CMP)
}

func TestWarmQuotesPopulatesCache(t *testing.T) {
	repo := holdings.NewMemoryRepository(holdings.DefaultHoldings())
	s := fixedPriceService(repo, 1600)

	require.NoError(t, s.WarmQuotes(context.Background()))
	require.NoError(t, s.WarmMetrics(context.Background()))

	quotes, err := s.GetQuotes(context.Background(), []string{"HDFCBANK.NS"})
	require.NoError(t, err)
	assert.True(t, quotes[0].Cached, "request after a warm cycle must hit the cache")

	metrics, err := s.GetMetrics(context.Background(), []string{"HDFCBANK.NS"})
	require.NoError(t, err)
	assert.True(t, metrics[0].Cached)
}

func TestWarmQuotesNoHoldings(t *testing.T) {
	s := fixedPriceService(holdings.NewMemoryRepository(nil), 1)
	assert.NoError(t, s.WarmQuotes(context.Background()))
	assert.NoError(t, s.WarmMetrics(context.Background()))
}
