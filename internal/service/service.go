// Package service exposes the portfolio operations consumed by the request
// layer and the warming scheduler. It owns the two bounded fetchers and keeps
// the per-symbol error contract: aggregating calls always return a full result
// set with error-marked entries, never a whole-request failure for one bad
// symbol.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/cache"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/config"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/fetcher"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/holdings"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/logger"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/provider"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/valuation"
)

var ErrEmptySymbols = errors.New("empty symbols list")

const (
	_quoteKind   = "quote"
	_metricsKind = "metrics"

	_quoteUnavailable   = "quote unavailable"
	_metricsUnavailable = "metrics unavailable"
)

// Portfolio is the response of GetPortfolio: Holdings for the flat view,
// BySector when grouping was requested.
type Portfolio struct {
	Holdings []model.ComputedHolding
	BySector map[string][]model.ComputedHolding
}

type PortfolioService struct {
	repo    holdings.Repository
	quotes  *fetcher.Fetcher[model.Quote]
	metrics *fetcher.Fetcher[model.Metrics]

	logger logger.Logger
}

func NewPortfolioService(
	repo holdings.Repository,
	store cache.Store,
	quoteProvider provider.QuoteProvider,
	metricsProvider provider.MetricsProvider,
	cfg config.Config,
	logger logger.Logger,
) *PortfolioService {
	return &PortfolioService{
		repo: repo,
		quotes: fetcher.New(_quoteKind, cfg.Cache.QuoteTTL, cfg.Providers.QuoteConcurrency,
			store, quoteProvider.FetchQuote, logger.With("component", "quote-fetcher")),
		metrics: fetcher.New(_metricsKind, cfg.Cache.MetricsTTL, cfg.Providers.MetricsConcurrency,
			store, metricsProvider.FetchMetrics, logger.With("component", "metrics-fetcher")),
		logger: logger,
	}
}

// GetPortfolio returns every holding enriched with live data. Provider
// failures leave the affected figures nil; only repository errors fail the
// call.
func (s *PortfolioService) GetPortfolio(ctx context.Context, groupBySector bool) (Portfolio, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return Portfolio{}, fmt.Errorf("%w: can't list holdings", err)
	}

	symbols := make([]string, 0, len(list))
	for _, h := range list {
		symbols = append(symbols, h.Symbol)
	}

	quotes := s.quoteMap(ctx, symbols)
	metrics := s.metricsMap(ctx, symbols)

	computed := valuation.Compute(list, quotes, metrics)
	if groupBySector {
		return Portfolio{BySector: valuation.GroupBySector(computed)}, nil
	}
	return Portfolio{Holdings: computed}, nil
}

// GetHoldingByID enriches a single holding. PortfolioPercent is always nil
// here: the full-set investment context is not computed for a single lookup.
func (s *PortfolioService) GetHoldingByID(ctx context.Context, id string) (model.ComputedHolding, error) {
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.ComputedHolding{}, err
	}

	quotes := s.quoteMap(ctx, []string{h.Symbol})
	metrics := s.metricsMap(ctx, []string{h.Symbol})

	return valuation.ComputeOne(h, quotes[h.Symbol], metrics[h.Symbol]), nil
}

// GetQuotes returns one entry per distinct input symbol, in input order.
// Failed symbols carry an error marker instead of failing the request.
func (s *PortfolioService) GetQuotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptySymbols
	}

	results := s.quotes.FetchAll(ctx, symbols)
	out := make([]model.Quote, 0, len(results))
	for _, symbol := range distinct(symbols) {
		res := results[symbol]
		if res.Err != nil {
			out = append(out, model.Quote{Symbol: symbol, Error: _quoteUnavailable})
			continue
		}
		q := res.Value
		q.Cached = res.Cached
		out = append(out, q)
	}
	return out, nil
}

func (s *PortfolioService) GetMetrics(ctx context.Context, symbols []string) ([]model.Metrics, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptySymbols
	}

	results := s.metrics.FetchAll(ctx, symbols)
	out := make([]model.Metrics, 0, len(results))
	for _, symbol := range distinct(symbols) {
		res := results[symbol]
		if res.Err != nil {
			out = append(out, model.Metrics{Symbol: symbol, Error: _metricsUnavailable})
			continue
		}
		m := res.Value
		m.Cached = res.Cached
		out = append(out, m)
	}
	return out, nil
}

// WarmQuotes re-drives the quote fetcher for every known symbol so the cache
// stays populated ahead of user requests.
func (s *PortfolioService) WarmQuotes(ctx context.Context) error {
	symbols, err := s.repo.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("%w: can't list symbols", err)
	}
	if len(symbols) == 0 {
		return nil
	}
	s.quotes.FetchAll(ctx, symbols)
	return nil
}

func (s *PortfolioService) WarmMetrics(ctx context.Context) error {
	symbols, err := s.repo.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("%w: can't list symbols", err)
	}
	if len(symbols) == 0 {
		return nil
	}
	s.metrics.FetchAll(ctx, symbols)
	return nil
}

// Holdings CRUD is a thin pass-through to the repository; it lives here so the
// request layer only ever talks to one service.

func (s *PortfolioService) AddHolding(ctx context.Context, h model.Holding) (model.Holding, error) {
	return s.repo.Add(ctx, h)
}

func (s *PortfolioService) UpdateHolding(ctx context.Context, id string, h model.Holding) (model.Holding, error) {
	return s.repo.Update(ctx, id, h)
}

func (s *PortfolioService) RemoveHolding(ctx context.Context, id string) error {
	return s.repo.Remove(ctx, id)
}

func (s *PortfolioService) quoteMap(ctx context.Context, symbols []string) map[string]model.Quote {
	quotes := make(map[string]model.Quote, len(symbols))
	for symbol, res := range s.quotes.FetchAll(ctx, symbols) {
		if res.Err != nil {
			quotes[symbol] = model.Quote{Symbol: symbol, Error: _quoteUnavailable}
			continue
		}
		q := res.Value
		q.Cached = res.Cached
		quotes[symbol] = q
	}
	return quotes
}

func (s *PortfolioService) metricsMap(ctx context.Context, symbols []string) map[string]model.Metrics {
	metrics := make(map[string]model.Metrics, len(symbols))
	for symbol, res := range s.metrics.FetchAll(ctx, symbols) {
		if res.Err != nil {
			metrics[symbol] = model.Metrics{Symbol: symbol, Error: _metricsUnavailable}
			continue
		}
		m := res.Value
		m.Cached = res.Cached
		metrics[symbol] = m
	}
	return metrics
}

func distinct(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
	}
	return out
}
