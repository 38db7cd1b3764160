package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/logger"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
)

// QuoteProvider asks an external live-quote source for a symbol's current
// traded price. Implementations do no retrying: retry policy belongs to the
// next warming cycle, not a local loop.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// MetricsProvider retrieves fundamentals (P/E ratio, earnings) for a symbol.
type MetricsProvider interface {
	FetchMetrics(ctx context.Context, symbol string) (model.Metrics, error)
}

const (
	_quoteURL = "/v7/finance/quote"

	_userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type YahooQuoteService struct {
	c           *resty.Client
	rateLimiter ratelimit.Limiter // informal source limit, stay well under it

	logger logger.Logger
}

func NewYahooQuoteService(baseURL string, logger logger.Logger) *YahooQuoteService {
	client := resty.New().
		SetLogger(logger).
		SetBaseURL(baseURL).
		SetHeader("User-Agent", _userAgent).
		SetTimeout(10 * time.Second)

	return &YahooQuoteService{
		c:           client,
		rateLimiter: ratelimit.New(120, ratelimit.Per(1*time.Minute)),
		logger:      logger,
	}
}

func (s *YahooQuoteService) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	s.rateLimiter.Take()

	req := s.c.R().
		SetQueryParams(map[string]string{
			"symbols": symbol,
			"fields":  "regularMarketPrice",
		}).
		SetResult(&quoteResponse{}).
		SetContext(ctx)

	resp, err := req.Get(_quoteURL)
	if err != nil {
		return model.Quote{}, fmt.Errorf("%w: can't send quote request for %s", err, symbol)
	}
	defer resp.Body.Close()

	s.logger.Debugf("got response %s status: %s, %s", resp.Request.URL, resp.Status(), resp.Duration())

	if !resp.IsSuccess() {
		return model.Quote{}, fmt.Errorf("quote request error for %s: %s", symbol, resp.Status())
	}

	result := resp.Result().(*quoteResponse)
	if apiErr := result.QuoteResponse.Error; apiErr != nil {
		return model.Quote{}, fmt.Errorf("%s: quote api error for %s", apiErr.Description, symbol)
	}
	if len(result.QuoteResponse.Result) == 0 {
		return model.Quote{}, fmt.Errorf("no such symbol %s", symbol)
	}

	price := result.QuoteResponse.Result[0].RegularMarketPrice
	if price == nil || *price < 0 {
		return model.Quote{}, fmt.Errorf("no market price for %s", symbol)
	}

	return model.Quote{
		Symbol: symbol,
		CMP:    price,
	}, nil
}
