package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/logger"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
)

// GoogleFinanceService extracts fundamentals from the public quote page. The
// page structure is not contractually guaranteed, so extraction is best-effort:
// a missing or malformed marker leaves the field nil instead of failing the
// whole record.
type GoogleFinanceService struct {
	c           *resty.Client
	rateLimiter ratelimit.Limiter

	logger logger.Logger
}

const (
	_statRowSelector   = "div.gyFHrc"
	_statLabelSelector = ".mfs7Fc"
	_statValueSelector = ".P6K39c"

	_peRatioLabel  = "p/e ratio"
	_earningsLabel = "earnings per share"
)

func NewGoogleFinanceService(baseURL string, logger logger.Logger) *GoogleFinanceService {
	client := resty.New().
		SetLogger(logger).
		SetBaseURL(baseURL).
		SetHeader("User-Agent", _userAgent).
		SetTimeout(15 * time.Second)

	return &GoogleFinanceService{
		c:           client,
		rateLimiter: ratelimit.New(60, ratelimit.Per(1*time.Minute)),
		logger:      logger,
	}
}

func (s *GoogleFinanceService) FetchMetrics(ctx context.Context, symbol string) (model.Metrics, error) {
	s.rateLimiter.Take()

	resp, err := s.c.R().
		SetContext(ctx).
		Get("/quote/" + symbol)
	if err != nil {
		return model.Metrics{}, fmt.Errorf("%w: can't fetch summary page for %s", err, symbol)
	}
	defer resp.Body.Close()

	s.logger.Debugf("got response %s status: %s, %s", resp.Request.URL, resp.Status(), resp.Duration())

	if !resp.IsSuccess() {
		return model.Metrics{}, fmt.Errorf("summary page request error for %s: %s", symbol, resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return model.Metrics{}, fmt.Errorf("%w: can't parse summary page for %s", err, symbol)
	}

	peRatio, earnings := extractStats(doc)
	if peRatio == nil {
		s.logger.Debugf("no P/E ratio marker for %s", symbol)
	}
	if earnings == nil {
		s.logger.Debugf("no earnings marker for %s", symbol)
	}

	return model.Metrics{
		Symbol:   symbol,
		PERatio:  peRatio,
		Earnings: earnings,
	}, nil
}

// extractStats scans the key-stats rows for the P/E and EPS markers. The two
// markers are located independently: a bad value in one row never suppresses
// the other.
func extractStats(doc *goquery.Document) (peRatio, earnings *float64) {
	doc.Find(_statRowSelector).Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find(_statLabelSelector).First().Text()))
		value := strings.TrimSpace(row.Find(_statValueSelector).First().Text())

		switch {
		case strings.Contains(label, _peRatioLabel):
			peRatio = parseStatValue(value)
		case strings.Contains(label, _earningsLabel) || label == "eps":
			earnings = parseStatValue(value)
		}
	})
	return peRatio, earnings
}

// parseStatValue turns a rendered stat into a number. "-" is the source's
// "not available" sentinel.
func parseStatValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" {
		return nil
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "$")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
