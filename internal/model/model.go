package model

import "fmt"

// Holding is a user's recorded purchase of a stock. Holdings are owned by the
// holdings repository; everything above it only reads them.
type Holding struct {
	ID            string  `json:"id" db:"id"`
	Symbol        string  `json:"symbol" db:"symbol"`
	Name          string  `json:"name" db:"name"`
	Exchange      string  `json:"exchange" db:"exchange"`
	Sector        string  `json:"sector" db:"sector"`
	PurchasePrice float64 `json:"purchasePrice" db:"purchase_price"`
	Quantity      int64   `json:"quantity" db:"quantity"`
	PurchaseDate  string  `json:"purchaseDate" db:"purchase_date"`
}

func (h Holding) Validate() error {
	if h.Symbol == "" {
		return fmt.Errorf("empty symbol")
	}
	if h.PurchasePrice <= 0 {
		return fmt.Errorf("purchase price must be positive")
	}
	if h.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}

// Quote is a snapshot of a symbol's current traded price. CMP is nil when the
// provider failed; Cached marks a value served from the cache instead of a
// fresh fetch.
type Quote struct {
	Symbol string   `json:"symbol"`
	CMP    *float64 `json:"cmp"`
	Error  string   `json:"error,omitempty"`
	Cached bool     `json:"cached,omitempty"`
}

// Metrics carries the fundamentals extracted for a symbol. Each field is
// independently nil-able: a parse failure on one marker doesn't suppress the
// other.
type Metrics struct {
	Symbol   string   `json:"symbol"`
	PERatio  *float64 `json:"peRatio"`
	Earnings *float64 `json:"earnings"`
	Error    string   `json:"error,omitempty"`
	Cached   bool     `json:"cached,omitempty"`
}

// ComputedHolding is a Holding enriched with live-market figures. It is derived
// fresh on every request and never stored.
//
// PortfolioPercent is only defined against the full holdings set; single-holding
// lookups leave it nil.
type ComputedHolding struct {
	Holding
	CMP              *float64 `json:"cmp"`
	Investment       float64  `json:"investment"`
	PresentValue     *float64 `json:"presentValue"`
	GainLoss         *float64 `json:"gainLoss"`
	PortfolioPercent *float64 `json:"portfolioPercent"`
	PERatio          *float64 `json:"peRatio"`
	Earnings         *float64 `json:"earnings"`
}
