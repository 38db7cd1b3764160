// Package valuation merges holdings with fetched market data into per-holding
// and per-portfolio figures. Everything here is a pure function of its inputs;
// nothing is cached or stored.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
)

// Compute derives the full portfolio view. Portfolio percentages are computed
// against the total investment of the input set; they sum to 100 whenever the
// total is nonzero.
func Compute(holdings []model.Holding, quotes map[string]model.Quote, metrics map[string]model.Metrics) []model.ComputedHolding {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(investment(h))
	}

	out := make([]model.ComputedHolding, 0, len(holdings))
	for _, h := range holdings {
		c := ComputeOne(h, quotes[h.Symbol], metrics[h.Symbol])
		if total.IsPositive() {
			pct := investment(h).Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
			c.PortfolioPercent = &pct
		}
		out = append(out, c)
	}
	return out
}

// ComputeOne derives a single holding's figures. PortfolioPercent stays nil:
// it is only defined in the context of the full holdings set.
func ComputeOne(h model.Holding, quote model.Quote, metrics model.Metrics) model.ComputedHolding {
	inv := investment(h)

	c := model.ComputedHolding{
		Holding:    h,
		CMP:        quote.CMP,
		Investment: inv.InexactFloat64(),
		PERatio:    metrics.PERatio,
		Earnings:   metrics.Earnings,
	}

	if quote.CMP != nil {
		pv := decimal.NewFromFloat(*quote.CMP).Mul(decimal.NewFromInt(h.Quantity))
		presentValue := pv.InexactFloat64()
		gainLoss := pv.Sub(inv).InexactFloat64()
		c.PresentValue = &presentValue
		c.GainLoss = &gainLoss
	}

	return c
}

// GroupBySector partitions computed holdings by sector, preserving per-holding
// fields and order within each sector. Sector totals are the presentation
// layer's business.
func GroupBySector(computed []model.ComputedHolding) map[string][]model.ComputedHolding {
	grouped := make(map[string][]model.ComputedHolding)
	for _, c := range computed {
		grouped[c.Sector] = append(grouped[c.Sector], c)
	}
	return grouped
}

func investment(h model.Holding) decimal.Decimal {
	return decimal.NewFromFloat(h.PurchasePrice).Mul(decimal.NewFromInt(h.Quantity))
}
