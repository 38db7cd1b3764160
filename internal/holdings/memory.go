package holdings

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
)

// MemoryRepository keeps holdings in process memory, preserving insertion
// order. It is the default storage when no database is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	holdings []model.Holding
}

func NewMemoryRepository(seed []model.Holding) *MemoryRepository {
	holdings := make([]model.Holding, 0, len(seed))
	for _, h := range seed {
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		holdings = append(holdings, h)
	}
	return &MemoryRepository{holdings: holdings}
}

// DefaultHoldings is the built-in sample portfolio used when neither a
// workbook nor a database seeds the repository.
func DefaultHoldings() []model.Holding {
	return []model.Holding{
		{Symbol: "HDFCBANK.NS", Name: "HDFC Bank", Exchange: "NSE", Sector: "Financial Sector", PurchasePrice: 1490, Quantity: 50, PurchaseDate: "2023-01-15"},
		{Symbol: "BAJFINANCE.NS", Name: "Bajaj Finance", Exchange: "NSE", Sector: "Financial Sector", PurchasePrice: 6466, Quantity: 15, PurchaseDate: "2022-11-20"},
		{Symbol: "ICICIBANK.NS", Name: "ICICI Bank", Exchange: "NSE", Sector: "Financial Sector", PurchasePrice: 780, Quantity: 84, PurchaseDate: "2024-03-10"},
		{Symbol: "AFFLE.NS", Name: "Affle India", Exchange: "NSE", Sector: "Technology", PurchasePrice: 1151, Quantity: 50, PurchaseDate: "2023-06-01"},
		{Symbol: "LTIM.NS", Name: "LTI Mindtree", Exchange: "NSE", Sector: "Technology", PurchasePrice: 4775, Quantity: 16, PurchaseDate: "2024-01-05"},
		{Symbol: "KPITTECH.NS", Name: "KPIT Tech", Exchange: "NSE", Sector: "Technology", PurchasePrice: 672, Quantity: 61, PurchaseDate: "2023-09-22"},
		{Symbol: "DMART.NS", Name: "Dmart", Exchange: "NSE", Sector: "Consumer", PurchasePrice: 3777, Quantity: 27, PurchaseDate: "2022-10-01"},
		{Symbol: "TATACONSUM.NS", Name: "Tata Consumer", Exchange: "NSE", Sector: "Consumer", PurchasePrice: 845, Quantity: 90, PurchaseDate: "2023-04-18"},
		{Symbol: "PIDILITEIND.NS", Name: "Pidilite", Exchange: "NSE", Sector: "Consumer", PurchasePrice: 2376, Quantity: 36, PurchaseDate: "2024-02-28"},
		{Symbol: "TATAPOWER.NS", Name: "Tata Power", Exchange: "NSE", Sector: "Power", PurchasePrice: 224, Quantity: 225, PurchaseDate: "2023-07-11"},
		{Symbol: "SUZLON.NS", Name: "Suzlon", Exchange: "NSE", Sector: "Power", PurchasePrice: 44, Quantity: 450, PurchaseDate: "2024-01-20"},
		{Symbol: "POLYCAB.NS", Name: "Polycab", Exchange: "NSE", Sector: "Manufacturing", PurchasePrice: 2818, Quantity: 28, PurchaseDate: "2023-03-05"},
		{Symbol: "DEEPAKNTR.NS", Name: "Deepak Nitrite", Exchange: "NSE", Sector: "Chemicals", PurchasePrice: 2248, Quantity: 27, PurchaseDate: "2022-12-12"},
		{Symbol: "FINEORG.NS", Name: "Fine Organic", Exchange: "NSE", Sector: "Chemicals", PurchasePrice: 4284, Quantity: 16, PurchaseDate: "2023-08-08"},
		{Symbol: "SBILIFE.NS", Name: "SBI Life", Exchange: "NSE", Sector: "Financial Sector", PurchasePrice: 1197, Quantity: 49, PurchaseDate: "2024-04-25"},
	}
}

func (r *MemoryRepository) List(_ context.Context) ([]model.Holding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Holding, len(r.holdings))
	copy(out, r.holdings)
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (model.Holding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.holdings {
		if h.ID == id {
			return h, nil
		}
	}
	return model.Holding{}, ErrNotFound
}

func (r *MemoryRepository) Add(_ context.Context, h model.Holding) (model.Holding, error) {
	if err := h.Validate(); err != nil {
		return model.Holding{}, err
	}
	h.ID = uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.holdings = append(r.holdings, h)
	return h, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, h model.Holding) (model.Holding, error) {
	if err := h.Validate(); err != nil {
		return model.Holding{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.holdings {
		if r.holdings[i].ID == id {
			h.ID = id
			r.holdings[i] = h
			return h, nil
		}
	}
	return model.Holding{}, ErrNotFound
}

func (r *MemoryRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.holdings {
		if r.holdings[i].ID == id {
			r.holdings = append(r.holdings[:i], r.holdings[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) Symbols(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.holdings))
	symbols := make([]string, 0, len(r.holdings))
	for _, h := range r.holdings {
		if _, ok := seen[h.Symbol]; ok {
			continue
		}
		seen[h.Symbol] = struct{}{}
		symbols = append(symbols, h.Symbol)
	}
	return symbols, nil
}
