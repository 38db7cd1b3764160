package holdings

import (
	"context"
	"errors"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
)

var ErrNotFound = errors.New("holding not found")

// Repository owns the raw holding records. The data-freshness core only reads
// symbols and economic fields from it; mutation is exposed for the CRUD
// endpoints.
type Repository interface {
	List(ctx context.Context) ([]model.Holding, error)
	Get(ctx context.Context, id string) (model.Holding, error)
	Add(ctx context.Context, h model.Holding) (model.Holding, error)
	Update(ctx context.Context, id string, h model.Holding) (model.Holding, error)
	Remove(ctx context.Context, id string) error
	Symbols(ctx context.Context) ([]string, error)
}
