package holdings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/config"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/model"
)

const (
	_queryHoldings = "SELECT id, symbol, name, exchange, sector, purchase_price, quantity, purchase_date FROM holdings ORDER BY purchase_date"
	_queryHolding  = "SELECT id, symbol, name, exchange, sector, purchase_price, quantity, purchase_date FROM holdings WHERE id = $1"
	_querySymbols  = "SELECT DISTINCT symbol FROM holdings"

	_insertHolding = `INSERT INTO holdings (
							id,
							symbol,
							name,
							exchange,
							sector,
							purchase_price,
							quantity,
							purchase_date
						) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_updateHolding = `UPDATE holdings SET
							symbol = $1,
							name = $2,
							exchange = $3,
							sector = $4,
							purchase_price = $5,
							quantity = $6,
							purchase_date = $7
						WHERE id = $8`
	_deleteHolding = "DELETE FROM holdings WHERE id = $1"
)

// PostgresRepository persists holdings in postgres.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(cfg config.PostgresConfig) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", cfg.String())
	if err != nil {
		return nil, fmt.Errorf("%w: can't connect to postgres", err)
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]model.Holding, error) {
	var holdings []model.Holding
	if err := r.db.SelectContext(ctx, &holdings, _queryHoldings); err != nil {
		return nil, fmt.Errorf("%w: can't query holdings", err)
	}
	return holdings, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (model.Holding, error) {
	var h model.Holding
	if err := r.db.GetContext(ctx, &h, _queryHolding, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Holding{}, ErrNotFound
		}
		return model.Holding{}, fmt.Errorf("%w: can't query holding", err)
	}
	return h, nil
}

func (r *PostgresRepository) Add(ctx context.Context, h model.Holding) (model.Holding, error) {
	if err := h.Validate(); err != nil {
		return model.Holding{}, err
	}
	h.ID = uuid.NewString()

	if _, err := r.db.ExecContext(ctx, _insertHolding,
		h.ID,
		h.Symbol,
		h.Name,
		h.Exchange,
		h.Sector,
		h.PurchasePrice,
		h.Quantity,
		h.PurchaseDate,
	); err != nil {
		return model.Holding{}, fmt.Errorf("%w: can't insert holding", err)
	}
	return h, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, h model.Holding) (model.Holding, error) {
	if err := h.Validate(); err != nil {
		return model.Holding{}, err
	}

	res, err := r.db.ExecContext(ctx, _updateHolding,
		h.Symbol,
		h.Name,
		h.Exchange,
		h.Sector,
		h.PurchasePrice,
		h.Quantity,
		h.PurchaseDate,
		id,
	)
	if err != nil {
		return model.Holding{}, fmt.Errorf("%w: can't update holding", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Holding{}, ErrNotFound
	}

	h.ID = id
	return h, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, _deleteHolding, id)
	if err != nil {
		return fmt.Errorf("%w: can't delete holding", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Symbols(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := r.db.SelectContext(ctx, &symbols, _querySymbols); err != nil {
		return nil, fmt.Errorf("%w: can't query symbols", err)
	}
	return symbols, nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
