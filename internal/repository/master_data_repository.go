package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/persistence"
)

// MasterDataRepository persists reference table rows.
type MasterDataRepository interface {
	ListByType(ctx context.Context, t domain.MasterType) ([]domain.MasterItem, error)
	GetByID(ctx context.Context, id string) (*domain.MasterItem, error)
	Create(ctx context.Context, item *domain.MasterItem) error
	CreateMany(ctx context.Context, items []*domain.MasterItem) error
	Update(ctx context.Context, item *domain.MasterItem) error
	Delete(ctx context.Context, id string) error
}

type masterDataRepository struct {
	pool *pgxpool.Pool
}

// NewMasterDataRepository constructs repository.
func NewMasterDataRepository(pool *pgxpool.Pool) MasterDataRepository {
	return &masterDataRepository{pool: pool}
}

const insertMasterItem = `
        INSERT INTO master_data (type, code, name, description)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`

func (r *masterDataRepository) ListByType(ctx context.Context, t domain.MasterType) ([]domain.MasterItem, error) {
	const query = `
        SELECT id, type, code, name, description, created_at, updated_at
        FROM master_data WHERE type=$1 ORDER BY created_at ASC, code ASC`
	rows, err := r.pool.Query(ctx, query, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.MasterItem{}
	for rows.Next() {
		var item domain.MasterItem
		if err := scanMasterItem(rows, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *masterDataRepository) GetByID(ctx context.Context, id string) (*domain.MasterItem, error) {
	const query = `
        SELECT id, type, code, name, description, created_at, updated_at
        FROM master_data WHERE id=$1`
	var item domain.MasterItem
	if err := scanMasterItem(r.pool.QueryRow(ctx, query, id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *masterDataRepository) Create(ctx context.Context, item *domain.MasterItem) error {
	return r.pool.QueryRow(ctx, insertMasterItem, item.Type, item.Code, item.Name, item.Description).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *masterDataRepository) CreateMany(ctx context.Context, items []*domain.MasterItem) error {
	if len(items) == 0 {
		return nil
	}
	return persistence.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, item := range items {
			if err := tx.QueryRow(ctx, insertMasterItem, item.Type, item.Code, item.Name, item.Description).
				Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *masterDataRepository) Update(ctx context.Context, item *domain.MasterItem) error {
	const query = `UPDATE master_data SET name=$1, description=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, item.Name, item.Description, item.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *masterDataRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM master_data WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanMasterItem(row pgx.Row, item *domain.MasterItem) error {
	return row.Scan(&item.ID, &item.Type, &item.Code, &item.Name, &item.Description, &item.CreatedAt, &item.UpdatedAt)
}
