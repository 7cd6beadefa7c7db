package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmartinez/canje/modules/catalogue/model"
)

// CatalogueRepository implements ports.CatalogueRepository against Postgres.
type CatalogueRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogueRepository(pool *pgxpool.Pool) *CatalogueRepository {
	return &CatalogueRepository{pool: pool}
}

func (r *CatalogueRepository) Create(ctx context.Context, entry *model.Entry) error {
	entry.ID = uuid.New().String()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	extra, err := json.Marshal(entry.ExtraConfig)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO source_catalogue (id, company, url, adapter_kind, selector, extra_config, enabled, profile, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		entry.ID, entry.Company, entry.URL, entry.AdapterKind, entry.Selector, extra, entry.Enabled, entry.Profile,
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateEntry
		}
	}
	return err
}

func (r *CatalogueRepository) GetByID(ctx context.Context, id string) (*model.Entry, error) {
	return scanOne(ctx, r.pool, `
		SELECT id, company, url, adapter_kind, selector, extra_config, enabled, profile, created_at, updated_at
		FROM source_catalogue WHERE id = $1`, id)
}

func scanOne(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (*model.Entry, error) {
	e := &model.Entry{}
	var extra []byte
	err := pool.QueryRow(ctx, query, args...).Scan(
		&e.ID, &e.Company, &e.URL, &e.AdapterKind, &e.Selector, &extra, &e.Enabled, &e.Profile, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEntryNotFound
		}
		return nil, err
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &e.ExtraConfig); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (r *CatalogueRepository) List(ctx context.Context, enabledOnly bool) ([]*model.Entry, error) {
	query := `
		SELECT id, company, url, adapter_kind, selector, extra_config, enabled, profile, created_at, updated_at
		FROM source_catalogue`
	if enabledOnly {
		query += ` WHERE enabled = TRUE`
	}
	query += ` ORDER BY company`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Entry
	for rows.Next() {
		e := &model.Entry{}
		var extra []byte
		if err := rows.Scan(&e.ID, &e.Company, &e.URL, &e.AdapterKind, &e.Selector, &extra, &e.Enabled, &e.Profile, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &e.ExtraConfig); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *CatalogueRepository) Update(ctx context.Context, entry *model.Entry) error {
	entry.UpdatedAt = time.Now().UTC()
	extra, err := json.Marshal(entry.ExtraConfig)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, `
		UPDATE source_catalogue SET company=$2, url=$3, adapter_kind=$4, selector=$5,
			extra_config=$6, enabled=$7, profile=$8, updated_at=$9
		WHERE id=$1`,
		entry.ID, entry.Company, entry.URL, entry.AdapterKind, entry.Selector, extra, entry.Enabled, entry.Profile, entry.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrEntryNotFound
	}
	return nil
}

func (r *CatalogueRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM source_catalogue WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrEntryNotFound
	}
	return nil
}
