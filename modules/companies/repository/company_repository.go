package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmartinez/canje/modules/companies/model"
)

// BlocklistRepository implements ports.BlocklistRepository.
type BlocklistRepository struct {
	pool *pgxpool.Pool
}

func NewBlocklistRepository(pool *pgxpool.Pool) *BlocklistRepository {
	return &BlocklistRepository{pool: pool}
}

func (r *BlocklistRepository) IsBlocklisted(ctx context.Context, companyLower string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM company_blocklist WHERE LOWER(company) = $1)`, companyLower,
	).Scan(&exists)
	return exists, err
}

func (r *BlocklistRepository) Add(ctx context.Context, entry *model.BlocklistEntry) error {
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO company_blocklist (id, company, reason, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company) DO UPDATE SET reason = EXCLUDED.reason`,
		entry.ID, entry.Company, entry.Reason, entry.CreatedAt,
	)
	return err
}

func (r *BlocklistRepository) Remove(ctx context.Context, companyLower string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM company_blocklist WHERE LOWER(company) = $1`, companyLower)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrBlocklistEntryNotFound
	}
	return nil
}

func (r *BlocklistRepository) List(ctx context.Context) ([]*model.BlocklistEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company, reason, created_at FROM company_blocklist ORDER BY company`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.BlocklistEntry
	for rows.Next() {
		e := &model.BlocklistEntry{}
		if err := rows.Scan(&e.ID, &e.Company, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RateLimitRepository implements ports.RateLimitRepository.
type RateLimitRepository struct {
	pool *pgxpool.Pool
}

func NewRateLimitRepository(pool *pgxpool.Pool) *RateLimitRepository {
	return &RateLimitRepository{pool: pool}
}

func (r *RateLimitRepository) RuleFor(ctx context.Context, companyLower string) (*model.ApplicationRule, error) {
	rule := &model.ApplicationRule{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, company, max_per_period, period_days, created_at, updated_at
		FROM company_application_rules WHERE LOWER(company) = $1`, companyLower,
	).Scan(&rule.ID, &rule.Company, &rule.MaxPerPeriod, &rule.PeriodDays, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rule, nil
}

func (r *RateLimitRepository) Upsert(ctx context.Context, rule *model.ApplicationRule) error {
	now := time.Now().UTC()
	if rule.ID == "" {
		rule.ID = uuid.New().String()
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO company_application_rules (id, company, max_per_period, period_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company) DO UPDATE SET
			max_per_period = EXCLUDED.max_per_period,
			period_days = EXCLUDED.period_days,
			updated_at = EXCLUDED.updated_at`,
		rule.ID, rule.Company, rule.MaxPerPeriod, rule.PeriodDays, rule.CreatedAt, rule.UpdatedAt,
	)
	return err
}

func (r *RateLimitRepository) List(ctx context.Context) ([]*model.ApplicationRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company, max_per_period, period_days, created_at, updated_at
		FROM company_application_rules ORDER BY company`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ApplicationRule
	for rows.Next() {
		rule := &model.ApplicationRule{}
		if err := rows.Scan(&rule.ID, &rule.Company, &rule.MaxPerPeriod, &rule.PeriodDays, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}
