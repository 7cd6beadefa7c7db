package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmartinez/canje/internal/rawpayload"
	"github.com/jmartinez/canje/modules/postings/model"
	"github.com/jmartinez/canje/modules/postings/ports"
)

// PostingRepository implements ports.PostingRepository against Postgres.
type PostingRepository struct {
	pool *pgxpool.Pool
}

// NewPostingRepository creates a new posting repository.
func NewPostingRepository(pool *pgxpool.Pool) *PostingRepository {
	return &PostingRepository{pool: pool}
}

// Upsert inserts a posting, or leaves the existing row untouched if
// (source_id, external_id) already exists (spec §4.2 dedup rule: "the
// existing row wins; later runs never overwrite").
func (r *PostingRepository) Upsert(ctx context.Context, p *model.Posting) (ports.UpsertResult, error) {
	raw, err := json.Marshal(p.RawData)
	if err != nil {
		return ports.UpsertResult{}, err
	}

	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.IngestedAt.IsZero() {
		p.IngestedAt = now
	}

	query := `
		INSERT INTO postings (
			id, source_id, external_id, url, title, company, location, description,
			salary_raw, contract_type, posted_at, ingested_at, status, profile_tag,
			raw_data, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (source_id, external_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	var returnedID string
	var createdAt, updatedAt time.Time
	err = r.pool.QueryRow(ctx, query,
		p.ID, p.SourceID, p.ExternalID, p.URL, p.Title, p.Company, p.Location, p.Description,
		p.SalaryRaw, p.ContractType, p.PostedAt, p.IngestedAt, string(p.Status), p.ProfileTag,
		raw, p.CreatedAt, p.UpdatedAt,
	).Scan(&returnedID, &createdAt, &updatedAt)

	if err == nil {
		p.ID = returnedID
		p.CreatedAt = createdAt
		p.UpdatedAt = updatedAt
		return ports.UpsertResult{Posting: p, IsNew: true}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return ports.UpsertResult{}, err
	}

	existing, getErr := r.GetBySourceExternalID(ctx, p.SourceID, p.ExternalID)
	if getErr != nil {
		return ports.UpsertResult{}, getErr
	}
	return ports.UpsertResult{Posting: existing, IsNew: false}, nil
}

// GetByID retrieves a posting by id.
func (r *PostingRepository) GetByID(ctx context.Context, id string) (*model.Posting, error) {
	return r.scanOne(ctx, `
		SELECT id, source_id, external_id, url, title, company, location, description,
			salary_raw, contract_type, posted_at, ingested_at, status, profile_tag,
			raw_data, created_at, updated_at
		FROM postings WHERE id = $1`, id)
}

// GetBySourceExternalID retrieves a posting by its dedup key.
func (r *PostingRepository) GetBySourceExternalID(ctx context.Context, sourceID, externalID string) (*model.Posting, error) {
	return r.scanOne(ctx, `
		SELECT id, source_id, external_id, url, title, company, location, description,
			salary_raw, contract_type, posted_at, ingested_at, status, profile_tag,
			raw_data, created_at, updated_at
		FROM postings WHERE source_id = $1 AND external_id = $2`, sourceID, externalID)
}

func (r *PostingRepository) scanOne(ctx context.Context, query string, args ...any) (*model.Posting, error) {
	p := &model.Posting{}
	var rawBytes []byte
	var status string
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.SourceID, &p.ExternalID, &p.URL, &p.Title, &p.Company, &p.Location, &p.Description,
		&p.SalaryRaw, &p.ContractType, &p.PostedAt, &p.IngestedAt, &status, &p.ProfileTag,
		&rawBytes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPostingNotFound
		}
		return nil, err
	}
	p.Status = model.Status(status)
	if len(rawBytes) > 0 {
		var v rawpayload.Value
		if err := json.Unmarshal(rawBytes, &v); err != nil {
			return nil, err
		}
		p.RawData = v
	}
	return p, nil
}

// List returns postings for a source (or all sources if empty) filtered by status.
func (r *PostingRepository) List(ctx context.Context, sourceID string, status model.Status, limit, offset int) ([]*model.Posting, int, error) {
	where := "TRUE"
	args := []any{}
	idx := 1
	if sourceID != "" {
		where += " AND source_id = $" + strconv.Itoa(idx)
		args = append(args, sourceID)
		idx++
	}
	if status != "" {
		where += " AND status = $" + strconv.Itoa(idx)
		args = append(args, string(status))
		idx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM postings WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `
		SELECT id, source_id, external_id, url, title, company, location, description,
			salary_raw, contract_type, posted_at, ingested_at, status, profile_tag,
			raw_data, created_at, updated_at
		FROM postings WHERE ` + where + `
		ORDER BY ingested_at DESC LIMIT $` + strconv.Itoa(idx) + ` OFFSET $` + strconv.Itoa(idx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Posting
	for rows.Next() {
		p := &model.Posting{}
		var rawBytes []byte
		var status string
		if err := rows.Scan(
			&p.ID, &p.SourceID, &p.ExternalID, &p.URL, &p.Title, &p.Company, &p.Location, &p.Description,
			&p.SalaryRaw, &p.ContractType, &p.PostedAt, &p.IngestedAt, &status, &p.ProfileTag,
			&rawBytes, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		p.Status = model.Status(status)
		if len(rawBytes) > 0 {
			var v rawpayload.Value
			if err := json.Unmarshal(rawBytes, &v); err != nil {
				return nil, 0, err
			}
			p.RawData = v
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// UpdateSkipReason resolves spec §9's Open Question in favor of allowing a
// later run's eligibility verdict to flip an existing row's status and
// raw_data._skip_reason, while still never overwriting any other field
// (title/company/description stay exactly as first ingested).
func (r *PostingRepository) UpdateSkipReason(ctx context.Context, id string, status model.Status, reason string) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	var updated rawpayload.Value
	if reason == "" {
		updated = existing.RawData
	} else {
		updated = existing.RawData.WithSkipReason(reason)
	}
	raw, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, `
		UPDATE postings SET status = $2, raw_data = $3, updated_at = $4 WHERE id = $1`,
		id, string(status), raw, time.Now().UTC())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrPostingNotFound
	}
	return nil
}

// Unreferenced returns postings ingested before cutoff with no Application row.
func (r *PostingRepository) Unreferenced(ctx context.Context, cutoff time.Time, limit int) ([]*model.Posting, error) {
	query := `
		SELECT p.id, p.source_id, p.external_id, p.url, p.title, p.company, p.location, p.description,
			p.salary_raw, p.contract_type, p.posted_at, p.ingested_at, p.status, p.profile_tag,
			p.raw_data, p.created_at, p.updated_at
		FROM postings p
		LEFT JOIN applications a ON a.posting_id = p.id
		WHERE a.id IS NULL AND p.ingested_at < $1
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Posting
	for rows.Next() {
		p := &model.Posting{}
		var rawBytes []byte
		var status string
		if err := rows.Scan(
			&p.ID, &p.SourceID, &p.ExternalID, &p.URL, &p.Title, &p.Company, &p.Location, &p.Description,
			&p.SalaryRaw, &p.ContractType, &p.PostedAt, &p.IngestedAt, &status, &p.ProfileTag,
			&rawBytes, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Status = model.Status(status)
		if len(rawBytes) > 0 {
			var v rawpayload.Value
			if err := json.Unmarshal(rawBytes, &v); err != nil {
				return nil, err
			}
			p.RawData = v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete deletes a posting by id (retention sweep, after Unreferenced).
func (r *PostingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM postings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrPostingNotFound
	}
	return nil
}
