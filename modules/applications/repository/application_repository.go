package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmartinez/canje/modules/applications/model"
	"github.com/jmartinez/canje/modules/applications/ports"
)

// ApplicationRepository implements ports.ApplicationRepository against
// Postgres. The Transition method wraps the status write, field updates,
// and Event insert in a single transaction: the teacher's comment on
// ApplicationService.AddStage notes this multi-write "should be wrapped in
// a database transaction for atomicity" but stopped short of doing so; here
// it is load-bearing, so it is wrapped.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `
	id, posting_id, status, authorized_by_human, authorized_at, form_url,
	snapshot_path, confirmation_path, confirmation_signal, note,
	cv_path, cover_letter_text, quality_score, quality_ats, quality_relevance, quality_language,
	canonical_cv_snapshot, adapted_cv_snapshot, created_at, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	app.ID = uuid.New().String()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = model.StatusScraped
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO applications (
			id, posting_id, status, authorized_by_human, authorized_at, form_url,
			snapshot_path, confirmation_path, confirmation_signal, note,
			cv_path, cover_letter_text, quality_score, quality_ats, quality_relevance, quality_language,
			canonical_cv_snapshot, adapted_cv_snapshot, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		app.ID, app.PostingID, string(app.Status), app.AuthorizedByHuman, app.AuthorizedAt, app.FormURL,
		app.SnapshotPath, app.ConfirmationPath, app.ConfirmationSignal, app.Note,
		app.CVPath, app.CoverLetterText, app.QualityScore, app.QualityATS, app.QualityRelevance, app.QualityLanguage,
		jsonbOrNil(app.CanonicalCVSnapshot), jsonbOrNil(app.AdaptedCVSnapshot), app.CreatedAt, app.UpdatedAt,
	)
	return err
}

// jsonbOrNil returns nil for an empty snapshot so the column stores SQL NULL
// rather than an empty string cast to jsonb.
func jsonbOrNil(snapshot string) []byte {
	if snapshot == "" {
		return nil
	}
	return []byte(snapshot)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*model.Application, error) {
	return scanOne(ctx, r.pool, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
}

func (r *ApplicationRepository) GetByPostingID(ctx context.Context, postingID string) (*model.Application, error) {
	return scanOne(ctx, r.pool, `SELECT `+applicationColumns+` FROM applications WHERE posting_id = $1`, postingID)
}

type rowScanner interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanOne(ctx context.Context, q rowScanner, query string, args ...any) (*model.Application, error) {
	a := &model.Application{}
	var status string
	var canonicalSnapshot, adaptedSnapshot []byte
	err := q.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.PostingID, &status, &a.AuthorizedByHuman, &a.AuthorizedAt, &a.FormURL,
		&a.SnapshotPath, &a.ConfirmationPath, &a.ConfirmationSignal, &a.Note,
		&a.CVPath, &a.CoverLetterText, &a.QualityScore, &a.QualityATS, &a.QualityRelevance, &a.QualityLanguage,
		&canonicalSnapshot, &adaptedSnapshot, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrApplicationNotFound
		}
		return nil, err
	}
	a.Status = model.Status(status)
	a.CanonicalCVSnapshot = string(canonicalSnapshot)
	a.AdaptedCVSnapshot = string(adaptedSnapshot)
	return a, nil
}

func (r *ApplicationRepository) List(ctx context.Context, status model.Status, limit, offset int) ([]*model.Application, int, error) {
	where := "TRUE"
	args := []any{}
	idx := 1
	if status != "" {
		where += " AND status = $" + strconv.Itoa(idx)
		args = append(args, string(status))
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM applications WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `
		SELECT ` + applicationColumns + `
		FROM applications WHERE ` + where + `
		ORDER BY updated_at DESC LIMIT $` + strconv.Itoa(idx) + ` OFFSET $` + strconv.Itoa(idx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Application
	for rows.Next() {
		a := &model.Application{}
		var status string
		var canonicalSnapshot, adaptedSnapshot []byte
		if err := rows.Scan(
			&a.ID, &a.PostingID, &status, &a.AuthorizedByHuman, &a.AuthorizedAt, &a.FormURL,
			&a.SnapshotPath, &a.ConfirmationPath, &a.ConfirmationSignal, &a.Note,
			&a.CVPath, &a.CoverLetterText, &a.QualityScore, &a.QualityATS, &a.QualityRelevance, &a.QualityLanguage,
			&canonicalSnapshot, &adaptedSnapshot, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		a.Status = model.Status(status)
		a.CanonicalCVSnapshot = string(canonicalSnapshot)
		a.AdaptedCVSnapshot = string(adaptedSnapshot)
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Transition is the single gate spec §4.3 requires: status write + field
// updates + Event insert, atomically.
func (r *ApplicationRepository) Transition(ctx context.Context, id string, to model.Status, actor string, fields ports.FieldUpdates) (*model.Application, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := scanOne(ctx, tx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(current.Status, to) {
		return nil, model.ErrInvalidTransition
	}

	now := time.Now().UTC()
	applyFieldDefaults(current, fields)

	_, err = tx.Exec(ctx, `
		UPDATE applications SET status = $2, authorized_by_human = $3, authorized_at = $4,
			form_url = $5, snapshot_path = $6, confirmation_path = $7, confirmation_signal = $8,
			note = $9, cv_path = $10, cover_letter_text = $11, quality_score = $12, quality_ats = $13,
			quality_relevance = $14, quality_language = $15, canonical_cv_snapshot = $16,
			adapted_cv_snapshot = $17, updated_at = $18
		WHERE id = $1`,
		id, string(to), current.AuthorizedByHuman, current.AuthorizedAt, current.FormURL,
		current.SnapshotPath, current.ConfirmationPath, current.ConfirmationSignal, current.Note,
		current.CVPath, current.CoverLetterText, current.QualityScore, current.QualityATS,
		current.QualityRelevance, current.QualityLanguage, jsonbOrNil(current.CanonicalCVSnapshot),
		jsonbOrNil(current.AdaptedCVSnapshot), now,
	)
	if err != nil {
		return nil, err
	}

	eventID := uuid.New().String()
	_, err = tx.Exec(ctx, `
		INSERT INTO application_events (id, application_id, old_status, new_status, actor, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		eventID, id, string(current.Status), string(to), actor, now,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	current.Status = to
	current.UpdatedAt = now
	return current, nil
}

func applyFieldDefaults(a *model.Application, f ports.FieldUpdates) {
	if f.AuthorizedByHuman != nil {
		a.AuthorizedByHuman = *f.AuthorizedByHuman
	}
	if f.AuthorizedAt != nil {
		a.AuthorizedAt = f.AuthorizedAt
	}
	if f.FormURL != nil {
		a.FormURL = *f.FormURL
	}
	if f.SnapshotPath != nil {
		a.SnapshotPath = *f.SnapshotPath
	}
	if f.ConfirmationPath != nil {
		a.ConfirmationPath = *f.ConfirmationPath
	}
	if f.ConfirmationSignal != nil {
		a.ConfirmationSignal = *f.ConfirmationSignal
	}
	if f.CVPath != nil {
		a.CVPath = *f.CVPath
	}
	if f.CoverLetterText != nil {
		a.CoverLetterText = *f.CoverLetterText
	}
	if f.QualityScore != nil {
		a.QualityScore = *f.QualityScore
	}
	if f.QualityATS != nil {
		a.QualityATS = *f.QualityATS
	}
	if f.QualityRelevance != nil {
		a.QualityRelevance = *f.QualityRelevance
	}
	if f.QualityLanguage != nil {
		a.QualityLanguage = *f.QualityLanguage
	}
	if f.CanonicalCVSnapshot != nil {
		a.CanonicalCVSnapshot = *f.CanonicalCVSnapshot
	}
	if f.AdaptedCVSnapshot != nil {
		a.AdaptedCVSnapshot = *f.AdaptedCVSnapshot
	}
	if f.Note != nil {
		a.Note = *f.Note
	}
}

func (r *ApplicationRepository) Events(ctx context.Context, applicationID string) ([]*model.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, application_id, old_status, new_status, actor, created_at
		FROM application_events WHERE application_id = $1 ORDER BY created_at ASC`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		e := &model.Event{}
		var oldStatus, newStatus string
		if err := rows.Scan(&e.ID, &e.ApplicationID, &oldStatus, &newStatus, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.OldStatus = model.Status(oldStatus)
		e.NewStatus = model.Status(newStatus)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountForCompanySince implements the per-company rate-limit policy check
// (spec §4.3): applications joined through their posting's company, whose
// status is not in the exempt terminal set.
func (r *ApplicationRepository) CountForCompanySince(ctx context.Context, companyLower string, cutoff time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM applications a
		JOIN postings p ON p.id = a.posting_id
		WHERE LOWER(p.company) = $1
			AND a.created_at >= $2
			AND a.status NOT IN ('rejected', 'withdrawn', 'expired')`,
		companyLower, cutoff,
	).Scan(&count)
	return count, err
}
