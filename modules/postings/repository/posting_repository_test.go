package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmartinez/canje/internal/rawpayload"
	"github.com/jmartinez/canje/modules/postings/model"
)

func newTestPosting() *model.Posting {
	return &model.Posting{
		SourceID:   "acme-careers",
		ExternalID: "123",
		Title:      "Backend Engineer",
		Company:    "Acme",
		Status:     model.StatusScraped,
		RawData:    rawpayload.Structured(map[string]any{}),
	}
}

func TestPostingRepository_Upsert(t *testing.T) {
	t.Run("inserts a new posting", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := &PostingRepository{pool: mock}
		p := newTestPosting()

		now := time.Now().UTC()
		mock.ExpectQuery("INSERT INTO postings").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("posting-1", now, now))

		result, err := repo.Upsert(context.Background(), p)

		require.NoError(t, err)
		assert.True(t, result.IsNew)
		assert.Equal(t, "posting-1", result.Posting.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second run of the same (source_id, external_id) is not new", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := &PostingRepository{pool: mock}
		p := newTestPosting()

		// ON CONFLICT DO NOTHING RETURNING produces no row.
		mock.ExpectQuery("INSERT INTO postings").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}))

		now := time.Now().UTC()
		mock.ExpectQuery("SELECT (.|\n)* FROM postings WHERE source_id = \\$1 AND external_id = \\$2").
			WithArgs(p.SourceID, p.ExternalID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "source_id", "external_id", "url", "title", "company", "location", "description",
				"salary_raw", "contract_type", "posted_at", "ingested_at", "status", "profile_tag",
				"raw_data", "created_at", "updated_at",
			}).AddRow(
				"posting-1", p.SourceID, p.ExternalID, "", p.Title, p.Company, "", "",
				"", "", nil, now, "scraped", nil,
				[]byte(`{"kind":"structured","structured":{}}`), now, now,
			))

		result, err := repo.Upsert(context.Background(), p)

		require.NoError(t, err)
		assert.False(t, result.IsNew)
		assert.Equal(t, "posting-1", result.Posting.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
