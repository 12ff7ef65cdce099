package sql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationRepository_InsertOrGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecommendationRepository(db)
	ctx := context.Background()

	t.Run("new pairing is inserted", func(t *testing.T) {
		now := time.Now()
		mock.ExpectPrepare("INSERT INTO saved_recommendations").
			ExpectQuery().
			WithArgs(int64(1), int64(2), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), now))

		pairing, created, err := repo.InsertOrGet(ctx, &model.RecommendationPairing{SourceProductID: 1, RecommendedProductID: 2})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int64(10), pairing.ID)
		assert.Equal(t, int64(1), pairing.SourceProductID)
		assert.Equal(t, int64(2), pairing.RecommendedProductID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing pairing is returned instead of failing", func(t *testing.T) {
		existingAt := time.Now().Add(-time.Hour)
		mock.ExpectPrepare("INSERT INTO saved_recommendations").
			ExpectQuery().
			WithArgs(int64(1), int64(2), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))
		mock.ExpectQuery("SELECT id, source_product_id, recommended_product_id, created_at FROM saved_recommendations").
			WithArgs(int64(1), int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "source_product_id", "recommended_product_id", "created_at"}).
				AddRow(int64(10), int64(1), int64(2), existingAt))

		pairing, created, err := repo.InsertOrGet(ctx, &model.RecommendationPairing{SourceProductID: 1, RecommendedProductID: 2})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(10), pairing.ID)
		assert.Equal(t, existingAt, pairing.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing product is not found", func(t *testing.T) {
		mock.ExpectPrepare("INSERT INTO saved_recommendations").
			ExpectQuery().
			WillReturnError(&pgconn.PgError{Code: "23503"})

		_, _, err := repo.InsertOrGet(ctx, &model.RecommendationPairing{SourceProductID: 1, RecommendedProductID: 99})
		require.Error(t, err)
		assert.True(t, apperr.IsNotFound(err))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecommendationRepository_ListSaved(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	newer := time.Now()
	older := newer.Add(-time.Minute)
	mock.ExpectQuery("SELECT sr.id, .* FROM saved_recommendations sr JOIN products sp .* ORDER BY sr.created_at DESC, sr.id DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "source_product_id", "source_name", "recommended_product_id", "recommended_name", "created_at"}).
			AddRow(int64(2), int64(1), "Widget", int64(3), "Widget Stand", newer).
			AddRow(int64(1), int64(1), "Widget", int64(2), "Widget Case", older))

	saved, err := NewRecommendationRepository(db).ListSaved(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Widget Stand", saved[0].RecommendedProductName)
	assert.Equal(t, "Widget", saved[1].SourceProductName)
	assert.Nil(t, saved[0].SourceProduct)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationRepository_DeleteByProductID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPrepare("DELETE FROM saved_recommendations WHERE source_product_id = \\$1 OR recommended_product_id = \\$1").
		ExpectExec().
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := NewRecommendationRepository(db).DeleteByProductID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
