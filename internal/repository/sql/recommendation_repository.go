package sql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/model"
)

// RecommendationRepository implements repository.RecommendationRepository on PostgreSQL.
type RecommendationRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewRecommendationRepository creates a new RecommendationRepository instance.
func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

func (r *RecommendationRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// InsertOrGet stores the pairing. When the same (source, recommended) pair is already
// stored, the existing row is returned instead and created is false.
func (r *RecommendationRepository) InsertOrGet(ctx context.Context, pairing *model.RecommendationPairing) (*model.RecommendationPairing, bool, error) {
	pairing.InitMeta()

	query := `INSERT INTO saved_recommendations (source_product_id, recommended_product_id, created_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (source_product_id, recommended_product_id) DO NOTHING
	          RETURNING id, created_at`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, false, upstream("prepare insert statement", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, pairing.SourceProductID, pairing.RecommendedProductID, pairing.CreatedAt).
		Scan(&pairing.ID, &pairing.CreatedAt)
	switch {
	case err == nil:
		return pairing, true, nil
	case errors.Is(err, sql.ErrNoRows):
		// conflict: somebody stored the same pair first
	case isForeignKeyViolation(err):
		return nil, false, apperr.NotFound("referenced product", "")
	default:
		return nil, false, upstream("insert recommendation", err)
	}

	existing, err := r.find(ctx, pairing.SourceProductID, pairing.RecommendedProductID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *RecommendationRepository) find(ctx context.Context, sourceID, recommendedID int64) (*model.RecommendationPairing, error) {
	query := `SELECT id, source_product_id, recommended_product_id, created_at
	          FROM saved_recommendations
	          WHERE source_product_id = $1 AND recommended_product_id = $2`

	var p model.RecommendationPairing
	err := r.getExecutor().QueryRowContext(ctx, query, sourceID, recommendedID).
		Scan(&p.ID, &p.SourceProductID, &p.RecommendedProductID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("recommendation", "")
		}
		return nil, upstream("query recommendation", err)
	}
	return &p, nil
}

// ListSaved returns every pairing with both product names, newest first.
func (r *RecommendationRepository) ListSaved(ctx context.Context) ([]*model.SavedRecommendation, error) {
	query := `SELECT sr.id, sr.source_product_id, sp.name, sr.recommended_product_id, rp.name, sr.created_at
	          FROM saved_recommendations sr
	          JOIN products sp ON sp.id = sr.source_product_id
	          JOIN products rp ON rp.id = sr.recommended_product_id
	          ORDER BY sr.created_at DESC, sr.id DESC`

	rows, err := r.getExecutor().QueryContext(ctx, query)
	if err != nil {
		return nil, upstream("query saved recommendations", err)
	}
	defer rows.Close()

	var saved []*model.SavedRecommendation
	for rows.Next() {
		var s model.SavedRecommendation
		err := rows.Scan(&s.ID, &s.SourceProductID, &s.SourceProductName, &s.RecommendedProductID, &s.RecommendedProductName, &s.CreatedAt)
		if err != nil {
			return nil, upstream("scan saved recommendation", err)
		}
		saved = append(saved, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, upstream("iterate saved recommendations", err)
	}
	return saved, nil
}

// DeleteByProductID removes every pairing where the product is source or recommended.
func (r *RecommendationRepository) DeleteByProductID(ctx context.Context, productID int64) (int64, error) {
	query := `DELETE FROM saved_recommendations WHERE source_product_id = $1 OR recommended_product_id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return 0, upstream("prepare delete statement", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, productID)
	if err != nil {
		return 0, upstream("delete recommendations", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, upstream("get rows affected", err)
	}
	return deleted, nil
}
