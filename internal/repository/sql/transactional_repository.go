package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iyhunko/product-catalog/internal/model"
)

// TransactionalRepository provides methods to work with multiple repositories in a single transaction
type TransactionalRepository struct {
	db *sql.DB
}

// NewTransactionalRepository creates a new TransactionalRepository
func NewTransactionalRepository(db *sql.DB) *TransactionalRepository {
	return &TransactionalRepository{db: db}
}

// withinTx runs fn with repositories bound to one transaction. Any error rolls back every step.
func (tr *TransactionalRepository) withinTx(ctx context.Context, fn func(products *ProductRepository, recs *RecommendationRepository) error) error {
	tx, err := tr.db.BeginTx(ctx, nil)
	if err != nil {
		return upstream("begin transaction", err)
	}

	productRepo := &ProductRepository{db: tr.db, txn: tx}
	recRepo := &RecommendationRepository{db: tr.db, txn: tx}

	if err := fn(productRepo, recRepo); err != nil {
		// a cancelled context already rolled the transaction back
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return upstream("commit transaction", err)
	}
	return nil
}

// DeleteProductCascade deletes every pairing referencing the product, then the product itself.
// A missing product yields *apperr.NotFoundError and leaves the pairings untouched.
func (tr *TransactionalRepository) DeleteProductCascade(ctx context.Context, productID int64) error {
	return tr.withinTx(ctx, func(products *ProductRepository, recs *RecommendationRepository) error {
		if _, err := recs.DeleteByProductID(ctx, productID); err != nil {
			return fmt.Errorf("failed to delete pairings: %w", err)
		}
		if err := products.DeleteByID(ctx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

// CreateRecommendedProduct creates product and records the (sourceID, product) pairing atomically.
func (tr *TransactionalRepository) CreateRecommendedProduct(ctx context.Context, sourceID int64, product *model.Product) (*model.Product, *model.RecommendationPairing, error) {
	var pairing *model.RecommendationPairing
	err := tr.withinTx(ctx, func(products *ProductRepository, recs *RecommendationRepository) error {
		created, err := products.Create(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		pairing, _, err = recs.InsertOrGet(ctx, &model.RecommendationPairing{
			SourceProductID:      sourceID,
			RecommendedProductID: created.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to record pairing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return product, pairing, nil
}

// PairProducts records a pairing between two existing products, returning the stored row
// when the pair already exists.
func (tr *TransactionalRepository) PairProducts(ctx context.Context, pairing *model.RecommendationPairing) (*model.RecommendationPairing, error) {
	var stored *model.RecommendationPairing
	err := tr.withinTx(ctx, func(_ *ProductRepository, recs *RecommendationRepository) error {
		var err error
		stored, _, err = recs.InsertOrGet(ctx, pairing)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}
