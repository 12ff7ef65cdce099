package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

// RecommendationStore persists accepted recommendations.
//
// Saving a candidate always creates a new product: candidates are not de-duplicated, so two
// saves for the same source produce two products with two independent pairings. Only the
// pairing itself is idempotent.
type RecommendationStore struct {
	products repository.ProductRepository
	recs     repository.RecommendationRepository
	tx       repository.Transactor
	upcs     *UPCGenerator
	validate *validator.Validate
}

// NewRecommendationStore creates a new RecommendationStore.
func NewRecommendationStore(products repository.ProductRepository, recs repository.RecommendationRepository, tx repository.Transactor, upcs *UPCGenerator) *RecommendationStore {
	return &RecommendationStore{
		products: products,
		recs:     recs,
		tx:       tx,
		upcs:     upcs,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SaveRecommendedProduct creates the candidate as a product and pairs it with the source product.
// The candidate's UPC is ignored and regenerated; a UPC collision is retried once with a new code.
func (s *RecommendationStore) SaveRecommendedProduct(ctx context.Context, sourceID int64, candidate model.RecommendationCandidate) (*model.SavedRecommendation, error) {
	if err := s.validateCandidate(candidate); err != nil {
		return nil, err
	}

	source, err := s.products.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        strings.TrimSpace(candidate.Name),
		Description: strings.TrimSpace(candidate.Description),
		Category:    strings.TrimSpace(candidate.Category),
		Price:       candidate.Price.Decimal,
		UPC:         s.upcs.Next(),
	}
	if product.Category == "" {
		product.Category = source.Category
	}
	if !candidate.Price.Valid {
		product.Price = companionPrice(source)
	}

	created, pairing, err := s.tx.CreateRecommendedProduct(ctx, sourceID, product)
	if apperr.IsConflictOn(err, "upc") {
		slog.Warn("UPC collision while saving recommendation, retrying", slog.String("upc", product.UPC))
		product.ID = 0
		product.UPC = s.upcs.Next()
		created, pairing, err = s.tx.CreateRecommendedProduct(ctx, sourceID, product)
	}
	if err != nil {
		return nil, err
	}

	return &model.SavedRecommendation{
		RecommendationPairing:  *pairing,
		SourceProductName:      source.Name,
		RecommendedProductName: created.Name,
		SourceProduct:          source,
		RecommendedProduct:     created,
	}, nil
}

// SaveRecommendation pairs two existing products. Saving the same pair again returns the stored pairing.
func (s *RecommendationStore) SaveRecommendation(ctx context.Context, sourceID, recommendedID int64) (*model.SavedRecommendation, error) {
	if sourceID == recommendedID {
		return nil, apperr.Validation("recommended_product_id", "must differ from source_product_id")
	}

	source, err := s.products.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	recommended, err := s.products.FindByID(ctx, recommendedID)
	if err != nil {
		return nil, err
	}

	pairing, err := s.tx.PairProducts(ctx, &model.RecommendationPairing{
		SourceProductID:      sourceID,
		RecommendedProductID: recommendedID,
	})
	if err != nil {
		return nil, err
	}

	return &model.SavedRecommendation{
		RecommendationPairing:  *pairing,
		SourceProductName:      source.Name,
		RecommendedProductName: recommended.Name,
		SourceProduct:          source,
		RecommendedProduct:     recommended,
	}, nil
}

// GetSavedRecommendations lists every pairing with both product names, newest first.
func (s *RecommendationStore) GetSavedRecommendations(ctx context.Context) ([]*model.SavedRecommendation, error) {
	return s.recs.ListSaved(ctx)
}

func (s *RecommendationStore) validateCandidate(candidate model.RecommendationCandidate) error {
	if candidate.Price.Valid && candidate.Price.Decimal.IsNegative() {
		return apperr.Validation("price", "must not be negative")
	}
	err := s.validate.Struct(candidate)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperr.Validation(strings.ToLower(fe.Field()), fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
	}
	return apperr.Validation("candidate", err.Error())
}
