package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecommendationCandidate is an unsaved recommendation draft.
type RecommendationCandidate struct {
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description" validate:"required"`
	Category    string              `json:"category,omitempty"`
	Price       decimal.NullDecimal `json:"price"`
	UPC         string              `json:"upc,omitempty"`
}

// Recommendation is a complementary product suggested for a source product.
type Recommendation struct {
	SourceProductID    int64                   `json:"source_product_id"`
	RecommendedProduct RecommendationCandidate `json:"recommended_product"`
	// Fallback is set when the generation service could not be used.
	Fallback bool `json:"fallback"`
}

// RecommendationPairing is a persisted (source, recommended) product relationship.
type RecommendationPairing struct {
	ID                   int64     `json:"id"`
	SourceProductID      int64     `json:"source_product_id"`
	RecommendedProductID int64     `json:"recommended_product_id"`
	CreatedAt            time.Time `json:"created_at"`
}

// InitMeta initializes the pairing metadata.
func (p *RecommendationPairing) InitMeta() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

// SavedRecommendation is a pairing enriched with its products.
// Listings fill only the names; saves fill the full products.
type SavedRecommendation struct {
	RecommendationPairing
	SourceProductName      string   `json:"source_product_name"`
	RecommendedProductName string   `json:"recommended_product_name"`
	SourceProduct          *Product `json:"source_product,omitempty"`
	RecommendedProduct     *Product `json:"recommended_product,omitempty"`
}
