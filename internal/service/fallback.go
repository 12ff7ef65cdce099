package service

import (
	"fmt"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/shopspring/decimal"
)

const defaultPromptCategory = "General"

var fallbackPriceRatio = decimal.RequireFromString("0.8")

// Fallback builds drafts when the generation service fails or returns unusable output.
type Fallback interface {
	RandomProduct(category string) (name, description string)
	PromptProduct(prompt string) (name, description, category string)
	// Recommendation returns the candidate without a UPC.
	Recommendation(source *model.Product) model.RecommendationCandidate
}

// DefaultFallback is the deterministic Fallback used in production.
type DefaultFallback struct{}

// RandomProduct implements Fallback.
func (DefaultFallback) RandomProduct(category string) (string, string) {
	return category + " Item", fmt.Sprintf("A quality product in the %s category.", category)
}

// PromptProduct implements Fallback.
func (DefaultFallback) PromptProduct(prompt string) (string, string, string) {
	return "Custom Product", "A product based on: " + prompt, defaultPromptCategory
}

// Recommendation implements Fallback.
func (DefaultFallback) Recommendation(source *model.Product) model.RecommendationCandidate {
	return model.RecommendationCandidate{
		Name:        "Companion for " + source.Name,
		Description: "This product works great with " + source.Name,
		Category:    source.Category,
		Price:       decimal.NewNullDecimal(companionPrice(source)),
	}
}

func companionPrice(source *model.Product) decimal.Decimal {
	return source.Price.Mul(fallbackPriceRatio).Round(2)
}
