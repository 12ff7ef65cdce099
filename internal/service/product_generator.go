package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iyhunko/product-catalog/internal/generation"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
)

// ProductCategories are the categories random products are drawn from.
var ProductCategories = []string{"Groceries", "Electronics", "Furniture", "Clothing", "Sports"}

const (
	randomProductSystemPrompt = `You are a product catalog assistant. Respond with strict JSON only, no prose and no markdown: {"name": string, "description": string}.`
	randomProductUserPrompt   = "Invent one realistic product in the %s category. Keep the name under 60 characters and the description to one or two sentences."

	promptProductSystemPrompt = `You are a product catalog assistant. Respond with strict JSON only, no prose and no markdown: {"name": string, "description": string, "category": string}.`
	promptProductUserPrompt   = "Create a catalog product from this description: %s"
)

// ProductGenerator drafts new products with the generation service. It never fails:
// any service or parse problem yields the fallback draft.
type ProductGenerator struct {
	gen      generation.Service
	fallback Fallback
	random   *Random
	timeout  time.Duration
}

// NewProductGenerator creates a new ProductGenerator. timeout bounds each generation call; zero disables it.
func NewProductGenerator(gen generation.Service, fallback Fallback, random *Random, timeout time.Duration) *ProductGenerator {
	return &ProductGenerator{
		gen:      gen,
		fallback: fallback,
		random:   random,
		timeout:  timeout,
	}
}

type generatedProduct struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// GenerateRandomProduct drafts a product in a random category with a random price and UPC.
func (g *ProductGenerator) GenerateRandomProduct(ctx context.Context) model.ProductDraft {
	draft := model.ProductDraft{
		Category: ProductCategories[g.random.IntN(len(ProductCategories))],
		Price:    g.random.Price(),
		UPC:      g.random.UPC(),
	}

	var out generatedProduct
	err := completeJSON(ctx, g.gen, g.timeout, randomProductSystemPrompt, fmt.Sprintf(randomProductUserPrompt, draft.Category), &out)
	if err == nil && strings.TrimSpace(out.Name) == "" {
		err = errMissingName
	}
	if err != nil {
		slog.Warn("product generation failed, using fallback", slog.String("category", draft.Category), slog.Any("err", err))
		metrics.GenerationOutcomes.WithLabelValues(metrics.KindProduct, metrics.OutcomeFallback).Inc()
		draft.Name, draft.Description = g.fallback.RandomProduct(draft.Category)
		return draft
	}

	metrics.GenerationOutcomes.WithLabelValues(metrics.KindProduct, metrics.OutcomeGenerated).Inc()
	draft.Name = strings.TrimSpace(out.Name)
	draft.Description = strings.TrimSpace(out.Description)
	return draft
}

// GenerateFromPrompt drafts a product from a free-text description. Price and UPC are random.
func (g *ProductGenerator) GenerateFromPrompt(ctx context.Context, prompt string) model.ProductDraft {
	draft := model.ProductDraft{
		Price: g.random.Price(),
		UPC:   g.random.UPC(),
	}

	var out generatedProduct
	err := completeJSON(ctx, g.gen, g.timeout, promptProductSystemPrompt, fmt.Sprintf(promptProductUserPrompt, prompt), &out)
	if err == nil && strings.TrimSpace(out.Name) == "" {
		err = errMissingName
	}
	if err != nil {
		slog.Warn("prompt product generation failed, using fallback", slog.Any("err", err))
		metrics.GenerationOutcomes.WithLabelValues(metrics.KindPromptProduct, metrics.OutcomeFallback).Inc()
		draft.Name, draft.Description, draft.Category = g.fallback.PromptProduct(prompt)
		return draft
	}

	metrics.GenerationOutcomes.WithLabelValues(metrics.KindPromptProduct, metrics.OutcomeGenerated).Inc()
	draft.Name = strings.TrimSpace(out.Name)
	draft.Description = strings.TrimSpace(out.Description)
	draft.Category = strings.TrimSpace(out.Category)
	if draft.Category == "" {
		draft.Category = defaultPromptCategory
	}
	return draft
}

// completeJSON runs exactly one generation call and decodes its JSON into v.
func completeJSON(ctx context.Context, gen generation.Service, timeout time.Duration, systemPrompt, userPrompt string, v any) error {
	if gen == nil {
		return generation.ErrNotConfigured
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	raw, err := gen.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	return generation.DecodeJSON(raw, v)
}
