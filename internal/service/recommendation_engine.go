package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/generation"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/shopspring/decimal"
)

const recommendationSystemPrompt = `You are a merchandising assistant. Suggest one complementary product. Respond with strict JSON only, no prose and no markdown: {"name": string, "description": string, "category": string, "price": number}.`

var errMissingName = errors.New("generated draft has no name")

// NameLister lists the names already used in the catalog.
type NameLister interface {
	ListNames(ctx context.Context) ([]string, error)
}

// RecommendationEngine suggests complementary products. It makes exactly one generation
// attempt per call and degrades to the fallback candidate instead of failing.
type RecommendationEngine struct {
	gen      generation.Service
	fallback Fallback
	random   *Random
	upcs     *UPCGenerator
	names    NameLister
	timeout  time.Duration
	// bounds the catalog name lookup
	callTimeout time.Duration
}

// NewRecommendationEngine creates a new RecommendationEngine. names may be nil, in which case
// prompts carry no de-duplication hints. timeout bounds the generation call and callTimeout
// the name lookup.
func NewRecommendationEngine(gen generation.Service, fallback Fallback, random *Random, upcs *UPCGenerator, names NameLister, timeout, callTimeout time.Duration) *RecommendationEngine {
	return &RecommendationEngine{
		gen:         gen,
		fallback:    fallback,
		random:      random,
		upcs:        upcs,
		names:       names,
		timeout:     timeout,
		callTimeout: callTimeout,
	}
}

type generatedRecommendation struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       json.RawMessage `json:"price"`
}

// GenerateRecommendation returns a candidate complementary to source.
func (e *RecommendationEngine) GenerateRecommendation(ctx context.Context, source *model.Product) (*model.Recommendation, error) {
	if source == nil {
		return nil, apperr.Validation("source_product", "is required")
	}

	rec := &model.Recommendation{SourceProductID: source.ID}

	var out generatedRecommendation
	err := completeJSON(ctx, e.gen, e.timeout, recommendationSystemPrompt, e.userPrompt(ctx, source), &out)
	if err == nil && strings.TrimSpace(out.Name) == "" {
		err = errMissingName
	}
	if err != nil {
		slog.Warn("recommendation generation failed, using fallback", slog.Int64("product_id", source.ID), slog.Any("err", err))
		metrics.GenerationOutcomes.WithLabelValues(metrics.KindRecommendation, metrics.OutcomeFallback).Inc()
		rec.RecommendedProduct = e.fallback.Recommendation(source)
		rec.RecommendedProduct.UPC = e.upcs.Next()
		rec.Fallback = true
		return rec, nil
	}

	metrics.GenerationOutcomes.WithLabelValues(metrics.KindRecommendation, metrics.OutcomeGenerated).Inc()
	price, ok := coercePrice(out.Price)
	if !ok {
		price = e.random.Price()
	}
	category := strings.TrimSpace(out.Category)
	if category == "" {
		category = source.Category
	}
	rec.RecommendedProduct = model.RecommendationCandidate{
		Name:        strings.TrimSpace(out.Name),
		Description: strings.TrimSpace(out.Description),
		Category:    category,
		Price:       decimal.NewNullDecimal(price),
		UPC:         e.upcs.Next(),
	}
	return rec, nil
}

func (e *RecommendationEngine) userPrompt(ctx context.Context, source *model.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source product:\nname: %s\ndescription: %s\ncategory: %s\nprice: %s\nupc: %s\n",
		source.Name, source.Description, source.Category, source.Price.StringFixed(2), source.UPC)

	if e.names == nil {
		return b.String()
	}
	names, err := e.listNames(ctx)
	if err != nil {
		slog.Warn("failed to list catalog names for recommendation", slog.Int64("product_id", source.ID), slog.Any("err", err))
		return b.String()
	}
	if len(names) > 0 {
		b.WriteString("\nThe catalog already contains these products. Do not suggest any of these names:\n")
		for _, name := range names {
			b.WriteString("- ")
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (e *RecommendationEngine) listNames(ctx context.Context) ([]string, error) {
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}
	return e.names.ListNames(ctx)
}

// coercePrice accepts a JSON number or a string such as "$24.99". Only the string form is
// stripped of non-digit characters. Non-positive values are rejected.
func coercePrice(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, false
	}

	var price decimal.Decimal
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' {
				return r
			}
			return -1
		}, text)
		if price, err = decimal.NewFromString(cleaned); err != nil {
			return decimal.Decimal{}, false
		}
	} else {
		var err error
		if price, err = decimal.NewFromString(strings.TrimSpace(string(raw))); err != nil {
			return decimal.Decimal{}, false
		}
	}

	if !price.IsPositive() {
		return decimal.Decimal{}, false
	}
	return price.Round(2), true
}
