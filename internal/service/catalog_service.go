package service

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

var upcPattern = regexp.MustCompile(`^[0-9]{12}$`)

// EventPublisher publishes lifecycle events to the broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event model.LifecycleEvent) error
}

// ImageStore keeps one binary image per product.
type ImageStore interface {
	Put(ctx context.Context, productID int64, data []byte) error
	Get(ctx context.Context, productID int64) (io.ReadCloser, error)
}

// InventoryLookup reports stock for a UPC. Failures are carried in the result.
type InventoryLookup interface {
	Get(ctx context.Context, upc string) model.Inventory
}

// Dependencies are the handles CatalogService is built from.
type Dependencies struct {
	Products      repository.ProductRepository
	Transactor    repository.Transactor
	Outbox        repository.EventRepository
	Publisher     EventPublisher
	Images        ImageStore
	Inventory     InventoryLookup
	Generator     *ProductGenerator
	Engine        *RecommendationEngine
	Store         *RecommendationStore
	Random        *Random
	Topic         string
	CallTimeout   time.Duration
	MaxImageBytes int64
}

// CatalogService coordinates the store, the broker, the object store and generation.
//
// Publishing is best effort: once a store change has committed, a publish failure is logged,
// the event goes to the outbox for retry and the operation still succeeds.
type CatalogService struct {
	products      repository.ProductRepository
	tx            repository.Transactor
	outbox        repository.EventRepository
	publisher     EventPublisher
	images        ImageStore
	inventory     InventoryLookup
	generator     *ProductGenerator
	engine        *RecommendationEngine
	store         *RecommendationStore
	random        *Random
	topic         string
	callTimeout   time.Duration
	maxImageBytes int64
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(deps Dependencies) *CatalogService {
	random := deps.Random
	if random == nil {
		random = NewRandom()
	}
	return &CatalogService{
		products:      deps.Products,
		tx:            deps.Transactor,
		outbox:        deps.Outbox,
		publisher:     deps.Publisher,
		images:        deps.Images,
		inventory:     deps.Inventory,
		generator:     deps.Generator,
		engine:        deps.Engine,
		store:         deps.Store,
		random:        random,
		topic:         deps.Topic,
		callTimeout:   deps.CallTimeout,
		maxImageBytes: deps.MaxImageBytes,
	}
}

// CreateProduct stores the draft and publishes product_created.
// An empty UPC is replaced by a random one.
func (s *CatalogService) CreateProduct(ctx context.Context, draft model.ProductDraft) (*model.Product, error) {
	product := draft.Product()
	product.Name = strings.TrimSpace(product.Name)
	product.UPC = strings.TrimSpace(product.UPC)
	if product.Name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	if product.Price.IsNegative() {
		return nil, apperr.Validation("price", "must not be negative")
	}
	if product.UPC == "" {
		product.UPC = s.random.UPC()
	} else if !upcPattern.MatchString(product.UPC) {
		return nil, apperr.Validation("upc", "must be 12 digits")
	}
	product.Price = product.Price.Round(2)

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	created, err := s.products.Create(callCtx, product)
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	slog.Info("product created", slog.Int64("product_id", created.ID), slog.String("upc", created.UPC))
	s.publish(ctx, model.ProductCreatedEvent(created))

	return created, nil
}

// GenerateRandomProduct drafts a random product and creates it.
func (s *CatalogService) GenerateRandomProduct(ctx context.Context) (*model.Product, error) {
	return s.CreateProduct(ctx, s.generator.GenerateRandomProduct(ctx))
}

// CreateProductWithAI drafts a product from a free-text prompt and creates it.
func (s *CatalogService) CreateProductWithAI(ctx context.Context, prompt string) (*model.Product, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperr.Validation("prompt", "is required")
	}
	return s.CreateProduct(ctx, s.generator.GenerateFromPrompt(ctx, prompt))
}

// GetProductByID returns the product merged with its live inventory.
func (s *CatalogService) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.inventory != nil {
		invCtx, cancel := s.callContext(ctx)
		defer cancel()
		inventory := s.inventory.Get(invCtx, product.UPC)
		product.Inventory = &inventory
	}

	return product, nil
}

// ListProducts returns one page of products, newest first.
func (s *CatalogService) ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	return s.products.List(callCtx, query)
}

// DeleteProduct removes the product and every pairing referencing it, then publishes product_deleted.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return err
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	if err := s.tx.DeleteProductCascade(callCtx, id); err != nil {
		return err
	}

	metrics.ProductsDeleted.Inc()
	slog.Info("product deleted", slog.Int64("product_id", id))
	s.publish(ctx, model.ProductDeletedEvent(product))

	return nil
}

// UploadProductImage stores the image, flags the product and publishes image_uploaded.
func (s *CatalogService) UploadProductImage(ctx context.Context, id int64, data []byte) error {
	if len(data) == 0 {
		return apperr.Validation("image", "is required")
	}
	if s.maxImageBytes > 0 && int64(len(data)) > s.maxImageBytes {
		return apperr.Validation("image", "is too large")
	}
	if _, err := s.findProduct(ctx, id); err != nil {
		return err
	}

	putCtx, cancel := s.callContext(ctx)
	defer cancel()
	if err := s.images.Put(putCtx, id, data); err != nil {
		return err
	}

	markCtx, cancelMark := s.callContext(ctx)
	defer cancelMark()
	if err := s.products.MarkImaged(markCtx, id); err != nil {
		return err
	}

	metrics.ImagesUploaded.Inc()
	s.publish(ctx, model.ImageUploadedEvent(id))

	return nil
}

// GetProductImage opens the product's image. Closing the reader releases the call's deadline.
func (s *CatalogService) GetProductImage(ctx context.Context, id int64) (io.ReadCloser, error) {
	callCtx, cancel := s.callContext(ctx)
	body, err := s.images.Get(callCtx, id)
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelOnClose{ReadCloser: body, cancel: cancel}, nil
}

// GetRecommendationForProduct suggests a complementary product. Nothing is persisted.
func (s *CatalogService) GetRecommendationForProduct(ctx context.Context, id int64) (*model.Recommendation, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.GenerateRecommendation(ctx, product)
}

// GetRecommendationsForProducts suggests one product per id. Ids that fail are skipped.
func (s *CatalogService) GetRecommendationsForProducts(ctx context.Context, ids []int64) ([]*model.Recommendation, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation("product_ids", "must not be empty")
	}

	recs := make([]*model.Recommendation, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetRecommendationForProduct(ctx, id)
		if err != nil {
			slog.Warn("skipping recommendation", slog.Int64("product_id", id), slog.Any("err", err))
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// SaveRecommendation pairs two existing products.
func (s *CatalogService) SaveRecommendation(ctx context.Context, sourceID, recommendedID int64) (*model.SavedRecommendation, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	saved, err := s.store.SaveRecommendation(callCtx, sourceID, recommendedID)
	if err != nil {
		return nil, err
	}
	metrics.RecommendationsSaved.Inc()
	return saved, nil
}

// SaveRecommendedProduct creates the candidate as a product paired with the source and publishes product_created.
func (s *CatalogService) SaveRecommendedProduct(ctx context.Context, sourceID int64, candidate model.RecommendationCandidate) (*model.SavedRecommendation, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	saved, err := s.store.SaveRecommendedProduct(callCtx, sourceID, candidate)
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	metrics.RecommendationsSaved.Inc()
	slog.Info("recommended product saved",
		slog.Int64("source_product_id", saved.SourceProductID),
		slog.Int64("recommended_product_id", saved.RecommendedProductID),
	)
	s.publish(ctx, model.ProductCreatedEvent(saved.RecommendedProduct))

	return saved, nil
}

// GetSavedRecommendations lists saved pairings, newest first.
func (s *CatalogService) GetSavedRecommendations(ctx context.Context) ([]*model.SavedRecommendation, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	return s.store.GetSavedRecommendations(callCtx)
}

func (s *CatalogService) findProduct(ctx context.Context, id int64) (*model.Product, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	return s.products.FindByID(callCtx, id)
}

func (s *CatalogService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout > 0 {
		return context.WithTimeout(ctx, s.callTimeout)
	}
	return context.WithCancel(ctx)
}

// publish runs after the store commit, so it is detached from the caller's cancellation.
func (s *CatalogService) publish(ctx context.Context, event model.LifecycleEvent) {
	if s.publisher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	pubCtx, cancel := s.callContext(ctx)
	err := s.publisher.PublishEvent(pubCtx, s.topic, event)
	cancel()
	if err == nil {
		return
	}

	metrics.PublishFailures.Inc()
	productID := event.ID
	if event.Action == model.ActionImageUploaded {
		productID = event.ProductID
	}
	slog.Error("Failed to publish lifecycle event",
		slog.String("action", string(event.Action)),
		slog.Int64("product_id", productID),
		slog.Any("err", err),
	)

	if s.outbox == nil {
		return
	}
	outboxEvent, err := model.NewOutboxEvent(s.topic, event)
	if err != nil {
		slog.Error("Failed to encode outbox event", slog.Any("err", err))
		return
	}
	storeCtx, cancelStore := s.callContext(ctx)
	defer cancelStore()
	if _, err := s.outbox.Create(storeCtx, outboxEvent); err != nil {
		slog.Error("Failed to store event in outbox", slog.String("action", string(event.Action)), slog.Any("err", err))
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
