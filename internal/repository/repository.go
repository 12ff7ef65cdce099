package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, query Query) ([]*model.Product, error)
	ListNames(ctx context.Context) ([]string, error)
	MarkImaged(ctx context.Context, id int64) error
	DeleteByID(ctx context.Context, id int64) error
}

// RecommendationRepository defines persistence operations for recommendation pairings.
type RecommendationRepository interface {
	// InsertOrGet stores the pairing, or returns the already stored one for the same
	// (source, recommended) pair. created reports which of the two happened.
	InsertOrGet(ctx context.Context, pairing *model.RecommendationPairing) (result *model.RecommendationPairing, created bool, err error)
	ListSaved(ctx context.Context) ([]*model.SavedRecommendation, error)
	DeleteByProductID(ctx context.Context, productID int64) (int64, error)
}

// EventRepository defines the outbox operations for lifecycle events that failed to publish.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	ListPending(ctx context.Context, limit int) ([]*model.Event, error)
	UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error
}

// Transactor runs multi-table catalog changes atomically.
type Transactor interface {
	// DeleteProductCascade removes the product and every pairing referencing it.
	DeleteProductCascade(ctx context.Context, productID int64) error
	// CreateRecommendedProduct creates product and pairs it with sourceID.
	CreateRecommendedProduct(ctx context.Context, sourceID int64, product *model.Product) (*model.Product, *model.RecommendationPairing, error)
	// PairProducts records an existing (source, recommended) relationship.
	PairProducts(ctx context.Context, pairing *model.RecommendationPairing) (*model.RecommendationPairing, error)
}
