package service_test

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repository.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockProductRepository) ListNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) MarkImaged(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRecommendationRepository is a mock implementation of repository.RecommendationRepository
type MockRecommendationRepository struct {
	mock.Mock
}

func (m *MockRecommendationRepository) InsertOrGet(ctx context.Context, pairing *model.RecommendationPairing) (*model.RecommendationPairing, bool, error) {
	args := m.Called(ctx, pairing)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.RecommendationPairing), args.Bool(1), args.Error(2)
}

func (m *MockRecommendationRepository) ListSaved(ctx context.Context) ([]*model.SavedRecommendation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SavedRecommendation), args.Error(1)
}

func (m *MockRecommendationRepository) DeleteByProductID(ctx context.Context, productID int64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactor is a mock implementation of repository.Transactor
type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) DeleteProductCascade(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockTransactor) CreateRecommendedProduct(ctx context.Context, sourceID int64, product *model.Product) (*model.Product, *model.RecommendationPairing, error) {
	args := m.Called(ctx, sourceID, product)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Product), args.Get(1).(*model.RecommendationPairing), args.Error(2)
}

func (m *MockTransactor) PairProducts(ctx context.Context, pairing *model.RecommendationPairing) (*model.RecommendationPairing, error) {
	args := m.Called(ctx, pairing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecommendationPairing), args.Error(1)
}

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *MockEventRepository) ListPending(ctx context.Context, limit int) ([]*model.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error {
	args := m.Called(ctx, eventID, status)
	return args.Error(0)
}

// MockPublisher is a mock implementation of service.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, topic string, event model.LifecycleEvent) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

// MockImageStore is a mock implementation of service.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Put(ctx context.Context, productID int64, data []byte) error {
	args := m.Called(ctx, productID, data)
	return args.Error(0)
}

func (m *MockImageStore) Get(ctx context.Context, productID int64) (io.ReadCloser, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockInventory is a mock implementation of service.InventoryLookup
type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) Get(ctx context.Context, upc string) model.Inventory {
	args := m.Called(ctx, upc)
	return args.Get(0).(model.Inventory)
}
