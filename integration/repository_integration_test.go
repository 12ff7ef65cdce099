//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	reposql "github.com/iyhunko/product-catalog/internal/repository/sql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(name, upc string) *model.Product {
	return &model.Product{
		Name:     name,
		Category: "Electronics",
		Price:    decimal.RequireFromString("19.99"),
		UPC:      upc,
	}
}

func TestProductRepository_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	ctx := context.Background()
	productRepo := reposql.NewProductRepository(testDB.DB)

	t.Run("create assigns sequential ids and round-trips the price", func(t *testing.T) {
		testDB.TruncateTables(t)

		first, err := productRepo.Create(ctx, newProduct("Widget", "100000000001"))
		require.NoError(t, err)
		second, err := productRepo.Create(ctx, newProduct("Gadget", "100000000002"))
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
		found, err := productRepo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, found.Price.Equal(decimal.RequireFromString("19.99")))
		assert.False(t, found.HasImage)
	})

	t.Run("duplicate upc is a conflict", func(t *testing.T) {
		testDB.TruncateTables(t)
		_, err := productRepo.Create(ctx, newProduct("Widget", "100000000001"))
		require.NoError(t, err)

		_, err = productRepo.Create(ctx, newProduct("Widget Copy", "100000000001"))

		assert.True(t, apperr.IsConflictOn(err, "upc"))
		names, err := productRepo.ListNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Widget"}, names)
	})

	t.Run("list pages newest first", func(t *testing.T) {
		testDB.TruncateTables(t)
		base := time.Now().UTC().Add(-time.Hour)
		for i, upc := range []string{"100000000001", "100000000002", "100000000003"} {
			p := newProduct("Product", upc)
			p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			_, err := productRepo.Create(ctx, p)
			require.NoError(t, err)
		}

		query := repository.NewQuery()
		require.NoError(t, query.ApplyPagination(2, ""))
		page, err := productRepo.List(ctx, *query)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, int64(3), page[0].ID)
		assert.Equal(t, int64(2), page[1].ID)

		last := page[len(page)-1]
		token := repository.Paginator{LastID: last.ID, LastCreatedAt: last.CreatedAt}.Encode()
		require.NoError(t, query.ApplyPagination(2, token))
		next, err := productRepo.List(ctx, *query)
		require.NoError(t, err)
		require.Len(t, next, 1)
		assert.Equal(t, int64(1), next[0].ID)
	})

	t.Run("mark imaged is idempotent", func(t *testing.T) {
		testDB.TruncateTables(t)
		created, err := productRepo.Create(ctx, newProduct("Widget", "100000000001"))
		require.NoError(t, err)

		require.NoError(t, productRepo.MarkImaged(ctx, created.ID))
		require.NoError(t, productRepo.MarkImaged(ctx, created.ID))

		found, err := productRepo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, found.HasImage)
		assert.True(t, apperr.IsNotFound(productRepo.MarkImaged(ctx, 999)))
	})
}

func TestTransactionalRepository_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	ctx := context.Background()
	productRepo := reposql.NewProductRepository(testDB.DB)
	recRepo := reposql.NewRecommendationRepository(testDB.DB)
	txRepo := reposql.NewTransactionalRepository(testDB.DB)

	t.Run("recommended product and pairing commit together", func(t *testing.T) {
		testDB.TruncateTables(t)
		source, err := productRepo.Create(ctx, newProduct("Widget", "100000000001"))
		require.NoError(t, err)

		created, pairing, err := txRepo.CreateRecommendedProduct(ctx, source.ID, newProduct("Widget Case", "200000000001"))

		require.NoError(t, err)
		assert.Equal(t, int64(2), created.ID)
		assert.Equal(t, source.ID, pairing.SourceProductID)
		assert.Equal(t, created.ID, pairing.RecommendedProductID)
		saved, err := recRepo.ListSaved(ctx)
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, "Widget", saved[0].SourceProductName)
		assert.Equal(t, "Widget Case", saved[0].RecommendedProductName)
	})

	t.Run("upc conflict rolls back the whole transaction", func(t *testing.T) {
		testDB.TruncateTables(t)
		source, err := productRepo.Create(ctx, newProduct("Widget", "100000000001"))
		require.NoError(t, err)

		_, _, err = txRepo.CreateRecommendedProduct(ctx, source.ID, newProduct("Widget Case", "100000000001"))

		assert.True(t, apperr.IsConflictOn(err, "upc"))
		names, err := productRepo.ListNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Widget"}, names)
		saved, err := recRepo.ListSaved(ctx)
		require.NoError(t, err)
		assert.Empty(t, saved)
	})

	t.Run("missing source rolls back the created product", func(t *testing.T) {
		testDB.TruncateTables(t)

		_, _, err := txRepo.CreateRecommendedProduct(ctx, 42, newProduct("Orphan", "200000000001"))

		assert.True(t, apperr.IsNotFound(err))
		names, err := productRepo.ListNames(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("pairing the same products twice returns the stored pairing", func(t *testing.T) {
		testDB.TruncateTables(t)
		a, err := productRepo.Create(ctx, newProduct("Widget", "100000000001"))
		require.NoError(t, err)
		b, err := productRepo.Create(ctx, newProduct("Cable", "100000000002"))
		require.NoError(t, err)

		first, err := txRepo.PairProducts(ctx, &model.RecommendationPairing{SourceProductID: a.ID, RecommendedProductID: b.ID})
		require.NoError(t, err)
		second, err := txRepo.PairProducts(ctx, &model.RecommendationPairing{SourceProductID: a.ID, RecommendedProductID: b.ID})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		saved, err := recRepo.ListSaved(ctx)
		require.NoError(t, err)
		assert.Len(t, saved, 1)
	})

	t.Run("cascade delete removes pairings in both directions", func(t *testing.T) {
		testDB.TruncateTables(t)
		widget, err := productRepo.Create(ctx, newProduct("Widget", "100000000001"))
		require.NoError(t, err)
		caseProduct, _, err := txRepo.CreateRecommendedProduct(ctx, widget.ID, newProduct("Widget Case", "200000000001"))
		require.NoError(t, err)
		other, err := productRepo.Create(ctx, newProduct("Cable", "100000000002"))
		require.NoError(t, err)
		_, err = txRepo.PairProducts(ctx, &model.RecommendationPairing{SourceProductID: other.ID, RecommendedProductID: widget.ID})
		require.NoError(t, err)

		require.NoError(t, txRepo.DeleteProductCascade(ctx, widget.ID))

		_, err = productRepo.FindByID(ctx, widget.ID)
		assert.True(t, apperr.IsNotFound(err))
		_, err = productRepo.FindByID(ctx, caseProduct.ID)
		assert.NoError(t, err)
		saved, err := recRepo.ListSaved(ctx)
		require.NoError(t, err)
		assert.Empty(t, saved)
	})

	t.Run("cascade delete of a missing product is not found", func(t *testing.T) {
		testDB.TruncateTables(t)

		err := txRepo.DeleteProductCascade(ctx, 7)

		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("plain delete of a paired product is refused by the schema", func(t *testing.T) {
		testDB.TruncateTables(t)
		widget, err := productRepo.Create(ctx, newProduct("Widget", "100000000001"))
		require.NoError(t, err)
		_, _, err = txRepo.CreateRecommendedProduct(ctx, widget.ID, newProduct("Widget Case", "200000000001"))
		require.NoError(t, err)

		err = productRepo.DeleteByID(ctx, widget.ID)

		assert.Error(t, err)
	})
}

func TestEventRepository_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	ctx := context.Background()
	eventRepo := reposql.NewEventRepository(testDB.DB)

	t.Run("pending events are listed oldest first until processed", func(t *testing.T) {
		testDB.TruncateTables(t)
		first, err := model.NewOutboxEvent("products", model.ImageUploadedEvent(1))
		require.NoError(t, err)
		_, err = eventRepo.Create(ctx, first)
		require.NoError(t, err)
		second, err := model.NewOutboxEvent("products", model.ImageUploadedEvent(2))
		require.NoError(t, err)
		_, err = eventRepo.Create(ctx, second)
		require.NoError(t, err)

		pending, err := eventRepo.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, first.ID, pending[0].ID)
		decoded, err := pending[0].LifecycleEvent()
		require.NoError(t, err)
		assert.Equal(t, int64(1), decoded.ProductID)

		require.NoError(t, eventRepo.UpdateStatus(ctx, first.ID, model.EventStatusProcessed))
		pending, err = eventRepo.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, second.ID, pending[0].ID)
	})
}
