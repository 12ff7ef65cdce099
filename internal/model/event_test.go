package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleEvent_JSON(t *testing.T) {
	t.Run("product event carries product fields", func(t *testing.T) {
		// given
		product := &Product{
			ID:       7,
			Name:     "Widget",
			Category: "Electronics",
			Price:    decimal.RequireFromString("100"),
			UPC:      "100000000001",
		}

		// when
		body, err := json.Marshal(ProductCreatedEvent(product))

		// then
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"product_created","id":7,"name":"Widget","upc":"100000000001","price":100,"category":"Electronics"}`, string(body))
	})

	t.Run("image event carries product id and filename", func(t *testing.T) {
		// when
		body, err := json.Marshal(ImageUploadedEvent(3))

		// then
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"image_uploaded","product_id":3,"filename":"product.png"}`, string(body))
	})
}

func TestNewOutboxEvent(t *testing.T) {
	// given
	product := &Product{ID: 1, Name: "Widget", Price: decimal.RequireFromString("9.99"), UPC: "100000000001"}

	// when
	event, err := NewOutboxEvent("products", ProductDeletedEvent(product))
	require.NoError(t, err)
	decoded, err := event.LifecycleEvent()

	// then
	require.NoError(t, err)
	assert.Equal(t, "products", event.Topic)
	assert.Equal(t, string(ActionProductDeleted), event.EventType)
	assert.Equal(t, EventStatusPending, event.Status)
	assert.Equal(t, ActionProductDeleted, decoded.Action)
	assert.Equal(t, int64(1), decoded.ID)
	require.NotNil(t, decoded.Price)
	assert.True(t, decoded.Price.Equal(decimal.RequireFromString("9.99")))
}
