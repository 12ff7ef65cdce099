package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/iyhunko/product-catalog/internal/model"
)

const (
	msgNotFound      = "Product not found"
	msgLookupFailure = "Failed to get inventory"

	maxResponseBytes = 1 << 20
)

// Client looks up stock quantities in the inventory service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new inventory client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

type inventoryResponse struct {
	Quantity *int   `json:"quantity"`
	Message  string `json:"message"`
}

// Get returns the quantity for upc. Lookup failures are reported inside the result, never as an error.
func (c *Client) Get(ctx context.Context, upc string) model.Inventory {
	reqURL := fmt.Sprintf("%s/api/inventory?%s", c.baseURL, url.Values{"upc": {upc}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		slog.Error("failed to build inventory request", slog.String("upc", upc), slog.Any("err", err))
		return model.InventoryFailure(msgLookupFailure)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("inventory lookup failed", slog.String("upc", upc), slog.Any("err", err))
		return model.InventoryFailure(msgLookupFailure)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		slog.Warn("failed to read inventory response", slog.String("upc", upc), slog.Any("err", err))
		return model.InventoryFailure(msgLookupFailure)
	}

	if resp.StatusCode == http.StatusNotFound {
		return model.InventoryFailure(msgNotFound)
	}

	var payload inventoryResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode != http.StatusOK {
		slog.Warn("inventory service returned an error", slog.String("upc", upc), slog.Int("status", resp.StatusCode))
		if decodeErr == nil && payload.Message != "" {
			return model.InventoryFailure(payload.Message)
		}
		return model.InventoryFailure(msgLookupFailure)
	}

	if decodeErr != nil || payload.Quantity == nil {
		slog.Warn("unexpected inventory response", slog.String("upc", upc), slog.Any("err", decodeErr))
		return model.InventoryFailure(msgLookupFailure)
	}

	return model.InventoryQuantity(*payload.Quantity)
}
