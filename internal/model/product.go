package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers, both over HTTP and on the broker
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a catalog product with its properties and metadata.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	UPC         string          `json:"upc"`
	HasImage    bool            `json:"has_image"`
	CreatedAt   time.Time       `json:"created_at"`

	// Inventory is filled on reads from the inventory service and never persisted.
	Inventory *Inventory `json:"inventory,omitempty"`
}

// InitMeta initializes the product metadata. The id is assigned by the store.
func (p *Product) InitMeta() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

// Inventory is the live stock level reported for a product's UPC.
type Inventory struct {
	Error    bool   `json:"error"`
	Quantity *int   `json:"quantity,omitempty"`
	Message  string `json:"message,omitempty"`
}

// InventoryQuantity builds a successful inventory result.
func InventoryQuantity(quantity int) Inventory {
	return Inventory{Quantity: &quantity}
}

// InventoryFailure builds an inventory result that carries an error message.
func InventoryFailure(message string) Inventory {
	return Inventory{Error: true, Message: message}
}

// ProductDraft is a generated product that has not been stored yet.
type ProductDraft struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	UPC         string          `json:"upc"`
}

// Product converts the draft into a product ready to be created.
func (d ProductDraft) Product() *Product {
	return &Product{
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       d.Price,
		UPC:         d.UPC,
	}
}
