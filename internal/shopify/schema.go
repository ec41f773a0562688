// Package shopify is a typed client for the Shopify REST Admin API. Response
// payloads are decoded once at this boundary; nothing downstream touches raw
// JSON maps.
package shopify

import "github.com/shopspring/decimal"

type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type Variant struct {
	ID                int64           `json:"id"`
	ProductID         int64           `json:"product_id"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku"`
	Barcode           string          `json:"barcode"`
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity int             `json:"inventory_quantity"`
	ImageID           *int64          `json:"image_id"`
}

type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Variants []Variant `json:"variants"`
	Images   []Image   `json:"images"`
	Image    *Image    `json:"image"`
}

type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province,omitempty"`
	Country  string `json:"country"`
	Zip      string `json:"zip,omitempty"`
}

type Customer struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Addresses []Address `json:"addresses"`
}

type LineItem struct {
	ID           int64           `json:"id"`
	VariantID    *int64          `json:"variant_id"`
	ProductID    *int64          `json:"product_id"`
	Title        string          `json:"title"`
	VariantTitle string          `json:"variant_title"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

type RefundTransaction struct {
	Kind   string          `json:"kind"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

type Refund struct {
	ID           int64               `json:"id"`
	CreatedAt    string              `json:"created_at"`
	Transactions []RefundTransaction `json:"transactions"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     int64           `json:"order_number"`
	Email           string          `json:"email"`
	CreatedAt       string          `json:"created_at"`
	CancelledAt     *string         `json:"cancelled_at"`
	FinancialStatus string          `json:"financial_status"`
	Tags            string          `json:"tags"`
	Gateway         string          `json:"gateway"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	LineItems       []LineItem      `json:"line_items"`
	Customer        *Customer       `json:"customer"`
	Refunds         []Refund        `json:"refunds"`
}

// InventoryLevel is the inventory_levels/update webhook payload.
type InventoryLevel struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       int   `json:"available"`
}

// OrderLineInput is one line of an outbound order-creation call. Price is a
// decimal string because that is what the remote API expects.
type OrderLineInput struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	VariantID *int64 `json:"variant_id,omitempty"`
}

type TransactionInput struct {
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Amount  string `json:"amount"`
	Gateway string `json:"gateway"`
}

type CustomerRef struct {
	ID int64 `json:"id"`
}

type OrderInput struct {
	LineItems       []OrderLineInput   `json:"line_items"`
	Tags            string             `json:"tags"`
	FinancialStatus string             `json:"financial_status"`
	Email           string             `json:"email,omitempty"`
	Customer        *CustomerRef       `json:"customer,omitempty"`
	Note            string             `json:"note,omitempty"`
	Transactions    []TransactionInput `json:"transactions"`
}

type CustomerInput struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
}
