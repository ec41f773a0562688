package domain

import "github.com/shopspring/decimal"

// ProductSyncResult reports one bulk catalog sync pass.
type ProductSyncResult struct {
	Status           string `json:"status"`
	Added            int    `json:"added"`
	Updated          int    `json:"updated"`
	SkippedNoBarcode int    `json:"skipped_no_barcode"`
	TotalProducts    int    `json:"total_products"`
}

// CustomerSyncResult reports one bulk customer sync pass.
type CustomerSyncResult struct {
	Status         string `json:"status"`
	Added          int    `json:"added"`
	Updated        int    `json:"updated"`
	TotalCustomers int    `json:"total_customers"`
}

// CartItem is one entry of a POS cart. Type "custom" items carry their own
// title and price; everything else is resolved through the barcode.
type CartItem struct {
	Type     string          `json:"type"`
	Barcode  string          `json:"barcode"`
	Title    string          `json:"title"`
	Size     string          `json:"size"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type NewCustomerAddress struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
}

type NewCustomer struct {
	FirstName string              `json:"first_name" validate:"required"`
	LastName  string              `json:"last_name" validate:"required"`
	Email     string              `json:"email" validate:"required,email"`
	Phone     string              `json:"phone"`
	Address   *NewCustomerAddress `json:"address,omitempty"`
}

// CartCheckoutRequest creates one remote order from a mixed cart. Exactly one
// of Email or NewCustomer must be set.
type CartCheckoutRequest struct {
	Items          []CartItem      `json:"items" validate:"required,min=1"`
	PaymentMethod  string          `json:"payment_method" validate:"required,oneof=cash pos"`
	Email          string          `json:"email"`
	NewCustomer    *NewCustomer    `json:"new_customer,omitempty"`
	Discount       decimal.Decimal `json:"discount"`
	DiscountReason string          `json:"discount_reason"`
}

// ManualOrderRequest creates a single-item order for a product that is not in
// the remote inventory at all.
type ManualOrderRequest struct {
	Title         string          `json:"title" validate:"required"`
	Size          string          `json:"size"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash pos"`
	Email         string          `json:"email"`
	Discount      decimal.Decimal `json:"discount"`
}

// QuickOrderRequest is the query-parameter form of single-item checkout.
type QuickOrderRequest struct {
	Barcode       string
	PaymentMethod string
	Email         string
	Quantity      int
}

// CheckoutResponse reports one completed checkout: the remote order plus the
// local line rows that were fanned out from it.
type CheckoutResponse struct {
	Status          string          `json:"status"`
	Message         string          `json:"message"`
	ShopifyOrderID  int64           `json:"shopify_order_id"`
	ShopifyOrderNum int64           `json:"shopify_order_number"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	DiscountApplied decimal.Decimal `json:"discount_applied,omitempty"`
	DiscountReason  string          `json:"discount_reason,omitempty"`
	ItemsCount      int             `json:"items_count"`
	Orders          []OrderLine     `json:"orders"`
	ReceiptPath     string          `json:"receipt_path,omitempty"`
}

type CreateCustomerRequest struct {
	FirstName string              `json:"first_name" validate:"required"`
	LastName  string              `json:"last_name" validate:"required"`
	Email     string              `json:"email" validate:"required,email"`
	Phone     string              `json:"phone"`
	Address   *NewCustomerAddress `json:"address,omitempty"`
}

// CustomerSearchQuery carries the supported lookup selectors; at least one
// must be set.
type CustomerSearchQuery struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Name      string
}

func (q CustomerSearchQuery) Empty() bool {
	return q.Email == "" && q.Phone == "" && q.FirstName == "" && q.LastName == "" && q.Name == ""
}

// CustomerSearchResult holds deduplicated matches and where they came from
// ("local" or "shopify").
type CustomerSearchResult struct {
	Source    string     `json:"source"`
	Customers []Customer `json:"customers"`
}

// WebhookResult is the synchronous reply to a webhook delivery.
type WebhookResult struct {
	Status     string `json:"status"`
	Topic      string `json:"topic"`
	ResourceID *int64 `json:"resource_id,omitempty"`
	Message    string `json:"message"`
}

// WebhookLogFilter narrows the audit log listing.
type WebhookLogFilter struct {
	Limit  int
	Topic  string
	Status string
}

type WebhookStats struct {
	TotalWebhooks int            `json:"total_webhooks"`
	ByStatus      map[string]int `json:"by_status"`
	ByTopic       map[string]int `json:"by_topic"`
}
