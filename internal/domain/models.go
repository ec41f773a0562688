package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Variant is one sellable SKU-variant pair mirrored from the remote catalog.
// ExternalVariantID is the upsert key; it is indexed but deliberately not
// unique at the schema level. Multiple variants may share a barcode.
type Variant struct {
	ID                int64           `json:"id"`
	ExternalVariantID int64           `json:"shopify_id"`
	ExternalProductID int64           `json:"shopify_product_id"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku"`
	Barcode           string          `json:"barcode"`
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity int             `json:"inventory_quantity"`
	VariantTitle      string          `json:"variant_title"`
	ImageURL          string          `json:"image_url"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Customer mirrors one remote customer. Address holds only the first remote
// address, flattened to "address1 address2"; the rest are discarded.
type Customer struct {
	ID                 int64     `json:"id,omitempty"`
	ExternalCustomerID int64     `json:"shopify_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Address            string    `json:"address"`
	City               string    `json:"city"`
	Country            string    `json:"country"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// OrderLine is one row per purchased line item. Every line of a multi-item
// order shares the same ExternalOrderID, which is therefore not unique.
type OrderLine struct {
	ID              int64           `json:"id"`
	ExternalOrderID *int64          `json:"shopify_order_id"`
	CustomerID      *int64          `json:"customer_id"`
	ProductID       *int64          `json:"product_id"`
	Barcode         string          `json:"barcode"`
	Title           string          `json:"title"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// WebhookStatus is the lifecycle of one audit log row:
// processing -> processed | failed | skipped. Terminal states never change.
type WebhookStatus string

const (
	WebhookProcessing WebhookStatus = "processing"
	WebhookProcessed  WebhookStatus = "processed"
	WebhookFailed     WebhookStatus = "failed"
	WebhookSkipped    WebhookStatus = "skipped"
)

func (s WebhookStatus) Terminal() bool {
	return s == WebhookProcessed || s == WebhookFailed || s == WebhookSkipped
}

func (s WebhookStatus) Valid() bool {
	return s == WebhookProcessing || s.Terminal()
}

var ErrAlreadyFinalized = errors.New("webhook event already finalized")

// WebhookEvent is one append-only audit row per inbound webhook delivery.
// Payload stores the raw request body verbatim.
type WebhookEvent struct {
	ID           int64         `json:"id"`
	Topic        string        `json:"topic"`
	ExternalID   *int64        `json:"shopify_id"`
	Payload      string        `json:"payload"`
	Status       WebhookStatus `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Finalize moves the event from processing to a terminal status. It is the
// only legal transition; finalizing twice is an error.
func (e *WebhookEvent) Finalize(status WebhookStatus, errMsg string) error {
	if !status.Terminal() {
		return fmt.Errorf("invalid terminal webhook status %q", status)
	}
	if e.Status != WebhookProcessing {
		return ErrAlreadyFinalized
	}
	e.Status = status
	e.ErrorMessage = errMsg
	return nil
}

// Actor identifies the authenticated operator on a request context.
type Actor struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}
