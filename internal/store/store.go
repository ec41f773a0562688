package store

import (
	"context"
	"errors"

	"meezypos/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Repository is the persistence boundary for the mirrored catalog, customer
// and order tables plus the webhook audit log. All reads of a missing row
// return ErrNotFound.
type Repository interface {
	// Variants. ApplyVariantUpserts runs lookup-then-overwrite-or-insert for
	// every record inside one transaction: an error rolls the whole batch
	// back. The upsert key is ExternalVariantID.
	ApplyVariantUpserts(ctx context.Context, variants []domain.Variant) (added int, updated int, err error)
	UpsertVariant(ctx context.Context, variant domain.Variant) (created bool, err error)
	GetVariantByExternalID(ctx context.Context, externalVariantID int64) (*domain.Variant, error)
	GetVariantsByBarcode(ctx context.Context, barcode string) ([]domain.Variant, error)
	ListVariants(ctx context.Context, offset int, limit int) ([]domain.Variant, int, error)
	SearchVariants(ctx context.Context, query string) ([]domain.Variant, error)
	DeleteVariantsByExternalProductID(ctx context.Context, externalProductID int64) (int, error)
	SetVariantQuantityByExternalID(ctx context.Context, externalVariantID int64, quantity int) (bool, error)
	ClearVariants(ctx context.Context) (int, error)

	// Customers. ExternalCustomerID is unique; email is not.
	ApplyCustomerUpserts(ctx context.Context, customers []domain.Customer) (added int, updated int, err error)
	UpsertCustomer(ctx context.Context, customer domain.Customer) (created bool, err error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetCustomerByExternalID(ctx context.Context, externalCustomerID int64) (*domain.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)
	SearchCustomers(ctx context.Context, query domain.CustomerSearchQuery) ([]domain.Customer, error)
	ListCustomers(ctx context.Context, offset int, limit int) ([]domain.Customer, int, error)

	// Order lines. CreateOrderLines inserts the whole fan-out of one remote
	// order in a single transaction.
	CreateOrderLines(ctx context.Context, lines []domain.OrderLine) ([]domain.OrderLine, error)
	GetOrderLineByID(ctx context.Context, id int64) (*domain.OrderLine, error)
	ListOrderLines(ctx context.Context, offset int, limit int) ([]domain.OrderLine, int, error)
	ListOrderLinesByExternalOrderID(ctx context.Context, externalOrderID int64) ([]domain.OrderLine, error)
	UpdateOrderStatusByExternalOrderID(ctx context.Context, externalOrderID int64, status string) (int, error)

	// Webhook audit log. FinalizeWebhookEvent only succeeds while the row is
	// still in the processing state.
	CreateWebhookEvent(ctx context.Context, event domain.WebhookEvent) (*domain.WebhookEvent, error)
	FinalizeWebhookEvent(ctx context.Context, id int64, status domain.WebhookStatus, errorMessage string) error
	ListWebhookEvents(ctx context.Context, filter domain.WebhookLogFilter) ([]domain.WebhookEvent, error)
	GetWebhookStats(ctx context.Context) (domain.WebhookStats, error)

	Ping(ctx context.Context) error
}
