package service

import (
	"context"
	"time"

	"meezypos/backend/internal/cache"
	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/receipt"
	"meezypos/backend/internal/shopify"
	"meezypos/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// RemoteClient is the slice of the remote commerce API the service depends
// on. *shopify.Client satisfies it; tests substitute a fake.
type RemoteClient interface {
	ListProducts(ctx context.Context) ([]shopify.Product, error)
	ListCustomers(ctx context.Context) ([]shopify.Customer, error)
	SearchCustomers(ctx context.Context, query string) ([]shopify.Customer, error)
	CreateCustomer(ctx context.Context, in shopify.CustomerInput) (*shopify.Customer, error)
	CreateOrder(ctx context.Context, in shopify.OrderInput) (*shopify.Order, error)
	ListOrdersCreatedBetween(ctx context.Context, createdAtMin string, createdAtMax string, status string) ([]shopify.Order, error)
}

type Service struct {
	repo      store.Repository
	remote    RemoteClient
	receipts  receipt.Renderer
	reports   cache.ReportCache
	todayTTL  time.Duration
	reportTTL time.Duration
}

func New(repo store.Repository, remote RemoteClient, receipts receipt.Renderer, reports cache.ReportCache, todayTTL, reportTTL time.Duration) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if todayTTL <= 0 {
		todayTTL = time.Minute
	}
	if reportTTL <= 0 {
		reportTTL = 5 * time.Minute
	}

	return &Service{
		repo:      repo,
		remote:    remote,
		receipts:  receipts,
		reports:   reports,
		todayTTL:  todayTTL,
		reportTTL: reportTTL,
	}
}

func (s *Service) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// GetProductByBarcode returns every variant sharing the barcode; sizes of the
// same product share one code, so multiple rows are the normal case.
func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) ([]domain.Variant, error) {
	if barcode == "" {
		return nil, store.ErrInvalidInput
	}
	variants, err := s.repo.GetVariantsByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, store.ErrNotFound
	}
	return variants, nil
}

func (s *Service) ListProducts(ctx context.Context, offset int, limit int) ([]domain.Variant, int, error) {
	return s.repo.ListVariants(ctx, offset, limit)
}

func (s *Service) SearchProducts(ctx context.Context, query string) ([]domain.Variant, error) {
	if query == "" {
		return nil, store.ErrInvalidInput
	}
	return s.repo.SearchVariants(ctx, query)
}

func (s *Service) ClearProducts(ctx context.Context) (int, error) {
	actor, ok := ActorFromContext(ctx)
	if ok && actor.Role != "admin" {
		return 0, store.ErrInvalidInput
	}
	return s.repo.ClearVariants(ctx)
}

func (s *Service) ListOrders(ctx context.Context, offset int, limit int) ([]domain.OrderLine, int, error) {
	return s.repo.ListOrderLines(ctx, offset, limit)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.OrderLine, error) {
	return s.repo.GetOrderLineByID(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context, offset int, limit int) ([]domain.Customer, int, error) {
	return s.repo.ListCustomers(ctx, offset, limit)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}
