// Package memory is an in-memory Repository used for tests and for running
// the server without a database. It mirrors the postgres store's semantics,
// including iteration order: reads come back in ascending local id order.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/store"
)

type Store struct {
	mu sync.RWMutex

	variants  map[int64]domain.Variant
	customers map[int64]domain.Customer
	orders    map[int64]domain.OrderLine
	webhooks  map[int64]domain.WebhookEvent

	nextVariantID  int64
	nextCustomerID int64
	nextOrderID    int64
	nextWebhookID  int64
}

func New() *Store {
	return &Store{
		variants:  make(map[int64]domain.Variant),
		customers: make(map[int64]domain.Customer),
		orders:    make(map[int64]domain.OrderLine),
		webhooks:  make(map[int64]domain.WebhookEvent),
	}
}

// NewSeeded returns a store preloaded with a small catalog and one customer,
// enough to exercise the API without a sync against a real shop.
func NewSeeded() *Store {
	s := New()
	ctx := context.Background()

	seedVariants := []domain.Variant{
		{
			ExternalVariantID: 9100000001,
			ExternalProductID: 8100000001,
			Title:             "Classic Tee",
			SKU:               "TEE-BLK-M",
			Barcode:           "8690000000017",
			Price:             decimal.NewFromFloat(249.90),
			InventoryQuantity: 12,
			VariantTitle:      "Black / M",
		},
		{
			ExternalVariantID: 9100000002,
			ExternalProductID: 8100000001,
			Title:             "Classic Tee",
			SKU:               "TEE-BLK-L",
			Barcode:           "8690000000017",
			Price:             decimal.NewFromFloat(249.90),
			InventoryQuantity: 0,
			VariantTitle:      "Black / L",
		},
		{
			ExternalVariantID: 9100000003,
			ExternalProductID: 8100000002,
			Title:             "Canvas Tote",
			SKU:               "TOTE-NAT",
			Barcode:           "8690000000024",
			Price:             decimal.NewFromFloat(119.50),
			InventoryQuantity: 30,
			VariantTitle:      "Default Title",
		},
	}
	for _, v := range seedVariants {
		_, _ = s.UpsertVariant(ctx, v)
	}

	_, _ = s.CreateCustomer(ctx, domain.Customer{
		ExternalCustomerID: 7100000001,
		FirstName:          "Ayse",
		LastName:           "Demir",
		Email:              "ayse@example.com",
		Phone:              "+905551112233",
		Address:            "Istiklal Cad. No:1",
		City:               "Istanbul",
		Country:            "Turkey",
	})

	return s
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

// ---- variants ----

func (s *Store) sortedVariantIDs() []int64 {
	ids := make([]int64, 0, len(s.variants))
	for id := range s.variants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) findVariantByExternalID(externalVariantID int64) (domain.Variant, bool) {
	for _, id := range s.sortedVariantIDs() {
		if s.variants[id].ExternalVariantID == externalVariantID {
			return s.variants[id], true
		}
	}
	return domain.Variant{}, false
}

func (s *Store) upsertVariantLocked(variant domain.Variant, now time.Time) (created bool) {
	existing, ok := s.findVariantByExternalID(variant.ExternalVariantID)
	if ok {
		existing.ExternalProductID = variant.ExternalProductID
		existing.Title = variant.Title
		existing.SKU = variant.SKU
		existing.Barcode = variant.Barcode
		existing.Price = variant.Price
		existing.InventoryQuantity = variant.InventoryQuantity
		existing.VariantTitle = variant.VariantTitle
		existing.ImageURL = variant.ImageURL
		existing.UpdatedAt = now
		s.variants[existing.ID] = existing
		return false
	}

	s.nextVariantID++
	variant.ID = s.nextVariantID
	variant.CreatedAt = now
	variant.UpdatedAt = now
	s.variants[variant.ID] = variant
	return true
}

func (s *Store) ApplyVariantUpserts(_ context.Context, variants []domain.Variant) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	added, updated := 0, 0
	for _, v := range variants {
		if v.ExternalVariantID == 0 {
			return 0, 0, store.ErrInvalidInput
		}
		if s.upsertVariantLocked(v, now) {
			added++
		} else {
			updated++
		}
	}
	return added, updated, nil
}

func (s *Store) UpsertVariant(_ context.Context, variant domain.Variant) (bool, error) {
	if variant.ExternalVariantID == 0 {
		return false, store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertVariantLocked(variant, time.Now().UTC()), nil
}

func (s *Store) GetVariantByExternalID(_ context.Context, externalVariantID int64) (*domain.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.findVariantByExternalID(externalVariantID); ok {
		return &v, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetVariantsByBarcode(_ context.Context, barcode string) ([]domain.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.Variant, 0, 2)
	for _, id := range s.sortedVariantIDs() {
		if s.variants[id].Barcode == barcode {
			matches = append(matches, s.variants[id])
		}
	}
	return matches, nil
}

func (s *Store) ListVariants(_ context.Context, offset int, limit int) ([]domain.Variant, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedVariantIDs()
	total := len(ids)
	page := make([]domain.Variant, 0, limit)
	for i := offset; i < total && len(page) < limit; i++ {
		page = append(page, s.variants[ids[i]])
	}
	return page, total, nil
}

func (s *Store) SearchVariants(_ context.Context, query string) ([]domain.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	matches := make([]domain.Variant, 0, 8)
	for _, id := range s.sortedVariantIDs() {
		v := s.variants[id]
		if strings.Contains(strings.ToLower(v.Title), needle) ||
			strings.Contains(strings.ToLower(v.SKU), needle) ||
			strings.Contains(strings.ToLower(v.Barcode), needle) {
			matches = append(matches, v)
		}
	}
	return matches, nil
}

func (s *Store) DeleteVariantsByExternalProductID(_ context.Context, externalProductID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, v := range s.variants {
		if v.ExternalProductID == externalProductID {
			delete(s.variants, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) SetVariantQuantityByExternalID(_ context.Context, externalVariantID int64, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.findVariantByExternalID(externalVariantID)
	if !ok {
		return false, nil
	}
	v.InventoryQuantity = quantity
	v.UpdatedAt = time.Now().UTC()
	s.variants[v.ID] = v
	return true, nil
}

func (s *Store) ClearVariants(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.variants)
	s.variants = make(map[int64]domain.Variant)
	return count, nil
}

// ---- customers ----

func (s *Store) sortedCustomerIDs() []int64 {
	ids := make([]int64, 0, len(s.customers))
	for id := range s.customers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) findCustomerByExternalID(externalCustomerID int64) (domain.Customer, bool) {
	for _, id := range s.sortedCustomerIDs() {
		if s.customers[id].ExternalCustomerID == externalCustomerID {
			return s.customers[id], true
		}
	}
	return domain.Customer{}, false
}

func (s *Store) upsertCustomerLocked(customer domain.Customer, now time.Time) (created bool) {
	existing, ok := s.findCustomerByExternalID(customer.ExternalCustomerID)
	if ok {
		existing.FirstName = customer.FirstName
		existing.LastName = customer.LastName
		existing.Email = customer.Email
		existing.Phone = customer.Phone
		existing.Address = customer.Address
		existing.City = customer.City
		existing.Country = customer.Country
		existing.UpdatedAt = now
		s.customers[existing.ID] = existing
		return false
	}

	s.nextCustomerID++
	customer.ID = s.nextCustomerID
	customer.CreatedAt = now
	customer.UpdatedAt = now
	s.customers[customer.ID] = customer
	return true
}

func (s *Store) ApplyCustomerUpserts(_ context.Context, customers []domain.Customer) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	added, updated := 0, 0
	for _, c := range customers {
		if c.ExternalCustomerID == 0 {
			return 0, 0, store.ErrInvalidInput
		}
		if s.upsertCustomerLocked(c, now) {
			added++
		} else {
			updated++
		}
	}
	return added, updated, nil
}

func (s *Store) UpsertCustomer(_ context.Context, customer domain.Customer) (bool, error) {
	if customer.ExternalCustomerID == 0 {
		return false, store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertCustomerLocked(customer, time.Now().UTC()), nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ExternalCustomerID != 0 {
		if _, exists := s.findCustomerByExternalID(customer.ExternalCustomerID); exists {
			return nil, store.ErrInvalidInput
		}
	}

	now := time.Now().UTC()
	s.nextCustomerID++
	customer.ID = s.nextCustomerID
	customer.CreatedAt = now
	customer.UpdatedAt = now
	s.customers[customer.ID] = customer

	created := customer
	return &created, nil
}

func (s *Store) GetCustomerByID(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.customers[id]; ok {
		return &c, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetCustomerByExternalID(_ context.Context, externalCustomerID int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.findCustomerByExternalID(externalCustomerID); ok {
		return &c, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetCustomerByEmail(_ context.Context, email string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.sortedCustomerIDs() {
		if strings.EqualFold(s.customers[id].Email, email) {
			c := s.customers[id]
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func normalizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "")
	return replacer.Replace(phone)
}

func (s *Store) SearchCustomers(_ context.Context, query domain.CustomerSearchQuery) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.Customer, 0, 4)
	for _, id := range s.sortedCustomerIDs() {
		c := s.customers[id]
		if matchCustomer(c, query) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

func matchCustomer(c domain.Customer, q domain.CustomerSearchQuery) bool {
	if q.Email != "" && strings.Contains(strings.ToLower(c.Email), strings.ToLower(q.Email)) {
		return true
	}
	if q.Phone != "" && strings.Contains(normalizePhone(c.Phone), normalizePhone(q.Phone)) {
		return true
	}
	if q.Name != "" {
		needle := strings.ToLower(q.Name)
		full := strings.ToLower(c.FirstName + " " + c.LastName)
		if strings.Contains(strings.ToLower(c.FirstName), needle) ||
			strings.Contains(strings.ToLower(c.LastName), needle) ||
			strings.Contains(full, needle) {
			return true
		}
	}
	if q.FirstName != "" && strings.Contains(strings.ToLower(c.FirstName), strings.ToLower(q.FirstName)) {
		return true
	}
	if q.LastName != "" && strings.Contains(strings.ToLower(c.LastName), strings.ToLower(q.LastName)) {
		return true
	}
	return false
}

func (s *Store) ListCustomers(_ context.Context, offset int, limit int) ([]domain.Customer, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedCustomerIDs()
	total := len(ids)
	page := make([]domain.Customer, 0, limit)
	for i := offset; i < total && len(page) < limit; i++ {
		page = append(page, s.customers[ids[i]])
	}
	return page, total, nil
}

// ---- order lines ----

func (s *Store) CreateOrderLines(_ context.Context, lines []domain.OrderLine) ([]domain.OrderLine, error) {
	if len(lines) == 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	created := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		s.nextOrderID++
		line.ID = s.nextOrderID
		line.CreatedAt = now
		s.orders[line.ID] = line
		created = append(created, line)
	}
	return created, nil
}

func (s *Store) GetOrderLineByID(_ context.Context, id int64) (*domain.OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if line, ok := s.orders[id]; ok {
		return &line, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListOrderLines(_ context.Context, offset int, limit int) ([]domain.OrderLine, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.orders))
	for id := range s.orders {
		ids = append(ids, id)
	}
	// Newest first, matching the postgres ORDER BY created_at DESC.
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	total := len(ids)
	page := make([]domain.OrderLine, 0, limit)
	for i := offset; i < total && len(page) < limit; i++ {
		page = append(page, s.orders[ids[i]])
	}
	return page, total, nil
}

func (s *Store) ListOrderLinesByExternalOrderID(_ context.Context, externalOrderID int64) ([]domain.OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, 4)
	for id, line := range s.orders {
		if line.ExternalOrderID != nil && *line.ExternalOrderID == externalOrderID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lines := make([]domain.OrderLine, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, s.orders[id])
	}
	return lines, nil
}

func (s *Store) UpdateOrderStatusByExternalOrderID(_ context.Context, externalOrderID int64, status string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for id, line := range s.orders {
		if line.ExternalOrderID != nil && *line.ExternalOrderID == externalOrderID {
			line.Status = status
			s.orders[id] = line
			updated++
		}
	}
	return updated, nil
}

// ---- webhook audit log ----

func (s *Store) CreateWebhookEvent(_ context.Context, event domain.WebhookEvent) (*domain.WebhookEvent, error) {
	if event.Topic == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextWebhookID++
	event.ID = s.nextWebhookID
	event.Status = domain.WebhookProcessing
	event.CreatedAt = time.Now().UTC()
	s.webhooks[event.ID] = event

	created := event
	return &created, nil
}

func (s *Store) FinalizeWebhookEvent(_ context.Context, id int64, status domain.WebhookStatus, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.webhooks[id]
	if !ok {
		return store.ErrNotFound
	}
	if err := event.Finalize(status, errorMessage); err != nil {
		return err
	}
	s.webhooks[id] = event
	return nil
}

func (s *Store) ListWebhookEvents(_ context.Context, filter domain.WebhookLogFilter) ([]domain.WebhookEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.webhooks))
	for id := range s.webhooks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	events := make([]domain.WebhookEvent, 0, limit)
	for _, id := range ids {
		event := s.webhooks[id]
		if filter.Topic != "" && event.Topic != filter.Topic {
			continue
		}
		if filter.Status != "" && string(event.Status) != filter.Status {
			continue
		}
		events = append(events, event)
		if len(events) >= limit {
			break
		}
	}
	return events, nil
}

func (s *Store) GetWebhookStats(_ context.Context) (domain.WebhookStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.WebhookStats{
		TotalWebhooks: len(s.webhooks),
		ByStatus:      make(map[string]int),
		ByTopic:       make(map[string]int),
	}
	for _, event := range s.webhooks {
		stats.ByStatus[string(event.Status)]++
		stats.ByTopic[event.Topic]++
	}
	return stats, nil
}
