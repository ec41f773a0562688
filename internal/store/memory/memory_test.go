package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/store"
)

func variant(externalID int64, barcode, price string, qty int) domain.Variant {
	return domain.Variant{
		ExternalVariantID: externalID,
		ExternalProductID: externalID / 10,
		Title:             "Product",
		Barcode:           barcode,
		Price:             decimal.RequireFromString(price),
		InventoryQuantity: qty,
	}
}

func TestUpsertVariantOverwrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.UpsertVariant(ctx, variant(101, "111", "100.00", 5))
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}

	updated := variant(101, "111", "120.00", 2)
	updated.Title = "Renamed"
	created, err = s.UpsertVariant(ctx, updated)
	if err != nil || created {
		t.Fatalf("second upsert: created=%v err=%v", created, err)
	}

	got, err := s.GetVariantByExternalID(ctx, 101)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Renamed" || !got.Price.Equal(decimal.RequireFromString("120.00")) || got.InventoryQuantity != 2 {
		t.Fatalf("row not overwritten: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("timestamps wrong: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestApplyVariantUpsertsCounts(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.UpsertVariant(ctx, variant(101, "111", "100.00", 1)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	added, updated, err := s.ApplyVariantUpserts(ctx, []domain.Variant{
		variant(101, "111", "105.00", 1),
		variant(102, "222", "50.00", 3),
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if added != 1 || updated != 1 {
		t.Fatalf("added=%d updated=%d, want 1/1", added, updated)
	}
}

func TestGetVariantsByBarcodeSharedBarcode(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, v := range []domain.Variant{
		variant(101, "111", "100.00", 0),
		variant(102, "111", "110.00", 3),
		variant(201, "222", "50.00", 1),
	} {
		if _, err := s.UpsertVariant(ctx, v); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	matches, err := s.GetVariantsByBarcode(ctx, "111")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want both variants of the barcode", len(matches))
	}
	if matches[0].ExternalVariantID != 101 {
		t.Fatalf("order wrong: first match is %d", matches[0].ExternalVariantID)
	}

	none, err := s.GetVariantsByBarcode(ctx, "999")
	if err != nil || len(none) != 0 {
		t.Fatalf("unknown barcode: %v %+v", err, none)
	}
}

func TestListVariantsPagination(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		if _, err := s.UpsertVariant(ctx, variant(100+i, "", "10.00", 1)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	page, total, err := s.ListVariants(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("total=%d page=%d", total, len(page))
	}
	if page[0].ExternalVariantID != 103 {
		t.Fatalf("offset not applied: first = %d", page[0].ExternalVariantID)
	}

	past, total, err := s.ListVariants(ctx, 10, 2)
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if total != 5 || len(past) != 0 {
		t.Fatalf("past end: total=%d page=%d", total, len(past))
	}
}

func TestDeleteVariantsByExternalProductID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.UpsertVariant(ctx, variant(101, "111", "10.00", 1)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.UpsertVariant(ctx, variant(102, "222", "10.00", 1)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.UpsertVariant(ctx, variant(201, "333", "10.00", 1)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	deleted, err := s.DeleteVariantsByExternalProductID(ctx, 10)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
	if _, err := s.GetVariantByExternalID(ctx, 201); err != nil {
		t.Fatalf("unrelated variant removed: %v", err)
	}
}

func TestCreateCustomerRejectsDuplicateExternalID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateCustomer(ctx, domain.Customer{ExternalCustomerID: 71, Email: "a@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.CreateCustomer(ctx, domain.Customer{ExternalCustomerID: 71, Email: "b@example.com"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("duplicate external id: err = %v", err)
	}
}

func TestSearchCustomersSelectors(t *testing.T) {
	s := New()
	ctx := context.Background()

	seed := []domain.Customer{
		{ExternalCustomerID: 1, FirstName: "Ayse", LastName: "Demir", Email: "ayse@example.com", Phone: "+90 532 111 22 33"},
		{ExternalCustomerID: 2, FirstName: "Ali", LastName: "Kaya", Email: "ali@example.com", Phone: "05051234567"},
	}
	for _, c := range seed {
		if _, err := s.UpsertCustomer(ctx, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	byEmail, err := s.SearchCustomers(ctx, domain.CustomerSearchQuery{Email: "ayse@example.com"})
	if err != nil || len(byEmail) != 1 || byEmail[0].ExternalCustomerID != 1 {
		t.Fatalf("by email: %v %+v", err, byEmail)
	}

	// Phone matching ignores separators.
	byPhone, err := s.SearchCustomers(ctx, domain.CustomerSearchQuery{Phone: "905321112233"})
	if err != nil || len(byPhone) != 1 || byPhone[0].ExternalCustomerID != 1 {
		t.Fatalf("by phone: %v %+v", err, byPhone)
	}

	byName, err := s.SearchCustomers(ctx, domain.CustomerSearchQuery{Name: "kay"})
	if err != nil || len(byName) != 1 || byName[0].ExternalCustomerID != 2 {
		t.Fatalf("by name: %v %+v", err, byName)
	}

	none, err := s.SearchCustomers(ctx, domain.CustomerSearchQuery{Email: "nobody@example.com"})
	if err != nil || len(none) != 0 {
		t.Fatalf("no match: %v %+v", err, none)
	}
}

func TestOrderLineFanOutAndStatusUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()

	external := int64(9001)
	created, err := s.CreateOrderLines(ctx, []domain.OrderLine{
		{ExternalOrderID: &external, Title: "A", Quantity: 1, Price: decimal.RequireFromString("10.00"), Status: "completed"},
		{ExternalOrderID: &external, Title: "B", Quantity: 2, Price: decimal.RequireFromString("20.00"), Status: "completed"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 2 || created[0].ID == 0 || created[0].ID == created[1].ID {
		t.Fatalf("ids not assigned: %+v", created)
	}
	if created[0].CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}

	lines, err := s.ListOrderLinesByExternalOrderID(ctx, external)
	if err != nil || len(lines) != 2 {
		t.Fatalf("by external id: %v %d", err, len(lines))
	}

	updated, err := s.UpdateOrderStatusByExternalOrderID(ctx, external, "cancelled")
	if err != nil || updated != 2 {
		t.Fatalf("status update: %v %d", err, updated)
	}
	lines, _ = s.ListOrderLinesByExternalOrderID(ctx, external)
	for _, line := range lines {
		if line.Status != "cancelled" {
			t.Fatalf("line %d status = %q", line.ID, line.Status)
		}
	}

	newest, total, err := s.ListOrderLines(ctx, 0, 1)
	if err != nil || total != 2 {
		t.Fatalf("list: %v %d", err, total)
	}
	if newest[0].Title != "B" {
		t.Fatalf("listing not newest-first: %q", newest[0].Title)
	}
}

func TestFinalizeWebhookEventOnce(t *testing.T) {
	s := New()
	ctx := context.Background()

	event, err := s.CreateWebhookEvent(ctx, domain.WebhookEvent{Topic: "orders/create", Payload: "{}"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if event.Status != domain.WebhookProcessing {
		t.Fatalf("initial status = %q, want processing", event.Status)
	}

	if err := s.FinalizeWebhookEvent(ctx, event.ID, domain.WebhookProcessed, ""); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	err = s.FinalizeWebhookEvent(ctx, event.ID, domain.WebhookFailed, "late")
	if !errors.Is(err, domain.ErrAlreadyFinalized) {
		t.Fatalf("second finalize: err = %v, want ErrAlreadyFinalized", err)
	}

	events, err := s.ListWebhookEvents(ctx, domain.WebhookLogFilter{})
	if err != nil || len(events) != 1 {
		t.Fatalf("list: %v %d", err, len(events))
	}
	if events[0].Status != domain.WebhookProcessed {
		t.Fatalf("status = %q, first terminal state must stick", events[0].Status)
	}
}

func TestFinalizeWebhookEventRejectsNonTerminal(t *testing.T) {
	s := New()
	ctx := context.Background()

	event, err := s.CreateWebhookEvent(ctx, domain.WebhookEvent{Topic: "orders/create", Payload: "{}"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.FinalizeWebhookEvent(ctx, event.ID, domain.WebhookProcessing, ""); err == nil {
		t.Fatal("processing accepted as a terminal status")
	}
	if err := s.FinalizeWebhookEvent(ctx, 404, domain.WebhookProcessed, ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown event: err = %v", err)
	}
}

func TestListWebhookEventsFilters(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, _ := s.CreateWebhookEvent(ctx, domain.WebhookEvent{Topic: "orders/create", Payload: "{}"})
	second, _ := s.CreateWebhookEvent(ctx, domain.WebhookEvent{Topic: "products/update", Payload: "{}"})
	_ = s.FinalizeWebhookEvent(ctx, first.ID, domain.WebhookProcessed, "")
	_ = s.FinalizeWebhookEvent(ctx, second.ID, domain.WebhookFailed, "boom")

	byTopic, err := s.ListWebhookEvents(ctx, domain.WebhookLogFilter{Topic: "orders/create"})
	if err != nil || len(byTopic) != 1 || byTopic[0].ID != first.ID {
		t.Fatalf("by topic: %v %+v", err, byTopic)
	}

	byStatus, err := s.ListWebhookEvents(ctx, domain.WebhookLogFilter{Status: "failed"})
	if err != nil || len(byStatus) != 1 || byStatus[0].ID != second.ID {
		t.Fatalf("by status: %v %+v", err, byStatus)
	}

	all, err := s.ListWebhookEvents(ctx, domain.WebhookLogFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("all: %v %d", err, len(all))
	}
	if all[0].ID != second.ID {
		t.Fatalf("ordering not newest-first: %+v", all)
	}

	stats, err := s.GetWebhookStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalWebhooks != 2 || stats.ByStatus["processed"] != 1 || stats.ByTopic["products/update"] != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestClearVariants(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	cleared, err := s.ClearVariants(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared == 0 {
		t.Fatal("seeded store cleared nothing")
	}
	_, total, err := s.ListVariants(ctx, 0, 10)
	if err != nil || total != 0 {
		t.Fatalf("after clear: %v %d", err, total)
	}
}
