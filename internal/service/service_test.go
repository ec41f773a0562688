package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/receipt"
	"meezypos/backend/internal/shopify"
	"meezypos/backend/internal/store"
	"meezypos/backend/internal/store/memory"
)

type fakeRemote struct {
	products  []shopify.Product
	customers []shopify.Customer
	orders    []shopify.Order
	search    map[string][]shopify.Customer

	createdOrders    []shopify.OrderInput
	createdCustomers []shopify.CustomerInput
	nextOrderID      int64
	nextCustomerID   int64

	failCreateOrder bool
	listOrdersErr   error
}

func (f *fakeRemote) ListProducts(_ context.Context) ([]shopify.Product, error) {
	return f.products, nil
}

func (f *fakeRemote) ListCustomers(_ context.Context) ([]shopify.Customer, error) {
	return f.customers, nil
}

func (f *fakeRemote) SearchCustomers(_ context.Context, query string) ([]shopify.Customer, error) {
	return f.search[query], nil
}

func (f *fakeRemote) CreateCustomer(_ context.Context, in shopify.CustomerInput) (*shopify.Customer, error) {
	f.createdCustomers = append(f.createdCustomers, in)
	f.nextCustomerID++
	return &shopify.Customer{
		ID:        7000 + f.nextCustomerID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	}, nil
}

func (f *fakeRemote) CreateOrder(_ context.Context, in shopify.OrderInput) (*shopify.Order, error) {
	if f.failCreateOrder {
		return nil, errors.New("remote order rejected")
	}
	f.createdOrders = append(f.createdOrders, in)
	f.nextOrderID++
	return &shopify.Order{
		ID:          9000 + f.nextOrderID,
		OrderNumber: 1000 + f.nextOrderID,
	}, nil
}

func (f *fakeRemote) ListOrdersCreatedBetween(_ context.Context, _, _, _ string) ([]shopify.Order, error) {
	if f.listOrdersErr != nil {
		return nil, f.listOrdersErr
	}
	return f.orders, nil
}

type noopRenderer struct{}

func (noopRenderer) Render(_ receipt.Data) (string, error) { return "receipts/test.pdf", nil }

type failingRenderer struct{}

func (failingRenderer) Render(_ receipt.Data) (string, error) {
	return "", errors.New("printer on fire")
}

func newTestService(remote *fakeRemote) (*Service, *memory.Store) {
	repo := memory.New()
	return New(repo, remote, noopRenderer{}, nil, 0, 0), repo
}

func seedVariant(t *testing.T, repo *memory.Store, externalID int64, barcode string, price string, qty int) {
	t.Helper()
	_, err := repo.UpsertVariant(context.Background(), domain.Variant{
		ExternalVariantID: externalID,
		ExternalProductID: externalID / 10,
		Title:             fmt.Sprintf("Product %d", externalID),
		Barcode:           barcode,
		Price:             decimal.RequireFromString(price),
		InventoryQuantity: qty,
	})
	if err != nil {
		t.Fatalf("seed variant: %v", err)
	}
}

func seedCustomer(t *testing.T, repo *memory.Store, externalID int64, email string) domain.Customer {
	t.Helper()
	created, err := repo.CreateCustomer(context.Background(), domain.Customer{
		ExternalCustomerID: externalID,
		FirstName:          "Test",
		LastName:           "Customer",
		Email:              email,
	})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return *created
}

func TestSyncProductsIsIdempotent(t *testing.T) {
	remote := &fakeRemote{
		products: []shopify.Product{
			{
				ID:    10,
				Title: "Classic Tee",
				Variants: []shopify.Variant{
					{ID: 101, Barcode: "111", Price: decimal.RequireFromString("249.90"), InventoryQuantity: 5},
					{ID: 102, Barcode: "111", Price: decimal.RequireFromString("249.90"), InventoryQuantity: 2},
				},
			},
			{
				ID:    20,
				Title: "Tote",
				Variants: []shopify.Variant{
					{ID: 201, Barcode: "222", Price: decimal.RequireFromString("119.50"), InventoryQuantity: 9},
				},
			},
		},
	}
	svc, repo := newTestService(remote)
	ctx := context.Background()

	first, err := svc.SyncProducts(ctx)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.Added != 3 || first.Updated != 0 {
		t.Fatalf("first sync: added=%d updated=%d, want 3/0", first.Added, first.Updated)
	}

	second, err := svc.SyncProducts(ctx)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.Added != 0 || second.Updated != 3 {
		t.Fatalf("second sync: added=%d updated=%d, want 0/3", second.Added, second.Updated)
	}

	_, total, err := repo.ListVariants(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list variants: %v", err)
	}
	if total != 3 {
		t.Fatalf("variant count after two syncs = %d, want 3", total)
	}
}

func TestSyncProductsSkipsAndDedupes(t *testing.T) {
	remote := &fakeRemote{
		products: []shopify.Product{
			{
				ID:    10,
				Title: "Mixed",
				Variants: []shopify.Variant{
					{ID: 101, Barcode: "111"},
					{ID: 102, Barcode: ""},    // no barcode
					{ID: 0, Barcode: "333"},   // no variant id
					{ID: 101, Barcode: "111"}, // in-pass duplicate
				},
			},
		},
	}
	svc, _ := newTestService(remote)

	result, err := svc.SyncProducts(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Added != 1 {
		t.Fatalf("added = %d, want 1 (duplicate applied once)", result.Added)
	}
	if result.SkippedNoBarcode != 2 {
		t.Fatalf("skipped = %d, want 2", result.SkippedNoBarcode)
	}
}

func TestSyncCustomersFlattensFirstAddress(t *testing.T) {
	remote := &fakeRemote{
		customers: []shopify.Customer{
			{
				ID: 71, FirstName: "Ayse", LastName: "Demir", Email: "ayse@example.com",
				Addresses: []shopify.Address{
					{Address1: "Istiklal Cad.", Address2: "No:1", City: "Istanbul", Country: "Turkey"},
					{Address1: "Second St.", City: "Ankara"},
				},
			},
			{ID: 0, Email: "ghost@example.com"},
		},
	}
	svc, repo := newTestService(remote)
	ctx := context.Background()

	result, err := svc.SyncCustomers(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Added != 1 {
		t.Fatalf("added = %d, want 1 (missing id skipped)", result.Added)
	}

	stored, err := repo.GetCustomerByExternalID(ctx, 71)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if stored.Address != "Istiklal Cad. No:1" || stored.City != "Istanbul" {
		t.Fatalf("address flattened to %q / %q", stored.Address, stored.City)
	}
}

func TestCartCheckoutFansOutOneRowPerItem(t *testing.T) {
	remote := &fakeRemote{}
	svc, repo := newTestService(remote)
	ctx := context.Background()

	seedVariant(t, repo, 101, "111", "100.00", 5)
	seedVariant(t, repo, 201, "222", "50.00", 5)
	seedCustomer(t, repo, 71, "ayse@example.com")

	resp, err := svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{
		Items: []domain.CartItem{
			{Barcode: "111", Quantity: 2},
			{Barcode: "222", Quantity: 1},
			{Type: "custom", Title: "Gift Wrap", Price: decimal.RequireFromString("15.00"), Quantity: 1},
		},
		PaymentMethod: "cash",
		Email:         "ayse@example.com",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if len(remote.createdOrders) != 1 {
		t.Fatalf("remote orders created = %d, want exactly 1", len(remote.createdOrders))
	}
	if resp.ItemsCount != 3 {
		t.Fatalf("items_count = %d, want 3", resp.ItemsCount)
	}
	if len(resp.Orders) != 3 {
		t.Fatalf("local rows = %d, want 3", len(resp.Orders))
	}
	for _, line := range resp.Orders {
		if line.ExternalOrderID == nil || *line.ExternalOrderID != resp.ShopifyOrderID {
			t.Fatalf("line %d does not reference remote order %d", line.ID, resp.ShopifyOrderID)
		}
		if line.Status != "completed" {
			t.Fatalf("line status = %q, want completed", line.Status)
		}
	}
	if !resp.OriginalAmount.Equal(decimal.RequireFromString("265.00")) {
		t.Fatalf("original amount = %s, want 265.00", resp.OriginalAmount)
	}

	input := remote.createdOrders[0]
	if input.Tags != "in-store, cash" {
		t.Fatalf("tags = %q", input.Tags)
	}
	if input.FinancialStatus != "paid" {
		t.Fatalf("financial_status = %q", input.FinancialStatus)
	}
	if len(input.Transactions) != 1 || input.Transactions[0].Gateway != "cash" {
		t.Fatalf("transactions = %+v, want one cash sale", input.Transactions)
	}
}

func TestCartCheckoutDiscountBoundary(t *testing.T) {
	remote := &fakeRemote{}
	svc, repo := newTestService(remote)
	ctx := context.Background()

	seedVariant(t, repo, 101, "111", "100.00", 5)
	seedCustomer(t, repo, 71, "ayse@example.com")

	base := domain.CartCheckoutRequest{
		Items:         []domain.CartItem{{Barcode: "111", Quantity: 1}},
		PaymentMethod: "pos",
		Email:         "ayse@example.com",
	}

	full := base
	full.Discount = decimal.RequireFromString("100.00")
	if _, err := svc.CreateCartOrder(ctx, full); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("discount equal to total: err = %v, want ErrInvalidInput", err)
	}
	if len(remote.createdOrders) != 0 {
		t.Fatal("rejected discount still created a remote order")
	}

	almost := base
	almost.Discount = decimal.RequireFromString("99.99")
	almost.DiscountReason = "loyalty"
	resp, err := svc.CreateCartOrder(ctx, almost)
	if err != nil {
		t.Fatalf("discount just under total: %v", err)
	}
	if !resp.FinalAmount.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("final amount = %s, want 0.01", resp.FinalAmount)
	}

	input := remote.createdOrders[0]
	last := input.LineItems[len(input.LineItems)-1]
	if !strings.HasPrefix(last.Title, "Discount") || last.Price != "-99.99" {
		t.Fatalf("discount line = %+v", last)
	}
	if !strings.Contains(input.Note, "Discount applied: 99.99 TL") {
		t.Fatalf("note = %q", input.Note)
	}
	if !strings.Contains(input.Note, "Reason: loyalty") {
		t.Fatalf("note = %q", input.Note)
	}
	if resp.ItemsCount != 1 {
		t.Fatalf("items_count = %d, want 1 (discount line is not an item)", resp.ItemsCount)
	}
}

func TestCartCheckoutRequiresExactlyOneCustomer(t *testing.T) {
	svc, repo := newTestService(&fakeRemote{})
	ctx := context.Background()
	seedVariant(t, repo, 101, "111", "10.00", 1)

	items := []domain.CartItem{{Barcode: "111", Quantity: 1}}

	_, err := svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{Items: items, PaymentMethod: "cash"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("neither selector: err = %v", err)
	}

	_, err = svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{
		Items:         items,
		PaymentMethod: "cash",
		Email:         "a@example.com",
		NewCustomer:   &domain.NewCustomer{FirstName: "A", LastName: "B", Email: "b@example.com"},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("both selectors: err = %v", err)
	}
}

func TestCartCheckoutPrefersInStockVariant(t *testing.T) {
	remote := &fakeRemote{}
	svc, repo := newTestService(remote)
	ctx := context.Background()

	seedVariant(t, repo, 101, "111", "100.00", 0)
	seedVariant(t, repo, 102, "111", "110.00", 3)
	seedCustomer(t, repo, 71, "ayse@example.com")

	resp, err := svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{
		Items:         []domain.CartItem{{Barcode: "111", Quantity: 1}},
		PaymentMethod: "cash",
		Email:         "ayse@example.com",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !resp.OriginalAmount.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("picked amount = %s, want the in-stock variant at 110.00", resp.OriginalAmount)
	}
}

func TestCartCheckoutFallsBackToFirstVariantWhenAllOutOfStock(t *testing.T) {
	remote := &fakeRemote{}
	svc, repo := newTestService(remote)
	ctx := context.Background()

	seedVariant(t, repo, 101, "111", "100.00", 0)
	seedVariant(t, repo, 102, "111", "110.00", 0)
	seedCustomer(t, repo, 71, "ayse@example.com")

	resp, err := svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{
		Items:         []domain.CartItem{{Barcode: "111", Quantity: 1}},
		PaymentMethod: "cash",
		Email:         "ayse@example.com",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !resp.OriginalAmount.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("picked amount = %s, want the first variant at 100.00", resp.OriginalAmount)
	}
}

func TestCartCheckoutDropsInvalidCustomItems(t *testing.T) {
	remote := &fakeRemote{}
	svc, repo := newTestService(remote)
	ctx := context.Background()
	seedCustomer(t, repo, 71, "ayse@example.com")

	resp, err := svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{
		Items: []domain.CartItem{
			{Type: "custom", Title: "", Price: decimal.RequireFromString("10.00")},
			{Type: "custom", Title: "Freebie", Price: decimal.Zero},
			{Type: "custom", Title: "Scarf", Size: "M", Price: decimal.RequireFromString("25.00")},
		},
		PaymentMethod: "cash",
		Email:         "ayse@example.com",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if resp.ItemsCount != 1 {
		t.Fatalf("items_count = %d, want 1 (invalid custom items dropped)", resp.ItemsCount)
	}
	if resp.Orders[0].Title != "Scarf - M" {
		t.Fatalf("title = %q, want size suffix", resp.Orders[0].Title)
	}
}

func TestCartCheckoutSkipsUnmatchedBarcodes(t *testing.T) {
	remote := &fakeRemote{}
	svc, repo := newTestService(remote)
	ctx := context.Background()

	seedVariant(t, repo, 101, "111", "100.00", 5)
	seedCustomer(t, repo, 71, "ayse@example.com")

	resp, err := svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{
		Items: []domain.CartItem{
			{Barcode: "111", Quantity: 1},
			{Barcode: "404404", Quantity: 1},
			{Barcode: "", Quantity: 1},
		},
		PaymentMethod: "cash",
		Email:         "ayse@example.com",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if resp.ItemsCount != 1 {
		t.Fatalf("items_count = %d, want 1 (unmatched barcodes dropped)", resp.ItemsCount)
	}
	if len(resp.Orders) != 1 || resp.Orders[0].Barcode != "111" {
		t.Fatalf("orders = %+v, want the single matched item", resp.Orders)
	}
	if len(remote.createdOrders) != 1 || len(remote.createdOrders[0].LineItems) != 1 {
		t.Fatal("remote order should carry only the matched line item")
	}
}

func TestCartCheckoutAllItemsInvalid(t *testing.T) {
	svc, repo := newTestService(&fakeRemote{})
	seedCustomer(t, repo, 71, "ayse@example.com")

	_, err := svc.CreateCartOrder(context.Background(), domain.CartCheckoutRequest{
		Items:         []domain.CartItem{{Type: "custom", Title: "", Price: decimal.RequireFromString("10.00")}},
		PaymentMethod: "cash",
		Email:         "ayse@example.com",
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCheckoutSurvivesReceiptFailure(t *testing.T) {
	remote := &fakeRemote{}
	repo := memory.New()
	svc := New(repo, remote, failingRenderer{}, nil, 0, 0)
	ctx := context.Background()

	seedVariant(t, repo, 101, "111", "100.00", 5)
	seedCustomer(t, repo, 71, "ayse@example.com")

	resp, err := svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{
		Items:         []domain.CartItem{{Barcode: "111", Quantity: 1}},
		PaymentMethod: "cash",
		Email:         "ayse@example.com",
	})
	if err != nil {
		t.Fatalf("checkout failed because of the receipt: %v", err)
	}
	if resp.ReceiptPath != "" {
		t.Fatalf("receipt path = %q, want empty on render failure", resp.ReceiptPath)
	}
	if len(resp.Orders) != 1 {
		t.Fatalf("local rows = %d, want 1", len(resp.Orders))
	}
}

func TestCheckoutResolvesCustomerRemotely(t *testing.T) {
	remote := &fakeRemote{
		search: map[string][]shopify.Customer{
			"email:remote@example.com": {{ID: 88, FirstName: "Remote", LastName: "Only", Email: "remote@example.com"}},
		},
	}
	svc, repo := newTestService(remote)
	ctx := context.Background()
	seedVariant(t, repo, 101, "111", "10.00", 1)

	resp, err := svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{
		Items:         []domain.CartItem{{Barcode: "111", Quantity: 1}},
		PaymentMethod: "cash",
		Email:         "remote@example.com",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if remote.createdOrders[0].Customer == nil || remote.createdOrders[0].Customer.ID != 88 {
		t.Fatalf("remote order customer = %+v, want id 88", remote.createdOrders[0].Customer)
	}
	if _, err := repo.GetCustomerByExternalID(ctx, 88); err != nil {
		t.Fatalf("remote customer was not persisted: %v", err)
	}
	if resp.Orders[0].CustomerID == nil {
		t.Fatal("local row has no customer id")
	}
}

func TestCheckoutUnknownCustomer(t *testing.T) {
	svc, repo := newTestService(&fakeRemote{search: map[string][]shopify.Customer{}})
	seedVariant(t, repo, 101, "111", "10.00", 1)

	_, err := svc.CreateCartOrder(context.Background(), domain.CartCheckoutRequest{
		Items:         []domain.CartItem{{Barcode: "111", Quantity: 1}},
		PaymentMethod: "cash",
		Email:         "nobody@example.com",
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCheckoutNewCustomerRejectsExistingEmail(t *testing.T) {
	svc, repo := newTestService(&fakeRemote{})
	seedVariant(t, repo, 101, "111", "10.00", 1)
	seedCustomer(t, repo, 71, "taken@example.com")

	_, err := svc.CreateCartOrder(context.Background(), domain.CartCheckoutRequest{
		Items:         []domain.CartItem{{Barcode: "111", Quantity: 1}},
		PaymentMethod: "cash",
		NewCustomer:   &domain.NewCustomer{FirstName: "New", LastName: "One", Email: "taken@example.com"},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestQuickOrderUnknownBarcode(t *testing.T) {
	svc, _ := newTestService(&fakeRemote{})

	_, err := svc.CreateQuickOrder(context.Background(), domain.QuickOrderRequest{
		Barcode:       "404404",
		PaymentMethod: "cash",
		Quantity:      1,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestManualOrderTagsAndDiscount(t *testing.T) {
	remote := &fakeRemote{}
	svc, _ := newTestService(remote)

	resp, err := svc.CreateManualOrder(context.Background(), domain.ManualOrderRequest{
		Title:         "Vintage Jacket",
		Size:          "L",
		Price:         decimal.RequireFromString("500.00"),
		Quantity:      1,
		PaymentMethod: "pos",
		Discount:      decimal.RequireFromString("50.00"),
	})
	if err != nil {
		t.Fatalf("manual order: %v", err)
	}

	input := remote.createdOrders[0]
	if input.Tags != "in-store, manual, pos" {
		t.Fatalf("tags = %q", input.Tags)
	}
	if !strings.Contains(input.Note, "Manual order") {
		t.Fatalf("note = %q", input.Note)
	}
	last := input.LineItems[len(input.LineItems)-1]
	if last.Title != "Discount" {
		t.Fatalf("discount line title = %q, want plain Discount", last.Title)
	}
	if !resp.FinalAmount.Equal(decimal.RequireFromString("450.00")) {
		t.Fatalf("final = %s, want 450.00", resp.FinalAmount)
	}
	if resp.Orders[0].Title != "Vintage Jacket - L" {
		t.Fatalf("row title = %q", resp.Orders[0].Title)
	}
}

func TestRemoteOrderFailureCreatesNoLocalRows(t *testing.T) {
	remote := &fakeRemote{failCreateOrder: true}
	svc, repo := newTestService(remote)
	ctx := context.Background()

	seedVariant(t, repo, 101, "111", "10.00", 1)
	seedCustomer(t, repo, 71, "ayse@example.com")

	_, err := svc.CreateCartOrder(ctx, domain.CartCheckoutRequest{
		Items:         []domain.CartItem{{Barcode: "111", Quantity: 1}},
		PaymentMethod: "cash",
		Email:         "ayse@example.com",
	})
	if err == nil {
		t.Fatal("expected error from remote order failure")
	}

	_, total, err := repo.ListOrderLines(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if total != 0 {
		t.Fatalf("local rows = %d after remote failure, want 0", total)
	}
}

func TestSearchCustomersLocalFirst(t *testing.T) {
	remote := &fakeRemote{
		search: map[string][]shopify.Customer{
			"email:ayse@example.com": {{ID: 999, Email: "ayse@example.com"}},
		},
	}
	svc, repo := newTestService(remote)
	ctx := context.Background()
	seedCustomer(t, repo, 71, "ayse@example.com")

	result, err := svc.SearchCustomers(ctx, domain.CustomerSearchQuery{Email: "ayse@example.com"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Source != "local" {
		t.Fatalf("source = %q, want local", result.Source)
	}
	if len(result.Customers) != 1 || result.Customers[0].ExternalCustomerID != 71 {
		t.Fatalf("customers = %+v", result.Customers)
	}
}

func TestSearchCustomersRemoteFallbackPersists(t *testing.T) {
	remote := &fakeRemote{
		search: map[string][]shopify.Customer{
			"email:new@example.com": {{ID: 88, FirstName: "New", Email: "new@example.com"}},
		},
	}
	svc, repo := newTestService(remote)
	ctx := context.Background()

	result, err := svc.SearchCustomers(ctx, domain.CustomerSearchQuery{Email: "new@example.com"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Source != "shopify" {
		t.Fatalf("source = %q, want shopify", result.Source)
	}
	if len(result.Customers) != 1 {
		t.Fatalf("customers = %+v", result.Customers)
	}
	if _, err := repo.GetCustomerByExternalID(ctx, 88); err != nil {
		t.Fatalf("remote match was not persisted: %v", err)
	}
}

func TestSearchCustomersRequiresSelector(t *testing.T) {
	svc, _ := newTestService(&fakeRemote{})
	_, err := svc.SearchCustomers(context.Background(), domain.CustomerSearchQuery{})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
