package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := New(Config{
		ShopURL:     server.URL,
		AccessToken: "shpat_test",
		HTTPClient:  server.Client(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(Config{ShopURL: "", AccessToken: "token"}); err != ErrMissingCredentials {
		t.Fatalf("missing shop url: err = %v", err)
	}
	if _, err := New(Config{ShopURL: "example.myshopify.com", AccessToken: "  "}); err != ErrMissingCredentials {
		t.Fatalf("blank token: err = %v", err)
	}
	if _, err := New(Config{ShopURL: "example.myshopify.com", AccessToken: "token"}); err != nil {
		t.Fatalf("valid config: err = %v", err)
	}
}

func TestListProductsFollowsLinkHeader(t *testing.T) {
	var tokens []string
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("X-Shopify-Access-Token"))
		switch r.URL.Query().Get("page_info") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-10/products.json?page_info=two>; rel="next"`, server.URL))
			fmt.Fprint(w, `{"products": [{"id": 1, "title": "First"}]}`)
		case "two":
			fmt.Fprint(w, `{"products": [{"id": 2, "title": "Second"}]}`)
		default:
			http.Error(w, "bad cursor", http.StatusBadRequest)
		}
	}))
	defer server.Close()

	products, err := testClient(t, server).ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("products = %d, want both pages", len(products))
	}
	if products[0].ID != 1 || products[1].ID != 2 {
		t.Fatalf("page order wrong: %+v", products)
	}
	for _, token := range tokens {
		if token != "shpat_test" {
			t.Fatalf("access token header = %q", token)
		}
	}
}

func TestListProductsTruncatesOnPageFailure(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page_info") == "two" {
			http.Error(w, "throttled", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-10/products.json?page_info=two>; rel="next"`, server.URL))
		fmt.Fprint(w, `{"products": [{"id": 1, "title": "First"}]}`)
	}))
	defer server.Close()

	products, err := testClient(t, server).ListProducts(context.Background())
	if err != nil {
		t.Fatalf("a failed page must not fail the walk: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("products = %d, want the first page only", len(products))
	}
}

func TestNextPageURL(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{`<https://shop/x?page_info=a>; rel="previous"`, ""},
		{`<https://shop/x?page_info=a>; rel="next"`, "https://shop/x?page_info=a"},
		{`<https://shop/x?page_info=a>; rel="previous", <https://shop/x?page_info=b>; rel="next"`, "https://shop/x?page_info=b"},
	}
	for _, tc := range cases {
		if got := nextPageURL(tc.header); got != tc.want {
			t.Errorf("nextPageURL(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestCreateOrderPostsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/admin/api/2024-10/orders.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		fmt.Fprint(w, `{"order": {"id": 9001, "order_number": 1001}}`)
	}))
	defer server.Close()

	order, err := testClient(t, server).CreateOrder(context.Background(), OrderInput{
		LineItems:       []OrderLineInput{{Title: "Classic Tee", Quantity: 1, Price: "100.00"}},
		FinancialStatus: "paid",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != 9001 || order.OrderNumber != 1001 {
		t.Fatalf("order = %+v", order)
	}
}

func TestCreateOrderErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors": "line_items required"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := testClient(t, server).CreateOrder(context.Background(), OrderInput{})
	if err == nil {
		t.Fatal("expected error for 422 response")
	}
}

func TestSearchCustomersEscapesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "email:ayse@example.com" {
			t.Errorf("query = %q", got)
		}
		fmt.Fprint(w, `{"customers": [{"id": 71, "email": "ayse@example.com"}]}`)
	}))
	defer server.Close()

	customers, err := testClient(t, server).SearchCustomers(context.Background(), "email:ayse@example.com")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(customers) != 1 || customers[0].ID != 71 {
		t.Fatalf("customers = %+v", customers)
	}
}

func TestListOrdersCreatedBetweenSendsWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("created_at_min") != "2026-03-09T00:00:00+03:00" {
			t.Errorf("created_at_min = %q", q.Get("created_at_min"))
		}
		if q.Get("status") != "any" {
			t.Errorf("status = %q, want the default", q.Get("status"))
		}
		fmt.Fprint(w, `{"orders": [{"id": 1, "total_price": "100.00"}]}`)
	}))
	defer server.Close()

	orders, err := testClient(t, server).ListOrdersCreatedBetween(
		context.Background(), "2026-03-09T00:00:00+03:00", "2026-03-12T00:00:00+03:00", "")
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("orders = %d", len(orders))
	}
}
