package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultAPIVersion = "2024-10"
	pageLimit         = 250
	requestTimeout    = 30 * time.Second
)

var ErrMissingCredentials = errors.New("shopify: shop URL and access token are required")

// Config carries the per-shop credentials. New fails fast when they are
// absent; there is no lazy or global initialization.
type Config struct {
	ShopURL     string
	AccessToken string
	APIVersion  string

	// HTTPClient overrides the default 30s-timeout client, used in tests.
	HTTPClient *http.Client
}

// Client talks to one shop's REST Admin API. List calls follow the Link
// header's rel="next" cursor sequentially and never retry: a failed page
// fetch ends the walk and whatever was accumulated so far is returned.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	token      string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ShopURL) == "" || strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, ErrMissingCredentials
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	base := strings.TrimSuffix(cfg.ShopURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	return &Client{
		httpClient: httpClient,
		// REST Admin API budget is 2 requests/second with a small burst bucket.
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		baseURL: fmt.Sprintf("%s/admin/api/%s", base, version),
		token:   cfg.AccessToken,
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// do issues one request and decodes the JSON response into out when out is
// non-nil. It returns the response headers so list callers can read the Link
// cursor.
func (c *Client) do(ctx context.Context, method string, rawURL string, body any, out any) (http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("shopify: %s %s returned %d: %s", method, rawURL, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("shopify: decode response: %w", err)
		}
	}
	return resp.Header, nil
}

// nextPageURL extracts the rel="next" URL from a Link response header, or ""
// when there is no next page.
func nextPageURL(linkHeader string) string {
	for _, link := range strings.Split(linkHeader, ",") {
		if !strings.Contains(link, `rel="next"`) {
			continue
		}
		part := strings.TrimSpace(strings.SplitN(link, ";", 2)[0])
		return strings.Trim(part, "<>")
	}
	return ""
}

// ListProducts fetches the whole catalog page by page. The walk is strictly
// sequential; a page failure truncates the result rather than failing it.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	all := make([]Product, 0, pageLimit)
	pageURL := fmt.Sprintf("%s?limit=%d", c.endpoint("products.json"), pageLimit)

	for pageURL != "" {
		var page struct {
			Products []Product `json:"products"`
		}
		headers, err := c.do(ctx, http.MethodGet, pageURL, nil, &page)
		if err != nil {
			log.Printf("[shopify] WARN: products page fetch failed, returning %d fetched so far: %v", len(all), err)
			break
		}
		if len(page.Products) == 0 {
			break
		}
		all = append(all, page.Products...)
		pageURL = nextPageURL(headers.Get("Link"))
	}
	return all, nil
}

// ListCustomers fetches the whole customer list, same walk rules as
// ListProducts.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	all := make([]Customer, 0, pageLimit)
	pageURL := fmt.Sprintf("%s?limit=%d", c.endpoint("customers.json"), pageLimit)

	for pageURL != "" {
		var page struct {
			Customers []Customer `json:"customers"`
		}
		headers, err := c.do(ctx, http.MethodGet, pageURL, nil, &page)
		if err != nil {
			log.Printf("[shopify] WARN: customers page fetch failed, returning %d fetched so far: %v", len(all), err)
			break
		}
		if len(page.Customers) == 0 {
			break
		}
		all = append(all, page.Customers...)
		pageURL = nextPageURL(headers.Get("Link"))
	}
	return all, nil
}

// SearchCustomers runs a remote customer search with a raw query expression,
// e.g. "email:someone@example.com" or a bare name fragment.
func (c *Client) SearchCustomers(ctx context.Context, query string) ([]Customer, error) {
	var out struct {
		Customers []Customer `json:"customers"`
	}
	searchURL := fmt.Sprintf("%s?query=%s", c.endpoint("customers/search.json"), url.QueryEscape(query))
	if _, err := c.do(ctx, http.MethodGet, searchURL, nil, &out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

func (c *Client) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	var out struct {
		Customer *Customer `json:"customer"`
	}
	payload := map[string]CustomerInput{"customer": in}
	if _, err := c.do(ctx, http.MethodPost, c.endpoint("customers.json"), payload, &out); err != nil {
		return nil, err
	}
	if out.Customer == nil {
		return nil, errors.New("shopify: customer creation returned no customer")
	}
	return out.Customer, nil
}

func (c *Client) CreateOrder(ctx context.Context, in OrderInput) (*Order, error) {
	var out struct {
		Order *Order `json:"order"`
	}
	payload := map[string]OrderInput{"order": in}
	if _, err := c.do(ctx, http.MethodPost, c.endpoint("orders.json"), payload, &out); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, errors.New("shopify: order creation returned no order")
	}
	return out.Order, nil
}

// ListOrdersCreatedBetween fetches orders in a created_at window, any
// financial status by default. Timestamps are ISO 8601 strings, passed
// through to the remote API verbatim.
func (c *Client) ListOrdersCreatedBetween(ctx context.Context, createdAtMin string, createdAtMax string, status string) ([]Order, error) {
	if status == "" {
		status = "any"
	}
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", pageLimit))
	params.Set("status", status)
	params.Set("created_at_min", createdAtMin)
	params.Set("created_at_max", createdAtMax)

	all := make([]Order, 0, pageLimit)
	pageURL := c.endpoint("orders.json") + "?" + params.Encode()

	for pageURL != "" {
		var page struct {
			Orders []Order `json:"orders"`
		}
		headers, err := c.do(ctx, http.MethodGet, pageURL, nil, &page)
		if err != nil {
			log.Printf("[shopify] WARN: orders page fetch failed, returning %d fetched so far: %v", len(all), err)
			break
		}
		if len(page.Orders) == 0 {
			break
		}
		all = append(all, page.Orders...)
		pageURL = nextPageURL(headers.Get("Link"))
	}
	return all, nil
}
