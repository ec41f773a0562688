package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/service"
	"meezypos/backend/internal/shopify"
	"meezypos/backend/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	webhookSecret string
	validate      *validator.Validate
	loginLimiter  *attemptLimiter
}

// New builds the API. auth may be nil, in which case every endpoint is open;
// webhookSecret may be empty, in which case webhook signatures are not
// checked.
func New(svc *service.Service, auth *AuthManager, allowedOrigin string, webhookSecret string) *API {
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		webhookSecret: webhookSecret,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", a.handleHealth)
	mux.HandleFunc("/auth/login", a.handleLogin)

	mux.HandleFunc("/sync-products", a.requireAuth(a.handleSyncProducts))
	mux.HandleFunc("/product/", a.requireAuth(a.handleProductByBarcode))
	mux.HandleFunc("/products", a.requireAuth(a.handleProducts))
	mux.HandleFunc("/products/search", a.requireAuth(a.handleProductSearch))
	mux.HandleFunc("/products/clear", a.requireAuth(a.handleProductsClear))

	mux.HandleFunc("/customers", a.requireAuth(a.handleCustomers))
	mux.HandleFunc("/customers/", a.requireAuth(a.handleCustomerByID))
	mux.HandleFunc("/customers/sync", a.requireAuth(a.handleSyncCustomers))
	mux.HandleFunc("/customers/search", a.requireAuth(a.handleCustomerSearch))
	mux.HandleFunc("/customers/create", a.requireAuth(a.handleCustomerCreate))

	mux.HandleFunc("/orders", a.requireAuth(a.handleOrders))
	mux.HandleFunc("/orders/", a.requireAuth(a.handleOrderByID))
	mux.HandleFunc("/orders/create", a.requireAuth(a.handleQuickOrder))
	mux.HandleFunc("/orders/create-cart", a.requireAuth(a.handleCartOrder))
	mux.HandleFunc("/orders/manual-create", a.requireAuth(a.handleManualOrder))
	mux.HandleFunc("/orders/stats/today", a.requireAuth(a.handleTodayStats))
	mux.HandleFunc("/orders/reports/", a.requireAuth(a.handleReports))

	// Webhooks carry their own HMAC authentication; a bearer token never
	// applies here.
	mux.HandleFunc("/webhooks/", a.handleWebhook)
	mux.HandleFunc("/webhooks/logs", a.requireAuth(a.handleWebhookLogs))
	mux.HandleFunc("/webhooks/stats", a.requireAuth(a.handleWebhookStats))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.auth == nil {
			next(w, r)
			return
		}

		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	if err := a.service.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if a.auth == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("authentication is not configured"))
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleSyncProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	result, err := a.service.SyncProducts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleSyncCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	result, err := a.service.SyncCustomers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleProductByBarcode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	barcode := strings.Trim(strings.TrimPrefix(r.URL.Path, "/product/"), "/")
	if barcode == "" {
		writeError(w, http.StatusBadRequest, errors.New("barcode required"))
		return
	}

	variants, err := a.service.GetProductByBarcode(r.Context(), barcode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"barcode":  barcode,
		"variants": variants,
		"count":    len(variants),
	})
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	offset := parseNonNegative(r.URL.Query().Get("offset"), 0)
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 50, 250)

	variants, total, err := a.service.ListProducts(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": variants,
		"total":    total,
		"offset":   offset,
		"limit":    limit,
	})
}

func (a *API) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	variants, err := a.service.SearchProducts(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":    query,
		"products": variants,
		"count":    len(variants),
	})
}

func (a *API) handleProductsClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}

	deleted, err := a.service.ClearProducts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"deleted": deleted,
	})
}

func (a *API) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	offset := parseNonNegative(r.URL.Query().Get("offset"), 0)
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 50, 250)

	customers, total, err := a.service.ListCustomers(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customers": customers,
		"total":     total,
		"offset":    offset,
		"limit":     limit,
	})
}

func (a *API) handleCustomerByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/customers/"), "/")
	id, err := strconv.ParseInt(tail, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, errors.New("customer id required"))
		return
	}

	customer, err := a.service.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (a *API) handleCustomerSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	query := domain.CustomerSearchQuery{
		Email:     strings.TrimSpace(q.Get("email")),
		Phone:     strings.TrimSpace(q.Get("phone")),
		FirstName: strings.TrimSpace(q.Get("first_name")),
		LastName:  strings.TrimSpace(q.Get("last_name")),
		Name:      strings.TrimSpace(q.Get("name")),
	}

	result, err := a.service.SearchCustomers(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// A single hit on an exact selector is the common scan-and-go case; the
	// till expects the bare customer object then.
	if len(result.Customers) == 1 && (query.Email != "" || query.Phone != "") {
		writeJSON(w, http.StatusOK, map[string]any{
			"source":   result.Source,
			"customer": result.Customers[0],
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":    result.Source,
		"customers": result.Customers,
		"count":     len(result.Customers),
	})
}

func (a *API) handleCustomerCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	customer, err := a.service.CreateCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	offset := parseNonNegative(r.URL.Query().Get("offset"), 0)
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 50, 250)

	orders, total, err := a.service.ListOrders(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

func (a *API) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/orders/"), "/")
	id, err := strconv.ParseInt(tail, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, errors.New("order id required"))
		return
	}

	order, err := a.service.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleQuickOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	quantity := parsePositiveLimit(q.Get("quantity"), 1, 0)
	req := domain.QuickOrderRequest{
		Barcode:       strings.TrimSpace(q.Get("barcode")),
		PaymentMethod: strings.TrimSpace(q.Get("payment_method")),
		Email:         strings.TrimSpace(q.Get("email")),
		Quantity:      quantity,
	}

	resp, err := a.service.CreateQuickOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCartOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CartCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.CreateCartOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleManualOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.ManualOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.service.CreateManualOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleTodayStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	stats, err := a.service.TodayStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	period := strings.Trim(strings.TrimPrefix(r.URL.Path, "/orders/reports/"), "/")
	var (
		rep domain.SalesReport
		err error
	)
	switch period {
	case "weekly":
		rep, err = a.service.WeeklyReport(r.Context())
	case "monthly":
		rep, err = a.service.MonthlyReport(r.Context())
	case "custom":
		rep, err = a.service.CustomReport(r.Context(),
			strings.TrimSpace(r.URL.Query().Get("start_date")),
			strings.TrimSpace(r.URL.Query().Get("end_date")))
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown report period"))
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	topic := strings.Trim(strings.TrimPrefix(r.URL.Path, "/webhooks/"), "/")
	if topic == "" {
		writeError(w, http.StatusBadRequest, errors.New("webhook topic required"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if a.webhookSecret != "" {
		signature := r.Header.Get("X-Shopify-Hmac-SHA256")
		if !shopify.VerifyWebhookSignature(a.webhookSecret, body, signature) {
			writeError(w, http.StatusUnauthorized, errors.New("invalid webhook signature"))
			return
		}
	}

	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, errors.New("invalid json payload"))
		return
	}

	result, err := a.service.HandleWebhook(r.Context(), topic, body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleWebhookLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	filter := domain.WebhookLogFilter{
		Limit:  parsePositiveLimit(q.Get("limit"), 50, 500),
		Topic:  strings.TrimSpace(q.Get("topic")),
		Status: strings.TrimSpace(q.Get("status")),
	}

	events, err := a.service.WebhookLogs(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"logs":  events,
		"count": len(events),
	})
}

func (a *API) handleWebhookStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	stats, err := a.service.WebhookStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func parseNonNegative(raw string, fallback int) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// writeServiceError maps the store sentinels onto HTTP statuses; anything
// unrecognized is an internal error.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx messages are masked; SQL errors and remote API responses must not
	// leak to clients.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
