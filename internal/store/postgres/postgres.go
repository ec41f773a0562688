package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the tables on first boot. Statements are idempotent so
// calling it on every start is safe.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			shopify_variant_id BIGINT NOT NULL,
			shopify_product_id BIGINT NOT NULL DEFAULT 0,
			title TEXT NOT NULL DEFAULT '',
			sku TEXT NOT NULL DEFAULT '',
			barcode TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			inventory_quantity INT NOT NULL DEFAULT 0,
			variant_title TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_shopify_variant_id ON products (shopify_variant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_products_barcode ON products (barcode)`,
		`CREATE INDEX IF NOT EXISTS idx_products_shopify_product_id ON products (shopify_product_id)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			shopify_customer_id BIGINT NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_email ON customers (email)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			shopify_order_id BIGINT,
			customer_id BIGINT,
			product_id BIGINT,
			barcode TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			quantity INT NOT NULL DEFAULT 1,
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			payment_method TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'completed',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_shopify_order_id ON orders (shopify_order_id)`,
		`CREATE TABLE IF NOT EXISTS webhook_events (
			id BIGSERIAL PRIMARY KEY,
			topic TEXT NOT NULL,
			shopify_id BIGINT,
			payload TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'processing',
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_events_topic ON webhook_events (topic)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertVariant(ctx context.Context, db execer, variant domain.Variant) (created bool, err error) {
	res, err := db.ExecContext(ctx, `
		UPDATE products
		SET shopify_product_id = $2, title = $3, sku = $4, barcode = $5, price = $6,
			inventory_quantity = $7, variant_title = $8, image_url = $9, updated_at = now()
		WHERE shopify_variant_id = $1
	`, variant.ExternalVariantID, variant.ExternalProductID, variant.Title, variant.SKU,
		variant.Barcode, variant.Price, variant.InventoryQuantity, variant.VariantTitle, variant.ImageURL)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return false, nil
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO products (
			shopify_variant_id, shopify_product_id, title, sku, barcode, price,
			inventory_quantity, variant_title, image_url, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())
	`, variant.ExternalVariantID, variant.ExternalProductID, variant.Title, variant.SKU,
		variant.Barcode, variant.Price, variant.InventoryQuantity, variant.VariantTitle, variant.ImageURL)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ApplyVariantUpserts(ctx context.Context, variants []domain.Variant) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	added, updated := 0, 0
	for _, v := range variants {
		if v.ExternalVariantID == 0 {
			return 0, 0, store.ErrInvalidInput
		}
		created, err := upsertVariant(ctx, tx, v)
		if err != nil {
			return 0, 0, err
		}
		if created {
			added++
		} else {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return added, updated, nil
}

func (s *Store) UpsertVariant(ctx context.Context, variant domain.Variant) (bool, error) {
	if variant.ExternalVariantID == 0 {
		return false, store.ErrInvalidInput
	}
	return upsertVariant(ctx, s.db, variant)
}

const variantColumns = `id, shopify_variant_id, shopify_product_id, title, sku, barcode,
	price, inventory_quantity, variant_title, image_url, created_at, updated_at`

func scanVariant(row interface{ Scan(dest ...any) error }) (domain.Variant, error) {
	var v domain.Variant
	err := row.Scan(&v.ID, &v.ExternalVariantID, &v.ExternalProductID, &v.Title, &v.SKU,
		&v.Barcode, &v.Price, &v.InventoryQuantity, &v.VariantTitle, &v.ImageURL, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (s *Store) GetVariantByExternalID(ctx context.Context, externalVariantID int64) (*domain.Variant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+variantColumns+`
		FROM products
		WHERE shopify_variant_id = $1
	`, externalVariantID)
	v, err := scanVariant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *Store) queryVariants(ctx context.Context, query string, args ...any) ([]domain.Variant, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := make([]domain.Variant, 0, 16)
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return variants, nil
}

func (s *Store) GetVariantsByBarcode(ctx context.Context, barcode string) ([]domain.Variant, error) {
	return s.queryVariants(ctx, `
		SELECT `+variantColumns+`
		FROM products
		WHERE barcode = $1
		ORDER BY id
	`, barcode)
}

func (s *Store) ListVariants(ctx context.Context, offset int, limit int) ([]domain.Variant, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, err
	}

	variants, err := s.queryVariants(ctx, `
		SELECT `+variantColumns+`
		FROM products
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return variants, total, nil
}

func (s *Store) SearchVariants(ctx context.Context, query string) ([]domain.Variant, error) {
	pattern := "%" + query + "%"
	return s.queryVariants(ctx, `
		SELECT `+variantColumns+`
		FROM products
		WHERE title ILIKE $1 OR sku ILIKE $1 OR barcode ILIKE $1
		ORDER BY id
	`, pattern)
}

func (s *Store) DeleteVariantsByExternalProductID(ctx context.Context, externalProductID int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM products WHERE shopify_product_id = $1
	`, externalProductID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *Store) SetVariantQuantityByExternalID(ctx context.Context, externalVariantID int64, quantity int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET inventory_quantity = $2, updated_at = now()
		WHERE shopify_variant_id = $1
	`, externalVariantID, quantity)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) ClearVariants(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return 0, err
	}
	return count, nil
}

func upsertCustomer(ctx context.Context, db execer, customer domain.Customer) (created bool, err error) {
	res, err := db.ExecContext(ctx, `
		UPDATE customers
		SET first_name = $2, last_name = $3, email = $4, phone = $5,
			address = $6, city = $7, country = $8, updated_at = now()
		WHERE shopify_customer_id = $1
	`, customer.ExternalCustomerID, customer.FirstName, customer.LastName, customer.Email,
		customer.Phone, customer.Address, customer.City, customer.Country)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return false, nil
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO customers (
			shopify_customer_id, first_name, last_name, email, phone,
			address, city, country, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now(),now())
	`, customer.ExternalCustomerID, customer.FirstName, customer.LastName, customer.Email,
		customer.Phone, customer.Address, customer.City, customer.Country)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ApplyCustomerUpserts(ctx context.Context, customers []domain.Customer) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	added, updated := 0, 0
	for _, c := range customers {
		if c.ExternalCustomerID == 0 {
			return 0, 0, store.ErrInvalidInput
		}
		created, err := upsertCustomer(ctx, tx, c)
		if err != nil {
			return 0, 0, err
		}
		if created {
			added++
		} else {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return added, updated, nil
}

func (s *Store) UpsertCustomer(ctx context.Context, customer domain.Customer) (bool, error) {
	if customer.ExternalCustomerID == 0 {
		return false, store.ErrInvalidInput
	}
	return upsertCustomer(ctx, s.db, customer)
}

const customerColumns = `id, shopify_customer_id, first_name, last_name, email, phone,
	address, city, country, created_at, updated_at`

func scanCustomer(row interface{ Scan(dest ...any) error }) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.ExternalCustomerID, &c.FirstName, &c.LastName, &c.Email,
		&c.Phone, &c.Address, &c.City, &c.Country, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (
			shopify_customer_id, first_name, last_name, email, phone,
			address, city, country, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now(),now())
		RETURNING `+customerColumns+`
	`, customer.ExternalCustomerID, customer.FirstName, customer.LastName, customer.Email,
		customer.Phone, customer.Address, customer.City, customer.Country)
	created, err := scanCustomer(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	return &created, nil
}

func (s *Store) getCustomer(ctx context.Context, where string, arg any) (*domain.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE `+where+`
		ORDER BY id
		LIMIT 1
	`, arg)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.getCustomer(ctx, "id = $1", id)
}

func (s *Store) GetCustomerByExternalID(ctx context.Context, externalCustomerID int64) (*domain.Customer, error) {
	return s.getCustomer(ctx, "shopify_customer_id = $1", externalCustomerID)
}

func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return s.getCustomer(ctx, "lower(email) = lower($1)", email)
}

func (s *Store) SearchCustomers(ctx context.Context, query domain.CustomerSearchQuery) ([]domain.Customer, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if query.Email != "" {
		add("email ILIKE '%%' || $%d || '%%'", query.Email)
	}
	if query.Phone != "" {
		add("regexp_replace(phone, '[^0-9]', '', 'g') LIKE '%%' || regexp_replace($%d, '[^0-9]', '', 'g') || '%%'", query.Phone)
	}
	if query.Name != "" {
		add("(first_name || ' ' || last_name) ILIKE '%%' || $%d || '%%'", query.Name)
	}
	if query.FirstName != "" {
		add("first_name ILIKE '%%' || $%d || '%%'", query.FirstName)
	}
	if query.LastName != "" {
		add("last_name ILIKE '%%' || $%d || '%%'", query.LastName)
	}
	if len(conditions) == 0 {
		return []domain.Customer{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE `+strings.Join(conditions, " OR ")+`
		ORDER BY id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 8)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) ListCustomers(ctx context.Context, offset int, limit int) ([]domain.Customer, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

const orderColumns = `id, shopify_order_id, customer_id, product_id, barcode, title,
	quantity, price, payment_method, status, created_at`

func scanOrderLine(row interface{ Scan(dest ...any) error }) (domain.OrderLine, error) {
	var line domain.OrderLine
	err := row.Scan(&line.ID, &line.ExternalOrderID, &line.CustomerID, &line.ProductID,
		&line.Barcode, &line.Title, &line.Quantity, &line.Price, &line.PaymentMethod,
		&line.Status, &line.CreatedAt)
	return line, err
}

func (s *Store) CreateOrderLines(ctx context.Context, lines []domain.OrderLine) ([]domain.OrderLine, error) {
	if len(lines) == 0 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO orders (
				shopify_order_id, customer_id, product_id, barcode, title,
				quantity, price, payment_method, status, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
			RETURNING `+orderColumns+`
		`, line.ExternalOrderID, line.CustomerID, line.ProductID, line.Barcode, line.Title,
			line.Quantity, line.Price, line.PaymentMethod, line.Status)
		inserted, err := scanOrderLine(row)
		if err != nil {
			return nil, err
		}
		created = append(created, inserted)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) GetOrderLineByID(ctx context.Context, id int64) (*domain.OrderLine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)
	line, err := scanOrderLine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

func (s *Store) ListOrderLines(ctx context.Context, offset int, limit int) ([]domain.OrderLine, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0, limit)
	for rows.Next() {
		line, err := scanOrderLine(rows)
		if err != nil {
			return nil, 0, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return lines, total, nil
}

func (s *Store) ListOrderLinesByExternalOrderID(ctx context.Context, externalOrderID int64) ([]domain.OrderLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE shopify_order_id = $1
		ORDER BY id
	`, externalOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0, 4)
	for rows.Next() {
		line, err := scanOrderLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Store) UpdateOrderStatusByExternalOrderID(ctx context.Context, externalOrderID int64, status string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2
		WHERE shopify_order_id = $1
	`, externalOrderID, status)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *Store) CreateWebhookEvent(ctx context.Context, event domain.WebhookEvent) (*domain.WebhookEvent, error) {
	if event.Topic == "" {
		return nil, store.ErrInvalidInput
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO webhook_events (topic, shopify_id, payload, status, created_at)
		VALUES ($1,$2,$3,$4,now())
		RETURNING id, topic, shopify_id, payload, status, error_message, created_at
	`, event.Topic, event.ExternalID, event.Payload, string(domain.WebhookProcessing))

	var created domain.WebhookEvent
	if err := row.Scan(&created.ID, &created.Topic, &created.ExternalID, &created.Payload,
		&created.Status, &created.ErrorMessage, &created.CreatedAt); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) FinalizeWebhookEvent(ctx context.Context, id int64, status domain.WebhookStatus, errorMessage string) error {
	if !status.Terminal() {
		return fmt.Errorf("invalid terminal webhook status %q", status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE webhook_events
		SET status = $2, error_message = $3
		WHERE id = $1 AND status = $4
	`, id, string(status), errorMessage, string(domain.WebhookProcessing))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM webhook_events WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return domain.ErrAlreadyFinalized
}

func (s *Store) ListWebhookEvents(ctx context.Context, filter domain.WebhookLogFilter) ([]domain.WebhookEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	conditions := []string{"TRUE"}
	args := []any{limit}
	if filter.Topic != "" {
		args = append(args, filter.Topic)
		conditions = append(conditions, fmt.Sprintf("topic = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, shopify_id, payload, status, error_message, created_at
		FROM webhook_events
		WHERE `+strings.Join(conditions, " AND ")+`
		ORDER BY id DESC
		LIMIT $1
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.WebhookEvent, 0, limit)
	for rows.Next() {
		var event domain.WebhookEvent
		if err := rows.Scan(&event.ID, &event.Topic, &event.ExternalID, &event.Payload,
			&event.Status, &event.ErrorMessage, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) GetWebhookStats(ctx context.Context) (domain.WebhookStats, error) {
	stats := domain.WebhookStats{
		ByStatus: make(map[string]int),
		ByTopic:  make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT topic, status, COUNT(*)
		FROM webhook_events
		GROUP BY topic, status
	`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var topic, status string
		var count int
		if err := rows.Scan(&topic, &status, &count); err != nil {
			return stats, err
		}
		stats.ByTopic[topic] += count
		stats.ByStatus[status] += count
		stats.TotalWebhooks += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
