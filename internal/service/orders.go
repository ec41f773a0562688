package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/receipt"
	"meezypos/backend/internal/shopify"
	"meezypos/backend/internal/store"
)

// acceptedItem is one cart entry that survived validation and product
// resolution, ready to become both a remote line item and a local order row.
type acceptedItem struct {
	title     string
	quantity  int
	price     decimal.Decimal
	barcode   string
	productID *int64
	variantID *int64
}

type orderParams struct {
	customer *domain.Customer
	items    []acceptedItem
	payment  string
	discount decimal.Decimal
	reason   string
	manual   bool
}

func validPayment(method string) bool {
	return method == "cash" || method == "pos"
}

// resolveCustomerByEmail finds the customer locally, then remotely. A remote
// hit is persisted so the mirror converges without waiting for a bulk sync.
func (s *Service) resolveCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	local, err := s.repo.GetCustomerByEmail(ctx, email)
	if err == nil {
		return local, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	remote, err := s.remote.SearchCustomers(ctx, "email:"+email)
	if err != nil {
		return nil, fmt.Errorf("remote customer search: %w", err)
	}
	for _, rc := range remote {
		if rc.ID == 0 {
			continue
		}
		if _, err := s.repo.UpsertCustomer(ctx, customerFromRemote(rc)); err != nil {
			log.Printf("[service] WARN: failed to persist customer shopify_id=%d: %v", rc.ID, err)
		}
		if stored, err := s.repo.GetCustomerByExternalID(ctx, rc.ID); err == nil {
			return stored, nil
		}
		converted := customerFromRemote(rc)
		return &converted, nil
	}
	return nil, fmt.Errorf("%w: customer with email %s", store.ErrNotFound, email)
}

func (s *Service) registerNewCustomer(ctx context.Context, nc domain.NewCustomer) (*domain.Customer, error) {
	if existing, err := s.repo.GetCustomerByEmail(ctx, nc.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: customer with email %s already exists", store.ErrInvalidInput, nc.Email)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	created, err := s.remote.CreateCustomer(ctx, customerInputFromRequest(nc.FirstName, nc.LastName, nc.Email, nc.Phone, nc.Address))
	if err != nil {
		return nil, fmt.Errorf("create remote customer: %w", err)
	}
	local, err := s.repo.CreateCustomer(ctx, customerFromRemote(*created))
	if err != nil {
		return nil, fmt.Errorf("persist customer: %w", err)
	}
	return local, nil
}

func customTitle(title, size string) string {
	title = strings.TrimSpace(title)
	if size != "" {
		return title + " - " + size
	}
	return title
}

// resolveBarcodeItem matches one scanned barcode against the local mirror.
func (s *Service) resolveBarcodeItem(ctx context.Context, barcode string, quantity int) (acceptedItem, error) {
	variants, err := s.repo.GetVariantsByBarcode(ctx, barcode)
	if err != nil {
		return acceptedItem{}, err
	}
	if len(variants) == 0 {
		return acceptedItem{}, fmt.Errorf("%w: product with barcode %s", store.ErrNotFound, barcode)
	}

	// Prefer a variant that is actually in stock; sizes share barcodes.
	chosen := variants[0]
	for _, v := range variants {
		if v.InventoryQuantity > 0 {
			chosen = v
			break
		}
	}

	title := chosen.Title
	if chosen.VariantTitle != "" && chosen.VariantTitle != "Default Title" {
		title = chosen.Title + " - " + chosen.VariantTitle
	}
	externalVariantID := chosen.ExternalVariantID
	productID := chosen.ID
	return acceptedItem{
		title:     title,
		quantity:  quantity,
		price:     chosen.Price,
		barcode:   chosen.Barcode,
		productID: &productID,
		variantID: &externalVariantID,
	}, nil
}

// resolveCartItems turns raw cart entries into accepted items. Entries that
// cannot be honored are dropped without failing the cart: custom entries with
// no title or a non-positive price, and barcode entries with a missing or
// unmatched barcode.
func (s *Service) resolveCartItems(ctx context.Context, items []domain.CartItem) ([]acceptedItem, error) {
	accepted := make([]acceptedItem, 0, len(items))
	for _, item := range items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}

		if item.Type == "custom" {
			if strings.TrimSpace(item.Title) == "" || !item.Price.IsPositive() {
				continue
			}
			accepted = append(accepted, acceptedItem{
				title:    customTitle(item.Title, item.Size),
				quantity: quantity,
				price:    item.Price,
			})
			continue
		}

		if item.Barcode == "" {
			continue
		}
		resolved, err := s.resolveBarcodeItem(ctx, item.Barcode, quantity)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, resolved)
	}
	return accepted, nil
}

func orderTags(payment string, manual bool) string {
	if manual {
		return "in-store, manual, " + payment
	}
	return "in-store, " + payment
}

// placeOrder runs the shared tail of every checkout flow: totals, discount,
// one remote order, local fan-out, best-effort receipt.
func (s *Service) placeOrder(ctx context.Context, p orderParams) (domain.CheckoutResponse, error) {
	if len(p.items) == 0 {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: no valid items to order", store.ErrInvalidInput)
	}
	if !validPayment(p.payment) {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: payment method must be cash or pos", store.ErrInvalidInput)
	}

	original := decimal.Zero
	for _, item := range p.items {
		original = original.Add(item.price.Mul(decimal.NewFromInt(int64(item.quantity))))
	}

	final := original
	if p.discount.IsPositive() {
		if p.discount.GreaterThanOrEqual(original) {
			return domain.CheckoutResponse{}, fmt.Errorf("%w: discount %s must be less than the order total %s",
				store.ErrInvalidInput, p.discount.StringFixed(2), original.StringFixed(2))
		}
		final = original.Sub(p.discount)
	} else if p.discount.IsNegative() {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: discount cannot be negative", store.ErrInvalidInput)
	}

	lineInputs := make([]shopify.OrderLineInput, 0, len(p.items)+1)
	for _, item := range p.items {
		lineInputs = append(lineInputs, shopify.OrderLineInput{
			Title:     item.title,
			Quantity:  item.quantity,
			Price:     item.price.StringFixed(2),
			VariantID: item.variantID,
		})
	}

	var note string
	if p.discount.IsPositive() {
		discountTitle := "Discount"
		if p.manual {
			note = fmt.Sprintf("Manual order - Discount applied: %s TL", p.discount.StringFixed(2))
		} else {
			note = fmt.Sprintf("Discount applied: %s TL - Reason: %s", p.discount.StringFixed(2), p.reason)
			if p.reason != "" {
				discountTitle = "Discount - " + p.reason
			}
		}
		lineInputs = append(lineInputs, shopify.OrderLineInput{
			Title:    discountTitle,
			Quantity: 1,
			Price:    p.discount.Neg().StringFixed(2),
		})
	}

	input := shopify.OrderInput{
		LineItems:       lineInputs,
		Tags:            orderTags(p.payment, p.manual),
		FinancialStatus: "paid",
		Note:            note,
		Transactions: []shopify.TransactionInput{{
			Kind:    "sale",
			Status:  "success",
			Amount:  final.StringFixed(2),
			Gateway: p.payment,
		}},
	}
	if p.customer != nil {
		input.Email = p.customer.Email
		if p.customer.ExternalCustomerID != 0 {
			input.Customer = &shopify.CustomerRef{ID: p.customer.ExternalCustomerID}
		}
	}

	order, err := s.remote.CreateOrder(ctx, input)
	if err != nil {
		return domain.CheckoutResponse{}, fmt.Errorf("create remote order: %w", err)
	}

	externalOrderID := order.ID
	lines := make([]domain.OrderLine, 0, len(p.items))
	for _, item := range p.items {
		line := domain.OrderLine{
			ExternalOrderID: &externalOrderID,
			ProductID:       item.productID,
			Barcode:         item.barcode,
			Title:           item.title,
			Quantity:        item.quantity,
			Price:           item.price,
			PaymentMethod:   p.payment,
			Status:          "completed",
		}
		if p.customer != nil && p.customer.ID != 0 {
			customerID := p.customer.ID
			line.CustomerID = &customerID
		}
		lines = append(lines, line)
	}

	created, err := s.repo.CreateOrderLines(ctx, lines)
	if err != nil {
		return domain.CheckoutResponse{}, fmt.Errorf("persist order lines: %w", err)
	}

	response := domain.CheckoutResponse{
		Status:          "success",
		Message:         fmt.Sprintf("Order #%d created", order.OrderNumber),
		ShopifyOrderID:  order.ID,
		ShopifyOrderNum: order.OrderNumber,
		OriginalAmount:  original.Round(2),
		FinalAmount:     final.Round(2),
		ItemsCount:      len(p.items),
		Orders:          created,
	}
	if p.discount.IsPositive() {
		response.DiscountApplied = p.discount.Round(2)
		response.DiscountReason = p.reason
	}

	if s.receipts != nil {
		receiptItems := make([]receipt.Item, 0, len(p.items))
		for _, item := range p.items {
			receiptItems = append(receiptItems, receipt.Item{
				Title:    item.title,
				Quantity: item.quantity,
				Price:    item.price,
			})
		}
		var customerName string
		if p.customer != nil {
			customerName = strings.TrimSpace(p.customer.FirstName + " " + p.customer.LastName)
		}
		path, err := s.receipts.Render(receipt.Data{
			OrderNumber:   order.OrderNumber,
			CreatedAt:     time.Now(),
			CustomerName:  customerName,
			Items:         receiptItems,
			Subtotal:      original.Round(2),
			Discount:      p.discount.Round(2),
			DiscountNote:  p.reason,
			Total:         final.Round(2),
			PaymentMethod: p.payment,
		})
		if err != nil {
			log.Printf("[service] WARN: failed to render receipt for order %d: %v", order.OrderNumber, err)
		} else {
			response.ReceiptPath = path
		}
	}

	return response, nil
}

// CreateCartOrder checks out a mixed cart against exactly one customer,
// identified either by email or by a new-customer registration.
func (s *Service) CreateCartOrder(ctx context.Context, req domain.CartCheckoutRequest) (domain.CheckoutResponse, error) {
	hasEmail := req.Email != ""
	hasNew := req.NewCustomer != nil
	if hasEmail == hasNew {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: provide exactly one of email or new_customer", store.ErrInvalidInput)
	}

	var customer *domain.Customer
	var err error
	if hasNew {
		customer, err = s.registerNewCustomer(ctx, *req.NewCustomer)
	} else {
		customer, err = s.resolveCustomerByEmail(ctx, req.Email)
	}
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	items, err := s.resolveCartItems(ctx, req.Items)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	return s.placeOrder(ctx, orderParams{
		customer: customer,
		items:    items,
		payment:  req.PaymentMethod,
		discount: req.Discount,
		reason:   req.DiscountReason,
	})
}

// CreateQuickOrder is single-scan checkout: one barcode, optional customer.
func (s *Service) CreateQuickOrder(ctx context.Context, req domain.QuickOrderRequest) (domain.CheckoutResponse, error) {
	if req.Barcode == "" {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: barcode is required", store.ErrInvalidInput)
	}

	var customer *domain.Customer
	if req.Email != "" {
		var err error
		customer, err = s.resolveCustomerByEmail(ctx, req.Email)
		if err != nil {
			return domain.CheckoutResponse{}, err
		}
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	item, err := s.resolveBarcodeItem(ctx, req.Barcode, quantity)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	return s.placeOrder(ctx, orderParams{
		customer: customer,
		items:    []acceptedItem{item},
		payment:  req.PaymentMethod,
	})
}

// CreateManualOrder sells an item that exists in no catalog at all.
func (s *Service) CreateManualOrder(ctx context.Context, req domain.ManualOrderRequest) (domain.CheckoutResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: title is required", store.ErrInvalidInput)
	}
	if !req.Price.IsPositive() {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: price must be positive", store.ErrInvalidInput)
	}
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var customer *domain.Customer
	if req.Email != "" {
		var err error
		customer, err = s.resolveCustomerByEmail(ctx, req.Email)
		if err != nil {
			return domain.CheckoutResponse{}, err
		}
	}

	return s.placeOrder(ctx, orderParams{
		customer: customer,
		items: []acceptedItem{{
			title:    customTitle(req.Title, req.Size),
			quantity: quantity,
			price:    req.Price,
		}},
		payment:  req.PaymentMethod,
		discount: req.Discount,
		manual:   true,
	})
}
