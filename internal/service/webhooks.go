package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/shopify"
	"meezypos/backend/internal/store"
)

// resourceID pulls the top-level numeric id out of a webhook payload, when
// there is one. Inventory payloads have none.
func resourceID(payload []byte) *int64 {
	var envelope struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.ID == 0 {
		return nil
	}
	return &envelope.ID
}

// variantImageURL prefers the image attached to the variant itself and falls
// back to the product image.
func variantImageURL(product shopify.Product, v shopify.Variant) string {
	if v.ImageID != nil {
		for _, img := range product.Images {
			if img.ID == *v.ImageID {
				return img.Src
			}
		}
	}
	if product.Image != nil {
		return product.Image.Src
	}
	return ""
}

func (s *Service) applyProductUpsert(ctx context.Context, payload []byte) (string, error) {
	var product shopify.Product
	if err := json.Unmarshal(payload, &product); err != nil {
		return "", fmt.Errorf("decode product payload: %w", err)
	}
	if product.ID == 0 {
		return "", fmt.Errorf("product payload has no id")
	}

	applied := 0
	for _, v := range product.Variants {
		if v.ID == 0 {
			continue
		}
		_, err := s.repo.UpsertVariant(ctx, domain.Variant{
			ExternalVariantID: v.ID,
			ExternalProductID: product.ID,
			Title:             product.Title,
			SKU:               v.SKU,
			Barcode:           v.Barcode,
			Price:             v.Price,
			InventoryQuantity: v.InventoryQuantity,
			VariantTitle:      v.Title,
			ImageURL:          variantImageURL(product, v),
		})
		if err != nil {
			return "", fmt.Errorf("upsert variant %d: %w", v.ID, err)
		}
		applied++
	}
	return fmt.Sprintf("upserted %d variants of product %d", applied, product.ID), nil
}

func (s *Service) applyProductDelete(ctx context.Context, payload []byte) (string, error) {
	var envelope struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", fmt.Errorf("decode delete payload: %w", err)
	}
	if envelope.ID == 0 {
		return "", fmt.Errorf("delete payload has no id")
	}

	deleted, err := s.repo.DeleteVariantsByExternalProductID(ctx, envelope.ID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("deleted %d variants of product %d", deleted, envelope.ID), nil
}

func (s *Service) applyInventoryUpdate(ctx context.Context, payload []byte) (string, error) {
	var level shopify.InventoryLevel
	if err := json.Unmarshal(payload, &level); err != nil {
		return "", fmt.Errorf("decode inventory payload: %w", err)
	}

	// The inventory item id equals the variant id for the shops we mirror; a
	// miss is normal for variants that never synced and is not an error.
	updated, err := s.repo.SetVariantQuantityByExternalID(ctx, level.InventoryItemID, level.Available)
	if err != nil {
		return "", err
	}
	if !updated {
		return fmt.Sprintf("no local variant for inventory item %d", level.InventoryItemID), nil
	}
	return fmt.Sprintf("set quantity of variant %d to %d", level.InventoryItemID, level.Available), nil
}

func (s *Service) applyCustomerUpsert(ctx context.Context, payload []byte) (string, error) {
	var customer shopify.Customer
	if err := json.Unmarshal(payload, &customer); err != nil {
		return "", fmt.Errorf("decode customer payload: %w", err)
	}
	if customer.ID == 0 {
		return "", fmt.Errorf("customer payload has no id")
	}

	created, err := s.repo.UpsertCustomer(ctx, customerFromRemote(customer))
	if err != nil {
		return "", err
	}
	if created {
		return fmt.Sprintf("created customer %d", customer.ID), nil
	}
	return fmt.Sprintf("updated customer %d", customer.ID), nil
}

func webhookPaymentMethod(order shopify.Order) string {
	if strings.Contains(strings.ToLower(order.Tags), "cash") {
		return "cash"
	}
	if strings.Contains(strings.ToLower(order.Gateway), "cash") {
		return "cash"
	}
	return "pos"
}

// orderStatus mirrors the remote financial status into the local rows.
func orderStatus(order shopify.Order) string {
	if order.FinancialStatus != "" {
		return order.FinancialStatus
	}
	return "pending"
}

// applyOrderEvent reconciles one remote order notification. Orders we created
// ourselves already have local rows, so those only get a status update; rows
// are never duplicated. Foreign orders are fanned out line by line.
func (s *Service) applyOrderEvent(ctx context.Context, payload []byte) (string, error) {
	var order shopify.Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return "", fmt.Errorf("decode order payload: %w", err)
	}
	if order.ID == 0 {
		return "", fmt.Errorf("order payload has no id")
	}

	status := orderStatus(order)

	existing, err := s.repo.ListOrderLinesByExternalOrderID(ctx, order.ID)
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		updated, err := s.repo.UpdateOrderStatusByExternalOrderID(ctx, order.ID, status)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("updated status of %d rows of order %d to %s", updated, order.ID, status), nil
	}

	var customerID *int64
	if order.Customer != nil && order.Customer.ID != 0 {
		if local, err := s.repo.GetCustomerByExternalID(ctx, order.Customer.ID); err == nil {
			customerID = &local.ID
		} else if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
	}

	payment := webhookPaymentMethod(order)
	externalOrderID := order.ID
	lines := make([]domain.OrderLine, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		line := domain.OrderLine{
			ExternalOrderID: &externalOrderID,
			CustomerID:      customerID,
			Title:           item.Title,
			Quantity:        item.Quantity,
			Price:           item.Price,
			PaymentMethod:   payment,
			Status:          status,
		}
		if item.VariantID != nil {
			if variant, err := s.repo.GetVariantByExternalID(ctx, *item.VariantID); err == nil {
				productID := variant.ID
				line.ProductID = &productID
				line.Barcode = variant.Barcode
			} else if !errors.Is(err, store.ErrNotFound) {
				return "", err
			}
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return fmt.Sprintf("order %d has no line items", order.ID), nil
	}

	created, err := s.repo.CreateOrderLines(ctx, lines)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("created %d rows for order %d", len(created), order.ID), nil
}

// HandleWebhook records the delivery, applies it, and finalizes the audit row
// exactly once: processed, failed, or skipped for topics we do not handle.
func (s *Service) HandleWebhook(ctx context.Context, topic string, payload []byte) (domain.WebhookResult, error) {
	event, err := s.repo.CreateWebhookEvent(ctx, domain.WebhookEvent{
		Topic:      topic,
		ExternalID: resourceID(payload),
		Payload:    string(payload),
	})
	if err != nil {
		return domain.WebhookResult{}, fmt.Errorf("record webhook event: %w", err)
	}

	finalize := func(status domain.WebhookStatus, errMsg string) {
		if err := s.repo.FinalizeWebhookEvent(ctx, event.ID, status, errMsg); err != nil {
			log.Printf("[service] WARN: failed to finalize webhook event %d: %v", event.ID, err)
		}
	}

	var message string
	var handleErr error
	switch topic {
	case "products/create", "products/update":
		message, handleErr = s.applyProductUpsert(ctx, payload)
	case "products/delete":
		message, handleErr = s.applyProductDelete(ctx, payload)
	case "inventory_levels/update":
		message, handleErr = s.applyInventoryUpdate(ctx, payload)
	case "customers/create", "customers/update":
		message, handleErr = s.applyCustomerUpsert(ctx, payload)
	case "orders/create", "orders/paid", "orders/cancelled":
		message, handleErr = s.applyOrderEvent(ctx, payload)
	default:
		finalize(domain.WebhookSkipped, "")
		return domain.WebhookResult{
			Status:     "skipped",
			Topic:      topic,
			ResourceID: event.ExternalID,
			Message:    fmt.Sprintf("topic %s is not handled", topic),
		}, nil
	}

	if handleErr != nil {
		finalize(domain.WebhookFailed, handleErr.Error())
		return domain.WebhookResult{}, fmt.Errorf("handle %s webhook: %w", topic, handleErr)
	}

	finalize(domain.WebhookProcessed, "")
	return domain.WebhookResult{
		Status:     "processed",
		Topic:      topic,
		ResourceID: event.ExternalID,
		Message:    message,
	}, nil
}

func (s *Service) WebhookLogs(ctx context.Context, filter domain.WebhookLogFilter) ([]domain.WebhookEvent, error) {
	return s.repo.ListWebhookEvents(ctx, filter)
}

func (s *Service) WebhookStats(ctx context.Context) (domain.WebhookStats, error) {
	return s.repo.GetWebhookStats(ctx)
}
