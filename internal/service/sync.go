package service

import (
	"context"
	"fmt"
	"strings"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/shopify"
)

func bulkImageURL(product shopify.Product) string {
	if len(product.Images) > 0 {
		return product.Images[0].Src
	}
	return ""
}

// SyncProducts pulls the whole remote catalog and upserts it variant by
// variant. Variants without a barcode cannot be scanned at the till, so they
// are counted and skipped. A variant id repeated within one pass is applied
// once; later duplicates are dropped silently.
func (s *Service) SyncProducts(ctx context.Context) (domain.ProductSyncResult, error) {
	products, err := s.remote.ListProducts(ctx)
	if err != nil {
		return domain.ProductSyncResult{}, fmt.Errorf("list remote products: %w", err)
	}

	seen := make(map[int64]struct{})
	variants := make([]domain.Variant, 0, len(products))
	skipped := 0

	for _, product := range products {
		imageURL := bulkImageURL(product)
		for _, v := range product.Variants {
			if v.ID == 0 || v.Barcode == "" {
				skipped++
				continue
			}
			if _, dup := seen[v.ID]; dup {
				continue
			}
			seen[v.ID] = struct{}{}

			variants = append(variants, domain.Variant{
				ExternalVariantID: v.ID,
				ExternalProductID: product.ID,
				Title:             product.Title,
				SKU:               v.SKU,
				Barcode:           v.Barcode,
				Price:             v.Price,
				InventoryQuantity: v.InventoryQuantity,
				VariantTitle:      v.Title,
				ImageURL:          imageURL,
			})
		}
	}

	added, updated, err := s.repo.ApplyVariantUpserts(ctx, variants)
	if err != nil {
		return domain.ProductSyncResult{}, fmt.Errorf("apply variant upserts: %w", err)
	}

	return domain.ProductSyncResult{
		Status:           "success",
		Added:            added,
		Updated:          updated,
		SkippedNoBarcode: skipped,
		TotalProducts:    len(products),
	}, nil
}

func customerFromRemote(c shopify.Customer) domain.Customer {
	customer := domain.Customer{
		ExternalCustomerID: c.ID,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Email:              c.Email,
		Phone:              c.Phone,
	}
	if len(c.Addresses) > 0 {
		addr := c.Addresses[0]
		customer.Address = strings.TrimSpace(addr.Address1 + " " + addr.Address2)
		customer.City = addr.City
		customer.Country = addr.Country
	}
	return customer
}

// SyncCustomers mirrors the remote customer list. Only the first address of
// each customer is kept.
func (s *Service) SyncCustomers(ctx context.Context) (domain.CustomerSyncResult, error) {
	remoteCustomers, err := s.remote.ListCustomers(ctx)
	if err != nil {
		return domain.CustomerSyncResult{}, fmt.Errorf("list remote customers: %w", err)
	}

	seen := make(map[int64]struct{})
	customers := make([]domain.Customer, 0, len(remoteCustomers))
	for _, c := range remoteCustomers {
		if c.ID == 0 {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		customers = append(customers, customerFromRemote(c))
	}

	added, updated, err := s.repo.ApplyCustomerUpserts(ctx, customers)
	if err != nil {
		return domain.CustomerSyncResult{}, fmt.Errorf("apply customer upserts: %w", err)
	}

	return domain.CustomerSyncResult{
		Status:         "success",
		Added:          added,
		Updated:        updated,
		TotalCustomers: len(remoteCustomers),
	}, nil
}
