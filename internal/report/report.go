// Package report turns raw remote orders into sales aggregates. Everything in
// here is pure computation; fetching and caching are the service's job.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"meezypos/backend/internal/domain"
	"meezypos/backend/internal/shopify"
)

// Active reports whether an order still counts toward revenue. Cancelled and
// voided orders are excluded from every total but still show up in listings.
func Active(o shopify.Order) bool {
	return o.CancelledAt == nil && o.FinancialStatus != "voided"
}

// PaymentChannel buckets an order by its tags: "cash" wins over "pos", and
// anything untagged is treated as an online sale.
func PaymentChannel(tags string) string {
	lowered := strings.ToLower(tags)
	switch {
	case strings.Contains(lowered, "cash"):
		return "cash"
	case strings.Contains(lowered, "pos"):
		return "pos"
	default:
		return "online"
	}
}

// RefundedAmount sums the successful refund transactions of an order.
func RefundedAmount(o shopify.Order) decimal.Decimal {
	total := decimal.Zero
	for _, refund := range o.Refunds {
		for _, tx := range refund.Transactions {
			if tx.Kind == "refund" && tx.Status == "success" {
				total = total.Add(tx.Amount)
			}
		}
	}
	return total
}

func refundTransactionCount(o shopify.Order) int {
	count := 0
	for _, refund := range o.Refunds {
		for _, tx := range refund.Transactions {
			if tx.Kind == "refund" && tx.Status == "success" {
				count++
			}
		}
	}
	return count
}

// orderDate is the YYYY-MM-DD prefix of the remote RFC 3339 timestamp.
func orderDate(createdAt string) string {
	if idx := strings.IndexByte(createdAt, 'T'); idx > 0 {
		return createdAt[:idx]
	}
	return createdAt
}

type productAccumulator struct {
	sales      domain.ProductSales
	seenOrders map[int64]struct{}
}

func accumulateProducts(acc map[string]*productAccumulator, o shopify.Order) {
	for _, item := range o.LineItems {
		entry, ok := acc[item.Title]
		if !ok {
			entry = &productAccumulator{
				sales: domain.ProductSales{
					ProductName:  item.Title,
					TotalRevenue: decimal.Zero,
					SKU:          item.SKU,
					VariantTitle: item.VariantTitle,
				},
				seenOrders: make(map[int64]struct{}),
			}
			acc[item.Title] = entry
		}
		entry.sales.TotalQty += item.Quantity
		entry.sales.TotalRevenue = entry.sales.TotalRevenue.Add(
			item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		if _, seen := entry.seenOrders[o.ID]; !seen {
			entry.seenOrders[o.ID] = struct{}{}
			entry.sales.OrderCount++
		}
	}
}

func sortedProductSales(acc map[string]*productAccumulator) []domain.ProductSales {
	sales := make([]domain.ProductSales, 0, len(acc))
	for _, entry := range acc {
		entry.sales.TotalRevenue = entry.sales.TotalRevenue.Round(2)
		sales = append(sales, entry.sales)
	}
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].TotalRevenue.Equal(sales[j].TotalRevenue) {
			return sales[i].TotalRevenue.GreaterThan(sales[j].TotalRevenue)
		}
		return sales[i].ProductName < sales[j].ProductName
	})
	return sales
}

// BuildTodayStats computes the single-day snapshot. Orders outside the given
// date are dropped here, so callers may over-fetch around day boundaries.
func BuildTodayStats(date string, orders []shopify.Order) domain.TodayStats {
	stats := domain.TodayStats{
		Status:        "success",
		Date:          date,
		GrossRevenue:  decimal.Zero,
		TotalRefunded: decimal.Zero,
	}

	type bucket struct {
		count  int
		amount decimal.Decimal
	}
	buckets := map[string]*bucket{
		"cash":   {amount: decimal.Zero},
		"pos":    {amount: decimal.Zero},
		"online": {amount: decimal.Zero},
	}
	products := make(map[string]*productAccumulator)

	for _, o := range orders {
		if orderDate(o.CreatedAt) != date {
			continue
		}
		if !Active(o) {
			stats.CancelledOrders++
			continue
		}

		stats.TotalOrders++
		stats.GrossRevenue = stats.GrossRevenue.Add(o.TotalPrice)
		stats.TotalRefunded = stats.TotalRefunded.Add(RefundedAmount(o))

		b := buckets[PaymentChannel(o.Tags)]
		b.count++
		b.amount = b.amount.Add(o.TotalPrice)

		for _, item := range o.LineItems {
			stats.TotalProductsSold += item.Quantity
		}
		accumulateProducts(products, o)
	}

	stats.NetRevenue = stats.GrossRevenue.Sub(stats.TotalRefunded)
	stats.TotalSales = stats.NetRevenue

	// Refunds carry no payment method, so each channel absorbs its share of
	// the refunded total in proportion to its gross.
	apportion := func(b *bucket) decimal.Decimal {
		if stats.GrossRevenue.IsZero() {
			return b.amount.Round(2)
		}
		share := stats.TotalRefunded.Mul(b.amount).Div(stats.GrossRevenue)
		return b.amount.Sub(share).Round(2)
	}

	stats.CashSales = apportion(buckets["cash"])
	stats.POSSales = apportion(buckets["pos"])
	stats.OnlineSales = apportion(buckets["online"])
	stats.PaymentBreakdown.Cash = domain.PaymentBucket{Count: buckets["cash"].count, Amount: stats.CashSales}
	stats.PaymentBreakdown.POS = domain.PaymentBucket{Count: buckets["pos"].count, Amount: stats.POSSales}
	stats.PaymentBreakdown.Online = domain.PaymentBucket{Count: buckets["online"].count, Amount: stats.OnlineSales}

	stats.ProductSales = sortedProductSales(products)
	stats.UniqueProducts = len(stats.ProductSales)

	stats.GrossRevenue = stats.GrossRevenue.Round(2)
	stats.TotalRefunded = stats.TotalRefunded.Round(2)
	stats.NetRevenue = stats.NetRevenue.Round(2)
	stats.TotalSales = stats.TotalSales.Round(2)
	return stats
}

func customerName(o shopify.Order) string {
	if o.Customer == nil {
		return ""
	}
	return strings.TrimSpace(o.Customer.FirstName + " " + o.Customer.LastName)
}

func customerEmail(o shopify.Order) string {
	if o.Customer != nil && o.Customer.Email != "" {
		return o.Customer.Email
	}
	return o.Email
}

func reportLineItems(o shopify.Order) []domain.ReportLineItem {
	items := make([]domain.ReportLineItem, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		items = append(items, domain.ReportLineItem{
			Title:        item.Title,
			Quantity:     item.Quantity,
			Price:        item.Price,
			Total:        item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
			SKU:          item.SKU,
			VariantTitle: item.VariantTitle,
			VariantID:    item.VariantID,
			ProductID:    item.ProductID,
		})
	}
	return items
}

// BuildSalesReport aggregates a date window into the shared report shape. The
// caller has already fetched every order in [startDate, endDate].
func BuildSalesReport(period, startDate, endDate string, orders []shopify.Order) domain.SalesReport {
	rep := domain.SalesReport{
		Status:         "success",
		Period:         period,
		StartDate:      startDate,
		EndDate:        endDate,
		DailyBreakdown: make(map[string]domain.DailyBucket),
		TopCustomers:   []domain.TopCustomer{},
		Orders:         make([]domain.ReportOrder, 0, len(orders)),
	}
	rep.Summary.GrossRevenue = decimal.Zero
	rep.Summary.TotalRefunded = decimal.Zero
	rep.Summary.CancelledRevenue = decimal.Zero
	rep.RefundDetails.TotalRefunded = decimal.Zero
	rep.RefundDetails.PartiallyRefunded = []domain.RefundedOrder{}
	rep.RefundDetails.FullyRefunded = []domain.RefundedOrder{}

	products := make(map[string]*productAccumulator)
	customers := make(map[string]*domain.TopCustomer)

	for _, o := range orders {
		reportOrder := domain.ReportOrder{
			OrderNumber:     o.OrderNumber,
			OrderID:         o.ID,
			CustomerName:    customerName(o),
			CustomerEmail:   customerEmail(o),
			Total:           o.TotalPrice,
			ItemsCount:      len(o.LineItems),
			LineItems:       reportLineItems(o),
			FinancialStatus: o.FinancialStatus,
			Tags:            o.Tags,
			CreatedAt:       o.CreatedAt,
		}
		if o.Customer != nil {
			reportOrder.CustomerPhone = o.Customer.Phone
		}
		if o.CancelledAt != nil {
			reportOrder.CancelledAt = *o.CancelledAt
		}
		rep.Orders = append(rep.Orders, reportOrder)

		if !Active(o) {
			rep.Summary.CancelledOrders++
			rep.Summary.CancelledRevenue = rep.Summary.CancelledRevenue.Add(o.TotalPrice)
			continue
		}

		rep.Summary.TotalOrders++
		rep.Summary.GrossRevenue = rep.Summary.GrossRevenue.Add(o.TotalPrice)

		refunded := RefundedAmount(o)
		rep.Summary.TotalRefunded = rep.Summary.TotalRefunded.Add(refunded)
		rep.Summary.RefundTransactionsCnt += refundTransactionCount(o)

		switch PaymentChannel(o.Tags) {
		case "cash":
			rep.Summary.CashOrders++
		case "pos":
			rep.Summary.POSOrders++
		}

		for _, item := range o.LineItems {
			rep.Summary.TotalProductsSold += item.Quantity
		}
		accumulateProducts(products, o)

		day := orderDate(o.CreatedAt)
		bucket := rep.DailyBreakdown[day]
		bucket.Count++
		bucket.Revenue = bucket.Revenue.Add(o.TotalPrice).Round(2)
		rep.DailyBreakdown[day] = bucket

		if email := customerEmail(o); email != "" {
			entry, ok := customers[email]
			if !ok {
				entry = &domain.TopCustomer{
					Name:       customerName(o),
					Email:      email,
					TotalSpent: decimal.Zero,
				}
				customers[email] = entry
			}
			entry.OrdersCount++
			entry.TotalSpent = entry.TotalSpent.Add(o.TotalPrice)
		}

		if refunded.IsPositive() {
			refundedOrder := domain.RefundedOrder{
				OrderNumber:     o.OrderNumber,
				OrderID:         o.ID,
				CustomerName:    customerName(o),
				CustomerEmail:   customerEmail(o),
				OriginalTotal:   o.TotalPrice,
				RefundedAmount:  refunded.Round(2),
				NetPayment:      o.TotalPrice.Sub(refunded).Round(2),
				FinancialStatus: o.FinancialStatus,
				RefundCount:     len(o.Refunds),
				LineItems:       reportLineItems(o),
				CreatedAt:       o.CreatedAt,
			}
			if o.FinancialStatus == "partially_refunded" {
				rep.RefundDetails.PartiallyRefunded = append(rep.RefundDetails.PartiallyRefunded, refundedOrder)
			} else {
				rep.RefundDetails.FullyRefunded = append(rep.RefundDetails.FullyRefunded, refundedOrder)
			}
			rep.RefundDetails.TotalRefunded = rep.RefundDetails.TotalRefunded.Add(refunded)
		}
	}

	rep.Summary.NetRevenue = rep.Summary.GrossRevenue.Sub(rep.Summary.TotalRefunded)
	if rep.Summary.TotalOrders > 0 {
		rep.Summary.AverageOrderValue = rep.Summary.NetRevenue.
			Div(decimal.NewFromInt(int64(rep.Summary.TotalOrders))).Round(2)
	} else {
		rep.Summary.AverageOrderValue = decimal.Zero
	}

	sales := sortedProductSales(products)
	rep.Summary.UniqueProducts = len(sales)
	if len(sales) > 20 {
		sales = sales[:20]
	}
	rep.TopProducts = sales

	top := make([]domain.TopCustomer, 0, len(customers))
	for _, entry := range customers {
		entry.TotalSpent = entry.TotalSpent.Round(2)
		top = append(top, *entry)
	}
	sort.Slice(top, func(i, j int) bool {
		if !top[i].TotalSpent.Equal(top[j].TotalSpent) {
			return top[i].TotalSpent.GreaterThan(top[j].TotalSpent)
		}
		return top[i].Email < top[j].Email
	})
	if len(top) > 10 {
		top = top[:10]
	}
	rep.TopCustomers = top

	rep.Summary.PartiallyRefundedCnt = len(rep.RefundDetails.PartiallyRefunded)
	rep.Summary.FullyRefundedCnt = len(rep.RefundDetails.FullyRefunded)
	rep.Summary.GrossRevenue = rep.Summary.GrossRevenue.Round(2)
	rep.Summary.TotalRefunded = rep.Summary.TotalRefunded.Round(2)
	rep.Summary.NetRevenue = rep.Summary.NetRevenue.Round(2)
	rep.Summary.CancelledRevenue = rep.Summary.CancelledRevenue.Round(2)
	rep.RefundDetails.TotalRefunded = rep.RefundDetails.TotalRefunded.Round(2)
	return rep
}
