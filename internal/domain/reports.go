package domain

import "github.com/shopspring/decimal"

// PaymentBucket is one payment method slice of a report. Amount is net of the
// proportionally apportioned refunds, which is an approximation: the remote
// side records no payment method on refunds.
type PaymentBucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type ProductSales struct {
	ProductName  string          `json:"product_name"`
	TotalQty     int             `json:"total_quantity"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	OrderCount   int             `json:"order_count"`
	SKU          string          `json:"sku"`
	VariantTitle string          `json:"variant_title"`
}

// TodayStats is the single-day snapshot computed straight from remote orders.
type TodayStats struct {
	Status            string          `json:"status"`
	Date              string          `json:"date"`
	TotalOrders       int             `json:"total_orders"`
	GrossRevenue      decimal.Decimal `json:"gross_revenue"`
	TotalRefunded     decimal.Decimal `json:"total_refunded"`
	NetRevenue        decimal.Decimal `json:"net_revenue"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	CashSales         decimal.Decimal `json:"cash_sales"`
	POSSales          decimal.Decimal `json:"pos_sales"`
	OnlineSales       decimal.Decimal `json:"online_sales"`
	CancelledOrders   int             `json:"cancelled_orders"`
	TotalProductsSold int             `json:"total_products_sold"`
	UniqueProducts    int             `json:"unique_products"`
	PaymentBreakdown  struct {
		Cash   PaymentBucket `json:"cash"`
		POS    PaymentBucket `json:"pos"`
		Online PaymentBucket `json:"online"`
	} `json:"payment_breakdown"`
	ProductSales []ProductSales `json:"product_sales"`
}

type ReportSummary struct {
	TotalOrders           int             `json:"total_orders"`
	GrossRevenue          decimal.Decimal `json:"gross_revenue"`
	TotalRefunded         decimal.Decimal `json:"total_refunded"`
	NetRevenue            decimal.Decimal `json:"net_revenue"`
	AverageOrderValue     decimal.Decimal `json:"average_order_value"`
	CashOrders            int             `json:"cash_orders"`
	POSOrders             int             `json:"pos_orders"`
	TotalProductsSold     int             `json:"total_products_sold"`
	UniqueProducts        int             `json:"unique_products"`
	CancelledOrders       int             `json:"cancelled_orders"`
	CancelledRevenue      decimal.Decimal `json:"cancelled_revenue"`
	PartiallyRefundedCnt  int             `json:"partially_refunded_count"`
	FullyRefundedCnt      int             `json:"fully_refunded_count"`
	RefundTransactionsCnt int             `json:"total_refund_transactions"`
}

type ReportLineItem struct {
	Title        string          `json:"title"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
	SKU          string          `json:"sku"`
	VariantTitle string          `json:"variant_title"`
	VariantID    *int64          `json:"variant_id"`
	ProductID    *int64          `json:"product_id"`
}

type ReportOrder struct {
	OrderNumber     int64            `json:"order_number"`
	OrderID         int64            `json:"order_id"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerPhone   string           `json:"customer_phone"`
	Total           decimal.Decimal  `json:"total"`
	ItemsCount      int              `json:"items_count"`
	LineItems       []ReportLineItem `json:"line_items"`
	FinancialStatus string           `json:"financial_status"`
	Tags            string           `json:"tags"`
	CreatedAt       string           `json:"created_at"`
	CancelledAt     string           `json:"cancelled_at,omitempty"`
}

type RefundedOrder struct {
	OrderNumber     int64            `json:"order_number"`
	OrderID         int64            `json:"order_id"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email"`
	OriginalTotal   decimal.Decimal  `json:"original_total"`
	RefundedAmount  decimal.Decimal  `json:"refunded_amount"`
	NetPayment      decimal.Decimal  `json:"net_payment"`
	FinancialStatus string           `json:"financial_status"`
	RefundCount     int              `json:"refund_count"`
	LineItems       []ReportLineItem `json:"line_items"`
	CreatedAt       string           `json:"created_at"`
}

type RefundDetails struct {
	PartiallyRefunded []RefundedOrder `json:"partially_refunded"`
	FullyRefunded     []RefundedOrder `json:"fully_refunded"`
	TotalRefunded     decimal.Decimal `json:"total_refunded_amount"`
}

type DailyBucket struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopCustomer struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	OrdersCount int             `json:"orders_count"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
}

// SalesReport is the windowed report shape shared by the weekly, monthly and
// custom-range endpoints.
type SalesReport struct {
	Status         string                 `json:"status"`
	Period         string                 `json:"period"`
	StartDate      string                 `json:"start_date"`
	EndDate        string                 `json:"end_date"`
	Summary        ReportSummary          `json:"summary"`
	DailyBreakdown map[string]DailyBucket `json:"daily_breakdown"`
	TopCustomers   []TopCustomer          `json:"top_customers"`
	RefundDetails  RefundDetails          `json:"refund_details"`
	TopProducts    []ProductSales         `json:"top_products"`
	Orders         []ReportOrder          `json:"orders"`
}
