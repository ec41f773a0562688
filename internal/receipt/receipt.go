// Package receipt renders thermal-printer style PDF receipts (100x150 mm).
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"meezypos/backend/internal/xid"
)

// Renderer produces a receipt file and returns its path. The order flow treats
// rendering as best effort, so failures here never fail a sale.
type Renderer interface {
	Render(data Data) (string, error)
}

type Item struct {
	Title    string
	Quantity int
	Price    decimal.Decimal
}

type Data struct {
	OrderNumber   int64
	CreatedAt     time.Time
	CustomerName  string
	Items         []Item
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	DiscountNote  string
	Total         decimal.Decimal
	PaymentMethod string
}

type Generator struct {
	dir string
}

func NewGenerator(dir string) *Generator {
	return &Generator{dir: dir}
}

// foldASCII maps Turkish letters onto their closest ASCII forms and drops any
// other byte the core PDF fonts cannot encode.
func foldASCII(s string) string {
	replacer := strings.NewReplacer(
		"ç", "c", "Ç", "C",
		"ğ", "g", "Ğ", "G",
		"ı", "i", "İ", "I",
		"ö", "o", "Ö", "O",
		"ş", "s", "Ş", "S",
		"ü", "u", "Ü", "U",
	)
	folded := replacer.Replace(s)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func (g *Generator) Render(data Data) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}

	filename := fmt.Sprintf("order_%d.pdf", data.OrderNumber)
	if data.OrderNumber == 0 {
		filename = xid.New("receipt") + ".pdf"
	}
	path := filepath.Join(g.dir, filename)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 100, Ht: 150},
	})
	pdf.SetMargins(6, 6, 6)
	pdf.SetAutoPageBreak(true, 6)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 7, "MEEZY ARCHIVE", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	when := data.CreatedAt
	if when.IsZero() {
		when = time.Now()
	}
	pdf.CellFormat(0, 4, when.Format("02.01.2006 15:04"), "", 1, "C", false, 0, "")
	if data.OrderNumber != 0 {
		pdf.CellFormat(0, 4, fmt.Sprintf("Order #%d", data.OrderNumber), "", 1, "C", false, 0, "")
	}
	if data.CustomerName != "" {
		pdf.CellFormat(0, 4, truncate(foldASCII(data.CustomerName), 35), "", 1, "C", false, 0, "")
	}

	separator := func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 3, strings.Repeat("-", 48), "", 1, "C", false, 0, "")
	}
	separator()

	for _, item := range data.Items {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 4.5, truncate(foldASCII(item.Title), 35), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		line := fmt.Sprintf("%d x %s TL = %s TL",
			item.Quantity,
			item.Price.StringFixed(2),
			item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2))
		pdf.CellFormat(0, 4.5, line, "", 1, "R", false, 0, "")
	}

	separator()

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(44, 5, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(44, 5, data.Subtotal.StringFixed(2)+" TL", "", 1, "R", false, 0, "")
	if data.Discount.IsPositive() {
		note := "Discount"
		if data.DiscountNote != "" {
			note = truncate(foldASCII("Discount ("+data.DiscountNote+")"), 30)
		}
		pdf.CellFormat(44, 5, note+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(44, 5, "-"+data.Discount.StringFixed(2)+" TL", "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(44, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(44, 6, data.Total.StringFixed(2)+" TL", "", 1, "R", false, 0, "")

	payment := "POS / KART"
	if data.PaymentMethod == "cash" {
		payment = "NAKIT"
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Payment: "+payment, "", 1, "L", false, 0, "")

	separator()
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 4, "Thank you for shopping!", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, "Meezy Archive", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}
	return path, nil
}
