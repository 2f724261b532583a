package receipt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/marcusyeo/supermarket-backend/internal/order"
)

// Generator renders order receipts as PDF files on disk, keyed by order id.
// Receipts are rendered from the order's item snapshot so they always show
// price-at-purchase.
type Generator struct {
	dir string
}

func NewGenerator(dir string) *Generator {
	return &Generator{dir: dir}
}

// Path returns the on-disk location of an order's receipt.
func (g *Generator) Path(orderID int) string {
	return filepath.Join(g.dir, fmt.Sprintf("receipt-%d.pdf", orderID))
}

// PublicPath returns the download path served by the static handler.
func PublicPath(orderID int) string {
	return fmt.Sprintf("/receipts/receipt-%d.pdf", orderID)
}

// Generate writes the receipt PDF and returns its path.
func (g *Generator) Generate(ord order.Order, username, email string) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 26)
	pdf.CellFormat(0, 12, "SUPERMARKET", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, "Date: "+ord.OrderDate, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Official Receipt", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)

	divider(pdf, pageW, 51, 51, 51)
	pdf.Ln(3)

	pdf.CellFormat(0, 6, fmt.Sprintf("Receipt #: %d", ord.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Customer: "+username, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Email: "+email, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Payment Method: "+ord.PaymentMethod, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	divider(pdf, pageW, 51, 51, 51)
	pdf.Ln(3)

	// Items table
	const (
		colItem  = 84.0
		colQty   = 20.0
		colUnit  = 35.0
		colTotal = 35.0
	)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(colItem, 7, "Item", "", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 7, "Qty", "", 0, "C", false, 0, "")
	pdf.CellFormat(colUnit, 7, "Unit Price", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 7, "Total", "", 1, "R", false, 0, "")
	divider(pdf, pageW, 221, 221, 221)

	pdf.SetFont("Helvetica", "", 12)
	for _, item := range ord.Items {
		lineTotal := item.Price * float64(item.Quantity)
		pdf.CellFormat(colItem, 7, item.ProductName, "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(colUnit, 7, fmt.Sprintf("$%.2f", item.Price), "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 7, fmt.Sprintf("$%.2f", lineTotal), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	divider(pdf, pageW, 51, 51, 51)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(30, 126, 52)
	pdf.CellFormat(0, 8, TotalLine(ord.Total), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	divider(pdf, pageW, 221, 221, 221)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "I", 12)
	pdf.SetTextColor(30, 126, 52)
	pdf.CellFormat(0, 8, "Thank you for shopping with us!", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	path := g.Path(ord.ID)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}

// TotalLine formats the receipt's total-paid line.
func TotalLine(total float64) string {
	return fmt.Sprintf("TOTAL PAID: $%.2f", total)
}

func divider(pdf *fpdf.Fpdf, pageW float64, r, g, b int) {
	pdf.SetDrawColor(r, g, b)
	y := pdf.GetY()
	pdf.Line(18, y, pageW-18, y)
	pdf.Ln(1.5)
}
