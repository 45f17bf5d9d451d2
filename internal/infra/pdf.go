package infra

// pdf.go — price history report generation using go-pdf/fpdf.
// Produces an A4 report for one part:
//   - Part header (part number, name, product, supplier branch)
//   - Current unit price
//   - Price history table (period, price, status, reason, recorded by)
//
// The output file is saved to storagePath/prices_{partNumber}_{date}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GeneratePriceReportPDF renders the price history of a part to a PDF file.
// The part must be loaded with Product, SupplierBranch.Supplier and
// PriceHistories. Returns the absolute path to the generated file.
func GeneratePriceReportPDF(part *model.Part, currentPrice *decimal.Decimal, today time.Time, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("prices_%s_%s.pdf", part.PartNumber, today.Format("20060102"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Part Price History Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Generated "+today.Format("2006-01-02"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Part info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("%s — %s", part.PartNumber, part.PartName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if part.Product != nil {
		pdf.CellFormat(contentW, 5, "Product: "+part.Product.ProductNumber+"  "+part.Product.ProductName, "", 1, "L", false, 0, "")
	}
	if part.SupplierBranch != nil {
		pdf.CellFormat(contentW, 5, "Supplier: "+part.SupplierBranch.DisplayName(), "", 1, "L", false, 0, "")
	}
	if currentPrice != nil {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Current unit price: "+currentPrice.StringFixed(2), "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 6, "No current price", "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Table header ─────────────────────────────────────────────────────────
	colPeriod := contentW * 0.30
	colPrice := contentW * 0.15
	colStatus := contentW * 0.13
	colReason := contentW * 0.24
	colBy := contentW * 0.18

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(colPeriod, 6, "Validity period", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colPrice, 6, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colStatus, 6, "Status", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colReason, 6, "Reason", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colBy, 6, "Recorded by", "B", 1, "L", false, 0, "")

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for i := range part.PriceHistories {
		h := &part.PriceHistories[i]

		period := h.StartDate.Format("2006-01-02") + " → "
		if h.EndDate != nil {
			period += h.EndDate.Format("2006-01-02")
		} else {
			period += "open"
		}

		status := "inactive"
		switch {
		case h.IsCurrent(today):
			status = "current"
		case h.IsFuture(today):
			status = "future"
		case h.IsExpired(today):
			status = "expired"
		}

		reason := h.ChangeReason
		if len(reason) > 28 {
			reason = reason[:27] + "…"
		}
		recordedBy := ""
		if h.CreatedBy != nil {
			recordedBy = h.CreatedBy.FullName
		}

		pdf.CellFormat(colPeriod, 5, period, "", 0, "L", false, 0, "")
		pdf.CellFormat(colPrice, 5, h.Price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colStatus, 5, status, "", 0, "C", false, 0, "")
		pdf.CellFormat(colReason, 5, reason, "", 0, "L", false, 0, "")
		pdf.CellFormat(colBy, 5, recordedBy, "", 1, "L", false, 0, "")
	}

	if len(part.PriceHistories) == 0 {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 6, "No price records.", "", 1, "C", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
