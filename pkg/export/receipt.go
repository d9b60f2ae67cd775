package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/martialcamp/enrollment-api/internal/models"
)

// ReceiptExporter renders payment receipts as PDF documents.
type ReceiptExporter struct{}

// NewReceiptExporter constructs a receipt exporter.
func NewReceiptExporter() *ReceiptExporter {
	return &ReceiptExporter{}
}

// Render produces a one-page receipt for the payment, listing the purchased
// classes by name when available.
func (e *ReceiptExporter) Render(payment *models.Payment, classNames []string) ([]byte, error) {
	if payment == nil {
		return nil, fmt.Errorf("receipt requires a payment")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "PAYMENT RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Receipt", payment.ID},
		{"Student", payment.StudentEmail},
		{"Transaction", payment.TransactionID},
		{"Paid at", payment.PaidAt.Format("2006-01-02 15:04 MST")},
		{"Amount", fmt.Sprintf("%.2f", payment.Amount)},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 8, row[0], "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, row[1], "", 1, "", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Classes", "B", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	if len(classNames) == 0 {
		pdf.CellFormat(0, 8, fmt.Sprintf("%d class(es)", len(payment.ClassIDs)), "", 1, "", false, 0, "")
	}
	for _, name := range classNames {
		pdf.CellFormat(0, 8, name, "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
