package paystub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	cryptoutil "paystub/internal/platform/crypto"
)

const stubStorageDir = "storage/stubs"

// GeneratePDF renders a persisted stub to disk and returns the file path.
// When an encryption key is configured the plaintext file is replaced by an
// AES-GCM encrypted copy.
func (s *Service) GeneratePDF(ctx context.Context, id string, crypto *cryptoutil.Service) (string, error) {
	record, err := s.store.GetStub(ctx, id)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(stubStorageDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(stubStorageDir, id+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Pay Stub")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, record.Company.Name)
	pdf.Ln(5)
	if record.Company.Address1 != "" {
		pdf.Cell(0, 6, record.Company.Address1)
		pdf.Ln(5)
	}
	if record.Company.Address2 != "" {
		pdf.Cell(0, 6, record.Company.Address2)
		pdf.Ln(5)
	}
	if record.Company.TaxID != "" {
		pdf.Cell(0, 6, "EIN: "+record.Company.TaxID)
		pdf.Ln(5)
	}
	pdf.Ln(3)
	pdf.Cell(0, 6, fmt.Sprintf("Worker: %s (%s)", record.Worker.Name, record.Worker.Classification))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s",
		record.PeriodStart.Format("2006-01-02"), record.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(9)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, title)
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
	}
	amountRow := func(label string, amount decimal.Decimal) {
		pdf.Cell(120, 6, label)
		pdf.CellFormat(40, 6, amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	section("Earnings")
	for _, line := range record.Earnings {
		amountRow(line.Description, line.Amount)
	}
	amountRow("Gross Pay", record.GrossPay)
	pdf.Ln(3)

	if len(record.PreTaxDeductions) > 0 {
		section("Pre-Tax Deductions")
		for _, line := range record.PreTaxDeductions {
			amountRow(line.Description, line.Amount)
		}
		pdf.Ln(3)
	}

	if len(record.TaxLines) > 0 {
		section("Taxes")
		for _, line := range record.TaxLines {
			amountRow(line.Label, line.Amount)
		}
		pdf.Ln(3)
	}

	if len(record.PostTaxDeductions) > 0 {
		section("Post-Tax Deductions")
		for _, line := range record.PostTaxDeductions {
			amountRow(line.Description, line.Amount)
		}
		pdf.Ln(3)
	}

	section("Totals")
	amountRow("Total Deductions", record.TotalDeductions)
	amountRow("Net Pay", record.NetPay)
	amountRow("Gross YTD", record.GrossYTD)
	amountRow("Net YTD", record.NetYTD)

	if len(record.EmployerContributions) > 0 {
		pdf.Ln(3)
		section("Employer Contributions (not deducted)")
		for _, line := range record.EmployerContributions {
			amountRow(line.Description, line.Amount)
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if crypto != nil && crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}
