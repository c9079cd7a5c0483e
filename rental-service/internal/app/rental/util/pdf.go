package util

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"rentaldesk/rental-service/internal/app/rental/entity"

	"github.com/phpdave11/gofpdf"
)

// RenderSummaryPDF формирует A4 отчёт: сводка, разбивки и выручка по месяцам
func RenderSummaryPDF(summary *entity.ReportSummary, revenue []entity.MonthlyRevenue, year int) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Rental report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RENTAL REPORT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Generated at: "+summary.GeneratedAt.UTC().Format(time.RFC1123))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	row(pdf, "Total products", fmt.Sprintf("%d", summary.TotalProducts))
	row(pdf, "Total bookings", fmt.Sprintf("%d", summary.TotalBookings))
	row(pdf, "Total revenue", formatAmount(summary.TotalRevenue))
	pdf.Ln(4)

	section(pdf, "Bookings by status", summary.BookingsByStatus)
	section(pdf, "Products by category", summary.ProductsByCategory)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Monthly revenue %d", year))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 7, "Month", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Bookings", "1", 0, "R", false, 0, "")
	pdf.CellFormat(50, 7, "Revenue", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, month := range revenue {
		pdf.CellFormat(40, 7, time.Month(month.Month).String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", month.Bookings), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 7, formatAmount(month.Revenue), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string, counts map[string]int64) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if len(keys) == 0 {
		row(pdf, "-", "0")
	}
	for _, key := range keys {
		label := key
		if label == "" {
			label = "(none)"
		}
		row(pdf, label, fmt.Sprintf("%d", counts[key]))
	}
	pdf.Ln(4)
}

func row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.Cell(60, 6, label)
	pdf.Cell(0, 6, value)
	pdf.Ln(6)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
