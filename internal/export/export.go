// Package export формирует PDF документ с графиком платежей.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/mcp-emi-go/internal/calculations"
)

// ErrEmptySchedule возвращается при попытке экспортировать пустой график
var ErrEmptySchedule = errors.New("export: schedule is empty")

// Ключи колонок таблицы
const (
	KeyPeriod    = "period"
	KeyDate      = "date"
	KeyOpening   = "opening"
	KeyEMI       = "emi"
	KeyPrincipal = "principal"
	KeyInterest  = "interest"
	KeyTax       = "tax"
	KeyClosing   = "closing"
)

const dateLayout = "02 Jan 2006"

// Column описание колонки таблицы
type Column struct {
	Header string `json:"header"`
	Key    string `json:"key"`
}

// Columns возвращает колонки таблицы: дата только при заданной дате начала, GST только при включенном налоге
func Columns(in calculations.LoanInput) []Column {
	cols := []Column{{Header: "Month", Key: KeyPeriod}}
	if in.StartDate != nil {
		cols = append(cols, Column{Header: "Date", Key: KeyDate})
	}
	cols = append(cols,
		Column{Header: "Opening Balance", Key: KeyOpening},
		Column{Header: "EMI", Key: KeyEMI},
		Column{Header: "Principal", Key: KeyPrincipal},
		Column{Header: "Interest", Key: KeyInterest},
	)
	if in.IncludeTax {
		cols = append(cols, Column{Header: "GST", Key: KeyTax})
	}
	return append(cols, Column{Header: "Closing Balance", Key: KeyClosing})
}

func amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Records переводит строки графика в записи таблицы по ключам колонок
func Records(rows []calculations.ScheduleRow) []map[string]string {
	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		rec := map[string]string{
			KeyPeriod:    strconv.Itoa(row.Period),
			KeyOpening:   amount(row.OpeningBalance),
			KeyEMI:       amount(row.Installment),
			KeyPrincipal: amount(row.PrincipalComponent),
			KeyInterest:  amount(row.InterestComponent),
			KeyTax:       amount(row.TaxComponent),
			KeyClosing:   amount(row.ClosingBalance),
		}
		if row.Date != nil {
			rec[KeyDate] = row.Date.Format(dateLayout)
		}
		records = append(records, rec)
	}
	return records
}

// Totals суммирует основной долг, проценты и налог по всем строкам
func Totals(rows []calculations.ScheduleRow) map[string]string {
	principal, interest, tax := decimal.Zero, decimal.Zero, decimal.Zero
	for _, row := range rows {
		principal = principal.Add(decimal.NewFromFloat(row.PrincipalComponent))
		interest = interest.Add(decimal.NewFromFloat(row.InterestComponent))
		tax = tax.Add(decimal.NewFromFloat(row.TaxComponent))
	}
	return map[string]string{
		KeyPeriod:    "Total",
		KeyPrincipal: principal.StringFixed(2),
		KeyInterest:  interest.StringFixed(2),
		KeyTax:       tax.StringFixed(2),
	}
}

// FileName имя файла зависит только от того, включен ли GST
func FileName(includeTax bool) string {
	if includeTax {
		return "EMI_Schedule_with_GST.pdf"
	}
	return "EMI_Schedule.pdf"
}

// SummaryLine строка итогов под таблицей
func SummaryLine(s calculations.EMISummary) string {
	line := fmt.Sprintf("EMI: %s | Total Interest: %s | Total Payment: %s",
		amount(s.MonthlyInstallment), amount(s.TotalInterest), amount(s.TotalPayment))
	if s.TaxOnInterest > 0 || s.TaxOnFee > 0 {
		line += fmt.Sprintf(" | GST: %s", amount(s.TaxOnInterest+s.TaxOnFee))
	}
	if s.ProcessingFee > 0 {
		line += fmt.Sprintf(" | Processing Fee: %s", amount(s.ProcessingFee))
	}
	return line
}

// ScheduleDocument формирует PDF с таблицей графика, строкой итогов и сводкой
func ScheduleDocument(result *calculations.Result) ([]byte, error) {
	if result == nil || len(result.Schedule) == 0 {
		return nil, ErrEmptySchedule
	}

	cols := Columns(result.Input)
	records := Records(result.Schedule)
	totals := Totals(result.Schedule)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("EMI Schedule", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "EMI Amortization Schedule")
	pdf.Ln(12)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := (pageWidth - left - right) / float64(len(cols))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range cols {
		pdf.CellFormat(width, 7, c.Header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, rec := range records {
		writeRow(pdf, cols, rec, width)
	}

	pdf.SetFont("Arial", "B", 8)
	writeRow(pdf, cols, totals, width)

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, SummaryLine(result.Summary), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(pdf *gofpdf.Fpdf, cols []Column, rec map[string]string, width float64) {
	for _, c := range cols {
		align := "R"
		if c.Key == KeyPeriod || c.Key == KeyDate {
			align = "C"
		}
		pdf.CellFormat(width, 6, rec[c.Key], "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
