// Package presenter форматирует результаты расчета для отображения:
// суммы в валюте пользователя и сегменты диаграммы структуры выплат.
package presenter

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/cloud-ru/mcp-emi-go/internal/calculations"
)

// Подписи сегментов диаграммы
const (
	LabelPrincipal     = "Principal"
	LabelInterest      = "Interest"
	LabelTaxOnInterest = "GST on Interest"
	LabelProcessingFee = "Processing Fee"
	LabelTaxOnFee      = "GST on Fee"
)

// Formatter форматирует суммы в заданной валюте и локали
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
	symbol  string
}

// NewFormatter создает форматтер для ISO кода валюты и BCP 47 локали
func NewFormatter(currencyCode, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}

	p := message.NewPrinter(tag)
	return &Formatter{
		unit:    unit,
		printer: p,
		symbol:  p.Sprint(currency.NarrowSymbol(unit)),
	}, nil
}

// Currency возвращает ISO код валюты форматтера
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Format возвращает сумму с символом валюты, разделителями разрядов и 2 знаками
func (f *Formatter) Format(amount float64) string {
	return f.printer.Sprintf("%s %v", f.symbol, number.Decimal(amount, number.Scale(2)))
}

// FormattedSummary сводка по кредиту в виде строк
type FormattedSummary struct {
	Currency           string `json:"currency"`
	MonthlyInstallment string `json:"monthly_installment"`
	TotalInterest      string `json:"total_interest"`
	TotalPayment       string `json:"total_payment"`
	TaxOnInterest      string `json:"tax_on_interest"`
	TaxOnFee           string `json:"tax_on_fee"`
	ProcessingFee      string `json:"processing_fee"`
}

// FormatSummary форматирует все поля сводки
func (f *Formatter) FormatSummary(s calculations.EMISummary) FormattedSummary {
	return FormattedSummary{
		Currency:           f.Currency(),
		MonthlyInstallment: f.Format(s.MonthlyInstallment),
		TotalInterest:      f.Format(s.TotalInterest),
		TotalPayment:       f.Format(s.TotalPayment),
		TaxOnInterest:      f.Format(s.TaxOnInterest),
		TaxOnFee:           f.Format(s.TaxOnFee),
		ProcessingFee:      f.Format(s.ProcessingFee),
	}
}

// Bucket сегмент диаграммы
type Bucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BuildChartBuckets строит сегменты диаграммы в фиксированном порядке.
// GST на проценты есть только при включенном налоге, комиссия и GST на нее только при fee > 0.
func BuildChartBuckets(in calculations.LoanInput, s calculations.EMISummary) []Bucket {
	buckets := []Bucket{
		{Label: LabelPrincipal, Value: in.Principal},
		{Label: LabelInterest, Value: s.TotalInterest},
	}
	if in.IncludeTax {
		buckets = append(buckets, Bucket{Label: LabelTaxOnInterest, Value: s.TaxOnInterest})
	}
	if in.ProcessingFee > 0 {
		buckets = append(buckets,
			Bucket{Label: LabelProcessingFee, Value: s.ProcessingFee},
			Bucket{Label: LabelTaxOnFee, Value: s.TaxOnFee},
		)
	}
	return buckets
}

// RenderChart рисует круговую диаграмму структуры выплат в HTML
func RenderChart(w io.Writer, title string, buckets []Bucket) error {
	items := make([]opts.PieData, 0, len(buckets))
	for _, b := range buckets {
		items = append(items, opts.PieData{Name: b.Label, Value: b.Value})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
	)
	pie.AddSeries("breakdown", items)

	if err := pie.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
