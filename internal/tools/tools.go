package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/mcp-emi-go/internal/calculations"
	"github.com/cloud-ru/mcp-emi-go/internal/config"
	"github.com/cloud-ru/mcp-emi-go/internal/export"
	"github.com/cloud-ru/mcp-emi-go/internal/metrics"
	"github.com/cloud-ru/mcp-emi-go/internal/presenter"
	"github.com/cloud-ru/mcp-emi-go/internal/validators"
)

// Имена инструментов
const (
	ToolSchedule     = "emi_schedule"
	ToolChartBuckets = "emi_chart_buckets"
	ToolChartHTML    = "emi_chart_html"
	ToolExportPDF    = "emi_export_pdf"
)

var (
	// ErrInvalidParams параметры инструмента не прошли проверку
	ErrInvalidParams = errors.New("неверные параметры")
	// ErrSkipped расчет не был выполнен
	ErrSkipped = errors.New("расчет не выполнен: недостаточно данных")
	// ErrUnknownTool инструмент не зарегистрирован
	ErrUnknownTool = errors.New("unknown tool")
)

// ToolHandler представляет обработчик инструмента MCP
type ToolHandler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// ScheduleResponse ответ инструмента emi_schedule
type ScheduleResponse struct {
	Summary   calculations.EMISummary    `json:"summary"`
	Formatted presenter.FormattedSummary `json:"formatted"`
	Buckets   []presenter.Bucket         `json:"chart_buckets"`
	Schedule  []calculations.ScheduleRow `json:"schedule"`
}

// Document бинарный результат инструмента
type Document struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Registry возвращает все инструменты сервера
func Registry(cfg *config.Config, tracer trace.Tracer) map[string]ToolHandler {
	return map[string]ToolHandler{
		ToolSchedule:     ScheduleHandler(cfg, tracer),
		ToolChartBuckets: ChartBucketsHandler(cfg, tracer),
		ToolChartHTML:    ChartHTMLHandler(cfg, tracer),
		ToolExportPDF:    ExportPDFHandler(cfg, tracer),
	}
}

// Names возвращает отсортированные имена инструментов
func Names(registry map[string]ToolHandler) []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScheduleHandler считает EMI, график и форматированную сводку
func ScheduleHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return run(ctx, cfg, tracer, ToolSchedule, params, func(result *calculations.Result, f *presenter.Formatter) (interface{}, error) {
			return ScheduleResponse{
				Summary:   result.Summary,
				Formatted: f.FormatSummary(result.Summary),
				Buckets:   presenter.BuildChartBuckets(result.Input, result.Summary),
				Schedule:  result.Schedule,
			}, nil
		})
	}
}

// ChartBucketsHandler возвращает сегменты диаграммы структуры выплат
func ChartBucketsHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return run(ctx, cfg, tracer, ToolChartBuckets, params, func(result *calculations.Result, _ *presenter.Formatter) (interface{}, error) {
			return presenter.BuildChartBuckets(result.Input, result.Summary), nil
		})
	}
}

// ChartHTMLHandler рисует диаграмму структуры выплат в HTML
func ChartHTMLHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return run(ctx, cfg, tracer, ToolChartHTML, params, func(result *calculations.Result, f *presenter.Formatter) (interface{}, error) {
			var buf bytes.Buffer
			title := "EMI " + f.Format(result.Summary.MonthlyInstallment)
			if err := presenter.RenderChart(&buf, title, presenter.BuildChartBuckets(result.Input, result.Summary)); err != nil {
				return nil, err
			}
			return Document{FileName: "emi_breakdown.html", ContentType: "text/html; charset=utf-8", Data: buf.Bytes()}, nil
		})
	}
}

// ExportPDFHandler формирует PDF с графиком платежей
func ExportPDFHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return run(ctx, cfg, tracer, ToolExportPDF, params, func(result *calculations.Result, _ *presenter.Formatter) (interface{}, error) {
			data, err := export.ScheduleDocument(result)
			if err != nil {
				return nil, err
			}
			metrics.ExportBytes.Observe(float64(len(data)))
			return Document{FileName: export.FileName(result.Input.IncludeTax), ContentType: "application/pdf", Data: data}, nil
		})
	}
}

type renderFunc func(result *calculations.Result, f *presenter.Formatter) (interface{}, error)

// run разбирает и проверяет параметры, выполняет расчет и ведет метрики и спан
func run(ctx context.Context, cfg *config.Config, tracer trace.Tracer, toolName string, params map[string]interface{}, render renderFunc) (interface{}, error) {
	_, span := tracer.Start(ctx, toolName)
	defer span.End()

	metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

	fail := func(status, errorType string, err error) (interface{}, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error", errorType))
		metrics.ToolCalls.WithLabelValues(toolName, status).Inc()
		metrics.CalculationErrors.WithLabelValues(toolName, errorType).Inc()
		metrics.APICalls.WithLabelValues("mcp", toolName, "error").Inc()
		log.Warn().Err(err).Str("tool", toolName).Msg("tool call failed")
		return nil, err
	}

	in, currencyCode, err := parseLoanInput(params, cfg.Currency)
	if err != nil {
		return fail("validation_error", "validation", fmt.Errorf("%w: %v", ErrInvalidParams, err))
	}

	span.SetAttributes(
		attribute.Float64("principal", in.Principal),
		attribute.Float64("annual_rate_percent", in.AnnualRatePercent),
		attribute.Int("tenure_months", in.TenureMonths),
		attribute.Float64("processing_fee", in.ProcessingFee),
		attribute.Bool("include_tax", in.IncludeTax),
	)

	if err := validators.CheckLoanInput(cfg, in); err != nil {
		return fail("validation_error", "validation", fmt.Errorf("%w: %v", ErrInvalidParams, err))
	}
	if _, err := validators.CheckCurrency(currencyCode); err != nil {
		return fail("validation_error", "validation", fmt.Errorf("%w: %v", ErrInvalidParams, err))
	}
	formatter, err := presenter.NewFormatter(currencyCode, cfg.Locale)
	if err != nil {
		return fail("error", "formatting", err)
	}

	result, ok := calculations.ComputeSchedule(in)
	if !ok {
		return fail("error", "calculation", ErrSkipped)
	}
	metrics.TenureMonths.Observe(float64(in.TenureMonths))

	out, err := render(result, formatter)
	if err != nil {
		return fail("error", "render", fmt.Errorf("ошибка при формировании результата: %w", err))
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Float64("monthly_installment", result.Summary.MonthlyInstallment),
		attribute.Float64("total_payment", result.Summary.TotalPayment),
	)
	metrics.ToolCalls.WithLabelValues(toolName, "success").Inc()
	metrics.APICalls.WithLabelValues("mcp", toolName, "success").Inc()

	return out, nil
}

// parseLoanInput извлекает параметры кредита; числа приходят из JSON как float64
func parseLoanInput(params map[string]interface{}, defaultCurrency string) (calculations.LoanInput, string, error) {
	var in calculations.LoanInput

	principal, ok := params["principal"].(float64)
	if !ok {
		return in, "", fmt.Errorf("invalid parameter: principal")
	}
	rate, ok := params["annual_rate_percent"].(float64)
	if !ok {
		return in, "", fmt.Errorf("invalid parameter: annual_rate_percent")
	}
	monthsFloat, ok := params["tenure_months"].(float64)
	if !ok || monthsFloat != float64(int(monthsFloat)) {
		return in, "", fmt.Errorf("invalid parameter: tenure_months")
	}

	in.Principal = principal
	in.AnnualRatePercent = rate
	in.TenureMonths = int(monthsFloat)

	if raw, present := params["processing_fee"]; present && raw != nil {
		fee, ok := raw.(float64)
		if !ok {
			return in, "", fmt.Errorf("invalid parameter: processing_fee")
		}
		in.ProcessingFee = fee
	}
	if raw, present := params["include_tax"]; present && raw != nil {
		includeTax, ok := raw.(bool)
		if !ok {
			return in, "", fmt.Errorf("invalid parameter: include_tax")
		}
		in.IncludeTax = includeTax
	}
	if raw, present := params["start_date"]; present && raw != nil && raw != "" {
		s, ok := raw.(string)
		if !ok {
			return in, "", fmt.Errorf("invalid parameter: start_date")
		}
		start, err := validators.ParseDate(s)
		if err != nil {
			return in, "", err
		}
		in.StartDate = &start
	}

	currencyCode := defaultCurrency
	if raw, present := params["currency"]; present && raw != nil && raw != "" {
		s, ok := raw.(string)
		if !ok {
			return in, "", fmt.Errorf("invalid parameter: currency")
		}
		currencyCode = s
	}

	return in, currencyCode, nil
}

// Call вызывает инструмент по имени
func Call(ctx context.Context, registry map[string]ToolHandler, name string, params map[string]interface{}) (interface{}, error) {
	handler, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return handler(ctx, params)
}
