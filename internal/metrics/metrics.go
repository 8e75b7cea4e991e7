package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls счетчик вызовов инструментов
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Общее количество вызовов инструментов",
		},
		[]string{"tool_name", "status"},
	)

	// CalculationErrors счетчик ошибок расчетов
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculation_errors_total",
			Help: "Количество ошибок расчетов",
		},
		[]string{"tool_name", "error_type"},
	)

	// APICalls счетчик вызовов API
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_calls_total",
			Help: "Вызовы API инструментов",
		},
		[]string{"service", "endpoint", "status"},
	)

	// TenureMonths распределение сроков рассчитанных кредитов
	TenureMonths = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emi_tenure_months",
			Help:    "Срок кредита в месяцах для выполненных расчетов",
			Buckets: []float64{6, 12, 24, 36, 60, 120, 240, 360, 480},
		},
	)

	// ExportBytes размер сформированных PDF документов
	ExportBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emi_export_bytes",
			Help:    "Размер экспортированного графика платежей в байтах",
			Buckets: prometheus.ExponentialBuckets(2048, 2, 10),
		},
	)

	// FormRecalculations пересчеты формы: computed или skipped
	FormRecalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_recalculations_total",
			Help: "Пересчеты после изменения полей формы",
		},
		[]string{"outcome"},
	)
)
