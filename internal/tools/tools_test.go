package tools

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cloud-ru/mcp-emi-go/internal/config"
	"github.com/cloud-ru/mcp-emi-go/internal/presenter"
)

func testRegistry() map[string]ToolHandler {
	cfg := &config.Config{
		MaxPrincipal: 1e9,
		MaxMonths:    480,
		MaxRate:      100,
		MaxFee:       1e8,
		Currency:     "INR",
		Locale:       "en",
	}
	return Registry(cfg, noop.NewTracerProvider().Tracer("test"))
}

func baseParams() map[string]interface{} {
	return map[string]interface{}{
		"principal":           100000.0,
		"annual_rate_percent": 12.0,
		"tenure_months":       12.0,
	}
}

func TestScheduleHandler(t *testing.T) {
	out, err := Call(context.Background(), testRegistry(), ToolSchedule, baseParams())
	require.NoError(t, err)

	resp, ok := out.(ScheduleResponse)
	require.True(t, ok)
	assert.Equal(t, 8884.88, resp.Summary.MonthlyInstallment)
	assert.Len(t, resp.Schedule, 12)
	assert.Equal(t, "INR", resp.Formatted.Currency)
	assert.Contains(t, resp.Formatted.TotalPayment, "106,618.56")
	require.Len(t, resp.Buckets, 2)
	assert.Equal(t, presenter.LabelPrincipal, resp.Buckets[0].Label)
}

func TestScheduleHandlerOptionalParams(t *testing.T) {
	params := baseParams()
	params["processing_fee"] = 1000.0
	params["include_tax"] = true
	params["start_date"] = "2024-01-31"
	params["currency"] = "USD"

	out, err := Call(context.Background(), testRegistry(), ToolSchedule, params)
	require.NoError(t, err)

	resp := out.(ScheduleResponse)
	assert.Equal(t, 180.0, resp.Summary.TaxOnFee)
	assert.Equal(t, "USD", resp.Formatted.Currency)
	require.NotNil(t, resp.Schedule[1].Date)
	assert.Equal(t, 29, resp.Schedule[1].Date.Day())
	assert.Len(t, resp.Buckets, 5)
}

func TestHandlersRejectInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{name: "missing principal", mutate: func(p map[string]interface{}) { delete(p, "principal") }},
		{name: "principal as string", mutate: func(p map[string]interface{}) { p["principal"] = "100000" }},
		{name: "zero principal", mutate: func(p map[string]interface{}) { p["principal"] = 0.0 }},
		{name: "fractional tenure", mutate: func(p map[string]interface{}) { p["tenure_months"] = 12.5 }},
		{name: "tenure above limit", mutate: func(p map[string]interface{}) { p["tenure_months"] = 600.0 }},
		{name: "negative rate", mutate: func(p map[string]interface{}) { p["annual_rate_percent"] = -1.0 }},
		{name: "bad include_tax", mutate: func(p map[string]interface{}) { p["include_tax"] = "yes" }},
		{name: "bad date", mutate: func(p map[string]interface{}) { p["start_date"] = "31.01.2024" }},
		{name: "bad currency", mutate: func(p map[string]interface{}) { p["currency"] = "RUBLE" }},
	}

	registry := testRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := baseParams()
			tt.mutate(params)
			_, err := Call(context.Background(), registry, ToolSchedule, params)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestExportPDFHandler(t *testing.T) {
	params := baseParams()
	params["include_tax"] = true

	out, err := Call(context.Background(), testRegistry(), ToolExportPDF, params)
	require.NoError(t, err)

	doc := out.(Document)
	assert.Equal(t, "EMI_Schedule_with_GST.pdf", doc.FileName)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF-")))
}

func TestChartHandlers(t *testing.T) {
	registry := testRegistry()

	out, err := Call(context.Background(), registry, ToolChartBuckets, baseParams())
	require.NoError(t, err)
	assert.Len(t, out.([]presenter.Bucket), 2)

	out, err = Call(context.Background(), registry, ToolChartHTML, baseParams())
	require.NoError(t, err)
	doc := out.(Document)
	assert.Contains(t, doc.ContentType, "text/html")
	assert.Contains(t, string(doc.Data), presenter.LabelInterest)
}

func TestCallUnknownTool(t *testing.T) {
	_, err := Call(context.Background(), testRegistry(), "loan_schedule_annuity", baseParams())
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestNames(t *testing.T) {
	assert.Equal(t,
		[]string{ToolChartBuckets, ToolChartHTML, ToolExportPDF, ToolSchedule},
		Names(testRegistry()))
}
