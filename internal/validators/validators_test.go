package validators

import (
	"math"
	"testing"

	"github.com/cloud-ru/mcp-emi-go/internal/calculations"
	"github.com/cloud-ru/mcp-emi-go/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxPrincipal: 1e9,
		MaxMonths:    480,
		MaxRate:      100,
		MaxFee:       1e8,
	}
}

func TestValidators(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name      string
		validator func(*config.Config, interface{}) error
		value     interface{}
		wantError bool
	}{
		{
			name:      "valid principal",
			validator: func(cfg *config.Config, v interface{}) error { return CheckPrincipal(cfg, v.(float64)) },
			value:     1000000.0,
		},
		{
			name:      "invalid principal zero",
			validator: func(cfg *config.Config, v interface{}) error { return CheckPrincipal(cfg, v.(float64)) },
			value:     0.0,
			wantError: true,
		},
		{
			name:      "invalid principal NaN",
			validator: func(cfg *config.Config, v interface{}) error { return CheckPrincipal(cfg, v.(float64)) },
			value:     math.NaN(),
			wantError: true,
		},
		{
			name:      "principal above limit",
			validator: func(cfg *config.Config, v interface{}) error { return CheckPrincipal(cfg, v.(float64)) },
			value:     2e9,
			wantError: true,
		},
		{
			name:      "zero rate allowed",
			validator: func(cfg *config.Config, v interface{}) error { return CheckRate(cfg, v.(float64)) },
			value:     0.0,
		},
		{
			name:      "invalid rate negative",
			validator: func(cfg *config.Config, v interface{}) error { return CheckRate(cfg, v.(float64)) },
			value:     -1.0,
			wantError: true,
		},
		{
			name:      "valid months",
			validator: func(cfg *config.Config, v interface{}) error { return CheckMonths(cfg, v.(int)) },
			value:     12,
		},
		{
			name:      "invalid months zero",
			validator: func(cfg *config.Config, v interface{}) error { return CheckMonths(cfg, v.(int)) },
			value:     0,
			wantError: true,
		},
		{
			name:      "months above limit",
			validator: func(cfg *config.Config, v interface{}) error { return CheckMonths(cfg, v.(int)) },
			value:     481,
			wantError: true,
		},
		{
			name:      "zero fee allowed",
			validator: func(cfg *config.Config, v interface{}) error { return CheckFee(cfg, v.(float64)) },
			value:     0.0,
		},
		{
			name:      "negative fee",
			validator: func(cfg *config.Config, v interface{}) error { return CheckFee(cfg, v.(float64)) },
			value:     -10.0,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator(cfg, tt.value)
			if (err != nil) != tt.wantError {
				t.Errorf("validator error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestCheckCurrency(t *testing.T) {
	if _, err := CheckCurrency("INR"); err != nil {
		t.Errorf("INR rejected: %v", err)
	}
	if _, err := CheckCurrency("XYZ1"); err == nil {
		t.Error("expected error for malformed currency code")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Day() != 31 || d.Month() != 1 || d.Year() != 2024 {
		t.Errorf("unexpected date %v", d)
	}
	if _, err := ParseDate("31/01/2024"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestCheckLoanInput(t *testing.T) {
	cfg := testConfig()

	if err := CheckLoanInput(cfg, calculations.LoanInput{Principal: 1000, AnnualRatePercent: 10, TenureMonths: 12}); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}
	if err := CheckLoanInput(cfg, calculations.LoanInput{Principal: 1000, AnnualRatePercent: 10, TenureMonths: 12, ProcessingFee: -1}); err == nil {
		t.Error("expected error for negative fee")
	}
}
