package validators

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"

	"github.com/cloud-ru/mcp-emi-go/internal/calculations"
	"github.com/cloud-ru/mcp-emi-go/internal/config"
	"github.com/cloud-ru/mcp-emi-go/pkg/utils"
)

// DateLayout формат даты первого платежа
const DateLayout = "2006-01-02"

// ValidateNumber проверяет, что число конечное и в допустимом диапазоне
func ValidateNumber(name string, value float64, minInclusive, maxInclusive float64) error {
	if !utils.IsFinite(value) {
		return fmt.Errorf("%s: значение не является конечным числом", name)
	}
	if value < minInclusive {
		return fmt.Errorf("%s: значение должно быть ≥ %g", name, minInclusive)
	}
	if value > maxInclusive {
		return fmt.Errorf("%s: значение слишком велико (>%g)", name, maxInclusive)
	}
	return nil
}

// ValidateIntRange проверяет, что целое число в допустимом диапазоне
func ValidateIntRange(name string, value int, minInclusive, maxInclusive int) error {
	if value < minInclusive || value > maxInclusive {
		return fmt.Errorf("%s: значение должно быть в диапазоне [%d; %d]", name, minInclusive, maxInclusive)
	}
	return nil
}

// CheckPrincipal проверяет сумму кредита
func CheckPrincipal(cfg *config.Config, principal float64) error {
	if err := ValidateNumber("principal", principal, 0, cfg.MaxPrincipal); err != nil {
		return err
	}
	if principal == 0 {
		return fmt.Errorf("principal: значение должно быть > 0")
	}
	return nil
}

// CheckRate проверяет процентную ставку
func CheckRate(cfg *config.Config, rate float64) error {
	return ValidateNumber("annual_rate_percent", rate, 0.0, cfg.MaxRate)
}

// CheckMonths проверяет срок в месяцах
func CheckMonths(cfg *config.Config, months int) error {
	return ValidateIntRange("tenure_months", months, 1, cfg.MaxMonths)
}

// CheckFee проверяет комиссию за оформление
func CheckFee(cfg *config.Config, fee float64) error {
	return ValidateNumber("processing_fee", fee, 0.0, cfg.MaxFee)
}

// CheckCurrency проверяет ISO 4217 код валюты
func CheckCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency: неизвестный код валюты %q", code)
	}
	return unit, nil
}

// ParseDate разбирает дату первого платежа в формате YYYY-MM-DD
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_date: ожидается формат YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// CheckLoanInput проверяет все параметры кредита против лимитов конфигурации
func CheckLoanInput(cfg *config.Config, in calculations.LoanInput) error {
	if err := CheckPrincipal(cfg, in.Principal); err != nil {
		return err
	}
	if err := CheckRate(cfg, in.AnnualRatePercent); err != nil {
		return err
	}
	if err := CheckMonths(cfg, in.TenureMonths); err != nil {
		return err
	}
	return CheckFee(cfg, in.ProcessingFee)
}
