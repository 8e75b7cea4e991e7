package calculations

import (
	"math"
	"time"

	"github.com/cloud-ru/mcp-emi-go/pkg/utils"
)

// Valid сообщает, можно ли по входным данным построить график.
// Сумма и срок должны быть положительными, ставка и комиссия неотрицательными.
func (in LoanInput) Valid() bool {
	if !utils.IsFinite(in.Principal) || !utils.IsFinite(in.AnnualRatePercent) || !utils.IsFinite(in.ProcessingFee) {
		return false
	}
	return in.Principal > 0 && in.TenureMonths > 0 && in.AnnualRatePercent >= 0 && in.ProcessingFee >= 0
}

// MonthlyInstallment рассчитывает аннуитетный платеж, округленный до копеек.
// При нулевой ставке платеж равен P/N.
func MonthlyInstallment(principal, annualRatePercent float64, months int) float64 {
	return utils.Round2(annuityPayment(principal, annualRatePercent/100.0/12.0, months))
}

// annuityPayment точный платеж P*r/(1-(1+r)^-n), без переполнения на длинных сроках
func annuityPayment(principal, r float64, months int) float64 {
	if r == 0.0 {
		return principal / float64(months)
	}
	return principal * r / -math.Expm1(-float64(months)*math.Log1p(r))
}

// ComputeSchedule рассчитывает EMI, налоги и график погашения.
// Если входные данные невалидны, расчет не выполняется и возвращается false.
func ComputeSchedule(in LoanInput) (*Result, bool) {
	if !in.Valid() {
		return nil, false
	}

	P := in.Principal
	n := in.TenureMonths
	r := in.AnnualRatePercent / 100.0 / 12.0
	fee := in.ProcessingFee

	exact := annuityPayment(P, r, n)
	emi := utils.Round2(exact)

	totalBeforeExtras := utils.Round2(emi * float64(n))
	totalInterest := utils.Round2(totalBeforeExtras - P)
	if r == 0.0 || totalInterest < 0 {
		// округление P/N не должно превращаться в отрицательные проценты
		totalBeforeExtras = utils.Round2(P)
		totalInterest = 0
	}

	var taxOnInterest, taxOnFee float64
	if in.IncludeTax {
		taxOnInterest = utils.Round2(totalInterest * TaxRate)
		taxOnFee = utils.Round2(fee * TaxRate)
	}

	summary := EMISummary{
		MonthlyInstallment: emi,
		TotalInterest:      totalInterest,
		TotalPayment:       utils.Round2(totalBeforeExtras + taxOnInterest + fee + taxOnFee),
		TaxOnInterest:      taxOnInterest,
		TaxOnFee:           taxOnFee,
		ProcessingFee:      utils.Round2(fee),
	}
	if !utils.IsFinite(exact) || !utils.IsFinite(summary.TotalPayment) || !utils.IsFinite(summary.TaxOnInterest) {
		return nil, false
	}

	return &Result{
		Input:    in,
		Summary:  summary,
		Schedule: buildSchedule(P, r, exact, emi, n, in.IncludeTax, in.StartDate),
	}, true
}

// balanceFunc возвращает остаток долга после k платежей.
// Для r > 0 остаток считается как приведенная стоимость оставшихся платежей,
// поэтому ошибка округления не накапливается от месяца к месяцу.
func balanceFunc(principal, r, exact float64, n int) func(k int) float64 {
	if r == 0.0 {
		return func(k int) float64 {
			if k >= n {
				return 0
			}
			return principal * float64(n-k) / float64(n)
		}
	}
	logGrowth := math.Log1p(r)
	return func(k int) float64 {
		if k <= 0 {
			return principal
		}
		if k >= n {
			return 0
		}
		return exact * -math.Expm1(-float64(n-k)*logGrowth) / r
	}
}

func buildSchedule(principal, r, exact, emi float64, n int, includeTax bool, startDate *time.Time) []ScheduleRow {
	schedule := make([]ScheduleRow, 0, n)
	balanceAfter := balanceFunc(principal, r, exact, n)
	balance := utils.Round2(principal)

	var date time.Time
	if startDate != nil {
		date = *startDate
	}

	for m := 1; m <= n; m++ {
		opening := balance
		interest := utils.Round2(opening * r)

		balance = utils.Round2(balanceAfter(m))
		principalComponent := utils.Round2(opening - balance)

		installment := emi
		if m == n {
			// последний платеж гасит остаток целиком
			installment = utils.Round2(principalComponent + interest)
		}

		var tax float64
		if includeTax {
			tax = utils.Round2(interest * TaxRate)
		}

		row := ScheduleRow{
			Period:             m,
			OpeningBalance:     opening,
			Installment:        installment,
			PrincipalComponent: principalComponent,
			InterestComponent:  interest,
			TaxComponent:       tax,
			ClosingBalance:     balance,
		}
		if startDate != nil {
			if m > 1 {
				date = utils.AddMonthClamped(date)
			}
			d := date
			row.Date = &d
		}

		schedule = append(schedule, row)
	}

	return schedule
}
