package calculations

import "time"

// TaxRate ставка GST, начисляемая на проценты и на комиссию
const TaxRate = 0.18

// LoanInput параметры кредита, введенные пользователем
type LoanInput struct {
	Principal         float64    `json:"principal"`
	AnnualRatePercent float64    `json:"annual_rate_percent"`
	TenureMonths      int        `json:"tenure_months"`
	ProcessingFee     float64    `json:"processing_fee"`
	IncludeTax        bool       `json:"include_tax"`
	StartDate         *time.Time `json:"start_date,omitempty"`
}

// EMISummary представляет сводку по кредиту
type EMISummary struct {
	MonthlyInstallment float64 `json:"monthly_installment"`
	TotalInterest      float64 `json:"total_interest"`
	TotalPayment       float64 `json:"total_payment"`
	TaxOnInterest      float64 `json:"tax_on_interest"`
	TaxOnFee           float64 `json:"tax_on_fee"`
	ProcessingFee      float64 `json:"processing_fee"`
}

// ScheduleRow одна строка графика платежей
type ScheduleRow struct {
	Period             int        `json:"period"`
	Date               *time.Time `json:"date,omitempty"`
	OpeningBalance     float64    `json:"opening_balance"`
	Installment        float64    `json:"installment"`
	PrincipalComponent float64    `json:"principal_component"`
	InterestComponent  float64    `json:"interest_component"`
	TaxComponent       float64    `json:"tax_component"`
	ClosingBalance     float64    `json:"closing_balance"`
}

// Result результат расчета: исходные параметры, сводка и полный график
type Result struct {
	Input    LoanInput     `json:"input"`
	Summary  EMISummary    `json:"summary"`
	Schedule []ScheduleRow `json:"schedule"`
}
