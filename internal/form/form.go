// Package form хранит редактируемые поля калькулятора EMI и пересчитывает
// результат после каждого изменения.
//
// Ошибки разбора значений не возвращаются: пока обязательные поля не
// заполнены корректно, расчет просто не выполняется, а предыдущий результат
// остается на месте.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloud-ru/mcp-emi-go/internal/calculations"
	"github.com/cloud-ru/mcp-emi-go/internal/config"
	"github.com/cloud-ru/mcp-emi-go/internal/validators"
)

// ErrUnknownField неизвестное имя поля
var ErrUnknownField = errors.New("form: unknown field")

// Field имя поля формы
type Field string

// Поля формы
const (
	FieldPrincipal     Field = "principal"
	FieldRate          Field = "annual_rate_percent"
	FieldTenure        Field = "tenure"
	FieldTenureUnit    Field = "tenure_unit"
	FieldProcessingFee Field = "processing_fee"
	FieldIncludeTax    Field = "include_tax"
	FieldStartDate     Field = "start_date"
)

// Единицы срока
const (
	UnitMonths = "months"
	UnitYears  = "years"
)

var knownFields = map[Field]struct{}{
	FieldPrincipal:     {},
	FieldRate:          {},
	FieldTenure:        {},
	FieldTenureUnit:    {},
	FieldProcessingFee: {},
	FieldIncludeTax:    {},
	FieldStartDate:     {},
}

// ParseField проверяет имя поля
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	if _, ok := knownFields[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Snapshot сериализуемое состояние формы
type Snapshot struct {
	Values map[Field]string `json:"values"`
	// значения, по которым выполнен последний успешный расчет
	Applied map[Field]string `json:"applied,omitempty"`
}

// Controller владеет значениями полей и последним рассчитанным результатом
type Controller struct {
	cfg     *config.Config
	values  map[Field]string
	applied map[Field]string
	result  *calculations.Result
}

// New создает пустую форму. Значения за пределами лимитов cfg не
// рассчитываются; nil означает расчет без лимитов.
func New(cfg *config.Config) *Controller {
	return &Controller{cfg: cfg, values: make(map[Field]string)}
}

// Restore восстанавливает форму из снимка и пересчитывает результат.
// Неизвестные поля отбрасываются.
func Restore(cfg *config.Config, s Snapshot) *Controller {
	c := New(cfg)
	if len(s.Applied) > 0 {
		c.values = filterKnown(s.Applied)
		c.recompute()
	}
	c.values = filterKnown(s.Values)
	c.recompute()
	return c
}

func filterKnown(values map[Field]string) map[Field]string {
	out := make(map[Field]string, len(values))
	for f, v := range values {
		if _, ok := knownFields[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Snapshot возвращает состояние формы для сохранения
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Values: c.Values(), Applied: copyValues(c.applied)}
}

// Set изменяет значение поля и запускает пересчет.
// Возвращает true, если расчет был выполнен.
func (c *Controller) Set(field Field, value string) (bool, error) {
	if _, ok := knownFields[field]; !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(c.values, field)
	} else {
		c.values[field] = value
	}
	return c.recompute(), nil
}

// Values возвращает копию текущих значений
func (c *Controller) Values() map[Field]string {
	return copyValues(c.values)
}

func copyValues(values map[Field]string) map[Field]string {
	if values == nil {
		return nil
	}
	out := make(map[Field]string, len(values))
	for f, v := range values {
		out[f] = v
	}
	return out
}

// Result последний успешно рассчитанный результат или nil
func (c *Controller) Result() *calculations.Result {
	return c.result
}

// Reset очищает все поля и результат
func (c *Controller) Reset() {
	c.values = make(map[Field]string)
	c.applied = nil
	c.result = nil
}

// Input собирает параметры кредита из полей формы.
// false означает, что обязательные поля не заполнены или не разбираются.
func (c *Controller) Input() (calculations.LoanInput, bool) {
	var in calculations.LoanInput

	principal, ok := c.number(FieldPrincipal)
	if !ok {
		return in, false
	}
	rate, ok := c.number(FieldRate)
	if !ok {
		return in, false
	}
	tenure, err := strconv.Atoi(c.values[FieldTenure])
	if err != nil {
		return in, false
	}
	switch strings.ToLower(c.values[FieldTenureUnit]) {
	case "", UnitMonths:
	case UnitYears:
		tenure *= 12
	default:
		return in, false
	}

	in.Principal = principal
	in.AnnualRatePercent = rate
	in.TenureMonths = tenure

	if _, ok := c.values[FieldProcessingFee]; ok {
		fee, ok := c.number(FieldProcessingFee)
		if !ok {
			return in, false
		}
		in.ProcessingFee = fee
	}
	if raw, ok := c.values[FieldIncludeTax]; ok {
		in.IncludeTax = parseBool(raw)
	}
	if raw, ok := c.values[FieldStartDate]; ok {
		start, err := validators.ParseDate(raw)
		if err != nil {
			return in, false
		}
		in.StartDate = &start
	}

	return in, true
}

func (c *Controller) number(f Field) (float64, bool) {
	raw, ok := c.values[f]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (c *Controller) recompute() bool {
	in, ok := c.Input()
	if !ok {
		return false
	}
	if c.cfg != nil {
		if err := validators.CheckLoanInput(c.cfg, in); err != nil {
			return false
		}
	}
	result, ok := calculations.ComputeSchedule(in)
	if !ok {
		return false
	}
	c.result = result
	c.applied = copyValues(c.values)
	return true
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "on", "yes", "checked":
		return true
	}
	b, _ := strconv.ParseBool(raw)
	return b
}
