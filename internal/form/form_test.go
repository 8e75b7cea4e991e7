package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-ru/mcp-emi-go/internal/config"
)

func fill(t *testing.T, c *Controller, values map[Field]string) {
	t.Helper()
	for f, v := range values {
		_, err := c.Set(f, v)
		require.NoError(t, err)
	}
}

func TestControllerRecomputesWhenComplete(t *testing.T) {
	c := New(nil)

	computed, err := c.Set(FieldPrincipal, "100000")
	require.NoError(t, err)
	assert.False(t, computed)
	assert.Nil(t, c.Result())

	computed, err = c.Set(FieldRate, "12")
	require.NoError(t, err)
	assert.False(t, computed)

	computed, err = c.Set(FieldTenure, "12")
	require.NoError(t, err)
	assert.True(t, computed)
	require.NotNil(t, c.Result())
	assert.Equal(t, 8884.88, c.Result().Summary.MonthlyInstallment)
}

func TestControllerKeepsResultOnInvalidInput(t *testing.T) {
	c := New(nil)
	fill(t, c, map[Field]string{FieldPrincipal: "100000", FieldRate: "12", FieldTenure: "12"})
	previous := c.Result()
	require.NotNil(t, previous)

	computed, err := c.Set(FieldPrincipal, "abc")
	require.NoError(t, err)
	assert.False(t, computed)
	assert.Same(t, previous, c.Result())

	computed, err = c.Set(FieldTenure, "0")
	require.NoError(t, err)
	assert.False(t, computed)
	assert.Same(t, previous, c.Result())
}

func TestControllerReplacesResult(t *testing.T) {
	c := New(nil)
	fill(t, c, map[Field]string{FieldPrincipal: "100000", FieldRate: "12", FieldTenure: "12"})
	first := c.Result()

	computed, err := c.Set(FieldIncludeTax, "on")
	require.NoError(t, err)
	assert.True(t, computed)
	assert.NotSame(t, first, c.Result())
	assert.True(t, c.Result().Input.IncludeTax)
	assert.Greater(t, c.Result().Summary.TaxOnInterest, 0.0)
}

func TestControllerTenureInYears(t *testing.T) {
	c := New(nil)
	fill(t, c, map[Field]string{
		FieldPrincipal:  "1,00,000",
		FieldRate:       "10",
		FieldTenure:     "2",
		FieldTenureUnit: "years",
	})
	require.NotNil(t, c.Result())
	assert.Equal(t, 24, c.Result().Input.TenureMonths)
	assert.Equal(t, 100000.0, c.Result().Input.Principal)
}

func TestControllerStartDateAndFee(t *testing.T) {
	c := New(nil)
	fill(t, c, map[Field]string{
		FieldPrincipal:     "50000",
		FieldRate:          "0",
		FieldTenure:        "5",
		FieldProcessingFee: "500",
		FieldStartDate:     "2024-01-31",
	})
	result := c.Result()
	require.NotNil(t, result)
	assert.Equal(t, 10000.0, result.Summary.MonthlyInstallment)
	assert.Equal(t, 500.0, result.Summary.ProcessingFee)
	require.NotNil(t, result.Schedule[1].Date)
	assert.Equal(t, 29, result.Schedule[1].Date.Day())

	// неверная дата не сбрасывает последний результат
	computed, err := c.Set(FieldStartDate, "31/01/2024")
	require.NoError(t, err)
	assert.False(t, computed)
	assert.Same(t, result, c.Result())
}

func TestControllerUnknownField(t *testing.T) {
	c := New(nil)
	_, err := c.Set(Field("color"), "red")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = ParseField("color")
	assert.ErrorIs(t, err, ErrUnknownField)

	f, err := ParseField(" principal ")
	require.NoError(t, err)
	assert.Equal(t, FieldPrincipal, f)
}

func TestControllerReset(t *testing.T) {
	c := New(nil)
	fill(t, c, map[Field]string{FieldPrincipal: "100000", FieldRate: "12", FieldTenure: "12"})
	require.NotNil(t, c.Result())

	c.Reset()
	assert.Nil(t, c.Result())
	assert.Empty(t, c.Values())
}

func TestRestore(t *testing.T) {
	c := Restore(nil, Snapshot{Values: map[Field]string{
		FieldPrincipal: "100000",
		FieldRate:      "12",
		FieldTenure:    "12",
		Field("junk"):  "x",
	}})
	require.NotNil(t, c.Result())
	assert.NotContains(t, c.Values(), Field("junk"))
	assert.Len(t, c.Values(), 3)
}

func TestSnapshotKeepsLastResult(t *testing.T) {
	c := New(nil)
	fill(t, c, map[Field]string{FieldPrincipal: "100000", FieldRate: "12", FieldTenure: "12"})
	_, err := c.Set(FieldRate, "twelve")
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, "twelve", snap.Values[FieldRate])
	assert.Equal(t, "12", snap.Applied[FieldRate])

	restored := Restore(nil, snap)
	require.NotNil(t, restored.Result())
	assert.Equal(t, 8884.88, restored.Result().Summary.MonthlyInstallment)
	assert.Equal(t, "twelve", restored.Values()[FieldRate])
}

func TestControllerClearingField(t *testing.T) {
	c := New(nil)
	fill(t, c, map[Field]string{FieldPrincipal: "100000", FieldRate: "12", FieldTenure: "12", FieldProcessingFee: "100"})

	computed, err := c.Set(FieldProcessingFee, "  ")
	require.NoError(t, err)
	assert.True(t, computed)
	assert.NotContains(t, c.Values(), FieldProcessingFee)
	assert.Equal(t, 0.0, c.Result().Summary.ProcessingFee)
}

func TestControllerRespectsLimits(t *testing.T) {
	cfg := &config.Config{MaxPrincipal: 1e9, MaxMonths: 480, MaxRate: 100, MaxFee: 1e8}

	tests := []struct {
		name  string
		unit  string
		field Field
		value string
	}{
		{name: "tenure above limit", unit: UnitMonths, field: FieldTenure, value: "200000"},
		{name: "tenure in years above limit", unit: UnitYears, field: FieldTenure, value: "41"},
		{name: "principal above limit", unit: UnitMonths, field: FieldPrincipal, value: "1e15"},
		{name: "rate above limit", unit: UnitMonths, field: FieldRate, value: "5000"},
		{name: "fee above limit", unit: UnitMonths, field: FieldProcessingFee, value: "1e12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(cfg)
			fill(t, c, map[Field]string{FieldPrincipal: "100000", FieldRate: "12", FieldTenure: "1", FieldTenureUnit: tt.unit})
			previous := c.Result()
			require.NotNil(t, previous)

			computed, err := c.Set(tt.field, tt.value)
			require.NoError(t, err)
			assert.False(t, computed)
			assert.Same(t, previous, c.Result())
		})
	}
}
