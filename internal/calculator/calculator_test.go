package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienbonastre/plaza-helpers/internal/plaza"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCommission() *Commission {
	return &Commission{
		EAN:         "8712626055143",
		FixedAmount: d("0.99"),
		Percentage:  d("15"),
	}
}

func TestFromPlaza(t *testing.T) {
	c, err := FromPlaza(&plaza.Commission{
		EAN:         "8712626055143",
		Condition:   "NEW",
		Price:       "24.99",
		FixedAmount: "0,99",
		Percentage:  "15",
		TotalCost:   "4.74",
		Reductions: []plaza.Reduction{
			{MaximumPrice: "25.00", CostReduction: "0.50", StartDate: "2016-01-01", EndDate: "2016-03-31T23:59:59+01:00"},
		},
	})
	require.NoError(t, err)

	assert.True(t, d("0.99").Equal(c.FixedAmount))
	assert.True(t, d("4.74").Equal(c.TotalCost))
	assert.True(t, c.TotalCostWithoutReduction.IsZero())
	require.Len(t, c.Reductions, 1)
	assert.Equal(t, 2016, c.Reductions[0].StartDate.Year())
	assert.Equal(t, time.March, c.Reductions[0].EndDate.Month())

	_, err = FromPlaza(&plaza.Commission{Price: "abc"})
	assert.Error(t, err)

	_, err = FromPlaza(&plaza.Commission{Reductions: []plaza.Reduction{{StartDate: "yesterday"}}})
	assert.Error(t, err)

	_, err = FromPlaza(nil)
	assert.Error(t, err)
}

func TestCalculatePayout(t *testing.T) {
	res, err := CalculatePayout(testCommission(), PayoutParams{
		Price:               d("24.99"),
		UnitCost:            d("10"),
		ShippingCost:        d("3"),
		VATPercent:          d("21"),
		TargetMarginPercent: d("20"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inputs.Quantity)
	assert.Equal(t, "4.34", res.Breakdown.VAT.StringFixed(2))
	assert.Equal(t, "3.75", res.Breakdown.CommissionPercent.StringFixed(2))
	assert.Equal(t, "4.74", res.Breakdown.CommissionTotal.StringFixed(2))
	assert.Equal(t, "15.91", res.NetPayout.StringFixed(2))
	assert.Equal(t, "2.91", res.Margin.StringFixed(2))
	assert.Equal(t, "14.09", res.MarginPercent.StringFixed(2))
	assert.True(t, res.Warnings.BelowTargetMargin)
	assert.False(t, res.Warnings.Loss)
	assert.False(t, res.Warnings.ReductionApplied)
}

func TestCalculatePayout_Reduction(t *testing.T) {
	c := testCommission()
	c.Reductions = []CommissionReduction{
		{MaximumPrice: d("25"), CostReduction: d("0.50"), StartDate: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2016, 3, 31, 0, 0, 0, 0, time.UTC)},
		{MaximumPrice: d("20"), CostReduction: d("2.00")},
	}

	res, err := CalculatePayout(c, PayoutParams{
		Price:      d("24.99"),
		Quantity:   2,
		VATPercent: d("21"),
		At:         time.Date(2016, 2, 17, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, res.Warnings.ReductionApplied)
	assert.Equal(t, "1.00", res.Breakdown.Reduction.StringFixed(2))
	assert.Equal(t, "8.48", res.Breakdown.CommissionTotal.StringFixed(2))

	// outside the window
	res, err = CalculatePayout(c, PayoutParams{Price: d("24.99"), VATPercent: d("21"), At: time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.False(t, res.Warnings.ReductionApplied)
}

func TestCalculatePayout_Loss(t *testing.T) {
	res, err := CalculatePayout(testCommission(), PayoutParams{Price: d("5"), UnitCost: d("10"), VATPercent: d("21")})
	require.NoError(t, err)
	assert.True(t, res.Warnings.Loss)
	assert.True(t, res.Margin.IsNegative())
}

func TestCalculatePayout_InvalidInput(t *testing.T) {
	_, err := CalculatePayout(testCommission(), PayoutParams{Price: d("0")})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = CalculatePayout(testCommission(), PayoutParams{Price: d("10"), Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUnitCommission_ReductionCappedAtCommission(t *testing.T) {
	c := &Commission{FixedAmount: d("0.50"), Percentage: d("0"), Reductions: []CommissionReduction{{MaximumPrice: d("100"), CostReduction: d("5")}}}
	_, _, reduction := UnitCommission(c, d("10"), time.Now())
	assert.Equal(t, "0.50", reduction.StringFixed(2))
}

func TestBreakEvenPrice(t *testing.T) {
	price := BreakEvenPrice(testCommission(), d("10"), d("3"), d("21"))
	assert.Equal(t, "20.68", price.StringFixed(2))

	res, err := CalculatePayout(testCommission(), PayoutParams{Price: price, UnitCost: d("10"), ShippingCost: d("3"), VATPercent: d("21")})
	require.NoError(t, err)
	assert.Equal(t, "0.00", res.Margin.StringFixed(2))

	all := &Commission{Percentage: d("100")}
	assert.True(t, BreakEvenPrice(all, d("1"), d("0"), d("0")).IsZero())
}
