package calculator

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PayoutParams holds the seller side inputs of a payout calculation
type PayoutParams struct {
	Price               decimal.Decimal // offer price including VAT
	Quantity int
	UnitCost            decimal.Decimal // purchase price excluding VAT
	ShippingCost        decimal.Decimal // per order, excluding VAT
	VATPercent          decimal.Decimal
	TargetMarginPercent decimal.Decimal
	At                  time.Time // day the sale happens, defaults to now
}

// PayoutResult holds the complete calculation breakdown
type PayoutResult struct {
	Inputs        PayoutInputs    `json:"inputs"`
	Breakdown     PayoutBreakdown `json:"breakdown"`
	NetPayout     decimal.Decimal `json:"netPayout"`
	Margin        decimal.Decimal `json:"margin"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	Warnings      PayoutWarnings  `json:"warnings"`
}

// PayoutInputs captures the input parameters
type PayoutInputs struct {
	EAN                 string          `json:"ean"`
	Price               decimal.Decimal `json:"price"`
	Quantity            int             `json:"quantity"`
	UnitCost            decimal.Decimal `json:"unitCost"`
	ShippingCost        decimal.Decimal `json:"shippingCost"`
	VATPercent          decimal.Decimal `json:"vatPercent"`
	TargetMarginPercent decimal.Decimal `json:"targetMarginPercent"`
}

// PayoutBreakdown shows individual amounts
type PayoutBreakdown struct {
	Revenue           decimal.Decimal `json:"revenue"`
	VAT               decimal.Decimal `json:"vat"`
	CommissionFixed   decimal.Decimal `json:"commissionFixed"`
	CommissionPercent decimal.Decimal `json:"commissionPercent"`
	Reduction         decimal.Decimal `json:"reduction"`
	CommissionTotal   decimal.Decimal `json:"commissionTotal"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	GoodsCost         decimal.Decimal `json:"goodsCost"`
}

// PayoutWarnings holds any warnings for the user
type PayoutWarnings struct {
	BelowTargetMargin bool `json:"belowTargetMargin"`
	Loss              bool `json:"loss"`
	ReductionApplied  bool `json:"reductionApplied"`
}

// Validation errors
var (
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// UnitCommission returns the commission bol.com charges for one unit sold at
// price: fixed amount plus percentage of the price, minus the best active
// reduction. The returned reduction is already subtracted.
func UnitCommission(c *Commission, price decimal.Decimal, at time.Time) (fixed, percent, reduction decimal.Decimal) {
	fixed = c.FixedAmount
	percent = price.Mul(c.Percentage).Div(hundred).Round(2)

	for _, r := range c.Reductions {
		if r.ActiveAt(price, at) && r.CostReduction.GreaterThan(reduction) {
			reduction = r.CostReduction
		}
	}
	if total := fixed.Add(percent); reduction.GreaterThan(total) {
		reduction = total
	}
	return fixed, percent, reduction
}

// CalculatePayout computes what the seller keeps from a sale
func CalculatePayout(c *Commission, p PayoutParams) (*PayoutResult, error) {
	if !p.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if p.Quantity == 0 {
		p.Quantity = 1
	}
	if p.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if p.At.IsZero() {
		p.At = time.Now()
	}

	qty := decimal.NewFromInt(int64(p.Quantity))
	revenue := p.Price.Mul(qty)
	// VAT contained in a gross amount: gross * rate / (100 + rate)
	vat := revenue.Mul(p.VATPercent).Div(hundred.Add(p.VATPercent)).Round(2)

	fixed, percent, reduction := UnitCommission(c, p.Price, p.At)
	fixed = fixed.Mul(qty)
	percent = percent.Mul(qty)
	reduction = reduction.Mul(qty)
	commission := fixed.Add(percent).Sub(reduction)

	goods := p.UnitCost.Mul(qty)
	payout := revenue.Sub(vat).Sub(commission)
	margin := payout.Sub(goods).Sub(p.ShippingCost)

	marginPercent := decimal.Zero
	if net := revenue.Sub(vat); net.IsPositive() {
		marginPercent = margin.Div(net).Mul(hundred).Round(2)
	}

	return &PayoutResult{
		Inputs: PayoutInputs{
			EAN:                 c.EAN,
			Price:               p.Price,
			Quantity:            p.Quantity,
			UnitCost:            p.UnitCost,
			ShippingCost:        p.ShippingCost,
			VATPercent:          p.VATPercent,
			TargetMarginPercent: p.TargetMarginPercent,
		},
		Breakdown: PayoutBreakdown{
			Revenue:           revenue.Round(2),
			VAT:               vat,
			CommissionFixed:   fixed.Round(2),
			CommissionPercent: percent.Round(2),
			Reduction:         reduction.Round(2),
			CommissionTotal:   commission.Round(2),
			ShippingCost:      p.ShippingCost.Round(2),
			GoodsCost:         goods.Round(2),
		},
		NetPayout:     payout.Round(2),
		Margin:        margin.Round(2),
		MarginPercent: marginPercent,
		Warnings: PayoutWarnings{
			BelowTargetMargin: marginPercent.LessThan(p.TargetMarginPercent),
			Loss:              margin.IsNegative(),
			ReductionApplied:  reduction.IsPositive(),
		},
	}, nil
}

// BreakEvenPrice returns the lowest price including VAT at which a sale of
// one unit covers goods, shipping and commission, ignoring reductions.
// Solves p - vat(p) - fixed - p*pct = cost.
func BreakEvenPrice(c *Commission, unitCost, shippingCost, vatPercent decimal.Decimal) decimal.Decimal {
	netShare := hundred.Div(hundred.Add(vatPercent))
	factor := netShare.Sub(c.Percentage.Div(hundred))
	if !factor.IsPositive() {
		return decimal.Zero
	}
	return unitCost.Add(shippingCost).Add(c.FixedAmount).Div(factor).Round(2)
}
