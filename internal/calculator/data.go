package calculator

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/julienbonastre/plaza-helpers/internal/plaza"
)

// Commission is a Plaza commission response with its amounts parsed
type Commission struct {
	EAN                       string                `json:"ean"`
	Condition                 string                `json:"condition"`
	Price                     decimal.Decimal       `json:"price"`
	FixedAmount               decimal.Decimal       `json:"fixedAmount"`
	Percentage                decimal.Decimal       `json:"percentage"`
	TotalCost                 decimal.Decimal       `json:"totalCost"`
	TotalCostWithoutReduction decimal.Decimal       `json:"totalCostWithoutReduction"`
	Reductions                []CommissionReduction `json:"reductions,omitempty"`
}

// CommissionReduction is a temporary discount on the commission for offers
// priced at or below MaximumPrice
type CommissionReduction struct {
	MaximumPrice  decimal.Decimal `json:"maximumPrice"`
	CostReduction decimal.Decimal `json:"costReduction"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
}

// ActiveAt reports whether the reduction applies to price on day at
func (r CommissionReduction) ActiveAt(price decimal.Decimal, at time.Time) bool {
	if price.GreaterThan(r.MaximumPrice) {
		return false
	}
	if !r.StartDate.IsZero() && at.Before(r.StartDate) {
		return false
	}
	if !r.EndDate.IsZero() && at.After(r.EndDate) {
		return false
	}
	return true
}

// FromPlaza parses the string amounts of a Plaza commission. Empty amounts
// become zero.
func FromPlaza(c *plaza.Commission) (*Commission, error) {
	if c == nil {
		return nil, fmt.Errorf("nil commission")
	}

	out := &Commission{EAN: c.EAN, Condition: c.Condition}
	fields := []struct {
		name string
		in   string
		out  *decimal.Decimal
	}{
		{"Price", c.Price, &out.Price},
		{"FixedAmount", c.FixedAmount, &out.FixedAmount},
		{"Percentage", c.Percentage, &out.Percentage},
		{"TotalCost", c.TotalCost, &out.TotalCost},
		{"TotalCostWithoutReduction", c.TotalCostWithoutReduction, &out.TotalCostWithoutReduction},
	}
	for _, f := range fields {
		d, err := parseAmount(f.in)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.out = d
	}

	for _, r := range c.Reductions {
		maxPrice, err := parseAmount(r.MaximumPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid reduction MaximumPrice: %w", err)
		}
		cost, err := parseAmount(r.CostReduction)
		if err != nil {
			return nil, fmt.Errorf("invalid reduction CostReduction: %w", err)
		}
		start, err := parseDate(r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid reduction StartDate: %w", err)
		}
		end, err := parseDate(r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid reduction EndDate: %w", err)
		}
		out.Reductions = append(out.Reductions, CommissionReduction{
			MaximumPrice:  maxPrice,
			CostReduction: cost,
			StartDate:     start,
			EndDate:       end,
		})
	}
	return out, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	// the API uses a decimal point, sellers paste decimal commas
	return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
