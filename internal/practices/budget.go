package practices

import (
	"errors"
	"fmt"
	"math"
)

// Tier is a budget bracket.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
	TierCustom Tier = "custom"
)

// Custom amount slider bounds offered to the farmer.
const (
	CustomSliderMin     = 1000
	CustomSliderMax     = 200000
	CustomSliderStep    = 500
	DefaultCustomAmount = 15000
)

var ErrInvalidBudget = errors.New("invalid budget selection")

var tierLabels = map[Tier]string{
	TierLow:    "₹1,000 - ₹10,000",
	TierMedium: "₹10,000 - ₹50,000",
	TierHigh:   "₹50,000+",
}

// BudgetSelection is a tier, plus an amount when the tier is custom.
type BudgetSelection struct {
	Tier         Tier     `json:"tier"`
	CustomAmount *float64 `json:"customAmount,omitempty"`
}

// DefaultSelection is the medium tier.
func DefaultSelection() BudgetSelection {
	return BudgetSelection{Tier: TierMedium}
}

// Custom builds a custom selection for amount.
func Custom(amount float64) BudgetSelection {
	return BudgetSelection{Tier: TierCustom, CustomAmount: &amount}
}

func (b BudgetSelection) Validate() error {
	switch b.Tier {
	case TierLow, TierMedium, TierHigh:
		if b.CustomAmount != nil {
			return fmt.Errorf("%w: customAmount is only allowed with the custom tier", ErrInvalidBudget)
		}
		return nil
	case TierCustom:
		if b.CustomAmount == nil {
			return fmt.Errorf("%w: custom tier needs customAmount", ErrInvalidBudget)
		}
		a := *b.CustomAmount
		if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
			return fmt.Errorf("%w: customAmount must be a finite amount >= 0", ErrInvalidBudget)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidBudget, b.Tier)
	}
}

// Label is the currency range for a tier, or the formatted custom amount.
func (b BudgetSelection) Label() string {
	if b.Tier == TierCustom {
		if b.CustomAmount == nil {
			return FormatINR(DefaultCustomAmount)
		}
		return FormatINR(*b.CustomAmount)
	}
	return tierLabels[b.Tier]
}
