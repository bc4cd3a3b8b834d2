// Package roi projects the financial return of a farm improvement.
package roi

import (
	"errors"
	"fmt"
	"math"
)

const (
	cyclesPerYear       = 2
	projectionYears     = 3
	highInvestmentLimit = 40000
	highInvestmentRisk  = 10
)

// ErrInvalidInput is wrapped by every error Validate returns.
var ErrInvalidInput = errors.New("invalid roi input")

// Inputs are the farm and investment parameters. CurrentCost and
// TimelineMonths are validated and echoed back but do not enter the
// projection.
type Inputs struct {
	YieldPerAcre            float64 `json:"yieldPerAcre"`
	PricePerUnit            float64 `json:"pricePerUnit"`
	CurrentCost             float64 `json:"currentCost"`
	Investment              float64 `json:"investment"`
	ExpectedIncreasePercent float64 `json:"expectedIncreasePercent"`
	TimelineMonths          int     `json:"timelineMonths"`
}

type Outputs struct {
	ExtraYield           float64 `json:"extraYield"`
	ExtraRevenuePerCycle float64 `json:"extraRevenuePerCycle"`
	AnnualExtraRevenue   float64 `json:"annualExtraRevenue"`
	ThreeYearROI         float64 `json:"threeYearROI"`
	BreakEvenMonths      int     `json:"breakEvenMonths"`
	MonthlyExtraRevenue  float64 `json:"monthlyExtraRevenue"`
	RiskScore            float64 `json:"riskScore"`
}

// DefaultInputs is the pre-filled calculator form.
func DefaultInputs() Inputs {
	return Inputs{
		YieldPerAcre:            20,
		PricePerUnit:            2000,
		CurrentCost:             30000,
		Investment:              15000,
		ExpectedIncreasePercent: 20,
		TimelineMonths:          12,
	}
}

// Validate rejects negative or non-finite amounts, a non-positive timeline
// and an increase outside [0, 100].
func (in Inputs) Validate() error {
	amounts := []struct {
		name  string
		value float64
	}{
		{"yieldPerAcre", in.YieldPerAcre},
		{"pricePerUnit", in.PricePerUnit},
		{"currentCost", in.CurrentCost},
		{"investment", in.Investment},
	}
	for _, a := range amounts {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, a.name)
		}
		if a.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidInput, a.name, a.value)
		}
	}

	p := in.ExpectedIncreasePercent
	if math.IsNaN(p) || p < 0 || p > 100 {
		return fmt.Errorf("%w: expectedIncreasePercent must be between 0 and 100, got %v", ErrInvalidInput, p)
	}
	if in.TimelineMonths <= 0 {
		return fmt.Errorf("%w: timelineMonths must be positive, got %d", ErrInvalidInput, in.TimelineMonths)
	}
	return nil
}

// Calculate never fails. Unvalidated input flows through the arithmetic;
// break-even months and the risk score are floored at 1.
func Calculate(in Inputs) Outputs {
	extraYield := in.YieldPerAcre * in.ExpectedIncreasePercent / 100
	perCycle := extraYield * in.PricePerUnit
	annual := perCycle * cyclesPerYear
	monthly := annual / 12

	return Outputs{
		ExtraYield:           extraYield,
		ExtraRevenuePerCycle: perCycle,
		AnnualExtraRevenue:   annual,
		ThreeYearROI:         annual*projectionYears - in.Investment,
		BreakEvenMonths:      breakEven(in.Investment, monthly),
		MonthlyExtraRevenue:  monthly,
		RiskScore:            riskScore(in.ExpectedIncreasePercent, in.Investment),
	}
}

func breakEven(investment, monthly float64) int {
	months := math.Ceil(investment / math.Max(1, monthly))
	if math.IsNaN(months) || months < 1 {
		return 1
	}
	if months > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(months)
}

func riskScore(increasePercent, investment float64) float64 {
	score := 100 - increasePercent
	if investment > highInvestmentLimit {
		score += highInvestmentRisk
	}
	if math.IsNaN(score) {
		return 1
	}
	return math.Max(1, score)
}

// RiskBarFill is the fill of the displayed risk bar. A high score draws a
// short bar.
func (o Outputs) RiskBarFill() float64 {
	return 100 - o.RiskScore
}
