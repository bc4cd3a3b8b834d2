package calculateroi

import "khetmitra-workers/internal/roi"

// Input mirrors the calculator form. Omitted fields take the form defaults.
type Input struct {
	YieldPerAcre            *float64 `json:"yieldPerAcre,omitempty"`
	PricePerUnit            *float64 `json:"pricePerUnit,omitempty"`
	CurrentCost             *float64 `json:"currentCost,omitempty"`
	Investment              *float64 `json:"investment,omitempty"`
	ExpectedIncreasePercent *float64 `json:"expectedIncreasePercent,omitempty"`
	TimelineMonths          *int     `json:"timelineMonths,omitempty"`
}

func (in Input) toInputs() roi.Inputs {
	out := roi.DefaultInputs()
	if in.YieldPerAcre != nil {
		out.YieldPerAcre = *in.YieldPerAcre
	}
	if in.PricePerUnit != nil {
		out.PricePerUnit = *in.PricePerUnit
	}
	if in.CurrentCost != nil {
		out.CurrentCost = *in.CurrentCost
	}
	if in.Investment != nil {
		out.Investment = *in.Investment
	}
	if in.ExpectedIncreasePercent != nil {
		out.ExpectedIncreasePercent = *in.ExpectedIncreasePercent
	}
	if in.TimelineMonths != nil {
		out.TimelineMonths = *in.TimelineMonths
	}
	return out
}

type Output struct {
	roi.Outputs

	Inputs              roi.Inputs `json:"roiInputs"`
	RiskBarFill         float64    `json:"riskBarFill"`
	AnnualRevenueLabel  string     `json:"annualExtraRevenueLabel"`
	ThreeYearROILabel   string     `json:"threeYearROILabel"`
	MonthlyRevenueLabel string     `json:"monthlyExtraRevenueLabel"`
}
