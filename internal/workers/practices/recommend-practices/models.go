package recommendpractices

import "khetmitra-workers/internal/practices"

type Input struct {
	BudgetTier   practices.Tier `json:"budgetTier"`
	CustomAmount *float64       `json:"customAmount,omitempty"`
}

type PracticeView struct {
	practices.Practice
	InvestmentLabel string `json:"investmentLabel"`
}

type Output struct {
	BudgetTier        practices.Tier `json:"budgetTier"`
	BudgetLabel       string         `json:"budgetLabel"`
	CatalogVersion    int            `json:"catalogVersion"`
	Practices         []PracticeView `json:"practices"`
	RecommendedCount  int            `json:"recommendedCount"`
	HasRecommendation bool           `json:"hasRecommendations"`
}
