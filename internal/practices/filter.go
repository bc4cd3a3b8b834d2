package practices

// Filter returns the practices that fit sel, in catalog order. Standard
// tiers match on eligibleBudgetTiers; a custom amount matches any practice
// whose minimum investment it covers. The maximum is informational only.
func Filter(practices []Practice, sel BudgetSelection) []Practice {
	out := make([]Practice, 0, len(practices))
	for _, p := range practices {
		if matches(p, sel) {
			out = append(out, p.clone())
		}
	}
	return out
}

func matches(p Practice, sel BudgetSelection) bool {
	if sel.Tier == TierCustom {
		if sel.CustomAmount == nil {
			return false
		}
		return *sel.CustomAmount >= p.InvestmentRange.Min
	}
	return p.EligibleFor(sel.Tier)
}

// Recommendation is the filter result with its label. An empty Practices
// list means "no recommendations", not an error.
type Recommendation struct {
	Selection BudgetSelection `json:"selection"`
	Label     string          `json:"label"`
	Practices []Practice      `json:"practices"`
}

// Recommend validates sel and filters the catalog.
func (c *Catalog) Recommend(sel BudgetSelection) (Recommendation, error) {
	if err := sel.Validate(); err != nil {
		return Recommendation{}, err
	}
	return Recommendation{
		Selection: sel,
		Label:     sel.Label(),
		Practices: Filter(c.practices, sel),
	}, nil
}
