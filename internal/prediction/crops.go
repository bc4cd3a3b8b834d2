package prediction

import (
	"fmt"
	"strings"
)

// CropFacts are the agronomy notes shown next to a recommendation.
type CropFacts struct {
	Name             string `json:"name"`
	Season           string `json:"season"`
	WaterRequirement string `json:"waterRequirement"`
	SoilType         string `json:"soilType"`
}

func (c CropFacts) Summary() string {
	return fmt.Sprintf("Season: %s, Water requirement: %s, Soil: %s", c.Season, c.WaterRequirement, c.SoilType)
}

var cropFacts = map[string]CropFacts{
	"rice":      {Name: "Rice", Season: "Kharif", WaterRequirement: "High", SoilType: "Clay loam"},
	"wheat":     {Name: "Wheat", Season: "Rabi", WaterRequirement: "Medium", SoilType: "Loam"},
	"cotton":    {Name: "Cotton", Season: "Kharif", WaterRequirement: "Medium", SoilType: "Black cotton soil"},
	"sugarcane": {Name: "Sugarcane", Season: "Year-round", WaterRequirement: "Very High", SoilType: "Rich loam"},
}

// LookupCrop is case-insensitive.
func LookupCrop(name string) (CropFacts, bool) {
	f, ok := cropFacts[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}
