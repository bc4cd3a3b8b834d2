package searchlistings

import "khetmitra-workers/internal/market"

type Input struct {
	Query    string `json:"query,omitempty"`
	Location string `json:"location,omitempty"`
	From     int    `json:"from,omitempty"`
	Size     int    `json:"size,omitempty"`
}

type Output struct {
	Listings []market.Listing `json:"listings"`
	Total    int64            `json:"total"`
	Source   string           `json:"source"`
	Degraded bool             `json:"degraded"`
}
