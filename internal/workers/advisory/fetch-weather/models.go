package fetchweather

// Input carries no required fields; the location is configured on the worker.
type Input struct {
	SessionID string `json:"sessionId,omitempty"`
}

type Output struct {
	Available   bool    `json:"available"`
	Temperature float64 `json:"temperature,omitempty"`
	WindSpeed   float64 `json:"windSpeed,omitempty"`
	WeatherCode int     `json:"weatherCode,omitempty"`
	Message     string  `json:"message"`
	Cached      bool    `json:"cached"`
}
