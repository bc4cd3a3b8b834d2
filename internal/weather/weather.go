// Package weather reads the current conditions from Open-Meteo.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	khttp "khetmitra-workers/internal/common/http"
)

const (
	DefaultBaseURL   = "https://api.open-meteo.com"
	DefaultLatitude  = 28.6139
	DefaultLongitude = 77.2090

	MsgUnavailable = "Weather data not available."
	MsgFetchFailed = "Sorry, could not fetch weather information."
)

// ErrNoData is returned when the response has no current_weather block.
var ErrNoData = errors.New("weather data not available")

type Reading struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
}

// Message renders the reading the way the assistant shows it.
func (r Reading) Message() string {
	return fmt.Sprintf("Today's weather: Temperature : %s°C, Wind Speed : %s km/h, Weather Code : %d",
		num(r.Temperature), num(r.WindSpeed), r.WeatherCode)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FallbackMessage is the text shown in place of a reading when err occurred.
func FallbackMessage(err error) string {
	if errors.Is(err, ErrNoData) {
		return MsgUnavailable
	}
	return MsgFetchFailed
}

// Fetcher returns the live reading.
type Fetcher interface {
	Current(ctx context.Context) (Reading, error)
}

type Client struct {
	http      *khttp.Client
	baseURL   string
	latitude  float64
	longitude float64
}

// NewClient builds an Open-Meteo client. Zero coordinates fall back to New
// Delhi.
func NewClient(client *khttp.Client, baseURL string, latitude, longitude float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if latitude == 0 && longitude == 0 {
		latitude, longitude = DefaultLatitude, DefaultLongitude
	}
	return &Client{
		http:      client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		latitude:  latitude,
		longitude: longitude,
	}
}

func (c *Client) Location() (float64, float64) {
	return c.latitude, c.longitude
}

func (c *Client) forecastURL() string {
	q := url.Values{}
	q.Set("latitude", num(c.latitude))
	q.Set("longitude", num(c.longitude))
	q.Set("current_weather", "true")
	return c.baseURL + "/v1/forecast?" + q.Encode()
}

type forecastResponse struct {
	CurrentWeather *Reading `json:"current_weather"`
}

func (c *Client) Current(ctx context.Context) (Reading, error) {
	var resp forecastResponse
	if err := c.http.GetJSON(ctx, c.forecastURL(), &resp); err != nil {
		return Reading{}, fmt.Errorf("fetch weather: %w", err)
	}
	if resp.CurrentWeather == nil {
		return Reading{}, ErrNoData
	}
	return *resp.CurrentWeather, nil
}
