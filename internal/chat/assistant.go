package chat

import (
	"context"
	"fmt"
	"strings"
)

const (
	ActionWeather       = "Today's Weather"
	ActionMarketPrices  = "Market Prices"
	ActionCropCare      = "Crop Care"
	ActionRecommendCrop = "Recommend Crop"
)

// QuickActions are the canned prompts offered under the input box.
func QuickActions() []string {
	return []string{ActionWeather, ActionMarketPrices, ActionCropCare, ActionRecommendCrop}
}

// WeatherReporter answers a weather question with display text.
type WeatherReporter interface {
	Report(ctx context.Context) string
}

// Reply is the outcome of one user message.
type Reply struct {
	Transcript   Transcript
	ShowCropForm bool
	// Changed is false when the input was blank and nothing was appended.
	Changed bool
}

type Assistant struct {
	weather WeatherReporter
}

func NewAssistant(weather WeatherReporter) *Assistant {
	return &Assistant{weather: weather}
}

// Respond appends the user's message and, unless it asks for the crop form,
// the assistant's answer.
func (a *Assistant) Respond(ctx context.Context, t Transcript, input string) Reply {
	content := strings.TrimSpace(input)
	if content == "" {
		return Reply{Transcript: t}
	}
	t = t.Append(Message{Role: RoleUser, Content: content})

	switch strings.ToLower(content) {
	case strings.ToLower(ActionRecommendCrop):
		return Reply{Transcript: t, ShowCropForm: true, Changed: true}
	case strings.ToLower(ActionWeather):
		return Reply{Transcript: t.Append(assistantSays(a.weatherText(ctx))), Changed: true}
	}
	return Reply{
		Transcript: t.Append(assistantSays(fmt.Sprintf("Got it. Here is a quick update for: %s", content))),
		Changed:    true,
	}
}

// AppendAssistant adds an assistant message, e.g. a crop recommendation.
func AppendAssistant(t Transcript, content string) Transcript {
	return t.Append(assistantSays(content))
}

func (a *Assistant) weatherText(ctx context.Context) string {
	if a.weather == nil {
		return "Weather data not available."
	}
	return a.weather.Report(ctx)
}

func assistantSays(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
