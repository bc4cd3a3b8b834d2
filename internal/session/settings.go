// Package session holds a farmer's language and profile. Settings are
// passed explicitly to whatever needs them.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const DefaultLanguage = "en"

var ErrUnsupportedLanguage = errors.New("unsupported language")

// SupportedLanguages are the locales the app ships translations for.
var SupportedLanguages = []string{"en", "hi"}

type Profile struct {
	Name     string   `json:"name,omitempty"`
	Location string   `json:"location,omitempty"`
	Crops    []string `json:"crops,omitempty"`
	FarmSize string   `json:"farmSize,omitempty"`
}

func (p Profile) clone() Profile {
	if p.Crops != nil {
		p.Crops = append([]string(nil), p.Crops...)
	}
	return p
}

// ProfilePatch is a partial profile. Nil fields keep the current value.
type ProfilePatch struct {
	Name     *string  `json:"name,omitempty"`
	Location *string  `json:"location,omitempty"`
	Crops    []string `json:"crops,omitempty"`
	FarmSize *string  `json:"farmSize,omitempty"`
}

func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Location == nil && p.Crops == nil && p.FarmSize == nil
}

func (p Profile) Merge(patch ProfilePatch) Profile {
	out := p.clone()
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Location != nil {
		out.Location = *patch.Location
	}
	if patch.Crops != nil {
		out.Crops = append([]string(nil), patch.Crops...)
	}
	if patch.FarmSize != nil {
		out.FarmSize = *patch.FarmSize
	}
	return out
}

// Settings is one session's language and profile. It is safe for
// concurrent use.
type Settings struct {
	mu       sync.RWMutex
	language string
	profile  Profile
}

// NewSettings starts with the given language, or "en" when it is empty,
// and an empty profile.
func NewSettings(language string) *Settings {
	if language == "" {
		language = DefaultLanguage
	}
	return &Settings{language: language}
}

func (s *Settings) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

func (s *Settings) SetLanguage(lng string) error {
	lng = strings.ToLower(strings.TrimSpace(lng))
	if !IsSupportedLanguage(lng) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lng)
	}
	s.mu.Lock()
	s.language = lng
	s.mu.Unlock()
	return nil
}

func (s *Settings) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.clone()
}

// SetProfile merges patch into the current profile.
func (s *Settings) SetProfile(patch ProfilePatch) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = s.profile.Merge(patch)
	return s.profile.clone()
}

func IsSupportedLanguage(lng string) bool {
	for _, l := range SupportedLanguages {
		if l == lng {
			return true
		}
	}
	return false
}
