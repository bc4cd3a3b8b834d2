package saveprofile

import (
	"time"

	"khetmitra-workers/internal/common/config"
	"khetmitra-workers/internal/session"
)

type Config struct {
	Timeout         time.Duration
	DefaultLanguage string
}

func LoadConfig(appCfg *config.Config) *Config {
	lng := appCfg.Session.DefaultLanguage
	if lng == "" {
		lng = session.DefaultLanguage
	}
	return &Config{
		Timeout:         config.GetDuration(config.GetWorkerConfig(appCfg, TaskType).Timeout),
		DefaultLanguage: lng,
	}
}
