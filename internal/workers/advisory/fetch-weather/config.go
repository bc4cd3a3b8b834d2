package fetchweather

import (
	"time"

	"khetmitra-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(appCfg *config.Config) *Config {
	return &Config{Timeout: config.GetDuration(config.GetWorkerConfig(appCfg, TaskType).Timeout)}
}
