package senddiagnosis

import (
	"time"

	"khetmitra-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
}

func LoadConfig(appCfg *config.Config) *Config {
	return &Config{
		Timeout:      config.GetDuration(config.GetWorkerConfig(appCfg, TaskType).Timeout),
		EmailEnabled: appCfg.Integrations.AWS.SES.Enabled,
		SMSEnabled:   appCfg.Integrations.AWS.SNS.Enabled,
	}
}
