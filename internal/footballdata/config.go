package footballdata

import (
	"time"

	"football-buddy/internal/common/config"
)

const DefaultHeadToHeadLimit = 10

type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	UnfoldGoals bool
	CacheTTL    time.Duration
}

func NewConfig(appConfig *config.Config) *Config {
	return &Config{
		BaseURL:     appConfig.FootballData.BaseURL,
		APIKey:      appConfig.FootballData.APIKey,
		Timeout:     config.GetDuration(appConfig.FootballData.Timeout),
		UnfoldGoals: appConfig.FootballData.UnfoldGoals,
		CacheTTL:    time.Duration(appConfig.Cache.TTL) * time.Second,
	}
}
