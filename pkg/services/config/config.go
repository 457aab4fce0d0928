package config

import (
	"fmt"

	"github.com/finsight/dashis/pkg/services/analysis"
	"github.com/spf13/viper"
)

// AgentSettings identifies an agent instance.
type AgentSettings struct {
	ID            string   `mapstructure:"id"`
	Version       string   `mapstructure:"version"`
	Capabilities  []string `mapstructure:"capabilities"`
	FuseAllowList []string `mapstructure:"fuse_allow_list"`
}

// AnomalySettings configure the built-in z-score detector.
type AnomalySettings struct {
	Threshold  float64 `mapstructure:"threshold"`
	MinSamples int     `mapstructure:"min_samples"`
}

// Config is the full agent configuration file.
type Config struct {
	Agent    AgentSettings   `mapstructure:"agent"`
	Analysis analysis.Config `mapstructure:"analysis"`
	Anomaly  AnomalySettings `mapstructure:"anomaly"`
}

// Load reads the agent configuration from path, filling unset stage
// gates and detector settings with their documented defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := analysis.DefaultConfig()
	v.SetDefault("agent.version", "1.0.0")
	v.SetDefault("analysis.anomalies.enabled", defaults.Anomalies.Enabled)
	v.SetDefault("analysis.anomalies.min_records", defaults.Anomalies.MinRecords)
	v.SetDefault("analysis.predictions.enabled", defaults.Predictions.Enabled)
	v.SetDefault("analysis.predictions.min_records", defaults.Predictions.MinRecords)
	v.SetDefault("analysis.patterns.enabled", defaults.Patterns.Enabled)
	v.SetDefault("analysis.patterns.min_records", defaults.Patterns.MinRecords)
	v.SetDefault("analysis.scoring.enabled", defaults.Scoring.Enabled)
	v.SetDefault("anomaly.threshold", 2.0)
	v.SetDefault("anomaly.min_samples", 5)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse agent config: %w", err)
	}
	if cfg.Agent.ID == "" {
		return nil, fmt.Errorf("agent.id is required")
	}
	return &cfg, nil
}
