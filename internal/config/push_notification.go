package config

import (
	"time"
)

type PushConfig struct {
	Enabled bool        `yaml:"enabled"`
	FCM     *FCMConfig  `yaml:"fcm"`
	APNS    *APNSConfig `yaml:"apns"`

	// ReminderInterval is both the sweep period and its look-ahead, so each
	// expiring subscription is noticed by exactly one sweep.
	ReminderInterval time.Duration `yaml:"reminder_interval"`
}

type FCMConfig struct {
	ProjectID   string `yaml:"project_id"`
	Credentials string `yaml:"credentials_file"`
}

type APNSConfig struct {
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	BundleID   string `yaml:"bundle_id"`
	KeyFile    string `yaml:"key_file"`
	Production bool   `yaml:"production"`
}

func (a *APNSConfig) Configured() bool {
	return a.KeyFile != "" && a.KeyID != "" && a.TeamID != ""
}

func loadPushConfig() *PushConfig {
	return &PushConfig{
		Enabled:          getEnvAsBool("PUSH_ENABLED", true),
		ReminderInterval: getEnvAsDuration("SUBSCRIPTION_REMINDER_INTERVAL", 24*time.Hour),
		FCM: &FCMConfig{
			ProjectID:   getEnv("FCM_PROJECT_ID", ""),
			Credentials: getEnv("FCM_CREDENTIALS_FILE", ""),
		},
		APNS: &APNSConfig{
			KeyID:      getEnv("APNS_KEY_ID", ""),
			TeamID:     getEnv("APNS_TEAM_ID", ""),
			BundleID:   getEnv("APNS_BUNDLE_ID", ""),
			KeyFile:    getEnv("APNS_KEY_FILE", ""),
			Production: getEnvAsBool("APNS_PRODUCTION", false),
		},
	}
}
