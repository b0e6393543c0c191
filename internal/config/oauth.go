package config

type OAuthConfig struct {
	Google *GoogleOAuthConfig `yaml:"google"`
	Apple  *AppleOAuthConfig  `yaml:"apple"`
}

type GoogleOAuthConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

type AppleOAuthConfig struct {
	ClientID    string `yaml:"client_id"`
	TeamID      string `yaml:"team_id"`
	KeyID       string `yaml:"key_id"`
	KeyFile     string `yaml:"key_file"`
	RedirectURL string `yaml:"redirect_url"`
}

func loadOAuthConfig() *OAuthConfig {
	return &OAuthConfig{
		Google: &GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
			Scopes: getEnvAsSlice("GOOGLE_SCOPES", []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			}),
		},
		Apple: &AppleOAuthConfig{
			ClientID:    getEnv("APPLE_CLIENT_ID", ""),
			TeamID:      getEnv("APPLE_TEAM_ID", ""),
			KeyID:       getEnv("APPLE_KEY_ID", ""),
			KeyFile:     getEnv("APPLE_KEY_FILE", ""),
			RedirectURL: getEnv("APPLE_REDIRECT_URL", ""),
		},
	}
}
