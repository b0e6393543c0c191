package config

// FirebaseConfig is used to verify Firebase ID tokens issued to the mobile app.
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

func (f *FirebaseConfig) Configured() bool {
	return f.CredentialsFile != ""
}

func loadFirebaseConfig() *FirebaseConfig {
	return &FirebaseConfig{
		ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", getEnv("FCM_CREDENTIALS_FILE", "")),
	}
}
