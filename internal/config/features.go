package config

type FeatureConfig struct {
	// EnforcePickTransitions restricts pick status updates to
	// pending -> {won, lost, push, void}. Off means updates overwrite.
	EnforcePickTransitions bool `yaml:"enforce_pick_transitions"`
	NotifyFollowersOnPick  bool `yaml:"notify_followers_on_pick"`
}

func loadFeatureConfig() *FeatureConfig {
	return &FeatureConfig{
		EnforcePickTransitions: getEnvAsBool("ENFORCE_PICK_TRANSITIONS", false),
		NotifyFollowersOnPick:  getEnvAsBool("NOTIFY_FOLLOWERS_ON_PICK", true),
	}
}
