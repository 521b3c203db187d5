package config

type MapsConfig struct {
	Enabled bool
	APIKey  string
}

func loadMapsConfig() MapsConfig {
	return MapsConfig{
		Enabled: getEnvAsBool("MAPS_ENABLED", false),
		APIKey:  getEnv("GOOGLE_MAPS_API_KEY", ""),
	}
}
