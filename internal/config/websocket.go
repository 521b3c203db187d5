package config

type WebSocketConfig struct {
	AllowedOrigins []string
}

func loadWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		AllowedOrigins: getEnvAsSlice("WS_ALLOWED_ORIGINS", []string{"*"}),
	}
}
