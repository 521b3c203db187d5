package config

type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

func loadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Enabled:  getEnvAsBool("SMTP_ENABLED", false),
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     getEnvAsInt("SMTP_PORT", 587),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "alerts@medihelp.app"),
		FromName: getEnv("SMTP_FROM_NAME", "MediHelp Alerts"),
	}
}
