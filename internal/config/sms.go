package config

type SMSConfig struct {
	Enabled    bool
	Provider   string // "twilio" or "sns"
	FromNumber string

	TwilioAccountSID string
	TwilioAuthToken  string

	AWSRegion string
}

func loadSMSConfig() SMSConfig {
	return SMSConfig{
		Enabled:          getEnvAsBool("SMS_ENABLED", false),
		Provider:         getEnv("SMS_PROVIDER", "twilio"),
		FromNumber:       getEnv("SMS_FROM_NUMBER", ""),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
	}
}
