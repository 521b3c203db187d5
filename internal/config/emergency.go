package config

import (
	"time"

	"medihelp/internal/utils"
)

type EmergencyConfig struct {
	HospitalRadiusKM float64
	SendTimeout      time.Duration
}

func loadEmergencyConfig() EmergencyConfig {
	return EmergencyConfig{
		HospitalRadiusKM: getEnvAsFloat("EMERGENCY_HOSPITAL_RADIUS_KM", utils.DefaultHospitalRadiusKM),
		SendTimeout:      getEnvAsDuration("EMERGENCY_SEND_TIMEOUT", utils.DefaultSendTimeout),
	}
}
