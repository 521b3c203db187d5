package utils

import "time"

const (
	// Pagination
	DefaultPageSize = 20
	MinPageSize     = 1
	MaxPageSize     = 100

	// Geo
	EarthRadiusKM = 6371.0

	// Emergency dispatch
	DefaultHospitalRadiusKM = 10.0

	// Notification gateway
	MinPhoneDigits     = 10
	DefaultSendTimeout = 10 * time.Second

	// Response status
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbiddenAccess  = "forbidden"
	ErrValidationFailed = "validation failed"
)
