package utils

import "regexp"

var nonDigitRegex = regexp.MustCompile(`[^\d]`)

// NormalizePhone strips a phone number down to its digits.
func NormalizePhone(phone string) string {
	return nonDigitRegex.ReplaceAllString(phone, "")
}

// IsValidPhone reports whether the number, once normalized, carries enough
// digits to attempt a send.
func IsValidPhone(phone string) bool {
	return len(NormalizePhone(phone)) >= MinPhoneDigits
}
