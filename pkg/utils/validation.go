package utils

import (
	"fmt"
	"strings"
)

// ValidateQueryID validates a query or group identifier
func ValidateQueryID(queryID string) error {
	if strings.TrimSpace(queryID) == "" {
		return fmt.Errorf("query ID cannot be empty")
	}
	if len(queryID) > 255 {
		return fmt.Errorf("query ID too long (max 255 characters)")
	}
	return nil
}

// ValidateAppNo validates a loan application number
func ValidateAppNo(appNo string) error {
	if strings.TrimSpace(appNo) == "" {
		return fmt.Errorf("application number cannot be empty")
	}
	if len(appNo) > 64 {
		return fmt.Errorf("application number too long (max 64 characters)")
	}
	return nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	return input
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateMaxLength validates maximum string length
func ValidateMaxLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", fieldName, maxLength)
	}
	return nil
}

// ValidateLimit validates a listing limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 0 // no limit
	}
	if limit > 500 {
		return 500
	}
	return limit
}
