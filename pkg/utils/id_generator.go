package utils

import (
	"github.com/google/uuid"
)

// GenerateID generates a new UUID string
func GenerateID() string {
	return uuid.New().String()
}

// GenerateQueryID generates a unique query group / sub-query ID
func GenerateQueryID() string {
	return "QRY-" + uuid.New().String()
}

// GenerateMessageID generates a unique chat message ID
func GenerateMessageID() string {
	return "MSG-" + uuid.New().String()
}

// GenerateRemarkID generates a unique remark ID
func GenerateRemarkID() string {
	return "RMK-" + uuid.New().String()
}

// GenerateAuditID generates a unique status audit ID
func GenerateAuditID() string {
	return "AUDIT-" + uuid.New().String()
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
