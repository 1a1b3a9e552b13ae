package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratedIDsCarryPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(GenerateQueryID(), "QRY-"))
	assert.True(t, strings.HasPrefix(GenerateMessageID(), "MSG-"))
	assert.True(t, strings.HasPrefix(GenerateRemarkID(), "RMK-"))
	assert.True(t, strings.HasPrefix(GenerateAuditID(), "AUDIT-"))
}

func TestGeneratedIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateQueryID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID(GenerateID()))
	assert.False(t, IsValidUUID("QRY-not-a-uuid"))
}
