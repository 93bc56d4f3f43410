package common

import (
	"github.com/google/uuid"
)

// NewSessionID generates a unique build session ID with the "session_" prefix
func NewSessionID() string {
	return "session_" + uuid.New().String()
}
