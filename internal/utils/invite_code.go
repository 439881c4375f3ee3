package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateInviteCode generates a random invite code in the format XXXX-XXXX-XXXX
func GenerateInviteCode() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}

	raw := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return fmt.Sprintf("%s-%s-%s", raw[0:4], raw[4:8], raw[8:12]), nil
}
