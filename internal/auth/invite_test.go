package auth

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}$`)

	for i := 0; i < 100; i++ {
		code, err := GenerateInviteCode()
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
	}
}

func TestGenerateInviteCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateInviteCode()
		require.NoError(t, err)
		seen[code] = true
	}
	require.Greater(t, len(seen), 1)
}
