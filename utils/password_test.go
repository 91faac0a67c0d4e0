package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
	assert.False(t, CheckPassword("", "correct horse battery"))
}

func TestHashPasswordRejectsOversizedInput(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", maxPasswordBytes+1))
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("a", maxPasswordBytes))
	assert.NoError(t, err)
}
