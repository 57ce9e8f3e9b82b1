package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grumini-backend/internal/auth"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, auth.CheckPasswordHash("hunter2", hash))
	assert.False(t, auth.CheckPasswordHash("hunter3", hash))
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	assert.False(t, auth.CheckPasswordHash("hunter2", "not-a-bcrypt-hash"))
}
