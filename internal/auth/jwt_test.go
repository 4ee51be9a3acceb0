package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu-chat-service/internal/models"
)

var testSecret = []byte("test-secret")

func TestGenerateAndValidateToken(t *testing.T) {
	user := models.User{ID: "s1", Name: "Sara", Role: "student"}

	token, err := GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	got, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestGenerateTokenEmptyID(t *testing.T) {
	_, err := GenerateToken(models.User{}, testSecret, time.Hour)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(models.User{ID: "s1"}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, []byte("other-secret"))
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken(models.User{ID: "s1"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", testSecret)
	assert.Error(t, err)
}
