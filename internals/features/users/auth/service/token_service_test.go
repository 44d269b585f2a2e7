package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epanotes_backend/internals/configs"
	"epanotes_backend/internals/features/users/user/model"
)

func withTestSecrets(t *testing.T) {
	t.Helper()
	prevAccess, prevRefresh := configs.JWTSecret, configs.JWTRefreshSecret
	configs.JWTSecret = "test-access-secret"
	configs.JWTRefreshSecret = "test-refresh-secret"
	t.Cleanup(func() {
		configs.JWTSecret = prevAccess
		configs.JWTRefreshSecret = prevRefresh
	})
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	withTestSecrets(t)

	programID := uuid.New()
	user := &model.UserModel{
		UserID:        uuid.New(),
		UserName:      "Dr. Amara Osei",
		UserRole:      "leadership",
		UserProgramID: &programID,
	}
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	raw, err := GenerateAccessToken(user, now)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(configs.JWTSecret), nil
	})
	require.NoError(t, err)

	assert.Equal(t, user.UserID.String(), claims["user_id"])
	assert.Equal(t, "leadership", claims["role"])
	assert.Equal(t, programID.String(), claims["program_id"])
	assert.Equal(t, "", claims["org_id"], "unassigned ids are empty strings, not missing")
	assert.Equal(t, "access", claims["typ"])
	assert.Equal(t, float64(now.Add(accessTTL).Unix()), claims["exp"])
}

func TestGenerateAccessToken_RequiresSecret(t *testing.T) {
	withTestSecrets(t)
	configs.JWTSecret = ""

	_, err := GenerateAccessToken(&model.UserModel{UserID: uuid.New()}, time.Now())
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	withTestSecrets(t)

	user := &model.UserModel{UserID: uuid.New(), UserRole: "faculty"}
	raw, err := GenerateRefreshToken(user, time.Now().UTC())
	require.NoError(t, err)

	userID, err := ParseRefreshToken(raw)
	require.NoError(t, err)
	assert.Equal(t, user.UserID.String(), userID)
}

func TestParseRefreshToken_RejectsAccessTokens(t *testing.T) {
	withTestSecrets(t)
	// Sign an access-typed token with the refresh secret; typ must still fail.
	configs.JWTSecret = configs.JWTRefreshSecret

	user := &model.UserModel{UserID: uuid.New(), UserRole: "faculty"}
	raw, err := GenerateAccessToken(user, time.Now().UTC())
	require.NoError(t, err)

	_, err = ParseRefreshToken(raw)
	assert.Error(t, err)
}
