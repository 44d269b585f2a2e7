package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"epanotes_backend/internals/configs"
	"epanotes_backend/internals/features/users/user/model"
)

const (
	accessTTL  = 2 * time.Hour
	refreshTTL = 7 * 24 * time.Hour
)

// GenerateAccessToken signs the claims the auth middleware reads back into
// request locals. org_id and program_id are empty strings for unassigned
// users, not omitted, so clients can rely on the shape.
func GenerateAccessToken(user *model.UserModel, now time.Time) (string, error) {
	if configs.JWTSecret == "" {
		return "", errors.New("JWT secret is not configured")
	}

	orgID, programID := "", ""
	if user.UserOrgID != nil {
		orgID = user.UserOrgID.String()
	}
	if user.UserProgramID != nil {
		programID = user.UserProgramID.String()
	}

	claims := jwt.MapClaims{
		"typ":        "access",
		"sub":        user.UserID.String(),
		"user_id":    user.UserID.String(),
		"user_name":  user.UserName,
		"role":       user.UserRole,
		"org_id":     orgID,
		"program_id": programID,
		"iat":        now.Unix(),
		"exp":        now.Add(accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.JWTSecret))
}

func GenerateRefreshToken(user *model.UserModel, now time.Time) (string, error) {
	if configs.JWTRefreshSecret == "" {
		return "", errors.New("JWT refresh secret is not configured")
	}

	claims := jwt.MapClaims{
		"typ":     "refresh",
		"sub":     user.UserID.String(),
		"user_id": user.UserID.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(refreshTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.JWTRefreshSecret))
}

// ParseRefreshToken returns the user id carried by a valid refresh token.
func ParseRefreshToken(raw string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(configs.JWTRefreshSecret), nil
	})
	if err != nil {
		return "", err
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return "", errors.New("not a refresh token")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", errors.New("missing user_id claim")
	}
	return userID, nil
}
