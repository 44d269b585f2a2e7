package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func extractBearerToken(c *fiber.Ctx) (string, error) {
	if v := strings.TrimSpace(c.Cookies("access_token")); v != "" {
		return v, nil
	}
	const prefix = "Bearer "
	auth := c.Get("Authorization")
	if strings.HasPrefix(auth, prefix) && len(auth) > len(prefix) {
		return strings.TrimSpace(auth[len(prefix):]), nil
	}
	return "", errors.New("Unauthorized - missing access token")
}

func validateTokenExpiry(claims jwt.MapClaims, leeway time.Duration) error {
	expRaw, ok := claims["exp"]
	if !ok {
		return errors.New("missing exp claim")
	}
	expFloat, ok := expRaw.(float64)
	if !ok {
		return errors.New("invalid exp claim")
	}
	exp := time.Unix(int64(expFloat), 0)
	if time.Now().After(exp.Add(leeway)) {
		return errors.New("token expired")
	}
	return nil
}

func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	raw, ok := claims["user_id"].(string)
	if !ok || raw == "" {
		return uuid.Nil, errors.New("missing user_id claim")
	}
	return uuid.Parse(raw)
}

// ensureUserActive rejects tokens of deactivated or deleted accounts.
func ensureUserActive(db *gorm.DB, userID uuid.UUID) error {
	var row struct {
		UserDeactivatedAt *time.Time `gorm:"column:user_deactivated_at"`
	}
	err := db.Table("users").
		Select("user_deactivated_at").
		Where("user_id = ?", userID).
		Take(&row).Error
	if err != nil {
		return err
	}
	if row.UserDeactivatedAt != nil {
		return errors.New("user deactivated")
	}
	return nil
}

func storeClaimsToLocals(c *fiber.Ctx, claims jwt.MapClaims) {
	if role, ok := claims["role"].(string); ok {
		c.Locals("userRole", role)
	}
	if orgID, ok := claims["org_id"].(string); ok && orgID != "" {
		c.Locals("org_id", orgID)
	}
	if programID, ok := claims["program_id"].(string); ok && programID != "" {
		c.Locals("program_id", programID)
	}
	if name, ok := claims["user_name"].(string); ok {
		c.Locals("user_name", name)
	}
}
