package controller

import (
	"errors"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"epanotes_backend/internals/configs"
	"epanotes_backend/internals/features/users/auth/dto"
	authSvc "epanotes_backend/internals/features/users/auth/service"
	userDTO "epanotes_backend/internals/features/users/user/dto"
	userModel "epanotes_backend/internals/features/users/user/model"
	helper "epanotes_backend/internals/helpers"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

/* ===================== LOGIN ===================== */
// POST /auth/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var user userModel.UserModel
	err := ctrl.DB.Where("user_email = ?", strings.ToLower(strings.TrimSpace(req.Email))).Take(&user).Error
	if err != nil {
		// Wrong email and wrong password must be indistinguishable.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Login failed")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.UserPassword), []byte(req.Password)) != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if !user.IsActive() {
		return helper.Error(c, fiber.StatusUnauthorized, "Account is deactivated")
	}

	return ctrl.issueTokens(c, &user)
}

/* ===================== GOOGLE LOGIN ===================== */
// POST /auth/login-google
// The account must already exist; Google sign-in never provisions users.
func (ctrl *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	verifier := googleAuthIDTokenVerifier.Verifier{}
	if err := verifier.VerifyIDToken(req.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid Google ID token")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(req.IDToken)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to decode Google ID token")
	}

	var user userModel.UserModel
	err = ctrl.DB.Where("user_email = ?", strings.ToLower(claimSet.Email)).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusUnauthorized, "No account registered for this Google identity")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Login failed")
	}
	if !user.IsActive() {
		return helper.Error(c, fiber.StatusUnauthorized, "Account is deactivated")
	}

	return ctrl.issueTokens(c, &user)
}

/* ===================== REFRESH ===================== */
// POST /auth/refresh
func (ctrl *AuthController) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return helper.Error(c, fiber.StatusBadRequest, "refresh_token is required")
	}

	userID, err := authSvc.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	var user userModel.UserModel
	if err := ctrl.DB.Where("user_id = ?", userID).Take(&user).Error; err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}
	if !user.IsActive() {
		return helper.Error(c, fiber.StatusUnauthorized, "Account is deactivated")
	}

	return ctrl.issueTokens(c, &user)
}

/* ===================== ME ===================== */
// GET /api/auth/me
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	var user userModel.UserModel
	if err := ctrl.DB.Where("user_id = ?", actor.UserID).Take(&user).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "User not found")
	}

	var cohortName *string
	if user.UserCohortID != nil {
		var row struct {
			CohortName string `gorm:"column:cohort_name"`
		}
		if err := ctrl.DB.Table("cohorts").Select("cohort_name").
			Where("cohort_id = ?", *user.UserCohortID).Take(&row).Error; err == nil {
			cohortName = &row.CohortName
		}
	}
	return helper.Success(c, "Profile retrieved", userDTO.NewUserResponse(&user, cohortName))
}

/* ===================== internals ===================== */

func (ctrl *AuthController) issueTokens(c *fiber.Ctx, user *userModel.UserModel) error {
	now := time.Now().UTC()
	access, err := authSvc.GenerateAccessToken(user, now)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to sign access token")
	}
	refresh, err := authSvc.GenerateRefreshToken(user, now)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to sign refresh token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    access,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  now.Add(2 * time.Hour),
	})

	return helper.Success(c, "Login successful", dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         userDTO.NewUserResponse(user, nil),
	})
}
