package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authCtrl "epanotes_backend/internals/features/users/auth/controller"
	"epanotes_backend/internals/middlewares"
)

// PublicAuthRoutes are mounted before the JWT middleware.
func PublicAuthRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := authCtrl.NewAuthController(db)

	g := r.Group("/auth")
	g.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
	g.Post("/login-google", middlewares.LoginRateLimiter(), ctrl.LoginGoogle)
	g.Post("/refresh", ctrl.Refresh)
}

// PrivateAuthRoutes sit behind the JWT middleware.
func PrivateAuthRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := authCtrl.NewAuthController(db)

	g := r.Group("/auth")
	g.Get("/me", ctrl.Me)
}
