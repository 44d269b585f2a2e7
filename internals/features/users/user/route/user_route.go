package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	userCtrl "epanotes_backend/internals/features/users/user/controller"
	authMw "epanotes_backend/internals/middlewares/auth"
)

func UserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := userCtrl.NewUserController(db)

	g := r.Group("/users")
	adminOnly := authMw.OnlyRoles(constants.RoleErrorAdmin("user management"), constants.AdminOnly...)

	// Cohorts are registered before /:id so the literal path wins.
	g.Get("/cohorts", ctrl.ListCohorts)
	g.Post("/cohorts", adminOnly, ctrl.CreateCohort)

	g.Get("/", ctrl.List)
	g.Post("/", adminOnly, ctrl.Create)
	g.Get("/:id", ctrl.GetByID)
	g.Put("/:id", adminOnly, ctrl.Update)
	g.Patch("/:id", adminOnly, ctrl.Update)
	g.Delete("/:id", adminOnly, ctrl.Deactivate)
}
