package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	orgCtrl "epanotes_backend/internals/features/organizations/controller"
	authMw "epanotes_backend/internals/middlewares/auth"
)

func OrganizationRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := orgCtrl.NewOrganizationController(db)

	g := r.Group("/organizations")

	g.Get("/current", ctrl.GetCurrent)
	g.Get("/programs", ctrl.ListPrograms)
	g.Get("/programs/:id", ctrl.GetProgram)
	g.Put("/programs/:id",
		authMw.OnlyRoles(constants.RoleErrorAdmin("program settings"), constants.AdminOnly...),
		ctrl.UpdateProgram)
	g.Patch("/programs/:id",
		authMw.OnlyRoles(constants.RoleErrorAdmin("program settings"), constants.AdminOnly...),
		ctrl.UpdateProgram)
}
