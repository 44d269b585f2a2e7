package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	curriculumCtrl "epanotes_backend/internals/features/curriculum/controller"
	authMw "epanotes_backend/internals/middlewares/auth"
)

func CurriculumRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := curriculumCtrl.NewCurriculumController(db)

	g := r.Group("/curriculum")
	adminOnly := authMw.OnlyRoles(constants.RoleErrorAdmin("curriculum management"), constants.AdminOnly...)

	// Reads are open to everyone in the program.
	g.Get("/epas", ctrl.ListEPAs)
	g.Get("/epa-categories", ctrl.ListEPACategories)
	g.Get("/competencies", ctrl.ListCompetencies)

	// Writes are admin territory.
	g.Post("/epas", adminOnly, ctrl.CreateEPA)
	g.Put("/epas/:id", adminOnly, ctrl.UpdateEPA)
	g.Patch("/epas/:id", adminOnly, ctrl.UpdateEPA)
	g.Delete("/epas/:id", adminOnly, ctrl.DeleteEPA)

	g.Post("/competencies", adminOnly, ctrl.CreateCoreCompetency)
	g.Post("/sub-competencies", adminOnly, ctrl.CreateSubCompetency)

	g.Post("/epa-mappings", adminOnly, ctrl.CreateEPAMapping)
	g.Delete("/epa-mappings/:id", adminOnly, ctrl.DeleteEPAMapping)
}
