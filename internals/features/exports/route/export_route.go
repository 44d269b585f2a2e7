package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	exportCtrl "epanotes_backend/internals/features/exports/controller"
	authMw "epanotes_backend/internals/middlewares/auth"
)

func ExportRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := exportCtrl.NewExportController(db)

	g := r.Group("/export",
		authMw.OnlyRoles(constants.RoleErrorLeadership("exports"), constants.LeadershipAndAbove...))

	g.Get("/assessments", ctrl.ExportAssessments)
	g.Get("/competency-grid", ctrl.ExportCompetencyGrid)
}
