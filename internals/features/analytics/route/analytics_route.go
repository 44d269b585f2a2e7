package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	analyticsCtrl "epanotes_backend/internals/features/analytics/controller"
	authMw "epanotes_backend/internals/middlewares/auth"
)

func AnalyticsRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := analyticsCtrl.NewAnalyticsController(db)

	g := r.Group("/analytics")

	g.Get("/program-performance",
		authMw.OnlyRoles(constants.RoleErrorLeadership("program analytics"), constants.LeadershipAndAbove...),
		ctrl.GetProgramPerformance)

	// Competency grid is open to all roles; per-trainee visibility is
	// enforced inside the handler.
	g.Get("/competency-grid", ctrl.GetCompetencyGrid)
}
