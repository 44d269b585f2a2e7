package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	analyticsRoute "epanotes_backend/internals/features/analytics/route"
	assessmentRoute "epanotes_backend/internals/features/assessments/route"
	curriculumRoute "epanotes_backend/internals/features/curriculum/route"
	exportRoute "epanotes_backend/internals/features/exports/route"
	orgRoute "epanotes_backend/internals/features/organizations/route"
	authRoute "epanotes_backend/internals/features/users/auth/route"
	userRoute "epanotes_backend/internals/features/users/user/route"
	authMw "epanotes_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	BaseRoutes(app)

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up public auth routes...")
	authRoute.PublicAuthRoutes(app, db)

	// ===================== PRIVATE /api =====================
	log.Println("[INFO] Setting up /api group...")
	api := app.Group("/api", authMw.AuthMiddleware(db))

	authRoute.PrivateAuthRoutes(api, db)
	orgRoute.OrganizationRoutes(api, db)
	userRoute.UserRoutes(api, db)
	curriculumRoute.CurriculumRoutes(api, db)
	assessmentRoute.AssessmentRoutes(api, db)
	analyticsRoute.AnalyticsRoutes(api, db)
	exportRoute.ExportRoutes(api, db)
}
