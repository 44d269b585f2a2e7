package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	assessmentCtrl "epanotes_backend/internals/features/assessments/controller"
	authMw "epanotes_backend/internals/middlewares/auth"
)

func AssessmentRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := assessmentCtrl.NewAssessmentController(db)
	mailbox := assessmentCtrl.NewMailboxController(db)

	g := r.Group("/assessments")

	// =====================
	// Mailbox (leadership read-tracking) — registered before /:id routes
	// =====================
	mb := g.Group("/mailbox",
		authMw.OnlyRoles(constants.RoleErrorLeadership("the mailbox"), constants.LeadershipAndAbove...))
	mb.Get("/", mailbox.Unread)
	mb.Get("/read", mailbox.Read)
	mb.Get("/count", mailbox.UnreadCount)

	// =====================
	// Assessments (CRUD)
	// =====================
	g.Get("/", ctrl.List)
	g.Post("/",
		authMw.OnlyRoles(constants.RoleErrorFaculty("assessment authoring"), constants.EvaluatorRoles...),
		ctrl.Create)
	g.Get("/:id", ctrl.GetByID)
	g.Put("/:id", ctrl.Update)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)

	g.Post("/:id/mark-read",
		authMw.OnlyRoles(constants.RoleErrorLeadership("the mailbox"), constants.LeadershipAndAbove...),
		mailbox.MarkRead)
}
