package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"epanotes_backend/internals/features/assessments/model"
	"epanotes_backend/internals/features/assessments/service"
	helper "epanotes_backend/internals/helpers"
)

type MailboxController struct {
	DB      *gorm.DB
	Mailbox *service.MailboxService
}

func NewMailboxController(db *gorm.DB) *MailboxController {
	return &MailboxController{DB: db, Mailbox: service.NewMailboxService(db)}
}

/* ===================== UNREAD ===================== */
// GET /api/assessments/mailbox
func (ctrl *MailboxController) Unread(c *fiber.Ctx) error {
	return ctrl.listWith(c, ctrl.Mailbox.Unread)
}

/* ===================== READ ===================== */
// GET /api/assessments/mailbox/read
func (ctrl *MailboxController) Read(c *fiber.Ctx) error {
	return ctrl.listWith(c, ctrl.Mailbox.Read)
}

/* ===================== COUNT ===================== */
// GET /api/assessments/mailbox/count
func (ctrl *MailboxController) UnreadCount(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	total, err := ctrl.Mailbox.UnreadCount(actor)
	if err != nil {
		if errors.Is(err, service.ErrMailboxForbidden) {
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "OK", fiber.Map{"unread_count": total})
}

/* ===================== MARK READ ===================== */
// POST /api/assessments/:id/mark-read — idempotent.
func (ctrl *MailboxController) MarkRead(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid assessment id")
	}

	if err := ctrl.Mailbox.MarkRead(actor, id); err != nil {
		switch {
		case errors.Is(err, service.ErrMailboxForbidden):
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Assessment not found")
		default:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}
	return helper.Success(c, "Marked as read", nil)
}

/* ===================== internals ===================== */

func (ctrl *MailboxController) listWith(
	c *fiber.Ctx,
	fetch func(helper.Actor, helper.Paging) ([]model.AssessmentModel, int64, error),
) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	p := helper.ResolvePaging(c, 20, 100)

	rows, total, err := fetch(actor, p)
	if err != nil {
		if errors.Is(err, service.ErrMailboxForbidden) {
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	// Reuse the assessment response shape, with names resolved.
	ac := AssessmentController{DB: ctrl.DB}
	resps, err := ac.decorate(rows)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(helper.BuildListEnvelope(c, total, p, resps))
}
