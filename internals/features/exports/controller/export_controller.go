package controller

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	"epanotes_backend/internals/features/exports/service"
	helper "epanotes_backend/internals/helpers"
)

type ExportController struct {
	DB        *gorm.DB
	Assembler *service.ReportAssembler
}

func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{DB: db, Assembler: service.NewReportAssembler(db)}
}

// ExportAssessments streams the raw assessment log as CSV.
func (ec *ExportController) ExportAssessments(c *fiber.Ctx) error {
	filters, err := ec.parseFilters(c)
	if err != nil {
		return err // already a rendered response
	}

	rows, loadErr := ec.Assembler.AssessmentRows(*filters)
	if loadErr != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to assemble assessment export")
	}
	return sendCSV(c, "assessments", filters.StartDate, filters.EndDate, rows)
}

// ExportCompetencyGrid streams the per-trainee milestone grid as CSV.
func (ec *ExportController) ExportCompetencyGrid(c *fiber.Ctx) error {
	filters, err := ec.parseFilters(c)
	if err != nil {
		return err
	}

	rows, loadErr := ec.Assembler.CompetencyGridRows(*filters)
	if loadErr != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to assemble competency grid export")
	}
	return sendCSV(c, "competency-grid", filters.StartDate, filters.EndDate, rows)
}

/* ===================== internals ===================== */

// parseFilters validates export parameters. Unlike the assessment list, dates
// here are rejected when malformed: a silently narrowed export is worse than
// a failed one.
func (ec *ExportController) parseFilters(c *fiber.Ctx) (*service.ExportFilters, error) {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return nil, helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	programID, perr := ec.resolveProgram(c, actor)
	if perr != nil {
		return nil, helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	rawStart := c.Query("start_date")
	rawEnd := c.Query("end_date")
	if rawStart == "" || rawEnd == "" {
		return nil, helper.ErrorWithCode(c, fiber.StatusBadRequest, "missing_date_range",
			"start_date and end_date are required", nil)
	}
	start, serr := helper.ParseDateStrict(rawStart)
	if serr != nil {
		return nil, helper.ErrorWithCode(c, fiber.StatusBadRequest, "invalid_date",
			"start_date must be formatted YYYY-MM-DD", nil)
	}
	end, eerr := helper.ParseDateStrict(rawEnd)
	if eerr != nil {
		return nil, helper.ErrorWithCode(c, fiber.StatusBadRequest, "invalid_date",
			"end_date must be formatted YYYY-MM-DD", nil)
	}
	if end.Before(start) {
		return nil, helper.ErrorWithCode(c, fiber.StatusBadRequest, "invalid_date_range",
			"end_date must not be before start_date", nil)
	}

	filters := &service.ExportFilters{ProgramID: programID, StartDate: start, EndDate: end}
	if raw := c.Query("cohort_id"); raw != "" {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return nil, helper.Error(c, fiber.StatusBadRequest, "cohort_id must be a valid UUID")
		}
		filters.CohortID = &id
	}
	if raw := c.Query("trainee_id"); raw != "" {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return nil, helper.Error(c, fiber.StatusBadRequest, "trainee_id must be a valid UUID")
		}
		filters.TraineeID = &id
	}
	return filters, nil
}

func (ec *ExportController) resolveProgram(c *fiber.Ctx, actor helper.Actor) (uuid.UUID, error) {
	if actor.Role == constants.RoleSystemAdmin {
		raw := c.Query("program_id")
		if raw == "" {
			return uuid.Nil, errors.New("program_id is required for system admins")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, errors.New("program_id must be a valid UUID")
		}
		return id, nil
	}
	if actor.ProgramID == nil {
		return uuid.Nil, errors.New("actor has no program assigned")
	}
	return *actor.ProgramID, nil
}

func sendCSV(c *fiber.Ctx, name string, start, end time.Time, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to write CSV")
	}

	filename := fmt.Sprintf("%s_%s_%s.csv", name,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}
