package controller

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	"epanotes_backend/internals/features/analytics/service"
	helper "epanotes_backend/internals/helpers"
)

type AnalyticsController struct {
	DB     *gorm.DB
	Engine *service.AggregationEngine
}

func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{DB: db, Engine: service.NewAggregationEngine(db)}
}

/* ===================== PROGRAM PERFORMANCE ===================== */

// GetProgramPerformance serves the program dashboard. Leadership and admins
// report on their own program; system admins pick one with ?program_id=.
func (ac *AnalyticsController) GetProgramPerformance(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	programID, err := ac.resolveProgram(c, actor)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}

	filters := service.PerformanceFilters{Months: 6}
	if raw := c.Query("months"); raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil && n >= 1 && n <= 36 {
			filters.Months = n
		}
	}
	// Malformed UUID filters are ignored, same as the assessment list.
	if raw := c.Query("cohort"); raw != "" {
		if id, parseErr := uuid.Parse(raw); parseErr == nil {
			filters.CohortID = &id
		}
	}
	if raw := c.Query("trainee"); raw != "" {
		if id, parseErr := uuid.Parse(raw); parseErr == nil {
			filters.TraineeID = &id
		}
	}

	resp, err := ac.Engine.ProgramPerformance(programID, filters, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Program not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to build program performance report")
	}
	return helper.Success(c, "Program performance retrieved", resp)
}

/* ===================== COMPETENCY GRID ===================== */

// GetCompetencyGrid serves one trainee's milestone grid. Trainees may only
// request their own; everyone else is bounded by their program, and a trainee
// outside that boundary looks exactly like a missing one.
func (ac *AnalyticsController) GetCompetencyGrid(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	traineeID := actor.UserID
	if raw := c.Query("trainee_id"); raw != "" {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return helper.Error(c, fiber.StatusBadRequest, "trainee_id must be a valid UUID")
		}
		traineeID = id
	}
	if actor.Role == constants.RoleTrainee && traineeID != actor.UserID {
		return helper.Error(c, fiber.StatusNotFound, "Trainee not found")
	}

	var start, end *time.Time
	if raw := c.Query("start_date"); raw != "" {
		if t, ok := helper.ParseDateLenient(raw); ok {
			start = t
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if t, ok := helper.ParseDateLenient(raw); ok {
			end = t
		}
	}

	if err := ac.ensureTraineeVisible(actor, traineeID); err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Trainee not found")
	}

	resp, err := ac.Engine.CompetencyGrid(traineeID, start, end)
	if err != nil {
		if errors.Is(err, service.ErrTraineeNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Trainee not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to build competency grid")
	}
	return helper.Success(c, "Competency grid retrieved", resp)
}

/* ===================== internals ===================== */

func (ac *AnalyticsController) resolveProgram(c *fiber.Ctx, actor helper.Actor) (uuid.UUID, error) {
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

// ensureTraineeVisible masks cross-program trainees as not found.
func (ac *AnalyticsController) ensureTraineeVisible(actor helper.Actor, traineeID uuid.UUID) error {
	if actor.Role == constants.RoleSystemAdmin || traineeID == actor.UserID {
		return nil
	}
	if actor.ProgramID == nil {
		return gorm.ErrRecordNotFound
	}
	var n int64
	if err := ac.DB.Table("users").
		Where("user_id = ? AND user_role = 'trainee' AND user_program_id = ?", traineeID, *actor.ProgramID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
