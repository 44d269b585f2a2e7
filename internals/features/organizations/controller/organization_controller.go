package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	"epanotes_backend/internals/features/organizations/dto"
	"epanotes_backend/internals/features/organizations/model"
	helper "epanotes_backend/internals/helpers"
)

type OrganizationController struct {
	DB *gorm.DB
}

func NewOrganizationController(db *gorm.DB) *OrganizationController {
	return &OrganizationController{DB: db}
}

/* ===================== ORGANIZATION ===================== */
// GET /api/organizations/current
func (ctrl *OrganizationController) GetCurrent(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	if actor.OrganizationID == nil {
		return helper.Error(c, fiber.StatusNotFound, "Organization not found")
	}

	var org model.OrganizationModel
	if err := ctrl.DB.Where("organization_id = ?", *actor.OrganizationID).Take(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Organization not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch organization")
	}
	return helper.Success(c, "Organization retrieved", org)
}

/* ===================== PROGRAMS ===================== */
// GET /api/organizations/programs
func (ctrl *OrganizationController) ListPrograms(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	q := ctrl.DB.Order("program_name ASC")
	if actor.Role != constants.RoleSystemAdmin {
		if actor.OrganizationID == nil {
			return helper.Error(c, fiber.StatusNotFound, "Organization not found")
		}
		q = q.Where("program_org_id = ?", *actor.OrganizationID)
	}

	var programs []model.ProgramModel
	if err := q.Find(&programs).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch programs")
	}
	return helper.Success(c, "Programs retrieved", programs)
}

// GET /api/organizations/programs/:id
func (ctrl *OrganizationController) GetProgram(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, idErr := uuid.Parse(c.Params("id"))
	if idErr != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid program id")
	}

	program, ferr := ctrl.findVisibleProgram(actor, programID)
	if ferr != nil {
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Program not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch program")
	}
	return helper.Success(c, "Program retrieved", program)
}

// PUT/PATCH /api/organizations/programs/:id (admin)
func (ctrl *OrganizationController) UpdateProgram(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, idErr := uuid.Parse(c.Params("id"))
	if idErr != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid program id")
	}

	var req dto.UpdateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	program, ferr := ctrl.findVisibleProgram(actor, programID)
	if ferr != nil {
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Program not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch program")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["program_name"] = *req.Name
	}
	if req.Abbreviation != nil {
		updates["program_abbreviation"] = *req.Abbreviation
	}
	if req.DirectorID != nil {
		updates["program_director_user_id"] = *req.DirectorID
	}
	if req.CoordinatorID != nil {
		updates["program_coordinator_user_id"] = *req.CoordinatorID
	}
	if req.TrainingSites != nil {
		updates["program_training_sites"] = req.TrainingSites
	}
	if req.Settings != nil {
		updates["program_settings"] = req.Settings
	}
	if len(updates) > 0 {
		if err := ctrl.DB.Model(program).Updates(updates).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to update program")
		}
	}
	return helper.Success(c, "Program updated", program)
}

/* ===================== internals ===================== */

func (ctrl *OrganizationController) findVisibleProgram(actor helper.Actor, programID uuid.UUID) (*model.ProgramModel, error) {
	q := ctrl.DB.Where("program_id = ?", programID)
	if actor.Role != constants.RoleSystemAdmin {
		if actor.OrganizationID == nil {
			return nil, gorm.ErrRecordNotFound
		}
		q = q.Where("program_org_id = ?", *actor.OrganizationID)
	}
	var program model.ProgramModel
	if err := q.Take(&program).Error; err != nil {
		return nil, err
	}
	return &program, nil
}
