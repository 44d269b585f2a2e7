package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	"epanotes_backend/internals/features/curriculum/dto"
	"epanotes_backend/internals/features/curriculum/model"
	helper "epanotes_backend/internals/helpers"
)

type CurriculumController struct {
	DB *gorm.DB
}

func NewCurriculumController(db *gorm.DB) *CurriculumController {
	return &CurriculumController{DB: db}
}

/* ===================== EPAs ===================== */
// GET /api/curriculum/epas
func (ctrl *CurriculumController) ListEPAs(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	q := ctrl.DB.Where("epa_program_id = ?", programID)
	if c.Query("active") == "true" {
		q = q.Where("epa_is_active = TRUE")
	}

	var epas []model.EPAModel
	if err := q.Order("epa_code ASC").Find(&epas).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch EPAs")
	}

	titles, err := ctrl.categoryTitles(programID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch EPA categories")
	}

	out := make([]*dto.EPAResponse, 0, len(epas))
	for i := range epas {
		var title *string
		if epas[i].EPACategoryID != nil {
			if t, ok := titles[*epas[i].EPACategoryID]; ok {
				title = &t
			}
		}
		out = append(out, dto.NewEPAResponse(&epas[i], title))
	}
	return helper.Success(c, "EPAs retrieved", out)
}

// POST /api/curriculum/epas (admin)
func (ctrl *CurriculumController) CreateEPA(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	var req dto.CreateEPARequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	mdl := req.ToModel(programID)
	if err := ctrl.DB.Create(mdl).Error; err != nil {
		if strings.Contains(err.Error(), "uq_epas_program_code") {
			return helper.Error(c, fiber.StatusConflict, "An EPA with this code already exists in the program")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create EPA")
	}
	return helper.JsonCreated(c, "EPA created", dto.NewEPAResponse(mdl, nil))
}

// PUT/PATCH /api/curriculum/epas/:id (admin)
func (ctrl *CurriculumController) UpdateEPA(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}
	epaID, idErr := uuid.Parse(c.Params("id"))
	if idErr != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid EPA id")
	}

	var req dto.UpdateEPARequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var mdl model.EPAModel
	if err := ctrl.DB.Where("epa_id = ? AND epa_program_id = ?", epaID, programID).Take(&mdl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "EPA not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch EPA")
	}

	updates := map[string]interface{}{}
	if req.EPACategoryID != nil {
		updates["epa_category_id"] = *req.EPACategoryID
	}
	if req.EPATitle != nil {
		updates["epa_title"] = *req.EPATitle
	}
	if req.Description != nil {
		updates["epa_description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["epa_is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := ctrl.DB.Model(&mdl).Updates(updates).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to update EPA")
		}
	}
	return helper.Success(c, "EPA updated", dto.NewEPAResponse(&mdl, nil))
}

// DELETE /api/curriculum/epas/:id (admin)
// An EPA that already carries ratings is historical data and cannot be
// removed; deactivate it instead.
func (ctrl *CurriculumController) DeleteEPA(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}
	epaID, idErr := uuid.Parse(c.Params("id"))
	if idErr != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid EPA id")
	}

	var mdl model.EPAModel
	if err := ctrl.DB.Where("epa_id = ? AND epa_program_id = ?", epaID, programID).Take(&mdl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "EPA not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch EPA")
	}

	var refs int64
	if err := ctrl.DB.Table("assessment_epas").Where("assessment_epa_epa_id = ?", epaID).Count(&refs).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to check EPA references")
	}
	if refs > 0 {
		return helper.ErrorWithCode(c, fiber.StatusConflict, "epa_in_use",
			"EPA is referenced by existing assessments; deactivate it instead", fiber.Map{
				"assessment_epa_count": refs,
			})
	}

	tx := ctrl.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := tx.Where("sub_competency_epa_epa_id = ?", epaID).Delete(&model.SubCompetencyEPAModel{}).Error; err != nil {
		tx.Rollback()
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to delete EPA mappings")
	}
	if err := tx.Delete(&mdl).Error; err != nil {
		tx.Rollback()
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to delete EPA")
	}
	if err := tx.Commit().Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to delete EPA")
	}
	return helper.Success(c, "EPA deleted", fiber.Map{"epa_id": epaID})
}

/* ===================== EPA CATEGORIES ===================== */
// GET /api/curriculum/epa-categories
func (ctrl *CurriculumController) ListEPACategories(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	var categories []model.EPACategoryModel
	if err := ctrl.DB.Where("epa_category_program_id = ?", programID).
		Order("epa_category_title ASC").Find(&categories).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch EPA categories")
	}
	return helper.Success(c, "EPA categories retrieved", categories)
}

/* ===================== COMPETENCIES ===================== */
// GET /api/curriculum/competencies
// Returns the full core → sub hierarchy in code order.
func (ctrl *CurriculumController) ListCompetencies(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	var cores []model.CoreCompetencyModel
	if err := ctrl.DB.Where("core_competency_program_id = ?", programID).
		Order("core_competency_code ASC").Find(&cores).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch competencies")
	}
	var subs []model.SubCompetencyModel
	if err := ctrl.DB.Where("sub_competency_program_id = ?", programID).
		Order("sub_competency_code ASC").Find(&subs).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch sub-competencies")
	}

	subsByCore := make(map[uuid.UUID][]model.SubCompetencyModel, len(cores))
	for _, s := range subs {
		subsByCore[s.SubCompetencyCoreCompetencyID] = append(subsByCore[s.SubCompetencyCoreCompetencyID], s)
	}

	type coreWithSubs struct {
		model.CoreCompetencyModel
		SubCompetencies []model.SubCompetencyModel `json:"sub_competencies"`
	}
	out := make([]coreWithSubs, 0, len(cores))
	for _, core := range cores {
		out = append(out, coreWithSubs{
			CoreCompetencyModel: core,
			SubCompetencies:     subsByCore[core.CoreCompetencyID],
		})
	}
	return helper.Success(c, "Competencies retrieved", out)
}

// POST /api/curriculum/competencies (admin)
func (ctrl *CurriculumController) CreateCoreCompetency(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	var req dto.CreateCoreCompetencyRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	mdl := req.ToModel(programID)
	if err := ctrl.DB.Create(mdl).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create core competency")
	}
	return helper.JsonCreated(c, "Core competency created", mdl)
}

// POST /api/curriculum/sub-competencies (admin)
func (ctrl *CurriculumController) CreateSubCompetency(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	var req dto.CreateSubCompetencyRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var coreCount int64
	if err := ctrl.DB.Table("core_competencies").
		Where("core_competency_id = ? AND core_competency_program_id = ?", req.CoreCompetencyID, programID).
		Count(&coreCount).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to verify core competency")
	}
	if coreCount == 0 {
		return helper.Error(c, fiber.StatusNotFound, "Core competency not found")
	}

	mdl := req.ToModel(programID)
	if err := ctrl.DB.Create(mdl).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create sub-competency")
	}
	return helper.JsonCreated(c, "Sub-competency created", mdl)
}

/* ===================== EPA MAPPINGS ===================== */
// POST /api/curriculum/epa-mappings (admin)
// Idempotent: mapping the same pair twice is not an error.
func (ctrl *CurriculumController) CreateEPAMapping(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	var req dto.CreateEPAMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var subCount, epaCount int64
	if err := ctrl.DB.Table("sub_competencies").
		Where("sub_competency_id = ? AND sub_competency_program_id = ?", req.SubCompetencyID, programID).
		Count(&subCount).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to verify sub-competency")
	}
	if err := ctrl.DB.Table("epas").
		Where("epa_id = ? AND epa_program_id = ?", req.EPAID, programID).
		Count(&epaCount).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to verify EPA")
	}
	if subCount == 0 || epaCount == 0 {
		return helper.Error(c, fiber.StatusNotFound, "Sub-competency or EPA not found")
	}

	mdl := &model.SubCompetencyEPAModel{
		SubCompetencyEPASubCompetencyID: req.SubCompetencyID,
		SubCompetencyEPAEPAID:           req.EPAID,
	}
	if err := ctrl.DB.Create(mdl).Error; err != nil {
		if strings.Contains(err.Error(), "uq_sub_competency_epas_pair") {
			return helper.Success(c, "EPA mapping already exists", mdl)
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create EPA mapping")
	}
	return helper.JsonCreated(c, "EPA mapping created", mdl)
}

// DELETE /api/curriculum/epa-mappings/:id (admin)
func (ctrl *CurriculumController) DeleteEPAMapping(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}
	mappingID, idErr := uuid.Parse(c.Params("id"))
	if idErr != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid mapping id")
	}

	res := ctrl.DB.Where(`sub_competency_epa_id = ? AND sub_competency_epa_sub_competency_id IN (
		SELECT sub_competency_id FROM sub_competencies WHERE sub_competency_program_id = ?
	)`, mappingID, programID).Delete(&model.SubCompetencyEPAModel{})
	if res.Error != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to delete EPA mapping")
	}
	if res.RowsAffected == 0 {
		return helper.Error(c, fiber.StatusNotFound, "EPA mapping not found")
	}
	return helper.Success(c, "EPA mapping deleted", fiber.Map{"sub_competency_epa_id": mappingID})
}

/* ===================== internals ===================== */

func (ctrl *CurriculumController) resolveProgram(c *fiber.Ctx, actor helper.Actor) (uuid.UUID, error) {
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

func (ctrl *CurriculumController) categoryTitles(programID uuid.UUID) (map[uuid.UUID]string, error) {
	var categories []model.EPACategoryModel
	if err := ctrl.DB.Where("epa_category_program_id = ?", programID).Find(&categories).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(categories))
	for _, cat := range categories {
		out[cat.EPACategoryID] = cat.EPACategoryTitle
	}
	return out, nil
}
