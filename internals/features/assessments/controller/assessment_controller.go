package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"epanotes_backend/internals/features/assessments/dto"
	"epanotes_backend/internals/features/assessments/model"
	"epanotes_backend/internals/features/assessments/service"
	helper "epanotes_backend/internals/helpers"
)

type AssessmentController struct {
	DB *gorm.DB
}

func NewAssessmentController(db *gorm.DB) *AssessmentController {
	return &AssessmentController{DB: db}
}

/* ===================== LIST ===================== */
// GET /api/assessments
// Filters: trainee_id, evaluator_id, epa_id, start_date, end_date.
// Malformed filter values are dropped, not rejected; the strict counterpart
// lives in the export endpoints.
func (ctrl *AssessmentController) List(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	filters := service.ScopeFilters{}
	if id, err := uuid.Parse(c.Query("trainee_id")); err == nil {
		filters.TraineeID = &id
	}
	if id, err := uuid.Parse(c.Query("evaluator_id")); err == nil {
		filters.EvaluatorID = &id
	}
	if id, err := uuid.Parse(c.Query("epa_id")); err == nil {
		filters.EPAID = &id
	}
	if t, ok := helper.ParseDateLenient(c.Query("start_date")); ok {
		filters.StartDate = t
	}
	if t, ok := helper.ParseDateLenient(c.Query("end_date")); ok {
		filters.EndDate = t
	}

	p := helper.ResolvePaging(c, 20, 100)

	scope := service.ScopedQuery(ctrl.DB, actor, filters)

	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.AssessmentModel
	if err := scope.Session(&gorm.Session{}).
		Preload("AssessmentEPAs").
		Order("assessment_created_at DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	resps, err := ctrl.decorate(rows)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "OK", fiber.Map{
		"results":    resps,
		"pagination": helper.BuildMeta(total, p),
	})
}

/* ===================== DETAIL ===================== */
// GET /api/assessments/:id
// A record outside the actor's scope is indistinguishable from a missing one.
func (ctrl *AssessmentController) GetByID(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid assessment id")
	}

	a, view, err := ctrl.loadWithView(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "Assessment not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if !service.Allows(actor, view) {
		return fiber.NewError(fiber.StatusNotFound, "Assessment not found")
	}

	resps, err := ctrl.decorate([]model.AssessmentModel{*a})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "OK", resps[0])
}

/* ===================== CREATE ===================== */
// POST /api/assessments
// The assessment and all of its EPA rows are written in one transaction.
func (ctrl *AssessmentController) Create(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	var req dto.CreateAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload")
	}

	v := validator.New()
	if err := v.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	shiftDate, err := helper.ParseDateStrict(req.ShiftDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "shift_date must be YYYY-MM-DD")
	}

	// Duplicate EPA within one encounter is a payload error, not a DB surprise.
	seen := make(map[uuid.UUID]struct{}, len(req.AssessmentEPAs))
	for _, e := range req.AssessmentEPAs {
		if _, dup := seen[e.EPAID]; dup {
			return fiber.NewError(fiber.StatusBadRequest, "Duplicate EPA in assessment payload")
		}
		seen[e.EPAID] = struct{}{}
	}

	// Trainee must exist, be a trainee, and (for program-bound evaluators)
	// belong to the actor's program.
	var trainee struct {
		UserRole      string     `gorm:"column:user_role"`
		UserProgramID *uuid.UUID `gorm:"column:user_program_id"`
	}
	if err := ctrl.DB.Table("users").
		Select("user_role, user_program_id").
		Where("user_id = ? AND user_deactivated_at IS NULL", req.TraineeID).
		Take(&trainee).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "Trainee not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if trainee.UserRole != "trainee" {
		return fiber.NewError(fiber.StatusBadRequest, "Assessments can only be created for trainees")
	}
	if actor.ProgramID != nil && (trainee.UserProgramID == nil || *trainee.UserProgramID != *actor.ProgramID) {
		return fiber.NewError(fiber.StatusBadRequest, "Trainee is not in your program")
	}

	a := req.ToModel(actor.UserID, shiftDate)

	// ===== TRANSACTION START =====
	tx := ctrl.DB.Begin()
	if tx.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, tx.Error.Error())
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.Create(&a).Error; err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create assessment")
	}

	for _, e := range req.AssessmentEPAs {
		row := e.ToModel(a.AssessmentID)
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusBadRequest, "Failed to create assessment EPA (unknown epa_id?)")
		}
		a.AssessmentEPAs = append(a.AssessmentEPAs, row)
	}

	if err := tx.Commit().Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	// ===== TRANSACTION END =====

	resps, err := ctrl.decorate([]model.AssessmentModel{a})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "Assessment created", resps[0])
}

/* ===================== UPDATE (partial) ===================== */
// PATCH /api/assessments/:id
func (ctrl *AssessmentController) Update(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid assessment id")
	}

	var req dto.UpdateAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload")
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	a, view, err := ctrl.loadWithView(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "Assessment not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !service.Allows(actor, view) {
		return fiber.NewError(fiber.StatusNotFound, "Assessment not found")
	}

	if lcErr := service.CanModify(actor, a, time.Now()); lcErr != nil {
		return lifecycleResponse(c, lcErr)
	}

	updates := map[string]any{}
	if req.ShiftDate != nil {
		t, err := helper.ParseDateStrict(*req.ShiftDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "shift_date must be YYYY-MM-DD")
		}
		updates["assessment_shift_date"] = t
	}
	if req.Location != nil {
		updates["assessment_location"] = *req.Location
	}
	if req.Status != nil {
		// Monotonic: a submitted assessment never returns to draft.
		if a.AssessmentStatus == model.StatusSubmitted && *req.Status == model.StatusDraft {
			return fiber.NewError(fiber.StatusBadRequest, "A submitted assessment cannot return to draft")
		}
		updates["assessment_status"] = *req.Status
	}
	if req.Feedback != nil {
		updates["assessment_feedback"] = *req.Feedback
	}
	if req.PrivateComments != nil {
		updates["assessment_private_comments"] = *req.PrivateComments
	}

	if len(updates) > 0 {
		if err := ctrl.DB.Model(&model.AssessmentModel{}).
			Where("assessment_id = ?", id).
			Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	a, _, err = ctrl.loadWithView(id)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	resps, err := ctrl.decorate([]model.AssessmentModel{*a})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "Assessment updated", resps[0])
}

/* ===================== DELETE ===================== */
// DELETE /api/assessments/:id — cascades to the EPA rows.
func (ctrl *AssessmentController) Delete(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid assessment id")
	}

	a, view, err := ctrl.loadWithView(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "Assessment not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !service.Allows(actor, view) {
		return fiber.NewError(fiber.StatusNotFound, "Assessment not found")
	}

	if lcErr := service.CanModify(actor, a, time.Now()); lcErr != nil {
		return lifecycleResponse(c, lcErr)
	}

	// ===== TRANSACTION START =====
	tx := ctrl.DB.Begin()
	if tx.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, tx.Error.Error())
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.Where("assessment_epa_assessment_id = ?", id).
		Delete(&model.AssessmentEPAModel{}).Error; err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if err := tx.Where("assessment_acknowledgement_assessment_id = ?", id).
		Delete(&model.AssessmentAcknowledgementModel{}).Error; err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if err := tx.Where("assessment_id = ?", id).
		Delete(&model.AssessmentModel{}).Error; err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := tx.Commit().Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	// ===== TRANSACTION END =====

	return helper.Success(c, "Assessment deleted", nil)
}

/* ===================== internals ===================== */

func lifecycleResponse(c *fiber.Ctx, lcErr *service.LifecycleError) error {
	extra := fiber.Map{}
	if lcErr.Code == service.LifecycleTooOld {
		extra["days_old"] = lcErr.DaysOld
		extra["max_age_days"] = lcErr.MaxAgeDays
	}
	return helper.ErrorWithCode(c, fiber.StatusForbidden, lcErr.Code, lcErr.Error(), extra)
}

func (ctrl *AssessmentController) loadWithView(id uuid.UUID) (*model.AssessmentModel, service.AssessmentView, error) {
	var a model.AssessmentModel
	if err := ctrl.DB.Preload("AssessmentEPAs").
		Where("assessment_id = ?", id).
		Take(&a).Error; err != nil {
		return nil, service.AssessmentView{}, err
	}

	var trainee struct {
		UserProgramID *uuid.UUID `gorm:"column:user_program_id"`
	}
	if err := ctrl.DB.Table("users").
		Select("user_program_id").
		Where("user_id = ?", a.AssessmentTraineeID).
		Take(&trainee).Error; err != nil && err != gorm.ErrRecordNotFound {
		return nil, service.AssessmentView{}, err
	}

	return &a, service.AssessmentView{
		TraineeID:        a.AssessmentTraineeID,
		EvaluatorID:      a.AssessmentEvaluatorID,
		TraineeProgramID: trainee.UserProgramID,
		Status:           a.AssessmentStatus,
	}, nil
}

// decorate resolves user names and EPA code/title for response building.
func (ctrl *AssessmentController) decorate(rows []model.AssessmentModel) ([]dto.AssessmentResponse, error) {
	userIDs := make([]uuid.UUID, 0, len(rows)*2)
	epaIDs := make([]uuid.UUID, 0)
	for _, a := range rows {
		userIDs = append(userIDs, a.AssessmentTraineeID, a.AssessmentEvaluatorID)
		for _, e := range a.AssessmentEPAs {
			epaIDs = append(epaIDs, e.AssessmentEPAEPAID)
		}
	}

	names := make(map[uuid.UUID]string, len(userIDs))
	if len(userIDs) > 0 {
		var users []struct {
			UserID   uuid.UUID `gorm:"column:user_id"`
			UserName string    `gorm:"column:user_name"`
		}
		if err := ctrl.DB.Table("users").
			Select("user_id, user_name").
			Where("user_id IN ?", userIDs).
			Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.UserID] = u.UserName
		}
	}

	epaMeta := make(map[uuid.UUID][2]string, len(epaIDs))
	if len(epaIDs) > 0 {
		var epas []struct {
			EPAID    uuid.UUID `gorm:"column:epa_id"`
			EPACode  string    `gorm:"column:epa_code"`
			EPATitle string    `gorm:"column:epa_title"`
		}
		if err := ctrl.DB.Table("epas").
			Select("epa_id, epa_code, epa_title").
			Where("epa_id IN ?", epaIDs).
			Find(&epas).Error; err != nil {
			return nil, err
		}
		for _, e := range epas {
			epaMeta[e.EPAID] = [2]string{e.EPACode, e.EPATitle}
		}
	}

	resps := make([]dto.AssessmentResponse, 0, len(rows))
	for _, a := range rows {
		resps = append(resps, dto.NewAssessmentResponse(a, names, epaMeta))
	}
	return resps, nil
}
