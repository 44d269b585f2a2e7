package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	"epanotes_backend/internals/features/users/user/dto"
	"epanotes_backend/internals/features/users/user/model"
	helper "epanotes_backend/internals/helpers"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

/* ===================== LIST ===================== */
// GET /api/users
// Filters: role, cohort_id, active. Always bounded to the actor's program.
func (ctrl *UserController) List(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	q := ctrl.DB.Where("user_program_id = ?", programID)
	if role := c.Query("role"); role != "" {
		if !constants.IsValidRole(role) {
			return helper.Error(c, fiber.StatusBadRequest, "Unknown role filter")
		}
		q = q.Where("user_role = ?", role)
	}
	if id, perr := uuid.Parse(c.Query("cohort_id")); perr == nil {
		q = q.Where("user_cohort_id = ?", id)
	}
	if c.Query("active") != "false" {
		q = q.Where("user_deactivated_at IS NULL")
	}

	p := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := q.Session(&gorm.Session{}).Model(&model.UserModel{}).Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to count users")
	}

	var users []model.UserModel
	if err := q.Order("user_name ASC").Limit(p.Limit).Offset(p.Offset).Find(&users).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch users")
	}

	cohortNames, err := ctrl.cohortNames(programID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch cohorts")
	}

	out := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i], lookupCohort(cohortNames, users[i].UserCohortID)))
	}
	return helper.Success(c, "Users retrieved", fiber.Map{
		"users": out,
		"meta":  helper.BuildMeta(total, p),
	})
}

/* ===================== GET ===================== */
// GET /api/users/:id
func (ctrl *UserController) GetByID(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	userID, idErr := uuid.Parse(c.Params("id"))
	if idErr != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid user id")
	}

	mdl, ferr := ctrl.findVisible(actor, userID)
	if ferr != nil {
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "User not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch user")
	}

	var cohortName *string
	if mdl.UserCohortID != nil {
		var row struct {
			CohortName string `gorm:"column:cohort_name"`
		}
		if err := ctrl.DB.Table("cohorts").Select("cohort_name").
			Where("cohort_id = ?", *mdl.UserCohortID).Take(&row).Error; err == nil {
			cohortName = &row.CohortName
		}
	}
	return helper.Success(c, "User retrieved", dto.NewUserResponse(mdl, cohortName))
}

/* ===================== CREATE ===================== */
// POST /api/users (admin)
// A trainee without a cohort cannot be rolled up, so the pairing is enforced
// here rather than left to the dashboard to discover.
func (ctrl *UserController) Create(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	if req.Role == constants.RoleTrainee && req.CohortID == nil {
		return helper.Error(c, fiber.StatusBadRequest, "Trainees must be assigned to a cohort")
	}
	if req.CohortID != nil {
		var n int64
		if err := ctrl.DB.Table("cohorts").
			Where("cohort_id = ? AND cohort_program_id = ?", *req.CohortID, programID).
			Count(&n).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to verify cohort")
		}
		if n == 0 {
			return helper.Error(c, fiber.StatusNotFound, "Cohort not found")
		}
	}

	hashed, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if hashErr != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	mdl := &model.UserModel{
		UserEmail:      strings.ToLower(strings.TrimSpace(req.Email)),
		UserName:       req.Name,
		UserPassword:   string(hashed),
		UserRole:       req.Role,
		UserOrgID:      actor.OrganizationID,
		UserProgramID:  &programID,
		UserCohortID:   req.CohortID,
		UserDepartment: req.Department,
	}
	if req.StartDate != nil {
		if t, terr := helper.ParseDateStrict(*req.StartDate); terr == nil {
			mdl.UserStartDate = &t
		}
	}

	if err := ctrl.DB.Create(mdl).Error; err != nil {
		if strings.Contains(err.Error(), "user_email") {
			return helper.Error(c, fiber.StatusConflict, "A user with this email already exists")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create user")
	}
	return helper.JsonCreated(c, "User created", dto.NewUserResponse(mdl, nil))
}

/* ===================== UPDATE ===================== */
// PUT/PATCH /api/users/:id (admin)
func (ctrl *UserController) Update(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	userID, idErr := uuid.Parse(c.Params("id"))
	if idErr != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	mdl, ferr := ctrl.findVisible(actor, userID)
	if ferr != nil {
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "User not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch user")
	}

	role := mdl.UserRole
	if req.Role != nil {
		role = *req.Role
	}
	cohortID := mdl.UserCohortID
	if req.CohortID != nil {
		cohortID = req.CohortID
	}
	if role == constants.RoleTrainee && cohortID == nil {
		return helper.Error(c, fiber.StatusBadRequest, "Trainees must be assigned to a cohort")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["user_name"] = *req.Name
	}
	if req.Role != nil {
		updates["user_role"] = *req.Role
	}
	if req.CohortID != nil {
		updates["user_cohort_id"] = *req.CohortID
	}
	if req.Department != nil {
		updates["user_department"] = *req.Department
	}
	if len(updates) > 0 {
		if err := ctrl.DB.Model(mdl).Updates(updates).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to update user")
		}
	}
	return helper.Success(c, "User updated", dto.NewUserResponse(mdl, nil))
}

/* ===================== DEACTIVATE ===================== */
// DELETE /api/users/:id (admin)
// Soft-delete only: assessments keep their author and subject.
func (ctrl *UserController) Deactivate(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	userID, idErr := uuid.Parse(c.Params("id"))
	if idErr != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if userID == actor.UserID {
		return helper.Error(c, fiber.StatusBadRequest, "You cannot deactivate your own account")
	}

	mdl, ferr := ctrl.findVisible(actor, userID)
	if ferr != nil {
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "User not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch user")
	}

	now := time.Now().UTC()
	if err := ctrl.DB.Model(mdl).Update("user_deactivated_at", now).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to deactivate user")
	}
	return helper.Success(c, "User deactivated", fiber.Map{"user_id": userID, "user_deactivated_at": now})
}

/* ===================== COHORTS ===================== */
// GET /api/users/cohorts
func (ctrl *UserController) ListCohorts(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}

	var cohorts []model.CohortModel
	if err := ctrl.DB.Where("cohort_program_id = ?", programID).
		Order("cohort_start_date DESC").Find(&cohorts).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch cohorts")
	}
	return helper.Success(c, "Cohorts retrieved", cohorts)
}

// POST /api/users/cohorts (admin)
func (ctrl *UserController) CreateCohort(c *fiber.Ctx) error {
	actor, err := helper.GetActorFromLocals(c)
	if err != nil {
		return err
	}
	programID, perr := ctrl.resolveProgram(c, actor)
	if perr != nil {
		return helper.Error(c, fiber.StatusBadRequest, perr.Error())
	}
	if actor.OrganizationID == nil {
		return helper.Error(c, fiber.StatusBadRequest, "Actor has no organization assigned")
	}

	var req dto.CreateCohortRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	v := validator.New()
	if err := v.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	start, _ := helper.ParseDateStrict(req.StartDate)
	end, _ := helper.ParseDateStrict(req.EndDate)
	if end.Before(start) {
		return helper.Error(c, fiber.StatusBadRequest, "cohort_end_date must not be before cohort_start_date")
	}

	mdl := &model.CohortModel{
		CohortOrgID:     *actor.OrganizationID,
		CohortProgramID: programID,
		CohortName:      req.Name,
		CohortStartDate: start,
		CohortEndDate:   end,
	}
	if err := ctrl.DB.Create(mdl).Error; err != nil {
		if strings.Contains(err.Error(), "uq_cohorts_program_name") {
			return helper.Error(c, fiber.StatusConflict, "A cohort with this name already exists in the program")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create cohort")
	}
	return helper.JsonCreated(c, "Cohort created", mdl)
}

/* ===================== internals ===================== */

func (ctrl *UserController) resolveProgram(c *fiber.Ctx, actor helper.Actor) (uuid.UUID, error) {
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

// findVisible masks cross-program users as not found.
func (ctrl *UserController) findVisible(actor helper.Actor, userID uuid.UUID) (*model.UserModel, error) {
	q := ctrl.DB.Where("user_id = ?", userID)
	if actor.Role != constants.RoleSystemAdmin {
		if actor.ProgramID == nil {
			return nil, gorm.ErrRecordNotFound
		}
		q = q.Where("user_program_id = ?", *actor.ProgramID)
	}
	var mdl model.UserModel
	if err := q.Take(&mdl).Error; err != nil {
		return nil, err
	}
	return &mdl, nil
}

func (ctrl *UserController) cohortNames(programID uuid.UUID) (map[uuid.UUID]string, error) {
	var cohorts []model.CohortModel
	if err := ctrl.DB.Where("cohort_program_id = ?", programID).Find(&cohorts).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(cohorts))
	for _, c := range cohorts {
		out[c.CohortID] = c.CohortName
	}
	return out, nil
}

func lookupCohort(names map[uuid.UUID]string, id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	if name, ok := names[*id]; ok {
		return &name
	}
	return nil
}
