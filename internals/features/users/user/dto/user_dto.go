package dto

import (
	"time"

	"github.com/google/uuid"

	"epanotes_backend/internals/features/users/user/model"
)

/* ===================== REQUESTS ===================== */

type CreateUserRequest struct {
	Email    string `json:"user_email" validate:"required,email"`
	Name     string `json:"user_name" validate:"required,min=3,max=100"`
	Password string `json:"user_password" validate:"required,min=8,max=72"`
	Role     string `json:"user_role" validate:"required,oneof=trainee faculty admin leadership system-admin"`

	CohortID   *uuid.UUID `json:"user_cohort_id" validate:"omitempty,uuid4"`
	Department *string    `json:"user_department" validate:"omitempty,max=100"`
	StartDate  *string    `json:"user_start_date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateUserRequest struct {
	Name       *string    `json:"user_name" validate:"omitempty,min=3,max=100"`
	Role       *string    `json:"user_role" validate:"omitempty,oneof=trainee faculty admin leadership system-admin"`
	CohortID   *uuid.UUID `json:"user_cohort_id" validate:"omitempty,uuid4"`
	Department *string    `json:"user_department" validate:"omitempty,max=100"`
}

type CreateCohortRequest struct {
	Name      string `json:"cohort_name" validate:"required,min=2,max=100"`
	StartDate string `json:"cohort_start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"cohort_end_date" validate:"required,datetime=2006-01-02"`
}

/* ===================== RESPONSES ===================== */

type UserResponse struct {
	UserID        uuid.UUID  `json:"user_id"`
	Email         string     `json:"user_email"`
	Name          string     `json:"user_name"`
	Role          string     `json:"user_role"`
	OrgID         *uuid.UUID `json:"user_org_id,omitempty"`
	ProgramID     *uuid.UUID `json:"user_program_id,omitempty"`
	CohortID      *uuid.UUID `json:"user_cohort_id,omitempty"`
	CohortName    *string    `json:"cohort_name,omitempty"`
	Department    *string    `json:"user_department,omitempty"`
	StartDate     *time.Time `json:"user_start_date,omitempty"`
	DeactivatedAt *time.Time `json:"user_deactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"user_created_at"`
}

func NewUserResponse(m *model.UserModel, cohortName *string) *UserResponse {
	return &UserResponse{
		UserID:        m.UserID,
		Email:         m.UserEmail,
		Name:          m.UserName,
		Role:          m.UserRole,
		OrgID:         m.UserOrgID,
		ProgramID:     m.UserProgramID,
		CohortID:      m.UserCohortID,
		CohortName:    cohortName,
		Department:    m.UserDepartment,
		StartDate:     m.UserStartDate,
		DeactivatedAt: m.UserDeactivatedAt,
		CreatedAt:     m.UserCreatedAt,
	}
}
