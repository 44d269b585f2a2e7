package model

import (
	"time"

	"github.com/google/uuid"
)

type UserModel struct {
	UserID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:user_id" json:"user_id"`

	UserEmail    string `gorm:"uniqueIndex;not null;column:user_email" json:"user_email"`
	UserName     string `gorm:"not null;column:user_name" json:"user_name"`
	UserPassword string `gorm:"not null;column:user_password" json:"-"`

	// trainee | faculty | admin | leadership | system-admin
	UserRole string `gorm:"not null;default:trainee;column:user_role" json:"user_role"`

	// Nullable for system-admin only
	UserOrgID     *uuid.UUID `gorm:"type:uuid;index;column:user_org_id" json:"user_org_id,omitempty"`
	UserProgramID *uuid.UUID `gorm:"type:uuid;index;column:user_program_id" json:"user_program_id,omitempty"`

	// Required when role=trainee, enforced at the application layer
	UserCohortID *uuid.UUID `gorm:"type:uuid;index;column:user_cohort_id" json:"user_cohort_id,omitempty"`

	UserDepartment *string    `gorm:"column:user_department" json:"user_department,omitempty"`
	UserStartDate  *time.Time `gorm:"type:date;column:user_start_date" json:"user_start_date,omitempty"`

	// Null means active
	UserDeactivatedAt *time.Time `gorm:"column:user_deactivated_at" json:"user_deactivated_at,omitempty"`

	UserCreatedAt time.Time  `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt *time.Time `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at,omitempty"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) IsActive() bool { return u.UserDeactivatedAt == nil }
