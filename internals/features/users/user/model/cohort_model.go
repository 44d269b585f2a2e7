package model

import (
	"time"

	"github.com/google/uuid"
)

// Cohort groups trainees of a program by training class, e.g. "Class of 2027".
type CohortModel struct {
	CohortID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:cohort_id" json:"cohort_id"`
	CohortOrgID     uuid.UUID `gorm:"type:uuid;not null;index;column:cohort_org_id" json:"cohort_org_id"`
	CohortProgramID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_cohorts_program_name;column:cohort_program_id" json:"cohort_program_id"`

	CohortName      string    `gorm:"not null;uniqueIndex:uq_cohorts_program_name;column:cohort_name" json:"cohort_name"`
	CohortStartDate time.Time `gorm:"type:date;not null;column:cohort_start_date" json:"cohort_start_date"`
	CohortEndDate   time.Time `gorm:"type:date;not null;column:cohort_end_date" json:"cohort_end_date"`
}

func (CohortModel) TableName() string { return "cohorts" }
