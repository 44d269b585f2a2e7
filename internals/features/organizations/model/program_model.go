package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type ProgramModel struct {
	ProgramID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:program_id" json:"program_id"`
	ProgramOrgID uuid.UUID `gorm:"type:uuid;not null;index;column:program_org_id" json:"program_org_id"`

	ProgramName         string  `gorm:"not null;column:program_name" json:"program_name"`
	ProgramAbbreviation *string `gorm:"column:program_abbreviation" json:"program_abbreviation,omitempty"`
	ProgramSpecialty    string  `gorm:"not null;column:program_specialty" json:"program_specialty"`
	ProgramAcgmeID      *string `gorm:"column:program_acgme_id" json:"program_acgme_id,omitempty"`

	ProgramDirectorUserID    *uuid.UUID `gorm:"type:uuid;column:program_director_user_id" json:"program_director_user_id,omitempty"`
	ProgramCoordinatorUserID *uuid.UUID `gorm:"type:uuid;column:program_coordinator_user_id" json:"program_coordinator_user_id,omitempty"`

	// Clinical sites where shifts may take place
	ProgramTrainingSites pq.StringArray `gorm:"type:text[];column:program_training_sites" json:"program_training_sites,omitempty"`

	// Per-program dashboard defaults (e.g. default trend window in months)
	ProgramSettings datatypes.JSONMap `gorm:"column:program_settings" json:"program_settings,omitempty"`

	ProgramCreatedAt time.Time `gorm:"column:program_created_at;autoCreateTime" json:"program_created_at"`
}

func (ProgramModel) TableName() string { return "programs" }
