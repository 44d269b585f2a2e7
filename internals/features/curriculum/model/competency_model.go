package model

import (
	"github.com/google/uuid"
)

// CoreCompetency is the top level of the curriculum taxonomy, e.g. "PC: Patient Care".
type CoreCompetencyModel struct {
	CoreCompetencyID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:core_competency_id" json:"core_competency_id"`
	CoreCompetencyProgramID uuid.UUID `gorm:"type:uuid;not null;index;column:core_competency_program_id" json:"core_competency_program_id"`
	CoreCompetencyCode      string    `gorm:"not null;column:core_competency_code" json:"core_competency_code"`
	CoreCompetencyTitle     string    `gorm:"not null;column:core_competency_title" json:"core_competency_title"`
}

func (CoreCompetencyModel) TableName() string { return "core_competencies" }

// SubCompetency carries the five milestone-level narratives used for dashboard display.
type SubCompetencyModel struct {
	SubCompetencyID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:sub_competency_id" json:"sub_competency_id"`
	SubCompetencyProgramID        uuid.UUID `gorm:"type:uuid;not null;index;column:sub_competency_program_id" json:"sub_competency_program_id"`
	SubCompetencyCoreCompetencyID uuid.UUID `gorm:"type:uuid;not null;index;column:sub_competency_core_competency_id" json:"sub_competency_core_competency_id"`

	SubCompetencyCode  string `gorm:"not null;column:sub_competency_code" json:"sub_competency_code"`
	SubCompetencyTitle string `gorm:"not null;column:sub_competency_title" json:"sub_competency_title"`

	SubCompetencyMilestoneLevel1 string `gorm:"not null;column:sub_competency_milestone_level_1" json:"sub_competency_milestone_level_1"`
	SubCompetencyMilestoneLevel2 string `gorm:"not null;column:sub_competency_milestone_level_2" json:"sub_competency_milestone_level_2"`
	SubCompetencyMilestoneLevel3 string `gorm:"not null;column:sub_competency_milestone_level_3" json:"sub_competency_milestone_level_3"`
	SubCompetencyMilestoneLevel4 string `gorm:"not null;column:sub_competency_milestone_level_4" json:"sub_competency_milestone_level_4"`
	SubCompetencyMilestoneLevel5 string `gorm:"not null;column:sub_competency_milestone_level_5" json:"sub_competency_milestone_level_5"`
}

func (SubCompetencyModel) TableName() string { return "sub_competencies" }

// SubCompetencyEPA maps EPAs into sub-competencies (many-to-many).
type SubCompetencyEPAModel struct {
	SubCompetencyEPAID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:sub_competency_epa_id" json:"sub_competency_epa_id"`
	SubCompetencyEPASubCompetencyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_sub_competency_epas_pair;column:sub_competency_epa_sub_competency_id" json:"sub_competency_epa_sub_competency_id"`
	SubCompetencyEPAEPAID           uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_sub_competency_epas_pair;column:sub_competency_epa_epa_id" json:"sub_competency_epa_epa_id"`
}

func (SubCompetencyEPAModel) TableName() string { return "sub_competency_epas" }
