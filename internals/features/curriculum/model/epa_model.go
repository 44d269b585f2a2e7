package model

import (
	"github.com/google/uuid"
)

type EPACategoryModel struct {
	EPACategoryID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:epa_category_id" json:"epa_category_id"`
	EPACategoryProgramID uuid.UUID `gorm:"type:uuid;not null;index;column:epa_category_program_id" json:"epa_category_program_id"`
	EPACategoryTitle     string    `gorm:"not null;column:epa_category_title" json:"epa_category_title"`
}

func (EPACategoryModel) TableName() string { return "epa_categories" }

// EPA is one entrustable professional activity, e.g. "EPA-EM-01".
type EPAModel struct {
	EPAID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:epa_id" json:"epa_id"`
	EPAProgramID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_epas_program_code;column:epa_program_id" json:"epa_program_id"`

	EPACategoryID *uuid.UUID `gorm:"type:uuid;index;column:epa_category_id" json:"epa_category_id,omitempty"`

	EPACode        string  `gorm:"not null;uniqueIndex:uq_epas_program_code;column:epa_code" json:"epa_code"`
	EPATitle       string  `gorm:"not null;column:epa_title" json:"epa_title"`
	EPADescription *string `gorm:"column:epa_description" json:"epa_description,omitempty"`
	EPAIsActive    bool    `gorm:"not null;default:true;column:epa_is_active" json:"epa_is_active"`
}

func (EPAModel) TableName() string { return "epas" }
