package dto

import (
	"github.com/google/uuid"

	"epanotes_backend/internals/features/curriculum/model"
)

/* ===================== EPA ===================== */

type CreateEPARequest struct {
	EPACategoryID *uuid.UUID `json:"epa_category_id" validate:"omitempty,uuid4"`
	EPACode       string     `json:"epa_code" validate:"required,min=2,max=32"`
	EPATitle      string     `json:"epa_title" validate:"required,min=3,max=255"`
	Description   *string    `json:"epa_description" validate:"omitempty,max=2000"`
}

type UpdateEPARequest struct {
	EPACategoryID *uuid.UUID `json:"epa_category_id" validate:"omitempty,uuid4"`
	EPATitle      *string    `json:"epa_title" validate:"omitempty,min=3,max=255"`
	Description   *string    `json:"epa_description" validate:"omitempty,max=2000"`
	IsActive      *bool      `json:"epa_is_active"`
}

func (r *CreateEPARequest) ToModel(programID uuid.UUID) *model.EPAModel {
	return &model.EPAModel{
		EPAProgramID:   programID,
		EPACategoryID:  r.EPACategoryID,
		EPACode:        r.EPACode,
		EPATitle:       r.EPATitle,
		EPADescription: r.Description,
		EPAIsActive:    true,
	}
}

type EPAResponse struct {
	EPAID         uuid.UUID  `json:"epa_id"`
	CategoryID    *uuid.UUID `json:"epa_category_id,omitempty"`
	CategoryTitle *string    `json:"epa_category_title,omitempty"`
	Code          string     `json:"epa_code"`
	Title         string     `json:"epa_title"`
	Description   *string    `json:"epa_description,omitempty"`
	IsActive      bool       `json:"epa_is_active"`
}

func NewEPAResponse(m *model.EPAModel, categoryTitle *string) *EPAResponse {
	return &EPAResponse{
		EPAID:         m.EPAID,
		CategoryID:    m.EPACategoryID,
		CategoryTitle: categoryTitle,
		Code:          m.EPACode,
		Title:         m.EPATitle,
		Description:   m.EPADescription,
		IsActive:      m.EPAIsActive,
	}
}

/* ===================== COMPETENCIES ===================== */

type CreateCoreCompetencyRequest struct {
	Code  string `json:"core_competency_code" validate:"required,min=1,max=32"`
	Title string `json:"core_competency_title" validate:"required,min=3,max=255"`
}

func (r *CreateCoreCompetencyRequest) ToModel(programID uuid.UUID) *model.CoreCompetencyModel {
	return &model.CoreCompetencyModel{
		CoreCompetencyProgramID: programID,
		CoreCompetencyCode:      r.Code,
		CoreCompetencyTitle:     r.Title,
	}
}

type CreateSubCompetencyRequest struct {
	CoreCompetencyID uuid.UUID `json:"sub_competency_core_competency_id" validate:"required,uuid4"`
	Code             string    `json:"sub_competency_code" validate:"required,min=1,max=32"`
	Title            string    `json:"sub_competency_title" validate:"required,min=3,max=255"`

	MilestoneLevel1 string `json:"sub_competency_milestone_level_1" validate:"required"`
	MilestoneLevel2 string `json:"sub_competency_milestone_level_2" validate:"required"`
	MilestoneLevel3 string `json:"sub_competency_milestone_level_3" validate:"required"`
	MilestoneLevel4 string `json:"sub_competency_milestone_level_4" validate:"required"`
	MilestoneLevel5 string `json:"sub_competency_milestone_level_5" validate:"required"`
}

func (r *CreateSubCompetencyRequest) ToModel(programID uuid.UUID) *model.SubCompetencyModel {
	return &model.SubCompetencyModel{
		SubCompetencyProgramID:        programID,
		SubCompetencyCoreCompetencyID: r.CoreCompetencyID,
		SubCompetencyCode:             r.Code,
		SubCompetencyTitle:            r.Title,
		SubCompetencyMilestoneLevel1:  r.MilestoneLevel1,
		SubCompetencyMilestoneLevel2:  r.MilestoneLevel2,
		SubCompetencyMilestoneLevel3:  r.MilestoneLevel3,
		SubCompetencyMilestoneLevel4:  r.MilestoneLevel4,
		SubCompetencyMilestoneLevel5:  r.MilestoneLevel5,
	}
}

/* ===================== EPA MAPPING ===================== */

type CreateEPAMappingRequest struct {
	SubCompetencyID uuid.UUID `json:"sub_competency_id" validate:"required,uuid4"`
	EPAID           uuid.UUID `json:"epa_id" validate:"required,uuid4"`
}
