package dto

import (
	"time"

	"github.com/google/uuid"

	m "epanotes_backend/internals/features/assessments/model"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

type CreateAssessmentEPARequest struct {
	EPAID            uuid.UUID `json:"epa_id" validate:"required"`
	EntrustmentLevel int       `json:"entrustment_level" validate:"required,min=1,max=5"`
	WhatWentWell     string    `json:"what_went_well" validate:"required"`
	WhatCouldImprove string    `json:"what_could_improve" validate:"required"`
}

// Create (JSON). The evaluator is always the authenticated actor.
type CreateAssessmentRequest struct {
	TraineeID uuid.UUID `json:"trainee_id" validate:"required"`
	ShiftDate string    `json:"shift_date" validate:"required,datetime=2006-01-02"`

	Location        *string `json:"location" validate:"omitempty,max=200"`
	Status          string  `json:"status" validate:"required,oneof=draft submitted"`
	Feedback        *string `json:"feedback" validate:"omitempty"`
	PrivateComments *string `json:"private_comments" validate:"omitempty"`

	AssessmentEPAs []CreateAssessmentEPARequest `json:"assessment_epas" validate:"required,min=1,dive"`
}

// Update (partial JSON). Status may only move draft → submitted.
type UpdateAssessmentRequest struct {
	ShiftDate       *string `json:"shift_date" validate:"omitempty,datetime=2006-01-02"`
	Location        *string `json:"location" validate:"omitempty,max=200"`
	Status          *string `json:"status" validate:"omitempty,oneof=draft submitted"`
	Feedback        *string `json:"feedback" validate:"omitempty"`
	PrivateComments *string `json:"private_comments" validate:"omitempty"`
}

/* =========================================================
 * RESPONSES
 * ========================================================= */

type AssessmentEPAResponse struct {
	AssessmentEPAID  uuid.UUID `json:"assessment_epa_id"`
	EPAID            uuid.UUID `json:"epa_id"`
	EPACode          string    `json:"epa_code,omitempty"`
	EPATitle         string    `json:"epa_title,omitempty"`
	EntrustmentLevel int       `json:"entrustment_level"`
	WhatWentWell     string    `json:"what_went_well"`
	WhatCouldImprove string    `json:"what_could_improve"`
	CreatedAt        time.Time `json:"created_at"`
}

type AssessmentResponse struct {
	AssessmentID  uuid.UUID `json:"assessment_id"`
	TraineeID     uuid.UUID `json:"trainee_id"`
	TraineeName   string    `json:"trainee_name,omitempty"`
	EvaluatorID   uuid.UUID `json:"evaluator_id"`
	EvaluatorName string    `json:"evaluator_name,omitempty"`

	ShiftDate       string  `json:"shift_date"`
	Location        *string `json:"location,omitempty"`
	Status          string  `json:"status"`
	Feedback        *string `json:"feedback,omitempty"`
	PrivateComments *string `json:"private_comments,omitempty"`

	EPACount           int      `json:"epa_count"`
	AverageEntrustment *float64 `json:"average_entrustment"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	AssessmentEPAs []AssessmentEPAResponse `json:"assessment_epas,omitempty"`
}

/* =========================================================
 * HELPERS
 * ========================================================= */

func (r CreateAssessmentRequest) ToModel(evaluatorID uuid.UUID, shiftDate time.Time) m.AssessmentModel {
	return m.AssessmentModel{
		AssessmentTraineeID:       r.TraineeID,
		AssessmentEvaluatorID:     evaluatorID,
		AssessmentShiftDate:       shiftDate,
		AssessmentLocation:        r.Location,
		AssessmentStatus:          r.Status,
		AssessmentFeedback:        r.Feedback,
		AssessmentPrivateComments: r.PrivateComments,
	}
}

func (r CreateAssessmentEPARequest) ToModel(assessmentID uuid.UUID) m.AssessmentEPAModel {
	return m.AssessmentEPAModel{
		AssessmentEPAAssessmentID:     assessmentID,
		AssessmentEPAEPAID:            r.EPAID,
		AssessmentEPAEntrustmentLevel: r.EntrustmentLevel,
		AssessmentEPAWhatWentWell:     r.WhatWentWell,
		AssessmentEPAWhatCouldImprove: r.WhatCouldImprove,
	}
}

// UserName pairs an id with a display name for response decoration.
type UserName struct {
	ID   uuid.UUID
	Name string
}

func NewAssessmentEPAResponse(mdl m.AssessmentEPAModel, epaCode, epaTitle string) AssessmentEPAResponse {
	return AssessmentEPAResponse{
		AssessmentEPAID:  mdl.AssessmentEPAID,
		EPAID:            mdl.AssessmentEPAEPAID,
		EPACode:          epaCode,
		EPATitle:         epaTitle,
		EntrustmentLevel: mdl.AssessmentEPAEntrustmentLevel,
		WhatWentWell:     mdl.AssessmentEPAWhatWentWell,
		WhatCouldImprove: mdl.AssessmentEPAWhatCouldImprove,
		CreatedAt:        mdl.AssessmentEPACreatedAt,
	}
}

func NewAssessmentResponse(mdl m.AssessmentModel, names map[uuid.UUID]string, epaMeta map[uuid.UUID][2]string) AssessmentResponse {
	resp := AssessmentResponse{
		AssessmentID:    mdl.AssessmentID,
		TraineeID:       mdl.AssessmentTraineeID,
		TraineeName:     names[mdl.AssessmentTraineeID],
		EvaluatorID:     mdl.AssessmentEvaluatorID,
		EvaluatorName:   names[mdl.AssessmentEvaluatorID],
		ShiftDate:       mdl.AssessmentShiftDate.Format("2006-01-02"),
		Location:        mdl.AssessmentLocation,
		Status:          mdl.AssessmentStatus,
		Feedback:        mdl.AssessmentFeedback,
		PrivateComments: mdl.AssessmentPrivateComments,
		CreatedAt:       mdl.AssessmentCreatedAt,
		UpdatedAt:       mdl.AssessmentUpdatedAt,
	}

	sum := 0
	for _, e := range mdl.AssessmentEPAs {
		meta := epaMeta[e.AssessmentEPAEPAID]
		resp.AssessmentEPAs = append(resp.AssessmentEPAs, NewAssessmentEPAResponse(e, meta[0], meta[1]))
		sum += e.AssessmentEPAEntrustmentLevel
	}
	resp.EPACount = len(mdl.AssessmentEPAs)
	if resp.EPACount > 0 {
		avg := float64(sum) / float64(resp.EPACount)
		resp.AverageEntrustment = &avg
	}
	return resp
}
