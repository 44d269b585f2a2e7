package model

import (
	"time"

	"github.com/google/uuid"
)

// Assessment statuses. Progression is monotonic: draft → submitted → locked.
// locked is a terminal, back-office-set state; no API transition reaches it.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusLocked    = "locked"
)

// Assessment is one evaluation encounter: an evaluator rating a trainee's shift.
type AssessmentModel struct {
	AssessmentID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:assessment_id" json:"assessment_id"`

	AssessmentTraineeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_assessments_trainee_shift;column:assessment_trainee_id" json:"assessment_trainee_id"`
	AssessmentEvaluatorID uuid.UUID `gorm:"type:uuid;not null;index;column:assessment_evaluator_id" json:"assessment_evaluator_id"`

	// Clinical encounter date; all list/analytics/export windows filter on this.
	AssessmentShiftDate time.Time `gorm:"type:date;not null;index:idx_assessments_trainee_shift;index;column:assessment_shift_date" json:"assessment_shift_date"`

	AssessmentLocation *string `gorm:"column:assessment_location" json:"assessment_location,omitempty"`
	AssessmentStatus   string  `gorm:"not null;default:draft;index;column:assessment_status" json:"assessment_status"`

	AssessmentFeedback        *string `gorm:"column:assessment_feedback" json:"assessment_feedback,omitempty"`
	AssessmentPrivateComments *string `gorm:"column:assessment_private_comments" json:"assessment_private_comments,omitempty"`

	AssessmentCreatedAt time.Time  `gorm:"column:assessment_created_at;autoCreateTime;index" json:"assessment_created_at"`
	AssessmentUpdatedAt *time.Time `gorm:"column:assessment_updated_at;autoUpdateTime" json:"assessment_updated_at,omitempty"`

	AssessmentEPAs []AssessmentEPAModel `gorm:"foreignKey:AssessmentEPAAssessmentID;references:AssessmentID;constraint:OnDelete:CASCADE" json:"assessment_epas,omitempty"`
}

func (AssessmentModel) TableName() string { return "assessments" }

// AssessmentEPA is one rated EPA within an assessment. Entrustment runs 1..5
// (1 = constant direct supervision, 5 = no supervision required).
type AssessmentEPAModel struct {
	AssessmentEPAID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:assessment_epa_id" json:"assessment_epa_id"`
	AssessmentEPAAssessmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_assessment_epas_pair;column:assessment_epa_assessment_id" json:"assessment_epa_assessment_id"`
	AssessmentEPAEPAID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_assessment_epas_pair;column:assessment_epa_epa_id" json:"assessment_epa_epa_id"`

	AssessmentEPAEntrustmentLevel int `gorm:"not null;index;column:assessment_epa_entrustment_level" json:"assessment_epa_entrustment_level"`

	AssessmentEPAWhatWentWell     string `gorm:"not null;column:assessment_epa_what_went_well" json:"assessment_epa_what_went_well"`
	AssessmentEPAWhatCouldImprove string `gorm:"not null;column:assessment_epa_what_could_improve" json:"assessment_epa_what_could_improve"`

	AssessmentEPACreatedAt time.Time `gorm:"column:assessment_epa_created_at;autoCreateTime" json:"assessment_epa_created_at"`
}

func (AssessmentEPAModel) TableName() string { return "assessment_epas" }
