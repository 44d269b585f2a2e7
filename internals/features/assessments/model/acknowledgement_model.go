package model

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentAcknowledgement records that one leadership user has read one
// sensitive assessment. Explicit join row (not an opaque set) so the
// acknowledgement timestamp stays available for audit.
type AssessmentAcknowledgementModel struct {
	AssessmentAcknowledgementID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:assessment_acknowledgement_id" json:"assessment_acknowledgement_id"`
	AssessmentAcknowledgementAssessmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_assessment_acknowledgements_pair;column:assessment_acknowledgement_assessment_id" json:"assessment_acknowledgement_assessment_id"`
	AssessmentAcknowledgementUserID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_assessment_acknowledgements_pair;column:assessment_acknowledgement_user_id" json:"assessment_acknowledgement_user_id"`

	AssessmentAcknowledgementAcknowledgedAt time.Time `gorm:"column:assessment_acknowledgement_acknowledged_at;autoCreateTime" json:"assessment_acknowledgement_acknowledged_at"`
}

func (AssessmentAcknowledgementModel) TableName() string { return "assessment_acknowledgements" }
