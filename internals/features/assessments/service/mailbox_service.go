package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"epanotes_backend/internals/configs"
	"epanotes_backend/internals/constants"
	"epanotes_backend/internals/features/assessments/model"
	helper "epanotes_backend/internals/helpers"
)

/* =========================================================
 * MAILBOX TRACKER
 *
 * Per-leadership-user read state over sensitive assessments (finalized with
 * non-empty private comments). Unread, Read and UnreadCount all build on the
 * one scope below; the count can never drift from the listing.
 * ========================================================= */

var ErrMailboxForbidden = errors.New("mailbox is restricted to program leadership")

type MailboxService struct {
	DB *gorm.DB
}

func NewMailboxService(db *gorm.DB) *MailboxService { return &MailboxService{DB: db} }

// Eligible reports whether the actor participates in the mailbox at all.
// system-admin joins only when MAILBOX_GLOBAL_FOR_SYSTEM_ADMIN is set.
func Eligible(actor helper.Actor) bool {
	if actor.Role == constants.RoleSystemAdmin {
		return configs.MailboxGlobalForSystemAdmin
	}
	for _, r := range constants.ProgramLeadership {
		if actor.Role == r {
			return actor.ProgramID != nil
		}
	}
	return false
}

// Sensitive reports whether an assessment belongs in the mailbox: finalized
// and carrying private comments. sensitiveScope is the SQL rendering of this
// exact predicate; change one and the other must follow.
func Sensitive(a model.AssessmentModel) bool {
	if a.AssessmentStatus != model.StatusSubmitted && a.AssessmentStatus != model.StatusLocked {
		return false
	}
	return a.AssessmentPrivateComments != nil && *a.AssessmentPrivateComments != ""
}

// sensitiveScope is the shared predicate: every mailbox operation, including
// the count, must come through here.
func (s *MailboxService) sensitiveScope(actor helper.Actor) (*gorm.DB, error) {
	if !Eligible(actor) {
		return nil, ErrMailboxForbidden
	}

	q := s.DB.Table("assessments").
		Where("assessment_status IN ('submitted', 'locked')").
		Where("assessment_private_comments IS NOT NULL AND assessment_private_comments <> ''")

	// Program leadership sees its own program; a flag-enabled system-admin
	// sees every program.
	if actor.Role != constants.RoleSystemAdmin {
		q = q.Where(`assessment_trainee_id IN (
			SELECT user_id FROM users WHERE user_program_id = ?
		)`, actor.ProgramID)
	}
	return q, nil
}

func (s *MailboxService) unreadScope(actor helper.Actor) (*gorm.DB, error) {
	q, err := s.sensitiveScope(actor)
	if err != nil {
		return nil, err
	}
	return q.Where(`NOT EXISTS (
		SELECT 1 FROM assessment_acknowledgements
		WHERE assessment_acknowledgement_assessment_id = assessments.assessment_id
		  AND assessment_acknowledgement_user_id = ?
	)`, actor.UserID), nil
}

func (s *MailboxService) readScope(actor helper.Actor) (*gorm.DB, error) {
	q, err := s.sensitiveScope(actor)
	if err != nil {
		return nil, err
	}
	return q.Where(`EXISTS (
		SELECT 1 FROM assessment_acknowledgements
		WHERE assessment_acknowledgement_assessment_id = assessments.assessment_id
		  AND assessment_acknowledgement_user_id = ?
	)`, actor.UserID), nil
}

func (s *MailboxService) list(scope *gorm.DB, p helper.Paging) ([]model.AssessmentModel, int64, error) {
	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.AssessmentModel
	err := scope.Session(&gorm.Session{}).
		Order("assessment_created_at DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *MailboxService) Unread(actor helper.Actor, p helper.Paging) ([]model.AssessmentModel, int64, error) {
	scope, err := s.unreadScope(actor)
	if err != nil {
		return nil, 0, err
	}
	return s.list(scope, p)
}

func (s *MailboxService) Read(actor helper.Actor, p helper.Paging) ([]model.AssessmentModel, int64, error) {
	scope, err := s.readScope(actor)
	if err != nil {
		return nil, 0, err
	}
	return s.list(scope, p)
}

// UnreadCount uses the identical predicate as Unread.
func (s *MailboxService) UnreadCount(actor helper.Actor) (int64, error) {
	scope, err := s.unreadScope(actor)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// MarkRead is idempotent: a second call for the same (actor, assessment) pair
// is a no-op, not an error. The assessment must be within the actor's mailbox
// scope; anything else looks like absence.
func (s *MailboxService) MarkRead(actor helper.Actor, assessmentID uuid.UUID) error {
	scope, err := s.sensitiveScope(actor)
	if err != nil {
		return err
	}

	var count int64
	if err := scope.Where("assessment_id = ?", assessmentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	ack := model.AssessmentAcknowledgementModel{
		AssessmentAcknowledgementAssessmentID: assessmentID,
		AssessmentAcknowledgementUserID:       actor.UserID,
	}
	return ackUpsert(s.DB, &ack).Error
}

// ackUpsert inserts a read acknowledgement; a duplicate (assessment, user)
// pair is a no-op, which is what makes MarkRead idempotent.
func ackUpsert(db *gorm.DB, ack *model.AssessmentAcknowledgementModel) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "assessment_acknowledgement_assessment_id"},
			{Name: "assessment_acknowledgement_user_id"},
		},
		DoNothing: true,
	}).Create(ack)
}
