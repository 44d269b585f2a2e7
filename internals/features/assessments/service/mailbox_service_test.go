package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"epanotes_backend/internals/configs"
	"epanotes_backend/internals/constants"
	"epanotes_backend/internals/features/assessments/model"
	helper "epanotes_backend/internals/helpers"
)

func TestEligible_LeadershipNeedsProgram(t *testing.T) {
	programA := uuid.New()

	assert.True(t, Eligible(actorWith(constants.RoleLeadership, &programA)))
	assert.True(t, Eligible(actorWith(constants.RoleAdmin, &programA)))
	assert.False(t, Eligible(actorWith(constants.RoleLeadership, nil)), "no program means no mailbox")
	assert.False(t, Eligible(actorWith(constants.RoleAdmin, nil)))
}

func TestEligible_ExcludesParticipants(t *testing.T) {
	programA := uuid.New()

	assert.False(t, Eligible(actorWith(constants.RoleFaculty, &programA)))
	assert.False(t, Eligible(actorWith(constants.RoleTrainee, &programA)))
}

func TestEligible_SystemAdminFollowsFlag(t *testing.T) {
	prev := configs.MailboxGlobalForSystemAdmin
	defer func() { configs.MailboxGlobalForSystemAdmin = prev }()

	sysadmin := helper.Actor{UserID: uuid.New(), Role: constants.RoleSystemAdmin}

	configs.MailboxGlobalForSystemAdmin = false
	assert.False(t, Eligible(sysadmin))

	configs.MailboxGlobalForSystemAdmin = true
	assert.True(t, Eligible(sysadmin))
}

func TestSensitive_RequiresFinalizedStatusAndComments(t *testing.T) {
	comments := "needs a conversation"
	empty := ""

	cases := []struct {
		name string
		a    model.AssessmentModel
		want bool
	}{
		{"submitted with comments", model.AssessmentModel{AssessmentStatus: model.StatusSubmitted, AssessmentPrivateComments: &comments}, true},
		{"locked with comments", model.AssessmentModel{AssessmentStatus: model.StatusLocked, AssessmentPrivateComments: &comments}, true},
		{"draft with comments", model.AssessmentModel{AssessmentStatus: model.StatusDraft, AssessmentPrivateComments: &comments}, false},
		{"submitted without comments", model.AssessmentModel{AssessmentStatus: model.StatusSubmitted}, false},
		{"submitted with empty comments", model.AssessmentModel{AssessmentStatus: model.StatusSubmitted, AssessmentPrivateComments: &empty}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sensitive(tc.a))
		})
	}
}

// mailboxSQL renders the SQL a scope builder produces for a program leader,
// without touching a database.
func mailboxSQL(t *testing.T, build func(*MailboxService, helper.Actor) (*gorm.DB, error)) string {
	t.Helper()

	svc := NewMailboxService(dryRunDB(t).Session(&gorm.Session{DryRun: true}))
	programA := uuid.New()
	q, err := build(svc, actorWith(constants.RoleLeadership, &programA))
	require.NoError(t, err)

	stmt := q.Find(&[]model.AssessmentModel{}).Statement
	return stmt.SQL.String()
}

func TestMailboxScopes_ShareSensitivePredicate(t *testing.T) {
	sensitive := mailboxSQL(t, (*MailboxService).sensitiveScope)
	unread := mailboxSQL(t, (*MailboxService).unreadScope)
	read := mailboxSQL(t, (*MailboxService).readScope)

	// Unread, read and the count scope all extend the one sensitive predicate;
	// none may re-derive status, comment or program conditions on its own.
	for _, sql := range []string{sensitive, unread, read} {
		assert.Contains(t, sql, "assessment_status IN ('submitted', 'locked')")
		assert.Contains(t, sql, "assessment_private_comments IS NOT NULL")
		assert.Contains(t, sql, "user_program_id")
	}
	assert.Contains(t, unread, "NOT EXISTS")
	assert.Contains(t, read, "EXISTS")
	assert.NotContains(t, read, "NOT EXISTS")
}

func TestMarkRead_DuplicateAcknowledgementIsNoOp(t *testing.T) {
	db := dryRunDB(t).Session(&gorm.Session{DryRun: true})

	ack := model.AssessmentAcknowledgementModel{
		AssessmentAcknowledgementAssessmentID: uuid.New(),
		AssessmentAcknowledgementUserID:       uuid.New(),
	}
	sql := ackUpsert(db, &ack).Statement.SQL.String()

	assert.Contains(t, sql, "ON CONFLICT")
	assert.Contains(t, sql, "DO NOTHING")
	assert.Contains(t, sql, "assessment_acknowledgement_assessment_id")
	assert.Contains(t, sql, "assessment_acknowledgement_user_id")
}
