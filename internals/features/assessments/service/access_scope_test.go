package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"

	"epanotes_backend/internals/constants"
	helper "epanotes_backend/internals/helpers"
)

// dryRunDB opens a statement-building-only gorm DB so scope tests can inspect
// the SQL a builder produces without a live database.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{})
	require.NoError(t, err)
	return db
}

func actorWith(role string, programID *uuid.UUID) helper.Actor {
	return helper.Actor{UserID: uuid.New(), Role: role, ProgramID: programID}
}

func TestAllows_ProgramIsolation(t *testing.T) {
	programA := uuid.New()
	programB := uuid.New()

	leader := actorWith(constants.RoleLeadership, &programA)

	inProgram := AssessmentView{
		TraineeID:        uuid.New(),
		EvaluatorID:      uuid.New(),
		TraineeProgramID: &programA,
		Status:           "submitted",
	}
	crossProgram := inProgram
	crossProgram.TraineeProgramID = &programB

	assert.True(t, Allows(leader, inProgram))
	assert.False(t, Allows(leader, crossProgram), "leadership must never see another program's records")

	admin := actorWith(constants.RoleAdmin, &programA)
	assert.True(t, Allows(admin, inProgram))
	assert.False(t, Allows(admin, crossProgram))
}

func TestAllows_ParticipantsSeeOwnRecordsOnly(t *testing.T) {
	programA := uuid.New()
	faculty := actorWith(constants.RoleFaculty, &programA)
	trainee := actorWith(constants.RoleTrainee, &programA)

	asEvaluator := AssessmentView{
		TraineeID:        trainee.UserID,
		EvaluatorID:      faculty.UserID,
		TraineeProgramID: &programA,
		Status:           "submitted",
	}
	unrelated := AssessmentView{
		TraineeID:        uuid.New(),
		EvaluatorID:      uuid.New(),
		TraineeProgramID: &programA,
		Status:           "submitted",
	}

	assert.True(t, Allows(faculty, asEvaluator))
	assert.True(t, Allows(trainee, asEvaluator))
	assert.False(t, Allows(faculty, unrelated), "same program is not enough for faculty")
	assert.False(t, Allows(trainee, unrelated))
}

func TestAllows_DraftVisibility(t *testing.T) {
	programA := uuid.New()
	evaluator := actorWith(constants.RoleFaculty, &programA)
	leader := actorWith(constants.RoleLeadership, &programA)
	trainee := actorWith(constants.RoleTrainee, &programA)

	draft := AssessmentView{
		TraineeID:        trainee.UserID,
		EvaluatorID:      evaluator.UserID,
		TraineeProgramID: &programA,
		Status:           "draft",
	}

	assert.True(t, Allows(evaluator, draft), "authors see their own drafts")
	assert.False(t, Allows(leader, draft), "drafts are invisible to leadership")
	assert.False(t, Allows(trainee, draft), "drafts are invisible to their subject")

	sysadmin := actorWith(constants.RoleSystemAdmin, nil)
	assert.False(t, Allows(sysadmin, draft), "even system admins cannot read others' drafts")
}

func TestAllows_LockedBehavesLikeSubmitted(t *testing.T) {
	programA := uuid.New()
	leader := actorWith(constants.RoleLeadership, &programA)

	locked := AssessmentView{
		TraineeID:        uuid.New(),
		EvaluatorID:      uuid.New(),
		TraineeProgramID: &programA,
		Status:           "locked",
	}
	assert.True(t, Allows(leader, locked))
}

func TestAllows_FailsClosed(t *testing.T) {
	programA := uuid.New()
	record := AssessmentView{
		TraineeID:        uuid.New(),
		EvaluatorID:      uuid.New(),
		TraineeProgramID: &programA,
		Status:           "submitted",
	}

	unknown := actorWith("superuser", &programA)
	assert.False(t, Allows(unknown, record), "unknown roles resolve to the empty scope")

	orphanLeader := actorWith(constants.RoleLeadership, nil)
	assert.False(t, Allows(orphanLeader, record), "program-bound roles without a program see nothing")

	orphanTrainee := actorWith(constants.RoleTrainee, nil)
	assert.False(t, Allows(orphanTrainee, record))
}

func TestAllows_SystemAdminSeesAcrossPrograms(t *testing.T) {
	programA := uuid.New()
	sysadmin := actorWith(constants.RoleSystemAdmin, nil)

	record := AssessmentView{
		TraineeID:        uuid.New(),
		EvaluatorID:      uuid.New(),
		TraineeProgramID: &programA,
		Status:           "submitted",
	}
	assert.True(t, Allows(sysadmin, record))
}

func TestProgramTraineeFilter_CountsActiveTraineesOnly(t *testing.T) {
	db := dryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return ProgramTraineeFilter(tx, uuid.New()).Find(&[]AssessmentView{})
	})

	assert.Contains(t, sql, "assessment_status IN ('submitted', 'locked')")
	assert.Contains(t, sql, "user_role = 'trainee'")
	assert.Contains(t, sql, "user_deactivated_at IS NULL",
		"a deactivated trainee's assessments must not leak into aggregate populations")
}
