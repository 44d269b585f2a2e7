package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"epanotes_backend/internals/constants"
	helper "epanotes_backend/internals/helpers"
)

/* =========================================================
 * ACCESS SCOPE RESOLVER
 *
 * Every read of assessments goes through here. The role rules live in one
 * strategy table; endpoints never re-derive visibility on their own.
 * ========================================================= */

// ScopeFilters are the optional AND-constraints applied after the role scope.
type ScopeFilters struct {
	TraineeID   *uuid.UUID
	EvaluatorID *uuid.UUID
	EPAID       *uuid.UUID
	StartDate   *time.Time // inclusive, on shift_date
	EndDate     *time.Time // inclusive, on shift_date
}

// AssessmentView is the minimal projection the pure predicate needs.
type AssessmentView struct {
	TraineeID        uuid.UUID
	EvaluatorID      uuid.UUID
	TraineeProgramID *uuid.UUID
	Status           string
}

type roleRule struct {
	// pure predicate over one record, used for detail reads and tests
	allows func(actor helper.Actor, a AssessmentView) bool
	// query builder for list reads; must express the same rule
	apply func(actor helper.Actor, q *gorm.DB) *gorm.DB
}

func ownDraft(actor helper.Actor, a AssessmentView) bool {
	return a.Status == "draft" && a.EvaluatorID == actor.UserID
}

// visible covers both submitted and locked records; locked is a terminal
// state, not a hidden one.
func visible(a AssessmentView) bool {
	return a.Status == "submitted" || a.Status == "locked"
}

var roleRules = map[string]roleRule{
	constants.RoleSystemAdmin: {
		allows: func(actor helper.Actor, a AssessmentView) bool {
			// No unrestricted visibility: other evaluators' drafts stay hidden.
			return visible(a) || ownDraft(actor, a)
		},
		apply: func(actor helper.Actor, q *gorm.DB) *gorm.DB {
			return q.Where(
				"(assessment_status IN ('submitted', 'locked') OR (assessment_status = 'draft' AND assessment_evaluator_id = ?))",
				actor.UserID,
			)
		},
	},
	constants.RoleAdmin:      programRule(),
	constants.RoleLeadership: programRule(),
	constants.RoleFaculty:    participantRule(),
	constants.RoleTrainee:    participantRule(),
}

func programRule() roleRule {
	return roleRule{
		allows: func(actor helper.Actor, a AssessmentView) bool {
			if ownDraft(actor, a) {
				return true
			}
			return visible(a) &&
				a.TraineeProgramID != nil && actor.ProgramID != nil &&
				*a.TraineeProgramID == *actor.ProgramID
		},
		apply: func(actor helper.Actor, q *gorm.DB) *gorm.DB {
			return q.Where(
				`((assessment_status IN ('submitted', 'locked') AND assessment_trainee_id IN (
					SELECT user_id FROM users WHERE user_program_id = ?
				)) OR (assessment_status = 'draft' AND assessment_evaluator_id = ?))`,
				actor.ProgramID, actor.UserID,
			)
		},
	}
}

func participantRule() roleRule {
	return roleRule{
		allows: func(actor helper.Actor, a AssessmentView) bool {
			if ownDraft(actor, a) {
				return true
			}
			return visible(a) &&
				(a.TraineeID == actor.UserID || a.EvaluatorID == actor.UserID)
		},
		apply: func(actor helper.Actor, q *gorm.DB) *gorm.DB {
			return q.Where(
				`((assessment_status IN ('submitted', 'locked') AND (assessment_trainee_id = ? OR assessment_evaluator_id = ?))
				OR (assessment_status = 'draft' AND assessment_evaluator_id = ?))`,
				actor.UserID, actor.UserID, actor.UserID,
			)
		},
	}
}

// scopeFailsClosed reports whether the actor resolves to the empty set before
// any record is consulted: unknown role, or a program-bound role with no program.
func scopeFailsClosed(actor helper.Actor) bool {
	if _, ok := roleRules[actor.Role]; !ok {
		return true
	}
	if actor.Role != constants.RoleSystemAdmin && actor.ProgramID == nil {
		return true
	}
	return false
}

// Allows is the single-record form of the role scope.
func Allows(actor helper.Actor, a AssessmentView) bool {
	if scopeFailsClosed(actor) {
		return false
	}
	return roleRules[actor.Role].allows(actor, a)
}

// ScopedQuery returns the base query of assessments the actor may read,
// with optional filters AND-ed on top.
func ScopedQuery(db *gorm.DB, actor helper.Actor, f ScopeFilters) *gorm.DB {
	q := db.Table("assessments")

	if scopeFailsClosed(actor) {
		return q.Where("1 = 0")
	}
	q = roleRules[actor.Role].apply(actor, q)

	if f.TraineeID != nil {
		q = q.Where("assessment_trainee_id = ?", *f.TraineeID)
	}
	if f.EvaluatorID != nil {
		q = q.Where("assessment_evaluator_id = ?", *f.EvaluatorID)
	}
	if f.EPAID != nil {
		q = q.Where(`assessment_id IN (
			SELECT assessment_epa_assessment_id FROM assessment_epas WHERE assessment_epa_epa_id = ?
		)`, *f.EPAID)
	}
	if f.StartDate != nil {
		q = q.Where("assessment_shift_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("assessment_shift_date <= ?", *f.EndDate)
	}
	return q
}

// ProgramTraineeFilter scopes a query to finalized assessments of one program's
// active trainees. The aggregation engine and the report assembler reuse this
// instead of re-deriving isolation; deactivated trainees are excluded so the
// assessment population always matches the roster they report against.
func ProgramTraineeFilter(db *gorm.DB, programID uuid.UUID) *gorm.DB {
	return db.Table("assessments").
		Where("assessment_status IN ('submitted', 'locked')").
		Where(`assessment_trainee_id IN (
			SELECT user_id FROM users
			WHERE user_program_id = ? AND user_role = 'trainee' AND user_deactivated_at IS NULL
		)`, programID)
}
