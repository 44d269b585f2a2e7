package service

import (
	"fmt"
	"time"

	"epanotes_backend/internals/features/assessments/model"
	helper "epanotes_backend/internals/helpers"
)

/* =========================================================
 * LIFECYCLE GUARD
 *
 * Edit/delete legality: only the original evaluator, only within the edit
 * window. Applies identically to update and delete. Locked records are
 * immutable even for the evaluator.
 * ========================================================= */

const MaxEditableAgeDays = 7

const (
	LifecycleNotEvaluator = "not_evaluator"
	LifecycleTooOld       = "too_old"
	LifecycleLocked       = "locked"
)

// LifecycleError is the user-visible rejection: the code tells the client which
// condition failed, DaysOld/MaxAgeDays let it render an actionable message.
type LifecycleError struct {
	Code       string
	DaysOld    int
	MaxAgeDays int
}

func (e *LifecycleError) Error() string {
	switch e.Code {
	case LifecycleNotEvaluator:
		return "only the original evaluator may modify this assessment"
	case LifecycleLocked:
		return "this assessment is locked and can no longer be modified"
	default:
		return fmt.Sprintf("assessment is %d days old; modifications are allowed for %d days", e.DaysOld, e.MaxAgeDays)
	}
}

// CanModify returns nil when the actor may update or delete the assessment.
func CanModify(actor helper.Actor, a *model.AssessmentModel, now time.Time) *LifecycleError {
	age := now.Sub(a.AssessmentCreatedAt)
	daysOld := int(age.Hours() / 24)

	if a.AssessmentEvaluatorID != actor.UserID {
		return &LifecycleError{Code: LifecycleNotEvaluator, DaysOld: daysOld, MaxAgeDays: MaxEditableAgeDays}
	}
	if a.AssessmentStatus == model.StatusLocked {
		return &LifecycleError{Code: LifecycleLocked, DaysOld: daysOld, MaxAgeDays: MaxEditableAgeDays}
	}
	if age > MaxEditableAgeDays*24*time.Hour {
		return &LifecycleError{Code: LifecycleTooOld, DaysOld: daysOld, MaxAgeDays: MaxEditableAgeDays}
	}
	return nil
}
