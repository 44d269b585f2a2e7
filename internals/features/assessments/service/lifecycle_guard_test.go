package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epanotes_backend/internals/features/assessments/model"
	helper "epanotes_backend/internals/helpers"
)

func TestCanModify_WithinWindow(t *testing.T) {
	evaluator := helper.Actor{UserID: uuid.New(), Role: "faculty"}
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	a := &model.AssessmentModel{
		AssessmentEvaluatorID: evaluator.UserID,
		AssessmentStatus:      model.StatusSubmitted,
		AssessmentCreatedAt:   now.Add(-(6*24 + 23) * time.Hour), // 6d23h
	}
	assert.Nil(t, CanModify(evaluator, a, now))
}

func TestCanModify_JustPastWindow(t *testing.T) {
	evaluator := helper.Actor{UserID: uuid.New(), Role: "faculty"}
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	a := &model.AssessmentModel{
		AssessmentEvaluatorID: evaluator.UserID,
		AssessmentStatus:      model.StatusSubmitted,
		AssessmentCreatedAt:   now.Add(-(7*24*time.Hour + time.Second)),
	}

	lErr := CanModify(evaluator, a, now)
	require.NotNil(t, lErr)
	assert.Equal(t, LifecycleTooOld, lErr.Code)
	assert.Equal(t, 7, lErr.DaysOld)
	assert.Equal(t, MaxEditableAgeDays, lErr.MaxAgeDays)
}

func TestCanModify_ExactBoundaryIsAllowed(t *testing.T) {
	evaluator := helper.Actor{UserID: uuid.New(), Role: "faculty"}
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	a := &model.AssessmentModel{
		AssessmentEvaluatorID: evaluator.UserID,
		AssessmentStatus:      model.StatusSubmitted,
		AssessmentCreatedAt:   now.Add(-7 * 24 * time.Hour),
	}
	assert.Nil(t, CanModify(evaluator, a, now), "exactly 7 days old is still editable")
}

func TestCanModify_NotEvaluator(t *testing.T) {
	evaluator := helper.Actor{UserID: uuid.New(), Role: "faculty"}
	someoneElse := helper.Actor{UserID: uuid.New(), Role: "faculty"}
	now := time.Now().UTC()

	a := &model.AssessmentModel{
		AssessmentEvaluatorID: evaluator.UserID,
		AssessmentStatus:      model.StatusSubmitted,
		AssessmentCreatedAt:   now.Add(-time.Hour),
	}

	lErr := CanModify(someoneElse, a, now)
	require.NotNil(t, lErr)
	assert.Equal(t, LifecycleNotEvaluator, lErr.Code)
}

func TestCanModify_NotEvaluatorWinsOverTooOld(t *testing.T) {
	evaluator := helper.Actor{UserID: uuid.New(), Role: "faculty"}
	someoneElse := helper.Actor{UserID: uuid.New(), Role: "admin"}
	now := time.Now().UTC()

	a := &model.AssessmentModel{
		AssessmentEvaluatorID: evaluator.UserID,
		AssessmentStatus:      model.StatusSubmitted,
		AssessmentCreatedAt:   now.Add(-30 * 24 * time.Hour),
	}

	lErr := CanModify(someoneElse, a, now)
	require.NotNil(t, lErr)
	assert.Equal(t, LifecycleNotEvaluator, lErr.Code, "identity is checked before age")
}

func TestCanModify_LockedIsImmutableForEveryone(t *testing.T) {
	evaluator := helper.Actor{UserID: uuid.New(), Role: "faculty"}
	now := time.Now().UTC()

	a := &model.AssessmentModel{
		AssessmentEvaluatorID: evaluator.UserID,
		AssessmentStatus:      model.StatusLocked,
		AssessmentCreatedAt:   now.Add(-time.Hour), // well within the window
	}

	lErr := CanModify(evaluator, a, now)
	require.NotNil(t, lErr)
	assert.Equal(t, LifecycleLocked, lErr.Code)
}
