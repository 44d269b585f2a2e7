package dto

import (
	"time"

	"github.com/google/uuid"
)

// MonthBucket is one calendar month of the trend series. Empty months appear
// with a zero count and a nil average.
type MonthBucket struct {
	Month        string   `json:"month"` // YYYY-MM
	Assessments  int      `json:"assessments"`
	AverageLevel *float64 `json:"average_level"`
}

// LevelSlice is one bar of the 1–5 entrustment distribution.
type LevelSlice struct {
	Level      int     `json:"level"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

/* =========================================================
 * PROGRAM PERFORMANCE
 * ========================================================= */

type ProgramInfo struct {
	ProgramID    uuid.UUID `json:"program_id"`
	Name         string    `json:"name"`
	Abbreviation *string   `json:"abbreviation,omitempty"`
	Specialty    string    `json:"specialty"`
}

type Timeframe struct {
	Months    int    `json:"months"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ProgramMetrics struct {
	TotalTrainees            int      `json:"total_trainees"`
	ActiveTrainees           int      `json:"active_trainees"`
	AssessmentsInPeriod      int      `json:"assessments_in_period"`
	TotalLifetimeAssessments int      `json:"total_lifetime_assessments"`
	AverageEntrustment       *float64 `json:"average_entrustment"`
	CompletionRate           float64  `json:"completion_rate"`
}

type TraineeBreakdownItem struct {
	TraineeID           uuid.UUID  `json:"trainee_id"`
	Name                string     `json:"name"`
	CohortName          *string    `json:"cohort_name,omitempty"`
	AssessmentsInPeriod int        `json:"assessments_in_period"`
	TotalRatings        int        `json:"total_ratings"`
	AverageEntrustment  *float64   `json:"average_entrustment"`
	LastAssessmentDate  *time.Time `json:"last_assessment_date,omitempty"`
}

type CohortBreakdownItem struct {
	CohortID            uuid.UUID `json:"cohort_id"`
	Name                string    `json:"name"`
	TraineeCount        int       `json:"trainee_count"`
	AssessmentsInPeriod int       `json:"assessments_in_period"`
	TotalRatings        int       `json:"total_ratings"`
	AverageEntrustment  *float64  `json:"average_entrustment"`
}

type CoreCompetencyBreakdownItem struct {
	CoreCompetencyID   uuid.UUID `json:"core_competency_id"`
	Code               string    `json:"code"`
	Title              string    `json:"title"`
	AverageEntrustment *float64  `json:"average_entrustment"`
	MilestoneTier      *float64  `json:"milestone_tier"`
	RatingsCount       int       `json:"ratings_count"`
}

type ProgramPerformanceResponse struct {
	Program                ProgramInfo                   `json:"program"`
	Timeframe              Timeframe                     `json:"timeframe"`
	Metrics                ProgramMetrics                `json:"metrics"`
	CohortBreakdown        []CohortBreakdownItem         `json:"cohort_breakdown"`
	TraineeBreakdown       []TraineeBreakdownItem        `json:"trainee_breakdown"`
	CompetencyBreakdown    []CoreCompetencyBreakdownItem `json:"competency_breakdown"`
	CompetencyDistribution []LevelSlice                  `json:"competency_distribution"`
	RecentTrends           []MonthBucket                 `json:"recent_trends"`
}

/* =========================================================
 * COMPETENCY GRID
 * ========================================================= */

type SubCompetencyGridItem struct {
	SubCompetencyID    uuid.UUID `json:"sub_competency_id"`
	Code               string    `json:"code"`
	Title              string    `json:"title"`
	AverageEntrustment *float64  `json:"average_entrustment"`
	MilestoneTier      *float64  `json:"milestone_tier"`
	EPACount           int       `json:"epa_count"`
	RatingsCount       int       `json:"ratings_count"`
}

type CoreCompetencyGridItem struct {
	CoreCompetencyID   uuid.UUID               `json:"core_competency_id"`
	Code               string                  `json:"code"`
	Title              string                  `json:"title"`
	AverageEntrustment *float64                `json:"average_entrustment"`
	MilestoneTier      *float64                `json:"milestone_tier"`
	SubCompetencies    []SubCompetencyGridItem `json:"sub_competencies"`
}

type CompetencyGridResponse struct {
	TraineeID        uuid.UUID                `json:"trainee_id"`
	TraineeName      string                   `json:"trainee_name"`
	CohortName       *string                  `json:"cohort_name,omitempty"`
	StartDate        *string                  `json:"start_date,omitempty"`
	EndDate          *string                  `json:"end_date,omitempty"`
	CoreCompetencies []CoreCompetencyGridItem `json:"core_competencies"`
}
