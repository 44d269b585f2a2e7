package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestoneTier(t *testing.T) {
	cases := []struct {
		avg  float64
		want float64
	}{
		{4.8, 5.0},
		{1.1, 1.0},
		{3.24, 3.0},
		{3.26, 3.5},
		{3.25, 3.5}, // round half away from zero
		{0.4, 1.0},  // clamped low
		{5.0, 5.0},
		{2.5, 2.5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MilestoneTier(tc.avg), "avg %.2f", tc.avg)
	}
}

func TestStatAverage_NoDataIsNilNotZero(t *testing.T) {
	var empty Stat
	assert.Nil(t, empty.Average())

	st := Stat{}
	st.Add(3)
	st.Add(4)
	avg := st.Average()
	require.NotNil(t, avg)
	assert.InDelta(t, 3.5, *avg, 1e-9)
}

func TestGroupBySubCompetency_SharedMapping(t *testing.T) {
	epa1 := uuid.New()
	epa2 := uuid.New()
	sc1 := uuid.New()
	epaToSubs := map[uuid.UUID][]uuid.UUID{
		epa1: {sc1},
		epa2: {sc1},
	}

	assessmentID := uuid.New()
	traineeID := uuid.New()
	ratings := []RatingRow{
		{AssessmentID: assessmentID, TraineeID: traineeID, EPAID: epa1, Level: 3},
		{AssessmentID: assessmentID, TraineeID: traineeID, EPAID: epa2, Level: 5},
	}

	stats := GroupBySubCompetency(ratings, epaToSubs)
	require.Contains(t, stats, sc1)
	assert.Equal(t, 2, stats[sc1].Count)

	avg := stats[sc1].Average()
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 1e-9)
	assert.Equal(t, 4.0, MilestoneTier(*avg))

	// Removing the level-5 rating drops the average to 3.0.
	stats = GroupBySubCompetency(ratings[:1], epaToSubs)
	avg = stats[sc1].Average()
	require.NotNil(t, avg)
	assert.InDelta(t, 3.0, *avg, 1e-9)
}

func TestGroupBySubCompetency_MultiMappedEPACountsEverywhere(t *testing.T) {
	epa := uuid.New()
	scA := uuid.New()
	scB := uuid.New()
	epaToSubs := map[uuid.UUID][]uuid.UUID{epa: {scA, scB}}

	ratings := []RatingRow{{AssessmentID: uuid.New(), EPAID: epa, Level: 4}}
	stats := GroupBySubCompetency(ratings, epaToSubs)

	require.Contains(t, stats, scA)
	require.Contains(t, stats, scB)
	assert.Equal(t, 1, stats[scA].Count)
	assert.Equal(t, 1, stats[scB].Count)
}

func TestCoreAverage_EqualWeightPerSub(t *testing.T) {
	// Sub averages of 2.0 (100 ratings) and 4.0 (1 rating) still average 3.0.
	a, b := 2.0, 4.0
	avg := CoreAverage([]*float64{&a, &b})
	require.NotNil(t, avg)
	assert.InDelta(t, 3.0, *avg, 1e-9)
}

func TestCoreAverage_SkipsNoDataChildren(t *testing.T) {
	a := 3.0
	avg := CoreAverage([]*float64{&a, nil, nil})
	require.NotNil(t, avg)
	assert.InDelta(t, 3.0, *avg, 1e-9)

	assert.Nil(t, CoreAverage([]*float64{nil, nil}))
	assert.Nil(t, CoreAverage(nil))
}

func TestMonthlyTrend_FillsEmptyMonths(t *testing.T) {
	trainee := uuid.New()
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	assessments := []AssessmentRow{
		{ID: uuid.New(), TraineeID: trainee, ShiftDate: jan},
		{ID: uuid.New(), TraineeID: trainee, ShiftDate: mar},
		{ID: uuid.New(), TraineeID: trainee, ShiftDate: mar},
	}
	ratings := []RatingRow{
		{TraineeID: trainee, EPAID: uuid.New(), Level: 2, ShiftDate: jan},
		{TraineeID: trainee, EPAID: uuid.New(), Level: 4, ShiftDate: mar},
		{TraineeID: trainee, EPAID: uuid.New(), Level: 5, ShiftDate: mar},
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	trend := MonthlyTrend(assessments, ratings, start, end)

	require.Len(t, trend, 4)
	assert.Equal(t, []string{"2026-01", "2026-02", "2026-03", "2026-04"},
		[]string{trend[0].Month, trend[1].Month, trend[2].Month, trend[3].Month})

	assert.Equal(t, 1, trend[0].Assessments)
	require.NotNil(t, trend[0].AverageLevel)
	assert.InDelta(t, 2.0, *trend[0].AverageLevel, 1e-9)

	// February has no data: zero count, nil average.
	assert.Equal(t, 0, trend[1].Assessments)
	assert.Nil(t, trend[1].AverageLevel)

	assert.Equal(t, 2, trend[2].Assessments)
	require.NotNil(t, trend[2].AverageLevel)
	assert.InDelta(t, 4.5, *trend[2].AverageLevel, 1e-9)

	assert.Equal(t, 0, trend[3].Assessments)
	assert.Nil(t, trend[3].AverageLevel)
}

func TestMonthlyTrend_InvertedWindow(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, MonthlyTrend(nil, nil, start, end))
}

func TestBreakdownByTrainee_KeepsZeroMembers(t *testing.T) {
	active := uuid.New()
	idle := uuid.New()
	shift := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	assessments := []AssessmentRow{{ID: uuid.New(), TraineeID: active, ShiftDate: shift}}
	ratings := []RatingRow{{TraineeID: active, EPAID: uuid.New(), Level: 3, ShiftDate: shift}}

	stats := BreakdownByTrainee([]uuid.UUID{active, idle}, assessments, ratings)
	require.Len(t, stats, 2)

	assert.Equal(t, 1, stats[active].Assessments)
	require.NotNil(t, stats[active].AverageLevel)
	assert.InDelta(t, 3.0, *stats[active].AverageLevel, 1e-9)
	require.NotNil(t, stats[active].LastShift)
	assert.True(t, stats[active].LastShift.Equal(shift))

	assert.Equal(t, 0, stats[idle].Assessments)
	assert.Equal(t, 0, stats[idle].Ratings)
	assert.Nil(t, stats[idle].AverageLevel, "no data must stay nil, never 0.0")
	assert.Nil(t, stats[idle].LastShift)
}

func TestBreakdownByTrainee_IgnoresOutsidePopulation(t *testing.T) {
	member := uuid.New()
	stranger := uuid.New()
	shift := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	assessments := []AssessmentRow{{ID: uuid.New(), TraineeID: stranger, ShiftDate: shift}}
	ratings := []RatingRow{{TraineeID: stranger, EPAID: uuid.New(), Level: 5, ShiftDate: shift}}

	stats := BreakdownByTrainee([]uuid.UUID{member}, assessments, ratings)
	require.Len(t, stats, 1)
	assert.Equal(t, 0, stats[member].Assessments)
}

func TestBreakdownByCohort_KeepsZeroCohorts(t *testing.T) {
	cohortA := uuid.New()
	cohortB := uuid.New()
	shift := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	assessments := []AssessmentRow{
		{ID: uuid.New(), TraineeID: uuid.New(), CohortID: &cohortA, ShiftDate: shift},
	}
	ratings := []RatingRow{
		{TraineeID: uuid.New(), CohortID: &cohortA, EPAID: uuid.New(), Level: 4, ShiftDate: shift},
	}

	stats := BreakdownByCohort([]uuid.UUID{cohortA, cohortB}, assessments, ratings)
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[cohortA].Assessments)
	assert.Equal(t, 0, stats[cohortB].Assessments)
	assert.Nil(t, stats[cohortB].AverageLevel)
}

func TestLevelDistribution(t *testing.T) {
	mk := func(level int) RatingRow {
		return RatingRow{TraineeID: uuid.New(), EPAID: uuid.New(), Level: level}
	}
	ratings := []RatingRow{mk(3), mk(3), mk(5)}

	dist := LevelDistribution(ratings)
	require.Len(t, dist, 2)

	assert.Equal(t, 3, dist[0].Level)
	assert.Equal(t, 2, dist[0].Count)
	assert.InDelta(t, 66.7, dist[0].Percentage, 1e-9)

	assert.Equal(t, 5, dist[1].Level)
	assert.Equal(t, 1, dist[1].Count)
	assert.InDelta(t, 33.3, dist[1].Percentage, 1e-9)
}

func TestLevelDistribution_Empty(t *testing.T) {
	assert.Empty(t, LevelDistribution(nil))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.33, Round2(10.0/3.0))
	assert.Equal(t, 4.0, Round2(4.0))
	assert.Nil(t, Round2Ptr(nil))
}
