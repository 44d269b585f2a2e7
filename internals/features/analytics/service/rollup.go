package service

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"epanotes_backend/internals/features/analytics/dto"
)

/* =========================================================
 * ROLLUP PRIMITIVES
 *
 * Pure math over already-loaded rows. "No data" is nil, never 0.0: zero is
 * outside the 1–5 entrustment domain and would corrupt comparisons and
 * colorings downstream. Accumulation keeps full precision; rounding to two
 * decimals happens only at response building.
 * ========================================================= */

// AssessmentRow is one encounter, as the engine sees it.
type AssessmentRow struct {
	ID        uuid.UUID
	TraineeID uuid.UUID
	CohortID  *uuid.UUID
	ShiftDate time.Time
}

// RatingRow is one rated EPA within an encounter.
type RatingRow struct {
	AssessmentID uuid.UUID
	TraineeID    uuid.UUID
	CohortID     *uuid.UUID
	EPAID        uuid.UUID
	Level        int
	ShiftDate    time.Time
}

// Stat accumulates entrustment levels for one bucket.
type Stat struct {
	Sum   int
	Count int
}

func (s *Stat) Add(level int) {
	s.Sum += level
	s.Count++
}

// Average is nil when no ratings matched.
func (s Stat) Average() *float64 {
	if s.Count == 0 {
		return nil
	}
	avg := float64(s.Sum) / float64(s.Count)
	return &avg
}

// MilestoneTier maps a continuous average onto the discrete 0.5-step milestone
// scale, clamped to [1.0, 5.0].
func MilestoneTier(avg float64) float64 {
	tier := math.Round(avg*2) / 2
	if tier < 1.0 {
		return 1.0
	}
	if tier > 5.0 {
		return 5.0
	}
	return tier
}

// Round2 is the display rounding convention.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func Round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}

/* =========================================================
 * EPA → SUB-COMPETENCY
 * ========================================================= */

// GroupBySubCompetency folds ratings into per-sub-competency stats via the
// EPA mapping. An EPA mapped to several sub-competencies contributes to each.
func GroupBySubCompetency(ratings []RatingRow, epaToSubs map[uuid.UUID][]uuid.UUID) map[uuid.UUID]*Stat {
	out := make(map[uuid.UUID]*Stat)
	for _, r := range ratings {
		for _, subID := range epaToSubs[r.EPAID] {
			st, ok := out[subID]
			if !ok {
				st = &Stat{}
				out[subID] = st
			}
			st.Add(r.Level)
		}
	}
	return out
}

/* =========================================================
 * SUB-COMPETENCY → CORE COMPETENCY
 * ========================================================= */

// CoreAverage is the unweighted mean of child sub-competency averages that
// have data: each sub-competency counts equally regardless of rating volume.
func CoreAverage(subAverages []*float64) *float64 {
	sum := 0.0
	n := 0
	for _, a := range subAverages {
		if a == nil {
			continue
		}
		sum += *a
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

/* =========================================================
 * TIME-BUCKETED TREND
 * ========================================================= */

// MonthlyTrend partitions the window into calendar months by shift date, in
// strictly ascending order. Months without data appear with a zero count and
// nil average instead of being omitted.
func MonthlyTrend(assessments []AssessmentRow, ratings []RatingRow, start, end time.Time) []dto.MonthBucket {
	if end.Before(start) {
		return nil
	}

	counts := make(map[string]int)
	stats := make(map[string]*Stat)
	for _, a := range assessments {
		counts[a.ShiftDate.Format("2006-01")]++
	}
	for _, r := range ratings {
		key := r.ShiftDate.Format("2006-01")
		st, ok := stats[key]
		if !ok {
			st = &Stat{}
			stats[key] = st
		}
		st.Add(r.Level)
	}

	var out []dto.MonthBucket
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		key := cur.Format("2006-01")
		bucket := dto.MonthBucket{Month: key, Assessments: counts[key]}
		if st, ok := stats[key]; ok {
			bucket.AverageLevel = Round2Ptr(st.Average())
		}
		out = append(out, bucket)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

/* =========================================================
 * COHORT / TRAINEE BREAKDOWNS
 * ========================================================= */

type MemberStat struct {
	Assessments  int
	Ratings      int
	AverageLevel *float64
	LastShift    *time.Time
}

// BreakdownByTrainee computes per-trainee stats over the filtered set.
// memberIDs fixes the population: a trainee with zero matching assessments
// still appears with explicit zero/no-data fields.
func BreakdownByTrainee(memberIDs []uuid.UUID, assessments []AssessmentRow, ratings []RatingRow) map[uuid.UUID]MemberStat {
	out := make(map[uuid.UUID]MemberStat, len(memberIDs))
	acc := make(map[uuid.UUID]*memberAccum, len(memberIDs))
	for _, id := range memberIDs {
		acc[id] = &memberAccum{}
	}

	for _, a := range assessments {
		m, ok := acc[a.TraineeID]
		if !ok {
			continue
		}
		m.assessments++
		if m.lastShift == nil || a.ShiftDate.After(*m.lastShift) {
			d := a.ShiftDate
			m.lastShift = &d
		}
	}
	for _, r := range ratings {
		if m, ok := acc[r.TraineeID]; ok {
			m.stat.Add(r.Level)
		}
	}

	for id, m := range acc {
		out[id] = MemberStat{
			Assessments:  m.assessments,
			Ratings:      m.stat.Count,
			AverageLevel: Round2Ptr(m.stat.Average()),
			LastShift:    m.lastShift,
		}
	}
	return out
}

// BreakdownByCohort does the same per cohort.
func BreakdownByCohort(cohortIDs []uuid.UUID, assessments []AssessmentRow, ratings []RatingRow) map[uuid.UUID]MemberStat {
	out := make(map[uuid.UUID]MemberStat, len(cohortIDs))
	acc := make(map[uuid.UUID]*memberAccum, len(cohortIDs))
	for _, id := range cohortIDs {
		acc[id] = &memberAccum{}
	}

	for _, a := range assessments {
		if a.CohortID == nil {
			continue
		}
		if m, ok := acc[*a.CohortID]; ok {
			m.assessments++
		}
	}
	for _, r := range ratings {
		if r.CohortID == nil {
			continue
		}
		if m, ok := acc[*r.CohortID]; ok {
			m.stat.Add(r.Level)
		}
	}

	for id, m := range acc {
		out[id] = MemberStat{
			Assessments:  m.assessments,
			Ratings:      m.stat.Count,
			AverageLevel: Round2Ptr(m.stat.Average()),
		}
	}
	return out
}

type memberAccum struct {
	assessments int
	stat        Stat
	lastShift   *time.Time
}

/* =========================================================
 * LEVEL DISTRIBUTION
 * ========================================================= */

func LevelDistribution(ratings []RatingRow) []dto.LevelSlice {
	counts := make(map[int]int)
	total := 0
	for _, r := range ratings {
		counts[r.Level]++
		total++
	}

	levels := make([]int, 0, len(counts))
	for lvl := range counts {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)

	out := make([]dto.LevelSlice, 0, len(levels))
	for _, lvl := range levels {
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(counts[lvl])/float64(total)*1000) / 10
		}
		out = append(out, dto.LevelSlice{Level: lvl, Count: counts[lvl], Percentage: pct})
	}
	return out
}
