package service

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"epanotes_backend/internals/features/analytics/dto"
	assessmentsvc "epanotes_backend/internals/features/assessments/service"
)

/* =========================================================
 * AGGREGATION ENGINE
 *
 * Loads an access-scoped set of assessments once, then rolls entrustment
 * statistics up the curriculum hierarchy. Rollup runs strictly in dependency
 * order: EPA stats first, then sub-competency, then core competency.
 * Program isolation comes from the assessments scope filter; the engine never
 * re-derives it.
 * ========================================================= */

var ErrTraineeNotFound = errors.New("trainee not found")

type AggregationEngine struct {
	DB *gorm.DB
}

func NewAggregationEngine(db *gorm.DB) *AggregationEngine { return &AggregationEngine{DB: db} }

// PerformanceFilters narrows the program-wide set.
type PerformanceFilters struct {
	Months    int
	CohortID  *uuid.UUID
	TraineeID *uuid.UUID
}

/* ===================== PROGRAM PERFORMANCE ===================== */

func (e *AggregationEngine) ProgramPerformance(programID uuid.UUID, f PerformanceFilters, now time.Time) (*dto.ProgramPerformanceResponse, error) {
	if f.Months <= 0 {
		f.Months = 6
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -f.Months, 0)

	program, err := e.loadProgram(programID)
	if err != nil {
		return nil, err
	}

	trainees, err := e.loadTrainees(programID, f.CohortID, f.TraineeID)
	if err != nil {
		return nil, err
	}
	cohorts, err := e.loadCohorts(programID, f.CohortID)
	if err != nil {
		return nil, err
	}

	assessments, err := e.loadAssessments(programID, f, &start, &end)
	if err != nil {
		return nil, err
	}
	ratings, err := e.loadRatings(programID, f, &start, &end)
	if err != nil {
		return nil, err
	}
	lifetime, err := e.loadLifetimeCounts(programID, f)
	if err != nil {
		return nil, err
	}

	// ---- metrics ----
	activeSet := make(map[uuid.UUID]struct{})
	for _, a := range assessments {
		activeSet[a.TraineeID] = struct{}{}
	}
	overall := Stat{}
	for _, r := range ratings {
		overall.Add(r.Level)
	}
	totalLifetime := 0
	for _, n := range lifetime {
		totalLifetime += n
	}
	completion := 0.0
	if len(trainees) > 0 {
		completion = Round2(float64(len(activeSet)) / float64(len(trainees)) * 100)
	}

	metrics := dto.ProgramMetrics{
		TotalTrainees:            len(trainees),
		ActiveTrainees:           len(activeSet),
		AssessmentsInPeriod:      len(assessments),
		TotalLifetimeAssessments: totalLifetime,
		AverageEntrustment:       Round2Ptr(overall.Average()),
		CompletionRate:           completion,
	}

	// ---- breakdowns (zero-assessment members stay in the list) ----
	traineeIDs := make([]uuid.UUID, 0, len(trainees))
	for _, t := range trainees {
		traineeIDs = append(traineeIDs, t.ID)
	}
	perTrainee := BreakdownByTrainee(traineeIDs, assessments, ratings)

	traineeItems := make([]dto.TraineeBreakdownItem, 0, len(trainees))
	for _, t := range trainees {
		st := perTrainee[t.ID]
		traineeItems = append(traineeItems, dto.TraineeBreakdownItem{
			TraineeID:           t.ID,
			Name:                t.Name,
			CohortName:          t.CohortName,
			AssessmentsInPeriod: st.Assessments,
			TotalRatings:        st.Ratings,
			AverageEntrustment:  st.AverageLevel,
			LastAssessmentDate:  st.LastShift,
		})
	}

	cohortIDs := make([]uuid.UUID, 0, len(cohorts))
	traineesPerCohort := make(map[uuid.UUID]int)
	for _, c := range cohorts {
		cohortIDs = append(cohortIDs, c.ID)
	}
	for _, t := range trainees {
		if t.CohortID != nil {
			traineesPerCohort[*t.CohortID]++
		}
	}
	perCohort := BreakdownByCohort(cohortIDs, assessments, ratings)

	cohortItems := make([]dto.CohortBreakdownItem, 0, len(cohorts))
	for _, c := range cohorts {
		st := perCohort[c.ID]
		cohortItems = append(cohortItems, dto.CohortBreakdownItem{
			CohortID:            c.ID,
			Name:                c.Name,
			TraineeCount:        traineesPerCohort[c.ID],
			AssessmentsInPeriod: st.Assessments,
			TotalRatings:        st.Ratings,
			AverageEntrustment:  st.AverageLevel,
		})
	}

	// ---- curriculum rollup: EPA → sub-competency → core competency ----
	curriculum, err := e.loadCurriculum(programID)
	if err != nil {
		return nil, err
	}
	subStats := GroupBySubCompetency(ratings, curriculum.EPAToSubs)

	coreItems := make([]dto.CoreCompetencyBreakdownItem, 0, len(curriculum.Cores))
	for _, core := range curriculum.Cores {
		var childAverages []*float64
		ratingsCount := 0
		for _, sub := range curriculum.SubsByCore[core.ID] {
			if st, ok := subStats[sub.ID]; ok {
				childAverages = append(childAverages, st.Average())
				ratingsCount += st.Count
			} else {
				childAverages = append(childAverages, nil)
			}
		}
		avg := CoreAverage(childAverages)
		item := dto.CoreCompetencyBreakdownItem{
			CoreCompetencyID:   core.ID,
			Code:               core.Code,
			Title:              core.Title,
			AverageEntrustment: Round2Ptr(avg),
			RatingsCount:       ratingsCount,
		}
		if avg != nil {
			tier := MilestoneTier(*avg)
			item.MilestoneTier = &tier
		}
		coreItems = append(coreItems, item)
	}

	return &dto.ProgramPerformanceResponse{
		Program: program,
		Timeframe: dto.Timeframe{
			Months:    f.Months,
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
		Metrics:                metrics,
		CohortBreakdown:        cohortItems,
		TraineeBreakdown:       traineeItems,
		CompetencyBreakdown:    coreItems,
		CompetencyDistribution: LevelDistribution(ratings),
		RecentTrends:           MonthlyTrend(assessments, ratings, start, end),
	}, nil
}

/* ===================== COMPETENCY GRID ===================== */

func (e *AggregationEngine) CompetencyGrid(traineeID uuid.UUID, start, end *time.Time) (*dto.CompetencyGridResponse, error) {
	trainee, err := e.loadTrainee(traineeID)
	if err != nil {
		return nil, err
	}
	if trainee.ProgramID == nil {
		return nil, ErrTraineeNotFound
	}

	f := PerformanceFilters{TraineeID: &traineeID}
	ratings, err := e.loadRatings(*trainee.ProgramID, f, start, end)
	if err != nil {
		return nil, err
	}

	curriculum, err := e.loadCurriculum(*trainee.ProgramID)
	if err != nil {
		return nil, err
	}

	// EPA stats feed sub-competency stats, which feed core stats.
	subStats := GroupBySubCompetency(ratings, curriculum.EPAToSubs)

	resp := &dto.CompetencyGridResponse{
		TraineeID:   trainee.ID,
		TraineeName: trainee.Name,
		CohortName:  trainee.CohortName,
	}
	if start != nil {
		s := start.Format("2006-01-02")
		resp.StartDate = &s
	}
	if end != nil {
		s := end.Format("2006-01-02")
		resp.EndDate = &s
	}

	for _, core := range curriculum.Cores {
		coreItem := dto.CoreCompetencyGridItem{
			CoreCompetencyID: core.ID,
			Code:             core.Code,
			Title:            core.Title,
		}
		var childAverages []*float64
		for _, sub := range curriculum.SubsByCore[core.ID] {
			subItem := dto.SubCompetencyGridItem{
				SubCompetencyID: sub.ID,
				Code:            sub.Code,
				Title:           sub.Title,
				EPACount:        curriculum.SubEPACount[sub.ID],
			}
			if st, ok := subStats[sub.ID]; ok && st.Count > 0 {
				avg := st.Average()
				subItem.AverageEntrustment = Round2Ptr(avg)
				tier := MilestoneTier(*avg)
				subItem.MilestoneTier = &tier
				subItem.RatingsCount = st.Count
				childAverages = append(childAverages, avg)
			} else {
				childAverages = append(childAverages, nil)
			}
			coreItem.SubCompetencies = append(coreItem.SubCompetencies, subItem)
		}
		if avg := CoreAverage(childAverages); avg != nil {
			coreItem.AverageEntrustment = Round2Ptr(avg)
			tier := MilestoneTier(*avg)
			coreItem.MilestoneTier = &tier
		}
		resp.CoreCompetencies = append(resp.CoreCompetencies, coreItem)
	}
	return resp, nil
}

/* ===================== loaders ===================== */

func (e *AggregationEngine) loadProgram(programID uuid.UUID) (dto.ProgramInfo, error) {
	var row struct {
		ProgramID           uuid.UUID `gorm:"column:program_id"`
		ProgramName         string    `gorm:"column:program_name"`
		ProgramAbbreviation *string   `gorm:"column:program_abbreviation"`
		ProgramSpecialty    string    `gorm:"column:program_specialty"`
	}
	if err := e.DB.Table("programs").
		Select("program_id, program_name, program_abbreviation, program_specialty").
		Where("program_id = ?", programID).
		Take(&row).Error; err != nil {
		return dto.ProgramInfo{}, err
	}
	return dto.ProgramInfo{
		ProgramID:    row.ProgramID,
		Name:         row.ProgramName,
		Abbreviation: row.ProgramAbbreviation,
		Specialty:    row.ProgramSpecialty,
	}, nil
}

type traineeInfo struct {
	ID         uuid.UUID  `gorm:"column:user_id"`
	Name       string     `gorm:"column:user_name"`
	ProgramID  *uuid.UUID `gorm:"column:user_program_id"`
	CohortID   *uuid.UUID `gorm:"column:user_cohort_id"`
	CohortName *string    `gorm:"column:cohort_name"`
}

func (e *AggregationEngine) loadTrainees(programID uuid.UUID, cohortID, traineeID *uuid.UUID) ([]traineeInfo, error) {
	q := e.DB.Table("users").
		Select("user_id, user_name, user_program_id, user_cohort_id, cohorts.cohort_name").
		Joins("LEFT JOIN cohorts ON cohorts.cohort_id = users.user_cohort_id").
		Where("users.user_role = 'trainee' AND users.user_program_id = ? AND users.user_deactivated_at IS NULL", programID)
	if cohortID != nil {
		q = q.Where("users.user_cohort_id = ?", *cohortID)
	}
	if traineeID != nil {
		q = q.Where("users.user_id = ?", *traineeID)
	}

	var rows []traineeInfo
	if err := q.Order("users.user_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *AggregationEngine) loadTrainee(traineeID uuid.UUID) (*traineeInfo, error) {
	var row traineeInfo
	err := e.DB.Table("users").
		Select("user_id, user_name, user_program_id, user_cohort_id, cohorts.cohort_name").
		Joins("LEFT JOIN cohorts ON cohorts.cohort_id = users.user_cohort_id").
		Where("users.user_id = ? AND users.user_role = 'trainee' AND users.user_deactivated_at IS NULL", traineeID).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTraineeNotFound
		}
		return nil, err
	}
	return &row, nil
}

type cohortInfo struct {
	ID   uuid.UUID `gorm:"column:cohort_id"`
	Name string    `gorm:"column:cohort_name"`
}

func (e *AggregationEngine) loadCohorts(programID uuid.UUID, cohortID *uuid.UUID) ([]cohortInfo, error) {
	q := e.DB.Table("cohorts").
		Select("cohort_id, cohort_name").
		Where("cohort_program_id = ?", programID)
	if cohortID != nil {
		q = q.Where("cohort_id = ?", *cohortID)
	}

	var rows []cohortInfo
	if err := q.Order("cohort_start_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// scoped builds the isolation filter shared with the access-scope resolver,
// plus the engine's optional narrowing.
func (e *AggregationEngine) scoped(programID uuid.UUID, f PerformanceFilters, start, end *time.Time) *gorm.DB {
	q := assessmentsvc.ProgramTraineeFilter(e.DB, programID)
	if f.CohortID != nil {
		q = q.Where(`assessment_trainee_id IN (
			SELECT user_id FROM users WHERE user_cohort_id = ?
		)`, *f.CohortID)
	}
	if f.TraineeID != nil {
		q = q.Where("assessment_trainee_id = ?", *f.TraineeID)
	}
	if start != nil {
		q = q.Where("assessment_shift_date >= ?", *start)
	}
	if end != nil {
		q = q.Where("assessment_shift_date <= ?", *end)
	}
	return q
}

func (e *AggregationEngine) loadAssessments(programID uuid.UUID, f PerformanceFilters, start, end *time.Time) ([]AssessmentRow, error) {
	var rows []struct {
		AssessmentID        uuid.UUID  `gorm:"column:assessment_id"`
		AssessmentTraineeID uuid.UUID  `gorm:"column:assessment_trainee_id"`
		UserCohortID        *uuid.UUID `gorm:"column:user_cohort_id"`
		AssessmentShiftDate time.Time  `gorm:"column:assessment_shift_date"`
	}
	err := e.scoped(programID, f, start, end).
		Select("assessment_id, assessment_trainee_id, users.user_cohort_id, assessment_shift_date").
		Joins("JOIN users ON users.user_id = assessments.assessment_trainee_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]AssessmentRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, AssessmentRow{
			ID:        r.AssessmentID,
			TraineeID: r.AssessmentTraineeID,
			CohortID:  r.UserCohortID,
			ShiftDate: r.AssessmentShiftDate,
		})
	}
	return out, nil
}

func (e *AggregationEngine) loadRatings(programID uuid.UUID, f PerformanceFilters, start, end *time.Time) ([]RatingRow, error) {
	scoped := e.scoped(programID, f, start, end).Select("assessment_id")

	var rows []struct {
		AssessmentEPAAssessmentID uuid.UUID  `gorm:"column:assessment_epa_assessment_id"`
		AssessmentTraineeID       uuid.UUID  `gorm:"column:assessment_trainee_id"`
		UserCohortID              *uuid.UUID `gorm:"column:user_cohort_id"`
		AssessmentEPAEPAID        uuid.UUID  `gorm:"column:assessment_epa_epa_id"`
		EntrustmentLevel          int        `gorm:"column:assessment_epa_entrustment_level"`
		AssessmentShiftDate       time.Time  `gorm:"column:assessment_shift_date"`
	}
	err := e.DB.Table("assessment_epas").
		Select(`assessment_epa_assessment_id, assessments.assessment_trainee_id, users.user_cohort_id,
			assessment_epa_epa_id, assessment_epa_entrustment_level, assessments.assessment_shift_date`).
		Joins("JOIN assessments ON assessments.assessment_id = assessment_epas.assessment_epa_assessment_id").
		Joins("JOIN users ON users.user_id = assessments.assessment_trainee_id").
		Where("assessment_epa_assessment_id IN (?)", scoped).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]RatingRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, RatingRow{
			AssessmentID: r.AssessmentEPAAssessmentID,
			TraineeID:    r.AssessmentTraineeID,
			CohortID:     r.UserCohortID,
			EPAID:        r.AssessmentEPAEPAID,
			Level:        r.EntrustmentLevel,
			ShiftDate:    r.AssessmentShiftDate,
		})
	}
	return out, nil
}

// loadLifetimeCounts ignores the date window on purpose: mixing it up with the
// in-period count is exactly the dashboard bug this engine exists to prevent.
func (e *AggregationEngine) loadLifetimeCounts(programID uuid.UUID, f PerformanceFilters) (map[uuid.UUID]int, error) {
	var rows []struct {
		AssessmentTraineeID uuid.UUID `gorm:"column:assessment_trainee_id"`
		N                   int       `gorm:"column:n"`
	}
	err := e.scoped(programID, f, nil, nil).
		Select("assessment_trainee_id, COUNT(*) AS n").
		Group("assessment_trainee_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		out[r.AssessmentTraineeID] = r.N
	}
	return out, nil
}

/* ===================== curriculum ===================== */

type competencyRef struct {
	ID    uuid.UUID
	Code  string
	Title string
}

type curriculumData struct {
	Cores       []competencyRef
	SubsByCore  map[uuid.UUID][]competencyRef
	EPAToSubs   map[uuid.UUID][]uuid.UUID
	SubEPACount map[uuid.UUID]int
}

func (e *AggregationEngine) loadCurriculum(programID uuid.UUID) (*curriculumData, error) {
	data := &curriculumData{
		SubsByCore:  make(map[uuid.UUID][]competencyRef),
		EPAToSubs:   make(map[uuid.UUID][]uuid.UUID),
		SubEPACount: make(map[uuid.UUID]int),
	}

	var cores []struct {
		CoreCompetencyID    uuid.UUID `gorm:"column:core_competency_id"`
		CoreCompetencyCode  string    `gorm:"column:core_competency_code"`
		CoreCompetencyTitle string    `gorm:"column:core_competency_title"`
	}
	if err := e.DB.Table("core_competencies").
		Select("core_competency_id, core_competency_code, core_competency_title").
		Where("core_competency_program_id = ?", programID).
		Order("core_competency_code ASC").
		Find(&cores).Error; err != nil {
		return nil, err
	}
	for _, c := range cores {
		data.Cores = append(data.Cores, competencyRef{ID: c.CoreCompetencyID, Code: c.CoreCompetencyCode, Title: c.CoreCompetencyTitle})
	}

	var subs []struct {
		SubCompetencyID               uuid.UUID `gorm:"column:sub_competency_id"`
		SubCompetencyCoreCompetencyID uuid.UUID `gorm:"column:sub_competency_core_competency_id"`
		SubCompetencyCode             string    `gorm:"column:sub_competency_code"`
		SubCompetencyTitle            string    `gorm:"column:sub_competency_title"`
	}
	if err := e.DB.Table("sub_competencies").
		Select("sub_competency_id, sub_competency_core_competency_id, sub_competency_code, sub_competency_title").
		Where("sub_competency_program_id = ?", programID).
		Order("sub_competency_code ASC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	subIDs := make(map[uuid.UUID]struct{}, len(subs))
	for _, s := range subs {
		data.SubsByCore[s.SubCompetencyCoreCompetencyID] = append(
			data.SubsByCore[s.SubCompetencyCoreCompetencyID],
			competencyRef{ID: s.SubCompetencyID, Code: s.SubCompetencyCode, Title: s.SubCompetencyTitle},
		)
		subIDs[s.SubCompetencyID] = struct{}{}
	}

	var pairs []struct {
		SubCompetencyEPASubCompetencyID uuid.UUID `gorm:"column:sub_competency_epa_sub_competency_id"`
		SubCompetencyEPAEPAID           uuid.UUID `gorm:"column:sub_competency_epa_epa_id"`
	}
	if err := e.DB.Table("sub_competency_epas").
		Select("sub_competency_epa_sub_competency_id, sub_competency_epa_epa_id").
		Find(&pairs).Error; err != nil {
		return nil, err
	}
	for _, p := range pairs {
		// Mapping rows of other programs are skipped.
		if _, ok := subIDs[p.SubCompetencyEPASubCompetencyID]; !ok {
			continue
		}
		data.EPAToSubs[p.SubCompetencyEPAEPAID] = append(data.EPAToSubs[p.SubCompetencyEPAEPAID], p.SubCompetencyEPASubCompetencyID)
		data.SubEPACount[p.SubCompetencyEPASubCompetencyID]++
	}

	// Sub lists stay in code order per core for stable output.
	for coreID := range data.SubsByCore {
		list := data.SubsByCore[coreID]
		sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
		data.SubsByCore[coreID] = list
	}
	return data, nil
}
