package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	analyticsSvc "epanotes_backend/internals/features/analytics/service"
	assessmentsvc "epanotes_backend/internals/features/assessments/service"
)

/* =========================================================
 * REPORT ASSEMBLER
 *
 * Builds the CSV row sets handed to program offices. Column order is part of
 * the contract; downstream spreadsheets key on the headers, so never reorder
 * them. No-data cells are empty strings, true zero counts are "0".
 * ========================================================= */

type ReportAssembler struct {
	DB     *gorm.DB
	Engine *analyticsSvc.AggregationEngine
}

func NewReportAssembler(db *gorm.DB) *ReportAssembler {
	return &ReportAssembler{DB: db, Engine: analyticsSvc.NewAggregationEngine(db)}
}

type ExportFilters struct {
	ProgramID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	CohortID  *uuid.UUID
	TraineeID *uuid.UUID
}

var AssessmentExportHeader = []string{
	"Trainee Name", "Trainee Email", "Cohort", "Evaluator Name",
	"Assessment Date", "Location", "EPA Code", "EPA Title", "EPA Category",
	"Entrustment Level", "What Went Well", "What Could Improve",
	"Private Comments", "Assessment Created",
}

var CompetencyGridExportHeader = []string{
	"Trainee Name", "Cohort", "Core Competency", "Sub-Competency",
	"Avg Entrustment", "Assessment Count",
}

// AssessmentRows returns one row per rated EPA within the window, header first.
func (ra *ReportAssembler) AssessmentRows(f ExportFilters) ([][]string, error) {
	scoped := assessmentsvc.ProgramTraineeFilter(ra.DB, f.ProgramID).
		Where("assessment_shift_date >= ? AND assessment_shift_date <= ?", f.StartDate, f.EndDate)
	if f.CohortID != nil {
		scoped = scoped.Where(`assessment_trainee_id IN (
			SELECT user_id FROM users WHERE user_cohort_id = ?
		)`, *f.CohortID)
	}
	if f.TraineeID != nil {
		scoped = scoped.Where("assessment_trainee_id = ?", *f.TraineeID)
	}

	var rows []struct {
		TraineeName      string    `gorm:"column:trainee_name"`
		TraineeEmail     string    `gorm:"column:trainee_email"`
		CohortName       *string   `gorm:"column:cohort_name"`
		EvaluatorName    string    `gorm:"column:evaluator_name"`
		ShiftDate        time.Time `gorm:"column:assessment_shift_date"`
		Location         *string   `gorm:"column:assessment_location"`
		EPACode          string    `gorm:"column:epa_code"`
		EPATitle         string    `gorm:"column:epa_title"`
		EPACategory      *string   `gorm:"column:epa_category_title"`
		EntrustmentLevel int       `gorm:"column:assessment_epa_entrustment_level"`
		WhatWentWell     string    `gorm:"column:assessment_epa_what_went_well"`
		WhatCouldImprove string    `gorm:"column:assessment_epa_what_could_improve"`
		PrivateComments  *string   `gorm:"column:assessment_private_comments"`
		CreatedAt        time.Time `gorm:"column:assessment_created_at"`
	}
	err := ra.DB.Table("assessment_epas").
		Select(`trainee.user_name AS trainee_name, trainee.user_email AS trainee_email,
			cohorts.cohort_name, evaluator.user_name AS evaluator_name,
			assessments.assessment_shift_date, assessments.assessment_location,
			epas.epa_code, epas.epa_title, epa_categories.epa_category_title,
			assessment_epas.assessment_epa_entrustment_level,
			assessment_epas.assessment_epa_what_went_well,
			assessment_epas.assessment_epa_what_could_improve,
			assessments.assessment_private_comments, assessments.assessment_created_at`).
		Joins("JOIN assessments ON assessments.assessment_id = assessment_epas.assessment_epa_assessment_id").
		Joins("JOIN users AS trainee ON trainee.user_id = assessments.assessment_trainee_id").
		Joins("LEFT JOIN cohorts ON cohorts.cohort_id = trainee.user_cohort_id").
		Joins("JOIN users AS evaluator ON evaluator.user_id = assessments.assessment_evaluator_id").
		Joins("JOIN epas ON epas.epa_id = assessment_epas.assessment_epa_epa_id").
		Joins("LEFT JOIN epa_categories ON epa_categories.epa_category_id = epas.epa_category_id").
		Where("assessment_epas.assessment_epa_assessment_id IN (?)", scoped.Select("assessment_id")).
		Order("assessments.assessment_shift_date ASC, trainee.user_name ASC, epas.epa_code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([][]string, 0, len(rows)+1)
	out = append(out, AssessmentExportHeader)
	for _, r := range rows {
		out = append(out, []string{
			r.TraineeName,
			r.TraineeEmail,
			strOrEmpty(r.CohortName),
			r.EvaluatorName,
			r.ShiftDate.Format("2006-01-02"),
			strOrEmpty(r.Location),
			r.EPACode,
			r.EPATitle,
			strOrEmpty(r.EPACategory),
			fmt.Sprintf("%d", r.EntrustmentLevel),
			r.WhatWentWell,
			r.WhatCouldImprove,
			strOrEmpty(r.PrivateComments),
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// CompetencyGridRows flattens every trainee's grid into one row per
// sub-competency. A sub with no ratings gets an empty average cell next to an
// explicit "0" count; the two mean different things to the reader.
func (ra *ReportAssembler) CompetencyGridRows(f ExportFilters) ([][]string, error) {
	trainees, err := ra.listTrainees(f)
	if err != nil {
		return nil, err
	}

	out := [][]string{CompetencyGridExportHeader}
	for _, t := range trainees {
		grid, err := ra.Engine.CompetencyGrid(t, &f.StartDate, &f.EndDate)
		if err != nil {
			return nil, err
		}
		for _, core := range grid.CoreCompetencies {
			for _, sub := range core.SubCompetencies {
				avg := ""
				if sub.AverageEntrustment != nil {
					avg = fmt.Sprintf("%.2f", *sub.AverageEntrustment)
				}
				out = append(out, []string{
					grid.TraineeName,
					strOrEmpty(grid.CohortName),
					fmt.Sprintf("%s: %s", core.Code, core.Title),
					fmt.Sprintf("%s: %s", sub.Code, sub.Title),
					avg,
					fmt.Sprintf("%d", sub.RatingsCount),
				})
			}
		}
	}
	return out, nil
}

func (ra *ReportAssembler) listTrainees(f ExportFilters) ([]uuid.UUID, error) {
	q := ra.DB.Table("users").
		Where("user_role = 'trainee' AND user_program_id = ? AND user_deactivated_at IS NULL", f.ProgramID)
	if f.CohortID != nil {
		q = q.Where("user_cohort_id = ?", *f.CohortID)
	}
	if f.TraineeID != nil {
		q = q.Where("user_id = ?", *f.TraineeID)
	}

	var ids []uuid.UUID
	if err := q.Order("user_name ASC").Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
