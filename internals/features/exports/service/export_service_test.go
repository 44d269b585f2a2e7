package service

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The column sets are consumed by downstream spreadsheets; any change here is
// a breaking change for them.
func TestAssessmentExportHeaderContract(t *testing.T) {
	assert.Equal(t, []string{
		"Trainee Name", "Trainee Email", "Cohort", "Evaluator Name",
		"Assessment Date", "Location", "EPA Code", "EPA Title", "EPA Category",
		"Entrustment Level", "What Went Well", "What Could Improve",
		"Private Comments", "Assessment Created",
	}, AssessmentExportHeader)
}

func TestCompetencyGridExportHeaderContract(t *testing.T) {
	assert.Equal(t, []string{
		"Trainee Name", "Cohort", "Core Competency", "Sub-Competency",
		"Avg Entrustment", "Assessment Count",
	}, CompetencyGridExportHeader)
}

func TestStrOrEmpty(t *testing.T) {
	assert.Equal(t, "", strOrEmpty(nil))
	s := "ED North"
	assert.Equal(t, "ED North", strOrEmpty(&s))
}

func TestCSVEscapesFreeText(t *testing.T) {
	rows := [][]string{
		CompetencyGridExportHeader,
		{"Rivera, Sam", "", `PC: "Patient Care"`, "PC-1: Emergency stabilization", "", "0"},
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(rows))

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, rows[1], parsed[1], "commas and quotes in feedback must round-trip")

	// Empty average with an explicit "0" count: no data vs true zero.
	assert.Equal(t, "", parsed[1][4])
	assert.Equal(t, "0", parsed[1][5])
}
