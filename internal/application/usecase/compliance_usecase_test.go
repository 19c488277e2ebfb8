package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

func TestListFrameworks_CoverageBars(t *testing.T) {
	console := newFakeConsole()
	repo := &fakeCompliance{frameworks: []entity.Framework{
		{ID: 1, Code: "SOC2", TotalControls: 4, ImplementedControls: 1},
		{ID: 2, Name: "Internal", TotalControls: 0},
	}}
	uc := NewComplianceUseCase(repo, console, nil)

	_, err := uc.ListFrameworks(context.Background())
	require.NoError(t, err)

	bars := console.bars["Control coverage"]
	require.Len(t, bars, 2)
	assert.Equal(t, "SOC2", bars[0].Label)
	assert.Equal(t, 25.0, bars[0].Value)
	assert.Equal(t, "Internal", bars[1].Label)
	assert.Equal(t, 0.0, bars[1].Value)
	assert.Contains(t, console.output(), "25.0%")
}

func TestReportsTable(t *testing.T) {
	score := 87.5
	table := reportsTable([]entity.Report{{
		ID: 3, Title: "Q1", FrameworkID: 2, ReportType: "summary", Status: "completed",
		Score: &score, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}})
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "#2", table.Rows[0][2])
	assert.Equal(t, "87.5", table.Rows[0][5])
}

func TestGenerateReport(t *testing.T) {
	repo := &fakeCompliance{}
	uc := NewComplianceUseCase(repo, newFakeConsole(), nil)

	_, err := uc.GenerateReport(context.Background(), 0, "summary")
	assert.Equal(t, apperrors.TypeValidation, apperrors.TypeOf(err))
	_, err = uc.GenerateReport(context.Background(), 1, " ")
	assert.Equal(t, apperrors.TypeValidation, apperrors.TypeOf(err))
	assert.Empty(t, repo.requests)

	report, err := uc.GenerateReport(context.Background(), 2, "detailed")
	require.NoError(t, err)
	assert.Equal(t, 7, report.ID)
	assert.Equal(t, []entity.ReportRequest{{FrameworkID: 2, ReportType: "detailed"}}, repo.requests)
}
