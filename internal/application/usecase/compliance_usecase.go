package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// ComplianceUseCase lists frameworks and reports and requests new reports.
type ComplianceUseCase struct {
	compliance repository.ComplianceRepository
	console    types.ConsoleInterface
	exporter   *Exporter
}

func NewComplianceUseCase(compliance repository.ComplianceRepository, console types.ConsoleInterface, exporter *Exporter) *ComplianceUseCase {
	return &ComplianceUseCase{compliance: compliance, console: console, exporter: exporter}
}

// ListFrameworks renders a coverage table and coverage bars.
func (uc *ComplianceUseCase) ListFrameworks(ctx context.Context) ([]entity.Framework, error) {
	status := uc.console.Status("Loading compliance frameworks...")
	frameworks, err := uc.compliance.ListFrameworks(ctx)
	status.Stop()
	if err != nil {
		return nil, fmt.Errorf("failed to load frameworks: %w", err)
	}
	if len(frameworks) == 0 {
		uc.console.LogInfo("No compliance frameworks configured")
		return frameworks, nil
	}

	table := frameworksTable(frameworks)
	uc.console.Print(renderTable(uc.console, table))
	uc.console.DisplayBars("Control coverage", coverageBars(frameworks))
	uc.exporter.Export(ctx, "frameworks", table)
	return frameworks, nil
}

// ListReports renders the generated reports, newest first as returned.
func (uc *ComplianceUseCase) ListReports(ctx context.Context) ([]entity.Report, error) {
	status := uc.console.Status("Loading compliance reports...")
	reports, err := uc.compliance.ListReports(ctx)
	status.Stop()
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	if len(reports) == 0 {
		uc.console.LogInfo("No compliance reports found")
		return reports, nil
	}

	table := reportsTable(reports)
	uc.console.Print(renderTable(uc.console, table))
	uc.exporter.Export(ctx, "reports", table)
	return reports, nil
}

// GenerateReport asks the API to build a report for a framework.
func (uc *ComplianceUseCase) GenerateReport(ctx context.Context, frameworkID int, reportType string) (entity.Report, error) {
	if frameworkID <= 0 {
		return entity.Report{}, apperrors.New(apperrors.TypeValidation, nil, "framework id is required")
	}
	reportType = strings.TrimSpace(reportType)
	if reportType == "" {
		return entity.Report{}, apperrors.New(apperrors.TypeValidation, nil, "report type is required")
	}

	report, err := uc.compliance.GenerateReport(ctx, entity.ReportRequest{FrameworkID: frameworkID, ReportType: reportType})
	if err != nil {
		return entity.Report{}, fmt.Errorf("failed to generate report: %w", err)
	}
	uc.console.LogSuccess("Report %d requested (%s)", report.ID, orDash(report.Status))
	return report, nil
}

func frameworksTable(frameworks []entity.Framework) entity.ExportTable {
	table := entity.ExportTable{
		Title:   "Compliance Frameworks",
		Headers: []string{"ID", "Code", "Name", "Controls", "Implemented", "Coverage", "Status"},
		Raw:     frameworks,
	}
	for _, f := range frameworks {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(f.ID),
			orDash(f.Code),
			f.Name,
			strconv.Itoa(f.TotalControls),
			strconv.Itoa(f.ImplementedControls),
			fmt.Sprintf("%.1f%%", f.Coverage()),
			orDash(f.Status),
		})
	}
	return table
}

func coverageBars(frameworks []entity.Framework) []types.Bar {
	bars := make([]types.Bar, 0, len(frameworks))
	for _, f := range frameworks {
		label := f.Code
		if label == "" {
			label = f.Name
		}
		bars = append(bars, types.Bar{Label: label, Value: f.Coverage(), Max: 100, Suffix: "%"})
	}
	return bars
}

func reportsTable(reports []entity.Report) entity.ExportTable {
	table := entity.ExportTable{
		Title:   "Compliance Reports",
		Headers: []string{"ID", "Title", "Framework", "Type", "Status", "Score", "Created", "File"},
		Raw:     reports,
	}
	for _, r := range reports {
		framework := r.FrameworkName
		if framework == "" {
			framework = "#" + strconv.Itoa(r.FrameworkID)
		}
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%.1f", *r.Score)
		}
		created := r.CreatedAt
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(r.ID),
			orDash(r.Title),
			framework,
			orDash(r.ReportType),
			orDash(r.Status),
			score,
			formatTime(&created),
			orDash(r.FileURL),
		})
	}
	return table
}
