package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/opticini/opticini-cli/internal/application/audit"
	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// AuditUseCase renders the security audit projection kept by the orchestrator.
type AuditUseCase struct {
	orch     *audit.Orchestrator
	console  types.ConsoleInterface
	exporter *Exporter
}

func NewAuditUseCase(orch *audit.Orchestrator, console types.ConsoleInterface, exporter *Exporter) *AuditUseCase {
	return &AuditUseCase{orch: orch, console: console, exporter: exporter}
}

// Start begins an audit. With watch set it keeps polling every interval and
// re-renders on each change until the audit finishes or ctx is cancelled.
func (uc *AuditUseCase) Start(ctx context.Context, rawURL string, watch bool, interval time.Duration) (entity.AuditState, error) {
	if err := uc.orch.Restore(); err != nil {
		uc.console.LogWarning("Ignoring saved audit state: %s", err)
	}

	state, err := uc.orch.StartAudit(ctx, rawURL)
	if err != nil {
		return state, err
	}
	uc.console.LogSuccess("Security audit %s started for %s", state.AuditID, state.URL)
	uc.Render(state)

	if !watch {
		uc.console.LogInfo("Run `opticini audit status --refresh` to follow progress")
		return state, nil
	}
	return uc.watch(ctx, interval)
}

// Status shows the saved audit. refresh fetches the latest server status
// first; watch keeps polling until the audit finishes.
func (uc *AuditUseCase) Status(ctx context.Context, refresh, watch bool, interval time.Duration) (entity.AuditState, error) {
	if err := uc.orch.Restore(); err != nil {
		return entity.AuditState{}, fmt.Errorf("failed to load audit state: %w", err)
	}

	state := uc.orch.Snapshot()
	if state.AuditID == "" {
		uc.console.LogInfo("No security audit yet. Start one with `opticini audit start <url>`")
		return state, nil
	}

	if watch {
		uc.Render(state)
		return uc.watch(ctx, interval)
	}

	if refresh {
		if _, err := uc.orch.Refresh(ctx); err != nil {
			return state, err
		}
		state = uc.orch.Snapshot()
	}
	uc.Render(state)
	uc.export(ctx, state)
	return state, nil
}

// Clear drops the saved audit results.
func (uc *AuditUseCase) Clear() error {
	if err := uc.orch.ClearResults(); err != nil {
		return err
	}
	uc.console.LogSuccess("Audit results cleared")
	return nil
}

func (uc *AuditUseCase) watch(ctx context.Context, interval time.Duration) (entity.AuditState, error) {
	err := uc.orch.Watch(ctx, interval, uc.Render)
	state := uc.orch.Snapshot()
	if errors.Is(err, context.Canceled) {
		uc.console.LogInfo("Stopped watching; the audit keeps running on the server")
		return state, nil
	}
	if err != nil {
		return state, err
	}
	uc.export(ctx, state)
	return state, nil
}

// Render prints the overall status, per-category scans and findings.
func (uc *AuditUseCase) Render(state entity.AuditState) {
	totals := state.ScanTotals()
	lines := []string{
		fmt.Sprintf("URL:       %s", orDash(state.URL)),
		fmt.Sprintf("Status:    %s", colorAuditStatus(state.Status)),
		fmt.Sprintf("Scans:     %d completed, %d running, %d pending, %d failed",
			totals[entity.ScanCompleted], totals[entity.ScanRunning], totals[entity.ScanPending], totals[entity.ScanFailed]),
		fmt.Sprintf("Started:   %s", formatTime(state.StartedAt)),
		fmt.Sprintf("Completed: %s", formatTime(state.CompletedAt)),
	}
	if state.Error != "" {
		lines = append(lines, pterm.FgRed.Sprint("Error:     ")+state.Error)
	}
	uc.console.DisplayPanel("Security audit "+state.AuditID, strings.Join(lines, "\n"))

	if len(state.Scans) > 0 {
		uc.console.Print(renderTable(uc.console, scansTable(state)))
	}
	uc.console.DisplayBars("Findings by severity", severityBars(state.Counts))

	if findings := findingsTable(state); len(findings.Rows) > 0 {
		uc.console.Print(renderTable(uc.console, findings))
	}
}

func (uc *AuditUseCase) export(ctx context.Context, state entity.AuditState) {
	if !uc.exporter.Enabled() || state.AuditID == "" {
		return
	}
	uc.exporter.Export(ctx, "audit_findings", findingsTable(state))
}

func colorAuditStatus(s entity.AuditStatus) string {
	switch s {
	case entity.AuditCompleted:
		return pterm.FgGreen.Sprint(string(s))
	case entity.AuditFailed:
		return pterm.FgRed.Sprint(string(s))
	case entity.AuditRunning:
		return pterm.FgCyan.Sprint(string(s))
	default:
		return pterm.FgGray.Sprint(string(s))
	}
}

func scansTable(state entity.AuditState) entity.ExportTable {
	table := entity.ExportTable{
		Title:   "Scans",
		Headers: []string{"Category", "Scan", "Status", "Findings", "Error"},
	}
	for _, cat := range state.Categories() {
		for _, scan := range state.Scans[cat] {
			table.Rows = append(table.Rows, []string{
				cat,
				orDash(scan.Name),
				colorScanStatus(scan.Status),
				fmt.Sprintf("%d", len(scan.Findings)),
				orDash(scan.Error),
			})
		}
	}
	return table
}

func findingsTable(state entity.AuditState) entity.ExportTable {
	findings := state.Findings()
	table := entity.ExportTable{
		Title:   "Security findings for " + orDash(state.URL),
		Headers: []string{"Severity", "Category", "Title", "Recommendation"},
		Raw:     state,
	}
	for _, f := range findings {
		table.Rows = append(table.Rows, []string{
			colorSeverity(f.Severity),
			orDash(f.Category),
			f.Title,
			orDash(f.Recommendation),
		})
	}
	return table
}

func severityBars(counts entity.SeverityCounts) []types.Bar {
	bars := make([]types.Bar, 0, len(entity.Severities))
	for _, sev := range entity.Severities {
		bars = append(bars, types.Bar{Label: string(sev), Value: float64(counts.Get(sev))})
	}
	return bars
}
