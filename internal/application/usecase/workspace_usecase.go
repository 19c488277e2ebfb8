package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// WorkspaceOptions carries the settings shown in the configuration panel.
type WorkspaceOptions struct {
	APIBaseURL string
	TokenFile  string
	AWSProfile string
}

// WorkspaceUseCase assembles the overview dashboard.
type WorkspaceUseCase struct {
	sites        repository.MonitorRepository
	compliance   repository.ComplianceRepository
	integrations repository.IntegrationRepository
	auditState   repository.AuditStateRepository
	cloud        repository.CloudRepository
	console      types.ConsoleInterface
	opts         WorkspaceOptions
	now          func() time.Time
}

// NewWorkspaceUseCase creates a new workspace use case. cloud may be nil.
func NewWorkspaceUseCase(
	sites repository.MonitorRepository,
	compliance repository.ComplianceRepository,
	integrations repository.IntegrationRepository,
	auditState repository.AuditStateRepository,
	cloud repository.CloudRepository,
	console types.ConsoleInterface,
	opts WorkspaceOptions,
) *WorkspaceUseCase {
	return &WorkspaceUseCase{
		sites:        sites,
		compliance:   compliance,
		integrations: integrations,
		auditState:   auditState,
		cloud:        cloud,
		console:      console,
		opts:         opts,
		now:          time.Now,
	}
}

// workspaceData holds every independent fetch and its error.
type workspaceData struct {
	sites           []entity.MonitoredSite
	sitesErr        error
	frameworks      []entity.Framework
	frameworksErr   error
	integrations    []entity.CommunicationIntegration
	integrationsErr error
	spend           *entity.CloudSpend
	spendErr        error
	audit           *entity.AuditState
	auditErr        error
}

// Build fetches everything concurrently and returns the panels. A failed
// fetch only marks its panels unavailable. If any fetch hit an expired
// session the whole overview is abandoned with that error.
func (uc *WorkspaceUseCase) Build(ctx context.Context) (entity.Workspace, error) {
	d, err := uc.fetch(ctx)
	if err != nil {
		return entity.Workspace{}, err
	}

	var merr *multierror.Error
	for _, err := range []error{d.sitesErr, d.frameworksErr, d.integrationsErr, d.spendErr, d.auditErr} {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		uc.console.LogWarning("Some panels are unavailable: %s", err)
	}

	return entity.Workspace{
		GeneratedAt: uc.now(),
		Panels: []entity.Panel{
			analyticsPanel(d.sites, d.sitesErr, d.spend, d.spendErr),
			compliancePanel(d.frameworks, d.frameworksErr),
			configurationPanel(uc.opts, d.integrations, d.integrationsErr),
			healthPanel(d.sites, d.sitesErr),
			securityPanel(d.audit, d.auditErr),
		},
	}, nil
}

// Show builds and renders the overview.
func (uc *WorkspaceUseCase) Show(ctx context.Context) (entity.Workspace, error) {
	status := uc.console.Status("Loading workspace...")
	ws, err := uc.Build(ctx)
	status.Stop()
	if err != nil {
		return ws, err
	}

	for _, p := range ws.Panels {
		body := strings.Join(p.Lines, "\n")
		if p.Err != nil {
			body = pterm.FgYellow.Sprint("unavailable: ") + p.Err.Error()
		}
		uc.console.DisplayPanel(p.Title, body)
		if p.Err == nil && len(p.Bars) > 0 {
			uc.console.DisplayBars(p.Title, p.Bars)
		}
	}
	uc.console.LogInfo("Generated at %s", ws.GeneratedAt.Format("2006-01-02 15:04:05"))
	return ws, nil
}

// fetch runs every panel fetch concurrently. A panel failure is kept on d and
// leaves the others running; an expired session is returned from the group so
// gctx cancels the fetches still in flight.
func (uc *WorkspaceUseCase) fetch(ctx context.Context) (workspaceData, error) {
	var d workspaceData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.sites, d.sitesErr = uc.sites.ListSites(gctx)
		d.sitesErr = panelError("sites", d.sitesErr)
		return sessionError(d.sitesErr)
	})
	g.Go(func() error {
		d.frameworks, d.frameworksErr = uc.compliance.ListFrameworks(gctx)
		d.frameworksErr = panelError("frameworks", d.frameworksErr)
		return sessionError(d.frameworksErr)
	})
	g.Go(func() error {
		d.integrations, d.integrationsErr = uc.integrations.ListIntegrations(gctx)
		d.integrationsErr = panelError("integrations", d.integrationsErr)
		return sessionError(d.integrationsErr)
	})
	if uc.cloud != nil && uc.opts.AWSProfile != "" {
		g.Go(func() error {
			spend, err := uc.cloud.GetSpend(gctx, uc.opts.AWSProfile)
			if err != nil {
				d.spendErr = panelError("cloud spend", err)
				return nil
			}
			d.spend = &spend
			return nil
		})
	}
	if uc.auditState != nil {
		g.Go(func() error {
			d.audit, d.auditErr = uc.auditState.Load()
			d.auditErr = panelError("audit state", d.auditErr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return workspaceData{}, err
	}
	return d, nil
}

func panelError(panel string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", panel, err)
}

func sessionError(err error) error {
	if apperrors.IsUnauthorized(err) {
		return err
	}
	return nil
}

func analyticsPanel(sites []entity.MonitoredSite, sitesErr error, spend *entity.CloudSpend, spendErr error) entity.Panel {
	p := entity.Panel{Name: entity.PanelAnalytics, Title: "Analytics"}
	if sitesErr != nil {
		p.Err = sitesErr
		return p
	}

	var uptime, response float64
	measured := 0
	for _, s := range sites {
		uptime += s.UptimePercentage
		if s.ResponseTimeMs > 0 {
			response += s.ResponseTimeMs
			measured++
		}
	}
	p.Lines = append(p.Lines, fmt.Sprintf("Monitored sites:       %d", len(sites)))
	if len(sites) > 0 {
		p.Lines = append(p.Lines, fmt.Sprintf("Average uptime:        %.2f%%", uptime/float64(len(sites))))
	}
	if measured > 0 {
		p.Lines = append(p.Lines, fmt.Sprintf("Average response time: %s", formatMs(response/float64(measured))))
	}

	switch {
	case spendErr != nil:
		p.Lines = append(p.Lines, pterm.FgYellow.Sprint("Cloud spend unavailable: ")+spendErr.Error())
	case spend != nil:
		p.Lines = append(p.Lines, spendLines(*spend)...)
		for _, svc := range spend.TopServices(5) {
			p.Bars = append(p.Bars, types.Bar{Label: svc.ServiceName, Value: svc.Cost.InexactFloat64(), Suffix: " USD"})
		}
	}
	return p
}

func spendLines(spend entity.CloudSpend) []string {
	lines := []string{
		fmt.Sprintf("AWS spend this month:  %s", formatMoney(spend.CurrentMonthCost)),
		fmt.Sprintf("AWS spend last month:  %s", formatMoney(spend.LastMonthCost)),
	}
	if pct, ok := spend.Change(); ok {
		change := formatPercent(pct)
		if pct.IsPositive() {
			change = pterm.FgRed.Sprint("+" + change)
		} else {
			change = pterm.FgGreen.Sprint(change)
		}
		lines = append(lines, fmt.Sprintf("Month over month:      %s", change))
	}
	for _, b := range spend.Budgets {
		switch {
		case b.Exceeded():
			lines = append(lines, pterm.FgRed.Sprintf("Budget %s exceeded: %s of %s", b.Name, formatMoney(b.Actual), formatMoney(b.Limit)))
		case b.ForecastExceeded():
			lines = append(lines, pterm.FgYellow.Sprintf("Budget %s forecast %s over %s", b.Name, formatMoney(b.Forecast), formatMoney(b.Limit)))
		}
	}
	return lines
}

func compliancePanel(frameworks []entity.Framework, err error) entity.Panel {
	p := entity.Panel{Name: entity.PanelCompliance, Title: "Compliance"}
	if err != nil {
		p.Err = err
		return p
	}
	if len(frameworks) == 0 {
		p.Lines = []string{"No frameworks configured"}
		return p
	}

	total, implemented := 0, 0
	for _, f := range frameworks {
		total += f.TotalControls
		implemented += f.ImplementedControls
	}
	overall := entity.Framework{TotalControls: total, ImplementedControls: implemented}
	p.Lines = []string{
		fmt.Sprintf("Frameworks:       %d", len(frameworks)),
		fmt.Sprintf("Overall coverage: %.1f%% (%d/%d controls)", overall.Coverage(), implemented, total),
	}
	p.Bars = coverageBars(frameworks)
	return p
}

func configurationPanel(opts WorkspaceOptions, integrations []entity.CommunicationIntegration, err error) entity.Panel {
	p := entity.Panel{Name: entity.PanelConfiguration, Title: "Configuration"}
	p.Lines = []string{
		fmt.Sprintf("API base URL: %s", opts.APIBaseURL),
		fmt.Sprintf("Token file:   %s", orDash(opts.TokenFile)),
		fmt.Sprintf("AWS profile:  %s", orDash(opts.AWSProfile)),
	}
	if err != nil {
		// settings are local, so the panel still renders
		p.Lines = append(p.Lines, pterm.FgYellow.Sprint("Integrations unavailable: ")+err.Error())
		return p
	}

	enabled := 0
	for _, in := range integrations {
		if in.Enabled {
			enabled++
		}
	}
	p.Lines = append(p.Lines, fmt.Sprintf("Integrations: %d (%d enabled)", len(integrations), enabled))
	for _, in := range integrations {
		state := pterm.FgGray.Sprint("disabled")
		if in.Enabled {
			state = pterm.FgGreen.Sprint("enabled")
		}
		p.Lines = append(p.Lines, fmt.Sprintf("  - %s [%s] %s", in.Name, orDash(in.Type), state))
	}
	return p
}

func healthPanel(sites []entity.MonitoredSite, err error) entity.Panel {
	p := entity.Panel{Name: entity.PanelHealth, Title: "Health"}
	if err != nil {
		p.Err = err
		return p
	}

	counts := map[string]int{}
	var down []string
	for _, s := range sites {
		st := s.NormalizedStatus()
		counts[st]++
		if st == entity.SiteStatusDown {
			down = append(down, fmt.Sprintf("  - %s (%s)", orDash(s.Name), s.URL))
		}
	}
	p.Lines = []string{fmt.Sprintf("Up: %s  Down: %s  Unknown: %d",
		pterm.FgGreen.Sprint(counts[entity.SiteStatusUp]),
		pterm.FgRed.Sprint(counts[entity.SiteStatusDown]),
		counts[entity.SiteStatusUnknown])}
	if len(down) > 0 {
		p.Lines = append(p.Lines, "Down sites:")
		p.Lines = append(p.Lines, down...)
	}
	p.Bars = []types.Bar{
		{Label: "up", Value: float64(counts[entity.SiteStatusUp])},
		{Label: "down", Value: float64(counts[entity.SiteStatusDown])},
		{Label: "unknown", Value: float64(counts[entity.SiteStatusUnknown])},
	}
	return p
}

func securityPanel(state *entity.AuditState, err error) entity.Panel {
	p := entity.Panel{Name: entity.PanelSecurity, Title: "Security"}
	if err != nil {
		p.Err = err
		return p
	}
	if state == nil || state.AuditID == "" {
		p.Lines = []string{"No security audit yet"}
		return p
	}

	p.Lines = []string{
		fmt.Sprintf("Last audit: %s (%s)", orDash(state.URL), colorAuditStatus(state.Status)),
		fmt.Sprintf("Findings:   %d", state.Counts.Total()),
	}
	if state.CompletedAt != nil {
		p.Lines = append(p.Lines, fmt.Sprintf("Finished:   %s", formatTime(state.CompletedAt)))
	}
	p.Bars = severityBars(state.Counts)
	return p
}
