package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// Ticker is the part of time.Ticker the poller needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// MonitorUseCase polls monitored sites at a fixed interval.
type MonitorUseCase struct {
	sites     repository.MonitorRepository
	links     repository.LinkRepository
	console   types.ConsoleInterface
	exporter  *Exporter
	newTicker func(time.Duration) Ticker
	now       func() time.Time
}

// NewMonitorUseCase creates a new monitor use case.
func NewMonitorUseCase(
	sites repository.MonitorRepository,
	links repository.LinkRepository,
	console types.ConsoleInterface,
	exporter *Exporter,
) *MonitorUseCase {
	return &MonitorUseCase{
		sites:     sites,
		links:     links,
		console:   console,
		exporter:  exporter,
		newTicker: NewTimeTicker,
		now:       time.Now,
	}
}

// ListSites renders every monitored site.
func (uc *MonitorUseCase) ListSites(ctx context.Context) ([]entity.MonitoredSite, error) {
	status := uc.console.Status("Loading monitored sites...")
	sites, err := uc.sites.ListSites(ctx)
	status.Stop()
	if err != nil {
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}

	table := sitesTable(sites)
	if len(sites) == 0 {
		uc.console.LogInfo("No monitored sites yet")
	} else {
		uc.console.Print(renderTable(uc.console, table))
	}
	uc.exporter.Export(ctx, "sites", table)
	return sites, nil
}

// AddSite registers rawURL with the status monitor. name defaults to the host.
func (uc *MonitorUseCase) AddSite(ctx context.Context, name, rawURL string) (entity.MonitoredSite, error) {
	target, err := entity.NormalizeTargetURL(rawURL)
	if err != nil {
		return entity.MonitoredSite{}, apperrors.New(apperrors.TypeValidation, err, "%v", err)
	}
	if strings.TrimSpace(name) == "" {
		if u, err := url.Parse(target); err == nil {
			name = u.Hostname()
		}
	}

	site, err := uc.sites.CreateSite(ctx, entity.SiteRequest{Name: strings.TrimSpace(name), URL: target})
	if err != nil {
		return entity.MonitoredSite{}, fmt.Errorf("failed to add site: %w", err)
	}
	uc.console.LogSuccess("Monitoring %s as site %d", site.URL, site.ID)
	return site, nil
}

// Watch fetches the site immediately and then once per interval, calling
// render exactly once per fetch. Links are discovered once, after the first
// successful fetch. Fetch errors are rendered and polling goes on, except
// for an expired session, which stops the loop and is returned. Cancelling
// ctx stops the loop and returns nil.
func (uc *MonitorUseCase) Watch(ctx context.Context, siteID int, interval time.Duration, render func(entity.SiteSnapshot)) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	linksDone := false
	fetch := func(seq int) error {
		snap := entity.SiteSnapshot{Sequence: seq, SiteID: siteID}
		site, err := uc.sites.GetSite(ctx, siteID)
		snap.FetchedAt = uc.now()
		if err != nil {
			if apperrors.IsUnauthorized(err) || ctx.Err() != nil {
				return err
			}
			snap.Err = err.Error()
			render(snap)
			return nil
		}
		snap.Site = &site

		if !linksDone && uc.links != nil && site.URL != "" {
			linksDone = true
			report, err := uc.links.Discover(ctx, site.URL)
			if err != nil {
				snap.LinksErr = err.Error()
			} else {
				snap.Links = &report
			}
		}
		render(snap)
		return nil
	}

	stop := func(err error) error {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if err := fetch(1); err != nil {
		return stop(err)
	}

	ticker := uc.newTicker(interval)
	defer ticker.Stop()

	for seq := 2; ; seq++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			if err := fetch(seq); err != nil {
				return stop(err)
			}
		}
	}
}

// Once fetches and renders a single snapshot, including links.
func (uc *MonitorUseCase) Once(ctx context.Context, siteID int) (entity.SiteSnapshot, error) {
	var last entity.SiteSnapshot
	onceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	err := uc.Watch(onceCtx, siteID, time.Hour, func(s entity.SiteSnapshot) {
		last = s
		cancel()
	})
	if err != nil {
		return last, err
	}
	if last.Err != "" {
		return last, fmt.Errorf("failed to load site %d: %s", siteID, last.Err)
	}
	uc.RenderSnapshot(last)
	uc.exporter.Export(ctx, "site_"+strconv.Itoa(siteID), snapshotTable(last))
	return last, nil
}

// RenderSnapshot prints one poll result.
func (uc *MonitorUseCase) RenderSnapshot(s entity.SiteSnapshot) {
	title := fmt.Sprintf("Site %d · poll #%d · %s", s.SiteID, s.Sequence, s.FetchedAt.Format("15:04:05"))
	if s.Err != "" {
		uc.console.DisplayPanel(title, pterm.FgRed.Sprint("Fetch failed: ")+s.Err)
		return
	}
	if s.Site == nil {
		return
	}

	site := s.Site
	lines := []string{
		fmt.Sprintf("%s  %s", pterm.Bold.Sprint(orDash(site.Name)), site.URL),
		fmt.Sprintf("Status:        %s", colorSiteStatus(*site)),
		fmt.Sprintf("HTTP status:   %s", statusCode(site.StatusCode)),
		fmt.Sprintf("Response time: %s", formatMs(site.ResponseTimeMs)),
		fmt.Sprintf("Uptime:        %.2f%%", site.UptimePercentage),
		fmt.Sprintf("SSL:           %s", sslSummary(*site)),
		fmt.Sprintf("Last checked:  %s", formatTime(site.LastChecked)),
	}
	if s.Links != nil {
		lines = append(lines, fmt.Sprintf("Links:         %d internal, %d external", len(s.Links.Internal), len(s.Links.External)))
	} else if s.LinksErr != "" {
		lines = append(lines, "Links:         "+pterm.FgYellow.Sprint("unavailable ("+s.LinksErr+")"))
	}
	uc.console.DisplayPanel(title, strings.Join(lines, "\n"))
}

// DiscoverLinks runs link discovery for a page and renders the result.
func (uc *MonitorUseCase) DiscoverLinks(ctx context.Context, pageURL string) (entity.LinkReport, error) {
	status := uc.console.Status("Discovering links...")
	report, err := uc.links.Discover(ctx, pageURL)
	status.Stop()
	if err != nil {
		return entity.LinkReport{}, fmt.Errorf("link discovery failed: %w", err)
	}

	table := linksTable(report)
	uc.console.LogInfo("%s: %d internal, %d external links", report.PageURL, len(report.Internal), len(report.External))
	if report.Total() > 0 {
		uc.console.Print(renderTable(uc.console, table))
	}
	uc.exporter.Export(ctx, "links", table)
	return report, nil
}

func statusCode(code int) string {
	if code == 0 {
		return "-"
	}
	return strconv.Itoa(code)
}

func sslSummary(site entity.MonitoredSite) string {
	if site.SSLValid == nil {
		return "-"
	}
	if !*site.SSLValid {
		return pterm.FgRed.Sprint("invalid")
	}
	if site.SSLExpiresAt != nil {
		days := int(time.Until(*site.SSLExpiresAt).Hours() / 24)
		return fmt.Sprintf("%s (expires in %d days)", pterm.FgGreen.Sprint("valid"), days)
	}
	return pterm.FgGreen.Sprint("valid")
}

func sitesTable(sites []entity.MonitoredSite) entity.ExportTable {
	table := entity.ExportTable{
		Title:   "Monitored Sites",
		Headers: []string{"ID", "Name", "URL", "Status", "HTTP", "Response", "Uptime", "Last Checked"},
		Raw:     sites,
	}
	for _, s := range sites {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(s.ID),
			orDash(s.Name),
			s.URL,
			colorSiteStatus(s),
			statusCode(s.StatusCode),
			formatMs(s.ResponseTimeMs),
			fmt.Sprintf("%.2f%%", s.UptimePercentage),
			formatTime(s.LastChecked),
		})
	}
	return table
}

func snapshotTable(s entity.SiteSnapshot) entity.ExportTable {
	table := entity.ExportTable{
		Title:   fmt.Sprintf("Site %d status", s.SiteID),
		Headers: []string{"Field", "Value"},
		Raw:     s,
	}
	if s.Site == nil {
		return table
	}
	site := s.Site
	table.Rows = [][]string{
		{"Name", orDash(site.Name)},
		{"URL", site.URL},
		{"Status", site.NormalizedStatus()},
		{"HTTP status", statusCode(site.StatusCode)},
		{"Response time", formatMs(site.ResponseTimeMs)},
		{"Uptime", fmt.Sprintf("%.2f%%", site.UptimePercentage)},
		{"Last checked", formatTime(site.LastChecked)},
		{"Fetched at", s.FetchedAt.Format(time.RFC3339)},
	}
	if s.Links != nil {
		table.Rows = append(table.Rows,
			[]string{"Internal links", strconv.Itoa(len(s.Links.Internal))},
			[]string{"External links", strconv.Itoa(len(s.Links.External))})
	}
	return table
}

func linksTable(report entity.LinkReport) entity.ExportTable {
	table := entity.ExportTable{
		Title:   "Links on " + report.PageURL,
		Headers: []string{"Type", "URL"},
		Raw:     report,
	}
	for _, l := range report.Internal {
		table.Rows = append(table.Rows, []string{"internal", l})
	}
	for _, l := range report.External {
		table.Rows = append(table.Rows, []string{"external", l})
	}
	return table
}
