package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// DiscoveryOptions selects the AWS account and regions to inventory.
type DiscoveryOptions struct {
	Profile string
	Regions []string
	// Register creates a monitored site for every public HTTP endpoint.
	Register bool
	// CheckInterval is sent with registered sites, in seconds.
	CheckInterval int
}

// DiscoveryUseCase inventories reachable endpoints in an AWS account and
// optionally registers them with the status monitor.
type DiscoveryUseCase struct {
	cloud    repository.CloudRepository
	sites    repository.MonitorRepository
	console  types.ConsoleInterface
	exporter *Exporter
}

func NewDiscoveryUseCase(cloud repository.CloudRepository, sites repository.MonitorRepository, console types.ConsoleInterface, exporter *Exporter) *DiscoveryUseCase {
	return &DiscoveryUseCase{cloud: cloud, sites: sites, console: console, exporter: exporter}
}

// Discover runs the inventory and renders it.
func (uc *DiscoveryUseCase) Discover(ctx context.Context, opts DiscoveryOptions) (entity.CloudInventory, error) {
	inv := entity.CloudInventory{Profile: opts.Profile}

	status := uc.console.Status("Resolving AWS account...")
	accountID, err := uc.cloud.GetAccountID(ctx, opts.Profile)
	if err != nil {
		status.Stop()
		return inv, fmt.Errorf("failed to resolve AWS account: %w", err)
	}
	inv.AccountID = accountID

	inv.Regions = opts.Regions
	if len(inv.Regions) == 0 {
		status.Update("Listing accessible regions...")
		inv.Regions, err = uc.cloud.GetAccessibleRegions(ctx, opts.Profile)
		if err != nil {
			status.Stop()
			return inv, fmt.Errorf("failed to list regions: %w", err)
		}
	}

	status.Update(fmt.Sprintf("Discovering endpoints in %d regions...", len(inv.Regions)))
	inv.Endpoints, err = uc.cloud.DiscoverEndpoints(ctx, opts.Profile, inv.Regions)
	if err != nil {
		status.Stop()
		return inv, fmt.Errorf("endpoint discovery failed: %w", err)
	}

	status.Update("Summarising CloudWatch log groups...")
	inv.LogGroups, err = uc.cloud.GetLogGroupSummary(ctx, opts.Profile, inv.Regions)
	status.Stop()
	if err != nil {
		// the inventory is still useful without log groups
		uc.console.LogWarning("Log group summary unavailable: %s", err)
	}

	uc.render(inv)

	endpoints := endpointsTable(inv)
	uc.exporter.Export(ctx, "endpoints", endpoints)
	if len(inv.LogGroups) > 0 {
		uc.exporter.Export(ctx, "log_groups", logGroupsTable(inv.LogGroups))
	}

	if opts.Register {
		if _, err := uc.Register(ctx, inv.Endpoints, opts.CheckInterval); err != nil {
			return inv, err
		}
	}
	return inv, nil
}

// Register creates a monitored site for each public HTTP endpoint whose URL
// is not monitored yet, and returns the created sites.
func (uc *DiscoveryUseCase) Register(ctx context.Context, endpoints []entity.CloudEndpoint, checkInterval int) ([]entity.MonitoredSite, error) {
	existing, err := uc.sites.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load monitored sites: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[siteKey(s.URL)] = true
	}

	var created []entity.MonitoredSite
	skipped := 0
	for _, ep := range endpoints {
		u := ep.MonitorURL()
		if u == "" {
			continue
		}
		if known[siteKey(u)] {
			skipped++
			continue
		}
		known[siteKey(u)] = true

		site, err := uc.sites.CreateSite(ctx, entity.SiteRequest{
			Name:          fmt.Sprintf("%s %s (%s)", ep.Kind, ep.Name, ep.Region),
			URL:           u,
			CheckInterval: checkInterval,
		})
		if err != nil {
			return created, fmt.Errorf("failed to register %s: %w", u, err)
		}
		uc.console.LogSuccess("Registered %s as site %d", u, site.ID)
		created = append(created, site)
	}

	uc.console.LogInfo("%d sites registered, %d already monitored", len(created), skipped)
	return created, nil
}

func (uc *DiscoveryUseCase) render(inv entity.CloudInventory) {
	public := 0
	for _, ep := range inv.Endpoints {
		if ep.Public {
			public++
		}
	}
	uc.console.DisplayPanel("AWS account "+inv.AccountID, strings.Join([]string{
		fmt.Sprintf("Profile:   %s", orDash(inv.Profile)),
		fmt.Sprintf("Regions:   %s", strings.Join(inv.Regions, ", ")),
		fmt.Sprintf("Endpoints: %d (%d public)", len(inv.Endpoints), public),
	}, "\n"))

	if len(inv.Endpoints) == 0 {
		uc.console.LogInfo("No endpoints found")
	} else {
		uc.console.Print(renderTable(uc.console, endpointsTable(inv)))
	}
	if len(inv.LogGroups) > 0 {
		uc.console.Print(renderTable(uc.console, logGroupsTable(inv.LogGroups)))
	}
}

func endpointsTable(inv entity.CloudInventory) entity.ExportTable {
	table := entity.ExportTable{
		Title:   "Endpoints in account " + inv.AccountID,
		Headers: []string{"Kind", "Region", "Name", "Address", "Port", "Public", "Monitor URL"},
		Raw:     inv,
	}
	for _, ep := range inv.Endpoints {
		port := "-"
		if ep.Port > 0 {
			port = strconv.Itoa(int(ep.Port))
		}
		table.Rows = append(table.Rows, []string{
			string(ep.Kind),
			ep.Region,
			orDash(ep.Name),
			orDash(ep.Address),
			port,
			formatBool(ep.Public),
			orDash(ep.MonitorURL()),
		})
	}
	return table
}

func logGroupsTable(groups []entity.LogGroupSummary) entity.ExportTable {
	sorted := append([]entity.LogGroupSummary(nil), groups...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Region < sorted[j].Region })

	table := entity.ExportTable{
		Title:   "CloudWatch Log Groups",
		Headers: []string{"Region", "Groups", "Without Retention", "Stored"},
		Raw:     sorted,
	}
	for _, g := range sorted {
		table.Rows = append(table.Rows, []string{
			g.Region,
			strconv.Itoa(g.Total),
			strconv.Itoa(g.NoRetention),
			formatBytes(g.StoredBytes),
		})
	}
	return table
}

// siteKey compares URLs ignoring case and a trailing slash.
func siteKey(u string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(u)), "/")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
