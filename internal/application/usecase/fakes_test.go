package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// fakeConsole records everything written to it.
type fakeConsole struct {
	mu       sync.Mutex
	out      []string
	infos    []string
	warnings []string
	errors   []string
	success  []string
	panels   []string
	bars     map[string][]types.Bar
}

func newFakeConsole() *fakeConsole {
	return &fakeConsole{bars: map[string][]types.Bar{}}
}

func (c *fakeConsole) record(dst *[]string, s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*dst = append(*dst, s)
}

func (c *fakeConsole) Print(a ...interface{})                 { c.record(&c.out, fmt.Sprint(a...)) }
func (c *fakeConsole) Printf(format string, a ...interface{}) { c.record(&c.out, fmt.Sprintf(format, a...)) }
func (c *fakeConsole) Println(a ...interface{})               { c.record(&c.out, fmt.Sprintln(a...)) }

func (c *fakeConsole) LogInfo(format string, a ...interface{}) {
	c.record(&c.infos, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) LogWarning(format string, a ...interface{}) {
	c.record(&c.warnings, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) LogError(format string, a ...interface{}) {
	c.record(&c.errors, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) LogSuccess(format string, a ...interface{}) {
	c.record(&c.success, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) Status(string) types.StatusHandle             { return nopHandle{} }
func (c *fakeConsole) ProgressWithTotal(int) types.ProgressHandle   { return nopHandle{} }
func (c *fakeConsole) CreateTable() types.TableInterface            { return &fakeTable{} }
func (c *fakeConsole) DisplayPanel(title string, body string)       { c.record(&c.panels, title+"\n"+body) }
func (c *fakeConsole) DisplayBars(title string, bars []types.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bars[title] = bars
}

func (c *fakeConsole) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.out, "\n")
}

type nopHandle struct{}

func (nopHandle) Update(string) {}
func (nopHandle) Increment()    {}
func (nopHandle) Stop()         {}

type fakeTable struct {
	headers []string
	rows    [][]string
}

func (t *fakeTable) AddColumn(name string, _ ...interface{}) { t.headers = append(t.headers, name) }
func (t *fakeTable) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = fmt.Sprint(c)
	}
	t.rows = append(t.rows, row)
}
func (t *fakeTable) Render() string {
	lines := []string{strings.Join(t.headers, " | ")}
	for _, r := range t.rows {
		lines = append(lines, strings.Join(r, " | "))
	}
	return strings.Join(lines, "\n")
}

// fakeDeals counts calls so refetch behaviour can be asserted.
type fakeDeals struct {
	mu        sync.Mutex
	deals     []entity.Deal
	listCalls int
	listErr   error
	createErr error
	deleteErr error
	created   []entity.DealPayload
	updated   map[int]entity.DealPayload
	deleted   []int
}

func (f *fakeDeals) ListDeals(context.Context) ([]entity.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]entity.Deal(nil), f.deals...), f.listErr
}

func (f *fakeDeals) CreateDeal(_ context.Context, p entity.DealPayload) (entity.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return entity.Deal{}, f.createErr
	}
	f.created = append(f.created, p)
	d := entity.Deal{ID: len(f.deals) + 1, Title: p.Title}
	f.deals = append(f.deals, d)
	return d, nil
}

func (f *fakeDeals) UpdateDeal(_ context.Context, id int, p entity.DealPayload) (entity.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = map[int]entity.DealPayload{}
	}
	f.updated[id] = p
	return entity.Deal{ID: id, Title: p.Title}, nil
}

func (f *fakeDeals) DeleteDeal(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDeals) ListPlans(context.Context) ([]entity.SubscriptionPlan, error) {
	return nil, nil
}

type fakeSites struct {
	mu        sync.Mutex
	sites     []entity.MonitoredSite
	listErr   error
	getErrs   map[int]error // keyed by call number, starting at 1
	getCalls  int
	createErr error
	created   []entity.SiteRequest
}

func (f *fakeSites) ListSites(context.Context) ([]entity.MonitoredSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.MonitoredSite(nil), f.sites...), f.listErr
}

func (f *fakeSites) GetSite(_ context.Context, id int) (entity.MonitoredSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if err := f.getErrs[f.getCalls]; err != nil {
		return entity.MonitoredSite{}, err
	}
	for _, s := range f.sites {
		if s.ID == id {
			return s, nil
		}
	}
	return entity.MonitoredSite{}, fmt.Errorf("site %d not found", id)
}

func (f *fakeSites) CreateSite(_ context.Context, req entity.SiteRequest) (entity.MonitoredSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return entity.MonitoredSite{}, f.createErr
	}
	f.created = append(f.created, req)
	site := entity.MonitoredSite{ID: 100 + len(f.created), Name: req.Name, URL: req.URL}
	f.sites = append(f.sites, site)
	return site, nil
}

func (f *fakeSites) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

type fakeLinks struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeLinks) Discover(_ context.Context, pageURL string) (entity.LinkReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return entity.LinkReport{}, f.err
	}
	return entity.LinkReport{PageURL: pageURL, Internal: []string{pageURL + "/about"}}, nil
}

// fakeTicker is driven by the test through tick.
type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.once.Do(func() { close(t.stopped) }) }

type fakeCompliance struct {
	frameworks []entity.Framework
	reports    []entity.Report
	err        error
	requests   []entity.ReportRequest
}

func (f *fakeCompliance) ListFrameworks(context.Context) ([]entity.Framework, error) {
	return f.frameworks, f.err
}

func (f *fakeCompliance) ListReports(context.Context) ([]entity.Report, error) {
	return f.reports, f.err
}

func (f *fakeCompliance) GenerateReport(_ context.Context, req entity.ReportRequest) (entity.Report, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return entity.Report{}, f.err
	}
	return entity.Report{ID: 7, FrameworkID: req.FrameworkID, ReportType: req.ReportType, Status: "pending"}, nil
}

type fakeIntegrations struct {
	items []entity.CommunicationIntegration
	err   error
}

func (f *fakeIntegrations) ListIntegrations(context.Context) ([]entity.CommunicationIntegration, error) {
	return f.items, f.err
}

type fakeAuditStore struct {
	state *entity.AuditState
	err   error
}

func (f *fakeAuditStore) Load() (*entity.AuditState, error) { return f.state, f.err }
func (f *fakeAuditStore) Save(s entity.AuditState) error    { f.state = &s; return nil }
func (f *fakeAuditStore) Clear() error                      { f.state = nil; return nil }

type fakeAnalyzer struct {
	fail map[entity.DeviceStrategy]error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, pageURL string, device entity.DeviceStrategy) (entity.DeviceAnalysis, error) {
	if err := f.fail[device]; err != nil {
		return entity.DeviceAnalysis{}, err
	}
	score := 95
	if device == entity.DeviceMobile {
		score = 62
	}
	return entity.DeviceAnalysis{
		Device:          device,
		URL:             pageURL,
		Score:           score,
		FirstContentful: entity.Metric{Value: 1200, Display: "1.2 s"},
	}, nil
}

type fakeCloud struct {
	endpoints []entity.CloudEndpoint
	regions   []string
	spend     entity.CloudSpend
	spendErr  error
}

func (f *fakeCloud) GetAccountID(context.Context, string) (string, error) { return "123456789012", nil }
func (f *fakeCloud) GetAccessibleRegions(context.Context, string) ([]string, error) {
	return f.regions, nil
}
func (f *fakeCloud) DiscoverEndpoints(context.Context, string, []string) ([]entity.CloudEndpoint, error) {
	return f.endpoints, nil
}
func (f *fakeCloud) GetLogGroupSummary(_ context.Context, _ string, regions []string) ([]entity.LogGroupSummary, error) {
	var out []entity.LogGroupSummary
	for _, r := range regions {
		out = append(out, entity.LogGroupSummary{Region: r, Total: 3, NoRetention: 1})
	}
	return out, nil
}
func (f *fakeCloud) GetSpend(context.Context, string) (entity.CloudSpend, error) {
	return f.spend, f.spendErr
}

// fakeExportRepo records exports without touching the filesystem.
type fakeExportRepo struct {
	mu     sync.Mutex
	tables []entity.ExportTable
	names  []string
	err    error
}

func (f *fakeExportRepo) write(table entity.ExportTable, filename, ext string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.tables = append(f.tables, table)
	name := "/tmp/out/" + filename + "." + ext
	f.names = append(f.names, name)
	return name, nil
}

func (f *fakeExportRepo) ExportToCSV(t entity.ExportTable, filename, _ string) (string, error) {
	return f.write(t, filename, "csv")
}
func (f *fakeExportRepo) ExportToJSON(t entity.ExportTable, filename, _ string) (string, error) {
	return f.write(t, filename, "json")
}
func (f *fakeExportRepo) ExportToPDF(t entity.ExportTable, filename, _ string) (string, error) {
	return f.write(t, filename, "pdf")
}

type fakeUploader struct {
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, _ string, bucket, key string) (string, error) {
	f.keys = append(f.keys, key)
	return "s3://" + bucket + "/" + key, nil
}
