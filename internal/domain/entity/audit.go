package entity

import (
	"sort"
	"strings"
	"time"
)

// ScanStatus is the lifecycle state of one category scan.
type ScanStatus string

const (
	ScanPending   ScanStatus = "pending"
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// ParseScanStatus maps the backend's status spellings onto ScanStatus.
// Anything unrecognised is treated as pending.
func ParseScanStatus(s string) ScanStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running", "in_progress", "started", "scanning":
		return ScanRunning
	case "completed", "complete", "done", "success", "succeeded":
		return ScanCompleted
	case "failed", "failure", "error", "cancelled", "canceled":
		return ScanFailed
	default:
		return ScanPending
	}
}

// IsTerminal reports whether the scan can no longer change state.
func (s ScanStatus) IsTerminal() bool {
	return s == ScanCompleted || s == ScanFailed
}

// Rank orders statuses along the only allowed direction of travel.
func (s ScanStatus) Rank() int {
	switch s {
	case ScanRunning:
		return 1
	case ScanCompleted, ScanFailed:
		return 2
	default:
		return 0
	}
}

// Severity of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// ParseSeverity normalises a severity label; unknown labels become info.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityInfo
	}
}

func (s Severity) weight() int {
	for i, sev := range Severities {
		if sev == s {
			return i
		}
	}
	return len(Severities)
}

// Finding is a single security issue reported by the audit backend.
type Finding struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Severity       Severity `json:"severity"`
	Category       string   `json:"category,omitempty"`
	Description    string   `json:"description,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Scan is one category scan of an audit.
type Scan struct {
	ID          string     `json:"id"`
	Category    string     `json:"category"`
	Name        string     `json:"name"`
	Status      ScanStatus `json:"status"`
	Findings    []Finding  `json:"findings,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AuditResponse is what the API returns for start and status calls.
type AuditResponse struct {
	AuditID string `json:"audit_id"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Scans   []Scan `json:"scans"`
	Error   string `json:"error,omitempty"`
}

// SeverityCounts aggregates findings by severity.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

// Add counts one finding of the given severity.
func (c *SeverityCounts) Add(sev Severity) {
	switch sev {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	default:
		c.Info++
	}
}

// Get returns the count for one severity.
func (c SeverityCounts) Get(sev Severity) int {
	switch sev {
	case SeverityCritical:
		return c.Critical
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	case SeverityLow:
		return c.Low
	default:
		return c.Info
	}
}

// Total is the number of findings counted.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low + c.Info
}

// AuditStatus is the overall state of the orchestrated audit.
type AuditStatus string

const (
	AuditIdle      AuditStatus = "idle"
	AuditRunning   AuditStatus = "running"
	AuditCompleted AuditStatus = "completed"
	AuditFailed    AuditStatus = "failed"
)

// IsTerminal reports whether the audit finished, successfully or not.
func (s AuditStatus) IsTerminal() bool {
	return s == AuditCompleted || s == AuditFailed
}

// AuditState is the client-side projection of a server-run audit.
type AuditState struct {
	AuditID     string            `json:"audit_id,omitempty"`
	URL         string            `json:"url,omitempty"`
	Status      AuditStatus       `json:"status"`
	Scans       map[string][]Scan `json:"scans,omitempty"`
	Counts      SeverityCounts    `json:"counts"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// IdleAuditState is the state before any audit was started.
func IdleAuditState() AuditState {
	return AuditState{Status: AuditIdle}
}

// Clone returns a deep copy, safe to hand out while the original keeps changing.
func (s AuditState) Clone() AuditState {
	out := s
	if s.Scans != nil {
		out.Scans = make(map[string][]Scan, len(s.Scans))
		for cat, scans := range s.Scans {
			copied := make([]Scan, len(scans))
			for i, scan := range scans {
				copied[i] = scan
				if scan.Findings != nil {
					copied[i].Findings = append([]Finding(nil), scan.Findings...)
				}
			}
			out.Scans[cat] = copied
		}
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// Categories returns the scan categories in alphabetical order.
func (s AuditState) Categories() []string {
	cats := make([]string, 0, len(s.Scans))
	for cat := range s.Scans {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// ScanTotals counts scans per status across all categories.
func (s AuditState) ScanTotals() map[ScanStatus]int {
	totals := map[ScanStatus]int{}
	for _, scans := range s.Scans {
		for _, scan := range scans {
			totals[scan.Status]++
		}
	}
	return totals
}

// Findings returns every distinct finding, most severe first.
func (s AuditState) Findings() []Finding {
	seen := map[string]bool{}
	var out []Finding
	for _, cat := range s.Categories() {
		for _, scan := range s.Scans[cat] {
			for _, f := range scan.Findings {
				key := FindingKey(scan, f)
				if seen[key] {
					continue
				}
				seen[key] = true
				if f.Category == "" {
					f.Category = cat
				}
				out = append(out, f)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.weight() < out[j].Severity.weight()
	})
	return out
}

// FindingKey identifies a finding for deduplication. Findings without an ID
// are keyed by scan and title.
func FindingKey(scan Scan, f Finding) string {
	if f.ID != "" {
		return f.ID
	}
	return scan.ID + "|" + f.Title
}
