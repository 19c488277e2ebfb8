package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

// flexID accepts both numeric and string identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type findingWire struct {
	ID             flexID `json:"id"`
	Title          string `json:"title"`
	Name           string `json:"name"`
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

type scanWire struct {
	ID          flexID        `json:"id"`
	Category    string        `json:"category"`
	ScanType    string        `json:"scan_type"`
	Name        string        `json:"name"`
	Status      string        `json:"status"`
	Findings    []findingWire `json:"findings"`
	Error       string        `json:"error"`
	StartedAt   *time.Time    `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at"`
}

type auditWire struct {
	AuditID flexID     `json:"audit_id"`
	ID      flexID     `json:"id"`
	URL     string     `json:"url"`
	Status  string     `json:"status"`
	Scans   []scanWire `json:"scans"`
	Error   string     `json:"error"`
}

func (w auditWire) toEntity() entity.AuditResponse {
	out := entity.AuditResponse{
		AuditID: string(w.AuditID),
		URL:     w.URL,
		Status:  w.Status,
		Error:   w.Error,
		Scans:   make([]entity.Scan, 0, len(w.Scans)),
	}
	if out.AuditID == "" {
		out.AuditID = string(w.ID)
	}

	for i, s := range w.Scans {
		category := firstNonEmpty(s.Category, s.ScanType, s.Name, "general")
		scan := entity.Scan{
			ID:          string(s.ID),
			Category:    strings.ToLower(category),
			Name:        firstNonEmpty(s.Name, category),
			Status:      entity.ParseScanStatus(s.Status),
			Error:       s.Error,
			StartedAt:   s.StartedAt,
			CompletedAt: s.CompletedAt,
		}
		if scan.ID == "" {
			scan.ID = scan.Category + "-" + strconv.Itoa(i)
		}
		for _, f := range s.Findings {
			scan.Findings = append(scan.Findings, entity.Finding{
				ID:             string(f.ID),
				Title:          firstNonEmpty(f.Title, f.Name),
				Severity:       entity.ParseSeverity(f.Severity),
				Category:       f.Category,
				Description:    f.Description,
				Recommendation: f.Recommendation,
			})
		}
		out.Scans = append(out.Scans, scan)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
