package entity

import "time"

// Framework is a compliance standard (SOC 2, ISO 27001, ...) tracked for control coverage.
type Framework struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	Code                string `json:"code"`
	Description         string `json:"description,omitempty"`
	TotalControls       int    `json:"total_controls"`
	ImplementedControls int    `json:"implemented_controls"`
	Status              string `json:"status,omitempty"`
}

// Coverage is the implemented share of controls, in percent.
func (f Framework) Coverage() float64 {
	if f.TotalControls <= 0 {
		return 0
	}
	return float64(f.ImplementedControls) / float64(f.TotalControls) * 100
}

// Report is a generated compliance report.
type Report struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	FrameworkID   int       `json:"framework"`
	FrameworkName string    `json:"framework_name,omitempty"`
	ReportType    string    `json:"report_type"`
	Status        string    `json:"status"`
	Score         *float64  `json:"score,omitempty"`
	FileURL       string    `json:"file_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReportRequest asks the API to generate a report for a framework.
type ReportRequest struct {
	FrameworkID int    `json:"framework"`
	ReportType  string `json:"report_type"`
}
