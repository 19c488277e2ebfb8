package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func formatPercent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatBool(b bool) string {
	if b {
		return pterm.FgGreen.Sprint("yes")
	}
	return pterm.FgGray.Sprint("no")
}

func colorSiteStatus(site entity.MonitoredSite) string {
	switch site.NormalizedStatus() {
	case entity.SiteStatusUp:
		return pterm.FgGreen.Sprint("UP")
	case entity.SiteStatusDown:
		return pterm.FgRed.Sprint("DOWN")
	default:
		label := strings.ToUpper(site.Status)
		if label == "" {
			label = "UNKNOWN"
		}
		return pterm.FgYellow.Sprint(label)
	}
}

func colorScanStatus(s entity.ScanStatus) string {
	switch s {
	case entity.ScanCompleted:
		return pterm.FgGreen.Sprint(string(s))
	case entity.ScanFailed:
		return pterm.FgRed.Sprint(string(s))
	case entity.ScanRunning:
		return pterm.FgCyan.Sprint(string(s))
	default:
		return pterm.FgGray.Sprint(string(s))
	}
}

func colorSeverity(s entity.Severity) string {
	switch s {
	case entity.SeverityCritical:
		return pterm.FgLightRed.Sprint(strings.ToUpper(string(s)))
	case entity.SeverityHigh:
		return pterm.FgRed.Sprint(strings.ToUpper(string(s)))
	case entity.SeverityMedium:
		return pterm.FgYellow.Sprint(strings.ToUpper(string(s)))
	case entity.SeverityLow:
		return pterm.FgCyan.Sprint(strings.ToUpper(string(s)))
	default:
		return pterm.FgGray.Sprint(strings.ToUpper(string(s)))
	}
}

func formatMs(ms float64) string {
	if ms <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f ms", ms)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
