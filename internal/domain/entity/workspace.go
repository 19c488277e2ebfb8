package entity

import (
	"time"

	"github.com/opticini/opticini-cli/internal/shared/types"
)

// PanelName identifies a workspace overview panel.
type PanelName string

const (
	PanelAnalytics     PanelName = "analytics"
	PanelCompliance    PanelName = "compliance"
	PanelConfiguration PanelName = "configuration"
	PanelHealth        PanelName = "health"
	PanelSecurity      PanelName = "security"
)

// AllPanels in display order.
var AllPanels = []PanelName{PanelAnalytics, PanelCompliance, PanelConfiguration, PanelHealth, PanelSecurity}

// Panel is one rendered block of the workspace overview.
type Panel struct {
	Name  PanelName
	Title string
	Lines []string
	Bars  []types.Bar
	// Err is set when the panel data could not be fetched.
	Err error
}

// Workspace is the overview assembled from every panel.
type Workspace struct {
	Panels      []Panel
	GeneratedAt time.Time
}
