package entity

// CommunicationIntegration is a notification channel configured for the workspace.
type CommunicationIntegration struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
	Target  string `json:"target,omitempty"`
}
