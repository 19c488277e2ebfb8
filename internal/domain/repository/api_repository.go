package repository

import (
	"context"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

// AuthRepository exchanges credentials for tokens.
type AuthRepository interface {
	Login(ctx context.Context, username, password string) (entity.Tokens, error)
}

// DealRepository manages admin deals.
type DealRepository interface {
	ListDeals(ctx context.Context) ([]entity.Deal, error)
	CreateDeal(ctx context.Context, payload entity.DealPayload) (entity.Deal, error)
	UpdateDeal(ctx context.Context, id int, payload entity.DealPayload) (entity.Deal, error)
	DeleteDeal(ctx context.Context, id int) error
	ListPlans(ctx context.Context) ([]entity.SubscriptionPlan, error)
}

// MonitorRepository reads and registers monitored sites.
type MonitorRepository interface {
	ListSites(ctx context.Context) ([]entity.MonitoredSite, error)
	GetSite(ctx context.Context, id int) (entity.MonitoredSite, error)
	CreateSite(ctx context.Context, req entity.SiteRequest) (entity.MonitoredSite, error)
}

// ComplianceRepository reads frameworks and reports.
type ComplianceRepository interface {
	ListFrameworks(ctx context.Context) ([]entity.Framework, error)
	ListReports(ctx context.Context) ([]entity.Report, error)
	GenerateReport(ctx context.Context, req entity.ReportRequest) (entity.Report, error)
}

// IntegrationRepository lists communication integrations.
type IntegrationRepository interface {
	ListIntegrations(ctx context.Context) ([]entity.CommunicationIntegration, error)
}

// ContactRepository submits the contact form.
type ContactRepository interface {
	SubmitContact(ctx context.Context, msg entity.ContactMessage) error
}

// AuditRepository drives server-side security audits.
type AuditRepository interface {
	StartAudit(ctx context.Context, url string) (entity.AuditResponse, error)
	GetAudit(ctx context.Context, auditID string) (entity.AuditResponse, error)
}

// APIRepository is the whole Opticini REST API.
type APIRepository interface {
	AuthRepository
	DealRepository
	MonitorRepository
	ComplianceRepository
	IntegrationRepository
	ContactRepository
	AuditRepository
}
