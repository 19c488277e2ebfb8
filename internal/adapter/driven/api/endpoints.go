package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

func (c *Client) ListDeals(ctx context.Context) ([]entity.Deal, error) {
	deals, err := do[listResponse[entity.Deal]](ctx, c.authed, http.MethodGet, "/api/admin/deals/", nil)
	return deals, err
}

func (c *Client) CreateDeal(ctx context.Context, payload entity.DealPayload) (entity.Deal, error) {
	return do[entity.Deal](ctx, c.authed, http.MethodPost, "/api/admin/deals/", payload)
}

func (c *Client) UpdateDeal(ctx context.Context, id int, payload entity.DealPayload) (entity.Deal, error) {
	return do[entity.Deal](ctx, c.authed, http.MethodPut, fmt.Sprintf("/api/admin/deals/%d/", id), payload)
}

func (c *Client) DeleteDeal(ctx context.Context, id int) error {
	_, err := do[struct{}](ctx, c.authed, http.MethodDelete, fmt.Sprintf("/api/admin/deals/%d/", id), nil)
	return err
}

func (c *Client) ListPlans(ctx context.Context) ([]entity.SubscriptionPlan, error) {
	plans, err := do[listResponse[entity.SubscriptionPlan]](ctx, c.authed, http.MethodGet, "/api/admin/deals/plans/", nil)
	return plans, err
}

func (c *Client) ListSites(ctx context.Context) ([]entity.MonitoredSite, error) {
	sites, err := do[listResponse[entity.MonitoredSite]](ctx, c.authed, http.MethodGet, "/api/monitor/sites/", nil)
	return sites, err
}

func (c *Client) GetSite(ctx context.Context, id int) (entity.MonitoredSite, error) {
	return do[entity.MonitoredSite](ctx, c.authed, http.MethodGet, fmt.Sprintf("/api/monitor/sites/%d/", id), nil)
}

func (c *Client) CreateSite(ctx context.Context, req entity.SiteRequest) (entity.MonitoredSite, error) {
	return do[entity.MonitoredSite](ctx, c.authed, http.MethodPost, "/api/monitor/sites/", req)
}

func (c *Client) ListFrameworks(ctx context.Context) ([]entity.Framework, error) {
	frameworks, err := do[listResponse[entity.Framework]](ctx, c.authed, http.MethodGet, "/api/compliance/frameworks/", nil)
	return frameworks, err
}

func (c *Client) ListReports(ctx context.Context) ([]entity.Report, error) {
	reports, err := do[listResponse[entity.Report]](ctx, c.authed, http.MethodGet, "/api/compliance/reports/", nil)
	return reports, err
}

func (c *Client) GenerateReport(ctx context.Context, req entity.ReportRequest) (entity.Report, error) {
	return do[entity.Report](ctx, c.authed, http.MethodPost, "/api/compliance/reports/", req)
}

func (c *Client) ListIntegrations(ctx context.Context) ([]entity.CommunicationIntegration, error) {
	integrations, err := do[listResponse[entity.CommunicationIntegration]](ctx, c.authed, http.MethodGet, "/api/integrations/communication/", nil)
	return integrations, err
}

// SubmitContact posts the public contact form; no session is needed.
func (c *Client) SubmitContact(ctx context.Context, msg entity.ContactMessage) error {
	_, err := do[struct{}](ctx, c.public, http.MethodPost, "/api/contact/", msg)
	return err
}

func (c *Client) StartAudit(ctx context.Context, target string) (entity.AuditResponse, error) {
	resp, err := do[auditWire](ctx, c.authed, http.MethodPost, "/api/security-audit/start/", map[string]string{"url": target})
	if err != nil {
		return entity.AuditResponse{}, err
	}
	return resp.toEntity(), nil
}

func (c *Client) GetAudit(ctx context.Context, auditID string) (entity.AuditResponse, error) {
	resp, err := do[auditWire](ctx, c.authed, http.MethodGet, "/api/security-audit/"+url.PathEscape(auditID)+"/", nil)
	if err != nil {
		return entity.AuditResponse{}, err
	}
	return resp.toEntity(), nil
}
