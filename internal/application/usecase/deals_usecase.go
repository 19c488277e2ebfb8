package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// DealsUseCase implements the admin deals CRUD: fetch the list, populate a
// form for editing, submit, then refetch.
type DealsUseCase struct {
	deals    repository.DealRepository
	console  types.ConsoleInterface
	exporter *Exporter
}

// NewDealsUseCase creates a new deals use case.
func NewDealsUseCase(deals repository.DealRepository, console types.ConsoleInterface, exporter *Exporter) *DealsUseCase {
	return &DealsUseCase{deals: deals, console: console, exporter: exporter}
}

// ListDeals fetches and renders the deal list.
func (uc *DealsUseCase) ListDeals(ctx context.Context) ([]entity.Deal, error) {
	status := uc.console.Status("Loading deals...")
	deals, err := uc.deals.ListDeals(ctx)
	status.Stop()
	if err != nil {
		return nil, fmt.Errorf("failed to load deals: %w", err)
	}

	table := dealsTable(deals)
	if len(deals) == 0 {
		uc.console.LogInfo("No deals found")
	} else {
		uc.console.Print(renderTable(uc.console, table))
	}
	uc.exporter.Export(ctx, "deals", table)
	return deals, nil
}

// ListPlans fetches and renders the subscription plans deals can use.
func (uc *DealsUseCase) ListPlans(ctx context.Context) ([]entity.SubscriptionPlan, error) {
	plans, err := uc.deals.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}

	table := entity.ExportTable{
		Title:   "Subscription Plans",
		Headers: []string{"ID", "Name", "Price", "Billing", "Active", "Features"},
		Raw:     plans,
	}
	for _, p := range plans {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(p.ID),
			p.Name,
			formatMoney(p.Price),
			orDash(p.BillingCycle),
			formatBool(p.IsActive),
			strconv.Itoa(len(p.Features)),
		})
	}
	if len(plans) == 0 {
		uc.console.LogInfo("No subscription plans found")
	} else {
		uc.console.Print(renderTable(uc.console, table))
	}
	uc.exporter.Export(ctx, "plans", table)
	return plans, nil
}

// LoadForm populates an edit form from the current deal list.
func (uc *DealsUseCase) LoadForm(ctx context.Context, id int) (entity.DealForm, error) {
	deals, err := uc.deals.ListDeals(ctx)
	if err != nil {
		return entity.DealForm{}, fmt.Errorf("failed to load deals: %w", err)
	}
	for _, d := range deals {
		if d.ID == id {
			return entity.FormFromDeal(d), nil
		}
	}
	return entity.DealForm{}, apperrors.New(apperrors.TypeNotFound, nil, "deal %d not found", id)
}

// CreateDeal validates and submits the form. On success the deal list is
// refetched and rendered; on failure nothing is refetched.
func (uc *DealsUseCase) CreateDeal(ctx context.Context, form entity.DealForm) (entity.Deal, error) {
	payload, err := form.Validate()
	if err != nil {
		return entity.Deal{}, err
	}
	deal, err := uc.deals.CreateDeal(ctx, payload)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("failed to create deal: %w", err)
	}
	uc.console.LogSuccess("Deal %q created (id %d)", deal.Title, deal.ID)
	uc.refetch(ctx)
	return deal, nil
}

// UpdateDeal validates and submits the form for an existing deal.
func (uc *DealsUseCase) UpdateDeal(ctx context.Context, id int, form entity.DealForm) (entity.Deal, error) {
	payload, err := form.Validate()
	if err != nil {
		return entity.Deal{}, err
	}
	deal, err := uc.deals.UpdateDeal(ctx, id, payload)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("failed to update deal %d: %w", id, err)
	}
	uc.console.LogSuccess("Deal %d updated", id)
	uc.refetch(ctx)
	return deal, nil
}

// DeleteDeal removes the deal and refetches the list; a failed delete
// surfaces the server message without refetching.
func (uc *DealsUseCase) DeleteDeal(ctx context.Context, id int) error {
	if err := uc.deals.DeleteDeal(ctx, id); err != nil {
		return fmt.Errorf("failed to delete deal %d: %w", id, err)
	}
	uc.console.LogSuccess("Deal %d deleted", id)
	uc.refetch(ctx)
	return nil
}

// refetch reloads the list after a successful submit. A failure here does
// not undo the submit, so it is only reported.
func (uc *DealsUseCase) refetch(ctx context.Context) {
	if _, err := uc.ListDeals(ctx); err != nil {
		uc.console.LogWarning("%s", err)
	}
}

func dealsTable(deals []entity.Deal) entity.ExportTable {
	table := entity.ExportTable{
		Title:   "Deals",
		Headers: []string{"ID", "Title", "Plan", "Original", "Discount", "Deal Price", "Period", "Active", "Badge"},
		Raw:     deals,
	}
	for _, d := range deals {
		plan := d.PlanName
		if plan == "" {
			plan = "#" + strconv.Itoa(d.PlanID)
		}
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(d.ID),
			d.Title,
			plan,
			formatMoney(d.OriginalPrice),
			formatPercent(d.DiscountPercentage),
			formatMoney(d.EffectivePrice()),
			fmt.Sprintf("%s → %s", orDash(d.StartDate), orDash(d.EndDate)),
			formatBool(d.IsActive),
			orDash(d.BadgeText),
		})
	}
	return table
}

// renderTable turns an export table into the console's table format.
func renderTable(console types.ConsoleInterface, t entity.ExportTable) string {
	table := console.CreateTable()
	for _, h := range t.Headers {
		table.AddColumn(h)
	}
	for _, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, c := range row {
			cells[i] = c
		}
		table.AddRow(cells...)
	}
	return table.Render()
}
