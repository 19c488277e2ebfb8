package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// Deal is a promotional pricing offer managed through the admin CRUD.
type Deal struct {
	ID                 int                 `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	PlanID             int                 `json:"plan"`
	PlanName           string              `json:"plan_name,omitempty"`
	OriginalPrice      decimal.Decimal     `json:"original_price"`
	DiscountPercentage decimal.Decimal     `json:"discount_percentage"`
	DealPrice          decimal.NullDecimal `json:"deal_price"`
	StartDate          string              `json:"start_date"`
	EndDate            string              `json:"end_date"`
	IsActive           bool                `json:"is_active"`
	BadgeText          string              `json:"badge_text,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// EffectivePrice is the server's deal price, or the computed one when the
// server left it out.
func (d Deal) EffectivePrice() decimal.Decimal {
	if d.DealPrice.Valid {
		return d.DealPrice.Decimal
	}
	return ComputeDealPrice(d.OriginalPrice, d.DiscountPercentage)
}

// ComputeDealPrice applies a percentage discount and rounds to cents.
func ComputeDealPrice(original, discountPercent decimal.Decimal) decimal.Decimal {
	factor := hundred.Sub(discountPercent).Div(hundred)
	return original.Mul(factor).Round(2)
}

// DealPayload is the body sent on create and update.
type DealPayload struct {
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	PlanID             int             `json:"plan"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	IsActive           bool            `json:"is_active"`
	BadgeText          string          `json:"badge_text,omitempty"`
}

// DealForm holds raw form input. Validation is limited to required fields and
// value types, the same checks a browser form does.
type DealForm struct {
	Title              string
	Description        string
	PlanID             string
	OriginalPrice      string
	DiscountPercentage string
	StartDate          string
	EndDate            string
	IsActive           bool
	BadgeText          string
}

// FormFromDeal populates a form with an existing deal, for editing.
func FormFromDeal(d Deal) DealForm {
	return DealForm{
		Title:              d.Title,
		Description:        d.Description,
		PlanID:             strconv.Itoa(d.PlanID),
		OriginalPrice:      d.OriginalPrice.String(),
		DiscountPercentage: d.DiscountPercentage.String(),
		StartDate:          d.StartDate,
		EndDate:            d.EndDate,
		IsActive:           d.IsActive,
		BadgeText:          d.BadgeText,
	}
}

// Validate checks the form and converts it to a payload.
func (f DealForm) Validate() (DealPayload, error) {
	var errs *multierror.Error
	payload := DealPayload{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		IsActive:    f.IsActive,
		BadgeText:   strings.TrimSpace(f.BadgeText),
		StartDate:   strings.TrimSpace(f.StartDate),
		EndDate:     strings.TrimSpace(f.EndDate),
	}

	if payload.Title == "" {
		errs = multierror.Append(errs, fmt.Errorf("title is required"))
	}

	if strings.TrimSpace(f.PlanID) == "" {
		errs = multierror.Append(errs, fmt.Errorf("plan is required"))
	} else if id, err := strconv.Atoi(strings.TrimSpace(f.PlanID)); err != nil || id <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("plan must be a positive integer id"))
	} else {
		payload.PlanID = id
	}

	if strings.TrimSpace(f.OriginalPrice) == "" {
		errs = multierror.Append(errs, fmt.Errorf("original price is required"))
	} else if price, err := decimal.NewFromString(strings.TrimSpace(f.OriginalPrice)); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("original price must be a number"))
	} else if price.IsNegative() {
		errs = multierror.Append(errs, fmt.Errorf("original price must not be negative"))
	} else {
		payload.OriginalPrice = price
	}

	if strings.TrimSpace(f.DiscountPercentage) == "" {
		errs = multierror.Append(errs, fmt.Errorf("discount percentage is required"))
	} else if discount, err := decimal.NewFromString(strings.TrimSpace(f.DiscountPercentage)); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("discount percentage must be a number"))
	} else if discount.IsNegative() || discount.GreaterThan(hundred) {
		errs = multierror.Append(errs, fmt.Errorf("discount percentage must be between 0 and 100"))
	} else {
		payload.DiscountPercentage = discount
	}

	var start, end time.Time
	var startErr, endErr error
	if payload.StartDate == "" {
		errs = multierror.Append(errs, fmt.Errorf("start date is required"))
	} else if start, startErr = time.Parse(dateLayout, payload.StartDate); startErr != nil {
		errs = multierror.Append(errs, fmt.Errorf("start date must be YYYY-MM-DD"))
	}
	if payload.EndDate == "" {
		errs = multierror.Append(errs, fmt.Errorf("end date is required"))
	} else if end, endErr = time.Parse(dateLayout, payload.EndDate); endErr != nil {
		errs = multierror.Append(errs, fmt.Errorf("end date must be YYYY-MM-DD"))
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		errs = multierror.Append(errs, fmt.Errorf("end date must not be before start date"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return DealPayload{}, apperrors.New(apperrors.TypeValidation, err, "invalid deal: %s", joinErrors(errs))
	}
	return payload, nil
}

func joinErrors(errs *multierror.Error) string {
	parts := make([]string, 0, len(errs.Errors))
	for _, err := range errs.Errors {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

// SubscriptionPlan is a priced plan a deal can be attached to.
type SubscriptionPlan struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	BillingCycle string          `json:"billing_cycle"`
	Features     []string        `json:"features"`
	IsActive     bool            `json:"is_active"`
}
