package entity

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

func validForm() DealForm {
	return DealForm{
		Title:              "Black Friday",
		PlanID:             "2",
		OriginalPrice:      "49.99",
		DiscountPercentage: "30",
		StartDate:          "2025-11-20",
		EndDate:            "2025-11-30",
		IsActive:           true,
	}
}

func TestComputeDealPrice(t *testing.T) {
	tests := []struct {
		original, discount, want string
	}{
		{"100", "25", "75"},
		{"49.99", "30", "34.99"},
		{"19.99", "0", "19.99"},
		{"19.99", "100", "0"},
		{"10", "33.333", "6.67"},
	}
	for _, tt := range tests {
		got := ComputeDealPrice(decimal.RequireFromString(tt.original), decimal.RequireFromString(tt.discount))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s - %s%% = %s, want %s", tt.original, tt.discount, got, tt.want)
	}
}

func TestDealEffectivePrice(t *testing.T) {
	var d Deal
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"x","plan":3,"original_price":"80.00","discount_percentage":"25.00"}`), &d))
	assert.Equal(t, 3, d.PlanID)
	assert.False(t, d.DealPrice.Valid)
	assert.Equal(t, "60", d.EffectivePrice().String())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"original_price":80,"discount_percentage":25,"deal_price":"59.00"}`), &d))
	assert.Equal(t, "59", d.EffectivePrice().String())
}

func TestDealFormValidate(t *testing.T) {
	payload, err := validForm().Validate()
	require.NoError(t, err)
	assert.Equal(t, "Black Friday", payload.Title)
	assert.Equal(t, 2, payload.PlanID)
	assert.Equal(t, "49.99", payload.OriginalPrice.String())
	assert.Equal(t, "30", payload.DiscountPercentage.String())
}

func TestDealFormValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DealForm)
		want   string
	}{
		{"missing title", func(f *DealForm) { f.Title = "  " }, "title is required"},
		{"missing plan", func(f *DealForm) { f.PlanID = "" }, "plan is required"},
		{"plan not a number", func(f *DealForm) { f.PlanID = "pro" }, "plan must be a positive integer id"},
		{"price not a number", func(f *DealForm) { f.OriginalPrice = "cheap" }, "original price must be a number"},
		{"negative price", func(f *DealForm) { f.OriginalPrice = "-1" }, "original price must not be negative"},
		{"discount over 100", func(f *DealForm) { f.DiscountPercentage = "101" }, "discount percentage must be between 0 and 100"},
		{"bad start date", func(f *DealForm) { f.StartDate = "20/11/2025" }, "start date must be YYYY-MM-DD"},
		{"end before start", func(f *DealForm) { f.EndDate = "2025-11-01" }, "end date must not be before start date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			_, err := form.Validate()
			require.Error(t, err)
			assert.Equal(t, apperrors.TypeValidation, apperrors.TypeOf(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDealFormValidateCollectsAllErrors(t *testing.T) {
	_, err := DealForm{}.Validate()
	require.Error(t, err)
	for _, want := range []string{"title is required", "plan is required", "original price is required", "start date is required", "end date is required"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestFormFromDealRoundTrip(t *testing.T) {
	d := Deal{
		ID:                 7,
		Title:              "Spring",
		PlanID:             4,
		OriginalPrice:      decimal.RequireFromString("20"),
		DiscountPercentage: decimal.RequireFromString("10"),
		StartDate:          "2025-03-01",
		EndDate:            "2025-03-31",
		BadgeText:          "NEW",
	}
	payload, err := FormFromDeal(d).Validate()
	require.NoError(t, err)
	assert.Equal(t, d.Title, payload.Title)
	assert.Equal(t, d.PlanID, payload.PlanID)
	assert.Equal(t, "NEW", payload.BadgeText)
}
