package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

func validForm() entity.DealForm {
	return entity.DealForm{
		Title:              "Black Friday",
		Description:        "40% off",
		PlanID:             "2",
		OriginalPrice:      "100",
		DiscountPercentage: "40",
		StartDate:          "2026-11-20",
		EndDate:            "2026-11-30",
		IsActive:           true,
	}
}

func TestCreateDeal_RefetchesOnceOnSuccess(t *testing.T) {
	deals := &fakeDeals{}
	console := newFakeConsole()
	uc := NewDealsUseCase(deals, console, nil)

	deal, err := uc.CreateDeal(context.Background(), validForm())
	require.NoError(t, err)

	assert.Equal(t, "Black Friday", deal.Title)
	assert.Len(t, deals.created, 1)
	assert.Equal(t, 1, deals.listCalls, "the list is refetched exactly once")
	assert.Contains(t, console.output(), "Black Friday")
	assert.NotEmpty(t, console.success)
}

func TestCreateDeal_NoRefetchOnFailure(t *testing.T) {
	deals := &fakeDeals{createErr: apperrors.New(apperrors.TypeBadRequest, nil, "plan: invalid pk")}
	uc := NewDealsUseCase(deals, newFakeConsole(), nil)

	_, err := uc.CreateDeal(context.Background(), validForm())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pk")
	assert.Equal(t, 0, deals.listCalls)
}

func TestCreateDeal_ValidationBlocksSubmit(t *testing.T) {
	deals := &fakeDeals{}
	uc := NewDealsUseCase(deals, newFakeConsole(), nil)

	form := validForm()
	form.Title = ""
	form.OriginalPrice = "abc"

	_, err := uc.CreateDeal(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.TypeOf(err))
	assert.Empty(t, deals.created)
	assert.Equal(t, 0, deals.listCalls)
}

func TestUpdateAndDeleteDeal_Refetch(t *testing.T) {
	deals := &fakeDeals{deals: []entity.Deal{{ID: 3, Title: "Old"}}}
	uc := NewDealsUseCase(deals, newFakeConsole(), nil)

	_, err := uc.UpdateDeal(context.Background(), 3, validForm())
	require.NoError(t, err)
	assert.Equal(t, "Black Friday", deals.updated[3].Title)
	assert.Equal(t, 1, deals.listCalls)

	require.NoError(t, uc.DeleteDeal(context.Background(), 3))
	assert.Equal(t, []int{3}, deals.deleted)
	assert.Equal(t, 2, deals.listCalls)
}

func TestDeleteDealFailure_NoRefetch(t *testing.T) {
	deals := &fakeDeals{deleteErr: apperrors.FromStatus(409, []byte(`{"detail":"Deal is referenced by an order"}`))}
	uc := NewDealsUseCase(deals, newFakeConsole(), nil)

	err := uc.DeleteDeal(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Deal is referenced by an order")
	assert.Empty(t, deals.deleted)
	assert.Equal(t, 0, deals.listCalls)
}

func TestRefetchFailureDoesNotFailSubmit(t *testing.T) {
	deals := &fakeDeals{listErr: errors.New("boom")}
	console := newFakeConsole()
	uc := NewDealsUseCase(deals, console, nil)

	_, err := uc.CreateDeal(context.Background(), validForm())
	require.NoError(t, err)
	assert.Len(t, console.warnings, 1)
}

func TestLoadForm(t *testing.T) {
	deals := &fakeDeals{deals: []entity.Deal{{ID: 5, Title: "Spring", PlanID: 1}}}
	uc := NewDealsUseCase(deals, newFakeConsole(), nil)

	form, err := uc.LoadForm(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Spring", form.Title)
	assert.Equal(t, "1", form.PlanID)

	_, err = uc.LoadForm(context.Background(), 42)
	assert.Equal(t, apperrors.TypeNotFound, apperrors.TypeOf(err))
}
