package aws

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

var minServiceCost = decimal.RequireFromString("0.001")

// GetSpend returns month-to-date and last month's unblended cost, the cost
// per service and the account budgets.
func (r *AWSRepositoryImpl) GetSpend(ctx context.Context, profile string) (entity.CloudSpend, error) {
	client, err := r.getServiceClient(ctx, profile, "", "costexplorer")
	if err != nil {
		return entity.CloudSpend{}, err
	}
	ceClient := client.(*costexplorer.Client)

	startDate, endDate, prevStartDate, prevEndDate := monthPeriods(time.Now().UTC())

	var spend entity.CloudSpend
	var wg sync.WaitGroup
	errChan := make(chan error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		cost, err := r.getCostForPeriod(ctx, ceClient, startDate, endDate)
		if err != nil {
			errChan <- fmt.Errorf("failed to get current period cost: %w", err)
			return
		}
		spend.CurrentMonthCost = cost
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		cost, err := r.getCostForPeriod(ctx, ceClient, prevStartDate, prevEndDate)
		if err != nil {
			errChan <- fmt.Errorf("failed to get previous period cost: %w", err)
			return
		}
		spend.LastMonthCost = cost
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		services, err := r.getCostByService(ctx, ceClient, startDate, endDate)
		if err != nil {
			errChan <- fmt.Errorf("failed to get cost by service: %w", err)
			return
		}
		spend.CurrentMonthCostByService = services
	}()

	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		return entity.CloudSpend{}, <-errChan
	}

	spend.AccountID, _ = r.GetAccountID(ctx, profile)
	spend.Budgets, err = r.getBudgets(ctx, profile, spend.AccountID)
	if err != nil {
		r.logger.Debug("budgets unavailable", zap.Error(err))
	}
	spend.CurrentPeriodStart, spend.CurrentPeriodEnd = startDate, endDate
	return spend, nil
}

// monthPeriods returns the current month to date and the whole previous
// month. Cost Explorer end dates are exclusive, so on the first day of a
// month the current period is widened to one day.
func monthPeriods(today time.Time) (start, end, prevStart, prevEnd time.Time) {
	start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !end.After(start) {
		end = start.AddDate(0, 0, 1)
	}
	prevEnd = start
	prevStart = start.AddDate(0, -1, 0)
	return start, end, prevStart, prevEnd
}

func (r *AWSRepositoryImpl) getCostForPeriod(ctx context.Context, client *costexplorer.Client, start, end time.Time) (decimal.Decimal, error) {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: ceTypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
	}

	result, err := client.GetCostAndUsage(ctx, input)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, period := range result.ResultsByTime {
		if val, ok := period.Total["UnblendedCost"]; ok {
			total = total.Add(parseAmount(val.Amount))
		}
	}
	return total, nil
}

func (r *AWSRepositoryImpl) getCostByService(ctx context.Context, client *costexplorer.Client, start, end time.Time) ([]entity.ServiceCost, error) {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: ceTypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
	}

	result, err := client.GetCostAndUsage(ctx, input)
	if err != nil {
		return nil, err
	}

	var serviceCosts []entity.ServiceCost
	if len(result.ResultsByTime) > 0 {
		for _, group := range result.ResultsByTime[0].Groups {
			cost := parseAmount(group.Metrics["UnblendedCost"].Amount)
			if cost.GreaterThan(minServiceCost) && len(group.Keys) > 0 {
				serviceCosts = append(serviceCosts, entity.ServiceCost{
					ServiceName: group.Keys[0],
					Cost:        cost,
				})
			}
		}
	}

	sort.Slice(serviceCosts, func(i, j int) bool {
		return serviceCosts[i].Cost.GreaterThan(serviceCosts[j].Cost)
	})
	return serviceCosts, nil
}

func (r *AWSRepositoryImpl) getBudgets(ctx context.Context, profile, accountID string) ([]entity.BudgetInfo, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id unknown")
	}
	client, err := r.getServiceClient(ctx, profile, "", "budgets")
	if err != nil {
		return nil, err
	}
	budgetsClient := client.(*budgets.Client)

	result, err := budgetsClient.DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(accountID),
	})
	if err != nil {
		return nil, err
	}

	budgetsData := []entity.BudgetInfo{}
	for _, budget := range result.Budgets {
		b := entity.BudgetInfo{Name: aws.ToString(budget.BudgetName)}
		if budget.BudgetLimit != nil {
			b.Limit = parseAmount(budget.BudgetLimit.Amount)
		}
		if budget.CalculatedSpend != nil {
			if budget.CalculatedSpend.ActualSpend != nil {
				b.Actual = parseAmount(budget.CalculatedSpend.ActualSpend.Amount)
			}
			if budget.CalculatedSpend.ForecastedSpend != nil {
				b.Forecast = parseAmount(budget.CalculatedSpend.ForecastedSpend.Amount)
			}
		}
		budgetsData = append(budgetsData, b)
	}
	return budgetsData, nil
}

func parseAmount(s *string) decimal.Decimal {
	d, err := decimal.NewFromString(aws.ToString(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
