package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
	"github.com/opticini/opticini-cli/internal/shared/types"
)

// AnalyzeUseCase runs page performance tests for several devices at once.
type AnalyzeUseCase struct {
	analyzer repository.AnalyzerRepository
	console  types.ConsoleInterface
	exporter *Exporter
}

func NewAnalyzeUseCase(analyzer repository.AnalyzerRepository, console types.ConsoleInterface, exporter *Exporter) *AnalyzeUseCase {
	return &AnalyzeUseCase{analyzer: analyzer, console: console, exporter: exporter}
}

// Analyze tests rawURL on every device concurrently. A failing device is
// reported in its own row; an error is returned only when all of them fail.
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, rawURL string, devices []entity.DeviceStrategy) ([]entity.DeviceAnalysis, error) {
	target, err := entity.NormalizeTargetURL(rawURL)
	if err != nil {
		return nil, apperrors.New(apperrors.TypeValidation, err, "%v", err)
	}
	if len(devices) == 0 {
		devices = entity.AllDevices
	}

	results := make([]entity.DeviceAnalysis, len(devices))
	errs := make([]error, len(devices))

	status := uc.console.Status(fmt.Sprintf("Analyzing %s on %d devices...", target, len(devices)))
	g, gctx := errgroup.WithContext(ctx)
	for i, device := range devices {
		g.Go(func() error {
			res, err := uc.analyzer.Analyze(gctx, target, device)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", device, err)
				res = entity.DeviceAnalysis{Device: device, URL: target, Error: err.Error()}
			}
			results[i] = res
			// per-device failures never cancel the others
			return nil
		})
	}
	_ = g.Wait()
	status.Stop()

	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if merr != nil && len(merr.Errors) == len(devices) {
		return results, fmt.Errorf("analysis failed on every device: %w", merr.ErrorOrNil())
	}

	table := analysisTable(target, results)
	uc.console.Print(renderTable(uc.console, table))
	uc.console.DisplayBars("Performance score", scoreBars(results))
	if merr != nil {
		uc.console.LogWarning("Some devices could not be analyzed: %s", merr.ErrorOrNil())
	}
	uc.exporter.Export(ctx, "analysis", table)
	return results, nil
}

func analysisTable(target string, results []entity.DeviceAnalysis) entity.ExportTable {
	table := entity.ExportTable{
		Title:   "Performance of " + target,
		Headers: []string{"Device", "Score", "Rating", "FCP", "LCP", "TBT", "CLS", "Speed Index"},
		Raw:     results,
	}
	for _, r := range results {
		if r.Error != "" {
			table.Rows = append(table.Rows, []string{string(r.Device), "-", "error: " + r.Error, "-", "-", "-", "-", "-"})
			continue
		}
		table.Rows = append(table.Rows, []string{
			string(r.Device),
			strconv.Itoa(r.Score),
			r.Rating(),
			orDash(r.FirstContentful.Display),
			orDash(r.LargestContentful.Display),
			orDash(r.TotalBlocking.Display),
			orDash(r.LayoutShift.Display),
			orDash(r.SpeedIndex.Display),
		})
	}
	return table
}

func scoreBars(results []entity.DeviceAnalysis) []types.Bar {
	var bars []types.Bar
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		bars = append(bars, types.Bar{Label: string(r.Device), Value: float64(r.Score), Max: 100})
	}
	return bars
}
