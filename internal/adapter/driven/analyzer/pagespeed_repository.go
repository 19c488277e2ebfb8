// Package analyzer runs Lighthouse performance tests through the PageSpeed
// Insights v5 API.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

const maxResponseBytes = 8 << 20

// PageSpeedRepository implements repository.AnalyzerRepository.
type PageSpeedRepository struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

// NewPageSpeedRepository creates an analyzer. key may be empty; the API then
// applies its anonymous quota.
func NewPageSpeedRepository(endpoint, key string, c *http.Client, logger *zap.Logger) repository.AnalyzerRepository {
	if c == nil {
		c = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageSpeedRepository{endpoint: endpoint, apiKey: key, client: c, logger: logger}
}

type lighthouseAudit struct {
	NumericValue float64 `json:"numericValue"`
	DisplayValue string  `json:"displayValue"`
}

type pageSpeedResponse struct {
	ID               string `json:"id"`
	LighthouseResult struct {
		FinalURL   string `json:"finalUrl"`
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]lighthouseAudit `json:"audits"`
	} `json:"lighthouseResult"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze runs one test for device.
func (r *PageSpeedRepository) Analyze(ctx context.Context, pageURL string, device entity.DeviceStrategy) (entity.DeviceAnalysis, error) {
	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("strategy", string(device))
	q.Set("category", "performance")
	if r.apiKey != "" {
		q.Set("key", r.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return entity.DeviceAnalysis{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	r.logger.Debug("pagespeed request", zap.String("url", pageURL), zap.String("device", string(device)))
	resp, err := r.client.Do(req)
	if err != nil {
		return entity.DeviceAnalysis{}, apperrors.New(apperrors.TypeNetwork, err, "pagespeed %s: %v", device, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return entity.DeviceAnalysis{}, fmt.Errorf("read pagespeed response: %w", err)
	}

	var payload pageSpeedResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return entity.DeviceAnalysis{}, apperrors.FromStatus(resp.StatusCode, body)
		}
		return entity.DeviceAnalysis{}, fmt.Errorf("decode pagespeed response: %w", err)
	}
	if payload.Error != nil {
		return entity.DeviceAnalysis{}, &apperrors.Error{
			Type:    apperrors.TypeBadRequest,
			Status:  payload.Error.Code,
			Message: fmt.Sprintf("pagespeed %s: %s", device, payload.Error.Message),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return entity.DeviceAnalysis{}, apperrors.FromStatus(resp.StatusCode, body)
	}

	score := payload.LighthouseResult.Categories.Performance.Score
	if score == nil {
		return entity.DeviceAnalysis{}, fmt.Errorf("pagespeed %s: no performance score in response", device)
	}

	audits := payload.LighthouseResult.Audits
	result := entity.DeviceAnalysis{
		Device:            device,
		URL:               pageURL,
		Score:             int(math.Round(*score * 100)),
		FirstContentful:   metric(audits, "first-contentful-paint"),
		LargestContentful: metric(audits, "largest-contentful-paint"),
		TotalBlocking:     metric(audits, "total-blocking-time"),
		LayoutShift:       metric(audits, "cumulative-layout-shift"),
		SpeedIndex:        metric(audits, "speed-index"),
	}
	if payload.LighthouseResult.FinalURL != "" {
		result.URL = payload.LighthouseResult.FinalURL
	}
	return result, nil
}

func metric(audits map[string]lighthouseAudit, key string) entity.Metric {
	a, ok := audits[key]
	if !ok {
		return entity.Metric{Display: "n/a"}
	}
	return entity.Metric{Value: a.NumericValue, Display: a.DisplayValue}
}
