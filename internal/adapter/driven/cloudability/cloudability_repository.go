package cloudability

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	"github.com/keboola/go-utils/pkg/orderedmap"
	"go.uber.org/zap"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/domain/repository"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
	"github.com/diillson/cloudability-export-go/pkg/version"
)

const (
	DefaultBaseURL = "https://api.cloudability.com/v3"
	DialTimeout    = 10 * time.Second
	KeepAlive      = 30 * time.Second

	reportEndpoint   = "/reporting/cost/run"
	measuresEndpoint = "/reporting/cost/measures"
	bodyExcerptSize  = 300
)

// CloudabilityRepositoryImpl implementa o BillingRepository sobre a API v3 do Cloudability.
type CloudabilityRepositoryImpl struct {
	http   *resty.Client
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewCloudabilityRepository cria uma nova implementação do BillingRepository.
func NewCloudabilityRepository(baseURL string, timeout time.Duration, clock clockwork.Clock, logger *zap.Logger) repository.BillingRepository {
	return newCloudabilityRepository(baseURL, timeout, clock, logger)
}

func newCloudabilityRepository(baseURL string, timeout time.Duration, clock clockwork.Clock, logger *zap.Logger) *CloudabilityRepositoryImpl {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CloudabilityRepositoryImpl{
		http:   createHTTPClient(baseURL, timeout, logger),
		clock:  clock,
		logger: logger,
	}
}

func createHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *resty.Client {
	c := resty.New()
	c.SetLogger(logger.Sugar())
	c.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	c.SetHeader("Accept", "application/json")
	c.SetHeader("User-Agent", version.UserAgent())
	// Without a client timeout the caller's context bounds each request.
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetTransport(createTransport())
	// One attempt per run.
	c.SetRetryCount(0)
	c.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		logger.Debug("cloudability response",
			zap.String("method", res.Request.Method),
			zap.String("url", res.Request.URL),
			zap.Int("status", res.StatusCode()),
			zap.Duration("elapsed", res.Time()))
		return nil
	})
	return c
}

func createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   DialTimeout,
		KeepAlive: KeepAlive,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

type reportResponse struct {
	Results      []*orderedmap.OrderedMap `json:"results"`
	TotalResults *int                     `json:"total_results"`
}

// Measures retorna o catálogo de dimensões e métricas.
func (r *CloudabilityRepositoryImpl) Measures(ctx context.Context, token string) (entity.Measures, error) {
	res, err := r.http.R().
		SetContext(ctx).
		SetBasicAuth(token, "").
		Get(measuresEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: requesting measures: %w", types.ErrFetch, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: measures returned %s%s", types.ErrFetch, res.Status(), bodyExcerpt(res.Body()))
	}

	var measures entity.Measures
	if err := json.Unmarshal(res.Body(), &measures); err != nil {
		return nil, fmt.Errorf("%w: measures response is not a list: %w", types.ErrFetch, err)
	}
	return measures, nil
}

// Fetch executa o relatório de custos na janela [agora - dias, agora].
func (r *CloudabilityRepositoryImpl) Fetch(ctx context.Context, token string, req entity.ReportRequest) ([]*entity.Record, entity.Window, error) {
	window := entity.NewWindow(r.clock.Now(), req.Days)

	params, err := reportQuery(req, window)
	if err != nil {
		return nil, window, fmt.Errorf("%w: %w", types.ErrFetch, err)
	}

	r.logger.Debug("requesting cost report",
		zap.String("start_date", window.StartDate()),
		zap.String("end_date", window.EndDate()),
		zap.Strings("dimensions", req.Dimensions),
		zap.Strings("metrics", req.Metrics))

	res, err := r.http.R().
		SetContext(ctx).
		SetBasicAuth(token, "").
		SetQueryParamsFromValues(params).
		Get(reportEndpoint)
	if err != nil {
		return nil, window, fmt.Errorf("%w: requesting cost report: %w", types.ErrFetch, err)
	}
	if !res.IsSuccess() {
		return nil, window, fmt.Errorf("%w: cost report returned %s%s", types.ErrFetch, res.Status(), bodyExcerpt(res.Body()))
	}

	var body reportResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return nil, window, fmt.Errorf("%w: cost report is not tabular JSON: %w", types.ErrFetch, err)
	}
	if body.Results == nil {
		return nil, window, fmt.Errorf("%w: cost report has no results field", types.ErrFetch)
	}
	if body.TotalResults != nil && *body.TotalResults > len(body.Results) {
		return nil, window, fmt.Errorf("%w: cost report is paginated (%d of %d rows returned), narrow the report", types.ErrFetch, len(body.Results), *body.TotalResults)
	}

	records := make([]*entity.Record, 0, len(body.Results))
	for _, row := range body.Results {
		if row == nil {
			continue
		}
		records = append(records, toRecord(row, req.Mappings))
	}
	return records, window, nil
}

func reportQuery(req entity.ReportRequest, window entity.Window) (url.Values, error) {
	params := url.Values{}
	if len(req.Dimensions) > 0 {
		params.Set("dimensions", strings.Join(req.Dimensions, ","))
	}
	if len(req.Metrics) > 0 {
		params.Set("metrics", strings.Join(req.Metrics, ","))
	}
	params.Set("start_date", window.StartDate())
	params.Set("end_date", window.EndDate())
	for _, f := range req.Filters {
		encoded, err := f.Encode()
		if err != nil {
			return nil, err
		}
		params.Add("filters", encoded)
	}
	return params, nil
}

// toRecord copia a linha mantendo a ordem das chaves e aplicando os renomes.
func toRecord(row *orderedmap.OrderedMap, mappings map[string]string) *entity.Record {
	rec := entity.NewRecord()
	for _, key := range row.Keys() {
		value, _ := row.Get(key)
		if mapped, ok := mappings[key]; ok && mapped != "" {
			key = mapped
		}
		rec.Set(key, value)
	}
	return rec
}

func bodyExcerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return ""
	}
	if len(s) > bodyExcerptSize {
		s = s[:bodyExcerptSize] + "..."
	}
	return ": " + s
}
