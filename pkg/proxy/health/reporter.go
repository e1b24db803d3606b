package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/NethermindEth/art-proxy/pkg/proxy/inference"
)

const StatusHealthy = "healthy"

type Report struct {
	Status            string   `json:"status"`
	TokenConfigured   bool     `json:"token_configured"`
	ApiReachable      bool     `json:"huggingface_api_status"`
	FallbackReachable bool     `json:"fallback_api_status"`
	AvailableStyles   []string `json:"available_styles"`
	CurrentModel      string   `json:"current_model"`
	FallbackModel     string   `json:"fallback_model"`
}

type ReporterOptions struct {
	HttpClient *http.Client
	Primary    inference.Endpoint
	Fallback   inference.Endpoint
	Styles     []string
	Timeout    time.Duration
}

// Reporter probes the configured endpoints. Probe failures are reported as
// unreachable and never returned as errors. The probe pool is unbounded so
// concurrent health requests never queue behind each other.
type Reporter struct {
	httpClient *http.Client
	primary    inference.Endpoint
	fallback   inference.Endpoint
	styles     []string
	timeout    time.Duration
	pool       pond.Pool
}

func NewReporter(opts ReporterOptions) *Reporter {
	if opts.HttpClient == nil {
		opts.HttpClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = inference.DefaultHealthTimeout
	}

	return &Reporter{
		httpClient: opts.HttpClient,
		primary:    opts.Primary,
		fallback:   opts.Fallback,
		styles:     opts.Styles,
		timeout:    opts.Timeout,
		pool:       pond.NewPool(0),
	}
}

func (r *Reporter) Health(ctx context.Context) Report {
	var primaryReachable, fallbackReachable bool

	group := r.pool.NewGroup()
	group.Submit(
		func() { primaryReachable = r.probe(ctx, r.primary) },
		func() { fallbackReachable = r.probe(ctx, r.fallback) },
	)
	if err := group.Wait(); err != nil {
		slog.Warn("health probes did not complete", "error", err)
	}

	return Report{
		Status:            StatusHealthy,
		TokenConfigured:   r.primary.Token != "" && r.fallback.Token != "",
		ApiReachable:      primaryReachable,
		FallbackReachable: fallbackReachable,
		AvailableStyles:   r.styles,
		CurrentModel:      r.primary.Name,
		FallbackModel:     r.fallback.Name,
	}
}

func (r *Reporter) probe(ctx context.Context, endpoint inference.Endpoint) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL, nil)
	if err != nil {
		slog.Debug("failed to create health request", "model", endpoint.Name, "error", err)
		return false
	}
	if endpoint.Token != "" {
		req.Header.Set("Authorization", "Bearer "+endpoint.Token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		slog.Debug("health probe failed", "model", endpoint.Name, "error", err)
		return false
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Close releases the probe pool.
func (r *Reporter) Close() {
	r.pool.StopAndWait()
}
