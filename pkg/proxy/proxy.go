package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/NethermindEth/art-proxy/pkg/proxy/art"
	"github.com/NethermindEth/art-proxy/pkg/proxy/health"
	"github.com/NethermindEth/art-proxy/pkg/proxy/inference"
	"github.com/NethermindEth/art-proxy/pkg/proxy/setup"
)

const (
	Name    = "AI Art Generator API"
	Version = "1.0.0"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type Proxy struct {
	styles       *art.StyleTable
	validator    *art.Validator
	orchestrator *inference.Orchestrator
	reporter     *health.Reporter
	apiRouter    *gin.Engine

	generateCache *expirable.LRU[inference.Payload, inference.Outcome]

	primary          inference.Endpoint
	fallback         inference.Endpoint
	corsAllowOrigins []string
	apiIpPort        string

	closeOnce sync.Once
}

type ProxyConfig struct {
	// Client performs single inference attempts; retries and fallback are
	// layered on top by the proxy.
	Client     inference.Client
	HttpClient *http.Client
	Styles     *art.StyleTable

	Primary     inference.Endpoint
	Fallback    inference.Endpoint
	RetryPolicy inference.RetryPolicy

	HealthTimeout    time.Duration
	CorsAllowOrigins []string
	CacheSize        int
	CacheTtl         time.Duration
	ApiIpPort        string
}

func NewProxy(config *ProxyConfig) (*Proxy, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}
	if config.Client == nil {
		return nil, errors.New("inference client is nil")
	}

	styles := config.Styles
	if styles == nil {
		styles = art.DefaultStyleTable()
	}

	validator, err := art.NewValidator(styles)
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	retrier := inference.NewRetrier(config.Client, config.RetryPolicy)

	proxy := &Proxy{
		styles:       styles,
		validator:    validator,
		orchestrator: inference.NewOrchestrator(retrier, config.Primary, config.Fallback),

		primary:          config.Primary,
		fallback:         config.Fallback,
		corsAllowOrigins: config.CorsAllowOrigins,
		apiIpPort:        config.ApiIpPort,
	}

	if config.CacheSize > 0 {
		proxy.generateCache = expirable.NewLRU[inference.Payload, inference.Outcome](config.CacheSize, nil, config.CacheTtl)
	}

	router, err := proxy.generateRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	proxy.apiRouter = router

	proxy.reporter = health.NewReporter(health.ReporterOptions{
		HttpClient: config.HttpClient,
		Primary:    config.Primary,
		Fallback:   config.Fallback,
		Styles:     styles.Names(),
		Timeout:    config.HealthTimeout,
	})

	return proxy, nil
}

func NewProxyConfigFromSetupResult(setupResult *setup.SetupResult) (*ProxyConfig, error) {
	if setupResult == nil {
		return nil, errors.New("setup result is nil")
	}

	httpClient := &http.Client{}

	client := inference.NewProviderClient(map[inference.Provider]inference.Client{
		inference.ProviderHuggingFace: inference.NewHuggingFaceClient(httpClient, inference.DefaultGenerateTimeout),
		inference.ProviderOpenAi:      inference.NewOpenAiClient(setupResult.OpenAiBaseUrl, inference.DefaultGenerateTimeout),
	})

	return &ProxyConfig{
		Client:      client,
		HttpClient:  httpClient,
		Styles:      art.DefaultStyleTable(),
		Primary:     setupResult.Primary,
		Fallback:    setupResult.Fallback,
		RetryPolicy: inference.DefaultRetryPolicy(),

		HealthTimeout:    inference.DefaultHealthTimeout,
		CorsAllowOrigins: setupResult.CorsAllowOrigins,
		CacheSize:        setupResult.CacheSize,
		CacheTtl:         setupResult.CacheTtl,
		ApiIpPort:        setupResult.ApiIpPort,
	}, nil
}

// Generate runs one art request through validation, enhancement and the
// primary/fallback chain.
func (p *Proxy) Generate(ctx context.Context, req art.GenerateRequest) (*art.ArtResponse, error) {
	artReq, err := p.validator.Validate(req)
	if err != nil {
		return nil, err
	}

	if err := p.checkCredentials(); err != nil {
		return nil, err
	}

	payload := inference.Payload{
		Inputs: p.styles.Enhance(artReq.Prompt, artReq.Style),
		Parameters: inference.Parameters{
			Width:  artReq.Width,
			Height: artReq.Height,
		},
	}

	outcome, cached := p.cachedOutcome(payload)
	if !cached {
		outcome = p.orchestrator.Generate(ctx, payload)
		if err := outcome.Err(); err != nil {
			return nil, err
		}
	}

	resp, err := art.BuildResponse(outcome.Image, artReq, outcome.Model)
	if err != nil {
		return nil, err
	}

	// only outcomes that produced a response are cached
	if !cached && p.generateCache != nil {
		p.generateCache.Add(payload, outcome)
	}

	return resp, nil
}

func (p *Proxy) cachedOutcome(payload inference.Payload) (inference.Outcome, bool) {
	if p.generateCache == nil {
		return inference.Outcome{}, false
	}

	outcome, ok := p.generateCache.Get(payload)
	if ok {
		slog.Debug("serving cached image", "model", outcome.Model, "inputs", payload.Inputs)
	}
	return outcome, ok
}

func (p *Proxy) checkCredentials() error {
	for _, endpoint := range []inference.Endpoint{p.primary, p.fallback} {
		if endpoint.Token == "" {
			return &ConfigurationError{Setting: setup.CredentialEnv(endpoint.Provider)}
		}
	}
	return nil
}

func (p *Proxy) Health(ctx context.Context) health.Report {
	return p.reporter.Health(ctx)
}

// Start serves the API until ctx is done, then shuts the server down.
func (p *Proxy) Start(ctx context.Context) error {
	defer p.Close()

	if p.apiIpPort == "" {
		slog.Info("api ip port is empty, skipping server")
		return nil
	}

	server := &http.Server{
		Addr:              p.apiIpPort,
		Handler:           p.apiRouter,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.Info("starting server", "port", p.apiIpPort, "primary", p.primary.Name, "fallback", p.fallback.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		slog.Info("server stopped")
		return nil
	})

	return group.Wait()
}

// Close releases the health probe workers. Start calls it on return.
func (p *Proxy) Close() {
	p.closeOnce.Do(p.reporter.Close)
}

func (p *Proxy) Primary() inference.Endpoint {
	return p.primary
}

func (p *Proxy) Fallback() inference.Endpoint {
	return p.fallback
}

func (p *Proxy) ApiIpPort() string {
	return p.apiIpPort
}
