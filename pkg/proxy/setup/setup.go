package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/NethermindEth/art-proxy/pkg/proxy/debug"
	"github.com/NethermindEth/art-proxy/pkg/proxy/inference"
)

type SetupResult struct {
	Primary          inference.Endpoint
	Fallback         inference.Endpoint
	OpenAiBaseUrl    string
	ApiIpPort        string
	CorsAllowOrigins []string
	CacheSize        int
	CacheTtl         time.Duration
}

// LogValue omits endpoint tokens and reports only whether they are set.
func (r *SetupResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("primaryModel", r.Primary.Name),
		slog.String("primaryUrl", r.Primary.URL),
		slog.Bool("primaryTokenSet", r.Primary.Token != ""),
		slog.String("fallbackModel", r.Fallback.Name),
		slog.String("fallbackUrl", r.Fallback.URL),
		slog.Bool("fallbackTokenSet", r.Fallback.Token != ""),
		slog.String("apiIpPort", r.ApiIpPort),
		slog.Any("corsAllowOrigins", r.CorsAllowOrigins),
		slog.Int("cacheSize", r.CacheSize),
		slog.Duration("cacheTtl", r.CacheTtl),
	)
}

// LoadEnvFiles loads variables from the given files (".env" when none are
// given) without overriding variables already set. A missing file is not an
// error.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("env file not found, using process environment", "path", path)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	return nil
}

func Setup() (*SetupResult, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}

	config, err := NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to get config from env: %w", err)
	}

	setupResult, err := NewSetupResult(config)
	if err != nil {
		return nil, err
	}

	if debug.IsShowSetup() {
		slog.Info("setup output", "setupOutput", setupResult)
	}

	return setupResult, nil
}

func NewSetupResult(config *Config) (*SetupResult, error) {
	primary, err := config.ResolveEndpoint(config.PrimaryModel)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve primary model: %w", err)
	}

	fallback, err := config.ResolveEndpoint(config.FallbackModel)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fallback model: %w", err)
	}

	for _, endpoint := range []inference.Endpoint{primary, fallback} {
		if endpoint.Token == "" {
			slog.Warn("api token not configured, generate requests will fail", "model", endpoint.Name, "env", CredentialEnv(endpoint.Provider))
		}
	}

	return &SetupResult{
		Primary:          primary,
		Fallback:         fallback,
		OpenAiBaseUrl:    config.OpenAiBaseUrl,
		ApiIpPort:        config.ApiIpPort,
		CorsAllowOrigins: config.CorsAllowOrigins,
		CacheSize:        config.GenerateCacheSize,
		CacheTtl:         config.GenerateCacheTtl,
	}, nil
}
