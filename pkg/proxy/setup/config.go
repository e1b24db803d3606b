package setup

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HuggingFaceToken   string
	HuggingFaceBaseUrl string
	OpenAiApiKey       string
	OpenAiBaseUrl      string
	PrimaryModel       string
	FallbackModel      string
	ApiIpPort          string
	CorsAllowOrigins   []string
	GenerateCacheSize  int
	GenerateCacheTtl   time.Duration
}

func NewConfigFromEnv() (*Config, error) {
	cacheSize, err := strconv.Atoi(getEnv(EnvGenerateCacheSize, "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvGenerateCacheSize, err)
	}

	cacheTtl, err := time.ParseDuration(getEnv(EnvGenerateCacheTtl, DefaultGenerateCacheTtl))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvGenerateCacheTtl, err)
	}

	config := &Config{
		HuggingFaceToken:   strings.TrimSpace(os.Getenv(EnvHuggingFaceToken)),
		HuggingFaceBaseUrl: getEnv(EnvHuggingFaceBaseUrl, DefaultHuggingFaceBaseUrl),
		OpenAiApiKey:       strings.TrimSpace(os.Getenv(EnvOpenAiApiKey)),
		OpenAiBaseUrl:      getEnv(EnvOpenAiBaseUrl, DefaultOpenAiBaseUrl),
		PrimaryModel:       getEnv(EnvPrimaryModel, DefaultPrimaryModel),
		FallbackModel:      getEnv(EnvFallbackModel, DefaultFallbackModel),
		ApiIpPort:          getEnv(EnvApiIpPort, DefaultApiIpPort),
		CorsAllowOrigins:   splitList(os.Getenv(EnvCorsAllowOrigins)),
		GenerateCacheSize:  cacheSize,
		GenerateCacheTtl:   cacheTtl,
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations that cannot serve requests. Missing tokens
// are not rejected here; generate requests fail fast instead.
func (c *Config) Validate() error {
	if _, ok := LookupModel(c.PrimaryModel); !ok {
		return fmt.Errorf("%s: unknown model %q", EnvPrimaryModel, c.PrimaryModel)
	}
	if _, ok := LookupModel(c.FallbackModel); !ok {
		return fmt.Errorf("%s: unknown model %q", EnvFallbackModel, c.FallbackModel)
	}
	if c.PrimaryModel == c.FallbackModel {
		return errors.New("PRIMARY_MODEL and FALLBACK_MODEL must differ")
	}
	if c.HuggingFaceBaseUrl == "" {
		return errors.New("HF_INFERENCE_BASE_URL is required")
	}
	if c.GenerateCacheSize < 0 {
		return errors.New("GENERATE_CACHE_SIZE must not be negative")
	}
	if c.GenerateCacheSize > 0 && c.GenerateCacheTtl <= 0 {
		return errors.New("GENERATE_CACHE_TTL must be positive when the cache is enabled")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
