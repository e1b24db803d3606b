package setup

import (
	"fmt"
	"strings"

	"github.com/NethermindEth/art-proxy/pkg/proxy/inference"
)

type CatalogEntry struct {
	Name     string
	Provider inference.Provider
}

// Catalog lists the model identifiers that may be configured as primary or
// fallback.
var Catalog = []CatalogEntry{
	{Name: "runwayml/stable-diffusion-v1-5", Provider: inference.ProviderHuggingFace},
	{Name: "CompVis/stable-diffusion-v1-4", Provider: inference.ProviderHuggingFace},
	{Name: "stabilityai/stable-diffusion-2-1", Provider: inference.ProviderHuggingFace},
	{Name: "stabilityai/stable-diffusion-xl-base-1.0", Provider: inference.ProviderHuggingFace},
	{Name: "dall-e-2", Provider: inference.ProviderOpenAi},
}

func LookupModel(name string) (CatalogEntry, bool) {
	for _, entry := range Catalog {
		if entry.Name == name {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}

func catalogNames() []string {
	names := make([]string, 0, len(Catalog))
	for _, entry := range Catalog {
		names = append(names, entry.Name)
	}
	return names
}

// ResolveEndpoint builds the endpoint for a catalog model, attaching the
// provider's URL and credential from the config.
func (c *Config) ResolveEndpoint(name string) (inference.Endpoint, error) {
	entry, ok := LookupModel(name)
	if !ok {
		return inference.Endpoint{}, fmt.Errorf("unknown model %q, expected one of: %s", name, strings.Join(catalogNames(), ", "))
	}

	switch entry.Provider {
	case inference.ProviderHuggingFace:
		return inference.Endpoint{
			Name:     entry.Name,
			URL:      strings.TrimRight(c.HuggingFaceBaseUrl, "/") + "/" + entry.Name,
			Provider: entry.Provider,
			Token:    c.HuggingFaceToken,
		}, nil
	case inference.ProviderOpenAi:
		return inference.Endpoint{
			Name:     entry.Name,
			URL:      strings.TrimRight(c.OpenAiBaseUrl, "/") + "/models/" + entry.Name,
			Provider: entry.Provider,
			Token:    c.OpenAiApiKey,
		}, nil
	default:
		return inference.Endpoint{}, fmt.Errorf("unsupported provider %q for model %q", entry.Provider, entry.Name)
	}
}

// CredentialEnv names the environment variable holding the provider's token.
func CredentialEnv(provider inference.Provider) string {
	switch provider {
	case inference.ProviderOpenAi:
		return EnvOpenAiApiKey
	default:
		return EnvHuggingFaceToken
	}
}
