package inference

type Provider string

const (
	ProviderHuggingFace Provider = "huggingface"
	ProviderOpenAi      Provider = "openai"
)

// Endpoint identifies one hosted model. Endpoints are fixed at startup.
type Endpoint struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Provider Provider `json:"provider"`
	Token    string   `json:"-"`
}

type Parameters struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Payload is the request body sent to a model endpoint.
type Payload struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
}
