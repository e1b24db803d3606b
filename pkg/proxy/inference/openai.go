package inference

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAiClient serves catalog entries backed by the OpenAI images API. The
// endpoint name is used as the model and the endpoint token as the API key.
type OpenAiClient struct {
	baseUrl string
	timeout time.Duration
}

var _ Client = (*OpenAiClient)(nil)

func NewOpenAiClient(baseUrl string, timeout time.Duration) *OpenAiClient {
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}

	return &OpenAiClient{
		baseUrl: baseUrl,
		timeout: timeout,
	}
}

func (c *OpenAiClient) Call(ctx context.Context, endpoint Endpoint, payload Payload) Outcome {
	config := openai.DefaultConfig(endpoint.Token)
	if c.baseUrl != "" {
		config.BaseURL = c.baseUrl
	}
	client := openai.NewClientWithConfig(config)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         payload.Inputs,
		Model:          endpoint.Name,
		Size:           fmt.Sprintf("%dx%d", payload.Parameters.Width, payload.Parameters.Height),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return openAiFailure(ctx, err, c.timeout)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return Fatal("no image data returned")
	}

	image, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return Fatal(fmt.Sprintf("malformed image data: %v", err))
	}

	return Success(image)
}

func openAiFailure(ctx context.Context, err error, timeout time.Duration) Outcome {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return Transient(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return Transient(reqErr.HTTPStatusCode, reqErr.Error())
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Transient(0, fmt.Sprintf("request timed out after %s", timeout))
	}

	return Transient(0, fmt.Sprintf("failed to perform request: %v", err))
}
