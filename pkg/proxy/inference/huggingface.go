package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBodySize = 4096

type HuggingFaceClient struct {
	httpClient *http.Client
	timeout    time.Duration
}

var _ Client = (*HuggingFaceClient)(nil)

func NewHuggingFaceClient(httpClient *http.Client, timeout time.Duration) *HuggingFaceClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}

	return &HuggingFaceClient{
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (c *HuggingFaceClient) Call(ctx context.Context, endpoint Endpoint, payload Payload) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return Fatal(fmt.Sprintf("failed to marshal payload: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return Fatal(fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+endpoint.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Transient(0, fmt.Sprintf("request timed out after %s", c.timeout))
		}
		return Transient(0, fmt.Sprintf("failed to perform request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return Transient(resp.StatusCode, strings.TrimSpace(string(text)))
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transient(resp.StatusCode, fmt.Sprintf("failed to read response body: %v", err))
	}

	return Success(image)
}
