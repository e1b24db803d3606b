package inference_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/art-proxy/pkg/proxy/inference"
)

type mockHttpTransport struct {
	roundTrip func(*http.Request) (*http.Response, error)
}

func (m *mockHttpTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.roundTrip(req)
}

func TestHuggingFaceClient_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf_secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a cat, pixel art style", body["inputs"])
		assert.Equal(t, map[string]interface{}{"width": float64(512), "height": float64(512)}, body["parameters"])

		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("PNGDATA"))
	}))
	defer server.Close()

	client := inference.NewHuggingFaceClient(server.Client(), time.Second)
	outcome := client.Call(context.Background(), inference.Endpoint{Name: "m", URL: server.URL, Token: "hf_secret"}, testPayload)

	require.True(t, outcome.IsSuccess())
	assert.Equal(t, []byte("PNGDATA"), outcome.Image)
}

func TestHuggingFaceClient_NonOkStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}` + "\n"))
	}))
	defer server.Close()

	client := inference.NewHuggingFaceClient(server.Client(), time.Second)
	outcome := client.Call(context.Background(), inference.Endpoint{URL: server.URL}, testPayload)

	assert.True(t, outcome.IsTransient())
	assert.Equal(t, http.StatusServiceUnavailable, outcome.Status)
	assert.Equal(t, `{"error":"Model is currently loading"}`, outcome.Message)
}

func TestHuggingFaceClient_NetworkError(t *testing.T) {
	httpClient := &http.Client{
		Transport: &mockHttpTransport{
			roundTrip: func(req *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		},
	}

	client := inference.NewHuggingFaceClient(httpClient, time.Second)
	outcome := client.Call(context.Background(), inference.Endpoint{URL: "http://primary.invalid"}, testPayload)

	assert.True(t, outcome.IsTransient())
	assert.Equal(t, 0, outcome.Status)
	assert.Contains(t, outcome.Message, assert.AnError.Error())
}

func TestHuggingFaceClient_Timeout(t *testing.T) {
	httpClient := &http.Client{
		Transport: &mockHttpTransport{
			roundTrip: func(req *http.Request) (*http.Response, error) {
				<-req.Context().Done()
				return nil, req.Context().Err()
			},
		},
	}

	client := inference.NewHuggingFaceClient(httpClient, 10*time.Millisecond)
	outcome := client.Call(context.Background(), inference.Endpoint{URL: "http://primary.invalid"}, testPayload)

	assert.True(t, outcome.IsTransient())
	assert.Contains(t, outcome.Message, "timed out")
}

func TestHuggingFaceClient_InvalidUrl(t *testing.T) {
	client := inference.NewHuggingFaceClient(nil, 0)
	outcome := client.Call(context.Background(), inference.Endpoint{URL: "://bad"}, testPayload)

	assert.True(t, outcome.IsFatal())
}

func TestOpenAiClient_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "dall-e-2", req["model"])
		assert.Equal(t, "512x512", req["size"])
		assert.Equal(t, "b64_json", req["response_format"])
		assert.Equal(t, testPayload.Inputs, req["prompt"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"created": 1,
			"data": []map[string]string{
				{"b64_json": base64.StdEncoding.EncodeToString([]byte("PNGDATA"))},
			},
		})
	}))
	defer server.Close()

	client := inference.NewOpenAiClient(server.URL+"/v1", time.Second)
	outcome := client.Call(context.Background(), inference.Endpoint{Name: "dall-e-2", Provider: inference.ProviderOpenAi, Token: "sk-test"}, testPayload)

	require.True(t, outcome.IsSuccess(), outcome.Message)
	assert.Equal(t, []byte("PNGDATA"), outcome.Image)
}

func TestOpenAiClient_ApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	client := inference.NewOpenAiClient(server.URL+"/v1", time.Second)
	outcome := client.Call(context.Background(), inference.Endpoint{Name: "dall-e-2", Token: "sk-test"}, testPayload)

	assert.True(t, outcome.IsTransient())
	assert.Equal(t, http.StatusInternalServerError, outcome.Status)
	assert.Equal(t, "boom", outcome.Message)
}

func TestOpenAiClient_MalformedImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"created":1,"data":[{"b64_json":"!!not-base64!!"}]}`))
	}))
	defer server.Close()

	client := inference.NewOpenAiClient(server.URL+"/v1", time.Second)
	outcome := client.Call(context.Background(), inference.Endpoint{Name: "dall-e-2", Token: "sk-test"}, testPayload)

	assert.True(t, outcome.IsFatal())
}

func TestOpenAiClient_NoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"created":1,"data":[]}`))
	}))
	defer server.Close()

	client := inference.NewOpenAiClient(server.URL+"/v1", time.Second)
	outcome := client.Call(context.Background(), inference.Endpoint{Name: "dall-e-2", Token: "sk-test"}, testPayload)

	assert.True(t, outcome.IsFatal())
	assert.Equal(t, "no image data returned", outcome.Message)
}

func TestProviderClient_Call(t *testing.T) {
	hf := &mockClient{
		call: func(ctx context.Context, endpoint inference.Endpoint, payload inference.Payload) inference.Outcome {
			return inference.Success([]byte("hf"))
		},
	}
	oa := &mockClient{
		call: func(ctx context.Context, endpoint inference.Endpoint, payload inference.Payload) inference.Outcome {
			return inference.Success([]byte("openai"))
		},
	}

	client := inference.NewProviderClient(map[inference.Provider]inference.Client{
		inference.ProviderHuggingFace: hf,
		inference.ProviderOpenAi:      oa,
	})

	outcome := client.Call(context.Background(), inference.Endpoint{Provider: inference.ProviderHuggingFace}, testPayload)
	assert.Equal(t, []byte("hf"), outcome.Image)

	outcome = client.Call(context.Background(), inference.Endpoint{Provider: inference.ProviderOpenAi}, testPayload)
	assert.Equal(t, []byte("openai"), outcome.Image)

	outcome = client.Call(context.Background(), inference.Endpoint{Provider: "replicate"}, testPayload)
	assert.True(t, outcome.IsFatal())
}
