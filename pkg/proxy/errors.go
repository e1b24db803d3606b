package proxy

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/NethermindEth/art-proxy/pkg/proxy/art"
	"github.com/NethermindEth/art-proxy/pkg/proxy/inference"
)

// ConfigurationError reports a credential missing at request time.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s not configured", e.Setting)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func mapError(err error) (int, errorResponse) {
	var validationErr *art.ValidationError
	var configurationErr *ConfigurationError
	var encodingErr *art.EncodingError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, errorResponse{Detail: validationErr.Error()}
	case errors.As(err, &configurationErr):
		return http.StatusInternalServerError, errorResponse{Detail: configurationErr.Error()}
	case errors.Is(err, inference.ErrUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Detail: err.Error()}
	case errors.As(err, &encodingErr):
		return http.StatusInternalServerError, errorResponse{Detail: encodingErr.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Detail: err.Error()}
	}
}
