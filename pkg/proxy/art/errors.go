package art

import "strings"

// ValidationError reports malformed client input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// EncodingError reports an upstream image payload that cannot be returned.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "failed to encode image: " + e.Reason
}
