package inference

import (
	"errors"
	"fmt"
)

type OutcomeKind int

const (
	KindSuccess OutcomeKind = iota
	KindTransientFailure
	KindFatalFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindTransientFailure:
		return "transient_failure"
	case KindFatalFailure:
		return "fatal_failure"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

var ErrUnavailable = errors.New("image generation is temporarily unavailable")

// Outcome is the result of one or more inference attempts. Image is set only
// on success; Status is the upstream HTTP status when one was received.
type Outcome struct {
	Kind    OutcomeKind
	Image   []byte
	Status  int
	Message string
	// Model is the endpoint that produced a successful image.
	Model string
	// Unavailable marks the composed failure after primary and fallback both failed.
	Unavailable bool
}

func Success(image []byte) Outcome {
	return Outcome{Kind: KindSuccess, Image: image}
}

func Transient(status int, message string) Outcome {
	return Outcome{Kind: KindTransientFailure, Status: status, Message: message}
}

func Fatal(message string) Outcome {
	return Outcome{Kind: KindFatalFailure, Message: message}
}

func (o Outcome) IsSuccess() bool {
	return o.Kind == KindSuccess
}

func (o Outcome) IsTransient() bool {
	return o.Kind == KindTransientFailure
}

func (o Outcome) IsFatal() bool {
	return o.Kind == KindFatalFailure
}

// Err converts a failed outcome into an error. Composed unavailability wraps
// ErrUnavailable.
func (o Outcome) Err() error {
	switch {
	case o.IsSuccess():
		return nil
	case o.Unavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, o.Message)
	case o.Status != 0:
		return fmt.Errorf("%s (status %d): %s", o.Kind, o.Status, o.Message)
	default:
		return fmt.Errorf("%s: %s", o.Kind, o.Message)
	}
}

// describe renders a failure for log lines.
func (o Outcome) describe() string {
	if o.Status != 0 {
		return fmt.Sprintf("status %d: %s", o.Status, o.Message)
	}
	return o.Message
}
