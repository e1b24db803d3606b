package art

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MaxPromptLength  = 500
	MinDimension     = 128
	MaxDimension     = 1024
	DefaultDimension = 512
)

// GenerateRequest is the body of POST /api/generate as received on the wire.
// Pointers distinguish absent fields from zero values.
type GenerateRequest struct {
	Prompt *string `json:"prompt" validate:"required,max=500"`
	Style  *string `json:"style" validate:"required,artstyle"`
	Width  *int    `json:"width" validate:"omitempty,min=128,max=1024"`
	Height *int    `json:"height" validate:"omitempty,min=128,max=1024"`
}

// ArtRequest is a validated generation request with defaults applied.
type ArtRequest struct {
	Prompt string
	Style  Style
	Width  int
	Height int
}

func (r ArtRequest) Dimensions() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

type Validator struct {
	styles   *StyleTable
	validate *validator.Validate
}

func NewValidator(styles *StyleTable) (*Validator, error) {
	if styles == nil {
		return nil, errors.New("style table is nil")
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := validate.RegisterValidation("artstyle", func(fl validator.FieldLevel) bool {
		return styles.Contains(Style(fl.Field().String()))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register style validation: %w", err)
	}

	return &Validator{
		styles:   styles,
		validate: validate,
	}, nil
}

// Validate checks every field and reports all violations in field order.
func (v *Validator) Validate(req GenerateRequest) (ArtRequest, error) {
	err := v.validate.Struct(req)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ArtRequest{}, fmt.Errorf("failed to validate request: %w", err)
		}

		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, v.describe(req, fe))
		}
		return ArtRequest{}, &ValidationError{Problems: problems}
	}

	return ArtRequest{
		Prompt: *req.Prompt,
		Style:  Style(*req.Style),
		Width:  dimensionOrDefault(req.Width),
		Height: dimensionOrDefault(req.Height),
	}, nil
}

func (v *Validator) describe(req GenerateRequest, fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s: field required", fe.Field())
	}

	switch fe.Field() {
	case "prompt":
		return fmt.Sprintf("prompt must be at most %d characters (got %d)", MaxPromptLength, utf8.RuneCountInString(*req.Prompt))
	case "style":
		return fmt.Sprintf("style must be one of: %s (got %q)", strings.Join(v.styles.Names(), ", "), *req.Style)
	case "width":
		return fmt.Sprintf("width must be between %d and %d (got %d)", MinDimension, MaxDimension, *req.Width)
	case "height":
		return fmt.Sprintf("height must be between %d and %d (got %d)", MinDimension, MaxDimension, *req.Height)
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func dimensionOrDefault(dimension *int) int {
	if dimension == nil {
		return DefaultDimension
	}
	return *dimension
}
