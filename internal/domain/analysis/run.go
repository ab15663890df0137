package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LLMModel is the LLM backend the analysis run asks for.
type LLMModel string

const (
	ModelOllama LLMModel = "ollama"
	ModelGPT5   LLMModel = "gpt5"
)

// DefaultModel is selected on start and after a reset.
const DefaultModel = ModelOllama

// Models lists the recognized LLM backends in display order.
var Models = []LLMModel{ModelOllama, ModelGPT5}

// RunRequest is the POST /run body.
type RunRequest struct {
	CustomerName string   `json:"customer_name" validate:"required"`
	LLMModel     LLMModel `json:"llm_model" validate:"required,oneof=ollama gpt5"`
	// UseCache is sent only when the console exposes the cache toggle.
	UseCache *bool `json:"use_cache,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request before it is issued. A blank or whitespace-only
// customer name yields ErrBlankCustomer.
func (r RunRequest) Validate() error {
	if strings.TrimSpace(r.CustomerName) == "" {
		return ErrBlankCustomer
	}
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (got %v)", ErrInvalidRequest, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// ParseModel maps user input to a recognized model.
func ParseModel(s string) (LLMModel, error) {
	m := LLMModel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Models {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown llm model %q", ErrInvalidRequest, s)
}
