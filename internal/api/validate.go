package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// commentPayload exists so comment content goes through the same struct
// validation path as every other payload.
type commentPayload struct {
	Content string `json:"content" validate:"required"`
}

// reactionPayload is the body for placing a reaction.
type reactionPayload struct {
	ReactionType ReactionType `json:"reaction_type" validate:"required,oneof=like dislike"`
}

// newValidator builds the validator shared by all payload checks.
func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// checkPayload validates a payload struct and converts validator output
// into a *ValidationError. Validation happens before any network call;
// a rejected payload never reaches the wire.
func (c *Client) checkPayload(op string, payload any) error {
	if err := c.validate.Struct(payload); err != nil {
		return &ValidationError{Op: op, Problems: validationProblems(err)}
	}
	return nil
}

// validationProblems converts validator.ValidationErrors to user-friendly
// messages.
func validationProblems(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(verrs))
	for _, e := range verrs {
		problems = append(problems, formatFieldError(e))
	}
	return problems
}

// formatFieldError creates a user-friendly message for a single field error.
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s must not be empty", field)
		}
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
