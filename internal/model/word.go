package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidWord is returned when a word pair fails validation.
var ErrInvalidWord = errors.New("invalid word pair")

const maxWordLen = 200

var validate = validator.New()

// NewWordInput carries user-entered text for a new word pair.
type NewWordInput struct {
	Source string `validate:"required,max=200"`
	Target string `validate:"required,max=200"`
}

// NewWordPair trims and validates the input and assigns a fresh ID.
func NewWordPair(in NewWordInput, now time.Time) (WordPair, error) {
	in.Source = strings.TrimSpace(in.Source)
	in.Target = strings.TrimSpace(in.Target)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return WordPair{}, fmt.Errorf("%w: %s", ErrInvalidWord, describeFieldError(verrs[0]))
		}
		return WordPair{}, fmt.Errorf("%w: %v", ErrInvalidWord, err)
	}
	return WordPair{
		ID:        uuid.NewString(),
		Source:    in.Source,
		Target:    in.Target,
		CreatedAt: now,
	}, nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " must not be empty"
	case "max":
		return fmt.Sprintf("%s must be at most %d characters", field, maxWordLen)
	default:
		return fmt.Sprintf("%s failed %q check", field, fe.Tag())
	}
}
