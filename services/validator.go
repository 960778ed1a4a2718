package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Clock returns the current time, injected so tests can control it.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

type joinRequest struct {
	Name string `validate:"required"`
}

type sendRequest struct {
	To   string      `validate:"required"`
	Text string      `validate:"required"`
	Kind domain.Kind `validate:"required,oneof=message private_message"`
}

// validationError exposes validator failures as ErrValidation.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", errors.ErrValidation, err)
}
