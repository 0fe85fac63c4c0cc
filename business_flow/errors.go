// Package businessflow contains the core business logic and use cases for link shortening workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Link creation errors
	ErrInvalidURL          = errors.New("long url is not a valid http or https url")
	ErrAliasTaken          = errors.New("custom alias is already taken")
	ErrAllocationExhausted = errors.New("could not allocate a unique short code")
	ErrTopicInvalid        = errors.New("topic is not a known value")

	// Resolution errors
	ErrShortLinkNotFound = errors.New("short link not found")

	// Analytics errors
	ErrAnalyticsAccessDenied = errors.New("analytics access denied")

	// Customer-related errors
	ErrCustomerNotFound = errors.New("customer not found")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsInvalidURL(err error) bool {
	return errors.Is(err, ErrInvalidURL)
}

func IsAliasTaken(err error) bool {
	return errors.Is(err, ErrAliasTaken)
}

func IsAllocationExhausted(err error) bool {
	return errors.Is(err, ErrAllocationExhausted)
}

func IsTopicInvalid(err error) bool {
	return errors.Is(err, ErrTopicInvalid)
}

func IsShortLinkNotFound(err error) bool {
	return errors.Is(err, ErrShortLinkNotFound)
}

func IsAnalyticsAccessDenied(err error) bool {
	return errors.Is(err, ErrAnalyticsAccessDenied)
}

func IsCustomerNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}
