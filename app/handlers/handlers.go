// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "url":
		return err.Field() + " must be a valid URL"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "alphanum":
		return err.Field() + " must contain only letters and numbers"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

func validationMessages(err error) []string {
	var messages []string
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range errs {
			messages = append(messages, getValidationErrorMessage(fieldErr))
		}
	}
	return messages
}

// authenticatedCustomerID pulls the customer ID stored by the auth middleware
func authenticatedCustomerID(c fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("customer_id").(uint)
	return id, ok
}
