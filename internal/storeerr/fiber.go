package storeerr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps the service error taxonomy onto HTTP responses. Every
// typed failure is surfaced verbatim in the response body; nothing is
// swallowed.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		notAuth    *NotAuthorizedError
		stock      *InsufficientStockError
		transition *IllegalTransitionError
		declined   *PaymentDeclinedError
		fiberErr   *fiber.Error
	)

	status := fiber.StatusInternalServerError
	code := "internal_error"
	message := "internal server error"

	switch {
	case errors.As(err, &validation):
		status, code, message = fiber.StatusBadRequest, "validation_error", validation.Error()
	case errors.As(err, &stock):
		status, code, message = fiber.StatusConflict, "insufficient_stock", stock.Error()
	case errors.As(err, &notAuth):
		status, code, message = fiber.StatusForbidden, "not_authorized", notAuth.Error()
	case errors.As(err, &transition):
		status, code, message = fiber.StatusConflict, "illegal_transition", transition.Error()
	case errors.As(err, &notFound):
		status, code, message = fiber.StatusNotFound, "not_found", notFound.Error()
	case errors.As(err, &declined):
		status, code, message = fiber.StatusPaymentRequired, "payment_declined", declined.Error()
	case errors.As(err, &fiberErr):
		status, code, message = fiberErr.Code, "http_error", fiberErr.Message
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}
