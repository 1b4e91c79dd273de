package api

import (
	"errors"

	"github.com/example/storefront/domain/fault"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps a fault code to its HTTP status.
func statusFor(f *fault.Error) int {
	switch f.Code {
	case fault.CodeNotFound, fault.CodePromoNotFound:
		return fiber.StatusNotFound
	}
	switch f.Code.Kind() {
	case fault.KindValidation:
		return fiber.StatusBadRequest
	case fault.KindConflict, fault.KindInvariant:
		return fiber.StatusConflict
	default:
		return fiber.StatusServiceUnavailable
	}
}

// writeError renders err as an ErrorResponse. Untyped errors are reported
// as service unavailable.
func (m *Module) writeError(c *fiber.Ctx, err error) error {
	f := fault.As(err)
	status := statusFor(f)
	if status == fiber.StatusServiceUnavailable {
		m.logger.Error("Request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:   string(f.Code),
		Message: f.Message,
		Detail:  detailOf(f),
	})
}

// detailOf strips the code and message already carried by ErrorResponse.
func detailOf(f *fault.Error) *fault.Error {
	d := fault.Error{
		ProductID: f.ProductID,
		Size:      f.Size,
		Requested: f.Requested,
		Available: f.Available,
		Shortfall: f.Shortfall,
		PromoCode: f.PromoCode,
		From:      f.From,
		To:        f.To,
	}
	if d == (fault.Error{}) {
		return nil
	}
	return &d
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
