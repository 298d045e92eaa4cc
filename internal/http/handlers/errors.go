package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"certgen/internal/domain"
	"certgen/internal/infra/logging"
)

// ErrorHandler renders every failure as {"error": "<message>"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := domain.StatusFor(err)
	msg := err.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		logging.Error("Request failed", "path", c.Path(), "status", code, "message", msg)
	} else {
		logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}
