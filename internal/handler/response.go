package handler

import (
	"errors"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/middleware"
	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, service.ErrInsufficientStock):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// respondError writes {"detail": ...}. Errors without a kind are logged and hidden behind a 500.
func respondError(c *fiber.Ctx, logger *logrus.Logger, funcName string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		config.LogError(logger, "handler", funcName, c.Method()+" "+c.Path(), nil, err)
		return detail(c, status, "Internal Server Error")
	}
	return detail(c, status, err.Error())
}

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok {
		return "system"
	}
	return userID
}

func getRoleCode(c *fiber.Ctx) string {
	code, _ := c.Locals(middleware.LocalRoleCode).(string)
	return code
}

func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(getUserID(c))
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &service.Error{Kind: service.ErrInvalidArgument, Msg: "Invalid " + name}
	}
	return id, nil
}

// optionalUUID parses an optional query value; "" and "all" mean no filter.
func optionalUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := c.Query(key)
	if raw == "" || raw == "all" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &service.Error{Kind: service.ErrInvalidArgument, Msg: "Invalid " + key}
	}
	return &id, nil
}

func invalidJSON(c *fiber.Ctx) error {
	return detail(c, fiber.StatusBadRequest, "Invalid JSON")
}
