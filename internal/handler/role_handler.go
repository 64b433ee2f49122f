package handler

import (
	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type RoleHandler struct {
	userService service.UserService
	logger      *logrus.Logger
}

func NewRoleHandler(userService service.UserService, logger *logrus.Logger) *RoleHandler {
	return &RoleHandler{userService: userService, logger: logger}
}

// GetRoles returns all available roles
// GET /api/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.userService.GetRoles()
	if err != nil {
		return respondError(c, h.logger, "GetRoles", err)
	}
	return c.JSON(roles)
}

// GetPrivileges returns every privilege code
// GET /api/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.userService.GetPrivileges()
	if err != nil {
		return respondError(c, h.logger, "GetPrivileges", err)
	}
	return c.JSON(privileges)
}
