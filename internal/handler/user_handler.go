package handler

import (
	"fmt"

	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userService service.UserService
	logger      *logrus.Logger
}

func NewUserHandler(userService service.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// CreateUser handles member creation
// POST /api/admin/members
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.CreateUser(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "CreateUser", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"id":      user.ID,
		"data":    user.ToResponse(),
	})
}

// UpdateUserPrivileges handles privilege assignment
// PUT /api/admin/members/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateUserPrivileges", err)
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.UpdateUserPrivileges(userID, req.Privileges, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "UpdateUserPrivileges", err)
	}

	return c.JSON(fiber.Map{
		"message": "Privileges updated successfully",
		"data":    user.ToResponse(),
	})
}

// GetUsers returns all users, optionally filtered by role code
// GET /api/users?role=
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.Query("role"))
	if err != nil {
		return respondError(c, h.logger, "GetUsers", err)
	}
	return c.JSON(users)
}

// GetUser returns a single user by ID
// GET /api/admin/members/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "GetUser", err)
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return respondError(c, h.logger, "GetUser", err)
	}

	return c.JSON(user)
}

// UpdateUser handles member update
// PUT /api/admin/members/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateUser", err)
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.UpdateUser(userID, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "UpdateUser", err)
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    user.ToResponse(),
	})
}

// DeleteUser handles member deletion
// DELETE /api/admin/members/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "DeleteUser", err)
	}

	if err := h.userService.DeleteUser(userID, getUserID(c)); err != nil {
		return respondError(c, h.logger, "DeleteUser", err)
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// BulkDeleteUsers
// POST /api/admin/members/bulk-delete
func (h *UserHandler) BulkDeleteUsers(c *fiber.Ctx) error {
	var req struct {
		UserIDs []uuid.UUID `json:"user_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	deleted, err := h.userService.BulkDeleteUsers(req.UserIDs, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "BulkDeleteUsers", err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("%d users deleted", deleted), "deleted": deleted})
}

// BulkUpdateUsers
// PATCH /api/admin/members/bulk-update
func (h *UserHandler) BulkUpdateUsers(c *fiber.Ctx) error {
	var req service.BulkUpdateUsersRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	updated, err := h.userService.BulkUpdateUsers(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "BulkUpdateUsers", err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("%d users updated", updated), "updated": updated})
}
