package handler

import (
	"time"

	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService service.AuthService
	cookieName  string
	logger      *logrus.Logger
}

func NewAuthHandler(authService service.AuthService, cookieName string, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName, logger: logger}
}

// LoginRequest accepts an email or a username in the email field
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles user authentication and sets the session cookie
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	if req.Email == "" || req.Password == "" {
		return detail(c, fiber.StatusBadRequest, "Email and password are required")
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return respondError(c, h.logger, "Login", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    response.Token,
		Path:     "/",
		Expires:  response.ExpiresAt,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return c.JSON(response)
}

// Logout rotates the session and clears the cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err == nil {
		if err := h.authService.Logout(userID); err != nil {
			return respondError(c, h.logger, "Logout", err)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return detail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	response, err := h.authService.Me(userID)
	if err != nil {
		return respondError(c, h.logger, "Me", err)
	}
	return c.JSON(response)
}

// ResetPassword handles password change
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		return detail(c, fiber.StatusBadRequest, "Email, old_password, and new_password are required")
	}

	if err := h.authService.ResetPassword(req.Email, req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, h.logger, "ResetPassword", err)
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// POST /api/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	id, err := currentUserID(c)
	if err != nil {
		return detail(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	if err := h.authService.Heartbeat(id); err != nil {
		return respondError(c, h.logger, "Heartbeat", err)
	}

	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation; the cookie is used when the body has no token
// POST /api/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidJSON(c)
		}
	}
	if req.Token == "" {
		req.Token = c.Cookies(h.cookieName)
	}
	if req.Token == "" {
		return detail(c, fiber.StatusBadRequest, "Token is required")
	}

	response, err := h.authService.ValidateToken(req.Token)
	if err != nil {
		return respondError(c, h.logger, "ValidateToken", err)
	}

	return c.JSON(response)
}
