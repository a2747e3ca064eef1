package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hotelmend/ticket-service/internal/api/dto"
	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/service"
	apperrors "github.com/hotelmend/ticket-service/pkg/util/errorutil"
)

// AuthHandler exchanges access codes and the superadmin secret for sessions.
type AuthHandler struct {
	access *service.AccessService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(access *service.AccessService) *AuthHandler {
	return &AuthHandler{access: access}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, exp, err := h.access.Login(c.UserContext(), req.Code)
	if err != nil {
		return err
	}
	return c.JSON(tokenBody(token, exp, domain.RoleUser, "access granted"))
}

// AdminLogin POST /auth/admin/login.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, exp, err := h.access.AdminLogin(c.UserContext(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(tokenBody(token, exp, domain.RoleSuperadmin, "superadmin access granted"))
}

// Check POST /auth/check reports whether a code is valid without opening a
// session.
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ok, err := h.access.Check(c.UserContext(), req.Code)
	if err != nil {
		return err
	}
	resp := dto.CheckResponse{Success: ok, Message: "access granted"}
	if !ok {
		resp.Message = "invalid access code"
	}
	return c.JSON(resp)
}

func tokenBody(token string, exp time.Time, role domain.Role, message string) fiber.Map {
	return fiber.Map{
		"data": dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   exp,
			Role:        role,
		},
		"message": message,
	}
}
