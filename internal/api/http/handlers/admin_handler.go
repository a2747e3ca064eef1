package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hotelmend/ticket-service/internal/api/dto"
	"github.com/hotelmend/ticket-service/internal/service"
	apperrors "github.com/hotelmend/ticket-service/pkg/util/errorutil"
)

// AdminHandler serves superadmin endpoints.
type AdminHandler struct {
	access   *service.AccessService
	activity *service.ActivityService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(access *service.AccessService, activity *service.ActivityService) *AdminHandler {
	return &AdminHandler{access: access, activity: activity}
}

// ListCodes GET /admin/codes.
func (h *AdminHandler) ListCodes(c *fiber.Ctx) error {
	codes, err := h.access.ListCodes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": codes})
}

// IssueCode POST /admin/codes.
func (h *AdminHandler) IssueCode(c *fiber.Ctx) error {
	var req dto.AccessCodeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	code, generated, err := h.access.IssueCode(c.UserContext(), req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":    dto.AccessCodeResponse{Password: code, Generated: generated},
		"message": "access code created",
	})
}

// RevokeCode DELETE /admin/codes.
func (h *AdminHandler) RevokeCode(c *fiber.Ctx) error {
	var req dto.AccessCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.access.RevokeCode(c.UserContext(), req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "access code removed"})
}

// Activity GET /admin/activity?limit=N.
func (h *AdminHandler) Activity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	return c.JSON(fiber.Map{"data": h.activity.Recent(limit)})
}
