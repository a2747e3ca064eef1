package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hotelmend/ticket-service/internal/api/dto"
	"github.com/hotelmend/ticket-service/internal/service"
	apperrors "github.com/hotelmend/ticket-service/pkg/util/errorutil"
)

// ReferencesHandler serves the settings lists. Lists are addressed by their
// URL segment (locations, repair-types).
type ReferencesHandler struct {
	lists map[string]*service.ReferenceService
}

// NewReferencesHandler constructs handler.
func NewReferencesHandler(locations, repairTypes *service.ReferenceService) *ReferencesHandler {
	return &ReferencesHandler{lists: map[string]*service.ReferenceService{
		"locations":    locations,
		"repair-types": repairTypes,
	}}
}

// List GET /settings/:kind.
func (h *ReferencesHandler) List(c *fiber.Ctx) error {
	svc, err := h.list(c)
	if err != nil {
		return err
	}
	items, err := svc.List(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.ReferenceItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, dto.NewReferenceItemResponse(item))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create POST /settings/:kind.
func (h *ReferencesHandler) Create(c *fiber.Ctx) error {
	svc, err := h.list(c)
	if err != nil {
		return err
	}
	var req dto.ReferenceItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := svc.Add(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewReferenceItemResponse(*item)})
}

// Rename PATCH /settings/:kind/:id.
func (h *ReferencesHandler) Rename(c *fiber.Ctx) error {
	svc, err := h.list(c)
	if err != nil {
		return err
	}
	var req dto.ReferenceItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := svc.Rename(c.UserContext(), c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReferenceItemResponse(*item)})
}

// Delete DELETE /settings/:kind/:id.
func (h *ReferencesHandler) Delete(c *fiber.Ctx) error {
	svc, err := h.list(c)
	if err != nil {
		return err
	}
	if err := svc.Remove(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReferencesHandler) list(c *fiber.Ctx) (*service.ReferenceService, error) {
	svc, ok := h.lists[c.Params("kind")]
	if !ok || svc == nil {
		return nil, apperrors.NewNotFound("settings list", map[string]any{"kind": c.Params("kind")})
	}
	return svc, nil
}
