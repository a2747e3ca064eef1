package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hotelmend/ticket-service/internal/api/dto"
	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/service"
	apperrors "github.com/hotelmend/ticket-service/pkg/util/errorutil"
)

// TicketsHandler serves the ticket board endpoints.
type TicketsHandler struct {
	engine    *service.TicketEngine
	suggester service.Suggester
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(engine *service.TicketEngine, suggester service.Suggester) *TicketsHandler {
	return &TicketsHandler{engine: engine, suggester: suggester}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}
	tickets := h.engine.View(filter)
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.engine.Create(c.UserContext(), service.TicketCreateInput{
		Description:      req.Description,
		Location:         req.Location,
		RepairType:       req.RepairType,
		Importance:       req.Importance,
		SuggestedTickets: req.SuggestedTickets,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.engine.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.TicketUpdateInput{
		Description: req.Description,
		Location:    req.Location,
		RepairType:  req.RepairType,
		Importance:  req.Importance,
		Status:      req.Status,
	}
	if input.IsEmpty() {
		return apperrors.NewValidationError("no fields to update", nil)
	}
	ticket, err := h.engine.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateStatus PUT /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.engine.SetStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.engine.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.engine.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:         entry.ID,
			ChangeType: entry.ChangeType,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Suggest POST /suggestions. Always answers with a (possibly empty) list.
func (h *TicketsHandler) Suggest(c *fiber.Ctx) error {
	var req dto.SuggestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return c.JSON(fiber.Map{"data": h.suggester.Suggest(c.UserContext(), req.Description)})
}

// parseTicketFilter reads the filter from the query string. Labels repeat
// the parameter once per value, since names may contain commas; status and
// importance also accept comma lists. Without a status parameter closed
// tickets are hidden; an empty one lifts the constraint.
func parseTicketFilter(c *fiber.Ctx) (service.TicketFilter, error) {
	filter := service.TicketFilter{
		Locations:   queryValues(c, "location"),
		RepairTypes: queryValues(c, "repair_type"),
	}
	problems := map[string]string{}

	if c.Context().QueryArgs().Has("status") {
		for _, part := range splitQuery(queryValues(c, "status")) {
			status := domain.TicketStatus(strings.ToUpper(part))
			if !status.IsValid() {
				problems["status"] = "unknown status " + part
				continue
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	} else {
		filter.Statuses = service.DefaultTicketFilter().Statuses
	}

	for _, part := range splitQuery(queryValues(c, "importance")) {
		importance := domain.Importance(strings.ToUpper(part))
		if !importance.IsValid() {
			problems["importance"] = "unknown importance " + part
			continue
		}
		filter.Importances = append(filter.Importances, importance)
	}

	if len(problems) > 0 {
		return filter, apperrors.NewFieldValidationError(problems)
	}
	return filter, nil
}

// queryValues returns every non-blank value of a repeated query parameter.
func queryValues(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		if val := strings.TrimSpace(string(raw)); val != "" {
			out = append(out, val)
		}
	}
	return out
}

func splitQuery(vals []string) []string {
	var out []string
	for _, val := range vals {
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
