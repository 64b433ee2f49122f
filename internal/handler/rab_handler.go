package handler

import (
	"bytes"
	"fmt"

	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type RABHandler struct {
	service service.RABService
	logger  *logrus.Logger
}

func NewRABHandler(s service.RABService, logger *logrus.Logger) *RABHandler {
	return &RABHandler{service: s, logger: logger}
}

// POST /api/rabs
func (h *RABHandler) CreateRAB(c *fiber.Ctx) error {
	var req service.CreateRABRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	rab, err := h.service.CreateRAB(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "CreateRAB", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "RAB created", "id": rab.ID})
}

func (h *RABHandler) GetRABs(c *fiber.Ctx) error {
	rabs, err := h.service.GetRABs()
	if err != nil {
		return respondError(c, h.logger, "GetRABs", err)
	}
	return c.JSON(rabs)
}

func (h *RABHandler) GetRAB(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "GetRAB", err)
	}
	rab, err := h.service.GetRAB(id)
	if err != nil {
		return respondError(c, h.logger, "GetRAB", err)
	}
	return c.JSON(fiber.Map{"rab": rab, "totals": rab.Totals()})
}

// UpdateRAB edits discount and tax
// PATCH /api/rabs/:id
func (h *RABHandler) UpdateRAB(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateRAB", err)
	}
	var req service.UpdateRABRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if _, err := h.service.UpdateRAB(id, &req, getUserID(c)); err != nil {
		return respondError(c, h.logger, "UpdateRAB", err)
	}
	return c.JSON(fiber.Map{"message": "RAB updated"})
}

// UpdateStatus
// PATCH /api/rabs/:id/status
func (h *RABHandler) UpdateStatus(c *fiber.Ctx) error {
	var req service.RABStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	return h.updateStatus(c, &req)
}

// Approve is kept for older clients; same as setting status approved
// POST /api/rabs/:id/approve
func (h *RABHandler) Approve(c *fiber.Ctx) error {
	return h.updateStatus(c, &service.RABStatusRequest{Status: model.RABApproved})
}

func (h *RABHandler) updateStatus(c *fiber.Ctx, req *service.RABStatusRequest) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateRABStatus", err)
	}
	result, err := h.service.UpdateStatus(c.UserContext(), id, req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "UpdateRABStatus", err)
	}
	return c.JSON(result)
}

func (h *RABHandler) DeleteRAB(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "DeleteRAB", err)
	}
	if err := h.service.DeleteRAB(id); err != nil {
		return respondError(c, h.logger, "DeleteRAB", err)
	}
	return c.JSON(fiber.Map{"message": "RAB deleted"})
}

// Export streams the RAB as an xlsx workbook
// GET /api/rabs/:id/export
func (h *RABHandler) Export(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "ExportRAB", err)
	}
	var buf bytes.Buffer
	if err := h.service.ExportRAB(&buf, id); err != nil {
		return respondError(c, h.logger, "ExportRAB", err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="RAB_%s.xlsx"`, id))
	return c.Send(buf.Bytes())
}

// POST /api/rab-items
func (h *RABHandler) CreateItem(c *fiber.Ctx) error {
	var req service.RABItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	item, err := h.service.CreateItem(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "CreateRABItem", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "RAB item created", "id": item.ID})
}

// GET /api/rab-items/:rab_id
func (h *RABHandler) GetItems(c *fiber.Ctx) error {
	rabID, err := paramID(c, "rab_id")
	if err != nil {
		return respondError(c, h.logger, "GetRABItems", err)
	}
	items, err := h.service.GetItems(rabID)
	if err != nil {
		return respondError(c, h.logger, "GetRABItems", err)
	}
	return c.JSON(items)
}

func (h *RABHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateRABItem", err)
	}
	var req service.UpdateRABItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	item, err := h.service.UpdateItem(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "UpdateRABItem", err)
	}
	return c.JSON(fiber.Map{"message": "RAB item updated", "data": item})
}

func (h *RABHandler) DeleteItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "DeleteRABItem", err)
	}
	if err := h.service.DeleteItem(id); err != nil {
		return respondError(c, h.logger, "DeleteRABItem", err)
	}
	return c.JSON(fiber.Map{"message": "RAB item deleted"})
}
