package handler

import (
	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type PlanningHandler struct {
	service service.PlanningService
	logger  *logrus.Logger
}

func NewPlanningHandler(s service.PlanningService, logger *logrus.Logger) *PlanningHandler {
	return &PlanningHandler{service: s, logger: logger}
}

// POST /api/schedule
func (h *PlanningHandler) CreateScheduleItem(c *fiber.Ctx) error {
	var req service.ScheduleItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	item, err := h.service.CreateScheduleItem(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "CreateScheduleItem", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Schedule item created", "id": item.ID})
}

// GET /api/schedule/:project_id
func (h *PlanningHandler) GetSchedule(c *fiber.Ctx) error {
	projectID, err := paramID(c, "project_id")
	if err != nil {
		return respondError(c, h.logger, "GetSchedule", err)
	}
	items, err := h.service.GetSchedule(projectID)
	if err != nil {
		return respondError(c, h.logger, "GetSchedule", err)
	}
	return c.JSON(items)
}

// DELETE /api/schedule/items/:id
func (h *PlanningHandler) DeleteScheduleItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "DeleteScheduleItem", err)
	}
	if err := h.service.DeleteScheduleItem(id); err != nil {
		return respondError(c, h.logger, "DeleteScheduleItem", err)
	}
	return c.JSON(fiber.Map{"message": "Schedule item deleted"})
}

// Overview
// GET /api/planning/overview
func (h *PlanningHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview()
	if err != nil {
		return respondError(c, h.logger, "PlanningOverview", err)
	}
	return c.JSON(overview)
}
