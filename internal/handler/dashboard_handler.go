package handler

import (
	"strconv"

	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	service   service.DashboardService
	financial service.FinancialService
	logger    *logrus.Logger
}

func NewDashboardHandler(s service.DashboardService, financial service.FinancialService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, financial: financial, logger: logger}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(days)
	if err != nil {
		return respondError(c, h.logger, "GetStockMovement", err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return respondError(c, h.logger, "GetDashboardStats", err)
	}

	return c.JSON(stats)
}

// GET /api/financial/summary
func (h *DashboardHandler) GetFinancialSummary(c *fiber.Ctx) error {
	summary, err := h.financial.GetSummary()
	if err != nil {
		return respondError(c, h.logger, "GetFinancialSummary", err)
	}
	return c.JSON(summary)
}

// GET /api/financial/monthly
func (h *DashboardHandler) GetMonthlyFinancial(c *fiber.Ctx) error {
	monthly, err := h.financial.GetMonthly()
	if err != nil {
		return respondError(c, h.logger, "GetMonthlyFinancial", err)
	}
	return c.JSON(monthly)
}

// GET /api/financial/project-allocation
func (h *DashboardHandler) GetProjectAllocation(c *fiber.Ctx) error {
	allocation, err := h.financial.GetProjectAllocation()
	if err != nil {
		return respondError(c, h.logger, "GetProjectAllocation", err)
	}
	return c.JSON(allocation)
}

// GET /api/financial/projects-progress
func (h *DashboardHandler) GetProjectsProgress(c *fiber.Ctx) error {
	progress, err := h.financial.GetProjectsProgress()
	if err != nil {
		return respondError(c, h.logger, "GetProjectsProgress", err)
	}
	return c.JSON(progress)
}

// GET /api/financial/project/:id
func (h *DashboardHandler) GetProjectFinancial(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "GetProjectFinancial", err)
	}
	result, err := h.financial.GetProjectFinancial(id)
	if err != nil {
		return respondError(c, h.logger, "GetProjectFinancial", err)
	}
	return c.JSON(result)
}
