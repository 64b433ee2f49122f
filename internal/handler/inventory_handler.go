package handler

import (
	"bytes"
	"fmt"

	"go-construction-inventory/internal/repository"
	"go-construction-inventory/internal/service"
	"go-construction-inventory/pkg/wib"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InventoryHandler struct {
	service service.InventoryService
	reports service.ReportService
	logger  *logrus.Logger
}

func NewInventoryHandler(s service.InventoryService, reports service.ReportService, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{service: s, reports: reports, logger: logger}
}

func inventoryFilter(c *fiber.Ctx) (repository.InventoryFilter, error) {
	projectID, err := optionalUUID(c, "project_id")
	if err != nil {
		return repository.InventoryFilter{}, err
	}
	return repository.InventoryFilter{Category: c.Query("category"), ProjectID: projectID}, nil
}

// GET /api/inventory?category=&project_id=
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	filter, err := inventoryFilter(c)
	if err != nil {
		return respondError(c, h.logger, "GetInventory", err)
	}
	records, err := h.service.GetInventory(filter)
	if err != nil {
		return respondError(c, h.logger, "GetInventory", err)
	}
	return c.JSON(records)
}

func (h *InventoryHandler) GetInventoryByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "GetInventoryByID", err)
	}
	record, err := h.service.GetInventoryByID(id)
	if err != nil {
		return respondError(c, h.logger, "GetInventoryByID", err)
	}
	return c.JSON(record)
}

func (h *InventoryHandler) CreateInventory(c *fiber.Ctx) error {
	var req service.CreateInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	record, err := h.service.CreateInventory(c.UserContext(), &req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "CreateInventory", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Inventory item created", "id": record.ID})
}

func (h *InventoryHandler) UpdateInventory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateInventory", err)
	}
	var req service.UpdateInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	record, err := h.service.UpdateInventory(c.UserContext(), id, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "UpdateInventory", err)
	}
	return c.JSON(fiber.Map{"message": "Inventory item updated", "data": record})
}

func (h *InventoryHandler) DeleteInventory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "DeleteInventory", err)
	}
	if err := h.service.DeleteInventory(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "DeleteInventory", err)
	}
	return c.JSON(fiber.Map{"message": "Inventory item deleted"})
}

// WarehouseTransaction issues stock from the warehouse
// POST /api/inventory/warehouse-transaction
func (h *InventoryHandler) WarehouseTransaction(c *fiber.Ctx) error {
	var req service.IssueStockRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	usage, err := h.service.IssueStock(c.UserContext(), &req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "WarehouseTransaction", err)
	}
	return c.JSON(fiber.Map{"message": "Warehouse transaction created", "id": usage.ID})
}

// GET /api/inventory/item-names?category=&project_id=
func (h *InventoryHandler) GetItemNames(c *fiber.Ctx) error {
	projectID, err := optionalUUID(c, "project_id")
	if err != nil {
		return respondError(c, h.logger, "GetItemNames", err)
	}
	category := c.Query("category")
	if category == "all" {
		category = ""
	}
	names, err := h.service.GetItemNames(category, projectID)
	if err != nil {
		return respondError(c, h.logger, "GetItemNames", err)
	}
	return c.JSON(fiber.Map{"item_names": names})
}

func (h *InventoryHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.GetSuppliers()
	if err != nil {
		return respondError(c, h.logger, "GetSuppliers", err)
	}
	return c.JSON(fiber.Map{"suppliers": suppliers})
}

// GET /api/inventory/price-comparison?item_name=&project_type=
func (h *InventoryHandler) PriceComparison(c *fiber.Ctx) error {
	result, err := h.reports.PriceComparison(c.Query("item_name"), c.Query("project_type"))
	if err != nil {
		return respondError(c, h.logger, "PriceComparison", err)
	}
	return c.JSON(result)
}

// GET /api/inventory/:id/breakdown-by-supplier
func (h *InventoryHandler) BreakdownBySupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "BreakdownBySupplier", err)
	}
	result, err := h.reports.BreakdownBySupplier(id)
	if err != nil {
		return respondError(c, h.logger, "BreakdownBySupplier", err)
	}
	return c.JSON(result)
}

// GET /api/inventory/usage-report?project_id=&category=
func (h *InventoryHandler) UsageReport(c *fiber.Ctx) error {
	projectID, err := optionalUUID(c, "project_id")
	if err != nil {
		return respondError(c, h.logger, "UsageReport", err)
	}
	category := c.Query("category")
	if category == "all" {
		category = ""
	}
	result, err := h.reports.UsageReport(projectID, category)
	if err != nil {
		return respondError(c, h.logger, "UsageReport", err)
	}
	return c.JSON(result)
}

// Export streams the inventory as an xlsx workbook
// GET /api/inventory/export?category=&project_id=
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	filter, err := inventoryFilter(c)
	if err != nil {
		return respondError(c, h.logger, "Export", err)
	}

	var buf bytes.Buffer
	if err := h.reports.ExportInventory(&buf, filter); err != nil {
		return respondError(c, h.logger, "Export", err)
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", wib.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}
