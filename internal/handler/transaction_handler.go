package handler

import (
	"errors"
	"strconv"

	"go-construction-inventory/internal/repository"
	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type TransactionHandler struct {
	service service.TransactionService
	logger  *logrus.Logger
}

func NewTransactionHandler(s service.TransactionService, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{service: s, logger: logger}
}

// CreateTransaction records a transaction and reconciles stock for bahan/alat
// POST /api/transactions
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	t, err := h.service.CreateTransaction(c.UserContext(), &req, getUserID(c))
	if errors.Is(err, service.ErrNotFound) {
		// strict out_warehouse names an item the ledger does not hold: a bad request body
		return detail(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return respondError(c, h.logger, "CreateTransaction", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Transaction created", "id": t.ID})
}

// GET /api/transactions?project_id=&category=
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	projectID, err := optionalUUID(c, "project_id")
	if err != nil {
		return respondError(c, h.logger, "GetTransactions", err)
	}
	category := c.Query("category")
	if category == "all" {
		category = ""
	}

	transactions, err := h.service.GetTransactions(repository.TransactionFilter{ProjectID: projectID, Category: category})
	if err != nil {
		return respondError(c, h.logger, "GetTransactions", err)
	}
	return c.JSON(transactions)
}

// GET /api/transactions/recent
func (h *TransactionHandler) GetRecentTransactions(c *fiber.Ctx) error {
	transactions, err := h.service.GetRecentTransactions()
	if err != nil {
		return respondError(c, h.logger, "GetRecentTransactions", err)
	}
	return c.JSON(transactions)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "GetTransaction", err)
	}
	t, err := h.service.GetTransactionByID(id)
	if err != nil {
		return respondError(c, h.logger, "GetTransaction", err)
	}
	return c.JSON(t)
}

func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateTransaction", err)
	}
	var req service.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	t, err := h.service.UpdateTransaction(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "UpdateTransaction", err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated", "data": t})
}

type itemStatusRequest struct {
	ItemIndex *int   `json:"item_index"`
	NewStatus string `json:"new_status"`
}

// UpdateItemStatus accepts item_index and new_status from the query string or a JSON body
// PUT /api/transactions/:id/item-status
func (h *TransactionHandler) UpdateItemStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateItemStatus", err)
	}

	var req itemStatusRequest
	if len(c.Body()) > 0 && c.Is("json") {
		if err := c.BodyParser(&req); err != nil {
			return invalidJSON(c)
		}
	}
	if raw := c.Query("item_index"); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return detail(c, fiber.StatusBadRequest, "Invalid item_index")
		}
		req.ItemIndex = &index
	}
	if status := c.Query("new_status"); status != "" {
		req.NewStatus = status
	}
	if req.ItemIndex == nil {
		return detail(c, fiber.StatusBadRequest, "item_index is required")
	}

	message, err := h.service.UpdateItemStatus(c.UserContext(), id, *req.ItemIndex, req.NewStatus, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "UpdateItemStatus", err)
	}
	return c.JSON(fiber.Map{"message": message})
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "DeleteTransaction", err)
	}
	if err := h.service.DeleteTransaction(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "DeleteTransaction", err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}
