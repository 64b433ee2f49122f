package handler

import (
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type TaskHandler struct {
	service service.TaskService
	logger  *logrus.Logger
}

func NewTaskHandler(s service.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{service: s, logger: logger}
}

// POST /api/tasks
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req service.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	task, err := h.service.CreateTask(&req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "CreateTask", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Task created", "id": task.ID})
}

// GetTasks
// GET /api/tasks?assigned_to=&project_id=
func (h *TaskHandler) GetTasks(c *fiber.Ctx) error {
	assignedTo, err := optionalUUID(c, "assigned_to")
	if err != nil {
		return respondError(c, h.logger, "GetTasks", err)
	}
	projectID, err := optionalUUID(c, "project_id")
	if err != nil {
		return respondError(c, h.logger, "GetTasks", err)
	}
	tasks, err := h.service.GetTasks(repository.TaskFilter{AssignedTo: assignedTo, ProjectID: projectID})
	if err != nil {
		return respondError(c, h.logger, "GetTasks", err)
	}
	return c.JSON(tasks)
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateTask", err)
	}
	var req service.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if _, err := h.service.UpdateTask(id, &req, getUserID(c)); err != nil {
		return respondError(c, h.logger, "UpdateTask", err)
	}
	return c.JSON(fiber.Map{"message": "Task updated"})
}

// PATCH /api/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateTaskStatus", err)
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if err := h.service.UpdateStatus(id, req.Status, getUserID(c)); err != nil {
		return respondError(c, h.logger, "UpdateTaskStatus", err)
	}
	return c.JSON(fiber.Map{"message": "Task status updated"})
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "DeleteTask", err)
	}
	if err := h.service.DeleteTask(id); err != nil {
		return respondError(c, h.logger, "DeleteTask", err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}

// CreateReport files a work report as the caller
// POST /api/tasks/:id/report
func (h *TaskHandler) CreateReport(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "CreateWorkReport", err)
	}
	employeeID, err := currentUserID(c)
	if err != nil {
		return detail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	var req service.WorkReportRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	report, err := h.service.CreateReport(id, &req, employeeID)
	if err != nil {
		return respondError(c, h.logger, "CreateWorkReport", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Work report created", "id": report.ID})
}

// GET /api/tasks/:id/reports
func (h *TaskHandler) GetReports(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "GetWorkReports", err)
	}
	reports, err := h.service.GetReports(id)
	if err != nil {
		return respondError(c, h.logger, "GetWorkReports", err)
	}
	return c.JSON(reports)
}
