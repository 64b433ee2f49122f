package handler

import (
	"go-construction-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ProjectHandler struct {
	service service.ProjectService
	logger  *logrus.Logger
}

func NewProjectHandler(s service.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{service: s, logger: logger}
}

func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var req service.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	project, err := h.service.CreateProject(&req, getUserID(c), getRoleCode(c))
	if err != nil {
		return respondError(c, h.logger, "CreateProject", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Project created", "id": project.ID})
}

// GetProjects lists projects visible to the caller's role
// GET /api/projects?phase=
func (h *ProjectHandler) GetProjects(c *fiber.Ctx) error {
	projects, err := h.service.GetProjects(getRoleCode(c), c.Query("phase"))
	if err != nil {
		return respondError(c, h.logger, "GetProjects", err)
	}
	return c.JSON(projects)
}

func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "GetProject", err)
	}
	project, err := h.service.GetProjectByID(id)
	if err != nil {
		return respondError(c, h.logger, "GetProject", err)
	}
	return c.JSON(project)
}

func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateProject", err)
	}
	var req service.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	project, err := h.service.UpdateProject(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, "UpdateProject", err)
	}
	return c.JSON(fiber.Map{"message": "Project updated", "data": project})
}

// UpdateDesignProgress
// PATCH /api/projects/:id/design-progress
func (h *ProjectHandler) UpdateDesignProgress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "UpdateDesignProgress", err)
	}
	var req struct {
		Progress *int `json:"progress"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if req.Progress == nil {
		progress := c.QueryInt("progress", -1)
		req.Progress = &progress
	}
	if err := h.service.UpdateDesignProgress(id, *req.Progress); err != nil {
		return respondError(c, h.logger, "UpdateDesignProgress", err)
	}
	return c.JSON(fiber.Map{"message": "Design progress updated", "progress": *req.Progress})
}

func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "DeleteProject", err)
	}
	if err := h.service.DeleteProject(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "DeleteProject", err)
	}
	return c.JSON(fiber.Map{"message": "Project deleted"})
}
