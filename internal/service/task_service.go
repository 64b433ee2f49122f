package service

import (
	"time"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/validator"
	"go-construction-inventory/pkg/wib"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const taskNotFound = "Task not found"

type TaskService interface {
	CreateTask(req *CreateTaskRequest, userID string) (*model.Task, error)
	GetTasks(filter repository.TaskFilter) ([]model.Task, error)
	GetTask(id uuid.UUID) (*model.Task, error)
	UpdateTask(id uuid.UUID, req *UpdateTaskRequest, userID string) (*model.Task, error)
	UpdateStatus(id uuid.UUID, status, userID string) error
	DeleteTask(id uuid.UUID) error

	CreateReport(taskID uuid.UUID, req *WorkReportRequest, employeeID uuid.UUID) (*model.WorkReport, error)
	GetReports(taskID uuid.UUID) ([]model.WorkReport, error)
}

// CreateTaskRequest: DurationDays, when set, wins over DueDate for the deadline.
type CreateTaskRequest struct {
	ProjectID    *uuid.UUID `json:"project_id"`
	Title        string     `json:"title" validate:"required"`
	Description  *string    `json:"description"`
	AssignedTo   *uuid.UUID `json:"assigned_to"`
	Role         *string    `json:"role"`
	Priority     string     `json:"priority" validate:"omitempty,task_priority"`
	DurationDays *int       `json:"duration_days" validate:"omitempty,gte=1"`
	DueDate      *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1"`
	Description *string    `json:"description"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	Priority    *string    `json:"priority" validate:"omitempty,task_priority"`
	Status      *string    `json:"status" validate:"omitempty,task_status"`
	DueDate     *time.Time `json:"due_date"`
}

type WorkReportRequest struct {
	Report   string   `json:"report" validate:"required"`
	Progress int      `json:"progress" validate:"gte=0,lte=100"`
	Photos   []string `json:"photos"`
}

type taskService struct {
	db       *gorm.DB
	taskRepo repository.TaskRepository
	notifier NotificationService
	logger   *logrus.Logger
}

func NewTaskService(db *gorm.DB, taskRepo repository.TaskRepository, notifier NotificationService, logger *logrus.Logger) TaskService {
	return &taskService{db: db, taskRepo: taskRepo, notifier: notifier, logger: logger}
}

// CreateTask starts the task now (WIB) and tells the assignee about it.
func (s *taskService) CreateTask(req *CreateTaskRequest, userID string) (*model.Task, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}

	start := wib.Now()
	due := req.DueDate
	if req.DurationDays != nil {
		d := start.AddDate(0, 0, *req.DurationDays)
		due = &d
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := &model.Task{
		ProjectID:    req.ProjectID,
		Title:        req.Title,
		Description:  req.Description,
		AssignedTo:   req.AssignedTo,
		Role:         req.Role,
		Status:       model.TaskPending,
		Priority:     priority,
		StartDate:    start,
		DurationDays: req.DurationDays,
		DueDate:      due,
	}
	task.Touch(userID)
	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}

	if task.AssignedTo != nil {
		err := s.notifier.NotifyUser(*task.AssignedTo, "Tugas Baru", "Anda mendapat tugas: "+task.Title, model.NotificationInfo)
		if err != nil {
			config.LogError(s.logger, "task_service", "CreateTask", "notify assignee", task.ID.String(), err)
		}
	}
	return task, nil
}

func (s *taskService) GetTasks(filter repository.TaskFilter) ([]model.Task, error) {
	return s.taskRepo.FindAll(filter)
}

func (s *taskService) GetTask(id uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, taskNotFound)
	}
	return task, nil
}

// statusFields sets completed_at when a task becomes completed.
func statusFields(fields map[string]interface{}, status string) {
	fields["status"] = status
	if status == model.TaskCompleted {
		fields["completed_at"] = wib.Now()
	}
}

func (s *taskService) UpdateTask(id uuid.UUID, req *UpdateTaskRequest, userID string) (*model.Task, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}
	fields := map[string]interface{}{"updated_by": userID}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.AssignedTo != nil {
		fields["assigned_to"] = *req.AssignedTo
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	if req.Status != nil {
		statusFields(fields, *req.Status)
	}

	if err := s.taskRepo.UpdateFields(s.db, id, fields); err != nil {
		return nil, notFoundOr(err, taskNotFound)
	}
	return s.GetTask(id)
}

func (s *taskService) UpdateStatus(id uuid.UUID, status, userID string) error {
	if errs := validator.ValidateStruct(struct {
		Status string `validate:"task_status"`
	}{status}); len(errs) > 0 {
		return invalid("Invalid status")
	}
	fields := map[string]interface{}{"updated_by": userID}
	statusFields(fields, status)
	return notFoundOr(s.taskRepo.UpdateFields(s.db, id, fields), taskNotFound)
}

func (s *taskService) DeleteTask(id uuid.UUID) error {
	return notFoundOr(s.taskRepo.Delete(id), taskNotFound)
}

// CreateReport files a work report and moves the task to in_progress, or completed at 100%.
func (s *taskService) CreateReport(taskID uuid.UUID, req *WorkReportRequest, employeeID uuid.UUID) (*model.WorkReport, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}
	photos := req.Photos
	if photos == nil {
		photos = []string{}
	}
	report := &model.WorkReport{
		TaskID:     taskID,
		EmployeeID: employeeID,
		Report:     req.Report,
		Progress:   req.Progress,
		Photos:     photos,
	}
	report.Touch(employeeID.String())

	fields := map[string]interface{}{"updated_by": employeeID.String()}
	statusFields(fields, model.TaskStatusFor(req.Progress))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.UpdateFields(tx, taskID, fields); err != nil {
			return err
		}
		return s.taskRepo.CreateReport(tx, report)
	})
	if err != nil {
		return nil, notFoundOr(err, taskNotFound)
	}
	return report, nil
}

func (s *taskService) GetReports(taskID uuid.UUID) ([]model.WorkReport, error) {
	return s.taskRepo.FindReports(taskID)
}
