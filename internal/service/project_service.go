package service

import (
	"context"
	"fmt"
	"time"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/lock"
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProjectService interface {
	CreateProject(req *ProjectRequest, userID, roleCode string) (*model.Project, error)
	GetProjects(roleCode, phase string) ([]model.Project, error)
	GetProjectByID(id uuid.UUID) (*model.Project, error)
	UpdateProject(id uuid.UUID, req *UpdateProjectRequest, userID string) (*model.Project, error)
	UpdateDesignProgress(id uuid.UUID, progress int) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	// DeleteProjectWith runs the same cascade and calls within first inside its DB transaction.
	DeleteProjectWith(ctx context.Context, id uuid.UUID, within func(tx *gorm.DB) error) error
}

type ProjectRequest struct {
	Name         string          `json:"name" validate:"required"`
	Type         string          `json:"type" validate:"required,oneof=interior arsitektur"`
	Description  *string         `json:"description"`
	ContractDate *time.Time      `json:"contract_date"`
	Duration     *int            `json:"duration" validate:"omitempty,gte=0"`
	Location     *string         `json:"location"`
	ProjectValue decimal.Decimal `json:"project_value" validate:"gte=0"`
}

type UpdateProjectRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1"`
	Type         *string          `json:"type" validate:"omitempty,oneof=interior arsitektur"`
	Description  *string          `json:"description"`
	ContractDate *time.Time       `json:"contract_date"`
	Duration     *int             `json:"duration" validate:"omitempty,gte=0"`
	Location     *string          `json:"location"`
	ProjectValue *decimal.Decimal `json:"project_value" validate:"omitempty,gte=0"`
	Status       *string          `json:"status" validate:"omitempty,oneof=active waiting completed"`
	Phase        *string          `json:"phase" validate:"omitempty,oneof=perencanaan pelaksanaan"`
}

type projectService struct {
	db              *gorm.DB
	projectRepo     repository.ProjectRepository
	transactionRepo repository.TransactionRepository
	inventoryRepo   repository.InventoryRepository
	usageRepo       repository.WarehouseUsageRepository
	rabRepo         repository.RABRepository
	scheduleRepo    repository.ScheduleRepository
	taskRepo        repository.TaskRepository
	locker          lock.Locker
	notifier        NotificationService
	events          EventPublisher
	logger          *logrus.Logger
}

func NewProjectService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	transactionRepo repository.TransactionRepository,
	inventoryRepo repository.InventoryRepository,
	usageRepo repository.WarehouseUsageRepository,
	rabRepo repository.RABRepository,
	scheduleRepo repository.ScheduleRepository,
	taskRepo repository.TaskRepository,
	locker lock.Locker,
	notifier NotificationService,
	events EventPublisher,
	logger *logrus.Logger,
) ProjectService {
	return &projectService{
		db:              db,
		projectRepo:     projectRepo,
		transactionRepo: transactionRepo,
		inventoryRepo:   inventoryRepo,
		usageRepo:       usageRepo,
		rabRepo:         rabRepo,
		scheduleRepo:    scheduleRepo,
		taskRepo:        taskRepo,
		locker:          locker,
		notifier:        notifier,
		events:          publisherOrNop(events),
		logger:          logger,
	}
}

// CreateProject stores a project. Planning team projects start in perencanaan, all others in pelaksanaan.
func (s *projectService) CreateProject(req *ProjectRequest, userID, roleCode string) (*model.Project, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}

	project := &model.Project{
		Name:         req.Name,
		Type:         req.Type,
		Description:  req.Description,
		ContractDate: req.ContractDate,
		Duration:     req.Duration,
		Location:     req.Location,
		ProjectValue: req.ProjectValue,
		Status:       model.ProjectActive,
		Phase:        model.PhaseFor(roleCode),
	}
	project.Touch(userID)

	if err := s.projectRepo.Create(s.db, project); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Proyek baru '%s' telah dibuat", project.Name)
	if err := s.notifier.NotifyRole(model.RoleSiteSupervisor, "Proyek Baru", message, model.NotificationInfo); err != nil {
		config.LogError(s.logger, "project_service", "CreateProject", "notify site supervisors", project.ID.String(), err)
	}
	return project, nil
}

// GetProjects applies the role's phase visibility. An explicit phase overrides it.
func (s *projectService) GetProjects(roleCode, phase string) ([]model.Project, error) {
	if phase == "" {
		phase = model.VisiblePhase(roleCode)
	}
	return s.projectRepo.FindAll(phase)
}

func (s *projectService) GetProjectByID(id uuid.UUID) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Project not found")
	}
	return project, nil
}

func (s *projectService) UpdateProject(id uuid.UUID, req *UpdateProjectRequest, userID string) (*model.Project, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}

	fields := map[string]interface{}{"updated_by": userID}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Type != nil {
		fields["type"] = *req.Type
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ContractDate != nil {
		fields["contract_date"] = *req.ContractDate
	}
	if req.Duration != nil {
		fields["duration"] = *req.Duration
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.ProjectValue != nil {
		fields["project_value"] = *req.ProjectValue
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Phase != nil {
		fields["phase"] = *req.Phase
	}

	if err := s.projectRepo.UpdateFields(id, fields); err != nil {
		return nil, notFoundOr(err, "Project not found")
	}
	return s.GetProjectByID(id)
}

func (s *projectService) UpdateDesignProgress(id uuid.UUID, progress int) error {
	if progress < 0 || progress > 100 {
		return invalid("Progress must be between 0 and 100")
	}
	err := s.projectRepo.UpdateFields(id, map[string]interface{}{"design_progress": progress})
	return notFoundOr(err, "Project not found")
}

// DeleteProject removes the project with its transactions, inventory, warehouse usages,
// RABs, schedule items and tasks.
func (s *projectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return s.DeleteProjectWith(ctx, id, nil)
}

func (s *projectService) DeleteProjectWith(ctx context.Context, id uuid.UUID, within func(tx *gorm.DB) error) error {
	if _, err := s.projectRepo.FindByID(id); err != nil {
		return notFoundOr(err, "Project not found")
	}

	records, err := s.inventoryRepo.FindAll(repository.InventoryFilter{ProjectID: &id})
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.Key().LockKey())
	}
	unlock, err := s.locker.Lock(ctx, keys...)
	if err != nil {
		return fmt.Errorf("lock inventory: %w", err)
	}
	defer unlock()

	var removed int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if within != nil {
			if err := within(tx); err != nil {
				return err
			}
		}
		var err error
		if _, err = s.transactionRepo.DeleteByProject(tx, id); err != nil {
			return err
		}
		if removed, err = s.inventoryRepo.DeleteByProject(tx, id); err != nil {
			return err
		}
		if _, err = s.usageRepo.DeleteByProject(tx, id); err != nil {
			return err
		}
		if _, err = s.rabRepo.DeleteByProject(tx, id); err != nil {
			return err
		}
		if _, err = s.scheduleRepo.DeleteByProject(tx, id); err != nil {
			return err
		}
		if _, err = s.taskRepo.DeleteByProject(tx, id); err != nil {
			return err
		}
		return s.projectRepo.Delete(tx, id)
	})
	if err != nil {
		return notFoundOr(err, "Project not found")
	}

	if removed > 0 {
		s.events.Publish(eventInventoryUpdate, map[string]interface{}{
			"action":     "project_deleted",
			"project_id": id,
		})
	}
	return nil
}
