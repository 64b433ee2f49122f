package service

import (
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanningService owns project time schedules and the planning team overview.
type PlanningService interface {
	CreateScheduleItem(req *ScheduleItemRequest, userID string) (*model.ScheduleItem, error)
	GetSchedule(projectID uuid.UUID) ([]model.ScheduleItem, error)
	DeleteScheduleItem(id uuid.UUID) error
	Overview() ([]PlanningOverview, error)
}

type ScheduleItemRequest struct {
	ProjectID    uuid.UUID       `json:"project_id" validate:"uuid_required"`
	Description  string          `json:"description" validate:"required"`
	Value        decimal.Decimal `json:"value" validate:"gte=0"`
	DurationDays int             `json:"duration_days" validate:"gte=1"`
	StartWeek    int             `json:"start_week" validate:"gte=1"`
}

type ScheduleSummary struct {
	Items      int             `json:"items"`
	TotalValue decimal.Decimal `json:"total_value"`
	Weeks      int             `json:"weeks"`
}

// PlanningOverview is one perencanaan project with its latest RAB and schedule.
type PlanningOverview struct {
	Project        model.Project    `json:"project"`
	RAB            *model.RAB       `json:"rab"`
	Schedule       *ScheduleSummary `json:"schedule"`
	DesignProgress int              `json:"design_progress"`
}

type planningService struct {
	scheduleRepo repository.ScheduleRepository
	projectRepo  repository.ProjectRepository
	rabRepo      repository.RABRepository
}

func NewPlanningService(scheduleRepo repository.ScheduleRepository, projectRepo repository.ProjectRepository, rabRepo repository.RABRepository) PlanningService {
	return &planningService{scheduleRepo: scheduleRepo, projectRepo: projectRepo, rabRepo: rabRepo}
}

func (s *planningService) CreateScheduleItem(req *ScheduleItemRequest, userID string) (*model.ScheduleItem, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}
	if _, err := s.projectRepo.FindByID(req.ProjectID); err != nil {
		return nil, notFoundOr(err, "Project not found")
	}

	item := &model.ScheduleItem{
		ProjectID:    req.ProjectID,
		Description:  req.Description,
		Value:        req.Value,
		DurationDays: req.DurationDays,
		StartWeek:    req.StartWeek,
	}
	item.Touch(userID)
	if err := s.scheduleRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *planningService) GetSchedule(projectID uuid.UUID) ([]model.ScheduleItem, error) {
	return s.scheduleRepo.FindByProject(projectID)
}

func (s *planningService) DeleteScheduleItem(id uuid.UUID) error {
	return notFoundOr(s.scheduleRepo.Delete(id), "Schedule item not found")
}

// Overview lists perencanaan projects. A project with several RABs shows the newest one.
func (s *planningService) Overview() ([]PlanningOverview, error) {
	projects, err := s.projectRepo.FindAll(model.PhasePerencanaan)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	rabs, err := s.rabRepo.FindByProjects(ids)
	if err != nil {
		return nil, err
	}
	rabByProject := make(map[uuid.UUID]*model.RAB, len(rabs))
	for i := range rabs {
		// ordered oldest first, so the newest wins
		rabByProject[*rabs[i].ProjectID] = &rabs[i]
	}

	items, err := s.scheduleRepo.FindByProjects(ids)
	if err != nil {
		return nil, err
	}
	scheduleByProject := make(map[uuid.UUID]*ScheduleSummary)
	for _, item := range items {
		summary, ok := scheduleByProject[item.ProjectID]
		if !ok {
			summary = &ScheduleSummary{TotalValue: decimal.Zero}
			scheduleByProject[item.ProjectID] = summary
		}
		summary.Items++
		summary.TotalValue = summary.TotalValue.Add(item.Value)
		if end := item.EndWeek(); end > summary.Weeks {
			summary.Weeks = end
		}
	}

	overview := make([]PlanningOverview, 0, len(projects))
	for _, p := range projects {
		overview = append(overview, PlanningOverview{
			Project:        p,
			RAB:            rabByProject[p.ID],
			Schedule:       scheduleByProject[p.ID],
			DesignProgress: p.DesignProgress,
		})
	}
	return overview, nil
}
