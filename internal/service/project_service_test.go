package service

import (
	"context"
	"errors"
	"testing"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"

	"github.com/google/uuid"
)

func TestCreateProjectPhaseByRole(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})

	tests := []struct {
		role string
		want string
	}{
		{model.RoleProjectPlanningTeam, model.PhasePerencanaan},
		{model.RoleAdmin, model.PhasePelaksanaan},
		{model.RoleSiteSupervisor, model.PhasePelaksanaan},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			project, err := f.projService.CreateProject(&ProjectRequest{Name: "Proyek " + tt.role, Type: model.ProjectInterior}, "tester", tt.role)
			if err != nil {
				t.Fatalf("CreateProject: %v", err)
			}
			if project.Phase != tt.want {
				t.Errorf("phase = %q, want %q", project.Phase, tt.want)
			}
			if project.Status != model.ProjectActive {
				t.Errorf("status = %q, want active", project.Status)
			}
		})
	}

	planning, err := f.projService.GetProjects(model.RoleProjectPlanningTeam, "")
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(planning) != 1 {
		t.Errorf("planning team sees %d projects, want 1", len(planning))
	}
	all, err := f.projService.GetProjects(model.RoleAdmin, "")
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("admin sees %d projects, want 3", len(all))
	}

	if _, err := f.projService.CreateProject(&ProjectRequest{Name: "X", Type: "lanskap"}, "tester", model.RoleAdmin); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad type err = %v, want invalid argument", err)
	}
}

func TestCreateProjectNotifiesSiteSupervisors(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	role := model.Role{Code: model.RoleSiteSupervisor, Name: "Site Supervisor"}
	if err := f.db.Create(&role).Error; err != nil {
		t.Fatalf("create role: %v", err)
	}
	supervisor := &model.User{Email: "mandor@example.com", FullName: "Mandor", RoleID: &role.ID, IsActive: true}
	if err := supervisor.SetPassword("rahasia123"); err != nil {
		t.Fatal(err)
	}
	if err := f.users.Create(supervisor); err != nil {
		t.Fatalf("create user: %v", err)
	}

	f.createProject(t, "Sekolah", model.ProjectArsitektur, 0)

	unread, err := f.notifier.UnreadCount(supervisor.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 1 {
		t.Errorf("unread = %d, want 1", unread)
	}
	if got := f.events.count(eventNotification); got != 1 {
		t.Errorf("notification events = %d, want 1", got)
	}
}

func TestUpdateProject(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	project := f.createProject(t, "Lama", model.ProjectInterior, 1000)

	name := "Baru"
	status := model.ProjectCompleted
	value := dec("2500000")
	updated, err := f.projService.UpdateProject(project.ID, &UpdateProjectRequest{Name: &name, Status: &status, ProjectValue: &value}, "editor")
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.Name != name || updated.Status != status || !updated.ProjectValue.Equal(value) {
		t.Errorf("updated = %+v", updated)
	}

	bad := "archived"
	if _, err := f.projService.UpdateProject(project.ID, &UpdateProjectRequest{Status: &bad}, "editor"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad status err = %v, want invalid argument", err)
	}

	tests := []struct {
		progress int
		want     error
	}{
		{0, nil},
		{100, nil},
		{101, ErrInvalidArgument},
		{-1, ErrInvalidArgument},
	}
	for _, tt := range tests {
		if err := f.projService.UpdateDesignProgress(project.ID, tt.progress); !errors.Is(err, tt.want) {
			t.Errorf("UpdateDesignProgress(%d) err = %v, want %v", tt.progress, err, tt.want)
		}
	}
	got, err := f.projService.GetProjectByID(project.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if got.DesignProgress != 100 {
		t.Errorf("design_progress = %d, want 100", got.DesignProgress)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	doomed := f.createProject(t, "Dibatalkan", model.ProjectArsitektur, 0)
	kept := f.createProject(t, "Berjalan", model.ProjectArsitektur, 0)
	ctx := context.Background()

	f.post(t, doomed.ID, model.CategoryBahan, line{name: "Semen", qty: "10", price: "50000"})
	f.post(t, doomed.ID, model.CategoryUpah, line{name: "Tukang", qty: "2", price: "150000"})
	f.post(t, kept.ID, model.CategoryBahan, line{name: "Semen", qty: "4", price: "50000"})

	semen := f.record(t, doomed.ID, model.CategoryBahan, "Semen")
	if _, err := f.invService.IssueStock(ctx, &IssueStockRequest{InventoryID: semen.ID, Quantity: dec("2"), ProjectID: doomed.ID}, "mandor"); err != nil {
		t.Fatalf("IssueStock: %v", err)
	}

	linked := &model.RAB{ProjectID: &doomed.ID, ProjectName: doomed.Name, ProjectType: doomed.Type, Status: model.RABApproved}
	if err := f.rabs.Create(linked); err != nil {
		t.Fatalf("create rab: %v", err)
	}
	// an item that only the RAB points at, and one that names the project
	for _, projectID := range []*uuid.UUID{nil, &doomed.ID} {
		item := &model.RABItem{RABID: linked.ID, ProjectID: projectID, Category: "Struktur", Description: "Kolom", Unit: "m3"}
		if err := f.rabs.CreateItem(item); err != nil {
			t.Fatalf("create rab item: %v", err)
		}
	}
	if _, err := f.planning.CreateScheduleItem(&ScheduleItemRequest{
		ProjectID: doomed.ID, Description: "Pondasi", DurationDays: 7, StartWeek: 1,
	}, "planner"); err != nil {
		t.Fatalf("CreateScheduleItem: %v", err)
	}
	task, err := f.taskService.CreateTask(&CreateTaskRequest{ProjectID: &doomed.ID, Title: "Cor kolom"}, "planner")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := f.taskService.CreateReport(task.ID, &WorkReportRequest{Report: "mulai", Progress: 10}, uuid.New()); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	draft, err := f.rabService.CreateRAB(&CreateRABRequest{ProjectName: "Penawaran lain"}, "estimator")
	if err != nil {
		t.Fatalf("CreateRAB: %v", err)
	}

	if err := f.projService.DeleteProject(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	checks := []struct {
		name  string
		model interface{}
	}{
		{"transactions", &model.Transaction{}},
		{"inventory", &model.InventoryRecord{}},
		{"usages", &model.WarehouseUsage{}},
		{"rabs", &model.RAB{}},
		{"schedule", &model.ScheduleItem{}},
		{"tasks", &model.Task{}},
	}
	for _, c := range checks {
		if n := f.countRows(t, c.model, "project_id = ?", doomed.ID); n != 0 {
			t.Errorf("%s left for deleted project = %d", c.name, n)
		}
	}
	if n := f.countRows(t, &model.RABItem{}, ""); n != 0 {
		t.Errorf("rab items = %d, want 0", n)
	}
	if n := f.countRows(t, &model.WorkReport{}, ""); n != 0 {
		t.Errorf("work reports = %d, want 0", n)
	}
	if _, err := f.rabService.GetRAB(draft.ID); err != nil {
		t.Errorf("unlinked RAB: %v", err)
	}
	if n := f.countRows(t, &model.TransactionItem{}, ""); n != 1 {
		t.Errorf("transaction items = %d, want 1 from the kept project", n)
	}
	assertQty(t, f.record(t, kept.ID, model.CategoryBahan, "Semen"), "4", "0", "4")

	if _, err := f.projService.GetProjectByID(doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted err = %v, want not found", err)
	}
	if err := f.projService.DeleteProject(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}

	records, err := f.inventory.FindAll(repository.InventoryFilter{})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("inventory left = %d, want 1", len(records))
	}
}
