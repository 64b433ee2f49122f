package service

import (
	"errors"
	"testing"
	"time"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"

	"github.com/google/uuid"
)

func TestCreateTask(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	worker := f.addUser(t, "tukang@example.com", model.RoleEmployee)
	project := f.createProject(t, "Ruko", model.ProjectArsitektur, 0)

	days := 3
	explicit := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)
	task, err := f.taskService.CreateTask(&CreateTaskRequest{
		ProjectID:    &project.ID,
		Title:        "Pasang bata",
		AssignedTo:   &worker.ID,
		DurationDays: &days,
		DueDate:      &explicit,
	}, "mandor")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != model.TaskPending || task.Priority != model.PriorityMedium {
		t.Errorf("task = %+v", task)
	}
	if task.DueDate == nil || !task.DueDate.Equal(task.StartDate.AddDate(0, 0, 3)) {
		t.Errorf("due = %v, want start + 3 days", task.DueDate)
	}
	if unread, _ := f.notifier.UnreadCount(worker.ID); unread != 1 {
		t.Errorf("assignee unread = %d, want 1", unread)
	}

	open, err := f.taskService.CreateTask(&CreateTaskRequest{Title: "Bersih lokasi", Priority: model.PriorityHigh, DueDate: &explicit}, "mandor")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if !open.DueDate.Equal(explicit) || open.Priority != model.PriorityHigh {
		t.Errorf("unassigned task = %+v", open)
	}

	invalidReqs := []struct {
		name string
		req  CreateTaskRequest
	}{
		{"no title", CreateTaskRequest{}},
		{"priority", CreateTaskRequest{Title: "X", Priority: "urgent"}},
		{"duration", CreateTaskRequest{Title: "X", DurationDays: new(int)}},
	}
	for _, tt := range invalidReqs {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.taskService.CreateTask(&tt.req, "mandor"); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want invalid argument", err)
			}
		})
	}

	mine, err := f.taskService.GetTasks(repository.TaskFilter{AssignedTo: &worker.ID})
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != task.ID {
		t.Errorf("assigned tasks = %v", mine)
	}
	all, err := f.taskService.GetTasks(repository.TaskFilter{})
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("tasks = %d, want 2", len(all))
	}
}

func TestTaskStatusAndReports(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	task, err := f.taskService.CreateTask(&CreateTaskRequest{Title: "Plester dinding"}, "mandor")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	employee := uuid.New()

	reports := []struct {
		progress   int
		wantStatus string
	}{
		{40, model.TaskInProgress},
		{100, model.TaskCompleted},
	}
	for _, r := range reports {
		if _, err := f.taskService.CreateReport(task.ID, &WorkReportRequest{Report: "progres", Progress: r.progress, Photos: []string{"aGVsbG8="}}, employee); err != nil {
			t.Fatalf("CreateReport(%d): %v", r.progress, err)
		}
		got, err := f.taskService.GetTask(task.ID)
		if err != nil {
			t.Fatalf("GetTask: %v", err)
		}
		if got.Status != r.wantStatus {
			t.Errorf("after %d%% status = %s, want %s", r.progress, got.Status, r.wantStatus)
		}
		if (got.CompletedAt != nil) != (r.wantStatus == model.TaskCompleted) {
			t.Errorf("after %d%% completed_at = %v", r.progress, got.CompletedAt)
		}
	}

	filed, err := f.taskService.GetReports(task.ID)
	if err != nil {
		t.Fatalf("GetReports: %v", err)
	}
	if len(filed) != 2 || len(filed[0].Photos) != 1 || filed[0].EmployeeID != employee {
		t.Errorf("reports = %+v", filed)
	}

	if _, err := f.taskService.CreateReport(uuid.New(), &WorkReportRequest{Report: "x", Progress: 10}, employee); !errors.Is(err, ErrNotFound) {
		t.Errorf("report on unknown task err = %v", err)
	}
	if _, err := f.taskService.CreateReport(task.ID, &WorkReportRequest{Report: "x", Progress: 140}, employee); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("progress 140 err = %v", err)
	}

	if err := f.taskService.UpdateStatus(task.ID, model.TaskPending, "mandor"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := f.taskService.UpdateStatus(task.ID, "done", "mandor"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad status err = %v", err)
	}
	title := "Plester dan aci"
	updated, err := f.taskService.UpdateTask(task.ID, &UpdateTaskRequest{Title: &title}, "mandor")
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Title != title || updated.Status != model.TaskPending {
		t.Errorf("updated = %+v", updated)
	}

	if err := f.taskService.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if n := f.countRows(t, &model.WorkReport{}, ""); n != 0 {
		t.Errorf("reports after delete = %d", n)
	}
	if err := f.taskService.DeleteTask(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
