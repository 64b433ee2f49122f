package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	BaseModel
	ProjectID    *uuid.UUID `gorm:"type:varchar(36);index" json:"project_id,omitempty"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Description  *string    `gorm:"type:text" json:"description,omitempty"`
	AssignedTo   *uuid.UUID `gorm:"type:varchar(36);index" json:"assigned_to,omitempty"`
	Role         *string    `gorm:"type:varchar(50)" json:"role,omitempty"`
	Status       string     `gorm:"type:varchar(20);index;not null" json:"status"`
	Priority     string     `gorm:"type:varchar(10);not null" json:"priority"`
	StartDate    time.Time  `json:"start_date"`
	DurationDays *int       `json:"duration_days,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// WorkReport is a progress note an employee files against a task.
type WorkReport struct {
	BaseModel
	TaskID     uuid.UUID `gorm:"type:varchar(36);index;not null" json:"task_id"`
	EmployeeID uuid.UUID `gorm:"type:varchar(36);index;not null" json:"employee_id"`
	Report     string    `gorm:"type:text;not null" json:"report"`
	Progress   int       `gorm:"not null" json:"progress"`
	Photos     []string  `gorm:"type:text;serializer:json" json:"photos"` // base64
}

// TaskStatusFor maps a reported progress percentage to the task status it implies.
func TaskStatusFor(progress int) string {
	if progress >= 100 {
		return TaskCompleted
	}
	return TaskInProgress
}
