package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleItem is one bar of a project's time schedule (kurva S), placed by start week.
type ScheduleItem struct {
	BaseModel
	ProjectID    uuid.UUID       `gorm:"type:varchar(36);index;not null" json:"project_id"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Value        decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"value"`
	DurationDays int             `gorm:"not null" json:"duration_days"`
	StartWeek    int             `gorm:"not null" json:"start_week"`
}

// EndWeek is the last week the item occupies. Weeks are numbered from 1.
func (s *ScheduleItem) EndWeek() int {
	weeks := (s.DurationDays + 6) / 7
	if weeks < 1 {
		weeks = 1
	}
	return s.StartWeek + weeks - 1
}
