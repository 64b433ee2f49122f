package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProjectInterior   = "interior"
	ProjectArsitektur = "arsitektur"

	PhasePerencanaan = "perencanaan"
	PhasePelaksanaan = "pelaksanaan"

	ProjectActive    = "active"
	ProjectWaiting   = "waiting"
	ProjectCompleted = "completed"
)

type Project struct {
	BaseModel
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Type           string          `gorm:"type:varchar(20);index;not null" json:"type"`
	Description    *string         `gorm:"type:text" json:"description,omitempty"`
	ContractDate   *time.Time      `json:"contract_date,omitempty"`
	Duration       *int            `json:"duration,omitempty"` // days
	Location       *string         `gorm:"type:varchar(255)" json:"location,omitempty"`
	ProjectValue   decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"project_value"`
	Status         string          `gorm:"type:varchar(20);default:active" json:"status"`
	Phase          string          `gorm:"type:varchar(20);index" json:"phase"`
	DesignProgress int             `gorm:"default:0" json:"design_progress"`
}

// PhaseFor is the phase a new project gets when created by a role.
func PhaseFor(roleCode string) string {
	if roleCode == RoleProjectPlanningTeam {
		return PhasePerencanaan
	}
	return PhasePelaksanaan
}

// VisiblePhase returns the phase a role is limited to, or "" when it sees every phase.
func VisiblePhase(roleCode string) string {
	switch roleCode {
	case RoleAdmin:
		return ""
	case RoleProjectPlanningTeam:
		return PhasePerencanaan
	default:
		return PhasePelaksanaan
	}
}
