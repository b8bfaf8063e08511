package member

import (
	"errors"
	"time"

	"coop-lending-engine/internal/domain/jsonmap"
)

var (
	ErrNotFound          = errors.New("member not found")
	ErrInvalidTransition = errors.New("member status transition not allowed")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// allowedTransitions is the full member state machine. Self-transitions are
// never allowed.
var allowedTransitions = map[Status][]Status{
	StatusActive:    {StatusInactive, StatusSuspended},
	StatusInactive:  {StatusActive},
	StatusSuspended: {StatusActive},
}

// CanTransition reports whether a member may move from to next.
func CanTransition(from, next Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == next {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s names a known member status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

type Member struct {
	ID         string      `gorm:"primaryKey;size:36;column:id" json:"id"`
	UserID     *string     `gorm:"size:36;uniqueIndex:ux_members_user_id;column:user_id" json:"user_id,omitempty"`
	FullName   string      `gorm:"size:150;not null;column:full_name" json:"full_name"`
	Document   *string     `gorm:"size:30;uniqueIndex:ux_members_document;column:document" json:"document,omitempty"`
	Phone      string      `gorm:"size:30;column:phone" json:"phone,omitempty"`
	Address    string      `gorm:"size:255;column:address" json:"address,omitempty"`
	Status     Status      `gorm:"size:15;not null;default:'active';column:status" json:"status"`
	FiscalData jsonmap.Map `gorm:"column:fiscal_data" json:"fiscal_data"`
	JoinedAt   *time.Time  `gorm:"type:date;column:joined_at" json:"joined_at,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Member) TableName() string { return "members" }
