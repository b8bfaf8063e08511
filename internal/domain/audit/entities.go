package audit

import (
	"time"

	"coop-lending-engine/internal/domain/jsonmap"
)

type Action string

const (
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionStateChange Action = "state_change"
)

// Entry is an append-only record of one tracked mutation. Entries are never
// edited or deleted.
type Entry struct {
	ID         uint64      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Entity     string      `gorm:"size:32;not null;index:idx_audit_entity,priority:1;column:entity" json:"entity"`
	EntityID   string      `gorm:"size:36;not null;index:idx_audit_entity,priority:2;column:entity_id" json:"entity_id"`
	ActorID    *string     `gorm:"size:36;column:actor_id" json:"actor_id,omitempty"`
	Action     Action      `gorm:"size:32;not null;column:action" json:"action"`
	PrevStatus string      `gorm:"size:15;column:prev_status" json:"prev_status,omitempty"`
	NewStatus  string      `gorm:"size:15;column:new_status" json:"new_status,omitempty"`
	PrevValues jsonmap.Map `gorm:"column:prev_values" json:"prev_values"`
	NewValues  jsonmap.Map `gorm:"column:new_values" json:"new_values"`
	Metadata   jsonmap.Map `gorm:"column:metadata" json:"metadata"`
	CreatedAt  time.Time   `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Entry) TableName() string { return "audit_entries" }
