package model

import "time"

// AttendanceLog 核销审计表 — 对应 attendance_logs
// 只追加的扫码流水，每个扫码终态（含被拒绝的）都落一条，跨主办方共用；
// 写入失败不回滚核销本身
type AttendanceLog struct {
	ID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GroupID    string     `gorm:"type:varchar(100);not null;default:''" json:"group_id"`
	GuestName  string     `gorm:"type:varchar(255);not null;default:''" json:"guest_name"`
	Phone      string     `gorm:"type:varchar(50);not null;default:''"  json:"phone"`
	OwnerCode  string     `gorm:"type:varchar(255);not null;index"   json:"owner_code"`
	Outcome    string     `gorm:"type:varchar(30);not null;default:''" json:"outcome"`
	ScanTime   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"scan_time"`
	EventTime  *time.Time `json:"event_time,omitempty"`
	GuestCount int        `gorm:"not null;default:0"                 json:"guest_count"`
}

// TableName 指定表名
func (AttendanceLog) TableName() string { return "attendance_logs" }
