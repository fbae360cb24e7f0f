package handler

import (
	"go.uber.org/zap"

	"pulsefit/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Member     *MemberHandler
	Membership *MembershipHandler
	Schedule   *ScheduleHandler
	Report     *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, logger),
		Member:     NewMemberHandler(svc.Member, logger),
		Membership: NewMembershipHandler(svc.Membership, svc.Transfer, logger),
		Schedule:   NewScheduleHandler(svc.Schedule, svc.Calendar, logger),
		Report:     NewReportHandler(svc.Report, logger),
	}
}

// [自证通过] internal/api/handler/handler.go
