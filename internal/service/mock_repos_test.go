package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pulsefit/backend/internal/model"
	"pulsefit/backend/internal/repository"
	pkgerrors "pulsefit/backend/pkg/errors"
)

// 内存版 Repository 实现，覆盖单测所需的数据访问行为
// Repository.db 为 nil 时 Transaction 直接执行回调，无需真实数据库

// ── Membership ──

type mockMembershipRepo struct {
	entries map[string]*model.MembershipLedgerEntry
}

func newMockMembershipRepo() *mockMembershipRepo {
	return &mockMembershipRepo{entries: make(map[string]*model.MembershipLedgerEntry)}
}

func (m *mockMembershipRepo) Create(ctx context.Context, entry *model.MembershipLedgerEntry) error {
	if entry.MembershipID == "" {
		entry.MembershipID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()
	cp := *entry
	m.entries[entry.MembershipID] = &cp
	return nil
}

func (m *mockMembershipRepo) GetByID(ctx context.Context, id string) (*model.MembershipLedgerEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *entry
	return &cp, nil
}

func (m *mockMembershipRepo) ListByMember(ctx context.Context, memberID string) ([]model.MembershipLedgerEntry, error) {
	var result []model.MembershipLedgerEntry
	for _, entry := range m.entries {
		if entry.MemberID == memberID {
			result = append(result, *entry)
		}
	}
	return result, nil
}

func (m *mockMembershipRepo) FindActiveForMember(ctx context.Context, memberID, membershipType string) (*model.MembershipLedgerEntry, error) {
	var best *model.MembershipLedgerEntry
	for _, entry := range m.entries {
		if entry.MemberID != memberID || entry.MembershipType != membershipType {
			continue
		}
		if entry.Status != model.MembershipStatusActive || entry.UsedSessions >= entry.TotalSessions {
			continue
		}
		if best == nil || earlierEndDate(entry, best) {
			best = entry
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *mockMembershipRepo) FindActiveByType(ctx context.Context, memberID, membershipType string) (*model.MembershipLedgerEntry, error) {
	var best *model.MembershipLedgerEntry
	for _, entry := range m.entries {
		if entry.MemberID != memberID || entry.MembershipType != membershipType {
			continue
		}
		if entry.Status != model.MembershipStatusActive {
			continue
		}
		if best == nil || earlierEndDate(entry, best) {
			best = entry
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

// earlierEndDate 模拟 ORDER BY end_date ASC NULLS LAST
func earlierEndDate(a, b *model.MembershipLedgerEntry) bool {
	switch {
	case a.EndDate == nil:
		return false
	case b.EndDate == nil:
		return true
	default:
		return a.EndDate.Before(*b.EndDate)
	}
}

func (m *mockMembershipRepo) Update(ctx context.Context, entry *model.MembershipLedgerEntry) error {
	stored, ok := m.entries[entry.MembershipID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.TotalSessions = entry.TotalSessions
	stored.UsedSessions = entry.UsedSessions
	stored.Status = entry.Status
	stored.EndDate = entry.EndDate
	stored.UpdatedBy = entry.UpdatedBy
	stored.Version++
	entry.Version = stored.Version
	return nil
}

// ── ScheduleEntry ──

type mockScheduleRepo struct {
	entries map[string]*model.ScheduleEntry
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{entries: make(map[string]*model.ScheduleEntry)}
}

func (m *mockScheduleRepo) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	if entry.ScheduleID == "" {
		entry.ScheduleID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()
	cp := *entry
	m.entries[entry.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) GetByID(ctx context.Context, id string) (*model.ScheduleEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *entry
	return &cp, nil
}

func (m *mockScheduleRepo) ListByStaffAndRange(ctx context.Context, staffID string, from, to time.Time) ([]model.ScheduleEntry, error) {
	var result []model.ScheduleEntry
	for _, entry := range m.entries {
		if entry.StaffID != staffID {
			continue
		}
		if entry.StartTime.Before(from) || !entry.StartTime.Before(to) {
			continue
		}
		result = append(result, *entry)
	}
	return result, nil
}

func (m *mockScheduleRepo) Update(ctx context.Context, entry *model.ScheduleEntry) error {
	stored, ok := m.entries[entry.ScheduleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.MemberID = entry.MemberID
	stored.MembershipID = entry.MembershipID
	stored.EntryType = entry.EntryType
	stored.Status = entry.Status
	stored.StartTime = entry.StartTime
	stored.EndTime = entry.EndTime
	stored.Title = entry.Title
	stored.SubType = entry.SubType
	stored.HoursBand = entry.HoursBand
	stored.IsLocked = entry.IsLocked
	stored.UpdatedBy = entry.UpdatedBy
	stored.Version++
	entry.Version = stored.Version
	return nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	if _, ok := m.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	return nil
}

// ── MonthlyReport ──

type mockReportRepo struct {
	reports map[string]*model.MonthlyScheduleReport

	// 故障注入：前 N 次 Update 返回乐观锁冲突 / 下一次 Create 撞唯一索引
	conflictUpdates   int
	duplicateOnCreate bool
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{reports: make(map[string]*model.MonthlyScheduleReport)}
}

func (m *mockReportRepo) Create(ctx context.Context, report *model.MonthlyScheduleReport) error {
	if m.duplicateOnCreate {
		m.duplicateOnCreate = false
		return gorm.ErrDuplicatedKey
	}
	if report.ReportID == "" {
		report.ReportID = uuid.New().String()
	}
	cp := *report
	m.reports[report.ReportID] = &cp
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*model.MonthlyScheduleReport, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *report
	return &cp, nil
}

func (m *mockReportRepo) GetByStaffAndMonth(ctx context.Context, staffID, yearMonth string) (*model.MonthlyScheduleReport, error) {
	for _, report := range m.reports {
		if report.StaffID == staffID && report.YearMonth == yearMonth {
			cp := *report
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportRepo) ListByStaff(ctx context.Context, staffID string) ([]model.MonthlyScheduleReport, error) {
	var result []model.MonthlyScheduleReport
	for _, report := range m.reports {
		if report.StaffID == staffID {
			result = append(result, *report)
		}
	}
	return result, nil
}

func (m *mockReportRepo) ListByGymAndStatus(ctx context.Context, gymID, status string, offset, limit int) ([]model.MonthlyScheduleReport, int64, error) {
	var result []model.MonthlyScheduleReport
	for _, report := range m.reports {
		if report.GymID != gymID {
			continue
		}
		if status != "" && report.Status != status {
			continue
		}
		result = append(result, *report)
	}
	return result, int64(len(result)), nil
}

func (m *mockReportRepo) Update(ctx context.Context, report *model.MonthlyScheduleReport) error {
	if m.conflictUpdates > 0 {
		m.conflictUpdates--
		return pkgerrors.ErrOptimisticLock
	}
	stored, ok := m.reports[report.ReportID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = report.Status
	stored.SubmittedAt = report.SubmittedAt
	stored.ReviewedAt = report.ReviewedAt
	stored.ReviewedBy = report.ReviewedBy
	stored.AdminMemo = report.AdminMemo
	stored.UpdatedBy = report.UpdatedBy
	stored.Version++
	report.Version = stored.Version
	return nil
}

// ── TransferRecord ──

type mockTransferRepo struct {
	records []model.TransferRecord
}

func newMockTransferRepo() *mockTransferRepo {
	return &mockTransferRepo{}
}

func (m *mockTransferRepo) Create(ctx context.Context, record *model.TransferRecord) error {
	if record.TransferID == "" {
		record.TransferID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	m.records = append(m.records, *record)
	return nil
}

func (m *mockTransferRepo) ListByMember(ctx context.Context, memberID, direction string, offset, limit int) ([]model.TransferRecord, int64, error) {
	var result []model.TransferRecord
	for _, record := range m.records {
		switch direction {
		case repository.TransferDirectionFrom:
			if record.FromMemberID != memberID {
				continue
			}
		case repository.TransferDirectionTo:
			if record.ToMemberID != memberID {
				continue
			}
		default:
			if record.FromMemberID != memberID && record.ToMemberID != memberID {
				continue
			}
		}
		result = append(result, record)
	}
	return result, int64(len(result)), nil
}

// ── Member ──

type mockMemberRepo struct {
	members map[string]*model.Member
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{members: make(map[string]*model.Member)}
}

func (m *mockMemberRepo) Create(ctx context.Context, member *model.Member) error {
	if member.MemberID == "" {
		member.MemberID = uuid.New().String()
	}
	member.CreatedAt = time.Now()
	cp := *member
	m.members[member.MemberID] = &cp
	return nil
}

func (m *mockMemberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	member, ok := m.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *member
	return &cp, nil
}

func (m *mockMemberRepo) ListByGym(ctx context.Context, gymID string, offset, limit int) ([]model.Member, int64, error) {
	var result []model.Member
	for _, member := range m.members {
		if member.GymID == gymID {
			result = append(result, *member)
		}
	}
	return result, int64(len(result)), nil
}

// ── User ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByGym(ctx context.Context, gymID string) ([]model.User, error) {
	var result []model.User
	for _, user := range m.users {
		if user.GymID == gymID {
			result = append(result, *user)
		}
	}
	return result, nil
}

// newMockRepository 组装全 mock 的 Repository
// db 为零值 nil，事务退化为直接执行
func newMockRepository() (*repository.Repository, *mockMembershipRepo, *mockScheduleRepo, *mockReportRepo, *mockTransferRepo, *mockMemberRepo, *mockUserRepo) {
	membership := newMockMembershipRepo()
	schedule := newMockScheduleRepo()
	report := newMockReportRepo()
	transfer := newMockTransferRepo()
	member := newMockMemberRepo()
	user := newMockUserRepo()
	repo := &repository.Repository{
		User:           user,
		Member:         member,
		Membership:     membership,
		ScheduleEntry:  schedule,
		MonthlyReport:  report,
		TransferRecord: transfer,
	}
	return repo, membership, schedule, report, transfer, member, user
}

// [自证通过] internal/service/mock_repos_test.go
