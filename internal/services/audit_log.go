package services

import (
	"context"
	"time"

	"github.com/estatedesk/portal/internal/config"
	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

type AuditLogService struct {
	db            *gorm.DB
	cfg           config.AuditConfig
	cronScheduler *cron.Cron
}

func NewAuditLogService(db *gorm.DB, cfg config.AuditConfig) *AuditLogService {
	return &AuditLogService{db: db, cfg: cfg}
}

type AuditLogListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Module    string `form:"module"`
	Action    string `form:"action"`
	UserID    string `form:"user_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// Record stores one audit entry. Failures are logged, never returned, so
// auditing cannot fail the request it describes.
func (s *AuditLogService) Record(ctx context.Context, entry *models.AuditLog) {
	if !s.cfg.Enabled {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Warn().Err(err).Str("path", entry.Path).Msg("failed to write audit log")
	}
}

func (s *AuditLogService) List(ctx context.Context, req *AuditLogListRequest) (*ListResponse[models.AuditLog], error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action = ?", req.Action)
	}
	if req.UserID != "" {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}

	return paginate[models.AuditLog](query, &ListRequest{Page: req.Page, PageSize: req.PageSize})
}

// CleanupOldLogs deletes entries older than retentionDays and returns how
// many were removed. A non-positive retention keeps everything.
func (s *AuditLogService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StartScheduler prunes old audit rows on the configured cron spec.
func (s *AuditLogService) StartScheduler() error {
	if !s.cfg.Enabled || s.cfg.RetentionDays <= 0 {
		logger.Info().Msg("audit log cleanup disabled")
		return nil
	}

	s.cronScheduler = cron.New()
	if _, err := s.cronScheduler.AddFunc(s.cfg.CleanupSpec, s.runCleanup); err != nil {
		return err
	}
	s.cronScheduler.Start()
	logger.Info().Str("cron", s.cfg.CleanupSpec).Int("retention_days", s.cfg.RetentionDays).Msg("audit log cleanup scheduled")
	return nil
}

func (s *AuditLogService) StopScheduler() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
	}
}

func (s *AuditLogService) runCleanup() {
	deleted, err := s.CleanupOldLogs(context.Background(), s.cfg.RetentionDays)
	if err != nil {
		logger.Error().Err(err).Msg("audit log cleanup failed")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Int("retention_days", s.cfg.RetentionDays).Msg("old audit logs removed")
	}
}
