package services

import (
	"context"
	"fmt"

	"github.com/estatedesk/portal/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HoursLogService struct {
	db *gorm.DB
}

func NewHoursLogService(db *gorm.DB) *HoursLogService {
	return &HoursLogService{db: db}
}

type CreateHoursLogRequest struct {
	ConsultantID string  `json:"consultant_id" binding:"required"`
	ProjectID    string  `json:"project_id" binding:"required"`
	Date         string  `json:"date" binding:"required"`
	Hours        float64 `json:"hours"`
	Description  string  `json:"description"`
}

type HoursLogFilter struct {
	ConsultantID string `form:"consultant_id"`
	ProjectID    string `form:"project_id"`
	From         string `form:"from"`
	To           string `form:"to"`
}

type ProjectHours struct {
	ProjectID models.ProjectID `json:"project_id"`
	Hours     float64          `json:"hours"`
	Entries   int64            `json:"entries"`
}

func (s *HoursLogService) Create(ctx context.Context, req *CreateHoursLogRequest) (*models.HoursLog, error) {
	consultantID, err := models.ParseConsultantID(req.ConsultantID)
	if err != nil {
		return nil, fmt.Errorf("%w: consultant_id", ErrInvalidInput)
	}
	projectID, err := models.ParseProjectID(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: project_id", ErrInvalidInput)
	}
	if req.Hours < 0 {
		return nil, fmt.Errorf("%w: hours must not be negative", ErrInvalidInput)
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return nil, err
	}
	if date == nil {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	log := models.HoursLog{
		ID:           uuid.NewString(),
		ConsultantID: consultantID,
		ProjectID:    projectID,
		Date:         *date,
		Hours:        req.Hours,
		Description:  req.Description,
	}
	if err := s.db.WithContext(ctx).Create(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *HoursLogService) filtered(ctx context.Context, f *HoursLogFilter) (*gorm.DB, error) {
	query := s.db.WithContext(ctx).Model(&models.HoursLog{})
	if f.ConsultantID != "" {
		query = query.Where("consultant_id = ?", f.ConsultantID)
	}
	if f.ProjectID != "" {
		query = query.Where("project_id = ?", f.ProjectID)
	}
	from, err := parseOptionalDate(f.From)
	if err != nil {
		return nil, err
	}
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	to, err := parseOptionalDate(f.To)
	if err != nil {
		return nil, err
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	return query, nil
}

// List returns matching logs, most recent date first.
func (s *HoursLogService) List(ctx context.Context, f *HoursLogFilter) ([]models.HoursLog, error) {
	query, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	logs := []models.HoursLog{}
	if err := query.Order("date DESC, created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Summary totals hours per project for the filter.
func (s *HoursLogService) Summary(ctx context.Context, f *HoursLogFilter) ([]ProjectHours, error) {
	query, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	out := []ProjectHours{}
	err = query.
		Select("project_id, SUM(hours) AS hours, COUNT(*) AS entries").
		Group("project_id").
		Order("project_id").
		Scan(&out).Error
	return out, err
}

func (s *HoursLogService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.HoursLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
