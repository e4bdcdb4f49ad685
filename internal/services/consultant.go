package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultantService struct {
	db          *gorm.DB
	assignments *AssignmentService
}

func NewConsultantService(db *gorm.DB, assignments *AssignmentService) *ConsultantService {
	return &ConsultantService{db: db, assignments: assignments}
}

type CreateConsultantRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	Status    string `json:"status"`
}

type UpdateConsultantRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Specialty *string `json:"specialty"`
	Status    string  `json:"status"`
}

// List returns paginated consultants
func (s *ConsultantService) List(ctx context.Context, req *ListRequest) (*ListResponse[models.Consultant], error) {
	req.normalize()

	query := s.db.WithContext(ctx).Model(&models.Consultant{})
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	return paginate[models.Consultant](query, req)
}

func (s *ConsultantService) GetByID(ctx context.Context, id models.ConsultantID) (*models.Consultant, error) {
	var consultant models.Consultant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&consultant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &consultant, nil
}

func (s *ConsultantService) IDs(ctx context.Context) ([]models.ConsultantID, error) {
	var ids []models.ConsultantID
	err := s.db.WithContext(ctx).Model(&models.Consultant{}).Order("created_at ASC").Pluck("id", &ids).Error
	return ids, err
}

func (s *ConsultantService) Create(ctx context.Context, req *CreateConsultantRequest) (*models.Consultant, error) {
	if req.Status == "" {
		req.Status = models.ConsultantStatusActive
	}
	if !models.ValidConsultantStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown consultant status %q", ErrInvalidInput, req.Status)
	}

	consultant := models.Consultant{
		ID:        models.ConsultantID(uuid.NewString()),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Specialty: req.Specialty,
		Status:    req.Status,
	}
	if err := s.db.WithContext(ctx).Create(&consultant).Error; err != nil {
		return nil, err
	}
	return &consultant, nil
}

func (s *ConsultantService) Update(ctx context.Context, id models.ConsultantID, req *UpdateConsultantRequest) (*models.Consultant, error) {
	consultant, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Specialty != nil {
		updates["specialty"] = *req.Specialty
	}
	if req.Status != "" {
		if !models.ValidConsultantStatus(req.Status) {
			return nil, fmt.Errorf("%w: unknown consultant status %q", ErrInvalidInput, req.Status)
		}
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(consultant).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

// Delete removes a consultant as one unit: the row is soft-deleted and its
// hours logs hard-deleted in a transaction, then every assignment edge
// naming the consultant is cleared. Cleanup is skipped only when the
// transaction itself fails, since the consultant then still exists.
func (s *ConsultantService) Delete(ctx context.Context, id models.ConsultantID) error {
	var found bool
	var logs int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Consultant{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0

		res = tx.Where("consultant_id = ?", id).Delete(&models.HoursLog{})
		logs = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return err
	}

	logger.Info().Str("consultant_id", string(id)).Int64("hours_logs", logs).Msg("consultant deleted")

	if _, err := s.assignments.CleanupConsultantAssignments(ctx, id); err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
