package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/estatedesk/portal/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientService struct {
	db          *gorm.DB
	assignments *AssignmentService
}

func NewClientService(db *gorm.DB, assignments *AssignmentService) *ClientService {
	return &ClientService{db: db, assignments: assignments}
}

type ListRequest struct {
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Name           string `form:"name"`
	Status         string `form:"status"`
	Classification string `form:"classification"`
}

type ListResponse[T any] struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Items    []T   `json:"items"`
}

func (r *ListRequest) normalize() {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.PageSize == 0 {
		r.PageSize = 10
	}
}

func paginate[T any](query *gorm.DB, req *ListRequest) (*ListResponse[T], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	items := []T{}
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &ListResponse[T]{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

type CreateClientRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone"`
	Status         string `json:"status"`
	Classification string `json:"classification"`
	Notes          string `json:"notes"`
}

type UpdateClientRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	Status         string  `json:"status"`
	Classification string  `json:"classification"`
	Notes          *string `json:"notes"`
}

// List returns paginated clients
func (s *ClientService) List(ctx context.Context, req *ListRequest) (*ListResponse[models.Client], error) {
	req.normalize()

	query := s.db.WithContext(ctx).Model(&models.Client{})
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Classification != "" {
		query = query.Where("classification = ?", req.Classification)
	}
	return paginate[models.Client](query, req)
}

func (s *ClientService) GetByID(ctx context.Context, id models.ClientID) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// IDs lists every live client ID, oldest first.
func (s *ClientService) IDs(ctx context.Context) ([]models.ClientID, error) {
	var ids []models.ClientID
	err := s.db.WithContext(ctx).Model(&models.Client{}).Order("created_at ASC").Pluck("id", &ids).Error
	return ids, err
}

func (s *ClientService) Create(ctx context.Context, req *CreateClientRequest) (*models.Client, error) {
	if req.Status == "" {
		req.Status = models.ClientStatusNewLead
	}
	if req.Classification == "" {
		req.Classification = models.ClassificationBuyer
	}
	if !models.ValidClientStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown client status %q", ErrInvalidInput, req.Status)
	}
	if !models.ValidClassification(req.Classification) {
		return nil, fmt.Errorf("%w: unknown classification %q", ErrInvalidInput, req.Classification)
	}

	client := models.Client{
		ID:             models.ClientID(uuid.NewString()),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Status:         req.Status,
		Classification: req.Classification,
		Notes:          req.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) Update(ctx context.Context, id models.ClientID, req *UpdateClientRequest) (*models.Client, error) {
	client, err := s.GetByID(ctx, id)
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
	if req.Status != "" {
		if !models.ValidClientStatus(req.Status) {
			return nil, fmt.Errorf("%w: unknown client status %q", ErrInvalidInput, req.Status)
		}
		updates["status"] = req.Status
	}
	if req.Classification != "" {
		if !models.ValidClassification(req.Classification) {
			return nil, fmt.Errorf("%w: unknown classification %q", ErrInvalidInput, req.Classification)
		}
		updates["classification"] = req.Classification
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(client).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

// Delete soft-deletes the client and clears its assignments. Cleanup runs
// even when the row is already gone so stale edges never outlive a client.
func (s *ClientService) Delete(ctx context.Context, id models.ClientID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Client{})
	if res.Error != nil {
		return res.Error
	}

	if _, err := s.assignments.CleanupClientAssignments(ctx, id); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
