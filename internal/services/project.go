package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estatedesk/portal/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type ProjectService struct {
	db          *gorm.DB
	assignments *AssignmentService
}

func NewProjectService(db *gorm.DB, assignments *AssignmentService) *ProjectService {
	return &ProjectService{db: db, assignments: assignments}
}

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Budget      float64 `json:"budget" binding:"min=0"`
}

type UpdateProjectRequest struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Status      string   `json:"status"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Budget      *float64 `json:"budget"`
}

// List returns paginated projects
func (s *ProjectService) List(ctx context.Context, req *ListRequest) (*ListResponse[models.Project], error) {
	req.normalize()

	query := s.db.WithContext(ctx).Model(&models.Project{})
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	return paginate[models.Project](query, req)
}

// GetByID returns a project by ID
func (s *ProjectService) GetByID(ctx context.Context, id models.ProjectID) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Create(ctx context.Context, req *CreateProjectRequest) (*models.Project, error) {
	if req.Status == "" {
		req.Status = models.ProjectStatusPlanning
	}
	if !models.ValidProjectStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown project status %q", ErrInvalidInput, req.Status)
	}
	if req.Budget < 0 {
		return nil, fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: end_date before start_date", ErrInvalidInput)
	}

	project := models.Project{
		ID:          models.ProjectID(uuid.NewString()),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   start,
		EndDate:     end,
		Budget:      req.Budget,
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update updates a project
func (s *ProjectService) Update(ctx context.Context, id models.ProjectID, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != "" {
		if !models.ValidProjectStatus(req.Status) {
			return nil, fmt.Errorf("%w: unknown project status %q", ErrInvalidInput, req.Status)
		}
		updates["status"] = req.Status
	}
	if req.StartDate != nil {
		d, err := parseOptionalDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		updates["start_date"] = d
	}
	if req.EndDate != nil {
		d, err := parseOptionalDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		updates["end_date"] = d
	}
	if req.Budget != nil {
		if *req.Budget < 0 {
			return nil, fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
		}
		updates["budget"] = *req.Budget
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

// Delete soft-deletes the project and clears its assignments. Hours logged
// against it are kept.
func (s *ProjectService) Delete(ctx context.Context, id models.ProjectID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Project{})
	if res.Error != nil {
		return res.Error
	}

	if _, err := s.assignments.CleanupProjectAssignments(ctx, id); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, raw)
	}
	return &d, nil
}
