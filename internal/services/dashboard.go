package services

import (
	"context"
	"time"

	"github.com/estatedesk/portal/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db          *gorm.DB
	assignments *AssignmentService
}

func NewDashboardService(db *gorm.DB, assignments *AssignmentService) *DashboardService {
	return &DashboardService{db: db, assignments: assignments}
}

type DashboardStatsRequest struct {
	StartDate       string `form:"start_date"`
	EndDate         string `form:"end_date"`
	ProjectLimit    int    `form:"project_limit"`
	ConsultantLimit int    `form:"consultant_limit"`
}

type DashboardStats struct {
	Clients        int64   `json:"clients"`
	Consultants    int64   `json:"consultants"`
	Projects       int64   `json:"projects"`
	ActiveProjects int64   `json:"active_projects"`
	HoursLogged    float64 `json:"hours_logged"`
}

type ProjectStats struct {
	ProjectID   models.ProjectID `json:"project_id"`
	ProjectName string           `json:"project_name"`
	Hours       float64          `json:"hours"`
	Consultants int              `json:"consultants"`
	Clients     int              `json:"clients"`
}

type ConsultantStats struct {
	ConsultantID   models.ConsultantID `json:"consultant_id"`
	ConsultantName string              `json:"consultant_name"`
	Hours          float64             `json:"hours"`
	Clients        int                 `json:"clients"`
}

type DashboardResponse struct {
	Stats           DashboardStats    `json:"stats"`
	Relations       RelationCounts    `json:"relations"`
	ProjectStats    []ProjectStats    `json:"project_stats"`
	ConsultantStats []ConsultantStats `json:"consultant_stats"`
}

// window resolves the reporting range; the default is the last 7 days.
func (r *DashboardStatsRequest) window(now time.Time) (time.Time, time.Time) {
	start := now.AddDate(0, 0, -7)
	end := now
	if r.StartDate != "" {
		if t, err := time.Parse(dateLayout, r.StartDate); err == nil {
			start = t
		}
	}
	if r.EndDate != "" {
		if t, err := time.Parse(dateLayout, r.EndDate); err == nil {
			end = t.Add(24*time.Hour - time.Second)
		}
	}
	return start, end
}

func limitOr(n, def int) int {
	if n <= 0 || n > 50 {
		return def
	}
	return n
}

func (s *DashboardService) GetStats(ctx context.Context, req *DashboardStatsRequest) (*DashboardResponse, error) {
	start, end := req.window(time.Now().UTC())
	db := s.db.WithContext(ctx)

	var stats DashboardStats
	if err := db.Model(&models.Client{}).Count(&stats.Clients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Consultant{}).Count(&stats.Consultants).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Project{}).Count(&stats.Projects).Error; err != nil {
		return nil, err
	}
	db.Model(&models.Project{}).
		Where("status = ?", models.ProjectStatusActive).
		Count(&stats.ActiveProjects)
	db.Model(&models.HoursLog{}).
		Where("date BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&stats.HoursLogged)

	projectStats := []ProjectStats{}
	db.Model(&models.HoursLog{}).
		Select("project_id, COALESCE(SUM(hours), 0) as hours").
		Where("date BETWEEN ? AND ?", start, end).
		Group("project_id").
		Order("hours DESC").
		Limit(limitOr(req.ProjectLimit, 10)).
		Scan(&projectStats)

	for i := range projectStats {
		p := &projectStats[i]
		var project models.Project
		if err := db.Select("name").First(&project, "id = ?", p.ProjectID).Error; err == nil {
			p.ProjectName = project.Name
		}
		p.Consultants = len(s.assignments.ConsultantsForProject(ctx, p.ProjectID))
		p.Clients = len(s.assignments.ClientsForProject(ctx, p.ProjectID))
	}

	consultantStats := []ConsultantStats{}
	db.Model(&models.HoursLog{}).
		Select("consultant_id, COALESCE(SUM(hours), 0) as hours").
		Where("date BETWEEN ? AND ?", start, end).
		Group("consultant_id").
		Order("hours DESC").
		Limit(limitOr(req.ConsultantLimit, 10)).
		Scan(&consultantStats)

	for i := range consultantStats {
		c := &consultantStats[i]
		var consultant models.Consultant
		if err := db.Select("name").First(&consultant, "id = ?", c.ConsultantID).Error; err == nil {
			c.ConsultantName = consultant.Name
		}
		c.Clients = len(s.assignments.ClientsForConsultant(ctx, c.ConsultantID))
	}

	return &DashboardResponse{
		Stats:           stats,
		Relations:       s.assignments.Counts(ctx),
		ProjectStats:    projectStats,
		ConsultantStats: consultantStats,
	}, nil
}
