package services

import (
	"context"
	"testing"

	"github.com/estatedesk/portal/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestConsultantDelete_CascadesAsOneUnit(t *testing.T) {
	h := newHarness(t)
	db := newTestDB(t)
	ctx := context.Background()
	consultants := NewConsultantService(db, h.svc)
	hours := NewHoursLogService(db)

	c, err := consultants.Create(ctx, &CreateConsultantRequest{Name: "Dana"})
	require.NoError(t, err)
	other, err := consultants.Create(ctx, &CreateConsultantRequest{Name: "Eli"})
	require.NoError(t, err)

	_, _ = h.svc.AssignClientToProject(ctx, "P", "X")
	_, _ = h.svc.AssignConsultantToProject(ctx, "P", c.ID)
	_, _ = h.svc.AssignConsultantToProject(ctx, "P", other.ID)
	for _, id := range []models.ConsultantID{c.ID, c.ID, other.ID} {
		_, err := hours.Create(ctx, &CreateHoursLogRequest{
			ConsultantID: string(id), ProjectID: "P", Date: "2026-02-10", Hours: 2.5,
		})
		require.NoError(t, err)
	}

	require.NoError(t, consultants.Delete(ctx, c.ID))

	assert.False(t, h.store.ProjectConsultants.Has(ctx, "P", c.ID))
	assert.False(t, h.store.ClientConsultants.Has(ctx, "X", c.ID))
	assert.True(t, h.store.ProjectClients.Has(ctx, "P", "X"), "project-client edge untouched")
	assert.True(t, h.store.ClientConsultants.Has(ctx, "X", other.ID))

	logs, err := hours.List(ctx, &HoursLogFilter{ConsultantID: string(c.ID)})
	require.NoError(t, err)
	assert.Empty(t, logs)
	logs, err = hours.List(ctx, &HoursLogFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = consultants.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var withDeleted models.Consultant
	require.NoError(t, db.Unscoped().Where("id = ?", c.ID).First(&withDeleted).Error, "row stays in history")
}

func TestConsultantDelete_MissingStillCleansEdges(t *testing.T) {
	h := newHarness(t)
	db := newTestDB(t)
	ctx := context.Background()
	consultants := NewConsultantService(db, h.svc)

	_, _ = h.svc.AssignConsultantToClient(ctx, "X", "ghost", true)

	err := consultants.Delete(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, h.store.ClientConsultants.All(ctx))
}

func TestClientDelete_CleansAssignments(t *testing.T) {
	h := newHarness(t)
	db := newTestDB(t)
	ctx := context.Background()
	clients := NewClientService(db, h.svc)

	x, err := clients.Create(ctx, &CreateClientRequest{Name: "Avery", Classification: models.ClassificationInvestor})
	require.NoError(t, err)
	assert.Equal(t, models.ClientStatusNewLead, x.Status)

	_, _ = h.svc.SetupProjectAssignments(ctx, "P", []models.ConsultantID{"C"}, []models.ClientID{x.ID})

	require.NoError(t, clients.Delete(ctx, x.ID))
	assert.Empty(t, h.store.ProjectClients.All(ctx))
	assert.Empty(t, h.store.ClientConsultants.All(ctx))
	assert.Len(t, h.store.ProjectConsultants.All(ctx), 1)

	assert.ErrorIs(t, clients.Delete(ctx, x.ID), ErrNotFound)
}

func TestProjectDelete_KeepsHoursLogs(t *testing.T) {
	h := newHarness(t)
	db := newTestDB(t)
	ctx := context.Background()
	projects := NewProjectService(db, h.svc)
	hours := NewHoursLogService(db)

	p, err := projects.Create(ctx, &CreateProjectRequest{Name: "Harbor Lofts", StartDate: "2026-01-01", EndDate: "2026-06-30", Budget: 1200})
	require.NoError(t, err)
	_, _ = h.svc.SetupProjectAssignments(ctx, p.ID, []models.ConsultantID{"C"}, []models.ClientID{"X"})
	_, err = hours.Create(ctx, &CreateHoursLogRequest{ConsultantID: "C", ProjectID: string(p.ID), Date: "2026-02-01", Hours: 4})
	require.NoError(t, err)

	require.NoError(t, projects.Delete(ctx, p.ID))
	assert.Empty(t, h.store.ProjectConsultants.All(ctx))
	assert.Empty(t, h.store.ProjectClients.All(ctx))
	assert.Len(t, h.store.ClientConsultants.All(ctx), 1)

	logs, err := hours.List(ctx, &HoursLogFilter{ProjectID: string(p.ID)})
	require.NoError(t, err)
	assert.Len(t, logs, 1, "hours on a deleted project are kept")
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	db := newTestDB(t)
	ctx := context.Background()

	_, err := NewClientService(db, h.svc).Create(ctx, &CreateClientRequest{Name: "A", Status: "vip"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewConsultantService(db, h.svc).Create(ctx, &CreateConsultantRequest{Name: "B", Status: "retired"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	projects := NewProjectService(db, h.svc)
	_, err = projects.Create(ctx, &CreateProjectRequest{Name: "C", StartDate: "2026-05-01", EndDate: "2026-04-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = projects.Create(ctx, &CreateProjectRequest{Name: "C", StartDate: "05/01/2026"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	hours := NewHoursLogService(db)
	_, err = hours.Create(ctx, &CreateHoursLogRequest{ConsultantID: "c", ProjectID: "p", Date: "2026-01-01", Hours: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = hours.Create(ctx, &CreateHoursLogRequest{ConsultantID: " ", ProjectID: "p", Date: "2026-01-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClientListAndUpdate(t *testing.T) {
	h := newHarness(t)
	db := newTestDB(t)
	ctx := context.Background()
	clients := NewClientService(db, h.svc)

	for _, name := range []string{"Harper", "Hayden", "Quinn"} {
		_, err := clients.Create(ctx, &CreateClientRequest{Name: name})
		require.NoError(t, err)
	}

	list, err := clients.List(ctx, &ListRequest{Name: "Ha"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 10, list.PageSize)

	x := list.Items[0]
	updated, err := clients.Update(ctx, x.ID, &UpdateClientRequest{Status: models.ClientStatusContacted})
	require.NoError(t, err)
	assert.Equal(t, models.ClientStatusContacted, updated.Status)
	assert.Equal(t, x.Name, updated.Name)

	_, err = clients.Update(ctx, "missing", &UpdateClientRequest{Name: "Z"})
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := clients.IDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestHoursSummary(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	hours := NewHoursLogService(db)

	for _, req := range []CreateHoursLogRequest{
		{ConsultantID: "C", ProjectID: "P1", Date: "2026-03-01", Hours: 2},
		{ConsultantID: "C", ProjectID: "P1", Date: "2026-03-02", Hours: 3.5},
		{ConsultantID: "C", ProjectID: "P2", Date: "2026-03-02", Hours: 1},
		{ConsultantID: "D", ProjectID: "P1", Date: "2026-03-02", Hours: 8},
	} {
		req := req
		_, err := hours.Create(ctx, &req)
		require.NoError(t, err)
	}

	summary, err := hours.Summary(ctx, &HoursLogFilter{ConsultantID: "C"})
	require.NoError(t, err)
	assert.Equal(t, []ProjectHours{
		{ProjectID: "P1", Hours: 5.5, Entries: 2},
		{ProjectID: "P2", Hours: 1, Entries: 1},
	}, summary)

	logs, err := hours.List(ctx, &HoursLogFilter{From: "2026-03-02", To: "2026-03-02"})
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}
