package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/internal/store"
	"github.com/estatedesk/portal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetOutput(io.Discard)
}

type harness struct {
	kv     *store.MemoryKV
	bus    *events.Bus
	store  *store.Store
	svc    *AssignmentService
	events []events.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{kv: store.NewMemoryKV(), bus: events.NewBus()}
	h.store = store.New(h.kv, h.bus)
	h.svc = NewAssignmentService(h.store, h.bus)
	h.bus.Subscribe(func(ev events.Event) { h.events = append(h.events, ev) })
	return h
}

func (h *harness) count(t events.Type) int {
	n := 0
	for _, ev := range h.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func pairs[A, B ~string](edges []store.Edge[A, B]) [][2]string {
	out := make([][2]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, [2]string{string(e.A), string(e.B)})
	}
	return out
}

func TestAssignConsultantToProject_PropagatesToExistingClients(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.AssignClientToProject(ctx, "P", "X")
	require.NoError(t, err)

	res, err := h.svc.AssignConsultantToProject(ctx, "P", "C")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, []Link{{ClientID: "X", ConsultantID: "C"}}, res.Derived)

	assert.Equal(t, [][2]string{{"X", "C"}}, pairs(h.store.ClientConsultants.All(ctx)))
	assert.Equal(t, [][2]string{{"P", "X"}}, pairs(h.store.ProjectClients.All(ctx)), "no new project-client edges")
	assert.Equal(t, [][2]string{{"P", "C"}}, pairs(h.store.ProjectConsultants.All(ctx)))
}

func TestAssignClientToProject_PropagatesToExistingConsultants(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _ = h.svc.AssignConsultantToProject(ctx, "P", "C1")
	_, _ = h.svc.AssignConsultantToProject(ctx, "P", "C2")

	res, err := h.svc.AssignClientToProject(ctx, "P", "X")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Len(t, res.Derived, 2)
	assert.ElementsMatch(t, [][2]string{{"X", "C1"}, {"X", "C2"}}, pairs(h.store.ClientConsultants.All(ctx)))
}

func TestAssignConsultantToProject_Idempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.svc.AssignClientToProject(ctx, "P", "X")

	_, err := h.svc.AssignConsultantToProject(ctx, "P", "C")
	require.NoError(t, err)
	pcBefore := h.store.ProjectConsultants.All(ctx)
	ccBefore := h.store.ClientConsultants.All(ctx)
	eventsBefore := len(h.events)

	res, err := h.svc.AssignConsultantToProject(ctx, "P", "C")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Empty(t, res.Derived)
	assert.Equal(t, pcBefore, h.store.ProjectConsultants.All(ctx))
	assert.Equal(t, ccBefore, h.store.ClientConsultants.All(ctx))
	assert.Equal(t, eventsBefore, len(h.events))
}

func TestAssignConsultantToProject_NoPropagationWhenEdgeExists(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// the client joins after the consultant, then its derived link is removed
	_, _ = h.svc.AssignConsultantToProject(ctx, "P", "C")
	_, _ = h.svc.AssignClientToProject(ctx, "P", "X")
	_, _ = h.svc.RemoveConsultantFromClient(ctx, "X", "C")

	res, err := h.svc.AssignConsultantToProject(ctx, "P", "C")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.False(t, h.store.ClientConsultants.Has(ctx, "X", "C"), "no-op assignment must not re-derive links")
}

func TestAssignConsultantToClient_NeverPropagates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	added, err := h.svc.AssignConsultantToClient(ctx, "X", "C", true)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Empty(t, h.store.ProjectConsultants.All(ctx))
	assert.Empty(t, h.store.ProjectClients.All(ctx))
	assert.Equal(t, 1, h.count(events.ClientConsultant))

	added, err = h.svc.AssignConsultantToClient(ctx, "X", "C2", false)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, h.count(events.ClientConsultant), "quiet assignment must not notify")
}

func TestRemoveConsultantFromProject_KeepsDerivedLinks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.svc.AssignClientToProject(ctx, "P", "X")
	_, _ = h.svc.AssignConsultantToProject(ctx, "P", "C")

	removed, err := h.svc.RemoveConsultantFromProject(ctx, "P", "C")
	require.NoError(t, err)
	assert.True(t, removed)

	assert.Empty(t, h.store.ProjectConsultants.All(ctx))
	assert.True(t, h.store.ClientConsultants.Has(ctx, "X", "C"))
	assert.True(t, h.store.ProjectClients.Has(ctx, "P", "X"))

	removed, err = h.svc.RemoveConsultantFromProject(ctx, "P", "C")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveClientFromProject_KeepsDerivedLinks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.svc.AssignConsultantToProject(ctx, "P", "C")
	_, _ = h.svc.AssignClientToProject(ctx, "P", "X")

	removed, err := h.svc.RemoveClientFromProject(ctx, "P", "X")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.True(t, h.store.ClientConsultants.Has(ctx, "X", "C"))
}

func TestSetupProjectAssignments_FullMesh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.SetupProjectAssignments(ctx, "P",
		[]models.ConsultantID{"C1", "C2"},
		[]models.ClientID{"X1", "X2"},
	)
	require.NoError(t, err)
	assert.Equal(t, &SetupResult{ConsultantsAdded: 2, ClientsAdded: 2, LinksAdded: 4}, res)

	assert.Equal(t, [][2]string{{"P", "C1"}, {"P", "C2"}}, pairs(h.store.ProjectConsultants.All(ctx)))
	assert.Equal(t, [][2]string{{"P", "X1"}, {"P", "X2"}}, pairs(h.store.ProjectClients.All(ctx)))
	assert.ElementsMatch(t,
		[][2]string{{"X1", "C1"}, {"X1", "C2"}, {"X2", "C1"}, {"X2", "C2"}},
		pairs(h.store.ClientConsultants.All(ctx)),
	)

	require.Len(t, h.events, 1, "setup emits exactly one event")
	assert.Equal(t, events.RefreshAll, h.events[0].Type)
}

func TestSetupProjectAssignments_RerunAddsNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cs := []models.ConsultantID{"C1"}
	xs := []models.ClientID{"X1"}

	_, err := h.svc.SetupProjectAssignments(ctx, "P", cs, xs)
	require.NoError(t, err)
	res, err := h.svc.SetupProjectAssignments(ctx, "P", cs, xs)
	require.NoError(t, err)

	assert.Equal(t, &SetupResult{}, res)
	assert.Len(t, h.store.ClientConsultants.All(ctx), 1)
	assert.Equal(t, 2, h.count(events.RefreshAll))
}

func TestSetupProjectAssignments_StorageFailureStillRefreshesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.kv.FailPuts(errors.New("disk full"))

	res, err := h.svc.SetupProjectAssignments(ctx, "P", []models.ConsultantID{"C1"}, []models.ClientID{"X1"})
	require.Error(t, err)
	assert.Equal(t, &SetupResult{}, res)
	assert.Equal(t, 1, h.count(events.RefreshAll))
	assert.Len(t, h.events, 1)
}

func TestAssign_StorageFailureReported(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.kv.FailPuts(errors.New("quota exceeded"))

	res, err := h.svc.AssignConsultantToProject(ctx, "P", "C")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Empty(t, h.store.ProjectConsultants.All(ctx))
	assert.Empty(t, h.events)
}

func TestCleanupConsultantAssignments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.svc.AssignClientToProject(ctx, "P", "X")
	_, _ = h.svc.AssignConsultantToProject(ctx, "P", "C")
	_, _ = h.svc.AssignConsultantToProject(ctx, "P", "C2")
	h.events = nil

	n, err := h.svc.CleanupConsultantAssignments(ctx, "C")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, [][2]string{{"P", "C2"}}, pairs(h.store.ProjectConsultants.All(ctx)))
	assert.Equal(t, [][2]string{{"X", "C2"}}, pairs(h.store.ClientConsultants.All(ctx)))
	assert.Equal(t, [][2]string{{"P", "X"}}, pairs(h.store.ProjectClients.All(ctx)))
	require.Len(t, h.events, 1)
	assert.Equal(t, events.RefreshAll, h.events[0].Type)

	n, err = h.svc.CleanupConsultantAssignments(ctx, "C")
	require.NoError(t, err)
	assert.Zero(t, n, "second cleanup is a no-op")
}

func TestCleanupClientAndProjectAssignments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.svc.SetupProjectAssignments(ctx, "P", []models.ConsultantID{"C"}, []models.ClientID{"X", "Y"})
	_, _ = h.svc.AssignClientToProject(ctx, "Q", "X")

	n, err := h.svc.CleanupClientAssignments(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []models.ClientID{"Y"}, h.svc.ClientsForProject(ctx, "P"))
	assert.Empty(t, h.svc.ConsultantsForClient(ctx, "X"))

	n, err = h.svc.CleanupProjectAssignments(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, h.store.ProjectConsultants.All(ctx))
	assert.Empty(t, h.store.ProjectClients.All(ctx))
	assert.Equal(t, [][2]string{{"Y", "C"}}, pairs(h.store.ClientConsultants.All(ctx)))
}

func TestQueries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.svc.SetupProjectAssignments(ctx, "P", []models.ConsultantID{"C1"}, []models.ClientID{"X1"})

	assert.Equal(t, []models.ProjectID{"P"}, h.svc.ProjectsForConsultant(ctx, "C1"))
	assert.Equal(t, []models.ProjectID{"P"}, h.svc.ProjectsForClient(ctx, "X1"))
	assert.Equal(t, []models.ClientID{"X1"}, h.svc.ClientsForConsultant(ctx, "C1"))
	assert.Equal(t, []models.ConsultantID{"C2"},
		h.svc.AvailableConsultantsForProject(ctx, "P", []models.ConsultantID{"C1", "C2"}))
	assert.Equal(t, []models.ClientID{"X2"},
		h.svc.AvailableClientsForProject(ctx, "P", []models.ClientID{"X1", "X2"}))
	assert.Equal(t, []models.ConsultantID{"C2"},
		h.svc.AvailableConsultantsForClient(ctx, "X1", []models.ConsultantID{"C1", "C2"}))
	assert.Equal(t, RelationCounts{ProjectConsultants: 1, ProjectClients: 1, ClientConsultants: 1}, h.svc.Counts(ctx))
}
