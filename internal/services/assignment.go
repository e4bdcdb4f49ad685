package services

import (
	"context"
	"errors"

	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/internal/store"
	"github.com/estatedesk/portal/pkg/logger"
)

// AssignmentService applies the assignment rules on top of the relation store.
//
// Assigning a consultant to a project links the consultant to every client
// already on the project, and assigning a client links it to every consultant
// already there. Propagation is one level deep and only runs when the
// top-level edge is new. Removal never cascades; only entity deletion does.
type AssignmentService struct {
	store *store.Store
	bus   *events.Bus
}

func NewAssignmentService(st *store.Store, bus *events.Bus) *AssignmentService {
	return &AssignmentService{store: st, bus: bus}
}

// Link is one client-consultant pair written by propagation.
type Link struct {
	ClientID     models.ClientID     `json:"client_id"`
	ConsultantID models.ConsultantID `json:"consultant_id"`
}

type AssignResult struct {
	Created bool   `json:"created"`
	Derived []Link `json:"derived"`
}

type SetupResult struct {
	ConsultantsAdded int `json:"consultants_added"`
	ClientsAdded     int `json:"clients_added"`
	LinksAdded       int `json:"links_added"`
}

type RelationCounts struct {
	ProjectConsultants int `json:"project_consultants"`
	ProjectClients     int `json:"project_clients"`
	ClientConsultants  int `json:"client_consultants"`
}

// AssignConsultantToProject links c to p and, when the edge is new, c to
// every client already on p. When a derived write fails the remaining links
// are still attempted; the result reports what was written and the first
// error is returned alongside it.
func (s *AssignmentService) AssignConsultantToProject(ctx context.Context, p models.ProjectID, c models.ConsultantID) (*AssignResult, error) {
	return s.assignConsultantToProject(ctx, p, c, true)
}

// AssignClientToProject links x to p and, when the edge is new, x to every
// consultant already on p.
func (s *AssignmentService) AssignClientToProject(ctx context.Context, p models.ProjectID, x models.ClientID) (*AssignResult, error) {
	return s.assignClientToProject(ctx, p, x, true)
}

// AssignConsultantToClient writes the client-consultant edge. It never
// propagates. With notify false the write is silent so bulk callers can emit
// a single event at the end.
func (s *AssignmentService) AssignConsultantToClient(ctx context.Context, x models.ClientID, c models.ConsultantID, notify bool) (bool, error) {
	set := s.store.ClientConsultants
	if !notify {
		set = set.Quiet()
	}
	return set.Add(ctx, x, c)
}

func (s *AssignmentService) assignConsultantToProject(ctx context.Context, p models.ProjectID, c models.ConsultantID, autoSync bool) (*AssignResult, error) {
	set := s.store.ProjectConsultants
	if !autoSync {
		set = set.Quiet()
	}
	created, err := set.Add(ctx, p, c)
	if err != nil {
		return nil, err
	}

	result := &AssignResult{Created: created, Derived: []Link{}}
	if !created || !autoSync {
		return result, nil
	}

	var firstErr error
	for _, x := range s.store.ProjectClients.BByA(ctx, p) {
		added, err := s.AssignConsultantToClient(ctx, x, c, true)
		if err != nil {
			logger.Warn().Err(err).
				Str("project_id", string(p)).
				Str("client_id", string(x)).
				Str("consultant_id", string(c)).
				Msg("derived client-consultant link failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if added {
			result.Derived = append(result.Derived, Link{ClientID: x, ConsultantID: c})
		}
	}
	return result, firstErr
}

func (s *AssignmentService) assignClientToProject(ctx context.Context, p models.ProjectID, x models.ClientID, autoSync bool) (*AssignResult, error) {
	set := s.store.ProjectClients
	if !autoSync {
		set = set.Quiet()
	}
	created, err := set.Add(ctx, p, x)
	if err != nil {
		return nil, err
	}

	result := &AssignResult{Created: created, Derived: []Link{}}
	if !created || !autoSync {
		return result, nil
	}

	var firstErr error
	for _, c := range s.store.ProjectConsultants.BByA(ctx, p) {
		added, err := s.AssignConsultantToClient(ctx, x, c, true)
		if err != nil {
			logger.Warn().Err(err).
				Str("project_id", string(p)).
				Str("client_id", string(x)).
				Str("consultant_id", string(c)).
				Msg("derived client-consultant link failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if added {
			result.Derived = append(result.Derived, Link{ClientID: x, ConsultantID: c})
		}
	}
	return result, firstErr
}

// SetupProjectAssignments puts every consultant and client on p and links
// every listed client to every listed consultant. All writes are silent and a
// single refresh-all is emitted at the end, even when some writes failed.
func (s *AssignmentService) SetupProjectAssignments(ctx context.Context, p models.ProjectID, consultants []models.ConsultantID, clients []models.ClientID) (*SetupResult, error) {
	result := &SetupResult{}
	var errs []error

	for _, c := range consultants {
		r, err := s.assignConsultantToProject(ctx, p, c, false)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if r.Created {
			result.ConsultantsAdded++
		}
	}
	for _, x := range clients {
		r, err := s.assignClientToProject(ctx, p, x, false)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if r.Created {
			result.ClientsAdded++
		}
	}
	for _, x := range clients {
		for _, c := range consultants {
			added, err := s.AssignConsultantToClient(ctx, x, c, false)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if added {
				result.LinksAdded++
			}
		}
	}

	s.bus.Notify(events.RefreshAll, events.Change{
		Action: "setup",
		IDA:    string(p),
		Count:  result.ConsultantsAdded + result.ClientsAdded + result.LinksAdded,
	})

	if len(errs) > 0 {
		logger.Error().Err(errs[0]).
			Str("project_id", string(p)).
			Int("failed_writes", len(errs)).
			Msg("project setup incomplete")
		return result, errors.Join(errs...)
	}
	return result, nil
}

// RemoveConsultantFromProject deletes only (p, c). Client-consultant links it
// derived stay in place.
func (s *AssignmentService) RemoveConsultantFromProject(ctx context.Context, p models.ProjectID, c models.ConsultantID) (bool, error) {
	return s.store.ProjectConsultants.Remove(ctx, p, c)
}

// RemoveClientFromProject deletes only (p, x).
func (s *AssignmentService) RemoveClientFromProject(ctx context.Context, p models.ProjectID, x models.ClientID) (bool, error) {
	return s.store.ProjectClients.Remove(ctx, p, x)
}

func (s *AssignmentService) RemoveConsultantFromClient(ctx context.Context, x models.ClientID, c models.ConsultantID) (bool, error) {
	return s.store.ClientConsultants.Remove(ctx, x, c)
}

// CleanupProjectAssignments removes every edge mentioning p. It is safe to
// call for projects that no longer exist or were already cleaned.
func (s *AssignmentService) CleanupProjectAssignments(ctx context.Context, p models.ProjectID) (int, error) {
	n1, err1 := s.store.ProjectConsultants.Quiet().RemoveMatching(ctx, func(e store.ProjectConsultantEdge) bool { return e.A == p })
	n2, err2 := s.store.ProjectClients.Quiet().RemoveMatching(ctx, func(e store.ProjectClientEdge) bool { return e.A == p })
	return s.finishCleanup("project", string(p), n1+n2, err1, err2)
}

func (s *AssignmentService) CleanupConsultantAssignments(ctx context.Context, c models.ConsultantID) (int, error) {
	n1, err1 := s.store.ProjectConsultants.Quiet().RemoveMatching(ctx, func(e store.ProjectConsultantEdge) bool { return e.B == c })
	n2, err2 := s.store.ClientConsultants.Quiet().RemoveMatching(ctx, func(e store.ClientConsultantEdge) bool { return e.B == c })
	return s.finishCleanup("consultant", string(c), n1+n2, err1, err2)
}

func (s *AssignmentService) CleanupClientAssignments(ctx context.Context, x models.ClientID) (int, error) {
	n1, err1 := s.store.ProjectClients.Quiet().RemoveMatching(ctx, func(e store.ProjectClientEdge) bool { return e.B == x })
	n2, err2 := s.store.ClientConsultants.Quiet().RemoveMatching(ctx, func(e store.ClientConsultantEdge) bool { return e.A == x })
	return s.finishCleanup("client", string(x), n1+n2, err1, err2)
}

func (s *AssignmentService) finishCleanup(entity, id string, removed int, errs ...error) (int, error) {
	s.bus.Notify(events.RefreshAll, events.Change{Action: "cleanup", IDA: id, Count: removed})

	for _, err := range errs {
		if err != nil {
			logger.Error().Err(err).Str("entity", entity).Str("id", id).Msg("assignment cleanup incomplete")
			return removed, err
		}
	}
	logger.Info().Str("entity", entity).Str("id", id).Int("removed", removed).Msg("assignments cleaned up")
	return removed, nil
}

func (s *AssignmentService) ConsultantsForProject(ctx context.Context, p models.ProjectID) []models.ConsultantID {
	return s.store.ProjectConsultants.BByA(ctx, p)
}

func (s *AssignmentService) ClientsForProject(ctx context.Context, p models.ProjectID) []models.ClientID {
	return s.store.ProjectClients.BByA(ctx, p)
}

func (s *AssignmentService) ProjectsForConsultant(ctx context.Context, c models.ConsultantID) []models.ProjectID {
	return s.store.ProjectConsultants.AByB(ctx, c)
}

func (s *AssignmentService) ProjectsForClient(ctx context.Context, x models.ClientID) []models.ProjectID {
	return s.store.ProjectClients.AByB(ctx, x)
}

func (s *AssignmentService) ConsultantsForClient(ctx context.Context, x models.ClientID) []models.ConsultantID {
	return s.store.ClientConsultants.BByA(ctx, x)
}

func (s *AssignmentService) ClientsForConsultant(ctx context.Context, c models.ConsultantID) []models.ClientID {
	return s.store.ClientConsultants.AByB(ctx, c)
}

func (s *AssignmentService) AvailableConsultantsForProject(ctx context.Context, p models.ProjectID, all []models.ConsultantID) []models.ConsultantID {
	return s.store.ProjectConsultants.AvailableBByA(ctx, p, all)
}

func (s *AssignmentService) AvailableClientsForProject(ctx context.Context, p models.ProjectID, all []models.ClientID) []models.ClientID {
	return s.store.ProjectClients.AvailableBByA(ctx, p, all)
}

func (s *AssignmentService) AvailableConsultantsForClient(ctx context.Context, x models.ClientID, all []models.ConsultantID) []models.ConsultantID {
	return s.store.ClientConsultants.AvailableBByA(ctx, x, all)
}

// ClientConsultantEdges returns the full client-consultant relation.
func (s *AssignmentService) ClientConsultantEdges(ctx context.Context) []store.ClientConsultantEdge {
	return s.store.ClientConsultants.All(ctx)
}

func (s *AssignmentService) Counts(ctx context.Context) RelationCounts {
	return RelationCounts{
		ProjectConsultants: len(s.store.ProjectConsultants.All(ctx)),
		ProjectClients:     len(s.store.ProjectClients.All(ctx)),
		ClientConsultants:  len(s.store.ClientConsultants.All(ctx)),
	}
}
