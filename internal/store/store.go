// Package store holds the three assignment relations (project-consultant,
// project-client, client-consultant) as durable, wholesale-written edge sets.
//
// Every mutating call persists before it returns and fires one event on the
// bus after the write lock is released, so a listener that re-reads a set
// always sees the state that was just written. Storage failures are logged and
// returned; the previously saved document stays in effect.
package store

import (
	"time"

	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/internal/models"
)

// Document keys in the KV store.
const (
	KeyProjectConsultants = "relations.project_consultant"
	KeyProjectClients     = "relations.project_client"
	KeyClientConsultants  = "relations.client_consultant"
)

type (
	ProjectConsultantEdge = Edge[models.ProjectID, models.ConsultantID]
	ProjectClientEdge     = Edge[models.ProjectID, models.ClientID]
	ClientConsultantEdge  = Edge[models.ClientID, models.ConsultantID]
)

// Store groups the relation sets. Build it once per process and share it.
type Store struct {
	ProjectConsultants *Set[models.ProjectID, models.ConsultantID]
	ProjectClients     *Set[models.ProjectID, models.ClientID]
	ClientConsultants  *Set[models.ClientID, models.ConsultantID]
}

type options struct {
	now func() time.Time
}

// Option customizes a Store.
type Option func(*options)

// WithClock overrides the timestamp source for new edges.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New(kv KV, bus *events.Bus, opts ...Option) *Store {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		ProjectConsultants: newSet[models.ProjectID, models.ConsultantID](events.ProjectConsultant, KeyProjectConsultants, kv, bus, o.now),
		ProjectClients:     newSet[models.ProjectID, models.ClientID](events.ProjectClient, KeyProjectClients, kv, bus, o.now),
		ClientConsultants:  newSet[models.ClientID, models.ConsultantID](events.ClientConsultant, KeyClientConsultants, kv, bus, o.now),
	}
}
