package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/estatedesk/portal/internal/config"
	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/internal/store"
	"github.com/estatedesk/portal/pkg/logger"
)

const (
	MergeScopeClient = config.MergeScopeClient
	MergeScopePair   = config.MergeScopePair

	maxRemoteBody = 8 << 20
)

// RemoteAssignment is one row of the remote client-consultant list. The same
// shape is served by GET /api/assignments/client-consultant.
type RemoteAssignment struct {
	ClientID     string `json:"clientId"`
	ConsultantID string `json:"consultantId"`
	CreatedAt    string `json:"createdAt"`
}

type remotePayload struct {
	Data *[]RemoteAssignment `json:"data"`
}

type SyncResult struct {
	Remote   int       `json:"remote"`
	Kept     int       `json:"kept"`
	Dropped  int       `json:"dropped"` // local edges superseded by the remote list
	Total    int       `json:"total"`
	SyncedAt time.Time `json:"synced_at"`
}

// Reconciler merges the remote client-consultant list into the local set.
// A failed fetch leaves local state untouched.
type Reconciler struct {
	set    *store.Set[models.ClientID, models.ConsultantID]
	cfg    config.RemoteConfig
	client *http.Client
	now    func() time.Time
}

func NewReconciler(st *store.Store, cfg config.RemoteConfig) *Reconciler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MergeScope == "" {
		cfg.MergeScope = MergeScopeClient
	}
	return &Reconciler{
		set:    st.ClientConsultants,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
	}
}

// Enabled reports whether a remote endpoint is configured.
func (r *Reconciler) Enabled() bool {
	return r.cfg.AssignmentsURL != ""
}

// SyncClientConsultants fetches the remote list and saves the merge with one
// write. Remote rows win; local edges survive per the configured merge scope.
func (r *Reconciler) SyncClientConsultants(ctx context.Context) (*SyncResult, error) {
	if !r.Enabled() {
		return nil, ErrReconcileDisabled
	}

	syncedAt := r.now()
	rows, err := r.fetch(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("url", r.cfg.AssignmentsURL).Msg("remote assignment fetch failed, keeping local state")
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	remote := make([]store.ClientConsultantEdge, 0, len(rows))
	for _, row := range rows {
		x, errX := models.ParseClientID(row.ClientID)
		c, errC := models.ParseConsultantID(row.ConsultantID)
		if errX != nil || errC != nil {
			logger.Debug().Str("client_id", row.ClientID).Str("consultant_id", row.ConsultantID).Msg("skipping remote row with blank id")
			continue
		}
		createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
		if err != nil {
			createdAt = syncedAt
		}
		remote = append(remote, store.ClientConsultantEdge{A: x, B: c, CreatedAt: createdAt})
	}

	local, err := r.set.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("local assignments unreadable, sync aborted")
		return nil, fmt.Errorf("loading local assignments: %w", err)
	}
	merged, kept := mergeClientConsultants(remote, local, r.cfg.MergeScope)
	if err := r.set.Save(ctx, merged); err != nil {
		return nil, fmt.Errorf("saving reconciled assignments: %w", err)
	}

	result := &SyncResult{
		Remote:   len(merged) - kept,
		Kept:     kept,
		Dropped:  len(local) - kept,
		Total:    len(merged),
		SyncedAt: syncedAt,
	}
	logger.Info().
		Int("remote", result.Remote).
		Int("kept", result.Kept).
		Int("total", result.Total).
		Msg("client-consultant assignments reconciled")
	return result, nil
}

func (r *Reconciler) fetch(ctx context.Context) ([]RemoteAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.AssignmentsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if !isJSON(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	var payload remotePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteBody)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("response has no data field")
	}
	return *payload.Data, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// mergeClientConsultants returns the remote edges (first occurrence of a pair
// wins) followed by the local edges the remote list does not override, and
// how many local edges were kept.
func mergeClientConsultants(remote, local []store.ClientConsultantEdge, scope string) ([]store.ClientConsultantEdge, int) {
	type pair struct {
		x models.ClientID
		c models.ConsultantID
	}

	seen := make(map[pair]bool, len(remote))
	clients := make(map[models.ClientID]bool)
	merged := make([]store.ClientConsultantEdge, 0, len(remote)+len(local))
	for _, e := range remote {
		k := pair{e.A, e.B}
		if seen[k] {
			continue
		}
		seen[k] = true
		clients[e.A] = true
		merged = append(merged, e)
	}

	kept := 0
	for _, e := range local {
		k := pair{e.A, e.B}
		if seen[k] {
			continue
		}
		if scope == MergeScopeClient && clients[e.A] {
			continue
		}
		seen[k] = true
		merged = append(merged, e)
		kept++
	}
	return merged, kept
}
