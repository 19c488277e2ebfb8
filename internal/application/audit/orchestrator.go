// Package audit keeps the client-side projection of a security audit that
// runs on the server: which category scans exist, where each one is in its
// lifecycle and how many findings of each severity were reported.
package audit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

// ErrNoAudit is returned by Refresh when no audit has been started.
var ErrNoAudit = errors.New("no security audit has been started")

// Orchestrator starts audits and merges the status reported by the server
// into a State that only ever moves forward.
type Orchestrator struct {
	api    repository.AuditRepository
	store  repository.AuditStateRepository
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	state entity.AuditState
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an idle orchestrator. store may be nil, in which
// case nothing is persisted.
func NewOrchestrator(api repository.AuditRepository, store repository.AuditStateRepository, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:    api,
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
		state:  entity.IdleAuditState(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Restore loads the persisted state, if any.
func (o *Orchestrator) Restore() error {
	if o.store == nil {
		return nil
	}
	saved, err := o.store.Load()
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if saved == nil {
		o.state = entity.IdleAuditState()
		return nil
	}
	o.state = saved.Clone()
	return nil
}

// Snapshot returns a deep copy of the current state.
func (o *Orchestrator) Snapshot() entity.AuditState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state.Clone()
}

// StartAudit clears previous results and asks the server to audit rawURL.
// Every scan the server reports is seeded with its reported status.
func (o *Orchestrator) StartAudit(ctx context.Context, rawURL string) (entity.AuditState, error) {
	target, err := entity.NormalizeTargetURL(rawURL)
	if err != nil {
		return entity.AuditState{}, apperrors.New(apperrors.TypeValidation, err, "%v", err)
	}

	if err := o.ClearResults(); err != nil {
		return entity.AuditState{}, err
	}

	resp, err := o.api.StartAudit(ctx, target)
	if err != nil {
		return entity.AuditState{}, fmt.Errorf("failed to start audit: %w", err)
	}
	if resp.AuditID == "" {
		return entity.AuditState{}, apperrors.New(apperrors.TypeServer, nil, "start audit response did not include an audit id")
	}

	o.mu.Lock()
	started := o.now()
	o.state = entity.AuditState{
		AuditID:   resp.AuditID,
		URL:       target,
		Status:    entity.AuditRunning,
		Scans:     map[string][]entity.Scan{},
		StartedAt: &started,
	}
	o.apply(resp)
	snapshot := o.state.Clone()
	o.mu.Unlock()

	o.persist(snapshot)
	o.logger.Info("security audit started", zap.String("audit_id", snapshot.AuditID), zap.String("url", target))
	return snapshot, nil
}

// Refresh fetches the server status and merges it. changed reports whether
// the projection moved. A finished audit is not fetched again.
func (o *Orchestrator) Refresh(ctx context.Context) (changed bool, err error) {
	current := o.Snapshot()
	if current.AuditID == "" {
		return false, ErrNoAudit
	}
	if current.Status.IsTerminal() {
		return false, nil
	}

	resp, err := o.api.GetAudit(ctx, current.AuditID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch audit %s: %w", current.AuditID, err)
	}

	o.mu.Lock()
	if o.state.AuditID != current.AuditID {
		// cleared or restarted while the request was in flight
		o.mu.Unlock()
		return false, nil
	}
	before := o.state.Clone()
	o.apply(resp)
	changed = !reflect.DeepEqual(before, o.state)
	snapshot := o.state.Clone()
	o.mu.Unlock()

	if changed {
		o.persist(snapshot)
	}
	return changed, nil
}

// Watch refreshes every interval until the audit finishes or ctx is done.
// onChange is called only when the state actually changed. Transient fetch
// errors are logged and polling continues; an expired session ends the
// watch with that error.
func (o *Orchestrator) Watch(ctx context.Context, interval time.Duration, onChange func(entity.AuditState)) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if o.Snapshot().Status.IsTerminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		changed, err := o.Refresh(ctx)
		if err != nil {
			if apperrors.IsUnauthorized(err) || errors.Is(err, ErrNoAudit) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.logger.Warn("audit refresh failed", zap.Error(err))
			continue
		}
		if changed && onChange != nil {
			onChange(o.Snapshot())
		}
	}
}

// ClearResults resets the projection to idle and removes the saved state.
func (o *Orchestrator) ClearResults() error {
	o.mu.Lock()
	o.state = entity.IdleAuditState()
	o.mu.Unlock()

	if o.store == nil {
		return nil
	}
	if err := o.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear audit results: %w", err)
	}
	return nil
}

func (o *Orchestrator) persist(state entity.AuditState) {
	if o.store == nil {
		return
	}
	if err := o.store.Save(state); err != nil {
		o.logger.Warn("failed to persist audit state", zap.Error(err))
	}
}

// apply merges a server response into o.state. Callers hold o.mu.
func (o *Orchestrator) apply(resp entity.AuditResponse) {
	s := &o.state
	if s.Scans == nil {
		s.Scans = map[string][]entity.Scan{}
	}
	if s.URL == "" {
		s.URL = resp.URL
	}

	type position struct {
		category string
		index    int
	}
	byID := map[string]position{}
	for cat, scans := range s.Scans {
		for i, scan := range scans {
			byID[scan.ID] = position{cat, i}
		}
	}

	for _, incoming := range resp.Scans {
		if pos, ok := byID[incoming.ID]; ok {
			s.Scans[pos.category][pos.index] = mergeScan(s.Scans[pos.category][pos.index], incoming)
			continue
		}
		if incoming.Status == "" {
			incoming.Status = entity.ScanPending
		}
		cat := incoming.Category
		s.Scans[cat] = append(s.Scans[cat], incoming)
		byID[incoming.ID] = position{cat, len(s.Scans[cat]) - 1}
	}

	s.Counts = countFindings(s.Scans)
	if resp.Error != "" {
		s.Error = resp.Error
	}

	if s.Status.IsTerminal() {
		return
	}
	s.Status = deriveStatus(s.Scans, entity.ParseScanStatus(resp.Status))
	if s.Status.IsTerminal() && s.CompletedAt == nil {
		done := o.now()
		s.CompletedAt = &done
	}
}

// mergeScan folds a newer report of the same scan into the known one. The
// status never moves backwards and terminal statuses are final.
func mergeScan(known, incoming entity.Scan) entity.Scan {
	out := known
	if !known.Status.IsTerminal() && incoming.Status.Rank() > known.Status.Rank() {
		out.Status = incoming.Status
	}
	if out.Name == "" {
		out.Name = incoming.Name
	}
	if out.StartedAt == nil {
		out.StartedAt = incoming.StartedAt
	}
	if out.CompletedAt == nil && out.Status.IsTerminal() {
		out.CompletedAt = incoming.CompletedAt
	}
	if incoming.Error != "" {
		out.Error = incoming.Error
	}

	if len(incoming.Findings) > 0 {
		seen := make(map[string]bool, len(known.Findings))
		findings := append([]entity.Finding(nil), known.Findings...)
		for _, f := range known.Findings {
			seen[entity.FindingKey(known, f)] = true
		}
		for _, f := range incoming.Findings {
			key := entity.FindingKey(known, f)
			if seen[key] {
				continue
			}
			seen[key] = true
			findings = append(findings, f)
		}
		out.Findings = findings
	}
	return out
}

// countFindings counts every distinct finding once across all scans.
func countFindings(scans map[string][]entity.Scan) entity.SeverityCounts {
	var counts entity.SeverityCounts
	seen := map[string]bool{}
	for _, list := range scans {
		for _, scan := range list {
			for _, f := range scan.Findings {
				key := entity.FindingKey(scan, f)
				if seen[key] {
					continue
				}
				seen[key] = true
				counts.Add(f.Severity)
			}
		}
	}
	return counts
}

// deriveStatus computes the overall status. The audit completes when every
// scan is terminal and at least one completed; it fails when every scan
// failed or the server reports failure.
func deriveStatus(scans map[string][]entity.Scan, server entity.ScanStatus) entity.AuditStatus {
	if server == entity.ScanFailed {
		return entity.AuditFailed
	}

	total, completed, failed := 0, 0, 0
	for _, list := range scans {
		for _, scan := range list {
			total++
			switch scan.Status {
			case entity.ScanCompleted:
				completed++
			case entity.ScanFailed:
				failed++
			}
		}
	}

	switch {
	case total == 0 && server == entity.ScanCompleted:
		return entity.AuditCompleted
	case total == 0:
		return entity.AuditRunning
	case failed == total:
		return entity.AuditFailed
	case completed+failed == total:
		return entity.AuditCompleted
	default:
		return entity.AuditRunning
	}
}
