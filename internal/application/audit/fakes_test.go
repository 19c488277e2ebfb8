package audit

import (
	"context"
	"errors"
	"sync"

	"github.com/opticini/opticini-cli/internal/domain/entity"
)

type fakeAuditAPI struct {
	mu        sync.Mutex
	start     entity.AuditResponse
	startErr  error
	responses []entity.AuditResponse
	errs      []error
	getCalls  int
	startURLs []string
}

func (f *fakeAuditAPI) StartAudit(_ context.Context, url string) (entity.AuditResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startURLs = append(f.startURLs, url)
	return f.start, f.startErr
}

// GetAudit replays the queued responses; the last one repeats.
func (f *fakeAuditAPI) GetAudit(_ context.Context, id string) (entity.AuditResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.getCalls
	f.getCalls++
	if i < len(f.errs) && f.errs[i] != nil {
		return entity.AuditResponse{}, f.errs[i]
	}
	if len(f.responses) == 0 {
		return entity.AuditResponse{}, errors.New("no response queued")
	}
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	resp := f.responses[i]
	resp.AuditID = id
	return resp, nil
}

func (f *fakeAuditAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

type memStateStore struct {
	mu     sync.Mutex
	state  *entity.AuditState
	saves  int
	clears int
}

func (m *memStateStore) Load() (*entity.AuditState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	s := m.state.Clone()
	return &s, nil
}

func (m *memStateStore) Save(state entity.AuditState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := state.Clone()
	m.state = &s
	m.saves++
	return nil
}

func (m *memStateStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	m.clears++
	return nil
}

func scan(id, category string, status entity.ScanStatus, findings ...entity.Finding) entity.Scan {
	return entity.Scan{ID: id, Category: category, Name: category, Status: status, Findings: findings}
}

func finding(id string, sev entity.Severity) entity.Finding {
	return entity.Finding{ID: id, Title: "finding " + id, Severity: sev}
}
