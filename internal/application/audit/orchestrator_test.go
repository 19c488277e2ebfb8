package audit

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

var _ = Describe("Orchestrator", func() {
	var (
		api   *fakeAuditAPI
		store *memStateStore
		orch  *Orchestrator
		clock time.Time
	)

	BeforeEach(func() {
		clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		api = &fakeAuditAPI{
			start: entity.AuditResponse{
				AuditID: "a-1",
				Status:  "running",
				Scans: []entity.Scan{
					scan("ssl-0", "ssl", entity.ScanRunning),
					scan("headers-0", "headers", entity.ScanPending),
				},
			},
		}
		store = &memStateStore{}
		orch = NewOrchestrator(api, store, WithClock(func() time.Time { return clock }))
	})

	Describe("StartAudit", func() {
		It("normalises the URL and seeds the scans", func() {
			state, err := orch.StartAudit(context.Background(), "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(api.startURLs).To(Equal([]string{"https://example.com"}))
			Expect(state.AuditID).To(Equal("a-1"))
			Expect(state.Status).To(Equal(entity.AuditRunning))
			Expect(state.Categories()).To(Equal([]string{"headers", "ssl"}))
			Expect(state.StartedAt).NotTo(BeNil())
			Expect(store.state).NotTo(BeNil())
			Expect(store.state.AuditID).To(Equal("a-1"))
		})

		It("clears earlier results before starting", func() {
			store.state = &entity.AuditState{AuditID: "old", Status: entity.AuditCompleted}
			Expect(orch.Restore()).To(Succeed())

			_, err := orch.StartAudit(context.Background(), "https://example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(store.clears).To(Equal(1))
			Expect(orch.Snapshot().AuditID).To(Equal("a-1"))
		})

		It("rejects an invalid URL without calling the API", func() {
			_, err := orch.StartAudit(context.Background(), "   ")
			Expect(err).To(HaveOccurred())
			Expect(apperrors.TypeOf(err)).To(Equal(apperrors.TypeValidation))
			Expect(api.startURLs).To(BeEmpty())
		})

		It("returns the API error and stays idle", func() {
			api.startErr = apperrors.New(apperrors.TypeServer, nil, "boom")
			_, err := orch.StartAudit(context.Background(), "https://example.com")
			Expect(err).To(HaveOccurred())
			Expect(orch.Snapshot().Status).To(Equal(entity.AuditIdle))
		})
	})

	Describe("Refresh", func() {
		BeforeEach(func() {
			_, err := orch.StartAudit(context.Background(), "https://example.com")
			Expect(err).NotTo(HaveOccurred())
		})

		It("never moves a scan backwards", func() {
			api.responses = []entity.AuditResponse{{
				Status: "running",
				Scans: []entity.Scan{
					scan("ssl-0", "ssl", entity.ScanPending),
					scan("headers-0", "headers", entity.ScanRunning),
				},
			}}
			changed, err := orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			state := orch.Snapshot()
			Expect(state.Scans["ssl"][0].Status).To(Equal(entity.ScanRunning))
			Expect(state.Scans["headers"][0].Status).To(Equal(entity.ScanRunning))
		})

		It("keeps a terminal scan terminal", func() {
			api.responses = []entity.AuditResponse{
				{Status: "running", Scans: []entity.Scan{scan("ssl-0", "ssl", entity.ScanFailed)}},
				{Status: "running", Scans: []entity.Scan{scan("ssl-0", "ssl", entity.ScanCompleted)}},
			}
			_, err := orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())
			_, err = orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(orch.Snapshot().Scans["ssl"][0].Status).To(Equal(entity.ScanFailed))
		})

		It("unions findings and counts each one once", func() {
			api.responses = []entity.AuditResponse{
				{Status: "running", Scans: []entity.Scan{
					scan("ssl-0", "ssl", entity.ScanRunning, finding("f1", entity.SeverityHigh)),
				}},
				{Status: "running", Scans: []entity.Scan{
					scan("ssl-0", "ssl", entity.ScanRunning,
						finding("f1", entity.SeverityHigh),
						finding("f2", entity.SeverityLow)),
				}},
			}
			_, err := orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())
			_, err = orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())

			state := orch.Snapshot()
			Expect(state.Scans["ssl"][0].Findings).To(HaveLen(2))
			Expect(state.Counts.High).To(Equal(1))
			Expect(state.Counts.Low).To(Equal(1))
			Expect(state.Counts.Total()).To(Equal(2))
		})

		It("reports no change for an identical response", func() {
			api.responses = []entity.AuditResponse{{Status: "running", Scans: api.start.Scans}}
			changed, err := orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
		})

		It("completes once every scan is terminal and one completed", func() {
			api.responses = []entity.AuditResponse{{
				Status: "running",
				Scans: []entity.Scan{
					scan("ssl-0", "ssl", entity.ScanCompleted),
					scan("headers-0", "headers", entity.ScanFailed),
				},
			}}
			_, err := orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())

			state := orch.Snapshot()
			Expect(state.Status).To(Equal(entity.AuditCompleted))
			Expect(state.CompletedAt).NotTo(BeNil())
			Expect(*state.CompletedAt).To(Equal(clock))
		})

		It("fails when every scan failed", func() {
			api.responses = []entity.AuditResponse{{
				Status: "running",
				Scans: []entity.Scan{
					scan("ssl-0", "ssl", entity.ScanFailed),
					scan("headers-0", "headers", entity.ScanFailed),
				},
			}}
			_, err := orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(orch.Snapshot().Status).To(Equal(entity.AuditFailed))
		})

		It("does not fetch again after the audit finished", func() {
			api.responses = []entity.AuditResponse{{Status: "failed"}}
			_, err := orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(orch.Snapshot().Status).To(Equal(entity.AuditFailed))

			changed, err := orch.Refresh(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
			Expect(api.calls()).To(Equal(1))
		})

		It("returns ErrNoAudit when idle", func() {
			Expect(orch.ClearResults()).To(Succeed())
			_, err := orch.Refresh(context.Background())
			Expect(err).To(MatchError(ErrNoAudit))
		})
	})

	Describe("Restore", func() {
		It("picks up where a previous run left off", func() {
			started := clock.Add(-time.Minute)
			store.state = &entity.AuditState{
				AuditID:   "a-9",
				URL:       "https://example.com",
				Status:    entity.AuditRunning,
				Scans:     map[string][]entity.Scan{"ssl": {scan("ssl-0", "ssl", entity.ScanRunning)}},
				StartedAt: &started,
			}
			Expect(orch.Restore()).To(Succeed())

			state := orch.Snapshot()
			Expect(state.AuditID).To(Equal("a-9"))
			Expect(state.Scans["ssl"]).To(HaveLen(1))
		})

		It("is idle when nothing was saved", func() {
			Expect(orch.Restore()).To(Succeed())
			Expect(orch.Snapshot().Status).To(Equal(entity.AuditIdle))
		})
	})

	Describe("Snapshot", func() {
		It("is not affected by later mutation of the copy", func() {
			_, err := orch.StartAudit(context.Background(), "https://example.com")
			Expect(err).NotTo(HaveOccurred())

			snap := orch.Snapshot()
			snap.Scans["ssl"][0].Status = entity.ScanFailed
			Expect(orch.Snapshot().Scans["ssl"][0].Status).To(Equal(entity.ScanRunning))
		})
	})

	Describe("Watch", func() {
		BeforeEach(func() {
			_, err := orch.StartAudit(context.Background(), "https://example.com")
			Expect(err).NotTo(HaveOccurred())
		})

		It("polls until the audit finishes and reports each change", func() {
			api.responses = []entity.AuditResponse{
				{Status: "running", Scans: []entity.Scan{scan("ssl-0", "ssl", entity.ScanCompleted)}},
				{Status: "running", Scans: []entity.Scan{scan("ssl-0", "ssl", entity.ScanCompleted)}},
				{Status: "running", Scans: []entity.Scan{scan("headers-0", "headers", entity.ScanCompleted)}},
			}
			var seen []entity.AuditStatus
			err := orch.Watch(context.Background(), time.Millisecond, func(s entity.AuditState) {
				seen = append(seen, s.Status)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal([]entity.AuditStatus{entity.AuditRunning, entity.AuditCompleted}))
			Expect(api.calls()).To(Equal(3))
		})

		It("keeps polling through transient errors", func() {
			api.errs = []error{apperrors.New(apperrors.TypeNetwork, nil, "cannot reach")}
			api.responses = []entity.AuditResponse{{}, {Status: "completed", Scans: []entity.Scan{
				scan("ssl-0", "ssl", entity.ScanCompleted),
				scan("headers-0", "headers", entity.ScanCompleted),
			}}}
			err := orch.Watch(context.Background(), time.Millisecond, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(orch.Snapshot().Status).To(Equal(entity.AuditCompleted))
		})

		It("stops on an expired session", func() {
			api.errs = []error{apperrors.ErrSessionExpired}
			err := orch.Watch(context.Background(), time.Millisecond, nil)
			Expect(errors.Is(err, apperrors.ErrSessionExpired)).To(BeTrue())
		})

		It("returns the context error when cancelled", func() {
			api.responses = []entity.AuditResponse{{Status: "running", Scans: api.start.Scans}}
			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()
			err := orch.Watch(ctx, time.Millisecond, nil)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("rejects a non-positive interval", func() {
			Expect(orch.Watch(context.Background(), 0, nil)).NotTo(Succeed())
		})
	})
})
