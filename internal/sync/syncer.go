package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pulseboard-dev/pulseboard/db"
	"github.com/pulseboard-dev/pulseboard/internal/models"
	"github.com/pulseboard-dev/pulseboard/internal/pagerduty"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ErrSyncInProgress is returned by TryRun while another pass holds the store.
var ErrSyncInProgress = errors.New("a sync pass is already in progress")

// Summary reports how many rows of each type a pass wrote.
type Summary struct {
	Teams              int `json:"teams"`
	EscalationPolicies int `json:"escalation_policies"`
	Services           int `json:"services"`
	Incidents          int `json:"incidents"`
}

// Syncer runs full snapshot passes: fetch the four PagerDuty collections
// concurrently, then reset the mirror and store them in dependency order.
// Passes are serialized; the mirror never sees two concurrent writers.
type Syncer struct {
	db     *gorm.DB
	client *pagerduty.Client
	mu     sync.Mutex
}

func NewSyncer(conn *gorm.DB, client *pagerduty.Client) *Syncer {
	return &Syncer{db: conn, client: client}
}

// Run executes one pass, blocking if another is in flight.
func (s *Syncer) Run(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runLocked(ctx)
}

// TryRun executes one pass unless another is in flight, in which case it
// returns ErrSyncInProgress immediately.
func (s *Syncer) TryRun(ctx context.Context) (Summary, error) {
	if !s.mu.TryLock() {
		return Summary{}, ErrSyncInProgress
	}

	defer s.mu.Unlock()

	return s.runLocked(ctx)
}

func (s *Syncer) runLocked(ctx context.Context) (Summary, error) {
	started := time.Now()
	summary, err := s.pass(ctx)
	s.recordRun(started, summary, err)

	return summary, err
}

func (s *Syncer) pass(ctx context.Context) (Summary, error) {
	var (
		teams     []pagerduty.RawTeam
		policies  []pagerduty.RawEscalationPolicy
		services  []pagerduty.RawService
		incidents []pagerduty.RawIncident
	)

	// All four fetches must succeed before anything is written; a failure in
	// any one discards the others' results.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		teams, err = s.client.FetchTeams(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		policies, err = s.client.FetchEscalationPolicies(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		services, err = s.client.FetchServices(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		incidents, err = s.client.FetchIncidents(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("fetch: %w", err)
	}

	// Every pass is a full snapshot replace.
	if err := db.ResetDatabase(s.db); err != nil {
		return Summary{}, fmt.Errorf("reset mirror: %w", err)
	}

	// Teams first, then escalation policies, services, incidents, so that
	// foreign-key and association targets exist before their dependents.
	st := store{db: s.db}

	var summary Summary
	var err error

	if summary.Teams, err = st.upsertTeams(teams); err != nil {
		return summary, err
	}

	if summary.EscalationPolicies, err = st.upsertEscalationPolicies(policies); err != nil {
		return summary, err
	}

	if summary.Services, err = st.upsertServices(services); err != nil {
		return summary, err
	}

	if summary.Incidents, err = st.upsertIncidents(incidents); err != nil {
		return summary, err
	}

	return summary, nil
}

func (s *Syncer) recordRun(started time.Time, summary Summary, runErr error) {
	run := models.SyncRun{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Status:     "complete",
	}

	if runErr != nil {
		run.Status = "failed"
		run.Error = runErr.Error()
	}

	if counts, err := json.Marshal(summary); err == nil {
		run.Counts = counts
	}

	if err := s.db.Create(&run).Error; err != nil {
		log.Printf("Failed to record sync run: %v", err)
	}
}
