package scheduler

import (
	"context"

	"github.com/applyflow/applyflow/pkg/logx"
	"github.com/robfig/cron/v3"
)

// MatchScorer runs a full scoring sweep across every known candidate.
type MatchScorer interface {
	ScoreAllCandidates(ctx context.Context) error
}

// Scheduler triggers periodic scoring sweeps. Sweeps may overlap with
// event-driven scoring passes; the match store's dedup makes that safe.
type Scheduler struct {
	cron   *cron.Cron
	scorer MatchScorer
	spec   string
}

// New creates a scheduler running the scoring sweep on the given cron spec.
func New(scorer MatchScorer, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		scorer: scorer,
		spec:   spec,
	}
}

// Start registers the sweep job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logx.Info("Starting scheduled scoring sweep")
		if err := s.scorer.ScoreAllCandidates(context.Background()); err != nil {
			logx.Errorf("Scheduled scoring sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	logx.Infof("Scoring sweep scheduled: %s", s.spec)
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
