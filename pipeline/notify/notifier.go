package notify

import (
	"context"

	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/applyflow/applyflow/pkg/logx"
)

// Notifier is the fire-and-forget notification trigger. Callers invoke it
// off the request path; failures are logged and never propagate back into
// the pipeline.
type Notifier interface {
	// MatchesCreated fires after a scoring pass stored new matches.
	MatchesCreated(ctx context.Context, candidateID kernel.CandidateID, count int) error

	// ApplyFinished fires when an application job reaches a terminal state.
	ApplyFinished(ctx context.Context, candidateID kernel.CandidateID, jobID kernel.JobID, succeeded bool, detail string) error
}

// LogNotifier writes notifications to the log. It stands in for the real
// delivery channel, which lives outside this service.
type LogNotifier struct{}

func NewLogNotifier() Notifier {
	return &LogNotifier{}
}

func (n *LogNotifier) MatchesCreated(ctx context.Context, candidateID kernel.CandidateID, count int) error {
	logx.Infof("Notification: %d new matches for candidate %s", count, candidateID.String())
	return nil
}

func (n *LogNotifier) ApplyFinished(ctx context.Context, candidateID kernel.CandidateID, jobID kernel.JobID, succeeded bool, detail string) error {
	outcome := "succeeded"
	if !succeeded {
		outcome = "failed"
	}
	logx.Infof("Notification: application job %s for candidate %s %s: %s",
		jobID.String(), candidateID.String(), outcome, detail)
	return nil
}
