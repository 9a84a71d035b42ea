package matchsrv

import (
	"context"

	"github.com/applyflow/applyflow/pipeline/listing"
	"github.com/applyflow/applyflow/pipeline/match"
	"github.com/applyflow/applyflow/pipeline/notify"
	"github.com/applyflow/applyflow/pipeline/profile"
	"github.com/applyflow/applyflow/pkg/asyncx"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/applyflow/applyflow/pkg/logx"
)

// Service scores listings for candidates and runs the review gate.
type Service struct {
	matches  match.Repository
	profiles profile.Repository
	listings listing.Repository
	enqueuer match.ApplyEnqueuer
	notifier notify.Notifier
	tasks    *asyncx.Pool
	minScore int
}

// NewService creates a new match service.
func NewService(
	matches match.Repository,
	profiles profile.Repository,
	listings listing.Repository,
	enqueuer match.ApplyEnqueuer,
	notifier notify.Notifier,
	tasks *asyncx.Pool,
	minScore int,
) *Service {
	return &Service{
		matches:  matches,
		profiles: profiles,
		listings: listings,
		enqueuer: enqueuer,
		notifier: notifier,
		tasks:    tasks,
		minScore: minScore,
	}
}

// ScoreListingsForCandidate scores every active listing against one
// candidate and stores the matches that clear the minimum score. Duplicate
// pairs are silently skipped, so overlapping passes are safe.
func (s *Service) ScoreListingsForCandidate(ctx context.Context, candidateID kernel.CandidateID) error {
	p, err := s.profiles.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return err
	}

	created := 0
	pagination := kernel.PaginationOptions{Page: 1, PageSize: kernel.MaxPageSize}
	for {
		page, err := s.listings.ListActive(ctx, pagination)
		if err != nil {
			return match.ErrScoringFailed().WithDetail("error", err.Error())
		}

		for i := range page.Items {
			l := &page.Items[i]
			result := match.Score(p, l)
			if result.Total < s.minScore {
				continue
			}

			inserted, err := s.matches.CreateIfAbsent(ctx, &match.Match{
				CandidateID: candidateID,
				ListingID:   l.ID,
				Score:       result.Total,
				Reasons:     result.Reasons,
				ReviewState: match.ReviewStatePending,
			})
			if err != nil {
				return err
			}
			if inserted {
				created++
			}
		}

		if len(page.Items) < pagination.PageSize {
			break
		}
		pagination.Page++
	}

	logx.Infof("Scoring pass for candidate %s created %d matches", candidateID.String(), created)
	if created > 0 {
		s.notifyMatches(candidateID, created)
	}
	return nil
}

// ScoreAllCandidates runs a scoring pass over every known profile. One
// failing candidate does not stop the sweep.
func (s *Service) ScoreAllCandidates(ctx context.Context) error {
	candidateIDs, err := s.profiles.ListCandidateIDs(ctx)
	if err != nil {
		return err
	}

	for _, candidateID := range candidateIDs {
		if err := s.ScoreListingsForCandidate(ctx, candidateID); err != nil {
			logx.Errorf("Scoring pass failed for candidate %s: %v", candidateID.String(), err)
		}
	}
	return nil
}

// GetMatch returns one of the candidate's matches.
func (s *Service) GetMatch(ctx context.Context, candidateID kernel.CandidateID, matchID kernel.MatchID) (*match.MatchResponse, error) {
	m, err := s.matches.GetByID(ctx, candidateID, matchID)
	if err != nil {
		return nil, err
	}
	resp := m.ToResponse()
	return &resp, nil
}

// ListPending returns the candidate's unreviewed matches, best first.
func (s *Service) ListPending(ctx context.Context, candidateID kernel.CandidateID, pagination kernel.PaginationOptions) (*kernel.Paginated[match.MatchResponse], error) {
	page, err := s.matches.ListPending(ctx, candidateID, pagination)
	if err != nil {
		return nil, err
	}
	return toResponsePage(page), nil
}

// ListReviewed returns the candidate's approved and rejected matches.
func (s *Service) ListReviewed(ctx context.Context, candidateID kernel.CandidateID, pagination kernel.PaginationOptions) (*kernel.Paginated[match.MatchResponse], error) {
	page, err := s.matches.ListReviewed(ctx, candidateID, pagination)
	if err != nil {
		return nil, err
	}
	return toResponsePage(page), nil
}

// Review applies the candidate's one-shot approve/reject decision. Approval
// enqueues exactly one application job for the match; the unique job-per-
// match constraint keeps a client retry from enqueueing a second one.
func (s *Service) Review(ctx context.Context, candidateID kernel.CandidateID, matchID kernel.MatchID, req match.ReviewMatchRequest) (*match.ReviewMatchResponse, error) {
	if req.Approved == nil {
		return nil, match.ErrInvalidReview().WithDetail("reason", "approved boolean is required")
	}

	state := match.ReviewStateRejected
	if *req.Approved {
		state = match.ReviewStateApproved
	}

	m, err := s.matches.Review(ctx, candidateID, matchID, state)
	if err != nil {
		return nil, err
	}

	resp := &match.ReviewMatchResponse{Match: m.ToResponse()}
	if state == match.ReviewStateApproved {
		jobID, err := s.enqueuer.EnqueueForMatch(ctx, m.CandidateID, m.ListingID, m.ID)
		if err != nil {
			logx.Errorf("Failed to enqueue application for match %s: %v", m.ID.String(), err)
			return nil, err
		}
		resp.JobID = jobID
		logx.Infof("Match %s approved by candidate %s, enqueued job %s",
			m.ID.String(), candidateID.String(), jobID.String())
	} else {
		logx.Infof("Match %s rejected by candidate %s", m.ID.String(), candidateID.String())
	}
	return resp, nil
}

func (s *Service) notifyMatches(candidateID kernel.CandidateID, count int) {
	s.tasks.Submit("notify_matches", func(ctx context.Context) error {
		return s.notifier.MatchesCreated(ctx, candidateID, count)
	})
}

func toResponsePage(page *kernel.Paginated[match.Match]) *kernel.Paginated[match.MatchResponse] {
	responses := make([]match.MatchResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, page.Items[i].ToResponse())
	}
	return kernel.NewPaginated(responses, page.Page)
}
