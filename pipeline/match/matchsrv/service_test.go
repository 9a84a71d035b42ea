package matchsrv

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/applyflow/applyflow/pipeline/listing"
	"github.com/applyflow/applyflow/pipeline/match"
	"github.com/applyflow/applyflow/pipeline/notify"
	"github.com/applyflow/applyflow/pipeline/profile"
	"github.com/applyflow/applyflow/pkg/asyncx"
	"github.com/applyflow/applyflow/pkg/errx"
	"github.com/applyflow/applyflow/pkg/kernel"
)

type fakeMatchRepo struct {
	byPair  map[string]*match.Match
	nextNum int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{byPair: map[string]*match.Match{}}
}

func pairKey(c kernel.CandidateID, l kernel.ListingID) string {
	return c.String() + "/" + l.String()
}

func (r *fakeMatchRepo) CreateIfAbsent(ctx context.Context, m *match.Match) (bool, error) {
	key := pairKey(m.CandidateID, m.ListingID)
	if _, ok := r.byPair[key]; ok {
		return false, nil
	}
	r.nextNum++
	m.ID = kernel.NewMatchID(fmt.Sprintf("match-%d", r.nextNum))
	m.CreatedAt = time.Now()
	clone := *m
	r.byPair[key] = &clone
	return true, nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, candidateID kernel.CandidateID, matchID kernel.MatchID) (*match.Match, error) {
	for _, m := range r.byPair {
		if m.ID == matchID && m.CandidateID == candidateID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, match.ErrMatchNotFound()
}

func (r *fakeMatchRepo) ListPending(ctx context.Context, candidateID kernel.CandidateID, p kernel.PaginationOptions) (*kernel.Paginated[match.Match], error) {
	return r.list(candidateID, true)
}

func (r *fakeMatchRepo) ListReviewed(ctx context.Context, candidateID kernel.CandidateID, p kernel.PaginationOptions) (*kernel.Paginated[match.Match], error) {
	return r.list(candidateID, false)
}

func (r *fakeMatchRepo) list(candidateID kernel.CandidateID, pending bool) (*kernel.Paginated[match.Match], error) {
	items := []match.Match{}
	for _, m := range r.byPair {
		if m.CandidateID != candidateID {
			continue
		}
		if pending == (m.ReviewState == match.ReviewStatePending) {
			items = append(items, *m)
		}
	}
	page := kernel.Page{Number: 1, Size: kernel.DefaultPageSize, Total: len(items)}
	return kernel.NewPaginated(items, page), nil
}

func (r *fakeMatchRepo) Review(ctx context.Context, candidateID kernel.CandidateID, matchID kernel.MatchID, state match.ReviewState) (*match.Match, error) {
	for _, m := range r.byPair {
		if m.ID != matchID || m.CandidateID != candidateID {
			continue
		}
		if m.ReviewState != match.ReviewStatePending {
			return nil, match.ErrAlreadyReviewed()
		}
		now := time.Now()
		m.ReviewState = state
		m.ReviewedAt = &now
		clone := *m
		return &clone, nil
	}
	return nil, match.ErrMatchNotFound()
}

type fakeProfileRepo struct {
	profiles map[kernel.CandidateID]*profile.CandidateProfile
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, p *profile.CandidateProfile) error {
	r.profiles[p.CandidateID] = p
	return nil
}

func (r *fakeProfileRepo) GetByCandidateID(ctx context.Context, id kernel.CandidateID) (*profile.CandidateProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, profile.ErrProfileNotFound()
	}
	return p, nil
}

func (r *fakeProfileRepo) ListCandidateIDs(ctx context.Context) ([]kernel.CandidateID, error) {
	ids := make([]kernel.CandidateID, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeListingRepo struct {
	listings []listing.Listing
}

func (r *fakeListingRepo) CreateIfAbsent(ctx context.Context, l *listing.Listing) (bool, error) {
	r.listings = append(r.listings, *l)
	return true, nil
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id kernel.ListingID) (*listing.Listing, error) {
	for i := range r.listings {
		if r.listings[i].ID == id {
			return &r.listings[i], nil
		}
	}
	return nil, listing.ErrListingNotFound()
}

func (r *fakeListingRepo) ListActive(ctx context.Context, p kernel.PaginationOptions) (*kernel.Paginated[listing.Listing], error) {
	p = p.Normalize()
	start := p.Offset()
	if start > len(r.listings) {
		start = len(r.listings)
	}
	end := start + p.PageSize
	if end > len(r.listings) {
		end = len(r.listings)
	}
	page := kernel.Page{Number: p.Page, Size: p.PageSize, Total: len(r.listings)}
	return kernel.NewPaginated(r.listings[start:end], page), nil
}

func (r *fakeListingRepo) Deactivate(ctx context.Context, id kernel.ListingID) error { return nil }

func (r *fakeListingRepo) UpdateEmbedding(ctx context.Context, id kernel.ListingID, e kernel.ListingEmbedding) error {
	return nil
}

func (r *fakeListingRepo) SemanticSearch(ctx context.Context, e kernel.ListingEmbedding, limit int) ([]listing.Listing, error) {
	return nil, nil
}

type fakeEnqueuer struct {
	calls   int
	lastArg kernel.MatchID
}

func (e *fakeEnqueuer) EnqueueForMatch(ctx context.Context, candidateID kernel.CandidateID, listingID kernel.ListingID, matchID kernel.MatchID) (kernel.JobID, error) {
	e.calls++
	e.lastArg = matchID
	return kernel.NewJobID("job-" + matchID.String()), nil
}

func newTestService(t *testing.T) (*Service, *fakeMatchRepo, *fakeProfileRepo, *fakeListingRepo, *fakeEnqueuer) {
	t.Helper()
	matches := newFakeMatchRepo()
	profiles := &fakeProfileRepo{profiles: map[kernel.CandidateID]*profile.CandidateProfile{}}
	listings := &fakeListingRepo{}
	enqueuer := &fakeEnqueuer{}
	tasks := asyncx.NewPool(1, 16, time.Second)
	t.Cleanup(tasks.Shutdown)

	svc := NewService(matches, profiles, listings, enqueuer, notify.NewLogNotifier(), tasks, 60)
	return svc, matches, profiles, listings, enqueuer
}

func strongCandidate() *profile.CandidateProfile {
	return &profile.CandidateProfile{
		CandidateID:      kernel.NewCandidateID("cand-1"),
		Skills:           []string{"python", "react"},
		DesiredTitles:    []string{"engineer"},
		RemotePreference: kernel.RemotePreferenceRemote,
	}
}

func TestScoreListingsPersistsAboveThresholdOnly(t *testing.T) {
	svc, matches, profiles, listings, _ := newTestService(t)
	candidate := strongCandidate()
	profiles.profiles[candidate.CandidateID] = candidate

	listings.listings = []listing.Listing{
		{
			ID:             kernel.NewListingID("good"),
			Title:          "Senior Python Engineer",
			Description:    "python and react",
			RemoteType:     kernel.RemoteTypeRemote,
			EmploymentType: kernel.EmploymentTypeFullTime,
		},
		{
			ID:          kernel.NewListingID("bad"),
			Title:       "Forklift Operator",
			Description: "warehouse",
			RemoteType:  kernel.RemoteTypeOnsite,
		},
	}

	if err := svc.ScoreListingsForCandidate(context.Background(), candidate.CandidateID); err != nil {
		t.Fatalf("scoring pass failed: %v", err)
	}

	if len(matches.byPair) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches.byPair))
	}
	m := matches.byPair[pairKey(candidate.CandidateID, kernel.NewListingID("good"))]
	if m == nil {
		t.Fatal("expected the strong listing to be matched")
	}
	if m.Score < 60 {
		t.Errorf("persisted match below threshold: %d", m.Score)
	}
}

func TestScoreListingsDedupOnRerun(t *testing.T) {
	svc, matches, profiles, listings, _ := newTestService(t)
	candidate := strongCandidate()
	profiles.profiles[candidate.CandidateID] = candidate

	listings.listings = []listing.Listing{{
		ID:             kernel.NewListingID("good"),
		Title:          "Senior Python Engineer",
		Description:    "python and react",
		RemoteType:     kernel.RemoteTypeRemote,
		EmploymentType: kernel.EmploymentTypeFullTime,
	}}

	for i := 0; i < 3; i++ {
		if err := svc.ScoreListingsForCandidate(context.Background(), candidate.CandidateID); err != nil {
			t.Fatalf("pass %d failed: %v", i, err)
		}
	}

	if len(matches.byPair) != 1 {
		t.Fatalf("expected 1 match after repeated passes, got %d", len(matches.byPair))
	}
}

func TestReviewApproveEnqueuesExactlyOne(t *testing.T) {
	svc, matches, _, _, enqueuer := newTestService(t)
	m := &match.Match{
		CandidateID: kernel.NewCandidateID("cand-1"),
		ListingID:   kernel.NewListingID("good"),
		Score:       90,
		ReviewState: match.ReviewStatePending,
	}
	matches.CreateIfAbsent(context.Background(), m)

	approved := true
	resp, err := svc.Review(context.Background(), m.CandidateID, m.ID, match.ReviewMatchRequest{Approved: &approved})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if enqueuer.calls != 1 {
		t.Fatalf("expected exactly 1 enqueue, got %d", enqueuer.calls)
	}
	if enqueuer.lastArg != m.ID {
		t.Errorf("enqueued wrong match: %s", enqueuer.lastArg)
	}
	if resp.JobID.IsEmpty() {
		t.Error("expected job id in response")
	}
	if resp.Match.ReviewState != match.ReviewStateApproved {
		t.Errorf("expected approved state, got %s", resp.Match.ReviewState)
	}
}

func TestReviewRejectEnqueuesNothing(t *testing.T) {
	svc, matches, _, _, enqueuer := newTestService(t)
	m := &match.Match{
		CandidateID: kernel.NewCandidateID("cand-1"),
		ListingID:   kernel.NewListingID("good"),
		Score:       90,
		ReviewState: match.ReviewStatePending,
	}
	matches.CreateIfAbsent(context.Background(), m)

	approved := false
	resp, err := svc.Review(context.Background(), m.CandidateID, m.ID, match.ReviewMatchRequest{Approved: &approved})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if enqueuer.calls != 0 {
		t.Fatalf("expected no enqueue on rejection, got %d", enqueuer.calls)
	}
	if !resp.JobID.IsEmpty() {
		t.Error("expected no job id on rejection")
	}
}

func TestReviewIsOneShot(t *testing.T) {
	svc, matches, _, _, enqueuer := newTestService(t)
	m := &match.Match{
		CandidateID: kernel.NewCandidateID("cand-1"),
		ListingID:   kernel.NewListingID("good"),
		Score:       90,
		ReviewState: match.ReviewStatePending,
	}
	matches.CreateIfAbsent(context.Background(), m)

	approved := true
	if _, err := svc.Review(context.Background(), m.CandidateID, m.ID, match.ReviewMatchRequest{Approved: &approved}); err != nil {
		t.Fatalf("first review failed: %v", err)
	}

	_, err := svc.Review(context.Background(), m.CandidateID, m.ID, match.ReviewMatchRequest{Approved: &approved})
	if !errx.IsType(err, errx.TypeConflict) {
		t.Fatalf("expected conflict on second review, got %v", err)
	}
	if enqueuer.calls != 1 {
		t.Fatalf("second review must not enqueue again, got %d calls", enqueuer.calls)
	}
}

func TestReviewMissingFlagRejected(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Review(context.Background(), kernel.NewCandidateID("cand-1"), kernel.NewMatchID("nope"), match.ReviewMatchRequest{})
	if !errx.IsType(err, errx.TypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReviewUnknownMatch(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	approved := true
	_, err := svc.Review(context.Background(), kernel.NewCandidateID("cand-1"), kernel.NewMatchID("nope"), match.ReviewMatchRequest{Approved: &approved})
	if !errx.IsType(err, errx.TypeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
