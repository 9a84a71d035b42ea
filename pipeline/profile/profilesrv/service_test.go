package profilesrv

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/applyflow/applyflow/pipeline/profile"
	"github.com/applyflow/applyflow/pkg/asyncx"
	"github.com/applyflow/applyflow/pkg/fsx"
	"github.com/applyflow/applyflow/pkg/kernel"
)

type fakeProfileRepo struct {
	profiles map[kernel.CandidateID]*profile.CandidateProfile
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, p *profile.CandidateProfile) error {
	clone := *p
	r.profiles[p.CandidateID] = &clone
	return nil
}

func (r *fakeProfileRepo) GetByCandidateID(ctx context.Context, id kernel.CandidateID) (*profile.CandidateProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, profile.ErrProfileNotFound()
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProfileRepo) ListCandidateIDs(ctx context.Context) ([]kernel.CandidateID, error) {
	ids := make([]kernel.CandidateID, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

// brokenFS fails every read, simulating unreachable blob storage.
type brokenFS struct{}

func (brokenFS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return nil, errors.New("bucket unavailable")
}
func (brokenFS) WriteFile(ctx context.Context, path string, data []byte) error { return nil }
func (brokenFS) WriteFileStream(ctx context.Context, path string, r io.Reader) error {
	return nil
}
func (brokenFS) DeleteFile(ctx context.Context, path string) error { return nil }
func (brokenFS) Join(segments ...string) string                    { return fsx.JoinPath(segments...) }

type noopExtractor struct{}

func (noopExtractor) ExtractProfile(ctx context.Context, pages [][]byte) (*profile.ExtractedData, error) {
	return &profile.ExtractedData{}, nil
}

type noopTrigger struct{}

func (noopTrigger) ScoreListingsForCandidate(ctx context.Context, id kernel.CandidateID) error {
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeProfileRepo) {
	t.Helper()
	repo := &fakeProfileRepo{profiles: map[kernel.CandidateID]*profile.CandidateProfile{}}
	tasks := asyncx.NewPool(1, 16, time.Second)
	t.Cleanup(tasks.Shutdown)

	svc := NewService(repo, noopExtractor{}, brokenFS{}, noopTrigger{}, tasks)
	return svc, repo
}

func TestProcessDocumentStoresDegradedProfileOnFailure(t *testing.T) {
	svc, repo := newTestService(t)
	candidateID := kernel.NewCandidateID("cand-1")

	resp, err := svc.ProcessDocument(context.Background(), profile.ProcessDocumentRequest{
		CandidateID: candidateID,
		FilePath:    "resumes/cand-1.pdf",
		FileType:    "pdf",
	})
	if err != nil {
		t.Fatalf("processing must not abort on extraction failure: %v", err)
	}
	if !resp.Degraded {
		t.Error("expected a degraded profile")
	}

	stored, ok := repo.profiles[candidateID]
	if !ok {
		t.Fatal("expected a profile row despite the failure")
	}
	if len(stored.Skills) != 0 {
		t.Errorf("degraded profile should have no skills, got %v", stored.Skills)
	}
}

func TestProcessDocumentKeepsCandidatePreferences(t *testing.T) {
	svc, repo := newTestService(t)
	candidateID := kernel.NewCandidateID("cand-1")
	minSalary := int64(120000)
	repo.profiles[candidateID] = &profile.CandidateProfile{
		CandidateID:      candidateID,
		Skills:           []string{"python"},
		RemotePreference: kernel.RemotePreferenceRemote,
		MinSalary:        &minSalary,
		EmploymentTypes:  []kernel.EmploymentType{kernel.EmploymentTypeContract},
	}

	if _, err := svc.ProcessDocument(context.Background(), profile.ProcessDocumentRequest{
		CandidateID: candidateID,
		FilePath:    "resumes/cand-1.pdf",
		FileType:    "pdf",
	}); err != nil {
		t.Fatalf("processing failed: %v", err)
	}

	stored := repo.profiles[candidateID]
	if stored.RemotePreference != kernel.RemotePreferenceRemote {
		t.Errorf("remote preference lost on reprocess: %s", stored.RemotePreference)
	}
	if stored.MinSalary == nil || *stored.MinSalary != minSalary {
		t.Error("salary floor lost on reprocess")
	}
	if len(stored.EmploymentTypes) != 1 {
		t.Error("employment preferences lost on reprocess")
	}
}

// Desired titles set through UpdatePreferences are curated input; a résumé
// re-upload must not wipe them.
func TestProcessDocumentKeepsCuratedTitles(t *testing.T) {
	svc, repo := newTestService(t)
	candidateID := kernel.NewCandidateID("cand-1")
	repo.profiles[candidateID] = &profile.CandidateProfile{
		CandidateID:      candidateID,
		DesiredTitles:    []string{"staff engineer", "principal engineer"},
		RemotePreference: kernel.RemotePreferenceAny,
	}

	if _, err := svc.ProcessDocument(context.Background(), profile.ProcessDocumentRequest{
		CandidateID: candidateID,
		FilePath:    "resumes/cand-1.pdf",
		FileType:    "pdf",
	}); err != nil {
		t.Fatalf("processing failed: %v", err)
	}

	stored := repo.profiles[candidateID]
	if len(stored.DesiredTitles) != 2 {
		t.Fatalf("curated titles lost on reprocess, got %v", stored.DesiredTitles)
	}
	if stored.DesiredTitles[0] != "staff engineer" {
		t.Errorf("curated titles changed on reprocess, got %v", stored.DesiredTitles)
	}
}

func TestUpdatePreferencesValidatesEnums(t *testing.T) {
	svc, repo := newTestService(t)
	candidateID := kernel.NewCandidateID("cand-1")
	repo.profiles[candidateID] = &profile.CandidateProfile{CandidateID: candidateID}

	bad := kernel.RemotePreference("moon-office")
	_, err := svc.UpdatePreferences(context.Background(), candidateID, profile.UpdatePreferencesRequest{
		RemotePreference: &bad,
	})
	if err == nil {
		t.Fatal("expected validation error for unknown remote preference")
	}
}

func TestUpdatePreferencesUnknownCandidate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdatePreferences(context.Background(), kernel.NewCandidateID("ghost"), profile.UpdatePreferencesRequest{})
	if err == nil {
		t.Fatal("expected not found for unknown candidate")
	}
}
