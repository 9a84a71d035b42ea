package profilesrv

import (
	"context"
	"strings"
	"time"

	"github.com/applyflow/applyflow/internal/pdf"
	"github.com/applyflow/applyflow/pipeline/profile"
	"github.com/applyflow/applyflow/pkg/asyncx"
	"github.com/applyflow/applyflow/pkg/fsx"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/applyflow/applyflow/pkg/logx"
)

// Service orchestrates résumé-to-profile processing. Extraction failures
// degrade to an empty profile; they never abort the pipeline.
type Service struct {
	repo       profile.Repository
	extractor  profile.Extractor
	fileSystem fsx.FileSystem
	scoring    profile.ScoringTrigger
	tasks      *asyncx.Pool
}

// NewService creates a new profile service
func NewService(
	repo profile.Repository,
	extractor profile.Extractor,
	fileSystem fsx.FileSystem,
	scoring profile.ScoringTrigger,
	tasks *asyncx.Pool,
) *Service {
	return &Service{
		repo:       repo,
		extractor:  extractor,
		fileSystem: fileSystem,
		scoring:    scoring,
		tasks:      tasks,
	}
}

// ProcessDocument reads a stored résumé document, extracts structured
// attributes and upserts the candidate's profile. A fresh profile triggers a
// scoring run in the background.
func (s *Service) ProcessDocument(ctx context.Context, req profile.ProcessDocumentRequest) (*profile.ProfileResponse, error) {
	logx.Infof("Processing document for candidate %s: %s", req.CandidateID, req.FilePath)

	existing, _ := s.repo.GetByCandidateID(ctx, req.CandidateID)

	extracted, err := s.extract(ctx, req)
	var p *profile.CandidateProfile
	if err != nil {
		logx.Warnf("Extraction failed for candidate %s, storing degraded profile: %v", req.CandidateID, err)
		p = profile.NewDegradedProfile(req.CandidateID)
	} else {
		p = s.buildProfile(req.CandidateID, extracted)
	}

	// Candidate-set preferences survive reprocessing; extraction only
	// refreshes document-derived attributes. Desired titles are curated
	// through UpdatePreferences, so once the candidate has any they win
	// over whatever the new document suggests.
	if existing != nil {
		if len(existing.DesiredTitles) > 0 {
			p.DesiredTitles = existing.DesiredTitles
		}
		p.RemotePreference = existing.RemotePreference
		p.MinSalary = existing.MinSalary
		p.EmploymentTypes = existing.EmploymentTypes
		p.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, profile.ErrPersistenceFailed().
			WithDetail("candidate_id", req.CandidateID).
			WithDetail("error", err.Error())
	}

	candidateID := req.CandidateID
	s.tasks.Submit("score_candidate", func(taskCtx context.Context) error {
		return s.scoring.ScoreListingsForCandidate(taskCtx, candidateID)
	})

	return profile.ToResponse(p), nil
}

func (s *Service) extract(ctx context.Context, req profile.ProcessDocumentRequest) (*profile.ExtractedData, error) {
	fileData, err := s.fileSystem.ReadFile(ctx, req.FilePath)
	if err != nil {
		return nil, profile.ErrDocumentReadFailed().
			WithDetail("file_path", req.FilePath).
			WithDetail("error", err.Error())
	}

	var pages [][]byte
	switch strings.ToLower(req.FileType) {
	case "pdf":
		pages, err = pdf.RenderResumePDF(fileData)
		if err != nil {
			return nil, err
		}
	case "jpg", "jpeg", "png":
		page, err := pdf.NormalizeResumeImage(fileData)
		if err != nil {
			return nil, err
		}
		pages = [][]byte{page}
	default:
		return nil, profile.ErrInvalidProfile().
			WithDetail("file_type", req.FileType)
	}

	return s.extractor.ExtractProfile(ctx, pages)
}

func (s *Service) buildProfile(candidateID kernel.CandidateID, data *profile.ExtractedData) *profile.CandidateProfile {
	now := time.Now()
	return &profile.CandidateProfile{
		CandidateID:      candidateID,
		Skills:           normalize(data.Skills),
		DesiredTitles:    normalize(data.DesiredTitles),
		RemotePreference: kernel.RemotePreferenceAny,
		EmploymentTypes:  []kernel.EmploymentType{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func normalize(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// GetProfile retrieves the profile for a candidate
func (s *Service) GetProfile(ctx context.Context, candidateID kernel.CandidateID) (*profile.ProfileResponse, error) {
	p, err := s.repo.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	return profile.ToResponse(p), nil
}

// UpdatePreferences applies candidate-set preferences to the stored profile
// and re-scores against the listing pool.
func (s *Service) UpdatePreferences(ctx context.Context, candidateID kernel.CandidateID, req profile.UpdatePreferencesRequest) (*profile.ProfileResponse, error) {
	p, err := s.repo.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	if req.DesiredTitles != nil {
		p.DesiredTitles = normalize(*req.DesiredTitles)
	}
	if req.RemotePreference != nil {
		if !req.RemotePreference.IsValid() {
			return nil, profile.ErrInvalidProfile().
				WithDetail("remote_preference", *req.RemotePreference)
		}
		p.RemotePreference = *req.RemotePreference
	}
	if req.MinSalary != nil {
		p.MinSalary = req.MinSalary
	}
	if req.EmploymentTypes != nil {
		for _, t := range *req.EmploymentTypes {
			if !t.IsValid() {
				return nil, profile.ErrInvalidProfile().
					WithDetail("employment_type", t)
			}
		}
		p.EmploymentTypes = *req.EmploymentTypes
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, profile.ErrPersistenceFailed().
			WithDetail("candidate_id", candidateID).
			WithDetail("error", err.Error())
	}

	s.tasks.Submit("score_candidate", func(taskCtx context.Context) error {
		return s.scoring.ScoreListingsForCandidate(taskCtx, candidateID)
	})

	return profile.ToResponse(p), nil
}
