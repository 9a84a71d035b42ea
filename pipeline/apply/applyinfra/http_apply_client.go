package applyinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/applyflow/applyflow/pipeline/apply"
	"github.com/applyflow/applyflow/pkg/kernel"
)

// HTTPApplyClient implements apply.ApplyClient against the external apply
// collaborator's HTTP endpoint. Every outcome is classified: transport
// errors, timeouts and 5xx are retryable; 4xx and explicit rejections are
// fatal.
type HTTPApplyClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPApplyClient creates a client for the apply collaborator. The
// per-attempt timeout is enforced by the caller's context, not here.
func NewHTTPApplyClient(baseURL string, timeout time.Duration) apply.ApplyClient {
	return &HTTPApplyClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type applyRequest struct {
	CandidateID string `json:"candidate_id"`
	ListingID   string `json:"listing_id"`
}

type applyResponse struct {
	Success        bool   `json:"success"`
	ApplicationRef string `json:"application_ref"`
	Error          string `json:"error"`
}

func (c *HTTPApplyClient) Apply(ctx context.Context, candidateID kernel.CandidateID, listingID kernel.ListingID) apply.AttemptResult {
	body, err := json.Marshal(applyRequest{
		CandidateID: candidateID.String(),
		ListingID:   listingID.String(),
	})
	if err != nil {
		return apply.FatalFailure(fmt.Errorf("encode apply request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/apply", bytes.NewReader(body))
	if err != nil {
		return apply.FatalFailure(fmt.Errorf("build apply request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and connection failures land here.
		return apply.RetryableFailure(fmt.Errorf("apply call failed: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return apply.RetryableFailure(fmt.Errorf("apply collaborator returned %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return apply.FatalFailure(fmt.Errorf("apply collaborator rejected request with %d", resp.StatusCode))
	}

	var parsed applyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return apply.RetryableFailure(fmt.Errorf("decode apply response: %w", err))
	}
	if !parsed.Success {
		return apply.FatalFailure(fmt.Errorf("application rejected: %s", parsed.Error))
	}
	return apply.Succeeded(parsed.ApplicationRef)
}
