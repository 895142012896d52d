package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Verification result statuses returned by the verifier service.
const (
	ResultPending  = "pending"
	ResultVerified = "verified"
	ResultRejected = "rejected"
)

// ProofRequest is the verifier's challenge the guest's wallet must answer.
// The raw payload is what gets rendered into a QR code for wallet scanning.
type ProofRequest struct {
	RequestID string          `json:"request_id"`
	Payload   json.RawMessage `json:"payload"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// VerificationResult is the outcome of a proof request.
type VerificationResult struct {
	RequestID  string     `json:"request_id"`
	Status     string     `json:"status"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// Client is the contract for the identity verification service.
type Client interface {
	// RequestProof asks the verifier to create a proof request for a user.
	RequestProof(ctx context.Context, userID string) (*ProofRequest, error)

	// GetVerificationResult fetches the current result of a proof request.
	GetVerificationResult(ctx context.Context, requestID string) (*VerificationResult, error)
}

// HTTPClient talks to the verifier over its JSON HTTP API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates an identity verifier client.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// RequestProof asks the verifier to create a proof request for a user.
func (c *HTTPClient) RequestProof(ctx context.Context, userID string) (*ProofRequest, error) {
	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal proof request: %w", err)
	}

	var result ProofRequest
	if err := c.do(ctx, http.MethodPost, "/proof-requests", bytes.NewReader(body), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetVerificationResult fetches the current result of a proof request.
func (c *HTTPClient) GetVerificationResult(ctx context.Context, requestID string) (*VerificationResult, error) {
	var result VerificationResult
	path := "/verification-results/" + requestID
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body *bytes.Reader, out interface{}) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to build verifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("verifier request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("verifier returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode verifier response: %w", err)
	}
	return nil
}
