package application

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/cache"
	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/identity"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// ErrVerificationTimeout is returned when polling for a verification result
// exceeds the configured deadline without the verifier reaching a decision.
var ErrVerificationTimeout = errors.New("identity verification timed out")

const sessionTTL = 15 * time.Minute

// SessionStore persists in-flight verification sessions.
type SessionStore interface {
	StoreVerificationSession(ctx context.Context, session cache.VerificationSession, ttl time.Duration) error
	GetVerificationSession(ctx context.Context, id string) (*cache.VerificationSession, error)
	DeleteVerificationSession(ctx context.Context, id string) error
}

// ProofRequestDTO is what the guest's browser needs to start wallet verification.
type ProofRequestDTO struct {
	SessionID string    `json:"session_id"`
	RequestID string    `json:"request_id"`
	QRCode    string    `json:"qr_code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerificationResultDTO is the current outcome of a verification session.
type VerificationResultDTO struct {
	SessionID  string     `json:"session_id"`
	Status     string     `json:"status"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// IdentityService orchestrates the guest identity verification flow against
// the external verifier.
type IdentityService struct {
	client       identity.Client
	sessions     SessionStore
	logger       *zap.Logger
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(
	client identity.Client,
	sessions SessionStore,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	logger *zap.Logger,
) *IdentityService {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if pollTimeout <= 0 {
		pollTimeout = 2 * time.Minute
	}
	return &IdentityService{
		client:       client,
		sessions:     sessions,
		logger:       logger,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

// RequestProof asks the verifier for a proof request and renders its payload
// into a QR code the guest scans with their wallet. The session ties the
// verifier's request ID to the user for later polling.
func (s *IdentityService) RequestProof(ctx context.Context, userID uuid.UUID) (*ProofRequestDTO, error) {
	proof, err := s.client.RequestProof(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to request proof: %w", err)
	}

	png, err := qrcode.Encode(string(proof.Payload), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to render proof QR code: %w", err)
	}

	session := cache.VerificationSession{
		ID:        uuid.NewString(),
		UserID:    userID.String(),
		RequestID: proof.RequestID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.StoreVerificationSession(ctx, session, sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store verification session: %w", err)
	}

	return &ProofRequestDTO{
		SessionID: session.ID,
		RequestID: proof.RequestID,
		QRCode:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		ExpiresAt: proof.ExpiresAt,
	}, nil
}

// GetResult fetches the current verification outcome for a session.
func (s *IdentityService) GetResult(ctx context.Context, sessionID string, userID uuid.UUID) (*VerificationResultDTO, error) {
	session, err := s.loadSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetVerificationResult(ctx, session.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch verification result: %w", err)
	}

	return &VerificationResultDTO{
		SessionID:  sessionID,
		Status:     result.Status,
		VerifiedAt: result.VerifiedAt,
	}, nil
}

// AwaitResult polls the verifier until the session reaches a terminal status
// or the timeout elapses. Terminal sessions are cleaned up.
func (s *IdentityService) AwaitResult(ctx context.Context, sessionID string, userID uuid.UUID) (*VerificationResultDTO, error) {
	session, err := s.loadSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	deadline := time.NewTimer(s.pollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		result, err := s.client.GetVerificationResult(ctx, session.RequestID)
		if err != nil {
			s.logger.Warn("verification poll failed, retrying",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		} else if result.Status != identity.ResultPending {
			if err := s.sessions.DeleteVerificationSession(ctx, sessionID); err != nil {
				s.logger.Warn("failed to delete verification session",
					zap.String("session_id", sessionID),
					zap.Error(err),
				)
			}
			return &VerificationResultDTO{
				SessionID:  sessionID,
				Status:     result.Status,
				VerifiedAt: result.VerifiedAt,
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrVerificationTimeout
		case <-ticker.C:
		}
	}
}

func (s *IdentityService) loadSession(ctx context.Context, sessionID string, userID uuid.UUID) (*cache.VerificationSession, error) {
	session, err := s.sessions.GetVerificationSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return nil, domain.NewNotFoundError("VerificationSession", sessionID)
		}
		return nil, err
	}
	if session.UserID != userID.String() {
		return nil, domain.NewForbiddenError("verification session does not belong to this user")
	}
	return session, nil
}
