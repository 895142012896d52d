package application

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/cache"
	"github.com/ceavinrufus/stay-backend/internal/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequestProof(t *testing.T) {
	ctx := context.Background()
	client := new(mockIdentityClient)
	store := new(mockSessionStore)
	svc := NewIdentityService(client, store, 10*time.Millisecond, time.Second, zap.NewNop())

	userID := uuid.New()
	expires := time.Now().UTC().Add(10 * time.Minute)
	client.On("RequestProof", ctx, userID.String()).Return(&identity.ProofRequest{
		RequestID: "req-123",
		Payload:   json.RawMessage(`{"challenge":"abc"}`),
		ExpiresAt: expires,
	}, nil)
	store.On("StoreVerificationSession", ctx, mock.Anything, sessionTTL).Return(nil)

	dto, err := svc.RequestProof(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "req-123", dto.RequestID)
	assert.NotEmpty(t, dto.SessionID)
	assert.True(t, strings.HasPrefix(dto.QRCode, "data:image/png;base64,"))
	assert.Equal(t, expires, dto.ExpiresAt)
	store.AssertExpectations(t)
}

func TestAwaitResult(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	session := &cache.VerificationSession{
		ID:        "sess-1",
		UserID:    userID.String(),
		RequestID: "req-123",
		CreatedAt: time.Now().UTC(),
	}

	t.Run("returns once the verifier reaches a decision", func(t *testing.T) {
		client := new(mockIdentityClient)
		store := new(mockSessionStore)
		svc := NewIdentityService(client, store, 5*time.Millisecond, time.Second, zap.NewNop())

		store.On("GetVerificationSession", ctx, "sess-1").Return(session, nil)
		verifiedAt := time.Now().UTC()
		client.On("GetVerificationResult", ctx, "req-123").Return(&identity.VerificationResult{
			RequestID: "req-123", Status: identity.ResultPending,
		}, nil).Twice()
		client.On("GetVerificationResult", ctx, "req-123").Return(&identity.VerificationResult{
			RequestID: "req-123", Status: identity.ResultVerified, VerifiedAt: &verifiedAt,
		}, nil).Once()
		store.On("DeleteVerificationSession", ctx, "sess-1").Return(nil)

		dto, err := svc.AwaitResult(ctx, "sess-1", userID)
		require.NoError(t, err)
		assert.Equal(t, identity.ResultVerified, dto.Status)
		assert.Equal(t, &verifiedAt, dto.VerifiedAt)
		store.AssertExpectations(t)
	})

	t.Run("times out when the verifier never decides", func(t *testing.T) {
		client := new(mockIdentityClient)
		store := new(mockSessionStore)
		svc := NewIdentityService(client, store, 5*time.Millisecond, 30*time.Millisecond, zap.NewNop())

		store.On("GetVerificationSession", ctx, "sess-1").Return(session, nil)
		client.On("GetVerificationResult", ctx, "req-123").Return(&identity.VerificationResult{
			RequestID: "req-123", Status: identity.ResultPending,
		}, nil)

		_, err := svc.AwaitResult(ctx, "sess-1", userID)
		require.ErrorIs(t, err, ErrVerificationTimeout)
	})

	t.Run("rejects sessions owned by another user", func(t *testing.T) {
		client := new(mockIdentityClient)
		store := new(mockSessionStore)
		svc := NewIdentityService(client, store, 5*time.Millisecond, time.Second, zap.NewNop())

		store.On("GetVerificationSession", ctx, "sess-1").Return(session, nil)

		_, err := svc.AwaitResult(ctx, "sess-1", uuid.New())
		require.Error(t, err)
		client.AssertNotCalled(t, "GetVerificationResult", mock.Anything, mock.Anything)
	})

	t.Run("unknown session maps to not found", func(t *testing.T) {
		client := new(mockIdentityClient)
		store := new(mockSessionStore)
		svc := NewIdentityService(client, store, 5*time.Millisecond, time.Second, zap.NewNop())

		store.On("GetVerificationSession", ctx, "missing").Return(nil, cache.ErrSessionNotFound)

		_, err := svc.AwaitResult(ctx, "missing", userID)
		require.Error(t, err)
	})
}
