package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
)

// Refresh exchanges a refresh token for a new access token and a new refresh
// token. The presented token is consumed: of two concurrent calls with the
// same token only one succeeds, the other gets ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	log := logging.FromContext(ctx, s.log)

	lookupKey, secret, err := auth.SplitRefreshToken(presented)
	if err != nil {
		return nil, err
	}

	stored, err := s.refresh.Find(ctx, lookupKey)
	if errors.Is(err, common.ErrorNotFound) {
		log.Info(ctx, "refresh rejected", "reason", "unknown lookup key")
		return nil, common.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, internalError(ctx, s.log, "finding refresh token", err)
	}

	if !s.hasher.Verify(secret, stored.SecretHash) {
		log.Warn(ctx, "refresh rejected", "reason", "secret mismatch", "user_id", stored.UserID)
		return nil, common.ErrInvalidRefreshToken
	}
	if stored.Expired(s.now()) {
		log.Info(ctx, "refresh rejected", "reason", "expired", "user_id", stored.UserID)
		return nil, common.ErrRefreshTokenExpired
	}

	next, err := s.newRefreshRecord(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	err = s.refresh.Rotate(ctx, lookupKey, next.record)
	if errors.Is(err, common.ErrorNotFound) {
		log.Warn(ctx, "refresh rejected", "reason", "already rotated", "user_id", stored.UserID)
		return nil, common.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, internalError(ctx, s.log, "rotating refresh token", err, "user_id", stored.UserID)
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, internalError(ctx, s.log, "loading refreshed user", err, "user_id", stored.UserID)
	}

	pair, err := s.issueAccess(ctx, user)
	if err != nil {
		return nil, err
	}
	pair.RefreshToken = next.token

	log.Info(ctx, "refresh succeeded", "user_id", user.ID)
	return pair, nil
}
