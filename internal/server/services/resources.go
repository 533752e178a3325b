package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
)

// FilesPath is the HTTP path prefix that serves resource tokens.
const FilesPath = "/files/"

// ObjectStore is the part of the object storage the services use.
type ObjectStore interface {
	PresignGet(ctx context.Context, key string) (string, error)
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ResourceService hands out signed, short-lived URLs for stored files.
type ResourceService struct {
	signer  *auth.Signer
	store   ObjectStore
	baseURL string
	log     logging.Logger
}

func NewResourceService(signer *auth.Signer, store ObjectStore, publicBaseURL string, log logging.Logger) *ResourceService {
	return &ResourceService{
		signer:  signer,
		store:   store,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		log:     log,
	}
}

// IssueResourceToken signs fileRef for auth.ResourceTokenTTL.
func (s *ResourceService) IssueResourceToken(fileRef string) (string, error) {
	return s.signer.SignResource(fileRef)
}

// URL returns the public file URL for fileRef.
func (s *ResourceService) URL(ctx context.Context, fileRef string) (string, error) {
	token, err := s.IssueResourceToken(fileRef)
	if err != nil {
		return "", internalError(ctx, s.log, "signing resource token", err)
	}
	return s.baseURL + FilesPath + token, nil
}

// Resolve verifies a resource token and returns a presigned download URL for
// the file it names. Bad or expired tokens are common.ErrInvalidToken.
func (s *ResourceService) Resolve(ctx context.Context, token string) (string, error) {
	fileRef, err := s.signer.VerifyResource(token)
	if err != nil {
		logging.FromContext(ctx, s.log).Warn(ctx, "resource token rejected", "error", err)
		return "", common.ErrInvalidToken
	}

	u, err := s.store.PresignGet(ctx, fileRef)
	if err != nil {
		return "", internalError(ctx, s.log, "presigning download", err)
	}
	return u, nil
}
