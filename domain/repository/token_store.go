package repository

import (
	"context"

	"post-manager/domain/model"
)

// ITokenStore persists the credential and the pending OAuth nonce. It applies no policy.
type ITokenStore interface {
	// LoadCredential returns nil when no credential is stored.
	LoadCredential(ctx context.Context) (*model.Credential, error)
	SaveCredential(ctx context.Context, cred *model.Credential) error
	ClearCredential(ctx context.Context) error

	SaveNonce(ctx context.Context, nonce string) error
	// TakeNonce returns the stored nonce and removes it in the same call.
	TakeNonce(ctx context.Context) (string, error)
	HasNonce(ctx context.Context) (bool, error)
	ClearNonce(ctx context.Context) error
}
