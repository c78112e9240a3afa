package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"post-manager/domain/model"
	"post-manager/domain/repository"
)

const (
	KeyAccessToken = "linkedin_access_token"
	KeyTokenExpiry = "linkedin_token_expiry"
	KeyManualToken = "linkedin_manual_token"
	KeyAuthState   = "linkedin_auth_state"
)

// TokenStore maps credentials and the OAuth nonce onto a key/value store.
// A manual token takes precedence over an OAuth token when both are present.
type TokenStore struct {
	kv     repository.IKeyValueStore
	prefix string
}

func NewTokenStore(kv repository.IKeyValueStore, prefix string) *TokenStore {
	return &TokenStore{kv: kv, prefix: prefix}
}

func (s *TokenStore) key(k string) string { return s.prefix + k }

func (s *TokenStore) get(ctx context.Context, k string) (string, error) {
	v, err := s.kv.Get(ctx, s.key(k))
	if errors.Is(err, repository.ErrKeyNotFound) {
		return "", nil
	}
	return v, err
}

func (s *TokenStore) LoadCredential(ctx context.Context) (*model.Credential, error) {
	manual, err := s.get(ctx, KeyManualToken)
	if err != nil {
		return nil, fmt.Errorf("load manual token: %w", err)
	}
	cred := &model.Credential{AccessToken: manual, Origin: model.OriginManual}
	if manual == "" {
		access, err := s.get(ctx, KeyAccessToken)
		if err != nil {
			return nil, fmt.Errorf("load access token: %w", err)
		}
		if access == "" {
			return nil, nil
		}
		cred = &model.Credential{AccessToken: access, Origin: model.OriginOAuth}
	}

	expiry, err := s.get(ctx, KeyTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("load token expiry: %w", err)
	}
	if ms, perr := strconv.ParseInt(strings.TrimSpace(expiry), 10, 64); perr == nil && ms > 0 {
		cred.ExpiresAt = time.UnixMilli(ms)
	}
	return cred, nil
}

// SaveCredential writes cred and removes the token of the other origin.
func (s *TokenStore) SaveCredential(ctx context.Context, cred *model.Credential) error {
	if cred == nil || cred.AccessToken == "" {
		return model.ErrEmptyToken
	}
	tokenKey, staleKey := KeyAccessToken, KeyManualToken
	if cred.Origin == model.OriginManual {
		tokenKey, staleKey = KeyManualToken, KeyAccessToken
	}
	if err := s.kv.Delete(ctx, s.key(staleKey)); err != nil {
		return fmt.Errorf("clear superseded token: %w", err)
	}
	if err := s.kv.Set(ctx, s.key(tokenKey), cred.AccessToken); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if cred.ExpiresAt.IsZero() {
		return s.kv.Delete(ctx, s.key(KeyTokenExpiry))
	}
	if err := s.kv.Set(ctx, s.key(KeyTokenExpiry), strconv.FormatInt(cred.ExpiresAt.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("save token expiry: %w", err)
	}
	return nil
}

func (s *TokenStore) ClearCredential(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key(KeyAccessToken), s.key(KeyTokenExpiry), s.key(KeyManualToken))
}

func (s *TokenStore) SaveNonce(ctx context.Context, nonce string) error {
	return s.kv.Set(ctx, s.key(KeyAuthState), nonce)
}

func (s *TokenStore) TakeNonce(ctx context.Context) (string, error) {
	nonce, err := s.get(ctx, KeyAuthState)
	if err != nil {
		return "", fmt.Errorf("load auth state: %w", err)
	}
	if err := s.kv.Delete(ctx, s.key(KeyAuthState)); err != nil {
		return "", fmt.Errorf("consume auth state: %w", err)
	}
	return nonce, nil
}

func (s *TokenStore) HasNonce(ctx context.Context) (bool, error) {
	nonce, err := s.get(ctx, KeyAuthState)
	return nonce != "", err
}

func (s *TokenStore) ClearNonce(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key(KeyAuthState))
}
