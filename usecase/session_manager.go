package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"post-manager/domain/dto"
	"post-manager/domain/model"
	"post-manager/domain/repository"
	"post-manager/infrastructure/logger"
	"post-manager/infrastructure/utils"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
)

const (
	nonceLength          = 16
	defaultManualTTL     = 24 * time.Hour
	defaultExchangeTTL   = time.Hour
	sessionEventType     = "session_state"
	reasonLogin          = "login"
	reasonManualToken    = "manual_token"
	reasonLogout         = "logout"
	reasonExpired        = "expired"
	reasonProviderError  = "provider_error"
	reasonStateMismatch  = "state_mismatch"
	reasonExchangeFailed = "exchange_failed"
	reasonPending        = "pending_callback"
	reasonRefresh        = "refresh"
)

type ISessionManager interface {
	IsAuthenticated(ctx context.Context) bool
	BeginLogin(ctx context.Context) (string, error)
	CompleteLoginFromCallback(ctx context.Context, query dto.CallbackQuery) error
	ExchangeCodeForToken(ctx context.Context, code string) (*model.Credential, error)
	SetManualToken(ctx context.Context, token string, ttl time.Duration) error
	Logout(ctx context.Context) error
	GetToken(ctx context.Context) (string, bool)
	Current(ctx context.Context) (*model.Credential, bool)
	State(ctx context.Context) model.SessionState
	Refresh(ctx context.Context) model.SessionState
	Snapshot(ctx context.Context) model.SessionEvent
	Subscribe(fn func(model.SessionEvent)) (unsubscribe func())
}

// SessionOptions tunes token lifetimes. Zero values fall back to defaults.
type SessionOptions struct {
	ManualTokenTTL time.Duration
	DefaultExpiry  time.Duration
}

// SessionManager owns the authorization code flow and the credential lifecycle.
// The token store is the source of truth and is re-read on every check.
type SessionManager struct {
	store     repository.ITokenStore
	exchanger repository.ITokenExchanger
	oauth     *oauth2.Config
	clock     clockwork.Clock
	opts      SessionOptions

	mu sync.Mutex

	listenersMu sync.Mutex
	listeners   map[int]func(model.SessionEvent)
	nextID      int
	lastState   model.SessionState
}

func NewSessionManager(
	store repository.ITokenStore,
	exchanger repository.ITokenExchanger,
	oauth *oauth2.Config,
	clock clockwork.Clock,
	opts SessionOptions,
) *SessionManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if opts.ManualTokenTTL <= 0 {
		opts.ManualTokenTTL = defaultManualTTL
	}
	if opts.DefaultExpiry <= 0 {
		opts.DefaultExpiry = defaultExchangeTTL
	}
	return &SessionManager{
		store:     store,
		exchanger: exchanger,
		oauth:     oauth,
		clock:     clock,
		opts:      opts,
		listeners: map[int]func(model.SessionEvent){},
		lastState: model.SessionLoggedOut,
	}
}

func (s *SessionManager) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Current(ctx)
	return ok
}

// Current returns the valid credential. An expired credential is cleared as a side effect.
func (s *SessionManager) Current(ctx context.Context) (*model.Credential, bool) {
	s.mu.Lock()
	cred, evt := s.currentLocked(ctx)
	s.mu.Unlock()
	s.publish(evt)
	return cred, cred != nil
}

func (s *SessionManager) currentLocked(ctx context.Context) (*model.Credential, *model.SessionEvent) {
	lg := logger.GetLogger()
	cred, err := s.store.LoadCredential(ctx)
	if err != nil {
		lg.WithField("error", err).Error("Failed loading credential")
		return nil, nil
	}
	if cred == nil {
		return nil, nil
	}
	now := s.clock.Now()
	if cred.ExpiresAt.IsZero() {
		if cred.Origin != model.OriginManual {
			lg.Warn("Stored access token has no expiry, treating it as expired")
			return nil, s.clearLocked(ctx, reasonExpired)
		}
		cred.ExpiresAt = now.Add(s.opts.ManualTokenTTL)
		if err := s.store.SaveCredential(ctx, cred); err != nil {
			lg.WithField("error", err).Warn("Failed persisting default expiry for manual token")
		}
		lg.WithField("expiresAt", cred.ExpiresAt).Info("Manual token had no expiry, applied default")
	}
	if cred.Expired(now) {
		lg.WithFields(map[string]interface{}{
			"origin":    cred.Origin,
			"expiresAt": cred.ExpiresAt,
		}).Info("Access token expired, logging out")
		return nil, s.clearLocked(ctx, reasonExpired)
	}
	return cred, nil
}

func (s *SessionManager) GetToken(ctx context.Context) (string, bool) {
	cred, ok := s.Current(ctx)
	if !ok {
		return "", false
	}
	return cred.AccessToken, true
}

// BeginLogin stores a fresh nonce and returns the authorization URL to send the browser to.
func (s *SessionManager) BeginLogin(ctx context.Context) (string, error) {
	nonce, err := utils.RandomState(nonceLength)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	err = s.store.SaveNonce(ctx, nonce)
	s.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("persist auth state: %w", err)
	}

	authURL := s.oauth.AuthCodeURL(nonce)
	logger.GetLogger().WithField("redirectUri", s.oauth.RedirectURL).Info("Starting LinkedIn login")
	s.publish(s.event(model.SessionPendingCallback, reasonPending, nil))
	return authURL, nil
}

// CompleteLoginFromCallback validates the redirect back from the provider.
// A provider error or a missing code is not an error for the caller.
func (s *SessionManager) CompleteLoginFromCallback(ctx context.Context, query dto.CallbackQuery) error {
	lg := logger.GetLogger()

	if query.Error != "" {
		lg.WithFields(map[string]interface{}{
			"error":             query.Error,
			"error_description": query.ErrorDescription,
		}).Warn("LinkedIn authorization returned an error")
		s.mu.Lock()
		err := s.store.ClearNonce(ctx)
		s.mu.Unlock()
		if err != nil {
			lg.WithField("error", err).Warn("Failed clearing auth state")
		}
		s.publish(s.settledEvent(ctx, reasonProviderError))
		return nil
	}
	if query.Code == "" {
		return nil
	}

	s.mu.Lock()
	stored, err := s.store.TakeNonce(ctx)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("consume auth state: %w", err)
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(query.State)) != 1 {
		lg.WithField("hasStoredState", stored != "").Error("OAuth state mismatch, possible CSRF attack")
		s.publish(s.settledEvent(ctx, reasonStateMismatch))
		return model.ErrAuthStateMismatch
	}

	_, err = s.ExchangeCodeForToken(ctx, query.Code)
	return err
}

func (s *SessionManager) ExchangeCodeForToken(ctx context.Context, code string) (*model.Credential, error) {
	lg := logger.GetLogger()

	res, err := s.exchanger.Exchange(ctx, code, s.oauth.RedirectURL)
	if err == nil && strings.TrimSpace(res.Token()) == "" {
		err = model.ErrEmptyToken
	}
	if err != nil {
		lg.WithField("error", err).Error("Error exchanging code for token")
		s.publish(s.settledEvent(ctx, reasonExchangeFailed))
		return nil, &model.ExchangeError{Err: err}
	}

	ttl := time.Duration(res.ExpiresIn()) * time.Second
	if ttl <= 0 {
		ttl = s.opts.DefaultExpiry
	}
	cred := &model.Credential{
		AccessToken: res.Token(),
		ExpiresAt:   s.clock.Now().Add(ttl),
		Origin:      model.OriginOAuth,
	}

	s.mu.Lock()
	err = s.store.SaveCredential(ctx, cred)
	s.mu.Unlock()
	if err != nil {
		lg.WithField("error", err).Error("Failed storing access token")
		return nil, &model.ExchangeError{Err: err}
	}

	lg.WithFields(map[string]interface{}{
		"token":     logger.MaskToken(cred.AccessToken),
		"expiresAt": cred.ExpiresAt,
	}).Info("LinkedIn login completed")
	s.publish(s.event(model.SessionLoggedIn, reasonLogin, cred))
	return cred, nil
}

// SetManualToken stores a pasted token, replacing any OAuth credential.
func (s *SessionManager) SetManualToken(ctx context.Context, token string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.ErrEmptyToken
	}
	if ttl <= 0 {
		ttl = s.opts.ManualTokenTTL
	}
	cred := &model.Credential{
		AccessToken: token,
		ExpiresAt:   s.clock.Now().Add(ttl),
		Origin:      model.OriginManual,
	}

	s.mu.Lock()
	err := s.store.SaveCredential(ctx, cred)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("store manual token: %w", err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"token":     logger.MaskToken(token),
		"expiresAt": cred.ExpiresAt,
	}).Info("Manual access token set")
	s.publish(s.event(model.SessionLoggedIn, reasonManualToken, cred))
	return nil
}

func (s *SessionManager) Logout(ctx context.Context) error {
	s.mu.Lock()
	err := errors.Join(s.store.ClearCredential(ctx), s.store.ClearNonce(ctx))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.publish(s.event(model.SessionLoggedOut, reasonLogout, nil))
	return nil
}

// clearLocked drops credential and nonce after expiry. Caller holds s.mu.
func (s *SessionManager) clearLocked(ctx context.Context, reason string) *model.SessionEvent {
	if err := errors.Join(s.store.ClearCredential(ctx), s.store.ClearNonce(ctx)); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed clearing session state")
	}
	return s.event(model.SessionLoggedOut, reason, nil)
}

func (s *SessionManager) State(ctx context.Context) model.SessionState {
	if s.IsAuthenticated(ctx) {
		return model.SessionLoggedIn
	}
	s.mu.Lock()
	pending, err := s.store.HasNonce(ctx)
	s.mu.Unlock()
	if err == nil && pending {
		return model.SessionPendingCallback
	}
	return model.SessionLoggedOut
}

// Refresh re-reads the store and notifies subscribers when the state moved
// underneath us, for example after another tab logged in or out.
func (s *SessionManager) Refresh(ctx context.Context) model.SessionState {
	state := s.State(ctx)
	s.listenersMu.Lock()
	changed := state != s.lastState
	s.listenersMu.Unlock()
	if changed {
		var cred *model.Credential
		if state == model.SessionLoggedIn {
			cred, _ = s.Current(ctx)
		}
		s.publish(s.event(state, reasonRefresh, cred))
	}
	return state
}

// Snapshot is the current state as an event, used to prime new subscribers.
func (s *SessionManager) Snapshot(ctx context.Context) model.SessionEvent {
	state := s.State(ctx)
	var cred *model.Credential
	if state == model.SessionLoggedIn {
		cred, _ = s.Current(ctx)
	}
	return *s.event(state, "", cred)
}

func (s *SessionManager) Subscribe(fn func(model.SessionEvent)) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()
	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *SessionManager) event(state model.SessionState, reason string, cred *model.Credential) *model.SessionEvent {
	evt := &model.SessionEvent{
		Type:   sessionEventType,
		State:  state,
		Reason: reason,
		At:     s.clock.Now(),
	}
	if cred != nil {
		exp := cred.ExpiresAt
		evt.Origin = cred.Origin
		evt.ExpiresAt = &exp
	}
	return evt
}

// settledEvent reports the state left behind by a failed login attempt.
// A still valid credential keeps the session logged in.
func (s *SessionManager) settledEvent(ctx context.Context, reason string) *model.SessionEvent {
	if cred, ok := s.Current(ctx); ok {
		return s.event(model.SessionLoggedIn, reason, cred)
	}
	return s.event(s.State(ctx), reason, nil)
}

func (s *SessionManager) publish(evt *model.SessionEvent) {
	if evt == nil {
		return
	}
	s.listenersMu.Lock()
	s.lastState = evt.State
	fns := make([]func(model.SessionEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()
	for _, fn := range fns {
		fn(*evt)
	}
}
