package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/buytown/admin-console/internal/backend"
	"github.com/buytown/admin-console/internal/storage"
)

// mintTimeout bounds a service token mint once no caller is waiting on it.
const mintTimeout = 30 * time.Second

type Config struct {
	ClientID        string
	ClientSecret    string
	ServiceTokenTTL time.Duration
}

// Manager owns the service token and the administrator session. It is the only
// writer of the shared backend credentials.
type Manager struct {
	api          API
	store        storage.Store
	creds        *backend.Credentials
	logger       *zap.Logger
	clientID     string
	clientSecret string
	ttl          time.Duration
	nowFunc      func() time.Time

	mint singleflight.Group
	bg   sync.WaitGroup

	mu          sync.Mutex
	state       State
	userToken   string
	generation  uint64
	subscribers map[int]func(State)
	nextSub     int
}

func NewManager(api API, store storage.Store, creds *backend.Credentials, cfg Config, logger *zap.Logger) (*Manager, error) {
	if api == nil {
		return nil, fmt.Errorf("backend API is required")
	}
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client id and secret are required")
	}
	if creds == nil {
		creds = backend.NewCredentials()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.ServiceTokenTTL
	if ttl <= 0 {
		ttl = ServiceTokenTTL
	}

	return &Manager{
		api:          api,
		store:        store,
		creds:        creds,
		logger:       logger.Named("auth"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		ttl:          ttl,
		nowFunc:      time.Now,
		state:        initialState(),
		subscribers:  make(map[int]func(State)),
	}, nil
}

// State returns a copy of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

func (m *Manager) IsAuthenticated() bool {
	return m.State().IsAuthenticated
}

func (m *Manager) Loading() bool {
	return m.State().Loading
}

// Subscribe registers fn to be called with every session transition. The
// returned func removes the subscription.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// Wait blocks until background work started by RestoreSession has finished.
func (m *Manager) Wait() {
	m.bg.Wait()
}

// update applies fn to the state and notifies subscribers. It is a no-op when
// ctx is already done, so late results never land on a torn-down caller.
func (m *Manager) update(ctx context.Context, fn func(*State)) bool {
	return m.updateIf(ctx, func() bool { return true }, fn)
}

// updateIf is update guarded by current, which runs under the state lock.
func (m *Manager) updateIf(ctx context.Context, current func() bool, fn func(*State)) bool {
	if ctx.Err() != nil {
		return false
	}
	m.mu.Lock()
	if !current() {
		m.mu.Unlock()
		return false
	}
	fn(&m.state)
	snapshot := m.state.clone()
	subs := make([]func(State), 0, len(m.subscribers))
	for i := 0; i < m.nextSub; i++ {
		if sub, ok := m.subscribers[i]; ok {
			subs = append(subs, sub)
		}
	}
	m.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
	return true
}

// AcquireServiceToken returns the persisted service token while it is still
// valid and mints a new one otherwise. Failures are returned without retrying.
func (m *Manager) AcquireServiceToken(ctx context.Context) (ServiceToken, error) {
	tok, err := m.acquireServiceToken(ctx)
	if err != nil {
		return ServiceToken{}, err
	}
	m.applyServiceToken(tok)
	return tok, nil
}

func (m *Manager) acquireServiceToken(ctx context.Context) (ServiceToken, error) {
	if tok, ok := m.persistedServiceToken(ctx); ok {
		return tok, nil
	}

	// The flight outlives whichever caller started it; each caller stops
	// waiting on its own ctx.
	ch := m.mint.DoChan("service-token", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mintTimeout)
		defer cancel()
		// a concurrent caller may have minted while we waited
		if tok, ok := m.persistedServiceToken(ctx); ok {
			return tok, nil
		}

		value, err := m.api.GenerateToken(ctx, m.clientID, m.clientSecret)
		if err != nil {
			return nil, fromBackend(KindCredentialExchange, "could not obtain API token", err)
		}
		if value == "" {
			return nil, newError(KindCredentialExchange, "no API token received", nil)
		}

		tok := ServiceToken{
			Value:     value,
			ExpiresAt: time.UnixMilli(m.nowFunc().Add(m.ttl).UnixMilli()),
		}
		if err := m.persistServiceToken(ctx, tok); err != nil {
			return nil, newError(KindCredentialExchange, "could not store API token", err)
		}
		m.logger.Debug("minted service token", zap.Time("expires_at", tok.ExpiresAt))
		return tok, nil
	})

	select {
	case <-ctx.Done():
		return ServiceToken{}, newError(KindCredentialExchange, "could not obtain API token", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return ServiceToken{}, res.Err
		}
		return res.Val.(ServiceToken), nil
	}
}

func (m *Manager) persistedServiceToken(ctx context.Context) (ServiceToken, bool) {
	value, ok, err := m.store.Get(ctx, storage.KeyAPIToken)
	if err != nil {
		m.logger.Warn("read service token", zap.Error(err))
		return ServiceToken{}, false
	}
	if !ok || value == "" {
		return ServiceToken{}, false
	}
	rawExpiry, ok, err := m.store.Get(ctx, storage.KeyAPITokenExpiry)
	if err != nil || !ok {
		return ServiceToken{}, false
	}
	ms, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return ServiceToken{}, false
	}

	tok := ServiceToken{Value: value, ExpiresAt: time.UnixMilli(ms)}
	if !tok.Valid(m.nowFunc()) {
		return ServiceToken{}, false
	}
	return tok, true
}

// persistServiceToken writes the value before the expiry so a partial write can
// only shorten a token's life, never extend it.
func (m *Manager) persistServiceToken(ctx context.Context, tok ServiceToken) error {
	if err := m.store.Set(ctx, storage.KeyAPIToken, tok.Value); err != nil {
		return err
	}
	return m.store.Set(ctx, storage.KeyAPITokenExpiry, strconv.FormatInt(tok.ExpiresAt.UnixMilli(), 10))
}

// applyServiceToken does not notify subscribers: a refresh is not a session
// transition.
func (m *Manager) applyServiceToken(tok ServiceToken) {
	m.mu.Lock()
	m.state.ServiceToken = &tok
	m.mu.Unlock()
	m.creds.SetServiceToken(tok.Value)
}

// Login exchanges administrator credentials for a session token. On failure
// neither storage nor state is touched.
func (m *Manager) Login(ctx context.Context, identity, password string) error {
	svc, err := m.AcquireServiceToken(ctx)
	if err != nil {
		return err
	}

	resp, err := m.api.AdminLogin(ctx, svc.Value, identity, password)
	if err != nil {
		return fromBackend(KindLoginRejected, "login failed", err)
	}
	if resp == nil || resp.AccessToken == "" {
		return newError(KindLoginRejected, "no access token received", nil)
	}

	claims, decodeErr := ClaimsOrUnknown(resp.AccessToken)
	if decodeErr != nil {
		m.logger.Debug("session token payload not decodable", zap.Error(decodeErr))
	}

	if err := m.store.Set(ctx, storage.KeyUserToken, resp.AccessToken); err != nil {
		return newError(KindLoginRejected, "could not store session", err)
	}

	m.mu.Lock()
	m.userToken = resp.AccessToken
	m.generation++
	m.mu.Unlock()
	m.creds.SetUserToken(resp.AccessToken)
	m.update(context.Background(), func(s *State) {
		s.Status = StatusAuthenticated
		s.IsAuthenticated = true
		s.User = &claims
		s.Loading = false
	})

	m.logger.Info("administrator logged in", zap.String("user_id", claims.ID))
	return nil
}

// Logout tells the backend to drop the session on a best-effort basis and then
// always tears down the local session.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.userToken
	m.mu.Unlock()
	if token == "" {
		if stored, ok, err := m.store.Get(ctx, storage.KeyUserToken); err == nil && ok {
			token = stored
		}
	}

	if token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			m.logger.Warn("logout notification failed",
				zap.Error(newError(KindLogoutNotification, "backend not notified", err)))
		}
	}

	// teardown must not be skipped because the caller gave up
	local := context.WithoutCancel(ctx)
	if err := m.store.Delete(local, storage.KeyUserToken); err != nil {
		m.logger.Error("clear stored session", zap.Error(err))
	}

	m.mu.Lock()
	m.userToken = ""
	m.generation++
	m.mu.Unlock()
	m.creds.ClearUserToken()
	m.update(context.Background(), func(s *State) {
		s.Status = StatusUnauthenticated
		s.IsAuthenticated = false
		s.User = nil
		s.Loading = false
	})
	m.logger.Info("administrator logged out")
}

// RestoreSession resolves the initial state from storage. A stored token marks
// the session authenticated first and fills in the claims second; an
// undecodable token keeps the session with an unknown identity. Loading is
// always cleared. A service token is fetched in the background; see Wait.
//
// Cancelling ctx discards any state writes that have not happened yet, and so
// does a Login or Logout that lands while the stored token is being read.
func (m *Manager) RestoreSession(ctx context.Context) {
	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()
	// called with m.mu held
	unchanged := func() bool { return m.generation == gen }

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("session restore panicked", zap.Any("panic", r))
		}
		m.update(context.Background(), func(s *State) {
			if s.Status == StatusInitializing {
				s.Status = StatusUnauthenticated
			}
			s.Loading = false
		})
	}()

	token, ok, err := m.store.Get(ctx, storage.KeyUserToken)
	if err != nil {
		m.logger.Warn("read stored session", zap.Error(err))
		ok = false
	}

	if !ok || token == "" {
		m.updateIf(ctx, unchanged, func(s *State) {
			s.Status = StatusUnauthenticated
			s.IsAuthenticated = false
			s.User = nil
		})
	} else {
		m.updateIf(ctx, unchanged, func(s *State) {
			m.userToken = token
			m.creds.SetUserToken(token)
			s.Status = StatusAuthenticated
			s.IsAuthenticated = true
			s.User = nil
		})

		claims, err := ClaimsOrUnknown(token)
		if err != nil {
			m.logger.Debug("stored session token not decodable", zap.Error(err))
		}
		m.updateIf(ctx, unchanged, func(s *State) {
			s.User = &claims
		})
	}

	m.refreshServiceTokenInBackground(ctx)
}

func (m *Manager) refreshServiceTokenInBackground(ctx context.Context) {
	m.bg.Add(1)
	go func() {
		defer m.bg.Done()
		tok, err := m.acquireServiceToken(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				m.logger.Warn("service token unavailable, continuing without it", zap.Error(err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		m.applyServiceToken(tok)
	}()
}

// ForgotPassword asks the backend to send a reset link to email.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	svc, err := m.AcquireServiceToken(ctx)
	if err != nil {
		return err
	}
	if err := m.api.ForgotPassword(ctx, svc.Value, email); err != nil {
		return fromBackend(KindRequestFailed, "could not request password reset", err)
	}
	return nil
}

// ResetPassword completes a reset started by ForgotPassword.
func (m *Manager) ResetPassword(ctx context.Context, resetToken, password string) error {
	svc, err := m.AcquireServiceToken(ctx)
	if err != nil {
		return err
	}
	if err := m.api.ResetPassword(ctx, svc.Value, resetToken, password); err != nil {
		return fromBackend(KindRequestFailed, "could not reset password", err)
	}
	return nil
}
