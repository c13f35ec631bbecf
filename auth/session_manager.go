package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/orderdesk/go-chatbot-client/authstate"
	"github.com/orderdesk/go-chatbot-client/credentials"
	"github.com/orderdesk/go-chatbot-client/httpclient"
	"github.com/orderdesk/go-chatbot-client/sessions"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	logoutPath   = "/api/auth/logout"
)

// Deps holds all dependencies for the SessionManager.
type Deps struct {
	Store  credentials.Store     // Durable credential storage
	Client *httpclient.Client    // Shared API client
	State  *authstate.Broadcaster // Auth-state fan-out
}

// SessionManager owns the authentication lifecycle: restore on startup,
// login, register and logout. It is the only writer to the credential store;
// consumers observe the result through the broadcaster. All credential-
// mutating operations are serialized by an internal mutex, so at most one is
// in flight at a time.
type SessionManager struct {
	deps      Deps
	validator *Validator
	nowTime   func() time.Time // nowTime function (injectable for testing)

	mu sync.Mutex
}

// SessionManagerOption defines a function type to modify the SessionManager.
type SessionManagerOption func(*SessionManager)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		m.nowTime = nowFunc
	}
}

// NewSessionManager initializes a SessionManager with required dependencies.
func NewSessionManager(deps Deps, options ...SessionManagerOption) (*SessionManager, error) {
	if deps.Store == nil {
		return nil, errors.New("[NewSessionManager] Store is required")
	}
	if deps.Client == nil {
		return nil, errors.New("[NewSessionManager] Client is required")
	}
	if deps.State == nil {
		return nil, errors.New("[NewSessionManager] State broadcaster is required")
	}

	manager := &SessionManager{
		deps:      deps,
		validator: NewValidator(),
		nowTime:   time.Now,
	}

	for _, opt := range options {
		opt(manager)
	}

	return manager, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Restore reads the persisted credentials and publishes the resulting state.
// Both slots present and well-formed means authenticated; anything else —
// empty, partial or malformed — means unauthenticated. No network call is
// made. Intended to run exactly once at process start.
func (m *SessionManager) Restore() authstate.AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := authstate.AuthState{}

	token := m.readSlot(credentials.TokenKey)
	userRaw := m.readSlot(credentials.UserKey)

	switch {
	case token != "" && userRaw != "":
		session, err := sessions.Decode([]byte(userRaw))
		if err != nil {
			log.Warn().Err(err).Msg("Malformed persisted user record, treating as absent")
		} else if session.Expired(m.nowTime()) {
			log.Info().Time("expiredAt", session.ExpiresAt()).Msg("Persisted session has expired, treating as unauthenticated")
		} else {
			// The token slot is authoritative; keep the session consistent
			// with the header that will be sent.
			session.Token = token
			state = authstate.AuthState{IsAuthenticated: true, User: session}
		}
	case token != "" || userRaw != "":
		log.Warn().Msg("Partial credential state found, treating as unauthenticated")
	}

	m.deps.State.Publish(state)
	return state
}

// Login authenticates with the backend and establishes a session. Inputs are
// validated before any network call. On success the token and user record
// are persisted and the new state is broadcast. On any failure nothing is
// written and the previous state stands.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*sessions.Session, error) {
	if err := m.validator.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var session sessions.Session
	if err := m.deps.Client.PostJSON(ctx, loginPath, loginRequest{Email: email, Password: password}, &session); err != nil {
		return nil, err
	}

	if err := m.establish(&session); err != nil {
		return nil, err
	}
	log.Debug().Str("email", session.Email).Msg("Login succeeded")
	return &session, nil
}

// Register creates an account and, like a successful login, establishes a
// session.
func (m *SessionManager) Register(ctx context.Context, email, password, firstName, lastName string) (*sessions.Session, error) {
	if err := m.validator.ValidateRegistration(email, password, firstName, lastName); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	req := registerRequest{Email: email, Password: password, FirstName: firstName, LastName: lastName}
	var session sessions.Session
	if err := m.deps.Client.PostJSON(ctx, registerPath, req, &session); err != nil {
		return nil, err
	}

	if err := m.establish(&session); err != nil {
		return nil, err
	}
	log.Debug().Str("email", session.Email).Msg("Registration succeeded")
	return &session, nil
}

// Logout tears the local session down unconditionally. The remote logout
// call is best effort: a failure is logged and swallowed, never surfaced.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deps.State.Token() != "" {
		if err := m.deps.Client.PostJSON(ctx, logoutPath, nil, nil); err != nil {
			log.Warn().Err(err).Msg("Remote logout failed, clearing local session anyway")
		}
	}

	if err := m.deps.Store.Remove(credentials.TokenKey); err != nil {
		log.Warn().Err(err).Msg("Failed to remove token slot")
	}
	if err := m.deps.Store.Remove(credentials.UserKey); err != nil {
		log.Warn().Err(err).Msg("Failed to remove user slot")
	}

	m.deps.State.Publish(authstate.AuthState{})
}

// CurrentSession returns the active session, or nil when unauthenticated.
func (m *SessionManager) CurrentSession() *sessions.Session {
	return m.deps.State.Current().User
}

// IsAuthenticated reports whether a session is active.
func (m *SessionManager) IsAuthenticated() bool {
	return m.deps.State.Current().IsAuthenticated
}

// establish persists the session and broadcasts the authenticated state.
// Callers hold the mutex. Writes aim for both-or-neither: a failed user
// write rolls the token slot back.
func (m *SessionManager) establish(session *sessions.Session) error {
	encoded, err := session.Encode()
	if err != nil {
		return errors.Wrap(err, "[SessionManager.establish] encode session")
	}

	if err := m.deps.Store.Set(credentials.TokenKey, session.Token); err != nil {
		return errors.Wrap(err, "[SessionManager.establish] persist token")
	}
	if err := m.deps.Store.Set(credentials.UserKey, encoded); err != nil {
		if removeErr := m.deps.Store.Remove(credentials.TokenKey); removeErr != nil {
			log.Warn().Err(removeErr).Msg("Failed to roll back token slot")
		}
		return errors.Wrap(err, "[SessionManager.establish] persist user record")
	}

	m.deps.State.Publish(authstate.AuthState{IsAuthenticated: true, User: session})
	return nil
}

func (m *SessionManager) readSlot(key string) string {
	value, err := m.deps.Store.Get(key)
	if err != nil {
		if !errors.Is(err, credentials.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("Failed to read credential slot, treating as absent")
		}
		return ""
	}
	return value
}
