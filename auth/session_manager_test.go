package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orderdesk/go-chatbot-client/auth"
	"github.com/orderdesk/go-chatbot-client/authstate"
	"github.com/orderdesk/go-chatbot-client/credentials"
	"github.com/orderdesk/go-chatbot-client/credentials/storefakes"
	"github.com/orderdesk/go-chatbot-client/httpclient"
	"github.com/orderdesk/go-chatbot-client/internal/apierrors"
	"github.com/orderdesk/go-chatbot-client/sessions"
)

const (
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "password123"
	testToken        = "T"
	testFirstName    = "John"
	testLastName     = "Doe"
)

// fakeBackend simulates the auth endpoints.
type fakeBackend struct {
	mu sync.Mutex

	loginStatus  int // 0 means success
	logoutStatus int // 0 means success

	loginCalls  int
	logoutCalls int

	lastAuthHeader string
}

func (fb *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.loginCalls++
		status := fb.loginStatus
		fb.mu.Unlock()

		if status != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "Invalid credentials", "status": status})
			return
		}
		fb.writeSession(w)
	})
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		fb.writeSession(w)
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.logoutCalls++
		fb.lastAuthHeader = r.Header.Get("Authorization")
		status := fb.logoutStatus
		fb.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (fb *fakeBackend) writeSession(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sessions.Session{
		Token:      testToken,
		TokenType:  "Bearer",
		CustomerID: 1,
		Email:      testUserEmail,
		FirstName:  testFirstName,
		LastName:   testLastName,
		ExpiresIn:  time.Now().Add(time.Hour).UnixMilli(),
	})
}

type testFixture struct {
	backend *fakeBackend
	server  *httptest.Server
	store   *storefakes.FakeStore
	state   *authstate.Broadcaster
	manager *auth.SessionManager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	store := storefakes.NewFakeStore()
	state := authstate.NewBroadcaster()
	client := httpclient.New(server.URL, httpclient.WithTokenSource(state), httpclient.WithRetryAttempts(1))

	manager, err := auth.NewSessionManager(auth.Deps{Store: store, Client: client, State: state})
	require.NoError(t, err)

	return &testFixture{
		backend: backend,
		server:  server,
		store:   store,
		state:   state,
		manager: manager,
	}
}

// newManagerFor builds a fresh manager and broadcaster over an existing
// store, simulating a process restart.
func newManagerFor(t *testing.T, f *testFixture, options ...auth.SessionManagerOption) (*auth.SessionManager, *authstate.Broadcaster) {
	t.Helper()

	state := authstate.NewBroadcaster()
	client := httpclient.New(f.server.URL, httpclient.WithTokenSource(state), httpclient.WithRetryAttempts(1))
	manager, err := auth.NewSessionManager(auth.Deps{Store: f.store, Client: client, State: state}, options...)
	require.NoError(t, err)
	return manager, state
}

func TestNewSessionManager_RequiresDependencies(t *testing.T) {
	f := setupTestFixture(t)
	client := httpclient.New(f.server.URL)

	_, err := auth.NewSessionManager(auth.Deps{Client: client, State: f.state})
	require.Error(t, err)

	_, err = auth.NewSessionManager(auth.Deps{Store: f.store, State: f.state})
	require.Error(t, err)

	_, err = auth.NewSessionManager(auth.Deps{Store: f.store, Client: client})
	require.Error(t, err)
}

func TestRestore_EmptyStore(t *testing.T) {
	f := setupTestFixture(t)

	require.True(t, f.state.Current().Loading)

	state := f.manager.Restore()
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.User)
	require.False(t, state.Loading)
	require.Equal(t, state, f.state.Current())
}

func TestRestore_PartialStateIsUnauthenticated(t *testing.T) {
	t.Run("token only", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.Set(credentials.TokenKey, testToken))

		state := f.manager.Restore()
		require.False(t, state.IsAuthenticated)
		require.Nil(t, state.User)
	})

	t.Run("user only", func(t *testing.T) {
		f := setupTestFixture(t)
		session := &sessions.Session{Token: testToken, Email: testUserEmail}
		encoded, err := session.Encode()
		require.NoError(t, err)
		require.NoError(t, f.store.Set(credentials.UserKey, encoded))

		state := f.manager.Restore()
		require.False(t, state.IsAuthenticated)
		require.Nil(t, state.User)
	})
}

func TestRestore_MalformedUserRecord(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set(credentials.TokenKey, testToken))
	require.NoError(t, f.store.Set(credentials.UserKey, "{not json"))

	state := f.manager.Restore()
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.User)
	require.False(t, state.Loading)
}

func TestRestore_ExpiredSession(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	future := func() time.Time { return time.Now().Add(48 * time.Hour) }
	manager, state := newManagerFor(t, f, auth.WithNowTime(future))

	restored := manager.Restore()
	require.False(t, restored.IsAuthenticated)
	require.Nil(t, restored.User)
	require.Empty(t, state.Token())
}

func TestLogin_PersistsAndSurvivesRestore(t *testing.T) {
	f := setupTestFixture(t)
	f.manager.Restore()

	session, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.Equal(t, testToken, session.Token)
	require.Equal(t, testUserEmail, session.Email)

	token, err := f.store.Get(credentials.TokenKey)
	require.NoError(t, err)
	require.Equal(t, testToken, token)
	_, err = f.store.Get(credentials.UserKey)
	require.NoError(t, err)

	require.True(t, f.state.Current().IsAuthenticated)
	require.Equal(t, testToken, f.state.Token())

	// Simulated reload: a fresh manager over the same store sees the same user.
	manager, state := newManagerFor(t, f)
	restored := manager.Restore()
	require.True(t, restored.IsAuthenticated)
	require.Equal(t, session.Email, restored.User.Email)
	require.Equal(t, session.CustomerID, restored.User.CustomerID)
	require.Equal(t, testToken, state.Token())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)
	f.manager.Restore()
	f.backend.loginStatus = http.StatusUnauthorized

	_, err := f.manager.Login(context.Background(), testUserEmail, "wrong-password")
	require.Error(t, err)
	require.EqualError(t, err, "Invalid credentials")
	require.ErrorIs(t, err, apierrors.ErrAuthentication)

	require.False(t, f.manager.IsAuthenticated())
	require.Zero(t, f.store.Len())
}

func TestLogin_ValidationFailsBeforeNetwork(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name     string
		email    string
		password string
		message  string
	}{
		{"empty email", "", testUserPassword, "Email is required"},
		{"bad email", "not-an-email", testUserPassword, "Please enter a valid email address"},
		{"double dot email", "john..doe@example.com", testUserPassword, "Please enter a valid email address"},
		{"empty password", testUserEmail, "", "Password is required"},
		{"short password", testUserEmail, "abc", "Password must be at least 6 characters long"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.manager.Login(context.Background(), tc.email, tc.password)
			require.Error(t, err)
			require.ErrorIs(t, err, apierrors.ErrValidation)
			require.EqualError(t, err, tc.message)
		})
	}

	require.Zero(t, f.backend.loginCalls)
	require.Zero(t, f.store.Len())
}

func TestLogin_NetworkUnavailable(t *testing.T) {
	f := setupTestFixture(t)
	f.server.Close()

	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.Error(t, err)
	require.ErrorIs(t, err, apierrors.ErrNetwork)
	require.EqualError(t, err, "Network error. Please check your connection.")
	require.Zero(t, f.store.Len())
}

func TestRegister_EstablishesSession(t *testing.T) {
	f := setupTestFixture(t)
	f.manager.Restore()

	session, err := f.manager.Register(context.Background(), testUserEmail, testUserPassword, testFirstName, testLastName)
	require.NoError(t, err)
	require.Equal(t, testToken, session.Token)
	require.True(t, f.manager.IsAuthenticated())

	token, err := f.store.Get(credentials.TokenKey)
	require.NoError(t, err)
	require.Equal(t, testToken, token)
}

func TestRegister_ValidatesNames(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Register(context.Background(), testUserEmail, testUserPassword, "", testLastName)
	require.ErrorIs(t, err, apierrors.ErrValidation)
	require.EqualError(t, err, "First name is required")

	_, err = f.manager.Register(context.Background(), testUserEmail, testUserPassword, testFirstName, "  ")
	require.ErrorIs(t, err, apierrors.ErrValidation)
	require.EqualError(t, err, "Last name is required")
}

func TestLogout_ClearsEverything(t *testing.T) {
	f := setupTestFixture(t)
	f.manager.Restore()

	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.manager.Logout(context.Background())

	require.False(t, f.manager.IsAuthenticated())
	require.Nil(t, f.manager.CurrentSession())
	require.Zero(t, f.store.Len())
	require.Equal(t, 1, f.backend.logoutCalls)
	require.Equal(t, "Bearer "+testToken, f.backend.lastAuthHeader)
}

func TestLogout_RemoteFailureStillClears(t *testing.T) {
	f := setupTestFixture(t)
	f.manager.Restore()
	f.backend.logoutStatus = http.StatusInternalServerError

	_, err := f.manager.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.manager.Logout(context.Background())

	require.False(t, f.manager.IsAuthenticated())
	require.Zero(t, f.store.Len())
	require.False(t, f.state.Current().IsAuthenticated)
}

func TestLogout_WhenUnauthenticatedSkipsRemoteCall(t *testing.T) {
	f := setupTestFixture(t)
	f.manager.Restore()

	f.manager.Logout(context.Background())

	require.Zero(t, f.backend.logoutCalls)
	require.False(t, f.manager.IsAuthenticated())
}
