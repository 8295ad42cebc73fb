package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todo-api/internal/account/domain"
	"todo-api/internal/identity/service"
	"todo-api/internal/security"
	"todo-api/internal/server/middleware"
	sessionservice "todo-api/internal/session/service"
)

// memAccounts enforces username and email uniqueness under one lock, like the table constraints.
type memAccounts struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Account
}

func (m *memAccounts) find(match func(domain.Account) bool) *domain.Account {
	for _, a := range m.rows {
		if match(a) {
			c := a
			return &c
		}
	}
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(a domain.Account) bool { return a.ID == id }), nil
}

func (m *memAccounts) GetByUsername(_ context.Context, u string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(a domain.Account) bool { return a.Username == u }), nil
}

func (m *memAccounts) GetByEmail(_ context.Context, e string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(a domain.Account) bool { return a.Email == e }), nil
}

func (m *memAccounts) UsernameExists(ctx context.Context, u string) (bool, error) {
	a, err := m.GetByUsername(ctx, u)
	return a != nil, err
}

func (m *memAccounts) EmailExists(ctx context.Context, e string) (bool, error) {
	a, err := m.GetByEmail(ctx, e)
	return a != nil, err
}

func (m *memAccounts) conflict(a *domain.Account) error {
	for _, o := range m.rows {
		if o.ID == a.ID {
			continue
		}
		if o.Username == a.Username {
			return domain.ErrUsernameTaken
		}
		if o.Email == a.Email {
			return domain.ErrEmailTaken
		}
	}
	return nil
}

func (m *memAccounts) Create(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(a); err != nil {
		return err
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now().UTC()
	m.rows[a.ID] = *a
	return nil
}

func (m *memAccounts) Update(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(a); err != nil {
		return err
	}
	m.rows[a.ID] = *a
	return nil
}

func (m *memAccounts) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	delete(m.rows, id)
	return ok, nil
}

type memLedger struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (l *memLedger) IsRevoked(_ context.Context, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revoked[token], nil
}

func (l *memLedger) Revoke(_ context.Context, token string, _ *time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[token] = true
	return nil
}

// newTestServer wires the real service, token codec and authenticator over in-memory stores.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	codec := security.NewTestTokenCodec()
	authn := sessionservice.NewAuthenticator(codec, &memLedger{revoked: map[string]bool{}}, nil)
	svc := service.NewAuthService(&memAccounts{rows: map[int64]domain.Account{}},
		security.NewHasher(bcrypt.MinCost), codec, authn, nil, nil)
	h := NewHandler(svc, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestContext)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/register", h.Register)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(authn))
		r.Post("/auth/refresh", h.Refresh)
		r.Post("/auth/token/verify", h.VerifyToken)
		r.Post("/auth/logout", h.Logout)
		r.Get("/account", h.GetAccount)
		r.Put("/account", h.UpdateAccount)
		r.Delete("/account", h.DeleteAccount)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type response struct {
	status int
	body   map[string]any
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, form url.Values) response {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequest(method, srv.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode}
	if resp.StatusCode != http.StatusNotModified {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out.body))
	}
	return out
}

func register(t *testing.T, srv *httptest.Server, username, email string) string {
	t.Helper()
	res := call(t, srv, http.MethodPost, "/auth/register", "", url.Values{
		"username": {username}, "password": {"Password1!"}, "email": {email},
	})
	require.Equal(t, http.StatusCreated, res.status, res.body)
	assert.Equal(t, "Successfully registered", res.body["message"])
	return res.body["token"].(string)
}

func TestLoginVerifyLogoutFlow(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice", "alice@example.com")

	login := call(t, srv, http.MethodPost, "/auth/login", "", url.Values{
		"user_identifier": {"Alice"}, "password": {"Password1!"},
	})
	require.Equal(t, http.StatusOK, login.status)
	token := login.body["token"].(string)

	verify := call(t, srv, http.MethodPost, "/auth/token/verify", token, nil)
	assert.Equal(t, http.StatusOK, verify.status)
	assert.Equal(t, "Token is valid", verify.body["message"])

	logout := call(t, srv, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, logout.status)

	after := call(t, srv, http.MethodPost, "/auth/token/verify", token, nil)
	assert.Equal(t, http.StatusUnauthorized, after.status)
	assert.Equal(t, "Error 401: Unauthorized", after.body["message"])

	// Logging out twice is rejected at the gate, not a server error.
	again := call(t, srv, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusUnauthorized, again.status)
}

func TestRegister_InvalidUsername(t *testing.T) {
	srv := newTestServer(t)
	res := call(t, srv, http.MethodPost, "/auth/register", "", url.Values{
		"username": {"ab"}, "password": {"Password1!"}, "email": {"ab@example.com"},
	})
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Error 400: Invalid fields", res.body["message"])
	assert.Equal(t, []any{service.UsernameCriteria}, res.body["invalid_fields"])
}

func TestRegister_MissingKeys(t *testing.T) {
	srv := newTestServer(t)
	res := call(t, srv, http.MethodPost, "/auth/register", "", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Error 400: Missing body parameters: password, email", res.body["message"])
}

func TestRegister_WrongContentType(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/register", strings.NewReader(`{"username":"alice"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_CharsetParameterAccepted(t *testing.T) {
	srv := newTestServer(t)
	form := url.Values{"username": {"alice"}, "password": {"Password1!"}, "email": {"alice@example.com"}}
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/register", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRegister_Conflicts(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice", "alice@example.com")

	res := call(t, srv, http.MethodPost, "/auth/register", "", url.Values{
		"username": {"alice"}, "password": {"Password1!"}, "email": {"other@example.com"},
	})
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, "Error 409: Username already taken", res.body["message"])

	res = call(t, srv, http.MethodPost, "/auth/register", "", url.Values{
		"username": {"bob"}, "password": {"Password1!"}, "email": {"ALICE@example.com"},
	})
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, "Error 409: Email already taken", res.body["message"])
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	srv := newTestServer(t)
	statuses := make([]int, 2)
	var wg sync.WaitGroup
	for i, name := range []string{"alice", "alicia"} {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			form := url.Values{"username": {name}, "password": {"Password1!"}, "email": {"shared@example.com"}}
			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/auth/register", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			resp, err := srv.Client().Do(req)
			if err != nil {
				t.Errorf("register %s: %v", name, err)
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i, name)
	}
	wg.Wait()
	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusConflict}, statuses)
}

func TestLogin_Errors(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice", "alice@example.com")

	res := call(t, srv, http.MethodPost, "/auth/login", "", url.Values{"user_identifier": {"alice"}})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Missing fields: password", res.body["message"])

	res = call(t, srv, http.MethodPost, "/auth/login", "", url.Values{
		"user_identifier": {"alice@example.com"}, "password": {"nope"},
	})
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "Error 401: Invalid credentials", res.body["message"])
}

func TestRefresh_EchoesToken(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice", "alice@example.com")

	res := call(t, srv, http.MethodPost, "/auth/refresh", token, nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, token, res.body["token"])

	res = call(t, srv, http.MethodPost, "/auth/refresh", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestAccountLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice", "alice@example.com")

	got := call(t, srv, http.MethodGet, "/account", token, nil)
	require.Equal(t, http.StatusOK, got.status)
	acc := got.body["account"].(map[string]any)
	assert.Equal(t, "alice", acc["username"])
	assert.NotContains(t, acc, "password_hash")
	assert.NotContains(t, acc, "PasswordHash")

	notModified := call(t, srv, http.MethodPut, "/account", token, url.Values{})
	assert.Equal(t, http.StatusNotModified, notModified.status)

	bad := call(t, srv, http.MethodPut, "/account", token, url.Values{"password": {"short"}})
	assert.Equal(t, http.StatusBadRequest, bad.status)
	assert.Equal(t, []any{service.PasswordCriteria}, bad.body["invalid_fields"])

	upd := call(t, srv, http.MethodPut, "/account", token, url.Values{"email": {"New@Example.com"}})
	require.Equal(t, http.StatusOK, upd.status)
	assert.Equal(t, "new@example.com", upd.body["account"].(map[string]any)["email"])

	del := call(t, srv, http.MethodDelete, "/account", token, nil)
	assert.Equal(t, http.StatusOK, del.status)

	after := call(t, srv, http.MethodGet, "/account", token, nil)
	assert.Equal(t, http.StatusUnauthorized, after.status)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	srv := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/auth/refresh"},
		{http.MethodPost, "/auth/token/verify"},
		{http.MethodPost, "/auth/logout"},
		{http.MethodGet, "/account"},
		{http.MethodPut, "/account"},
		{http.MethodDelete, "/account"},
	} {
		res := call(t, srv, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.status, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Error 401: Unauthorized", res.body["message"])
	}
}
