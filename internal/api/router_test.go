package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/isdelr/account-service/internal/api/handlers"
	"github.com/isdelr/account-service/internal/api/respond"
	"github.com/isdelr/account-service/internal/auth"
	"github.com/isdelr/account-service/internal/database"
	"github.com/isdelr/account-service/internal/models"
	"github.com/isdelr/account-service/internal/security"
	"github.com/isdelr/account-service/internal/services"
	"github.com/isdelr/account-service/internal/store"
	"github.com/isdelr/account-service/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T, s store.Store, secret string) *testServer {
	events := services.NewEventService(s)
	users := services.NewUserService(s, events, security.NewGenerator(32, 128))
	cookies := auth.NewCookies(secret, true)
	guard := auth.NewGuard(auth.NewCredentialAuthenticator(s), auth.NewTokenAuthenticator(s), cookies, events)
	return &testServer{t: t, router: NewRouter(guard, handlers.NewUserHandler(users, cookies), []string{"http://localhost:3000"})}
}

func (ts *testServer) do(method, path, body string, prepare func(r *http.Request)) *httptest.ResponseRecorder {
	ts.t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if prepare != nil {
		prepare(r)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, r)
	return rec
}

func (ts *testServer) signup(username, password string) *httptest.ResponseRecorder {
	return ts.do(http.MethodPost, "/signup", `{"username":"`+username+`","email":"`+username+`@example.com","password":"`+password+`"}`, nil)
}

func (ts *testServer) login(credential string) (*httptest.ResponseRecorder, *http.Cookie) {
	rec := ts.do(http.MethodPost, "/login", "", func(r *http.Request) {
		r.Header.Set(auth.AuthorizationHeader, credential)
	})
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return rec, c
		}
	}
	return rec, nil
}

func withCookie(name, value string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) models.PublicUser {
	t.Helper()
	var u models.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	return u
}

func assertErrorBody(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, status, body.StatusCode)
	assert.Equal(t, respond.Message(status), body.Message)
}

func TestRouter_SessionFlow(t *testing.T) {
	for _, secret := range []string{"", "cookie-signing-secret"} {
		name := "raw cookie"
		if secret != "" {
			name = "signed cookie"
		}
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t, store.NewMemory(), secret)

			require.Equal(t, http.StatusOK, ts.signup("foo", "password1234").Code)

			rec, cookie := ts.login("foo:password1234")
			require.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, cookie)
			assert.True(t, cookie.HttpOnly)

			rec = ts.do(http.MethodGet, "/self", "", withCookie(cookie.Name, cookie.Value))
			require.Equal(t, http.StatusOK, rec.Code)
			self := decodeUser(t, rec)
			assert.Equal(t, "foo", self.Username)
			assert.NotContains(t, rec.Body.String(), "password_hash")

			rec = ts.do(http.MethodGet, "/self", "", withCookie(cookie.Name, cookie.Value+"foo"))
			assertErrorBody(t, rec, http.StatusUnauthorized)

			rec = ts.do(http.MethodGet, "/self", "", nil)
			assertErrorBody(t, rec, http.StatusUnauthorized)
		})
	}
}

func TestRouter_BearerToken(t *testing.T) {
	ts := newTestServer(t, store.NewMemory(), "")
	require.Equal(t, http.StatusOK, ts.signup("foo", "password1234").Code)
	rec, _ := ts.login("foo:password1234")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeUser(t, rec).AuthToken
	require.Len(t, token, 128)

	rec = ts.do(http.MethodGet, "/self", "", func(r *http.Request) {
		r.Header.Set(auth.AuthorizationHeader, "Bearer "+token)
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "stale"})
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "foo", decodeUser(t, rec).Username)
}

func TestRouter_SignupDuplicate(t *testing.T) {
	ts := newTestServer(t, store.NewMemory(), "")
	require.Equal(t, http.StatusOK, ts.signup("foo", "password1234").Code)

	rec := ts.signup("foo", "other")
	assertErrorBody(t, rec, http.StatusPreconditionFailed)

	// The existing account keeps its password.
	rec, _ = ts.login("foo:password1234")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LoginFailures(t *testing.T) {
	ts := newTestServer(t, store.NewMemory(), "")
	require.Equal(t, http.StatusOK, ts.signup("foo", "password1234").Code)

	for _, credential := range []string{"", "foo", "foo:wrong", "bar:password1234"} {
		rec, cookie := ts.login(credential)
		assertErrorBody(t, rec, http.StatusUnauthorized)
		assert.Nil(t, cookie)
	}

	rec := ts.do(http.MethodPost, "/login", "", func(r *http.Request) {
		r.Header.Add(auth.AuthorizationHeader, "foo:password1234")
		r.Header.Add(auth.AuthorizationHeader, "foo:password1234")
	})
	assertErrorBody(t, rec, http.StatusBadRequest)
}

func TestRouter_ReloginInvalidatesPreviousToken(t *testing.T) {
	ts := newTestServer(t, store.NewMemory(), "")
	require.Equal(t, http.StatusOK, ts.signup("foo", "password1234").Code)

	_, first := ts.login("foo:password1234")
	_, second := ts.login("foo:password1234")
	require.NotNil(t, first)
	require.NotNil(t, second)
	require.NotEqual(t, first.Value, second.Value)

	assertErrorBody(t, ts.do(http.MethodGet, "/self", "", withCookie(first.Name, first.Value)), http.StatusUnauthorized)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/self", "", withCookie(second.Name, second.Value)).Code)
}

func TestRouter_UpdateSelf(t *testing.T) {
	ts := newTestServer(t, store.NewMemory(), "")
	require.Equal(t, http.StatusOK, ts.signup("foo", "password1234").Code)
	_, cookie := ts.login("foo:password1234")
	require.NotNil(t, cookie)

	rec := ts.do(http.MethodPatch, "/self", `{"email":"new@example.com"}`, withCookie(cookie.Name, cookie.Value))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new@example.com", decodeUser(t, rec).Email)

	rec = ts.do(http.MethodGet, "/self", "", withCookie(cookie.Name, cookie.Value))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new@example.com", decodeUser(t, rec).Email)

	assertErrorBody(t, ts.do(http.MethodPatch, "/self", `{"email":"x@example.com"}`, nil), http.StatusUnauthorized)
}

func TestRouter_ChangePassword(t *testing.T) {
	ts := newTestServer(t, store.NewMemory(), "")
	require.Equal(t, http.StatusOK, ts.signup("foo", "password1234").Code)
	_, cookie := ts.login("foo:password1234")
	require.NotNil(t, cookie)

	rec := ts.do(http.MethodPatch, "/self/password", `{"password":"n3wpassword"}`, func(r *http.Request) {
		r.Header.Set(auth.AuthorizationHeader, "foo:password1234")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Password updated successfully"}`, rec.Body.String())

	assertErrorBody(t, ts.do(http.MethodGet, "/self", "", withCookie(cookie.Name, cookie.Value)), http.StatusUnauthorized)

	rec, _ = ts.login("foo:password1234")
	assertErrorBody(t, rec, http.StatusUnauthorized)
	rec, _ = ts.login("foo:n3wpassword")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_StoreUnavailable(t *testing.T) {
	mem := store.NewMemory()
	ts := newTestServer(t, mem, "")
	require.Equal(t, http.StatusOK, ts.signup("foo", "password1234").Code)
	_, cookie := ts.login("foo:password1234")
	require.NotNil(t, cookie)

	down := newTestServer(t, &storetest.Failing{Store: mem, Find: true}, "")
	rec, _ := down.login("foo:password1234")
	assertErrorBody(t, rec, http.StatusServiceUnavailable)
	assert.NotContains(t, rec.Body.String(), storetest.ErrUnavailable.Error())

	rec = down.do(http.MethodGet, "/self", "", withCookie(cookie.Name, cookie.Value))
	assertErrorBody(t, rec, http.StatusServiceUnavailable)
}

func TestRouter_Catchers(t *testing.T) {
	ts := newTestServer(t, store.NewMemory(), "")

	assertErrorBody(t, ts.do(http.MethodGet, "/nope", "", nil), http.StatusNotFound)
	assertErrorBody(t, ts.do(http.MethodDelete, "/signup", "", nil), http.StatusMethodNotAllowed)
}

func newFileStore(t *testing.T) store.Store {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	s := store.NewSQLite(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestRouter_SQLiteSessionFlow(t *testing.T) {
	ts := newTestServer(t, newFileStore(t), "cookie-signing-secret")
	require.Equal(t, http.StatusOK, ts.signup("foo", "password1234").Code)
	assertErrorBody(t, ts.signup("foo", "password1234"), http.StatusPreconditionFailed)

	rec, cookie := ts.login("foo:password1234")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, cookie)

	rec = ts.do(http.MethodGet, "/self", "", withCookie(cookie.Name, cookie.Value))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "foo", decodeUser(t, rec).Username)
	assertErrorBody(t, ts.do(http.MethodGet, "/self", "", withCookie(cookie.Name, cookie.Value+"foo")), http.StatusUnauthorized)
}

func TestRouter_SQLiteConcurrentLogins(t *testing.T) {
	ts := newTestServer(t, newFileStore(t), "")

	const users = 20
	for i := 0; i < users; i++ {
		require.Equal(t, http.StatusOK, ts.signup(fmt.Sprintf("user%d", i), "password1234").Code)
	}

	var (
		mu    sync.Mutex
		codes = map[int]int{}
		wg    sync.WaitGroup
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := httptest.NewRequest(http.MethodPost, "/login", nil)
			r.Header.Set(auth.AuthorizationHeader, fmt.Sprintf("user%d:password1234", i%users))
			rec := httptest.NewRecorder()
			ts.router.ServeHTTP(rec, r)

			mu.Lock()
			codes[rec.Code]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, map[int]int{http.StatusOK: 100}, codes)
}
