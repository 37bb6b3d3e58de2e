package account_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aanand-mishra/chapter-api/internal/auth"
	"github.com/aanand-mishra/chapter-api/internal/http/handlers/account"
	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/storage/memory"
	"github.com/aanand-mishra/chapter-api/internal/testutil"
	"github.com/aanand-mishra/chapter-api/internal/types"
)

var users = storage.NewCatalog("ieee-").Users

func seedUser(t *testing.T, store storage.Storage, username, password string, isAdmin bool) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, store.PutItem(context.Background(), users, types.Record{
		"username": username,
		"password": hash,
		"isAdmin":  isAdmin,
	}))
}

func TestSignup_ForcesNonAdmin(t *testing.T) {
	store := memory.New()
	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(http.MethodPost, "/api/admin/signup", `{"username":"ada","password":"pw","isAdmin":true}`)

	account.Signup(store, users, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "User registered successfully!")

	got, err := store.GetItem(context.Background(), users, "ada")
	require.NoError(t, err)
	assert.Equal(t, false, got["isAdmin"])
	assert.NotEqual(t, "pw", got.String("password"))
	assert.True(t, auth.CheckPassword(got.String("password"), "pw"))
}

func TestSignup_MissingUsername(t *testing.T) {
	store := memory.New()
	rec := httptest.NewRecorder()

	account.Signup(store, users, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/admin/signup", `{"password":"pw"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to register user.", rec.Body.String())
}

func TestSignup_StoreFailure(t *testing.T) {
	rec := httptest.NewRecorder()

	account.Signup(&testutil.FailingStore{}, users, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/admin/signup", `{"username":"ada","password":"pw"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogin(t *testing.T) {
	store := memory.New()
	seedUser(t, store, "admin", "correct", true)
	seedUser(t, store, "member", "correct", false)
	issuer := auth.NewStaticToken(testutil.AdminToken)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantToken  bool
	}{
		{"admin with right password", `{"username":"admin","password":"correct"}`, http.StatusOK, true},
		{"admin with wrong password", `{"username":"admin","password":"wrong"}`, http.StatusUnauthorized, false},
		{"non-admin with right password", `{"username":"member","password":"correct"}`, http.StatusUnauthorized, false},
		{"unknown user", `{"username":"ghost","password":"correct"}`, http.StatusUnauthorized, false},
		{"empty body", ``, http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			account.Login(store, users, issuer, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/admin/login", tt.body))

			require.Equal(t, tt.wantStatus, rec.Code)

			var resp types.LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantToken {
				assert.True(t, resp.Success)
				assert.Equal(t, testutil.AdminToken, resp.Token)
			} else {
				assert.False(t, resp.Success)
				assert.Empty(t, resp.Token)
				assert.Equal(t, "Invalid credentials or not an admin.", resp.Message)
			}
		})
	}
}

func TestLogin_StoreFailure(t *testing.T) {
	rec := httptest.NewRecorder()

	account.Login(&testutil.FailingStore{}, users, auth.NewStaticToken("t"), zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/admin/login", `{"username":"a","password":"b"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Server error"}`, rec.Body.String())
}

type brokenIssuer struct{}

func (brokenIssuer) Issue(string) (string, error) { return "", errors.New("no tokens today") }

func TestLogin_IssuerFailure(t *testing.T) {
	store := memory.New()
	seedUser(t, store, "admin", "correct", true)
	rec := httptest.NewRecorder()

	account.Login(store, users, brokenIssuer{}, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/admin/login", `{"username":"admin","password":"correct"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetList_HidesPasswords(t *testing.T) {
	store := memory.New()
	seedUser(t, store, "ada", "pw", true)
	seedUser(t, store, "grace", "pw", false)
	rec := httptest.NewRecorder()

	account.GetList(store, users, zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	for _, u := range got {
		assert.NotContains(t, u, "password")
		assert.Contains(t, u, "username")
		assert.Contains(t, u, "isAdmin")
	}
}

func TestGetList_StoreFailure(t *testing.T) {
	rec := httptest.NewRecorder()

	account.GetList(&testutil.FailingStore{}, users, zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSetAdmin(t *testing.T) {
	store := memory.New()
	seedUser(t, store, "ada", "pw", false)
	ctx := context.Background()

	for _, want := range []bool{true, false} {
		body := `{"isAdmin":false}`
		if want {
			body = `{"isAdmin":true}`
		}
		rec := httptest.NewRecorder()
		req := testutil.WithChiURLParam(testutil.NewJSONRequest(http.MethodPut, "/api/admin/users/ada", body), "username", "ada")

		account.SetAdmin(store, users, zap.NewNop())(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "User status updated successfully.", rec.Body.String())

		got, err := store.GetItem(ctx, users, "ada")
		require.NoError(t, err)
		assert.Equal(t, want, got.Bool("isAdmin"))
		assert.True(t, auth.CheckPassword(got.String("password"), "pw"), "other attributes stay")
	}
}

func TestSetAdmin_BadBody(t *testing.T) {
	bodies := []string{``, `{}`, `{"isAdmin":"yes"}`, `{"isAdmin":`}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			store := &testutil.FailingStore{}
			rec := httptest.NewRecorder()
			req := testutil.WithChiURLParam(testutil.NewJSONRequest(http.MethodPut, "/api/admin/users/ada", body), "username", "ada")

			account.SetAdmin(store, users, zap.NewNop())(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "isAdmin must be a boolean.", rec.Body.String())
			assert.Zero(t, store.Writes)
		})
	}
}

func TestSetAdmin_UnknownUser(t *testing.T) {
	store := memory.New()
	rec := httptest.NewRecorder()
	req := testutil.WithChiURLParam(testutil.NewJSONRequest(http.MethodPut, "/api/admin/users/ghost", `{"isAdmin":true}`), "username", "ghost")

	account.SetAdmin(store, users, zap.NewNop())(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to update user status.", rec.Body.String())

	_, err := store.GetItem(context.Background(), users, "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound, "no user is created")

	all, err := store.FetchAll(context.Background(), users)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSignup_MalformedJSON(t *testing.T) {
	store := &testutil.FailingStore{}
	rec := httptest.NewRecorder()

	account.Signup(store, users, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/admin/signup", `{"username":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body.", rec.Body.String())
	assert.Zero(t, store.Writes)
}
