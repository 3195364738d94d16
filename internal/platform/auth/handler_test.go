package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	RegisterRoutes(api, svc)
	admin := api.Group("", RequireAuth(svc.Secret()), RequireRole(RoleAdmin))
	RegisterAdminRoutes(admin, svc)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func Test_Handler_RegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	r := newAuthRouter(svc)

	w := postJSON(t, r, "/auth/register", "", RegisterRequest{Email: "reader@example.com", DisplayName: "Reader", Password: "password123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created MemberResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "reader@example.com", created.Email)
	assert.False(t, created.IsAdmin)

	// 一般登録で is_admin を送っても管理者にはならない
	w = postJSON(t, r, "/auth/register", "", map[string]any{
		"email": "sneaky@example.com", "display_name": "Sneaky", "password": "password123", "is_admin": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.False(t, created.IsAdmin)

	testCases := []struct {
		name string
		path string
		body any
		want int
	}{
		{name: "duplicate email", path: "/auth/register", body: RegisterRequest{Email: "Reader@example.com", DisplayName: "Other", Password: "password123"}, want: http.StatusConflict},
		{name: "short password", path: "/auth/register", body: RegisterRequest{Email: "x@example.com", DisplayName: "X", Password: "short"}, want: http.StatusBadRequest},
		{name: "missing fields", path: "/auth/register", body: map[string]string{"email": "x@example.com"}, want: http.StatusBadRequest},
		{name: "wrong password", path: "/auth/login", body: LoginRequest{Email: "reader@example.com", Password: "nope-nope"}, want: http.StatusUnauthorized},
		{name: "unknown email", path: "/auth/login", body: LoginRequest{Email: "ghost@example.com", Password: "password123"}, want: http.StatusUnauthorized},
		{name: "login without body fields", path: "/auth/login", body: map[string]string{}, want: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, tc.path, "", tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}

	w = postJSON(t, r, "/auth/login", "", LoginRequest{Email: "reader@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Token)
}

func Test_Handler_CreateMemberRequiresAdmin(t *testing.T) {
	svc := newTestService(t)
	r := newAuthRouter(svc)
	ctx := context.Background()

	admin, err := svc.CreateMember(ctx, NewMember{Email: "admin@example.com", DisplayName: "Admin", Password: "password123"}, true)
	require.NoError(t, err)
	member, err := svc.Register(ctx, NewMember{Email: "member@example.com", DisplayName: "Member", Password: "password123"})
	require.NoError(t, err)

	adminToken, err := svc.IssueToken(admin)
	require.NoError(t, err)
	memberToken, err := svc.IssueToken(member)
	require.NoError(t, err)

	body := CreateMemberRequest{
		RegisterRequest: RegisterRequest{Email: "librarian@example.com", DisplayName: "Librarian", Password: "password123"},
		IsAdmin:         true,
	}

	w := postJSON(t, r, "/members", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, r, "/members", memberToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(t, r, "/members", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created MemberResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsAdmin)

	stored, err := svc.GetMember(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)

	w = postJSON(t, r, "/members", adminToken, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}
