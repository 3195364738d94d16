package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklend/internal/platform/db"
	"booklend/internal/platform/db/dbtest"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(dbtest.Open(t), db.AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour})
}

func Test_RegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Register(ctx, NewMember{Email: " Reader@Example.com ", DisplayName: "Reader", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", m.Email)
	assert.False(t, m.IsAdmin)
	assert.NotEqual(t, "password123", m.PasswordHash)

	token, err := svc.Login(ctx, "READER@example.com", "password123")
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, m.ID, claims["sub"])
	assert.Equal(t, RoleMember, claims["role"])

	_, err = svc.Login(ctx, "reader@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func Test_CreateMember_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateMember(ctx, NewMember{Email: "admin@example.com", DisplayName: "Admin", Password: "password123"}, true)
	require.NoError(t, err)

	testCases := []struct {
		name string
		in   NewMember
		want error
	}{
		{name: "duplicate email", in: NewMember{Email: "ADMIN@example.com", DisplayName: "Other", Password: "password123"}, want: ErrAlreadyExists},
		{name: "bad email", in: NewMember{Email: "nope", DisplayName: "X", Password: "password123"}, want: ErrInvalidInput},
		{name: "short password", in: NewMember{Email: "x@example.com", DisplayName: "X", Password: "short"}, want: ErrInvalidInput},
		{name: "blank name", in: NewMember{Email: "x@example.com", DisplayName: "  ", Password: "password123"}, want: ErrInvalidInput},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func Test_GetMember(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, err := svc.CreateMember(ctx, NewMember{Email: "admin@example.com", DisplayName: "Admin", Password: "password123"}, true)
	require.NoError(t, err)

	got, err := svc.GetMember(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, RoleAdmin, got.Role())

	_, err = svc.GetMember(ctx, "01JA0000000000000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	ctx := context.Background()

	member, err := svc.Register(ctx, NewMember{Email: "m@example.com", DisplayName: "M", Password: "password123"})
	require.NoError(t, err)
	admin, err := svc.CreateMember(ctx, NewMember{Email: "a@example.com", DisplayName: "A", Password: "password123"}, true)
	require.NoError(t, err)

	memberToken, err := svc.IssueToken(member)
	require.NoError(t, err)
	adminToken, err := svc.IssueToken(admin)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := svc.IssueToken(member)
	require.NoError(t, err)

	other := NewService(dbtest.Open(t), db.AuthConfig{JWTSecret: "another-secret"})
	foreignToken, err := other.IssueToken(member)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireAuth(svc.Secret()), func(c *gin.Context) {
		c.String(http.StatusOK, MemberID(c))
	})
	r.GET("/admin", RequireAuth(svc.Secret()), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	testCases := []struct {
		name   string
		path   string
		header string
		want   int
		body   string
	}{
		{name: "member", path: "/me", header: "Bearer " + memberToken, want: http.StatusOK, body: member.ID},
		{name: "no header", path: "/me", want: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/me", header: "Basic " + memberToken, want: http.StatusUnauthorized},
		{name: "expired", path: "/me", header: "Bearer " + expiredToken, want: http.StatusUnauthorized},
		{name: "signed with other secret", path: "/me", header: "Bearer " + foreignToken, want: http.StatusUnauthorized},
		{name: "admin route as member", path: "/admin", header: "Bearer " + memberToken, want: http.StatusForbidden},
		{name: "admin route as admin", path: "/admin", header: "Bearer " + adminToken, want: http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}
