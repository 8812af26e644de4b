package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/forum"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

type staticAdmins map[string]*domain.Admin

func (s staticAdmins) FindAdmin(email string) (*domain.Admin, bool) {
	admin, ok := s[email]
	return admin, ok
}

func testApp(tokens *TokenManager, admins AdminLookup) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	mw := NewAuthMiddleware(tokens, admins)
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.Admin.Email)
	})
	app.Get("/public", mw.Optional, func(c *fiber.Ctx) error {
		if forum.CanModerate(ActorFromContext(c)) {
			return c.SendString("admin")
		}
		return c.SendString("public")
	})
	return app
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	session, err := tm.GenerateToken("admin@example.org", domain.SubjectTypeAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), session.ExpiresAt, 5*time.Second)

	claims, err := tm.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.org", claims.Subject)
	assert.Equal(t, domain.SubjectTypeAdmin, claims.SubjectType)

	_, err = NewTokenManager("other", 5).ParseToken(session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	session, err := tm.GenerateToken("admin@example.org", domain.SubjectTypeAdmin)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWithUnknownSubjectRejected(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	session, err := tm.GenerateToken("admin@example.org", domain.SubjectType("STAFF"))
	require.NoError(t, err)

	_, err = tm.ParseToken(session.Token)
	assert.ErrorIs(t, err, ErrUnknownSubject)
}

func TestAdminRouteGuard(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	admins := staticAdmins{"admin@example.org": {Email: "admin@example.org"}}
	app := testApp(tm, admins)

	session, err := tm.GenerateToken("admin@example.org", domain.SubjectTypeAdmin)
	require.NoError(t, err)
	stale, err := tm.GenerateToken("former@example.org", domain.SubjectTypeAdmin)
	require.NoError(t, err)
	public, err := tm.GenerateToken("visitor", domain.SubjectTypePublic)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"unknown admin", "Bearer " + stale.Token, http.StatusUnauthorized},
		{"non admin subject", "Bearer " + public.Token, http.StatusUnauthorized},
		{"admin", "Bearer " + session.Token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestOptionalMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	app := testApp(tm, staticAdmins{"admin@example.org": {Email: "admin@example.org"}})
	session, err := tm.GenerateToken("admin@example.org", domain.SubjectTypeAdmin)
	require.NoError(t, err)

	cases := []struct{ header, want string }{
		{"", "public"},
		{"Bearer garbage", "public"},
		{"Bearer " + session.Token, "admin"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(body))
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func TestPasswordHashingEdgeCases(t *testing.T) {
	_, err := HashPassword("", 4)
	assert.ErrorIs(t, err, ErrEmptyPassword)

	hash, err := HashPassword("s3cret", 1)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))

	assert.Error(t, ComparePassword("", ""))
}
