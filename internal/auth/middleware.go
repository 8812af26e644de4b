package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/forum"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	SubjectType domain.SubjectType
	Admin       *domain.Admin
}

// Actor converts the principal into a forum actor.
func (p *Principal) Actor() forum.Actor {
	if p == nil || p.Admin == nil {
		return forum.PublicActor
	}
	return forum.AdminActor(p.Admin)
}

// AdminLookup resolves an admin account by email.
type AdminLookup interface {
	FindAdmin(email string) (*domain.Admin, bool)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	admins AdminLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, admins AdminLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, admins: admins}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticate(c.Get("Authorization"))
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional loads a principal when a valid bearer token is present and otherwise
// lets the request through anonymously.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if header := c.Get("Authorization"); header != "" {
		if principal, err := m.authenticate(header); err == nil {
			c.Locals(principalKey, principal)
		}
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(authHeader string) (*Principal, error) {
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	switch claims.SubjectType {
	case domain.SubjectTypeAdmin:
		admin, ok := m.admins.FindAdmin(claims.Subject)
		if !ok {
			return nil, apperrors.NewUnauthorized("admin not found")
		}
		return &Principal{SubjectType: domain.SubjectTypeAdmin, Admin: admin}, nil
	default:
		return nil, apperrors.NewUnauthorized("unknown subject")
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// ActorFromContext returns the forum actor for the request, public when anonymous.
func ActorFromContext(c *fiber.Ctx) forum.Actor {
	principal, _ := PrincipalFromContext(c)
	return principal.Actor()
}
