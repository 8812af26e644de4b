package service

import (
	"context"
	"strings"

	"github.com/ummahhub/community-api/internal/auth"
	"github.com/ummahhub/community-api/internal/config"
	"github.com/ummahhub/community-api/internal/domain"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

// AdminDirectory holds the configured moderator accounts keyed by lower-cased email.
type AdminDirectory struct {
	admins map[string]*domain.Admin
}

// NewAdminDirectory builds the directory from config. No email or hash means no admins.
func NewAdminDirectory(cfg config.AuthConfig) *AdminDirectory {
	dir := &AdminDirectory{admins: make(map[string]*domain.Admin)}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email != "" && cfg.AdminPasswordHash != "" {
		dir.admins[email] = &domain.Admin{Email: email, PasswordHash: cfg.AdminPasswordHash}
	}
	return dir
}

// FindAdmin implements auth.AdminLookup.
func (d *AdminDirectory) FindAdmin(email string) (*domain.Admin, bool) {
	admin, ok := d.admins[strings.ToLower(strings.TrimSpace(email))]
	return admin, ok
}

// Len reports the number of configured admins.
func (d *AdminDirectory) Len() int {
	return len(d.admins)
}

// AuthService coordinates admin login.
type AuthService struct {
	admins   *AdminDirectory
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(admins *AdminDirectory, tokens *auth.TokenManager) *AuthService {
	return &AuthService{admins: admins, tokenMgr: tokens}
}

// LoginAdmin checks credentials and issues a session token.
func (s *AuthService) LoginAdmin(_ context.Context, email, password string) (*domain.Admin, domain.Session, error) {
	admin, ok := s.admins.FindAdmin(email)
	if !ok {
		return nil, domain.Session{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, domain.Session{}, apperrors.NewUnauthorized("invalid credentials")
	}
	session, err := s.tokenMgr.GenerateToken(admin.Email, domain.SubjectTypeAdmin)
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}
	return admin, session, nil
}
