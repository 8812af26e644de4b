package service

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/forum"
	"github.com/ummahhub/community-api/internal/repository"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// PreferencesService reads and writes Qur'an reader settings.
type PreferencesService struct {
	prefs  repository.PreferencesRepository
	codec  *forum.Codec
	logger *zap.Logger
	now    func() time.Time
}

// NewPreferencesService constructs the service.
func NewPreferencesService(prefs repository.PreferencesRepository, codec *forum.Codec, logger *zap.Logger) *PreferencesService {
	if codec == nil {
		codec = forum.NewCodec()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferencesService{prefs: prefs, codec: codec, logger: logger, now: time.Now}
}

// Get returns the client's settings, or the defaults when none are saved. An
// unreadable saved value also yields the defaults.
func (s *PreferencesService) Get(ctx context.Context, clientID string) (domain.ReaderPreferences, error) {
	if err := checkClientID(clientID); err != nil {
		return domain.ReaderPreferences{}, err
	}
	prefs, _, err := s.prefs.Get(ctx, clientID)
	if err != nil {
		if ctx.Err() != nil {
			return domain.ReaderPreferences{}, apperrors.NewStoreUnavailable(err)
		}
		s.logger.Warn("unable to load reader preferences, serving defaults", zap.String("client_id", clientID), zap.Error(err))
		return domain.DefaultReaderPreferences(), nil
	}
	return prefs, nil
}

// Save validates and stores the client's settings.
func (s *PreferencesService) Save(ctx context.Context, clientID string, prefs domain.ReaderPreferences) (domain.ReaderPreferences, error) {
	if err := checkClientID(clientID); err != nil {
		return domain.ReaderPreferences{}, err
	}
	if err := s.codec.Validate(&prefs, "invalid preferences"); err != nil {
		return domain.ReaderPreferences{}, err
	}
	prefs.Version = domain.ReaderPreferencesVersion
	prefs.UpdatedAt = s.now().UTC()
	if err := s.prefs.Save(ctx, clientID, prefs); err != nil {
		return domain.ReaderPreferences{}, apperrors.NewStoreUnavailable(err)
	}
	return prefs, nil
}

// Reset drops saved settings so the defaults apply again.
func (s *PreferencesService) Reset(ctx context.Context, clientID string) (domain.ReaderPreferences, error) {
	if err := checkClientID(clientID); err != nil {
		return domain.ReaderPreferences{}, err
	}
	if err := s.prefs.Delete(ctx, clientID); err != nil {
		return domain.ReaderPreferences{}, apperrors.NewStoreUnavailable(err)
	}
	return domain.DefaultReaderPreferences(), nil
}

func checkClientID(clientID string) error {
	if !clientIDPattern.MatchString(clientID) {
		return apperrors.NewValidationError("invalid client id", map[string]any{
			"fields": map[string]any{"clientId": "is invalid"},
		})
	}
	return nil
}
