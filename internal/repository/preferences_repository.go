package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ummahhub/community-api/internal/domain"
)

const (
	preferencesKeyPrefix = "reader:prefs:"
	preferencesTTL       = 365 * 24 * time.Hour
)

// PreferencesRepository is the key-value store behind Qur'an reader settings.
type PreferencesRepository interface {
	// Get returns the saved preferences layered over the current defaults. A client
	// with nothing saved gets the defaults and found=false.
	Get(ctx context.Context, clientID string) (prefs domain.ReaderPreferences, found bool, err error)
	Save(ctx context.Context, clientID string, prefs domain.ReaderPreferences) error
	Delete(ctx context.Context, clientID string) error
}

type preferencesRedisRepository struct {
	client redis.UniversalClient
}

// NewPreferencesRepository builds the redis backed preferences store.
func NewPreferencesRepository(client redis.UniversalClient) PreferencesRepository {
	return &preferencesRedisRepository{client: client}
}

func preferencesKey(clientID string) string {
	return preferencesKeyPrefix + clientID
}

func (r *preferencesRedisRepository) Get(ctx context.Context, clientID string) (domain.ReaderPreferences, bool, error) {
	prefs := domain.DefaultReaderPreferences()

	raw, err := r.client.Get(ctx, preferencesKey(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return prefs, false, nil
		}
		return prefs, false, err
	}
	// fields missing from older saves keep their defaults
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return domain.DefaultReaderPreferences(), false, fmt.Errorf("decode preferences: %w", err)
	}
	prefs.Version = domain.ReaderPreferencesVersion
	return prefs, true, nil
}

func (r *preferencesRedisRepository) Save(ctx context.Context, clientID string, prefs domain.ReaderPreferences) error {
	prefs.Version = domain.ReaderPreferencesVersion
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, preferencesKey(clientID), raw, preferencesTTL).Err()
}

func (r *preferencesRedisRepository) Delete(ctx context.Context, clientID string) error {
	return r.client.Del(ctx, preferencesKey(clientID)).Err()
}
