package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mrraes/bewijs/internal/model"
)

// Prefs is a preference backend.
type Prefs interface {
	GetPref(ctx context.Context, key string) (string, error)
	SetPref(ctx context.Context, key, value string) error
	DeletePref(ctx context.Context, key string) error
	ListPrefs(ctx context.Context) (map[string]string, error)
	Close() error
}

// Open returns the backend selected by cfg.PrefsBackend: "sqlite" (the default), "redis",
// or "none", which returns a nil Prefs.
func Open(ctx context.Context, cfg model.Config) (Prefs, error) {
	switch cfg.PrefsBackend {
	case "", "sqlite":
		s, err := New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		r, err := NewRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown prefs backend %q", cfg.PrefsBackend)
}

// Forget removes the remembered name and class.
func Forget(ctx context.Context, p Prefs) error {
	for _, k := range []string{model.PrefKeyName, model.PrefKeyClass} {
		if err := p.DeletePref(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
