package session

import (
	"context"
	"fmt"

	"github.com/pribylovaa/skilltrack/internal/config"
)

// Open создаёт хранилище по конфигурации.
// Для Redis-бэкенда вызывающий отвечает за Close (хранилище реализует io.Closer).
func Open(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	const op = "session.Open"

	switch cfg.Backend {
	case config.SessionBackendMemory:
		return NewMemory(), nil
	case config.SessionBackendFile, "":
		f, err := NewFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return f, nil
	case config.SessionBackendRedis:
		r, err := NewRedis(ctx, cfg.RedisURL, cfg.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownBackend, cfg.Backend)
	}
}
