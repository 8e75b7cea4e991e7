package repository

import (
	"context"
	"time"
)

// CacheRepository key-value хранилище для состояния форм
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
