package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cloud-ru/mcp-emi-go/internal/form"
)

const formStatePrefix = "emi:form:"

// FormStateRepository сохраняет снимок формы в JSON.
// Отсутствующее или поврежденное значение читается как пустая форма.
type FormStateRepository struct {
	cache CacheRepository
	ttl   time.Duration
}

func NewFormStateRepository(cache CacheRepository, ttl time.Duration) *FormStateRepository {
	return &FormStateRepository{cache: cache, ttl: ttl}
}

func formStateKey(id string) string {
	return formStatePrefix + id
}

// Load читает снимок формы; ok=false, если сессия не найдена
func (r *FormStateRepository) Load(ctx context.Context, id string) (form.Snapshot, bool, error) {
	empty := form.Snapshot{Values: map[form.Field]string{}}

	raw, ok, err := r.cache.Get(ctx, formStateKey(id))
	if err != nil {
		return empty, false, err
	}
	if !ok {
		return empty, false, nil
	}

	var snap form.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("поврежденное состояние формы, используется пустое")
		return empty, true, nil
	}
	if snap.Values == nil {
		snap.Values = map[form.Field]string{}
	}
	return snap, true, nil
}

// Save сериализует снимок формы
func (r *FormStateRepository) Save(ctx context.Context, id string, snap form.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal form state: %w", err)
	}
	return r.cache.Set(ctx, formStateKey(id), string(data), r.ttl)
}

// Delete удаляет состояние формы
func (r *FormStateRepository) Delete(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, formStateKey(id))
}
