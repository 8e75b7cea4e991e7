// Package session хранит формы калькулятора между HTTP запросами.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cloud-ru/mcp-emi-go/internal/calculations"
	"github.com/cloud-ru/mcp-emi-go/internal/config"
	"github.com/cloud-ru/mcp-emi-go/internal/form"
	"github.com/cloud-ru/mcp-emi-go/internal/metrics"
)

// ErrNotFound сессия не существует или истекла
var ErrNotFound = errors.New("session: not found")

// Store хранилище снимков форм
type Store interface {
	Load(ctx context.Context, id string) (form.Snapshot, bool, error)
	Save(ctx context.Context, id string, snap form.Snapshot) error
	Delete(ctx context.Context, id string) error
}

// Update изменение одного поля
type Update struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// State состояние сессии после операции
type State struct {
	ID       string                `json:"id"`
	Values   map[form.Field]string `json:"values"`
	Computed bool                  `json:"computed"`
	Result   *calculations.Result  `json:"result,omitempty"`
}

// Service управляет сессиями форм
type Service struct {
	store Store
	cfg   *config.Config
	newID func() string
}

// NewService создает сервис; формы считаются в пределах лимитов cfg
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg, newID: uuid.NewString}
}

// Create создает пустую сессию
func (s *Service) Create(ctx context.Context) (*State, error) {
	id := s.newID()
	c := form.New(s.cfg)
	if err := s.store.Save(ctx, id, c.Snapshot()); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return stateOf(id, c, false), nil
}

// Get возвращает текущее состояние сессии
func (s *Service) Get(ctx context.Context, id string) (*State, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return stateOf(id, c, false), nil
}

// Apply применяет изменения по порядку, пересчитывая форму после каждого
func (s *Service) Apply(ctx context.Context, id string, updates []Update) (*State, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make([]form.Field, 0, len(updates))
	for _, u := range updates {
		f, err := form.ParseField(u.Field)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	computed := false
	for i, u := range updates {
		ok, err := c.Set(fields[i], u.Value)
		if err != nil {
			return nil, err
		}
		if ok {
			metrics.FormRecalculations.WithLabelValues("computed").Inc()
		} else {
			metrics.FormRecalculations.WithLabelValues("skipped").Inc()
		}
		computed = ok
	}

	if err := s.store.Save(ctx, id, c.Snapshot()); err != nil {
		return nil, fmt.Errorf("save session %s: %w", id, err)
	}
	return stateOf(id, c, computed), nil
}

// Reset очищает поля формы и результат, сессия остается
func (s *Service) Reset(ctx context.Context, id string) (*State, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Reset()
	if err := s.store.Save(ctx, id, c.Snapshot()); err != nil {
		return nil, fmt.Errorf("save session %s: %w", id, err)
	}
	return stateOf(id, c, false), nil
}

// Delete удаляет сессию
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) load(ctx context.Context, id string) (*form.Controller, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	snap, ok, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return form.Restore(s.cfg, snap), nil
}

func stateOf(id string, c *form.Controller, computed bool) *State {
	return &State{
		ID:       id,
		Values:   c.Values(),
		Computed: computed,
		Result:   c.Result(),
	}
}
