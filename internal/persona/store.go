package persona

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrBuiltinConfig is returned when an operation would mutate or delete
// a built-in persona.
var ErrBuiltinConfig = eris.New("persona: built-in configs cannot be deleted")

// ErrNotFound is returned when a custom persona id does not exist.
var ErrNotFound = eris.New("persona: config not found")

// Repository is the durable key-value backing for custom personas and
// the active-persona selection. Implementations include the SQLite and
// Postgres stores and in-memory fakes for tests.
type Repository interface {
	ActiveID(ctx context.Context) (string, error)
	SetActiveID(ctx context.Context, id string) error
	Custom(ctx context.Context) (map[string]IndustryConfig, error)
	SaveCustom(ctx context.Context, cfg IndustryConfig) error
	DeleteCustom(ctx context.Context, id string) error
}

// Store resolves personas with precedence rules: custom personas shadow
// built-ins with the same id, and the active selection falls back to
// the first enabled persona, then to the built-in default. Repository
// failures degrade to built-ins only and are logged, never returned.
type Store struct {
	repo     Repository
	builtins map[string]IndustryConfig
}

// NewStore creates a Store over the given repository.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:     repo,
		builtins: Builtins(),
	}
}

// custom loads the custom persona set, degrading to empty on failure.
func (s *Store) custom(ctx context.Context) map[string]IndustryConfig {
	if s.repo == nil {
		return nil
	}
	custom, err := s.repo.Custom(ctx)
	if err != nil {
		zap.L().Warn("persona: loading custom configs failed, using built-ins only",
			zap.Error(err),
		)
		return nil
	}
	return custom
}

// All returns every persona: built-ins unioned with custom, custom
// winning on id collision. Enabled personas sort first, then by name.
func (s *Store) All(ctx context.Context) []IndustryConfig {
	merged := make(map[string]IndustryConfig, len(s.builtins))
	for id, cfg := range s.builtins {
		merged[id] = cfg
	}
	for id, cfg := range s.custom(ctx) {
		merged[id] = cfg
	}

	configs := make([]IndustryConfig, 0, len(merged))
	for _, cfg := range merged {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		if configs[i].Enabled != configs[j].Enabled {
			return configs[i].Enabled
		}
		return strings.ToLower(configs[i].Name) < strings.ToLower(configs[j].Name)
	})
	return configs
}

// ByID resolves a persona by id, custom first.
func (s *Store) ByID(ctx context.Context, id string) (IndustryConfig, bool) {
	if cfg, ok := s.custom(ctx)[id]; ok {
		return cfg, true
	}
	cfg, ok := s.builtins[id]
	return cfg, ok
}

// IsBuiltin reports whether id names a built-in persona.
func (s *Store) IsBuiltin(id string) bool {
	_, ok := s.builtins[id]
	return ok
}

// Active resolves the persisted active persona. If the persisted id is
// absent, unknown, or names a disabled persona, it falls back to the
// first enabled persona (All order), then to the built-in default, and
// repairs the persisted id so the next read is direct.
func (s *Store) Active(ctx context.Context) IndustryConfig {
	if s.repo != nil {
		id, err := s.repo.ActiveID(ctx)
		if err != nil {
			zap.L().Warn("persona: loading active config id failed", zap.Error(err))
		} else if id != "" {
			if cfg, ok := s.ByID(ctx, id); ok && cfg.Enabled {
				return cfg
			}
			zap.L().Warn("persona: persisted active config unusable, falling back",
				zap.String("config_id", id),
			)
		}
	}

	fallback := s.builtins[DefaultID]
	for _, cfg := range s.All(ctx) {
		if cfg.Enabled {
			fallback = cfg
			break
		}
	}

	// Repair the persisted selection.
	s.SetActive(ctx, fallback)
	return fallback
}

// SetActive persists cfg.ID as the active selection. Storage errors are
// logged and swallowed so selection never blocks the caller.
func (s *Store) SetActive(ctx context.Context, cfg IndustryConfig) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SetActiveID(ctx, cfg.ID); err != nil {
		zap.L().Warn("persona: saving active config id failed",
			zap.String("config_id", cfg.ID),
			zap.Error(err),
		)
	}
}

// SaveCustom upserts a custom persona by id.
func (s *Store) SaveCustom(ctx context.Context, cfg IndustryConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if s.repo == nil {
		return eris.New("persona: no repository configured")
	}
	if err := s.repo.SaveCustom(ctx, cfg); err != nil {
		return eris.Wrapf(err, "persona: save custom config %s", cfg.ID)
	}
	return nil
}

// DeleteCustom removes a custom persona. Built-in ids are refused with
// ErrBuiltinConfig even when a custom persona shadows them, since the
// built-in would simply resurface.
func (s *Store) DeleteCustom(ctx context.Context, id string) error {
	if s.IsBuiltin(id) {
		return eris.Wrapf(ErrBuiltinConfig, "persona: delete %s", id)
	}
	if s.repo == nil {
		return eris.New("persona: no repository configured")
	}
	if _, ok := s.custom(ctx)[id]; !ok {
		return eris.Wrapf(ErrNotFound, "persona: delete %s", id)
	}
	if err := s.repo.DeleteCustom(ctx, id); err != nil {
		return eris.Wrapf(err, "persona: delete custom config %s", id)
	}
	return nil
}
