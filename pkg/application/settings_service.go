package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/events"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
)

type SettingsService struct {
	repo      domain.SessionRepository
	publisher events.Publisher
}

func NewSettingsService(repo domain.SessionRepository, publisher events.Publisher) *SettingsService {
	return &SettingsService{repo: repo, publisher: publisher}
}

func (s *SettingsService) Get() (settings.Settings, error) {
	current, err := s.repo.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return current, nil
}

// Toggle flips one toggle, keeping its group consistent.
func (s *SettingsService) Toggle(ctx context.Context, key settings.Key) (settings.Settings, error) {
	return s.update(ctx, func(current settings.Settings) (settings.Settings, error) {
		return settings.ApplyToggle(current, key)
	})
}

// Set assigns one toggle, keeping its group consistent.
func (s *SettingsService) Set(ctx context.Context, key settings.Key, on bool) (settings.Settings, error) {
	return s.update(ctx, func(current settings.Settings) (settings.Settings, error) {
		return settings.Set(current, key, on)
	})
}

// Reset restores the default toggles.
func (s *SettingsService) Reset(ctx context.Context) (settings.Settings, error) {
	return s.update(ctx, func(settings.Settings) (settings.Settings, error) {
		return settings.Default(), nil
	})
}

func (s *SettingsService) update(ctx context.Context, apply func(settings.Settings) (settings.Settings, error)) (settings.Settings, error) {
	current, err := s.Get()
	if err != nil {
		return nil, err
	}
	next, err := apply(current)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveSettings(next); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	changed := settings.Diff(current, next)
	if len(changed) > 0 && s.publisher != nil {
		keys := make([]string, len(changed))
		for i, k := range changed {
			keys[i] = string(k)
		}
		// Saved toggles stand even when a listener fails.
		_ = s.publisher.Dispatch(ctx, &events.SettingsChanged{
			BaseEvent: events.NewBaseEvent(events.EventTypeSettingsChanged, s.repo.Document().String(), ""),
			Keys:      keys,
		})
	}
	return next, nil
}
