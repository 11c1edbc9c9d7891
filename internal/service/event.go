package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/catalog"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository"
)

const maxEventNameLength = 150

var (
	ErrEventNotFound     = repository.ErrEventNotFound
	ErrNoActiveEvent     = repository.ErrNoActiveEvent
	ErrEventConflict     = repository.ErrEventConflict
	ErrSubsystemDisabled = errors.New("the requested subsystem is disabled for the active event")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindActive(ctx context.Context) (domain.Event, error)
	List(ctx context.Context, includeArchived bool) ([]domain.Event, error)
	Activate(ctx context.Context, id uint) (domain.Event, error)
	SetArchived(ctx context.Context, id uint, archived bool) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

// GetActiveEvent returns the single active, non-archived event or
// ErrNoActiveEvent.
func (s *EventService) GetActiveEvent(ctx context.Context) (domain.Event, error) {
	event, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveEvent) {
			return domain.Event{}, ErrNoActiveEvent
		}

		return domain.Event{}, fmt.Errorf("s.repo.FindActive -> %w", err)
	}

	return event, nil
}

// RequireActiveEvent additionally checks that the active event runs the
// point of sale and/or the shot counter.
func (s *EventService) RequireActiveEvent(ctx context.Context, needPOS, needCounter bool) (domain.Event, error) {
	event, err := s.GetActiveEvent(ctx)
	if err != nil {
		return domain.Event{}, err
	}

	if !event.Serves(needPOS, needCounter) {
		return domain.Event{}, ErrSubsystemDisabled
	}

	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, includeArchived bool) ([]domain.Event, error) {
	events, err := s.repo.List(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return events, nil
}

// CreateEvent stores a new inactive event. Missing settings get defaults and
// an empty catalog becomes the built-in one.
func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	name, err := validateEventName(event.Name)
	if err != nil {
		return domain.Event{}, err
	}
	event.Name = name

	event.KassensystemSettings, err = catalog.ValidateAndNormalize(event.KassensystemSettings)
	if err != nil {
		return domain.Event{}, err
	}
	event.SharedSettings.ApplyDefaults()
	event.ShotcounterSettings.ApplyDefaults()
	event.IsActive = false
	event.IsArchived = false

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// UpdateEvent applies an admin edit. With expectedRevision set the edit only
// succeeds if nobody saved the event since that revision was read; otherwise
// it is checked against the revision loaded here.
func (s *EventService) UpdateEvent(ctx context.Context, id uint, expectedRevision *int, update domain.EventUpdate) (domain.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	if expectedRevision != nil {
		if *expectedRevision != event.Revision {
			return domain.Event{}, ErrEventConflict
		}
	}

	if update.Name != nil {
		name, err := validateEventName(*update.Name)
		if err != nil {
			return domain.Event{}, err
		}
		event.Name = name
	}
	if update.KassensystemEnabled != nil {
		event.KassensystemEnabled = *update.KassensystemEnabled
	}
	if update.ShotcounterEnabled != nil {
		event.ShotcounterEnabled = *update.ShotcounterEnabled
	}
	if update.SharedSettings != nil {
		event.SharedSettings = *update.SharedSettings
		event.SharedSettings.ApplyDefaults()
	}
	if update.ShotcounterSettings != nil {
		event.ShotcounterSettings = *update.ShotcounterSettings
		event.ShotcounterSettings.ApplyDefaults()
	}
	if update.KassensystemSettings != nil {
		normalized, err := catalog.ValidateAndNormalize(*update.KassensystemSettings)
		if err != nil {
			return domain.Event{}, err
		}
		event.KassensystemSettings = normalized
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventConflict):
			return domain.Event{}, ErrEventConflict
		case errors.Is(err, repository.ErrEventNotFound):
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// ActivateEvent makes id the only active event and un-archives it.
func (s *EventService) ActivateEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.Activate(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return domain.Event{}, ErrEventNotFound
		case errors.Is(err, repository.ErrEventConflict):
			return domain.Event{}, ErrEventConflict
		}

		return domain.Event{}, fmt.Errorf("s.repo.Activate -> %w", err)
	}

	return event, nil
}

// ArchiveEvent hides an event and deactivates it.
func (s *EventService) ArchiveEvent(ctx context.Context, id uint) (domain.Event, error) {
	return s.setArchived(ctx, id, true)
}

// UnarchiveEvent restores an event without activating it.
func (s *EventService) UnarchiveEvent(ctx context.Context, id uint) (domain.Event, error) {
	return s.setArchived(ctx, id, false)
}

func (s *EventService) setArchived(ctx context.Context, id uint, archived bool) (domain.Event, error) {
	event, err := s.repo.SetArchived(ctx, id, archived)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.SetArchived -> %w", err)
	}

	return event, nil
}

func validateEventName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("event name must not be empty")
	}
	if len([]rune(name)) > maxEventNameLength {
		return "", domain.NewValidationError("event name must be at most %d characters", maxEventNameLength)
	}

	return name, nil
}
