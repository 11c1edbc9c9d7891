package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
)

var (
	ErrEventNotFound = dao.ErrEventNotFound
	ErrNoActiveEvent = dao.ErrNoActiveEvent
	ErrEventConflict = dao.ErrEventConflict
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindActive(ctx context.Context) (dao.Event, error)
	List(ctx context.Context, includeArchived bool) ([]dao.Event, error)
	Activate(ctx context.Context, id uint) (dao.Event, error)
	SetArchived(ctx context.Context, id uint, archived bool) (dao.Event, error)
	UpdateWithRevision(ctx context.Context, event dao.Event) (dao.Event, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	e, err := r.domainToDao(event)
	if err != nil {
		return domain.Event{}, err
	}

	created, err := r.dao.Insert(ctx, e)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	e, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(e), nil
}

func (r *EventRepository) FindActive(ctx context.Context) (domain.Event, error) {
	e, err := r.dao.FindActive(ctx)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	return r.daoToDomain(e), nil
}

func (r *EventRepository) List(ctx context.Context, includeArchived bool) ([]domain.Event, error) {
	events, err := r.dao.List(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	result := make([]domain.Event, 0, len(events))
	for _, e := range events {
		result = append(result, r.daoToDomain(e))
	}

	return result, nil
}

func (r *EventRepository) Activate(ctx context.Context, id uint) (domain.Event, error) {
	e, err := r.dao.Activate(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Activate -> %w", err)
	}

	return r.daoToDomain(e), nil
}

func (r *EventRepository) SetArchived(ctx context.Context, id uint, archived bool) (domain.Event, error) {
	e, err := r.dao.SetArchived(ctx, id, archived)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.SetArchived -> %w", err)
	}

	return r.daoToDomain(e), nil
}

// Update stores event if nobody changed it since event.Revision was read.
func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	e, err := r.domainToDao(event)
	if err != nil {
		return domain.Event{}, err
	}

	updated, err := r.dao.UpdateWithRevision(ctx, e)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.UpdateWithRevision -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) domainToDao(e domain.Event) (dao.Event, error) {
	shared, err := json.Marshal(e.SharedSettings)
	if err != nil {
		return dao.Event{}, fmt.Errorf("json.Marshal shared settings -> %w", err)
	}
	kasse, err := json.Marshal(e.KassensystemSettings)
	if err != nil {
		return dao.Event{}, fmt.Errorf("json.Marshal kassensystem settings -> %w", err)
	}
	counter, err := json.Marshal(e.ShotcounterSettings)
	if err != nil {
		return dao.Event{}, fmt.Errorf("json.Marshal shotcounter settings -> %w", err)
	}

	return dao.Event{
		ID:                   e.ID,
		Name:                 e.Name,
		IsActive:             e.IsActive,
		IsArchived:           e.IsArchived,
		KassensystemEnabled:  e.KassensystemEnabled,
		ShotcounterEnabled:   e.ShotcounterEnabled,
		Revision:             e.Revision,
		SettingsVersion:      domain.SettingsVersion,
		SharedSettings:       datatypes.JSON(shared),
		KassensystemSettings: datatypes.JSON(kasse),
		ShotcounterSettings:  datatypes.JSON(counter),
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}, nil
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	event := domain.Event{
		ID:                  e.ID,
		Name:                e.Name,
		IsActive:            e.IsActive,
		IsArchived:          e.IsArchived,
		KassensystemEnabled: e.KassensystemEnabled,
		ShotcounterEnabled:  e.ShotcounterEnabled,
		Revision:            e.Revision,
		SettingsVersion:     e.SettingsVersion,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}

	event.SharedSettings = decodeSettings[domain.SharedSettings](e.ID, "shared_settings", e.SharedSettings)
	event.KassensystemSettings = decodeSettings[domain.KassensystemSettings](e.ID, "kassensystem_settings", e.KassensystemSettings)
	event.ShotcounterSettings = decodeSettings[domain.ShotcounterSettings](e.ID, "shotcounter_settings", e.ShotcounterSettings)
	migrateSettings(&event)

	return event
}

// decodeSettings returns the zero value when the stored blob is empty or
// unreadable; defaults are applied afterwards.
func decodeSettings[T any](eventID uint, column string, raw datatypes.JSON) T {
	var settings T
	if len(raw) == 0 || string(raw) == "null" {
		return settings
	}

	if err := json.Unmarshal(raw, &settings); err != nil {
		zap.L().Warn("ignoring unreadable event settings",
			zap.Uint("eventID", eventID),
			zap.String("column", column),
			zap.Error(err),
		)
		var zero T
		return zero
	}

	return settings
}

// migrateSettings upgrades blobs written by older versions to the current
// layout. Version 0 blobs predate typed settings and only need defaults.
func migrateSettings(event *domain.Event) {
	event.SharedSettings.ApplyDefaults()
	event.KassensystemSettings.ApplyDefaults()
	event.ShotcounterSettings.ApplyDefaults()
	event.SettingsVersion = domain.SettingsVersion
}
