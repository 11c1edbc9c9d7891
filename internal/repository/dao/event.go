package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	Name                string `gorm:"not null"`
	IsActive            bool   `gorm:"not null;default:false"`
	IsArchived          bool   `gorm:"not null;default:false"`
	KassensystemEnabled bool   `gorm:"not null"`
	ShotcounterEnabled  bool   `gorm:"not null"`

	// Revision is bumped on every admin edit and guards against lost updates.
	Revision        int `gorm:"not null;default:0"`
	SettingsVersion int `gorm:"not null;default:0"`

	SharedSettings       datatypes.JSON
	KassensystemSettings datatypes.JSON
	ShotcounterSettings  datatypes.JSON

	Teams     []Team     `gorm:"constraint:OnDelete:CASCADE"`
	Orders    []Order    `gorm:"constraint:OnDelete:CASCADE"`
	OrderLogs []OrderLog `gorm:"constraint:OnDelete:CASCADE"`
	ShotLogs  []ShotLog  `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	event.IsActive = false
	event.Revision = 0

	result := d.db.WithContext(ctx).Omit("Teams", "Orders", "OrderLogs", "ShotLogs").Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// FindActive returns the active, non-archived event.
func (d *EventDAO) FindActive(ctx context.Context) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).
		Where("is_active = ? AND is_archived = ?", true, false).
		Order("id").
		First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrNoActiveEvent
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) List(ctx context.Context, includeArchived bool) ([]Event, error) {
	var events []Event

	query := d.db.WithContext(ctx).Order("is_active DESC").Order("created_at DESC").Order("id DESC")
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

// Activate makes id the only active event. Clearing and setting the flag
// commit together, so a failure leaves the previous active event in place.
func (d *EventDAO) Activate(ctx context.Context, id uint) (Event, error) {
	var event Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		err := tx.Model(&Event{}).
			Where("is_active = ? AND id <> ?", true, id).
			Update("is_active", false).Error
		if err != nil {
			return err
		}

		err = tx.Model(&event).Updates(map[string]any{
			"is_active":   true,
			"is_archived": false,
		}).Error
		if err != nil {
			return err
		}

		return tx.First(&event, id).Error
	})
	if err != nil {
		if isUniqueViolation(err, "idx_events_single_active") {
			return Event{}, ErrEventConflict
		}
		return Event{}, err
	}

	return event, nil
}

// SetArchived archives or restores an event. Archiving always deactivates.
func (d *EventDAO) SetArchived(ctx context.Context, id uint, archived bool) (Event, error) {
	updates := map[string]any{"is_archived": archived}
	if archived {
		updates["is_active"] = false
	}

	var event Event
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Event{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}

		return tx.First(&event, id).Error
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

// UpdateWithRevision writes the editable columns of event if its stored
// revision still equals event.Revision, and bumps the revision.
func (d *EventDAO) UpdateWithRevision(ctx context.Context, event Event) (Event, error) {
	var updated Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Event{}).
			Where("id = ? AND revision = ?", event.ID, event.Revision).
			Updates(map[string]any{
				"name":                  event.Name,
				"kassensystem_enabled":  event.KassensystemEnabled,
				"shotcounter_enabled":   event.ShotcounterEnabled,
				"settings_version":      event.SettingsVersion,
				"shared_settings":       event.SharedSettings,
				"kassensystem_settings": event.KassensystemSettings,
				"shotcounter_settings":  event.ShotcounterSettings,
				"revision":              event.Revision + 1,
			})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.First(&updated, event.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if result.RowsAffected == 0 {
			return ErrEventConflict
		}

		return nil
	})
	if err != nil {
		return Event{}, err
	}

	return updated, nil
}
