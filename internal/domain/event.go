package domain

import "time"

type Event struct {
	ID                   uint                 `json:"id"`
	Name                 string               `json:"name"`
	IsActive             bool                 `json:"is_active"`
	IsArchived           bool                 `json:"is_archived"`
	KassensystemEnabled  bool                 `json:"kassensystem_enabled"`
	ShotcounterEnabled   bool                 `json:"shotcounter_enabled"`
	Revision             int                  `json:"revision"`
	SettingsVersion      int                  `json:"settings_version"`
	SharedSettings       SharedSettings       `json:"shared_settings"`
	KassensystemSettings KassensystemSettings `json:"kassensystem_settings"`
	ShotcounterSettings  ShotcounterSettings  `json:"shotcounter_settings"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// EventUpdate carries the optional fields of an admin edit. Nil fields are
// left untouched.
type EventUpdate struct {
	Name                 *string
	KassensystemEnabled  *bool
	ShotcounterEnabled   *bool
	SharedSettings       *SharedSettings
	KassensystemSettings *KassensystemSettings
	ShotcounterSettings  *ShotcounterSettings
}

// Serves reports whether the event has the requested subsystems enabled.
func (e Event) Serves(needPOS, needCounter bool) bool {
	if needPOS && !e.KassensystemEnabled {
		return false
	}
	if needCounter && !e.ShotcounterEnabled {
		return false
	}
	return true
}

// RequestMeta identifies who triggered a mutation, for the audit trail.
type RequestMeta struct {
	Actor     string
	UserAgent string
}
