package request

import (
	"encoding/json"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/catalog"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

var errEmptyUpdate = errors.New("the update does not change anything")

type CreateEventRequest struct {
	Name                 string                      `json:"name"`
	KassensystemEnabled  bool                        `json:"kassensystem_enabled"`
	ShotcounterEnabled   bool                        `json:"shotcounter_enabled"`
	SharedSettings       *domain.SharedSettings      `json:"shared_settings"`
	KassensystemSettings json.RawMessage             `json:"kassensystem_settings" swaggertype:"object"`
	ShotcounterSettings  *domain.ShotcounterSettings `json:"shotcounter_settings"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, 150)),
	)
}

// Event converts the request. A malformed catalog is reported as a
// validation error.
func (req *CreateEventRequest) Event() (domain.Event, error) {
	settings, err := catalog.ParseSettings(req.KassensystemSettings)
	if err != nil {
		return domain.Event{}, err
	}

	event := domain.Event{
		Name:                 req.Name,
		KassensystemEnabled:  req.KassensystemEnabled,
		ShotcounterEnabled:   req.ShotcounterEnabled,
		KassensystemSettings: settings,
	}
	if req.SharedSettings != nil {
		event.SharedSettings = *req.SharedSettings
	}
	if req.ShotcounterSettings != nil {
		event.ShotcounterSettings = *req.ShotcounterSettings
	}

	return event, nil
}

// UpdateEventRequest is a partial edit. Revision, when sent, must match the
// revision the editor loaded.
type UpdateEventRequest struct {
	Revision             *int                        `json:"revision"`
	Name                 *string                     `json:"name"`
	KassensystemEnabled  *bool                       `json:"kassensystem_enabled"`
	ShotcounterEnabled   *bool                       `json:"shotcounter_enabled"`
	SharedSettings       *domain.SharedSettings      `json:"shared_settings"`
	KassensystemSettings json.RawMessage             `json:"kassensystem_settings" swaggertype:"object"`
	ShotcounterSettings  *domain.ShotcounterSettings `json:"shotcounter_settings"`
}

func (req *UpdateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Revision, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	if req.Name == nil && req.KassensystemEnabled == nil && req.ShotcounterEnabled == nil &&
		req.SharedSettings == nil && len(req.KassensystemSettings) == 0 && req.ShotcounterSettings == nil {
		return errEmptyUpdate
	}

	return nil
}

func (req *UpdateEventRequest) Update() (domain.EventUpdate, error) {
	update := domain.EventUpdate{
		Name:                req.Name,
		KassensystemEnabled: req.KassensystemEnabled,
		ShotcounterEnabled:  req.ShotcounterEnabled,
		SharedSettings:      req.SharedSettings,
		ShotcounterSettings: req.ShotcounterSettings,
	}

	if len(req.KassensystemSettings) > 0 && string(req.KassensystemSettings) != "null" {
		settings, err := catalog.ParseSettings(req.KassensystemSettings)
		if err != nil {
			return domain.EventUpdate{}, err
		}
		update.KassensystemSettings = &settings
	}

	return update, nil
}
