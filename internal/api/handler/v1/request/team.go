package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateTeamRequest struct {
	Name string `json:"name"`
}

func (req *CreateTeamRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required),
	)
}

type AddShotsRequest struct {
	Amount int `json:"amount"`
}

func (req *AddShotsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Amount, validation.Min(1).Error("shot amount must be greater than zero")),
	)
}

// UpdateTeamRequest sets a new name and/or an absolute shot count.
type UpdateTeamRequest struct {
	Name  *string `json:"name"`
	Shots *int    `json:"shots"`
}

func (req *UpdateTeamRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Shots, validation.Min(0).Error("shots must not be negative")),
	)
}
