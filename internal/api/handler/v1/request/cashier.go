package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type AddItemRequest struct {
	Name string `json:"name"`
}

func (req *AddItemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, 200)),
	)
}
