package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Event is a campaign or activity supporters subscribe to. An event may
// carry a five digit variable symbol prefix used by the allocator.
type Event struct {
	ID                   int64     `json:"-"`
	EventID              string    `json:"id"`
	Name                 string    `json:"name"`
	Slug                 string    `json:"slug,omitempty"`
	VariableSymbolPrefix int       `json:"variable_symbol_prefix,omitempty"`
	AllowsRegistration   bool      `json:"allows_registration"`
	Statistics           bool      `json:"statistics"`
	Signatures           bool      `json:"signatures"`
	AdministrativeUnits  []string  `json:"administrative_units"`
	CreatedAt            time.Time `json:"created_at"`
}

func (e *Event) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.VariableSymbolPrefix,
			validation.When(e.VariableSymbolPrefix != 0, validation.Min(10000), validation.Max(99999))),
	)
}
