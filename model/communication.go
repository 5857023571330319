package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CommunicationType distinguishes how an interaction came to be.
type CommunicationType string

const (
	CommunicationMass       CommunicationType = "mass"
	CommunicationAuto       CommunicationType = "auto"
	CommunicationIndividual CommunicationType = "individual"
)

// MethodType is the outbound channel of a communication rule.
type MethodType string

const (
	MethodEmail  MethodType = "email"
	MethodLetter MethodType = "letter"
	MethodPhone  MethodType = "phonecall"
	MethodSMS    MethodType = "sms"
)

// AutomaticCommunication is a rule: when its named condition matches a
// payment channel, an interaction is created from the templates. OnlyOnce
// rules track the profiles already sent to.
type AutomaticCommunication struct {
	ID                   int64      `json:"-"`
	CommunicationID      string     `json:"id"`
	Name                 string     `json:"name"`
	AdministrativeUnitID string     `json:"administrative_unit_id"`
	NamedConditionID     string     `json:"named_condition_id"`
	MethodType           MethodType `json:"method_type"`
	Subject              string     `json:"subject"`
	SubjectEn            string     `json:"subject_en,omitempty"`
	Template             string     `json:"template"`
	TemplateEn           string     `json:"template_en,omitempty"`
	OnlyOnce             bool       `json:"only_once"`
	DispatchAuto         bool       `json:"dispatch_auto"`
	EventID              string     `json:"event_id,omitempty"`
}

func (a *AutomaticCommunication) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.AdministrativeUnitID, validation.Required),
		validation.Field(&a.NamedConditionID, validation.Required),
		validation.Field(&a.MethodType, validation.Required,
			validation.In(MethodEmail, MethodLetter, MethodPhone, MethodSMS)),
	)
}

// MassCommunication is an explicit one-off send to a list of profiles.
type MassCommunication struct {
	ID                    int64      `json:"-"`
	CommunicationID       string     `json:"id"`
	Name                  string     `json:"name"`
	AdministrativeUnitID  string     `json:"administrative_unit_id"`
	MethodType            MethodType `json:"method_type"`
	Subject               string     `json:"subject"`
	SubjectEn             string     `json:"subject_en,omitempty"`
	Template              string     `json:"template"`
	TemplateEn            string     `json:"template_en,omitempty"`
	ScheduledFor          *time.Time `json:"scheduled_for,omitempty"`
	ProfileIDs            []string   `json:"profile_ids"`
	AttachTaxConfirmation bool       `json:"attach_tax_confirmation"`
	TaxConfirmationYear   int        `json:"tax_confirmation_year,omitempty"`
	PdfTypeID             string     `json:"pdf_type_id,omitempty"`
}

// Interaction is one recorded communication with a supporter.
type Interaction struct {
	ID                   int64             `json:"-"`
	InteractionID        string            `json:"id"`
	ProfileID            string            `json:"profile_id"`
	Type                 MethodType        `json:"type"`
	DateFrom             time.Time         `json:"date_from"`
	Subject              string            `json:"subject"`
	Summary              string            `json:"summary"`
	Note                 string            `json:"note,omitempty"`
	EventID              string            `json:"event_id,omitempty"`
	AdministrativeUnitID string            `json:"administrative_unit_id"`
	Dispatched           bool              `json:"dispatched"`
	CommunicationType    CommunicationType `json:"communication_type"`
	CreatedAt            time.Time         `json:"created_at"`
}
