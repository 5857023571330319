package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ProfileKind discriminates person and company supporters. Behaviour that
// branches on "is this a person" dispatches on this tag, never on runtime
// type.
type ProfileKind string

const (
	KindUserProfile    ProfileKind = "user"
	KindCompanyProfile ProfileKind = "company"
)

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

type Language string

const (
	LanguageCzech   Language = "cs"
	LanguageEnglish Language = "en"
)

// Profile is a supporter. Shared fields live here; variant-specific fields
// are filled according to Kind.
type Profile struct {
	ID                    int64       `json:"-"`
	ProfileID             string      `json:"id"`
	Kind                  ProfileKind `json:"kind"`
	Username              string      `json:"username"`
	Email                 string      `json:"email,omitempty"`
	Addressment           string      `json:"addressment,omitempty"`
	Street                string      `json:"street,omitempty"`
	City                  string      `json:"city,omitempty"`
	ZipCode               string      `json:"zip_code,omitempty"`
	CorrespondenceStreet  string      `json:"correspondence_street,omitempty"`
	CorrespondenceCity    string      `json:"correspondence_city,omitempty"`
	CorrespondenceZipCode string      `json:"correspondence_zip_code,omitempty"`
	AdministrativeUnits   []string    `json:"administrative_units"`
	IsActive              bool        `json:"is_active"`
	CanEditAllUnits       bool        `json:"can_edit_all_units"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`

	// user variant
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	Sex         Sex      `json:"sex,omitempty"`
	TitleBefore string   `json:"title_before,omitempty"`
	TitleAfter  string   `json:"title_after,omitempty"`
	Language    Language `json:"language,omitempty"`
	BirthDay    int      `json:"birth_day,omitempty"`
	BirthMonth  int      `json:"birth_month,omitempty"`
	AgeGroup    int      `json:"age_group,omitempty"`

	// company variant
	CompanyName string `json:"company_name,omitempty"`
	CRN         string `json:"crn,omitempty"`
	TIN         string `json:"tin,omitempty"`
}

// NormalizeEmail lower-cases the address the way the unique constraint
// expects it.
func (p *Profile) NormalizeEmail() {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
}

func (p *Profile) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.Kind, validation.Required, validation.In(KindUserProfile, KindCompanyProfile)),
		validation.Field(&p.Email, validation.When(p.Email != "", validation.Match(regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)))),
	)
}

// ProfileEmail is an additional address. At most one per profile carries
// IsPrimary, enforced by a partial unique index.
type ProfileEmail struct {
	ID        int64  `json:"-"`
	ProfileID string `json:"profile_id"`
	Email     string `json:"email"`
	IsPrimary bool   `json:"is_primary"`
}

var telephoneFormat = regexp.MustCompile(`^\+?([0-9] *){9,}$`)

// Telephone is a supporter phone number. At most one per profile carries
// IsPrimary.
type Telephone struct {
	ID        int64  `json:"-"`
	ProfileID string `json:"profile_id"`
	Number    string `json:"number"`
	IsPrimary bool   `json:"is_primary"`
}

func (t *Telephone) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Number, validation.Required, validation.Match(telephoneFormat)),
	)
}

// CompanyContact is a named contact at a company, scoped to one
// administrative unit. At most one primary per (company, unit).
type CompanyContact struct {
	ID                   int64  `json:"-"`
	CompanyID            string `json:"company_id"`
	AdministrativeUnitID string `json:"administrative_unit_id"`
	ContactName          string `json:"contact_name"`
	Email                string `json:"email,omitempty"`
	Telephone            string `json:"telephone,omitempty"`
	IsPrimary            bool   `json:"is_primary"`
}

// Preference holds per-unit communication consent. Exactly one row exists
// per (profile, administrative unit); rows follow the profile's unit set.
type Preference struct {
	ID                   int64  `json:"-"`
	ProfileID            string `json:"profile_id"`
	AdministrativeUnitID string `json:"administrative_unit_id"`
	NewsletterOn         bool   `json:"newsletter_on"`
	CallOn               bool   `json:"call_on"`
	ChallengeOn          bool   `json:"challenge_on"`
	LetterOn             bool   `json:"letter_on"`
	SendMailingLists     bool   `json:"send_mailing_lists"`
	Public               bool   `json:"public"`
}
