package model

import "time"

// TaxConfirmation is the yearly donation total confirmed to one supporter
// for one administrative unit. Unique per (profile, year, pdf type); the
// rendered PDF is stored alongside the row.
type TaxConfirmation struct {
	ID                   int64     `json:"-"`
	ConfirmationID       string    `json:"id"`
	ProfileID            string    `json:"profile_id"`
	Year                 int       `json:"year"`
	AdministrativeUnitID string    `json:"administrative_unit_id"`
	PdfTypeID            string    `json:"pdf_type_id"`
	Amount               int64     `json:"amount"`
	PdfPath              string    `json:"pdf_path,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ConfirmationToken backs the $auth_token template placeholder: a URL-safe
// per-supporter confirmation link with an expiry. Expired rows are removed
// by the clear_expired_tokens task.
type ConfirmationToken struct {
	ID        int64     `json:"-"`
	Token     string    `json:"token"`
	ProfileID string    `json:"profile_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
