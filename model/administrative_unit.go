package model

import "time"

// AdministrativeUnit is the tenancy boundary. Every money account, payment
// channel, contact and communication rule belongs to exactly one unit and
// matching never crosses unit boundaries.
type AdministrativeUnit struct {
	ID         int64     `json:"-"`
	UnitID     string    `json:"id"`
	Name       string    `json:"name"`
	TaxID      string    `json:"tax_id"`
	FromEmail  string    `json:"from_email"`
	BrandColor string    `json:"brand_color"`
	CreatedAt  time.Time `json:"created_at"`
}
