package model

import "time"

// MoneyAccountKind discriminates the two account variants.
type MoneyAccountKind string

const (
	KindBankAccount MoneyAccountKind = "bank"
	KindApiAccount  MoneyAccountKind = "api"
)

// MoneyAccount is an account that can receive money. A BankAccount variant
// carries the account number statements are matched against; an ApiAccount
// variant carries the donation portal credentials and is tied to one event.
type MoneyAccount struct {
	ID                   int64            `json:"-"`
	AccountID            string           `json:"id"`
	Kind                 MoneyAccountKind `json:"kind"`
	Name                 string           `json:"name"`
	AdministrativeUnitID string           `json:"administrative_unit_id"`

	// bank variant
	BankAccountNumber string `json:"bank_account_number,omitempty"`

	// api variant
	ApiID     string `json:"api_id,omitempty"`
	ApiSecret string `json:"-"`
	ProjectID string `json:"project_id,omitempty"`
	EventID   string `json:"event_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// UserBankAccount is a supporter's outbound account, stored as
// "number/bank_code" and used by the first pairing tier.
type UserBankAccount struct {
	ID                int64  `json:"-"`
	BankAccountID     string `json:"id"`
	ProfileID         string `json:"profile_id"`
	BankAccountNumber string `json:"bank_account_number"`
}
