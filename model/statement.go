package model

import (
	"fmt"
	"time"
)

// StatementType tags the source format of an imported statement.
type StatementType string

const (
	StatementAccount         StatementType = "account"
	StatementAccountCS       StatementType = "account_cs"
	StatementAccountKB       StatementType = "account_kb"
	StatementAccountCSOB     StatementType = "account_csob"
	StatementAccountSberbank StatementType = "account_sberbank"
	StatementAccountRB       StatementType = "account_raiffeisenbank"
	StatementDarujme         StatementType = "darujme"
)

// AccountStatement is one imported statement file. PairLog accumulates
// human readable pairing outcomes for operator review.
type AccountStatement struct {
	ID                   int64         `json:"-"`
	StatementID          string        `json:"id"`
	Type                 StatementType `json:"type"`
	SourceFile           string        `json:"source_file"`
	ImportedAt           time.Time     `json:"imported_at"`
	DateFrom             *time.Time    `json:"date_from,omitempty"`
	DateTo               *time.Time    `json:"date_to,omitempty"`
	AdministrativeUnitID string        `json:"administrative_unit_id"`
	PairLog              string        `json:"pair_log,omitempty"`
}

// AppendPairLog records one pairing outcome as "<account_name> => <reason>".
func (s *AccountStatement) AppendPairLog(accountName, reason string) {
	s.PairLog += fmt.Sprintf("%s => %s\n", accountName, reason)
}
