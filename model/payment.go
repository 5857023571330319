package model

import (
	"encoding/json"
	"time"
)

// PaymentType tags how money arrived. The "expected" type is a pledge
// placeholder and is excluded from tax aggregation; it never reaches the
// pairing engine because only parsed statement rows do.
type PaymentType string

const (
	PaymentTypeBankTransfer PaymentType = "bank-transfer"
	PaymentTypeCash         PaymentType = "cash"
	PaymentTypeExpected     PaymentType = "expected"
	PaymentTypeCreditCard   PaymentType = "credit_card"
	PaymentTypeMaterialGift PaymentType = "material_gift"
	PaymentTypeDarujme      PaymentType = "darujme"
)

// Payment is a credited transaction on one of the club's money accounts.
// Amount is in whole CZK; outgoing statement rows are dropped at parse time
// so amounts here are always positive.
type Payment struct {
	ID                 int64       `json:"-"`
	PaymentID          string      `json:"id"`
	Date               time.Time   `json:"date"`
	Amount             int64       `json:"amount"`
	RecipientAccountID string      `json:"recipient_account_id"`
	Account            string      `json:"account,omitempty"`
	BankCode           string      `json:"bank_code,omitempty"`
	VS                 string      `json:"vs,omitempty"`
	VS2                string      `json:"vs2,omitempty"`
	SS                 string      `json:"ss,omitempty"`
	KS                 string      `json:"ks,omitempty"`
	BIC                string      `json:"bic,omitempty"`
	UserIdentification string      `json:"user_identification,omitempty"`
	AccountName        string      `json:"account_name,omitempty"`
	BankName           string      `json:"bank_name,omitempty"`
	Type               PaymentType `json:"type"`
	OperationID        string      `json:"operation_id,omitempty"`
	TransactionID      string      `json:"transaction_id,omitempty"`
	PaymentChannelID   string      `json:"payment_channel_id,omitempty"`
	AccountStatementID string      `json:"account_statement_id,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

func (p *Payment) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// CounterAccount renders the sender side as "account/bank_code", the form
// stored on UserBankAccount rows.
func (p *Payment) CounterAccount() string {
	if p.Account == "" {
		return ""
	}
	if p.BankCode == "" {
		return p.Account
	}
	return p.Account + "/" + p.BankCode
}
