// Package parser turns bank statement exports and donation portal reports
// into a uniform header plus candidate payment rows. Parsers are pure
// functions over the file bytes; persistence and pairing happen in the
// orchestrator so each format can be tested against fixture files alone.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klub-pratel/klub/model"
)

// Header is the statement-level data: the owning account number as printed
// by the bank and the covered period. Formats without a header block leave
// all fields empty.
type Header struct {
	AccountNumber string
	DateFrom      *time.Time
	DateTo        *time.Time
}

// Row is one candidate payment. Amounts are whole CZK and always positive;
// outgoing rows are dropped during parsing.
type Row struct {
	Date               time.Time
	Amount             int64
	Account            string
	BankCode           string
	VS                 string
	VS2                string
	SS                 string
	KS                 string
	BIC                string
	UserIdentification string
	AccountName        string
	BankName           string
	Message            string
	OperationID        string
}

// Statement is the parse result for one imported file.
type Statement struct {
	Header Header
	Rows   []Row
}

type parseFunc func(data []byte) (*Statement, error)

var parsers = map[model.StatementType]parseFunc{
	model.StatementAccount:         parseFio,
	model.StatementAccountCS:       parseCeskaSporitelna,
	model.StatementAccountKB:       parseKomercniBanka,
	model.StatementAccountCSOB:     parseCSOB,
	model.StatementAccountSberbank: parseSberbank,
	model.StatementAccountRB:       parseRaiffeisenbank,
}

// Parse dispatches to the format-specific bank parser. The darujme report
// format has its own entry point (ParseDarujme) because its rows carry
// donor identity, not just payment data.
func Parse(format model.StatementType, data []byte) (*Statement, error) {
	parse, ok := parsers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported statement format %q", format)
	}
	return parse(data)
}

// parseAmount reads a bank amount that may use a comma decimal separator
// and thousands spaces, rounded to whole CZK.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d.Round(0).IntPart(), nil
}

// padCode zero-pads a bank code or payment symbol to four digits when
// present.
func padCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for len(code) < 4 {
		code = "0" + code
	}
	return code
}

// splitCounterAccount splits "account/bank_code"; a missing bank code
// yields just the account.
func splitCounterAccount(counter string) (account, bankCode string) {
	counter = strings.TrimSpace(counter)
	account, bankCode, found := strings.Cut(counter, "/")
	if !found {
		return counter, ""
	}
	return account, padCode(bankCode)
}

// parseCzechDate reads DD.MM.YYYY.
func parseCzechDate(s string) (time.Time, error) {
	return time.Parse("02.01.2006", strings.TrimSpace(s))
}

// parseSlashDate reads DD/MM/YYYY, used by the Raiffeisenbank export.
func parseSlashDate(s string) (time.Time, error) {
	return time.Parse("02/01/2006", strings.TrimSpace(s))
}
