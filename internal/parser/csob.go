package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// parseCSOB reads the ČSOB CEB export. The file is Windows-1250 encoded;
// the preamble carries a "Datum: od ... do ..." period line and a "CEB"
// line naming the account, followed by a semicolon-delimited table.
func parseCSOB(data []byte) (*Statement, error) {
	decoded, err := decodeWindows1250(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufio.NewReader(bytes.NewReader(decoded)))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	statement := &Statement{}
	var columns map[string]int

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading ČSOB statement: %w", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		if columns == nil {
			first := strings.TrimSpace(record[0])
			switch {
			case strings.HasPrefix(first, "Datum zaúčtování"):
				columns = columnMap(record)
			case strings.HasPrefix(first, "Datum"):
				if err := parseCSOBPeriod(first, &statement.Header); err != nil {
					return nil, err
				}
			case strings.HasPrefix(first, "CEB"):
				statement.Header.AccountNumber = csobAccount(record)
			}
			continue
		}

		amount, err := parseAmount(field(record, columns, "Částka"))
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", field(record, columns, "Částka"), err)
		}
		if amount <= 0 {
			continue
		}
		date, err := parseCzechDate(field(record, columns, "Datum zaúčtování"))
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", field(record, columns, "Datum zaúčtování"), err)
		}

		statement.Rows = append(statement.Rows, Row{
			Date:        date,
			Amount:      amount,
			Account:     field(record, columns, "Číslo protiúčtu"),
			BankCode:    padCode(field(record, columns, "Kód banky protiúčtu")),
			VS:          field(record, columns, "VS"),
			SS:          field(record, columns, "SS"),
			KS:          padCode(field(record, columns, "KS")),
			AccountName: field(record, columns, "Název protiúčtu"),
			Message:     field(record, columns, "Zpráva pro příjemce"),
		})
	}

	if columns == nil {
		return nil, fmt.Errorf("čsob statement is missing the column header row")
	}
	return statement, nil
}

// parseCSOBPeriod extracts "od DD.MM.YYYY do DD.MM.YYYY" from the period line.
func parseCSOBPeriod(line string, header *Header) error {
	fields := strings.Fields(line)
	var dates []string
	for _, f := range fields {
		if strings.Count(f, ".") == 2 {
			dates = append(dates, f)
		}
	}
	if len(dates) < 2 {
		return fmt.Errorf("invalid statement period line %q", line)
	}
	from, err := parseCzechDate(dates[0])
	if err != nil {
		return fmt.Errorf("invalid period start %q: %w", dates[0], err)
	}
	to, err := parseCzechDate(dates[1])
	if err != nil {
		return fmt.Errorf("invalid period end %q: %w", dates[1], err)
	}
	header.DateFrom = &from
	header.DateTo = &to
	return nil
}

// csobAccount takes the account number from the CEB line, either as the
// second field or appended after a colon in the first.
func csobAccount(record []string) string {
	if len(record) > 1 && strings.TrimSpace(record[1]) != "" {
		return strings.TrimSpace(record[1])
	}
	if _, after, found := strings.Cut(record[0], ":"); found {
		return strings.TrimSpace(after)
	}
	return ""
}
