package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// parseKomercniBanka reads the Komerční banka CSV export. The file is
// Windows-1250 encoded with unaccented header keys ("Cislo uctu",
// "Vypis za obdobi") followed by a column header row.
func parseKomercniBanka(data []byte) (*Statement, error) {
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
			return nil, fmt.Errorf("error reading Komerční banka statement: %w", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		if columns == nil {
			if strings.HasPrefix(record[0], "Datum splatnosti") {
				columns = columnMap(record)
				continue
			}
			if err := parseKBHeaderLine(record, &statement.Header); err != nil {
				return nil, err
			}
			continue
		}

		amount, err := parseAmount(field(record, columns, "Castka"))
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", field(record, columns, "Castka"), err)
		}
		if amount <= 0 {
			continue
		}
		date, err := parseCzechDate(field(record, columns, "Datum splatnosti"))
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", field(record, columns, "Datum splatnosti"), err)
		}

		account, bankCode := splitCounterAccount(field(record, columns, "Protiucet a kod banky"))
		statement.Rows = append(statement.Rows, Row{
			Date:               date,
			Amount:             amount,
			Account:            account,
			BankCode:           bankCode,
			VS:                 field(record, columns, "VS"),
			SS:                 field(record, columns, "SS"),
			KS:                 padCode(field(record, columns, "KS")),
			UserIdentification: field(record, columns, "Identifikace transakce"),
			AccountName:        field(record, columns, "Nazev protiuctu"),
			Message:            field(record, columns, "Popis prikazce"),
		})
	}

	if columns == nil {
		return nil, fmt.Errorf("komerční banka statement is missing the column header row")
	}
	return statement, nil
}

func parseKBHeaderLine(record []string, header *Header) error {
	if len(record) < 2 {
		return nil
	}
	key, value := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
	switch key {
	case "Cislo uctu":
		header.AccountNumber = value
	case "Vypis za obdobi":
		// period comes as a single "DD.MM.YYYY - DD.MM.YYYY" value
		parts := strings.SplitN(value, "-", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid statement period %q", value)
		}
		from, err := parseCzechDate(strings.TrimSpace(parts[0]))
		if err != nil {
			return fmt.Errorf("invalid period start %q: %w", parts[0], err)
		}
		to, err := parseCzechDate(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("invalid period end %q: %w", parts[1], err)
		}
		header.DateFrom = &from
		header.DateTo = &to
	}
	return nil
}
