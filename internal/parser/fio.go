package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// parseFio reads the Fio bank CSV export: a semicolon-delimited key;value
// header block (accountId, bankId, dateStart, dateEnd), then a column
// header row beginning "ID operace", then transaction rows.
func parseFio(data []byte) (*Statement, error) {
	reader := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
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
			return nil, fmt.Errorf("error reading Fio statement: %w", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		if columns == nil {
			if record[0] == "ID operace" {
				columns = columnMap(record)
				continue
			}
			if err := parseFioHeaderLine(record, &statement.Header); err != nil {
				return nil, err
			}
			continue
		}

		row, skip, err := parseFioRow(record, columns)
		if err != nil {
			return nil, err
		}
		if !skip {
			statement.Rows = append(statement.Rows, row)
		}
	}

	if columns == nil {
		return nil, fmt.Errorf("fio statement is missing the 'ID operace' column header")
	}
	if statement.Header.AccountNumber == "" {
		return nil, fmt.Errorf("fio statement is missing the accountId header")
	}
	return statement, nil
}

func parseFioHeaderLine(record []string, header *Header) error {
	if len(record) < 2 {
		return nil
	}
	key, value := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
	switch key {
	case "accountId":
		header.AccountNumber = value
	case "dateStart":
		date, err := parseCzechDate(value)
		if err != nil {
			return fmt.Errorf("invalid dateStart %q: %w", value, err)
		}
		header.DateFrom = &date
	case "dateEnd":
		date, err := parseCzechDate(value)
		if err != nil {
			return fmt.Errorf("invalid dateEnd %q: %w", value, err)
		}
		header.DateTo = &date
	}
	return nil
}

func parseFioRow(record []string, columns map[string]int) (Row, bool, error) {
	amount, err := parseAmount(field(record, columns, "Objem"))
	if err != nil {
		return Row{}, false, fmt.Errorf("invalid amount in operation %s: %w", field(record, columns, "ID operace"), err)
	}
	// outgoing transfers carry a negative amount and are not ours to pair
	if amount <= 0 {
		return Row{}, true, nil
	}

	date, err := parseCzechDate(field(record, columns, "Datum"))
	if err != nil {
		return Row{}, false, fmt.Errorf("invalid date in operation %s: %w", field(record, columns, "ID operace"), err)
	}

	return Row{
		Date:               date,
		Amount:             amount,
		Account:            field(record, columns, "Protiúčet"),
		BankCode:           padCode(field(record, columns, "Kód banky")),
		VS:                 field(record, columns, "VS"),
		SS:                 field(record, columns, "SS"),
		KS:                 padCode(field(record, columns, "KS")),
		BIC:                field(record, columns, "BIC"),
		UserIdentification: field(record, columns, "Uživatelská identifikace"),
		AccountName:        field(record, columns, "Název protiúčtu"),
		BankName:           field(record, columns, "Název banky"),
		Message:            field(record, columns, "Zpráva pro příjemce"),
		OperationID:        field(record, columns, "ID operace"),
	}, false, nil
}

func columnMap(headerRow []string) map[string]int {
	columns := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

func field(record []string, columns map[string]int, name string) string {
	index, ok := columns[name]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
