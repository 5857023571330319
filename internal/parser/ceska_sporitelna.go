package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// parseCeskaSporitelna reads the Česká spořitelna CSV export. The file is
// Windows-1250 encoded with a key;value header block followed by a column
// header row beginning "Datum zaúčtování".
func parseCeskaSporitelna(data []byte) (*Statement, error) {
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
			return nil, fmt.Errorf("error reading Česká spořitelna statement: %w", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		if columns == nil {
			if strings.HasPrefix(record[0], "Datum zaúčtování") {
				columns = columnMap(record)
				continue
			}
			if err := parseCSHeaderLine(record, &statement.Header); err != nil {
				return nil, err
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
			Date:               date,
			Amount:             amount,
			Account:            field(record, columns, "Protiúčet"),
			BankCode:           padCode(field(record, columns, "Kód banky protiúčtu")),
			VS:                 field(record, columns, "VS"),
			SS:                 field(record, columns, "SS"),
			KS:                 padCode(field(record, columns, "KS")),
			UserIdentification: field(record, columns, "Identifikace"),
			Message:            field(record, columns, "Zpráva"),
		})
	}

	if columns == nil {
		return nil, fmt.Errorf("česká spořitelna statement is missing the column header row")
	}
	return statement, nil
}

func parseCSHeaderLine(record []string, header *Header) error {
	if len(record) < 2 {
		return nil
	}
	key, value := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
	switch key {
	case "Číslo účtu":
		header.AccountNumber = value
	case "Počáteční datum období":
		date, err := parseCzechDate(value)
		if err != nil {
			return fmt.Errorf("invalid period start %q: %w", value, err)
		}
		header.DateFrom = &date
	case "Konečné datum období":
		date, err := parseCzechDate(value)
		if err != nil {
			return fmt.Errorf("invalid period end %q: %w", value, err)
		}
		header.DateTo = &date
	}
	return nil
}
