package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// parseRaiffeisenbank reads the Raiffeisenbank CSV export. The file is
// Windows-1250 encoded, semicolon delimited, has no header block and uses
// DD/MM/YYYY dates. The counter account comes as "number/bank_code".
func parseRaiffeisenbank(data []byte) (*Statement, error) {
	decoded, err := decodeWindows1250(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufio.NewReader(bytes.NewReader(decoded)))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	statement := &Statement{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading Raiffeisenbank statement: %w", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < 8 {
			return nil, fmt.Errorf("raiffeisenbank statement line %d has %d columns, want at least 8", line, len(record))
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}

		amount, err := parseAmount(record[3])
		if err != nil {
			return nil, fmt.Errorf("invalid amount on line %d: %w", line, err)
		}
		if amount <= 0 {
			continue
		}
		date, err := parseSlashDate(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid date on line %d: %w", line, err)
		}

		account, bankCode := splitCounterAccount(record[1])
		row := Row{
			Date:        date,
			Amount:      amount,
			Account:     account,
			BankCode:    bankCode,
			AccountName: record[2],
			VS:          record[4],
			KS:          padCode(record[5]),
			SS:          record[6],
			Message:     record[7],
		}
		if len(record) > 8 {
			row.OperationID = record[8]
		}
		statement.Rows = append(statement.Rows, row)
	}
	return statement, nil
}
