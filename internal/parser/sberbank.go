package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Sberbank exports carry no header block. Rows are tab delimited with a
// localized type column marking the payment direction.
const sberbankIncoming = "Příchozí platba"

func parseSberbank(data []byte) (*Statement, error) {
	decoded, err := decodeWindows1250(data)
	if err != nil {
		return nil, err
	}

	statement := &Statement{}
	scanner := bufio.NewScanner(bytes.NewReader(decoded))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 9 {
			return nil, fmt.Errorf("sberbank statement line %d has %d columns, want at least 9", line, len(fields))
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if fields[1] != sberbankIncoming {
			continue
		}

		date, err := parseCzechDate(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid date on line %d: %w", line, err)
		}
		amount, err := parseAmount(fields[5])
		if err != nil {
			return nil, fmt.Errorf("invalid amount on line %d: %w", line, err)
		}
		if amount <= 0 {
			continue
		}

		row := Row{
			Date:        date,
			Amount:      amount,
			Account:     fields[2],
			BankCode:    padCode(fields[3]),
			AccountName: fields[4],
			VS:          fields[6],
			KS:          padCode(fields[7]),
			SS:          fields[8],
		}
		if len(fields) > 9 {
			row.Message = fields[9]
		}
		statement.Rows = append(statement.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading Sberbank statement: %w", err)
	}
	return statement, nil
}
