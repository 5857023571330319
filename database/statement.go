/*
Copyright 2024 Klub Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/klub-pratel/klub/internal/apierror"
	"github.com/klub-pratel/klub/model"
)

// CreateAccountStatement inserts a new statement row, typically before its
// file is parsed so failures still leave an auditable record.
func (d Datasource) CreateAccountStatement(ctx context.Context, stmt model.AccountStatement) (model.AccountStatement, error) {
	if stmt.StatementID == "" {
		stmt.StatementID = GenerateUUIDWithSuffix("stm")
	}
	stmt.ImportedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO account_statements (statement_id, type, source_file, imported_at, date_from, date_to, unit_id, pair_log)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, stmt.StatementID, stmt.Type, stmt.SourceFile, stmt.ImportedAt,
		stmt.DateFrom, stmt.DateTo, stmt.AdministrativeUnitID, stmt.PairLog)
	return stmt, err
}

// GetAccountStatement retrieves a statement by its ID.
func (d Datasource) GetAccountStatement(ctx context.Context, id string) (*model.AccountStatement, error) {
	var s model.AccountStatement
	err := d.Conn.QueryRowContext(ctx, `
		SELECT statement_id, type, source_file, imported_at, date_from, date_to, unit_id, pair_log
		FROM account_statements WHERE statement_id = $1
	`, id).Scan(&s.StatementID, &s.Type, &s.SourceFile, &s.ImportedAt,
		&s.DateFrom, &s.DateTo, &s.AdministrativeUnitID, &s.PairLog)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "account statement not found", id)
		}
		return nil, err
	}
	return &s, nil
}

// UpdateAccountStatement persists the parsed period and the accumulated
// pair log.
func (d Datasource) UpdateAccountStatement(ctx context.Context, stmt *model.AccountStatement) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE account_statements SET date_from = $2, date_to = $3, pair_log = $4
		WHERE statement_id = $1
	`, stmt.StatementID, stmt.DateFrom, stmt.DateTo, stmt.PairLog)
	return err
}
