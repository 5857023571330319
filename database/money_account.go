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

const moneyAccountColumns = `account_id, kind, name, unit_id, bank_account_number, api_id, api_secret, project_id, event_id, created_at`

// CreateMoneyAccount inserts a new MoneyAccount into the database.
func (d Datasource) CreateMoneyAccount(ctx context.Context, account model.MoneyAccount) (model.MoneyAccount, error) {
	account.AccountID = GenerateUUIDWithSuffix("acc")
	account.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO money_accounts (account_id, kind, name, unit_id, bank_account_number, api_id, api_secret, project_id, event_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
	`, account.AccountID, account.Kind, account.Name, account.AdministrativeUnitID,
		account.BankAccountNumber, account.ApiID, account.ApiSecret, account.ProjectID,
		account.EventID, account.CreatedAt)
	return account, err
}

// GetMoneyAccount retrieves a money account by its ID.
func (d Datasource) GetMoneyAccount(ctx context.Context, id string) (*model.MoneyAccount, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+moneyAccountColumns+` FROM money_accounts WHERE account_id = $1
	`, id)
	account, err := scanMoneyAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "money account not found", id)
		}
		return nil, err
	}
	return account, nil
}

// GetBankAccountByNumber resolves a statement header account number to the
// owning bank account inside one administrative unit. Stored numbers carry
// the bank code ("2400063333/2010") while headers often carry the bare
// number, so the match is by substring. Returns nil without error when no
// account matches so the orchestrator can pair-log it; more than one match
// is a conflict.
func (d Datasource) GetBankAccountByNumber(ctx context.Context, number, unitID string) (*model.MoneyAccount, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+moneyAccountColumns+`
		FROM money_accounts
		WHERE kind = 'bank' AND position($1 in bank_account_number) > 0 AND unit_id = $2
		ORDER BY id
	`, number, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.MoneyAccount
	for rows.Next() {
		account, err := scanMoneyAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(accounts) {
	case 0:
		return nil, nil
	case 1:
		return &accounts[0], nil
	default:
		return nil, apierror.NewAPIError(apierror.ErrConflict, "ambiguous bank account number", number)
	}
}

// GetApiAccounts returns every donation portal account across all units;
// the check_darujme task polls each of them.
func (d Datasource) GetApiAccounts(ctx context.Context) ([]model.MoneyAccount, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+moneyAccountColumns+` FROM money_accounts WHERE kind = 'api' ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.MoneyAccount
	for rows.Next() {
		account, err := scanMoneyAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (d Datasource) CreateUserBankAccount(ctx context.Context, account model.UserBankAccount) (model.UserBankAccount, error) {
	account.BankAccountID = GenerateUUIDWithSuffix("uba")
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO user_bank_accounts (bank_account_id, profile_id, bank_account_number)
		VALUES ($1, $2, $3)
	`, account.BankAccountID, account.ProfileID, account.BankAccountNumber)
	return account, err
}

func (d Datasource) GetUserBankAccountsByNumber(ctx context.Context, number string) ([]model.UserBankAccount, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, bank_account_id, profile_id, bank_account_number
		FROM user_bank_accounts WHERE bank_account_number = $1 ORDER BY id
	`, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.UserBankAccount
	for rows.Next() {
		var a model.UserBankAccount
		if err := rows.Scan(&a.ID, &a.BankAccountID, &a.ProfileID, &a.BankAccountNumber); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanMoneyAccount(row rowScanner) (*model.MoneyAccount, error) {
	var a model.MoneyAccount
	var eventID sql.NullString
	err := row.Scan(&a.AccountID, &a.Kind, &a.Name, &a.AdministrativeUnitID,
		&a.BankAccountNumber, &a.ApiID, &a.ApiSecret, &a.ProjectID, &eventID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.EventID = eventID.String
	return &a, nil
}
