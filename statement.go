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

package klub

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/klub-pratel/klub/internal/notification"
	"github.com/klub-pratel/klub/internal/parser"
	"github.com/klub-pratel/klub/model"
)

const reasonMissingBankAccount = "Missing Bank account"

// ImportAccountStatement records an uploaded statement and enqueues its
// parsing. The operator account is only consulted for formats whose files
// carry no header block of their own.
func (k *Klub) ImportAccountStatement(ctx context.Context, format model.StatementType, filePath, unitID, operatorAccountID string) (model.AccountStatement, error) {
	stmt, err := k.datasource.CreateAccountStatement(ctx, model.AccountStatement{
		Type:                 format,
		SourceFile:           filePath,
		AdministrativeUnitID: unitID,
	})
	if err != nil {
		return stmt, err
	}
	if err := k.queue.queueStatementParse(stmt.StatementID, filePath, operatorAccountID); err != nil {
		return stmt, err
	}
	return stmt, nil
}

// ProcessAccountStatement is the worker body of parse_account_statement.
// Parsing failures are fatal for the statement: the reason lands in the
// pair log and the task is not retried. Payments are processed in file
// order; each parsed row is paired and persisted, and the final pair log is
// stored for operator review.
func (k *Klub) ProcessAccountStatement(ctx context.Context, statementID string, data []byte, operatorAccountID string) error {
	stmt, err := k.datasource.GetAccountStatement(ctx, statementID)
	if err != nil {
		return err
	}
	if stmt.Type == model.StatementDarujme {
		return k.processDarujmeStatement(ctx, stmt, data, operatorAccountID)
	}

	parsed, err := parser.Parse(stmt.Type, data)
	if err != nil {
		stmt.AppendPairLog(stmt.SourceFile, fmt.Sprintf("parsing failed: %v", err))
		notification.NotifyError(err)
		return k.datasource.UpdateAccountStatement(ctx, stmt)
	}

	account, err := k.resolveStatementAccount(ctx, stmt, parsed.Header.AccountNumber, operatorAccountID)
	if err != nil {
		return err
	}
	if account == nil {
		stmt.AppendPairLog(parsed.Header.AccountNumber, reasonMissingBankAccount)
		return k.datasource.UpdateAccountStatement(ctx, stmt)
	}

	stmt.DateFrom = parsed.Header.DateFrom
	stmt.DateTo = parsed.Header.DateTo

	for _, row := range parsed.Rows {
		payment := paymentFromRow(row, account.AccountID, stmt.StatementID)
		if _, err := k.PairPayment(ctx, &payment, stmt); err != nil {
			return err
		}
		if _, err := k.SavePayment(ctx, payment); err != nil {
			return err
		}
	}

	logrus.Infof("statement %s: %d payments processed", stmt.StatementID, len(parsed.Rows))
	return k.datasource.UpdateAccountStatement(ctx, stmt)
}

// resolveStatementAccount maps the header account number to the unit's
// bank account. Headerless formats fall back to the operator's selection.
func (k *Klub) resolveStatementAccount(ctx context.Context, stmt *model.AccountStatement, headerNumber, operatorAccountID string) (*model.MoneyAccount, error) {
	if headerNumber != "" {
		return k.datasource.GetBankAccountByNumber(ctx, headerNumber, stmt.AdministrativeUnitID)
	}
	if operatorAccountID == "" {
		return nil, nil
	}
	account, err := k.datasource.GetMoneyAccount(ctx, operatorAccountID)
	if err != nil {
		return nil, err
	}
	if account.AdministrativeUnitID != stmt.AdministrativeUnitID {
		return nil, nil
	}
	return account, nil
}

func paymentFromRow(row parser.Row, accountID, statementID string) model.Payment {
	return model.Payment{
		Date:               row.Date,
		Amount:             row.Amount,
		RecipientAccountID: accountID,
		Account:            row.Account,
		BankCode:           row.BankCode,
		VS:                 row.VS,
		VS2:                row.VS2,
		SS:                 row.SS,
		KS:                 row.KS,
		BIC:                row.BIC,
		UserIdentification: row.UserIdentification,
		AccountName:        row.AccountName,
		BankName:           row.BankName,
		Type:               model.PaymentTypeBankTransfer,
		OperationID:        row.OperationID,
		AccountStatementID: statementID,
	}
}
