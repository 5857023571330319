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

const paymentColumns = `payment_id, date, amount, recipient_account_id, account, bank_code,
		vs, vs2, ss, ks, bic, user_identification, account_name, bank_name, type,
		operation_id, transaction_id, payment_channel_id, account_statement_id, created_at`

// runner abstracts *sql.DB and *sql.Tx for statements that run both on the
// pool and inside a transaction.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// CreatePayment inserts a new Payment into the database.
func (d Datasource) CreatePayment(ctx context.Context, payment model.Payment) (model.Payment, error) {
	return insertPayment(ctx, d.Conn, payment)
}

func insertPayment(ctx context.Context, run runner, payment model.Payment) (model.Payment, error) {
	if payment.PaymentID == "" {
		payment.PaymentID = GenerateUUIDWithSuffix("pay")
	}
	payment.CreatedAt = time.Now()

	_, err := run.ExecContext(ctx, `
		INSERT INTO payments (payment_id, date, amount, recipient_account_id, account, bank_code,
			vs, vs2, ss, ks, bic, user_identification, account_name, bank_name, type,
			operation_id, transaction_id, payment_channel_id, account_statement_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NULLIF($18, ''), NULLIF($19, ''), $20)
	`, payment.PaymentID, payment.Date, payment.Amount, payment.RecipientAccountID,
		payment.Account, payment.BankCode, payment.VS, payment.VS2, payment.SS, payment.KS,
		payment.BIC, payment.UserIdentification, payment.AccountName, payment.BankName,
		payment.Type, payment.OperationID, payment.TransactionID,
		payment.PaymentChannelID, payment.AccountStatementID, payment.CreatedAt)
	return payment, err
}

// CreatePairedPayment inserts a paired payment and refreshes its channel's
// derived fields in one transaction; a crash cannot leave the materialized
// counters out of step with the payment set. The channel row is locked for
// the duration.
func (d Datasource) CreatePairedPayment(ctx context.Context, payment model.Payment, now time.Time) (model.Payment, *model.PaymentChannel, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return payment, nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	created, err := insertPayment(ctx, tx, payment)
	if err != nil {
		return created, nil, err
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+channelColumns+` FROM payment_channels ch
		WHERE ch.channel_id = $1 FOR UPDATE
	`, created.PaymentChannelID)
	channel, err := scanChannel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return created, nil, apierror.NewAPIError(apierror.ErrNotFound, "payment channel not found", created.PaymentChannelID)
		}
		return created, nil, err
	}

	payments, err := queryPaymentsByChannel(ctx, tx, channel.ChannelID)
	if err != nil {
		return created, nil, err
	}
	channel.RecomputeDerived(payments, now)
	if err := execUpdateChannel(ctx, tx, channel); err != nil {
		return created, nil, err
	}

	if err := tx.Commit(); err != nil {
		return created, nil, err
	}
	return created, channel, nil
}

// GetPayment retrieves a payment by its ID.
func (d Datasource) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE payment_id = $1
	`, id)
	payment, err := scanPayment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "payment not found", id)
		}
		return nil, err
	}
	return payment, nil
}

// UpdatePayment persists a payment's mutable fields, most importantly the
// channel assignment set by the pairing engine and the operation backfill
// done by the donation portal ingest.
func (d Datasource) UpdatePayment(ctx context.Context, payment *model.Payment) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE payments SET date = $2, amount = $3, operation_id = $4, transaction_id = $5,
			payment_channel_id = NULLIF($6, ''), account_statement_id = NULLIF($7, '')
		WHERE payment_id = $1
	`, payment.PaymentID, payment.Date, payment.Amount, payment.OperationID,
		payment.TransactionID, payment.PaymentChannelID, payment.AccountStatementID)
	return err
}

// GetPaymentsByChannel returns a channel's payments in id order, the order
// derived field computation relies on for tie breaking.
func (d Datasource) GetPaymentsByChannel(ctx context.Context, channelID string) ([]model.Payment, error) {
	return queryPaymentsByChannel(ctx, d.Conn, channelID)
}

func queryPaymentsByChannel(ctx context.Context, run runner, channelID string) ([]model.Payment, error) {
	rows, err := run.QueryContext(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE payment_channel_id = $1 ORDER BY id
	`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	return payments, rows.Err()
}

// GetDarujmePaymentsBySS retrieves the donation portal payments recorded
// for one portal ID, which the ingest stores in the SS field. A pledge can
// realize several payments over time.
func (d Datasource) GetDarujmePaymentsBySS(ctx context.Context, ss string) ([]model.Payment, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE type = 'darujme' AND ss = $1 ORDER BY id
	`, ss)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	return payments, rows.Err()
}

// SumConfirmedPayments totals a supporter's real payments for one year and
// administrative unit. Expected payments are pledges, not money, and are
// excluded.
func (d Datasource) SumConfirmedPayments(ctx context.Context, profileID, unitID string, year int) (int64, error) {
	var total sql.NullInt64
	err := d.Conn.QueryRowContext(ctx, `
		SELECT SUM(pay.amount)
		FROM payments pay
		JOIN payment_channels ch ON ch.channel_id = pay.payment_channel_id
		JOIN money_accounts ma ON ma.account_id = ch.money_account_id
		WHERE ch.profile_id = $1 AND ma.unit_id = $2
		  AND pay.type <> 'expected'
		  AND date_part('year', pay.date) = $3
	`, profileID, unitID, year).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// GetProfilesWithPayments returns IDs of profiles that made at least one
// real payment to the unit in the given year.
func (d Datasource) GetProfilesWithPayments(ctx context.Context, unitID string, year int) ([]string, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT DISTINCT ch.profile_id
		FROM payments pay
		JOIN payment_channels ch ON ch.channel_id = pay.payment_channel_id
		JOIN money_accounts ma ON ma.account_id = ch.money_account_id
		WHERE ma.unit_id = $1
		  AND pay.type <> 'expected'
		  AND date_part('year', pay.date) = $2
		ORDER BY ch.profile_id
	`, unitID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		profiles = append(profiles, id)
	}
	return profiles, rows.Err()
}

func scanPayment(row rowScanner) (*model.Payment, error) {
	var p model.Payment
	var channelID, statementID sql.NullString
	err := row.Scan(&p.PaymentID, &p.Date, &p.Amount, &p.RecipientAccountID, &p.Account, &p.BankCode,
		&p.VS, &p.VS2, &p.SS, &p.KS, &p.BIC, &p.UserIdentification, &p.AccountName, &p.BankName,
		&p.Type, &p.OperationID, &p.TransactionID, &channelID, &statementID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.PaymentChannelID = channelID.String
	p.AccountStatementID = statementID.String
	return &p, nil
}
