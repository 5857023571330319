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

const channelColumns = `ch.channel_id, ch.profile_id, ch.event_id, ch.money_account_id, ch.user_bank_account_id,
		ch.vs, ch.ss, ch.regular_payments, ch.regular_frequency, ch.regular_amount,
		ch.expected_date_of_first_payment, ch.end_of_regular_payments, ch.registered_support,
		ch.number_of_payments, ch.payment_total, ch.last_payment_id, ch.last_payment_date,
		ch.last_payment_amount, ch.expected_regular_payment_date, ch.extra_money, ch.no_upgrade`

// CreatePaymentChannel inserts a new PaymentChannel. A unique violation on
// (vs, money_account) surfaces unwrapped so the allocator can retry;
// callers outside the allocator should treat it as a validation error.
func (d Datasource) CreatePaymentChannel(ctx context.Context, channel model.PaymentChannel) (model.PaymentChannel, error) {
	if err := channel.Validate(); err != nil {
		return channel, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid payment channel", err)
	}
	if channel.ChannelID == "" {
		channel.ChannelID = GenerateUUIDWithSuffix("dpch")
	}
	if channel.RegisteredSupport.IsZero() {
		channel.RegisteredSupport = time.Now()
	}

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO payment_channels (channel_id, profile_id, event_id, money_account_id, user_bank_account_id,
			vs, ss, regular_payments, regular_frequency, regular_amount,
			expected_date_of_first_payment, end_of_regular_payments, registered_support)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13)
	`, channel.ChannelID, channel.ProfileID, channel.EventID, channel.MoneyAccountID,
		channel.UserBankAccountID, channel.VS, channel.SS, channel.RegularPayments,
		channel.RegularFrequency, channel.RegularAmount, channel.ExpectedDateOfFirstPayment,
		channel.EndOfRegularPayments, channel.RegisteredSupport)
	return channel, err
}

// GetPaymentChannel retrieves a channel by its ID.
func (d Datasource) GetPaymentChannel(ctx context.Context, id string) (*model.PaymentChannel, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+channelColumns+` FROM payment_channels ch WHERE ch.channel_id = $1
	`, id)
	channel, err := scanChannel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "payment channel not found", id)
		}
		return nil, err
	}
	return channel, nil
}

// GetChannelByProfileEvent retrieves the channel for one (profile, event)
// pair. Returns nil without error when the supporter has no channel yet.
func (d Datasource) GetChannelByProfileEvent(ctx context.Context, profileID, eventID string) (*model.PaymentChannel, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+channelColumns+` FROM payment_channels ch
		WHERE ch.profile_id = $1 AND ch.event_id = $2
	`, profileID, eventID)
	channel, err := scanChannel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return channel, nil
}

// GetChannelsByVS retrieves channels carrying a variable symbol, restricted
// to money accounts of one administrative unit. Matching never crosses the
// unit boundary.
func (d Datasource) GetChannelsByVS(ctx context.Context, vs, unitID string) ([]model.PaymentChannel, error) {
	return d.queryChannels(ctx, `
		SELECT `+channelColumns+`
		FROM payment_channels ch
		JOIN money_accounts ma ON ma.account_id = ch.money_account_id
		WHERE ch.vs = $1 AND ma.unit_id = $2
		ORDER BY ch.id
	`, vs, unitID)
}

// GetChannelsByUserBankAccount retrieves channels whose supporter pays from
// the given counter account, restricted to one administrative unit.
func (d Datasource) GetChannelsByUserBankAccount(ctx context.Context, counterAccount, unitID string) ([]model.PaymentChannel, error) {
	return d.queryChannels(ctx, `
		SELECT `+channelColumns+`
		FROM payment_channels ch
		JOIN money_accounts ma ON ma.account_id = ch.money_account_id
		JOIN user_bank_accounts uba ON uba.bank_account_id = ch.user_bank_account_id
		WHERE uba.bank_account_number = $1 AND ma.unit_id = $2
		ORDER BY ch.id
	`, counterAccount, unitID)
}

// UpdatePaymentChannel persists a channel's mutable and derived fields.
func (d Datasource) UpdatePaymentChannel(ctx context.Context, channel *model.PaymentChannel) error {
	return execUpdateChannel(ctx, d.Conn, channel)
}

func execUpdateChannel(ctx context.Context, run runner, channel *model.PaymentChannel) error {
	_, err := run.ExecContext(ctx, `
		UPDATE payment_channels SET user_bank_account_id = NULLIF($2, ''), vs = $3, ss = $4,
			regular_payments = $5, regular_frequency = $6, regular_amount = $7,
			expected_date_of_first_payment = $8, end_of_regular_payments = $9,
			number_of_payments = $10, payment_total = $11, last_payment_id = NULLIF($12, ''),
			last_payment_date = $13, last_payment_amount = $14,
			expected_regular_payment_date = $15, extra_money = $16, no_upgrade = $17
		WHERE channel_id = $1
	`, channel.ChannelID, channel.UserBankAccountID, channel.VS, channel.SS,
		channel.RegularPayments, channel.RegularFrequency, channel.RegularAmount,
		channel.ExpectedDateOfFirstPayment, channel.EndOfRegularPayments,
		channel.NumberOfPayments, channel.PaymentTotal, channel.LastPaymentID,
		channel.LastPaymentDate, channel.LastPaymentAmount,
		channel.ExpectedRegularPaymentDate, channel.ExtraMoney, channel.NoUpgrade)
	if err != nil && IsUniqueViolation(err) {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "variable symbol already taken on this account", err)
	}
	return err
}

// HighestVS returns the largest allocated variable symbol among channels of
// one administrative unit, optionally restricted to a prefix. Empty result
// means no symbol in that range is taken yet.
func (d Datasource) HighestVS(ctx context.Context, unitID, prefix string) (string, error) {
	var vs sql.NullString
	err := d.Conn.QueryRowContext(ctx, `
		SELECT MAX(ch.vs)
		FROM payment_channels ch
		JOIN money_accounts ma ON ma.account_id = ch.money_account_id
		WHERE ma.unit_id = $1 AND ch.vs LIKE $2 AND length(ch.vs) = 10
	`, unitID, prefix+"%").Scan(&vs)
	if err != nil {
		return "", err
	}
	return vs.String, nil
}

// FilterChannels runs a compiled condition against the channel and profile
// join. The where clause comes from the condition compiler and references
// the ch and p aliases only.
func (d Datasource) FilterChannels(ctx context.Context, where string, args []interface{}) ([]ChannelMatch, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+channelColumns+`, `+profileColumnsAliased+`
		FROM payment_channels ch
		JOIN profiles p ON p.profile_id = ch.profile_id
		WHERE `+where+`
		ORDER BY ch.id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []ChannelMatch
	for rows.Next() {
		match, err := scanChannelMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *match)
	}
	return matches, rows.Err()
}

const profileColumnsAliased = `p.profile_id, p.kind, p.username, p.email, p.addressment, p.street, p.city, p.zip_code,
		p.correspondence_street, p.correspondence_city, p.correspondence_zip_code, p.is_active, p.can_edit_all_units,
		p.first_name, p.last_name, p.sex, p.title_before, p.title_after, p.language, p.birth_day, p.birth_month, p.age_group,
		p.company_name, p.crn, p.tin, p.created_at, p.updated_at`

func (d Datasource) queryChannels(ctx context.Context, query string, args ...interface{}) ([]model.PaymentChannel, error) {
	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.PaymentChannel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *channel)
	}
	return channels, rows.Err()
}

func scanChannel(row rowScanner) (*model.PaymentChannel, error) {
	var c model.PaymentChannel
	var userBankAccountID, lastPaymentID sql.NullString
	var regularAmount, lastPaymentAmount, extraMoney sql.NullInt64
	err := row.Scan(&c.ChannelID, &c.ProfileID, &c.EventID, &c.MoneyAccountID, &userBankAccountID,
		&c.VS, &c.SS, &c.RegularPayments, &c.RegularFrequency, &regularAmount,
		&c.ExpectedDateOfFirstPayment, &c.EndOfRegularPayments, &c.RegisteredSupport,
		&c.NumberOfPayments, &c.PaymentTotal, &lastPaymentID, &c.LastPaymentDate,
		&lastPaymentAmount, &c.ExpectedRegularPaymentDate, &extraMoney, &c.NoUpgrade)
	if err != nil {
		return nil, err
	}
	c.UserBankAccountID = userBankAccountID.String
	c.LastPaymentID = lastPaymentID.String
	c.RegularAmount = regularAmount.Int64
	c.LastPaymentAmount = lastPaymentAmount.Int64
	if extraMoney.Valid {
		c.ExtraMoney = &extraMoney.Int64
	}
	return &c, nil
}

func scanChannelMatch(row rowScanner) (*ChannelMatch, error) {
	var c model.PaymentChannel
	var p model.Profile
	var userBankAccountID, lastPaymentID sql.NullString
	var regularAmount, lastPaymentAmount, extraMoney sql.NullInt64
	err := row.Scan(&c.ChannelID, &c.ProfileID, &c.EventID, &c.MoneyAccountID, &userBankAccountID,
		&c.VS, &c.SS, &c.RegularPayments, &c.RegularFrequency, &regularAmount,
		&c.ExpectedDateOfFirstPayment, &c.EndOfRegularPayments, &c.RegisteredSupport,
		&c.NumberOfPayments, &c.PaymentTotal, &lastPaymentID, &c.LastPaymentDate,
		&lastPaymentAmount, &c.ExpectedRegularPaymentDate, &extraMoney, &c.NoUpgrade,
		&p.ProfileID, &p.Kind, &p.Username, &p.Email, &p.Addressment,
		&p.Street, &p.City, &p.ZipCode,
		&p.CorrespondenceStreet, &p.CorrespondenceCity, &p.CorrespondenceZipCode,
		&p.IsActive, &p.CanEditAllUnits,
		&p.FirstName, &p.LastName, &p.Sex, &p.TitleBefore, &p.TitleAfter,
		&p.Language, &p.BirthDay, &p.BirthMonth, &p.AgeGroup,
		&p.CompanyName, &p.CRN, &p.TIN, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.UserBankAccountID = userBankAccountID.String
	c.LastPaymentID = lastPaymentID.String
	c.RegularAmount = regularAmount.Int64
	c.LastPaymentAmount = lastPaymentAmount.Int64
	if extraMoney.Valid {
		c.ExtraMoney = &extraMoney.Int64
	}
	return &ChannelMatch{Channel: c, Profile: p}, nil
}
