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
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/klub-pratel/klub/config"
	"github.com/klub-pratel/klub/internal/parser"
	"github.com/klub-pratel/klub/internal/request"
	"github.com/klub-pratel/klub/model"
)

// portalResponse is the donation portal's XML envelope.
type portalResponse struct {
	XMLName xml.Name               `xml:"darujme_api"`
	Records []parser.DarujmeRecord `xml:"zaznam"`
}

// CheckDarujme is the worker body of check_darujme. It polls the donation
// portal once per registered API account. HTTP failures are logged and the
// poll continues with the next account; nothing local is touched for the
// failed one.
func (k *Klub) CheckDarujme(ctx context.Context) error {
	accounts, err := k.datasource.GetApiAccounts(ctx)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		records, err := k.fetchDarujmeRecords(ctx, account)
		if err != nil {
			logrus.WithError(err).Errorf("darujme poll for account %s failed", account.AccountID)
			continue
		}
		stmt, err := k.datasource.CreateAccountStatement(ctx, model.AccountStatement{
			Type:                 model.StatementDarujme,
			SourceFile:           fmt.Sprintf("darujme api %s", account.ApiID),
			AdministrativeUnitID: account.AdministrativeUnitID,
		})
		if err != nil {
			return err
		}
		if err := k.ingestDarujmeRecords(ctx, &stmt, &account, records); err != nil {
			return err
		}
	}
	return nil
}

// fetchDarujmeRecords reads the portal's XML feed for one API account,
// retrying transient network errors.
func (k *Klub) fetchDarujmeRecords(ctx context.Context, account model.MoneyAccount) ([]parser.DarujmeRecord, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s?api_id=%s&api_secret=%s&typ_dotazu=1",
		configuration.Darujme.ApiUrl,
		url.QueryEscape(account.ApiID),
		url.QueryEscape(account.ApiSecret))

	var response portalResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := request.CallXML(req, &response)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("darujme api returned %s", resp.Status)
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return response.Records, nil
}

// processDarujmeStatement handles an uploaded portal export. The operator
// account carries the event and unit the pledges belong to.
func (k *Klub) processDarujmeStatement(ctx context.Context, stmt *model.AccountStatement, data []byte, operatorAccountID string) error {
	records, err := parser.ParseDarujme(data)
	if err != nil {
		stmt.AppendPairLog(stmt.SourceFile, fmt.Sprintf("parsing failed: %v", err))
		return k.datasource.UpdateAccountStatement(ctx, stmt)
	}

	var account *model.MoneyAccount
	if operatorAccountID != "" {
		account, err = k.datasource.GetMoneyAccount(ctx, operatorAccountID)
		if err != nil {
			return err
		}
		if account.AdministrativeUnitID != stmt.AdministrativeUnitID {
			account = nil
		}
	}
	if account == nil {
		stmt.AppendPairLog(stmt.SourceFile, reasonMissingBankAccount)
		return k.datasource.UpdateAccountStatement(ctx, stmt)
	}
	return k.ingestDarujmeRecords(ctx, stmt, account, records)
}

// ingestDarujmeRecords merges portal pledges into local state. The ingest
// is idempotent: a realized payment whose portal and transaction IDs are
// both known is skipped and reported in the pair log; a pledge row waiting
// for its transaction ID gets it backfilled.
func (k *Klub) ingestDarujmeRecords(ctx context.Context, stmt *model.AccountStatement, account *model.MoneyAccount, records []parser.DarujmeRecord) error {
	for _, record := range records {
		profile, err := k.ensureDarujmeProfile(ctx, stmt.AdministrativeUnitID, record)
		if err != nil {
			return err
		}
		channel, err := k.ensureDarujmeChannel(ctx, profile, account, record)
		if err != nil {
			logrus.WithError(err).Errorf("darujme pledge %s: channel not created", record.RecordID)
			continue
		}
		if err := k.ingestDarujmeEntries(ctx, stmt, account, channel, record); err != nil {
			return err
		}
	}
	return k.datasource.UpdateAccountStatement(ctx, stmt)
}

// ensureDarujmeProfile finds the donor by email or registers them.
func (k *Klub) ensureDarujmeProfile(ctx context.Context, unitID string, record parser.DarujmeRecord) (*model.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(record.Email))
	profile, err := k.datasource.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		created, err := k.datasource.CreateProfile(ctx, model.Profile{
			Kind:      model.KindUserProfile,
			Username:  email,
			Email:     email,
			FirstName: record.FirstName,
			LastName:  record.LastName,
			Street:    record.Street,
			City:      record.City,
			ZipCode:   record.PostalCode,
			Language:  model.LanguageCzech,
			Sex:       model.SexUnknown,
			IsActive:  true,
		})
		if err != nil {
			return nil, err
		}
		profile = &created
		if record.Telephone != "" {
			if err := k.datasource.CreateTelephone(ctx, model.Telephone{
				ProfileID: profile.ProfileID,
				Number:    record.Telephone,
				IsPrimary: true,
			}); err != nil {
				logrus.WithError(err).Warnf("darujme donor %s: telephone not stored", profile.ProfileID)
			}
		}
	}
	if err := k.datasource.AddProfileUnit(ctx, profile.ProfileID, unitID); err != nil {
		return nil, err
	}
	return profile, nil
}

// ensureDarujmeChannel finds or opens the donor's channel on the API
// account's event.
func (k *Klub) ensureDarujmeChannel(ctx context.Context, profile *model.Profile, account *model.MoneyAccount, record parser.DarujmeRecord) (*model.PaymentChannel, error) {
	channel, err := k.datasource.GetChannelByProfileEvent(ctx, profile.ProfileID, account.EventID)
	if err != nil {
		return nil, err
	}
	if channel != nil {
		return channel, nil
	}

	amount, err := record.Amount()
	if err != nil {
		amount = 0
	}
	regular, frequency := darujmeFrequency(record.Frequency)
	created, err := k.CreatePaymentChannel(ctx, model.PaymentChannel{
		ProfileID:        profile.ProfileID,
		EventID:          account.EventID,
		MoneyAccountID:   account.AccountID,
		SS:               record.RecordID,
		RegularPayments:  regular,
		RegularFrequency: frequency,
		RegularAmount:    amount,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ingestDarujmeEntries stores the realized payments nested under one
// pledge.
func (k *Klub) ingestDarujmeEntries(ctx context.Context, stmt *model.AccountStatement, account *model.MoneyAccount, channel *model.PaymentChannel, record parser.DarujmeRecord) error {
	if len(record.Payments) == 0 {
		return nil
	}
	existing, err := k.datasource.GetDarujmePaymentsBySS(ctx, record.RecordID)
	if err != nil {
		return err
	}

	for _, entry := range record.Payments {
		if known := findDarujmePayment(existing, entry.TransactionID); known != nil {
			stmt.AppendPairLog(
				fmt.Sprintf("%s %s %s", record.FirstName, record.LastName, record.Email),
				fmt.Sprintf("skipped darujme payment %s", entry.TransactionID))
			continue
		}

		date, err := entry.Date()
		if err != nil {
			logrus.WithError(err).Errorf("darujme pledge %s: bad payment date", record.RecordID)
			continue
		}
		amount, err := entry.Amount()
		if err != nil || amount <= 0 {
			continue
		}

		if pending := findDarujmePayment(existing, ""); pending != nil {
			pending.TransactionID = entry.TransactionID
			pending.Date = date
			if err := k.datasource.UpdatePayment(ctx, pending); err != nil {
				return err
			}
			if pending.PaymentChannelID != "" {
				if _, err := k.refreshChannelDerived(ctx, pending.PaymentChannelID); err != nil {
					return err
				}
			}
			continue
		}

		payment := model.Payment{
			Date:               date,
			Amount:             amount,
			RecipientAccountID: account.AccountID,
			SS:                 record.RecordID,
			AccountName:        fmt.Sprintf("%s %s", record.LastName, record.FirstName),
			Type:               model.PaymentTypeDarujme,
			TransactionID:      entry.TransactionID,
			PaymentChannelID:   channel.ChannelID,
			AccountStatementID: stmt.StatementID,
		}
		saved, err := k.SavePayment(ctx, payment)
		if err != nil {
			return err
		}
		existing = append(existing, saved)
	}
	return nil
}

// findDarujmePayment returns the stored payment with the given transaction
// ID, or nil. An empty ID finds a pledge row still waiting for its
// transaction.
func findDarujmePayment(payments []model.Payment, transactionID string) *model.Payment {
	for i := range payments {
		if payments[i].TransactionID == transactionID {
			return &payments[i]
		}
	}
	return nil
}

// darujmeFrequency maps the portal's Czech frequency tags onto channel
// pledges. Unknown tags count as one-time gifts.
func darujmeFrequency(tag string) (model.RegularPayments, model.RegularFrequency) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "mesicni", "měsíční":
		return model.RegularPaymentsRegular, model.FrequencyMonthly
	case "ctvrtletni", "čtvrtletní":
		return model.RegularPaymentsRegular, model.FrequencyQuarterly
	case "pulrocni", "půlroční":
		return model.RegularPaymentsRegular, model.FrequencyBiannually
	case "rocni", "roční":
		return model.RegularPaymentsRegular, model.FrequencyAnnually
	default:
		return model.RegularPaymentsOnetime, ""
	}
}
