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
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/klub-pratel/klub/database"
	"github.com/klub-pratel/klub/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Administrative unit methods

func (m *MockDataSource) CreateAdministrativeUnit(ctx context.Context, unit model.AdministrativeUnit) (model.AdministrativeUnit, error) {
	args := m.Called(ctx, unit)
	return args.Get(0).(model.AdministrativeUnit), args.Error(1)
}

func (m *MockDataSource) GetAdministrativeUnit(ctx context.Context, id string) (*model.AdministrativeUnit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdministrativeUnit), args.Error(1)
}

func (m *MockDataSource) GetAllAdministrativeUnits(ctx context.Context) ([]model.AdministrativeUnit, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.AdministrativeUnit), args.Error(1)
}

func (m *MockDataSource) CreateEvent(ctx context.Context, event model.Event) (model.Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(model.Event), args.Error(1)
}

func (m *MockDataSource) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

// Profile methods

func (m *MockDataSource) CreateProfile(ctx context.Context, profile model.Profile) (model.Profile, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockDataSource) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockDataSource) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockDataSource) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockDataSource) SetProfileActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockDataSource) GetProfileUnits(ctx context.Context, profileID string) ([]string, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDataSource) AddProfileUnit(ctx context.Context, profileID, unitID string) error {
	args := m.Called(ctx, profileID, unitID)
	return args.Error(0)
}

func (m *MockDataSource) RemoveProfileUnit(ctx context.Context, profileID, unitID string) error {
	args := m.Called(ctx, profileID, unitID)
	return args.Error(0)
}

func (m *MockDataSource) CreatePreference(ctx context.Context, pref model.Preference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

func (m *MockDataSource) DeletePreference(ctx context.Context, profileID, unitID string) error {
	args := m.Called(ctx, profileID, unitID)
	return args.Error(0)
}

func (m *MockDataSource) GetPreferences(ctx context.Context, profileID string) ([]model.Preference, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]model.Preference), args.Error(1)
}

func (m *MockDataSource) CreateProfileEmail(ctx context.Context, email model.ProfileEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockDataSource) CreateTelephone(ctx context.Context, telephone model.Telephone) error {
	args := m.Called(ctx, telephone)
	return args.Error(0)
}

func (m *MockDataSource) GetTelephones(ctx context.Context, profileID string) ([]model.Telephone, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]model.Telephone), args.Error(1)
}

func (m *MockDataSource) CreateCompanyContact(ctx context.Context, contact model.CompanyContact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockDataSource) GetCompanyContacts(ctx context.Context, companyID string) ([]model.CompanyContact, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]model.CompanyContact), args.Error(1)
}

// Money account methods

func (m *MockDataSource) CreateMoneyAccount(ctx context.Context, account model.MoneyAccount) (model.MoneyAccount, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(model.MoneyAccount), args.Error(1)
}

func (m *MockDataSource) GetMoneyAccount(ctx context.Context, id string) (*model.MoneyAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MoneyAccount), args.Error(1)
}

func (m *MockDataSource) GetBankAccountByNumber(ctx context.Context, number, unitID string) (*model.MoneyAccount, error) {
	args := m.Called(ctx, number, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MoneyAccount), args.Error(1)
}

func (m *MockDataSource) GetApiAccounts(ctx context.Context) ([]model.MoneyAccount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.MoneyAccount), args.Error(1)
}

func (m *MockDataSource) CreateUserBankAccount(ctx context.Context, account model.UserBankAccount) (model.UserBankAccount, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(model.UserBankAccount), args.Error(1)
}

func (m *MockDataSource) GetUserBankAccountsByNumber(ctx context.Context, number string) ([]model.UserBankAccount, error) {
	args := m.Called(ctx, number)
	return args.Get(0).([]model.UserBankAccount), args.Error(1)
}

// Payment channel methods

func (m *MockDataSource) CreatePaymentChannel(ctx context.Context, channel model.PaymentChannel) (model.PaymentChannel, error) {
	args := m.Called(ctx, channel)
	return args.Get(0).(model.PaymentChannel), args.Error(1)
}

func (m *MockDataSource) GetPaymentChannel(ctx context.Context, id string) (*model.PaymentChannel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentChannel), args.Error(1)
}

func (m *MockDataSource) GetChannelByProfileEvent(ctx context.Context, profileID, eventID string) (*model.PaymentChannel, error) {
	args := m.Called(ctx, profileID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentChannel), args.Error(1)
}

func (m *MockDataSource) GetChannelsByVS(ctx context.Context, vs, unitID string) ([]model.PaymentChannel, error) {
	args := m.Called(ctx, vs, unitID)
	return args.Get(0).([]model.PaymentChannel), args.Error(1)
}

func (m *MockDataSource) GetChannelsByUserBankAccount(ctx context.Context, counterAccount, unitID string) ([]model.PaymentChannel, error) {
	args := m.Called(ctx, counterAccount, unitID)
	return args.Get(0).([]model.PaymentChannel), args.Error(1)
}

func (m *MockDataSource) UpdatePaymentChannel(ctx context.Context, channel *model.PaymentChannel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockDataSource) HighestVS(ctx context.Context, unitID, prefix string) (string, error) {
	args := m.Called(ctx, unitID, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockDataSource) FilterChannels(ctx context.Context, where string, queryArgs []interface{}) ([]database.ChannelMatch, error) {
	args := m.Called(ctx, where, queryArgs)
	return args.Get(0).([]database.ChannelMatch), args.Error(1)
}

// Payment methods

func (m *MockDataSource) CreatePayment(ctx context.Context, payment model.Payment) (model.Payment, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(model.Payment), args.Error(1)
}

func (m *MockDataSource) CreatePairedPayment(ctx context.Context, payment model.Payment, now time.Time) (model.Payment, *model.PaymentChannel, error) {
	args := m.Called(ctx, payment, now)
	channel, _ := args.Get(1).(*model.PaymentChannel)
	return args.Get(0).(model.Payment), channel, args.Error(2)
}

func (m *MockDataSource) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockDataSource) UpdatePayment(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockDataSource) GetPaymentsByChannel(ctx context.Context, channelID string) ([]model.Payment, error) {
	args := m.Called(ctx, channelID)
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockDataSource) GetDarujmePaymentsBySS(ctx context.Context, ss string) ([]model.Payment, error) {
	args := m.Called(ctx, ss)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockDataSource) SumConfirmedPayments(ctx context.Context, profileID, unitID string, year int) (int64, error) {
	args := m.Called(ctx, profileID, unitID, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataSource) GetProfilesWithPayments(ctx context.Context, unitID string, year int) ([]string, error) {
	args := m.Called(ctx, unitID, year)
	return args.Get(0).([]string), args.Error(1)
}

// Statement methods

func (m *MockDataSource) CreateAccountStatement(ctx context.Context, stmt model.AccountStatement) (model.AccountStatement, error) {
	args := m.Called(ctx, stmt)
	return args.Get(0).(model.AccountStatement), args.Error(1)
}

func (m *MockDataSource) GetAccountStatement(ctx context.Context, id string) (*model.AccountStatement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccountStatement), args.Error(1)
}

func (m *MockDataSource) UpdateAccountStatement(ctx context.Context, stmt *model.AccountStatement) error {
	args := m.Called(ctx, stmt)
	return args.Error(0)
}

// Condition methods

func (m *MockDataSource) CreateNamedCondition(ctx context.Context, cond model.NamedCondition) (model.NamedCondition, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(model.NamedCondition), args.Error(1)
}

func (m *MockDataSource) GetNamedCondition(ctx context.Context, id string) (*model.NamedCondition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NamedCondition), args.Error(1)
}

func (m *MockDataSource) GetAllNamedConditions(ctx context.Context) ([]model.NamedCondition, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.NamedCondition), args.Error(1)
}

func (m *MockDataSource) UpdateNamedCondition(ctx context.Context, cond *model.NamedCondition) error {
	args := m.Called(ctx, cond)
	return args.Error(0)
}

// Communication methods

func (m *MockDataSource) CreateAutomaticCommunication(ctx context.Context, comm model.AutomaticCommunication) (model.AutomaticCommunication, error) {
	args := m.Called(ctx, comm)
	return args.Get(0).(model.AutomaticCommunication), args.Error(1)
}

func (m *MockDataSource) GetAutomaticCommunications(ctx context.Context) ([]model.AutomaticCommunication, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.AutomaticCommunication), args.Error(1)
}

func (m *MockDataSource) HasSentToProfile(ctx context.Context, communicationID, profileID string) (bool, error) {
	args := m.Called(ctx, communicationID, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) MarkSentToProfile(ctx context.Context, communicationID, profileID string) error {
	args := m.Called(ctx, communicationID, profileID)
	return args.Error(0)
}

func (m *MockDataSource) CreateMassCommunication(ctx context.Context, comm model.MassCommunication) (model.MassCommunication, error) {
	args := m.Called(ctx, comm)
	return args.Get(0).(model.MassCommunication), args.Error(1)
}

func (m *MockDataSource) GetMassCommunication(ctx context.Context, id string) (*model.MassCommunication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MassCommunication), args.Error(1)
}

// Interaction methods

func (m *MockDataSource) CreateInteraction(ctx context.Context, inter model.Interaction) (model.Interaction, error) {
	args := m.Called(ctx, inter)
	return args.Get(0).(model.Interaction), args.Error(1)
}

func (m *MockDataSource) GetInteraction(ctx context.Context, id string) (*model.Interaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Interaction), args.Error(1)
}

func (m *MockDataSource) GetInteractionsByProfile(ctx context.Context, profileID string) ([]model.Interaction, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]model.Interaction), args.Error(1)
}

func (m *MockDataSource) GetUndispatchedInteractions(ctx context.Context, method model.MethodType, limit int) ([]model.Interaction, error) {
	args := m.Called(ctx, method, limit)
	return args.Get(0).([]model.Interaction), args.Error(1)
}

func (m *MockDataSource) MarkInteractionDispatched(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Tax confirmation methods

func (m *MockDataSource) UpsertTaxConfirmation(ctx context.Context, conf model.TaxConfirmation) (model.TaxConfirmation, error) {
	args := m.Called(ctx, conf)
	return args.Get(0).(model.TaxConfirmation), args.Error(1)
}

func (m *MockDataSource) GetTaxConfirmation(ctx context.Context, profileID string, year int, pdfTypeID string) (*model.TaxConfirmation, error) {
	args := m.Called(ctx, profileID, year, pdfTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaxConfirmation), args.Error(1)
}

func (m *MockDataSource) CreateConfirmationToken(ctx context.Context, token model.ConfirmationToken) (model.ConfirmationToken, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.ConfirmationToken), args.Error(1)
}

func (m *MockDataSource) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
