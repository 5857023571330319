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
	"time"

	"github.com/klub-pratel/klub/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	administrativeUnit // Interface for tenancy operations
	profile            // Interface for supporter profile operations
	moneyAccount       // Interface for club and supporter account operations
	paymentChannel     // Interface for payment channel operations
	payment            // Interface for payment operations
	statement          // Interface for account statement operations
	condition          // Interface for stored condition operations
	communication      // Interface for communication rule operations
	interaction        // Interface for interaction log operations
	taxConfirmation    // Interface for tax confirmation operations
}

// administrativeUnit defines methods for handling administrative units and events.
type administrativeUnit interface {
	CreateAdministrativeUnit(ctx context.Context, unit model.AdministrativeUnit) (model.AdministrativeUnit, error) // Creates a new administrative unit
	GetAdministrativeUnit(ctx context.Context, id string) (*model.AdministrativeUnit, error)                       // Retrieves an administrative unit by ID
	GetAllAdministrativeUnits(ctx context.Context) ([]model.AdministrativeUnit, error)                             // Retrieves all administrative units
	CreateEvent(ctx context.Context, event model.Event) (model.Event, error)                                       // Creates a new event
	GetEvent(ctx context.Context, id string) (*model.Event, error)                                                 // Retrieves an event by ID
}

// profile defines methods for handling supporter profiles and their contact rows.
type profile interface {
	CreateProfile(ctx context.Context, profile model.Profile) (model.Profile, error)          // Creates a new profile
	GetProfileByID(ctx context.Context, id string) (*model.Profile, error)                    // Retrieves a profile by ID
	GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error)              // Retrieves a profile by any of its email addresses
	UpdateProfile(ctx context.Context, profile *model.Profile) error                          // Updates a profile
	SetProfileActive(ctx context.Context, id string, active bool) error                       // Toggles a profile's active flag
	GetProfileUnits(ctx context.Context, profileID string) ([]string, error)                  // Retrieves the profile's administrative unit IDs
	AddProfileUnit(ctx context.Context, profileID, unitID string) error                       // Links a profile to an administrative unit
	RemoveProfileUnit(ctx context.Context, profileID, unitID string) error                    // Unlinks a profile from an administrative unit
	CreatePreference(ctx context.Context, pref model.Preference) error                        // Creates a preference row
	DeletePreference(ctx context.Context, profileID, unitID string) error                     // Deletes a preference row
	GetPreferences(ctx context.Context, profileID string) ([]model.Preference, error)         // Retrieves preference rows for a profile
	CreateProfileEmail(ctx context.Context, email model.ProfileEmail) error                   // Creates an additional email address
	CreateTelephone(ctx context.Context, telephone model.Telephone) error                     // Creates a telephone row
	GetTelephones(ctx context.Context, profileID string) ([]model.Telephone, error)           // Retrieves telephone rows for a profile
	CreateCompanyContact(ctx context.Context, contact model.CompanyContact) error             // Creates a company contact
	GetCompanyContacts(ctx context.Context, companyID string) ([]model.CompanyContact, error) // Retrieves contacts for a company
}

// moneyAccount defines methods for handling club money accounts and supporter bank accounts.
type moneyAccount interface {
	CreateMoneyAccount(ctx context.Context, account model.MoneyAccount) (model.MoneyAccount, error)    // Creates a new money account
	GetMoneyAccount(ctx context.Context, id string) (*model.MoneyAccount, error)                       // Retrieves a money account by ID
	GetBankAccountByNumber(ctx context.Context, number, unitID string) (*model.MoneyAccount, error)    // Resolves a statement header account within a unit
	GetApiAccounts(ctx context.Context) ([]model.MoneyAccount, error)                                  // Retrieves all donation portal accounts
	CreateUserBankAccount(ctx context.Context, account model.UserBankAccount) (model.UserBankAccount, error)
	GetUserBankAccountsByNumber(ctx context.Context, number string) ([]model.UserBankAccount, error)
}

// paymentChannel defines methods for handling payment channels.
type paymentChannel interface {
	CreatePaymentChannel(ctx context.Context, channel model.PaymentChannel) (model.PaymentChannel, error) // Creates a new channel
	GetPaymentChannel(ctx context.Context, id string) (*model.PaymentChannel, error)                      // Retrieves a channel by ID
	GetChannelByProfileEvent(ctx context.Context, profileID, eventID string) (*model.PaymentChannel, error)
	GetChannelsByVS(ctx context.Context, vs, unitID string) ([]model.PaymentChannel, error)                        // Retrieves channels by variable symbol within a unit
	GetChannelsByUserBankAccount(ctx context.Context, counterAccount, unitID string) ([]model.PaymentChannel, error) // Retrieves channels by sender account within a unit
	UpdatePaymentChannel(ctx context.Context, channel *model.PaymentChannel) error                                 // Updates a channel including derived fields
	HighestVS(ctx context.Context, unitID, prefix string) (string, error)                                          // Retrieves the highest allocated VS for a unit and prefix
	FilterChannels(ctx context.Context, where string, args []interface{}) ([]ChannelMatch, error)                  // Retrieves channels matching a compiled condition
}

// ChannelMatch is a channel joined with its owning profile, produced by
// condition queries.
type ChannelMatch struct {
	Channel model.PaymentChannel
	Profile model.Profile
}

// payment defines methods for handling payments.
type payment interface {
	CreatePayment(ctx context.Context, payment model.Payment) (model.Payment, error)                                                  // Creates a new payment
	CreatePairedPayment(ctx context.Context, payment model.Payment, now time.Time) (model.Payment, *model.PaymentChannel, error)      // Creates a paired payment and refreshes the channel's derived fields in one transaction
	GetPayment(ctx context.Context, id string) (*model.Payment, error)                                                                // Retrieves a payment by ID
	UpdatePayment(ctx context.Context, payment *model.Payment) error                 // Updates a payment
	GetPaymentsByChannel(ctx context.Context, channelID string) ([]model.Payment, error)
	GetDarujmePaymentsBySS(ctx context.Context, ss string) ([]model.Payment, error)                    // Retrieves donation portal payments by their portal ID
	SumConfirmedPayments(ctx context.Context, profileID, unitID string, year int) (int64, error)       // Sums real payments for a profile, unit and year
	GetProfilesWithPayments(ctx context.Context, unitID string, year int) ([]string, error)            // Retrieves profile IDs that donated in a year
}

// statement defines methods for handling imported account statements.
type statement interface {
	CreateAccountStatement(ctx context.Context, stmt model.AccountStatement) (model.AccountStatement, error)
	GetAccountStatement(ctx context.Context, id string) (*model.AccountStatement, error)
	UpdateAccountStatement(ctx context.Context, stmt *model.AccountStatement) error
}

// condition defines methods for handling stored named conditions.
type condition interface {
	CreateNamedCondition(ctx context.Context, cond model.NamedCondition) (model.NamedCondition, error)
	GetNamedCondition(ctx context.Context, id string) (*model.NamedCondition, error)
	GetAllNamedConditions(ctx context.Context) ([]model.NamedCondition, error)
	UpdateNamedCondition(ctx context.Context, cond *model.NamedCondition) error
}

// communication defines methods for handling communication rules.
type communication interface {
	CreateAutomaticCommunication(ctx context.Context, comm model.AutomaticCommunication) (model.AutomaticCommunication, error)
	GetAutomaticCommunications(ctx context.Context) ([]model.AutomaticCommunication, error)
	HasSentToProfile(ctx context.Context, communicationID, profileID string) (bool, error) // Checks the only_once sent set
	MarkSentToProfile(ctx context.Context, communicationID, profileID string) error        // Records a supporter in the only_once sent set
	CreateMassCommunication(ctx context.Context, comm model.MassCommunication) (model.MassCommunication, error)
	GetMassCommunication(ctx context.Context, id string) (*model.MassCommunication, error)
}

// interaction defines methods for handling the interaction log.
type interaction interface {
	CreateInteraction(ctx context.Context, inter model.Interaction) (model.Interaction, error)
	GetInteraction(ctx context.Context, id string) (*model.Interaction, error)
	GetInteractionsByProfile(ctx context.Context, profileID string) ([]model.Interaction, error)
	GetUndispatchedInteractions(ctx context.Context, method model.MethodType, limit int) ([]model.Interaction, error)
	MarkInteractionDispatched(ctx context.Context, id string) error
}

// taxConfirmation defines methods for handling tax confirmations and tokens.
type taxConfirmation interface {
	UpsertTaxConfirmation(ctx context.Context, conf model.TaxConfirmation) (model.TaxConfirmation, error)
	GetTaxConfirmation(ctx context.Context, profileID string, year int, pdfTypeID string) (*model.TaxConfirmation, error)
	CreateConfirmationToken(ctx context.Context, token model.ConfirmationToken) (model.ConfirmationToken, error)
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
