package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/klub-pratel/klub/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	for _, create := range []func(*sql.DB) error{
		createAdministrativeUnitTable,
		createEventTable,
		createProfileTable,
		createProfileUnitTable,
		createPreferenceTable,
		createProfileEmailTable,
		createTelephoneTable,
		createCompanyContactTable,
		createMoneyAccountTable,
		createUserBankAccountTable,
		createAccountStatementTable,
		createPaymentChannelTable,
		createPaymentTable,
		createNamedConditionTable,
		createAutomaticCommunicationTable,
		createSentToProfileTable,
		createMassCommunicationTable,
		createInteractionTable,
		createTaxConfirmationTable,
		createConfirmationTokenTable,
	} {
		if err := create(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func GenerateUUIDWithSuffix(module string) string {
	return fmt.Sprintf("%s_%s", module, uuid.New().String())
}

// IsUniqueViolation reports whether err is a postgres unique constraint
// failure. The variable symbol allocator relies on it for insert-then-retry.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func createAdministrativeUnitTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS administrative_units (
			id SERIAL PRIMARY KEY,
			unit_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			tax_id TEXT,
			from_email TEXT,
			brand_color TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}

func createEventTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id SERIAL PRIMARY KEY,
			event_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			slug TEXT,
			variable_symbol_prefix INTEGER,
			allows_registration BOOLEAN NOT NULL DEFAULT FALSE,
			statistics BOOLEAN NOT NULL DEFAULT FALSE,
			signatures BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}

func createProfileTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id SERIAL PRIMARY KEY,
			profile_id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL CHECK (kind IN ('user', 'company')),
			username TEXT NOT NULL UNIQUE,
			email TEXT,
			addressment TEXT,
			street TEXT,
			city TEXT,
			zip_code TEXT,
			correspondence_street TEXT,
			correspondence_city TEXT,
			correspondence_zip_code TEXT,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			can_edit_all_units BOOLEAN NOT NULL DEFAULT FALSE,
			first_name TEXT,
			last_name TEXT,
			sex TEXT,
			title_before TEXT,
			title_after TEXT,
			language TEXT,
			birth_day INTEGER,
			birth_month INTEGER,
			age_group INTEGER,
			company_name TEXT,
			crn TEXT,
			tin TEXT,
			time_condition TIMESTAMP,
			int_condition BIGINT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}

func createProfileUnitTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profile_units (
			id SERIAL PRIMARY KEY,
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			unit_id TEXT NOT NULL REFERENCES administrative_units(unit_id),
			UNIQUE (profile_id, unit_id)
		)
	`)
	log.Println(err)
	return err
}

func createPreferenceTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS preferences (
			id SERIAL PRIMARY KEY,
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			unit_id TEXT NOT NULL REFERENCES administrative_units(unit_id),
			newsletter_on BOOLEAN NOT NULL DEFAULT FALSE,
			call_on BOOLEAN NOT NULL DEFAULT FALSE,
			challenge_on BOOLEAN NOT NULL DEFAULT FALSE,
			letter_on BOOLEAN NOT NULL DEFAULT FALSE,
			send_mailing_lists BOOLEAN NOT NULL DEFAULT TRUE,
			public BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (profile_id, unit_id)
		)
	`)
	log.Println(err)
	return err
}

func createProfileEmailTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profile_emails (
			id SERIAL PRIMARY KEY,
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			email TEXT NOT NULL,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (email)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS profile_emails_primary_idx
			ON profile_emails (profile_id) WHERE is_primary
	`)
	log.Println(err)
	return err
}

func createTelephoneTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS telephones (
			id SERIAL PRIMARY KEY,
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			number TEXT NOT NULL,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (profile_id, number)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS telephones_primary_idx
			ON telephones (profile_id) WHERE is_primary
	`)
	log.Println(err)
	return err
}

func createCompanyContactTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS company_contacts (
			id SERIAL PRIMARY KEY,
			company_id TEXT NOT NULL REFERENCES profiles(profile_id),
			unit_id TEXT NOT NULL REFERENCES administrative_units(unit_id),
			contact_name TEXT NOT NULL,
			email TEXT,
			telephone TEXT,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE UNIQUE INDEX IF NOT EXISTS company_contacts_primary_idx
			ON company_contacts (company_id, unit_id) WHERE is_primary
	`)
	log.Println(err)
	return err
}

func createMoneyAccountTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS money_accounts (
			id SERIAL PRIMARY KEY,
			account_id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL CHECK (kind IN ('bank', 'api')),
			name TEXT NOT NULL,
			unit_id TEXT NOT NULL REFERENCES administrative_units(unit_id),
			bank_account_number TEXT,
			api_id TEXT,
			api_secret TEXT,
			project_id TEXT,
			event_id TEXT REFERENCES events(event_id),
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}

func createUserBankAccountTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS user_bank_accounts (
			id SERIAL PRIMARY KEY,
			bank_account_id TEXT NOT NULL UNIQUE,
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			bank_account_number TEXT NOT NULL
		)
	`)
	log.Println(err)
	return err
}

func createAccountStatementTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS account_statements (
			id SERIAL PRIMARY KEY,
			statement_id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			source_file TEXT,
			imported_at TIMESTAMP NOT NULL DEFAULT NOW(),
			date_from TIMESTAMP,
			date_to TIMESTAMP,
			unit_id TEXT NOT NULL REFERENCES administrative_units(unit_id),
			pair_log TEXT NOT NULL DEFAULT ''
		)
	`)
	log.Println(err)
	return err
}

func createPaymentChannelTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS payment_channels (
			id SERIAL PRIMARY KEY,
			channel_id TEXT NOT NULL UNIQUE,
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			event_id TEXT NOT NULL REFERENCES events(event_id),
			money_account_id TEXT NOT NULL REFERENCES money_accounts(account_id),
			user_bank_account_id TEXT REFERENCES user_bank_accounts(bank_account_id),
			vs TEXT,
			ss TEXT,
			regular_payments TEXT NOT NULL CHECK (regular_payments IN ('regular', 'onetime', 'promise')),
			regular_frequency TEXT,
			regular_amount BIGINT,
			expected_date_of_first_payment TIMESTAMP,
			end_of_regular_payments TIMESTAMP,
			registered_support TIMESTAMP NOT NULL DEFAULT NOW(),
			number_of_payments INTEGER NOT NULL DEFAULT 0,
			payment_total BIGINT NOT NULL DEFAULT 0,
			last_payment_id TEXT,
			last_payment_date TIMESTAMP,
			last_payment_amount BIGINT,
			expected_regular_payment_date TIMESTAMP,
			extra_money BIGINT,
			no_upgrade BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (profile_id, event_id)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS payment_channels_vs_idx
			ON payment_channels (vs, money_account_id) WHERE vs IS NOT NULL AND vs <> ''
	`)
	log.Println(err)
	return err
}

func createPaymentTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS payments (
			id SERIAL PRIMARY KEY,
			payment_id TEXT NOT NULL UNIQUE,
			date TIMESTAMP NOT NULL,
			amount BIGINT NOT NULL,
			recipient_account_id TEXT NOT NULL REFERENCES money_accounts(account_id),
			account TEXT,
			bank_code TEXT,
			vs TEXT,
			vs2 TEXT,
			ss TEXT,
			ks TEXT,
			bic TEXT,
			user_identification TEXT,
			account_name TEXT,
			bank_name TEXT,
			type TEXT NOT NULL,
			operation_id TEXT,
			transaction_id TEXT,
			payment_channel_id TEXT REFERENCES payment_channels(channel_id),
			account_statement_id TEXT REFERENCES account_statements(statement_id),
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}

func createNamedConditionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS named_conditions (
			id SERIAL PRIMARY KEY,
			condition_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			condition_tree JSONB NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}

func createAutomaticCommunicationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS automatic_communications (
			id SERIAL PRIMARY KEY,
			communication_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			unit_id TEXT NOT NULL REFERENCES administrative_units(unit_id),
			condition_id TEXT NOT NULL REFERENCES named_conditions(condition_id),
			method_type TEXT NOT NULL CHECK (method_type IN ('email', 'letter', 'phonecall', 'sms')),
			subject TEXT NOT NULL,
			subject_en TEXT,
			template TEXT NOT NULL,
			template_en TEXT,
			only_once BOOLEAN NOT NULL DEFAULT FALSE,
			dispatch_auto BOOLEAN NOT NULL DEFAULT FALSE,
			event_id TEXT REFERENCES events(event_id)
		)
	`)
	log.Println(err)
	return err
}

func createSentToProfileTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS communication_sent_profiles (
			id SERIAL PRIMARY KEY,
			communication_id TEXT NOT NULL REFERENCES automatic_communications(communication_id),
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			UNIQUE (communication_id, profile_id)
		)
	`)
	log.Println(err)
	return err
}

func createMassCommunicationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS mass_communications (
			id SERIAL PRIMARY KEY,
			communication_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			unit_id TEXT NOT NULL REFERENCES administrative_units(unit_id),
			method_type TEXT NOT NULL CHECK (method_type IN ('email', 'letter', 'phonecall', 'sms')),
			subject TEXT NOT NULL,
			subject_en TEXT,
			template TEXT NOT NULL,
			template_en TEXT,
			scheduled_for TIMESTAMP,
			profile_ids JSONB NOT NULL DEFAULT '[]',
			attach_tax_confirmation BOOLEAN NOT NULL DEFAULT FALSE,
			tax_confirmation_year INTEGER,
			pdf_type_id TEXT
		)
	`)
	log.Println(err)
	return err
}

func createInteractionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS interactions (
			id SERIAL PRIMARY KEY,
			interaction_id TEXT NOT NULL UNIQUE,
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			type TEXT NOT NULL,
			date_from TIMESTAMP NOT NULL,
			subject TEXT NOT NULL,
			summary TEXT,
			note TEXT,
			event_id TEXT REFERENCES events(event_id),
			unit_id TEXT NOT NULL REFERENCES administrative_units(unit_id),
			dispatched BOOLEAN NOT NULL DEFAULT FALSE,
			communication_type TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}

func createTaxConfirmationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tax_confirmations (
			id SERIAL PRIMARY KEY,
			confirmation_id TEXT NOT NULL UNIQUE,
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			year INTEGER NOT NULL,
			unit_id TEXT NOT NULL REFERENCES administrative_units(unit_id),
			pdf_type_id TEXT NOT NULL,
			amount BIGINT NOT NULL,
			pdf_path TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (profile_id, year, pdf_type_id)
		)
	`)
	log.Println(err)
	return err
}

func createConfirmationTokenTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS confirmation_tokens (
			id SERIAL PRIMARY KEY,
			token TEXT NOT NULL UNIQUE,
			profile_id TEXT NOT NULL REFERENCES profiles(profile_id),
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}
