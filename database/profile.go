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

const profileColumns = `profile_id, kind, username, email, addressment, street, city, zip_code,
		correspondence_street, correspondence_city, correspondence_zip_code, is_active, can_edit_all_units,
		first_name, last_name, sex, title_before, title_after, language, birth_day, birth_month, age_group,
		company_name, crn, tin, created_at, updated_at`

// CreateProfile inserts a new Profile into the database. The email is
// normalized first so the unique constraint sees one canonical form.
func (d Datasource) CreateProfile(ctx context.Context, profile model.Profile) (model.Profile, error) {
	profile.NormalizeEmail()
	if err := profile.Validate(); err != nil {
		return profile, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid profile", err)
	}

	profile.ProfileID = GenerateUUIDWithSuffix("prf")
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO profiles (profile_id, kind, username, email, addressment, street, city, zip_code,
			correspondence_street, correspondence_city, correspondence_zip_code, is_active, can_edit_all_units,
			first_name, last_name, sex, title_before, title_after, language, birth_day, birth_month, age_group,
			company_name, crn, tin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`, profile.ProfileID, profile.Kind, profile.Username, profile.Email, profile.Addressment,
		profile.Street, profile.City, profile.ZipCode,
		profile.CorrespondenceStreet, profile.CorrespondenceCity, profile.CorrespondenceZipCode,
		profile.IsActive, profile.CanEditAllUnits,
		profile.FirstName, profile.LastName, profile.Sex, profile.TitleBefore, profile.TitleAfter,
		profile.Language, profile.BirthDay, profile.BirthMonth, profile.AgeGroup,
		profile.CompanyName, profile.CRN, profile.TIN, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return profile, apierror.NewAPIError(apierror.ErrConflict, "profile with this username or email already exists", err)
		}
		return profile, err
	}
	return profile, nil
}

// GetProfileByID retrieves a profile by its ID, including its
// administrative unit set.
func (d Datasource) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles WHERE profile_id = $1
	`, id)
	profile, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "profile not found", id)
		}
		return nil, err
	}
	profile.AdministrativeUnits, err = d.GetProfileUnits(ctx, profile.ProfileID)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// GetProfileByEmail retrieves a profile by its main address or any
// additional ProfileEmail row. Returns nil without error when no profile
// carries the address, which the donation portal ingest treats as "create".
func (d Datasource) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE lower(email) = lower($1)
		   OR profile_id IN (SELECT profile_id FROM profile_emails WHERE lower(email) = lower($1))
		LIMIT 1
	`, email)
	profile, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	profile.AdministrativeUnits, err = d.GetProfileUnits(ctx, profile.ProfileID)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile updates a profile's mutable fields.
func (d Datasource) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	profile.NormalizeEmail()
	profile.UpdatedAt = time.Now()
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE profiles SET email = $2, addressment = $3, street = $4, city = $5, zip_code = $6,
			correspondence_street = $7, correspondence_city = $8, correspondence_zip_code = $9,
			is_active = $10, first_name = $11, last_name = $12, sex = $13, title_before = $14,
			title_after = $15, language = $16, birth_day = $17, birth_month = $18, age_group = $19,
			company_name = $20, crn = $21, tin = $22, updated_at = $23
		WHERE profile_id = $1
	`, profile.ProfileID, profile.Email, profile.Addressment, profile.Street, profile.City, profile.ZipCode,
		profile.CorrespondenceStreet, profile.CorrespondenceCity, profile.CorrespondenceZipCode,
		profile.IsActive, profile.FirstName, profile.LastName, profile.Sex, profile.TitleBefore,
		profile.TitleAfter, profile.Language, profile.BirthDay, profile.BirthMonth, profile.AgeGroup,
		profile.CompanyName, profile.CRN, profile.TIN, profile.UpdatedAt)
	return err
}

// SetProfileActive toggles the is_active flag.
func (d Datasource) SetProfileActive(ctx context.Context, id string, active bool) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE profiles SET is_active = $2, updated_at = NOW() WHERE profile_id = $1
	`, id, active)
	return err
}

// GetProfileUnits returns the administrative unit IDs a profile belongs to.
func (d Datasource) GetProfileUnits(ctx context.Context, profileID string) ([]string, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT unit_id FROM profile_units WHERE profile_id = $1 ORDER BY unit_id
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []string
	for rows.Next() {
		var unit string
		if err := rows.Scan(&unit); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (d Datasource) AddProfileUnit(ctx context.Context, profileID, unitID string) error {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO profile_units (profile_id, unit_id) VALUES ($1, $2)
		ON CONFLICT (profile_id, unit_id) DO NOTHING
	`, profileID, unitID)
	return err
}

func (d Datasource) RemoveProfileUnit(ctx context.Context, profileID, unitID string) error {
	_, err := d.Conn.ExecContext(ctx, `
		DELETE FROM profile_units WHERE profile_id = $1 AND unit_id = $2
	`, profileID, unitID)
	return err
}

// CreatePreference inserts a preference row. Existing rows are kept as is
// so repeated unit assignment does not reset consent flags.
func (d Datasource) CreatePreference(ctx context.Context, pref model.Preference) error {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO preferences (profile_id, unit_id, newsletter_on, call_on, challenge_on, letter_on, send_mailing_lists, public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (profile_id, unit_id) DO NOTHING
	`, pref.ProfileID, pref.AdministrativeUnitID, pref.NewsletterOn, pref.CallOn,
		pref.ChallengeOn, pref.LetterOn, pref.SendMailingLists, pref.Public)
	return err
}

func (d Datasource) DeletePreference(ctx context.Context, profileID, unitID string) error {
	_, err := d.Conn.ExecContext(ctx, `
		DELETE FROM preferences WHERE profile_id = $1 AND unit_id = $2
	`, profileID, unitID)
	return err
}

func (d Datasource) GetPreferences(ctx context.Context, profileID string) ([]model.Preference, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, profile_id, unit_id, newsletter_on, call_on, challenge_on, letter_on, send_mailing_lists, public
		FROM preferences WHERE profile_id = $1 ORDER BY unit_id
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []model.Preference
	for rows.Next() {
		var p model.Preference
		if err := rows.Scan(&p.ID, &p.ProfileID, &p.AdministrativeUnitID, &p.NewsletterOn,
			&p.CallOn, &p.ChallengeOn, &p.LetterOn, &p.SendMailingLists, &p.Public); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

func (d Datasource) CreateProfileEmail(ctx context.Context, email model.ProfileEmail) error {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO profile_emails (profile_id, email, is_primary) VALUES ($1, lower($2), $3)
		ON CONFLICT (email) DO NOTHING
	`, email.ProfileID, email.Email, email.IsPrimary)
	return err
}

func (d Datasource) CreateTelephone(ctx context.Context, telephone model.Telephone) error {
	if err := telephone.Validate(); err != nil {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "invalid telephone number", err)
	}
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO telephones (profile_id, number, is_primary) VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, number) DO NOTHING
	`, telephone.ProfileID, telephone.Number, telephone.IsPrimary)
	return err
}

func (d Datasource) GetTelephones(ctx context.Context, profileID string) ([]model.Telephone, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, profile_id, number, is_primary
		FROM telephones WHERE profile_id = $1 ORDER BY is_primary DESC, id
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var telephones []model.Telephone
	for rows.Next() {
		var t model.Telephone
		if err := rows.Scan(&t.ID, &t.ProfileID, &t.Number, &t.IsPrimary); err != nil {
			return nil, err
		}
		telephones = append(telephones, t)
	}
	return telephones, rows.Err()
}

func (d Datasource) CreateCompanyContact(ctx context.Context, contact model.CompanyContact) error {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO company_contacts (company_id, unit_id, contact_name, email, telephone, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, contact.CompanyID, contact.AdministrativeUnitID, contact.ContactName,
		contact.Email, contact.Telephone, contact.IsPrimary)
	if err != nil && IsUniqueViolation(err) {
		return apierror.NewAPIError(apierror.ErrConflict, "company already has a primary contact for this unit", err)
	}
	return err
}

func (d Datasource) GetCompanyContacts(ctx context.Context, companyID string) ([]model.CompanyContact, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, company_id, unit_id, contact_name, email, telephone, is_primary
		FROM company_contacts WHERE company_id = $1 ORDER BY is_primary DESC, id
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []model.CompanyContact
	for rows.Next() {
		var c model.CompanyContact
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.AdministrativeUnitID, &c.ContactName,
			&c.Email, &c.Telephone, &c.IsPrimary); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ProfileID, &p.Kind, &p.Username, &p.Email, &p.Addressment,
		&p.Street, &p.City, &p.ZipCode,
		&p.CorrespondenceStreet, &p.CorrespondenceCity, &p.CorrespondenceZipCode,
		&p.IsActive, &p.CanEditAllUnits,
		&p.FirstName, &p.LastName, &p.Sex, &p.TitleBefore, &p.TitleAfter,
		&p.Language, &p.BirthDay, &p.BirthMonth, &p.AgeGroup,
		&p.CompanyName, &p.CRN, &p.TIN, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
