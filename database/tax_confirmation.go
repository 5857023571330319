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

	"github.com/klub-pratel/klub/model"
)

// UpsertTaxConfirmation inserts or refreshes the yearly confirmation for
// one (profile, year, pdf type). Regenerating a batch is idempotent.
func (d Datasource) UpsertTaxConfirmation(ctx context.Context, conf model.TaxConfirmation) (model.TaxConfirmation, error) {
	if conf.ConfirmationID == "" {
		conf.ConfirmationID = GenerateUUIDWithSuffix("txc")
	}
	now := time.Now()
	conf.CreatedAt = now
	conf.UpdatedAt = now

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO tax_confirmations (confirmation_id, profile_id, year, unit_id, pdf_type_id, amount, pdf_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (profile_id, year, pdf_type_id) DO UPDATE
			SET amount = EXCLUDED.amount, pdf_path = EXCLUDED.pdf_path, updated_at = EXCLUDED.updated_at
		RETURNING confirmation_id
	`, conf.ConfirmationID, conf.ProfileID, conf.Year, conf.AdministrativeUnitID,
		conf.PdfTypeID, conf.Amount, conf.PdfPath, conf.CreatedAt, conf.UpdatedAt).Scan(&conf.ConfirmationID)
	return conf, err
}

// GetTaxConfirmation retrieves one confirmation. Returns nil without error
// when none exists yet.
func (d Datasource) GetTaxConfirmation(ctx context.Context, profileID string, year int, pdfTypeID string) (*model.TaxConfirmation, error) {
	var c model.TaxConfirmation
	err := d.Conn.QueryRowContext(ctx, `
		SELECT confirmation_id, profile_id, year, unit_id, pdf_type_id, amount, COALESCE(pdf_path, ''), created_at, updated_at
		FROM tax_confirmations WHERE profile_id = $1 AND year = $2 AND pdf_type_id = $3
	`, profileID, year, pdfTypeID).Scan(&c.ConfirmationID, &c.ProfileID, &c.Year,
		&c.AdministrativeUnitID, &c.PdfTypeID, &c.Amount, &c.PdfPath, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// CreateConfirmationToken stores a link token for the auth_token
// placeholder.
func (d Datasource) CreateConfirmationToken(ctx context.Context, token model.ConfirmationToken) (model.ConfirmationToken, error) {
	token.CreatedAt = time.Now()
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO confirmation_tokens (token, profile_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, token.Token, token.ProfileID, token.ExpiresAt, token.CreatedAt)
	return token, err
}

// DeleteExpiredTokens removes tokens past their expiry and reports how many
// went away.
func (d Datasource) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := d.Conn.ExecContext(ctx, `
		DELETE FROM confirmation_tokens WHERE expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
