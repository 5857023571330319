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

// CreateAdministrativeUnit inserts a new tenancy root.
func (d Datasource) CreateAdministrativeUnit(ctx context.Context, unit model.AdministrativeUnit) (model.AdministrativeUnit, error) {
	unit.UnitID = GenerateUUIDWithSuffix("unt")
	unit.CreatedAt = time.Now()
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO administrative_units (unit_id, name, tax_id, from_email, brand_color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, unit.UnitID, unit.Name, unit.TaxID, unit.FromEmail, unit.BrandColor, unit.CreatedAt)
	return unit, err
}

// GetAdministrativeUnit retrieves a unit by ID.
func (d Datasource) GetAdministrativeUnit(ctx context.Context, id string) (*model.AdministrativeUnit, error) {
	var u model.AdministrativeUnit
	err := d.Conn.QueryRowContext(ctx, `
		SELECT unit_id, name, tax_id, from_email, brand_color, created_at
		FROM administrative_units WHERE unit_id = $1
	`, id).Scan(&u.UnitID, &u.Name, &u.TaxID, &u.FromEmail, &u.BrandColor, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "administrative unit not found", id)
		}
		return nil, err
	}
	return &u, nil
}

// GetAllAdministrativeUnits retrieves every unit.
func (d Datasource) GetAllAdministrativeUnits(ctx context.Context) ([]model.AdministrativeUnit, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT unit_id, name, tax_id, from_email, brand_color, created_at
		FROM administrative_units ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []model.AdministrativeUnit
	for rows.Next() {
		var u model.AdministrativeUnit
		if err := rows.Scan(&u.UnitID, &u.Name, &u.TaxID, &u.FromEmail, &u.BrandColor, &u.CreatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// CreateEvent inserts a new campaign.
func (d Datasource) CreateEvent(ctx context.Context, event model.Event) (model.Event, error) {
	if err := event.Validate(); err != nil {
		return event, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid event", err)
	}
	event.EventID = GenerateUUIDWithSuffix("evt")
	event.CreatedAt = time.Now()
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO events (event_id, name, slug, variable_symbol_prefix, allows_registration, statistics, signatures, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, event.EventID, event.Name, event.Slug, event.VariableSymbolPrefix,
		event.AllowsRegistration, event.Statistics, event.Signatures, event.CreatedAt)
	return event, err
}

// GetEvent retrieves an event by ID.
func (d Datasource) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := d.Conn.QueryRowContext(ctx, `
		SELECT event_id, name, slug, variable_symbol_prefix, allows_registration, statistics, signatures, created_at
		FROM events WHERE event_id = $1
	`, id).Scan(&e.EventID, &e.Name, &e.Slug, &e.VariableSymbolPrefix,
		&e.AllowsRegistration, &e.Statistics, &e.Signatures, &e.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "event not found", id)
		}
		return nil, err
	}
	return &e, nil
}
