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
	"encoding/json"

	"github.com/klub-pratel/klub/internal/apierror"
	"github.com/klub-pratel/klub/model"
)

// CreateAutomaticCommunication stores a communication rule. Template
// validity is the caller's concern; rules arrive here already checked.
func (d Datasource) CreateAutomaticCommunication(ctx context.Context, comm model.AutomaticCommunication) (model.AutomaticCommunication, error) {
	if err := comm.Validate(); err != nil {
		return comm, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid automatic communication", err)
	}
	comm.CommunicationID = GenerateUUIDWithSuffix("aut")

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO automatic_communications (communication_id, name, unit_id, condition_id, method_type,
			subject, subject_en, template, template_en, only_once, dispatch_auto, event_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''))
	`, comm.CommunicationID, comm.Name, comm.AdministrativeUnitID, comm.NamedConditionID,
		comm.MethodType, comm.Subject, comm.SubjectEn, comm.Template, comm.TemplateEn,
		comm.OnlyOnce, comm.DispatchAuto, comm.EventID)
	return comm, err
}

// GetAutomaticCommunications retrieves every rule; the daily check and the
// new-payment hook both iterate the full set.
func (d Datasource) GetAutomaticCommunications(ctx context.Context) ([]model.AutomaticCommunication, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT communication_id, name, unit_id, condition_id, method_type,
			subject, subject_en, template, template_en, only_once, dispatch_auto, COALESCE(event_id, '')
		FROM automatic_communications ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comms []model.AutomaticCommunication
	for rows.Next() {
		var c model.AutomaticCommunication
		if err := rows.Scan(&c.CommunicationID, &c.Name, &c.AdministrativeUnitID, &c.NamedConditionID,
			&c.MethodType, &c.Subject, &c.SubjectEn, &c.Template, &c.TemplateEn,
			&c.OnlyOnce, &c.DispatchAuto, &c.EventID); err != nil {
			return nil, err
		}
		comms = append(comms, c)
	}
	return comms, rows.Err()
}

// HasSentToProfile checks the only_once sent set. The set is keyed by
// supporter, not by channel: a supporter with several channels matching
// the same rule is contacted at most once.
func (d Datasource) HasSentToProfile(ctx context.Context, communicationID, profileID string) (bool, error) {
	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM communication_sent_profiles WHERE communication_id = $1 AND profile_id = $2
		)
	`, communicationID, profileID).Scan(&exists)
	return exists, err
}

// MarkSentToProfile records a supporter in the only_once sent set.
func (d Datasource) MarkSentToProfile(ctx context.Context, communicationID, profileID string) error {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO communication_sent_profiles (communication_id, profile_id)
		VALUES ($1, $2)
		ON CONFLICT (communication_id, profile_id) DO NOTHING
	`, communicationID, profileID)
	return err
}

// CreateMassCommunication stores a one-off send definition.
func (d Datasource) CreateMassCommunication(ctx context.Context, comm model.MassCommunication) (model.MassCommunication, error) {
	comm.CommunicationID = GenerateUUIDWithSuffix("mas")
	profileIDs, err := json.Marshal(comm.ProfileIDs)
	if err != nil {
		return comm, err
	}

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO mass_communications (communication_id, name, unit_id, method_type,
			subject, subject_en, template, template_en, scheduled_for, profile_ids,
			attach_tax_confirmation, tax_confirmation_year, pdf_type_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, comm.CommunicationID, comm.Name, comm.AdministrativeUnitID, comm.MethodType,
		comm.Subject, comm.SubjectEn, comm.Template, comm.TemplateEn, comm.ScheduledFor,
		profileIDs, comm.AttachTaxConfirmation, comm.TaxConfirmationYear, comm.PdfTypeID)
	return comm, err
}

// GetMassCommunication retrieves a mass communication by ID.
func (d Datasource) GetMassCommunication(ctx context.Context, id string) (*model.MassCommunication, error) {
	var c model.MassCommunication
	var profileIDs []byte
	err := d.Conn.QueryRowContext(ctx, `
		SELECT communication_id, name, unit_id, method_type, subject, subject_en,
			template, template_en, scheduled_for, profile_ids,
			attach_tax_confirmation, COALESCE(tax_confirmation_year, 0), COALESCE(pdf_type_id, '')
		FROM mass_communications WHERE communication_id = $1
	`, id).Scan(&c.CommunicationID, &c.Name, &c.AdministrativeUnitID, &c.MethodType,
		&c.Subject, &c.SubjectEn, &c.Template, &c.TemplateEn, &c.ScheduledFor, &profileIDs,
		&c.AttachTaxConfirmation, &c.TaxConfirmationYear, &c.PdfTypeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "mass communication not found", id)
		}
		return nil, err
	}
	if err := json.Unmarshal(profileIDs, &c.ProfileIDs); err != nil {
		return nil, err
	}
	return &c, nil
}
