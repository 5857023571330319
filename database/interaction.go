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

const interactionColumns = `interaction_id, profile_id, type, date_from, subject, summary, note,
		COALESCE(event_id, ''), unit_id, dispatched, communication_type, created_at`

// CreateInteraction records one communication with a supporter.
func (d Datasource) CreateInteraction(ctx context.Context, inter model.Interaction) (model.Interaction, error) {
	inter.InteractionID = GenerateUUIDWithSuffix("int")
	inter.CreatedAt = time.Now()
	if inter.DateFrom.IsZero() {
		inter.DateFrom = inter.CreatedAt
	}

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO interactions (interaction_id, profile_id, type, date_from, subject, summary, note,
			event_id, unit_id, dispatched, communication_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12)
	`, inter.InteractionID, inter.ProfileID, inter.Type, inter.DateFrom, inter.Subject,
		inter.Summary, inter.Note, inter.EventID, inter.AdministrativeUnitID,
		inter.Dispatched, inter.CommunicationType, inter.CreatedAt)
	return inter, err
}

// GetInteraction retrieves one interaction by ID. Returns nil without
// error when it does not exist.
func (d Datasource) GetInteraction(ctx context.Context, id string) (*model.Interaction, error) {
	inters, err := d.queryInteractions(ctx, `
		SELECT `+interactionColumns+` FROM interactions WHERE interaction_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	if len(inters) == 0 {
		return nil, nil
	}
	return &inters[0], nil
}

// GetInteractionsByProfile returns a supporter's communication history.
func (d Datasource) GetInteractionsByProfile(ctx context.Context, profileID string) ([]model.Interaction, error) {
	return d.queryInteractions(ctx, `
		SELECT `+interactionColumns+` FROM interactions WHERE profile_id = $1 ORDER BY id
	`, profileID)
}

// GetUndispatchedInteractions returns queued interactions of one method,
// oldest first. The post office task drains these.
func (d Datasource) GetUndispatchedInteractions(ctx context.Context, method model.MethodType, limit int) ([]model.Interaction, error) {
	return d.queryInteractions(ctx, `
		SELECT `+interactionColumns+`
		FROM interactions WHERE type = $1 AND NOT dispatched ORDER BY id LIMIT $2
	`, method, limit)
}

// MarkInteractionDispatched flags an interaction as sent.
func (d Datasource) MarkInteractionDispatched(ctx context.Context, id string) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE interactions SET dispatched = TRUE WHERE interaction_id = $1
	`, id)
	return err
}

func (d Datasource) queryInteractions(ctx context.Context, query string, args ...interface{}) ([]model.Interaction, error) {
	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inters []model.Interaction
	for rows.Next() {
		var i model.Interaction
		if err := rows.Scan(&i.InteractionID, &i.ProfileID, &i.Type, &i.DateFrom, &i.Subject,
			&i.Summary, &i.Note, &i.EventID, &i.AdministrativeUnitID,
			&i.Dispatched, &i.CommunicationType, &i.CreatedAt); err != nil {
			return nil, err
		}
		inters = append(inters, i)
	}
	return inters, rows.Err()
}
