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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klub-pratel/klub/model"
)

func profileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"profile_id", "kind", "username", "email", "addressment", "street", "city", "zip_code",
		"correspondence_street", "correspondence_city", "correspondence_zip_code", "is_active", "can_edit_all_units",
		"first_name", "last_name", "sex", "title_before", "title_after", "language", "birth_day", "birth_month", "age_group",
		"company_name", "crn", "tin", "created_at", "updated_at",
	})
}

func TestCreateProfileNormalizesEmail(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec("INSERT INTO profiles").
		WillReturnResult(sqlmock.NewResult(1, 1))

	profile, err := ds.CreateProfile(context.Background(), model.Profile{
		Kind:     model.KindUserProfile,
		Username: gofakeit.Username(),
		Email:    "  Jan.Novak@Example.COM ",
	})
	require.NoError(t, err)
	assert.Equal(t, "jan.novak@example.com", profile.Email)
	assert.Contains(t, profile.ProfileID, "prf_")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProfileInvalidKind(t *testing.T) {
	ds, _ := newTestDatasource(t)

	_, err := ds.CreateProfile(context.Background(), model.Profile{
		Kind:     "robot",
		Username: "someone",
	})
	assert.Error(t, err)
}

func TestGetProfileByEmailMissing(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("nobody@example.com").
		WillReturnRows(profileRows())

	profile, err := ds.GetProfileByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestGetProfileByEmailFound(t *testing.T) {
	ds, mock := newTestDatasource(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("jan.novak@example.com").
		WillReturnRows(profileRows().AddRow(
			"prf_1", "user", "jan.novak", "jan.novak@example.com", "", "Dlouhá 12", "Praha", "11000",
			"", "", "", true, false,
			"Jan", "Novák", "male", "", "", "cs", 0, 0, 0,
			"", "", "", now, now,
		))
	mock.ExpectQuery("SELECT unit_id FROM profile_units").
		WithArgs("prf_1").
		WillReturnRows(sqlmock.NewRows([]string{"unit_id"}).AddRow("unt_1"))

	profile, err := ds.GetProfileByEmail(context.Background(), "jan.novak@example.com")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, model.KindUserProfile, profile.Kind)
	assert.Equal(t, []string{"unt_1"}, profile.AdministrativeUnits)
}

func TestCreateTelephoneRejectsBadNumber(t *testing.T) {
	ds, _ := newTestDatasource(t)

	err := ds.CreateTelephone(context.Background(), model.Telephone{
		ProfileID: "prf_1",
		Number:    "12ab",
	})
	assert.Error(t, err)
}

func TestDeleteExpiredTokens(t *testing.T) {
	ds, mock := newTestDatasource(t)
	now := time.Now()

	mock.ExpectExec("DELETE FROM confirmation_tokens").
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := ds.DeleteExpiredTokens(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}
