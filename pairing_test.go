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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/klub-pratel/klub/model"
)

func TestPairPaymentBySenderAccount(t *testing.T) {
	k, datasource := newTestKlub(t)

	stmt := &model.AccountStatement{StatementID: "stm_1", AdministrativeUnitID: "unt_1"}
	payment := &model.Payment{Account: "999999", BankCode: "1111", VS: "123", AccountName: "Novak"}

	datasource.On("GetChannelsByUserBankAccount", mock.Anything, "999999/1111", "unt_1").
		Return([]model.PaymentChannel{{ChannelID: "dpch_1"}}, nil)

	paired, err := k.PairPayment(context.Background(), payment, stmt)
	assert.NoError(t, err)
	assert.True(t, paired)
	assert.Equal(t, "dpch_1", payment.PaymentChannelID)
	assert.Empty(t, stmt.PairLog)
	datasource.AssertNotCalled(t, "GetChannelsByVS", mock.Anything, mock.Anything, mock.Anything)
}

func TestPairPaymentFallsBackToVS(t *testing.T) {
	k, datasource := newTestKlub(t)

	stmt := &model.AccountStatement{StatementID: "stm_1", AdministrativeUnitID: "unt_2"}
	payment := &model.Payment{Account: "999999", BankCode: "1111", VS: "120127010"}

	datasource.On("GetChannelsByUserBankAccount", mock.Anything, "999999/1111", "unt_2").
		Return([]model.PaymentChannel{}, nil)
	datasource.On("GetChannelsByVS", mock.Anything, "120127010", "unt_2").
		Return([]model.PaymentChannel{{ChannelID: "dpch_2"}}, nil)

	paired, err := k.PairPayment(context.Background(), payment, stmt)
	assert.NoError(t, err)
	assert.True(t, paired)
	assert.Equal(t, "dpch_2", payment.PaymentChannelID)
}

func TestPairPaymentAmbiguousSenderNoVS(t *testing.T) {
	k, datasource := newTestKlub(t)

	stmt := &model.AccountStatement{StatementID: "stm_1", AdministrativeUnitID: "unt_1"}
	payment := &model.Payment{Account: "999999", BankCode: "1111", AccountName: "Novak, Jan"}

	datasource.On("GetChannelsByUserBankAccount", mock.Anything, "999999/1111", "unt_1").
		Return([]model.PaymentChannel{{ChannelID: "dpch_1"}, {ChannelID: "dpch_2"}}, nil)

	paired, err := k.PairPayment(context.Background(), payment, stmt)
	assert.NoError(t, err)
	assert.False(t, paired)
	assert.Empty(t, payment.PaymentChannelID)
	assert.Contains(t, stmt.PairLog, "Novak, Jan => multiple dpch with user_bank_account\n")
	assert.Contains(t, stmt.PairLog, "Novak, Jan => VS not set\n")
}

func TestPairPaymentVSNotFound(t *testing.T) {
	k, datasource := newTestKlub(t)

	stmt := &model.AccountStatement{StatementID: "stm_1", AdministrativeUnitID: "unt_1"}
	payment := &model.Payment{VS: "555", AccountName: "Svobodova"}

	datasource.On("GetChannelsByVS", mock.Anything, "555", "unt_1").
		Return([]model.PaymentChannel{}, nil)

	paired, err := k.PairPayment(context.Background(), payment, stmt)
	assert.NoError(t, err)
	assert.False(t, paired)
	assert.Equal(t, "Svobodova => dpch with VS doesnt_exist\n", stmt.PairLog)
}

func TestPairPaymentMultipleByVS(t *testing.T) {
	k, datasource := newTestKlub(t)

	stmt := &model.AccountStatement{StatementID: "stm_1", AdministrativeUnitID: "unt_1"}
	payment := &model.Payment{VS: "123", AccountName: "Dvorak"}

	datasource.On("GetChannelsByVS", mock.Anything, "123", "unt_1").
		Return([]model.PaymentChannel{{ChannelID: "dpch_1"}, {ChannelID: "dpch_2"}}, nil)

	paired, err := k.PairPayment(context.Background(), payment, stmt)
	assert.NoError(t, err)
	assert.False(t, paired)
	assert.Equal(t, "Dvorak => multiple dpch with VS\n", stmt.PairLog)
}
