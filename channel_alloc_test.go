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

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/klub-pratel/klub/model"
)

func TestAllocateVariableSymbolFirst(t *testing.T) {
	k, datasource := newTestKlub(t)

	datasource.On("HighestVS", mock.Anything, "unt_1", "0").Return("", nil)

	vs, err := k.allocateVariableSymbol(context.Background(), "unt_1", &model.Event{EventID: "evt_1"})
	assert.NoError(t, err)
	assert.Equal(t, "0000000001", vs)
}

func TestAllocateVariableSymbolIgnoresEventPrefixes(t *testing.T) {
	k, datasource := newTestKlub(t)

	// the unit already carries event-prefixed symbols; the plain scan is
	// restricted to the "0" prefix and starts its own sequence
	datasource.On("HighestVS", mock.Anything, "unt_1", "0").Return("", nil)

	vs, err := k.allocateVariableSymbol(context.Background(), "unt_1", nil)
	assert.NoError(t, err)
	assert.Equal(t, "0000000001", vs)
	datasource.AssertExpectations(t)
}

func TestAllocateVariableSymbolNext(t *testing.T) {
	k, datasource := newTestKlub(t)

	datasource.On("HighestVS", mock.Anything, "unt_1", "0").Return("0000000041", nil)

	vs, err := k.allocateVariableSymbol(context.Background(), "unt_1", nil)
	assert.NoError(t, err)
	assert.Equal(t, "0000000042", vs)
}

func TestAllocateVariableSymbolExhausted(t *testing.T) {
	k, datasource := newTestKlub(t)

	datasource.On("HighestVS", mock.Anything, "unt_1", "0").Return("0999999999", nil)

	_, err := k.allocateVariableSymbol(context.Background(), "unt_1", nil)
	assert.ErrorContains(t, err, "OUT OF VS")
}

func TestAllocateVariableSymbolWithPrefix(t *testing.T) {
	k, datasource := newTestKlub(t)
	event := &model.Event{EventID: "evt_1", VariableSymbolPrefix: 12012}

	datasource.On("HighestVS", mock.Anything, "unt_1", "12012").Return("", nil).Once()
	vs, err := k.allocateVariableSymbol(context.Background(), "unt_1", event)
	assert.NoError(t, err)
	assert.Equal(t, "1201200001", vs)

	datasource.On("HighestVS", mock.Anything, "unt_1", "12012").Return("1201200007", nil).Once()
	vs, err = k.allocateVariableSymbol(context.Background(), "unt_1", event)
	assert.NoError(t, err)
	assert.Equal(t, "1201200008", vs)
}

func TestAllocateVariableSymbolPrefixExhausted(t *testing.T) {
	k, datasource := newTestKlub(t)
	event := &model.Event{EventID: "evt_1", VariableSymbolPrefix: 12012}

	datasource.On("HighestVS", mock.Anything, "unt_1", "12012").Return("1201299999", nil)

	_, err := k.allocateVariableSymbol(context.Background(), "unt_1", event)
	assert.ErrorContains(t, err, "OUT OF VS")
}

func TestCreatePaymentChannelRetriesOnTakenVS(t *testing.T) {
	k, datasource := newTestKlub(t)

	channel := model.PaymentChannel{
		ProfileID:       "prf_1",
		EventID:         "evt_1",
		MoneyAccountID:  "acc_1",
		RegularPayments: model.RegularPaymentsRegular,
	}

	datasource.On("GetMoneyAccount", mock.Anything, "acc_1").
		Return(&model.MoneyAccount{AccountID: "acc_1", AdministrativeUnitID: "unt_1"}, nil)
	datasource.On("GetEvent", mock.Anything, "evt_1").
		Return(&model.Event{EventID: "evt_1"}, nil)

	// another import grabbed 0000000002 between the scan and the insert
	datasource.On("HighestVS", mock.Anything, "unt_1", "0").Return("0000000001", nil).Once()
	datasource.On("CreatePaymentChannel", mock.Anything, mock.MatchedBy(func(c model.PaymentChannel) bool {
		return c.VS == "0000000002"
	})).Return(model.PaymentChannel{}, &pq.Error{Code: "23505"}).Once()

	datasource.On("HighestVS", mock.Anything, "unt_1", "0").Return("0000000002", nil).Once()
	datasource.On("CreatePaymentChannel", mock.Anything, mock.MatchedBy(func(c model.PaymentChannel) bool {
		return c.VS == "0000000003"
	})).Return(model.PaymentChannel{ChannelID: "dpch_1", ProfileID: "prf_1", VS: "0000000003"}, nil).Once()

	datasource.On("GetAutomaticCommunications", mock.Anything).
		Return([]model.AutomaticCommunication{}, nil)

	created, err := k.CreatePaymentChannel(context.Background(), channel)
	assert.NoError(t, err)
	assert.Equal(t, "0000000003", created.VS)
	datasource.AssertExpectations(t)
}

func TestCreatePaymentChannelExplicitDuplicateVS(t *testing.T) {
	k, datasource := newTestKlub(t)

	channel := model.PaymentChannel{
		ProfileID:       "prf_1",
		EventID:         "evt_1",
		MoneyAccountID:  "acc_1",
		VS:              "120127010",
		RegularPayments: model.RegularPaymentsOnetime,
	}

	datasource.On("GetMoneyAccount", mock.Anything, "acc_1").
		Return(&model.MoneyAccount{AccountID: "acc_1", AdministrativeUnitID: "unt_1"}, nil)
	datasource.On("CreatePaymentChannel", mock.Anything, mock.Anything).
		Return(model.PaymentChannel{}, &pq.Error{Code: "23505"})

	_, err := k.CreatePaymentChannel(context.Background(), channel)
	assert.ErrorContains(t, err, "variable symbol already taken")
}

func TestCreatePaymentChannelInvalid(t *testing.T) {
	k, _ := newTestKlub(t)

	_, err := k.CreatePaymentChannel(context.Background(), model.PaymentChannel{ProfileID: "prf_1"})
	assert.Error(t, err)
}
