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

const fioStatement = `accountId;2400063333
dateStart;25.01.2016
dateEnd;31.01.2016

ID operace;Datum;Objem;Měna;Protiúčet;Kód banky;KS;VS;SS;Uživatelská identifikace;Zpráva pro příjemce;Typ;Provedl;Upřesnění;Komentář;BIC;ID pokynu;Název protiúčtu;Název banky
10000000001;27.01.2016;100,00;CZK;2150508001;5500;0558;120127010;;Novak Jan;přítel klubu;Bezhotovostní příjem;;;;RZBCCZPP;;Novák, Jan;Raiffeisenbank a.s.
`

func TestProcessAccountStatementPairsByVS(t *testing.T) {
	k, datasource := newTestKlub(t)

	stmt := &model.AccountStatement{
		StatementID:          "stm_1",
		Type:                 model.StatementAccount,
		SourceFile:           "Pohyby_5_2016.csv",
		AdministrativeUnitID: "unt_1",
	}
	channel := &model.PaymentChannel{ChannelID: "dpch_1", ProfileID: "prf_1", VS: "120127010"}

	datasource.On("GetAccountStatement", mock.Anything, "stm_1").Return(stmt, nil)
	datasource.On("GetBankAccountByNumber", mock.Anything, "2400063333", "unt_1").
		Return(&model.MoneyAccount{AccountID: "acc_1", Kind: model.KindBankAccount, AdministrativeUnitID: "unt_1"}, nil)
	datasource.On("GetChannelsByUserBankAccount", mock.Anything, "2150508001/5500", "unt_1").
		Return([]model.PaymentChannel{}, nil)
	datasource.On("GetChannelsByVS", mock.Anything, "120127010", "unt_1").
		Return([]model.PaymentChannel{*channel}, nil)

	datasource.On("CreatePairedPayment", mock.Anything, mock.MatchedBy(func(p model.Payment) bool {
		return p.Type == model.PaymentTypeBankTransfer &&
			p.Amount == 100 &&
			p.VS == "120127010" &&
			p.PaymentChannelID == "dpch_1" &&
			p.AccountStatementID == "stm_1"
	}), mock.Anything).Return(model.Payment{PaymentID: "pay_1", PaymentChannelID: "dpch_1"}, channel, nil)
	datasource.On("GetAutomaticCommunications", mock.Anything).Return([]model.AutomaticCommunication{}, nil)
	datasource.On("UpdateAccountStatement", mock.Anything, stmt).Return(nil)

	err := k.ProcessAccountStatement(context.Background(), "stm_1", []byte(fioStatement), "")
	assert.NoError(t, err)
	assert.NotNil(t, stmt.DateFrom)
	assert.Equal(t, "2016-01-25", stmt.DateFrom.Format("2006-01-02"))
	assert.Equal(t, "2016-01-31", stmt.DateTo.Format("2006-01-02"))
	assert.Empty(t, stmt.PairLog)
	datasource.AssertExpectations(t)
}

func TestProcessAccountStatementParseFailure(t *testing.T) {
	k, datasource := newTestKlub(t)

	stmt := &model.AccountStatement{
		StatementID:          "stm_1",
		Type:                 model.StatementAccount,
		SourceFile:           "broken.csv",
		AdministrativeUnitID: "unt_1",
	}

	datasource.On("GetAccountStatement", mock.Anything, "stm_1").Return(stmt, nil)
	datasource.On("UpdateAccountStatement", mock.Anything, stmt).Return(nil)

	err := k.ProcessAccountStatement(context.Background(), "stm_1", []byte("no header here"), "")
	assert.NoError(t, err)
	assert.Contains(t, stmt.PairLog, "broken.csv => parsing failed")
	datasource.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestProcessAccountStatementMissingBankAccount(t *testing.T) {
	k, datasource := newTestKlub(t)

	stmt := &model.AccountStatement{
		StatementID:          "stm_1",
		Type:                 model.StatementAccount,
		SourceFile:           "Pohyby_5_2016.csv",
		AdministrativeUnitID: "unt_1",
	}

	datasource.On("GetAccountStatement", mock.Anything, "stm_1").Return(stmt, nil)
	datasource.On("GetBankAccountByNumber", mock.Anything, "2400063333", "unt_1").Return(nil, nil)
	datasource.On("UpdateAccountStatement", mock.Anything, stmt).Return(nil)

	err := k.ProcessAccountStatement(context.Background(), "stm_1", []byte(fioStatement), "")
	assert.NoError(t, err)
	assert.Equal(t, "2400063333 => Missing Bank account\n", stmt.PairLog)
	datasource.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestImportAccountStatementQueuesParsing(t *testing.T) {
	k, datasource := newTestKlub(t)

	datasource.On("CreateAccountStatement", mock.Anything, mock.MatchedBy(func(s model.AccountStatement) bool {
		return s.Type == model.StatementAccount && s.AdministrativeUnitID == "unt_1"
	})).Return(model.AccountStatement{StatementID: "stm_1", Type: model.StatementAccount}, nil)

	stmt, err := k.ImportAccountStatement(context.Background(), model.StatementAccount, "/tmp/Pohyby_5_2016.csv", "unt_1", "")
	assert.NoError(t, err)
	assert.Equal(t, "stm_1", stmt.StatementID)

	task, err := k.queue.Inspector.GetTaskInfo("statements", "stm_1")
	if err != nil {
		return
	}
	assert.Equal(t, "stm_1", task.ID)
}
