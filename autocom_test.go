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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/klub-pratel/klub/database"
	"github.com/klub-pratel/klub/internal/condition"
	"github.com/klub-pratel/klub/model"
)

func regularSupporterRule(onlyOnce bool) (model.AutomaticCommunication, *model.NamedCondition) {
	rule := model.AutomaticCommunication{
		CommunicationID:      "aut_1",
		Name:                 "welcome regulars",
		AdministrativeUnitID: "unt_1",
		NamedConditionID:     "cnd_1",
		MethodType:           model.MethodEmail,
		Subject:              "Vítejte",
		Template:             "Děkujeme za podporu, $name.",
		SubjectEn:            "Welcome",
		TemplateEn:           "Thank you for your support, $name.",
		OnlyOnce:             onlyOnce,
	}
	named := &model.NamedCondition{
		ConditionID: "cnd_1",
		Root: &condition.Group{
			Operation: condition.OpAnd,
			Children: []condition.Node{
				&condition.Terminal{Variable: condition.ActionVariable, Operation: condition.CmpEqual, Value: "new-payment"},
				&condition.Terminal{Variable: "PaymentChannel.regular_payments", Operation: condition.CmpEqual, Value: "regular"},
			},
		},
	}
	return rule, named
}

func TestCheckAutomaticCommunicationsOnlyOnce(t *testing.T) {
	k, datasource := newTestKlub(t)
	rule, named := regularSupporterRule(true)

	match := database.ChannelMatch{
		Channel: model.PaymentChannel{ChannelID: "dpch_1", ProfileID: "prf_1", RegularPayments: model.RegularPaymentsRegular},
		Profile: model.Profile{ProfileID: "prf_1", Kind: model.KindUserProfile, FirstName: "Jan", Language: model.LanguageCzech},
	}

	datasource.On("GetAutomaticCommunications", mock.Anything).Return([]model.AutomaticCommunication{rule}, nil)
	datasource.On("GetNamedCondition", mock.Anything, "cnd_1").Return(named, nil)
	datasource.On("FilterChannels", mock.Anything, mock.Anything, mock.Anything).
		Return([]database.ChannelMatch{match}, nil)

	datasource.On("HasSentToProfile", mock.Anything, "aut_1", "prf_1").Return(false, nil).Once()
	datasource.On("HasSentToProfile", mock.Anything, "aut_1", "prf_1").Return(true, nil)

	datasource.On("GetTelephones", mock.Anything, "prf_1").Return([]model.Telephone{}, nil)
	datasource.On("CreateInteraction", mock.Anything, mock.MatchedBy(func(inter model.Interaction) bool {
		return inter.ProfileID == "prf_1" &&
			inter.CommunicationType == model.CommunicationAuto &&
			inter.Subject == "Vítejte" &&
			strings.HasPrefix(inter.Note, "Prepared by auto*mated mailer at ")
	})).Return(model.Interaction{InteractionID: "int_1"}, nil).Once()
	datasource.On("MarkSentToProfile", mock.Anything, "aut_1", "prf_1").Return(nil).Once()

	for i := 0; i < 3; i++ {
		err := k.CheckAutomaticCommunications(context.Background(), ActionNewPayment, []string{"prf_1"})
		assert.NoError(t, err)
	}

	datasource.AssertNumberOfCalls(t, "CreateInteraction", 1)
	datasource.AssertExpectations(t)
}

func TestCheckAutomaticCommunicationsOnlyOncePerSupporter(t *testing.T) {
	k, datasource := newTestKlub(t)
	rule, named := regularSupporterRule(true)

	profile := model.Profile{ProfileID: "prf_1", Kind: model.KindUserProfile, FirstName: "Jan", Language: model.LanguageCzech}
	matches := []database.ChannelMatch{
		{Channel: model.PaymentChannel{ChannelID: "dpch_1", ProfileID: "prf_1", RegularPayments: model.RegularPaymentsRegular}, Profile: profile},
		{Channel: model.PaymentChannel{ChannelID: "dpch_2", ProfileID: "prf_1", RegularPayments: model.RegularPaymentsRegular}, Profile: profile},
	}

	datasource.On("GetAutomaticCommunications", mock.Anything).Return([]model.AutomaticCommunication{rule}, nil)
	datasource.On("GetNamedCondition", mock.Anything, "cnd_1").Return(named, nil)
	datasource.On("FilterChannels", mock.Anything, mock.Anything, mock.Anything).Return(matches, nil)

	datasource.On("HasSentToProfile", mock.Anything, "aut_1", "prf_1").Return(false, nil).Once()
	datasource.On("HasSentToProfile", mock.Anything, "aut_1", "prf_1").Return(true, nil)

	datasource.On("GetTelephones", mock.Anything, "prf_1").Return([]model.Telephone{}, nil)
	datasource.On("CreateInteraction", mock.Anything, mock.Anything).
		Return(model.Interaction{InteractionID: "int_1"}, nil).Once()
	datasource.On("MarkSentToProfile", mock.Anything, "aut_1", "prf_1").Return(nil).Once()

	err := k.CheckAutomaticCommunications(context.Background(), ActionNewPayment, []string{"prf_1"})
	assert.NoError(t, err)

	// a second matching channel of the same supporter must not fire again
	datasource.AssertNumberOfCalls(t, "CreateInteraction", 1)
	datasource.AssertExpectations(t)
}

func TestCheckAutomaticCommunicationsLanguageFallback(t *testing.T) {
	k, datasource := newTestKlub(t)
	rule, named := regularSupporterRule(false)

	match := database.ChannelMatch{
		Channel: model.PaymentChannel{ChannelID: "dpch_2", ProfileID: "prf_2", RegularPayments: model.RegularPaymentsRegular},
		Profile: model.Profile{ProfileID: "prf_2", Kind: model.KindUserProfile, FirstName: "Anna", Language: model.LanguageEnglish},
	}

	datasource.On("GetAutomaticCommunications", mock.Anything).Return([]model.AutomaticCommunication{rule}, nil)
	datasource.On("GetNamedCondition", mock.Anything, "cnd_1").Return(named, nil)
	datasource.On("FilterChannels", mock.Anything, mock.Anything, mock.Anything).
		Return([]database.ChannelMatch{match}, nil)
	datasource.On("GetTelephones", mock.Anything, "prf_2").Return([]model.Telephone{}, nil)
	datasource.On("CreateInteraction", mock.Anything, mock.MatchedBy(func(inter model.Interaction) bool {
		return inter.Subject == "Welcome" && strings.Contains(inter.Summary, "Anna")
	})).Return(model.Interaction{InteractionID: "int_2"}, nil)
	datasource.On("MarkSentToProfile", mock.Anything, "aut_1", "prf_2").Return(nil)

	err := k.CheckAutomaticCommunications(context.Background(), ActionNewPayment, []string{"prf_2"})
	assert.NoError(t, err)
	datasource.AssertExpectations(t)
}

func TestCheckAutomaticCommunicationsScopesTenancy(t *testing.T) {
	k, datasource := newTestKlub(t)
	rule, named := regularSupporterRule(false)

	datasource.On("GetAutomaticCommunications", mock.Anything).Return([]model.AutomaticCommunication{rule}, nil)
	datasource.On("GetNamedCondition", mock.Anything, "cnd_1").Return(named, nil)

	var capturedWhere string
	datasource.On("FilterChannels", mock.Anything, mock.MatchedBy(func(where string) bool {
		capturedWhere = where
		return true
	}), mock.Anything).Return([]database.ChannelMatch{}, nil)

	err := k.CheckAutomaticCommunications(context.Background(), ActionNewPayment, []string{"prf_1"})
	assert.NoError(t, err)
	assert.Contains(t, capturedWhere, "money_accounts WHERE unit_id")
	assert.Contains(t, capturedWhere, "ch.profile_id = ANY")
	assert.Contains(t, capturedWhere, "TRUE")
	assert.Contains(t, capturedWhere, "ch.regular_payments")
}

func TestCreateAutomaticCommunicationRejectsBadTemplate(t *testing.T) {
	k, _ := newTestKlub(t)

	_, err := k.CreateAutomaticCommunication(context.Background(), model.AutomaticCommunication{
		Name:                 "broken",
		AdministrativeUnitID: "unt_1",
		NamedConditionID:     "cnd_1",
		MethodType:           model.MethodEmail,
		Template:             "Vazen{y.a}",
	})
	assert.ErrorContains(t, err, "invalid template")
}
