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

	"github.com/klub-pratel/klub/model"
)

// Pairing log reasons. These strings end up in the statement pair_log the
// operators read, so they stay stable.
const (
	reasonMultipleByAccount = "multiple dpch with user_bank_account"
	reasonVSNotFound        = "dpch with VS doesnt_exist"
	reasonMultipleByVS      = "multiple dpch with VS"
	reasonVSNotSet          = "VS not set"
)

// PairPayment resolves which payment channel a candidate payment belongs
// to. Matching runs in two tiers, sender account first, then variable
// symbol, and never crosses the administrative unit of the importing
// statement. On success the payment's channel reference is set; on failure
// every reason is appended to the statement's pair log.
func (k *Klub) PairPayment(ctx context.Context, payment *model.Payment, statement *model.AccountStatement) (bool, error) {
	unitID := statement.AdministrativeUnitID

	if counter := payment.CounterAccount(); counter != "" {
		channels, err := k.datasource.GetChannelsByUserBankAccount(ctx, counter, unitID)
		if err != nil {
			return false, err
		}
		switch len(channels) {
		case 0:
			// fall through to the VS tier
		case 1:
			payment.PaymentChannelID = channels[0].ChannelID
			return true, nil
		default:
			statement.AppendPairLog(payment.AccountName, reasonMultipleByAccount)
		}
	}

	if payment.VS == "" {
		statement.AppendPairLog(payment.AccountName, reasonVSNotSet)
		return false, nil
	}

	channels, err := k.datasource.GetChannelsByVS(ctx, payment.VS, unitID)
	if err != nil {
		return false, err
	}
	switch len(channels) {
	case 0:
		statement.AppendPairLog(payment.AccountName, reasonVSNotFound)
		return false, nil
	case 1:
		payment.PaymentChannelID = channels[0].ChannelID
		return true, nil
	default:
		statement.AppendPairLog(payment.AccountName, reasonMultipleByVS)
		return false, nil
	}
}
