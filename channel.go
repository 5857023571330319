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
	"fmt"
	"strconv"
	"time"

	"github.com/klub-pratel/klub/database"
	"github.com/klub-pratel/klub/internal/apierror"
	redlock "github.com/klub-pratel/klub/internal/lock"
	"github.com/klub-pratel/klub/model"
)

const (
	// search spaces of the allocator. Plain symbols live under the "0"
	// prefix so they never collide with an event's prefix space.
	plainVSPrefix  = "0"
	maxPlainVS     = int64(999999999)
	maxPrefixedSub = int64(99999)

	vsAllocAttempts = 5
	vsLockTimeout   = 30 * time.Second
	vsLockWait      = 2 * time.Minute
)

// CreatePaymentChannel persists a new channel. A missing variable symbol is
// allocated from the owning unit's space; allocation for one unit is
// serialized with a redis lock and retried on the (VS, money_account)
// uniqueness constraint, so parallel imports cannot hand out the same
// symbol twice.
func (k *Klub) CreatePaymentChannel(ctx context.Context, channel model.PaymentChannel) (model.PaymentChannel, error) {
	if err := channel.Validate(); err != nil {
		return channel, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid payment channel", err)
	}
	account, err := k.datasource.GetMoneyAccount(ctx, channel.MoneyAccountID)
	if err != nil {
		return channel, err
	}

	channel.ChannelID = database.GenerateUUIDWithSuffix("dpch")
	if channel.VS != "" {
		created, err := k.datasource.CreatePaymentChannel(ctx, channel)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return channel, apierror.NewAPIError(apierror.ErrInvalidInput, "variable symbol already taken on this account", err)
			}
			return channel, err
		}
		return k.channelCreated(ctx, created)
	}

	event, err := k.datasource.GetEvent(ctx, channel.EventID)
	if err != nil {
		return channel, err
	}

	locker := redlock.ForAdministrativeUnit(k.redis, account.AdministrativeUnitID, channel.ChannelID)
	if err := locker.WaitLock(ctx, vsLockTimeout, vsLockWait); err != nil {
		return channel, err
	}
	defer func() {
		_ = locker.Unlock(context.Background())
	}()

	for attempt := 0; attempt < vsAllocAttempts; attempt++ {
		vs, err := k.allocateVariableSymbol(ctx, account.AdministrativeUnitID, event)
		if err != nil {
			return channel, err
		}
		channel.VS = vs
		created, err := k.datasource.CreatePaymentChannel(ctx, channel)
		if err == nil {
			return k.channelCreated(ctx, created)
		}
		if !database.IsUniqueViolation(err) {
			return channel, err
		}
	}
	return channel, apierror.NewAPIError(apierror.ErrInvalidInput, "OUT OF VS", channel.MoneyAccountID)
}

// channelCreated fires the new-user communication rules for the fresh
// channel's supporter.
func (k *Klub) channelCreated(ctx context.Context, channel model.PaymentChannel) (model.PaymentChannel, error) {
	if err := k.CheckAutomaticCommunications(ctx, ActionNewUser, []string{channel.ProfileID}); err != nil {
		return channel, err
	}
	return channel, nil
}

// allocateVariableSymbol picks the next free symbol in the unit's space.
// With an event prefix the symbol is the five digit prefix plus a five
// digit counter; without one it is a ten digit counter starting at 1.
func (k *Klub) allocateVariableSymbol(ctx context.Context, unitID string, event *model.Event) (string, error) {
	if event != nil && event.VariableSymbolPrefix != 0 {
		prefix := strconv.Itoa(event.VariableSymbolPrefix)
		highest, err := k.datasource.HighestVS(ctx, unitID, prefix)
		if err != nil {
			return "", err
		}
		if highest == "" {
			return prefix + "00001", nil
		}
		n, err := strconv.ParseInt(highest, 10, 64)
		if err != nil {
			return "", fmt.Errorf("malformed variable symbol %q: %w", highest, err)
		}
		next := n + 1
		if next > int64(event.VariableSymbolPrefix)*100000+maxPrefixedSub {
			return "", apierror.NewAPIError(apierror.ErrInvalidInput, "OUT OF VS", prefix)
		}
		return strconv.FormatInt(next, 10), nil
	}

	highest, err := k.datasource.HighestVS(ctx, unitID, plainVSPrefix)
	if err != nil {
		return "", err
	}
	if highest == "" {
		return "0000000001", nil
	}
	n, err := strconv.ParseInt(highest, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed variable symbol %q: %w", highest, err)
	}
	if n >= maxPlainVS {
		return "", apierror.NewAPIError(apierror.ErrInvalidInput, "OUT OF VS", unitID)
	}
	return fmt.Sprintf("%010d", n+1), nil
}

// SavePayment persists a payment and, when it is paired, refreshes the
// channel's derived fields in the same transaction and fires the
// new-payment communication rules.
func (k *Klub) SavePayment(ctx context.Context, payment model.Payment) (model.Payment, error) {
	if payment.PaymentChannelID == "" {
		return k.datasource.CreatePayment(ctx, payment)
	}
	created, channel, err := k.datasource.CreatePairedPayment(ctx, payment, time.Now())
	if err != nil {
		return created, err
	}
	if err := k.CheckAutomaticCommunications(ctx, ActionNewPayment, []string{channel.ProfileID}); err != nil {
		return created, err
	}
	return created, nil
}

// refreshChannelDerived recomputes and persists the materialized fields
// from the channel's current payment set.
func (k *Klub) refreshChannelDerived(ctx context.Context, channelID string) (*model.PaymentChannel, error) {
	channel, err := k.datasource.GetPaymentChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	payments, err := k.datasource.GetPaymentsByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	channel.RecomputeDerived(payments, time.Now())
	if err := k.datasource.UpdatePaymentChannel(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}
