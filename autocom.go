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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/klub-pratel/klub/database"
	"github.com/klub-pratel/klub/internal/apierror"
	"github.com/klub-pratel/klub/internal/condition"
	"github.com/klub-pratel/klub/internal/render"
	"github.com/klub-pratel/klub/model"
)

// Firing points for communication rules.
const (
	ActionNewUser    = "new-user"
	ActionNewPayment = "new-payment"
)

// CreateAutomaticCommunication validates the rule's templates before
// storing it. Malformed gender segments are rejected here, at save time,
// never at dispatch.
func (k *Klub) CreateAutomaticCommunication(ctx context.Context, comm model.AutomaticCommunication) (model.AutomaticCommunication, error) {
	for _, tpl := range []string{comm.Template, comm.TemplateEn} {
		if tpl == "" {
			continue
		}
		if err := render.ValidateTemplate(tpl); err != nil {
			return comm, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid template", err)
		}
	}
	return k.datasource.CreateAutomaticCommunication(ctx, comm)
}

// CheckAutomaticCommunications evaluates every rule against the channels
// matching its condition, optionally restricted to a set of supporter
// profiles. The action label binds the condition's action pseudo-variable;
// the daily check passes an empty label.
func (k *Klub) CheckAutomaticCommunications(ctx context.Context, action string, profileIDs []string) error {
	rules, err := k.datasource.GetAutomaticCommunications(ctx)
	if err != nil {
		return err
	}
	now := time.Now()

	for _, rule := range rules {
		matches, err := k.channelsForRule(ctx, rule, action, now, profileIDs)
		if err != nil {
			return err
		}
		for _, match := range matches {
			if err := k.fireRule(ctx, rule, match, now); err != nil {
				return err
			}
		}
	}
	return nil
}

// channelsForRule compiles the rule's condition and runs it scoped to the
// rule's administrative unit, optional event and the caller's profile set.
func (k *Klub) channelsForRule(ctx context.Context, rule model.AutomaticCommunication, action string, now time.Time, profileIDs []string) ([]database.ChannelMatch, error) {
	named, err := k.datasource.GetNamedCondition(ctx, rule.NamedConditionID)
	if err != nil {
		return nil, err
	}
	compiled, err := condition.Compile(named.Root, action, now, 1)
	if err != nil {
		return nil, err
	}

	where := compiled.Condition
	args := compiled.Args
	argPos := compiled.NextArgPos

	where += fmt.Sprintf(" AND ch.money_account_id IN (SELECT account_id FROM money_accounts WHERE unit_id = $%d)", argPos)
	args = append(args, rule.AdministrativeUnitID)
	argPos++
	if rule.EventID != "" {
		where += fmt.Sprintf(" AND ch.event_id = $%d", argPos)
		args = append(args, rule.EventID)
		argPos++
	}
	if len(profileIDs) > 0 {
		where += fmt.Sprintf(" AND ch.profile_id = ANY($%d)", argPos)
		args = append(args, pq.Array(profileIDs))
	}

	return k.datasource.FilterChannels(ctx, where, args)
}

// fireRule creates the interaction for one matched channel, honoring
// only_once and the supporter's language. The sent set is keyed by
/// supporter: only_once means at most once per supporter, even when several
// of their channels match.
func (k *Klub) fireRule(ctx context.Context, rule model.AutomaticCommunication, match database.ChannelMatch, now time.Time) error {
	if rule.OnlyOnce {
		sent, err := k.datasource.HasSentToProfile(ctx, rule.CommunicationID, match.Profile.ProfileID)
		if err != nil {
			return err
		}
		if sent {
			return nil
		}
	}

	subject, template := rule.SubjectEn, rule.TemplateEn
	if match.Profile.Language == model.LanguageCzech {
		subject, template = rule.Subject, rule.Template
	}
	if template == "" {
		return nil
	}

	renderCtx, err := k.renderContext(ctx, &match.Profile, &match.Channel, template)
	if err != nil {
		return err
	}
	summary, err := render.Render(template, renderCtx)
	if err != nil {
		logrus.WithError(err).Errorf("rule %s: template render failed", rule.CommunicationID)
		return nil
	}

	interaction, err := k.datasource.CreateInteraction(ctx, model.Interaction{
		ProfileID:            match.Profile.ProfileID,
		Type:                 rule.MethodType,
		DateFrom:             now,
		Subject:              subject,
		Summary:              summary,
		Note:                 fmt.Sprintf("Prepared by auto*mated mailer at %v", now),
		EventID:              rule.EventID,
		AdministrativeUnitID: rule.AdministrativeUnitID,
		Dispatched:           rule.DispatchAuto,
		CommunicationType:    model.CommunicationAuto,
	})
	if err != nil {
		return err
	}
	if err := k.datasource.MarkSentToProfile(ctx, rule.CommunicationID, match.Profile.ProfileID); err != nil {
		return err
	}

	if rule.DispatchAuto && rule.MethodType == model.MethodEmail {
		if err := k.queue.queueCommunicationDispatch(interaction.InteractionID, nil); err != nil {
			logrus.WithError(err).Errorf("rule %s: enqueue dispatch for %s failed", rule.CommunicationID, interaction.InteractionID)
		}
	}
	return nil
}

// renderContext assembles the template context: primary telephone and,
// when the template links back to the supporter, a fresh confirmation
// token.
func (k *Klub) renderContext(ctx context.Context, profile *model.Profile, channel *model.PaymentChannel, template string) (render.Context, error) {
	renderCtx := render.Context{Profile: profile, Channel: channel}

	telephones, err := k.datasource.GetTelephones(ctx, profile.ProfileID)
	if err != nil {
		return renderCtx, err
	}
	for _, tel := range telephones {
		if renderCtx.Telephone == "" || tel.IsPrimary {
			renderCtx.Telephone = tel.Number
		}
	}

	if strings.Contains(template, "$auth_token") {
		token, err := k.issueConfirmationToken(ctx, profile.ProfileID)
		if err != nil {
			return renderCtx, err
		}
		renderCtx.AuthToken = token
	}
	return renderCtx, nil
}

const confirmationTokenTTL = 30 * 24 * time.Hour

// issueConfirmationToken mints a fresh link token for one supporter.
func (k *Klub) issueConfirmationToken(ctx context.Context, profileID string) (string, error) {
	token, err := k.datasource.CreateConfirmationToken(ctx, model.ConfirmationToken{
		Token:     uuid.New().String(),
		ProfileID: profileID,
		ExpiresAt: time.Now().Add(confirmationTokenTTL),
	})
	if err != nil {
		return "", err
	}
	return token.Token, nil
}
