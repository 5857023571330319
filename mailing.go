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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/klub-pratel/klub/internal/apierror"
	"github.com/klub-pratel/klub/internal/render"
	"github.com/klub-pratel/klub/model"
)

const postOfficeBatchSize = 100

// CreateMassCommunication validates the templates, stores the send and
// enqueues the fan-out.
func (k *Klub) CreateMassCommunication(ctx context.Context, comm model.MassCommunication) (model.MassCommunication, error) {
	for _, tpl := range []string{comm.Template, comm.TemplateEn} {
		if tpl == "" {
			continue
		}
		if err := render.ValidateTemplate(tpl); err != nil {
			return comm, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid template", err)
		}
	}
	created, err := k.datasource.CreateMassCommunication(ctx, comm)
	if err != nil {
		return created, err
	}
	if err := k.queue.queueMassCommunication(created.CommunicationID); err != nil {
		return created, err
	}
	return created, nil
}

// ProcessMassCommunication is the worker body of
// create_mass_communication_tasks: it renders one interaction per listed
// profile and enqueues the individual sends. Retries are safe because a
// profile that already has an interaction for this send is skipped.
func (k *Klub) ProcessMassCommunication(ctx context.Context, communicationID string) error {
	comm, err := k.datasource.GetMassCommunication(ctx, communicationID)
	if err != nil {
		return err
	}
	if comm == nil {
		return apierror.NewAPIError(apierror.ErrNotFound, "mass communication not found", communicationID)
	}

	for _, profileID := range comm.ProfileIDs {
		if err := k.fanOutMassCommunication(ctx, comm, profileID); err != nil {
			logrus.WithError(err).Errorf("mass send %s: profile %s failed", communicationID, profileID)
		}
	}
	return nil
}

func (k *Klub) fanOutMassCommunication(ctx context.Context, comm *model.MassCommunication, profileID string) error {
	profile, err := k.datasource.GetProfileByID(ctx, profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return apierror.NewAPIError(apierror.ErrNotFound, "profile not found", profileID)
	}
	if already, err := k.alreadyContacted(ctx, profile.ProfileID, comm); err != nil {
		return err
	} else if already {
		return nil
	}

	subject, template := comm.SubjectEn, comm.TemplateEn
	if profile.Language == model.LanguageCzech {
		subject, template = comm.Subject, comm.Template
	}
	if template == "" {
		return nil
	}

	renderCtx, err := k.renderContext(ctx, profile, nil, template)
	if err != nil {
		return err
	}
	body, err := render.Render(template, renderCtx)
	if err != nil {
		return err
	}

	var attachments []string
	if comm.AttachTaxConfirmation {
		confirmation, err := k.datasource.GetTaxConfirmation(ctx, profile.ProfileID, comm.TaxConfirmationYear, comm.PdfTypeID)
		if err != nil {
			return err
		}
		if confirmation == nil || confirmation.PdfPath == "" {
			return fmt.Errorf("no tax confirmation for %s year %d", profile.ProfileID, comm.TaxConfirmationYear)
		}
		attachments = append(attachments, confirmation.PdfPath)
	}

	interaction, err := k.datasource.CreateInteraction(ctx, model.Interaction{
		ProfileID:            profile.ProfileID,
		Type:                 comm.MethodType,
		DateFrom:             time.Now(),
		Subject:              subject,
		Summary:              body,
		Note:                 fmt.Sprintf("Mass communication %s", comm.CommunicationID),
		AdministrativeUnitID: comm.AdministrativeUnitID,
		CommunicationType:    model.CommunicationMass,
	})
	if err != nil {
		return err
	}
	if comm.MethodType == model.MethodEmail {
		return k.queue.queueCommunicationDispatch(interaction.InteractionID, attachments)
	}
	return nil
}

// alreadyContacted reports whether this mass send already produced an
// interaction for the profile, which happens when the fan-out is retried.
func (k *Klub) alreadyContacted(ctx context.Context, profileID string, comm *model.MassCommunication) (bool, error) {
	history, err := k.datasource.GetInteractionsByProfile(ctx, profileID)
	if err != nil {
		return false, err
	}
	marker := fmt.Sprintf("Mass communication %s", comm.CommunicationID)
	for _, inter := range history {
		if inter.CommunicationType == model.CommunicationMass && inter.Note == marker {
			return true, nil
		}
	}
	return false, nil
}

// DispatchCommunication is the worker body of send_communication_task. It
// mails one interaction and marks it dispatched.
func (k *Klub) DispatchCommunication(ctx context.Context, interactionID string, attachments []string) error {
	interaction, err := k.datasource.GetInteraction(ctx, interactionID)
	if err != nil {
		return err
	}
	if interaction == nil {
		return apierror.NewAPIError(apierror.ErrNotFound, "interaction not found", interactionID)
	}
	return k.sendInteraction(ctx, interaction, attachments)
}

// PostOfficeSendMail is the worker body of post_office_send_mail: it
// drains queued email interactions oldest first. Individual send failures
// are logged and the drain continues.
func (k *Klub) PostOfficeSendMail(ctx context.Context) error {
	for {
		pending, err := k.datasource.GetUndispatchedInteractions(ctx, model.MethodEmail, postOfficeBatchSize)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		failures := 0
		for i := range pending {
			if err := k.sendInteraction(ctx, &pending[i], nil); err != nil {
				logrus.WithError(err).Errorf("post office: interaction %s not sent", pending[i].InteractionID)
				failures++
			}
		}
		if failures == len(pending) {
			return nil
		}
	}
}

// sendInteraction mails one interaction using the owning unit's from
// identity.
func (k *Klub) sendInteraction(ctx context.Context, interaction *model.Interaction, attachments []string) error {
	if k.mailer == nil {
		return fmt.Errorf("no mailer configured")
	}
	if interaction.Type != model.MethodEmail {
		return fmt.Errorf("interaction %s is not an email", interaction.InteractionID)
	}

	profile, err := k.datasource.GetProfileByID(ctx, interaction.ProfileID)
	if err != nil {
		return err
	}
	if profile == nil || profile.Email == "" {
		return fmt.Errorf("interaction %s: supporter has no email", interaction.InteractionID)
	}
	unit, err := k.datasource.GetAdministrativeUnit(ctx, interaction.AdministrativeUnitID)
	if err != nil {
		return err
	}
	if unit == nil {
		return fmt.Errorf("interaction %s: unknown administrative unit", interaction.InteractionID)
	}

	if err := k.mailer.Send(ctx, unit.FromEmail, profile.Email, interaction.Subject, interaction.Summary, attachments); err != nil {
		return err
	}
	return k.datasource.MarkInteractionDispatched(ctx, interaction.InteractionID)
}
