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

	"github.com/klub-pratel/klub/internal/notification"
	"github.com/klub-pratel/klub/model"
)

// QueueTaxConfirmations enqueues the yearly confirmation batch. An empty
// profile set means every supporter with payments that year.
func (k *Klub) QueueTaxConfirmations(year int, profileIDs []string, pdfTypeID string) error {
	return k.queue.queueTaxConfirmations(year, profileIDs, pdfTypeID)
}

// GenerateTaxConfirmations is the worker body of generate_tax_confirmations.
// For every (profile, unit) pair with confirmed payments in the year it
// upserts the yearly total and renders the PDF. Rendering failures are
// logged per profile and the batch continues. Staff get a summary note
// when the batch completes.
func (k *Klub) GenerateTaxConfirmations(ctx context.Context, year int, profileIDs []string, pdfTypeID string) error {
	started := time.Now()

	units, err := k.datasource.GetAllAdministrativeUnits(ctx)
	if err != nil {
		return err
	}

	generated := 0
	for _, unit := range units {
		subjects := profileIDs
		if len(subjects) == 0 {
			subjects, err = k.datasource.GetProfilesWithPayments(ctx, unit.UnitID, year)
			if err != nil {
				return err
			}
		}
		for _, profileID := range subjects {
			ok, err := k.generateConfirmation(ctx, profileID, unit.UnitID, year, pdfTypeID)
			if err != nil {
				return err
			}
			if ok {
				generated++
			}
		}
	}

	notification.NotifyStaff("Tax confirmations generated",
		fmt.Sprintf("Batch started at %s produced %d confirmations for %d.",
			started.Format(time.RFC3339), generated, year))
	return nil
}

// generateConfirmation upserts one supporter's yearly total for one unit.
// Zero totals produce nothing.
func (k *Klub) generateConfirmation(ctx context.Context, profileID, unitID string, year int, pdfTypeID string) (bool, error) {
	total, err := k.datasource.SumConfirmedPayments(ctx, profileID, unitID, year)
	if err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}

	confirmation, err := k.datasource.UpsertTaxConfirmation(ctx, model.TaxConfirmation{
		ProfileID:            profileID,
		Year:                 year,
		AdministrativeUnitID: unitID,
		PdfTypeID:            pdfTypeID,
		Amount:               total,
	})
	if err != nil {
		return false, err
	}

	if k.pdf != nil {
		profile, err := k.datasource.GetProfileByID(ctx, profileID)
		if err != nil {
			return false, err
		}
		path, err := k.pdf.Render(ctx, confirmation, *profile)
		if err != nil {
			logrus.WithError(err).Errorf("tax confirmation %s: pdf render failed", confirmation.ConfirmationID)
			return true, nil
		}
		confirmation.PdfPath = path
		if _, err := k.datasource.UpsertTaxConfirmation(ctx, confirmation); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ClearExpiredTokens is the worker body of clear_expired_tokens.
func (k *Klub) ClearExpiredTokens(ctx context.Context) error {
	removed, err := k.datasource.DeleteExpiredTokens(ctx, time.Now())
	if err != nil {
		return err
	}
	if removed > 0 {
		logrus.Infof("cleared %d expired confirmation tokens", removed)
	}
	return nil
}
