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

	"github.com/sirupsen/logrus"
)

// SyncWithDaktela is the worker body of sync_with_daktela. Per-contact
// HTTP failures are logged and the sync moves on; local state is never
// touched.
func (k *Klub) SyncWithDaktela(ctx context.Context, profileIDs []string) error {
	if k.crm == nil {
		return fmt.Errorf("no CRM client configured")
	}
	for _, profileID := range profileIDs {
		if err := k.syncContact(ctx, profileID); err != nil {
			logrus.WithError(err).Errorf("daktela sync: profile %s failed", profileID)
		}
	}
	return nil
}

func (k *Klub) syncContact(ctx context.Context, profileID string) error {
	profile, err := k.datasource.GetProfileByID(ctx, profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("profile %s not found", profileID)
	}
	telephones, err := k.datasource.GetTelephones(ctx, profileID)
	if err != nil {
		return err
	}
	return k.crm.UpsertContact(ctx, *profile, telephones)
}

// DeleteContactsFromDaktela is the worker body of
// delete_contacts_from_daktela.
func (k *Klub) DeleteContactsFromDaktela(ctx context.Context, profileIDs []string) error {
	if k.crm == nil {
		return fmt.Errorf("no CRM client configured")
	}
	for _, profileID := range profileIDs {
		if err := k.crm.DeleteContact(ctx, profileID); err != nil {
			logrus.WithError(err).Errorf("daktela delete: profile %s failed", profileID)
		}
	}
	return nil
}
