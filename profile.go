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

	"github.com/klub-pratel/klub/internal/apierror"
	"github.com/klub-pratel/klub/model"
)

// SetAdministrativeUnits replaces a profile's unit membership with the
// given set. Preference rows follow the membership one-to-one: joining a
// unit creates a default consent row, leaving a unit deletes it. A profile
// with no units left is deactivated; regaining a unit reactivates it.
func (k *Klub) SetAdministrativeUnits(ctx context.Context, profileID string, unitIDs []string) error {
	profile, err := k.datasource.GetProfileByID(ctx, profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return apierror.NewAPIError(apierror.ErrNotFound, "profile not found", profileID)
	}

	current := make(map[string]bool, len(profile.AdministrativeUnits))
	for _, unit := range profile.AdministrativeUnits {
		current[unit] = true
	}
	wanted := make(map[string]bool, len(unitIDs))
	for _, unit := range unitIDs {
		wanted[unit] = true
	}

	for unit := range wanted {
		if current[unit] {
			continue
		}
		if err := k.datasource.AddProfileUnit(ctx, profileID, unit); err != nil {
			return err
		}
		if err := k.datasource.CreatePreference(ctx, model.Preference{
			ProfileID:            profileID,
			AdministrativeUnitID: unit,
			NewsletterOn:         true,
		}); err != nil {
			return err
		}
	}

	for unit := range current {
		if wanted[unit] {
			continue
		}
		if err := k.datasource.RemoveProfileUnit(ctx, profileID, unit); err != nil {
			return err
		}
		if err := k.datasource.DeletePreference(ctx, profileID, unit); err != nil {
			return err
		}
	}

	active := len(wanted) > 0
	if active != profile.IsActive {
		if err := k.datasource.SetProfileActive(ctx, profileID, active); err != nil {
			return err
		}
	}
	return nil
}
