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
	"time"

	"github.com/klub-pratel/klub/internal/notification"
)

const (
	beatHeartbeatKey = "klub:beat:heartbeat"
	beatStaleAfter   = 10 * time.Minute
)

// CheckCelerybeatLiveness is the worker body of check_celerybeat_liveness.
// Each run stamps a heartbeat; a stale previous stamp means the scheduler
// stopped firing and staff are alerted.
func (k *Klub) CheckCelerybeatLiveness(ctx context.Context) error {
	previous, err := k.redis.Get(ctx, beatHeartbeatKey).Result()
	if err == nil && previous != "" {
		last, parseErr := time.Parse(time.RFC3339, previous)
		if parseErr == nil && time.Since(last) > beatStaleAfter {
			notification.NotifyStaff("Scheduler heartbeat stale",
				"Last periodic task heartbeat was at "+previous+".")
		}
	}
	return k.redis.Set(ctx, beatHeartbeatKey, time.Now().Format(time.RFC3339), 0).Err()
}
