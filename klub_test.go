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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/klub-pratel/klub/config"
	"github.com/klub-pratel/klub/database/mocks"
	redis_db "github.com/klub-pratel/klub/internal/redis-db"
)

// newTestKlub builds a service instance over a mocked datasource and an
// in-process redis.
func newTestKlub(t *testing.T) (*Klub, *mocks.MockDataSource) {
	t.Helper()

	mr := miniredis.RunT(t)
	conf := &config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
		Queue: config.QueueConfig{
			StatementQueue:     "statements",
			CommunicationQueue: "communications",
			MaintenanceQueue:   "maintenance",
			MaxRetryAttempts:   3,
		},
	}
	config.MockConfig(conf)

	redisClient, err := redis_db.NewRedisClient([]string{"redis://" + mr.Addr()})
	require.NoError(t, err)

	datasource := &mocks.MockDataSource{}
	k := &Klub{
		datasource: datasource,
		redis:      redisClient.Client(),
		queue:      NewQueue(conf),
	}
	return k, datasource
}
