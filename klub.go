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

	"github.com/redis/go-redis/v9"

	"github.com/klub-pratel/klub/config"
	"github.com/klub-pratel/klub/database"
	redis_db "github.com/klub-pratel/klub/internal/redis-db"
	"github.com/klub-pratel/klub/model"
)

// Mailer sends rendered communications. The SMTP implementation lives in
// internal/mailer; tests substitute their own.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string, attachments []string) error
}

// PDFRenderer renders tax confirmation documents. The concrete renderer is
// an external collaborator.
type PDFRenderer interface {
	Render(ctx context.Context, confirmation model.TaxConfirmation, profile model.Profile) (string, error)
}

// CRMClient mirrors supporter contacts into the help desk CRM.
type CRMClient interface {
	UpsertContact(ctx context.Context, profile model.Profile, telephones []model.Telephone) error
	DeleteContact(ctx context.Context, profileID string) error
}

// Klub represents the main struct for the Klub application.
type Klub struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	mailer     Mailer
	pdf        PDFRenderer
	crm        CRMClient
}

// NewKlub initializes a new instance of Klub with the provided database
// datasource. It fetches the configuration and initializes the Redis client
// and the task queue.
func NewKlub(db database.IDataSource) (*Klub, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)

	newKlub := &Klub{datasource: db, queue: newQueue, redis: redisClient.Client()}
	return newKlub, nil
}

// SetMailer installs the outbound mail implementation.
func (k *Klub) SetMailer(m Mailer) { k.mailer = m }

// SetPDFRenderer installs the tax confirmation renderer.
func (k *Klub) SetPDFRenderer(r PDFRenderer) { k.pdf = r }

// SetCRMClient installs the help desk CRM client.
func (k *Klub) SetCRMClient(c CRMClient) { k.crm = c }
