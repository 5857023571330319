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
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"

	"github.com/klub-pratel/klub/config"
	redis_db "github.com/klub-pratel/klub/internal/redis-db"
)

// Task type names. Schedulers and workers agree on these.
const (
	TaskParseAccountStatement     = "parse_account_statement"
	TaskCheckDarujme              = "check_darujme"
	TaskCheckAutocomDaily         = "check_autocom_daily"
	TaskPostOfficeSendMail        = "post_office_send_mail"
	TaskGenerateTaxConfirmations  = "generate_tax_confirmations"
	TaskSendCommunication         = "send_communication_task"
	TaskCreateMassCommunications  = "create_mass_communication_tasks"
	TaskSyncWithDaktela           = "sync_with_daktela"
	TaskDeleteContactsFromDaktela = "delete_contacts_from_daktela"
	TaskClearExpiredTokens        = "clear_expired_tokens"
	TaskCheckCelerybeatLiveness   = "check_celerybeat_liveness"
)

// Queue represents a queue for handling various tasks.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// StatementPayload carries a statement import task. The operator account
// backs formats whose files carry no header block.
type StatementPayload struct {
	StatementID       string `json:"statement_id"`
	FilePath          string `json:"file_path"`
	OperatorAccountID string `json:"operator_account_id,omitempty"`
}

// CommunicationPayload carries one rendered interaction dispatch.
type CommunicationPayload struct {
	InteractionID string   `json:"interaction_id"`
	Attachments   []string `json:"attachments,omitempty"`
}

// MassCommunicationPayload carries a fan-out request.
type MassCommunicationPayload struct {
	CommunicationID string `json:"communication_id"`
}

// TaxConfirmationPayload carries a batch generation request.
type TaxConfirmationPayload struct {
	Year       int      `json:"year"`
	ProfileIDs []string `json:"profile_ids"`
	PdfTypeID  string   `json:"pdf_type_id"`
}

// ProfileIDsPayload carries profile sets for the CRM sync tasks.
type ProfileIDsPayload struct {
	ProfileIDs []string `json:"profile_ids"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL("redis://" + conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

func (q *Queue) enqueue(taskType, queueName string, payload interface{}, opts ...asynq.Option) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	opts = append(opts, asynq.Queue(queueName), asynq.MaxRetry(cfg.Queue.MaxRetryAttempts))
	info, err := q.Client.Enqueue(asynq.NewTask(taskType, body), opts...)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued %s: %+v", taskType, payload)
	return nil
}

// queueStatementParse enqueues parsing of one persisted statement. The task
// ID ties to the statement so a re-upload of the same row is deduplicated.
func (q *Queue) queueStatementParse(statementID, filePath, operatorAccountID string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}
	return q.enqueue(TaskParseAccountStatement, cfg.Queue.StatementQueue,
		StatementPayload{StatementID: statementID, FilePath: filePath, OperatorAccountID: operatorAccountID},
		asynq.TaskID(statementID))
}

// queueCommunicationDispatch enqueues sending of one interaction.
func (q *Queue) queueCommunicationDispatch(interactionID string, attachments []string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}
	return q.enqueue(TaskSendCommunication, cfg.Queue.CommunicationQueue,
		CommunicationPayload{InteractionID: interactionID, Attachments: attachments})
}

// queueMassCommunication enqueues the per-profile fan-out of a mass send.
func (q *Queue) queueMassCommunication(communicationID string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}
	return q.enqueue(TaskCreateMassCommunications, cfg.Queue.CommunicationQueue,
		MassCommunicationPayload{CommunicationID: communicationID})
}

// queueTaxConfirmations enqueues a yearly confirmation batch.
func (q *Queue) queueTaxConfirmations(year int, profileIDs []string, pdfTypeID string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}
	return q.enqueue(TaskGenerateTaxConfirmations, cfg.Queue.MaintenanceQueue,
		TaxConfirmationPayload{Year: year, ProfileIDs: profileIDs, PdfTypeID: pdfTypeID})
}
