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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/klub-pratel/klub"
	"github.com/klub-pratel/klub/config"
	redis_db "github.com/klub-pratel/klub/internal/redis-db"
)

// processStatement is the worker for parse_account_statement. It reads the
// uploaded file from disk; a vanished file is a permanent failure.
func (k *klubInstance) processStatement(ctx context.Context, t *asynq.Task) error {
	var payload klub.StatementPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	data, err := os.ReadFile(payload.FilePath)
	if err != nil {
		logrus.Errorf("statement %s: %v", payload.StatementID, err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := k.klub.ProcessAccountStatement(ctx, payload.StatementID, data, payload.OperatorAccountID); err != nil {
		return err
	}
	log.Println(" [*] Statement Processed", payload.StatementID)
	return nil
}

// sendCommunication is the worker for send_communication_task.
func (k *klubInstance) sendCommunication(ctx context.Context, t *asynq.Task) error {
	var payload klub.CommunicationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}
	if err := k.klub.DispatchCommunication(ctx, payload.InteractionID, payload.Attachments); err != nil {
		return err
	}
	log.Println(" [*] Communication Sent", payload.InteractionID)
	return nil
}

// createMassCommunicationTasks is the worker for
// create_mass_communication_tasks.
func (k *klubInstance) createMassCommunicationTasks(ctx context.Context, t *asynq.Task) error {
	var payload klub.MassCommunicationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}
	return k.klub.ProcessMassCommunication(ctx, payload.CommunicationID)
}

// generateTaxConfirmations is the worker for generate_tax_confirmations.
func (k *klubInstance) generateTaxConfirmations(ctx context.Context, t *asynq.Task) error {
	var payload klub.TaxConfirmationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}
	return k.klub.GenerateTaxConfirmations(ctx, payload.Year, payload.ProfileIDs, payload.PdfTypeID)
}

// syncWithDaktela is the worker for sync_with_daktela.
func (k *klubInstance) syncWithDaktela(ctx context.Context, t *asynq.Task) error {
	var payload klub.ProfileIDsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}
	return k.klub.SyncWithDaktela(ctx, payload.ProfileIDs)
}

// deleteContactsFromDaktela is the worker for delete_contacts_from_daktela.
func (k *klubInstance) deleteContactsFromDaktela(ctx context.Context, t *asynq.Task) error {
	var payload klub.ProfileIDsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}
	return k.klub.DeleteContactsFromDaktela(ctx, payload.ProfileIDs)
}

// checkAutocomDaily is the worker for check_autocom_daily: it evaluates
// every rule without an action label against all channels.
func (k *klubInstance) checkAutocomDaily(ctx context.Context, _ *asynq.Task) error {
	return k.klub.CheckAutomaticCommunications(ctx, "", nil)
}

func (k *klubInstance) checkDarujme(ctx context.Context, _ *asynq.Task) error {
	return k.klub.CheckDarujme(ctx)
}

func (k *klubInstance) postOfficeSendMail(ctx context.Context, _ *asynq.Task) error {
	return k.klub.PostOfficeSendMail(ctx)
}

func (k *klubInstance) clearExpiredTokens(ctx context.Context, _ *asynq.Task) error {
	return k.klub.ClearExpiredTokens(ctx)
}

func (k *klubInstance) checkCelerybeatLiveness(ctx context.Context, _ *asynq.Task) error {
	return k.klub.CheckCelerybeatLiveness(ctx)
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.StatementQueue] = 3
	queues[cfg.Queue.CommunicationQueue] = 2
	queues[cfg.Queue.MaintenanceQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL("redis://" + conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOption.Addr,
			Password: redisOption.Password,
			DB:       redisOption.DB,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(k *klubInstance, mux *asynq.ServeMux) {
	mux.HandleFunc(klub.TaskParseAccountStatement, k.processStatement)
	mux.HandleFunc(klub.TaskSendCommunication, k.sendCommunication)
	mux.HandleFunc(klub.TaskCreateMassCommunications, k.createMassCommunicationTasks)
	mux.HandleFunc(klub.TaskGenerateTaxConfirmations, k.generateTaxConfirmations)
	mux.HandleFunc(klub.TaskSyncWithDaktela, k.syncWithDaktela)
	mux.HandleFunc(klub.TaskDeleteContactsFromDaktela, k.deleteContactsFromDaktela)
	mux.HandleFunc(klub.TaskCheckAutocomDaily, k.checkAutocomDaily)
	mux.HandleFunc(klub.TaskCheckDarujme, k.checkDarujme)
	mux.HandleFunc(klub.TaskPostOfficeSendMail, k.postOfficeSendMail)
	mux.HandleFunc(klub.TaskClearExpiredTokens, k.clearExpiredTokens)
	mux.HandleFunc(klub.TaskCheckCelerybeatLiveness, k.checkCelerybeatLiveness)
}

// initializeScheduler registers the periodic tasks. Entries land in the
// maintenance queue so they never starve statement processing.
func initializeScheduler(conf *config.Configuration) (*asynq.Scheduler, error) {
	redisOption, err := redis_db.ParseRedisURL("redis://" + conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisOption.Addr,
			Password: redisOption.Password,
			DB:       redisOption.DB,
		},
		nil,
	)

	entries := []struct {
		spec string
		task string
	}{
		{"@every 5m", klub.TaskPostOfficeSendMail},
		{"@every 5m", klub.TaskCheckCelerybeatLiveness},
		{"@every 30m", klub.TaskCheckDarujme},
		{"0 6 * * *", klub.TaskCheckAutocomDaily},
		{"0 3 * * *", klub.TaskClearExpiredTokens},
	}
	for _, entry := range entries {
		if _, err := scheduler.Register(entry.spec, asynq.NewTask(entry.task, nil),
			asynq.Queue(conf.Queue.MaintenanceQueue)); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

// workerCommands defines the "workers" command to start worker processes.
func workerCommands(k *klubInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start klub workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues()
			server, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(k, mux)

			scheduler, err := initializeScheduler(conf)
			if err != nil {
				log.Fatal(err)
			}
			if err := scheduler.Start(); err != nil {
				log.Fatal("Error starting scheduler:", err)
			}
			defer scheduler.Shutdown()

			if err := server.Run(mux); err != nil {
				log.Fatal("Error running worker server:", err)
			}
		},
	}

	return cmd
}
