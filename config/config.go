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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

var ConfigStore atomic.Value

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"KLUB_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"KLUB_REDIS_DNS"`
}

// QueueConfig names the asynq queues the workers consume. The task type
// names themselves are fixed (see queue.go); only the queue routing is
// configurable.
type QueueConfig struct {
	StatementQueue     string `json:"statement_queue" envconfig:"KLUB_QUEUE_STATEMENT"`
	CommunicationQueue string `json:"communication_queue" envconfig:"KLUB_QUEUE_COMMUNICATION"`
	MaintenanceQueue   string `json:"maintenance_queue" envconfig:"KLUB_QUEUE_MAINTENANCE"`
	MaxRetryAttempts   int    `json:"max_retry_attempts" envconfig:"KLUB_QUEUE_MAX_RETRY"`
}

// SMTPConfig carries the outbound mail relay. The from identity is per
// administrative unit and lives in the database.
type SMTPConfig struct {
	Host     string `json:"host" envconfig:"KLUB_SMTP_HOST"`
	Port     string `json:"port" envconfig:"KLUB_SMTP_PORT"`
	Username string `json:"username" envconfig:"KLUB_SMTP_USERNAME"`
	Password string `json:"password" envconfig:"KLUB_SMTP_PASSWORD"`
}

// DarujmeConfig holds the read-only donation portal API endpoint.
type DarujmeConfig struct {
	ApiUrl    string `json:"api_url" envconfig:"KLUB_DARUJME_API_URL"`
	ApiID     string `json:"api_id" envconfig:"KLUB_DARUJME_API_ID"`
	ApiSecret string `json:"api_secret" envconfig:"KLUB_DARUJME_API_SECRET"`
}

// DaktelaConfig holds the CRM endpoint used by the contact sync tasks.
type DaktelaConfig struct {
	Url   string `json:"url" envconfig:"KLUB_DAKTELA_URL"`
	Token string `json:"token" envconfig:"KLUB_DAKTELA_TOKEN"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"KLUB_PROJECT_NAME"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Queue        QueueConfig      `json:"queue"`
	SMTP         SMTPConfig       `json:"smtp"`
	Darujme      DarujmeConfig    `json:"darujme"`
	Daktela      DaktelaConfig    `json:"daktela"`
	Notification Notification     `json:"notification"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("klub", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called klub.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Klub Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	if cnf.Darujme.ApiUrl == "" {
		cnf.Darujme.ApiUrl = "https://www.darujme.cz/dar/api/darujme_api.php"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Queue.StatementQueue == "" {
		cnf.Queue.StatementQueue = "statements"
	}
	if cnf.Queue.CommunicationQueue == "" {
		cnf.Queue.CommunicationQueue = "communications"
	}
	if cnf.Queue.MaintenanceQueue == "" {
		cnf.Queue.MaintenanceQueue = "maintenance"
	}
	if cnf.Queue.MaxRetryAttempts == 0 {
		cnf.Queue.MaxRetryAttempts = 5
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
