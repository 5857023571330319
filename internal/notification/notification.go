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

package notification

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/klub-pratel/klub/internal/request"
	"github.com/sirupsen/logrus"

	"github.com/klub-pratel/klub/config"
)

// WebhookSender forwards an event to the admin interface's webhook endpoint.
type WebhookSender func(event string, payload interface{}) error

var webhookSender WebhookSender

// RegisterWebhookSender wires the outbound webhook used for staff-facing
// events. Nil is allowed and disables webhook delivery.
func RegisterWebhookSender(sender WebhookSender) {
	webhookSender = sender
}

// SlackNotification sends a message to the configured Slack webhook.
func SlackNotification(header, body string) {
	data := json.RawMessage(fmt.Sprintf(`{
		"blocks": [
			{
				"type": "header",
				"text": {
					"type": "plain_text",
					"text": "%s",
					"emoji": true
				}
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "%s"
					},
					{
						"type": "mrkdwn",
						"text": "*Time:*\n%v"
					}
				]
			}
		]
	}`, header, body, time.Now().Format(time.RFC822)))

	conf, err := config.Fetch()
	if err != nil {
		log.Println(err)
		return
	}

	payload, err := request.ToJsonReq(&data)
	if err != nil {
		log.Println(err)
		return
	}

	req, err := http.NewRequest("POST", conf.Notification.Slack.WebhookUrl, payload)
	if err != nil {
		log.Println(err)
		return
	}

	var response map[string]interface{}
	_, err = request.Call(req, &response)
	if err != nil {
		log.Println(err)
	}
}

// NotifyError sends an error notification through the configured channels.
// It logs the error locally and posts to Slack when configured. Runs
// asynchronously to keep import and pairing paths non-blocking.
func NotifyError(systemError error) {
	go func(systemError error) {
		logrus.Error(systemError)

		conf, err := config.Fetch()
		if err != nil {
			log.Println(err)
			return
		}

		if conf.Notification.Slack.WebhookUrl != "" {
			SlackNotification("Error From Klub", fmt.Sprintf("*Error:*\n%v", systemError.Error()))
		}
	}(systemError)
}

// NotifyStaff posts an operator-facing message, e.g. the tax-confirmation
// batch summary. Delivered through the webhook sender when registered and
// Slack when configured.
func NotifyStaff(subject, message string) {
	go func() {
		logrus.WithField("subject", subject).Info(message)

		if webhookSender != nil {
			if err := webhookSender(subject, message); err != nil {
				log.Println(err)
			}
		}

		conf, err := config.Fetch()
		if err != nil {
			log.Println(err)
			return
		}
		if conf.Notification.Slack.WebhookUrl != "" {
			SlackNotification(subject, message)
		}
	}()
}
