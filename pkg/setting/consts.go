/*
Copyright 2023 The KodeRover Authors.

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

package setting

import "time"

const ProductName = "trigger"

// envs
const (
	ENVSystemAddress           = "ADDRESS"
	ENVMode                    = "MODE"
	ENVPort                    = "PORT"
	ENVLogLevel                = "LOG_LEVEL"
	ENVMongoDBConnectionString = "MONGODB_CONNECTION_STRING"
	ENVTriggerDBName           = "TRIGGER_DB"

	ENVWebhookServiceAddress   = "WEBHOOK_SERVICE_ADDR"
	ENVPollingServiceAddress   = "POLLING_SERVICE_ADDR"
	ENVPipelineServiceAddress  = "PIPELINE_SERVICE_ADDR"
	ENVConnectorServiceAddress = "CONNECTOR_SERVICE_ADDR"
	ENVSettingsServiceAddress  = "SETTINGS_SERVICE_ADDR"

	ENVRegistrationWorkers   = "REGISTRATION_WORKERS"
	ENVRegistrationQueueSize = "REGISTRATION_QUEUE_SIZE"
	ENVExternalCallTimeout   = "EXTERNAL_CALL_TIMEOUT"

	DebugMode   = "debug"
	ReleaseMode = "release"
	TestMode    = "test"
)

// RequestID is the context and header key requests are traced by.
const RequestID = "requestID"

const RequestIDHeader = "X-Request-ID"

// source control providers known to the webhook registration service
const (
	SourceFromGithub    = "github"
	SourceFromGitlab    = "gitlab"
	SourceFromBitbucket = "bitbucket"
	SourceFromAzureRepo = "azurerepo"
	SourceFromCustom    = "custom"
)

const (
	// WebhookTriggerEvent is the event subscription registered on provider hooks.
	WebhookTriggerEvent = "trigger_events"

	// MinScheduleInterval is the smallest gap allowed between two cron firings.
	MinScheduleInterval = 5 * time.Minute

	// Webhook-polling interval bounds, in minutes. Zero means unsubscribe.
	MinWebhookPollIntervalMinutes = 2
	MaxWebhookPollIntervalMinutes = 60
)
