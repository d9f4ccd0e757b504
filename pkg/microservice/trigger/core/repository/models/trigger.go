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

package models

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
)

// SourceType tags the event source variant of a trigger. Dispatch sites
// switch over it exhaustively; adding a variant means touching every switch.
type SourceType string

const (
	SourceTypeWebhook       SourceType = "Webhook"
	SourceTypeScheduled     SourceType = "Scheduled"
	SourceTypeArtifact      SourceType = "Artifact"
	SourceTypeManifest      SourceType = "Manifest"
	SourceTypeMultiArtifact SourceType = "MultiArtifact"
)

type StatusResult string

const (
	StatusSuccess StatusResult = "SUCCESS"
	StatusFailed  StatusResult = "FAILED"
	StatusError   StatusResult = "ERROR"
)

type ValidationStatus struct {
	Result  StatusResult `bson:"result"            json:"result"`
	Message string       `bson:"message,omitempty" json:"message,omitempty"`
}

type WebhookRegistrationStatus struct {
	Result    StatusResult `bson:"result"               json:"result"`
	Message   string       `bson:"message,omitempty"    json:"message,omitempty"`
	WebhookID string       `bson:"webhook_id,omitempty" json:"webhook_id,omitempty"`
}

type PollingSubscriptionStatus struct {
	Result       StatusResult `bson:"result"                   json:"result"`
	Message      string       `bson:"message,omitempty"        json:"message,omitempty"`
	PollingDocID string       `bson:"polling_doc_id,omitempty" json:"polling_doc_id,omitempty"`
}

// TriggerStatus groups three independently written sub-statuses. Background
// workers patch exactly one of them at a time, so none may clobber another.
type TriggerStatus struct {
	Validation          *ValidationStatus          `bson:"validation,omitempty"           json:"validation,omitempty"`
	WebhookRegistration *WebhookRegistrationStatus `bson:"webhook_registration,omitempty" json:"webhook_registration,omitempty"`
	PollingSubscription *PollingSubscriptionStatus `bson:"polling_subscription,omitempty" json:"polling_subscription,omitempty"`
}

type WebhookSource struct {
	ProviderType string   `bson:"provider_type"        json:"provider_type"`
	ConnectorRef string   `bson:"connector_ref"        json:"connector_ref"`
	RepoName     string   `bson:"repo_name"            json:"repo_name"`
	SecretRef    string   `bson:"secret_ref,omitempty" json:"secret_ref,omitempty"`
	Events       []string `bson:"events,omitempty"     json:"events,omitempty"`
}

// IsCustom reports whether the webhook is an inbound-only endpoint rather
// than a hook registered on a source-control provider.
func (w *WebhookSource) IsCustom() bool {
	return w.ProviderType == setting.SourceFromCustom
}

type ScheduledSource struct {
	Expression string `bson:"expression" json:"expression"`
	Dialect    string `bson:"dialect"    json:"dialect"`
}

// BuildSource backs both Artifact and Manifest triggers.
type BuildSource struct {
	StageRef     string `bson:"stage_ref"               json:"stage_ref"`
	BuildRef     string `bson:"build_ref"               json:"build_ref"`
	BuildType    string `bson:"build_type"              json:"build_type"`
	ConnectorRef string `bson:"connector_ref,omitempty" json:"connector_ref,omitempty"`
}

type ArtifactSource struct {
	Identifier   string `bson:"identifier"              json:"identifier"`
	BuildType    string `bson:"build_type"              json:"build_type"`
	ConnectorRef string `bson:"connector_ref,omitempty" json:"connector_ref,omitempty"`
}

type MultiArtifactSource struct {
	BuildType string            `bson:"build_type" json:"build_type"`
	Sources   []*ArtifactSource `bson:"sources"    json:"sources"`
}

// Trigger binds an external event source to a target pipeline together with
// the runtime inputs supplied on firing.
type Trigger struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"                  json:"id,omitempty"`
	AccountID          string             `bson:"account_id"                     json:"account_id"`
	OrgID              string             `bson:"org_id"                         json:"org_id"`
	ProjectID          string             `bson:"project_id"                     json:"project_id"`
	PipelineIdentifier string             `bson:"pipeline_identifier"            json:"pipeline_identifier"`
	Identifier         string             `bson:"identifier"                     json:"identifier"`
	Name               string             `bson:"name,omitempty"                 json:"name,omitempty"`
	Description        string             `bson:"description,omitempty"          json:"description,omitempty"`
	SourceType         SourceType         `bson:"source_type"                    json:"source_type"`
	Enabled            bool               `bson:"enabled"                        json:"enabled"`
	PollInterval       string             `bson:"poll_interval,omitempty"        json:"poll_interval,omitempty"`
	YAML               string             `bson:"yaml"                           json:"yaml"`
	CustomWebhookToken string             `bson:"custom_webhook_token,omitempty" json:"custom_webhook_token,omitempty"`
	Status             TriggerStatus      `bson:"trigger_status"                 json:"trigger_status"`
	Version            int64              `bson:"version"                        json:"version"`
	Deleted            bool               `bson:"deleted"                        json:"deleted"`
	CreatedAt          int64              `bson:"created_at"                     json:"created_at"`
	UpdatedAt          int64              `bson:"updated_at"                     json:"updated_at"`

	Webhook       *WebhookSource       `bson:"webhook,omitempty"        json:"webhook,omitempty"`
	Scheduled     *ScheduledSource     `bson:"scheduled,omitempty"      json:"scheduled,omitempty"`
	Artifact      *BuildSource         `bson:"artifact,omitempty"       json:"artifact,omitempty"`
	Manifest      *BuildSource         `bson:"manifest,omitempty"       json:"manifest,omitempty"`
	MultiArtifact *MultiArtifactSource `bson:"multi_artifact,omitempty" json:"multi_artifact,omitempty"`
}

func (Trigger) TableName() string {
	return "trigger"
}

// Pollable reports whether the trigger carries a standing polling
// subscription for its source type.
func (t *Trigger) Pollable() bool {
	switch t.SourceType {
	case SourceTypeArtifact, SourceTypeManifest, SourceTypeMultiArtifact:
		return true
	case SourceTypeWebhook:
		return t.Webhook != nil && !t.Webhook.IsCustom() && t.PollInterval != ""
	default:
		return false
	}
}

// PollIntervalDuration parses the poll interval. Both Go duration strings
// ("30m") and bare minute counts ("30") are accepted; zero means the
// subscription should be torn down while the trigger definition stays.
func (t *Trigger) PollIntervalDuration() (time.Duration, error) {
	if t.PollInterval == "" {
		return 0, nil
	}
	if minutes, err := strconv.ParseFloat(t.PollInterval, 64); err == nil {
		return time.Duration(minutes * float64(time.Minute)), nil
	}
	d, err := time.ParseDuration(t.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid poll interval %q: %v", t.PollInterval, err)
	}

	return d, nil
}
