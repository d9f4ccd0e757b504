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

package trigger

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/mongodb"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/client/polling"
)

// webhookPollingProviders lists providers whose webhooks additionally get a
// polling subscription as a delivery backstop.
var webhookPollingProviders = map[string]bool{
	setting.SourceFromGithub: true,
}

type pollingStore interface {
	UpdatePollingSubscriptionStatus(t *models.Trigger, status *models.PollingSubscriptionStatus) error
}

type pollingService interface {
	Subscribe(encodedIntent string) (string, error)
	Unsubscribe(encodedIntent string) (bool, error)
}

// SyncOptions carries the registration context from the lifecycle operation
// that submitted the job.
type SyncOptions struct {
	IsUpdate  bool
	WebhookID string
	// Previous is the entity state before an update, used to tear down the
	// standing subscription the old definition created.
	Previous *models.Trigger
}

// PollingSubscriber keeps the polling service's standing subscription in
// step with a trigger definition.
type PollingSubscriber struct {
	store   pollingStore
	polling pollingService
}

func NewPollingSubscriber() *PollingSubscriber {
	return &PollingSubscriber{
		store:   mongodb.NewTriggerColl(),
		polling: polling.New(),
	}
}

// pollingApplies reports whether this trigger's source type ever holds a
// polling subscription. Teardown paths rely on this answering for triggers
// whose interval just dropped to zero, which Pollable alone would miss.
func pollingApplies(t *models.Trigger) bool {
	switch t.SourceType {
	case models.SourceTypeArtifact, models.SourceTypeManifest, models.SourceTypeMultiArtifact:
		return true
	case models.SourceTypeWebhook:
		return t.Webhook != nil && !t.Webhook.IsCustom() && webhookPollingProviders[t.Webhook.ProviderType]
	default:
		return false
	}
}

// providerHookApplies reports whether this trigger's definition registers a
// hook on a source-control provider, so teardown paths know when one may be
// standing.
func providerHookApplies(t *models.Trigger) bool {
	return t.SourceType == models.SourceTypeWebhook && t.Webhook != nil && !t.Webhook.IsCustom()
}

// pollingIntent is what the polling service keys subscriptions on. Encoding
// the natural key makes subscribe and unsubscribe idempotent: re-sending the
// same intent refreshes the same subscription instead of stacking a new one.
type pollingIntent struct {
	AccountID          string `json:"account_id"`
	OrgID              string `json:"org_id"`
	ProjectID          string `json:"project_id"`
	PipelineIdentifier string `json:"pipeline_identifier"`
	Identifier         string `json:"identifier"`
	SourceType         string `json:"source_type"`
	WebhookID          string `json:"webhook_id,omitempty"`
	IntervalMinutes    int    `json:"interval_minutes,omitempty"`
	Payload            string `json:"payload,omitempty"`
}

func encodeIntent(t *models.Trigger, webhookID string) string {
	intent := &pollingIntent{
		AccountID:          t.AccountID,
		OrgID:              t.OrgID,
		ProjectID:          t.ProjectID,
		PipelineIdentifier: t.PipelineIdentifier,
		Identifier:         t.Identifier,
		SourceType:         string(t.SourceType),
		WebhookID:          webhookID,
	}
	if d, err := t.PollIntervalDuration(); err == nil {
		intent.IntervalMinutes = int(d.Minutes())
	}

	switch t.SourceType {
	case models.SourceTypeArtifact:
		intent.Payload = marshalPayload(t.Artifact)
	case models.SourceTypeManifest:
		intent.Payload = marshalPayload(t.Manifest)
	case models.SourceTypeMultiArtifact:
		intent.Payload = marshalPayload(t.MultiArtifact)
	}

	raw, _ := json.Marshal(intent)
	return base64.URLEncoding.EncodeToString(raw)
}

func marshalPayload(v interface{}) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

// Sync converges the polling service on the trigger's desired state:
// disabled triggers and zeroed intervals are torn down, everything else is
// (re)subscribed. The resulting status is persisted on the trigger; the
// returned error reports subscription failure to the submitting worker.
func (s *PollingSubscriber) Sync(t *models.Trigger, opts *SyncOptions, logger *zap.SugaredLogger) error {
	if !pollingApplies(t) {
		return nil
	}
	if opts == nil {
		opts = &SyncOptions{}
	}

	interval, err := t.PollIntervalDuration()
	if err != nil {
		s.persist(t, &models.PollingSubscriptionStatus{
			Result:  models.StatusFailed,
			Message: err.Error(),
		}, logger)
		return err
	}

	teardown := !t.Enabled ||
		(t.SourceType == models.SourceTypeWebhook && interval == 0)
	if teardown {
		return s.unsubscribe(t, opts.WebhookID, logger)
	}

	if opts.IsUpdate {
		previous := opts.Previous
		if previous == nil {
			previous = t
		}
		// best effort: a missing previous subscription is not a failure
		if _, err := s.polling.Unsubscribe(encodeIntent(previous, opts.WebhookID)); err != nil {
			logger.Warnf("Failed to remove previous polling subscription for trigger %s: %v", t.Identifier, err)
		}
	}

	docID, err := s.polling.Subscribe(encodeIntent(t, opts.WebhookID))
	if err != nil {
		s.persist(t, &models.PollingSubscriptionStatus{
			Result:  models.StatusFailed,
			Message: fmt.Sprintf("polling subscription failed: %v", err),
		}, logger)
		return err
	}

	s.persist(t, &models.PollingSubscriptionStatus{
		Result:       models.StatusSuccess,
		PollingDocID: docID,
	}, logger)
	return nil
}

func (s *PollingSubscriber) unsubscribe(t *models.Trigger, webhookID string, logger *zap.SugaredLogger) error {
	if _, err := s.polling.Unsubscribe(encodeIntent(t, webhookID)); err != nil {
		s.persist(t, &models.PollingSubscriptionStatus{
			Result:  models.StatusFailed,
			Message: fmt.Sprintf("polling unsubscription failed: %v", err),
		}, logger)
		return err
	}

	s.persist(t, &models.PollingSubscriptionStatus{
		Result:  models.StatusSuccess,
		Message: "subscription removed",
	}, logger)
	return nil
}

func (s *PollingSubscriber) persist(t *models.Trigger, status *models.PollingSubscriptionStatus, logger *zap.SugaredLogger) {
	if err := s.store.UpdatePollingSubscriptionStatus(t, status); err != nil {
		// the trigger may have been deleted while the job was queued
		logger.Warnf("Failed to persist polling status for trigger %s: %v", t.Identifier, err)
	}
}
