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
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/mongodb"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/client/connector"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/client/scmwebhook"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/httpclient"
)

type webhookStore interface {
	UpdateWebhookRegistrationStatus(t *models.Trigger, status *models.WebhookRegistrationStatus) error
}

type connectorResolver interface {
	Resolve(accountID, orgID, projectID, connectorRef string) (*connector.Details, error)
}

type hookService interface {
	Upsert(req *scmwebhook.UpsertRequest) (*scmwebhook.UpsertResponse, error)
	Unsubscribe(descriptor *scmwebhook.HookDescriptor) (bool, error)
}

// WebhookRegistrar registers provider webhooks for git-backed triggers and,
// on success, hands the trigger to the polling subscriber when the provider
// is backstopped by polling.
type WebhookRegistrar struct {
	store      webhookStore
	connectors connectorResolver
	hooks      hookService
	subscriber *PollingSubscriber
}

func NewWebhookRegistrar(subscriber *PollingSubscriber) *WebhookRegistrar {
	return &WebhookRegistrar{
		store:      mongodb.NewTriggerColl(),
		connectors: connector.New(),
		hooks:      scmwebhook.New(),
		subscriber: subscriber,
	}
}

// Register performs one registration attempt and records its outcome on the
// trigger. There is no retry here: the next Create or Update submits a fresh
// attempt, and a recorded ERROR or FAILED status stays visible until then.
func (r *WebhookRegistrar) Register(t *models.Trigger, opts *SyncOptions, logger *zap.SugaredLogger) {
	if t.SourceType != models.SourceTypeWebhook || t.Webhook == nil || t.Webhook.IsCustom() {
		return
	}
	if opts == nil {
		opts = &SyncOptions{}
	}
	if !t.Enabled {
		// a disabled trigger must not keep a live hook or polling backstop
		r.removeHook(t, opts, logger)
		r.chainPolling(t, opts, logger)
		return
	}

	details, err := r.connectors.Resolve(t.AccountID, t.OrgID, t.ProjectID, t.Webhook.ConnectorRef)
	if err != nil {
		r.persist(t, &models.WebhookRegistrationStatus{
			Result:  models.StatusError,
			Message: fmt.Sprintf("failed to resolve connector %s: %v", t.Webhook.ConnectorRef, err),
		}, logger)
		return
	}

	events := t.Webhook.Events
	if len(events) == 0 {
		events = []string{setting.WebhookTriggerEvent}
	}
	resp, err := r.hooks.Upsert(&scmwebhook.UpsertRequest{
		AccountID:    t.AccountID,
		ConnectorRef: t.Webhook.ConnectorRef,
		RepoURL:      details.RepoURL(t.Webhook.RepoName),
		SecretRef:    t.Webhook.SecretRef,
		Events:       events,
	})
	if err != nil {
		status := &models.WebhookRegistrationStatus{Message: fmt.Sprintf("webhook registration failed: %v", err)}
		var reqErr *httpclient.Error
		if errors.As(err, &reqErr) {
			// the webhook service answered, the provider rejected the hook
			status.Result = models.StatusFailed
		} else {
			status.Result = models.StatusError
		}
		r.persist(t, status, logger)
		return
	}
	if resp.Status != scmwebhook.UpsertStatusSuccess {
		r.persist(t, &models.WebhookRegistrationStatus{
			Result:  models.StatusFailed,
			Message: resp.Error,
		}, logger)
		return
	}

	r.persist(t, &models.WebhookRegistrationStatus{
		Result:    models.StatusSuccess,
		WebhookID: resp.WebhookID,
	}, logger)

	opts.WebhookID = resp.WebhookID
	r.chainPolling(t, opts, logger)
}

// removeHook tears down the provider hook a previously enabled definition
// registered. The hook id comes from the submitting operation or, failing
// that, from the last recorded registration outcome.
func (r *WebhookRegistrar) removeHook(t *models.Trigger, opts *SyncOptions, logger *zap.SugaredLogger) {
	webhookID := opts.WebhookID
	if webhookID == "" && t.Status.WebhookRegistration != nil {
		webhookID = t.Status.WebhookRegistration.WebhookID
	}
	if webhookID == "" {
		// never registered, nothing on the provider side to remove
		return
	}

	details, err := r.connectors.Resolve(t.AccountID, t.OrgID, t.ProjectID, t.Webhook.ConnectorRef)
	if err != nil {
		r.persist(t, &models.WebhookRegistrationStatus{
			Result:  models.StatusError,
			Message: fmt.Sprintf("failed to resolve connector %s: %v", t.Webhook.ConnectorRef, err),
		}, logger)
		return
	}

	if _, err := r.hooks.Unsubscribe(&scmwebhook.HookDescriptor{
		AccountID:    t.AccountID,
		ConnectorRef: t.Webhook.ConnectorRef,
		RepoURL:      details.RepoURL(t.Webhook.RepoName),
		WebhookID:    webhookID,
	}); err != nil {
		status := &models.WebhookRegistrationStatus{Message: fmt.Sprintf("webhook removal failed: %v", err)}
		var reqErr *httpclient.Error
		if errors.As(err, &reqErr) {
			status.Result = models.StatusFailed
		} else {
			status.Result = models.StatusError
		}
		r.persist(t, status, logger)
		return
	}

	r.persist(t, &models.WebhookRegistrationStatus{
		Result:  models.StatusSuccess,
		Message: "webhook removed",
	}, logger)
}

func (r *WebhookRegistrar) chainPolling(t *models.Trigger, opts *SyncOptions, logger *zap.SugaredLogger) {
	if !pollingApplies(t) {
		return
	}
	if err := r.subscriber.Sync(t, opts, logger); err != nil {
		logger.Errorf("Polling sync failed for trigger %s: %v", t.Identifier, err)
	}
}

func (r *WebhookRegistrar) persist(t *models.Trigger, status *models.WebhookRegistrationStatus, logger *zap.SugaredLogger) {
	if err := r.store.UpdateWebhookRegistrationStatus(t, status); err != nil {
		logger.Warnf("Failed to persist webhook registration status for trigger %s: %v", t.Identifier, err)
	}
}
