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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/client/connector"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/client/scmwebhook"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/httpclient"
)

type fakeStatusStore struct {
	webhook *models.WebhookRegistrationStatus
	polling []*models.PollingSubscriptionStatus
}

func (f *fakeStatusStore) UpdateWebhookRegistrationStatus(_ *models.Trigger, status *models.WebhookRegistrationStatus) error {
	f.webhook = status
	return nil
}

func (f *fakeStatusStore) UpdatePollingSubscriptionStatus(_ *models.Trigger, status *models.PollingSubscriptionStatus) error {
	f.polling = append(f.polling, status)
	return nil
}

func (f *fakeStatusStore) lastPolling() *models.PollingSubscriptionStatus {
	if len(f.polling) == 0 {
		return nil
	}
	return f.polling[len(f.polling)-1]
}

type fakeConnectors struct {
	details *connector.Details
	err     error
}

func (f *fakeConnectors) Resolve(_, _, _, _ string) (*connector.Details, error) {
	return f.details, f.err
}

type fakeHooks struct {
	resp     *scmwebhook.UpsertResponse
	err      error
	unsubErr error
	calls    []*scmwebhook.UpsertRequest
	removed  []*scmwebhook.HookDescriptor
}

func (f *fakeHooks) Upsert(req *scmwebhook.UpsertRequest) (*scmwebhook.UpsertResponse, error) {
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

func (f *fakeHooks) Unsubscribe(descriptor *scmwebhook.HookDescriptor) (bool, error) {
	if f.unsubErr != nil {
		return false, f.unsubErr
	}
	f.removed = append(f.removed, descriptor)
	return true, nil
}

type fakePolling struct {
	docID      string
	subErr     error
	unsubErr   error
	subscribed []string
	removed    []string
}

func (f *fakePolling) Subscribe(intent string) (string, error) {
	if f.subErr != nil {
		return "", f.subErr
	}
	f.subscribed = append(f.subscribed, intent)
	return f.docID, nil
}

func (f *fakePolling) Unsubscribe(intent string) (bool, error) {
	if f.unsubErr != nil {
		return false, f.unsubErr
	}
	f.removed = append(f.removed, intent)
	return true, nil
}

func newTestRegistrar(store *fakeStatusStore, connectors *fakeConnectors, hooks *fakeHooks, poll *fakePolling) *WebhookRegistrar {
	return &WebhookRegistrar{
		store:      store,
		connectors: connectors,
		hooks:      hooks,
		subscriber: &PollingSubscriber{store: store, polling: poll},
	}
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func enabledGitTrigger(interval string) *models.Trigger {
	trig := gitWebhookTrigger(interval)
	trig.AccountID = "acct"
	trig.OrgID = "org"
	trig.ProjectID = "proj"
	trig.PipelineIdentifier = "deploy"
	trig.Identifier = "on_push"
	trig.Enabled = true
	return trig
}

func TestRegisterSuccessChainsPolling(t *testing.T) {
	store := &fakeStatusStore{}
	hooks := &fakeHooks{resp: &scmwebhook.UpsertResponse{Status: scmwebhook.UpsertStatusSuccess, WebhookID: "hook-1"}}
	poll := &fakePolling{docID: "poll-doc-1"}
	r := newTestRegistrar(store,
		&fakeConnectors{details: &connector.Details{URL: "https://github.com/acme", ConnectionType: connector.ConnectionTypeAccount}},
		hooks, poll)

	r.Register(enabledGitTrigger("10m"), &SyncOptions{}, testLogger())

	require.NotNil(t, store.webhook)
	assert.Equal(t, models.StatusSuccess, store.webhook.Result)
	assert.Equal(t, "hook-1", store.webhook.WebhookID)

	require.Len(t, hooks.calls, 1)
	assert.Equal(t, "https://github.com/acme/acme/api", hooks.calls[0].RepoURL)
	assert.Equal(t, []string{setting.WebhookTriggerEvent}, hooks.calls[0].Events)

	require.NotNil(t, store.lastPolling())
	assert.Equal(t, models.StatusSuccess, store.lastPolling().Result)
	assert.Equal(t, "poll-doc-1", store.lastPolling().PollingDocID)
	require.Len(t, poll.subscribed, 1)
}

func TestRegisterConnectorFailureIsError(t *testing.T) {
	store := &fakeStatusStore{}
	r := newTestRegistrar(store, &fakeConnectors{err: errors.New("connector service unreachable")}, &fakeHooks{}, &fakePolling{})

	r.Register(enabledGitTrigger(""), nil, testLogger())

	require.NotNil(t, store.webhook)
	assert.Equal(t, models.StatusError, store.webhook.Result)
	assert.Contains(t, store.webhook.Message, "connector service unreachable")
}

func TestRegisterTransportFailureIsError(t *testing.T) {
	store := &fakeStatusStore{}
	r := newTestRegistrar(store,
		&fakeConnectors{details: &connector.Details{URL: "https://github.com/acme/api", ConnectionType: connector.ConnectionTypeRepo}},
		&fakeHooks{err: errors.New("dial tcp: connection refused")}, &fakePolling{})

	r.Register(enabledGitTrigger(""), nil, testLogger())

	require.NotNil(t, store.webhook)
	assert.Equal(t, models.StatusError, store.webhook.Result)
}

func TestRegisterApplicationFailureIsFailed(t *testing.T) {
	store := &fakeStatusStore{}
	appErr := httpclient.NewGenericServerResponse(http.StatusUnprocessableEntity, "POST", "insufficient repository permissions")
	r := newTestRegistrar(store,
		&fakeConnectors{details: &connector.Details{URL: "https://github.com/acme/api", ConnectionType: connector.ConnectionTypeRepo}},
		&fakeHooks{err: appErr}, &fakePolling{})

	r.Register(enabledGitTrigger(""), nil, testLogger())

	require.NotNil(t, store.webhook)
	assert.Equal(t, models.StatusFailed, store.webhook.Result)
}

func TestRegisterProviderRejectionIsFailed(t *testing.T) {
	store := &fakeStatusStore{}
	poll := &fakePolling{}
	r := newTestRegistrar(store,
		&fakeConnectors{details: &connector.Details{URL: "https://github.com/acme/api", ConnectionType: connector.ConnectionTypeRepo}},
		&fakeHooks{resp: &scmwebhook.UpsertResponse{Status: scmwebhook.UpsertStatusFailed, Error: "hook limit reached"}},
		poll)

	r.Register(enabledGitTrigger("10m"), nil, testLogger())

	require.NotNil(t, store.webhook)
	assert.Equal(t, models.StatusFailed, store.webhook.Result)
	assert.Equal(t, "hook limit reached", store.webhook.Message)
	assert.Empty(t, poll.subscribed)
}

func TestRegisterSkipsCustomWebhook(t *testing.T) {
	store := &fakeStatusStore{}
	hooks := &fakeHooks{}
	r := newTestRegistrar(store, &fakeConnectors{}, hooks, &fakePolling{})

	trig := enabledGitTrigger("")
	trig.Webhook.ProviderType = setting.SourceFromCustom
	r.Register(trig, nil, testLogger())

	assert.Nil(t, store.webhook)
	assert.Empty(t, hooks.calls)
}

func TestRegisterDisabledTearsDownHookAndPolling(t *testing.T) {
	store := &fakeStatusStore{}
	hooks := &fakeHooks{}
	poll := &fakePolling{}
	r := newTestRegistrar(store,
		&fakeConnectors{details: &connector.Details{URL: "https://github.com/acme", ConnectionType: connector.ConnectionTypeAccount}},
		hooks, poll)

	trig := enabledGitTrigger("10m")
	trig.Enabled = false
	r.Register(trig, &SyncOptions{WebhookID: "hook-1"}, testLogger())

	assert.Empty(t, hooks.calls)
	require.Len(t, hooks.removed, 1)
	assert.Equal(t, "hook-1", hooks.removed[0].WebhookID)
	require.NotNil(t, store.webhook)
	assert.Equal(t, models.StatusSuccess, store.webhook.Result)
	assert.Equal(t, "webhook removed", store.webhook.Message)

	require.Len(t, poll.removed, 1)
	require.NotNil(t, store.lastPolling())
	assert.Equal(t, models.StatusSuccess, store.lastPolling().Result)
	assert.Empty(t, store.lastPolling().PollingDocID)
}

func TestRegisterDisabledUsesRecordedHookID(t *testing.T) {
	store := &fakeStatusStore{}
	hooks := &fakeHooks{}
	r := newTestRegistrar(store,
		&fakeConnectors{details: &connector.Details{URL: "https://github.com/acme", ConnectionType: connector.ConnectionTypeAccount}},
		hooks, &fakePolling{})

	trig := enabledGitTrigger("")
	trig.Enabled = false
	trig.Status.WebhookRegistration = &models.WebhookRegistrationStatus{
		Result:    models.StatusSuccess,
		WebhookID: "hook-9",
	}
	r.Register(trig, nil, testLogger())

	require.Len(t, hooks.removed, 1)
	assert.Equal(t, "hook-9", hooks.removed[0].WebhookID)
}

func TestRegisterDisabledWithoutHookSkipsRemoval(t *testing.T) {
	store := &fakeStatusStore{}
	hooks := &fakeHooks{}
	r := newTestRegistrar(store, &fakeConnectors{}, hooks, &fakePolling{})

	trig := enabledGitTrigger("")
	trig.Enabled = false
	r.Register(trig, nil, testLogger())

	assert.Empty(t, hooks.removed)
	assert.Nil(t, store.webhook)
}

func TestRegisterDisabledRemovalTransportFailureIsError(t *testing.T) {
	store := &fakeStatusStore{}
	hooks := &fakeHooks{unsubErr: errors.New("dial tcp: connection refused")}
	r := newTestRegistrar(store,
		&fakeConnectors{details: &connector.Details{URL: "https://github.com/acme", ConnectionType: connector.ConnectionTypeAccount}},
		hooks, &fakePolling{})

	trig := enabledGitTrigger("")
	trig.Enabled = false
	r.Register(trig, &SyncOptions{WebhookID: "hook-1"}, testLogger())

	require.NotNil(t, store.webhook)
	assert.Equal(t, models.StatusError, store.webhook.Result)
	assert.Contains(t, store.webhook.Message, "webhook removal failed")
}

func TestProviderHookApplies(t *testing.T) {
	assert.True(t, providerHookApplies(enabledGitTrigger("")))

	custom := enabledGitTrigger("")
	custom.Webhook.ProviderType = setting.SourceFromCustom
	assert.False(t, providerHookApplies(custom))

	assert.False(t, providerHookApplies(&models.Trigger{SourceType: models.SourceTypeScheduled}))
}

func TestSyncSubscribeIsIdempotent(t *testing.T) {
	store := &fakeStatusStore{}
	poll := &fakePolling{docID: "poll-doc-1"}
	s := &PollingSubscriber{store: store, polling: poll}

	trig := &models.Trigger{
		AccountID: "acct", OrgID: "org", ProjectID: "proj",
		PipelineIdentifier: "deploy", Identifier: "on_artifact",
		SourceType: models.SourceTypeArtifact, Enabled: true,
		Artifact: &models.BuildSource{StageRef: "deploy", BuildRef: "primary", BuildType: "DockerRegistry"},
	}

	require.NoError(t, s.Sync(trig, nil, testLogger()))
	require.NoError(t, s.Sync(trig, nil, testLogger()))

	require.Len(t, poll.subscribed, 2)
	assert.Equal(t, poll.subscribed[0], poll.subscribed[1])
	assert.Equal(t, "poll-doc-1", store.lastPolling().PollingDocID)
}

func TestSyncZeroIntervalUnsubscribes(t *testing.T) {
	store := &fakeStatusStore{}
	poll := &fakePolling{}
	s := &PollingSubscriber{store: store, polling: poll}

	trig := enabledGitTrigger("0")
	require.NoError(t, s.Sync(trig, &SyncOptions{WebhookID: "hook-1"}, testLogger()))

	assert.Empty(t, poll.subscribed)
	require.Len(t, poll.removed, 1)
	assert.Equal(t, models.StatusSuccess, store.lastPolling().Result)
	assert.Equal(t, "subscription removed", store.lastPolling().Message)
}

func TestSyncUpdateRemovesPreviousSubscription(t *testing.T) {
	store := &fakeStatusStore{}
	poll := &fakePolling{docID: "poll-doc-2"}
	s := &PollingSubscriber{store: store, polling: poll}

	previous := enabledGitTrigger("10m")
	current := enabledGitTrigger("30m")

	require.NoError(t, s.Sync(current, &SyncOptions{IsUpdate: true, Previous: previous, WebhookID: "hook-1"}, testLogger()))

	require.Len(t, poll.removed, 1)
	require.Len(t, poll.subscribed, 1)
	assert.NotEqual(t, poll.removed[0], poll.subscribed[0])
	assert.Equal(t, "poll-doc-2", store.lastPolling().PollingDocID)
}

func TestSyncSubscribeFailurePersistsFailed(t *testing.T) {
	store := &fakeStatusStore{}
	poll := &fakePolling{subErr: errors.New("polling service unavailable")}
	s := &PollingSubscriber{store: store, polling: poll}

	trig := enabledGitTrigger("10m")
	err := s.Sync(trig, nil, testLogger())
	require.Error(t, err)
	assert.Equal(t, models.StatusFailed, store.lastPolling().Result)
	assert.Contains(t, store.lastPolling().Message, "polling service unavailable")
}

func TestSyncIgnoresNonPollableSources(t *testing.T) {
	store := &fakeStatusStore{}
	poll := &fakePolling{}
	s := &PollingSubscriber{store: store, polling: poll}

	trig := &models.Trigger{
		SourceType: models.SourceTypeScheduled, Enabled: true,
		Scheduled: &models.ScheduledSource{Expression: "0 * * * *"},
	}
	require.NoError(t, s.Sync(trig, nil, testLogger()))
	assert.Empty(t, poll.subscribed)
	assert.Empty(t, store.polling)
}
