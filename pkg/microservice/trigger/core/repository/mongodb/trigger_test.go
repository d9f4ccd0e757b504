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

package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
)

func TestUpdateChangeLeavesStatusAlone(t *testing.T) {
	args := &models.Trigger{
		AccountID:          "acct",
		OrgID:              "org",
		ProjectID:          "proj",
		PipelineIdentifier: "deploy",
		Identifier:         "on_push",
		Name:               "On push",
		SourceType:         models.SourceTypeWebhook,
		Enabled:            true,
		PollInterval:       "10m",
		YAML:               "trigger:\n  name: On push\n",
		Version:            3,
		Webhook:            &models.WebhookSource{ProviderType: "Github", ConnectorRef: "gh", RepoName: "acme"},
		Status: models.TriggerStatus{
			WebhookRegistration: &models.WebhookRegistrationStatus{Result: models.StatusSuccess, WebhookID: "hook-1"},
		},
	}

	change := updateChange(args)

	set, ok := change["$set"].(bson.M)
	require.True(t, ok)
	assert.NotContains(t, set, "trigger_status")
	assert.NotContains(t, set, "version")
	assert.NotContains(t, set, "custom_webhook_token")
	assert.NotContains(t, set, "created_at")
	assert.NotContains(t, set, "deleted")

	assert.Equal(t, "On push", set["name"])
	assert.Equal(t, models.SourceTypeWebhook, set["source_type"])
	assert.Equal(t, true, set["enabled"])
	assert.Equal(t, "10m", set["poll_interval"])
	assert.Equal(t, args.Webhook, set["webhook"])

	inc, ok := change["$inc"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"version": 1}, inc)
}
