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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/client/pipeline"
)

func gitWebhookTrigger(interval string) *models.Trigger {
	return &models.Trigger{
		SourceType:   models.SourceTypeWebhook,
		PollInterval: interval,
		Webhook: &models.WebhookSource{
			ProviderType: setting.SourceFromGithub,
			ConnectorRef: "github_connector",
			RepoName:     "acme/api",
		},
	}
}

func TestValidateWebhookPollInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		ok       bool
	}{
		{name: "no polling", interval: "", ok: true},
		{name: "explicit zero tears down", interval: "0", ok: true},
		{name: "lower bound", interval: "2", ok: true},
		{name: "upper bound", interval: "60m", ok: true},
		{name: "below lower bound", interval: "1", ok: false},
		{name: "above upper bound", interval: "61m", ok: false},
		{name: "garbage", interval: "often", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Validate(gitWebhookTrigger(tt.interval), nil)
			if tt.ok {
				assert.Equal(t, models.StatusSuccess, status.Result, status.Message)
			} else {
				assert.Equal(t, models.StatusFailed, status.Result)
				assert.NotEmpty(t, status.Message)
			}
		})
	}
}

func TestValidateWebhookMissingConnector(t *testing.T) {
	trig := gitWebhookTrigger("")
	trig.Webhook.ConnectorRef = ""

	status := Validate(trig, nil)
	assert.Equal(t, models.StatusFailed, status.Result)
	assert.Contains(t, status.Message, "connector_ref is required")
}

func TestValidateCustomWebhookSkipsGitRules(t *testing.T) {
	trig := &models.Trigger{
		SourceType: models.SourceTypeWebhook,
		Webhook:    &models.WebhookSource{ProviderType: setting.SourceFromCustom},
	}
	assert.Equal(t, models.StatusSuccess, Validate(trig, nil).Result)
}

func TestValidateScheduled(t *testing.T) {
	trig := &models.Trigger{
		SourceType: models.SourceTypeScheduled,
		Scheduled:  &models.ScheduledSource{Expression: "0 */10 * * *"},
	}
	assert.Equal(t, models.StatusSuccess, Validate(trig, nil).Result)

	trig.Scheduled.Expression = "*/1 * * * *"
	status := Validate(trig, nil)
	assert.Equal(t, models.StatusFailed, status.Result)
	assert.Contains(t, status.Message, "minimum allowed interval")
}

func TestValidateScheduledQuartz(t *testing.T) {
	trig := &models.Trigger{
		SourceType: models.SourceTypeScheduled,
		Scheduled:  &models.ScheduledSource{Expression: "0 0 */2 ? * * *", Dialect: "quartz"},
	}
	assert.Equal(t, models.StatusSuccess, Validate(trig, nil).Result)
}

func TestValidateArtifactRequiredRefs(t *testing.T) {
	trig := &models.Trigger{
		SourceType: models.SourceTypeArtifact,
		Artifact:   &models.BuildSource{BuildType: "DockerRegistry"},
	}

	status := Validate(trig, nil)
	assert.Equal(t, models.StatusFailed, status.Result)
	assert.Contains(t, status.Message, "stage_ref")
	assert.Contains(t, status.Message, "build_ref")

	// service v2 pipelines resolve both refs from the service definition
	status = Validate(trig, &pipeline.Metadata{ServiceV2: true})
	assert.Equal(t, models.StatusSuccess, status.Result)

	trig.Artifact.StageRef = "deploy"
	trig.Artifact.BuildRef = "primary"
	assert.Equal(t, models.StatusSuccess, Validate(trig, nil).Result)
}

func TestValidateMultiArtifact(t *testing.T) {
	src := &models.MultiArtifactSource{
		BuildType: "DockerRegistry",
		Sources: []*models.ArtifactSource{
			{Identifier: "api", BuildType: "DockerRegistry"},
			{Identifier: "web", BuildType: "DockerRegistry"},
		},
	}
	trig := &models.Trigger{SourceType: models.SourceTypeMultiArtifact, MultiArtifact: src}

	status := Validate(trig, nil)
	assert.Equal(t, models.StatusFailed, status.Result)
	assert.Contains(t, status.Message, "service v2")

	v2 := &pipeline.Metadata{ServiceV2: true}
	assert.Equal(t, models.StatusSuccess, Validate(trig, v2).Result)

	src.Sources[1].BuildType = "Gcr"
	status = Validate(trig, v2)
	assert.Equal(t, models.StatusFailed, status.Result)
	assert.Contains(t, status.Message, `build type "DockerRegistry"`)

	src.Sources = nil
	status = Validate(trig, v2)
	assert.Equal(t, models.StatusFailed, status.Result)
	assert.Contains(t, status.Message, "at least one artifact source")
}
