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
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/client/pipeline"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/crontab"
)

// Validate checks a trigger definition against its source-type rules and the
// target pipeline's capabilities. It never mutates the trigger; callers
// decide whether a FAILED result flips the trigger disabled.
func Validate(t *models.Trigger, meta *pipeline.Metadata) *models.ValidationStatus {
	var err error

	switch t.SourceType {
	case models.SourceTypeWebhook:
		err = validateWebhook(t)
	case models.SourceTypeScheduled:
		err = validateScheduled(t)
	case models.SourceTypeArtifact:
		err = validateBuildSource(t.Artifact, meta)
	case models.SourceTypeManifest:
		err = validateBuildSource(t.Manifest, meta)
	case models.SourceTypeMultiArtifact:
		err = validateMultiArtifact(t.MultiArtifact, meta)
	default:
		err = fmt.Errorf("unknown source type %q", t.SourceType)
	}

	if err != nil {
		return &models.ValidationStatus{Result: models.StatusFailed, Message: err.Error()}
	}
	return &models.ValidationStatus{Result: models.StatusSuccess}
}

func validateWebhook(t *models.Trigger) error {
	if t.Webhook == nil {
		return fmt.Errorf("webhook source is required")
	}
	if t.Webhook.IsCustom() {
		return nil
	}

	var res *multierror.Error
	if t.Webhook.ConnectorRef == "" {
		res = multierror.Append(res, fmt.Errorf("connector_ref is required"))
	}

	interval, err := t.PollIntervalDuration()
	if err != nil {
		res = multierror.Append(res, err)
	} else if interval != 0 {
		min := time.Duration(setting.MinWebhookPollIntervalMinutes) * time.Minute
		max := time.Duration(setting.MaxWebhookPollIntervalMinutes) * time.Minute
		if interval < min || interval > max {
			res = multierror.Append(res, fmt.Errorf(
				"poll interval %s is outside the allowed range [%s, %s]", interval, min, max))
		}
	}
	return res.ErrorOrNil()
}

func validateScheduled(t *models.Trigger) error {
	if t.Scheduled == nil || t.Scheduled.Expression == "" {
		return fmt.Errorf("cron expression is required")
	}
	return crontab.ValidateMinInterval(
		t.Scheduled.Expression, crontab.Dialect(t.Scheduled.Dialect), setting.MinScheduleInterval)
}

func validateBuildSource(src *models.BuildSource, meta *pipeline.Metadata) error {
	if src == nil {
		return fmt.Errorf("build source is required")
	}
	if meta != nil && meta.ServiceV2 {
		return nil
	}

	var missing []string
	if strings.TrimSpace(src.StageRef) == "" {
		missing = append(missing, "stage_ref")
	}
	if strings.TrimSpace(src.BuildRef) == "" {
		missing = append(missing, "build_ref")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func validateMultiArtifact(src *models.MultiArtifactSource, meta *pipeline.Metadata) error {
	if src == nil {
		return fmt.Errorf("multi-artifact source is required")
	}
	if meta == nil || !meta.ServiceV2 {
		return fmt.Errorf("multi-artifact triggers require a service v2 pipeline")
	}
	if len(src.Sources) == 0 {
		return fmt.Errorf("at least one artifact source is required")
	}

	if !lo.EveryBy(src.Sources, func(s *models.ArtifactSource) bool {
		return s != nil && s.BuildType == src.BuildType
	}) {
		return fmt.Errorf("all artifact sources must use build type %q", src.BuildType)
	}
	return nil
}
