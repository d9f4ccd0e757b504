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

// Package trigger implements the trigger lifecycle: CRUD with optimistic
// versioning, source validation and the background registration workers.
package trigger

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/mongodb"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/service/executor"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/client/pipeline"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/client/settings"
	e "github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/errors"
)

var (
	workersOnce sync.Once
	pool        *executor.Executor
	subscriber  *PollingSubscriber
	registrar   *WebhookRegistrar
)

// StartRegistrationWorkers boots the shared registration pool. Lifecycle
// operations submit to it; nothing registration-related runs on the request
// path.
func StartRegistrationWorkers(stopCh <-chan struct{}) {
	workersOnce.Do(func() {
		pool = executor.New(config.RegistrationQueueSize())
		subscriber = NewPollingSubscriber()
		registrar = NewWebhookRegistrar(subscriber)
		go pool.Run(config.RegistrationWorkers(), stopCh)
	})
}

var (
	clientsOnce sync.Once
	pipelineCli *pipeline.Client
	settingsCli *settings.Client
)

func clients() (*pipeline.Client, *settings.Client) {
	clientsOnce.Do(func() {
		pipelineCli = pipeline.New()
		settingsCli = settings.New()
	})
	return pipelineCli, settingsCli
}

// lifecycleStore covers the writes a lifecycle operation performs; tests
// swap newLifecycleStore for a fake.
type lifecycleStore interface {
	Create(args *models.Trigger) error
	UpdateValidationStatus(t *models.Trigger, status *models.ValidationStatus) error
	UpdateEnabled(opt *mongodb.TriggerFindOption, enabled bool) error
}

var newLifecycleStore = func() lifecycleStore { return mongodb.NewTriggerColl() }

func findOptOf(t *models.Trigger) *mongodb.TriggerFindOption {
	return &mongodb.TriggerFindOption{
		AccountID:          t.AccountID,
		OrgID:              t.OrgID,
		ProjectID:          t.ProjectID,
		PipelineIdentifier: t.PipelineIdentifier,
		Identifier:         t.Identifier,
	}
}

func pipelineRefOf(t *models.Trigger) *pipeline.Ref {
	return &pipeline.Ref{
		AccountID:  t.AccountID,
		OrgID:      t.OrgID,
		ProjectID:  t.ProjectID,
		Identifier: t.PipelineIdentifier,
	}
}

func checkRequired(args *models.Trigger) error {
	var res *multierror.Error
	for field, value := range map[string]string{
		"account_id":          args.AccountID,
		"org_id":              args.OrgID,
		"project_id":          args.ProjectID,
		"pipeline_identifier": args.PipelineIdentifier,
		"identifier":          args.Identifier,
	} {
		if value == "" {
			res = multierror.Append(res, fmt.Errorf("%s is required", field))
		}
	}

	switch args.SourceType {
	case models.SourceTypeWebhook:
		if args.Webhook == nil {
			res = multierror.Append(res, fmt.Errorf("webhook source is required"))
		}
	case models.SourceTypeScheduled:
		if args.Scheduled == nil {
			res = multierror.Append(res, fmt.Errorf("scheduled source is required"))
		}
	case models.SourceTypeArtifact:
		if args.Artifact == nil {
			res = multierror.Append(res, fmt.Errorf("artifact source is required"))
		}
	case models.SourceTypeManifest:
		if args.Manifest == nil {
			res = multierror.Append(res, fmt.Errorf("manifest source is required"))
		}
	case models.SourceTypeMultiArtifact:
		if args.MultiArtifact == nil {
			res = multierror.Append(res, fmt.Errorf("multi_artifact source is required"))
		}
	default:
		res = multierror.Append(res, fmt.Errorf("unknown source type %q", args.SourceType))
	}
	return res.ErrorOrNil()
}

// validateTrigger runs source validation plus the account-level webhook
// secret mandate. Collaborator outages degrade to the checks that can still
// run; validation never hard-fails on an unreachable service.
func validateTrigger(args *models.Trigger, logger *zap.SugaredLogger) *models.ValidationStatus {
	pipelineCli, settingsCli := clients()

	meta, err := pipelineCli.Metadata(pipelineRefOf(args))
	if err != nil {
		logger.Warnf("Failed to fetch metadata for pipeline %s: %v", args.PipelineIdentifier, err)
		meta = nil
	}

	status := Validate(args, meta)
	if status.Result != models.StatusSuccess {
		return status
	}

	if args.SourceType == models.SourceTypeWebhook && args.Webhook != nil &&
		!args.Webhook.IsCustom() && args.Webhook.SecretRef == "" {
		mandatory, err := settingsCli.WebhookAuthMandatory(args.AccountID)
		if err != nil {
			logger.Warnf("Failed to check webhook secret mandate for account %s: %v", args.AccountID, err)
		} else if mandatory {
			return &models.ValidationStatus{
				Result:  models.StatusFailed,
				Message: "account settings mandate webhook secrets, secret_ref is required",
			}
		}
	}
	return status
}

// applyValidation persists the validation outcome and disables the trigger
// when validation failed, so a broken definition never fires.
func applyValidation(coll lifecycleStore, args *models.Trigger, status *models.ValidationStatus, logger *zap.SugaredLogger) {
	args.Status.Validation = status
	if err := coll.UpdateValidationStatus(args, status); err != nil {
		logger.Errorf("Failed to persist validation status for trigger %s: %v", args.Identifier, err)
	}

	if status.Result != models.StatusSuccess && args.Enabled {
		if err := coll.UpdateEnabled(findOptOf(args), false); err != nil {
			logger.Errorf("Failed to disable invalid trigger %s: %v", args.Identifier, err)
		}
		args.Enabled = false
	}
}

// submitRegistration queues the side-effect work for a trigger write. The
// entity is snapshotted first so later request handling cannot race the
// worker.
func submitRegistration(t *models.Trigger, opts *SyncOptions, logger *zap.SugaredLogger) {
	if pool == nil {
		logger.DPanicf("Registration pool is not running, trigger %s will not be registered", t.Identifier)
		return
	}
	if t.SourceType == models.SourceTypeScheduled {
		return
	}

	snapshot := &models.Trigger{}
	if err := copier.Copy(snapshot, t); err != nil {
		logger.Errorf("Failed to snapshot trigger %s: %v", t.Identifier, err)
		return
	}

	name := fmt.Sprintf("register-trigger-%s-%s", t.PipelineIdentifier, t.Identifier)
	err := pool.Submit(name, func() {
		taskLogger := logger
		if snapshot.SourceType == models.SourceTypeWebhook {
			registrar.Register(snapshot, opts, taskLogger)
			return
		}
		if err := subscriber.Sync(snapshot, opts, taskLogger); err != nil {
			taskLogger.Errorf("Polling sync failed for trigger %s: %v", snapshot.Identifier, err)
		}
	})
	if err != nil {
		logger.Errorf("Failed to submit registration for trigger %s: %v", t.Identifier, err)
	}
}

// PreviewValidation runs the validation rules without persisting anything
// and without disabling the trigger, for pre-save feedback in editors.
func PreviewValidation(args *models.Trigger, logger *zap.SugaredLogger) (*models.ValidationStatus, error) {
	if err := checkRequired(args); err != nil {
		return nil, e.ErrTriggerValidation.AddErr(err)
	}

	return validateTrigger(args, logger), nil
}

func CreateTrigger(args *models.Trigger, logger *zap.SugaredLogger) (*models.Trigger, error) {
	if err := checkRequired(args); err != nil {
		return nil, e.ErrTriggerValidation.AddErr(err)
	}

	if args.SourceType == models.SourceTypeWebhook && args.Webhook != nil &&
		args.Webhook.IsCustom() && args.CustomWebhookToken == "" {
		args.CustomWebhookToken = uuid.NewString()
	}

	coll := newLifecycleStore()
	if err := coll.Create(args); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, e.ErrTriggerAlreadyExists.AddDesc(
				fmt.Sprintf("trigger %s already exists for pipeline %s", args.Identifier, args.PipelineIdentifier))
		}
		logger.Errorf("Failed to create trigger %s: %v", args.Identifier, err)
		return nil, e.ErrCreateTrigger.AddErr(err)
	}

	status := validateTrigger(args, logger)
	applyValidation(coll, args, status, logger)

	submitRegistration(args, &SyncOptions{}, logger)
	return args, nil
}

func UpdateTrigger(args *models.Trigger, logger *zap.SugaredLogger) (*models.Trigger, error) {
	if err := checkRequired(args); err != nil {
		return nil, e.ErrTriggerValidation.AddErr(err)
	}

	coll := mongodb.NewTriggerColl()
	existing, err := coll.Find(findOptOf(args))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, e.ErrTriggerNotFound.AddDesc(fmt.Sprintf("trigger %s not found", args.Identifier))
		}
		return nil, e.ErrUpdateTrigger.AddErr(err)
	}

	// immutable and server-owned fields carry over from the stored entity
	args.ID = existing.ID
	args.CustomWebhookToken = existing.CustomWebhookToken
	args.CreatedAt = existing.CreatedAt
	args.Status = existing.Status
	if args.Version == 0 {
		args.Version = existing.Version
	}

	if err := coll.Update(args); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, e.ErrUpdateTrigger.AddDesc(fmt.Sprintf(
				"trigger %s was modified concurrently, fetch the latest version and retry", args.Identifier))
		}
		logger.Errorf("Failed to update trigger %s: %v", args.Identifier, err)
		return nil, e.ErrUpdateTrigger.AddErr(err)
	}

	status := validateTrigger(args, logger)
	applyValidation(coll, args, status, logger)

	submitRegistration(args, &SyncOptions{IsUpdate: true, Previous: existing}, logger)
	return args, nil
}

// ToggleTrigger flips the enabled flag without a version precondition and
// resynchronizes the trigger's external registrations.
func ToggleTrigger(opt *mongodb.TriggerFindOption, enabled bool, logger *zap.SugaredLogger) (*models.Trigger, error) {
	coll := mongodb.NewTriggerColl()
	existing, err := coll.Find(opt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, e.ErrTriggerNotFound.AddDesc(fmt.Sprintf("trigger %s not found", opt.Identifier))
		}
		return nil, e.ErrToggleTrigger.AddErr(err)
	}
	if existing.Enabled == enabled {
		return existing, nil
	}

	if err := coll.UpdateEnabled(opt, enabled); err != nil {
		logger.Errorf("Failed to toggle trigger %s: %v", opt.Identifier, err)
		return nil, e.ErrToggleTrigger.AddErr(err)
	}
	existing.Enabled = enabled

	submitRegistration(existing, &SyncOptions{IsUpdate: true}, logger)
	return existing, nil
}

// DeleteTrigger removes the trigger and queues teardown of any standing
// polling subscription, using the snapshot taken before deletion.
func DeleteTrigger(opt *mongodb.TriggerFindOption, expectedVersion int64, logger *zap.SugaredLogger) error {
	coll := mongodb.NewTriggerColl()
	existing, err := coll.Find(opt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return e.ErrTriggerNotFound.AddDesc(fmt.Sprintf("trigger %s not found", opt.Identifier))
		}
		return e.ErrDeleteTrigger.AddErr(err)
	}

	if err := coll.SoftDelete(opt, expectedVersion); err != nil {
		if err == mongo.ErrNoDocuments {
			return e.ErrDeleteTrigger.AddDesc(fmt.Sprintf(
				"trigger %s was modified concurrently, fetch the latest version and retry", opt.Identifier))
		}
		logger.Errorf("Failed to delete trigger %s: %v", opt.Identifier, err)
		return e.ErrDeleteTrigger.AddErr(err)
	}

	if pollingApplies(existing) || providerHookApplies(existing) {
		existing.Enabled = false
		webhookID := ""
		if existing.Status.WebhookRegistration != nil {
			webhookID = existing.Status.WebhookRegistration.WebhookID
		}
		submitRegistration(existing, &SyncOptions{WebhookID: webhookID}, logger)
	}

	if err := coll.Delete(existing.ID); err != nil {
		logger.Errorf("Failed to remove tombstoned trigger %s: %v", opt.Identifier, err)
		return e.ErrDeleteTrigger.AddErr(err)
	}
	return nil
}

// DeleteTriggersForPipeline removes every trigger of one pipeline. Failures
// are collected rather than short-circuiting, so one stuck trigger does not
// strand the rest.
func DeleteTriggersForPipeline(accountID, orgID, projectID, pipelineIdentifier string, logger *zap.SugaredLogger) error {
	coll := mongodb.NewTriggerColl()
	triggers, err := coll.List(&mongodb.TriggerListOption{
		AccountID:          accountID,
		OrgID:              orgID,
		ProjectID:          projectID,
		PipelineIdentifier: pipelineIdentifier,
	})
	if err != nil {
		return e.ErrDeleteTrigger.AddErr(err)
	}

	var res *multierror.Error
	for _, t := range triggers {
		if err := DeleteTrigger(findOptOf(t), 0, logger); err != nil {
			res = multierror.Append(res, fmt.Errorf("trigger %s: %v", t.Identifier, err))
		}
	}
	if err := res.ErrorOrNil(); err != nil {
		return e.ErrDeleteTrigger.AddErr(err)
	}
	return nil
}

func GetTrigger(opt *mongodb.TriggerFindOption) (*models.Trigger, error) {
	t, err := mongodb.NewTriggerColl().Find(opt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, e.ErrTriggerNotFound.AddDesc(fmt.Sprintf("trigger %s not found", opt.Identifier))
		}
		return nil, e.ErrGetTrigger.AddErr(err)
	}
	return t, nil
}

func ListTriggers(opt *mongodb.TriggerListOption) ([]*models.Trigger, error) {
	triggers, err := mongodb.NewTriggerColl().List(opt)
	if err != nil {
		return nil, e.ErrListTriggers.AddErr(err)
	}
	return triggers, nil
}

type accessChecker interface {
	WebhookAuthMandatory(accountID string) (bool, error)
	Authorize(scope *settings.Scope, principal, resource, permission string) (bool, error)
}

// GetTriggerByWebhookToken resolves an inbound custom-webhook call to its
// trigger. An unknown token is reported identically to a missing trigger.
// When the account settings mandate webhook authorization, the caller
// principal must additionally hold pipeline execute permission in the
// trigger's scope.
func GetTriggerByWebhookToken(accountID, token, principal string, logger *zap.SugaredLogger) (*models.Trigger, error) {
	if token == "" {
		return nil, e.ErrInvalidParam.AddDesc("webhook token is required")
	}

	t, err := mongodb.NewTriggerColl().FindByWebhookToken(accountID, token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, e.ErrTriggerNotFound.AddDesc("no trigger matches this webhook token")
		}
		return nil, e.ErrGetTrigger.AddErr(err)
	}

	_, settingsCli := clients()
	return authorizeWebhookAccess(t, principal, settingsCli, logger)
}

// authorizeWebhookAccess applies the per-account mandatory-authorization
// setting to an inbound custom-webhook call.
func authorizeWebhookAccess(t *models.Trigger, principal string, checker accessChecker, logger *zap.SugaredLogger) (*models.Trigger, error) {
	mandatory, err := checker.WebhookAuthMandatory(t.AccountID)
	if err != nil {
		logger.Errorf("Failed to check webhook authorization mandate for account %s: %v", t.AccountID, err)
		return nil, e.ErrGetTrigger.AddErr(err)
	}
	if !mandatory {
		return t, nil
	}

	permitted, err := checker.Authorize(&settings.Scope{
		AccountID: t.AccountID,
		OrgID:     t.OrgID,
		ProjectID: t.ProjectID,
	}, principal, "PIPELINE", "core_pipeline_execute")
	if err != nil {
		logger.Errorf("Authorization check failed for principal %s: %v", principal, err)
		return nil, e.ErrGetTrigger.AddErr(err)
	}
	if !permitted {
		return nil, e.ErrForbidden.AddDesc("account settings mandate authorization for custom webhook calls")
	}

	return t, nil
}
