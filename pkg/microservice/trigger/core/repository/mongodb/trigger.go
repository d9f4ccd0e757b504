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
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
	mongotool "github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/mongo"
)

// TriggerFindOption addresses one trigger by its natural key.
type TriggerFindOption struct {
	AccountID          string
	OrgID              string
	ProjectID          string
	PipelineIdentifier string
	Identifier         string
}

type TriggerListOption struct {
	AccountID          string
	OrgID              string
	ProjectID          string
	PipelineIdentifier string
	SourceType         models.SourceType
}

type TriggerColl struct {
	*mongo.Collection

	coll string
}

func NewTriggerColl() *TriggerColl {
	name := models.Trigger{}.TableName()
	return &TriggerColl{
		Collection: mongotool.Database(config.MongoDatabase()).Collection(name),
		coll:       name,
	}
}

func (c *TriggerColl) GetCollectionName() string {
	return c.coll
}

// EnsureIndex creates the unique natural-key index. The partial filter keeps
// uniqueness scoped to live documents, so a soft-deleted trigger never blocks
// re-creation under the same identifier.
func (c *TriggerColl) EnsureIndex(ctx context.Context) error {
	mod := mongo.IndexModel{
		Keys: bson.D{
			{Key: "account_id", Value: 1},
			{Key: "org_id", Value: 1},
			{Key: "project_id", Value: 1},
			{Key: "pipeline_identifier", Value: 1},
			{Key: "identifier", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"deleted": false}),
	}

	_, err := c.Indexes().CreateOne(ctx, mod)

	return err
}

func keyQuery(opt *TriggerFindOption) bson.M {
	return bson.M{
		"account_id":          opt.AccountID,
		"org_id":              opt.OrgID,
		"project_id":          opt.ProjectID,
		"pipeline_identifier": opt.PipelineIdentifier,
		"identifier":          opt.Identifier,
		"deleted":             false,
	}
}

func keyOf(t *models.Trigger) *TriggerFindOption {
	return &TriggerFindOption{
		AccountID:          t.AccountID,
		OrgID:              t.OrgID,
		ProjectID:          t.ProjectID,
		PipelineIdentifier: t.PipelineIdentifier,
		Identifier:         t.Identifier,
	}
}

func (c *TriggerColl) Create(args *models.Trigger) error {
	if args == nil {
		return errors.New("nil trigger args")
	}

	now := time.Now().Unix()
	args.CreatedAt = now
	args.UpdatedAt = now
	args.Version = 1
	args.Deleted = false

	result, err := c.InsertOne(context.TODO(), args)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		args.ID = oid
	}

	return nil
}

func (c *TriggerColl) Find(opt *TriggerFindOption) (*models.Trigger, error) {
	if opt == nil {
		return nil, errors.New("nil find option")
	}

	resp := new(models.Trigger)
	err := c.FindOne(context.TODO(), keyQuery(opt)).Decode(resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *TriggerColl) FindByWebhookToken(accountID, token string) (*models.Trigger, error) {
	query := bson.M{
		"account_id":           accountID,
		"custom_webhook_token": token,
		"deleted":              false,
	}

	resp := new(models.Trigger)
	err := c.FindOne(context.TODO(), query).Decode(resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *TriggerColl) List(opt *TriggerListOption) ([]*models.Trigger, error) {
	resp := make([]*models.Trigger, 0)
	query := bson.M{"deleted": false}
	if opt != nil {
		if opt.AccountID != "" {
			query["account_id"] = opt.AccountID
		}
		if opt.OrgID != "" {
			query["org_id"] = opt.OrgID
		}
		if opt.ProjectID != "" {
			query["project_id"] = opt.ProjectID
		}
		if opt.PipelineIdentifier != "" {
			query["pipeline_identifier"] = opt.PipelineIdentifier
		}
		if opt.SourceType != "" {
			query["source_type"] = opt.SourceType
		}
	}

	cursor, err := c.Collection.Find(context.TODO(), query)
	if err != nil {
		return nil, err
	}
	err = cursor.All(context.TODO(), &resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Update writes the user-editable fields of the entity, matched by natural
// key and version. The version precondition makes concurrent edits fail with
// explicit conflict detection; mongo.ErrNoDocuments is returned when no live
// document matches. The trigger_status subtree is never part of the write, so
// a worker status patch landing between the caller's read and this write
// survives it.
func (c *TriggerColl) Update(args *models.Trigger) error {
	if args == nil {
		return errors.New("nil trigger args")
	}

	query := keyQuery(keyOf(args))
	query["version"] = args.Version

	args.UpdatedAt = time.Now().Unix()

	res, err := c.UpdateOne(context.TODO(), query, updateChange(args))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	args.Version++

	return nil
}

func updateChange(args *models.Trigger) bson.M {
	return bson.M{
		"$set": bson.M{
			"name":           args.Name,
			"description":    args.Description,
			"source_type":    args.SourceType,
			"enabled":        args.Enabled,
			"poll_interval":  args.PollInterval,
			"yaml":           args.YAML,
			"updated_at":     args.UpdatedAt,
			"webhook":        args.Webhook,
			"scheduled":      args.Scheduled,
			"artifact":       args.Artifact,
			"manifest":       args.Manifest,
			"multi_artifact": args.MultiArtifact,
		},
		"$inc": bson.M{"version": 1},
	}
}

func (c *TriggerColl) UpdateEnabled(opt *TriggerFindOption, enabled bool) error {
	change := bson.M{"$set": bson.M{
		"enabled":    enabled,
		"updated_at": time.Now().Unix(),
	}}

	res, err := c.UpdateOne(context.TODO(), keyQuery(opt), change)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

// The status updates below are deliberately version-free: they race with user
// edits and must not fail spuriously, and they touch only their own subtree.

func (c *TriggerColl) UpdateValidationStatus(t *models.Trigger, status *models.ValidationStatus) error {
	change := bson.M{"$set": bson.M{
		"trigger_status.validation": status,
	}}

	_, err := c.UpdateOne(context.TODO(), keyQuery(keyOf(t)), change)
	return err
}

func (c *TriggerColl) UpdateWebhookRegistrationStatus(t *models.Trigger, status *models.WebhookRegistrationStatus) error {
	change := bson.M{"$set": bson.M{
		"trigger_status.webhook_registration": status,
	}}

	_, err := c.UpdateOne(context.TODO(), keyQuery(keyOf(t)), change)
	return err
}

func (c *TriggerColl) UpdatePollingSubscriptionStatus(t *models.Trigger, status *models.PollingSubscriptionStatus) error {
	change := bson.M{"$set": bson.M{
		"trigger_status.polling_subscription": status,
	}}

	_, err := c.UpdateOne(context.TODO(), keyQuery(keyOf(t)), change)
	return err
}

// SoftDelete tombstones the document so lookups stop seeing it and its slot
// in the unique index frees up immediately. expectedVersion of zero skips
// the version precondition.
func (c *TriggerColl) SoftDelete(opt *TriggerFindOption, expectedVersion int64) error {
	query := keyQuery(opt)
	if expectedVersion > 0 {
		query["version"] = expectedVersion
	}

	change := bson.M{"$set": bson.M{
		"deleted":    true,
		"updated_at": time.Now().Unix(),
	}}

	res, err := c.UpdateOne(context.TODO(), query, change)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

// Delete removes a tombstoned document for good.
func (c *TriggerColl) Delete(id primitive.ObjectID) error {
	res, err := c.DeleteOne(context.TODO(), bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}
