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

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/mongodb"
	triggerservice "github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/service/trigger"
	internalhandler "github.com/vigneswara-propelo/harness-core-sub207/pkg/shared/handler"
	e "github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/errors"
)

func findOptFromRequest(c *gin.Context) *mongodb.TriggerFindOption {
	return &mongodb.TriggerFindOption{
		AccountID:          c.Query("accountIdentifier"),
		OrgID:              c.Query("orgIdentifier"),
		ProjectID:          c.Query("projectIdentifier"),
		PipelineIdentifier: c.Query("pipelineIdentifier"),
		Identifier:         c.Param("identifier"),
	}
}

func CreateTrigger(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	args := new(models.Trigger)
	if err := c.ShouldBindJSON(args); err != nil {
		ctx.Err = e.ErrInvalidParam.AddErr(err)
		return
	}

	ctx.Resp, ctx.Err = triggerservice.CreateTrigger(args, ctx.Logger)
}

// PreviewValidation validates a trigger definition without saving it, so
// editors can surface problems before the user commits.
func PreviewValidation(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	args := new(models.Trigger)
	if err := c.ShouldBindJSON(args); err != nil {
		ctx.Err = e.ErrInvalidParam.AddErr(err)
		return
	}

	ctx.Resp, ctx.Err = triggerservice.PreviewValidation(args, ctx.Logger)
}

func UpdateTrigger(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	args := new(models.Trigger)
	if err := c.ShouldBindJSON(args); err != nil {
		ctx.Err = e.ErrInvalidParam.AddErr(err)
		return
	}
	args.Identifier = c.Param("identifier")

	ctx.Resp, ctx.Err = triggerservice.UpdateTrigger(args, ctx.Logger)
}

func GetTrigger(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	ctx.Resp, ctx.Err = triggerservice.GetTrigger(findOptFromRequest(c))
}

func ListTriggers(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	ctx.Resp, ctx.Err = triggerservice.ListTriggers(&mongodb.TriggerListOption{
		AccountID:          c.Query("accountIdentifier"),
		OrgID:              c.Query("orgIdentifier"),
		ProjectID:          c.Query("projectIdentifier"),
		PipelineIdentifier: c.Query("pipelineIdentifier"),
		SourceType:         models.SourceType(c.Query("sourceType")),
	})
}

func DeleteTrigger(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	var version int64
	if v := c.Query("version"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			ctx.Err = e.ErrInvalidParam.AddDesc("version must be an integer")
			return
		}
		version = parsed
	}

	ctx.Err = triggerservice.DeleteTrigger(findOptFromRequest(c), version, ctx.Logger)
}

// DeleteTriggersForPipeline removes every trigger of the pipeline named in
// the query scope, typically on pipeline deletion.
func DeleteTriggersForPipeline(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	pipelineIdentifier := c.Query("pipelineIdentifier")
	if pipelineIdentifier == "" {
		ctx.Err = e.ErrInvalidParam.AddDesc("pipelineIdentifier is required")
		return
	}

	ctx.Err = triggerservice.DeleteTriggersForPipeline(
		c.Query("accountIdentifier"), c.Query("orgIdentifier"), c.Query("projectIdentifier"),
		pipelineIdentifier, ctx.Logger)
}

type toggleTriggerReq struct {
	Enabled *bool `json:"enabled"`
}

func ToggleTrigger(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	args := new(toggleTriggerReq)
	if err := c.ShouldBindJSON(args); err != nil || args.Enabled == nil {
		ctx.Err = e.ErrInvalidParam.AddDesc("enabled is required")
		return
	}

	ctx.Resp, ctx.Err = triggerservice.ToggleTrigger(findOptFromRequest(c), *args.Enabled, ctx.Logger)
}

func DiffTriggerInputs(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	ctx.Resp, ctx.Err = triggerservice.DiffTriggerInputs(findOptFromRequest(c), ctx.Logger)
}

func RepairTriggerInputs(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	ctx.Resp, ctx.Err = triggerservice.RepairTriggerInputs(findOptFromRequest(c), ctx.Logger)
}

// GetTriggerByWebhookToken resolves an inbound custom-webhook delivery to
// its trigger definition. The service enforces the per-account mandatory
// authorization setting against the calling principal.
func GetTriggerByWebhookToken(c *gin.Context) {
	ctx := internalhandler.NewContext(c)
	defer func() { internalhandler.JSONResponse(c, ctx) }()

	ctx.Resp, ctx.Err = triggerservice.GetTriggerByWebhookToken(
		c.Query("accountIdentifier"), c.Param("token"), ctx.Account, ctx.Logger)
}
