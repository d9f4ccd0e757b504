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
	"github.com/gin-gonic/gin"
)

type Router struct{}

func (*Router) Inject(router *gin.RouterGroup) {
	triggers := router.Group("triggers")
	{
		triggers.POST("", CreateTrigger)
		triggers.POST("/validate", PreviewValidation)
		triggers.GET("", ListTriggers)
		triggers.DELETE("", DeleteTriggersForPipeline)
		triggers.GET("/:identifier", GetTrigger)
		triggers.PUT("/:identifier", UpdateTrigger)
		triggers.DELETE("/:identifier", DeleteTrigger)
		triggers.PATCH("/:identifier/status", ToggleTrigger)
		triggers.GET("/:identifier/reconcile", DiffTriggerInputs)
		triggers.POST("/:identifier/reconcile", RepairTriggerInputs)
	}

	webhooks := router.Group("webhooks")
	{
		webhooks.GET("/custom/:token", GetTriggerByWebhookToken)
	}
}
