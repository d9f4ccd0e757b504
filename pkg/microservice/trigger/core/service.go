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

package core

import (
	"context"

	configbase "github.com/vigneswara-propelo/harness-core-sub207/pkg/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/mongodb"
	triggerservice "github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/service/trigger"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/log"
	mongotool "github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/mongo"
)

func Start(ctx context.Context) {
	log.Init(&log.Config{
		Level:       configbase.LogLevel(),
		Filename:    configbase.LogFile(),
		SendToFile:  configbase.SendLogToFile(),
		Development: configbase.Mode() != setting.ReleaseMode,
	})

	initDatabase(ctx)

	triggerservice.StartRegistrationWorkers(ctx.Done())
}

func initDatabase(ctx context.Context) {
	mongotool.Init(ctx, config.MongoURI())
	if err := mongotool.Ping(ctx); err != nil {
		log.Panicf("Failed to connect to mongo, error: %s", err)
	}

	if err := mongodb.NewTriggerColl().EnsureIndex(ctx); err != nil {
		log.Panicf("Failed to create index for %s, error: %s", mongodb.NewTriggerColl().GetCollectionName(), err)
	}
}

func Stop(ctx context.Context) {
	mongotool.Close(ctx)
}
