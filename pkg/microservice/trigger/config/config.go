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

package config

import (
	"time"

	"github.com/spf13/viper"

	configbase "github.com/vigneswara-propelo/harness-core-sub207/pkg/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
)

func MongoURI() string {
	return configbase.MongoURI()
}

func MongoDatabase() string {
	return configbase.MongoDatabase()
}

func RegistrationWorkers() int {
	workers := viper.GetInt(setting.ENVRegistrationWorkers)
	if workers <= 0 {
		return 4
	}

	return workers
}

func RegistrationQueueSize() int {
	size := viper.GetInt(setting.ENVRegistrationQueueSize)
	if size <= 0 {
		return 1000
	}

	return size
}

// ExternalCallTimeout bounds every call to the webhook, polling, pipeline and
// connector services.
func ExternalCallTimeout() time.Duration {
	return configbase.RequestTimeout()
}

func WebhookServiceAddress() string {
	return configbase.WebhookServiceAddress()
}

func PollingServiceAddress() string {
	return configbase.PollingServiceAddress()
}

func PipelineServiceAddress() string {
	return configbase.PipelineServiceAddress()
}

func ConnectorServiceAddress() string {
	return configbase.ConnectorServiceAddress()
}

func SettingsServiceAddress() string {
	return configbase.SettingsServiceAddress()
}
